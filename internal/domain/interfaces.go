package domain

import "context"

// VCFParser converts raw VCF file content into typed variant records plus
// file-level metadata. Per-line problems never surface as errors.
type VCFParser interface {
	Parse(content []byte) (*VCFParseResult, error)
}

// GenotypeClassifier determines the patient's zygosity class relative to a
// risk allele. Implementations must be deterministic and pure.
type GenotypeClassifier interface {
	Classify(variant *Variant, riskAllele, normalAllele string) GenotypeClass
}

// KnowledgeBase exposes the drug-gene interaction table as an immutable,
// load-once view keyed by lower-cased drug identifiers.
type KnowledgeBase interface {
	Drug(key string) (*DrugEntry, bool)
	ListDrugs() []DrugSummary
	KnownRSID(rsid string) bool
	Version() string
}

// RiskResolver evaluates patient variants against the knowledge base and
// produces one internal risk result per requested drug, in request order.
type RiskResolver interface {
	Resolve(variants []Variant, drugNames []string) []AnalysisResult
}

// SchemaRenderer maps internal risk results into the externally contracted
// output schema.
type SchemaRenderer interface {
	Render(results []AnalysisResult, variants []Variant, patientID string) []PharmaGuardResult
}

// ExplanationService produces narrative explanations for risk results via
// the external text-generation collaborator. Failures must never fail the
// analysis; callers omit the block instead.
type ExplanationService interface {
	Explain(ctx context.Context, result *DrugRiskResult) (*LLMExplanation, error)
}

// ConfigManager defines the interface for configuration management
type ConfigManager interface {
	GetConfig() *Config
	GetServerConfig() *ServerConfig
	GetFeedbackConfig() *FeedbackConfig
	GetExplainerConfig() *ExplainerConfig
	Reload() error
	Validate() error
	IsProduction() bool
	IsDevelopment() bool
}
