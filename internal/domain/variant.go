package domain

// Variant represents a single parsed VCF record for one alternate allele.
// Multi-allelic input lines are exploded during parsing, so Alt never
// contains a comma once parsing completes. Variants are created only by the
// VCF parser and are immutable thereafter.
type Variant struct {
	Chrom        string         `json:"chrom"`
	Pos          int64          `json:"pos"`
	RSID         string         `json:"rsid,omitempty"`
	Ref          string         `json:"ref"`
	Alt          string         `json:"alt"`
	Quality      *float64       `json:"quality,omitempty"`
	FilterStatus string         `json:"filter_status"`
	Info         map[string]any `json:"info"`
	Genotype     string         `json:"genotype,omitempty"`
}

// VCFParseResult is the complete output of parsing one VCF file. Variants
// preserve input line order (post multi-allelic explosion). MetaInfo values
// are strings, or []string when a ## key repeats.
type VCFParseResult struct {
	Variants      []Variant      `json:"variants"`
	SampleIDs     []string       `json:"sample_ids"`
	TotalVariants int            `json:"total_variants"`
	MetaInfo      map[string]any `json:"meta_info"`
}

// PhenotypeData is the outcome a genotype class maps to for one interaction.
type PhenotypeData struct {
	Level          string `json:"level"`
	Phenotype      string `json:"phenotype"`
	Recommendation string `json:"recommendation"`
}

// Interaction is one drug-gene interaction rule in the knowledge base.
// Phenotypes is keyed by genotype class ("0/0", "0/1", "1/1"); every
// interaction defines at least the "0/0" entry as a fallback.
type Interaction struct {
	RSID         string                   `json:"rsid"`
	Gene         string                   `json:"gene"`
	RiskAllele   string                   `json:"risk_allele"`
	NormalAllele string                   `json:"normal_allele,omitempty"`
	Evidence     []string                 `json:"evidence,omitempty"`
	Phenotypes   map[string]PhenotypeData `json:"phenotypes"`
}

// DrugEntry is the knowledge base record for one drug.
type DrugEntry struct {
	Name         string        `json:"name"`
	Category     string        `json:"category"`
	Interactions []Interaction `json:"interactions"`
}

// DrugSummary is the listing form of a supported drug.
type DrugSummary struct {
	ID       string `json:"id"`
	Name     string `json:"name"`
	Category string `json:"category"`
}

// DrugRiskResult is the internal risk assessment for one drug: the single
// surviving interaction evaluation after worst-case selection.
type DrugRiskResult struct {
	DrugName        string    `json:"drug_name"`
	Gene            string    `json:"gene"`
	Variant         string    `json:"variant,omitempty"`
	RSID            string    `json:"rsid,omitempty"`
	Genotype        string    `json:"genotype,omitempty"`
	RiskLevel       RiskLevel `json:"risk_level"`
	Phenotype       string    `json:"phenotype"`
	Recommendation  string    `json:"recommendation"`
	EvidenceSources []string  `json:"evidence_sources"`
}

// AnalysisResult pairs the rule-based risk result for one drug with an
// optional narrative explanation from the external collaborator.
type AnalysisResult struct {
	DrugRisk       DrugRiskResult  `json:"drug_risk"`
	LLMExplanation *LLMExplanation `json:"llm_explanation,omitempty"`
}
