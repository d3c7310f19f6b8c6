package domain

// The types in this file form the externally contracted output schema.
// Field names and nesting are caller-visible and must not be renamed or
// restructured.

// DetectedVariant is a pharmacogenomic variant found in the patient's VCF
// for one of a drug's known interaction sites.
type DetectedVariant struct {
	RSID         string   `json:"rsid"`
	Gene         string   `json:"gene"`
	AlleleChange string   `json:"allele_change,omitempty"`
	Genotype     string   `json:"genotype,omitempty"`
	Quality      *float64 `json:"quality,omitempty"`
	FilterStatus string   `json:"filter_status"`
}

// RiskAssessment is the headline risk block for one drug.
type RiskAssessment struct {
	RiskLabel       string  `json:"risk_label"`
	ConfidenceScore float64 `json:"confidence_score"`
	Severity        string  `json:"severity"`
}

// PharmacogenomicProfile describes the patient's metabolizer status for the
// drug's primary gene.
type PharmacogenomicProfile struct {
	PrimaryGene      string            `json:"primary_gene"`
	Diplotype        string            `json:"diplotype"`
	Phenotype        string            `json:"phenotype"`
	DetectedVariants []DetectedVariant `json:"detected_variants"`
}

// ClinicalRecommendation carries the actionable guidance for one drug.
// DosageAdjustment and Monitoring are null when the recommendation text
// contains no extractable phrase.
type ClinicalRecommendation struct {
	Action           string   `json:"action"`
	DosageAdjustment *string  `json:"dosage_adjustment"`
	AlternativeDrugs []string `json:"alternative_drugs"`
	Monitoring       *string  `json:"monitoring"`
	EvidenceSources  []string `json:"evidence_sources"`
}

// LLMExplanation is the narrative block produced by the external
// text-generation collaborator. The core passes it through untouched.
type LLMExplanation struct {
	Summary              string   `json:"summary"`
	BiologicalMechanism  string   `json:"biological_mechanism"`
	ClinicalSignificance string   `json:"clinical_significance"`
	VariantCitations     []string `json:"variant_citations"`
}

// QualityMetrics summarizes parse and analysis quality for one result.
type QualityMetrics struct {
	VCFParsingSuccess            bool    `json:"vcf_parsing_success"`
	TotalVariantsParsed          int     `json:"total_variants_parsed"`
	PharmacogenomicVariantsFound int     `json:"pharmacogenomic_variants_found"`
	AnalysisConfidence           float64 `json:"analysis_confidence"`
	GeneCoverage                 float64 `json:"gene_coverage"`
}

// PharmaGuardResult is the complete per-drug output record.
type PharmaGuardResult struct {
	PatientID               string                 `json:"patient_id"`
	Drug                    string                 `json:"drug"`
	Timestamp               string                 `json:"timestamp"`
	RiskAssessment          RiskAssessment         `json:"risk_assessment"`
	PharmacogenomicProfile  PharmacogenomicProfile `json:"pharmacogenomic_profile"`
	ClinicalRecommendation  ClinicalRecommendation `json:"clinical_recommendation"`
	LLMGeneratedExplanation *LLMExplanation        `json:"llm_generated_explanation"`
	QualityMetrics          QualityMetrics         `json:"quality_metrics"`
}

// AnalyzeRequest is the JSON body of the analyze endpoint.
type AnalyzeRequest struct {
	Variants  []Variant `json:"variants"`
	DrugNames []string  `json:"drug_names"`
	PatientID string    `json:"patient_id,omitempty"`
}

// AnalyzeResponse wraps the rendered results with a request-level metadata
// envelope attached by the API layer, not the core.
type AnalyzeResponse struct {
	Results  []PharmaGuardResult `json:"results"`
	Metadata map[string]any      `json:"metadata"`
}
