package service

import (
	"fmt"
	"regexp"
	"strings"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/pharmaguard-server/internal/domain"
)

// Per-tier output tables. Unrecognized tiers fall back to the NORMAL row.
var (
	riskLabels = map[domain.RiskLevel]string{
		domain.RiskNormal:   "Safe",
		domain.RiskModerate: "Adjust Dosage",
		domain.RiskHigh:     "Toxic",
		domain.RiskCritical: "Critical Risk",
	}
	severities = map[domain.RiskLevel]string{
		domain.RiskNormal:   "none",
		domain.RiskModerate: "moderate",
		domain.RiskHigh:     "high",
		domain.RiskCritical: "critical",
	}
	confidences = map[domain.RiskLevel]float64{
		domain.RiskNormal:   0.95,
		domain.RiskModerate: 0.85,
		domain.RiskHigh:     0.80,
		domain.RiskCritical: 0.90,
	}
)

// Heuristic extraction patterns over recommendation and phenotype text.
// These are deliberately bounded, order-sensitive pattern rules, not a
// language parser.
var (
	diplotypePattern   = regexp.MustCompile(`\(\*\d+/\*\d+\w?\)`)
	dosageRangePattern = regexp.MustCompile(`(?i)(\d+[-–]\d+%\s*(?:dose reduction|lower|higher))`)
	reduceDosePattern  = regexp.MustCompile(`[Rr]educe dose\s+by\s+[\d\-–%\s]+`)
)

// alternativeDrugKeywords is the fixed list of alternative-drug names the
// renderer recognizes in recommendation text.
var alternativeDrugKeywords = []string{"prasugrel", "ticagrelor", "pravastatin", "rosuvastatin"}

// SchemaRendererService maps internal risk results into the externally
// contracted output schema, deriving diplotype, phenotype code, and
// recommendation sub-fields from free-form text.
type SchemaRendererService struct {
	logger   *logrus.Logger
	kb       domain.KnowledgeBase
	resolver *DrugKeyResolver
}

// NewSchemaRendererService creates a new schema renderer
func NewSchemaRendererService(logger *logrus.Logger, kb domain.KnowledgeBase, resolver *DrugKeyResolver) *SchemaRendererService {
	return &SchemaRendererService{logger: logger, kb: kb, resolver: resolver}
}

// Render converts internal analysis results into external results, one per
// input, in the same order. All results in one call share a single UTC
// timestamp.
func (s *SchemaRendererService) Render(results []domain.AnalysisResult, variants []domain.Variant, patientID string) []domain.PharmaGuardResult {
	variantMap := buildVariantMap(variants)
	timestamp := time.Now().UTC().Format(time.RFC3339)

	totalVariants := len(variants)
	pgxFound := 0
	for _, v := range variants {
		if v.RSID != "" && s.kb.KnownRSID(v.RSID) {
			pgxFound++
		}
	}

	output := make([]domain.PharmaGuardResult, 0, len(results))
	for _, result := range results {
		dr := result.DrugRisk
		detected := s.detectedVariants(dr.DrugName, variantMap)
		confidence := confidenceFor(dr.RiskLevel)

		geneCoverage := 0.0
		if len(detected) > 0 {
			geneCoverage = 1.0
		}

		output = append(output, domain.PharmaGuardResult{
			PatientID: patientID,
			Drug:      dr.DrugName,
			Timestamp: timestamp,
			RiskAssessment: domain.RiskAssessment{
				RiskLabel:       labelFor(dr.RiskLevel),
				ConfidenceScore: confidence,
				Severity:        severityFor(dr.RiskLevel),
			},
			PharmacogenomicProfile: domain.PharmacogenomicProfile{
				PrimaryGene:      dr.Gene,
				Diplotype:        extractDiplotype(dr.Phenotype),
				Phenotype:        abbreviatePhenotype(dr.Phenotype),
				DetectedVariants: detected,
			},
			ClinicalRecommendation: domain.ClinicalRecommendation{
				Action:           dr.Recommendation,
				DosageAdjustment: extractDosageAdjustment(dr.Recommendation),
				AlternativeDrugs: extractAlternatives(dr.Recommendation),
				Monitoring:       extractMonitoring(dr.Recommendation),
				EvidenceSources:  dr.EvidenceSources,
			},
			LLMGeneratedExplanation: result.LLMExplanation,
			QualityMetrics: domain.QualityMetrics{
				VCFParsingSuccess:            true,
				TotalVariantsParsed:          totalVariants,
				PharmacogenomicVariantsFound: pgxFound,
				AnalysisConfidence:           confidence,
				GeneCoverage:                 geneCoverage,
			},
		})
	}

	return output
}

// detectedVariants re-resolves the drug through the normalized profile key
// and collects one entry per interaction site present in the patient's
// variants.
func (s *SchemaRendererService) detectedVariants(displayName string, variantMap map[string]*domain.Variant) []domain.DetectedVariant {
	detected := make([]domain.DetectedVariant, 0)

	entry, ok := s.kb.Drug(s.resolver.ProfileKey(displayName))
	if !ok {
		return detected
	}

	for _, interaction := range entry.Interactions {
		pv := variantMap[interaction.RSID]
		if pv == nil {
			continue
		}
		detected = append(detected, domain.DetectedVariant{
			RSID:         interaction.RSID,
			Gene:         interaction.Gene,
			AlleleChange: fmt.Sprintf("%s>%s", pv.Ref, pv.Alt),
			Genotype:     pv.Genotype,
			Quality:      pv.Quality,
			FilterStatus: pv.FilterStatus,
		})
	}

	return detected
}

func labelFor(level domain.RiskLevel) string {
	if label, ok := riskLabels[level]; ok {
		return label
	}
	return riskLabels[domain.RiskNormal]
}

func severityFor(level domain.RiskLevel) string {
	if severity, ok := severities[level]; ok {
		return severity
	}
	return severities[domain.RiskNormal]
}

func confidenceFor(level domain.RiskLevel) float64 {
	if confidence, ok := confidences[level]; ok {
		return confidence
	}
	return confidences[domain.RiskNormal]
}

// extractDiplotype pulls a parenthesized star-allele pair out of the
// phenotype description, or infers one from metabolizer keywords.
func extractDiplotype(phenotype string) string {
	if match := diplotypePattern.FindString(phenotype); match != "" {
		return strings.Trim(match, "()")
	}
	p := strings.ToLower(phenotype)
	if strings.Contains(p, "poor") || strings.Contains(p, "deficien") {
		return "*2/*2"
	}
	if strings.Contains(p, "intermediate") {
		return "*1/*2"
	}
	return "*1/*1"
}

// abbreviatePhenotype maps a phenotype description to its standard short
// code. Rule order matters: earlier rules win.
func abbreviatePhenotype(phenotype string) string {
	p := strings.ToLower(phenotype)
	switch {
	case strings.Contains(p, "ultra") && strings.Contains(p, "rapid"):
		return "URM"
	case strings.Contains(p, "rapid") && strings.Contains(p, "metabolizer"):
		return "RM"
	case strings.Contains(p, "poor") || strings.Contains(p, "deficien"):
		return "PM"
	case strings.Contains(p, "intermediate"):
		return "IM"
	case strings.Contains(p, "normal"):
		return "NM"
	case strings.Contains(p, "non-expressor"):
		return "NM"
	case strings.Contains(p, "expressor"):
		return "RM"
	case strings.Contains(p, "negative"):
		return "NM"
	case strings.Contains(p, "carrier") || strings.Contains(p, "homozygous"):
		return "PM"
	default:
		return "Unknown"
	}
}

// extractDosageAdjustment finds a percentage-range dosing phrase or a
// "reduce dose by" phrase in the recommendation text.
func extractDosageAdjustment(recommendation string) *string {
	if match := dosageRangePattern.FindString(recommendation); match != "" {
		return &match
	}
	if strings.Contains(strings.ToLower(recommendation), "reduce dose") {
		if match := reduceDosePattern.FindString(recommendation); match != "" {
			return &match
		}
	}
	return nil
}

// extractAlternatives collects the fixed alternative-drug names mentioned
// in the text, title-cased. When "alternative" appears without any of them,
// a generic consult-prescriber placeholder stands in.
func extractAlternatives(recommendation string) []string {
	lower := strings.ToLower(recommendation)
	alternatives := make([]string, 0)
	for _, drug := range alternativeDrugKeywords {
		if strings.Contains(lower, drug) {
			alternatives = append(alternatives, strings.ToUpper(drug[:1])+drug[1:])
		}
	}
	if strings.Contains(lower, "alternative") && len(alternatives) == 0 {
		alternatives = append(alternatives, "Consult prescriber for alternatives")
	}
	return alternatives
}

// extractMonitoring selects a canned monitoring phrase keyed on the
// recommendation text. No "monitor" mention means no monitoring field.
func extractMonitoring(recommendation string) *string {
	lower := strings.ToLower(recommendation)
	if !strings.Contains(lower, "monitor") {
		return nil
	}
	var monitoring string
	switch {
	case strings.Contains(lower, "inr"):
		monitoring = "Monitor INR closely"
	case strings.Contains(lower, "cbc"):
		monitoring = "Monitor CBC weekly"
	case strings.Contains(lower, "trough"):
		monitoring = "Monitor trough levels"
	default:
		monitoring = "Close clinical monitoring required"
	}
	return &monitoring
}
