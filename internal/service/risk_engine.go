package service

import (
	"fmt"

	"github.com/sirupsen/logrus"

	"github.com/pharmaguard-server/internal/domain"
)

// RiskEngine cross-references patient variants against the knowledge base
// and selects the worst-case outcome per requested drug. Results are fully
// deterministic for a given (variants, drugNames, knowledge base) triple:
// the only orderings that matter are interaction declaration order and
// request order.
type RiskEngine struct {
	logger     *logrus.Logger
	kb         domain.KnowledgeBase
	classifier domain.GenotypeClassifier
	resolver   *DrugKeyResolver
}

// NewRiskEngine creates a new risk resolution engine. The knowledge base
// handle is owned here; the engine never reloads it.
func NewRiskEngine(logger *logrus.Logger, kb domain.KnowledgeBase, classifier domain.GenotypeClassifier, resolver *DrugKeyResolver) *RiskEngine {
	return &RiskEngine{
		logger:     logger,
		kb:         kb,
		classifier: classifier,
		resolver:   resolver,
	}
}

// Resolve analyzes patient variants against the requested drugs and returns
// one result per drug, in request order. Unknown drugs and missing variants
// degrade to safe NORMAL defaults; nothing here is an error.
func (e *RiskEngine) Resolve(variants []domain.Variant, drugNames []string) []domain.AnalysisResult {
	variantMap := buildVariantMap(variants)
	results := make([]domain.AnalysisResult, 0, len(drugNames))

	for _, drugName := range drugNames {
		key := e.resolver.Key(drugName)
		entry, ok := e.kb.Drug(key)
		if !ok {
			e.logger.WithField("drug", drugName).Debug("No pharmacogenomic data for requested drug")
			results = append(results, domain.AnalysisResult{
				DrugRisk: defaultRiskResult(drugName, fmt.Sprintf("No pharmacogenomic data available for '%s'.", drugName)),
			})
			continue
		}

		worst := e.evaluateDrug(entry, variantMap)
		if worst == nil {
			fallback := defaultRiskResult(entry.Name, "Use standard dosing guidelines.")
			worst = &fallback
		}

		e.logger.WithFields(logrus.Fields{
			"drug":       entry.Name,
			"gene":       worst.Gene,
			"risk_level": worst.RiskLevel,
		}).Info("Drug risk resolved")

		results = append(results, domain.AnalysisResult{DrugRisk: *worst})
	}

	return results
}

// evaluateDrug evaluates every interaction for a drug and keeps the result
// whose tier is strictly greater than the current one; ties keep the
// earliest-evaluated interaction.
func (e *RiskEngine) evaluateDrug(entry *domain.DrugEntry, variantMap map[string]*domain.Variant) *domain.DrugRiskResult {
	var worst *domain.DrugRiskResult

	for _, interaction := range entry.Interactions {
		patientVariant := variantMap[interaction.RSID]

		// A patient with no variant at the site is homozygous-reference;
		// the classifier only runs on observed variants.
		genotypeClass := domain.GenotypeHomRef
		if patientVariant != nil {
			genotypeClass = e.classifier.Classify(patientVariant, interaction.RiskAllele, interaction.NormalAllele)
		}

		phenoData := lookupPhenotype(interaction.Phenotypes, genotypeClass)
		result := domain.DrugRiskResult{
			DrugName:        entry.Name,
			Gene:            interaction.Gene,
			RSID:            interaction.RSID,
			RiskLevel:       domain.ParseRiskLevel(phenoData.Level),
			Phenotype:       phenoData.Phenotype,
			Recommendation:  phenoData.Recommendation,
			EvidenceSources: interaction.Evidence,
		}
		if patientVariant != nil {
			result.Variant = fmt.Sprintf("%s>%s", patientVariant.Ref, patientVariant.Alt)
			result.Genotype = patientVariant.Genotype
		}

		if worst == nil || result.RiskLevel.Order() > worst.RiskLevel.Order() {
			worst = &result
		}
	}

	return worst
}

// buildVariantMap indexes variants by rsID for interaction lookup. When
// multiple records share an rsID the last one encountered wins; this is a
// deliberate, tested policy choice.
func buildVariantMap(variants []domain.Variant) map[string]*domain.Variant {
	variantMap := make(map[string]*domain.Variant)
	for i := range variants {
		if variants[i].RSID != "" {
			variantMap[variants[i].RSID] = &variants[i]
		}
	}
	return variantMap
}

// lookupPhenotype maps a genotype class through the interaction's phenotype
// table, falling back to the 0/0 entry and then to safe field defaults.
func lookupPhenotype(phenotypes map[string]domain.PhenotypeData, class domain.GenotypeClass) domain.PhenotypeData {
	data, ok := phenotypes[class.String()]
	if !ok {
		data = phenotypes[domain.GenotypeHomRef.String()]
	}
	if data.Phenotype == "" {
		data.Phenotype = "Unknown"
	}
	if data.Recommendation == "" {
		data.Recommendation = "No recommendation available."
	}
	return data
}

// defaultRiskResult is the safe NORMAL result emitted for unknown drugs and
// drugs with no evaluable interactions.
func defaultRiskResult(drugName, recommendation string) domain.DrugRiskResult {
	return domain.DrugRiskResult{
		DrugName:        drugName,
		Gene:            "N/A",
		RiskLevel:       domain.RiskNormal,
		Phenotype:       "Normal Metabolizer",
		Recommendation:  recommendation,
		EvidenceSources: []string{},
	}
}
