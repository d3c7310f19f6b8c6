package service

import (
	"strconv"
	"strings"

	"github.com/pharmaguard-server/internal/domain"
)

// GenotypeClassifierService classifies a patient's zygosity relative to a
// risk allele. It is deterministic and pure: identical inputs always yield
// identical outputs, and it performs no I/O.
type GenotypeClassifierService struct{}

// NewGenotypeClassifierService creates a new genotype classifier
func NewGenotypeClassifierService() *GenotypeClassifierService {
	return &GenotypeClassifierService{}
}

// Classify determines the genotype class of a variant relative to the risk
// allele. When the variant carries no called genotype, a direct allele
// match against the alternate allele is the degraded fallback: a match
// reports heterozygous, anything else homozygous-reference.
func (c *GenotypeClassifierService) Classify(variant *domain.Variant, riskAllele, normalAllele string) domain.GenotypeClass {
	gt := variant.Genotype
	if gt == "" || gt == "." {
		if strings.EqualFold(variant.Alt, riskAllele) {
			return domain.GenotypeHet
		}
		return domain.GenotypeHomRef
	}

	// Resolve each phase-separated allele index against [ref, alt...] and
	// count copies of the risk allele. Malformed or out-of-range indices
	// contribute zero.
	indices := strings.Split(strings.ReplaceAll(gt, "|", "/"), "/")
	alleles := append([]string{variant.Ref}, strings.Split(variant.Alt, ",")...)

	riskCount := 0
	for _, idxStr := range indices {
		if idxStr == "." {
			continue
		}
		idx, err := strconv.Atoi(idxStr)
		if err != nil || idx < 0 || idx >= len(alleles) {
			continue
		}
		if strings.EqualFold(alleles[idx], riskAllele) {
			riskCount++
		}
	}

	switch {
	case riskCount == 0:
		return domain.GenotypeHomRef
	case riskCount == 1:
		return domain.GenotypeHet
	default:
		return domain.GenotypeHomRisk
	}
}
