// Package domain contains core business entities and types for pharmacogenomic
// risk prediction: parsed VCF variants, drug-gene interaction records, risk
// tiers, and the externally contracted result schema.
//
// Reference: CPIC (Clinical Pharmacogenetics Implementation Consortium)
// guidelines for gene/drug pairs, https://cpicpgx.org/guidelines/
package domain

import "errors"

// RiskLevel represents the ordered severity tier of a drug-gene interaction
// outcome. The order NORMAL < MODERATE < HIGH < CRITICAL drives worst-case
// selection across interactions for a drug.
type RiskLevel string

const (
	RiskNormal   RiskLevel = "NORMAL"
	RiskModerate RiskLevel = "MODERATE"
	RiskHigh     RiskLevel = "HIGH"
	RiskCritical RiskLevel = "CRITICAL"
)

// GenotypeClass represents the patient's zygosity relative to a specific
// risk allele: homozygous-reference, heterozygous, or homozygous-risk.
type GenotypeClass string

const (
	GenotypeHomRef  GenotypeClass = "0/0"
	GenotypeHet     GenotypeClass = "0/1"
	GenotypeHomRisk GenotypeClass = "1/1"
)

// Validation errors for medical data integrity
var (
	ErrNotFound          = errors.New("not found")
	ErrInvalidRiskLevel  = errors.New("invalid risk level")
	ErrInvalidGenotype   = errors.New("invalid genotype class")
	ErrEmptyVCF          = errors.New("empty VCF content")
	ErrKnowledgeBaseLoad = errors.New("knowledge base load failed")
)

// IsValid validates that the risk level is one of the four known tiers.
// Only valid tiers may flow into clinical risk assessments.
func (r RiskLevel) IsValid() bool {
	switch r {
	case RiskNormal, RiskModerate, RiskHigh, RiskCritical:
		return true
	default:
		return false
	}
}

// Order returns the position of the tier in the severity ordering,
// NORMAL=0 through CRITICAL=3. Unknown tiers order below NORMAL so they
// can never win worst-case selection.
func (r RiskLevel) Order() int {
	switch r {
	case RiskNormal:
		return 0
	case RiskModerate:
		return 1
	case RiskHigh:
		return 2
	case RiskCritical:
		return 3
	default:
		return -1
	}
}

// String returns the string representation of the risk level.
func (r RiskLevel) String() string {
	return string(r)
}

// ParseRiskLevel converts a free-text tier label into a RiskLevel.
// Unknown labels deterministically default to NORMAL, the safe tier.
func ParseRiskLevel(s string) RiskLevel {
	r := RiskLevel(s)
	if !r.IsValid() {
		return RiskNormal
	}
	return r
}

// IsValid validates the genotype class.
func (g GenotypeClass) IsValid() bool {
	switch g {
	case GenotypeHomRef, GenotypeHet, GenotypeHomRisk:
		return true
	default:
		return false
	}
}

// String returns the string representation of the genotype class.
func (g GenotypeClass) String() string {
	return string(g)
}
