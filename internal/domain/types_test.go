package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestRiskLevelIsValid(t *testing.T) {
	tests := []struct {
		level RiskLevel
		want  bool
	}{
		{RiskNormal, true},
		{RiskModerate, true},
		{RiskHigh, true},
		{RiskCritical, true},
		{RiskLevel("SEVERE"), false},
		{RiskLevel(""), false},
	}

	for _, tt := range tests {
		t.Run(string(tt.level), func(t *testing.T) {
			assert.Equal(t, tt.want, tt.level.IsValid())
		})
	}
}

func TestRiskLevelOrder(t *testing.T) {
	assert.Equal(t, 0, RiskNormal.Order())
	assert.Equal(t, 1, RiskModerate.Order())
	assert.Equal(t, 2, RiskHigh.Order())
	assert.Equal(t, 3, RiskCritical.Order())
	assert.Equal(t, -1, RiskLevel("bogus").Order())

	// Total order used for worst-case selection.
	assert.True(t, RiskCritical.Order() > RiskHigh.Order())
	assert.True(t, RiskHigh.Order() > RiskModerate.Order())
	assert.True(t, RiskModerate.Order() > RiskNormal.Order())
}

func TestParseRiskLevel(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  RiskLevel
	}{
		{"known tier", "CRITICAL", RiskCritical},
		{"moderate", "MODERATE", RiskModerate},
		{"unknown defaults to NORMAL", "EXTREME", RiskNormal},
		{"empty defaults to NORMAL", "", RiskNormal},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ParseRiskLevel(tt.input))
		})
	}
}

func TestGenotypeClassIsValid(t *testing.T) {
	assert.True(t, GenotypeHomRef.IsValid())
	assert.True(t, GenotypeHet.IsValid())
	assert.True(t, GenotypeHomRisk.IsValid())
	assert.False(t, GenotypeClass("2/2").IsValid())
	assert.False(t, GenotypeClass("").IsValid())
}
