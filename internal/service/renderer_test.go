package service

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pharmaguard-server/internal/domain"
	"github.com/pharmaguard-server/internal/kb"
)

func newTestRenderer(t *testing.T) *SchemaRendererService {
	t.Helper()
	db, err := kb.Default()
	require.NoError(t, err)
	resolver, err := NewDrugKeyResolver(testLogger(), 64)
	require.NoError(t, err)
	return NewSchemaRendererService(testLogger(), db, resolver)
}

func TestRenderWarfarinModerate(t *testing.T) {
	renderer := newTestRenderer(t)

	quality := 99.0
	variants := []domain.Variant{
		{
			Chrom: "chr10", Pos: 96702047, RSID: "rs1799853",
			Ref: "C", Alt: "T", Quality: &quality,
			FilterStatus: "PASS", Genotype: "0/1",
		},
	}
	results := []domain.AnalysisResult{
		{
			DrugRisk: domain.DrugRiskResult{
				DrugName:        "Warfarin",
				Gene:            "CYP2C9",
				Variant:         "C>T",
				RSID:            "rs1799853",
				Genotype:        "0/1",
				RiskLevel:       domain.RiskModerate,
				Phenotype:       "Intermediate Metabolizer (*1/*2)",
				Recommendation:  "Consider 25-50% dose reduction and monitor INR frequently during initiation.",
				EvidenceSources: []string{"CPIC Guideline for Warfarin and CYP2C9/VKORC1"},
			},
		},
	}

	output := renderer.Render(results, variants, "PATIENT_001")
	require.Len(t, output, 1)

	r := output[0]
	assert.Equal(t, "PATIENT_001", r.PatientID)
	assert.Equal(t, "Warfarin", r.Drug)

	parsed, err := time.Parse(time.RFC3339, r.Timestamp)
	require.NoError(t, err)
	assert.Equal(t, time.UTC, parsed.Location())

	assert.Equal(t, "Adjust Dosage", r.RiskAssessment.RiskLabel)
	assert.Equal(t, "moderate", r.RiskAssessment.Severity)
	assert.Equal(t, 0.85, r.RiskAssessment.ConfidenceScore)

	assert.Equal(t, "CYP2C9", r.PharmacogenomicProfile.PrimaryGene)
	assert.Equal(t, "*1/*2", r.PharmacogenomicProfile.Diplotype)
	assert.Equal(t, "IM", r.PharmacogenomicProfile.Phenotype)

	require.Len(t, r.PharmacogenomicProfile.DetectedVariants, 1)
	dv := r.PharmacogenomicProfile.DetectedVariants[0]
	assert.Equal(t, "rs1799853", dv.RSID)
	assert.Equal(t, "CYP2C9", dv.Gene)
	assert.Equal(t, "C>T", dv.AlleleChange)
	assert.Equal(t, "0/1", dv.Genotype)
	require.NotNil(t, dv.Quality)
	assert.Equal(t, 99.0, *dv.Quality)
	assert.Equal(t, "PASS", dv.FilterStatus)

	rec := r.ClinicalRecommendation
	require.NotNil(t, rec.DosageAdjustment)
	assert.Equal(t, "25-50% dose reduction", *rec.DosageAdjustment)
	require.NotNil(t, rec.Monitoring)
	assert.Equal(t, "Monitor INR closely", *rec.Monitoring)
	assert.Empty(t, rec.AlternativeDrugs)

	qm := r.QualityMetrics
	assert.True(t, qm.VCFParsingSuccess)
	assert.Equal(t, 1, qm.TotalVariantsParsed)
	assert.Equal(t, 1, qm.PharmacogenomicVariantsFound)
	assert.Equal(t, 0.85, qm.AnalysisConfidence)
	assert.Equal(t, 1.0, qm.GeneCoverage)
}

func TestRenderSharedTimestamp(t *testing.T) {
	renderer := newTestRenderer(t)

	results := []domain.AnalysisResult{
		{DrugRisk: domain.DrugRiskResult{DrugName: "Warfarin", RiskLevel: domain.RiskNormal}},
		{DrugRisk: domain.DrugRiskResult{DrugName: "Codeine", RiskLevel: domain.RiskNormal}},
	}

	output := renderer.Render(results, nil, "P1")
	require.Len(t, output, 2)
	assert.Equal(t, output[0].Timestamp, output[1].Timestamp)
}

func TestRenderNoDetectedVariants(t *testing.T) {
	renderer := newTestRenderer(t)

	results := []domain.AnalysisResult{
		{DrugRisk: domain.DrugRiskResult{
			DrugName:  "Warfarin",
			Gene:      "N/A",
			RiskLevel: domain.RiskNormal,
			Phenotype: "Normal Metabolizer",
		}},
	}

	output := renderer.Render(results, nil, "P1")
	require.Len(t, output, 1)

	r := output[0]
	assert.Equal(t, "Safe", r.RiskAssessment.RiskLabel)
	assert.Empty(t, r.PharmacogenomicProfile.DetectedVariants)
	assert.Equal(t, 0.0, r.QualityMetrics.GeneCoverage)
	assert.Equal(t, 0, r.QualityMetrics.PharmacogenomicVariantsFound)
}

func TestRenderFluorouracilAliasResolution(t *testing.T) {
	renderer := newTestRenderer(t)

	variants := []domain.Variant{
		{RSID: "rs3918290", Ref: "G", Alt: "A", Genotype: "0/1", FilterStatus: "PASS"},
	}
	results := []domain.AnalysisResult{
		{DrugRisk: domain.DrugRiskResult{
			DrugName:  "Fluorouracil (5-FU)",
			Gene:      "DPYD",
			RiskLevel: domain.RiskHigh,
			Phenotype: "Intermediate DPD activity (DPYD *1/*2A)",
		}},
	}

	output := renderer.Render(results, variants, "P1")
	require.Len(t, output, 1)

	// The display name with the "(5-FU)" alias must still resolve back to
	// its knowledge-base entry for detected-variant collection.
	require.Len(t, output[0].PharmacogenomicProfile.DetectedVariants, 1)
	assert.Equal(t, "rs3918290", output[0].PharmacogenomicProfile.DetectedVariants[0].RSID)
}

func TestRiskTierTables(t *testing.T) {
	tests := []struct {
		level      domain.RiskLevel
		label      string
		severity   string
		confidence float64
	}{
		{domain.RiskNormal, "Safe", "none", 0.95},
		{domain.RiskModerate, "Adjust Dosage", "moderate", 0.85},
		{domain.RiskHigh, "Toxic", "high", 0.80},
		{domain.RiskCritical, "Critical Risk", "critical", 0.90},
		{domain.RiskLevel("BOGUS"), "Safe", "none", 0.95},
	}

	for _, tt := range tests {
		t.Run(string(tt.level), func(t *testing.T) {
			assert.Equal(t, tt.label, labelFor(tt.level))
			assert.Equal(t, tt.severity, severityFor(tt.level))
			assert.Equal(t, tt.confidence, confidenceFor(tt.level))
		})
	}
}

func TestExtractDiplotype(t *testing.T) {
	tests := []struct {
		name      string
		phenotype string
		want      string
	}{
		{"explicit star pair", "Intermediate Metabolizer (*1/*2)", "*1/*2"},
		{"star pair with suffix", "Poor Metabolizer (*4/*4A)", "*4/*4A"},
		{"gene-prefixed pair falls to keywords", "Intermediate DPD activity (DPYD *1/*2A)", "*1/*2"},
		{"poor keyword", "Poor metabolizer phenotype", "*2/*2"},
		{"deficiency keyword", "Complete DPD deficiency", "*2/*2"},
		{"intermediate keyword", "Intermediate warfarin sensitivity", "*1/*2"},
		{"default", "HLA-B*57:01 negative", "*1/*1"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, extractDiplotype(tt.phenotype))
		})
	}
}

func TestAbbreviatePhenotype(t *testing.T) {
	tests := []struct {
		phenotype string
		want      string
	}{
		{"Ultra-rapid Metabolizer (*17/*17)", "URM"},
		{"Rapid Metabolizer (*1/*17)", "RM"},
		{"Poor Metabolizer (*2/*2)", "PM"},
		{"Complete DPD deficiency", "PM"},
		{"Intermediate Metabolizer (*1/*2)", "IM"},
		{"Normal Metabolizer (*1/*1)", "NM"},
		{"HLA-B*57:01 negative", "NM"},
		{"HLA-B*57:01 carrier", "PM"},
		{"HLA-B*57:01 homozygous carrier", "PM"},
		{"something else entirely", "Unknown"},
	}

	for _, tt := range tests {
		t.Run(tt.phenotype, func(t *testing.T) {
			assert.Equal(t, tt.want, abbreviatePhenotype(tt.phenotype))
		})
	}
}

func TestExtractDosageAdjustment(t *testing.T) {
	t.Run("percentage range", func(t *testing.T) {
		got := extractDosageAdjustment("Consider 25-50% dose reduction and monitor INR.")
		require.NotNil(t, got)
		assert.Equal(t, "25-50% dose reduction", *got)
	})

	t.Run("lower dose range", func(t *testing.T) {
		got := extractDosageAdjustment("Consider 20-40% lower starting dose.")
		require.NotNil(t, got)
		assert.Equal(t, "20-40% lower", *got)
	})

	t.Run("reduce dose by phrase", func(t *testing.T) {
		got := extractDosageAdjustment("Reduce dose by 30-70% and monitor CBC weekly.")
		require.NotNil(t, got)
		assert.Contains(t, *got, "Reduce dose by 30-70%")
	})

	t.Run("no dosing phrase", func(t *testing.T) {
		assert.Nil(t, extractDosageAdjustment("Use standard dosing guidelines."))
	})
}

func TestExtractAlternatives(t *testing.T) {
	t.Run("named alternatives title-cased", func(t *testing.T) {
		got := extractAlternatives("Use an alternative agent such as prasugrel or ticagrelor.")
		assert.Equal(t, []string{"Prasugrel", "Ticagrelor"}, got)
	})

	t.Run("statin alternatives", func(t *testing.T) {
		got := extractAlternatives("Prescribe pravastatin or rosuvastatin instead.")
		assert.Equal(t, []string{"Pravastatin", "Rosuvastatin"}, got)
	})

	t.Run("generic placeholder", func(t *testing.T) {
		got := extractAlternatives("Select an alternative anticonvulsant.")
		assert.Equal(t, []string{"Consult prescriber for alternatives"}, got)
	})

	t.Run("no mention", func(t *testing.T) {
		assert.Empty(t, extractAlternatives("Use standard dosing guidelines."))
	})
}

func TestExtractMonitoring(t *testing.T) {
	tests := []struct {
		name           string
		recommendation string
		want           string
		wantNil        bool
	}{
		{"inr", "Monitor INR closely during initiation.", "Monitor INR closely", false},
		{"cbc", "Monitor CBC weekly for myelosuppression.", "Monitor CBC weekly", false},
		{"trough", "Reduce dose and monitor trough levels.", "Monitor trough levels", false},
		{"generic", "Monitor analgesic response.", "Close clinical monitoring required", false},
		{"absent", "Use standard dosing guidelines.", "", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := extractMonitoring(tt.recommendation)
			if tt.wantNil {
				assert.Nil(t, got)
				return
			}
			require.NotNil(t, got)
			assert.Equal(t, tt.want, *got)
		})
	}
}
