package kb

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pharmaguard-server/internal/domain"
)

func TestDefaultLoadsEmbeddedDatabase(t *testing.T) {
	db, err := Default()
	require.NoError(t, err)
	require.NotNil(t, db)

	assert.NotEmpty(t, db.Version())

	drugs := db.ListDrugs()
	assert.GreaterOrEqual(t, len(drugs), 10)

	ids := make(map[string]bool)
	for _, d := range drugs {
		ids[d.ID] = true
		assert.NotEmpty(t, d.Name)
		assert.NotEmpty(t, d.Category)
	}
	assert.True(t, ids["warfarin"])
	assert.True(t, ids["clopidogrel"])
}

func TestDefaultReturnsSameInstance(t *testing.T) {
	first, err := Default()
	require.NoError(t, err)

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			db, err := Default()
			assert.NoError(t, err)
			assert.Same(t, first, db)
		}()
	}
	wg.Wait()
}

func TestDrugLookup(t *testing.T) {
	db, err := Default()
	require.NoError(t, err)

	entry, ok := db.Drug("warfarin")
	require.True(t, ok)
	assert.Equal(t, "Warfarin", entry.Name)
	require.NotEmpty(t, entry.Interactions)

	// Every interaction must define the 0/0 fallback.
	for _, interaction := range entry.Interactions {
		_, hasFallback := interaction.Phenotypes[domain.GenotypeHomRef.String()]
		assert.True(t, hasFallback, "interaction %s missing 0/0 entry", interaction.RSID)
	}

	_, ok = db.Drug("zzz-unknown-drug")
	assert.False(t, ok)
}

func TestKnownRSID(t *testing.T) {
	db, err := Default()
	require.NoError(t, err)

	assert.True(t, db.KnownRSID("rs1799853"))
	assert.True(t, db.KnownRSID("rs4244285"))
	assert.False(t, db.KnownRSID("rs0000000"))
	assert.False(t, db.KnownRSID(""))
}

func TestParseRejectsMalformedData(t *testing.T) {
	tests := []struct {
		name string
		data string
	}{
		{"invalid JSON", `{"version": "x", "drugs":`},
		{"no drugs", `{"version": "x", "drugs": {}}`},
		{
			"missing 0/0 fallback",
			`{"version": "x", "drugs": {"drugx": {"name": "DrugX", "category": "Test", "interactions": [
				{"rsid": "rs1", "gene": "GENE1", "risk_allele": "T", "phenotypes": {"0/1": {"level": "HIGH"}}}
			]}}}`,
		},
		{
			"interaction without rsid",
			`{"version": "x", "drugs": {"drugx": {"name": "DrugX", "category": "Test", "interactions": [
				{"rsid": "", "gene": "GENE1", "risk_allele": "T", "phenotypes": {"0/0": {"level": "NORMAL"}}}
			]}}}`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Parse([]byte(tt.data))
			require.Error(t, err)
			assert.ErrorIs(t, err, domain.ErrKnowledgeBaseLoad)
		})
	}
}
