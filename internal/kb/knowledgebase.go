// Package kb loads and exposes the drug-gene interaction knowledge base.
// The data ships embedded in the binary as versioned JSON and is loaded at
// most once per process; the resulting view is immutable and safe for
// concurrent readers.
package kb

import (
	"encoding/json"
	"fmt"
	"sort"
	"sync"

	_ "embed"

	"github.com/pharmaguard-server/internal/domain"
)

//go:embed drug_gene_db.json
var rawDB []byte

// DB is an immutable view over the drug-gene interaction table, keyed by
// lower-cased drug identifiers. Construct via Default or Parse; never
// mutate after construction.
type DB struct {
	version    string
	drugs      map[string]domain.DrugEntry
	knownRSIDs map[string]struct{}
}

type dbFile struct {
	Version string                     `json:"version"`
	Drugs   map[string]domain.DrugEntry `json:"drugs"`
}

var (
	defaultOnce sync.Once
	defaultDB   *DB
	defaultErr  error
)

// Default returns the process-wide knowledge base backed by the embedded
// resource. The load happens exactly once; concurrent first callers share
// the same initialization.
func Default() (*DB, error) {
	defaultOnce.Do(func() {
		defaultDB, defaultErr = Parse(rawDB)
	})
	return defaultDB, defaultErr
}

// Parse builds a knowledge base from raw JSON. Used by Default and by tests
// that need a purpose-built table.
func Parse(data []byte) (*DB, error) {
	var file dbFile
	if err := json.Unmarshal(data, &file); err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrKnowledgeBaseLoad, err)
	}
	if len(file.Drugs) == 0 {
		return nil, fmt.Errorf("%w: no drugs defined", domain.ErrKnowledgeBaseLoad)
	}

	known := make(map[string]struct{})
	for key, entry := range file.Drugs {
		for _, interaction := range entry.Interactions {
			if interaction.RSID == "" {
				return nil, fmt.Errorf("%w: drug %q has an interaction without an rsID", domain.ErrKnowledgeBaseLoad, key)
			}
			if _, ok := interaction.Phenotypes[domain.GenotypeHomRef.String()]; !ok {
				return nil, fmt.Errorf("%w: drug %q interaction %s lacks the 0/0 fallback entry", domain.ErrKnowledgeBaseLoad, key, interaction.RSID)
			}
			known[interaction.RSID] = struct{}{}
		}
	}

	return &DB{
		version:    file.Version,
		drugs:      file.Drugs,
		knownRSIDs: known,
	}, nil
}

// Drug returns the entry for a lower-cased drug key.
func (db *DB) Drug(key string) (*domain.DrugEntry, bool) {
	entry, ok := db.drugs[key]
	if !ok {
		return nil, false
	}
	return &entry, true
}

// ListDrugs returns all supported drugs sorted by identifier.
func (db *DB) ListDrugs() []domain.DrugSummary {
	summaries := make([]domain.DrugSummary, 0, len(db.drugs))
	for id, entry := range db.drugs {
		summaries = append(summaries, domain.DrugSummary{
			ID:       id,
			Name:     entry.Name,
			Category: entry.Category,
		})
	}
	sort.Slice(summaries, func(i, j int) bool { return summaries[i].ID < summaries[j].ID })
	return summaries
}

// KnownRSID reports whether any interaction in the table references the
// given rsID, i.e. whether it is a known pharmacogenomic marker.
func (db *DB) KnownRSID(rsid string) bool {
	_, ok := db.knownRSIDs[rsid]
	return ok
}

// Version returns the version string of the loaded data resource.
func (db *DB) Version() string {
	return db.version
}
