// Package feedback provides clinician feedback storage for drug risk
// assessments. It stores agreements and corrections so recommendation
// quality can be reviewed over time. No patient genomic data is stored.
package feedback

import (
	"context"
	"io"
	"time"

	"github.com/pharmaguard-server/internal/domain"
)

// Feedback represents a clinician's feedback on a drug risk assessment.
type Feedback struct {
	ID            int64            `json:"id,omitempty"`
	Drug          string           `json:"drug"`           // Knowledge-base drug key
	Gene          string           `json:"gene"`           // Gene driving the assessment
	RSID          string           `json:"rsid"`           // Interaction site
	SuggestedRisk domain.RiskLevel `json:"suggested_risk"` // System's assessment
	ClinicianRisk domain.RiskLevel `json:"clinician_risk"` // Clinician's decision
	Agreed        bool             `json:"agreed"`         // Did the clinician agree?
	Notes         string           `json:"notes,omitempty"`
	CreatedAt     time.Time        `json:"created_at"`
	UpdatedAt     time.Time        `json:"updated_at"`
}

// Store defines the interface for feedback storage operations.
type Store interface {
	// Save stores or updates clinician feedback for an assessment.
	// If feedback for the same drug+rsid exists, it will be updated.
	Save(ctx context.Context, feedback *Feedback) error

	// Get retrieves the feedback for a drug and interaction site.
	// A nil result with nil error means no feedback is recorded.
	Get(ctx context.Context, drug, rsid string) (*Feedback, error)

	// List returns all feedback entries with pagination.
	List(ctx context.Context, limit, offset int) ([]*Feedback, error)

	// Count returns the total number of feedback entries.
	Count(ctx context.Context) (int64, error)

	// Delete removes a feedback entry by ID.
	Delete(ctx context.Context, id int64) error

	// ExportJSON exports all feedback to a JSON writer.
	ExportJSON(ctx context.Context, writer io.Writer) error

	// ImportJSON imports feedback from a JSON reader.
	// Returns the number of imported and skipped entries.
	ImportJSON(ctx context.Context, reader io.Reader) (imported int, skipped int, err error)

	// Close closes the store and releases resources.
	Close() error
}

// Export represents the JSON export format.
type Export struct {
	Version    string      `json:"version"`
	ExportedAt time.Time   `json:"exported_at"`
	Count      int         `json:"count"`
	Feedback   []*Feedback `json:"feedback"`
}
