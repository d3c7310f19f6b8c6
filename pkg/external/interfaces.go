// Package external integrates the narrative-explanation collaborator: an
// HTTP text-generation service that turns risk results into clinician-facing
// prose. Every call path degrades gracefully; analysis never depends on it.
package external

import (
	"context"
	"time"

	"github.com/pharmaguard-server/internal/domain"
)

// ExplanationClient is the raw transport to the collaborator service.
type ExplanationClient interface {
	Explain(ctx context.Context, result *domain.DrugRiskResult) (*domain.LLMExplanation, error)
}

// ExplanationCache stores generated explanations keyed by assessment
// identity so repeated analyses avoid collaborator round trips.
type ExplanationCache interface {
	GetExplanation(ctx context.Context, result *domain.DrugRiskResult) (*domain.LLMExplanation, bool, error)
	SetExplanation(ctx context.Context, result *domain.DrugRiskResult, explanation *domain.LLMExplanation, ttl time.Duration) error
	Ping(ctx context.Context) error
	Close() error
}
