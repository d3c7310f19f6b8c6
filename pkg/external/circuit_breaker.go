package external

import (
	"context"
	"fmt"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/sony/gobreaker"

	"github.com/pharmaguard-server/internal/domain"
)

// ResilientExplainer wraps the collaborator client with a circuit breaker
// and an optional Redis cache. When the breaker is open, cached
// explanations still serve; otherwise the caller gets an error and must
// omit the explanation block.
type ResilientExplainer struct {
	client  ExplanationClient
	cache   ExplanationCache
	breaker *gobreaker.CircuitBreaker
	logger  *logrus.Logger
}

// NewResilientExplainer creates a resilient explanation service. The cache
// may be nil, in which case every call goes to the collaborator.
func NewResilientExplainer(client ExplanationClient, cache ExplanationCache, logger *logrus.Logger) *ResilientExplainer {
	breaker := gobreaker.NewCircuitBreaker(gobreaker.Settings{
		Name:        "Explainer",
		MaxRequests: 5,
		Interval:    30 * time.Second,
		Timeout:     60 * time.Second,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			failureRatio := float64(counts.TotalFailures) / float64(counts.Requests)
			return counts.Requests >= 3 && failureRatio >= 0.6
		},
		OnStateChange: func(name string, from gobreaker.State, to gobreaker.State) {
			logger.WithFields(logrus.Fields{
				"breaker": name,
				"from":    from.String(),
				"to":      to.String(),
			}).Warn("Circuit breaker state changed")
		},
	})

	return &ResilientExplainer{
		client:  client,
		cache:   cache,
		breaker: breaker,
		logger:  logger,
	}
}

// Explain produces a narrative explanation with caching and circuit
// breaking. Implements domain.ExplanationService.
func (r *ResilientExplainer) Explain(ctx context.Context, result *domain.DrugRiskResult) (*domain.LLMExplanation, error) {
	// Check cache first
	if r.cache != nil {
		if cached, found, err := r.cache.GetExplanation(ctx, result); err == nil && found {
			return cached, nil
		}
	}

	// Use circuit breaker
	out, err := r.breaker.Execute(func() (interface{}, error) {
		return r.client.Explain(ctx, result)
	})

	if err != nil {
		// Check if circuit breaker is open and return cached data if available
		if err == gobreaker.ErrOpenState {
			if r.cache != nil {
				if cached, found, cacheErr := r.cache.GetExplanation(ctx, result); cacheErr == nil && found {
					return cached, nil
				}
			}
			return nil, fmt.Errorf("explanation service unavailable (circuit breaker open)")
		}
		return nil, fmt.Errorf("explanation request failed: %w", err)
	}

	explanation := out.(*domain.LLMExplanation)

	// Cache the result
	if r.cache != nil {
		if cacheErr := r.cache.SetExplanation(ctx, result, explanation, 0); cacheErr != nil {
			// Cache failures never fail the request
			r.logger.WithError(cacheErr).Warn("Failed to cache explanation")
		}
	}

	return explanation, nil
}

// BreakerCounts returns the circuit breaker counters for monitoring.
func (r *ResilientExplainer) BreakerCounts() gobreaker.Counts {
	return r.breaker.Counts()
}

// BreakerState returns the current circuit breaker state.
func (r *ResilientExplainer) BreakerState() gobreaker.State {
	return r.breaker.State()
}

// Close releases cache resources.
func (r *ResilientExplainer) Close() error {
	if r.cache != nil {
		return r.cache.Close()
	}
	return nil
}
