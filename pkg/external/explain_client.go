package external

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"golang.org/x/time/rate"

	"github.com/pharmaguard-server/internal/domain"
)

// HTTPExplainClient calls the collaborator's completion endpoint over HTTP
// JSON. Requests are rate limited client-side to respect the service quota.
type HTTPExplainClient struct {
	httpClient  *http.Client
	baseURL     string
	apiKey      string
	rateLimiter *rate.Limiter
}

// explainRequest is the wire request sent to the collaborator.
type explainRequest struct {
	Drug           string `json:"drug"`
	Gene           string `json:"gene"`
	Variant        string `json:"variant,omitempty"`
	RSID           string `json:"rsid,omitempty"`
	Genotype       string `json:"genotype,omitempty"`
	RiskLevel      string `json:"risk_level"`
	Phenotype      string `json:"phenotype"`
	Recommendation string `json:"recommendation"`
}

// explainResponse is the wire response from the collaborator.
type explainResponse struct {
	Summary              string   `json:"summary"`
	BiologicalMechanism  string   `json:"biological_mechanism"`
	ClinicalSignificance string   `json:"clinical_significance"`
	VariantCitations     []string `json:"variant_citations"`
}

// NewHTTPExplainClient creates a new collaborator client from configuration.
func NewHTTPExplainClient(config domain.ExplainerConfig) *HTTPExplainClient {
	timeout := config.Timeout
	if timeout == 0 {
		timeout = 30 * time.Second
	}
	return &HTTPExplainClient{
		httpClient:  &http.Client{Timeout: timeout},
		baseURL:     config.BaseURL,
		apiKey:      config.APIKey,
		rateLimiter: rate.NewLimiter(rate.Limit(config.RateLimit), config.RateLimit),
	}
}

// Explain requests a narrative explanation for one risk result.
func (c *HTTPExplainClient) Explain(ctx context.Context, result *domain.DrugRiskResult) (*domain.LLMExplanation, error) {
	if err := c.rateLimiter.Wait(ctx); err != nil {
		return nil, fmt.Errorf("rate limiter wait failed: %w", err)
	}

	payload := explainRequest{
		Drug:           result.DrugName,
		Gene:           result.Gene,
		Variant:        result.Variant,
		RSID:           result.RSID,
		Genotype:       result.Genotype,
		RiskLevel:      result.RiskLevel.String(),
		Phenotype:      result.Phenotype,
		Recommendation: result.Recommendation,
	}

	body, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal explain request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/v1/explanations", bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("failed to create explain request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	if c.apiKey != "" {
		req.Header.Set("Authorization", "Bearer "+c.apiKey)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("explain request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("explain service returned status %d", resp.StatusCode)
	}

	var wire explainResponse
	if err := json.NewDecoder(resp.Body).Decode(&wire); err != nil {
		return nil, fmt.Errorf("failed to decode explain response: %w", err)
	}

	citations := wire.VariantCitations
	if citations == nil {
		citations = []string{}
	}

	return &domain.LLMExplanation{
		Summary:              wire.Summary,
		BiologicalMechanism:  wire.BiologicalMechanism,
		ClinicalSignificance: wire.ClinicalSignificance,
		VariantCitations:     citations,
	}, nil
}
