package external

import (
	"context"
	"crypto/sha256"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/pharmaguard-server/internal/domain"
)

// CacheClient wraps a Redis client with caching for collaborator responses.
type CacheClient struct {
	redis      *redis.Client
	defaultTTL time.Duration
}

// NewCacheClient creates a new cache client
func NewCacheClient(config domain.CacheConfig) (*CacheClient, error) {
	opts, err := redis.ParseURL(config.RedisURL)
	if err != nil {
		return nil, fmt.Errorf("failed to parse Redis URL: %w", err)
	}

	// Apply cache-specific configurations
	opts.PoolSize = config.PoolSize
	opts.PoolTimeout = config.PoolTimeout
	opts.MaxRetries = config.MaxRetries

	client := redis.NewClient(opts)

	// Test connection
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("failed to connect to Redis: %w", err)
	}

	return &CacheClient{
		redis:      client,
		defaultTTL: config.DefaultTTL,
	}, nil
}

// cachedExplanation represents a cached explanation with metadata.
type cachedExplanation struct {
	Data      *domain.LLMExplanation `json:"data"`
	CachedAt  time.Time              `json:"cached_at"`
	ExpiresAt time.Time              `json:"expires_at"`
}

// GetExplanation retrieves a cached explanation for a risk result.
func (c *CacheClient) GetExplanation(ctx context.Context, result *domain.DrugRiskResult) (*domain.LLMExplanation, bool, error) {
	key := c.generateExplanationKey(result)

	val, err := c.redis.Get(ctx, key).Result()
	if err == redis.Nil {
		return nil, false, nil // Cache miss
	}
	if err != nil {
		return nil, false, fmt.Errorf("failed to get explanation cache: %w", err)
	}

	var cached cachedExplanation
	if err := json.Unmarshal([]byte(val), &cached); err != nil {
		// Remove corrupted cache entry
		c.redis.Del(ctx, key)
		return nil, false, nil
	}

	// Check if expired
	if time.Now().After(cached.ExpiresAt) {
		c.redis.Del(ctx, key)
		return nil, false, nil
	}

	return cached.Data, true, nil
}

// SetExplanation caches an explanation for a risk result.
func (c *CacheClient) SetExplanation(ctx context.Context, result *domain.DrugRiskResult, explanation *domain.LLMExplanation, ttl time.Duration) error {
	if ttl == 0 {
		ttl = c.defaultTTL
	}

	key := c.generateExplanationKey(result)

	cached := cachedExplanation{
		Data:      explanation,
		CachedAt:  time.Now(),
		ExpiresAt: time.Now().Add(ttl),
	}

	jsonData, err := json.Marshal(cached)
	if err != nil {
		return fmt.Errorf("failed to marshal explanation cache data: %w", err)
	}

	return c.redis.Set(ctx, key, jsonData, ttl).Err()
}

// InvalidateExplanation removes the cached explanation for a risk result.
func (c *CacheClient) InvalidateExplanation(ctx context.Context, result *domain.DrugRiskResult) error {
	return c.redis.Del(ctx, c.generateExplanationKey(result)).Err()
}

// generateExplanationKey creates a standardized cache key for a risk result.
// Two results with the same drug, site, genotype, and tier share one entry.
func (c *CacheClient) generateExplanationKey(result *domain.DrugRiskResult) string {
	data := fmt.Sprintf("%s:%s:%s:%s:%s",
		result.DrugName, result.Gene, result.RSID, result.Genotype, result.RiskLevel)

	hash := sha256.Sum256([]byte(data))
	return fmt.Sprintf("explanation:%x", hash[:8]) // Use first 8 bytes of hash
}

// Ping checks if Redis connection is alive
func (c *CacheClient) Ping(ctx context.Context) error {
	return c.redis.Ping(ctx).Err()
}

// Close closes the Redis connection
func (c *CacheClient) Close() error {
	return c.redis.Close()
}
