package adapter

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/optic/loan-origination/internal/domain/port"
	"github.com/optic/loan-origination/internal/domain/valueobject"
)

var (
	_ port.RiskValidationGateway = (*CachedRiskGateway)(nil)
	_ port.RiskCache             = (*CachedRiskGateway)(nil)
)

const riskCachePrefix = "origination:risk:"

// CachedRiskGateway is a read-through Redis cache in front of another
// gateway. Only successful lookups are cached, so a failure is retried on
// the next request. Cache faults are logged and bypassed.
type CachedRiskGateway struct {
	next   port.RiskValidationGateway
	rdb    redis.UniversalClient
	ttl    time.Duration
	logger *slog.Logger
}

// NewCachedRiskGateway wraps next with a cache holding entries for ttl.
func NewCachedRiskGateway(next port.RiskValidationGateway, rdb redis.UniversalClient, ttl time.Duration, logger *slog.Logger) *CachedRiskGateway {
	if logger == nil {
		logger = slog.Default()
	}
	return &CachedRiskGateway{next: next, rdb: rdb, ttl: ttl, logger: logger}
}

type cachedAssessment struct {
	Document string `json:"document"`
	Level    int    `json:"level"`
	Verdict  string `json:"verdict"`
}

// Assess serves from cache when possible.
func (g *CachedRiskGateway) Assess(ctx context.Context, document string) (valueobject.RiskAssessment, error) {
	key := riskCachePrefix + document

	raw, err := g.rdb.Get(ctx, key).Bytes()
	switch {
	case err == nil:
		var c cachedAssessment
		if jsonErr := json.Unmarshal(raw, &c); jsonErr == nil {
			return valueobject.NewRiskAssessment(c.Document, valueobject.RiskTierFromLevel(&c.Level), c.Verdict), nil
		}
		g.logger.WarnContext(ctx, "discarding corrupt risk cache entry", "key", key)
	case !errors.Is(err, redis.Nil):
		g.logger.WarnContext(ctx, "risk cache read failed", "error", err)
	}

	a, err := g.next.Assess(ctx, document)
	if err != nil {
		return a, err
	}

	payload, err := json.Marshal(cachedAssessment{Document: a.Document(), Level: a.Tier().Level(), Verdict: a.Verdict()})
	if err == nil {
		if setErr := g.rdb.Set(ctx, key, payload, g.ttl).Err(); setErr != nil {
			g.logger.WarnContext(ctx, "risk cache write failed", "error", setErr)
		}
	}
	return a, nil
}

// Invalidate drops the cached answer for document.
func (g *CachedRiskGateway) Invalidate(ctx context.Context, document string) error {
	return g.rdb.Del(ctx, riskCachePrefix+document).Err()
}
