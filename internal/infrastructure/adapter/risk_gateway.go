package adapter

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"math"
	"math/rand/v2"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/optic/loan-origination/internal/domain/port"
	"github.com/optic/loan-origination/internal/domain/valueobject"
)

// Compile-time interface check.
var _ port.RiskValidationGateway = (*HTTPRiskGateway)(nil)

// ---------------------------------------------------------------------------
// HTTP risk validation gateway
// ---------------------------------------------------------------------------

var (
	// ErrNoAssessment means the service answered but knew nothing of the document.
	ErrNoAssessment = errors.New("risk service returned no assessment")
	errRetryable    = errors.New("retryable")
)

// RiskGatewayConfig holds configuration for HTTPRiskGateway.
type RiskGatewayConfig struct {
	// BaseURL is the service root; lookups go to {BaseURL}/validaciones.
	BaseURL string
	// Timeout bounds each attempt.
	Timeout time.Duration
	// MaxRetries is the number of attempts after the first one.
	MaxRetries int
	// RetryBackoff is the base delay, doubled per attempt, plus jitter.
	RetryBackoff time.Duration
}

// HTTPRiskGateway looks up risk assessments over HTTP. Transport failures
// and 5xx answers are retried with exponential backoff; everything else
// fails at once.
type HTTPRiskGateway struct {
	config RiskGatewayConfig
	client *http.Client
}

// NewHTTPRiskGateway creates a gateway. A nil client gets a default one.
func NewHTTPRiskGateway(cfg RiskGatewayConfig, client *http.Client) *HTTPRiskGateway {
	if cfg.Timeout <= 0 {
		cfg.Timeout = 5 * time.Second
	}
	if cfg.RetryBackoff <= 0 {
		cfg.RetryBackoff = 100 * time.Millisecond
	}
	if client == nil {
		client = &http.Client{}
	}
	cfg.BaseURL = strings.TrimRight(cfg.BaseURL, "/")
	return &HTTPRiskGateway{config: cfg, client: client}
}

// validationRecord is one element of the service's JSON array. riesgo has
// been seen both as a number and as a numeric string.
type validationRecord struct {
	DNI       string          `json:"dni"`
	Riesgo    json.RawMessage `json:"riesgo"`
	Resultado string          `json:"resultado_validacion"`
}

// Assess returns the first record the service holds for document.
func (g *HTTPRiskGateway) Assess(ctx context.Context, document string) (valueobject.RiskAssessment, error) {
	if document == "" {
		return valueobject.RiskAssessment{}, fmt.Errorf("document is required")
	}

	var lastErr error
	for attempt := 0; attempt <= g.config.MaxRetries; attempt++ {
		if attempt > 0 {
			// Exponential backoff with jitter.
			backoff := g.config.RetryBackoff * time.Duration(1<<uint(attempt-1))
			jitter := time.Duration(rand.Int64N(int64(backoff)/2 + 1))
			select {
			case <-ctx.Done():
				return valueobject.RiskAssessment{}, ctx.Err()
			case <-time.After(backoff + jitter):
			}
		}

		a, err := g.fetch(ctx, document)
		if err == nil {
			return a, nil
		}
		lastErr = err
		if !errors.Is(err, errRetryable) {
			break
		}
	}

	return valueobject.RiskAssessment{}, fmt.Errorf("risk validation for document failed: %w", lastErr)
}

func (g *HTTPRiskGateway) fetch(ctx context.Context, document string) (valueobject.RiskAssessment, error) {
	ctx, cancel := context.WithTimeout(ctx, g.config.Timeout)
	defer cancel()

	endpoint := g.config.BaseURL + "/validaciones?dni=" + url.QueryEscape(document)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return valueobject.RiskAssessment{}, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := g.client.Do(req)
	if err != nil {
		return valueobject.RiskAssessment{}, fmt.Errorf("%w: risk API request failed: %w", errRetryable, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return valueobject.RiskAssessment{}, fmt.Errorf("%w: failed to read response body: %w", errRetryable, err)
	}

	switch {
	case resp.StatusCode >= 500 || resp.StatusCode == http.StatusTooManyRequests:
		return valueobject.RiskAssessment{}, fmt.Errorf("%w: risk API error (status %d)", errRetryable, resp.StatusCode)
	case resp.StatusCode == http.StatusNotFound:
		return valueobject.RiskAssessment{}, ErrNoAssessment
	case resp.StatusCode < 200 || resp.StatusCode >= 300:
		return valueobject.RiskAssessment{}, fmt.Errorf("risk API error (status %d): %s", resp.StatusCode, string(body))
	}

	var records []validationRecord
	if err := json.Unmarshal(body, &records); err != nil {
		return valueobject.RiskAssessment{}, fmt.Errorf("failed to parse response: %w", err)
	}
	if len(records) == 0 {
		return valueobject.RiskAssessment{}, ErrNoAssessment
	}

	rec := records[0]
	level, err := parseLevel(rec.Riesgo)
	if err != nil {
		return valueobject.RiskAssessment{}, fmt.Errorf("failed to parse riesgo: %w", err)
	}
	doc := rec.DNI
	if doc == "" {
		doc = document
	}
	return valueobject.NewRiskAssessment(doc, valueobject.RiskTierFromLevel(level), rec.Resultado), nil
}

// parseLevel reads riesgo as a JSON number or numeric string. Null or absent
// yields nil, which maps to the high tier.
func parseLevel(raw json.RawMessage) (*int, error) {
	s := strings.TrimSpace(string(raw))
	if s == "" || s == "null" {
		return nil, nil
	}
	if unq, err := strconv.Unquote(s); err == nil {
		s = strings.TrimSpace(unq)
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil || math.IsNaN(f) || math.IsInf(f, 0) {
		return nil, fmt.Errorf("not a number: %s", string(raw))
	}
	level := int(math.Trunc(f))
	return &level, nil
}
