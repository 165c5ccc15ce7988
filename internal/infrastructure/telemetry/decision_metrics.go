// Package telemetry records origination metrics through OpenTelemetry.
package telemetry

import (
	"context"
	"fmt"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"

	"github.com/optic/loan-origination/internal/domain/model"
	"github.com/optic/loan-origination/internal/domain/port"
)

var _ port.DecisionRecorder = (*DecisionMetrics)(nil)

// DecisionMetrics counts risk decisions by operation, status and tier, and
// separately counts decisions taken on the fallback assessment.
type DecisionMetrics struct {
	decisions metric.Int64Counter
	fallbacks metric.Int64Counter
	financed  metric.Float64Histogram
}

// NewDecisionMetrics registers the instruments on meter.
func NewDecisionMetrics(meter metric.Meter) (*DecisionMetrics, error) {
	decisions, err := meter.Int64Counter(
		"origination_decisions_total",
		metric.WithDescription("Loan decisions taken, by operation, status and risk tier"),
	)
	if err != nil {
		return nil, fmt.Errorf("create decisions counter: %w", err)
	}

	fallbacks, err := meter.Int64Counter(
		"origination_risk_fallbacks_total",
		metric.WithDescription("Decisions taken without a usable risk assessment"),
	)
	if err != nil {
		return nil, fmt.Errorf("create fallbacks counter: %w", err)
	}

	financed, err := meter.Float64Histogram(
		"origination_financed_amount",
		metric.WithDescription("Financed amount of approved decisions"),
		metric.WithExplicitBucketBoundaries(1_000, 5_000, 10_000, 50_000, 100_000, 250_000, 500_000, 1_000_000),
	)
	if err != nil {
		return nil, fmt.Errorf("create financed histogram: %w", err)
	}

	return &DecisionMetrics{decisions: decisions, fallbacks: fallbacks, financed: financed}, nil
}

func (m *DecisionMetrics) RecordDecision(ctx context.Context, operation string, d model.Decision) {
	attrs := metric.WithAttributes(
		attribute.String("operation", operation),
		attribute.String("status", d.Status.String()),
		attribute.String("risk_tier", d.Tier.String()),
	)
	m.decisions.Add(ctx, 1, attrs)

	if d.Fallback {
		m.fallbacks.Add(ctx, 1, metric.WithAttributes(attribute.String("operation", operation)))
	}
	if d.Approved() {
		m.financed.Record(ctx, d.Calculation.FinancedAmount.InexactFloat64(), metric.WithAttributes(
			attribute.String("operation", operation),
		))
	}
}
