package metrics

import (
	"context"
	"fmt"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/metric/noop"
)

// MeterName is the instrumentation scope of every application instrument.
const MeterName = "devconnector"

// AppMetrics holds the application's metric instruments.
// All methods are safe to call on a nil *AppMetrics.
type AppMetrics struct {
	RegisterRequestsTotal   metric.Int64Counter
	RegisterDurationSeconds metric.Float64Histogram
	LoginRequestsTotal      metric.Int64Counter
	AuthFailuresTotal       metric.Int64Counter
	PostMutationsTotal      metric.Int64Counter
	VersionConflictsTotal   metric.Int64Counter
	AccountDeletionsTotal   metric.Int64Counter
}

// New creates the instruments on meter.
func New(meter metric.Meter) (*AppMetrics, error) {
	m := &AppMetrics{}
	var err error

	if m.RegisterRequestsTotal, err = meter.Int64Counter(
		"register_requests_total",
		metric.WithDescription("Total number of register requests completed"),
		metric.WithUnit("{request}"),
	); err != nil {
		return nil, fmt.Errorf("metrics: register_requests_total: %w", err)
	}

	if m.RegisterDurationSeconds, err = meter.Float64Histogram(
		"register_duration_seconds",
		metric.WithDescription("Duration of register requests in seconds"),
		metric.WithUnit("s"),
	); err != nil {
		return nil, fmt.Errorf("metrics: register_duration_seconds: %w", err)
	}

	if m.LoginRequestsTotal, err = meter.Int64Counter(
		"login_requests_total",
		metric.WithDescription("Total number of login attempts by outcome"),
		metric.WithUnit("{request}"),
	); err != nil {
		return nil, fmt.Errorf("metrics: login_requests_total: %w", err)
	}

	if m.AuthFailuresTotal, err = meter.Int64Counter(
		"auth_failures_total",
		metric.WithDescription("Requests rejected by the auth gate"),
		metric.WithUnit("{request}"),
	); err != nil {
		return nil, fmt.Errorf("metrics: auth_failures_total: %w", err)
	}

	if m.PostMutationsTotal, err = meter.Int64Counter(
		"post_mutations_total",
		metric.WithDescription("Successful post mutations by operation"),
		metric.WithUnit("{mutation}"),
	); err != nil {
		return nil, fmt.Errorf("metrics: post_mutations_total: %w", err)
	}

	if m.VersionConflictsTotal, err = meter.Int64Counter(
		"version_conflicts_total",
		metric.WithDescription("Optimistic concurrency conflicts by resource"),
		metric.WithUnit("{conflict}"),
	); err != nil {
		return nil, fmt.Errorf("metrics: version_conflicts_total: %w", err)
	}

	if m.AccountDeletionsTotal, err = meter.Int64Counter(
		"account_deletions_total",
		metric.WithDescription("Account deletions by outcome"),
		metric.WithUnit("{deletion}"),
	); err != nil {
		return nil, fmt.Errorf("metrics: account_deletions_total: %w", err)
	}

	return m, nil
}

// NewNoop returns instruments that record nothing.
func NewNoop() *AppMetrics {
	m, _ := New(noop.NewMeterProvider().Meter(MeterName))
	return m
}

func outcome(ok bool) metric.MeasurementOption {
	v := "success"
	if !ok {
		v = "failure"
	}
	return metric.WithAttributes(attribute.String("outcome", v))
}

// Registered records a finished registration and how long it took.
func (m *AppMetrics) Registered(ctx context.Context, ok bool, started time.Time) {
	if m == nil {
		return
	}
	m.RegisterRequestsTotal.Add(ctx, 1, outcome(ok))
	m.RegisterDurationSeconds.Record(ctx, time.Since(started).Seconds(), outcome(ok))
}

// LoggedIn records a login attempt.
func (m *AppMetrics) LoggedIn(ctx context.Context, ok bool) {
	if m == nil {
		return
	}
	m.LoginRequestsTotal.Add(ctx, 1, outcome(ok))
}

// AuthRejected records a request turned away by the auth gate.
func (m *AppMetrics) AuthRejected(ctx context.Context, reason string) {
	if m == nil {
		return
	}
	m.AuthFailuresTotal.Add(ctx, 1, metric.WithAttributes(attribute.String("reason", reason)))
}

// PostMutated records a successful post mutation such as "like" or "comment".
func (m *AppMetrics) PostMutated(ctx context.Context, op string) {
	if m == nil {
		return
	}
	m.PostMutationsTotal.Add(ctx, 1, metric.WithAttributes(attribute.String("op", op)))
}

// Conflict records a lost optimistic write on resource.
func (m *AppMetrics) Conflict(ctx context.Context, resource string) {
	if m == nil {
		return
	}
	m.VersionConflictsTotal.Add(ctx, 1, metric.WithAttributes(attribute.String("resource", resource)))
}

// AccountDeleted records the outcome of an account deletion.
func (m *AppMetrics) AccountDeleted(ctx context.Context, ok bool) {
	if m == nil {
		return
	}
	m.AccountDeletionsTotal.Add(ctx, 1, outcome(ok))
}
