// Package telemetry exposes task timer counters through OpenTelemetry.
package telemetry

import (
	"context"
	"fmt"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/exporters/otlp/otlpmetric/otlpmetrichttp"
	"go.opentelemetry.io/otel/metric"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
)

const meterName = "github.com/nick-dorsch/tasktimer"

// Metrics records timer activity. A nil *Metrics is valid and records
// nothing.
type Metrics struct {
	tasksAdded     metric.Int64Counter
	tasksDeleted   metric.Int64Counter
	ticks          metric.Int64Counter
	completions    metric.Int64Counter
	runningTimers  metric.Int64UpDownCounter
	rejectedInputs metric.Int64Counter
}

func NewMetrics(meter metric.Meter) (*Metrics, error) {
	m := &Metrics{}
	var err error

	if m.tasksAdded, err = meter.Int64Counter("tasktimer.tasks.added",
		metric.WithDescription("Tasks created")); err != nil {
		return nil, fmt.Errorf("failed to create counter: %w", err)
	}
	if m.tasksDeleted, err = meter.Int64Counter("tasktimer.tasks.deleted",
		metric.WithDescription("Tasks deleted")); err != nil {
		return nil, fmt.Errorf("failed to create counter: %w", err)
	}
	if m.ticks, err = meter.Int64Counter("tasktimer.ticks",
		metric.WithDescription("Countdown ticks applied"), metric.WithUnit("s")); err != nil {
		return nil, fmt.Errorf("failed to create counter: %w", err)
	}
	if m.completions, err = meter.Int64Counter("tasktimer.tasks.completed",
		metric.WithDescription("Countdowns that reached zero")); err != nil {
		return nil, fmt.Errorf("failed to create counter: %w", err)
	}
	if m.runningTimers, err = meter.Int64UpDownCounter("tasktimer.timers.running",
		metric.WithDescription("Timers currently counting down")); err != nil {
		return nil, fmt.Errorf("failed to create counter: %w", err)
	}
	if m.rejectedInputs, err = meter.Int64Counter("tasktimer.tasks.rejected",
		metric.WithDescription("Task names rejected as empty")); err != nil {
		return nil, fmt.Errorf("failed to create counter: %w", err)
	}
	return m, nil
}

// NewGlobalMetrics builds Metrics on the globally registered meter provider.
func NewGlobalMetrics() (*Metrics, error) {
	return NewMetrics(otel.Meter(meterName))
}

func (m *Metrics) TaskAdded(ctx context.Context) {
	if m != nil {
		m.tasksAdded.Add(ctx, 1)
	}
}

func (m *Metrics) TaskDeleted(ctx context.Context) {
	if m != nil {
		m.tasksDeleted.Add(ctx, 1)
	}
}

func (m *Metrics) TaskRejected(ctx context.Context) {
	if m != nil {
		m.rejectedInputs.Add(ctx, 1)
	}
}

func (m *Metrics) Tick(ctx context.Context) {
	if m != nil {
		m.ticks.Add(ctx, 1)
	}
}

func (m *Metrics) Completed(ctx context.Context) {
	if m != nil {
		m.completions.Add(ctx, 1)
	}
}

func (m *Metrics) TimerStarted(ctx context.Context) {
	if m != nil {
		m.runningTimers.Add(ctx, 1)
	}
}

func (m *Metrics) TimerStopped(ctx context.Context) {
	if m != nil {
		m.runningTimers.Add(ctx, -1)
	}
}

// Setup installs an OTLP/HTTP exporting meter provider when endpoint is set.
// With an empty endpoint the global no-op provider stays in place. The
// returned shutdown func is always safe to call.
func Setup(ctx context.Context, endpoint string, interval time.Duration) (func(context.Context) error, error) {
	if endpoint == "" {
		return func(context.Context) error { return nil }, nil
	}

	exporter, err := otlpmetrichttp.New(ctx,
		otlpmetrichttp.WithEndpoint(endpoint),
		otlpmetrichttp.WithInsecure(),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create metric exporter: %w", err)
	}

	var readerOpts []sdkmetric.PeriodicReaderOption
	if interval > 0 {
		readerOpts = append(readerOpts, sdkmetric.WithInterval(interval))
	}

	provider := sdkmetric.NewMeterProvider(
		sdkmetric.WithReader(sdkmetric.NewPeriodicReader(exporter, readerOpts...)),
	)
	otel.SetMeterProvider(provider)
	return provider.Shutdown, nil
}
