package telemetry

import (
	"context"
	"fmt"
	"math"
	"sync/atomic"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"

	"github.com/san-kum/rovsim/internal/sim"
)

// Recorder exports per-tick simulation metrics through OpenTelemetry. It is
// a sim.Observer and sim.SkipObserver.
type Recorder struct {
	attrs metric.MeasurementOption

	steps   metric.Int64Counter
	skipped metric.Int64Counter
	speed   metric.Float64Histogram
	depth   metric.Float64ObservableGauge

	lastDepth atomic.Uint64
	nSteps    atomic.Int64
	nSkipped  atomic.Int64
}

// NewRecorder uses the global meter. integrator tags every measurement.
func NewRecorder(integrator string) (*Recorder, error) {
	return NewRecorderWithMeter(meter(), integrator)
}

func NewRecorderWithMeter(m metric.Meter, integrator string) (*Recorder, error) {
	r := &Recorder{
		attrs: metric.WithAttributes(attribute.String("integrator", integrator)),
	}

	var err error
	r.steps, err = m.Int64Counter(
		"rovsim.sim.steps",
		metric.WithDescription("Simulation steps observed"),
	)
	if err != nil {
		return nil, fmt.Errorf("creating steps counter: %w", err)
	}

	r.skipped, err = m.Int64Counter(
		"rovsim.engine.skipped",
		metric.WithDescription("Commits refused for non-finite state"),
	)
	if err != nil {
		return nil, fmt.Errorf("creating skipped counter: %w", err)
	}

	r.speed, err = m.Float64Histogram(
		"rovsim.vehicle.speed",
		metric.WithDescription("Vehicle speed per step"),
		metric.WithUnit("m/s"),
	)
	if err != nil {
		return nil, fmt.Errorf("creating speed histogram: %w", err)
	}

	r.depth, err = m.Float64ObservableGauge(
		"rovsim.vehicle.depth",
		metric.WithDescription("Latest vehicle depth"),
		metric.WithUnit("m"),
	)
	if err != nil {
		return nil, fmt.Errorf("creating depth gauge: %w", err)
	}

	_, err = m.RegisterCallback(
		func(ctx context.Context, o metric.Observer) error {
			o.ObserveFloat64(r.depth, r.Depth(), r.attrs)
			return nil
		},
		r.depth,
	)
	if err != nil {
		return nil, fmt.Errorf("registering depth callback: %w", err)
	}

	return r, nil
}

func (r *Recorder) OnStep(s sim.Sample) {
	ctx := context.Background()
	r.steps.Add(ctx, 1, r.attrs)
	r.speed.Record(ctx, s.Speed(), r.attrs)
	r.lastDepth.Store(math.Float64bits(s.Depth()))
	r.nSteps.Add(1)
}

func (r *Recorder) OnSkip(step int, err error) {
	r.skipped.Add(context.Background(), 1, r.attrs)
	r.nSkipped.Add(1)
}

func (r *Recorder) Steps() int64   { return r.nSteps.Load() }
func (r *Recorder) Skipped() int64 { return r.nSkipped.Load() }
func (r *Recorder) Depth() float64 { return math.Float64frombits(r.lastDepth.Load()) }
