package sim

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/rs/zerolog"
	"github.com/san-kum/rovsim/internal/engine"
	"github.com/san-kum/rovsim/internal/orient"
	"github.com/san-kum/rovsim/internal/scene"
	"github.com/san-kum/rovsim/internal/setpoint"
	"github.com/san-kum/rovsim/internal/vehicle"
)

// Simulator drives one scene containing a tracked vehicle.
type Simulator struct {
	scene     *scene.Context
	rov       *vehicle.ROV
	board     *setpoint.Board
	pilot     Pilot
	metrics   []Metric
	observers []Observer
	log       zerolog.Logger
}

func New(c *scene.Context, rov *vehicle.ROV, board *setpoint.Board, pilot Pilot) *Simulator {
	return &Simulator{
		scene: c,
		rov:   rov,
		board: board,
		pilot: pilot,
		log:   c.Logger.With().Str("component", "sim").Logger(),
	}
}

func (s *Simulator) AddMetric(m Metric)     { s.metrics = append(s.metrics, m) }
func (s *Simulator) AddObserver(o Observer) { s.observers = append(s.observers, o) }

func (s *Simulator) Scene() *scene.Context  { return s.scene }
func (s *Simulator) Vehicle() *vehicle.ROV  { return s.rov }
func (s *Simulator) Board() *setpoint.Board { return s.board }

// Sample reads the committed vehicle state.
func (s *Simulator) Sample() (Sample, error) {
	hull := s.rov.Hull()
	pose, err := hull.Pose()
	if err != nil {
		return Sample{}, err
	}
	pos, err := hull.WorldPosition()
	if err != nil {
		return Sample{}, err
	}
	st := hull.RigidBody()

	x, y, z := orient.EulerDeg(pose.Orientation)
	return Sample{
		Time:            s.scene.Elapsed(),
		Position:        pos,
		Orientation:     pose.Orientation,
		Euler:           [3]float64{x, y, z},
		LinearVelocity:  st.LinearVelocity,
		AngularVelocity: st.AngularVelocity,
		Power:           s.rov.Power(),
		Thrust:          s.rov.Thrust(),
		KineticEnergy:   st.KineticEnergy(),
	}, nil
}

// Step steers, ticks the scene once and returns the new sample.
func (s *Simulator) Step(dt float64) (Sample, engine.Report, error) {
	cur, err := s.Sample()
	if err != nil {
		return Sample{}, engine.Report{}, err
	}
	if s.pilot != nil {
		s.pilot.Steer(cur, s.board)
	}

	report, err := s.scene.Tick(dt)
	if err != nil {
		return cur, report, err
	}
	next, err := s.Sample()
	return next, report, err
}

func (s *Simulator) Run(ctx context.Context, cfg Config) (*Result, error) {
	if err := validateConfig(cfg); err != nil {
		return nil, err
	}

	steps := int(cfg.Duration/cfg.Dt + 1e-9)
	result := &Result{
		Samples: make([]Sample, 0, steps+1),
		Metrics: make(map[string]float64),
	}

	for _, m := range s.metrics {
		m.Reset()
	}

	first, err := s.Sample()
	if err != nil {
		return nil, err
	}
	result.Samples = append(result.Samples, first)

	pace := s.pacer(cfg)
	defer pace.stop()

	x := first
	for i := 0; i < steps; i++ {
		select {
		case <-ctx.Done():
			return result, ctx.Err()
		default:
		}

		for _, m := range s.metrics {
			m.Observe(x)
		}
		for _, obs := range s.observers {
			obs.OnStep(x)
		}

		next, report, err := s.Step(cfg.Dt)
		if err != nil {
			return result, &SimulationError{Step: i, Time: x.Time, Wrapped: err}
		}
		if len(report.Skipped) > 0 {
			result.Skipped++
			serr := &SimulationError{Step: i, Time: x.Time, Wrapped: errors.Join(ErrUnstable, report.Err())}
			result.Errors = append(result.Errors, serr)
			s.log.Warn().Err(report.Err()).Int("step", i).Msg("vehicle commit skipped")
			s.notifySkip(i, serr)
			if cfg.ValidateState {
				break
			}
		}

		x = next
		result.StepsTaken++
		result.Samples = append(result.Samples, x)

		if err := pace.wait(ctx); err != nil {
			return result, err
		}
	}

	for _, m := range s.metrics {
		result.Metrics[m.Name()] = m.Value()
	}

	s.log.Debug().
		Int("steps", result.StepsTaken).
		Int("skipped", result.Skipped).
		Msg("run finished")

	return result, nil
}

func (s *Simulator) notifySkip(step int, err error) {
	for _, obs := range s.observers {
		if so, ok := obs.(SkipObserver); ok {
			so.OnSkip(step, err)
		}
	}
}

// RunWithCallback steps until ctx is done, the duration elapses (when
// positive) or callback returns false. Observers see every sample handed to
// callback and every refused commit.
func (s *Simulator) RunWithCallback(ctx context.Context, cfg Config, callback func(Sample) bool) error {
	if !(cfg.Dt > 0) {
		return fmt.Errorf("%w: dt must be positive, got %f", ErrInvalidConfig, cfg.Dt)
	}

	x, err := s.Sample()
	if err != nil {
		return err
	}

	pace := s.pacer(cfg)
	defer pace.stop()

	for i := 0; cfg.Duration <= 0 || x.Time < cfg.Duration; i++ {
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}

		for _, obs := range s.observers {
			obs.OnStep(x)
		}
		if !callback(x) {
			return nil
		}

		next, report, err := s.Step(cfg.Dt)
		if err != nil {
			return err
		}
		if len(report.Skipped) > 0 {
			serr := &SimulationError{Step: i, Time: x.Time, Wrapped: errors.Join(ErrUnstable, report.Err())}
			s.log.Warn().Err(report.Err()).Int("step", i).Msg("vehicle commit skipped")
			s.notifySkip(i, serr)
			if cfg.ValidateState {
				return serr
			}
		}
		x = next

		if err := pace.wait(ctx); err != nil {
			return err
		}
	}

	return nil
}

func validateConfig(cfg Config) error {
	if !(cfg.Dt > 0) {
		return fmt.Errorf("%w: dt must be positive, got %f", ErrInvalidConfig, cfg.Dt)
	}
	if !(cfg.Duration > 0) {
		return fmt.Errorf("%w: duration must be positive, got %f", ErrInvalidConfig, cfg.Duration)
	}
	return nil
}

type pacer struct {
	ticker *time.Ticker
}

func (s *Simulator) pacer(cfg Config) pacer {
	if !cfg.RealTime {
		return pacer{}
	}
	return pacer{ticker: time.NewTicker(time.Duration(cfg.Dt * float64(time.Second)))}
}

func (p pacer) wait(ctx context.Context) error {
	if p.ticker == nil {
		return nil
	}
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-p.ticker.C:
		return nil
	}
}

func (p pacer) stop() {
	if p.ticker != nil {
		p.ticker.Stop()
	}
}
