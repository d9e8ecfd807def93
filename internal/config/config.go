package config

import (
	"fmt"
	"os"

	"github.com/go-gl/mathgl/mgl64"
	"gopkg.in/yaml.v3"

	"github.com/san-kum/rovsim/internal/control"
	"github.com/san-kum/rovsim/internal/hydro"
	"github.com/san-kum/rovsim/internal/integrators"
	"github.com/san-kum/rovsim/internal/orient"
	"github.com/san-kum/rovsim/internal/setpoint"
	"github.com/san-kum/rovsim/internal/sim"
	"github.com/san-kum/rovsim/internal/vehicle"
)

const (
	DefaultDt       = 0.01
	DefaultDuration = 10.0
	DefaultMass     = 15.0
	DefaultAddr     = "127.0.0.1:7400"
	DefaultDataDir  = ".rovsim"
)

type Config struct {
	Integrator string          `yaml:"integrator"`
	Pilot      string          `yaml:"pilot"`
	Dt         float64         `yaml:"dt"`
	Duration   float64         `yaml:"duration"`
	RealTime   bool            `yaml:"real_time"`
	Vehicle    VehicleConfig   `yaml:"vehicle"`
	Water      WaterConfig     `yaml:"water"`
	Power      []float64       `yaml:"power,omitempty"`
	Schedule   []SegmentConfig `yaml:"schedule,omitempty"`
	Autopilot  AutopilotConfig `yaml:"autopilot"`
	Server     ServerConfig    `yaml:"server"`
	Log        LogConfig       `yaml:"log"`
	DataDir    string          `yaml:"data_dir"`
}

type VehicleConfig struct {
	Mass            float64          `yaml:"mass"`
	HullExtents     [3]float64       `yaml:"hull_extents"`
	HullScale       [3]float64       `yaml:"hull_scale"`
	CenterOfMass    [3]float64       `yaml:"center_of_mass"`
	Position        [3]float64       `yaml:"position"`
	Rotation        [3]float64       `yaml:"rotation"` // Euler degrees
	LinearVelocity  [3]float64       `yaml:"linear_velocity"`
	AngularVelocity [3]float64       `yaml:"angular_velocity"`
	Thrusters       []ThrusterConfig `yaml:"thrusters,omitempty"`
}

type ThrusterConfig struct {
	Name      string     `yaml:"name"`
	Position  [3]float64 `yaml:"position"`
	Direction [3]float64 `yaml:"direction"`
	MaxForce  float64    `yaml:"max_force"`
}

type DragConfig struct {
	Coefficient float64 `yaml:"coefficient"`
	Area        float64 `yaml:"area"`
	MaxForce    float64 `yaml:"max_force"`
}

type WaterConfig struct {
	Density     float64    `yaml:"density"`
	LinearDrag  DragConfig `yaml:"linear_drag"`
	AngularDrag DragConfig `yaml:"angular_drag"`
}

type SegmentConfig struct {
	Start float64   `yaml:"start"`
	Power []float64 `yaml:"power"`
}

type PIDConfig struct {
	Enabled bool    `yaml:"enabled"`
	Kp      float64 `yaml:"kp"`
	Ki      float64 `yaml:"ki"`
	Kd      float64 `yaml:"kd"`
	Target  float64 `yaml:"target"`
}

type AutopilotConfig struct {
	Surge   float64   `yaml:"surge"`
	Depth   PIDConfig `yaml:"depth"`
	Heading PIDConfig `yaml:"heading"`
}

type ServerConfig struct {
	Addr string `yaml:"addr"`
}

type LogConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
}

func DefaultConfig() *Config {
	return &Config{
		Integrator: "rk4",
		Pilot:      "none",
		Dt:         DefaultDt,
		Duration:   DefaultDuration,
		Vehicle: VehicleConfig{
			Mass:        DefaultMass,
			HullExtents: [3]float64{0.5, 0.5, 0.5},
			HullScale:   [3]float64{1, 1, 2},
		},
		Water: WaterConfig{
			Density:     hydro.SeawaterDensity,
			LinearDrag:  DragConfig{Coefficient: 0.9, Area: 0.5, MaxForce: 400},
			AngularDrag: DragConfig{Coefficient: 0.3, Area: 0.4, MaxForce: 200},
		},
		Autopilot: AutopilotConfig{
			Depth:   PIDConfig{Kp: 0.8, Ki: 0.05, Kd: 1.5},
			Heading: PIDConfig{Kp: 0.02, Kd: 0.01},
		},
		Server:  ServerConfig{Addr: DefaultAddr},
		Log:     LogConfig{Level: "info", Format: "console"},
		DataDir: DefaultDataDir,
	}
}

func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	cfg := DefaultConfig()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}
	return cfg, nil
}

func Save(path string, cfg *Config) error {
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0644)
}

func (c *Config) Validate() error {
	if !(c.Dt > 0) {
		return fmt.Errorf("dt must be positive, got %f", c.Dt)
	}
	if !(c.Duration > 0) {
		return fmt.Errorf("duration must be positive, got %f", c.Duration)
	}
	if _, err := integrators.Lookup(c.Integrator); err != nil {
		return err
	}
	switch c.Pilot {
	case "none", "manual", "schedule", "autopilot":
	default:
		return fmt.Errorf("unknown pilot: %s (available: none, manual, schedule, autopilot)", c.Pilot)
	}
	if len(c.Power) > setpoint.Count {
		return fmt.Errorf("power has %d entries, vehicle has %d thrusters", len(c.Power), setpoint.Count)
	}
	for i, seg := range c.Schedule {
		if len(seg.Power) > setpoint.Count {
			return fmt.Errorf("schedule[%d] has %d entries, vehicle has %d thrusters", i, len(seg.Power), setpoint.Count)
		}
	}
	if n := len(c.Vehicle.Thrusters); n != 0 && n != setpoint.Count {
		return fmt.Errorf("vehicle.thrusters must list %d mounts or none, got %d", setpoint.Count, n)
	}
	return c.VehicleConfig().Validate()
}

func vec(a [3]float64) mgl64.Vec3 { return mgl64.Vec3{a[0], a[1], a[2]} }

func (d DragConfig) policy(density float64) hydro.Drag {
	if d.Coefficient == 0 || d.Area == 0 {
		return hydro.None{}
	}
	return hydro.NewQuadratic(density, d.Coefficient, d.Area, d.MaxForce)
}

// VehicleConfig builds the vehicle description. An empty thruster list means
// the default layout.
func (c *Config) VehicleConfig() vehicle.Config {
	v := c.Vehicle
	out := vehicle.Config{
		Mass:            v.Mass,
		HullExtents:     vec(v.HullExtents),
		HullScale:       vec(v.HullScale),
		CenterOfMass:    vec(v.CenterOfMass),
		Position:        vec(v.Position),
		Orientation:     orient.FromEulerDeg(v.Rotation[0], v.Rotation[1], v.Rotation[2]),
		LinearVelocity:  vec(v.LinearVelocity),
		AngularVelocity: vec(v.AngularVelocity),
		Thrusters:       vehicle.DefaultThrusters(),
		LinearDrag:      c.Water.LinearDrag.policy(c.Water.Density),
		AngularDrag:     c.Water.AngularDrag.policy(c.Water.Density),
	}
	if len(v.Thrusters) > 0 {
		out.Thrusters = make([]vehicle.ThrusterMount, len(v.Thrusters))
		for i, t := range v.Thrusters {
			out.Thrusters[i] = vehicle.ThrusterMount{
				Name:      t.Name,
				Position:  vec(t.Position),
				Direction: vec(t.Direction),
				MaxForce:  t.MaxForce,
			}
		}
	}
	return out
}

func (c *Config) SimConfig() sim.Config {
	return sim.Config{
		Dt:            c.Dt,
		Duration:      c.Duration,
		ValidateState: false,
		RealTime:      c.RealTime,
	}
}

func (c *Config) Stepper() (integrators.Stepper, error) {
	return integrators.Lookup(c.Integrator)
}

func (p PIDConfig) build() *control.PID {
	if !p.Enabled {
		return nil
	}
	return control.NewPID(p.Kp, p.Ki, p.Kd, p.Target)
}

func (c *Config) BuildPilot() (sim.Pilot, error) {
	switch c.Pilot {
	case "none", "":
		return control.NewNone(), nil
	case "manual":
		return control.NewManual(c.Power), nil
	case "schedule":
		segs := make([]control.Segment, len(c.Schedule))
		for i, s := range c.Schedule {
			segs[i] = control.Segment{Start: s.Start, Power: s.Power}
		}
		return control.NewSchedule(segs...), nil
	case "autopilot":
		ap := c.Autopilot
		return control.NewAutopilot(ap.Depth.build(), ap.Heading.build(), ap.Surge), nil
	default:
		return nil, fmt.Errorf("unknown pilot: %s", c.Pilot)
	}
}
