package config

import "sort"

// Presets tweak the default configuration into named scenarios.
var Presets = map[string]func(c *Config){
	"idle": func(c *Config) {
		c.Pilot = "none"
		c.Duration = 5
	},
	"surge": func(c *Config) {
		c.Pilot = "manual"
		c.Power = []float64{0.8, 0.8, 0.8, 0.8}
		c.Duration = 20
	},
	"dive": func(c *Config) {
		c.Pilot = "autopilot"
		c.Autopilot.Depth.Enabled = true
		c.Autopilot.Depth.Target = 10
		c.Duration = 40
	},
	"spin": func(c *Config) {
		c.Pilot = "schedule"
		c.Schedule = []SegmentConfig{
			{Start: 0, Power: []float64{1, -1, -1, 1}},
			{Start: 3, Power: nil},
		}
		c.Duration = 15
	},
	"patrol": func(c *Config) {
		c.Pilot = "autopilot"
		c.Autopilot.Surge = 0.5
		c.Autopilot.Depth.Enabled = true
		c.Autopilot.Depth.Target = 5
		c.Autopilot.Heading.Enabled = true
		c.Autopilot.Heading.Target = 90
		c.Duration = 60
	},
	"freespin": func(c *Config) {
		c.Pilot = "none"
		c.Water.LinearDrag = DragConfig{}
		c.Water.AngularDrag = DragConfig{}
		c.Vehicle.AngularVelocity = [3]float64{0.3, 1.0, 0.1}
		c.Vehicle.CenterOfMass = [3]float64{0.1, 0, 0}
		c.Duration = 30
	},
	// |v|² overflows, so uncapped drag goes infinite on the first step and
	// every commit is refused.
	"unstable": func(c *Config) {
		c.Integrator = "euler"
		c.Pilot = "none"
		c.Water.LinearDrag = DragConfig{Coefficient: 1, Area: 0.5}
		c.Vehicle.LinearVelocity = [3]float64{0, 0, -1e155}
		c.Duration = 1
	},
}

// GetPreset returns a fresh default config with the named preset applied, or
// nil when no such preset exists.
func GetPreset(name string) *Config {
	apply, ok := Presets[name]
	if !ok {
		return nil
	}
	cfg := DefaultConfig()
	apply(cfg)
	return cfg
}

func ListPresets() []string {
	names := make([]string, 0, len(Presets))
	for name := range Presets {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
