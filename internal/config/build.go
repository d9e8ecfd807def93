package config

import (
	"github.com/rs/zerolog"

	"github.com/san-kum/rovsim/internal/scene"
	"github.com/san-kum/rovsim/internal/setpoint"
	"github.com/san-kum/rovsim/internal/sim"
	"github.com/san-kum/rovsim/internal/vehicle"
)

// Build assembles a scene holding one vehicle and returns a simulator ready
// to run it.
func (c *Config) Build(log zerolog.Logger) (*sim.Simulator, error) {
	if err := c.Validate(); err != nil {
		return nil, err
	}
	stepper, err := c.Stepper()
	if err != nil {
		return nil, err
	}
	pilot, err := c.BuildPilot()
	if err != nil {
		return nil, err
	}

	sc := scene.New(stepper, log)
	board := setpoint.NewBoard(log)
	rov, err := vehicle.New(sc, c.VehicleConfig(), board)
	if err != nil {
		return nil, err
	}
	sc.Add(rov)

	return sim.New(sc, rov, board, pilot), nil
}
