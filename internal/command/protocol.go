package command

import (
	"github.com/san-kum/rovsim/internal/setpoint"
	"github.com/san-kum/rovsim/internal/sim"
)

// Request is one line of the command protocol. Exactly one of the fields is
// expected; thrusters and power may be combined.
type Request struct {
	Thrusters map[string]float64 `json:"thrusters,omitempty"`
	Power     []float64          `json:"power,omitempty"`
	Query     string             `json:"query,omitempty"`
}

type Response struct {
	OK       bool      `json:"ok"`
	Error    string    `json:"error,omitempty"`
	Applied  int       `json:"applied,omitempty"`
	Warnings []string  `json:"warnings,omitempty"`
	State    *Snapshot `json:"state,omitempty"`
}

// Snapshot is the published vehicle state. Orientation is (x, y, z, w).
type Snapshot struct {
	Time            float64                 `json:"time"`
	Position        [3]float64              `json:"position"`
	Orientation     [4]float64              `json:"orientation"`
	Euler           [3]float64              `json:"euler"`
	LinearVelocity  [3]float64              `json:"linear_velocity"`
	AngularVelocity [3]float64              `json:"angular_velocity"`
	Depth           float64                 `json:"depth"`
	Heading         float64                 `json:"heading"`
	Power           [setpoint.Count]float64 `json:"power"`
}

func SnapshotOf(s sim.Sample) *Snapshot {
	q := s.Orientation
	return &Snapshot{
		Time:            s.Time,
		Position:        s.Position,
		Orientation:     [4]float64{q.V[0], q.V[1], q.V[2], q.W},
		Euler:           s.Euler,
		LinearVelocity:  s.LinearVelocity,
		AngularVelocity: s.AngularVelocity,
		Depth:           s.Depth(),
		Heading:         s.Heading(),
		Power:           s.Power,
	}
}
