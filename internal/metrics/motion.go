package metrics

import (
	"github.com/go-gl/mathgl/mgl64"
	"github.com/san-kum/rovsim/internal/sim"
)

type PeakSpeed struct {
	name string
	peak float64
}

func NewPeakSpeed() *PeakSpeed {
	return &PeakSpeed{name: "peak_speed"}
}

func (p *PeakSpeed) Name() string { return p.name }

func (p *PeakSpeed) Observe(s sim.Sample) {
	if v := s.Speed(); v > p.peak {
		p.peak = v
	}
}

func (p *PeakSpeed) Value() float64 { return p.peak }

func (p *PeakSpeed) Reset() { p.peak = 0 }

// Distance is the path length travelled by the vehicle origin.
type Distance struct {
	name  string
	total float64
	prev  mgl64.Vec3
	seen  bool
}

func NewDistance() *Distance {
	return &Distance{name: "distance"}
}

func (d *Distance) Name() string { return d.name }

func (d *Distance) Observe(s sim.Sample) {
	if d.seen {
		d.total += s.Position.Sub(d.prev).Len()
	}
	d.prev, d.seen = s.Position, true
}

func (d *Distance) Value() float64 { return d.total }

func (d *Distance) Reset() {
	d.total = 0
	d.prev = mgl64.Vec3{}
	d.seen = false
}

// Defaults is the metric set attached to every run.
func Defaults() []sim.Metric {
	return []sim.Metric{
		NewKineticEnergy(),
		NewPeakSpeed(),
		NewControlEffort(),
		NewDistance(),
		NewStability(30),
	}
}
