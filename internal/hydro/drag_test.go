package hydro

import (
	"math"
	"testing"

	"github.com/go-gl/mathgl/mgl64"
)

func TestQuadraticOpposesVelocity(t *testing.T) {
	q := NewQuadratic(WaterDensity, 0.8, 0.5, 0)
	v := mgl64.Vec3{0, -2, 0}

	d := q.Resist(v)
	expected := 0.5 * WaterDensity * 4 * 0.8 * 0.5

	if math.Abs(d.Len()-expected) > 1e-9 {
		t.Errorf("expected magnitude %f, got %f", expected, d.Len())
	}
	if d.Dot(v) <= 0 {
		t.Errorf("resist should point along v so subtracting it opposes motion, got %v", d)
	}
}

func TestQuadraticCap(t *testing.T) {
	q := NewQuadratic(WaterDensity, 1, 1, 50)

	tests := []struct {
		speed float64
		want  float64
	}{
		{0, 0},
		{0.1, 5},
		{0.5, 50},
		{10, 50},
	}

	for _, tt := range tests {
		got := q.Resist(mgl64.Vec3{tt.speed, 0, 0}).Len()
		if math.Abs(got-tt.want) > 1e-9 {
			t.Errorf("speed %.2f: expected %f, got %f", tt.speed, tt.want, got)
		}
	}
}

func TestQuadraticNonFinite(t *testing.T) {
	q := NewQuadratic(WaterDensity, 1, 1, 0)
	if d := q.Resist(mgl64.Vec3{math.NaN(), 0, 0}); d != (mgl64.Vec3{}) {
		t.Errorf("expected zero drag for NaN velocity, got %v", d)
	}

	// |v|² overflows but the direction is still known
	huge := mgl64.Vec3{0, 0, -1e200}
	capped := NewQuadratic(WaterDensity, 1, 1, 50)
	if d := capped.Resist(huge); math.Abs(d.Z()+50) > 1e-9 || d.X() != 0 {
		t.Errorf("expected capped drag along v, got %v", d)
	}
	if d := q.Resist(huge); !math.IsInf(d.Z(), -1) {
		t.Errorf("expected unbounded drag to overflow, got %v", d)
	}
}

func TestTerminalSpeed(t *testing.T) {
	q := NewQuadratic(WaterDensity, 1, 0.2, 0)
	vt := q.TerminalSpeed(100)
	if math.Abs(q.Magnitude(vt)-100) > 1e-9 {
		t.Errorf("drag at terminal speed should balance force, got %f", q.Magnitude(vt))
	}

	capped := NewQuadratic(WaterDensity, 1, 0.2, 10)
	if !math.IsInf(capped.TerminalSpeed(100), 1) {
		t.Error("force above the cap has no terminal speed")
	}
}

func TestOr(t *testing.T) {
	if _, ok := Or(nil).(None); !ok {
		t.Error("Or(nil) should be None")
	}
	q := NewQuadratic(1, 1, 1, 0)
	if Or(q) != Drag(q) {
		t.Error("Or should pass through non-nil drag")
	}
}
