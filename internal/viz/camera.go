package viz

import (
	"math"

	"github.com/go-gl/mathgl/mgl64"
)

// Camera orbits a target point and projects world points onto a canvas.
type Camera struct {
	Target   mgl64.Vec3
	Yaw      float64 // radians about +Y
	Pitch    float64 // radians, positive looks down
	Distance float64
	FOV      float64
}

func NewCamera() *Camera {
	return &Camera{Yaw: math.Pi / 6, Pitch: math.Pi / 8, Distance: 6, FOV: math.Pi / 3}
}

func (c *Camera) Orbit(d float64) { c.Yaw += d }

func (c *Camera) Zoom(factor float64) {
	c.Distance = mgl64.Clamp(c.Distance*factor, 1, 100)
}

func (c *Camera) eye() mgl64.Vec3 {
	cp := math.Cos(c.Pitch)
	off := mgl64.Vec3{
		c.Distance * cp * math.Sin(c.Yaw),
		c.Distance * math.Sin(c.Pitch),
		c.Distance * cp * math.Cos(c.Yaw),
	}
	return c.Target.Add(off)
}

// Project maps p to sub-pixel coordinates on a w by h canvas. ok is false
// for points behind the camera.
func (c *Camera) Project(p mgl64.Vec3, w, h int) (x, y int, ok bool) {
	view := mgl64.LookAtV(c.eye(), c.Target, mgl64.Vec3{0, 1, 0})
	v := view.Mul4x1(p.Vec4(1))
	if v.Z() >= -1e-3 {
		return 0, 0, false
	}
	f := float64(h) / 2 / math.Tan(c.FOV/2)
	// braille sub-pixels are roughly square
	sx := float64(w)/2 + f*v.X()/-v.Z()
	sy := float64(h)/2 - f*v.Y()/-v.Z()
	return int(math.Round(sx)), int(math.Round(sy)), true
}
