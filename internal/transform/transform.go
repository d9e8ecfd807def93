package transform

import (
	"github.com/go-gl/mathgl/mgl64"
	"github.com/san-kum/rovsim/internal/orient"
)

type Transform struct {
	Position    mgl64.Vec3
	Orientation mgl64.Quat
	Scale       mgl64.Vec3
}

func New() Transform {
	return Transform{
		Orientation: mgl64.QuatIdent(),
		Scale:       mgl64.Vec3{1, 1, 1},
	}
}

func At(position mgl64.Vec3, orientation mgl64.Quat) Transform {
	t := New()
	t.Position = position
	t.Orientation = orientation
	return t
}

// LocalMatrix is translate(position) · rotate(orientation) · scale(scale).
func (t Transform) LocalMatrix() mgl64.Mat4 {
	return mgl64.Translate3D(t.Position[0], t.Position[1], t.Position[2]).
		Mul4(t.Orientation.Mat4()).
		Mul4(mgl64.Scale3D(t.Scale[0], t.Scale[1], t.Scale[2]))
}

func (t Transform) Rotation() mgl64.Mat3 { return orient.Matrix(t.Orientation) }

func (t Transform) Translate(d mgl64.Vec3) Transform {
	t.Position = t.Position.Add(d)
	return t
}

func (t Transform) Rotate(q mgl64.Quat) Transform {
	t.Orientation = t.Orientation.Mul(q).Normalize()
	return t
}

func (t Transform) IsFinite() bool {
	return orient.VecFinite(t.Position) && orient.QuatFinite(t.Orientation) && orient.VecFinite(t.Scale)
}

// ScaleVec multiplies v component-wise by the transform's scale.
func (t Transform) ScaleVec(v mgl64.Vec3) mgl64.Vec3 {
	return mgl64.Vec3{v[0] * t.Scale[0], v[1] * t.Scale[1], v[2] * t.Scale[2]}
}
