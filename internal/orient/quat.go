package orient

import (
	"math"

	"github.com/go-gl/mathgl/mgl64"
)

var (
	AxisX = mgl64.Vec3{1, 0, 0}
	AxisY = mgl64.Vec3{0, 1, 0}
	AxisZ = mgl64.Vec3{0, 0, 1}
)

func Identity() mgl64.Quat { return mgl64.QuatIdent() }

// Pure embeds v as the vector part of a quaternion with zero scalar part.
func Pure(v mgl64.Vec3) mgl64.Quat { return mgl64.Quat{W: 0, V: v} }

func FromAxisAngle(axis mgl64.Vec3, radians float64) mgl64.Quat {
	if axis.Len() == 0 {
		return mgl64.QuatIdent()
	}
	return mgl64.QuatRotate(radians, axis.Normalize())
}

func FromAxisAngleDeg(axis mgl64.Vec3, degrees float64) mgl64.Quat {
	return FromAxisAngle(axis, mgl64.DegToRad(degrees))
}

// FromEulerDeg composes Rx·Ry·Rz from angles in degrees.
func FromEulerDeg(x, y, z float64) mgl64.Quat {
	qx := mgl64.QuatRotate(mgl64.DegToRad(x), AxisX)
	qy := mgl64.QuatRotate(mgl64.DegToRad(y), AxisY)
	qz := mgl64.QuatRotate(mgl64.DegToRad(z), AxisZ)
	return qx.Mul(qy).Mul(qz).Normalize()
}

// EulerDeg is the inverse of FromEulerDeg. Near ±90° about Y the X and Z
// angles are not unique; Z is reported as zero there.
func EulerDeg(q mgl64.Quat) (x, y, z float64) {
	m := Matrix(q)
	sy := clamp(m.At(0, 2), -1, 1)
	y = math.Asin(sy)
	if math.Abs(sy) > 1-1e-9 {
		x = math.Atan2(m.At(2, 1), m.At(1, 1))
		z = 0
	} else {
		x = math.Atan2(-m.At(1, 2), m.At(2, 2))
		z = math.Atan2(-m.At(0, 1), m.At(0, 0))
	}
	return mgl64.RadToDeg(x), mgl64.RadToDeg(y), mgl64.RadToDeg(z)
}

// Matrix returns the 3x3 rotation matrix equivalent to q.
func Matrix(q mgl64.Quat) mgl64.Mat3 { return q.Mat4().Mat3() }

// Rotate applies q to v through its rotation matrix.
func Rotate(q mgl64.Quat, v mgl64.Vec3) mgl64.Vec3 { return Matrix(q).Mul3x1(v) }

// Rate is dq/dt for a body spinning at omega: 0.5·(ω·q). The result is not
// itself a rotation.
func Rate(omega mgl64.Vec3, q mgl64.Quat) mgl64.Quat {
	return Pure(omega).Mul(q).Scale(0.5)
}

// Advance adds an orientation increment and projects back onto the unit sphere.
func Advance(q, dq mgl64.Quat) mgl64.Quat {
	return q.Add(dq).Normalize()
}

// Align returns the shortest rotation taking from onto to.
func Align(from, to mgl64.Vec3) mgl64.Quat {
	if from.Len() == 0 || to.Len() == 0 {
		return mgl64.QuatIdent()
	}
	return mgl64.QuatBetweenVectors(from.Normalize(), to.Normalize())
}

func IsUnit(q mgl64.Quat, tol float64) bool {
	return math.Abs(q.Len()-1) <= tol
}

func finite(f float64) bool { return !math.IsNaN(f) && !math.IsInf(f, 0) }

func VecFinite(v mgl64.Vec3) bool {
	return finite(v[0]) && finite(v[1]) && finite(v[2])
}

func QuatFinite(q mgl64.Quat) bool {
	return finite(q.W) && VecFinite(q.V)
}

func MatFinite(m mgl64.Mat3) bool {
	for _, f := range m {
		if !finite(f) {
			return false
		}
	}
	return true
}

func clamp(v, lo, hi float64) float64 {
	return math.Max(lo, math.Min(hi, v))
}
