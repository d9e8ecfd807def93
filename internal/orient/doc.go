// Package orient holds the quaternion helpers used by the dynamics code.
//
// Quaternions are [mgl64.Quat] values (scalar W, vector V). Everything here is
// a pure function; callers own normalization policy except where a function
// says otherwise ([Advance], [FromEulerDeg]).
//
// The rate relation used by the integrator is
//
//	dq/dt = 0.5 · (0, ω) · q
//
// with ω expressed in the same frame as q.
package orient
