// Package control provides pilots that write thruster setpoints each tick.
//
// Pilots implement [sim.Pilot]:
//
//   - [None]: leaves the board alone, for externally driven runs
//   - [Manual]: holds a fixed power vector
//   - [Schedule]: switches power vectors at given times
//   - [Autopilot]: PID depth and heading hold with optional surge
//
// # Usage
//
//	ap := control.NewAutopilot(control.NewPID(2, 0.1, 1, 5), nil, 0.3)
//	s := sim.New(scene, rov, board, ap)
//	// Steer is called before every tick
//
// [PID] supports live tuning through GetParams and SetParam.
package control
