// Package viz renders a running vehicle in the terminal with Bubble Tea.
//
//   - [Model]: live view of one simulator with keyboard piloting
//   - [Menu]: preset picker that launches a [Model]
//   - [Canvas]: Braille pixel canvas used for the hull wireframe and track
//
// # Key Bindings
//
//	Space - Pause/Resume
//	W/S   - Surge forward/back
//	A/D   - Yaw left/right
//	R/F   - Heave up/down
//	X     - Zero all demands
//	←/→   - Orbit camera
//	T     - Cycle color themes
//	?     - Show help overlay
//	Q     - Quit
package viz
