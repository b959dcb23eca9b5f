// Package viz is the terminal live view for md runs.
//
//   - [Canvas]: braille pixel canvas, 2×4 dots per cell
//   - [Camera]: rotating perspective projection of the simulation box
//   - [Model]: bubbletea model that steps an experiment and draws it
//   - [Menu]: preset picker that launches a [Model]
//
// # Key Bindings
//
//	Space - Pause/Resume
//	R     - Reset to the initial configuration
//	[ ]   - Step back/forward through recent frames
//	x y   - Rotate the box (shift reverses)
//	+ -   - Zoom
//	< >   - Fewer/more md steps per frame
//	↑ ↓   - Raise/lower the thermostat set point
//	T     - Cycle color themes
//	?     - Show help overlay
package viz
