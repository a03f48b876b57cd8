// Package viz draws particle scenes in the terminal.
//
// Scenes are projected through an orbiting [Camera] onto a braille [Canvas]
// and shown by a Bubble Tea [Model] next to a panel of run metrics and a
// kinetic energy chart. [App] is a preset picker in front of the viewer.
//
// # Key Bindings
//
//	Space - Pause/Resume
//	N     - Step one frame while paused
//	R     - Rebuild the scene
//	+/-   - Zoom
//	X/Y   - Rotate (shift reverses)
//	B     - Toggle the bounds box
//	T     - Cycle color themes
//	?     - Help overlay
//	Q     - Quit
package viz
