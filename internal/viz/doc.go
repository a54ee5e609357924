// Package viz is the terminal front end of the simulator, built on Bubble Tea.
//
//   - [Model]: live view of one running simulation
//   - [Launcher]: preset picker that opens a [Model]
//   - [Canvas]: braille dot canvas that also counts hits per cell
//   - [Camera]: orthographic projection of the world box with yaw, pitch and zoom
//
// Particles are drawn as braille dots; each character cell is shaded by how
// many particles landed in it. The side panel shows the tick, the active
// solver, the black hole and a graph of the mean radius.
//
// # Key Bindings
//
//	Space  - Pause/Resume
//	R      - Regenerate the figure
//	S      - Cycle solvers
//	B / D  - Inject or move / drop the black hole at the cursor
//	+ / -  - Scale dt
//	?      - Help
package viz
