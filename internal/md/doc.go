// Package md is a small Lennard-Jones molecular dynamics engine.
//
// A [System] holds N identical particles in a periodic [Box] and implements
// [dynamo.System] over the state layout
//
//	[x1 y1 z1 ... xN yN zN  vx1 vy1 vz1 ... vxN vyN vzN]
//
// so it can be driven by any integrator in internal/integrators. The velocity
// Verlet integrator is the intended one.
//
// Units are Å, fs, eV and amu; temperatures are in kelvin and pressures in bar.
// Forces are evaluated with an O(N²) minimum-image loop. There are no
// neighbour lists; the engine targets the few hundred atoms a lesson needs.
package md
