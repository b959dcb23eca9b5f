// Package analysis post-processes md trajectories.
//
//   - [RDF]: radial distribution function g(r)
//   - [MSD]: mean squared displacement with periodic unwrapping
//   - [DiffusionCoefficient]: Einstein relation D = slope/6
//   - [VDOS]: vibrational density of states from the velocity autocorrelation
//   - [EvenlySpaced]: length of the uniformly sampled prefix of a run
//   - [Summarize]: mean and spread of a thermodynamic series
//
// Frames are slices of particle coordinates, one per sampled step.
package analysis
