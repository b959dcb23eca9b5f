// Package potential provides the empirical pair potentials used for fitting
// and simulation.
//
//   - [LennardJones]: E(r) = A/r¹² - B/r⁶, with σ/ε accessors
//   - [Buckingham]: E(r) = A·exp(-r/ρ) - C/r⁶
//   - [Cutoff]: truncated (optionally shifted) wrapper for any [Pair]
//   - [Mix]: Lorentz–Berthelot and geometric mixing rules
//
// Parameters carry no unit of their own. [Units] describes the length and
// energy scale a value is expressed in so values can move between the SI
// numbers of the fitting lessons and the Å/eV numbers of the MD engine.
package potential
