// Package scattering computes X-ray or neutron scattering profiles from
// atomic coordinates with the Debye equation
//
//	I(q) = Σᵢ Σⱼ fᵢ(q) fⱼ(q) sin(q·rᵢⱼ) / (q·rᵢⱼ)
//
// where q is the scattering vector magnitude in Å⁻¹ and f the atomic form
// factor. [Debye] evaluates the double sum exactly; [DebyeHistogram] bins
// pair distances first, which is much faster for large single-species frames.
package scattering
