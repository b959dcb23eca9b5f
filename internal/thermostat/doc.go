// Package thermostat provides temperature control for md runs.
//
// Thermostats implement [dynamo.PostStep] and rescale velocities after each
// integration step:
//
//   - [None]: microcanonical (NVE) run
//   - [Rescale]: hard velocity rescaling every N steps
//   - [Berendsen]: weak coupling towards the target with time constant τ
//
// # Usage
//
//	th := thermostat.NewBerendsen(sys, 120, 100, 2)
//	sim.AddHook(sys) // wrap first
//	sim.AddHook(th)
package thermostat
