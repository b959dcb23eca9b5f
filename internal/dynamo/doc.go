// Package dynamo provides the simulation core shared by every simscat run.
//
// The package defines the small set of interfaces the rest of the module
// plugs into:
//
//   - [State]: flat vector holding the system state
//   - [System]: an ODE right-hand side (dX/dt = f(X, t))
//   - [Integrator]: a fixed-step numerical integrator
//   - [PostStep]: in-place adjustment applied after every step (periodic
//     wrapping, thermostats)
//   - [Simulator]: drives a System with an Integrator and collects frames
//
// # Example
//
//	sys, _ := md.NewSystem(n, mass, pair, box)
//	s := dynamo.New(sys, integrators.NewVerlet())
//	s.AddHook(sys)
//	result, err := s.Run(ctx, x0, cfg)
//
// # Thread Safety
//
// Simulator instances are NOT thread-safe. Integrators keep scratch buffers,
// so give every goroutine its own Simulator and Integrator.
package dynamo
