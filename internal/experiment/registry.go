package experiment

import (
	"fmt"
	"sort"

	"github.com/san-kum/simscat/internal/dynamo"
	"github.com/san-kum/simscat/internal/integrators"
	"github.com/san-kum/simscat/internal/md"
	"github.com/san-kum/simscat/internal/thermostat"
)

type Registry struct {
	integrators map[string]func() dynamo.Integrator
	thermostats map[string]func(*md.System, map[string]float64) (thermostat.Thermostat, error)
}

func NewRegistry() *Registry {
	r := &Registry{
		integrators: make(map[string]func() dynamo.Integrator),
		thermostats: make(map[string]func(*md.System, map[string]float64) (thermostat.Thermostat, error)),
	}

	r.integrators["euler"] = func() dynamo.Integrator { return integrators.NewEuler() }
	r.integrators["rk4"] = func() dynamo.Integrator { return integrators.NewRK4() }
	r.integrators["verlet"] = func() dynamo.Integrator { return integrators.NewVerlet() }
	r.integrators["leapfrog"] = func() dynamo.Integrator { return integrators.NewLeapfrog() }

	for _, name := range thermostat.Names() {
		name := name
		r.thermostats[name] = func(sys *md.System, params map[string]float64) (thermostat.Thermostat, error) {
			return thermostat.New(name, sys, params)
		}
	}

	return r
}

func (r *Registry) GetIntegrator(name string) (dynamo.Integrator, error) {
	fn, ok := r.integrators[name]
	if !ok {
		return nil, fmt.Errorf("unknown integrator: %s", name)
	}
	return fn(), nil
}

func (r *Registry) GetThermostat(name string, sys *md.System, params map[string]float64) (thermostat.Thermostat, error) {
	if name == "" {
		name = "none"
	}
	fn, ok := r.thermostats[name]
	if !ok {
		return nil, fmt.Errorf("unknown thermostat: %s", name)
	}
	return fn(sys, params)
}

func (r *Registry) ListIntegrators() []string {
	return sortedKeys(r.integrators)
}

func (r *Registry) ListThermostats() []string {
	return sortedKeys(r.thermostats)
}

func sortedKeys[V any](m map[string]V) []string {
	names := make([]string, 0, len(m))
	for name := range m {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
