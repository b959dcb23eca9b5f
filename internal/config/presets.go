package config

import "sort"

// Presets are argon state points at the usual reduced densities, with argon
// Lennard-Jones parameters in Å and eV.
var Presets = map[string]func() *Config{
	"argon/gas": func() *Config {
		c := DefaultConfig()
		c.Name = "argon/gas"
		c.Particles = 64
		c.Density = 0.002
		c.Temperature = 300
		c.Init = "random"
		c.MinDist = ArgonSigma
		c.Thermostat = ThermostatConfig{Name: "none"}
		c.Duration = 5000
		return c
	},
	"argon/liquid": func() *Config {
		return DefaultConfig()
	},
	"argon/solid": func() *Config {
		c := DefaultConfig()
		c.Name = "argon/solid"
		c.Particles = 256
		c.Density = 0.025
		c.Temperature = 40
		c.Init = "fcc"
		c.Thermostat = ThermostatConfig{Name: "berendsen", Tau: 100}
		c.Duration = 1000
		return c
	},
}

// GetPreset returns a fresh copy of the named preset, or nil.
func GetPreset(name string) *Config {
	fn, ok := Presets[name]
	if !ok {
		return nil
	}
	return fn()
}

func ListPresets() []string {
	names := make([]string, 0, len(Presets))
	for name := range Presets {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
