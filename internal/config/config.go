package config

import (
	"errors"
	"fmt"
	"os"

	"github.com/san-kum/simscat/internal/potential"
	"github.com/san-kum/simscat/internal/scattering"
	"gopkg.in/yaml.v3"
)

const (
	DefaultDt          = 2.0
	DefaultDuration    = 2000.0
	DefaultSampleEvery = 10
	DefaultTemperature = 94.4

	ArgonMass    = 39.948
	ArgonSigma   = 3.405
	ArgonEpsilon = 0.0103
)

var ErrInvalid = errors.New("invalid config")

type Config struct {
	Name        string           `yaml:"name"`
	Particles   int              `yaml:"particles"`
	Density     float64          `yaml:"density"`
	BoxLength   float64          `yaml:"box_length"`
	Temperature float64          `yaml:"temperature"`
	Mass        float64          `yaml:"mass"`
	Potential   PotentialConfig  `yaml:"potential"`
	Cutoff      float64          `yaml:"cutoff"`
	Shift       bool             `yaml:"shift"`
	Integrator  string           `yaml:"integrator"`
	Thermostat  ThermostatConfig `yaml:"thermostat"`
	Dt          float64          `yaml:"dt"`
	Duration    float64          `yaml:"duration"`
	SampleEvery int              `yaml:"sample_every"`
	Seed        int64            `yaml:"seed"`
	Init        string           `yaml:"init"`
	MinDist     float64          `yaml:"min_dist"`
	Scattering  ScatteringConfig `yaml:"scattering"`
}

// PotentialConfig selects the pair interaction in lab units (Å, eV). For the
// Lennard-Jones form either sigma/epsilon or a/b may be given.
type PotentialConfig struct {
	Form    string  `yaml:"form"`
	Sigma   float64 `yaml:"sigma"`
	Epsilon float64 `yaml:"epsilon"`
	A       float64 `yaml:"a"`
	B       float64 `yaml:"b"`
	Rho     float64 `yaml:"rho"`
	C       float64 `yaml:"c"`
}

type ThermostatConfig struct {
	Name  string  `yaml:"name"`
	Every int     `yaml:"every"`
	Tau   float64 `yaml:"tau"`
}

type ScatteringConfig struct {
	Q          scattering.QGrid `yaml:"q"`
	FormFactor string           `yaml:"form_factor"`
	BinWidth   float64          `yaml:"bin_width"`
}

func DefaultConfig() *Config {
	return &Config{
		Name:        "argon/liquid",
		Particles:   125,
		Density:     0.0213,
		Temperature: DefaultTemperature,
		Mass:        ArgonMass,
		Potential: PotentialConfig{
			Form:    "lj",
			Sigma:   ArgonSigma,
			Epsilon: ArgonEpsilon,
		},
		Cutoff:      2.5 * ArgonSigma,
		Shift:       true,
		Integrator:  "verlet",
		Thermostat:  ThermostatConfig{Name: "rescale", Every: 10},
		Dt:          DefaultDt,
		Duration:    DefaultDuration,
		SampleEvery: DefaultSampleEvery,
		Seed:        1,
		Init:        "lattice",
		Scattering: ScatteringConfig{
			Q:          scattering.DefaultQGrid(),
			FormFactor: "argon",
			BinWidth:   0.01,
		},
	}
}

// Load reads a YAML file on top of DefaultConfig, so a file only needs the
// keys it changes.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	cfg := DefaultConfig()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return cfg, nil
}

func Save(path string, cfg *Config) error {
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0644)
}

func (c *Config) Clone() *Config {
	cp := *c
	return &cp
}

func (c *Config) Validate() error {
	switch {
	case c.Particles < 2:
		return fmt.Errorf("%w: particles must be at least 2, got %d", ErrInvalid, c.Particles)
	case c.Density <= 0 && c.BoxLength <= 0:
		return fmt.Errorf("%w: one of density or box_length is required", ErrInvalid)
	case c.Mass <= 0:
		return fmt.Errorf("%w: mass must be positive", ErrInvalid)
	case c.Temperature < 0:
		return fmt.Errorf("%w: temperature must not be negative", ErrInvalid)
	case c.Cutoff <= 0:
		return fmt.Errorf("%w: cutoff must be positive", ErrInvalid)
	case c.Dt <= 0 || c.Duration <= 0:
		return fmt.Errorf("%w: dt and duration must be positive", ErrInvalid)
	}
	switch c.Init {
	case "lattice", "fcc", "random":
	default:
		return fmt.Errorf("%w: unknown init %q", ErrInvalid, c.Init)
	}
	if _, err := c.Pair(); err != nil {
		return err
	}
	return nil
}

// Pair builds the configured pair potential in lab units.
func (c *Config) Pair() (potential.Pair, error) {
	p := c.Potential
	switch p.Form {
	case "lj", "":
		lj := potential.LennardJones{A: p.A, B: p.B}
		if p.Sigma > 0 || p.Epsilon > 0 {
			lj = potential.FromSigmaEpsilon(p.Sigma, p.Epsilon)
		}
		if err := lj.Validate(); err != nil {
			return nil, fmt.Errorf("%w: %w", ErrInvalid, err)
		}
		return lj, nil
	case "buckingham":
		bk := potential.Buckingham{A: p.A, Rho: p.Rho, C: p.C}
		if err := bk.Validate(); err != nil {
			return nil, fmt.Errorf("%w: %w", ErrInvalid, err)
		}
		return bk, nil
	}
	return nil, fmt.Errorf("%w: unknown potential form %q", ErrInvalid, p.Form)
}

// ThermostatParams is the parameter map understood by thermostat.New.
func (c *Config) ThermostatParams() map[string]float64 {
	return map[string]float64{
		"target": c.Temperature,
		"every":  float64(c.Thermostat.Every),
		"tau":    c.Thermostat.Tau,
		"dt":     c.Dt,
	}
}
