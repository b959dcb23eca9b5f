package potential

const (
	ElectronVolt   = 1.602176634e-19 // J
	Angstrom       = 1e-10           // m
	Femtosecond    = 1e-15           // s
	AtomicMassUnit = 1.66053906660e-27
	Boltzmann      = 1.380649e-23   // J/K
	BoltzmannEV    = 8.617333262e-5 // eV/K

	// AccelerationFactor converts eV/(Å·amu) into Å/fs².
	AccelerationFactor = ElectronVolt / (Angstrom * AtomicMassUnit) * (Femtosecond * Femtosecond / Angstrom)

	// PressureFactor converts eV/Å³ into bar.
	PressureFactor = ElectronVolt / (Angstrom * Angstrom * Angstrom) / 1e5
)

// Units is the length and energy scale, in metres and joules, of a set of
// parameters.
type Units struct {
	Name   string
	Length float64
	Energy float64
}

var (
	SI  = Units{Name: "si", Length: 1, Energy: 1}
	Lab = Units{Name: "lab", Length: Angstrom, Energy: ElectronVolt}
)

// UnitsByName resolves "si" and "lab".
func UnitsByName(name string) (Units, bool) {
	switch name {
	case "si", "SI":
		return SI, true
	case "lab", "":
		return Lab, true
	}
	return Units{}, false
}
