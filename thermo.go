package bigqc

import (
	"fmt"
	"math"
)

// Defaults for thermochemistry, matching the usual standard state
const (
	DefaultTemperature = 298.15 // K
	DefaultPressure    = 1.0    // atm
)

// Thermochemistry holds the partition-function-derived quantities for
// one (temperature, pressure) pair. Energies are in hartree, the
// entropy in hartree/K.
type Thermochemistry struct {
	Temperature     float64 `json:"temperature"`
	Pressure        float64 `json:"pressure"`
	ZeroPointEnergy float64 `json:"zero_point_energy"`
	Enthalpy        float64 `json:"enthalpy"`
	Entropy         float64 `json:"entropy"`
	GibbsFreeEnergy float64 `json:"gibbs_free_energy"`
}

// Thermochem computes rigid-rotor/harmonic-oscillator/ideal-gas
// thermochemistry for mol from its vibrational wavenumbers in cm-1,
// the rigid-body modes already stripped, on top of the electronic
// energy in hartree. Imaginary modes, reported as negative
// wavenumbers, carry no thermal population and are skipped. The
// result is a pure function of the arguments; calling again with a
// different temperature or pressure is independently correct.
// Temperature and pressure must be positive; unlike FrequencyAnalysis
// this function substitutes no defaults.
func Thermochem(mol *Molecule, freqs []float64, energy, temperature, pressure float64) (*Thermochemistry, error) {
	if temperature <= 0 || pressure <= 0 {
		return nil, fmt.Errorf("%w: got %g K, %g atm", ErrBadConditions, temperature, pressure)
	}
	totalMass, err := mol.TotalMass()
	if err != nil {
		return nil, err
	}
	kT := boltzmann * temperature
	// translation
	massKg := totalMass * amuKg
	qTrans := math.Pow(2*math.Pi*massKg*kT/(planck*planck), 1.5) * kT /
		(pressure * atmPascal)
	sTrans := boltzmann * (math.Log(qTrans) + 2.5)
	hTrans := 2.5 * kT
	// rotation, symmetry number 1
	var sRot, hRot float64
	if len(mol.Atoms) > 1 {
		moments, err := mol.PrincipalMoments()
		if err != nil {
			return nil, err
		}
		linear, err := mol.Linear()
		if err != nil {
			return nil, err
		}
		if linear {
			i := moments[2] * amuKg * bohrMeter * bohrMeter
			qRot := 8 * math.Pi * math.Pi * i * kT / (planck * planck)
			sRot = boltzmann * (math.Log(qRot) + 1)
			hRot = kT
		} else {
			var prod float64 = 1
			for _, m := range moments {
				prod *= m * amuKg * bohrMeter * bohrMeter
			}
			qRot := math.Sqrt(math.Pi*prod) *
				math.Pow(8*math.Pi*math.Pi*kT/(planck*planck), 1.5)
			sRot = boltzmann * (math.Log(qRot) + 1.5)
			hRot = 1.5 * kT
		}
	}
	// vibration
	var zpe, hVib, sVib float64
	for _, nu := range freqs {
		if nu <= 0 {
			continue
		}
		quantum := planck * lightSpeed * nu // J
		zpe += quantum / 2
		x := quantum / kT
		hVib += quantum / math.Expm1(x)
		sVib += boltzmann * (x/math.Expm1(x) - math.Log(-math.Expm1(-x)))
	}
	// electronic: degeneracy from the spin multiplicity
	var sElec float64
	if mol.Multiplicity > 1 {
		sElec = boltzmann * math.Log(float64(mol.Multiplicity))
	}
	enthalpy := energy + (zpe+hTrans+hRot+hVib)/hartreeJoule
	entropy := (sTrans + sRot + sVib + sElec) / hartreeJoule
	return &Thermochemistry{
		Temperature:     temperature,
		Pressure:        pressure,
		ZeroPointEnergy: zpe / hartreeJoule,
		Enthalpy:        enthalpy,
		Entropy:         entropy,
		GibbsFreeEnergy: enthalpy - temperature*entropy,
	}, nil
}
