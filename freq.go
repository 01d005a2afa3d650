package bigqc

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/mat"
)

// Physical constants, CODATA 2018
const (
	hartreeJoule = 4.3597447222071e-18 // J per hartree
	amuKg        = 1.66053906660e-27   // kg per amu
	bohrMeter    = 5.29177210903e-11   // m per bohr
	lightSpeed   = 2.99792458e10       // cm/s
	planck       = 6.62607015e-34      // J s
	boltzmann    = 1.380649e-23        // J/K
	atmPascal    = 101325.0            // Pa per atm
)

// wavenumberFactor converts the square root of a mass-weighted
// Hessian eigenvalue, in hartree/(amu bohr^2), to cm-1
var wavenumberFactor = math.Sqrt(hartreeJoule/(amuKg*bohrMeter*bohrMeter)) /
	(2 * math.Pi * lightSpeed)

// Wavenumber converts one mass-weighted Hessian eigenvalue to a
// spectroscopic wavenumber in cm-1. Negative eigenvalues come out as
// negative wavenumbers, marking imaginary-frequency modes at
// non-minimum stationary points.
func Wavenumber(eigval float64) float64 {
	if eigval < 0 {
		return -math.Sqrt(-eigval) * wavenumberFactor
	}
	return math.Sqrt(eigval) * wavenumberFactor
}

// RigidModeCount returns the number of near-zero translational and
// rotational modes of mol: 3 for a single atom, 5 for a linear
// molecule, and 6 otherwise
func RigidModeCount(mol *Molecule) (int, error) {
	if len(mol.Atoms) == 1 {
		return 3, nil
	}
	linear, err := mol.Linear()
	if err != nil {
		return 0, err
	}
	if linear {
		return 5, nil
	}
	return 6, nil
}

// NormalModes mass-weights and diagonalizes the Hessian carried by
// hess, returning all 3N wavenumbers in cm-1 and the matching
// unit-normalized Cartesian displacement vectors, ordered ascending
// by eigenvalue. The lowest 3, 5, or 6 are rigid-body modes; see
// RigidModeCount. Eigenvector signs are physically arbitrary, so any
// comparison of modes across runs must tolerate a whole-vector sign
// flip.
func NormalModes(hess *SinglePointOutput) ([]float64, [][]float64, error) {
	mol := hess.InputData.Molecule
	for k, v := range hess.Results.Hessian {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return nil, nil, fmt.Errorf("%w: entry %d is %v", ErrNonFiniteHessian, k, v)
		}
	}
	h, err := hess.HessianMatrix()
	if err != nil {
		return nil, nil, err
	}
	masses, err := mol.AtomicMasses()
	if err != nil {
		return nil, nil, err
	}
	n := 3 * len(mol.Atoms)
	// each atom owns three Cartesian components
	w := make([]float64, n)
	for i := range w {
		w[i] = 1 / math.Sqrt(masses[i/3])
	}
	mw := mat.NewSymDense(n, nil)
	for i := 0; i < n; i++ {
		for j := i; j < n; j++ {
			mw.SetSym(i, j, h.At(i, j)*w[i]*w[j])
		}
	}
	var eig mat.EigenSym
	if ok := eig.Factorize(mw, true); !ok {
		return nil, nil, fmt.Errorf("bigqc: mass-weighted hessian eigendecomposition failed")
	}
	vals := eig.Values(nil)
	var vecs mat.Dense
	eig.VectorsTo(&vecs)
	freqs := make([]float64, n)
	modes := make([][]float64, n)
	for k := 0; k < n; k++ {
		freqs[k] = Wavenumber(vals[k])
		mode := make([]float64, n)
		var norm float64
		for i := 0; i < n; i++ {
			mode[i] = vecs.At(i, k) * w[i]
			norm += mode[i] * mode[i]
		}
		norm = math.Sqrt(norm)
		for i := range mode {
			mode[i] /= norm
		}
		modes[k] = mode
	}
	return freqs, modes, nil
}

// stripRigid removes the rigid-body block from the ascending mode
// list. The rigid modes are the contiguous window of count entries
// nearest zero, not simply the lowest: at a non-minimum stationary
// point the imaginary modes sort below the rigid block and must stay
// in the report.
func stripRigid(freqs []float64, modes [][]float64, count int) ([]float64, [][]float64) {
	start, best := 0, math.Inf(1)
	for s := 0; s+count <= len(freqs); s++ {
		var sum float64
		for _, nu := range freqs[s : s+count] {
			sum += math.Abs(nu)
		}
		if sum < best {
			start, best = s, sum
		}
	}
	vf := append(append([]float64{}, freqs[:start]...), freqs[start+count:]...)
	vm := append(append([][]float64{}, modes[:start]...), modes[start+count:]...)
	return vf, vm
}

// FrequencyAnalysis runs the normal-mode analysis on an assembled
// Hessian result and derives thermochemistry at the given temperature
// in K and pressure in atm; non-positive values select the defaults
// of 298.15 K and 1 atm. The returned output keeps the hessian
// calctype and electronic energy and adds the vibrational wavenumbers
// and Cartesian normal modes, with the rigid-body modes stripped, and
// the thermochemical quantities. Imaginary modes stay in the report as
// negative wavenumbers; they mark a non-minimum stationary point, not
// an error. Re-running at a different temperature or pressure changes
// only the thermochemistry.
func FrequencyAnalysis(hess *SinglePointOutput, temperature, pressure float64) (*SinglePointOutput, error) {
	if temperature <= 0 {
		temperature = DefaultTemperature
	}
	if pressure <= 0 {
		pressure = DefaultPressure
	}
	freqs, modes, err := NormalModes(hess)
	if err != nil {
		return nil, err
	}
	mol := hess.InputData.Molecule
	rigid, err := RigidModeCount(mol)
	if err != nil {
		return nil, err
	}
	vibFreqs, vibModes := stripRigid(freqs, modes, rigid)
	thermo, err := Thermochem(mol, vibFreqs, hess.Results.Energy, temperature, pressure)
	if err != nil {
		return nil, err
	}
	return &SinglePointOutput{
		InputData: hess.InputData,
		Success:   true,
		Results: Results{
			Energy:               hess.Results.Energy,
			Hessian:              hess.Results.Hessian,
			FreqsWavenumber:      vibFreqs,
			NormalModesCartesian: vibModes,
			Temperature:          thermo.Temperature,
			Pressure:             thermo.Pressure,
			ZeroPointEnergy:      thermo.ZeroPointEnergy,
			Enthalpy:             thermo.Enthalpy,
			Entropy:              thermo.Entropy,
			GibbsFreeEnergy:      thermo.GibbsFreeEnergy,
		},
		Provenance: Provenance{Program: "bigqc"},
	}, nil
}
