package bigqc

import "fmt"

// DefaultHessianStep is the default finite-difference displacement in
// bohr. It is a tunable: smaller steps reduce truncation error but
// amplify floating-point cancellation in the gradient difference.
const DefaultHessianStep = 5.0e-3

// Displacements returns the 6N displaced copies of mol needed for a
// central-difference Hessian. Coordinate i contributes positions 2i
// (+dh) and 2i+1 (-dh); AssembleHessian requires exactly this order,
// so the two must never be changed independently.
func Displacements(mol *Molecule, dh float64) []*Molecule {
	n := 3 * len(mol.Atoms)
	out := make([]*Molecule, 0, 2*n)
	for i := 0; i < n; i++ {
		out = append(out, mol.Displace(i, dh), mol.Displace(i, -dh))
	}
	return out
}

// AssembleHessian builds a Hessian from the ordered gradients of 2*3N
// displaced geometries and the displacement dh used to generate them.
// Column i is the central difference of the gradients at positions 2i
// and 2i+1, and the raw matrix is symmetrized as (H + Ht)/2 to remove
// finite-difference asymmetry. The result is packaged as a synthetic
// "bigqc" hessian calculation.
func AssembleHessian(gradients []*SinglePointOutput, dh float64) (*SinglePointOutput, error) {
	if len(gradients) == 0 || len(gradients)%2 != 0 {
		return nil, fmt.Errorf("%w: %d gradients", ErrGradientCount, len(gradients))
	}
	n := len(gradients) / 2
	natoms := len(gradients[0].InputData.Molecule.Atoms)
	if n != 3*natoms {
		return nil, fmt.Errorf("%w: %d gradients for %d atoms",
			ErrGradientCount, len(gradients), natoms)
	}
	hess := make([]float64, n*n)
	var energy float64
	for _, g := range gradients {
		energy += g.Results.Energy
	}
	// the mean over the +dh/-dh pairs cancels the first-order term,
	// leaving an O(dh^2) estimate of the undisplaced energy
	energy /= float64(len(gradients))
	for i := 0; i < n; i++ {
		plus, err := gradients[2*i].GradientVector()
		if err != nil {
			return nil, fmt.Errorf("gradient %d: %w", 2*i, err)
		}
		minus, err := gradients[2*i+1].GradientVector()
		if err != nil {
			return nil, fmt.Errorf("gradient %d: %w", 2*i+1, err)
		}
		for j := 0; j < n; j++ {
			hess[j*n+i] = (plus[j] - minus[j]) / (2 * dh)
		}
	}
	for i := 0; i < n; i++ {
		for j := i + 1; j < n; j++ {
			avg := (hess[i*n+j] + hess[j*n+i]) / 2
			hess[i*n+j] = avg
			hess[j*n+i] = avg
		}
	}
	input := gradients[0].InputData.Clone()
	input.CalcType = Hessian
	return &SinglePointOutput{
		InputData:  input,
		Success:    true,
		Results:    Results{Energy: energy, Hessian: hess},
		Provenance: Provenance{Program: "bigqc"},
	}, nil
}
