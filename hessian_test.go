package bigqc

import (
	"errors"
	"math"
	"reflect"
	"testing"
)

// gradOutput wraps a raw gradient in the output shape a worker would
// produce
func gradOutput(mol *Molecule, grad []float64) *SinglePointOutput {
	return &SinglePointOutput{
		InputData: &ProgramInput{
			Molecule: mol,
			CalcType: Gradient,
			Model:    Model{Method: "hooke"},
		},
		Success:    true,
		Results:    Results{Gradient: grad},
		Provenance: Provenance{Program: "hooke"},
	}
}

// syntheticGradients builds the 2*3N ordered gradients that a force
// constant matrix k (row-major n x n) would produce under +-dh
// displacements of a zero-gradient reference
func syntheticGradients(mol *Molecule, k []float64, dh float64) []*SinglePointOutput {
	n := 3 * len(mol.Atoms)
	grads := make([]*SinglePointOutput, 0, 2*n)
	for i := 0; i < n; i++ {
		plus := make([]float64, n)
		minus := make([]float64, n)
		for j := 0; j < n; j++ {
			plus[j] = dh * k[j*n+i]
			minus[j] = -dh * k[j*n+i]
		}
		grads = append(grads, gradOutput(mol, plus), gradOutput(mol, minus))
	}
	return grads
}

func TestAssembleHessian(t *testing.T) {
	mol := &Molecule{Atoms: []Atom{{Symbol: "He"}}}
	// deliberately asymmetric to exercise the symmetrization
	k := []float64{
		1.0, 0.1, 0.2,
		0.3, 2.0, 0.4,
		0.6, 0.8, 3.0,
	}
	const dh = 5.0e-3
	got, err := AssembleHessian(syntheticGradients(mol, k, dh), dh)
	if err != nil {
		t.Fatal(err)
	}
	want := []float64{
		1.0, 0.2, 0.4,
		0.2, 2.0, 0.6,
		0.4, 0.6, 3.0,
	}
	for i := range want {
		if math.Abs(got.Results.Hessian[i]-want[i]) > 1e-10 {
			t.Fatalf("entry %d: got %v, wanted %v\n", i, got.Results.Hessian[i], want[i])
		}
	}
	if got.InputData.CalcType != Hessian {
		t.Errorf("got calctype %q, wanted %q\n", got.InputData.CalcType, Hessian)
	}
	if got.Provenance.Program != "bigqc" {
		t.Errorf("got program %q, wanted bigqc\n", got.Provenance.Program)
	}
	if !got.Success {
		t.Error("assembled hessian not marked successful")
	}
}

func TestAssembleHessianSymmetric(t *testing.T) {
	mol := water()
	n := 3 * len(mol.Atoms)
	k := make([]float64, n*n)
	// arbitrary but deterministic entries
	for i := 0; i < n; i++ {
		for j := 0; j < n; j++ {
			k[i*n+j] = math.Sin(float64(7*i+3*j)) / 10
		}
		k[i*n+i] += 2
	}
	out, err := AssembleHessian(syntheticGradients(mol, k, 5.0e-3), 5.0e-3)
	if err != nil {
		t.Fatal(err)
	}
	h := out.Results.Hessian
	for i := 0; i < n; i++ {
		for j := 0; j < n; j++ {
			if h[i*n+j] != h[j*n+i] {
				t.Fatalf("H[%d,%d] = %v but H[%d,%d] = %v", i, j, h[i*n+j], j, i, h[j*n+i])
			}
		}
	}
}

func TestAssembleHessianDeterministic(t *testing.T) {
	mol := hydrogen()
	n := 3 * len(mol.Atoms)
	k := make([]float64, n*n)
	for i := 0; i < n; i++ {
		k[i*n+i] = float64(i) + 1
	}
	grads := syntheticGradients(mol, k, 5.0e-3)
	first, err := AssembleHessian(grads, 5.0e-3)
	if err != nil {
		t.Fatal(err)
	}
	second, err := AssembleHessian(grads, 5.0e-3)
	if err != nil {
		t.Fatal(err)
	}
	if !reflect.DeepEqual(first.Results.Hessian, second.Results.Hessian) {
		t.Error("repeated assembly differs")
	}
}

func TestAssembleHessianErrors(t *testing.T) {
	mol := hydrogen()
	good := syntheticGradients(mol, make([]float64, 36), 5.0e-3)
	tests := []struct {
		name  string
		grads []*SinglePointOutput
		want  error
	}{
		{"empty", nil, ErrGradientCount},
		{"odd count", good[:11], ErrGradientCount},
		{"wrong multiple", good[:10], ErrGradientCount},
		{"short gradient", func() []*SinglePointOutput {
			bad := make([]*SinglePointOutput, len(good))
			copy(bad, good)
			bad[3] = gradOutput(mol, []float64{1, 2, 3})
			return bad
		}(), ErrGradientShape},
	}
	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			_, err := AssembleHessian(test.grads, 5.0e-3)
			if !errors.Is(err, test.want) {
				t.Errorf("got %v, wanted %v\n", err, test.want)
			}
		})
	}
}

func TestAssembleHessianEnergyBaseline(t *testing.T) {
	mol := &Molecule{Atoms: []Atom{{Symbol: "He"}}}
	grads := syntheticGradients(mol, make([]float64, 9), 5.0e-3)
	// energies symmetric about the undisplaced value average back to it
	for i, g := range grads {
		g.Results.Energy = -2.9
		if i%2 == 0 {
			g.Results.Energy += 1e-5
		} else {
			g.Results.Energy -= 1e-5
		}
	}
	out, err := AssembleHessian(grads, 5.0e-3)
	if err != nil {
		t.Fatal(err)
	}
	if math.Abs(out.Results.Energy+2.9) > 1e-12 {
		t.Errorf("got %v, wanted -2.9\n", out.Results.Energy)
	}
}
