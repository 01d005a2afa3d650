package bigqc

import (
	"context"
	"math"
	"testing"
)

func hookeInput(mol *Molecule, calctype CalcType, keywords map[string]interface{}) *ProgramInput {
	return &ProgramInput{
		Molecule: mol,
		CalcType: calctype,
		Model:    Model{Method: "hooke"},
		Keywords: keywords,
	}
}

func TestHookeEquilibrium(t *testing.T) {
	// default r0 makes the input geometry a stationary point
	out, fail := Hooke{}.Run(context.Background(),
		hookeInput(water(), Gradient, nil))
	if fail != nil {
		t.Fatalf("hooke failed: %v", fail.Message)
	}
	if out.Results.Energy != 0 {
		t.Errorf("got %v, wanted zero energy\n", out.Results.Energy)
	}
	for i, g := range out.Results.Gradient {
		if g != 0 {
			t.Errorf("gradient component %d is %v, wanted 0\n", i, g)
		}
	}
	if !out.Success {
		t.Error("output not marked successful")
	}
	if out.Stdout == "" {
		t.Error("no stdout captured")
	}
}

func TestHookeStretchedEnergy(t *testing.T) {
	mol := hydrogen() // r = 1.4
	out, fail := Hooke{}.Run(context.Background(),
		hookeInput(mol, Energy, map[string]interface{}{"k": 0.5, "r0": 1.3}))
	if fail != nil {
		t.Fatalf("hooke failed: %v", fail.Message)
	}
	want := 0.5 * 0.5 * 0.1 * 0.1
	if math.Abs(out.Results.Energy-want) > 1e-14 {
		t.Errorf("got %v, wanted %v\n", out.Results.Energy, want)
	}
	if out.Results.Gradient != nil {
		t.Error("energy job returned a gradient")
	}
}

func TestHookeGradientNumeric(t *testing.T) {
	// analytic gradient against a central difference of the energy
	mol := water()
	keywords := map[string]interface{}{"k": 0.4, "r0": 1.7}
	out, fail := Hooke{}.Run(context.Background(),
		hookeInput(mol, Gradient, keywords))
	if fail != nil {
		t.Fatalf("hooke failed: %v", fail.Message)
	}
	const h = 1e-6
	for i := 0; i < 9; i++ {
		plus, fail := Hooke{}.Run(context.Background(),
			hookeInput(mol.Displace(i, h), Energy, keywords))
		if fail != nil {
			t.Fatal(fail.Message)
		}
		minus, fail := Hooke{}.Run(context.Background(),
			hookeInput(mol.Displace(i, -h), Energy, keywords))
		if fail != nil {
			t.Fatal(fail.Message)
		}
		numeric := (plus.Results.Energy - minus.Results.Energy) / (2 * h)
		if math.Abs(out.Results.Gradient[i]-numeric) > 1e-7 {
			t.Errorf("gradient %d: got %v, numeric %v\n", i, out.Results.Gradient[i], numeric)
		}
	}
}

func TestHookeFailures(t *testing.T) {
	tests := []struct {
		name  string
		input *ProgramInput
	}{
		{"unknown method", &ProgramInput{
			Molecule: water(), CalcType: Energy,
			Model: Model{Method: "b3lyp", Basis: "6-31g"},
		}},
		{"unsupported calctype", hookeInput(water(), Optimization, nil)},
		{"single atom", hookeInput(&Molecule{Atoms: []Atom{{Symbol: "He"}}}, Energy, nil)},
		{"bad spring constant", hookeInput(water(), Energy,
			map[string]interface{}{"k": -1.0})},
		{"wrong parameter count", hookeInput(water(), Energy,
			map[string]interface{}{"k": []interface{}{0.5, 0.5}})},
		{"non-numeric parameter", hookeInput(water(), Energy,
			map[string]interface{}{"k": "strong"})},
	}
	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			out, fail := Hooke{}.Run(context.Background(), test.input)
			if fail == nil {
				t.Fatalf("wanted a failure, got %+v", out)
			}
			if fail.Message == "" || fail.Traceback == "" || fail.Stdout == "" {
				t.Errorf("failure diagnostics incomplete: %+v\n", fail)
			}
			if fail.InputData != test.input {
				t.Error("failure lost its triggering input")
			}
			if fail.Program != "hooke" {
				t.Errorf("got program %q, wanted hooke\n", fail.Program)
			}
		})
	}
}

func TestHookePerPairParameters(t *testing.T) {
	mol := water()
	// per-pair slice: OH, OH, HH
	keywords := map[string]interface{}{
		"k":  []interface{}{0.5, 0.5, 0.1},
		"r0": []interface{}{1.8, 1.8, 2.9},
	}
	out, fail := Hooke{}.Run(context.Background(), hookeInput(mol, Energy, keywords))
	if fail != nil {
		t.Fatalf("hooke failed: %v", fail.Message)
	}
	if out.Results.Energy <= 0 {
		t.Errorf("got %v, wanted a strained positive energy\n", out.Results.Energy)
	}
}
