package bigqc

import (
	"context"
	"fmt"
	"math"
	"strings"
)

// Hooke is a builtin force field of pairwise harmonic springs. It
// plays the part of a cheap local program: fast enough to run inline
// in tests and examples, while exercising the same adapter seam as a
// real quantum chemistry package.
//
// Keywords: "k" is the spring constant in hartree/bohr^2 (default
// 0.5) and "r0" the equilibrium separation in bohr (default: the pair
// separations of the input geometry, which makes the input a
// stationary point). Both accept a single number applied to every
// pair or a slice with one entry per pair, ordered i<j row-major.
type Hooke struct{}

func init() { RegisterProgram("hooke", Hooke{}) }

const hookeVersion = "1.0.0"

func hookeFailure(input *ProgramInput, format string, args ...interface{}) *ProgramFailure {
	msg := fmt.Sprintf(format, args...)
	return &ProgramFailure{
		Program:   "hooke",
		Message:   msg,
		Stdout:    "hooke " + hookeVersion + "\ninput rejected\n",
		Traceback: "hooke.Run: " + msg,
		InputData: input,
	}
}

// pairParam extracts a per-pair parameter from keywords: absent means
// every pair gets fallback, a number is applied uniformly, and a
// slice supplies one value per pair
func pairParam(keywords map[string]interface{}, name string, npairs int, fallback float64) ([]float64, error) {
	out := make([]float64, npairs)
	raw, ok := keywords[name]
	if !ok {
		for i := range out {
			out[i] = fallback
		}
		return out, nil
	}
	switch v := raw.(type) {
	case float64:
		for i := range out {
			out[i] = v
		}
	case int:
		for i := range out {
			out[i] = float64(v)
		}
	case []float64:
		if len(v) != npairs {
			return nil, fmt.Errorf("keyword %q has %d entries for %d pairs", name, len(v), npairs)
		}
		copy(out, v)
	case []interface{}:
		if len(v) != npairs {
			return nil, fmt.Errorf("keyword %q has %d entries for %d pairs", name, len(v), npairs)
		}
		for i, e := range v {
			f, ok := e.(float64)
			if !ok {
				return nil, fmt.Errorf("keyword %q entry %d is not a number", name, i)
			}
			out[i] = f
		}
	default:
		return nil, fmt.Errorf("keyword %q is not a number or slice", name)
	}
	return out, nil
}

// Run computes the spring energy and, for gradient jobs, its analytic
// first derivatives
func (Hooke) Run(ctx context.Context, input *ProgramInput) (*SinglePointOutput, *ProgramFailure) {
	if !strings.EqualFold(input.Model.Method, "hooke") {
		return nil, hookeFailure(input,
			"unknown method %q: this program computes only its own force field",
			input.Model.Method)
	}
	switch input.CalcType {
	case Energy, Gradient:
	default:
		return nil, hookeFailure(input, "unsupported calctype %q", input.CalcType)
	}
	mol := input.Molecule
	n := len(mol.Atoms)
	if n < 2 {
		return nil, hookeFailure(input, "need at least two atoms, got %d", n)
	}
	npairs := n * (n - 1) / 2
	ks, err := pairParam(input.Keywords, "k", npairs, 0.5)
	if err != nil {
		return nil, hookeFailure(input, "%v", err)
	}
	for p, k := range ks {
		if k <= 0 {
			return nil, hookeFailure(input, "spring constant %d is not positive: %v", p, k)
		}
	}
	r0s, err := pairParam(input.Keywords, "r0", npairs, 0)
	if err != nil {
		return nil, hookeFailure(input, "%v", err)
	}
	var (
		energy float64
		grad   = make([]float64, 3*n)
		pair   int
	)
	for i := 0; i < n; i++ {
		for j := i + 1; j < n; j++ {
			var d [3]float64
			var r2 float64
			for x := 0; x < 3; x++ {
				d[x] = mol.Atoms[i].Coords[x] - mol.Atoms[j].Coords[x]
				r2 += d[x] * d[x]
			}
			r := math.Sqrt(r2)
			if r == 0 {
				return nil, hookeFailure(input, "atoms %d and %d coincide", i, j)
			}
			r0 := r0s[pair]
			if r0 == 0 {
				r0 = r
			}
			stretch := r - r0
			energy += 0.5 * ks[pair] * stretch * stretch
			for x := 0; x < 3; x++ {
				g := ks[pair] * stretch * d[x] / r
				grad[3*i+x] += g
				grad[3*j+x] -= g
			}
			pair++
		}
	}
	out := &SinglePointOutput{
		InputData:  input,
		Success:    true,
		Results:    Results{Energy: energy},
		Provenance: Provenance{Program: "hooke", Version: hookeVersion},
		Stdout: fmt.Sprintf("hooke %s\n%d atoms, %d springs\nenergy %.12f\n",
			hookeVersion, n, npairs, energy),
	}
	if input.CalcType == Gradient {
		out.Results.Gradient = grad
	}
	return out, nil
}
