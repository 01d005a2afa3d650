package bigqc

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"gonum.org/v1/gonum/mat"
)

// angbohr converts lengths in Angstroms to bohr
const angbohr = 0.529177210903

// ptable maps element symbols to the mass of the most abundant
// isotope in amu
var ptable = map[string]float64{
	"H": 1.00782503207, "He": 4.00260325415, "Li": 7.01600455,
	"Be": 9.0121822, "B": 11.0093054, "C": 12.0,
	"N": 14.0030740048, "O": 15.99491461956, "F": 18.99840322,
	"Ne": 19.9924401754, "Na": 22.9897692809, "Mg": 23.9850417,
	"Al": 26.98153863, "Si": 27.9769265325, "P": 30.97376163,
	"S": 31.972071, "Cl": 34.96885268, "Ar": 39.9623831225,
}

// An Atom is an element symbol and a position in bohr
type Atom struct {
	Symbol string     `json:"symbol"`
	Coords [3]float64 `json:"coords"`
}

// A Molecule is an ordered list of atoms with a net charge and spin
// multiplicity. Masses overrides the tabulated atomic masses when
// non-nil; it must then have one entry per atom. A Molecule is
// immutable once built and shared by reference across every job
// derived from it.
type Molecule struct {
	Atoms        []Atom    `json:"atoms"`
	Charge       int       `json:"charge"`
	Multiplicity int       `json:"multiplicity"`
	Masses       []float64 `json:"masses,omitempty"`
}

// Coords returns the flattened 3N Cartesian coordinates of m in bohr
func (m *Molecule) Coords() []float64 {
	coords := make([]float64, 0, 3*len(m.Atoms))
	for _, a := range m.Atoms {
		coords = append(coords, a.Coords[0], a.Coords[1], a.Coords[2])
	}
	return coords
}

// AtomicMasses returns the mass of each atom in amu, taking
// per-molecule overrides if present and tabulated masses otherwise
func (m *Molecule) AtomicMasses() ([]float64, error) {
	if m.Masses != nil {
		if len(m.Masses) != len(m.Atoms) {
			return nil, fmt.Errorf("bigqc: %d mass overrides for %d atoms",
				len(m.Masses), len(m.Atoms))
		}
		out := make([]float64, len(m.Masses))
		copy(out, m.Masses)
		return out, nil
	}
	out := make([]float64, len(m.Atoms))
	for i, a := range m.Atoms {
		mass, ok := ptable[a.Symbol]
		if !ok {
			return nil, fmt.Errorf("%w %q", ErrUnknownElement, a.Symbol)
		}
		out[i] = mass
	}
	return out, nil
}

// TotalMass returns the mass of m in amu
func (m *Molecule) TotalMass() (float64, error) {
	masses, err := m.AtomicMasses()
	if err != nil {
		return 0, err
	}
	var tot float64
	for _, v := range masses {
		tot += v
	}
	return tot, nil
}

// Displace returns a copy of m with Cartesian coordinate coord
// (0 <= coord < 3N) shifted by delta bohr. The receiver is untouched.
func (m *Molecule) Displace(coord int, delta float64) *Molecule {
	out := &Molecule{
		Atoms:        make([]Atom, len(m.Atoms)),
		Charge:       m.Charge,
		Multiplicity: m.Multiplicity,
	}
	copy(out.Atoms, m.Atoms)
	if m.Masses != nil {
		out.Masses = make([]float64, len(m.Masses))
		copy(out.Masses, m.Masses)
	}
	out.Atoms[coord/3].Coords[coord%3] += delta
	return out
}

// PrincipalMoments returns the eigenvalues of the inertia tensor of m
// in ascending order, in amu*bohr^2
func (m *Molecule) PrincipalMoments() ([]float64, error) {
	masses, err := m.AtomicMasses()
	if err != nil {
		return nil, err
	}
	var com [3]float64
	var tot float64
	for i, a := range m.Atoms {
		for x := 0; x < 3; x++ {
			com[x] += masses[i] * a.Coords[x]
		}
		tot += masses[i]
	}
	for x := 0; x < 3; x++ {
		com[x] /= tot
	}
	inertia := mat.NewSymDense(3, nil)
	for i, a := range m.Atoms {
		var r [3]float64
		for x := 0; x < 3; x++ {
			r[x] = a.Coords[x] - com[x]
		}
		r2 := r[0]*r[0] + r[1]*r[1] + r[2]*r[2]
		for x := 0; x < 3; x++ {
			for y := x; y < 3; y++ {
				v := inertia.At(x, y) - masses[i]*r[x]*r[y]
				if x == y {
					v += masses[i] * r2
				}
				inertia.SetSym(x, y, v)
			}
		}
	}
	var eig mat.EigenSym
	if ok := eig.Factorize(inertia, false); !ok {
		return nil, fmt.Errorf("bigqc: inertia tensor eigendecomposition failed")
	}
	return eig.Values(nil), nil
}

// Linear reports whether m is a linear molecule, judged by the
// smallest principal moment of inertia vanishing relative to the
// largest
func (m *Molecule) Linear() (bool, error) {
	if len(m.Atoms) < 3 {
		return true, nil
	}
	moments, err := m.PrincipalMoments()
	if err != nil {
		return false, err
	}
	return moments[0] < 1e-8*moments[2], nil
}

// ParseXYZ reads a molecule in XYZ format, with coordinates in
// Angstroms, and returns it with coordinates in bohr. The charge and
// multiplicity are left at neutral singlet defaults.
func ParseXYZ(r io.Reader) (*Molecule, error) {
	scanner := bufio.NewScanner(r)
	mol := &Molecule{Multiplicity: 1}
	var n, line int
	for scanner.Scan() {
		line++
		text := strings.TrimSpace(scanner.Text())
		switch {
		case line == 1:
			count, err := strconv.Atoi(text)
			if err != nil {
				return nil, fmt.Errorf("bigqc: malformed XYZ atom count %q", text)
			}
			n = count
		case line == 2: // comment
		case text == "":
		default:
			fields := strings.Fields(text)
			if len(fields) != 4 {
				return nil, fmt.Errorf("bigqc: malformed XYZ line %q", text)
			}
			var atom Atom
			atom.Symbol = fields[0]
			for x, f := range fields[1:] {
				v, err := strconv.ParseFloat(f, 64)
				if err != nil {
					return nil, fmt.Errorf("bigqc: malformed XYZ coordinate %q", f)
				}
				atom.Coords[x] = v / angbohr
			}
			mol.Atoms = append(mol.Atoms, atom)
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, err
	}
	if len(mol.Atoms) != n {
		return nil, fmt.Errorf("bigqc: XYZ header promised %d atoms, found %d",
			n, len(mol.Atoms))
	}
	return mol, nil
}

// LoadXYZ reads the XYZ file at filename
func LoadXYZ(filename string) (*Molecule, error) {
	f, err := os.Open(filename)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return ParseXYZ(f)
}

// String formats m in XYZ format with coordinates in Angstroms
func (m *Molecule) String() string {
	var buf strings.Builder
	fmt.Fprintf(&buf, "%d\n\n", len(m.Atoms))
	for _, a := range m.Atoms {
		fmt.Fprintf(&buf, "%-2s %15.10f %15.10f %15.10f\n", a.Symbol,
			a.Coords[0]*angbohr, a.Coords[1]*angbohr, a.Coords[2]*angbohr)
	}
	return buf.String()
}
