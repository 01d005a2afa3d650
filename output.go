package bigqc

import "gonum.org/v1/gonum/mat"

// Provenance records which program produced a result and how long it
// took
type Provenance struct {
	Program string  `json:"program"`
	Version string  `json:"version,omitempty"`
	Wall    float64 `json:"wall,omitempty"`
}

// Results is the payload of a successful calculation. Which fields are
// populated depends on the calctype: energy jobs fill Energy, gradient
// jobs add Gradient, hessian jobs add the matrix, and frequency
// analysis adds wavenumbers, modes, and thermochemistry.
type Results struct {
	Energy               float64     `json:"energy,omitempty"`
	Gradient             []float64   `json:"gradient,omitempty"`
	Hessian              []float64   `json:"hessian,omitempty"`
	FreqsWavenumber      []float64   `json:"freqs_wavenumber,omitempty"`
	NormalModesCartesian [][]float64 `json:"normal_modes_cartesian,omitempty"`
	Temperature          float64     `json:"temperature,omitempty"`
	Pressure             float64     `json:"pressure,omitempty"`
	ZeroPointEnergy      float64     `json:"zero_point_energy,omitempty"`
	Enthalpy             float64     `json:"enthalpy,omitempty"`
	Entropy              float64     `json:"entropy,omitempty"`
	GibbsFreeEnergy      float64     `json:"gibbs_free_energy,omitempty"`
}

// A SinglePointOutput is the structured record of one finished
// calculation: the input that produced it, the results payload, and
// provenance. Consumed read-only by the assembly pipeline.
type SinglePointOutput struct {
	InputData  *ProgramInput `json:"input_data"`
	Success    bool          `json:"success"`
	Results    Results       `json:"results"`
	Provenance Provenance    `json:"provenance"`
	Stdout     string        `json:"stdout,omitempty"`
}

// ReturnResult returns the primary result selected by the calctype:
// the energy for energy jobs, the gradient for gradient jobs, and the
// hessian matrix for hessian jobs
func (o *SinglePointOutput) ReturnResult() interface{} {
	switch o.InputData.CalcType {
	case Gradient:
		return o.Results.Gradient
	case Hessian:
		return o.Results.Hessian
	default:
		return o.Results.Energy
	}
}

// GradientVector returns the gradient payload of o, checking that its
// length matches the molecule
func (o *SinglePointOutput) GradientVector() ([]float64, error) {
	grad := o.Results.Gradient
	if grad == nil {
		return nil, ErrNotGradient
	}
	if len(grad) != 3*len(o.InputData.Molecule.Atoms) {
		return nil, ErrGradientShape
	}
	return grad, nil
}

// HessianMatrix returns the hessian payload of o as a symmetric
// matrix
func (o *SinglePointOutput) HessianMatrix() (*mat.SymDense, error) {
	n := 3 * len(o.InputData.Molecule.Atoms)
	if len(o.Results.Hessian) != n*n {
		return nil, ErrNotHessian
	}
	h := mat.NewSymDense(n, nil)
	for i := 0; i < n; i++ {
		for j := i; j < n; j++ {
			h.SetSym(i, j, o.Results.Hessian[i*n+j])
		}
	}
	return h, nil
}

// A ProgramFailure is the record produced instead of a
// SinglePointOutput when an external program invocation fails. It
// carries everything needed to diagnose the failure at the awaiting
// call site.
type ProgramFailure struct {
	Program   string        `json:"program"`
	Message   string        `json:"message"`
	Stdout    string        `json:"stdout,omitempty"`
	Traceback string        `json:"traceback,omitempty"`
	InputData *ProgramInput `json:"input_data,omitempty"`
}

// Err wraps f in its raised form
func (f *ProgramFailure) Err() error {
	return &FailureError{Failure: f}
}

// An OptimizationOutput is the record of a finished geometry
// optimization: a trajectory of single-point results ending at the
// optimized geometry
type OptimizationOutput struct {
	InputData  *ProgramInput        `json:"input_data"`
	Success    bool                 `json:"success"`
	Provenance Provenance           `json:"provenance"`
	Trajectory []*SinglePointOutput `json:"trajectory"`
}
