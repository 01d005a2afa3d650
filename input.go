package bigqc

import "fmt"

// CalcType names the kind of calculation a job performs
type CalcType string

const (
	Energy       CalcType = "energy"
	Gradient     CalcType = "gradient"
	Hessian      CalcType = "hessian"
	Optimization CalcType = "optimization"
)

// A Model is the numeric method and basis set specification for a
// calculation
type Model struct {
	Method string `json:"method"`
	Basis  string `json:"basis,omitempty"`
}

// SubprogramArgs carries the model and keywords forwarded to a
// subprogram when one program drives another, as in a geometry
// optimizer wrapping a gradient engine
type SubprogramArgs struct {
	Model    *Model                 `json:"model,omitempty"`
	Keywords map[string]interface{} `json:"keywords,omitempty"`
}

// A ProgramInput fully specifies one job: the molecule, what to
// compute, and how. One value per submitted job; never mutated after
// submission.
type ProgramInput struct {
	Molecule       *Molecule              `json:"molecule"`
	CalcType       CalcType               `json:"calctype"`
	Model          Model                  `json:"model"`
	Keywords       map[string]interface{} `json:"keywords,omitempty"`
	Extras         map[string]interface{} `json:"extras,omitempty"`
	Subprogram     string                 `json:"subprogram,omitempty"`
	SubprogramArgs *SubprogramArgs        `json:"subprogram_args,omitempty"`
}

// Clone returns a deep-enough copy of p for building derived jobs: the
// molecule pointer is shared (molecules are immutable), maps are
// copied so the derived input can be edited freely
func (p *ProgramInput) Clone() *ProgramInput {
	out := &ProgramInput{
		Molecule:   p.Molecule,
		CalcType:   p.CalcType,
		Model:      p.Model,
		Subprogram: p.Subprogram,
	}
	if p.Keywords != nil {
		out.Keywords = make(map[string]interface{}, len(p.Keywords))
		for k, v := range p.Keywords {
			out.Keywords[k] = v
		}
	}
	if p.Extras != nil {
		out.Extras = make(map[string]interface{}, len(p.Extras))
		for k, v := range p.Extras {
			out.Extras[k] = v
		}
	}
	if p.SubprogramArgs != nil {
		args := *p.SubprogramArgs
		out.SubprogramArgs = &args
	}
	return out
}

// ProgramArgs is the set of explicit overrides applied when deriving a
// new input from a finished calculation. Nil fields mean "carry the
// old value forward".
type ProgramArgs struct {
	Keywords       map[string]interface{} `json:"keywords,omitempty"`
	Extras         map[string]interface{} `json:"extras,omitempty"`
	Subprogram     string                 `json:"subprogram,omitempty"`
	SubprogramArgs *SubprogramArgs        `json:"subprogram_args,omitempty"`
}

// OutputToInput derives a fresh ProgramInput from the endpoint of a
// finished optimization's trajectory. Fields not named by args come
// from the trajectory endpoint; explicit overrides win.
func OutputToInput(opt *OptimizationOutput, calctype CalcType, args *ProgramArgs) (*ProgramInput, error) {
	if len(opt.Trajectory) == 0 {
		return nil, fmt.Errorf("bigqc: optimization output has an empty trajectory")
	}
	end := opt.Trajectory[len(opt.Trajectory)-1]
	if end.InputData == nil {
		return nil, fmt.Errorf("bigqc: trajectory endpoint has no input data")
	}
	next := end.InputData.Clone()
	next.CalcType = calctype
	if args == nil {
		return next, nil
	}
	if args.Keywords != nil {
		next.Keywords = args.Keywords
	}
	if args.Extras != nil {
		next.Extras = args.Extras
	}
	if args.Subprogram != "" {
		next.Subprogram = args.Subprogram
	}
	if args.SubprogramArgs != nil {
		next.SubprogramArgs = args.SubprogramArgs
	}
	return next, nil
}
