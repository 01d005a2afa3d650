package bigqc

import (
	"context"
	"sync"
	"time"
)

// Program is an interface for running a single-point calculation with
// one external quantum chemistry package. An implementation returns
// either a successful output or a structured failure, never both; it
// must not mutate the input.
type Program interface {
	Run(ctx context.Context, input *ProgramInput) (*SinglePointOutput, *ProgramFailure)
}

var programs = struct {
	sync.RWMutex
	m map[string]Program
}{m: make(map[string]Program)}

// RegisterProgram makes a program adapter available to workers under
// name. Later registrations replace earlier ones.
func RegisterProgram(name string, p Program) {
	programs.Lock()
	defer programs.Unlock()
	programs.m[name] = p
}

// LookupProgram returns the adapter registered under name
func LookupProgram(name string) (Program, bool) {
	programs.RLock()
	defer programs.RUnlock()
	p, ok := programs.m[name]
	return p, ok
}

// RunJob executes one job with its registered adapter, stamping the
// program name and wall time into the provenance
func RunJob(ctx context.Context, job Job) (*SinglePointOutput, *ProgramFailure) {
	prog, ok := LookupProgram(job.Program)
	if !ok {
		return nil, &ProgramFailure{
			Program:   job.Program,
			Message:   "no adapter registered",
			InputData: job.Input,
		}
	}
	start := time.Now()
	out, fail := prog.Run(ctx, job.Input)
	if fail != nil {
		if fail.Program == "" {
			fail.Program = job.Program
		}
		if fail.InputData == nil {
			fail.InputData = job.Input
		}
		return nil, fail
	}
	if out.Provenance.Program == "" {
		out.Provenance.Program = job.Program
	}
	out.Provenance.Wall = time.Since(start).Seconds()
	return out, nil
}
