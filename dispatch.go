package bigqc

import (
	"context"
	"errors"
	"fmt"
)

// A Dispatcher turns molecules into batches of displaced-geometry
// jobs and reassembles the ordered results into Hessians and
// frequencies. It holds no mutable state of its own; every request
// owns its results exclusively.
type Dispatcher struct {
	queue    Queue
	settings *Settings
}

// NewDispatcher builds a dispatcher over q. A nil settings uses the
// defaults.
func NewDispatcher(q Queue, settings *Settings) *Dispatcher {
	if settings == nil {
		settings = DefaultSettings()
	}
	return &Dispatcher{queue: q, settings: settings}
}

// Compute runs one job to completion and returns its output
func (d *Dispatcher) Compute(ctx context.Context, program string, input *ProgramInput) (*SinglePointOutput, error) {
	h, err := d.queue.Submit(ctx, program, input)
	if err != nil {
		return nil, err
	}
	return h.Wait(ctx)
}

// ComputeBatch runs jobs as one parallel unit and returns exactly
// len(jobs) outputs in submission order
func (d *Dispatcher) ComputeBatch(ctx context.Context, jobs []Job) ([]*SinglePointOutput, error) {
	b, err := d.queue.SubmitBatch(ctx, jobs)
	if err != nil {
		return nil, err
	}
	return b.Wait(ctx)
}

// Hessian dispatches the 6N displaced-geometry gradient jobs for
// input's molecule as one batch, collects the gradients in submission
// order, and assembles the central-difference Hessian. dh <= 0 takes
// the configured default step. A failing sub-job is attributed to its
// specific displacement in the returned error.
func (d *Dispatcher) Hessian(ctx context.Context, program string, input *ProgramInput, dh float64) (*SinglePointOutput, error) {
	if dh <= 0 {
		dh = d.settings.HessianStep
	}
	mols := Displacements(input.Molecule, dh)
	jobs := make([]Job, len(mols))
	for i, m := range mols {
		in := input.Clone()
		in.CalcType = Gradient
		in.Molecule = m
		jobs[i] = Job{Program: program, Input: in}
	}
	batch, err := d.queue.SubmitBatch(ctx, jobs)
	if err != nil {
		return nil, err
	}
	grads, err := batch.Wait(ctx)
	if err != nil {
		var je *JobError
		if errors.As(err, &je) {
			sign := "+"
			if je.Index%2 == 1 {
				sign = "-"
			}
			return nil, fmt.Errorf("bigqc: gradient at %s%g bohr along coordinate %d: %w",
				sign, dh, je.Index/2, je.Err)
		}
		return nil, err
	}
	hess, err := AssembleHessian(grads, dh)
	if err != nil {
		return nil, err
	}
	// envelope carries the undisplaced geometry
	hess.InputData.Molecule = input.Molecule
	return hess, nil
}

// Frequencies runs the full pipeline: a dispatched Hessian followed
// by normal-mode analysis and thermochemistry at the given
// temperature in K and pressure in atm (non-positive values take the
// defaults)
func (d *Dispatcher) Frequencies(ctx context.Context, program string, input *ProgramInput, dh, temperature, pressure float64) (*SinglePointOutput, error) {
	hess, err := d.Hessian(ctx, program, input, dh)
	if err != nil {
		return nil, err
	}
	return FrequencyAnalysis(hess, temperature, pressure)
}
