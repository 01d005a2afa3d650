package bigqc

import (
	"context"
	"errors"
	"math"
	"testing"

	"github.com/stretchr/testify/require"
)

func testQueue(t *testing.T) *LocalQueue {
	t.Helper()
	q := NewLocalQueue(&Settings{
		WorkerConcurrency:  4,
		PrefetchMultiplier: 2,
		HessianStep:        DefaultHessianStep,
	}, NewMemoryBackend())
	t.Cleanup(q.Close)
	return q
}

func TestComputeSingle(t *testing.T) {
	d := NewDispatcher(testQueue(t), nil)
	out, err := d.Compute(context.Background(), "hooke",
		hookeInput(hydrogen(), Energy, map[string]interface{}{"k": 0.5, "r0": 1.3}))
	require.NoError(t, err)
	require.True(t, out.Success)
	require.InDelta(t, 0.5*0.5*0.1*0.1, out.Results.Energy, 1e-14)
	require.Equal(t, "hooke", out.Provenance.Program)
	require.GreaterOrEqual(t, out.Provenance.Wall, 0.0)
}

func TestComputeBatchOrdered(t *testing.T) {
	// jobs with distinct stretches so each output is attributable
	const n = 24
	jobs := make([]Job, n)
	wants := make([]float64, n)
	for i := range jobs {
		r0 := 1.0 + float64(i)*0.01
		jobs[i] = Job{
			Program: "hooke",
			Input: hookeInput(hydrogen(), Energy,
				map[string]interface{}{"k": 0.5, "r0": r0}),
		}
		stretch := 1.4 - r0
		wants[i] = 0.5 * 0.5 * stretch * stretch
	}
	d := NewDispatcher(testQueue(t), nil)
	outs, err := d.ComputeBatch(context.Background(), jobs)
	require.NoError(t, err)
	require.Len(t, outs, n)
	for i, out := range outs {
		require.InDelta(t, wants[i], out.Results.Energy, 1e-14,
			"result %d out of submission order", i)
	}
}

func TestComputeProgramFailure(t *testing.T) {
	d := NewDispatcher(testQueue(t), nil)
	_, err := d.Compute(context.Background(), "hooke", &ProgramInput{
		Molecule: water(),
		CalcType: Energy,
		Model:    Model{Method: "b3lyp", Basis: "sto-3g"},
	})
	require.Error(t, err)
	var fe *FailureError
	require.ErrorAs(t, err, &fe, "program failure should surface as FailureError")
	require.NotEmpty(t, fe.Failure.Traceback)
	require.NotEmpty(t, fe.Failure.Stdout)
	require.NotNil(t, fe.Failure.InputData)
	require.Equal(t, "hooke", fe.Failure.Program)
	require.False(t, errors.Is(err, ErrUnknownProgram))
}

func TestComputeUnknownProgram(t *testing.T) {
	d := NewDispatcher(testQueue(t), nil)
	_, err := d.Compute(context.Background(), "psi9",
		hookeInput(water(), Energy, nil))
	require.ErrorIs(t, err, ErrUnknownProgram)
	var fe *FailureError
	require.False(t, errors.As(err, &fe),
		"a dispatch error must not masquerade as a program failure")
}

// analyticSpring returns the equilibrium Hessian of a single spring
// of constant k between atoms separated by d
func analyticSpring(k float64, d [3]float64) []float64 {
	r := math.Sqrt(d[0]*d[0] + d[1]*d[1] + d[2]*d[2])
	h := make([]float64, 36)
	for x := 0; x < 3; x++ {
		for y := 0; y < 3; y++ {
			v := k * d[x] * d[y] / (r * r)
			h[x*6+y] = v
			h[(x+3)*6+y+3] = v
			h[x*6+y+3] = -v
			h[(x+3)*6+y] = -v
		}
	}
	return h
}

func TestDispatchHessian(t *testing.T) {
	d := NewDispatcher(testQueue(t), nil)
	input := hookeInput(hydrogen(), Gradient,
		map[string]interface{}{"k": 0.5, "r0": 1.4})
	out, err := d.Hessian(context.Background(), "hooke", input, 0)
	require.NoError(t, err)
	require.Equal(t, Hessian, out.InputData.CalcType)
	require.Same(t, input.Molecule, out.InputData.Molecule,
		"envelope should carry the undisplaced geometry")
	want := analyticSpring(0.5, [3]float64{0, 0, 1.4})
	require.Len(t, out.Results.Hessian, 36)
	for i := range want {
		require.InDelta(t, want[i], out.Results.Hessian[i], 1e-5,
			"hessian entry %d", i)
	}
}

func TestDispatchFrequencies(t *testing.T) {
	d := NewDispatcher(testQueue(t), nil)
	input := hookeInput(hydrogen(), Gradient,
		map[string]interface{}{"k": 0.5, "r0": 1.4})
	out, err := d.Frequencies(context.Background(), "hooke", input, 0, 0, 0)
	require.NoError(t, err)
	require.Len(t, out.Results.FreqsWavenumber, 1, "diatomic has one vibration")
	m := 1.00782503207
	require.InDelta(t, Wavenumber(2*0.5/m), out.Results.FreqsWavenumber[0], 0.5)
	require.NotZero(t, out.Results.GibbsFreeEnergy)
}

func TestDispatchHessianFailureAttribution(t *testing.T) {
	d := NewDispatcher(testQueue(t), nil)
	input := &ProgramInput{
		Molecule: hydrogen(),
		CalcType: Gradient,
		Model:    Model{Method: "mp2"},
	}
	_, err := d.Hessian(context.Background(), "hooke", input, 0)
	require.Error(t, err)
	var fe *FailureError
	require.ErrorAs(t, err, &fe)
	require.Contains(t, err.Error(), "coordinate 0",
		"failure should name the displacement that died")
}
