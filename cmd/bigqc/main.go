/*
bigqc command-line driver
-------------------------
Reads a molecule in XYZ format, dispatches the displaced-geometry
gradient jobs for a finite-difference Hessian over an in-process
worker pool, and prints the harmonic wavenumbers and thermochemistry.
*/
package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"math"
	"time"

	"bigqc"
	"bigqc/store"
)

var (
	config      = flag.String("config", "", "path to a YAML settings file")
	program     = flag.String("program", "hooke", "program adapter to run gradients with")
	method      = flag.String("method", "hooke", "method for the model specification")
	basis       = flag.String("basis", "", "basis set for the model specification")
	charge      = flag.Int("charge", 0, "net molecular charge")
	mult        = flag.Int("mult", 1, "spin multiplicity")
	dh          = flag.Float64("dh", 0, "finite-difference step in bohr, 0 = configured default")
	temperature = flag.Float64("temp", 0, "temperature in K, 0 = 298.15")
	pressure    = flag.Float64("pressure", 0, "pressure in atm, 0 = 1")
	timeout     = flag.Duration("timeout", time.Hour, "how long to wait for the dispatched batch")
)

func main() {
	flag.Parse()
	if flag.NArg() < 1 {
		log.Fatal("bigqc: no geometry file supplied")
	}
	settings, err := bigqc.LoadSettings(*config)
	if err != nil {
		log.Fatalf("bigqc: loading settings: %v", err)
	}
	mol, err := bigqc.LoadXYZ(flag.Arg(0))
	if err != nil {
		log.Fatalf("bigqc: reading geometry: %v", err)
	}
	mol.Charge = *charge
	mol.Multiplicity = *mult

	backend, err := store.Open(settings.BackendURL)
	if err != nil {
		log.Fatalf("bigqc: opening result backend: %v", err)
	}
	defer backend.Close()
	queue := bigqc.NewLocalQueue(settings, backend)
	defer queue.Close()

	input := &bigqc.ProgramInput{
		Molecule: mol,
		CalcType: bigqc.Gradient,
		Model:    bigqc.Model{Method: *method, Basis: *basis},
	}
	ctx, cancel := context.WithTimeout(context.Background(), *timeout)
	defer cancel()
	out, err := bigqc.NewDispatcher(queue, settings).
		Frequencies(ctx, *program, input, *dh, *temperature, *pressure)
	if err != nil {
		log.Fatalf("bigqc: %v", err)
	}
	Summarize(out)
}

// Summarize prints a table of the harmonic wavenumbers and the
// derived thermochemistry
func Summarize(out *bigqc.SinglePointOutput) {
	res := out.Results
	fmt.Printf("+%10s-+%12s-+\n", "----------", "------------")
	fmt.Printf("|%10s |%12s |\n", "Mode", "Freq (cm-1)")
	fmt.Printf("+%10s-+%12s-+\n", "----------", "------------")
	for i, nu := range res.FreqsWavenumber {
		label := fmt.Sprintf("%d", i+1)
		if nu < 0 {
			label += "i"
			nu = math.Abs(nu)
		}
		fmt.Printf("|%10s |%12.1f |\n", label, nu)
	}
	fmt.Printf("+%10s-+%12s-+\n", "----------", "------------")
	fmt.Printf("T   = %10.2f K\n", res.Temperature)
	fmt.Printf("P   = %10.2f atm\n", res.Pressure)
	fmt.Printf("ZPE = %14.8f Eh\n", res.ZeroPointEnergy)
	fmt.Printf("H   = %14.8f Eh\n", res.Enthalpy)
	fmt.Printf("S   = %14.8f Eh/K\n", res.Entropy)
	fmt.Printf("G   = %14.8f Eh\n", res.GibbsFreeEnergy)
}
