/*
bigqc distributes quantum chemistry single-point calculations over a
pool of workers and assembles the results into molecular vibrational
frequencies and thermochemical properties.

The pipeline is: generate 6N displaced geometries from a molecule,
dispatch one gradient calculation per displacement as a single batch,
collect the results in submission order, assemble a Hessian by central
finite differences, diagonalize the mass-weighted Hessian for harmonic
wavenumbers and normal modes, and derive zero-point energy, enthalpy,
entropy, and Gibbs free energy from rigid-rotor/harmonic-oscillator
partition functions.
*/
package bigqc
