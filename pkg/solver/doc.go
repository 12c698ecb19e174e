// Package solver finds DoF values that satisfy every constraint of a sketch.
//
// The unknown vector x is the concatenation of all entity DoFs in sketch
// iteration order; the residual vector F(x) is the concatenation of all
// constraint errors. Two strategies are available: a Levenberg-Marquardt
// root finder that drives F to zero directly, and a BFGS minimizer of the
// sum of squared residuals. Both warm-start from the current DoF values and
// write every accepted step back into the sketch.
package solver
