// Package analysis provides post-run diagnostics for particle-mesh runs.
//
//   - [RadialProfile]: mass and count per spherical shell around a center
//   - [GradientAgreement]: how closely two potential grids agree on the force field
//   - [PowerSpectrum], [DominantPeriod]: frequency content of a metric series
//
// # Comparing solvers
//
// The relaxation and spectral solvers normalize the potential differently,
// so agreement is judged on gradient direction and on a least-squares scaled
// residual rather than on raw values:
//
//	a := analysis.GradientAgreement(relaxMesh, fftMesh, points)
//	if a.MeanCosine > 0.95 {
//	    // force fields point the same way
//	}
package analysis
