// Package solver turns a deposited mass grid into a gravitational potential.
//
// Two strategies share the [Solver] interface:
//
//   - [Relaxation]: fixed-count 7-point smoothing of the source -G*mass with
//     the boundary shell held at zero
//   - [Spectral]: forward 3D FFT, multiplication by the Laplacian Green's
//     function -4*pi*G/k^2, inverse FFT
//
// Strategies are looked up by name through a [Registry]:
//
//	reg := solver.NewRegistry()
//	s, err := reg.Get("spectral", solver.Params{Workers: 8})
//	if err != nil {
//		return err
//	}
//	s.Solve(m, cfg.G)
//
// Solve reads m.Mass and writes m.Potential (and m.Scratch for relaxation).
// It returns only after the whole potential grid is final.
package solver
