package particles

import "gonum.org/v1/gonum/spatial/r3"

// InBounds reports whether p lies inside [0, extent] on every axis.
func InBounds(p, extent r3.Vec) bool {
	return p.X >= 0 && p.X <= extent.X &&
		p.Y >= 0 && p.Y <= extent.Y &&
		p.Z >= 0 && p.Z <= extent.Z
}

// Compact drops every particle outside [0, extent] and keeps the survivors in
// their original order. It returns how many particles were removed.
func (s *Store) Compact(extent r3.Vec) int {
	removed, _ := s.CompactTracked(extent, -1)
	return removed
}

// CompactTracked is Compact that also follows one particle through the pass.
// newTracked is the surviving index of tracked, or -1 when it was removed or
// tracked was negative.
func (s *Store) CompactTracked(extent r3.Vec, tracked int) (removed, newTracked int) {
	newTracked = -1
	w := 0
	n := s.Len()
	for i := 0; i < n; i++ {
		if !InBounds(s.Position(i), extent) {
			continue
		}
		if i == tracked {
			newTracked = w
		}
		if w != i {
			s.X[w], s.Y[w], s.Z[w] = s.X[i], s.Y[i], s.Z[i]
			s.VX[w], s.VY[w], s.VZ[w] = s.VX[i], s.VY[i], s.VZ[i]
			s.M[w], s.R[w] = s.M[i], s.R[i]
		}
		w++
	}
	s.truncate(w)
	return n - w, newTracked
}
