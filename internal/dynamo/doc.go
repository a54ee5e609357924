// Package dynamo provides the shared primitives of the particle-mesh
// simulator.
//
// The numeric packages build on a small set of types defined here:
//
//   - [Particle]: one conceptual particle row (position, velocity, mass, radius)
//   - [BoundaryPolicy]: what happens to particles that leave the world box
//   - [SimulationError]: an error annotated with the tick it happened on
//   - [ParallelFor] and [ParallelForWorkers]: chunked data-parallel loops
//
// # Example
//
//	workers := dynamo.Workers(0)
//	dynamo.ParallelFor(n, workers, 256, func(start, end int) {
//		for i := start; i < end; i++ {
//			// ...
//		}
//	})
//
// # Thread Safety
//
// The parallel helpers block until every chunk has returned, so each call
// is a phase barrier. Callers must give each chunk a disjoint slice of the
// data it writes.
package dynamo
