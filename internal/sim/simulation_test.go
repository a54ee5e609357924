package sim_test

import (
	"context"
	"errors"
	"math"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/san-kum/pmsim/internal/dynamo"
	"github.com/san-kum/pmsim/internal/figures"
	"github.com/san-kum/pmsim/internal/mesh"
	"github.com/san-kum/pmsim/internal/metrics"
	"github.com/san-kum/pmsim/internal/sim"
	"github.com/san-kum/pmsim/internal/solver"
	"gonum.org/v1/gonum/spatial/r3"
)

func cubeConfig(n int, extent float64) sim.Config {
	return sim.Config{
		Grid:       mesh.Dims{X: n, Y: n, Z: n},
		Extent:     r3.Vec{X: extent, Y: extent, Z: extent},
		G:          1,
		Dt:         0.01,
		Iterations: 60,
		Boundary:   dynamo.BoundaryDrop,
		Workers:    2,
	}
}

func at(x, y, z, m float64) dynamo.Particle {
	return dynamo.NewParticle(r3.Vec{X: x, Y: y, Z: z}, r3.Vec{}, m)
}

func newSim(cfg sim.Config) *sim.Simulation {
	s, err := sim.New(cfg)
	Expect(err).NotTo(HaveOccurred())
	return s
}

var _ = Describe("Simulation", func() {
	solvers := []string{solver.RelaxationName, solver.SpectralName}

	Describe("construction", func() {
		It("rejects an invalid configuration", func() {
			cfg := cubeConfig(8, 8)
			cfg.Dt = 0
			_, err := sim.New(cfg)
			Expect(errors.Is(err, dynamo.ErrInvalidConfig)).To(BeTrue())

			cfg = cubeConfig(2, 8)
			_, err = sim.New(cfg)
			Expect(errors.Is(err, dynamo.ErrInvalidConfig)).To(BeTrue())

			cfg = cubeConfig(8, 8)
			cfg.Boundary = "wrap"
			_, err = sim.New(cfg)
			Expect(errors.Is(err, dynamo.ErrInvalidConfig)).To(BeTrue())
		})

		It("reports unknown solvers", func() {
			s := newSim(cubeConfig(8, 8))
			s.InitSimulation([]dynamo.Particle{at(4, 4, 4, 1)})
			err := s.StepWith("direct")
			Expect(errors.Is(err, dynamo.ErrUnknownSolver)).To(BeTrue())
			Expect(s.Tick()).To(Equal(0))
		})
	})

	Describe("mass deposition", func() {
		It("conserves mass for any worker count", func() {
			ps, err := figures.NewRegistry().Generate("sphere", figures.Spec{
				Count: 3000, Seed: 9, Center: r3.Vec{X: 50, Y: 50, Z: 50},
				MaxRadius: 60, MassFrom: 0.5, MassUntil: 1.5,
			})
			Expect(err).NotTo(HaveOccurred())

			for _, w := range []int{1, 2, 5} {
				cfg := cubeConfig(16, 100)
				cfg.Workers = w
				s := newSim(cfg)
				s.InitSimulation(ps)
				Expect(s.SolvePotential(solver.RelaxationName)).To(Succeed())
				Expect(s.Mesh().TotalMass()).To(BeNumerically("~", s.Store().TotalMass(), 1e-9))
			}
		})
	})

	Describe("symmetry", func() {
		for _, name := range solvers {
			name := name
			It("keeps a lone central particle at rest with "+name, func() {
				s := newSim(cubeConfig(17, 17))
				s.InitSimulation([]dynamo.Particle{at(8.5, 8.5, 8.5, 100)})

				Expect(s.StepWith(name)).To(Succeed())

				p, err := s.Particle(0)
				Expect(err).NotTo(HaveOccurred())
				Expect(r3.Norm(p.Vel)).To(BeNumerically("<", 1e-9))
				Expect(r3.Norm(r3.Sub(p.Pos, r3.Vec{X: 8.5, Y: 8.5, Z: 8.5}))).To(BeNumerically("<", 1e-9))
			})
		}
	})

	Describe("two-body attraction", func() {
		for _, name := range solvers {
			name := name
			It("pulls two equal masses together with "+name, func() {
				s := newSim(cubeConfig(32, 32))
				s.InitSimulation([]dynamo.Particle{
					at(12.5, 16.5, 16.5, 50),
					at(19.5, 16.5, 16.5, 50),
				})

				Expect(s.StepWith(name)).To(Succeed())

				vx, _, _ := s.Velocities()
				Expect(vx[0]).To(BeNumerically(">", 0))
				Expect(vx[1]).To(BeNumerically("<", 0))
				Expect(vx[0]).To(BeNumerically("~", -vx[1], 1e-6*math.Abs(vx[0])))
			})
		}
	})

	Describe("determinism", func() {
		run := func(workers int) []dynamo.Particle {
			ps := figures.Sphere(figures.Spec{
				Count: 4000, Seed: 3, Center: r3.Vec{X: 16, Y: 16, Z: 16},
				MaxRadius: 8, MassFrom: 1, MassUntil: 1,
			})
			cfg := cubeConfig(16, 32)
			cfg.Workers = workers
			s := newSim(cfg)
			s.InitSimulation(ps)
			Expect(s.Run(context.Background(), 3, solver.RelaxationName, nil)).To(Succeed())
			return s.Particles()
		}

		It("repeats bit for bit with a fixed worker count", func() {
			Expect(run(4)).To(Equal(run(4)))
		})

		It("agrees within tolerance across worker counts", func() {
			a, b := run(1), run(6)
			Expect(a).To(HaveLen(len(b)))
			for i := range a {
				Expect(r3.Norm(r3.Sub(a[i].Pos, b[i].Pos))).To(BeNumerically("<", 1e-9))
			}
		})
	})

	Describe("boundary policy", func() {
		It("drops particles that leave the box and keeps order", func() {
			s := newSim(cubeConfig(8, 8))
			ps := []dynamo.Particle{at(4, 4, 4, 1), at(0.01, 4, 4, 2), at(5, 5, 5, 3)}
			ps[1].Vel = r3.Vec{X: -100}
			s.InitSimulation(ps)

			Expect(s.Step()).To(Succeed())

			Expect(s.Len()).To(Equal(2))
			Expect(s.Masses()).To(Equal([]float64{1, 3}))
		})

		It("clamps particles at the wall instead when configured", func() {
			cfg := cubeConfig(8, 8)
			cfg.Boundary = dynamo.BoundaryClamp
			s := newSim(cfg)
			p := at(0.01, 4, 4, 2)
			p.Vel = r3.Vec{X: -100, Y: 1}
			s.InitSimulation([]dynamo.Particle{p})

			Expect(s.Step()).To(Succeed())

			Expect(s.Len()).To(Equal(1))
			x, _, _ := s.Positions()
			vx, vy, _ := s.Velocities()
			Expect(x[0]).To(Equal(0.0))
			Expect(vx[0]).To(Equal(0.0))
			Expect(vy[0]).NotTo(BeZero())
		})
	})

	Describe("black hole", func() {
		var s *sim.Simulation

		BeforeEach(func() {
			s = newSim(cubeConfig(8, 8))
			s.InitSimulation([]dynamo.Particle{at(1, 1, 1, 1), at(2, 2, 2, 1)})
		})

		It("is appended at mid depth with the default mass", func() {
			i := s.InjectBlackHole(3, 5, 0)
			Expect(i).To(Equal(2))
			p, err := s.Particle(i)
			Expect(err).NotTo(HaveOccurred())
			Expect(p.Pos).To(Equal(r3.Vec{X: 3, Y: 5, Z: 4}))
			Expect(p.Mass).To(Equal(sim.DefaultBlackHoleMass))

			idx, ok := s.BlackHole()
			Expect(ok).To(BeTrue())
			Expect(idx).To(Equal(2))
		})

		It("moves instead of duplicating", func() {
			s.InjectBlackHole(3, 5, 10)
			s.InjectBlackHole(6, 6, 10)
			Expect(s.Len()).To(Equal(3))
			x, y, _ := s.Positions()
			Expect(x[2]).To(Equal(6.0))
			Expect(y[2]).To(Equal(6.0))
		})

		It("releases by zeroing its mass", func() {
			i := s.InjectBlackHole(3, 5, 10)
			s.DropBlackHole()
			Expect(s.Masses()[i]).To(BeZero())
			_, ok := s.BlackHole()
			Expect(ok).To(BeFalse())
			Expect(s.MoveBlackHole(1, 1)).To(MatchError(dynamo.ErrIndexOutOfRange))
		})

		It("follows compaction", func() {
			ps := []dynamo.Particle{at(0.01, 4, 4, 1), at(4, 4, 4, 1)}
			ps[0].Vel = r3.Vec{X: -100}
			s.InitSimulation(ps)
			s.InjectBlackHole(6, 6, 5)

			Expect(s.Step()).To(Succeed())

			idx, ok := s.BlackHole()
			Expect(ok).To(BeTrue())
			Expect(idx).To(Equal(1))
			Expect(s.Masses()[idx]).To(Equal(5.0))
		})
	})

	Describe("particle access", func() {
		It("finds the nearest particle", func() {
			s := newSim(cubeConfig(8, 8))
			_, ok := s.NearestParticle(r3.Vec{})
			Expect(ok).To(BeFalse())

			s.InitSimulation([]dynamo.Particle{at(1, 1, 1, 1), at(6, 6, 6, 1), at(3, 3, 3, 1)})
			i, ok := s.NearestParticle(r3.Vec{X: 5, Y: 5, Z: 5})
			Expect(ok).To(BeTrue())
			Expect(i).To(Equal(1))
		})

		It("adds particles and sets masses by index", func() {
			s := newSim(cubeConfig(8, 8))
			Expect(s.AddParticle(at(1, 1, 1, 1))).To(Equal(0))
			Expect(s.AddParticle(at(2, 1, 1, 1))).To(Equal(1))
			Expect(s.SetParticleMass(1, 9)).To(Succeed())
			Expect(s.Masses()).To(Equal([]float64{1, 9}))
			Expect(s.SetParticleMass(2, 9)).To(MatchError(dynamo.ErrIndexOutOfRange))
		})
	})

	Describe("Run", func() {
		It("stops between ticks when the context is canceled", func() {
			s := newSim(cubeConfig(8, 8))
			s.InitSimulation([]dynamo.Particle{at(4, 4, 4, 1)})
			ctx, cancel := context.WithCancel(context.Background())

			err := s.Run(ctx, 10, solver.SpectralName, func(s *sim.Simulation) error {
				if s.Tick() == 2 {
					cancel()
				}
				return nil
			})

			Expect(errors.Is(err, dynamo.ErrContextCanceled)).To(BeTrue())
			Expect(errors.Is(err, context.Canceled)).To(BeTrue())
			var simErr *dynamo.SimulationError
			Expect(errors.As(err, &simErr)).To(BeTrue())
			Expect(simErr.Tick).To(Equal(2))
		})

		It("advances the clock", func() {
			s := newSim(cubeConfig(8, 8))
			s.InitSimulation([]dynamo.Particle{at(4, 4, 4, 1)})
			Expect(s.Run(context.Background(), 5, solver.RelaxationName, nil)).To(Succeed())
			Expect(s.Tick()).To(Equal(5))
			Expect(s.Time()).To(BeNumerically("~", 0.05, 1e-12))
		})
	})

	Describe("orbit stability", func() {
		It("keeps the mean radius of an orbiting shell", func() {
			cfg := cubeConfig(32, 1000)
			s := newSim(cfg)
			center := s.Mesh().CellCenter(16, 16, 16)

			ps := figures.Shell(figures.Spec{
				Count: 2000, Seed: 21, Center: center, CenterMass: 1e5,
				MinRadius: 240, MaxRadius: 270, MassFrom: 1, MassUntil: 1,
			})
			s.InitSimulation(ps)

			st, err := s.InitOrbits(solver.SpectralName)
			Expect(err).NotTo(HaveOccurred())
			Expect(st.Orbiting).To(BeNumerically(">=", 2000))

			// pick dt from the orbital period so the test does not depend on
			// the potential's normalisation
			r0 := metrics.NewMeanRadius()
			r0.Observe(s.Store())
			vx, vy, vz := s.Velocities()
			speed := 0.0
			for i := 1; i < s.Len(); i++ {
				speed += math.Sqrt(vx[i]*vx[i] + vy[i]*vy[i] + vz[i]*vz[i])
			}
			speed /= float64(s.Len() - 1)
			Expect(speed).To(BeNumerically(">", 0))
			period := 2 * math.Pi * r0.Value() / speed
			Expect(s.SetTimestep(period / 200)).To(Succeed())

			drift := metrics.NewRadiusDrift()
			drift.Observe(s.Store())
			Expect(s.Run(context.Background(), 100, solver.SpectralName, func(s *sim.Simulation) error {
				drift.Observe(s.Store())
				return nil
			})).To(Succeed())

			Expect(s.Len()).To(Equal(2001))
			Expect(drift.Value()).To(BeNumerically("<", 0.05))
		})
	})
})
