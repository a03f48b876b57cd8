package particle_test

import (
	"math"
	"math/rand"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	"gonum.org/v1/gonum/spatial/r3"

	"github.com/san-kum/pbdsim/internal/constraint"
	"github.com/san-kum/pbdsim/internal/force"
	"github.com/san-kum/pbdsim/internal/particle"
)

var _ = Describe("System", func() {
	Describe("construction", func() {
		It("allocates parallel buffers for the particle count", func() {
			s, err := particle.New(4, 2)
			Expect(err).NotTo(HaveOccurred())
			Expect(s.Count()).To(Equal(4))
			Expect(s.Iterations()).To(Equal(2))
			Expect(s.Positions).To(HaveLen(12))
			Expect(s.PositionsPrev).To(HaveLen(12))
			Expect(s.AccumulatedForces).To(HaveLen(12))
			Expect(s.Weights).To(Equal([]float64{1, 1, 1, 1}))
		})

		It("raises iterations to one", func() {
			s, err := particle.New(1, 0)
			Expect(err).NotTo(HaveOccurred())
			Expect(s.Iterations()).To(Equal(1))
		})

		It("rejects an empty system", func() {
			_, err := particle.New(0, 1)
			Expect(err).To(MatchError(particle.ErrInvalidCount))
		})

		It("copies initial positions into both buffers", func() {
			initial := []float64{1, 2, 3, 4, 5, 6}
			s, err := particle.FromPositions(initial, 1)
			Expect(err).NotTo(HaveOccurred())
			Expect(s.Count()).To(Equal(2))
			Expect(s.Positions).To(Equal(initial))
			Expect(s.PositionsPrev).To(Equal(initial))

			initial[0] = 99
			Expect(s.Positions[0]).To(Equal(1.0))
		})

		It("rejects a ragged buffer", func() {
			_, err := particle.FromPositions([]float64{1, 2}, 1)
			Expect(err).To(MatchError(particle.ErrBufferLength))
		})
	})

	Describe("integration", func() {
		It("keeps implicit velocity", func() {
			s, _ := particle.New(1, 1)
			s.Positions[0] = 1
			s.Tick(1)
			Expect(s.Positions[0]).To(Equal(2.0))
			Expect(s.PositionsPrev[0]).To(Equal(1.0))
		})

		It("scales forces by weight and delta squared", func() {
			s, _ := particle.New(2, 1)
			s.SetWeight(1, 0)
			Expect(s.AddForce(force.NewDirectional(r3.Vec{Y: -10}))).To(Succeed())

			s.Tick(0.5)

			Expect(s.Position(0)).To(Equal(r3.Vec{Y: -2.5}))
			Expect(s.Position(1)).To(Equal(r3.Vec{}))
		})

		It("sums forces exactly", func() {
			s, _ := particle.FromPositions([]float64{30, 30, 30}, 1)
			gravity := force.NewDirectional(r3.Vec{Y: -1})
			attractor := force.NewPoint(r3.Vec{X: 0, Y: 1, Z: 2}, force.PointOptions{Radius: 20})
			Expect(s.AddForce(gravity)).To(Succeed())
			Expect(s.AddForce(attractor)).To(Succeed())

			s.AccumulateForces(1)

			a := make([]float64, 3)
			g := make([]float64, 3)
			attractor.Apply(0, a, s.Positions, s.PositionsPrev)
			gravity.Apply(0, g, s.Positions, s.PositionsPrev)
			for k := 0; k < 3; k++ {
				Expect(s.AccumulatedForces[k]).To(BeNumerically("~", a[k]+g[k], 1e-12))
			}
		})

		It("rebuilds the force buffer every tick", func() {
			s, _ := particle.New(1, 1)
			wind := force.NewDirectional(r3.Vec{X: 1})
			Expect(s.AddForce(wind)).To(Succeed())
			s.AccumulateForces(1)
			s.AccumulateForces(1)
			Expect(s.AccumulatedForces[0]).To(Equal(1.0))

			s.RemoveForce(wind)
			s.AccumulateForces(1)
			Expect(s.AccumulatedForces[0]).To(Equal(0.0))
		})
	})

	Describe("constraints", func() {
		It("separates coincident particles to the target distance", func() {
			s, _ := particle.New(2, 10)
			Expect(s.AddConstraint(constraint.NewDistance(2, 0, 1))).To(Succeed())
			s.Tick(1)
			Expect(s.Distance(0, 1)).To(BeNumerically("~", 2, 0.1))
		})

		It("converges an angle", func() {
			s, _ := particle.FromPositions([]float64{1, 0, 0, 0, 0, 0, 1, 1, 0}, 15)
			Expect(s.AddConstraint(constraint.NewAngle(math.Pi/2, 0, 1, 2))).To(Succeed())
			s.Tick(1)
			Expect(s.Angle(0, 1, 2)).To(BeNumerically("~", math.Pi/2, 0.1))
		})

		It("clamps particles into a box", func() {
			s, _ := particle.FromPositions([]float64{20, -20, -50}, 1)
			box := constraint.NewBox(r3.Vec{X: -1, Y: -2, Z: -3}, r3.Vec{X: 4, Y: 5, Z: 6})
			Expect(s.AddConstraint(box)).To(Succeed())
			s.Tick(1)

			p := s.Position(0)
			Expect(p.X).To(BeNumerically("<=", 4))
			Expect(p.Y).To(BeNumerically(">=", -2))
			Expect(p.Z).To(BeNumerically(">=", -3))
		})

		It("holds pinned particles exactly", func() {
			s, _ := particle.New(2, 3)
			Expect(s.AddForce(force.NewDirectional(r3.Vec{Y: -9.8}))).To(Succeed())
			Expect(s.AddConstraint(constraint.NewDistance(1, 0, 1))).To(Succeed())
			Expect(s.AddPinConstraint(constraint.NewPoint(r3.Vec{X: 1, Y: 2, Z: 3}, 0))).To(Succeed())

			for k := 0; k < 5; k++ {
				s.Tick(1.0 / 60)
				Expect(s.Position(0)).To(Equal(r3.Vec{X: 1, Y: 2, Z: 3}))
				Expect(s.PositionsPrev[:3]).To(Equal([]float64{1, 2, 3}))
			}
		})

		It("routes constraints by scope", func() {
			s, _ := particle.New(3, 1)
			local := constraint.NewDistance(1, 0, 1)
			global := constraint.NewBoundingPlane(r3.Vec{}, r3.Vec{Y: 1}, 0)
			Expect(s.AddConstraint(local)).To(Succeed())
			Expect(s.AddConstraint(global)).To(Succeed())

			Expect(s.Constraints()).To(Equal([]constraint.Constraint{global, local}))
			Expect(s.PinConstraints()).To(BeEmpty())
		})

		It("rejects constraints referencing missing particles", func() {
			s, _ := particle.New(2, 1)
			err := s.AddConstraint(constraint.NewDistance(1, 0, 2))
			Expect(err).To(MatchError(particle.ErrInvalidConstraint))
			Expect(err).To(MatchError(particle.ErrIndexOutOfRange))
			Expect(s.Constraints()).To(BeEmpty())

			err = s.AddPinConstraint(constraint.NewPoint(r3.Vec{}, 5))
			Expect(err).To(MatchError(particle.ErrIndexOutOfRange))
		})

		It("rejects moving a registered plane past the last particle", func() {
			s, _ := particle.New(4, 1)
			s.SetPosition(1, 1, 0, 0)
			s.SetPosition(2, 0, 0, 1)
			s.SetPosition(3, 2, 5, 3)
			pl := constraint.NewPlane(0, 1, 2, 3)
			Expect(s.AddConstraint(pl)).To(Succeed())

			Expect(pl.SetPlane(0, 1, 99)).To(MatchError(particle.ErrIndexOutOfRange))
			Expect(func() { s.Tick(1) }).NotTo(Panic())
			Expect(s.Position(3).Y).To(BeNumerically("~", 0, 1e-9))
		})

		It("does not expose constraint indices for editing", func() {
			s, _ := particle.New(2, 1)
			s.SetPosition(1, 1, 0, 0)
			d := constraint.NewDistance(1, 0, 1)
			Expect(s.AddConstraint(d)).To(Succeed())

			d.Indices()[1] = 50
			Expect(func() { s.Tick(1) }).NotTo(Panic())
			Expect(s.Distance(0, 1)).To(BeNumerically("~", 1, 1e-9))
		})

		It("rejects nil registrations", func() {
			s, _ := particle.New(1, 1)
			Expect(s.AddConstraint(nil)).To(MatchError(particle.ErrNilConstraint))
			Expect(s.AddForce(nil)).To(MatchError(particle.ErrNilForce))
		})

		It("rejects non-finite forces", func() {
			s, _ := particle.New(1, 1)
			err := s.AddForce(force.NewDirectional(r3.Vec{X: math.Inf(1)}))
			Expect(err).To(MatchError(particle.ErrInvalidForce))
		})
	})

	Describe("registries", func() {
		It("keeps duplicates and removes every copy", func() {
			s, _ := particle.New(2, 1)
			a := constraint.NewDistance(1, 0, 1)
			b := constraint.NewDistance(2, 0, 1)
			Expect(s.AddConstraint(a)).To(Succeed())
			Expect(s.AddConstraint(b)).To(Succeed())
			Expect(s.AddConstraint(a)).To(Succeed())
			Expect(s.Constraints()).To(HaveLen(3))

			s.RemoveConstraint(a)
			Expect(s.Constraints()).To(Equal([]constraint.Constraint{b}))
		})

		It("removes every copy of a force", func() {
			s, _ := particle.New(1, 1)
			g := force.NewDirectional(r3.Vec{Y: -1})
			w := force.NewDirectional(r3.Vec{X: 1})
			for _, f := range []force.Force{g, w, g, g} {
				Expect(s.AddForce(f)).To(Succeed())
			}

			s.RemoveForce(g)
			Expect(s.Forces()).To(Equal([]force.Force{w}))
		})

		It("removes pins independently", func() {
			s, _ := particle.New(1, 1)
			pin := constraint.NewPoint(r3.Vec{}, 0)
			Expect(s.AddPinConstraint(pin)).To(Succeed())
			Expect(s.AddPinConstraint(pin)).To(Succeed())

			s.RemoveConstraint(pin)
			Expect(s.PinConstraints()).To(HaveLen(2))

			s.RemovePinConstraint(pin)
			Expect(s.PinConstraints()).To(BeEmpty())
		})

		It("returns copies", func() {
			s, _ := particle.New(1, 1)
			Expect(s.AddForce(force.NewDirectional(r3.Vec{}))).To(Succeed())
			forces := s.Forces()
			forces[0] = nil
			Expect(s.Forces()[0]).NotTo(BeNil())
		})
	})

	Describe("state helpers", func() {
		It("sets position without velocity", func() {
			s, _ := particle.New(2, 1)
			s.SetPositionVec(1, r3.Vec{X: 3, Y: 4})
			Expect(s.CopyPosition(1, make([]float64, 3))).To(Equal([]float64{3, 4, 0}))
			Expect(s.PositionsPrev[3:]).To(Equal([]float64{3, 4, 0}))
			Expect(s.Distance(0, 1)).To(Equal(5.0))
		})

		It("perturbs deterministically for a seed", func() {
			a, _ := particle.New(3, 1)
			b, _ := particle.New(3, 1)
			a.Perturb(rand.New(rand.NewSource(7)), 0.5)
			b.Perturb(rand.New(rand.NewSource(7)), 0.5)

			Expect(a.Positions).To(Equal(b.Positions))
			Expect(a.Positions).To(Equal(a.PositionsPrev))
			for _, v := range a.Positions {
				Expect(v).To(BeNumerically(">=", 0))
				Expect(v).To(BeNumerically("<", 0.5))
			}
		})

		It("visits every particle in order", func() {
			s, _ := particle.New(4, 1)
			var seen []int
			s.Each(func(i int) { seen = append(seen, i) })
			Expect(seen).To(Equal([]int{0, 1, 2, 3}))
		})

		It("reports non-finite state", func() {
			s, _ := particle.New(1, 1)
			Expect(s.Valid()).To(BeTrue())
			s.Positions[1] = math.NaN()
			Expect(s.Valid()).To(BeFalse())
		})
	})
})
