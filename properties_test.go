package orrery

import (
	"math"
	"testing"

	. "github.com/smartystreets/goconvey/convey"
)

// TestTwoBodyRK4EnergyConservationLaw restates, as a law, the energy
// conservation property already exercised on a concrete Earth-Moon layout
// in TestTwoBodyEnergyConservationRK4: an isolated two-body system integrated
// with RK4 should drift in total energy by far less than its Euler
// counterpart over the same run.
func TestTwoBodyRK4EnergyConservationLaw(t *testing.T) {
	Convey("Given an isolated two-body system under RK4", t, func() {
		build := func(integrator Integrator) *World {
			w := NewWorld(nil)
			w.SetIntegrator(integrator)
			w.SetForceStrategy(SerialStrategy)
			w.AddBody(NewBody("Primary", 5.972e24, 6.378e6, Zero, Zero, true))
			w.AddBody(NewBody("Secondary", 7.349e22, 1.7375e6, NewVector3(3.844e8, 0, 0), NewVector3(0, 1023, 0), true))
			return w
		}

		Convey("10000 steps of dt=60s should keep relative energy drift under 1e-2", func() {
			w := build(RK4Integrator)
			// gpe is only populated by a force pass; take one step before
			// reading the baseline so it includes potential energy.
			w.Step(60)
			e0 := w.Energy()
			for i := 0; i < 10000; i++ {
				w.Step(60)
			}
			drift := (w.Energy() - e0) / e0
			if drift < 0 {
				drift = -drift
			}
			So(drift, ShouldBeLessThan, 1e-2)
		})

		Convey("RK4 should drift no more than plain Euler over the same run", func() {
			rk4 := build(RK4Integrator)
			euler := build(EulerIntegrator)
			rk4.Step(60)
			euler.Step(60)
			e0rk4, e0euler := rk4.Energy(), euler.Energy()
			for i := 0; i < 5000; i++ {
				rk4.Step(60)
				euler.Step(60)
			}
			driftRK4 := math.Abs((rk4.Energy() - e0rk4) / e0rk4)
			driftEuler := math.Abs((euler.Energy() - e0euler) / e0euler)
			So(driftRK4, ShouldBeLessThanOrEqualTo, driftEuler+1e-9)
		})
	})
}

// TestMomentumConservationLaw restates the momentum conservation property
// (§8) across Verlet and RK4: with no external forces, total momentum
// should not drift beyond floating-point accumulation noise.
func TestMomentumConservationLaw(t *testing.T) {
	Convey("Given a closed N-body system with no external forces", t, func() {
		layout := func(integrator Integrator) *World {
			w := NewWorld(nil)
			w.SetIntegrator(integrator)
			w.SetForceStrategy(SerialStrategy)
			w.AddBody(NewBody("A", 5.972e24, 6.378e6, NewVector3(-1e6, 0, 0), NewVector3(0, -10, 5), true))
			w.AddBody(NewBody("B", 7.349e22, 1.7375e6, NewVector3(3.844e8, 0, 0), NewVector3(0, 1000, -2), true))
			w.AddBody(NewBody("C", 1e20, 1e5, NewVector3(0, 5e8, 0), NewVector3(-3, 0, 0), true))
			return w
		}

		Convey("Verlet should conserve momentum within tolerance over 500 steps", func() {
			w := layout(VerletIntegrator)
			m0 := w.Momentum()
			totalMass := 5.972e24 + 7.349e22 + 1e20
			for i := 0; i < 500; i++ {
				w.Step(60)
				So(math.Abs(w.Momentum()-m0), ShouldBeLessThan, 1e-6*totalMass*1000)
			}
		})

		Convey("RK4 should conserve momentum within tolerance over 500 steps", func() {
			w := layout(RK4Integrator)
			m0 := w.Momentum()
			totalMass := 5.972e24 + 7.349e22 + 1e20
			for i := 0; i < 500; i++ {
				w.Step(60)
				So(math.Abs(w.Momentum()-m0), ShouldBeLessThan, 1e-6*totalMass*1000)
			}
		})
	})
}

// TestTrailTimeAlignmentLaw restates §8's trail alignment property: every
// body's trail is sampled at the same simulated instants, so same-index
// samples across bodies describe the same moment in simulated time.
func TestTrailTimeAlignmentLaw(t *testing.T) {
	Convey("Given two bodies moving at different constant velocities", t, func() {
		w := NewWorld(nil)
		w.SetTrailStorePeriod(1)
		w.SetMaxTrailSamples(50)
		idA, _ := w.AddBody(NewBody("A", 1, 0, Zero, NewVector3(2, 0, 0), true))
		idB, _ := w.AddBody(NewBody("B", 1, 0, Zero, NewVector3(0, 3, 0), true))

		Convey("after many steps, both trails have matching length and matching scaled displacement per sample", func() {
			for i := 0; i < 20; i++ {
				w.Step(1)
			}
			a, _ := w.Body(idA)
			b, _ := w.Body(idB)
			trailA, trailB := a.Trail(), b.Trail()
			So(len(trailA), ShouldEqual, len(trailB))

			for i := range trailA {
				// A moves at 2x along X, B moves at 3x along Y: at the same
				// sample index (same simulated instant) the ratio of their
				// displacement magnitudes should match the ratio of speeds.
				if trailA[i].Norm() == 0 || trailB[i].Norm() == 0 {
					continue
				}
				ratio := trailB[i].Norm() / trailA[i].Norm()
				So(ratio, ShouldAlmostEqual, 1.5, 1e-6)
			}
		})
	})
}

// TestCollisionIdempotenceLaw restates, in the law-statement idiom, the
// property already unit-tested directly in TestCollisionIdempotence: one
// resolution pass over a non-overlapping layout leaves it non-overlapping.
func TestCollisionIdempotenceLaw(t *testing.T) {
	Convey("Given a layout of mutually non-overlapping bodies after an integration step", t, func() {
		bodies := []*Body{
			NewBody("A", 1, 1, NewVector3(-4, 0, 0), NewVector3(6, 0, 0), true),
			NewBody("B", 1, 1, NewVector3(0, 0.2, 0), Zero, true),
			NewBody("C", 1, 1, NewVector3(4, 0, 0), NewVector3(-6, 0, 0), true),
		}
		for _, b := range bodies {
			b.zeroAccel()
			EulerIntegrator.integrateStage(b, 1, SpeedOfLight, 0)
		}

		Convey("a single resolution pass leaves no pair overlapping", func() {
			resolveCollisions(bodies)
			for i := 0; i < len(bodies); i++ {
				for j := i + 1; j < len(bodies); j++ {
					dist := bodies[j].Position().Sub(bodies[i].Position()).Norm()
					So(dist, ShouldBeGreaterThanOrEqualTo, bodies[i].radius+bodies[j].radius-1e-6)
				}
			}
		})
	})
}
