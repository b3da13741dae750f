package orrery

import (
	"math"
	"testing"

	"gonum.org/v1/gonum/floats"
)

func newTestWorld() *World {
	return NewWorld(nil)
}

func TestAddBodyAssignsSequentialIDs(t *testing.T) {
	w := newTestWorld()
	id0, err := w.AddBody(NewBody("A", 1, 0, Zero, Zero, true))
	if err != nil {
		t.Fatalf("AddBody: %v", err)
	}
	if id0 != 0 {
		t.Fatalf("first body id = %v, want 0 (sentinel)", id0)
	}
	id1, err := w.AddBody(NewBody("B", 1, 0, Zero, Zero, true))
	if err != nil {
		t.Fatalf("AddBody: %v", err)
	}
	if id1 != 1 {
		t.Fatalf("second body id = %v, want 1", id1)
	}
}

func TestAddBodyRejectsInvalidMassAndRadius(t *testing.T) {
	w := newTestWorld()
	if _, err := w.AddBody(NewBody("Bad", 0, 0, Zero, Zero, true)); err == nil {
		t.Fatal("expected error for mass <= 0")
	}
	if _, err := w.AddBody(NewBody("Bad", 1, -1, Zero, Zero, true)); err == nil {
		t.Fatal("expected error for radius < 0")
	}
	if len(w.Bodies()) != 0 {
		t.Fatal("failed insertions mutated the World")
	}
}

func TestAddBodyPartitionsBySourceVsTest(t *testing.T) {
	w := newTestWorld()
	sourceID, _ := w.AddBody(NewBody("Source", 1, 0, Zero, Zero, true))
	testID, _ := w.AddBody(NewBody("Test", 1, 0, Zero, Zero, false))

	bodies, sources, test := w.snapshotTopology()
	if len(bodies) != 2 {
		t.Fatalf("len(bodies) = %d, want 2", len(bodies))
	}
	if len(sources) != 1 || sources[0].ID() != sourceID {
		t.Fatalf("sources = %v, want just %v", sources, sourceID)
	}
	if len(test) != 1 || test[0].ID() != testID {
		t.Fatalf("test = %v, want just %v", test, testID)
	}
}

func TestBodyUnknownIDError(t *testing.T) {
	w := newTestWorld()
	if _, err := w.Body(99); err == nil {
		t.Fatal("expected UnknownID error")
	} else if se, ok := err.(*SimError); !ok || se.Kind != UnknownID {
		t.Fatalf("err = %v, want SimError{Kind: UnknownID}", err)
	}
}

func TestPausedStepIsNoOp(t *testing.T) {
	w := newTestWorld()
	id, _ := w.AddBody(NewBody("A", 1, 0, NewVector3(1, 2, 3), NewVector3(1, 0, 0), true))
	w.SetPaused(true)
	w.Step(1)

	b, _ := w.Body(id)
	if !approxEqual(b.Position(), NewVector3(1, 2, 3), 1e-12) {
		t.Fatalf("paused World moved a body: %v", b.Position())
	}
}

func TestStepAppliesTimeWarp(t *testing.T) {
	w := newTestWorld()
	w.SetTimeWarp(10)
	id, _ := w.AddBody(NewBody("A", 1, 0, Zero, NewVector3(1, 0, 0), true))
	w.Step(1) // simulated dt = 10

	b, _ := w.Body(id)
	if !approxEqual(b.Position(), NewVector3(10, 0, 0), 1e-6) {
		t.Fatalf("position = %v, want (10,0,0) under 10x time warp", b.Position())
	}
	if !floats.EqualWithinAbs(w.SimTime(), 10, 1e-9) {
		t.Fatalf("SimTime = %v, want 10", w.SimTime())
	}
}

func TestResolveReferencesNormalizesStaleID(t *testing.T) {
	w := newTestWorld()
	id, _ := w.AddBody(NewBody("A", 1, 0, Zero, Zero, true))
	b, _ := w.Body(id)
	b.SetReferenceID(42) // never inserted

	w.Step(0)
	if b.ReferenceID() != 0 {
		t.Fatalf("stale reference_id = %v, want normalized to 0", b.ReferenceID())
	}
}

func TestRecenterOnShiftsPositionsAndTrails(t *testing.T) {
	w := newTestWorld()
	w.SetMaxTrailSamples(10)
	w.SetTrailStorePeriod(1)
	// Both are test bodies (no mutual gravity), so at rest they stay put
	// and the expected positions below are exact.
	earthID, _ := w.AddBody(NewBody("Earth", 5.972e24, 0, NewVector3(100, 0, 0), Zero, false))
	moonID, _ := w.AddBody(NewBody("Moon", 7.349e22, 0, NewVector3(400, 0, 0), Zero, false))

	for i := 0; i < 3; i++ {
		w.Step(1)
	}

	if err := w.RecenterOn(earthID); err != nil {
		t.Fatalf("RecenterOn: %v", err)
	}

	earth, _ := w.Body(earthID)
	moon, _ := w.Body(moonID)
	if !approxEqual(earth.Position(), Zero, 1e-9) {
		t.Fatalf("recenter target position = %v, want origin", earth.Position())
	}
	if !approxEqual(moon.Position(), NewVector3(300, 0, 0), 1e-9) {
		t.Fatalf("moon position after recenter = %v, want (300,0,0)", moon.Position())
	}
	for _, sample := range earth.Trail() {
		if !approxEqual(sample, Zero, 1e-9) {
			t.Fatalf("earth trail sample = %v, want origin (earth never moved)", sample)
		}
	}
}

func TestRecenterOnUnknownIDErrors(t *testing.T) {
	w := newTestWorld()
	if err := w.RecenterOn(99); err == nil {
		t.Fatal("expected UnknownID error")
	}
}

func TestTrailSamplingCapAndAlignment(t *testing.T) {
	w := newTestWorld()
	w.SetMaxTrailSamples(3)
	w.SetTrailStorePeriod(1)
	idA, _ := w.AddBody(NewBody("A", 1, 0, Zero, NewVector3(1, 0, 0), true))
	idB, _ := w.AddBody(NewBody("B", 1, 0, Zero, NewVector3(0, 1, 0), true))

	for i := 0; i < 10; i++ {
		w.Step(1)
	}

	a, _ := w.Body(idA)
	b, _ := w.Body(idB)
	if len(a.Trail()) != 3 {
		t.Fatalf("len(trail) = %d, want 3", len(a.Trail()))
	}
	if len(a.Trail()) != len(b.Trail()) {
		t.Fatalf("trails not the same length: %d vs %d", len(a.Trail()), len(b.Trail()))
	}
}

func TestStepClearsExternalForceAfterStep(t *testing.T) {
	w := newTestWorld()
	id, _ := w.AddBody(NewBody("A", 1, 0, Zero, Zero, true))
	b, _ := w.Body(id)
	b.AddExternalForce(NewVector3(10, 0, 0))
	w.Step(1)
	if !b.externalForce.IsZero() {
		t.Fatalf("externalForce = %v after step, want zero", b.externalForce)
	}
}

func TestSetForceStrategyTearsDownOldPool(t *testing.T) {
	w := newTestWorld()
	w.SetForceStrategy(WorkerPoolStrategy)
	first := w.pool
	if first == nil {
		t.Fatal("expected a worker pool after selecting WorkerPoolStrategy")
	}
	w.SetForceStrategy(SerialStrategy)
	if w.pool != nil {
		t.Fatal("expected pool to be torn down after switching away from WorkerPoolStrategy")
	}
}

func TestAddSpaceshipRequiresShipState(t *testing.T) {
	w := newTestWorld()
	if _, err := w.AddSpaceship(NewBody("Plain", 1, 0, Zero, Zero, false)); err == nil {
		t.Fatal("expected error adding a plain body via AddSpaceship")
	}
}

func TestMomentumConservedUnderVerletNoExternalForce(t *testing.T) {
	w := newTestWorld()
	w.SetIntegrator(VerletIntegrator)
	w.SetForceStrategy(SerialStrategy)
	w.AddBody(NewBody("A", 5.972e24, 6.378e6, NewVector3(-1e6, 0, 0), NewVector3(0, -10, 0), true))
	w.AddBody(NewBody("B", 7.349e22, 1.7375e6, NewVector3(3.844e8, 0, 0), NewVector3(0, 1000, 0), true))

	initial := w.Momentum()
	totalMass := 5.972e24 + 7.349e22
	maxSpeed := 1000.0

	for i := 0; i < 100; i++ {
		w.Step(60)
		drift := w.Momentum() - initial
		if drift < 0 {
			drift = -drift
		}
		if drift > 1e-6*totalMass*maxSpeed {
			t.Fatalf("step %d: momentum drifted by %v, exceeds tolerance", i, drift)
		}
	}
}

// Scenario 3 of spec.md §8 (abridged): an Earth-Moon circular orbit under
// RK4 conserves energy over many steps.
func TestTwoBodyEnergyConservationRK4(t *testing.T) {
	w := newTestWorld()
	w.SetIntegrator(RK4Integrator)
	w.SetForceStrategy(SerialStrategy)

	earthMass := 5.972e24
	moonDist := 3.844e8
	w.AddBody(NewBody("Earth", earthMass, 6.378e6, Zero, Zero, true))
	moonSpeed := math.Sqrt(G * earthMass / moonDist)
	w.AddBody(NewBody("Moon", 7.349e22, 1.7375e6, NewVector3(moonDist, 0, 0), NewVector3(0, moonSpeed, 0), true))

	// gpe is only populated by a force pass, so the very first Energy()
	// call (before any Step) would read potential energy as zero and make
	// every later reading look like drift. Warm it up with one step first.
	w.Step(60)
	initialEnergy := w.Energy()
	for i := 0; i < 2000; i++ {
		w.Step(60)
	}
	drift := (w.Energy() - initialEnergy) / initialEnergy
	if drift < 0 {
		drift = -drift
	}
	if drift > 1e-2 {
		t.Fatalf("relative energy drift = %v, too large over 2000 steps", drift)
	}
}

// TestTwoBodyRK4PotentialEnergyIsNonZero guards against the regression
// where gpe accumulated across all four RK4 stages (then got wiped by a
// trailing zeroAccel), leaving Energy() reporting kinetic energy alone
// and making the conservation tests pass vacuously (§4.8, §9).
func TestTwoBodyRK4PotentialEnergyIsNonZero(t *testing.T) {
	w := newTestWorld()
	w.SetIntegrator(RK4Integrator)
	w.SetForceStrategy(SerialStrategy)

	earthMass := 5.972e24
	moonDist := 3.844e8
	w.AddBody(NewBody("Earth", earthMass, 6.378e6, Zero, Zero, true))
	moonSpeed := math.Sqrt(G * earthMass / moonDist)
	w.AddBody(NewBody("Moon", 7.349e22, 1.7375e6, NewVector3(moonDist, 0, 0), NewVector3(0, moonSpeed, 0), true))

	w.Step(60)

	wantGPE := -G * earthMass * 7.349e22 / moonDist / 1e6 // MJ, matches Energy's scaling
	var gotGPE float64
	for _, b := range w.Bodies() {
		gotGPE += b.GPE()
	}
	gotGPE /= 1e6
	if gotGPE == 0 {
		t.Fatal("total GPE is zero after an RK4 step; potential energy was not computed")
	}
	relErr := (gotGPE - wantGPE) / wantGPE
	if relErr < 0 {
		relErr = -relErr
	}
	if relErr > 1e-2 {
		t.Fatalf("total GPE = %v MJ, want ~%v MJ (single stage's worth, not ~4x)", gotGPE, wantGPE)
	}
}
