package orrery

import (
	"runtime"
	"sync"
	"sync/atomic"

	kitlog "github.com/go-kit/log"
)

// World owns every Body, drives the step machine of §4.5, and publishes a
// read-only snapshot to a reader (renderer) thread under the discipline of
// §5. All host control-plane setters are safe to call from any goroutine
// at any time; they take effect at the next step boundary.
type World struct {
	logger kitlog.Logger

	// mu guards the body collection itself (insertion, id lookup,
	// partition membership) — NOT the per-body p/v/a fields, which the
	// sim-thread mutates lock-free per §5.
	mu             sync.Mutex
	bodies         []*Body
	byID           map[BodyID]*Body
	nextID         BodyID
	gravitySources []*Body
	testBodies     []*Body

	// snapshotLock is held by the sim-thread across a trail-append block
	// (§5), by RecenterOn while it shifts positions and trails, and by
	// readers inside WithTrails.
	snapshotLock sync.Mutex

	tSim     float64
	calendar Calendar
	nextTrailT float64

	integrator       atomic.Uint32
	forceStrategy    atomic.Uint32
	substeps         atomic.Uint32
	timeWarp         *atomicFloat64
	trailStorePeriod *atomicFloat64
	maxTrailSamples  atomic.Uint32
	storingPositions atomic.Bool
	paused           atomic.Bool
	selectedID       atomic.Uint32
	referenceID      atomic.Uint32
	running          atomic.Bool

	poolMu sync.Mutex
	pool   *workerPool
}

// NewWorld constructs an empty World with the defaults: Euler integrator,
// Serial force strategy, one substep, unit time warp, trail storage on,
// and a 1000-sample trail cap.
func NewWorld(logger kitlog.Logger) *World {
	w := &World{
		logger:           logger,
		byID:             make(map[BodyID]*Body),
		timeWarp:         newAtomicFloat64(1),
		trailStorePeriod: newAtomicFloat64(1),
	}
	w.integrator.Store(uint32(EulerIntegrator))
	w.forceStrategy.Store(uint32(SerialStrategy))
	w.substeps.Store(1)
	w.maxTrailSamples.Store(1000)
	w.storingPositions.Store(true)
	w.running.Store(true)
	return w
}

// AddBody validates and inserts a plain Body, returning its assigned id.
// The first Body ever inserted is id 0, the sentinel reference frame
// (§3). Insertion failure leaves the World unchanged (§7 InvalidBody).
func (w *World) AddBody(b *Body) (BodyID, error) {
	if b.mass <= 0 {
		return 0, newInvalidBodyErr("mass must be > 0, got %g", b.mass)
	}
	if b.radius < 0 {
		return 0, newInvalidBodyErr("radius must be >= 0, got %g", b.radius)
	}

	w.mu.Lock()
	defer w.mu.Unlock()

	id := w.nextID
	w.nextID++
	b.id = id
	w.bodies = append(w.bodies, b)
	w.byID[id] = b
	w.rebuildPartitionsLocked()

	if w.logger != nil {
		w.logger.Log("event", "add_body", "id", id, "name", b.name, "mass", b.mass)
	}
	return id, nil
}

// AddSpaceship inserts a Body constructed via NewSpaceship. It is a thin
// wrapper over AddBody; Spaceship is a tagged variant of Body, not a
// distinct type (§9 Design Notes).
func (w *World) AddSpaceship(b *Body) (BodyID, error) {
	if b.Ship == nil {
		return 0, newInvalidBodyErr("AddSpaceship requires a body constructed via NewSpaceship")
	}
	return w.AddBody(b)
}

// rebuildPartitionsLocked recomputes gravitySources/testBodies from
// bodies. Callers must hold mu.
func (w *World) rebuildPartitionsLocked() {
	w.gravitySources = w.gravitySources[:0]
	w.testBodies = w.testBodies[:0]
	for _, b := range w.bodies {
		if b.gravity {
			w.gravitySources = append(w.gravitySources, b)
		} else {
			w.testBodies = append(w.testBodies, b)
		}
	}
}

// --- Control plane (§6) ---

func (w *World) SetPaused(p bool)  { w.paused.Store(p) }
func (w *World) Paused() bool      { return w.paused.Load() }

func (w *World) SetTimeWarp(tw float64) { w.timeWarp.Store(tw) }
func (w *World) TimeWarp() float64      { return w.timeWarp.Load() }

func (w *World) SetSubsteps(n uint32) {
	if n < 1 {
		n = 1
	}
	w.substeps.Store(n)
}
func (w *World) Substeps() uint32 { return w.substeps.Load() }

func (w *World) SetIntegrator(i Integrator) { w.integrator.Store(uint32(i)) }
func (w *World) GetIntegrator() Integrator  { return Integrator(w.integrator.Load()) }

// SetForceStrategy switches strategies, tearing down any WorkerPool and
// spinning up a fresh one if the new strategy needs it (§9 "Worker pool
// ... tear down on strategy change").
func (w *World) SetForceStrategy(s ForceStrategy) {
	w.forceStrategy.Store(uint32(s))

	w.poolMu.Lock()
	defer w.poolMu.Unlock()
	if w.pool != nil {
		w.pool.shutdown()
		w.pool = nil
	}
	if s == WorkerPoolStrategy {
		w.pool = newWorkerPool(runtime.GOMAXPROCS(0))
	}
}
func (w *World) GetForceStrategy() ForceStrategy { return ForceStrategy(w.forceStrategy.Load()) }

func (w *World) SetStoringPositions(b bool) { w.storingPositions.Store(b) }
func (w *World) StoringPositions() bool     { return w.storingPositions.Load() }

func (w *World) SetTrailStorePeriod(p float64) { w.trailStorePeriod.Store(p) }
func (w *World) SetMaxTrailSamples(n uint32)   { w.maxTrailSamples.Store(n) }

func (w *World) SetSelected(id BodyID) { w.selectedID.Store(uint32(id)) }
func (w *World) Selected() BodyID      { return BodyID(w.selectedID.Load()) }

// SetReference points body bodyID's trail-view frame at refID (§6
// set_reference). refID is not required to currently exist: a reference
// to a since-removed or not-yet-added body is simply normalized back to
// the sentinel 0 at the next step boundary (§4.6).
func (w *World) SetReference(bodyID, refID BodyID) error {
	w.mu.Lock()
	defer w.mu.Unlock()
	b, ok := w.byID[bodyID]
	if !ok {
		return newUnknownIDErr(bodyID)
	}
	b.SetReferenceID(refID)
	return nil
}

// SetWorldReference sets the World-level default reference body used by
// host presentation code that has not picked a per-body frame.
func (w *World) SetWorldReference(id BodyID) { w.referenceID.Store(uint32(id)) }
func (w *World) WorldReference() BodyID      { return BodyID(w.referenceID.Load()) }

// RecenterOn re-expresses every body's position (and trail, so past and
// present samples stay in the same frame) relative to the current
// position of the body identified by id, mirroring the original source's
// ResetUniverseOrigin (see SPEC_FULL.md "Supplemented Features"). It is a
// host convenience, not a physics operation: it must be called between
// Step calls, never from within one, so it never contends with the
// single-writer-per-step discipline of §9. Velocities, the simulation
// clock, and reference ids are untouched.
func (w *World) RecenterOn(id BodyID) error {
	w.mu.Lock()
	target, ok := w.byID[id]
	if !ok {
		w.mu.Unlock()
		return newUnknownIDErr(id)
	}
	origin := target.p
	bodies := make([]*Body, len(w.bodies))
	copy(bodies, w.bodies)
	w.mu.Unlock()

	w.snapshotLock.Lock()
	defer w.snapshotLock.Unlock()
	for _, b := range bodies {
		b.p = b.p.Sub(origin)
		for i := range b.trail {
			b.trail[i] = b.trail[i].Sub(origin)
		}
	}
	return nil
}

// Stop clears the running flag the host polls between steps (§5
// Cancellation). It does not interrupt a Step already in progress.
func (w *World) Stop()          { w.running.Store(false) }
func (w *World) Running() bool  { return w.running.Load() }

// Shutdown tears down any live worker pool, letting the pool's current
// tasks drain first (§7 SchedulerShutdown).
func (w *World) Shutdown() {
	w.poolMu.Lock()
	defer w.poolMu.Unlock()
	if w.pool != nil {
		w.pool.shutdown()
		w.pool = nil
	}
}

// --- Snapshot readers (§6, reader-thread safe) ---

// Bodies returns a stable-order copy of the body slice. Per-body p/v/a may
// be read lock-free; Trail must be read under WithTrails.
func (w *World) Bodies() []*Body {
	w.mu.Lock()
	defer w.mu.Unlock()
	out := make([]*Body, len(w.bodies))
	copy(out, w.bodies)
	return out
}

// Body resolves an id to its Body.
func (w *World) Body(id BodyID) (*Body, error) {
	w.mu.Lock()
	defer w.mu.Unlock()
	b, ok := w.byID[id]
	if !ok {
		return nil, newUnknownIDErr(id)
	}
	return b, nil
}

// SimTime returns the elapsed simulated seconds. Lock-free per §5: the
// sim-thread is the sole writer.
func (w *World) SimTime() float64 { return w.tSim }

// Calendar returns the most recently rolled-over calendar breakdown.
func (w *World) Calendar() Calendar { return w.calendar }

// Energy returns total system energy in megajoules (§4.8).
func (w *World) Energy() float64 {
	var total float64
	for _, b := range w.Bodies() {
		total += b.gpe + 0.5*b.mass*b.v.Norm2()
	}
	return total / 1e6
}

// Momentum returns |sum(m*v)| over every body (§4.8).
func (w *World) Momentum() float64 {
	sum := Zero
	for _, b := range w.Bodies() {
		sum = sum.Add(b.v.Scale(b.mass))
	}
	return sum.Norm()
}

// WithTrails runs fn with the snapshot lock held, the only safe way for a
// reader to traverse any body's Trail (§5).
func (w *World) WithTrails(fn func(bodies []*Body)) {
	w.snapshotLock.Lock()
	defer w.snapshotLock.Unlock()
	fn(w.bodies)
}

// --- Spaceship controls (§6) ---

func (w *World) AddBurn(shipID BodyID, direction Vector3, thrustN, start, duration float64) error {
	b, err := w.Body(shipID)
	if err != nil {
		return err
	}
	if b.Ship == nil {
		return newInvalidBodyErr("body %d is not a spaceship", shipID)
	}
	b.Ship.AddBurn(direction, thrustN, start, duration)
	return nil
}

func (w *World) AutoOrbit(shipID, targetID BodyID) error {
	b, err := w.Body(shipID)
	if err != nil {
		return err
	}
	if b.Ship == nil {
		return newInvalidBodyErr("body %d is not a spaceship", shipID)
	}
	b.Ship.AutoOrbit(targetID)
	return nil
}

// ConsumeTimewarpRequest polls and clears the ship's one-shot autopilot
// signal (§6 consume_timewarp_request).
func (w *World) ConsumeTimewarpRequest(shipID BodyID) (TimewarpSignal, error) {
	b, err := w.Body(shipID)
	if err != nil {
		return TimewarpNone, err
	}
	if b.Ship == nil {
		return TimewarpNone, newInvalidBodyErr("body %d is not a spaceship", shipID)
	}
	return b.Ship.ConsumeTimewarpSignal(), nil
}

// --- Step machine (§4.5) ---

// Step is the single advancement entry point. dtWall is the wall-clock
// elapsed seconds since the previous call.
func (w *World) Step(dtWall float64) {
	if w.paused.Load() {
		return
	}

	w.resolveReferences()

	bodies, sources, test := w.snapshotTopology()
	if len(bodies) == 0 {
		return
	}

	dt := w.timeWarp.Load() * dtWall
	substeps := w.substeps.Load()
	if substeps < 1 {
		substeps = 1
	}
	subDt := dt / float64(substeps)

	integrator := w.GetIntegrator()
	strategy := w.GetForceStrategy()

	w.poolMu.Lock()
	pool := w.pool
	w.poolMu.Unlock()

	lookup := w.bodyLookup()

	for k := uint32(0); k < substeps; k++ {
		if integrator.isRK4() {
			w.substepRK4(bodies, sources, test, strategy, integrator, subDt, pool, lookup)
		} else {
			w.substepDirect(bodies, sources, test, strategy, integrator, subDt, pool, lookup)
		}
	}

	w.sampleTrails(bodies, subDt)

	for _, b := range bodies {
		b.clearExternalForce()
	}
}

func (w *World) substepDirect(bodies, sources, test []*Body, strategy ForceStrategy, integrator Integrator, dt float64, pool *workerPool, lookup func(BodyID) *Body) {
	for _, b := range bodies {
		b.zeroAccel()
	}
	for _, b := range bodies {
		b.preForce(w.tSim, dt, 0, lookup)
	}
	computeForces(strategy, bodies, sources, test, 0, pool)
	for _, b := range bodies {
		integrator.integrateStage(b, dt, SpeedOfLight, 0)
	}
	resolveCollisions(bodies)
	w.advanceClock(dt)
}

func (w *World) substepRK4(bodies, sources, test []*Body, strategy ForceStrategy, integrator Integrator, dt float64, pool *workerPool, lookup func(BodyID) *Body) {
	for _, b := range bodies {
		b.zeroAccel()
	}
	for stage := 1; stage <= 4; stage++ {
		for _, b := range bodies {
			b.preForce(w.tSim, dt, stage, lookup)
			// GPE is a diagnostic snapshot of one force pass, not a
			// per-stage scratch slot like aStage; reset it before every
			// stage's pairwise pass so the four RK4 force evaluations
			// don't sum into ~4x the true potential energy (§4.8). The
			// value reported after the step is stage 4's evaluation.
			b.zeroGPE()
		}
		computeForces(strategy, bodies, sources, test, stage, pool)
		for _, b := range bodies {
			integrator.integrateStage(b, dt, SpeedOfLight, stage)
		}
	}
	resolveCollisions(bodies)
	w.advanceClock(dt)
	for _, b := range bodies {
		// §4.5 "zero per-stage accelerations": only the RK4 scratch
		// accelerations are reset here, not GPE, which must survive for
		// World.Energy() to read after the step.
		b.zeroStageAccel()
	}
}

func (w *World) advanceClock(dt float64) {
	w.tSim += dt
	w.calendar = calendarFromSeconds(w.tSim)
}

func (w *World) sampleTrails(bodies []*Body, subDt float64) {
	if !(w.tSim > w.nextTrailT) || !w.storingPositions.Load() {
		return
	}
	cap := int(w.maxTrailSamples.Load())
	w.snapshotLock.Lock()
	for _, b := range bodies {
		b.storeCurrentPosition(cap)
	}
	w.snapshotLock.Unlock()

	period := w.trailStorePeriod.Load()
	if period < subDt {
		period = subDt
	}
	w.nextTrailT += period
}

// resolveReferences normalizes every stale reference_id (and the
// selected/world-reference ids) back to the sentinel 0 (§4.6). This is
// the only point at which reference topology is mutated.
func (w *World) resolveReferences() {
	w.mu.Lock()
	defer w.mu.Unlock()
	for _, b := range w.bodies {
		if _, ok := w.byID[b.ReferenceID()]; !ok {
			b.SetReferenceID(0)
		}
	}
	if _, ok := w.byID[w.Selected()]; !ok {
		w.selectedID.Store(0)
	}
	if _, ok := w.byID[w.WorldReference()]; !ok {
		w.referenceID.Store(0)
	}
}

// snapshotTopology returns the current body/source/test slices. Safe to
// call from the sim-thread at a step boundary; bodies are not added or
// removed mid-step.
func (w *World) snapshotTopology() (bodies, sources, test []*Body) {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.bodies, w.gravitySources, w.testBodies
}

func (w *World) bodyLookup() func(BodyID) *Body {
	return func(id BodyID) *Body {
		w.mu.Lock()
		defer w.mu.Unlock()
		return w.byID[id]
	}
}
