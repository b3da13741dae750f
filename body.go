package orrery

// BodyID is a stable integer identifier assigned to a Body on insertion
// into a World. Id 0 is the sentinel reference frame: the first Body ever
// inserted is its own reference (§3 invariants).
type BodyID uint32

// Body is a massive, extended point mass. It carries its current state
// (position, velocity), the scratch state the force/integrator passes need
// within a single step (acceleration, RK4 stage positions/accelerations),
// a bounded trail of past positions for the renderer, and — when Ship is
// non-nil — the autonomous spacecraft behavior of §4.2.
//
// Body intentionally has no virtual dispatch: per the design notes, the
// Plain/Ship distinction is a tagged variant (Ship == nil or not), and the
// single "is this a ship" branch happens once, in preForce.
type Body struct {
	id      BodyID
	name    string
	mass    float64
	radius  float64
	gravity bool // contributes_to_gravity

	p, v Vector3
	a    Vector3 // accumulated acceleration this substep, zeroed at the start of each substep

	// RK4 scratch. pStage[k] and aStage[k] hold p_{k+1} and a_{k+1} from
	// §3/§4.3 (index 0 <-> stage 1, ... index 3 <-> stage 4). Valid only
	// within the step that wrote them.
	pStage [4]Vector3
	aStage [4]Vector3

	externalForce Vector3 // cleared once per World.step, not per substep

	// shipThrust is the Spaceship autopilot/burn contribution recomputed
	// fresh by ShipState.preForce on every stage/substep call and
	// overwritten (never accumulated) there, so that RK4's four stage
	// calls and a multi-substep macro-step each see the same intended
	// thrust rather than amplifying it (§4.1, §9). Folded alongside
	// externalForce in foldExternalForce.
	shipThrust Vector3

	referenceID BodyID
	trail       []Vector3

	gpe float64 // reported potential for diagnostics, recomputed each step

	// Ship is nil for a plain Body and non-nil for a Spaceship. See
	// spaceship.go.
	Ship *ShipState
}

// NewBody constructs a plain (non-ship) Body. mass must be > 0 and radius
// must be >= 0; the World validates these on insertion (§7 InvalidBody).
func NewBody(name string, mass, radius float64, p, v Vector3, contributesToGravity bool) *Body {
	return &Body{
		name:    name,
		mass:    mass,
		radius:  radius,
		gravity: contributesToGravity,
		p:       p,
		v:       v,
	}
}

// ID returns the Body's stable id (0 before it is inserted into a World).
func (b *Body) ID() BodyID { return b.id }

// Name returns the display label.
func (b *Body) Name() string { return b.name }

// Mass returns the mass in kg.
func (b *Body) Mass() float64 { return b.mass }

// Radius returns the radius in meters.
func (b *Body) Radius() float64 { return b.radius }

// ContributesToGravity reports whether this Body is a gravity source
// (true) or a massless test body (false).
func (b *Body) ContributesToGravity() bool { return b.gravity }

// Position returns the current position. Safe to call from the reader
// thread without locking (§5): the sim thread is the sole writer and a
// torn read of three float64s is not a correctness concern for a visual
// consumer.
func (b *Body) Position() Vector3 { return b.p }

// Velocity returns the current velocity. See Position for the concurrency
// contract.
func (b *Body) Velocity() Vector3 { return b.v }

// Acceleration returns the acceleration accumulated so far this substep.
func (b *Body) Acceleration() Vector3 { return b.a }

// GPE returns the gravitational potential energy reported for the most
// recent force pass.
func (b *Body) GPE() float64 { return b.gpe }

// ReferenceID returns the id of the body whose frame this Body's trail is
// presented in.
func (b *Body) ReferenceID() BodyID { return b.referenceID }

// SetReferenceID changes the reference frame body. Resolution against the
// current World topology happens once per step (§4.6).
func (b *Body) SetReferenceID(id BodyID) { b.referenceID = id }

// Trail returns the bounded, time-ordered sequence of past positions.
// Callers that need cross-body alignment MUST hold the World's snapshot
// lock while reading (§5, §9) — see World.WithTrails.
func (b *Body) Trail() []Vector3 { return b.trail }

// AddExternalForce accumulates a force (Newtons) to be folded into this
// Body's acceleration at every force-pass stage of the current step (§4.1).
// It is cleared once per World.step, not per substep.
func (b *Body) AddExternalForce(f Vector3) { b.externalForce = b.externalForce.Add(f) }

// clearExternalForce zeroes the externally applied force and the ship
// thrust contribution. Called once at the end of World.step.
func (b *Body) clearExternalForce() {
	b.externalForce = Zero
	b.shipThrust = Zero
}

// setShipThrust overwrites the Spaceship thrust contribution for this
// step. Unlike AddExternalForce, this does not accumulate: ShipState.preForce
// recomputes the full desired thrust from scratch on every call and is
// expected to call this every time, including with Zero when no burn or
// autopilot correction is active, so repeated stage/substep calls never
// amplify the applied force (§4.1, §9).
func (b *Body) setShipThrust(f Vector3) { b.shipThrust = f }

// zeroAccel zeroes a, all RK4 stage accelerations, and GPE. Called once at
// the start of a substep, before any stage's force pass (§3 invariant).
func (b *Body) zeroAccel() {
	b.a = Zero
	b.gpe = 0
	for i := range b.aStage {
		b.aStage[i] = Zero
	}
}

// zeroStageAccel zeroes only the RK4 scratch accelerations, leaving GPE
// and the combined a (§4.3 rk4Stage4's weighted average) intact for
// diagnostics. Called once after RK4's four stages complete (§4.5 "zero
// per-stage accelerations").
func (b *Body) zeroStageAccel() {
	for i := range b.aStage {
		b.aStage[i] = Zero
	}
}

// zeroGPE resets the potential-energy diagnostic accumulator. Called
// before each RK4 stage's force pass so GPE reflects one stage's pairwise
// evaluation rather than summing across all four (§4.8).
func (b *Body) zeroGPE() { b.gpe = 0 }

// forcePosition returns the position the force pass should use for the
// given stage: the current actual position for non-RK4 (stage 0) and RK4
// stage 1, and the previously-computed RK4 scratch position for stages
// 2-4 (§4.3, §4.4 — matching the original source's CalculateForce switch,
// which is the authority spec.md defers to for the exact stage-position
// formulation).
func (b *Body) forcePosition(stage int) Vector3 {
	switch stage {
	case 0, 1:
		return b.p
	case 2:
		return b.pStage[1]
	case 3:
		return b.pStage[2]
	case 4:
		return b.pStage[3]
	default:
		panic("orrery: invalid RK4 stage")
	}
}

// addAccel adds delta to the acceleration slot for the given stage (b.a
// for stage 0, b.aStage[stage-1] for RK4 stages 1-4).
func (b *Body) addAccel(stage int, delta Vector3) {
	if stage == 0 {
		b.a = b.a.Add(delta)
		return
	}
	b.aStage[stage-1] = b.aStage[stage-1].Add(delta)
}

// addGPE accumulates this body's share of a pairwise potential energy term.
func (b *Body) addGPE(delta float64) { b.gpe += delta }

// foldExternalForce folds (externalForce+shipThrust)/mass into the
// stage-appropriate acceleration slot once per body per stage (§4.4; see
// the corrected semantics noted in DESIGN.md and spec.md §9). externalForce
// is host-supplied and persists for the whole step; shipThrust is
// recomputed and overwritten every stage by ShipState.preForce. Summing
// them here, rather than having the ship accumulate into externalForce
// directly, is what keeps RK4's four stage calls (and a multi-substep
// macro-step) from amplifying the ship's thrust.
func (b *Body) foldExternalForce(stage int) {
	total := b.externalForce.Add(b.shipThrust)
	if total.IsZero() {
		return
	}
	contribution := total.Div(b.mass)
	if stage == 0 {
		b.a = b.a.Add(contribution)
	} else {
		b.aStage[stage-1] = b.aStage[stage-1].Add(contribution)
	}
}

// preForce is called by World once per stage, before the force pass, on
// every body. It is a no-op for plain bodies; for a Spaceship it writes
// the scheduled-burn and auto-orbit autopilot thrust into shipThrust (§4.1,
// §4.2). lookup resolves a BodyID to its Body, used to find the autopilot
// target; it returns nil for an unresolved id.
func (b *Body) preForce(tSim, dt float64, stage int, lookup func(BodyID) *Body) {
	if b.Ship == nil {
		return
	}
	b.Ship.preForce(b, tSim, dt, stage, lookup)
}

// storeCurrentPosition pushes p onto the trail and evicts from the front
// until the trail holds at most cap samples (§4.1). The World calls this
// for every body at the same sampling instant so that trails stay
// time-aligned (§4.1, §8 "Trail time-alignment").
func (b *Body) storeCurrentPosition(cap int) {
	b.trail = append(b.trail, b.p)
	if over := len(b.trail) - cap; over > 0 {
		b.trail = b.trail[over:]
	}
}

// clampSpeed enforces |v| <= c (§3 invariant, §7 NumericOverflow).
func (b *Body) clampSpeed(c float64) {
	b.v = b.v.ClampedToSpeed(c)
}
