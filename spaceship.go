package orrery

import "math"

// Autopilot is the Spaceship's circular-orbit controller state (§3, §4.2).
type Autopilot uint8

const (
	// AutopilotIdle applies no corrective thrust.
	AutopilotIdle Autopilot = iota
	// AutopilotAutoOrbit circularizes around Target.
	AutopilotAutoOrbit
	// AutopilotTransit is declared by the source (PhysicsObject.h's
	// AutopilotMode::TRANSIT) but never implemented there; we carry the
	// enum value for forward compatibility but it behaves as Idle today
	// (see DESIGN.md Open Questions).
	AutopilotTransit
)

// Burn is a scheduled impulsive-style thrust window (§3). It is active
// while t_sim is in [Start, Start+Duration).
type Burn struct {
	Direction Vector3 // unit vector; normalized on construction
	ThrustN   float64
	Start     float64
	Duration  float64
}

func (burn Burn) active(tSim float64) bool {
	return tSim >= burn.Start && tSim < burn.Start+burn.Duration
}

// Autopilot tuning constants (§6, bit-exact where tests compare).
const (
	autopilotKp            = 0.5
	autopilotRadialGateMps = 100.0
	autopilotWarnGateMps   = 150.0
	autopilotDoneErrMps    = 1.0
)

// ShipState extends a Body with scheduled burns and the auto-circularize
// autopilot of §4.2. A Body with Ship != nil is a Spaceship.
type ShipState struct {
	Burns       []Burn
	Autopilot   Autopilot
	TargetID    BodyID
	MaxThrustN  float64
	warnedApsis bool // one-shot guard mirroring the source's requestedAlready

	// RequestUnitTimewarp and ResumeTimewarp are one-shot signals for the
	// host (§3, §6 consume_timewarp_request). The autopilot sets them;
	// it never reads time_warp itself (§9 "Substeps under autopilot
	// timewarp").
	RequestUnitTimewarp bool
	ResumeTimewarp      bool
}

// NewSpaceship attaches Spaceship behavior to an otherwise-plain Body.
func NewSpaceship(body *Body, maxThrustN float64) *Body {
	body.Ship = &ShipState{MaxThrustN: maxThrustN}
	return body
}

// AddBurn schedules a new burn. direction is normalized internally.
func (s *ShipState) AddBurn(direction Vector3, thrustN, start, duration float64) {
	s.Burns = append(s.Burns, Burn{Direction: direction.Unit(), ThrustN: thrustN, Start: start, Duration: duration})
}

// AutoOrbit arms the circularization autopilot against targetID.
func (s *ShipState) AutoOrbit(targetID BodyID) {
	s.TargetID = targetID
	s.Autopilot = AutopilotAutoOrbit
}

// TimewarpSignal is the one-shot autopilot signal returned by
// ConsumeTimewarpSignal, the §6 consume_timewarp_request poll.
type TimewarpSignal uint8

const (
	// TimewarpNone: no pending signal.
	TimewarpNone TimewarpSignal = iota
	// TimewarpUnit: the autopilot requests time_warp be set to 1 so it
	// can observe the true apsis passage.
	TimewarpUnit
	// TimewarpResume: the maneuver completed; the host may restore its
	// previous time_warp.
	TimewarpResume
)

// ConsumeTimewarpSignal returns and clears the highest-priority pending
// one-shot signal.
func (s *ShipState) ConsumeTimewarpSignal() TimewarpSignal {
	if s.ResumeTimewarp {
		s.ResumeTimewarp = false
		return TimewarpResume
	}
	if s.RequestUnitTimewarp {
		s.RequestUnitTimewarp = false
		return TimewarpUnit
	}
	return TimewarpNone
}

// preForce implements §4.2: scheduled burns accumulate thrust, then (if
// armed) the auto-orbit controller may add its own corrective thrust; the
// combined magnitude is clamped to MaxThrustN and set as the body's
// shipThrust for this step. World calls preForce once per RK4 stage and
// once per substep; this recomputes the full thrust from the ship's
// current state every time and overwrites b.shipThrust (via setShipThrust)
// rather than accumulating, so repeated calls within one World.step do
// not amplify the applied force (§4.1, §9).
func (s *ShipState) preForce(b *Body, tSim, dt float64, stage int, lookup func(BodyID) *Body) {
	var thrustSum float64
	dirSum := Zero

	for _, burn := range s.Burns {
		if burn.active(tSim) {
			thrustSum += burn.ThrustN
			dirSum = dirSum.Add(burn.Direction)
		}
	}

	if s.Autopilot == AutopilotAutoOrbit {
		if target := lookup(s.TargetID); target != nil {
			if dir, mag, ok := s.autoOrbitThrust(b, target, dt); ok {
				dirSum = dirSum.Add(dir)
				thrustSum += mag
			}
		}
	}

	if thrustSum > 0 {
		applied := dirSum.Unit().Scale(math.Min(thrustSum, s.MaxThrustN))
		b.setShipThrust(applied)
	} else {
		b.setShipThrust(Zero)
	}
}

// autoOrbitThrust computes the (direction, magnitude) of the corrective
// thrust for this step, or ok==false if the controller should not thrust
// right now (radial gate) or has nothing left to do (already idle).
func (s *ShipState) autoOrbitThrust(b, target *Body, dt float64) (dir Vector3, magnitude float64, ok bool) {
	r := b.p.Sub(target.p)
	vRel := b.v.Sub(target.v)
	rNorm := r.Norm()
	if rNorm == 0 {
		return Zero, 0, false
	}
	rHat := r.Unit()

	vRad := vRel.Project(rHat)
	vTan := vRel.Sub(vRad)

	mu := G * target.mass
	vCirc := math.Sqrt(math.Max(0, mu/rNorm))

	vRadMag := vRad.Norm()

	if vRadMag < autopilotWarnGateMps && !s.warnedApsis {
		s.RequestUnitTimewarp = true
		s.warnedApsis = true
	}

	if vRadMag >= autopilotRadialGateMps {
		return Zero, 0, false // wait for apsis
	}

	vTanNorm := vTan.Norm()
	if vTanNorm == 0 {
		return Zero, 0, false
	}
	vTarget := vTan.Unit().Scale(vCirc)
	errV := vRel.Sub(vTarget)
	errMag := errV.Norm()

	if errMag < autopilotDoneErrMps {
		s.Autopilot = AutopilotIdle
		s.ResumeTimewarp = true
		s.RequestUnitTimewarp = false
		s.warnedApsis = false
		return Zero, 0, false
	}

	retrograde := errV.Unit().Scale(-1)
	mag := math.Min(math.Max(autopilotKp*errMag, 0), s.MaxThrustN)

	desiredAcc := mag / b.mass
	if desiredAcc > 0 {
		tSafe := math.Min(dt, errMag/desiredAcc)
		mag *= tSafe / dt
	}
	return retrograde, mag, true
}
