package orrery

import "math"

// resolveCollisions runs the rigid-sphere constraint pass over every pair
// of bodies once per substep, after integration (§4.7). It perturbs exact
// coincidences, projects apart any interpenetration, and applies a
// restitution-based impulse along the line of centers.
func resolveCollisions(bodies []*Body) {
	for i := 0; i < len(bodies); i++ {
		for j := i + 1; j < len(bodies); j++ {
			resolvePair(bodies[i], bodies[j])
		}
	}
}

func resolvePair(bi, bj *Body) {
	minDist := bi.radius + bj.radius
	if minDist <= 0 {
		return
	}

	d := bj.p.Sub(bi.p)
	dist := d.Norm()

	if dist == 0 {
		// Degenerate geometry: perturb both bodies apart along y by
		// exactly 1m and recompute the line of centers, matching the
		// source's SolveDistanceConstraints (§4.7, §7 DegenerateGeometry).
		bi.p = bi.p.Sub(NewVector3(0, 1, 0))
		bj.p = bj.p.Add(NewVector3(0, 1, 0))
		d = bj.p.Sub(bi.p)
		dist = d.Norm()
	}

	if dist >= minDist {
		return
	}

	n := d.Scale(1 / dist)
	penetration := minDist - dist

	// Mass-weighted positional correction: the lighter body moves more.
	totalMass := bi.mass + bj.mass
	if totalMass <= 0 {
		return
	}
	biShare := penetration * (bj.mass / totalMass)
	bjShare := penetration * (bi.mass / totalMass)
	bi.p = bi.p.Sub(n.Scale(biShare))
	bj.p = bj.p.Add(n.Scale(bjShare))

	// Restitution-based impulse along n, only if the bodies are still
	// approaching each other.
	relVel := bj.v.Sub(bi.v)
	approachSpeed := relVel.Dot(n)
	if approachSpeed >= 0 {
		return
	}

	invMassI, invMassJ := 1/bi.mass, 1/bj.mass
	impulseMag := -(1 + Restitution) * approachSpeed / (invMassI + invMassJ)
	impulse := n.Scale(impulseMag)

	bi.v = bi.v.Sub(impulse.Scale(invMassI)).ClampedToSpeed(SpeedOfLight)
	bj.v = bj.v.Add(impulse.Scale(invMassJ)).ClampedToSpeed(SpeedOfLight)

	if !isFinite(bi.v) || !isFinite(bj.v) {
		panic("orrery: collision impulse produced a non-finite velocity")
	}
}

// isFinite reports whether every component of v is finite; used by the
// World to detect the true invariant violation of §7 (NaN state), which
// panics rather than being silently fixed.
func isFinite(v Vector3) bool {
	return !math.IsNaN(v.X()) && !math.IsNaN(v.Y()) && !math.IsNaN(v.Z()) &&
		!math.IsInf(v.X(), 0) && !math.IsInf(v.Y(), 0) && !math.IsInf(v.Z(), 0)
}
