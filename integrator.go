package orrery

// Integrator selects the fixed-step scheme the World advances bodies with
// (§3, §4.3).
type Integrator uint8

const (
	// EulerIntegrator is explicit Euler: p += v*dt, then v += a*dt.
	EulerIntegrator Integrator = iota + 1
	// VerletIntegrator is velocity Verlet: p += v*dt + 1/2 a dt^2, then
	// v += a*dt.
	VerletIntegrator
	// RK4Integrator is the classical 4-stage Runge-Kutta.
	RK4Integrator
)

func (i Integrator) String() string {
	switch i {
	case EulerIntegrator:
		return "Euler"
	case VerletIntegrator:
		return "Verlet"
	case RK4Integrator:
		return "RK4"
	default:
		panic("orrery: unknown integrator")
	}
}

// isRK4 reports whether the integrator uses the four-stage RK4 rhythm
// (stage barrier per substep) as opposed to the single-stage Euler/Verlet
// pass.
func (i Integrator) isRK4() bool { return i == RK4Integrator }

// stepEuler advances b by dt using explicit Euler (§4.3) then clamps |v|
// and zeroes the accumulated acceleration.
func stepEuler(b *Body, dt, c float64) {
	b.p = b.p.Add(b.v.Scale(dt))
	b.v = b.v.Add(b.a.Scale(dt))
	b.clampSpeed(c)
	b.a = Zero
}

// stepVerlet advances b by dt using velocity Verlet (§4.3).
func stepVerlet(b *Body, dt, c float64) {
	b.p = b.p.Add(b.v.Scale(dt)).Add(b.a.Scale(0.5 * dt * dt))
	b.v = b.v.Add(b.a.Scale(dt))
	b.clampSpeed(c)
}

// rk4Stage1 sets p1 <- p and predicts p2 from a1 (§4.3).
func rk4Stage1(b *Body, dt float64) {
	b.pStage[0] = b.p // p1
	b.pStage[1] = b.pStage[0].Add(b.v.Scale(dt)).Add(b.aStage[0].Scale(0.5 * dt * dt)) // p2
}

// rk4Stage2 predicts p3 from a2, using the half step (§4.3).
func rk4Stage2(b *Body, dt float64) {
	half := dt / 2
	b.pStage[2] = b.pStage[0].Add(b.v.Scale(half)).Add(b.aStage[1].Scale(0.5 * half * half)) // p3
}

// rk4Stage3 predicts p4 from a3, using the half step (§4.3).
func rk4Stage3(b *Body, dt float64) {
	half := dt / 2
	b.pStage[3] = b.pStage[0].Add(b.v.Scale(half)).Add(b.aStage[2].Scale(0.5 * half * half)) // p4
}

// rk4Stage4 combines the four stage accelerations into the weighted
// average and commits the final position/velocity for the substep (§4.3).
func rk4Stage4(b *Body, dt, c float64) {
	a1, a2, a3, a4 := b.aStage[0], b.aStage[1], b.aStage[2], b.aStage[3]
	b.a = a1.Add(a3.Scale(2)).Add(a4.Scale(2)).Add(a2).Scale(1.0 / 6.0)
	b.p = b.p.Add(b.v.Scale(dt)).Add(b.a.Scale(0.5 * dt * dt))
	b.v = b.v.Add(b.a.Scale(dt))
	b.clampSpeed(c)
}

// integrateStage runs the correct per-stage update for the configured
// integrator. For Euler/Verlet, stage is always 0 and this is the entire
// substep. For RK4, this is called once per stage in {1,2,3,4}; only
// stage 4 commits p/v.
func (i Integrator) integrateStage(b *Body, dt, c float64, stage int) {
	switch i {
	case EulerIntegrator:
		stepEuler(b, dt, c)
	case VerletIntegrator:
		stepVerlet(b, dt, c)
	case RK4Integrator:
		switch stage {
		case 1:
			rk4Stage1(b, dt)
		case 2:
			rk4Stage2(b, dt)
		case 3:
			rk4Stage3(b, dt)
		case 4:
			rk4Stage4(b, dt, c)
		default:
			panic("orrery: invalid RK4 stage")
		}
	default:
		panic("orrery: unknown integrator")
	}
}
