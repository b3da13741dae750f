package orrery

// Physical and tuning constants from §6 (bit-exact where tests compare).
const (
	// G is the Newtonian gravitational constant, m^3 kg^-1 s^-2.
	G = 6.67e-11
	// SpeedOfLight is c, m/s. Every integrator and collision impulse
	// clamps |v| to this (§3 invariant).
	SpeedOfLight = 299_792_458.0
	// Restitution is the coefficient of restitution used by the
	// collision pass (§4.7).
	Restitution = 0.5
)

// Calendar rollover ratios (§4.5).
const (
	secondsPerMinute = 60
	minutesPerHour   = 60
	hoursPerDay      = 24
	daysPerYear      = 365
)
