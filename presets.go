package orrery

import (
	"time"

	"github.com/soniakeys/meeus/julian"
)

// Preset is a named celestial body template: mass and radius in SI units,
// derived from the teacher package's CelestialObject constants (μ = G·M
// in km^3/s^2, radius in km), converted once here so World scenarios work
// entirely in meters/kilograms/seconds (§3).
type Preset struct {
	Name   string
	Mass   float64 // kg
	Radius float64 // m
	// Epoch is the Julian day of the reference epoch the preset is
	// stamped with (J2000.0 for every preset below). It is a label only;
	// the simulation clock (§4.5) never reads it.
	Epoch float64
}

// muKmToMassKg converts a standard gravitational parameter in km^3/s^2 to
// a mass in kg using the core's own G (§6 "Constants (bit-exact where
// tests compare)").
func muKmToMassKg(muKm3s2 float64) float64 {
	return (muKm3s2 * 1e9) / G
}

var j2000 = julian.TimeToJD(time.Date(2000, time.January, 1, 12, 0, 0, 0, time.UTC))

// Presets mirrors the teacher package's celestial.go body table, restated
// as plain SI templates rather than ephemeris-bearing CelestialObjects
// (orbital-element propagation is out of scope here; see DESIGN.md).
var (
	SunPreset   = Preset{Name: "Sun", Mass: muKmToMassKg(1.32712440017987e11), Radius: 695_700_000, Epoch: j2000}
	VenusPreset = Preset{Name: "Venus", Mass: muKmToMassKg(3.24858599e5), Radius: 6_051_800, Epoch: j2000}
	EarthPreset = Preset{Name: "Earth", Mass: muKmToMassKg(3.98600433e5), Radius: 6_378_136.3, Epoch: j2000}
	MoonPreset  = Preset{Name: "Moon", Mass: muKmToMassKg(4.90279981e3), Radius: 1_737_500, Epoch: j2000}
	MarsPreset  = Preset{Name: "Mars", Mass: muKmToMassKg(4.28283100e4), Radius: 3_396_190, Epoch: j2000}
)

// NewBodyFromPreset builds a plain gravity-source Body at p with velocity
// v from a Preset.
func NewBodyFromPreset(preset Preset, p, v Vector3) *Body {
	return NewBody(preset.Name, preset.Mass, preset.Radius, p, v, true)
}
