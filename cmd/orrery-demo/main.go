package main

import (
	"context"
	"flag"
	"math"
	"time"

	kitlog "github.com/go-kit/log"

	"github.com/orrery-sim/orrery"
)

// This demo builds the Earth-Moon-spaceship scenario of spec.md §8
// (scenarios 3 and 4) and runs it to completion, logging energy/momentum
// drift periodically so the conservation laws can be eyeballed.

var scenarioName = flag.String("scenario", "demo", "scenario TOML file (without extension) to load")

func main() {
	flag.Parse()

	cfg, err := loadScenarioConfig(*scenarioName)
	logger := orrery.NewWorldLogger(*scenarioName)
	if err != nil {
		logger.Log("event", "config_fallback", "err", err)
	}

	w := orrery.NewWorld(logger)
	w.SetIntegrator(parseIntegrator(cfg.Integrator))
	w.SetForceStrategy(parseForceStrategy(cfg.ForceStrategy))
	w.SetSubsteps(cfg.Substeps)
	w.SetTimeWarp(cfg.TimeWarp)

	earth := orrery.NewBodyFromPreset(orrery.EarthPreset, orrery.Zero, orrery.Zero)
	earthID, err := w.AddBody(earth)
	if err != nil {
		logger.Log("event", "add_body_failed", "body", "earth", "err", err)
		return
	}

	moonDistance := 3.844e8
	moonSpeed := math.Sqrt(orrery.G * earth.Mass() / moonDistance)
	moon := orrery.NewBodyFromPreset(orrery.MoonPreset,
		orrery.NewVector3(moonDistance, 0, 0),
		orrery.NewVector3(0, moonSpeed, 0))
	moon.SetReferenceID(earthID)
	if _, err := w.AddBody(moon); err != nil {
		logger.Log("event", "add_body_failed", "body", "moon", "err", err)
		return
	}

	ship := orrery.NewSpaceship(
		orrery.NewBody("Courier", 1_000, 2, orrery.NewVector3(7e6, 0, 0), orrery.NewVector3(-50, 7546, 0), false),
		100,
	)
	shipID, err := w.AddSpaceship(ship)
	if err != nil {
		logger.Log("event", "add_body_failed", "body", "ship", "err", err)
		return
	}
	ship.SetReferenceID(earthID)
	if err := w.AutoOrbit(shipID, earthID); err != nil {
		logger.Log("event", "auto_orbit_failed", "err", err)
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), time.Duration(cfg.RunSeconds*float64(time.Second)))
	defer cancel()

	go reportProgress(ctx, w, logger)

	w.Run(ctx, time.Duration(cfg.TickMs)*time.Millisecond)
	logger.Log("event", "run_complete", "sim_time_s", w.SimTime(), "energy_mj", w.Energy(), "momentum", w.Momentum())
}

func reportProgress(ctx context.Context, w *orrery.World, logger kitlog.Logger) {
	ticker := time.NewTicker(time.Second)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			cal := w.Calendar()
			logger.Log(
				"event", "progress",
				"sim_time_s", w.SimTime(),
				"days", cal.Days, "hours", cal.Hours,
				"energy_mj", w.Energy(),
				"momentum", w.Momentum(),
			)
		}
	}
}
