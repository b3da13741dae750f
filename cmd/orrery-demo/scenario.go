package main

import (
	"fmt"
	"strings"

	"github.com/spf13/viper"

	"github.com/orrery-sim/orrery"
)

// scenarioConfig is the subset of a run that a host wants to tweak
// without recompiling: the integrator/strategy/substep knobs of §6 plus
// the wall-clock pacing of the demo loop. Bodies themselves are built in
// code (the core has no scenario file format of its own — §6 "CLI /
// config / files. The core itself has none.").
type scenarioConfig struct {
	Integrator    string
	ForceStrategy string
	Substeps      uint32
	TimeWarp      float64
	TickMs        int
	RunSeconds    float64
}

func loadScenarioConfig(name string) (scenarioConfig, error) {
	viper.SetConfigName(strings.TrimSuffix(name, ".toml"))
	viper.AddConfigPath(".")
	viper.SetDefault("integrator", "RK4")
	viper.SetDefault("force_strategy", "Serial")
	viper.SetDefault("substeps", 1)
	viper.SetDefault("time_warp", 60.0)
	viper.SetDefault("tick_ms", 50)
	viper.SetDefault("run_seconds", 30.0) // wall-clock demo duration before exit

	if err := viper.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return scenarioConfig{}, fmt.Errorf("reading %s: %w", name, err)
		}
	}

	return scenarioConfig{
		Integrator:    viper.GetString("integrator"),
		ForceStrategy: viper.GetString("force_strategy"),
		Substeps:      uint32(viper.GetInt("substeps")),
		TimeWarp:      viper.GetFloat64("time_warp"),
		TickMs:        viper.GetInt("tick_ms"),
		RunSeconds:    viper.GetFloat64("run_seconds"),
	}, nil
}

func parseIntegrator(name string) orrery.Integrator {
	switch strings.ToLower(name) {
	case "euler":
		return orrery.EulerIntegrator
	case "verlet":
		return orrery.VerletIntegrator
	default:
		return orrery.RK4Integrator
	}
}

func parseForceStrategy(name string) orrery.ForceStrategy {
	switch strings.ToLower(name) {
	case "perbodythread":
		return orrery.PerBodyThreadStrategy
	case "workerpool":
		return orrery.WorkerPoolStrategy
	case "partitioned":
		return orrery.PartitionedStrategy
	default:
		return orrery.SerialStrategy
	}
}
