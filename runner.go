package orrery

import (
	"context"
	"time"

	channerics "github.com/niceyeti/channerics/channels"
)

// Run drives World.Step on a ticker until ctx is cancelled or Stop is
// called, measuring real wall-clock dt between ticks the way a host
// sim-thread would (§2 "spawns a sim-thread that repeatedly calls
// World.step(dt) with wall-clock-measured dt"). rate is the ticker
// period; it bounds how often Step is invoked, not the simulated dt,
// which is always the true elapsed wall time.
func (w *World) Run(ctx context.Context, rate time.Duration) {
	ticks := channerics.NewTicker(ctx.Done(), rate)
	last := time.Now()
	for w.Running() {
		select {
		case <-ctx.Done():
			return
		case now := <-ticks:
			dt := now.Sub(last).Seconds()
			last = now
			w.Step(dt)
		}
	}
}
