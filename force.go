package orrery

import "sync"

// ForceStrategy selects how pairwise gravitational forces are dispatched
// across bodies (§4.4).
type ForceStrategy uint8

const (
	// SerialStrategy is a single-threaded nested loop over i<j.
	SerialStrategy ForceStrategy = iota + 1
	// PerBodyThreadStrategy spawns one worker per i, each sweeping j>i,
	// with per-goroutine partial accumulators reduced at the end.
	PerBodyThreadStrategy
	// WorkerPoolStrategy dispatches per-i tasks onto a fixed pool of
	// workers consuming a bounded FIFO guarded by a mutex/condvar.
	WorkerPoolStrategy
	// PartitionedStrategy computes source-source forces with Newton's
	// third law and source-test forces one-sided, skipping test-test
	// pairs entirely (§4.4 item 4).
	PartitionedStrategy
)

func (s ForceStrategy) String() string {
	switch s {
	case SerialStrategy:
		return "Serial"
	case PerBodyThreadStrategy:
		return "PerBodyThread"
	case WorkerPoolStrategy:
		return "WorkerPool"
	case PartitionedStrategy:
		return "Partitioned"
	default:
		panic("orrery: unknown force strategy")
	}
}

// pairwiseDelta computes the Newtonian force law for one unordered pair at
// the given stage: the acceleration delta for each side and each side's
// share (half) of the pair's potential energy, so summing GPE over every
// body yields the conventional total system PE (§4.8). ok is false for an
// exact coincidence, which the collision pass handles instead (§4.7).
func pairwiseDelta(bi, bj *Body, stage int) (deltaI, deltaJ Vector3, peEach float64, ok bool) {
	d := bj.forcePosition(stage).Sub(bi.forcePosition(stage))
	dist := d.Norm()
	if dist == 0 {
		return Zero, Zero, 0, false
	}
	fHat := d.Scale(G / (dist * dist * dist))
	pe := -G * bi.mass * bj.mass / dist
	return fHat.Scale(bj.mass), fHat.Scale(-bi.mass), pe / 2, true
}

// pairForce applies the mutual Newtonian acceleration of bodies bi and bj
// to the stage-appropriate acceleration slot of each, and records each
// body's share of the pair's potential energy (§4.4, §4.8).
func pairForce(bi, bj *Body, stage int) {
	dI, dJ, pe, ok := pairwiseDelta(bi, bj, stage)
	if !ok {
		// Exact coincidence is handled by the collision pass (§4.7);
		// skip this pair's force contribution this stage rather than
		// dividing by zero.
		return
	}
	bi.addAccel(stage, dI)
	bj.addAccel(stage, dJ)
	bi.addGPE(pe)
	bj.addGPE(pe)
}

// oneSidedForce applies the acceleration that source exerts on test onto
// test only; test does not contribute gravity back (§4.4 Partitioned).
func oneSidedForce(source, test *Body, stage int) {
	d := source.forcePosition(stage).Sub(test.forcePosition(stage))
	dist := d.Norm()
	if dist == 0 {
		return
	}
	fHat := d.Scale(G / (dist * dist * dist))
	test.addAccel(stage, fHat.Scale(source.mass))
	test.addGPE(-G * source.mass * test.mass / dist)
}

// foldExternalForces folds every body's (externalForce+shipThrust)/mass
// into its stage-appropriate acceleration slot, once per body per stage
// (§4.4, §9 — the corrected, non-double-counting semantics).
func foldExternalForces(bodies []*Body, stage int) {
	for _, b := range bodies {
		b.foldExternalForce(stage)
	}
}

// computeForces dispatches the configured strategy for one stage. all is
// every body in insertion order; sources/test are the gravity-source and
// test-body partitions (§3).
func computeForces(strategy ForceStrategy, all, sources, test []*Body, stage int, pool *workerPool) {
	switch strategy {
	case SerialStrategy:
		serialForces(all, stage)
	case PerBodyThreadStrategy:
		perBodyThreadForces(all, stage)
	case WorkerPoolStrategy:
		pool.run(all, stage)
	case PartitionedStrategy:
		partitionedForces(sources, test, stage)
	default:
		panic("orrery: unknown force strategy")
	}
	foldExternalForces(all, stage)
}

func serialForces(all []*Body, stage int) {
	for i := 0; i < len(all); i++ {
		for j := i + 1; j < len(all); j++ {
			if !all[i].gravity && !all[j].gravity {
				continue
			}
			pairForce(all[i], all[j], stage)
		}
	}
}

// accelDelta is a per-body pending update collected by one goroutine and
// reduced into the real Body afterwards, avoiding concurrent writes to
// shared acceleration slots (§4.4 item 2: "per-thread partial
// accumulators reduced at the end").
type accelDelta struct {
	idx   int
	delta Vector3
	gpe   float64
}

func perBodyThreadForces(all []*Body, stage int) {
	n := len(all)
	if n < 2 {
		return
	}
	results := make([][]accelDelta, n)
	var wg sync.WaitGroup
	for i := 0; i < n; i++ {
		i := i
		if !hasGravityPartner(all, i) {
			continue
		}
		wg.Add(1)
		go func() {
			defer wg.Done()
			var local []accelDelta
			for j := i + 1; j < n; j++ {
				bi, bj := all[i], all[j]
				if !bi.gravity && !bj.gravity {
					continue
				}
				dI, dJ, pe, ok := pairwiseDelta(bi, bj, stage)
				if !ok {
					continue
				}
				local = append(local,
					accelDelta{idx: i, delta: dI, gpe: pe},
					accelDelta{idx: j, delta: dJ, gpe: pe},
				)
			}
			results[i] = local
		}()
	}
	wg.Wait()
	for _, local := range results {
		for _, d := range local {
			all[d.idx].addAccel(stage, d.delta)
			all[d.idx].addGPE(d.gpe)
		}
	}
}

func hasGravityPartner(all []*Body, i int) bool {
	if all[i].gravity {
		return true
	}
	for j := i + 1; j < len(all); j++ {
		if all[j].gravity {
			return true
		}
	}
	return false
}

func partitionedForces(sources, test []*Body, stage int) {
	for i := 0; i < len(sources); i++ {
		for j := i + 1; j < len(sources); j++ {
			pairForce(sources[i], sources[j], stage)
		}
	}
	for _, t := range test {
		for _, s := range sources {
			oneSidedForce(s, t, stage)
		}
	}
}
