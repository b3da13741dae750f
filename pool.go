package orrery

import "sync"

// workerPool is the bounded-FIFO worker pool backing WorkerPoolStrategy
// (§4.4 item 3). A fixed number of goroutines block on a mutex/condvar
// guarding a task queue; computeForces enqueues one task per body index i
// and blocks on a per-stage countdown until every task has drained.
//
// This is the one strategy where the teacher's "spawn per unit of work"
// style (mirrored by PerBodyThreadStrategy) is deliberately replaced with
// persistent workers, per spec.md's explicit distinction between the two
// strategies.
type workerPool struct {
	mu      sync.Mutex
	cond    *sync.Cond
	queue   []func()
	closing bool
	closed  bool
	workers sync.WaitGroup
}

// newWorkerPool starts n worker goroutines. n < 1 is treated as 1.
func newWorkerPool(n int) *workerPool {
	if n < 1 {
		n = 1
	}
	p := &workerPool{}
	p.cond = sync.NewCond(&p.mu)
	p.workers.Add(n)
	for i := 0; i < n; i++ {
		go p.workerLoop()
	}
	return p
}

func (p *workerPool) workerLoop() {
	defer p.workers.Done()
	for {
		p.mu.Lock()
		for len(p.queue) == 0 && !p.closing {
			p.cond.Wait()
		}
		if len(p.queue) == 0 && p.closing {
			p.mu.Unlock()
			return
		}
		task := p.queue[0]
		p.queue = p.queue[1:]
		p.mu.Unlock()
		task()
	}
}

// run partitions all into one task per index i (sweeping j>i, like
// perBodyThreadForces) and blocks until the stage is fully applied
// (§3 "a simple countdown latch per stage").
func (p *workerPool) run(all []*Body, stage int) {
	n := len(all)
	if n < 2 {
		return
	}
	var wg sync.WaitGroup
	results := make([][]accelDelta, n)
	for i := 0; i < n; i++ {
		i := i
		if !hasGravityPartner(all, i) {
			continue
		}
		wg.Add(1)
		task := func() {
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
		}
		p.mu.Lock()
		p.queue = append(p.queue, task)
		p.cond.Signal()
		p.mu.Unlock()
	}
	wg.Wait()
	for _, local := range results {
		for _, d := range local {
			all[d.idx].addAccel(stage, d.delta)
			all[d.idx].addGPE(d.gpe)
		}
	}
}

// shutdown drains any queued tasks (letting the current step finish) and
// joins every worker before returning (§7 SchedulerShutdown).
func (p *workerPool) shutdown() {
	p.mu.Lock()
	if p.closed {
		p.mu.Unlock()
		return
	}
	p.closed = true
	p.closing = true
	p.cond.Broadcast()
	p.mu.Unlock()
	p.workers.Wait()
}
