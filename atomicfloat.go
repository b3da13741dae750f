package orrery

import (
	"math"
	"sync/atomic"
)

// atomicFloat64 is a lock-free float64 box used for the World's host
// control-plane fields (§5: "Host control-plane inputs ... are simple
// atomics; changing them is safe at any time"). Go has no atomic.Float64,
// so values are bit-cast through atomic.Uint64, the same trick used
// throughout the ecosystem (e.g. go.uber.org/atomic) when a bare
// sync/atomic dependency is preferred over pulling in a wrapper package.
type atomicFloat64 struct {
	bits atomic.Uint64
}

func newAtomicFloat64(v float64) *atomicFloat64 {
	a := &atomicFloat64{}
	a.Store(v)
	return a
}

func (a *atomicFloat64) Load() float64 {
	return math.Float64frombits(a.bits.Load())
}

func (a *atomicFloat64) Store(v float64) {
	a.bits.Store(math.Float64bits(v))
}
