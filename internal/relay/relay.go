// Package relay pushes hub state changes to devices and other listeners
// over MQTT and Redis pub/sub. Devices that only poll HTTP are unaffected.
package relay

import "sync/atomic"

// revisionGate admits each control revision at most once and never one older
// than an already admitted revision. Listeners may run concurrently and an
// older state must not be published after a newer one.
type revisionGate struct {
	// next is the lowest revision still admissible
	next atomic.Uint64
}

func (g *revisionGate) admit(rev uint64) bool {
	for {
		next := g.next.Load()
		if rev < next {
			return false
		}
		if g.next.CompareAndSwap(next, rev+1) {
			return true
		}
	}
}
