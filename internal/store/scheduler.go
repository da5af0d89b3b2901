package store

// Scheduler decides when a requested render pass runs.
type Scheduler interface {
	Schedule(fn func())
}

// Immediate runs every scheduled pass synchronously.
type Immediate struct{}

func (Immediate) Schedule(fn func()) { fn() }

// Deferred holds scheduled passes until Flush. Hosts flush once per input
// turn so that a burst of mutations produces a single render.
type Deferred struct {
	pending []func()
}

func (d *Deferred) Schedule(fn func()) { d.pending = append(d.pending, fn) }

// Pending reports whether Flush has work to do.
func (d *Deferred) Pending() bool { return len(d.pending) > 0 }

// Flush runs everything scheduled so far, including passes scheduled by
// the passes themselves.
func (d *Deferred) Flush() {
	for len(d.pending) > 0 {
		fn := d.pending[0]
		d.pending = d.pending[1:]
		fn()
	}
}
