package mode

import (
	"github.com/sirupsen/logrus"

	"geodraw/internal/store"
	"geodraw/internal/surface"
)

type Handler func(ev surface.Event) error

type binding struct {
	t   surface.EventType
	sel Selector
	fn  Handler
	off bool
}

// Context is what a running mode sees. Each mode entry gets a fresh one,
// closed when the mode is left.
type Context struct {
	Store    *store.Store
	Map      surface.Projector
	Log      logrus.FieldLogger
	Settings Settings

	m        *Machine
	bindings []*binding
	dead     bool
}

// On binds fn to events of type t accepted by sel. The returned func
// removes the binding and is safe to call more than once.
func (c *Context) On(t surface.EventType, sel Selector, fn Handler) (off func()) {
	b := &binding{t: t, sel: sel, fn: fn}
	if c.dead {
		b.off = true
		return func() {}
	}
	c.bindings = append(c.bindings, b)
	return func() {
		if b.off {
			return
		}
		b.off = true
		for i, x := range c.bindings {
			if x == b {
				c.bindings = append(c.bindings[:i], c.bindings[i+1:]...)
				return
			}
		}
	}
}

// ChangeMode asks the machine to switch modes. Calls from a context that
// has already been left are ignored.
func (c *Context) ChangeMode(name string, opts Options) {
	if c.dead {
		return
	}
	if err := c.m.ChangeMode(name, opts); err != nil {
		c.Log.WithError(err).Error("mode change failed")
	}
}

// Active reports whether the mode owning c is still running.
func (c *Context) Active() bool { return !c.dead }

func (c *Context) close() {
	c.dead = true
	for _, b := range c.bindings {
		b.off = true
	}
	c.bindings = nil
}
