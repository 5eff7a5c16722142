package command

import "sync"

// Canceller is the one-shot cancellation gate of a command. The registered
// action runs at most once, no matter how many cancel requests arrive, and
// registering after a cancellation reports it so the caller can avoid
// entering the long-running phase.
type Canceller struct {
	mutex     sync.Mutex
	action    func()
	cancelled bool
}

// Cancel marks the command cancelled and invokes the registered action.
// Repeated invocations are no-ops.
func (c *Canceller) Cancel() {
	c.mutex.Lock()
	action := c.action
	// Prevent repeated invocations!
	c.action = nil
	c.cancelled = true
	c.mutex.Unlock()

	if action != nil {
		action()
	}
}

// OnCancel registers the action and reports whether the command was
// cancelled already, in which case the action is not registered.
func (c *Canceller) OnCancel(action func()) bool {
	c.mutex.Lock()
	defer c.mutex.Unlock()

	if c.cancelled {
		return true
	}

	c.action = action
	return false
}

func (c *Canceller) Cancelled() bool {
	c.mutex.Lock()
	defer c.mutex.Unlock()
	return c.cancelled
}
