package observe

import "github.com/Cyclone1070/claw/internal/workflow"

// Channel forwards events to a channel without blocking. Events are dropped
// when the buffer is full.
type Channel struct {
	ch chan<- workflow.Event
}

func NewChannel(ch chan<- workflow.Event) *Channel {
	return &Channel{ch: ch}
}

func (c *Channel) Observe(ev workflow.Event) {
	select {
	case c.ch <- ev:
	default:
	}
}
