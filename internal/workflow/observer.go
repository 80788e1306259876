package workflow

// Observer receives workflow events. Implementations must be safe for
// concurrent use: tool events arrive from parallel executions.
type Observer interface {
	Observe(ev Event)
}

// ObserverFunc adapts a function to Observer.
type ObserverFunc func(ev Event)

func (f ObserverFunc) Observe(ev Event) { f(ev) }

// Notify delivers ev to obs. A nil observer is a no-op and a panicking
// observer is recovered, so observers never affect the caller.
func Notify(obs Observer, ev Event) {
	if obs == nil {
		return
	}
	defer func() { _ = recover() }()
	obs.Observe(ev)
}

type multi []Observer

func (m multi) Observe(ev Event) {
	for _, o := range m {
		Notify(o, ev)
	}
}

// Multi fans events out to every non-nil observer in order.
func Multi(observers ...Observer) Observer {
	var m multi
	for _, o := range observers {
		if o != nil {
			m = append(m, o)
		}
	}
	return m
}
