// Package connectivity tracks the terminal's online/offline state.
//
// The monitor itself never probes the network. State changes come from the
// outside: the device shell reports platform connectivity events, and the
// reconciler reports the outcome of remote calls. Subscribers are notified
// exactly on transitions, not on every report.
package connectivity

import (
	"log/slog"
	"sync"
)

// Monitor is process-lifetime singleton state. It has no cancellable
// operations and needs no teardown beyond process exit.
type Monitor struct {
	log *slog.Logger

	mu     sync.Mutex
	online bool
	subs   []func(online bool)
}

// NewMonitor creates a monitor with the given initial state.
func NewMonitor(log *slog.Logger, initiallyOnline bool) *Monitor {
	return &Monitor{
		log:    log.With("component", "connectivity"),
		online: initiallyOnline,
	}
}

// Online reports the current state.
func (m *Monitor) Online() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.online
}

// Subscribe registers a callback invoked on every state transition.
// Callbacks run synchronously on the reporting goroutine; long work belongs
// in the subscriber's own goroutine.
func (m *Monitor) Subscribe(fn func(online bool)) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.subs = append(m.subs, fn)
}

// Report sets the state. A report that matches the current state is a
// no-op; a transition notifies all subscribers once.
func (m *Monitor) Report(online bool) {
	m.mu.Lock()
	if m.online == online {
		m.mu.Unlock()
		return
	}
	m.online = online
	subs := make([]func(bool), len(m.subs))
	copy(subs, m.subs)
	m.mu.Unlock()

	if online {
		m.log.Info("connectivity restored")
	} else {
		m.log.Warn("connectivity lost")
	}

	for _, fn := range subs {
		fn(online)
	}
}
