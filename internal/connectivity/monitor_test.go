package connectivity

import (
	"log/slog"
	"testing"
)

func TestMonitor_InitialState(t *testing.T) {
	m := NewMonitor(slog.Default(), true)
	if !m.Online() {
		t.Error("monitor should start online")
	}

	m = NewMonitor(slog.Default(), false)
	if m.Online() {
		t.Error("monitor should start offline")
	}
}

func TestMonitor_NotifiesOnTransitionOnly(t *testing.T) {
	m := NewMonitor(slog.Default(), false)

	var transitions []bool
	m.Subscribe(func(online bool) {
		transitions = append(transitions, online)
	})

	m.Report(false) // no change
	m.Report(false) // no change
	m.Report(true)  // offline → online
	m.Report(true)  // no change
	m.Report(false) // online → offline
	m.Report(true)  // offline → online

	want := []bool{true, false, true}
	if len(transitions) != len(want) {
		t.Fatalf("got %d notifications, want %d (%v)", len(transitions), len(want), transitions)
	}
	for i := range want {
		if transitions[i] != want[i] {
			t.Errorf("transition %d: got %v, want %v", i, transitions[i], want[i])
		}
	}
}

func TestMonitor_MultipleSubscribers(t *testing.T) {
	m := NewMonitor(slog.Default(), false)

	var a, b int
	m.Subscribe(func(bool) { a++ })
	m.Subscribe(func(bool) { b++ })

	m.Report(true)
	if a != 1 || b != 1 {
		t.Errorf("each subscriber should fire once: a=%d b=%d", a, b)
	}
}
