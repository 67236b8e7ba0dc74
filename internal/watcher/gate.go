package watcher

import (
	"time"

	"github.com/Discobrick/monitor-switcher/internal/event"
)

// DefaultCooldown is the minimum spacing between two accepted notifications.
const DefaultCooldown = 2 * time.Second

// Eligible reports whether a notification code can indicate a presence change.
func Eligible(code event.Code) bool {
	switch code {
	case event.DevNodesChanged, event.DeviceArrival, event.DeviceRemoveComplete:
		return true
	}
	return false
}

// Gate suppresses bursts of notifications within a cooldown window.
// It is not safe for concurrent use; Watcher guards it.
type Gate struct {
	threshold time.Duration
	last      time.Time
	hasLast   bool
}

// NewGate creates a gate with the given cooldown threshold.
func NewGate(threshold time.Duration) Gate {
	return Gate{threshold: threshold}
}

// Accept reports whether a signal received at now warrants a re-probe.
// Ineligible codes are rejected without looking at the cooldown, and a
// rejection never changes the gate.
func (g *Gate) Accept(code event.Code, now time.Time) bool {
	if !Eligible(code) {
		return false
	}
	if g.hasLast && now.Sub(g.last) < g.threshold {
		return false
	}
	return true
}

// Record starts a new cooldown window at now. Callers record once a
// transition's command batch has finished.
func (g *Gate) Record(now time.Time) {
	g.last = now
	g.hasLast = true
}

// lastAccepted returns the start of the current window, if any.
func (g *Gate) lastAccepted() (time.Time, bool) {
	return g.last, g.hasLast
}
