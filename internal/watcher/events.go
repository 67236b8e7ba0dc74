package watcher

import (
	"fmt"
	"strings"
	"time"

	"github.com/Discobrick/monitor-switcher/internal/dispatch"
	"github.com/Discobrick/monitor-switcher/internal/event"
)

// EventKind identifies what happened inside the watcher.
type EventKind int

const (
	// Seeded is emitted once after the startup probe.
	Seeded EventKind = iota
	// Ignored: the notification code cannot affect presence.
	Ignored
	// Debounced: the notification arrived inside the cooldown window.
	Debounced
	// Busy: the notification arrived while a cycle was running.
	Busy
	// Probed: the settle delay elapsed and the inventory was checked.
	Probed
	// Transitioned: presence changed and a batch is about to run.
	Transitioned
	// Dispatched is emitted once per command of the batch.
	Dispatched
	// Completed closes an accepted cycle.
	Completed
	// Recovered: a panic in the cycle was caught.
	Recovered
)

func (k EventKind) String() string {
	switch k {
	case Seeded:
		return "seeded"
	case Ignored:
		return "ignored"
	case Debounced:
		return "debounced"
	case Busy:
		return "busy"
	case Probed:
		return "probed"
	case Transitioned:
		return "transitioned"
	case Dispatched:
		return "dispatched"
	case Completed:
		return "completed"
	case Recovered:
		return "recovered"
	default:
		return "unknown"
	}
}

// Event is reported to observers as the watcher works.
type Event struct {
	Kind       EventKind
	At         time.Time
	Cycle      string
	Signal     event.Signal
	Present    bool
	Transition Transition
	Outcome    dispatch.Outcome
	Outcomes   []dispatch.Outcome
	Err        error
}

func presenceWord(present bool) string {
	if present {
		return "connected"
	}
	return "disconnected"
}

// String renders the event as a single log line.
func (e Event) String() string {
	switch e.Kind {
	case Seeded:
		return "Initial state: " + presenceWord(e.Present)
	case Ignored:
		return fmt.Sprintf("[event] %s ignored", e.Signal.Code)
	case Debounced:
		return fmt.Sprintf("[debug] %s ignored due to cooldown", e.Signal.Code)
	case Busy:
		return fmt.Sprintf("[debug] %s ignored, cycle in progress", e.Signal.Code)
	case Probed:
		return fmt.Sprintf("[debug] %s: devices %s", shortCycle(e.Cycle), presenceWord(e.Present))
	case Transitioned:
		if e.Transition == BecameAbsent {
			return ">>> USB devices disconnected: switching to remote input"
		}
		return ">>> USB devices reconnected: switching to local input"
	case Dispatched:
		return describeOutcome(e.Outcome)
	case Completed:
		if e.Transition == NoChange {
			return fmt.Sprintf("[debug] %s: no state change", shortCycle(e.Cycle))
		}
		failed := 0
		for _, o := range e.Outcomes {
			if !o.OK() {
				failed++
			}
		}
		return fmt.Sprintf("%s: %s, %d/%d commands ok", shortCycle(e.Cycle), e.Transition, len(e.Outcomes)-failed, len(e.Outcomes))
	case Recovered:
		return fmt.Sprintf("[error] %v", e.Err)
	default:
		return e.Kind.String()
	}
}

func describeOutcome(o dispatch.Outcome) string {
	args := strings.Join(o.Args, " ")
	switch o.Kind {
	case dispatch.Success:
		return "[success] " + args
	case dispatch.ToolError:
		msg := o.Stderr
		if msg == "" && o.Err != nil {
			msg = o.Err.Error()
		}
		return fmt.Sprintf("[tool error] %s: %s", args, msg)
	default:
		return fmt.Sprintf("[system error] %s: %v", args, o.Err)
	}
}

func shortCycle(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	return id
}
