package watcher

// Transition is the result of comparing a fresh probe with the recorded state.
type Transition int

const (
	NoChange Transition = iota
	BecameAbsent
	BecamePresent
)

func (t Transition) String() string {
	switch t {
	case NoChange:
		return "no-change"
	case BecameAbsent:
		return "became-absent"
	case BecamePresent:
		return "became-present"
	default:
		return "unknown"
	}
}

// Presence holds the last known connectivity of the monitored set.
// It is not safe for concurrent use; Watcher guards it.
type Presence struct {
	present bool
}

// Present reports the recorded state.
func (p *Presence) Present() bool {
	return p.present
}

// Evaluate compares probed against the recorded state, records probed and
// returns the transition. Repeating the same probe result yields NoChange.
func (p *Presence) Evaluate(probed bool) Transition {
	switch {
	case p.present && !probed:
		p.present = false
		return BecameAbsent
	case !p.present && probed:
		p.present = true
		return BecamePresent
	default:
		return NoChange
	}
}
