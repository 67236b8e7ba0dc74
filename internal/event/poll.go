package event

import (
	"context"
	"time"
)

// FingerprintFunc summarises the current device inventory.
type FingerprintFunc func() (string, error)

// PollSource emits DevNodesChanged whenever the inventory fingerprint changes.
// It is used where no native notification facility is wired.
type PollSource struct {
	interval    time.Duration
	fingerprint FingerprintFunc
	onError     func(error)
}

// NewPollSource creates a polling source. onError may be nil.
func NewPollSource(interval time.Duration, fingerprint FingerprintFunc, onError func(error)) *PollSource {
	if onError == nil {
		onError = func(error) {}
	}
	return &PollSource{
		interval:    interval,
		fingerprint: fingerprint,
		onError:     onError,
	}
}

func (s *PollSource) Run(ctx context.Context, h Handler) error {
	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	// Baseline so the first tick does not report a change
	last, err := s.fingerprint()
	if err != nil {
		s.onError(err)
	}

	for {
		select {
		case <-ctx.Done():
			return nil
		case now := <-ticker.C:
			current, err := s.fingerprint()
			if err != nil {
				s.onError(err)
				continue
			}
			if current != last {
				last = current
				h(Signal{Code: DevNodesChanged, At: now})
			}
		}
	}
}
