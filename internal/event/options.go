package event

import "time"

// DefaultPollInterval is used by polling sources when none is configured.
const DefaultPollInterval = time.Second

// Options selects and configures the platform source.
type Options struct {
	// PollInterval forces a polling source when > 0.
	PollInterval time.Duration
	// Fingerprint is required by polling sources.
	Fingerprint FingerprintFunc
	// OnError receives non-fatal source errors; may be nil.
	OnError func(error)
}
