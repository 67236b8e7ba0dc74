//go:build !linux && !windows

package event

// New returns a polling source; no native notification facility is wired
// on this platform.
func New(opts Options) Source {
	interval := opts.PollInterval
	if interval <= 0 {
		interval = DefaultPollInterval
	}
	return NewPollSource(interval, opts.Fingerprint, opts.OnError)
}
