//go:build linux

package event

import (
	"context"
	"fmt"
	"time"

	"github.com/jochenvg/go-udev"
)

// udev subsystems whose events can change HID presence
var udevSubsystems = []string{
	"usb",
	"hidraw",
}

// udevDevice is the subset of *udev.Device the source reads.
type udevDevice interface {
	Action() string
	Subsystem() string
}

// UdevSource listens to kernel device events over the udev netlink socket.
type UdevSource struct{}

// NewUdevSource returns a netlink-backed source.
func NewUdevSource() *UdevSource {
	return &UdevSource{}
}

func (s *UdevSource) Run(ctx context.Context, h Handler) error {
	u := udev.Udev{}
	m := u.NewMonitorFromNetlink("udev")
	if m == nil {
		return fmt.Errorf("open udev netlink monitor")
	}
	for _, sub := range udevSubsystems {
		m.FilterAddMatchSubsystem(sub)
	}

	done := make(chan struct{})
	defer close(done)

	ch, err := m.DeviceChan(done)
	if err != nil {
		return fmt.Errorf("udev device channel: %w", err)
	}

	for {
		select {
		case <-ctx.Done():
			return nil
		case d, ok := <-ch:
			if !ok {
				return fmt.Errorf("udev monitor closed")
			}
			h(Signal{Code: udevCode(d), At: time.Now()})
		}
	}
}

// udevCode maps a udev action onto the device change vocabulary.
// Unrecognised actions map to CustomEvent, which the gate ignores.
func udevCode(d udevDevice) Code {
	switch d.Action() {
	case "add":
		return DeviceArrival
	case "remove":
		return DeviceRemoveComplete
	case "bind", "unbind", "change":
		return DevNodesChanged
	default:
		return CustomEvent
	}
}

// New returns the native source for this platform, or a polling source
// when opts asks for one.
func New(opts Options) Source {
	if opts.PollInterval > 0 {
		return NewPollSource(opts.PollInterval, opts.Fingerprint, opts.OnError)
	}
	return NewUdevSource()
}
