// Package event delivers raw hardware-change notifications to the watcher.
//
// Codes follow the Windows WM_DEVICECHANGE wParam values so every platform
// source speaks the same vocabulary; non-Windows sources translate their
// native notifications into the nearest code.
package event

import (
	"context"
	"fmt"
	"time"
)

// Code is a hardware-change notification code.
type Code uint32

// Device change codes (DBT_* values).
const (
	ConfigChanged        Code = 0x0018
	DevNodesChanged      Code = 0x0007
	QueryChangeConfig    Code = 0x0017
	DeviceArrival        Code = 0x8000
	DeviceQueryRemove    Code = 0x8001
	DeviceRemovePending  Code = 0x8003
	DeviceRemoveComplete Code = 0x8004
	DeviceTypeSpecific   Code = 0x8005
	CustomEvent          Code = 0x8006
)

func (c Code) String() string {
	switch c {
	case ConfigChanged:
		return "config-changed"
	case DevNodesChanged:
		return "devnodes-changed"
	case QueryChangeConfig:
		return "query-change-config"
	case DeviceArrival:
		return "device-arrival"
	case DeviceQueryRemove:
		return "device-query-remove"
	case DeviceRemovePending:
		return "device-remove-pending"
	case DeviceRemoveComplete:
		return "device-remove-complete"
	case DeviceTypeSpecific:
		return "device-type-specific"
	case CustomEvent:
		return "custom-event"
	default:
		return fmt.Sprintf("0x%04X", uint32(c))
	}
}

// Signal is one notification with its receipt time.
type Signal struct {
	Code Code
	At   time.Time
}

// Handler receives signals. Calls are serialized on the source goroutine.
type Handler func(Signal)

// Source produces signals until its context is cancelled.
type Source interface {
	// Run blocks, calling h synchronously for each notification.
	// It returns nil when ctx is cancelled and an error if the
	// underlying OS facility fails.
	Run(ctx context.Context, h Handler) error
}
