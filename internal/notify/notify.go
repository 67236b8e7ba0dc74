// Package notify shows desktop notifications over the freedesktop D-Bus API.
package notify

import (
	"fmt"

	"github.com/godbus/dbus/v5"

	"github.com/Discobrick/monitor-switcher/internal/watcher"
)

const (
	busName     = "org.freedesktop.Notifications"
	objectPath  = dbus.ObjectPath("/org/freedesktop/Notifications")
	notifyCall  = busName + ".Notify"
	appName     = "monitor-switcher"
	expireMilli = int32(5000)
)

// Notifier delivers a short desktop message.
type Notifier interface {
	Notify(summary, body string) error
	Close() error
}

// Nop discards notifications.
type Nop struct{}

func (Nop) Notify(string, string) error { return nil }
func (Nop) Close() error                { return nil }

// callFunc invokes Notify on the bus and returns the notification id.
type callFunc func(args ...interface{}) (uint32, error)

// Desktop sends notifications on the session bus. Each new notification
// replaces the previous one.
type Desktop struct {
	conn    *dbus.Conn
	call    callFunc
	replace uint32
}

// NewDesktop connects to the session bus.
func NewDesktop() (*Desktop, error) {
	conn, err := dbus.ConnectSessionBus()
	if err != nil {
		return nil, fmt.Errorf("connect to session bus: %w", err)
	}

	obj := conn.Object(busName, objectPath)
	return &Desktop{
		conn: conn,
		call: func(args ...interface{}) (uint32, error) {
			var id uint32
			err := obj.Call(notifyCall, 0, args...).Store(&id)
			return id, err
		},
	}, nil
}

// Notify shows summary and body, replacing the last notification sent.
func (d *Desktop) Notify(summary, body string) error {
	id, err := d.call(
		appName,
		d.replace,
		"video-display",
		summary,
		body,
		[]string{},
		map[string]dbus.Variant{},
		expireMilli,
	)
	if err != nil {
		return fmt.Errorf("send notification: %w", err)
	}
	d.replace = id
	return nil
}

func (d *Desktop) Close() error {
	if d.conn == nil {
		return nil
	}
	return d.conn.Close()
}

// Open returns a desktop notifier when enabled, falling back to Nop if the
// session bus is unreachable. The returned error explains the fallback.
func Open(enabled bool) (Notifier, error) {
	if !enabled {
		return Nop{}, nil
	}
	d, err := NewDesktop()
	if err != nil {
		return Nop{}, err
	}
	return d, nil
}

// Message builds the notification text for a completed switching cycle.
// ok is false for events that should not notify.
func Message(e watcher.Event) (summary, body string, ok bool) {
	if e.Kind != watcher.Completed || e.Transition == watcher.NoChange {
		return "", "", false
	}

	failed := 0
	for _, o := range e.Outcomes {
		if !o.OK() {
			failed++
		}
	}

	if e.Transition == watcher.BecameAbsent {
		summary = "USB devices disconnected"
		body = "Switched monitors to remote input"
	} else {
		summary = "USB devices reconnected"
		body = "Switched monitors to local input"
	}
	if failed > 0 {
		body += fmt.Sprintf(" (%d of %d commands failed)", failed, len(e.Outcomes))
	}
	return summary, body, true
}

// Observer adapts n into a watcher observer. Delivery errors go to onError.
func Observer(n Notifier, onError func(error)) func(watcher.Event) {
	return func(e watcher.Event) {
		summary, body, ok := Message(e)
		if !ok {
			return
		}
		if err := n.Notify(summary, body); err != nil && onError != nil {
			onError(err)
		}
	}
}
