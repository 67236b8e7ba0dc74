package notify

import (
	"errors"
	"strings"
	"testing"

	"github.com/Discobrick/monitor-switcher/internal/dispatch"
	"github.com/Discobrick/monitor-switcher/internal/watcher"
)

type recordingNotifier struct {
	summaries []string
	bodies    []string
	err       error
}

func (r *recordingNotifier) Notify(summary, body string) error {
	r.summaries = append(r.summaries, summary)
	r.bodies = append(r.bodies, body)
	return r.err
}

func (r *recordingNotifier) Close() error { return nil }

func TestMessage(t *testing.T) {
	ok := dispatch.Outcome{Kind: dispatch.Success}
	bad := dispatch.Outcome{Kind: dispatch.LaunchFailure}

	tests := []struct {
		name     string
		event    watcher.Event
		wantOK   bool
		wantSum  string
		wantBody string
	}{
		{
			name:   "probe only",
			event:  watcher.Event{Kind: watcher.Probed},
			wantOK: false,
		},
		{
			name:   "completed without change",
			event:  watcher.Event{Kind: watcher.Completed, Transition: watcher.NoChange},
			wantOK: false,
		},
		{
			name:     "disconnect",
			event:    watcher.Event{Kind: watcher.Completed, Transition: watcher.BecameAbsent, Outcomes: []dispatch.Outcome{ok, ok}},
			wantOK:   true,
			wantSum:  "USB devices disconnected",
			wantBody: "Switched monitors to remote input",
		},
		{
			name:     "reconnect with failure",
			event:    watcher.Event{Kind: watcher.Completed, Transition: watcher.BecamePresent, Outcomes: []dispatch.Outcome{ok, bad}},
			wantOK:   true,
			wantSum:  "USB devices reconnected",
			wantBody: "Switched monitors to local input (1 of 2 commands failed)",
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			summary, body, ok := Message(tc.event)
			if ok != tc.wantOK {
				t.Fatalf("ok = %v, want %v", ok, tc.wantOK)
			}
			if summary != tc.wantSum || body != tc.wantBody {
				t.Errorf("Message() = %q, %q; want %q, %q", summary, body, tc.wantSum, tc.wantBody)
			}
		})
	}
}

func TestObserver_ReportsErrors(t *testing.T) {
	n := &recordingNotifier{err: errors.New("bus gone")}
	var reported []error
	obs := Observer(n, func(err error) { reported = append(reported, err) })

	obs(watcher.Event{Kind: watcher.Probed})
	obs(watcher.Event{Kind: watcher.Completed, Transition: watcher.BecameAbsent})

	if len(n.summaries) != 1 {
		t.Fatalf("sent %d notifications, want 1", len(n.summaries))
	}
	if len(reported) != 1 {
		t.Errorf("reported %d errors, want 1", len(reported))
	}
}

func TestDesktop_Notify_ReplacesPrevious(t *testing.T) {
	var calls [][]interface{}
	next := uint32(7)
	d := &Desktop{call: func(args ...interface{}) (uint32, error) {
		calls = append(calls, args)
		next++
		return next, nil
	}}

	if err := d.Notify("first", "one"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if err := d.Notify("second", "two"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if len(calls) != 2 {
		t.Fatalf("got %d calls, want 2", len(calls))
	}
	if calls[0][0] != appName || calls[0][3] != "first" || calls[0][4] != "one" {
		t.Errorf("first call args = %v", calls[0])
	}
	if calls[0][1] != uint32(0) {
		t.Errorf("first replaces_id = %v, want 0", calls[0][1])
	}
	if calls[1][1] != uint32(8) {
		t.Errorf("second replaces_id = %v, want 8", calls[1][1])
	}
}

func TestDesktop_Notify_Error(t *testing.T) {
	d := &Desktop{call: func(args ...interface{}) (uint32, error) {
		return 0, errors.New("no such interface")
	}}
	err := d.Notify("x", "y")
	if err == nil || !strings.Contains(err.Error(), "send notification") {
		t.Errorf("err = %v, want wrapped send error", err)
	}
	if err := d.Close(); err != nil {
		t.Errorf("Close() without connection = %v", err)
	}
}

func TestOpen_Disabled(t *testing.T) {
	n, err := Open(false)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if _, ok := n.(Nop); !ok {
		t.Errorf("Open(false) = %T, want Nop", n)
	}
}
