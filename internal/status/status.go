// Package status keeps a small JSON snapshot of the watcher's state on disk so
// other processes (and -status) can query it.
package status

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/tidwall/gjson"
	"github.com/tidwall/pretty"
	"github.com/tidwall/sjson"

	"github.com/Discobrick/monitor-switcher/internal/watcher"
)

const fileName = "monitor-switcher.json"

// ErrInvalid is returned by Read when the file is not a JSON snapshot.
var ErrInvalid = errors.New("invalid status file")

// Outcome is the recorded result of one command.
type Outcome struct {
	Command string
	Kind    string
	Error   string
}

// Snapshot is the persisted watcher state.
type Snapshot struct {
	PID            int
	Present        bool
	Since          time.Time
	LastTransition string
	Cycle          string
	Devices        []string
	Outcomes       []Outcome
}

// DefaultPath returns $XDG_RUNTIME_DIR/monitor-switcher.json, or the same
// name in the temp dir when no runtime dir is set.
func DefaultPath() string {
	if dir := os.Getenv("XDG_RUNTIME_DIR"); dir != "" {
		return filepath.Join(dir, fileName)
	}
	return filepath.Join(os.TempDir(), fileName)
}

// Encode renders snap as JSON.
func Encode(snap Snapshot) ([]byte, error) {
	doc := []byte(`{}`)
	var err error

	set := func(path string, value interface{}) {
		if err != nil {
			return
		}
		doc, err = sjson.SetBytes(doc, path, value)
	}
	setRaw := func(path, raw string) {
		if err != nil {
			return
		}
		doc, err = sjson.SetRawBytes(doc, path, []byte(raw))
	}

	set("pid", snap.PID)
	set("present", snap.Present)
	set("since", snap.Since.Format(time.RFC3339Nano))
	set("last_transition", snap.LastTransition)
	set("cycle", snap.Cycle)
	setRaw("devices", "[]")
	for _, d := range snap.Devices {
		set("devices.-1", d)
	}
	setRaw("outcomes", "[]")
	for _, o := range snap.Outcomes {
		item := []byte(`{}`)
		if err == nil {
			item, err = encodeOutcome(o)
		}
		setRaw("outcomes.-1", string(item))
	}

	if err != nil {
		return nil, fmt.Errorf("encode status: %w", err)
	}
	return doc, nil
}

func encodeOutcome(o Outcome) ([]byte, error) {
	item, err := sjson.SetBytes([]byte(`{}`), "command", o.Command)
	if err == nil {
		item, err = sjson.SetBytes(item, "kind", o.Kind)
	}
	if err == nil && o.Error != "" {
		item, err = sjson.SetBytes(item, "error", o.Error)
	}
	return item, err
}

// Decode parses a snapshot produced by Encode.
func Decode(data []byte) (Snapshot, error) {
	if !gjson.ValidBytes(data) || !gjson.ParseBytes(data).IsObject() {
		return Snapshot{}, ErrInvalid
	}

	r := gjson.ParseBytes(data)
	snap := Snapshot{
		PID:            int(r.Get("pid").Int()),
		Present:        r.Get("present").Bool(),
		LastTransition: r.Get("last_transition").String(),
		Cycle:          r.Get("cycle").String(),
	}
	if since := r.Get("since").String(); since != "" {
		t, err := time.Parse(time.RFC3339Nano, since)
		if err != nil {
			return Snapshot{}, fmt.Errorf("%w: since: %v", ErrInvalid, err)
		}
		snap.Since = t
	}
	for _, d := range r.Get("devices").Array() {
		snap.Devices = append(snap.Devices, d.String())
	}
	r.Get("outcomes").ForEach(func(_, o gjson.Result) bool {
		snap.Outcomes = append(snap.Outcomes, Outcome{
			Command: o.Get("command").String(),
			Kind:    o.Get("kind").String(),
			Error:   o.Get("error").String(),
		})
		return true
	})
	return snap, nil
}

// Write atomically replaces the snapshot at path.
func Write(path string, snap Snapshot) error {
	data, err := Encode(snap)
	if err != nil {
		return err
	}

	dir := filepath.Dir(path)
	tmp, err := os.CreateTemp(dir, ".status-*")
	if err != nil {
		return fmt.Errorf("cannot write status file: %w", err)
	}
	defer os.Remove(tmp.Name())

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return fmt.Errorf("cannot write status file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("cannot write status file: %w", err)
	}
	if err := os.Rename(tmp.Name(), path); err != nil {
		return fmt.Errorf("cannot write status file: %w", err)
	}
	return nil
}

// Read loads the snapshot at path.
func Read(path string) (Snapshot, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Snapshot{}, fmt.Errorf("cannot read status file (is monitor-switcher running?): %w", err)
	}
	return Decode(data)
}

// Summary renders snap as a short human-readable report.
func Summary(snap Snapshot) string {
	var b strings.Builder

	state := "disconnected"
	if snap.Present {
		state = "connected"
	}
	fmt.Fprintf(&b, "USB devices:     %s", state)
	if !snap.Since.IsZero() {
		fmt.Fprintf(&b, " since %s", snap.Since.Local().Format("2006-01-02 15:04:05"))
	}
	b.WriteByte('\n')

	fmt.Fprintf(&b, "Last transition: %s", snap.LastTransition)
	if snap.Cycle != "" {
		fmt.Fprintf(&b, " (cycle %s)", snap.Cycle)
	}
	b.WriteByte('\n')
	fmt.Fprintf(&b, "Watcher PID:     %d\n", snap.PID)
	fmt.Fprintf(&b, "Monitored:       %s\n", strings.Join(snap.Devices, ", "))

	if len(snap.Outcomes) > 0 {
		failed := 0
		for _, o := range snap.Outcomes {
			if o.Kind != "success" {
				failed++
			}
		}
		fmt.Fprintf(&b, "Commands:        %d ok, %d failed\n", len(snap.Outcomes)-failed, failed)
		for _, o := range snap.Outcomes {
			if o.Kind == "success" {
				continue
			}
			fmt.Fprintf(&b, "  [%s] %s", o.Kind, o.Command)
			if o.Error != "" {
				fmt.Fprintf(&b, ": %s", o.Error)
			}
			b.WriteByte('\n')
		}
	}
	return b.String()
}

// Pretty returns the raw snapshot at path, indented for display.
func Pretty(path string) ([]byte, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("cannot read status file (is monitor-switcher running?): %w", err)
	}
	if !gjson.ValidBytes(data) {
		return nil, ErrInvalid
	}
	return pretty.Pretty(data), nil
}

// Recorder writes a snapshot after seeding and after every transition.
type Recorder struct {
	path    string
	onError func(error)

	mu   sync.Mutex
	snap Snapshot
}

// NewRecorder creates a recorder for path. devices are the monitored tokens.
func NewRecorder(path string, devices []string, onError func(error)) *Recorder {
	return &Recorder{
		path:    path,
		onError: onError,
		snap: Snapshot{
			PID:     os.Getpid(),
			Devices: devices,
		},
	}
}

// Observe is a watcher observer.
func (r *Recorder) Observe(e watcher.Event) {
	r.mu.Lock()
	switch {
	case e.Kind == watcher.Seeded:
		r.snap.Present = e.Present
		r.snap.Since = e.At
		r.snap.LastTransition = watcher.NoChange.String()
	case e.Kind == watcher.Completed && e.Transition != watcher.NoChange:
		r.snap.Present = e.Present
		r.snap.Since = e.At
		r.snap.LastTransition = e.Transition.String()
		r.snap.Cycle = e.Cycle
		r.snap.Outcomes = nil
		for _, o := range e.Outcomes {
			rec := Outcome{Command: o.Command, Kind: o.Kind.String()}
			if o.Err != nil {
				rec.Error = o.Err.Error()
			}
			r.snap.Outcomes = append(r.snap.Outcomes, rec)
		}
	default:
		r.mu.Unlock()
		return
	}
	snap := r.snap
	r.mu.Unlock()

	if err := Write(r.path, snap); err != nil && r.onError != nil {
		r.onError(err)
	}
}

// Remove deletes the snapshot file, ignoring a missing file.
func (r *Recorder) Remove() error {
	if err := os.Remove(r.path); err != nil && !errors.Is(err, os.ErrNotExist) {
		return err
	}
	return nil
}
