// Package watcher turns noisy hardware-change notifications into at most one
// command batch per real presence transition.
package watcher

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/Discobrick/monitor-switcher/internal/dispatch"
	"github.com/Discobrick/monitor-switcher/internal/event"
)

// DefaultSettleDelay lets OS enumeration finish before probing.
const DefaultSettleDelay = 500 * time.Millisecond

// Prober reports whether any monitored device is present.
type Prober interface {
	Probe() bool
}

// Dispatcher runs a command batch, reporting each outcome to fn.
type Dispatcher interface {
	Dispatch(ctx context.Context, batch []string, fn func(dispatch.Outcome)) []dispatch.Outcome
}

// Config holds the watcher's timing and command batches.
type Config struct {
	Cooldown       time.Duration
	SettleDelay    time.Duration
	DisconnectCmds []string
	ConnectCmds    []string
}

// Option customises a Watcher.
type Option func(*Watcher)

// WithObserver registers fn to receive every Event. Observers run on the
// notification goroutine and must not block.
func WithObserver(fn func(Event)) Option {
	return func(w *Watcher) {
		w.observers = append(w.observers, fn)
	}
}

// WithClock replaces time.Now.
func WithClock(now func() time.Time) Option {
	return func(w *Watcher) {
		w.now = now
	}
}

// WithSleep replaces the settle delay implementation. sleep returns false
// if ctx ended first.
func WithSleep(sleep func(ctx context.Context, d time.Duration) bool) Option {
	return func(w *Watcher) {
		w.sleep = sleep
	}
}

// Watcher owns the presence flag and cooldown window.
type Watcher struct {
	cfg        Config
	prober     Prober
	dispatcher Dispatcher

	// mu guards presence and gate
	mu       sync.Mutex
	presence Presence
	gate     Gate

	// cycle serializes whole notification cycles
	cycle sync.Mutex

	observers []func(Event)
	now       func() time.Time
	sleep     func(ctx context.Context, d time.Duration) bool
	newCycle  func() string
}

// New creates a watcher. Call Start before delivering notifications.
func New(cfg Config, prober Prober, dispatcher Dispatcher, opts ...Option) *Watcher {
	if cfg.Cooldown <= 0 {
		cfg.Cooldown = DefaultCooldown
	}
	if cfg.SettleDelay < 0 {
		cfg.SettleDelay = 0
	}

	w := &Watcher{
		cfg:        cfg,
		prober:     prober,
		dispatcher: dispatcher,
		gate:       NewGate(cfg.Cooldown),
		now:        time.Now,
		sleep:      sleepContext,
		newCycle:   uuid.NewString,
	}
	for _, opt := range opts {
		opt(w)
	}
	return w
}

// Start seeds the presence state from a real probe and returns it.
func (w *Watcher) Start() bool {
	present := w.prober.Probe()

	w.mu.Lock()
	w.presence = Presence{present: present}
	w.mu.Unlock()

	w.emit(Event{Kind: Seeded, Present: present})
	return present
}

// Present returns the recorded presence state. Safe to call from any goroutine.
func (w *Watcher) Present() bool {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.presence.Present()
}

// Run feeds src into Handle until ctx is cancelled. Call Start first.
func (w *Watcher) Run(ctx context.Context, src event.Source) error {
	return src.Run(ctx, w.Handler(ctx))
}

// Handler binds Handle to ctx for registration with an event source.
func (w *Watcher) Handler(ctx context.Context) event.Handler {
	return func(sig event.Signal) {
		w.Handle(ctx, sig)
	}
}

// OnNotification handles a signal without cancellation.
func (w *Watcher) OnNotification(sig event.Signal) Transition {
	return w.Handle(context.Background(), sig)
}

// Handle runs one notification cycle: gate, settle, probe, evaluate, then
// dispatch and record the cooldown when presence changed. It never panics;
// failures are reported as events.
func (w *Watcher) Handle(ctx context.Context, sig event.Signal) (tr Transition) {
	defer func() {
		if r := recover(); r != nil {
			// Closes the cycle for observers that saw Transitioned
			w.emit(Event{
				Kind:    Recovered,
				Signal:  sig,
				Present: w.Present(),
				Err:     fmt.Errorf("notification handler panic: %v", r),
			})
			tr = NoChange
		}
	}()

	if !Eligible(sig.Code) {
		w.emit(Event{Kind: Ignored, Signal: sig})
		return NoChange
	}

	if !w.cycle.TryLock() {
		w.emit(Event{Kind: Busy, Signal: sig})
		return NoChange
	}
	defer w.cycle.Unlock()

	if !w.accept(sig) {
		w.emit(Event{Kind: Debounced, Signal: sig})
		return NoChange
	}

	id := w.newCycle()
	if !w.sleep(ctx, w.cfg.SettleDelay) {
		return NoChange
	}

	present := w.prober.Probe()
	w.emit(Event{Kind: Probed, Cycle: id, Signal: sig, Present: present})

	tr = w.evaluate(present)

	var outcomes []dispatch.Outcome
	if tr != NoChange {
		w.emit(Event{Kind: Transitioned, Cycle: id, Signal: sig, Present: present, Transition: tr})
		outcomes = w.dispatcher.Dispatch(ctx, w.batch(tr), func(o dispatch.Outcome) {
			w.emit(Event{Kind: Dispatched, Cycle: id, Signal: sig, Present: present, Transition: tr, Outcome: o})
		})
	}

	// Only a completed switch opens a cooldown window. A NoChange cycle
	// may have probed before enumeration settled, and the rest of the
	// burst must still be able to catch the real transition.
	if tr != NoChange {
		w.record(w.now())
	}

	w.emit(Event{
		Kind:       Completed,
		Cycle:      id,
		Signal:     sig,
		Present:    present,
		Transition: tr,
		Outcomes:   outcomes,
	})
	return tr
}

func (w *Watcher) accept(sig event.Signal) bool {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.gate.Accept(sig.Code, sig.At)
}

func (w *Watcher) evaluate(present bool) Transition {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.presence.Evaluate(present)
}

func (w *Watcher) record(now time.Time) {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.gate.Record(now)
}

func (w *Watcher) batch(tr Transition) []string {
	if tr == BecameAbsent {
		return w.cfg.DisconnectCmds
	}
	return w.cfg.ConnectCmds
}

func (w *Watcher) emit(e Event) {
	if e.At.IsZero() {
		e.At = w.now()
	}
	for _, fn := range w.observers {
		fn(e)
	}
}

func sleepContext(ctx context.Context, d time.Duration) bool {
	if d <= 0 {
		return ctx.Err() == nil
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-t.C:
		return true
	case <-ctx.Done():
		return false
	}
}
