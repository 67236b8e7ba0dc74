package ui

import (
	"sync"

	"github.com/Discobrick/monitor-switcher/internal/watcher"
)

// feedItem is one message from the background goroutines.
type feedItem struct {
	event *watcher.Event
	err   error
}

// Feed carries watcher events and background errors into the UI. Log-only
// items are dropped when the UI falls behind. Events that move the presence
// display wait for room until Close is called.
type Feed struct {
	items  chan feedItem
	failed chan error

	done      chan struct{}
	closeOnce sync.Once
}

// NewFeed creates a feed buffering up to size items.
func NewFeed(size int) *Feed {
	return &Feed{
		items:  make(chan feedItem, size),
		failed: make(chan error, 1),
		done:   make(chan struct{}),
	}
}

// Observe is a watcher observer.
func (f *Feed) Observe(e watcher.Event) {
	item := feedItem{event: &e}
	if !changesState(e.Kind) {
		f.send(item)
		return
	}
	select {
	case f.items <- item:
	case <-f.done:
	}
}

// Error logs err in the UI.
func (f *Feed) Error(err error) {
	f.send(feedItem{err: err})
}

// Fail reports an unrecoverable error; the UI logs it and quits.
func (f *Feed) Fail(err error) {
	select {
	case f.failed <- err:
	default:
	}
}

// Close releases senders waiting for room. Call it once the UI has stopped.
func (f *Feed) Close() {
	f.closeOnce.Do(func() { close(f.done) })
}

func (f *Feed) send(item feedItem) {
	select {
	case f.items <- item:
	default:
	}
}

// changesState reports whether the status panel depends on seeing kind.
func changesState(kind watcher.EventKind) bool {
	switch kind {
	case watcher.Seeded, watcher.Transitioned, watcher.Completed, watcher.Recovered:
		return true
	}
	return false
}
