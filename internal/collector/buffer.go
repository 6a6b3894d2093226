// Package collector ingests raw interaction events and derives numeric
// features over a sliding window. It owns the bounded recent-event buffer;
// classification decisions happen elsewhere.
package collector

import (
	"math"
	"time"
)

// #region buffer

// Buffer keeps the most recent interaction events, oldest evicted first.
// Single-writer: callers serialize access (the engine holds the lock).
type Buffer struct {
	config      Config
	events      []Event
	lastPointer time.Time
	now         func() time.Time
}

// NewBuffer creates an empty buffer.
func NewBuffer(config Config) *Buffer {
	if config.Capacity <= 0 {
		config.Capacity = DefaultConfig().Capacity
	}
	return &Buffer{
		config: config,
		events: make([]Event, 0, config.Capacity),
		now:    time.Now,
	}
}

// SetClock overrides the buffer's clock. Test hook.
func (b *Buffer) SetClock(now func() time.Time) {
	b.now = now
}

// #endregion buffer

// #region record

// Record appends an event to the ring buffer. Returns false when the event
// was dropped: malformed events are discarded silently, and pointer_move
// events are coalesced to at most one per the configured spacing.
func (b *Buffer) Record(ev Event) bool {
	if !knownTypes[ev.Type] || ev.Timestamp.IsZero() {
		return false
	}
	if ev.Type == EventPointerMove {
		if !b.lastPointer.IsZero() && ev.Timestamp.Sub(b.lastPointer) < b.config.PointerCoalesce {
			return false
		}
		b.lastPointer = ev.Timestamp
	}
	b.events = append(b.events, ev)
	if len(b.events) > b.config.Capacity {
		b.events = b.events[len(b.events)-b.config.Capacity:]
	}
	return true
}

// #endregion record

// #region accessors

// Len returns the number of buffered events.
func (b *Buffer) Len() int {
	return len(b.events)
}

// Events returns a copy of the buffered events, oldest first.
func (b *Buffer) Events() []Event {
	out := make([]Event, len(b.events))
	copy(out, b.events)
	return out
}

// Restore replaces the buffer contents, keeping at most capacity events
// (newest retained). Used when reloading a persisted session.
func (b *Buffer) Restore(events []Event) {
	if len(events) > b.config.Capacity {
		events = events[len(events)-b.config.Capacity:]
	}
	b.events = append(b.events[:0], events...)
	for _, ev := range b.events {
		if ev.Type == EventPointerMove && ev.Timestamp.After(b.lastPointer) {
			b.lastPointer = ev.Timestamp
		}
	}
}

// #endregion accessors

// #region extract-features

// ExtractFeatures computes a FeatureSnapshot from events within the trailing
// window. Pure over the window: no buffer mutation.
func (b *Buffer) ExtractFeatures(window time.Duration) FeatureSnapshot {
	if window <= 0 {
		window = b.config.DefaultWindow
	}
	cutoff := b.now().Add(-window)

	var snap FeatureSnapshot
	var keyDowns, backspaces int
	var prev Event
	var havePrev bool
	var jitterSum float64
	var jitterCount int
	var prevPointer Event
	var havePointer bool

	for _, ev := range b.events {
		if ev.Timestamp.Before(cutoff) {
			continue
		}
		if havePrev && ev.Timestamp.Sub(prev.Timestamp) > b.config.PauseGap {
			snap.PauseCount++
		}
		prev, havePrev = ev, true

		switch ev.Type {
		case EventKeyDown:
			keyDowns++
			if isBackspace(ev.Key) {
				backspaces++
			}
		case EventFocusLost:
			snap.FocusSwitchCount++
		case EventPointerMove:
			if havePointer {
				dx := ev.X - prevPointer.X
				dy := ev.Y - prevPointer.Y
				jitterSum += math.Sqrt(dx*dx + dy*dy)
				jitterCount++
			}
			prevPointer, havePointer = ev, true
		}
	}

	if minutes := window.Minutes(); minutes > 0 {
		snap.TypingRate = float64(keyDowns) / minutes
	}
	if keyDowns > 0 {
		snap.CorrectionRate = float64(backspaces) / float64(keyDowns)
	}
	if jitterCount > 0 {
		snap.PointerJitter = jitterSum / float64(jitterCount)
	}
	return snap
}

func isBackspace(key string) bool {
	return key == "Backspace" || key == "Delete"
}

// #endregion extract-features
