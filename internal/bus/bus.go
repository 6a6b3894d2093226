// Package bus is a typed in-process publish/subscribe hub. The engine core
// never touches a UI surface directly; every outward-facing notification goes
// through here and the presentation layer subscribes to what it cares about.
package bus

import (
	"sync"
	"time"
)

// #region topics

// Topic names a notification stream.
type Topic string

const (
	TopicStateChanged   Topic = "state-changed"
	TopicEnergyUpdated  Topic = "energy-level-updated"
	TopicBreakTick      Topic = "break-tick"
	TopicBreakComplete  Topic = "break-complete"
	TopicBreakSuggested Topic = "break-suggested"
	TopicPredictions    Topic = "predictions-updated"
	TopicIntervention   Topic = "intervention"
	TopicNudge          Topic = "gentle-nudge"
)

// #endregion topics

// #region event

// Event is one published notification. Payload types are owned by the
// publishing package; subscribers type-assert.
type Event struct {
	Topic   Topic
	Payload any
	At      time.Time
}

// Handler receives published events for a subscribed topic.
type Handler func(Event)

// #endregion event

// #region bus

// Bus dispatches events synchronously, in subscription order. A publisher
// does not return until every handler for the topic has run, which gives
// callers a dispatch-before-next-input ordering guarantee for free.
type Bus struct {
	mu       sync.RWMutex
	handlers map[Topic][]Handler
}

// New creates an empty Bus.
func New() *Bus {
	return &Bus{handlers: make(map[Topic][]Handler)}
}

// Subscribe registers a handler for a topic.
func (b *Bus) Subscribe(topic Topic, h Handler) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.handlers[topic] = append(b.handlers[topic], h)
}

// Publish delivers an event to all handlers subscribed to its topic.
func (b *Bus) Publish(ev Event) {
	if ev.At.IsZero() {
		ev.At = time.Now().UTC()
	}
	b.mu.RLock()
	hs := b.handlers[ev.Topic]
	b.mu.RUnlock()
	for _, h := range hs {
		h(ev)
	}
}

// #endregion bus
