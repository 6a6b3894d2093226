package bus

import (
	"testing"
	"time"
)

func TestPublishDeliversInSubscriptionOrder(t *testing.T) {
	b := New()
	var order []int
	b.Subscribe(TopicStateChanged, func(Event) { order = append(order, 1) })
	b.Subscribe(TopicStateChanged, func(Event) { order = append(order, 2) })
	b.Subscribe(TopicEnergyUpdated, func(Event) { order = append(order, 99) })

	b.Publish(Event{Topic: TopicStateChanged, Payload: "x"})
	if len(order) != 2 || order[0] != 1 || order[1] != 2 {
		t.Fatalf("unexpected delivery order: %v", order)
	}
}

func TestPublishIsSynchronous(t *testing.T) {
	b := New()
	done := false
	b.Subscribe(TopicNudge, func(Event) { done = true })
	b.Publish(Event{Topic: TopicNudge})
	if !done {
		t.Fatal("publish returned before handler ran")
	}
}

func TestPublishStampsTime(t *testing.T) {
	b := New()
	var got time.Time
	b.Subscribe(TopicBreakTick, func(ev Event) { got = ev.At })
	b.Publish(Event{Topic: TopicBreakTick})
	if got.IsZero() {
		t.Fatal("expected publish to stamp At")
	}
}

func TestPublishWithoutSubscribersIsNoop(t *testing.T) {
	b := New()
	b.Publish(Event{Topic: TopicPredictions, Payload: 42})
}
