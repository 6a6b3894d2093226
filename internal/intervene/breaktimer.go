package intervene

import (
	"sync"
	"time"

	"github.com/danielpatrickdp/selfstate-engine/internal/bus"
)

// #region break-state

// BreakState is the break timer's sub-state.
type BreakState string

const (
	BreakIdle     BreakState = "idle"
	BreakCounting BreakState = "counting_down"
	BreakEnded    BreakState = "ended"
)

// #endregion break-state

// #region break-timer

// BreakTimer counts a break down one second at a time, publishing ticks and
// a single completion event. Early End cancels cleanly — no dangling tick.
type BreakTimer struct {
	mu        sync.Mutex
	state     BreakState
	remaining time.Duration
	stop      chan struct{}
	events    *bus.Bus
	onEnd     func(early bool)
}

// NewBreakTimer creates an idle timer. onEnd may be nil; it runs once per
// break, after the completion event is published.
func NewBreakTimer(events *bus.Bus, onEnd func(early bool)) *BreakTimer {
	return &BreakTimer{state: BreakIdle, events: events, onEnd: onEnd}
}

// State returns the current sub-state.
func (t *BreakTimer) State() BreakState {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.state
}

// Remaining returns the time left on the running break.
func (t *BreakTimer) Remaining() time.Duration {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.remaining
}

// #endregion break-timer

// #region start

// Start moves idle→counting_down and begins the 1s tick loop. A timer that
// already ran can be started again. No-op while a break is running.
func (t *BreakTimer) Start(minutes int) {
	t.mu.Lock()
	if t.state == BreakCounting || minutes <= 0 {
		t.mu.Unlock()
		return
	}
	t.state = BreakCounting
	t.remaining = time.Duration(minutes) * time.Minute
	t.stop = make(chan struct{})
	stop := t.stop
	t.mu.Unlock()

	go t.run(stop)
}

func (t *BreakTimer) run(stop chan struct{}) {
	ticker := time.NewTicker(time.Second)
	defer ticker.Stop()
	for {
		select {
		case <-stop:
			return
		case <-ticker.C:
			if t.Tick() {
				return
			}
		}
	}
}

// Tick decrements the remaining time by one second and reports whether the
// break finished. Exposed so tests drive the countdown without real time.
func (t *BreakTimer) Tick() bool {
	t.mu.Lock()
	if t.state != BreakCounting {
		t.mu.Unlock()
		return true
	}
	t.remaining -= time.Second
	if t.remaining > 0 {
		remaining := t.remaining
		t.mu.Unlock()
		t.publish(bus.TopicBreakTick, BreakTick{Remaining: remaining})
		return false
	}
	t.remaining = 0
	t.finishLocked(false)
	return true
}

// End stops a running break immediately.
func (t *BreakTimer) End() {
	t.mu.Lock()
	if t.state != BreakCounting {
		t.mu.Unlock()
		return
	}
	close(t.stop)
	t.finishLocked(true)
}

// finishLocked transitions to ended and publishes completion. Called with
// t.mu held; releases it.
func (t *BreakTimer) finishLocked(early bool) {
	t.state = BreakEnded
	onEnd := t.onEnd
	t.mu.Unlock()

	t.publish(bus.TopicBreakComplete, BreakComplete{Early: early})
	if onEnd != nil {
		onEnd(early)
	}
}

func (t *BreakTimer) publish(topic bus.Topic, payload any) {
	if t.events != nil {
		t.events.Publish(bus.Event{Topic: topic, Payload: payload})
	}
}

// #endregion start
