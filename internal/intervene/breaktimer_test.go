package intervene

import (
	"testing"
	"time"

	"github.com/danielpatrickdp/selfstate-engine/internal/bus"
)

func testTimer(t *testing.T) (*BreakTimer, *bus.Bus, *bool) {
	t.Helper()
	events := bus.New()
	ended := false
	timer := NewBreakTimer(events, func(early bool) { ended = true })
	return timer, events, &ended
}

// drive sets the timer counting without the real tick goroutine, so tests
// control every tick.
func drive(timer *BreakTimer, d time.Duration) {
	timer.mu.Lock()
	timer.state = BreakCounting
	timer.remaining = d
	timer.stop = make(chan struct{})
	timer.mu.Unlock()
}

func TestTimerCountsDownToCompletion(t *testing.T) {
	timer, events, ended := testTimer(t)
	var ticks []BreakTick
	var completes []BreakComplete
	events.Subscribe(bus.TopicBreakTick, func(ev bus.Event) {
		ticks = append(ticks, ev.Payload.(BreakTick))
	})
	events.Subscribe(bus.TopicBreakComplete, func(ev bus.Event) {
		completes = append(completes, ev.Payload.(BreakComplete))
	})

	drive(timer, 3*time.Second)
	if timer.Tick() {
		t.Fatal("finished after 1s of 3")
	}
	if timer.Tick() {
		t.Fatal("finished after 2s of 3")
	}
	if !timer.Tick() {
		t.Fatal("expected completion at 3s")
	}

	if len(ticks) != 2 {
		t.Fatalf("expected 2 tick events, got %d", len(ticks))
	}
	if ticks[0].Remaining != 2*time.Second || ticks[1].Remaining != time.Second {
		t.Fatalf("unexpected tick payloads: %+v", ticks)
	}
	if len(completes) != 1 || completes[0].Early {
		t.Fatalf("unexpected completion: %+v", completes)
	}
	if timer.State() != BreakEnded {
		t.Fatalf("expected ended, got %s", timer.State())
	}
	if !*ended {
		t.Fatal("onEnd callback not invoked")
	}
}

func TestTimerEarlyEnd(t *testing.T) {
	timer, events, _ := testTimer(t)
	var completes []BreakComplete
	events.Subscribe(bus.TopicBreakComplete, func(ev bus.Event) {
		completes = append(completes, ev.Payload.(BreakComplete))
	})

	timer.Start(5)
	if timer.State() != BreakCounting {
		t.Fatalf("expected counting, got %s", timer.State())
	}
	timer.End()
	if timer.State() != BreakEnded {
		t.Fatalf("expected ended, got %s", timer.State())
	}
	if len(completes) != 1 || !completes[0].Early {
		t.Fatalf("expected one early completion, got %+v", completes)
	}

	// Ending again is a no-op.
	timer.End()
	if len(completes) != 1 {
		t.Fatalf("duplicate completion: %+v", completes)
	}
}

func TestTimerStartWhileRunningIsNoop(t *testing.T) {
	timer, _, _ := testTimer(t)
	timer.Start(5)
	timer.Start(10)
	if got := timer.Remaining(); got != 5*time.Minute {
		t.Fatalf("restart changed remaining: %v", got)
	}
	timer.End()
}

func TestTimerRestartAfterEnd(t *testing.T) {
	timer, _, _ := testTimer(t)
	timer.Start(5)
	timer.End()
	timer.Start(2)
	if timer.State() != BreakCounting {
		t.Fatalf("expected counting after restart, got %s", timer.State())
	}
	if timer.Remaining() != 2*time.Minute {
		t.Fatalf("unexpected remaining: %v", timer.Remaining())
	}
	timer.End()
}

func TestTimerIgnoresNonPositiveMinutes(t *testing.T) {
	timer, _, _ := testTimer(t)
	timer.Start(0)
	if timer.State() != BreakIdle {
		t.Fatalf("expected idle, got %s", timer.State())
	}
}
