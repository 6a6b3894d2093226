package fsm

import (
	"testing"
	"time"

	"github.com/danielpatrickdp/selfstate-engine/internal/bus"
	"github.com/danielpatrickdp/selfstate-engine/internal/collector"
)

var start = time.Date(2026, time.March, 10, 9, 0, 0, 0, time.UTC)

func testClassifier(t *testing.T) (*Classifier, *time.Time) {
	t.Helper()
	at := start
	c := NewClassifier(DefaultConfig(), nil, nil)
	c.SetClock(func() time.Time { return at })
	return c, &at
}

func hyperfocusSnap() collector.FeatureSnapshot {
	return collector.FeatureSnapshot{TypingRate: 80, FocusSwitchCount: 0}
}

func scatteredSnap() collector.FeatureSnapshot {
	return collector.FeatureSnapshot{TypingRate: 20, FocusSwitchCount: 8}
}

func TestInitialStateIsFlow(t *testing.T) {
	c, _ := testClassifier(t)
	if c.Current() != StateFlow {
		t.Fatalf("expected initial flow, got %s", c.Current())
	}
}

func TestRuleOrderFirstMatchWins(t *testing.T) {
	c, _ := testClassifier(t)
	// Matches both the hyperfocus rule and the overwhelmed rule; hyperfocus
	// comes first in evaluation order.
	snap := collector.FeatureSnapshot{TypingRate: 80, FocusSwitchCount: 0, CorrectionRate: 0.5}
	if got := c.Check(snap); got != StateHyperfocus {
		t.Fatalf("expected hyperfocus, got %s", got)
	}
}

func TestScatteredOnJitterAlone(t *testing.T) {
	c, _ := testClassifier(t)
	snap := collector.FeatureSnapshot{TypingRate: 20, PointerJitter: 150}
	if got := c.Check(snap); got != StateScattered {
		t.Fatalf("expected scattered, got %s", got)
	}
}

func TestParalyzedNeedsBothPausesAndLowTyping(t *testing.T) {
	c, _ := testClassifier(t)
	if got := c.Check(collector.FeatureSnapshot{PauseCount: 12, TypingRate: 5}); got != StateParalyzed {
		t.Fatalf("expected paralyzed, got %s", got)
	}

	c2, _ := testClassifier(t)
	if got := c2.Check(collector.FeatureSnapshot{PauseCount: 12, TypingRate: 30}); got != StateFlow {
		t.Fatalf("expected flow when typing rate is high, got %s", got)
	}
}

func TestHyperfocusProtectionWindow(t *testing.T) {
	c, at := testClassifier(t)
	if got := c.Check(hyperfocusSnap()); got != StateHyperfocus {
		t.Fatalf("expected hyperfocus, got %s", got)
	}

	// 10 minutes in: scattered features arrive but the window holds.
	*at = start.Add(10 * time.Minute)
	if got := c.Check(scatteredSnap()); got != StateHyperfocus {
		t.Fatalf("protection violated at 10m: %s", got)
	}
	if !c.Protected() {
		t.Fatal("expected protection active at 10m")
	}

	// 24 minutes in: still protected.
	*at = start.Add(24 * time.Minute)
	if got := c.Check(scatteredSnap()); got != StateHyperfocus {
		t.Fatalf("protection violated at 24m: %s", got)
	}

	// Past 25 minutes the window has lapsed.
	*at = start.Add(26 * time.Minute)
	if got := c.Check(scatteredSnap()); got != StateScattered {
		t.Fatalf("expected scattered after window, got %s", got)
	}
}

func TestProtectionBlocksSessionRules(t *testing.T) {
	c, at := testClassifier(t)
	c.Check(hyperfocusSnap())

	*at = start.Add(5 * time.Minute)
	c.SessionCheck(SessionSnapshot{EnergyLevel: 5, FocusScore: 5})
	if c.Current() != StateHyperfocus {
		t.Fatalf("session rule fired during protection: %s", c.Current())
	}
}

func TestSessionCheckOverwhelmed(t *testing.T) {
	c, _ := testClassifier(t)
	c.SessionCheck(SessionSnapshot{EnergyLevel: 10, FocusScore: 20})
	if c.Current() != StateOverwhelmed {
		t.Fatalf("expected overwhelmed, got %s", c.Current())
	}
}

func TestSessionCheckParalyzed(t *testing.T) {
	c, _ := testClassifier(t)
	c.SessionCheck(SessionSnapshot{
		EnergyLevel:      50,
		FocusScore:       50,
		SessionLength:    2 * time.Hour,
		InteractionCount: 3,
	})
	if c.Current() != StateParalyzed {
		t.Fatalf("expected paralyzed, got %s", c.Current())
	}
}

func TestBreakSuggestionPublished(t *testing.T) {
	events := bus.New()
	var got []BreakSuggested
	events.Subscribe(bus.TopicBreakSuggested, func(ev bus.Event) {
		got = append(got, ev.Payload.(BreakSuggested))
	})

	at := start
	c := NewClassifier(DefaultConfig(), events, nil)
	c.SetClock(func() time.Time { return at })

	c.SessionCheck(SessionSnapshot{
		EnergyLevel: 50,
		FocusScore:  50,
		LastBreak:   start.Add(-2 * time.Hour),
	})
	if len(got) != 1 {
		t.Fatalf("expected 1 break suggestion, got %d", len(got))
	}
	if got[0].SinceLastBreak != 2*time.Hour {
		t.Fatalf("unexpected since-last-break: %v", got[0].SinceLastBreak)
	}
}

func TestNoBreakSuggestionWithoutLastBreak(t *testing.T) {
	events := bus.New()
	fired := false
	events.Subscribe(bus.TopicBreakSuggested, func(bus.Event) { fired = true })

	c := NewClassifier(DefaultConfig(), events, nil)
	c.SessionCheck(SessionSnapshot{EnergyLevel: 50, FocusScore: 50})
	if fired {
		t.Fatal("break suggestion fired with zero last-break")
	}
}

func TestTransitionLogNeverSelfLoops(t *testing.T) {
	c, _ := testClassifier(t)
	c.Check(scatteredSnap())
	c.Check(scatteredSnap())
	c.Check(scatteredSnap())
	if n := len(c.Transitions()); n != 1 {
		t.Fatalf("expected 1 transition, got %d", n)
	}
}

func TestTransitionLogCapped(t *testing.T) {
	cfg := DefaultConfig()
	cfg.TransitionLogCap = 4
	at := start
	c := NewClassifier(cfg, nil, nil)
	c.SetClock(func() time.Time { return at })

	for i := 0; i < 10; i++ {
		if i%2 == 0 {
			c.Check(scatteredSnap())
		} else {
			c.Check(collector.FeatureSnapshot{TypingRate: 20})
		}
		at = at.Add(time.Minute)
	}
	got := c.Transitions()
	if len(got) != 4 {
		t.Fatalf("expected capped log of 4, got %d", len(got))
	}
	if got[len(got)-1].At != start.Add(9*time.Minute) {
		t.Fatalf("expected newest transition retained, got %v", got[len(got)-1].At)
	}
}

func TestStateChangedCarriesActions(t *testing.T) {
	events := bus.New()
	var changed []StateChanged
	events.Subscribe(bus.TopicStateChanged, func(ev bus.Event) {
		changed = append(changed, ev.Payload.(StateChanged))
	})

	c := NewClassifier(DefaultConfig(), events, nil)
	c.Check(collector.FeatureSnapshot{CorrectionRate: 0.5})
	if len(changed) != 1 {
		t.Fatalf("expected 1 state change, got %d", len(changed))
	}
	want := []Action{ActionEmergencyFlow, ActionBreathingExercise}
	if len(changed[0].Actions) != len(want) {
		t.Fatalf("unexpected actions: %v", changed[0].Actions)
	}
	for i, a := range want {
		if changed[0].Actions[i] != a {
			t.Fatalf("action %d: got %s want %s", i, changed[0].Actions[i], a)
		}
	}
}
