package intervene

import (
	"testing"
	"time"

	"github.com/danielpatrickdp/selfstate-engine/internal/bus"
	"github.com/danielpatrickdp/selfstate-engine/internal/fsm"
	"github.com/danielpatrickdp/selfstate-engine/internal/predict"
	"github.com/danielpatrickdp/selfstate-engine/internal/profile"
)

var t0 = time.Date(2026, time.March, 3, 9, 0, 0, 0, time.UTC)

func testDispatcher(t *testing.T) (*Dispatcher, *bus.Bus, *time.Time) {
	t.Helper()
	at := t0
	events := bus.New()
	d := NewDispatcher(DefaultEnergyConfig(), events, profile.AdaptationFor(profile.Default().Type))
	d.SetClock(func() time.Time { return at })
	return d, events, &at
}

func collectNudges(events *bus.Bus) *[]Nudge {
	var nudges []Nudge
	events.Subscribe(bus.TopicNudge, func(ev bus.Event) {
		nudges = append(nudges, ev.Payload.(Nudge))
	})
	return &nudges
}

func TestDecaySlowWhenBreakRecent(t *testing.T) {
	d, _, at := testDispatcher(t)
	*at = t0.Add(30 * time.Minute)
	d.DecayTick()
	if d.Energy() != 98 {
		t.Fatalf("expected slow decay to 98, got %d", d.Energy())
	}
}

func TestDecayFastWhenBreakOverdue(t *testing.T) {
	d, _, at := testDispatcher(t)
	*at = t0.Add(61 * time.Minute)
	d.DecayTick()
	if d.Energy() != 95 {
		t.Fatalf("expected fast decay to 95, got %d", d.Energy())
	}
}

func TestNudgeFiresOncePerDownwardCrossing(t *testing.T) {
	d, events, at := testDispatcher(t)
	nudges := collectNudges(events)

	// Overdue, so each tick drops 5: 100, 95, ..., 30, 25, ...
	*at = t0.Add(2 * time.Hour)
	for d.Energy() > 25 {
		d.DecayTick()
	}
	if len(*nudges) != 1 {
		t.Fatalf("expected exactly 1 nudge, got %d", len(*nudges))
	}
	if (*nudges)[0].Threshold != 30 || (*nudges)[0].Level != 30 {
		t.Fatalf("unexpected nudge: %+v", (*nudges)[0])
	}

	// Continuing down to the second threshold fires the second nudge only.
	for d.Energy() > 5 {
		d.DecayTick()
	}
	if len(*nudges) != 2 {
		t.Fatalf("expected 2 nudges, got %d", len(*nudges))
	}
	if (*nudges)[1].Threshold != 10 {
		t.Fatalf("unexpected second nudge: %+v", (*nudges)[1])
	}
}

func TestNudgeRearmsAfterRecharge(t *testing.T) {
	d, events, at := testDispatcher(t)
	nudges := collectNudges(events)

	*at = t0.Add(2 * time.Hour)
	for d.Energy() > 28 {
		d.DecayTick()
	}
	if len(*nudges) != 1 {
		t.Fatalf("expected 1 nudge, got %d", len(*nudges))
	}

	d.Recharge(40) // back above 30, threshold re-arms
	for d.Energy() > 28 {
		d.DecayTick()
	}
	if len(*nudges) != 2 {
		t.Fatalf("expected re-armed nudge, got %d", len(*nudges))
	}
}

func TestEnergyClampedAtBounds(t *testing.T) {
	d, _, at := testDispatcher(t)
	*at = t0.Add(2 * time.Hour)
	for i := 0; i < 50; i++ {
		d.DecayTick()
	}
	if d.Energy() != 0 {
		t.Fatalf("expected floor at 0, got %d", d.Energy())
	}
	d.Recharge(500)
	if d.Energy() != 100 {
		t.Fatalf("expected ceiling at 100, got %d", d.Energy())
	}
}

func TestStateChangeAppliesAndClearsModes(t *testing.T) {
	d, events, _ := testDispatcher(t)

	events.Publish(bus.Event{
		Topic: bus.TopicStateChanged,
		Payload: fsm.StateChanged{
			From:    fsm.StateFlow,
			To:      fsm.StateHyperfocus,
			Actions: fsm.ActionsFor(fsm.StateHyperfocus),
		},
	})
	modes := d.ActiveModes()
	if len(modes) != 2 {
		t.Fatalf("expected 2 active modes, got %v", modes)
	}

	events.Publish(bus.Event{
		Topic: bus.TopicStateChanged,
		Payload: fsm.StateChanged{
			From:    fsm.StateHyperfocus,
			To:      fsm.StateScattered,
			Actions: fsm.ActionsFor(fsm.StateScattered),
		},
	})
	for _, m := range d.ActiveModes() {
		if m == fsm.ActionHideTimeDisplay || m == fsm.ActionSuppressNotifications {
			t.Fatalf("previous state's mode still active: %v", d.ActiveModes())
		}
	}
}

func TestApplyPredictionsDispatchesRecommendedActions(t *testing.T) {
	d, events, _ := testDispatcher(t)
	var applied []fsm.Action
	events.Subscribe(bus.TopicIntervention, func(ev bus.Event) {
		applied = append(applied, ev.Payload.(Intervention).Action)
	})

	d.ApplyPredictions([]predict.Prediction{
		{Kind: predict.KindCrashWarning, Probability: 0.8},
		{Kind: predict.KindFlowOpportunity},
		{Kind: predict.KindPatternInsight},
	})
	want := []fsm.Action{fsm.ActionBreathingExercise, fsm.ActionSimplifyInterface, fsm.ActionMinimalNextStep}
	if len(applied) != len(want) {
		t.Fatalf("got %v want %v", applied, want)
	}
	for i := range want {
		if applied[i] != want[i] {
			t.Fatalf("action %d: got %s want %s", i, applied[i], want[i])
		}
	}
}

func TestAdaptationSeedsSimplifiedSurface(t *testing.T) {
	events := bus.New()
	d := NewDispatcher(DefaultEnergyConfig(), events, profile.AdaptationFor(profile.TypeADHDCombined))

	modes := d.ActiveModes()
	if len(modes) != 1 || modes[0] != fsm.ActionSimplifyInterface {
		t.Fatalf("expected simplified surface from the start, got %v", modes)
	}

	plain := NewDispatcher(DefaultEnergyConfig(), bus.New(), profile.AdaptationFor(profile.Default().Type))
	if len(plain.ActiveModes()) != 0 {
		t.Fatalf("standard profile should start with no modes, got %v", plain.ActiveModes())
	}
}

func TestFrequentNudgesShortenOverdueHorizon(t *testing.T) {
	at := t0
	d := NewDispatcher(DefaultEnergyConfig(), bus.New(), profile.AdaptationFor(profile.TypeADHDCombined))
	d.SetClock(func() time.Time { return at })

	// 31 minutes is past the halved one-hour horizon: decay runs fast.
	at = t0.Add(31 * time.Minute)
	d.DecayTick()
	if d.Energy() != 95 {
		t.Fatalf("expected fast decay on the shortened horizon, got %d", d.Energy())
	}
}

func TestBreakEndResetsDecayAndNudges(t *testing.T) {
	d, events, at := testDispatcher(t)
	nudges := collectNudges(events)

	*at = t0.Add(2 * time.Hour)
	for d.Energy() > 28 {
		d.DecayTick()
	}
	if len(*nudges) != 1 {
		t.Fatalf("expected 1 nudge, got %d", len(*nudges))
	}

	d.StartBreak(1)
	d.EndBreak()
	if !d.LastBreak().Equal(*at) {
		t.Fatalf("last break not updated: %v", d.LastBreak())
	}

	// Nudges re-armed by the break: the next crossing fires again.
	d.Recharge(40)
	for d.Energy() > 28 {
		d.DecayTick()
	}
	if len(*nudges) != 2 {
		t.Fatalf("expected nudge after break reset, got %d", len(*nudges))
	}

	// And decay is slow again right after the break.
	before := d.Energy()
	d.DecayTick()
	if before-d.Energy() != 2 {
		t.Fatalf("expected slow decay after break, got %d", before-d.Energy())
	}
}
