package store

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/danielpatrickdp/selfstate-engine/internal/anonymize"
	"github.com/danielpatrickdp/selfstate-engine/internal/collector"
	"github.com/danielpatrickdp/selfstate-engine/internal/fsm"
	"github.com/danielpatrickdp/selfstate-engine/internal/profile"
	"github.com/danielpatrickdp/selfstate-engine/internal/temporal"
)

func tempStore(t *testing.T, transitionCap int) *Store {
	t.Helper()
	s, err := NewStore(filepath.Join(t.TempDir(), "selfstate.db"), transitionCap)
	if err != nil {
		t.Fatalf("open store: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

var ts = time.Date(2026, time.March, 3, 10, 0, 0, 0, time.UTC)

func TestObservationRoundTripAndPrune(t *testing.T) {
	s := tempStore(t, 0)
	for day := 0; day < 5; day++ {
		obs := temporal.Observation{
			At: ts.AddDate(0, 0, day),
			Vector: temporal.StateVector{
				Cognitive: 60 + day, Emotional: 50, Physical: 70,
				Circadian: 80, Social: 30, Creative: 55, Meaning: 50,
			},
			Context: temporal.ContextAt(ts.AddDate(0, 0, day)),
		}
		if err := s.AppendObservation(obs); err != nil {
			t.Fatalf("append %d: %v", day, err)
		}
	}

	if err := s.PruneObservations(ts.AddDate(0, 0, 2)); err != nil {
		t.Fatalf("prune: %v", err)
	}
	got, err := s.ListObservationsSince(time.Time{})
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(got) != 3 {
		t.Fatalf("expected 3 after prune, got %d", len(got))
	}
	first := got[0]
	if !first.At.Equal(ts.AddDate(0, 0, 2)) {
		t.Fatalf("unexpected first at: %v", first.At)
	}
	if first.Vector.Cognitive != 62 {
		t.Fatalf("vector not preserved: %+v", first.Vector)
	}
	if first.Context.Season != "spring" || first.Context.HourOfDay != 10 {
		t.Fatalf("context not preserved: %+v", first.Context)
	}
}

func TestTransitionCapEnforced(t *testing.T) {
	s := tempStore(t, 3)
	states := []fsm.State{fsm.StateFlow, fsm.StateScattered, fsm.StateOverwhelmed, fsm.StateRecovering, fsm.StateFlow}
	for i := 1; i < len(states); i++ {
		err := s.AppendTransition(fsm.Transition{
			From: states[i-1], To: states[i], At: ts.Add(time.Duration(i) * time.Minute),
		})
		if err != nil {
			t.Fatalf("append %d: %v", i, err)
		}
	}
	got, err := s.ListTransitions(10)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(got) != 3 {
		t.Fatalf("expected cap of 3, got %d", len(got))
	}
	// Newest first; the oldest transition fell off.
	if got[0].To != fsm.StateFlow || got[2].To != fsm.StateOverwhelmed {
		t.Fatalf("unexpected transitions: %+v", got)
	}
}

func TestEventSnapshotReplaced(t *testing.T) {
	s := tempStore(t, 0)
	first := []collector.Event{
		{Type: collector.EventKeyDown, Key: "a", Timestamp: ts},
		{Type: collector.EventPointerMove, X: 3, Y: 4, Timestamp: ts.Add(time.Second)},
	}
	if err := s.SaveEvents(first); err != nil {
		t.Fatalf("save: %v", err)
	}
	second := []collector.Event{
		{Type: collector.EventFocusLost, Timestamp: ts.Add(time.Minute)},
	}
	if err := s.SaveEvents(second); err != nil {
		t.Fatalf("resave: %v", err)
	}

	got := s.LoadEvents()
	if len(got) != 1 {
		t.Fatalf("expected full replacement, got %d events", len(got))
	}
	if got[0].Type != collector.EventFocusLost || !got[0].Timestamp.Equal(ts.Add(time.Minute)) {
		t.Fatalf("unexpected event: %+v", got[0])
	}
}

func TestLoadEventsSkipsCorruptTimestamps(t *testing.T) {
	s := tempStore(t, 0)
	if err := s.SaveEvents([]collector.Event{{Type: collector.EventKeyDown, Key: "a", Timestamp: ts}}); err != nil {
		t.Fatalf("save: %v", err)
	}
	if _, err := s.DB().Exec(`UPDATE interaction_events SET at = 'garbage'`); err != nil {
		t.Fatalf("corrupt: %v", err)
	}
	if got := s.LoadEvents(); len(got) != 0 {
		t.Fatalf("expected corrupt snapshot to load empty, got %d", len(got))
	}
}

func TestPatternQueueLifecycle(t *testing.T) {
	s := tempStore(t, 0)
	mk := func(id string, queued bool) {
		p := anonymize.Pattern{
			ID: id, At: ts,
			Context:      anonymize.HashedContext{CognitiveRange: 60, TimeOfDay: "morning", DayType: "weekday"},
			Intervention: "box_breathing",
			Outcome:      "calmer",
			EffectSize:   0.4,
			Tags:         []string{"breathing"},
		}
		if err := s.SavePattern(p, queued); err != nil {
			t.Fatalf("save %s: %v", id, err)
		}
	}
	mk("p1", true)
	mk("p2", false)
	mk("p3", true)

	queued, err := s.ListQueuedPatterns()
	if err != nil {
		t.Fatalf("queued: %v", err)
	}
	if len(queued) != 2 {
		t.Fatalf("expected 2 queued, got %d", len(queued))
	}
	if queued[0].Context.TimeOfDay != "morning" || queued[0].Tags[0] != "breathing" {
		t.Fatalf("pattern fields not preserved: %+v", queued[0])
	}

	if err := s.MarkPatternsShared([]string{"p1", "p3"}); err != nil {
		t.Fatalf("mark: %v", err)
	}
	queued, _ = s.ListQueuedPatterns()
	if len(queued) != 0 {
		t.Fatalf("expected empty queue after share, got %d", len(queued))
	}

	all, err := s.ListPatterns()
	if err != nil {
		t.Fatalf("all: %v", err)
	}
	if len(all) != 3 {
		t.Fatalf("shared patterns must stay local: got %d", len(all))
	}
}

func TestConsentDefaultsFalse(t *testing.T) {
	s := tempStore(t, 0)
	if s.Consent() {
		t.Fatal("consent should default to false")
	}
	if err := s.SetConsent(true); err != nil {
		t.Fatalf("set: %v", err)
	}
	if !s.Consent() {
		t.Fatal("consent not persisted")
	}
	if err := s.SetConsent(false); err != nil {
		t.Fatalf("unset: %v", err)
	}
	if s.Consent() {
		t.Fatal("consent revoke not persisted")
	}
}

func TestProfileCorruptRecordReinitializes(t *testing.T) {
	s := tempStore(t, 0)
	if got := s.Profile(); got.Type != profile.TypeExploring {
		t.Fatalf("expected default profile, got %+v", got)
	}

	p := profile.Profile{Type: profile.TypeAuDHD, SelectedTraits: []string{"hyperfocus"}}
	if err := s.SetProfile(p); err != nil {
		t.Fatalf("set: %v", err)
	}
	if got := s.Profile(); got.Type != profile.TypeAuDHD {
		t.Fatalf("profile not persisted: %+v", got)
	}

	if _, err := s.DB().Exec(`UPDATE settings SET value = '{broken' WHERE key = 'cognitive_profile'`); err != nil {
		t.Fatalf("corrupt: %v", err)
	}
	if got := s.Profile(); got.Type != profile.TypeExploring {
		t.Fatalf("corrupt profile should reinitialize, got %+v", got)
	}
}
