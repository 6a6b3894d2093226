// Package fsm is the rule-based cognitive state classifier. The transition
// rules are evaluated in a fixed priority order — first match wins. That
// ordering is a deliberate tie-break; reordering changes behavior.
package fsm

import (
	"log"
	"time"

	"github.com/danielpatrickdp/selfstate-engine/internal/bus"
	"github.com/danielpatrickdp/selfstate-engine/internal/collector"
)

// #region sink

// TransitionSink persists accepted transitions. May be nil.
type TransitionSink interface {
	AppendTransition(t Transition) error
}

// #endregion sink

// #region classifier

// Classifier owns the current cognitive state. Single-writer: callers
// serialize access.
type Classifier struct {
	config         Config
	current        State
	protectedUntil time.Time
	transitions    []Transition
	events         *bus.Bus
	sink           TransitionSink
	now            func() time.Time
}

// NewClassifier creates a classifier in the initial flow state.
// events may be nil (no notifications), sink may be nil (no persistence).
func NewClassifier(config Config, events *bus.Bus, sink TransitionSink) *Classifier {
	return &Classifier{
		config:  config,
		current: StateFlow,
		events:  events,
		sink:    sink,
		now:     time.Now,
	}
}

// SetClock overrides the classifier's clock. Test hook.
func (c *Classifier) SetClock(now func() time.Time) {
	c.now = now
}

// Current returns the current state.
func (c *Classifier) Current() State {
	return c.current
}

// Protected reports whether the protection window is active.
func (c *Classifier) Protected() bool {
	return c.now().Before(c.protectedUntil)
}

// Transitions returns a copy of the session transition log, oldest first.
func (c *Classifier) Transitions() []Transition {
	out := make([]Transition, len(c.transitions))
	copy(out, c.transitions)
	return out
}

// #endregion classifier

// #region check

// Check evaluates the ordered transition rules against a feature snapshot
// and returns the resulting state. While the protection window is active no
// automatic transition is applied.
func (c *Classifier) Check(snap collector.FeatureSnapshot) State {
	if c.Protected() {
		return c.current
	}

	// Ordered rules, first match wins.
	target := StateFlow
	switch {
	case snap.TypingRate > c.config.HyperfocusTypingRate && snap.FocusSwitchCount == 0:
		target = StateHyperfocus
	case snap.FocusSwitchCount > c.config.ScatteredFocusSwitch || snap.PointerJitter > c.config.ScatteredJitter:
		target = StateScattered
	case snap.PauseCount > c.config.ParalyzedPauseCount && snap.TypingRate < c.config.ParalyzedTypingRate:
		target = StateParalyzed
	case snap.CorrectionRate > c.config.OverwhelmedCorrection:
		target = StateOverwhelmed
	}

	c.transitionTo(target)
	return c.current
}

// #endregion check

// #region session-check

// SessionCheck evaluates the coarse session-level rules. Runs on a slower
// timer than Check. An overdue break yields a suggestion, not a transition.
func (c *Classifier) SessionCheck(s SessionSnapshot) {
	if !c.Protected() {
		switch {
		case s.EnergyLevel < c.config.LowEnergy && s.FocusScore < c.config.LowFocus:
			c.transitionTo(StateOverwhelmed)
		case s.SessionLength > c.config.LongSession && s.InteractionCount < c.config.MinInteractions:
			c.transitionTo(StateParalyzed)
		}
	}

	if !s.LastBreak.IsZero() {
		since := c.now().Sub(s.LastBreak)
		if since > c.config.BreakOverdue && c.events != nil {
			c.events.Publish(bus.Event{
				Topic:   bus.TopicBreakSuggested,
				Payload: BreakSuggested{SinceLastBreak: since},
			})
		}
	}
}

// #endregion session-check

// #region transition

// transitionTo records and publishes a state change. No-op when the target
// equals the current state.
func (c *Classifier) transitionTo(target State) {
	if target == c.current {
		return
	}
	from := c.current
	c.current = target

	t := Transition{From: from, To: target, At: c.now()}
	c.transitions = append(c.transitions, t)
	if limit := c.config.TransitionLogCap; limit > 0 && len(c.transitions) > limit {
		c.transitions = c.transitions[len(c.transitions)-limit:]
	}
	if c.sink != nil {
		if err := c.sink.AppendTransition(t); err != nil {
			log.Printf("[FSM] persist transition: %v", err)
		}
	}

	if target == StateHyperfocus {
		c.protectedUntil = c.now().Add(c.config.ProtectionWindow)
	}

	log.Printf("[FSM] %s → %s", from, target)
	if c.events != nil {
		c.events.Publish(bus.Event{
			Topic: bus.TopicStateChanged,
			Payload: StateChanged{
				From:    from,
				To:      target,
				Actions: ActionsFor(target),
			},
		})
	}
}

// #endregion transition
