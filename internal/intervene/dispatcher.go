// Package intervene maps state transitions and predictions to the closed
// intervention vocabulary, and owns the break timer and energy decay.
package intervene

import (
	"fmt"
	"log"
	"sort"
	"time"

	"github.com/danielpatrickdp/selfstate-engine/internal/bus"
	"github.com/danielpatrickdp/selfstate-engine/internal/fsm"
	"github.com/danielpatrickdp/selfstate-engine/internal/predict"
	"github.com/danielpatrickdp/selfstate-engine/internal/profile"
)

// #region dispatcher

// Dispatcher executes the action vector attached to each state transition
// and each prediction. Everything it does is a bus publication; no UI
// surface is touched directly, so every action is no-op-safe.
type Dispatcher struct {
	config     EnergyConfig
	events     *bus.Bus
	adaptation profile.Adaptation

	energy    int
	lastBreak time.Time
	nudged    map[int]bool
	modes     map[fsm.Action]bool
	timer     *BreakTimer
	now       func() time.Time
}

// NewDispatcher creates a dispatcher subscribed to state changes. The
// adaptation set biases the defaults: break length, the simplified starting
// surface, and the break-overdue horizon. Callers with no profile pass the
// standard set.
func NewDispatcher(config EnergyConfig, events *bus.Bus, adaptation profile.Adaptation) *Dispatcher {
	if adaptation.FrequentNudges && config.BreakOverdue > 0 {
		config.BreakOverdue /= 2
	}
	d := &Dispatcher{
		config:     config,
		events:     events,
		adaptation: adaptation,
		energy:     100,
		nudged:     make(map[int]bool),
		modes:      make(map[fsm.Action]bool),
		now:        time.Now,
	}
	if adaptation.SimplifyByDefault {
		d.modes[fsm.ActionSimplifyInterface] = true
	}
	d.lastBreak = d.now()
	d.timer = NewBreakTimer(events, d.breakEnded)
	if events != nil {
		events.Subscribe(bus.TopicStateChanged, d.onStateChanged)
	}
	return d
}

// SetClock overrides the dispatcher's clock. Test hook.
func (d *Dispatcher) SetClock(now func() time.Time) {
	d.now = now
	d.lastBreak = now()
}

// Energy returns the current energy level.
func (d *Dispatcher) Energy() int {
	return d.energy
}

// LastBreak returns when the last break ended.
func (d *Dispatcher) LastBreak() time.Time {
	return d.lastBreak
}

// ActiveModes returns the currently active actions, sorted for determinism.
func (d *Dispatcher) ActiveModes() []fsm.Action {
	out := make([]fsm.Action, 0, len(d.modes))
	for a, on := range d.modes {
		if on {
			out = append(out, a)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}

// Timer returns the break timer.
func (d *Dispatcher) Timer() *BreakTimer {
	return d.timer
}

// #endregion dispatcher

// #region state-changed

func (d *Dispatcher) onStateChanged(ev bus.Event) {
	change, ok := ev.Payload.(fsm.StateChanged)
	if !ok {
		return
	}
	// Leaving a state clears its modes before the new vector applies.
	for _, a := range fsm.ActionsFor(change.From) {
		d.modes[a] = false
	}
	for _, a := range change.Actions {
		d.Apply(a, fmt.Sprintf("entered %s", change.To))
	}
}

// Apply activates one action and publishes the intervention.
func (d *Dispatcher) Apply(a fsm.Action, reason string) {
	d.modes[a] = true
	log.Printf("[DISPATCH] %s (%s)", a, reason)
	d.events.Publish(bus.Event{
		Topic:   bus.TopicIntervention,
		Payload: Intervention{Action: a, Reason: reason},
	})
}

// #endregion state-changed

// #region predictions

// recommendedActions maps prediction kinds to vocabulary actions.
func recommendedActions(p predict.Prediction) []fsm.Action {
	switch p.Kind {
	case predict.KindCrashWarning:
		return []fsm.Action{fsm.ActionBreathingExercise, fsm.ActionSimplifyInterface}
	case predict.KindPatternInsight:
		return []fsm.Action{fsm.ActionMinimalNextStep}
	default:
		return nil
	}
}

// ApplyPredictions dispatches the actions recommended by the current
// prediction set. Flow opportunities are informational; they dispatch
// nothing.
func (d *Dispatcher) ApplyPredictions(preds []predict.Prediction) {
	for _, p := range preds {
		for _, a := range recommendedActions(p) {
			d.Apply(a, string(p.Kind))
		}
	}
}

// #endregion predictions

// #region breaks

// StartBreak launches the break timer. minutes <= 0 uses the profile's
// default break length.
func (d *Dispatcher) StartBreak(minutes int) {
	if minutes <= 0 {
		minutes = d.adaptation.BreakMinutes
	}
	d.timer.Start(minutes)
}

// EndBreak ends a running break early.
func (d *Dispatcher) EndBreak() {
	d.timer.End()
}

// breakEnded records the break and lets energy nudges re-arm.
func (d *Dispatcher) breakEnded(early bool) {
	d.lastBreak = d.now()
	for th := range d.nudged {
		delete(d.nudged, th)
	}
}

// #endregion breaks

// #region energy

// DecayTick applies one energy decay step. Fast decay when a break is
// overdue, slow otherwise. Threshold nudges are edge-triggered: one per
// downward crossing, re-armed only when the level climbs back above.
func (d *Dispatcher) DecayTick() {
	decay := d.config.SlowDecay
	if d.now().Sub(d.lastBreak) > d.config.BreakOverdue {
		decay = d.config.FastDecay
	}
	d.setEnergy(d.energy - decay)
}

// Recharge raises the energy level, re-arming any thresholds climbed past.
func (d *Dispatcher) Recharge(amount int) {
	d.setEnergy(d.energy + amount)
}

func (d *Dispatcher) setEnergy(level int) {
	if level < 0 {
		level = 0
	}
	if level > 100 {
		level = 100
	}
	old := d.energy
	d.energy = level

	d.events.Publish(bus.Event{
		Topic:   bus.TopicEnergyUpdated,
		Payload: EnergyUpdate{Level: level},
	})

	for _, th := range d.config.Thresholds {
		switch {
		case old > th && level <= th && !d.nudged[th]:
			d.nudged[th] = true
			d.events.Publish(bus.Event{
				Topic: bus.TopicNudge,
				Payload: Nudge{
					Threshold: th,
					Level:     level,
					Message:   nudgeMessage(th),
				},
			})
		case level > th:
			delete(d.nudged, th)
		}
	}
}

func nudgeMessage(threshold int) string {
	if threshold <= 10 {
		return "You're running on fumes. Stopping now is the productive move."
	}
	return "Energy is getting low. A short break now beats a crash later."
}

// #endregion energy
