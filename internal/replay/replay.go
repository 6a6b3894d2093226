// Package replay feeds a recorded interaction-event fixture through the
// collector and classifier offline, with the clock driven by event
// timestamps. Useful for tuning thresholds against captured sessions.
package replay

import (
	"encoding/json"
	"fmt"
	"os"
	"time"

	"github.com/danielpatrickdp/selfstate-engine/internal/bus"
	"github.com/danielpatrickdp/selfstate-engine/internal/collector"
	"github.com/danielpatrickdp/selfstate-engine/internal/fsm"
)

// #region fixture

// Fixture is a recorded event stream, oldest first.
type Fixture struct {
	Events []collector.Event `json:"events"`
}

// LoadFixture reads a JSON fixture file.
func LoadFixture(path string) (Fixture, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Fixture{}, fmt.Errorf("read fixture: %w", err)
	}
	var f Fixture
	if err := json.Unmarshal(data, &f); err != nil {
		return Fixture{}, fmt.Errorf("parse fixture: %w", err)
	}
	return f, nil
}

// #endregion fixture

// #region result

// Result captures the replayed session.
type Result struct {
	EventsReplayed int
	EventsDropped  int
	Transitions    []fsm.Transition
	FinalState     fsm.State
	TimeInState    map[fsm.State]time.Duration
}

// #endregion result

// #region run

// Run replays the fixture through a fresh collector and classifier. Operates
// entirely in-memory; the clock follows the event timestamps.
func Run(f Fixture, collectorCfg collector.Config, classifierCfg fsm.Config) Result {
	res := Result{
		FinalState:  fsm.StateFlow,
		TimeInState: make(map[fsm.State]time.Duration),
	}
	if len(f.Events) == 0 {
		return res
	}

	cursor := f.Events[0].Timestamp
	clock := func() time.Time { return cursor }

	events := bus.New()
	buffer := collector.NewBuffer(collectorCfg)
	buffer.SetClock(clock)
	cls := fsm.NewClassifier(classifierCfg, events, nil)
	cls.SetClock(clock)

	stateSince := cursor
	events.Subscribe(bus.TopicStateChanged, func(ev bus.Event) {
		change, ok := ev.Payload.(fsm.StateChanged)
		if !ok {
			return
		}
		res.TimeInState[change.From] += cursor.Sub(stateSince)
		stateSince = cursor
	})

	for _, ev := range f.Events {
		if ev.Timestamp.After(cursor) {
			cursor = ev.Timestamp
		}
		if !buffer.Record(ev) {
			res.EventsDropped++
			continue
		}
		res.EventsReplayed++
		cls.Check(buffer.ExtractFeatures(collectorCfg.DefaultWindow))
	}

	res.TimeInState[cls.Current()] += cursor.Sub(stateSince)
	res.Transitions = cls.Transitions()
	res.FinalState = cls.Current()
	return res
}

// #endregion run
