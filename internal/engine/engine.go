// Package engine wires the collector, classifier, temporal store, prediction
// engine, dispatcher, and anonymization layer into one adaptive self-state
// engine. Components are explicit instances injected here — no ambient
// globals anywhere.
package engine

import (
	"context"
	"log"
	"sync"
	"time"

	"github.com/danielpatrickdp/selfstate-engine/internal/anonymize"
	"github.com/danielpatrickdp/selfstate-engine/internal/bus"
	"github.com/danielpatrickdp/selfstate-engine/internal/collective"
	"github.com/danielpatrickdp/selfstate-engine/internal/collector"
	"github.com/danielpatrickdp/selfstate-engine/internal/config"
	"github.com/danielpatrickdp/selfstate-engine/internal/fsm"
	"github.com/danielpatrickdp/selfstate-engine/internal/intervene"
	"github.com/danielpatrickdp/selfstate-engine/internal/predict"
	"github.com/danielpatrickdp/selfstate-engine/internal/profile"
	"github.com/danielpatrickdp/selfstate-engine/internal/store"
	"github.com/danielpatrickdp/selfstate-engine/internal/temporal"
)

// #region engine

// Engine is the top-level coordinator. All mutable state behind one mutex:
// the single-writer rule made explicit.
type Engine struct {
	mu     sync.Mutex
	config config.Config
	store  *store.Store
	events *bus.Bus

	buffer     *collector.Buffer
	classifier *fsm.Classifier
	source     *temporal.HeuristicSource
	sampler    *temporal.Sampler
	predictor  *predict.Engine
	dispatcher *intervene.Dispatcher
	archive    *anonymize.Archive
	matcher    *anonymize.Matcher
	sync       *collective.Client

	prof             profile.Profile
	sessionStart     time.Time
	interactionCount int
	predictions      []predict.Prediction
	insights         []anonymize.ScoredInsight

	runCtx context.Context
	now    func() time.Time
}

// New wires an engine over an open store. sync may be nil (local-only mode,
// no collective exchange at all).
func New(cfg config.Config, st *store.Store, events *bus.Bus, sync *collective.Client) *Engine {
	e := &Engine{
		config: cfg,
		store:  st,
		events: events,
		sync:   sync,
		now:    time.Now,
	}

	e.prof = st.Profile()
	e.buffer = collector.NewBuffer(cfg.Collector)
	e.buffer.Restore(st.LoadEvents())
	e.classifier = fsm.NewClassifier(cfg.Classifier, events, st)
	e.dispatcher = intervene.NewDispatcher(cfg.Energy, events, profile.AdaptationFor(e.prof.Type))
	e.source = &temporal.HeuristicSource{
		EnergyLevel:  e.dispatcher.Energy,
		FocusScore:   e.focusScore,
		SessionStart: e.now(),
	}
	e.sampler = temporal.NewSampler(cfg.Temporal, e.source, st)
	e.predictor = predict.NewEngine(cfg.Predict)
	e.matcher = anonymize.NewMatcher(cfg.Matcher)
	e.archive = anonymize.NewArchive(cfg.Matcher, st, st.Consent)
	e.sessionStart = e.now()

	return e
}

// Bus returns the notification bus the UI layer subscribes to.
func (e *Engine) Bus() *bus.Bus {
	return e.events
}

// #endregion engine

// #region record-event

// RecordEvent ingests one interaction event and runs the lightweight
// re-classification check. The transition notification (if any) is fully
// dispatched before this returns; the mutex keeps checks non-re-entrant.
func (e *Engine) RecordEvent(ev collector.Event) {
	e.mu.Lock()
	defer e.mu.Unlock()

	if !e.buffer.Record(ev) {
		return
	}
	e.interactionCount++
	snap := e.buffer.ExtractFeatures(e.config.Collector.DefaultWindow)
	e.classifier.Check(snap)
}

// #endregion record-event

// #region periodic

// Start launches the periodic tasks: observation sampling, session-level
// checks, energy decay, and collective sync. All stop when ctx is canceled,
// including an in-flight collective exchange.
func (e *Engine) Start(ctx context.Context) {
	e.mu.Lock()
	e.runCtx = ctx
	e.mu.Unlock()

	go e.every(ctx, e.config.Temporal.SampleInterval, e.sampleCycle)
	go e.every(ctx, e.config.Engine.SessionCheckInterval, e.sessionCycle)
	go e.every(ctx, e.config.Energy.DecayInterval, e.decayCycle)
	if e.sync != nil {
		go e.every(ctx, e.config.Engine.SyncInterval, e.syncCycle)
	}
}

func (e *Engine) every(ctx context.Context, interval time.Duration, fn func()) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			fn()
		}
	}
}

// sampleCycle takes one observation, then recomputes predictions from the
// freshly appended history. Append strictly precedes the prediction read.
func (e *Engine) sampleCycle() {
	e.mu.Lock()
	defer e.mu.Unlock()

	if _, err := e.sampler.Sample(); err != nil {
		log.Printf("[ENGINE] sample: %v", err)
		return
	}
	history, err := e.sampler.History()
	if err != nil {
		log.Printf("[ENGINE] history: %v", err)
		return
	}
	e.predictions = e.predictor.Run(history)
	e.events.Publish(bus.Event{Topic: bus.TopicPredictions, Payload: e.predictions})
	e.dispatcher.ApplyPredictions(e.predictions)

	// Piggyback the buffer snapshot on the sampling cadence.
	if err := e.store.SaveEvents(e.buffer.Events()); err != nil {
		log.Printf("[ENGINE] save buffer: %v", err)
	}
}

func (e *Engine) sessionCycle() {
	e.mu.Lock()
	defer e.mu.Unlock()

	snap := e.buffer.ExtractFeatures(e.config.Collector.DefaultWindow)
	e.classifier.SessionCheck(fsm.SessionSnapshot{
		EnergyLevel:      e.dispatcher.Energy(),
		FocusScore:       focusFromFeatures(snap),
		SessionLength:    e.now().Sub(e.sessionStart),
		InteractionCount: e.interactionCount,
		LastBreak:        e.dispatcher.LastBreak(),
	})
}

func (e *Engine) decayCycle() {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.dispatcher.DecayTick()
}

// #endregion periodic

// #region sync

// syncCycle pushes queued patterns and refreshes the ranked insight list.
// Consent gates both directions; an unreachable backend degrades to the
// local-only placeholder. The engine mutex is never held across a network
// exchange: the cycle snapshots its inputs under the lock, talks to the
// backend unlocked, then re-takes the lock to commit the results, so event
// ingestion keeps flowing while a slow backend is in flight.
func (e *Engine) syncCycle() {
	e.mu.Lock()
	if !e.store.Consent() {
		e.insights = []anonymize.ScoredInsight{anonymize.OptInPlaceholder()}
		e.mu.Unlock()
		return
	}
	queued, err := e.store.ListQueuedPatterns()
	if err != nil {
		log.Printf("[SYNC] list queued: %v", err)
		queued = nil
	}
	current := e.currentRawContext()
	profType := string(e.prof.Type)
	parent := e.runCtx
	e.mu.Unlock()

	if parent == nil {
		parent = context.Background()
	}
	ctx, cancel := context.WithTimeout(parent, 15*time.Second)
	defer cancel()

	var shared []string
	if len(queued) > 0 {
		ids, err := e.sync.Push(ctx, queued)
		if err != nil {
			log.Printf("[SYNC] push: %v", err)
		} else {
			shared = ids
		}
	}
	fetched, fetchErr := e.sync.FetchInsights(ctx, profType)

	e.mu.Lock()
	defer e.mu.Unlock()
	if len(shared) > 0 {
		if err := e.store.MarkPatternsShared(shared); err != nil {
			log.Printf("[SYNC] mark shared: %v", err)
		}
	}
	if fetchErr != nil {
		log.Printf("[SYNC] fetch insights: %v", fetchErr)
		e.insights = []anonymize.ScoredInsight{anonymize.UnavailablePlaceholder()}
		return
	}
	e.insights = e.matcher.Rank(fetched, current)
}

// #endregion sync

// #region queries

// Predictions returns the current prediction list.
func (e *Engine) Predictions() []predict.Prediction {
	e.mu.Lock()
	defer e.mu.Unlock()
	out := make([]predict.Prediction, len(e.predictions))
	copy(out, e.predictions)
	return out
}

// Insights returns the ranked insight list. With consent off this is the
// single opt-in placeholder regardless of local context.
func (e *Engine) Insights() []anonymize.ScoredInsight {
	e.mu.Lock()
	defer e.mu.Unlock()
	if !e.store.Consent() {
		return []anonymize.ScoredInsight{anonymize.OptInPlaceholder()}
	}
	out := make([]anonymize.ScoredInsight, len(e.insights))
	copy(out, e.insights)
	return out
}

// CurrentState returns the classifier's current state.
func (e *Engine) CurrentState() fsm.State {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.classifier.Current()
}

// Energy returns the dispatcher's current energy level.
func (e *Engine) Energy() int {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.dispatcher.Energy()
}

// Dispatcher returns the intervention dispatcher (break control).
func (e *Engine) Dispatcher() *intervene.Dispatcher {
	return e.dispatcher
}

// #endregion queries

// #region commands

// RecordDiscovery stores an "X helped" submission against the current
// bucketed context.
func (e *Engine) RecordDiscovery(intervention, outcome string, effectSize float64, tags []string) (anonymize.Pattern, error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.archive.RecordDiscovery(anonymize.Discovery{
		Context:      e.currentRawContext(),
		Intervention: intervention,
		Outcome:      outcome,
		EffectSize:   effectSize,
		Tags:         tags,
	})
}

// SetConsent persists the sharing consent flag.
func (e *Engine) SetConsent(granted bool) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.store.SetConsent(granted)
}

// SetProfile persists a new cognitive profile and rebinds the adaptation
// defaults on the next engine start.
func (e *Engine) SetProfile(p profile.Profile) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.prof = p
	return e.store.SetProfile(p)
}

// Close snapshots the interaction buffer. The store is closed by its owner.
func (e *Engine) Close() error {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.store.SaveEvents(e.buffer.Events())
}

// #endregion commands

// #region helpers

func (e *Engine) currentRawContext() anonymize.RawContext {
	now := e.now()
	vec := e.source.Levels(now)
	return anonymize.RawContext{
		Cognitive:   vec.Cognitive,
		Emotional:   vec.Emotional,
		Physical:    vec.Physical,
		Hour:        now.Hour(),
		Weekday:     now.Weekday(),
		ProfileType: string(e.prof.Type),
	}
}

// focusScore estimates focus from recent features for the heuristic source.
func (e *Engine) focusScore() int {
	snap := e.buffer.ExtractFeatures(e.config.Collector.DefaultWindow)
	return focusFromFeatures(snap)
}

// focusFromFeatures starts at 100 and penalizes switches and pauses.
func focusFromFeatures(snap collector.FeatureSnapshot) int {
	score := 100 - snap.FocusSwitchCount*15 - snap.PauseCount*3
	if score < 0 {
		return 0
	}
	return score
}

// #endregion helpers
