// Package temporal owns the periodic multi-dimensional observation log:
// sampling, retention pruning, and persistence ordering.
package temporal

import (
	"fmt"
	"time"
)

// #region observation-log

// ObservationLog persists observations. Implemented by the SQLite store.
type ObservationLog interface {
	AppendObservation(o Observation) error
	PruneObservations(cutoff time.Time) error
	ListObservationsSince(cutoff time.Time) ([]Observation, error)
}

// #endregion observation-log

// #region sampler

// Sampler takes one observation per interval: append, then prune anything
// older than the retention window, then the log is durable. Single-writer.
type Sampler struct {
	config Config
	source DimensionSource
	log    ObservationLog
	now    func() time.Time
}

// NewSampler creates a sampler over the given source and log.
func NewSampler(config Config, source DimensionSource, log ObservationLog) *Sampler {
	return &Sampler{
		config: config,
		source: source,
		log:    log,
		now:    time.Now,
	}
}

// SetClock overrides the sampler's clock. Test hook.
func (s *Sampler) SetClock(now func() time.Time) {
	s.now = now
}

// Sample records one observation and enforces retention.
func (s *Sampler) Sample() (Observation, error) {
	now := s.now().UTC()
	obs := Observation{
		At:      now,
		Vector:  s.source.Levels(now),
		Context: ContextAt(now),
	}
	if err := s.log.AppendObservation(obs); err != nil {
		return Observation{}, fmt.Errorf("append observation: %w", err)
	}
	if err := s.log.PruneObservations(now.Add(-s.config.Retention)); err != nil {
		return Observation{}, fmt.Errorf("prune observations: %w", err)
	}
	return obs, nil
}

// History returns all retained observations, oldest first.
func (s *Sampler) History() ([]Observation, error) {
	return s.log.ListObservationsSince(s.now().UTC().Add(-s.config.Retention))
}

// #endregion sampler
