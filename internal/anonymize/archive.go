package anonymize

import (
	"fmt"
	"time"

	"github.com/google/uuid"
)

// #region pattern-store

// PatternStore persists local patterns and the share queue. Implemented by
// the SQLite store.
type PatternStore interface {
	SavePattern(p Pattern, queued bool) error
	ListPatterns() ([]Pattern, error)
	ListQueuedPatterns() ([]Pattern, error)
	MarkPatternsShared(ids []string) error
}

// #endregion pattern-store

// #region archive

// Archive turns discoveries into local Pattern records and, under consent,
// queues them for sharing. The pattern never includes free text — only the
// hashed context and categorical fields.
type Archive struct {
	config  Config
	store   PatternStore
	consent func() bool
	now     func() time.Time
}

// NewArchive creates an archive. consent is queried at record time so a
// toggle takes effect immediately.
func NewArchive(config Config, store PatternStore, consent func() bool) *Archive {
	return &Archive{
		config:  config,
		store:   store,
		consent: consent,
		now:     time.Now,
	}
}

// SetClock overrides the archive's clock. Test hook.
func (a *Archive) SetClock(now func() time.Time) {
	a.now = now
}

// RecordDiscovery creates a Pattern from an explicit discovery submission.
// The raw context is hashed before anything is stored.
func (a *Archive) RecordDiscovery(d Discovery) (Pattern, error) {
	p := Pattern{
		ID:           uuid.New().String(),
		At:           a.now().UTC(),
		Context:      HashContext(d.Context, a.config.BucketWidth),
		Intervention: d.Intervention,
		Outcome:      d.Outcome,
		EffectSize:   d.EffectSize,
		Tags:         d.Tags,
	}
	queued := a.consent != nil && a.consent()
	if err := a.store.SavePattern(p, queued); err != nil {
		return Pattern{}, fmt.Errorf("save pattern: %w", err)
	}
	return p, nil
}

// #endregion archive
