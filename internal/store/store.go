// Package store persists all engine state in a single SQLite database:
// observation log, transition log, interaction buffer snapshot, pattern
// archive, consent flag, and cognitive profile.
package store

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	_ "modernc.org/sqlite"

	"github.com/danielpatrickdp/selfstate-engine/internal/anonymize"
	"github.com/danielpatrickdp/selfstate-engine/internal/collector"
	"github.com/danielpatrickdp/selfstate-engine/internal/fsm"
	"github.com/danielpatrickdp/selfstate-engine/internal/profile"
	"github.com/danielpatrickdp/selfstate-engine/internal/temporal"
)

// #region schema

const schema = `
CREATE TABLE IF NOT EXISTS observations (
	id           INTEGER PRIMARY KEY AUTOINCREMENT,
	at           TEXT NOT NULL,
	cognitive    INTEGER NOT NULL,
	emotional    INTEGER NOT NULL,
	physical     INTEGER NOT NULL,
	circadian    INTEGER NOT NULL,
	social       INTEGER NOT NULL,
	creative     INTEGER NOT NULL,
	meaning      INTEGER NOT NULL,
	day_of_week  INTEGER NOT NULL,
	hour_of_day  INTEGER NOT NULL,
	is_weekend   INTEGER NOT NULL,
	season       TEXT NOT NULL,
	moon_phase   TEXT NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_observations_at ON observations(at);

CREATE TABLE IF NOT EXISTS state_transitions (
	id          INTEGER PRIMARY KEY AUTOINCREMENT,
	from_state  TEXT NOT NULL,
	to_state    TEXT NOT NULL,
	at          TEXT NOT NULL
);

CREATE TABLE IF NOT EXISTS interaction_events (
	id    INTEGER PRIMARY KEY AUTOINCREMENT,
	type  TEXT NOT NULL,
	key   TEXT,
	x     REAL,
	y     REAL,
	at    TEXT NOT NULL
);

CREATE TABLE IF NOT EXISTS patterns (
	id            TEXT PRIMARY KEY,
	at            TEXT NOT NULL,
	context_json  TEXT NOT NULL,
	intervention  TEXT NOT NULL,
	outcome       TEXT NOT NULL,
	effect_size   REAL NOT NULL,
	tags_json     TEXT NOT NULL,
	queued        INTEGER NOT NULL DEFAULT 0,
	shared        INTEGER NOT NULL DEFAULT 0
);

CREATE TABLE IF NOT EXISTS settings (
	key    TEXT PRIMARY KEY,
	value  TEXT NOT NULL
);
`

// #endregion schema

// #region store-struct

// Store wraps the SQLite database. Single logical writer per session.
type Store struct {
	db            *sql.DB
	transitionCap int
}

// #endregion store-struct

// #region constructor

// NewStore opens a SQLite database and runs migrations. transitionCap bounds
// the persisted transition log; 0 means unbounded.
func NewStore(dbPath string, transitionCap int) (*Store, error) {
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open db: %w", err)
	}
	if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		return nil, fmt.Errorf("pragma: %w", err)
	}
	if _, err := db.Exec(schema); err != nil {
		return nil, fmt.Errorf("migrate: %w", err)
	}
	return &Store{db: db, transitionCap: transitionCap}, nil
}

// Close closes the underlying database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

// DB returns the underlying *sql.DB for inspection tooling.
func (s *Store) DB() *sql.DB {
	return s.db
}

// #endregion constructor

// #region observations

// AppendObservation inserts one observation row.
func (s *Store) AppendObservation(o temporal.Observation) error {
	weekend := 0
	if o.Context.IsWeekend {
		weekend = 1
	}
	_, err := s.db.Exec(
		`INSERT INTO observations
		 (at, cognitive, emotional, physical, circadian, social, creative, meaning,
		  day_of_week, hour_of_day, is_weekend, season, moon_phase)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		o.At.Format(time.RFC3339Nano),
		o.Vector.Cognitive, o.Vector.Emotional, o.Vector.Physical, o.Vector.Circadian,
		o.Vector.Social, o.Vector.Creative, o.Vector.Meaning,
		int(o.Context.DayOfWeek), o.Context.HourOfDay, weekend,
		o.Context.Season, o.Context.MoonPhase,
	)
	if err != nil {
		return fmt.Errorf("insert observation: %w", err)
	}
	return nil
}

// PruneObservations removes observations older than cutoff.
func (s *Store) PruneObservations(cutoff time.Time) error {
	_, err := s.db.Exec(`DELETE FROM observations WHERE at < ?`, cutoff.Format(time.RFC3339Nano))
	if err != nil {
		return fmt.Errorf("prune observations: %w", err)
	}
	return nil
}

// ListObservationsSince returns observations at or after cutoff, oldest first.
func (s *Store) ListObservationsSince(cutoff time.Time) ([]temporal.Observation, error) {
	rows, err := s.db.Query(
		`SELECT at, cognitive, emotional, physical, circadian, social, creative, meaning,
		        day_of_week, hour_of_day, is_weekend, season, moon_phase
		 FROM observations WHERE at >= ? ORDER BY at`,
		cutoff.Format(time.RFC3339Nano),
	)
	if err != nil {
		return nil, fmt.Errorf("list observations: %w", err)
	}
	defer rows.Close()

	var out []temporal.Observation
	for rows.Next() {
		var o temporal.Observation
		var atStr string
		var dow, weekend int
		if err := rows.Scan(
			&atStr,
			&o.Vector.Cognitive, &o.Vector.Emotional, &o.Vector.Physical, &o.Vector.Circadian,
			&o.Vector.Social, &o.Vector.Creative, &o.Vector.Meaning,
			&dow, &o.Context.HourOfDay, &weekend, &o.Context.Season, &o.Context.MoonPhase,
		); err != nil {
			return nil, fmt.Errorf("scan observation: %w", err)
		}
		o.At, _ = time.Parse(time.RFC3339Nano, atStr)
		o.Context.DayOfWeek = time.Weekday(dow)
		o.Context.IsWeekend = weekend == 1
		out = append(out, o)
	}
	return out, rows.Err()
}

// #endregion observations

// #region transitions

// AppendTransition persists one state transition and enforces the count cap.
func (s *Store) AppendTransition(t fsm.Transition) error {
	_, err := s.db.Exec(
		`INSERT INTO state_transitions (from_state, to_state, at) VALUES (?, ?, ?)`,
		string(t.From), string(t.To), t.At.Format(time.RFC3339Nano),
	)
	if err != nil {
		return fmt.Errorf("insert transition: %w", err)
	}
	if s.transitionCap > 0 {
		_, err = s.db.Exec(
			`DELETE FROM state_transitions WHERE id NOT IN
			 (SELECT id FROM state_transitions ORDER BY id DESC LIMIT ?)`,
			s.transitionCap,
		)
		if err != nil {
			return fmt.Errorf("cap transitions: %w", err)
		}
	}
	return nil
}

// ListTransitions returns the most recent transitions, newest first.
func (s *Store) ListTransitions(limit int) ([]fsm.Transition, error) {
	rows, err := s.db.Query(
		`SELECT from_state, to_state, at FROM state_transitions ORDER BY id DESC LIMIT ?`, limit,
	)
	if err != nil {
		return nil, fmt.Errorf("list transitions: %w", err)
	}
	defer rows.Close()

	var out []fsm.Transition
	for rows.Next() {
		var t fsm.Transition
		var from, to, atStr string
		if err := rows.Scan(&from, &to, &atStr); err != nil {
			return nil, fmt.Errorf("scan transition: %w", err)
		}
		t.From, t.To = fsm.State(from), fsm.State(to)
		t.At, _ = time.Parse(time.RFC3339Nano, atStr)
		out = append(out, t)
	}
	return out, rows.Err()
}

// #endregion transitions

// #region interaction-buffer

// SaveEvents replaces the persisted interaction buffer snapshot. Full-log
// replacement, last write wins.
func (s *Store) SaveEvents(events []collector.Event) error {
	tx, err := s.db.Begin()
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.Exec(`DELETE FROM interaction_events`); err != nil {
		return fmt.Errorf("clear events: %w", err)
	}
	for _, ev := range events {
		_, err := tx.Exec(
			`INSERT INTO interaction_events (type, key, x, y, at) VALUES (?, ?, ?, ?, ?)`,
			string(ev.Type), ev.Key, ev.X, ev.Y, ev.Timestamp.Format(time.RFC3339Nano),
		)
		if err != nil {
			return fmt.Errorf("insert event: %w", err)
		}
	}
	return tx.Commit()
}

// LoadEvents returns the persisted interaction buffer, oldest first. A
// corrupt snapshot yields an empty buffer, never an error.
func (s *Store) LoadEvents() []collector.Event {
	rows, err := s.db.Query(`SELECT type, key, x, y, at FROM interaction_events ORDER BY id`)
	if err != nil {
		return nil
	}
	defer rows.Close()

	var out []collector.Event
	for rows.Next() {
		var ev collector.Event
		var typ, atStr string
		var key sql.NullString
		var x, y sql.NullFloat64
		if err := rows.Scan(&typ, &key, &x, &y, &atStr); err != nil {
			return nil
		}
		ev.Type = collector.EventType(typ)
		ev.Key = key.String
		ev.X, ev.Y = x.Float64, y.Float64
		ev.Timestamp, err = time.Parse(time.RFC3339Nano, atStr)
		if err != nil {
			continue
		}
		out = append(out, ev)
	}
	return out
}

// #endregion interaction-buffer

// #region patterns

// SavePattern stores a local pattern. queued marks it for the next sync push.
func (s *Store) SavePattern(p anonymize.Pattern, queued bool) error {
	ctxJSON, err := json.Marshal(p.Context)
	if err != nil {
		return fmt.Errorf("marshal context: %w", err)
	}
	tagsJSON, err := json.Marshal(p.Tags)
	if err != nil {
		return fmt.Errorf("marshal tags: %w", err)
	}
	q := 0
	if queued {
		q = 1
	}
	_, err = s.db.Exec(
		`INSERT INTO patterns (id, at, context_json, intervention, outcome, effect_size, tags_json, queued)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		p.ID, p.At.Format(time.RFC3339Nano), string(ctxJSON),
		p.Intervention, p.Outcome, p.EffectSize, string(tagsJSON), q,
	)
	if err != nil {
		return fmt.Errorf("insert pattern: %w", err)
	}
	return nil
}

// ListPatterns returns all local patterns, oldest first.
func (s *Store) ListPatterns() ([]anonymize.Pattern, error) {
	return s.queryPatterns(`SELECT id, at, context_json, intervention, outcome, effect_size, tags_json
		FROM patterns ORDER BY at`)
}

// ListQueuedPatterns returns patterns queued for sharing and not yet shared.
func (s *Store) ListQueuedPatterns() ([]anonymize.Pattern, error) {
	return s.queryPatterns(`SELECT id, at, context_json, intervention, outcome, effect_size, tags_json
		FROM patterns WHERE queued = 1 AND shared = 0 ORDER BY at`)
}

// MarkPatternsShared flags patterns as uploaded.
func (s *Store) MarkPatternsShared(ids []string) error {
	for _, id := range ids {
		if _, err := s.db.Exec(`UPDATE patterns SET shared = 1 WHERE id = ?`, id); err != nil {
			return fmt.Errorf("mark shared %s: %w", id, err)
		}
	}
	return nil
}

func (s *Store) queryPatterns(query string) ([]anonymize.Pattern, error) {
	rows, err := s.db.Query(query)
	if err != nil {
		return nil, fmt.Errorf("list patterns: %w", err)
	}
	defer rows.Close()

	var out []anonymize.Pattern
	for rows.Next() {
		var p anonymize.Pattern
		var atStr, ctxJSON, tagsJSON string
		if err := rows.Scan(&p.ID, &atStr, &ctxJSON, &p.Intervention, &p.Outcome, &p.EffectSize, &tagsJSON); err != nil {
			return nil, fmt.Errorf("scan pattern: %w", err)
		}
		p.At, _ = time.Parse(time.RFC3339Nano, atStr)
		// Corrupt rows degrade to empty fields rather than failing the scan.
		_ = json.Unmarshal([]byte(ctxJSON), &p.Context)
		_ = json.Unmarshal([]byte(tagsJSON), &p.Tags)
		out = append(out, p)
	}
	return out, rows.Err()
}

// #endregion patterns

// #region settings

const (
	keyConsent = "consent_flag"
	keyProfile = "cognitive_profile"
)

// Consent reads the persisted consent flag. Missing or unreadable → false.
func (s *Store) Consent() bool {
	var v string
	err := s.db.QueryRow(`SELECT value FROM settings WHERE key = ?`, keyConsent).Scan(&v)
	if err != nil {
		return false
	}
	return v == "true"
}

// SetConsent persists the consent flag.
func (s *Store) SetConsent(granted bool) error {
	v := "false"
	if granted {
		v = "true"
	}
	return s.setSetting(keyConsent, v)
}

// Profile reads the persisted cognitive profile. Missing or corrupt records
// reinitialize to the neutral default, never an error.
func (s *Store) Profile() profile.Profile {
	var v string
	err := s.db.QueryRow(`SELECT value FROM settings WHERE key = ?`, keyProfile).Scan(&v)
	if err != nil {
		return profile.Default()
	}
	var p profile.Profile
	if err := json.Unmarshal([]byte(v), &p); err != nil || p.Type == "" {
		return profile.Default()
	}
	return p
}

// SetProfile persists the cognitive profile.
func (s *Store) SetProfile(p profile.Profile) error {
	data, err := json.Marshal(p)
	if err != nil {
		return fmt.Errorf("marshal profile: %w", err)
	}
	return s.setSetting(keyProfile, string(data))
}

func (s *Store) setSetting(key, value string) error {
	_, err := s.db.Exec(
		`INSERT INTO settings (key, value) VALUES (?, ?)
		 ON CONFLICT(key) DO UPDATE SET value = excluded.value`,
		key, value,
	)
	if err != nil {
		return fmt.Errorf("set %s: %w", key, err)
	}
	return nil
}

// #endregion settings
