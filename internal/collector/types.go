package collector

import "time"

// #region event-type

// EventType classifies a raw interaction event.
type EventType string

const (
	EventKeyDown     EventType = "key_down"
	EventKeyUp       EventType = "key_up"
	EventPointerMove EventType = "pointer_move"
	EventFocusLost   EventType = "focus_lost"
	EventFocusGained EventType = "focus_gained"
)

// knownTypes is the closed set of event types the buffer accepts.
var knownTypes = map[EventType]bool{
	EventKeyDown:     true,
	EventKeyUp:       true,
	EventPointerMove: true,
	EventFocusLost:   true,
	EventFocusGained: true,
}

// #endregion event-type

// #region event

// Event is one raw interaction event as submitted by the UI layer.
// Key is set for key events, X/Y for pointer events.
type Event struct {
	Type      EventType `json:"type"`
	Key       string    `json:"key,omitempty"`
	X         float64   `json:"x,omitempty"`
	Y         float64   `json:"y,omitempty"`
	Timestamp time.Time `json:"timestamp"`
}

// #endregion event

// #region feature-snapshot

// FeatureSnapshot holds derived numeric features over a sliding window.
// Recomputed on demand, never persisted.
type FeatureSnapshot struct {
	TypingRate       float64 // key_down events per minute of window
	PauseCount       int     // adjacent-event gaps longer than the pause gap
	CorrectionRate   float64 // backspace key_downs / all key_downs
	FocusSwitchCount int     // focus_lost events in window
	PointerJitter    float64 // mean distance between consecutive pointer samples
}

// #endregion feature-snapshot

// #region config

// Config holds tuning knobs for the signal collector.
type Config struct {
	Capacity        int           `yaml:"capacity"`         // ring buffer size
	PointerCoalesce time.Duration `yaml:"pointer_coalesce"` // min spacing between kept pointer_move events
	PauseGap        time.Duration `yaml:"pause_gap"`        // adjacent-event gap counted as a pause
	DefaultWindow   time.Duration `yaml:"default_window"`   // feature extraction window
}

// DefaultConfig returns sensible defaults.
func DefaultConfig() Config {
	return Config{
		Capacity:        100,
		PointerCoalesce: 500 * time.Millisecond,
		PauseGap:        5 * time.Second,
		// One minute: with a 100-event buffer a longer window can never
		// reach the hyperfocus typing-rate threshold.
		DefaultWindow: time.Minute,
	}
}

// #endregion config
