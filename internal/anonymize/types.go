package anonymize

import "time"

// #region raw-context

// RawContext is the exact local context at the moment of a discovery or a
// matching query. Never leaves the process in this form.
type RawContext struct {
	Cognitive   int
	Emotional   int
	Physical    int
	Hour        int
	Weekday     time.Weekday
	ProfileType string
}

// #endregion raw-context

// #region hashed-context

// HashedContext is the fuzzy, one-way bucketed form of a RawContext. Many
// raw contexts collapse into the same key; it must never be reversible to
// exact values.
type HashedContext struct {
	CognitiveRange int    `json:"cognitive_range"`
	EmotionalRange int    `json:"emotional_range"`
	PhysicalRange  int    `json:"physical_range"`
	TimeOfDay      string `json:"time_of_day"`
	DayType        string `json:"day_type"`
	ProfileType    string `json:"profile_type"`
}

// #endregion hashed-context

// #region discovery

// Discovery is an explicit "X helped" submission from the user.
type Discovery struct {
	Context      RawContext
	Intervention string
	Outcome      string
	EffectSize   float64
	Tags         []string
}

// #endregion discovery

// #region pattern

// Pattern is a locally owned (context, intervention, outcome) record. Only
// the hashed context and categorical fields ever leave the device, and only
// under consent.
type Pattern struct {
	ID           string        `json:"id"`
	At           time.Time     `json:"at"`
	Context      HashedContext `json:"context"`
	Intervention string        `json:"intervention"`
	Outcome      string        `json:"outcome"`
	EffectSize   float64       `json:"effect_size"`
	Tags         []string      `json:"tags"`
}

// #endregion pattern

// #region insight

// InsightContext is the bucketed context an insight claims to apply to.
// Range fields are nil when the insight does not constrain them.
type InsightContext struct {
	CognitiveRange *int   `json:"cognitive_range,omitempty"`
	EmotionalRange *int   `json:"emotional_range,omitempty"`
	PhysicalRange  *int   `json:"physical_range,omitempty"`
	TimeOfDay      string `json:"time_of_day,omitempty"`
	ProfileType    string `json:"profile_type,omitempty"`
}

// Insight is an externally sourced aggregated claim about intervention
// effectiveness. Never mutated locally, only scored.
type Insight struct {
	Context    InsightContext `json:"context"`
	Type       string         `json:"type"`
	Text       string         `json:"text"`
	Technique  string         `json:"technique,omitempty"`
	SampleSize int            `json:"sample_size"`
	Confidence float64        `json:"confidence"`
}

// InsightTypeWarning marks insights describing a risk pattern; they get an
// urgency boost when the local emotional level is low.
const InsightTypeWarning = "warning_pattern"

// InsightTypeOptIn marks the placeholder returned while consent is off or
// the collective backend is unreachable.
const InsightTypeOptIn = "opt_in_prompt"

// ScoredInsight pairs an insight with its local relevance score.
type ScoredInsight struct {
	Insight Insight `json:"insight"`
	Score   float64 `json:"score"`
}

// #endregion insight

// #region config

// Config holds matcher scoring weights. Arbitrary tuning values; keep
// configurable.
type Config struct {
	BucketWidth        int     `yaml:"bucket_width"`
	ConfidenceWeight   float64 `yaml:"confidence_weight"`
	LargeSampleSize    int     `yaml:"large_sample_size"`
	LargeSampleBonus   float64 `yaml:"large_sample_bonus"`
	MediumSampleSize   int     `yaml:"medium_sample_size"`
	MediumSampleBonus  float64 `yaml:"medium_sample_bonus"`
	ProfileMatchBonus  float64 `yaml:"profile_match_bonus"`
	UrgencyBonus       float64 `yaml:"urgency_bonus"`
	UrgencyEmotional   int     `yaml:"urgency_emotional"`
	RangeMatchDistance int     `yaml:"range_match_distance"`
}

// DefaultConfig returns sensible defaults.
func DefaultConfig() Config {
	return Config{
		BucketWidth:        20,
		ConfidenceWeight:   0.5,
		LargeSampleSize:    1000,
		LargeSampleBonus:   0.2,
		MediumSampleSize:   500,
		MediumSampleBonus:  0.1,
		ProfileMatchBonus:  0.2,
		UrgencyBonus:       0.3,
		UrgencyEmotional:   40,
		RangeMatchDistance: 20,
	}
}

// #endregion config
