package predict

import "time"

// #region kind

// Kind tags the prediction union.
type Kind string

const (
	KindCrashWarning    Kind = "crash_warning"
	KindFlowOpportunity Kind = "flow_opportunity"
	KindPatternInsight  Kind = "pattern_insight"
)

// #endregion kind

// #region prediction

// FlowWindow is one hour-of-day bucket historically correlated with
// high-capacity observations.
type FlowWindow struct {
	Hour       int     `json:"hour"`
	Label      string  `json:"label"`
	Likelihood float64 `json:"likelihood"`
}

// Prediction is the tagged union of prediction outputs. Which fields are
// meaningful depends on Kind. Ephemeral — replaced every cycle, never
// persisted.
type Prediction struct {
	Kind Kind `json:"kind"`

	// crash_warning
	Probability     float64  `json:"probability,omitempty"`
	Timeframe       string   `json:"timeframe,omitempty"`
	Recommendations []string `json:"recommendations,omitempty"`

	// flow_opportunity
	Windows []FlowWindow `json:"windows,omitempty"`

	// pattern_insight
	Description string  `json:"description,omitempty"`
	Confidence  float64 `json:"confidence,omitempty"`
	Action      string  `json:"action,omitempty"`
}

// #endregion prediction

// #region trend

// Trend is the finite difference of one dimension over the trailing window.
type Trend struct {
	Dimension string  `json:"dimension"`
	Delta     float64 `json:"delta"`
}

// #endregion trend

// #region config

// Config holds prediction thresholds and weights. All values are heuristic
// tuning constants with no stated derivation — configuration, not truth.
type Config struct {
	TrendWindow time.Duration `yaml:"trend_window"`

	// crash probability
	DepletedPhysical      int           `yaml:"depleted_physical"`
	DepletedEmotional     int           `yaml:"depleted_emotional"`
	DepletionWeight       float64       `yaml:"depletion_weight"`
	SocialLow             int           `yaml:"social_low"`
	SocialHigh            int           `yaml:"social_high"`
	SocialSwingWindow     time.Duration `yaml:"social_swing_window"`
	SocialSwingWeight     float64       `yaml:"social_swing_weight"`
	RiskyHourMinCount     int           `yaml:"risky_hour_min_count"`
	RiskyHourWeight       float64       `yaml:"risky_hour_weight"`
	OverextendCognitive   int           `yaml:"overextend_cognitive"`
	OverextendPhysical    int           `yaml:"overextend_physical"`
	OverextendWeight      float64       `yaml:"overextend_weight"`
	WarnThreshold         float64       `yaml:"warn_threshold"`
	SteepEmotionalDrop    float64       `yaml:"steep_emotional_drop"`
	ModerateEmotionalDrop float64       `yaml:"moderate_emotional_drop"`

	// crash-like historical observation
	CrashEmotional   int `yaml:"crash_emotional"`
	CrashPhysical    int `yaml:"crash_physical"`
	CrashCognitive   int `yaml:"crash_cognitive"`
	CrashCoEmotional int `yaml:"crash_co_emotional"`

	// flow windows
	FlowCognitive int     `yaml:"flow_cognitive"`
	FlowCreative  int     `yaml:"flow_creative"`
	FlowPhysical  int     `yaml:"flow_physical"`
	FlowRatio     float64 `yaml:"flow_ratio"`
	FlowMinCount  int     `yaml:"flow_min_count"`

	// recurring patterns
	MondayMinSamples  int `yaml:"monday_min_samples"`
	MondayEmotional   int `yaml:"monday_emotional"`
	CreativePeak      int `yaml:"creative_peak"`
	PostCreativeDrop  int `yaml:"post_creative_drop"`
	PostCreativeRecur int `yaml:"post_creative_recur"`
	EveningCognitive  int `yaml:"evening_cognitive"`
	EveningMinSamples int `yaml:"evening_min_samples"`
}

// DefaultConfig returns sensible defaults.
func DefaultConfig() Config {
	return Config{
		TrendWindow: 6 * time.Hour,

		DepletedPhysical:      30,
		DepletedEmotional:     40,
		DepletionWeight:       0.4,
		SocialLow:             20,
		SocialHigh:            70,
		SocialSwingWindow:     24 * time.Hour,
		SocialSwingWeight:     0.3,
		RiskyHourMinCount:     3,
		RiskyHourWeight:       0.2,
		OverextendCognitive:   80,
		OverextendPhysical:    50,
		OverextendWeight:      0.2,
		WarnThreshold:         0.6,
		SteepEmotionalDrop:    -15,
		ModerateEmotionalDrop: -5,

		CrashEmotional:   20,
		CrashPhysical:    15,
		CrashCognitive:   20,
		CrashCoEmotional: 30,

		FlowCognitive: 60,
		FlowCreative:  70,
		FlowPhysical:  50,
		FlowRatio:     0.7,
		FlowMinCount:  2,

		MondayMinSamples:  4,
		MondayEmotional:   40,
		CreativePeak:      80,
		PostCreativeDrop:  30,
		PostCreativeRecur: 2,
		EveningCognitive:  70,
		EveningMinSamples: 3,
	}
}

// #endregion config
