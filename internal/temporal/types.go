package temporal

import "time"

// #region state-vector

// StateVector is one multi-dimensional self-state sample. Each dimension is
// a 0-100 level.
type StateVector struct {
	Cognitive int `json:"cognitive"`
	Emotional int `json:"emotional"`
	Physical  int `json:"physical"`
	Circadian int `json:"circadian"`
	Social    int `json:"social"`
	Creative  int `json:"creative"`
	Meaning   int `json:"meaning"`
}

// Dimension names a state vector axis.
type Dimension string

const (
	DimCognitive Dimension = "cognitive"
	DimEmotional Dimension = "emotional"
	DimPhysical  Dimension = "physical"
	DimCircadian Dimension = "circadian"
	DimSocial    Dimension = "social"
	DimCreative  Dimension = "creative"
	DimMeaning   Dimension = "meaning"
)

// Dimensions lists all axes in a fixed order.
var Dimensions = []Dimension{
	DimCognitive, DimEmotional, DimPhysical, DimCircadian,
	DimSocial, DimCreative, DimMeaning,
}

// Level returns the value of the named dimension.
func (v StateVector) Level(d Dimension) int {
	switch d {
	case DimCognitive:
		return v.Cognitive
	case DimEmotional:
		return v.Emotional
	case DimPhysical:
		return v.Physical
	case DimCircadian:
		return v.Circadian
	case DimSocial:
		return v.Social
	case DimCreative:
		return v.Creative
	case DimMeaning:
		return v.Meaning
	}
	return 0
}

// #endregion state-vector

// #region context

// Context captures when an observation was taken.
type Context struct {
	DayOfWeek time.Weekday `json:"day_of_week"`
	HourOfDay int          `json:"hour_of_day"`
	IsWeekend bool         `json:"is_weekend"`
	Season    string       `json:"season"`
	MoonPhase string       `json:"moon_phase"`
}

// #endregion context

// #region observation

// Observation is one periodic sample of the full state vector.
type Observation struct {
	At      time.Time   `json:"at"`
	Vector  StateVector `json:"vector"`
	Context Context     `json:"context"`
}

// #endregion observation

// #region dimension-source

// DimensionSource supplies current per-dimension levels. The default
// implementation is heuristic; callers may plug in their own.
type DimensionSource interface {
	Levels(now time.Time) StateVector
}

// #endregion dimension-source

// #region config

// Config holds temporal store tuning knobs.
type Config struct {
	SampleInterval time.Duration `yaml:"sample_interval"`
	Retention      time.Duration `yaml:"retention"`
}

// DefaultConfig returns sensible defaults.
func DefaultConfig() Config {
	return Config{
		SampleInterval: 5 * time.Minute,
		Retention:      30 * 24 * time.Hour,
	}
}

// #endregion config
