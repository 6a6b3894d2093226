// Package predict reads the observation log and computes trends, a
// crash-probability score, flow-window forecasts, and recurring-pattern
// detections. Everything here is rule-based heuristics over history, not a
// learned model, and every output is recomputed from scratch each cycle.
package predict

import (
	"fmt"
	"time"

	"github.com/danielpatrickdp/selfstate-engine/internal/temporal"
)

// #region engine

// Engine computes predictions from observation history. Stateless between
// runs.
type Engine struct {
	config Config
	now    func() time.Time
}

// NewEngine creates a prediction engine.
func NewEngine(config Config) *Engine {
	return &Engine{config: config, now: time.Now}
}

// SetClock overrides the engine's clock. Test hook.
func (e *Engine) SetClock(now func() time.Time) {
	e.now = now
}

// Run recomputes the full prediction set from history (oldest first).
func (e *Engine) Run(history []temporal.Observation) []Prediction {
	if len(history) == 0 {
		return nil
	}
	var out []Prediction

	if p, ok := e.crashWarning(history); ok {
		out = append(out, p)
	}
	if windows := e.FlowWindows(history); len(windows) > 0 {
		out = append(out, Prediction{Kind: KindFlowOpportunity, Windows: windows})
	}
	out = append(out, e.DetectPatterns(history)...)
	return out
}

// #endregion engine

// #region trend

// TrendFor computes the finite difference of one dimension between the
// oldest and newest observation inside the trailing trend window.
func (e *Engine) TrendFor(history []temporal.Observation, dim temporal.Dimension) Trend {
	cutoff := e.now().Add(-e.config.TrendWindow)
	var first, last *temporal.Observation
	for i := range history {
		o := &history[i]
		if o.At.Before(cutoff) {
			continue
		}
		if first == nil {
			first = o
		}
		last = o
	}
	t := Trend{Dimension: string(dim)}
	if first == nil || last == nil || first == last {
		return t
	}
	t.Delta = float64(last.Vector.Level(dim) - first.Vector.Level(dim))
	return t
}

// Trends computes the trend for every dimension.
func (e *Engine) Trends(history []temporal.Observation) []Trend {
	out := make([]Trend, 0, len(temporal.Dimensions))
	for _, d := range temporal.Dimensions {
		out = append(out, e.TrendFor(history, d))
	}
	return out
}

// #endregion trend

// #region crash

// CrashProbability scores near-term crash risk in [0,1]. Additive over
// independent risk factors, so adding a factor never lowers the score.
func (e *Engine) CrashProbability(history []temporal.Observation) float64 {
	current := history[len(history)-1]
	cfg := e.config
	var p float64

	// Depleted reserves right now.
	if current.Vector.Physical < cfg.DepletedPhysical && current.Vector.Emotional < cfg.DepletedEmotional {
		p += cfg.DepletionWeight
	}

	// Social swing: low now after a high-social stretch in the last day.
	if current.Vector.Social < cfg.SocialLow {
		swingCutoff := current.At.Add(-cfg.SocialSwingWindow)
		for _, o := range history {
			if o.At.Before(swingCutoff) {
				continue
			}
			if o.Vector.Social > cfg.SocialHigh {
				p += cfg.SocialSwingWeight
				break
			}
		}
	}

	// Historically risky hour-of-day.
	crashCount := 0
	for _, o := range history {
		if o.Context.HourOfDay == current.Context.HourOfDay && e.crashLike(o) {
			crashCount++
		}
	}
	if crashCount > cfg.RiskyHourMinCount {
		p += cfg.RiskyHourWeight
	}

	// Overextension: cognitive output outrunning physical reserves.
	if current.Vector.Cognitive > cfg.OverextendCognitive && current.Vector.Physical < cfg.OverextendPhysical {
		p += cfg.OverextendWeight
	}

	if p > 1 {
		p = 1
	}
	return p
}

// crashLike reports whether an observation looks like a capacity crash.
func (e *Engine) crashLike(o temporal.Observation) bool {
	cfg := e.config
	return o.Vector.Emotional < cfg.CrashEmotional ||
		o.Vector.Physical < cfg.CrashPhysical ||
		(o.Vector.Cognitive < cfg.CrashCognitive && o.Vector.Emotional < cfg.CrashCoEmotional)
}

// crashWarning wraps the probability in a Prediction when it clears the
// warning threshold. Timeframe comes from the emotional trend slope.
func (e *Engine) crashWarning(history []temporal.Observation) (Prediction, bool) {
	p := e.CrashProbability(history)
	if p <= e.config.WarnThreshold {
		return Prediction{}, false
	}

	emotional := e.TrendFor(history, temporal.DimEmotional)
	timeframe := "later today"
	switch {
	case emotional.Delta <= e.config.SteepEmotionalDrop:
		timeframe = "1-2 hours"
	case emotional.Delta <= e.config.ModerateEmotionalDrop:
		timeframe = "3-4 hours"
	}

	return Prediction{
		Kind:        KindCrashWarning,
		Probability: p,
		Timeframe:   timeframe,
		Recommendations: []string{
			"Take a real break before the dip lands",
			"Eat something and drink water",
			"Switch to low-stakes tasks",
			"Lower today's expectations on purpose",
		},
	}, true
}

// #endregion crash

// #region flow-windows

// FlowWindows builds an hour-of-day histogram of high-capacity observations
// and reports hours close to the best bucket.
func (e *Engine) FlowWindows(history []temporal.Observation) []FlowWindow {
	cfg := e.config
	counts := make(map[int]int)
	max := 0
	for _, o := range history {
		if o.Vector.Cognitive > cfg.FlowCognitive &&
			o.Vector.Creative > cfg.FlowCreative &&
			o.Vector.Physical > cfg.FlowPhysical {
			counts[o.Context.HourOfDay]++
			if counts[o.Context.HourOfDay] > max {
				max = counts[o.Context.HourOfDay]
			}
		}
	}
	if max == 0 {
		return nil
	}

	var out []FlowWindow
	for hour := 0; hour < 24; hour++ {
		count := counts[hour]
		if count <= cfg.FlowMinCount {
			continue
		}
		if float64(count) < cfg.FlowRatio*float64(max) {
			continue
		}
		out = append(out, FlowWindow{
			Hour:       hour,
			Label:      fmt.Sprintf("%02d:00", hour),
			Likelihood: float64(count) / float64(max),
		})
	}
	return out
}

// #endregion flow-windows

// #region patterns

// DetectPatterns runs the fixed set of named recurring-pattern heuristics.
// Each carries a fixed confidence and a canned recommendation.
func (e *Engine) DetectPatterns(history []temporal.Observation) []Prediction {
	var out []Prediction
	if p, ok := e.mondayMoodDip(history); ok {
		out = append(out, p)
	}
	if p, ok := e.postCreativeCrash(history); ok {
		out = append(out, p)
	}
	if p, ok := e.eveningSecondWind(history); ok {
		out = append(out, p)
	}
	return out
}

func (e *Engine) mondayMoodDip(history []temporal.Observation) (Prediction, bool) {
	sum, n := 0, 0
	for _, o := range history {
		if o.Context.DayOfWeek == time.Monday {
			sum += o.Vector.Emotional
			n++
		}
	}
	if n < e.config.MondayMinSamples || sum/n >= e.config.MondayEmotional {
		return Prediction{}, false
	}
	return Prediction{
		Kind:        KindPatternInsight,
		Description: "Mondays tend to start with a mood dip",
		Confidence:  0.7,
		Action:      "Front-load Monday with easy wins and keep the morning unscheduled",
	}, true
}

func (e *Engine) postCreativeCrash(history []temporal.Observation) (Prediction, bool) {
	recur := 0
	for i, o := range history {
		if o.Vector.Creative <= e.config.CreativePeak {
			continue
		}
		limit := o.At.Add(24 * time.Hour)
		for _, later := range history[i+1:] {
			if later.At.After(limit) {
				break
			}
			if later.Vector.Emotional < e.config.PostCreativeDrop {
				recur++
				break
			}
		}
	}
	if recur < e.config.PostCreativeRecur {
		return Prediction{}, false
	}
	return Prediction{
		Kind:        KindPatternInsight,
		Description: "Big creative pushes are usually followed by an emotional crash within a day",
		Confidence:  0.65,
		Action:      "Plan recovery time after creative sprints instead of booking more output",
	}, true
}

func (e *Engine) eveningSecondWind(history []temporal.Observation) (Prediction, bool) {
	total, high := 0, 0
	for _, o := range history {
		if o.Context.HourOfDay >= 20 && o.Context.HourOfDay <= 23 {
			total++
			if o.Vector.Cognitive > e.config.EveningCognitive {
				high++
			}
		}
	}
	if total < e.config.EveningMinSamples || high*2 <= total {
		return Prediction{}, false
	}
	return Prediction{
		Kind:        KindPatternInsight,
		Description: "Evenings often bring a cognitive second wind",
		Confidence:  0.6,
		Action:      "Save one meaningful task for the 20:00-23:00 window",
	}, true
}

// #endregion patterns
