package anonymize

import "sort"

// #region matcher

// Matcher filters and scores insights against the current local context.
type Matcher struct {
	config Config
}

// NewMatcher creates a matcher.
func NewMatcher(config Config) *Matcher {
	return &Matcher{config: config}
}

// #endregion matcher

// #region score

// Score computes the local relevance of one insight. Pure.
func (m *Matcher) Score(ins Insight, current RawContext) float64 {
	score := ins.Confidence * m.config.ConfidenceWeight

	switch {
	case ins.SampleSize > m.config.LargeSampleSize:
		score += m.config.LargeSampleBonus
	case ins.SampleSize > m.config.MediumSampleSize:
		score += m.config.MediumSampleBonus
	}

	if ins.Context.ProfileType != "" && ins.Context.ProfileType == current.ProfileType {
		score += m.config.ProfileMatchBonus
	}

	if ins.Type == InsightTypeWarning && current.Emotional < m.config.UrgencyEmotional {
		score += m.config.UrgencyBonus
	}

	return score
}

// #endregion score

// #region filter

// matches applies the hard filters: profile match when the insight names a
// profile, bucketed range within the tolerance when it specifies one, exact
// time-of-day when it specifies one.
func (m *Matcher) matches(ins Insight, current RawContext) bool {
	if ins.Context.ProfileType != "" && ins.Context.ProfileType != current.ProfileType {
		return false
	}

	key := HashContext(current, m.config.BucketWidth)
	if r := ins.Context.CognitiveRange; r != nil && !within(*r, key.CognitiveRange, m.config.RangeMatchDistance) {
		return false
	}
	if r := ins.Context.EmotionalRange; r != nil && !within(*r, key.EmotionalRange, m.config.RangeMatchDistance) {
		return false
	}
	if r := ins.Context.PhysicalRange; r != nil && !within(*r, key.PhysicalRange, m.config.RangeMatchDistance) {
		return false
	}
	if ins.Context.TimeOfDay != "" && ins.Context.TimeOfDay != key.TimeOfDay {
		return false
	}
	return true
}

func within(a, b, dist int) bool {
	d := a - b
	if d < 0 {
		d = -d
	}
	return d <= dist
}

// #endregion filter

// #region rank

// Rank filters insights against the current context and returns them scored,
// sorted by descending relevance. The sort is stable: equal scores keep
// their original relative order.
func (m *Matcher) Rank(insights []Insight, current RawContext) []ScoredInsight {
	ranked := make([]ScoredInsight, 0, len(insights))
	for _, ins := range insights {
		if !m.matches(ins, current) {
			continue
		}
		ranked = append(ranked, ScoredInsight{Insight: ins, Score: m.Score(ins, current)})
	}
	sort.SliceStable(ranked, func(i, j int) bool {
		return ranked[i].Score > ranked[j].Score
	})
	return ranked
}

// OptInPlaceholder is the single insight returned when consent is off.
func OptInPlaceholder() ScoredInsight {
	return ScoredInsight{
		Insight: Insight{
			Type: InsightTypeOptIn,
			Text: "Collective insights are off. Opt in to see what helped people in similar moments.",
		},
	}
}

// UnavailablePlaceholder is returned when the collective backend cannot be
// reached. Normal mode, not an error.
func UnavailablePlaceholder() ScoredInsight {
	return ScoredInsight{
		Insight: Insight{
			Type: InsightTypeOptIn,
			Text: "Collective insights are unavailable right now. Your patterns stay local until the backend is reachable.",
		},
	}
}

// #endregion rank
