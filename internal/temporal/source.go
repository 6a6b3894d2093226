package temporal

import "time"

// #region heuristic-source

// HeuristicSource derives dimension levels from simple daily-rhythm
// heuristics plus whatever live values the session can report. Every accessor
// is a guess, not a measurement; the source exists so the sampler has
// something sensible when no richer integration is wired in.
type HeuristicSource struct {
	// EnergyLevel reports the dispatcher's current energy level, used as the
	// physical baseline. May be nil.
	EnergyLevel func() int
	// FocusScore reports a 0-100 focus estimate from recent features. May be nil.
	FocusScore func() int

	LastMeal     time.Time
	SessionStart time.Time
}

// Levels samples all seven dimensions.
func (h *HeuristicSource) Levels(now time.Time) StateVector {
	return StateVector{
		Cognitive: h.cognitive(now),
		Emotional: 50,
		Physical:  h.physical(now),
		Circadian: h.circadian(now),
		Social:    30,
		Creative:  h.creative(now),
		Meaning:   50,
	}
}

// cognitive follows the focus score when available, else the circadian
// curve, then fades with session length past the two-hour mark.
func (h *HeuristicSource) cognitive(now time.Time) int {
	level := h.circadian(now)
	if h.FocusScore != nil {
		level = h.FocusScore()
	}
	if !h.SessionStart.IsZero() {
		if sessionHours := now.Sub(h.SessionStart).Hours(); sessionHours > 2 {
			level -= int((sessionHours - 2) * 5)
		}
	}
	return clampLevel(level)
}

// physical starts from energy and decays with hours since the last meal.
func (h *HeuristicSource) physical(now time.Time) int {
	level := 70
	if h.EnergyLevel != nil {
		level = h.EnergyLevel()
	}
	if !h.LastMeal.IsZero() {
		hoursSinceMeal := now.Sub(h.LastMeal).Hours()
		if hoursSinceMeal > 3 {
			level -= int((hoursSinceMeal - 3) * 8)
		}
	}
	return clampLevel(level)
}

// circadian is a coarse daily alertness curve: morning climb, afternoon dip,
// evening recovery, night trough.
func (h *HeuristicSource) circadian(now time.Time) int {
	switch hour := now.Hour(); {
	case hour >= 9 && hour < 12:
		return 80
	case hour >= 12 && hour < 14:
		return 55
	case hour >= 14 && hour < 18:
		return 70
	case hour >= 18 && hour < 22:
		return 60
	case hour >= 6 && hour < 9:
		return 65
	default:
		return 30
	}
}

// creative tracks the circadian curve with an evening bump.
func (h *HeuristicSource) creative(now time.Time) int {
	base := h.circadian(now)
	if hour := now.Hour(); hour >= 20 && hour < 23 {
		base += 15
	}
	return clampLevel(base)
}

func clampLevel(v int) int {
	if v < 0 {
		return 0
	}
	if v > 100 {
		return 100
	}
	return v
}

// #endregion heuristic-source
