package temporal

import "time"

// #region context-at

// ContextAt derives the observation context for a point in time.
func ContextAt(t time.Time) Context {
	wd := t.Weekday()
	return Context{
		DayOfWeek: wd,
		HourOfDay: t.Hour(),
		IsWeekend: wd == time.Saturday || wd == time.Sunday,
		Season:    seasonOf(t),
		MoonPhase: moonPhaseOf(t),
	}
}

// #endregion context-at

// #region season

func seasonOf(t time.Time) string {
	switch t.Month() {
	case time.December, time.January, time.February:
		return "winter"
	case time.March, time.April, time.May:
		return "spring"
	case time.June, time.July, time.August:
		return "summer"
	default:
		return "autumn"
	}
}

// #endregion season

// #region moon-phase

// synodicDays is the mean length of a lunar cycle.
const synodicDays = 29.530588853

// refNewMoon is a known new moon (2000-01-06 18:14 UTC).
var refNewMoon = time.Date(2000, time.January, 6, 18, 14, 0, 0, time.UTC)

var moonPhases = []string{
	"new", "waxing_crescent", "first_quarter", "waxing_gibbous",
	"full", "waning_gibbous", "last_quarter", "waning_crescent",
}

// moonPhaseOf approximates the lunar phase from the synodic cycle. Coarse by
// design: the phase only ever feeds bucketed context.
func moonPhaseOf(t time.Time) string {
	days := t.Sub(refNewMoon).Hours() / 24
	cycle := days / synodicDays
	frac := cycle - float64(int64(cycle))
	if frac < 0 {
		frac++
	}
	idx := int(frac*8 + 0.5) % 8
	return moonPhases[idx]
}

// #endregion moon-phase
