// Package anonymize bucketizes local state into privacy-preserving fuzzy
// keys and scores externally supplied insights against the current context.
package anonymize

import "time"

// #region hash-context

// timeOfDayBands maps hour ranges to coarse day bands. Fixed ranges: the
// bands are part of the fuzzy key format and must stay stable across users.
func timeOfDay(hour int) string {
	switch {
	case hour >= 5 && hour < 8:
		return "early_morning"
	case hour >= 8 && hour < 12:
		return "morning"
	case hour >= 12 && hour < 14:
		return "midday"
	case hour >= 14 && hour < 18:
		return "afternoon"
	case hour >= 18 && hour < 22:
		return "evening"
	default:
		return "night"
	}
}

// HashContext produces the fuzzy key for a raw context: dimension values
// floor-divided into fixed-width buckets, hour collapsed to a day band,
// weekday collapsed to day type. Deterministic and lossy.
func HashContext(raw RawContext, bucketWidth int) HashedContext {
	if bucketWidth <= 0 {
		bucketWidth = DefaultConfig().BucketWidth
	}
	return HashedContext{
		CognitiveRange: bucket(raw.Cognitive, bucketWidth),
		EmotionalRange: bucket(raw.Emotional, bucketWidth),
		PhysicalRange:  bucket(raw.Physical, bucketWidth),
		TimeOfDay:      timeOfDay(raw.Hour),
		DayType:        dayType(raw),
		ProfileType:    raw.ProfileType,
	}
}

func bucket(v, width int) int {
	if v < 0 {
		v = 0
	}
	if v > 100 {
		v = 100
	}
	return (v / width) * width
}

func dayType(raw RawContext) string {
	if raw.Weekday == time.Saturday || raw.Weekday == time.Sunday {
		return "weekend"
	}
	return "weekday"
}

// #endregion hash-context
