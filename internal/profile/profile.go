// Package profile models the user-selected cognitive profile and the
// adaptation defaults it biases.
package profile

// #region type

// Type is a self-identified cognitive profile category.
type Type string

const (
	TypeADHDInattentive   Type = "adhd_inattentive"
	TypeADHDCombined      Type = "adhd_combined"
	TypeAutismHighMasking Type = "autism_high_masking"
	TypeAuDHD             Type = "audhd"
	TypeNeurotypical      Type = "neurotypical"
	TypeExploring         Type = "exploring"
)

// #endregion type

// #region profile

// Profile is the persisted cognitive profile record.
type Profile struct {
	Type           Type              `json:"type"`
	Customizations map[string]string `json:"customizations,omitempty"`
	SelectedTraits []string          `json:"selected_traits,omitempty"`
}

// Default returns the neutral profile used when nothing is persisted or the
// record is unreadable.
func Default() Profile {
	return Profile{Type: TypeExploring}
}

// #endregion profile

// #region adaptation

// Adaptation is the set of defaults a profile biases. Every field is
// advisory; the dispatcher treats them as starting points, not rules.
type Adaptation struct {
	BreakMinutes      int  // default break timer length
	SimplifyByDefault bool // start with the simplified surface
	FrequentNudges    bool // shorter break-overdue horizon
}

// adaptations maps known profile types to their defaults.
var adaptations = map[Type]Adaptation{
	TypeADHDInattentive:   {BreakMinutes: 5, SimplifyByDefault: true, FrequentNudges: true},
	TypeADHDCombined:      {BreakMinutes: 5, SimplifyByDefault: true, FrequentNudges: true},
	TypeAutismHighMasking: {BreakMinutes: 10, SimplifyByDefault: false, FrequentNudges: false},
	TypeAuDHD:             {BreakMinutes: 7, SimplifyByDefault: true, FrequentNudges: true},
	TypeNeurotypical:      {BreakMinutes: 10, SimplifyByDefault: false, FrequentNudges: false},
	TypeExploring:         {BreakMinutes: 7, SimplifyByDefault: false, FrequentNudges: false},
}

// standard is the fallback adaptation set for unknown or unset profiles.
var standard = Adaptation{BreakMinutes: 7}

// AdaptationFor returns the adaptation defaults for a profile type. Unknown
// types fall back to the standard set.
func AdaptationFor(t Type) Adaptation {
	if a, ok := adaptations[t]; ok {
		return a
	}
	return standard
}

// #endregion adaptation
