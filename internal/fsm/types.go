package fsm

import "time"

// #region state

// State is one of the discrete cognitive states. Exactly one is current.
type State string

const (
	StateHyperfocus  State = "hyperfocus"
	StateFlow        State = "flow"
	StateScattered   State = "scattered"
	StateOverwhelmed State = "overwhelmed"
	StateParalyzed   State = "paralyzed"
	StateRecovering  State = "recovering"
	StateEnergized   State = "energized"
)

// #endregion state

// #region action

// Action is one entry of the closed intervention vocabulary. The classifier
// attaches the configured actions to each transition notification; the
// dispatcher executes them.
type Action string

const (
	ActionSuppressNotifications Action = "suppress_notifications"
	ActionHideTimeDisplay       Action = "hide_time_display"
	ActionSingleTaskMode        Action = "enter_single_task_mode"
	ActionSimplifyInterface     Action = "simplify_interface"
	ActionCompanionPresence     Action = "invoke_companion_presence"
	ActionEmergencyFlow         Action = "enter_emergency_flow"
	ActionBreathingExercise     Action = "offer_breathing_exercise"
	ActionMinimalNextStep       Action = "offer_minimal_next_step"
)

// stateActions is the static action vector per state.
var stateActions = map[State][]Action{
	StateHyperfocus:  {ActionSuppressNotifications, ActionHideTimeDisplay},
	StateFlow:        {ActionSuppressNotifications},
	StateScattered:   {ActionSingleTaskMode, ActionSimplifyInterface},
	StateOverwhelmed: {ActionEmergencyFlow, ActionBreathingExercise},
	StateParalyzed:   {ActionMinimalNextStep, ActionCompanionPresence},
	StateRecovering:  {ActionSimplifyInterface, ActionCompanionPresence},
	StateEnergized:   nil,
}

// ActionsFor returns the configured action vector for a state.
func ActionsFor(s State) []Action {
	return stateActions[s]
}

// #endregion action

// #region transition

// Transition records one accepted state change. Only appended when to != from.
type Transition struct {
	From State
	To   State
	At   time.Time
}

// StateChanged is the bus payload published on every accepted transition.
type StateChanged struct {
	From    State
	To      State
	Actions []Action
}

// BreakSuggested is the bus payload for an overdue-break suggestion.
// Not a state change.
type BreakSuggested struct {
	SinceLastBreak time.Duration
}

// #endregion transition

// #region session-snapshot

// SessionSnapshot carries coarse session-level inputs for the slower
// classifier rules.
type SessionSnapshot struct {
	EnergyLevel      int
	FocusScore       int
	SessionLength    time.Duration
	InteractionCount int
	LastBreak        time.Time
}

// #endregion session-snapshot

// #region config

// Config holds classifier thresholds. The rule constants are tuning values,
// not derived from data; keep them configurable.
type Config struct {
	HyperfocusTypingRate  float64       `yaml:"hyperfocus_typing_rate"`
	ScatteredFocusSwitch  int           `yaml:"scattered_focus_switches"`
	ScatteredJitter       float64       `yaml:"scattered_jitter"`
	ParalyzedPauseCount   int           `yaml:"paralyzed_pause_count"`
	ParalyzedTypingRate   float64       `yaml:"paralyzed_typing_rate"`
	OverwhelmedCorrection float64       `yaml:"overwhelmed_correction_rate"`
	ProtectionWindow      time.Duration `yaml:"protection_window"`
	LowEnergy             int           `yaml:"low_energy"`
	LowFocus              int           `yaml:"low_focus"`
	LongSession           time.Duration `yaml:"long_session"`
	MinInteractions       int           `yaml:"min_interactions"`
	BreakOverdue          time.Duration `yaml:"break_overdue"`
	TransitionLogCap      int           `yaml:"transition_log_cap"`
}

// DefaultConfig returns sensible defaults.
func DefaultConfig() Config {
	return Config{
		HyperfocusTypingRate:  60,
		ScatteredFocusSwitch:  5,
		ScatteredJitter:       100,
		ParalyzedPauseCount:   10,
		ParalyzedTypingRate:   10,
		OverwhelmedCorrection: 0.3,
		ProtectionWindow:      25 * time.Minute,
		LowEnergy:             20,
		LowFocus:              30,
		LongSession:           time.Hour,
		MinInteractions:       10,
		BreakOverdue:          90 * time.Minute,
		TransitionLogCap:      500,
	}
}

// #endregion config
