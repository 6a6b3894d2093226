package intervene

import (
	"time"

	"github.com/danielpatrickdp/selfstate-engine/internal/fsm"
)

// #region payloads

// Intervention is the bus payload for one dispatched action. Every action is
// optional for the UI layer: an absent surface simply ignores it.
type Intervention struct {
	Action fsm.Action
	Reason string
}

// EnergyUpdate is the bus payload published after every decay tick.
type EnergyUpdate struct {
	Level int
}

// Nudge is the bus payload for a one-time low-energy nudge.
type Nudge struct {
	Threshold int
	Level     int
	Message   string
}

// BreakTick is the bus payload published every second while a break runs.
type BreakTick struct {
	Remaining time.Duration
}

// BreakComplete is published once when a break ends.
type BreakComplete struct {
	Early bool
}

// #endregion payloads

// #region energy-config

// EnergyConfig holds decay tuning knobs.
type EnergyConfig struct {
	DecayInterval time.Duration `yaml:"decay_interval"`
	FastDecay     int           `yaml:"fast_decay"`
	SlowDecay     int           `yaml:"slow_decay"`
	BreakOverdue  time.Duration `yaml:"break_overdue"`
	Thresholds    []int         `yaml:"thresholds"`
}

// DefaultEnergyConfig returns sensible defaults.
func DefaultEnergyConfig() EnergyConfig {
	return EnergyConfig{
		DecayInterval: time.Minute,
		FastDecay:     5,
		SlowDecay:     2,
		BreakOverdue:  time.Hour,
		Thresholds:    []int{30, 10},
	}
}

// #endregion energy-config
