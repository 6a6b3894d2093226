// Package config assembles every component's tuning constants into one
// document and overlays an optional YAML file on the defaults. None of the
// thresholds are derived from data; treating them as configuration keeps
// that honest.
package config

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/danielpatrickdp/selfstate-engine/internal/anonymize"
	"github.com/danielpatrickdp/selfstate-engine/internal/collector"
	"github.com/danielpatrickdp/selfstate-engine/internal/fsm"
	"github.com/danielpatrickdp/selfstate-engine/internal/intervene"
	"github.com/danielpatrickdp/selfstate-engine/internal/predict"
	"github.com/danielpatrickdp/selfstate-engine/internal/temporal"
)

// #region config

// Engine holds the scheduling knobs owned by the engine itself.
type Engine struct {
	SessionCheckInterval time.Duration `yaml:"session_check_interval"`
	SyncInterval         time.Duration `yaml:"sync_interval"`
}

// Config is the full tuning document.
type Config struct {
	Collector  collector.Config        `yaml:"collector"`
	Classifier fsm.Config              `yaml:"classifier"`
	Temporal   temporal.Config         `yaml:"temporal"`
	Predict    predict.Config          `yaml:"predict"`
	Energy     intervene.EnergyConfig  `yaml:"energy"`
	Matcher    anonymize.Config        `yaml:"matcher"`
	Engine     Engine                  `yaml:"engine"`
}

// Default returns the full default configuration.
func Default() Config {
	return Config{
		Collector:  collector.DefaultConfig(),
		Classifier: fsm.DefaultConfig(),
		Temporal:   temporal.DefaultConfig(),
		Predict:    predict.DefaultConfig(),
		Energy:     intervene.DefaultEnergyConfig(),
		Matcher:    anonymize.DefaultConfig(),
		Engine: Engine{
			SessionCheckInterval: 30 * time.Second,
			SyncInterval:         15 * time.Minute,
		},
	}
}

// #endregion config

// #region load

// Load reads a YAML file over the defaults. A missing path (or empty
// argument) yields the defaults.
func Load(path string) (Config, error) {
	cfg := Default()
	if path == "" {
		return cfg, nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return cfg, nil
		}
		return Config{}, fmt.Errorf("read config: %w", err)
	}
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return Config{}, fmt.Errorf("parse config: %w", err)
	}
	return cfg, nil
}

// #endregion load
