package state

import (
	"os"
	"time"

	"github.com/goccy/go-yaml"
)

// SimCfg holds the simulation-wide settings. Every router reads the same copy.
type SimCfg struct {
	Pairs              int           `yaml:"pairs,omitempty"`               // number of router pairs to generate when no topology file is given
	FailureEnabled     bool          `yaml:"failure_enabled,omitempty"`     // enables random router failure
	FailureProbability float64       `yaml:"failure_probability,omitempty"` // chance per tick that a router fails, when enabled
	TickDelay          time.Duration `yaml:"tick_delay,omitempty"`          // wait between ticks
	StartDelay         time.Duration `yaml:"start_delay,omitempty"`         // wait between printing the topology and starting routers
	MaxTicks           int           `yaml:"max_ticks,omitempty"`           // if not zero, routers stop after this many ticks
	Seed               uint64        `yaml:"seed,omitempty"`                // seed for topology weights and failures, zero picks one at random
	TopologyPath       string        `yaml:"topology,omitempty"`            // if not empty, the topology is read from this file
	LogPath            string        `yaml:"log_path,omitempty"`            // if not empty, logs are also written to this file
}

func DefaultSimCfg() SimCfg {
	return SimCfg{
		FailureProbability: FailureProbability,
		TickDelay:          TickDelay,
		StartDelay:         StartDelay,
	}
}

// EffectiveFailureProbability is the per-tick failure chance actually applied.
func (c *SimCfg) EffectiveFailureProbability() float64 {
	if !c.FailureEnabled {
		return 0
	}
	return c.FailureProbability
}

// ReadSimConfig reads path on top of the defaults. A missing file yields the defaults.
func ReadSimConfig(path string) (*SimCfg, error) {
	cfg := DefaultSimCfg()
	file, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return &cfg, nil
		}
		return nil, err
	}
	err = yaml.Unmarshal(file, &cfg)
	if err != nil {
		return nil, err
	}
	return &cfg, nil
}
