package monitor

import (
	"encoding/json"
	"time"
)

// Config is the monitor's JSON configuration
type Config struct {
	Device string `json:"device"`
	Baud   int    `json:"baud"`

	// ReadTimeoutMS bounds a single serial read
	ReadTimeoutMS int `json:"read_timeout_ms"`

	// StatsEvery logs running statistics after this many readings (0 = off)
	StatsEvery int `json:"stats_every"`

	// Unit is appended to scaled values when printing
	Unit string `json:"unit"`
}

// LoadConfig parses a JSON configuration and fills in defaults
func LoadConfig(jsonData []byte) (*Config, error) {
	var config Config

	err := json.Unmarshal(jsonData, &config)
	if err != nil {
		return nil, err
	}

	applyDefaults(&config)

	return &config, nil
}

// DefaultConfig returns the configuration used when no file is given
func DefaultConfig() *Config {
	config := &Config{}
	applyDefaults(config)
	return config
}

// applyDefaults fills in missing configuration values
func applyDefaults(config *Config) {
	if config.Device == "" {
		config.Device = "/dev/ttyACM0"
	}
	if config.Baud == 0 {
		config.Baud = 115200 // ignored by USB CDC
	}
	if config.ReadTimeoutMS == 0 {
		config.ReadTimeoutMS = 500
	}
	if config.StatsEvery < 0 {
		config.StatsEvery = 0
	}
	if config.Unit == "" {
		config.Unit = "g"
	}
}

// ReadTimeout returns ReadTimeoutMS as a duration
func (c *Config) ReadTimeout() time.Duration {
	return time.Duration(c.ReadTimeoutMS) * time.Millisecond
}
