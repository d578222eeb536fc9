// sim/config.go
// Copyright(c) 2022-2025 vice contributors, licensed under the GNU Public License, Version 3.
// SPDX: GPL-3.0-only

package sim

import (
	"fmt"
	"strconv"
	"time"

	av "github.com/sauna-sim/sauna-api-sub001/aviation"
	"github.com/sauna-sim/sauna-api-sub001/log"
	"github.com/sauna-sim/sauna-api-sub001/nav"
	"github.com/sauna-sim/sauna-api-sub001/util"
)

// Milliseconds is a duration as it is written in configuration files.
type Milliseconds int

func (m Milliseconds) Duration() time.Duration {
	return time.Duration(m) * time.Millisecond
}

// Config holds the session settings. All fields are optional in the JSON
// file; zero values are replaced with the defaults.
type Config struct {
	UpdateInterval   Milliseconds `json:"update_interval"`
	ReportInterval   Milliseconds `json:"report_interval"`
	CommandDelayMin  Milliseconds `json:"command_delay_min"`
	CommandDelayMax  Milliseconds `json:"command_delay_max"`
	StatsInterval    Milliseconds `json:"stats_interval"`
	Acceleration     float32      `json:"acceleration_kts_per_sec"`
	HoldRadiusBuffer float32      `json:"hold_radius_buffer"`

	LogLevel string `json:"log_level"`
	LogDir   string `json:"log_dir"`

	NavData  string `json:"nav_data"`
	WXGrid   string `json:"wx_grid"`
	// "dipole", "none", or a fixed declination in degrees (east positive).
	Magnetic string `json:"magnetic"`
}

func DefaultConfig() Config {
	var c Config
	c.applyDefaults()
	return c
}

func (c *Config) applyDefaults() {
	if c.UpdateInterval == 0 {
		c.UpdateInterval = 1000
	}
	if c.ReportInterval == 0 {
		c.ReportInterval = 5000
	}
	if c.CommandDelayMin == 0 && c.CommandDelayMax == 0 {
		c.CommandDelayMin, c.CommandDelayMax = 500, 2000
	}
	if c.StatsInterval == 0 {
		c.StatsInterval = 60000
	}
	if c.Acceleration == 0 {
		c.Acceleration = nav.DefaultAcceleration
	}
	if c.HoldRadiusBuffer == 0 {
		c.HoldRadiusBuffer = nav.DefaultHoldRadiusBuffer
	}
	if c.LogLevel == "" {
		c.LogLevel = "info"
	}
	if c.Magnetic == "" {
		c.Magnetic = "dipole"
	}
}

// Validate checks the settings after defaults have been applied.
func (c Config) Validate() error {
	invalid := func(f string, args ...any) error {
		return fmt.Errorf("%s: %w", fmt.Sprintf(f, args...), ErrInvalidConfig)
	}

	if c.UpdateInterval <= 0 {
		return invalid("update_interval %d", c.UpdateInterval)
	}
	if c.ReportInterval <= 0 {
		return invalid("report_interval %d", c.ReportInterval)
	}
	if c.StatsInterval < 0 {
		return invalid("stats_interval %d", c.StatsInterval)
	}
	if c.CommandDelayMin < 0 || c.CommandDelayMax < c.CommandDelayMin {
		return invalid("command delay [%d, %d]", c.CommandDelayMin, c.CommandDelayMax)
	}
	if c.Acceleration <= 0 {
		return invalid("acceleration_kts_per_sec %.1f", c.Acceleration)
	}
	if c.HoldRadiusBuffer < 1 {
		return invalid("hold_radius_buffer %.2f", c.HoldRadiusBuffer)
	}
	switch c.LogLevel {
	case "debug", "info", "warn", "error":
	default:
		return invalid("log_level %q", c.LogLevel)
	}
	if _, err := c.MagneticModel(); err != nil {
		return err
	}
	return nil
}

// MagneticModel returns the model selected by the magnetic setting; it
// is nil for "none".
func (c Config) MagneticModel() (av.MagneticModel, error) {
	switch c.Magnetic {
	case "dipole", "":
		return av.DefaultDipole, nil
	case "none":
		return nil, nil
	default:
		d, err := strconv.ParseFloat(c.Magnetic, 32)
		if err != nil || d < -180 || d > 180 {
			return nil, fmt.Errorf("magnetic %q: %w", c.Magnetic, ErrInvalidConfig)
		}
		return av.FixedDeclination(d), nil
	}
}

// LoadConfig reads a JSON configuration file, which may be
// zstd-compressed, and applies the defaults.
func LoadConfig(path string) (Config, error) {
	var c Config
	if err := util.LoadJSONFile(path, &c); err != nil {
		return Config{}, fmt.Errorf("%s: %w", path, err)
	}
	c.applyDefaults()
	if err := c.Validate(); err != nil {
		return Config{}, fmt.Errorf("%s: %w", path, err)
	}
	return c, nil
}

func (c Config) Log(lg *log.Logger) {
	lg.Info("configuration",
		"update_interval", c.UpdateInterval.Duration(),
		"report_interval", c.ReportInterval.Duration(),
		"command_delay_min", c.CommandDelayMin.Duration(),
		"command_delay_max", c.CommandDelayMax.Duration(),
		"acceleration", c.Acceleration,
		"hold_radius_buffer", c.HoldRadiusBuffer,
		"nav_data", c.NavData,
		"wx_grid", c.WXGrid,
		"magnetic", c.Magnetic)
}
