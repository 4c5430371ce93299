// File: internal/config/config.go
package config

import (
	"fmt"
	"time"

	"github.com/spf13/viper"
)

// Config holds the entire application configuration. It is constructed once
// at startup and passed by reference into every component; nothing mutates it
// mid-run.
type Config struct {
	Logger    LoggerConfig    `mapstructure:"logger" yaml:"logger"`
	Run       RunConfig       `mapstructure:"run" yaml:"run"`
	Limits    LimitsConfig    `mapstructure:"limits" yaml:"limits"`
	Delays    DelayConfig     `mapstructure:"delays" yaml:"delays"`
	Motion    MotionConfig    `mapstructure:"motion" yaml:"motion"`
	Tokens    TokensConfig    `mapstructure:"tokens" yaml:"tokens"`
	Detection DetectionConfig `mapstructure:"detection" yaml:"detection"`
	Files     FilesConfig     `mapstructure:"files" yaml:"files"`
	Browser   BrowserConfig   `mapstructure:"browser" yaml:"browser"`
}

// LoggerConfig holds all the configuration for the logger.
type LoggerConfig struct {
	Level       string      `mapstructure:"level" yaml:"level"`
	Format      string      `mapstructure:"format" yaml:"format"`
	AddSource   bool        `mapstructure:"add_source" yaml:"add_source"`
	ServiceName string      `mapstructure:"service_name" yaml:"service_name"`
	LogFile     string      `mapstructure:"log_file" yaml:"log_file"`
	MaxSize     int         `mapstructure:"max_size" yaml:"max_size"`
	MaxBackups  int         `mapstructure:"max_backups" yaml:"max_backups"`
	MaxAge      int         `mapstructure:"max_age" yaml:"max_age"`
	Compress    bool        `mapstructure:"compress" yaml:"compress"`
	Colors      ColorConfig `mapstructure:"colors" yaml:"colors"`
}

// ColorConfig defines the color names for different log levels.
type ColorConfig struct {
	Debug string `mapstructure:"debug" yaml:"debug"`
	Info  string `mapstructure:"info" yaml:"info"`
	Warn  string `mapstructure:"warn" yaml:"warn"`
	Error string `mapstructure:"error" yaml:"error"`
	Fatal string `mapstructure:"fatal" yaml:"fatal"`
}

// RunConfig selects the overall run mode.
type RunConfig struct {
	// Simulate performs every step except the final pointer dispatches.
	// This is the default; real clicks require an explicit opt-in.
	Simulate bool `mapstructure:"simulate" yaml:"simulate"`
	// CountUnverified controls whether an action whose post-state could not
	// be re-read is still counted against caps and the persistent totals.
	CountUnverified bool `mapstructure:"count_unverified" yaml:"count_unverified"`
}

// LimitsConfig holds the three independent action budgets.
type LimitsConfig struct {
	MaxActionsPerRun int           `mapstructure:"max_actions_per_run" yaml:"max_actions_per_run"`
	DailyCap         int           `mapstructure:"daily_cap" yaml:"daily_cap"`
	PerHourCap       int           `mapstructure:"per_hour_cap" yaml:"per_hour_cap"`
	HourWindow       time.Duration `mapstructure:"hour_window" yaml:"hour_window"`
}

// DelayConfig tunes every wait the engine performs. All waits are
// interruptible; KillSwitchPoll bounds how stale a stop request can go
// unnoticed.
type DelayConfig struct {
	MinActionDelay time.Duration `mapstructure:"min_action_delay" yaml:"min_action_delay"`
	MaxActionDelay time.Duration `mapstructure:"max_action_delay" yaml:"max_action_delay"`
	KillSwitchPoll time.Duration `mapstructure:"kill_switch_poll" yaml:"kill_switch_poll"`
	ScrollSettle   time.Duration `mapstructure:"scroll_settle" yaml:"scroll_settle"`
	ConfirmWait    time.Duration `mapstructure:"confirm_wait" yaml:"confirm_wait"`
	VerifyRetries  int           `mapstructure:"verify_retries" yaml:"verify_retries"`
	VerifyInterval time.Duration `mapstructure:"verify_interval" yaml:"verify_interval"`
}

// MotionConfig shapes the synthesized pointer trajectories.
type MotionConfig struct {
	MinSteps       int     `mapstructure:"min_steps" yaml:"min_steps"`
	MaxSteps       int     `mapstructure:"max_steps" yaml:"max_steps"`
	ControlJitterX float64 `mapstructure:"control_jitter_x" yaml:"control_jitter_x"`
	ControlJitterY float64 `mapstructure:"control_jitter_y" yaml:"control_jitter_y"`
	PointJitter    float64 `mapstructure:"point_jitter" yaml:"point_jitter"`
	DriftAmplitude float64 `mapstructure:"drift_amplitude" yaml:"drift_amplitude"`
	StepDelayMin   time.Duration `mapstructure:"step_delay_min" yaml:"step_delay_min"`
	StepDelayMax   time.Duration `mapstructure:"step_delay_max" yaml:"step_delay_max"`
	PressHoldMin   time.Duration `mapstructure:"press_hold_min" yaml:"press_hold_min"`
	PressHoldMax   time.Duration `mapstructure:"press_hold_max" yaml:"press_hold_max"`
}

// TokensConfig carries the localized text fragments the engine matches
// against. Every set must cover at least two locales; matching is
// case-insensitive on trimmed text.
type TokensConfig struct {
	// Actionable marks a control whose current label offers the reversible
	// action (e.g. "Following").
	Actionable []string `mapstructure:"actionable" yaml:"actionable"`
	// Reversed marks the opposite, post-action state (e.g. "Follow").
	Reversed []string `mapstructure:"reversed" yaml:"reversed"`
	// Confirm/Cancel identify the buttons of the confirmation dialog.
	Confirm []string `mapstructure:"confirm" yaml:"confirm"`
	Cancel  []string `mapstructure:"cancel" yaml:"cancel"`
	// Boundary marks the section heading that ends the real list.
	Boundary []string `mapstructure:"boundary" yaml:"boundary"`
	// BlockPhrases are denial/rate-limit fragments whose appearance anywhere
	// in the visible page text aborts the whole run.
	BlockPhrases []string `mapstructure:"block_phrases" yaml:"block_phrases"`
}

// DetectionConfig tunes the termination detector.
type DetectionConfig struct {
	MaxNoProgressRounds int `mapstructure:"max_no_progress_rounds" yaml:"max_no_progress_rounds"`
	BoundaryLookahead   int `mapstructure:"boundary_lookahead" yaml:"boundary_lookahead"`
}

// FilesConfig names the durable files the run touches.
type FilesConfig struct {
	Exclusions string `mapstructure:"exclusions" yaml:"exclusions"`
	State      string `mapstructure:"state" yaml:"state"`
	KillSwitch string `mapstructure:"kill_switch" yaml:"kill_switch"`
}

// BrowserConfig holds the CDP attach point and the site-specific selectors
// the surface adapter needs. Selectors are glue; the engine never sees them.
type BrowserConfig struct {
	RemoteURL       string        `mapstructure:"remote_url" yaml:"remote_url"`
	ScopeSelector   string        `mapstructure:"scope_selector" yaml:"scope_selector"`
	ControlSelector string        `mapstructure:"control_selector" yaml:"control_selector"`
	HeadingSelector string        `mapstructure:"heading_selector" yaml:"heading_selector"`
	TotalSelector   string        `mapstructure:"total_selector" yaml:"total_selector"`
	AttachTimeout   time.Duration `mapstructure:"attach_timeout" yaml:"attach_timeout"`
	MinEventGap     time.Duration `mapstructure:"min_event_gap" yaml:"min_event_gap"`
}

// SetDefaults initializes default values for all configuration parameters.
func SetDefaults(v *viper.Viper) {
	// -- Logger --
	v.SetDefault("logger.level", "info")
	v.SetDefault("logger.format", "console")
	v.SetDefault("logger.add_source", false)
	v.SetDefault("logger.service_name", "listdrain")
	v.SetDefault("logger.log_file", "listdrain.log")
	v.SetDefault("logger.max_size", 20)
	v.SetDefault("logger.max_backups", 3)
	v.SetDefault("logger.max_age", 30)
	v.SetDefault("logger.compress", true)
	v.SetDefault("logger.colors.debug", "cyan")
	v.SetDefault("logger.colors.info", "green")
	v.SetDefault("logger.colors.warn", "yellow")
	v.SetDefault("logger.colors.error", "red")
	v.SetDefault("logger.colors.fatal", "red")

	// -- Run --
	v.SetDefault("run.simulate", true)
	v.SetDefault("run.count_unverified", true)

	// -- Limits --
	v.SetDefault("limits.max_actions_per_run", 50)
	v.SetDefault("limits.daily_cap", 80)
	v.SetDefault("limits.per_hour_cap", 30)
	v.SetDefault("limits.hour_window", time.Hour)

	// -- Delays --
	v.SetDefault("delays.min_action_delay", 20*time.Second)
	v.SetDefault("delays.max_action_delay", 60*time.Second)
	v.SetDefault("delays.kill_switch_poll", time.Second)
	v.SetDefault("delays.scroll_settle", 1200*time.Millisecond)
	v.SetDefault("delays.confirm_wait", time.Second)
	v.SetDefault("delays.verify_retries", 5)
	v.SetDefault("delays.verify_interval", 500*time.Millisecond)

	// -- Motion --
	v.SetDefault("motion.min_steps", 20)
	v.SetDefault("motion.max_steps", 32)
	v.SetDefault("motion.control_jitter_x", 80.0)
	v.SetDefault("motion.control_jitter_y", 40.0)
	v.SetDefault("motion.point_jitter", 3.0)
	v.SetDefault("motion.drift_amplitude", 1.5)
	v.SetDefault("motion.step_delay_min", 8*time.Millisecond)
	v.SetDefault("motion.step_delay_max", 30*time.Millisecond)
	v.SetDefault("motion.press_hold_min", 60*time.Millisecond)
	v.SetDefault("motion.press_hold_max", 180*time.Millisecond)

	// -- Tokens (English + Indonesian) --
	v.SetDefault("tokens.actionable", []string{"following", "mengikuti"})
	v.SetDefault("tokens.reversed", []string{"follow", "ikuti"})
	v.SetDefault("tokens.confirm", []string{"unfollow", "berhenti mengikuti", "berhenti"})
	v.SetDefault("tokens.cancel", []string{"cancel", "batal"})
	v.SetDefault("tokens.boundary", []string{
		"suggested for you",
		"disarankan",
		"disarankan untuk anda",
		"disarankan untuk kamu",
		"disarankan untukmu",
	})
	v.SetDefault("tokens.block_phrases", []string{
		"we limit how often",
		"action blocked",
		"try again later",
		"we restrict certain",
		"we've detected",
		"please verify",
		"challenge_required",
	})

	// -- Detection --
	v.SetDefault("detection.max_no_progress_rounds", 6)
	v.SetDefault("detection.boundary_lookahead", 20)

	// -- Files --
	v.SetDefault("files.exclusions", "exclusions.json")
	v.SetDefault("files.state", "state.json")
	v.SetDefault("files.kill_switch", "STOP_NOW")

	// -- Browser --
	v.SetDefault("browser.remote_url", "http://127.0.0.1:9222")
	v.SetDefault("browser.scope_selector", `div[role="dialog"]`)
	v.SetDefault("browser.control_selector", "button")
	v.SetDefault("browser.heading_selector", "h3, h4, span")
	v.SetDefault("browser.total_selector", "")
	v.SetDefault("browser.attach_timeout", 15*time.Second)
	v.SetDefault("browser.min_event_gap", 250*time.Millisecond)
}

// NewDefaultConfig creates a configuration populated with default values.
func NewDefaultConfig() *Config {
	v := viper.New()
	SetDefaults(v)

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		// Cannot happen with the defaults above, but fail loudly if it does.
		panic(fmt.Sprintf("failed to unmarshal default config: %v", err))
	}
	return &cfg
}

// NewFromViper creates a validated configuration from a viper instance.
func NewFromViper(v *viper.Viper) (*Config, error) {
	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("error unmarshaling config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return &cfg, nil
}

// Validate checks the configuration for required fields and sane values.
func (c *Config) Validate() error {
	if c.Limits.MaxActionsPerRun <= 0 {
		return fmt.Errorf("limits.max_actions_per_run must be a positive integer")
	}
	if c.Limits.DailyCap <= 0 {
		return fmt.Errorf("limits.daily_cap must be a positive integer")
	}
	if c.Limits.PerHourCap <= 0 {
		return fmt.Errorf("limits.per_hour_cap must be a positive integer")
	}
	if c.Limits.HourWindow <= 0 {
		return fmt.Errorf("limits.hour_window must be a positive duration")
	}
	if c.Delays.MinActionDelay < 0 || c.Delays.MaxActionDelay < c.Delays.MinActionDelay {
		return fmt.Errorf("delays.max_action_delay must be >= delays.min_action_delay >= 0")
	}
	if c.Delays.KillSwitchPoll <= 0 {
		return fmt.Errorf("delays.kill_switch_poll must be a positive duration")
	}
	if c.Motion.MinSteps < 2 || c.Motion.MaxSteps < c.Motion.MinSteps {
		return fmt.Errorf("motion.max_steps must be >= motion.min_steps >= 2")
	}
	if len(c.Tokens.Actionable) < 2 || len(c.Tokens.Reversed) < 2 {
		return fmt.Errorf("tokens.actionable and tokens.reversed must each carry at least two locale variants")
	}
	if c.Detection.MaxNoProgressRounds <= 0 {
		return fmt.Errorf("detection.max_no_progress_rounds must be a positive integer")
	}
	if c.Files.State == "" || c.Files.KillSwitch == "" {
		return fmt.Errorf("files.state and files.kill_switch are required")
	}
	return nil
}
