package config

import (
	"fmt"

	"github.com/spf13/viper"
)

// Config holds the entire application configuration.
type Config struct {
	Logger   LoggerConfig   `mapstructure:"logger" yaml:"logger"`
	Database DatabaseConfig `mapstructure:"database" yaml:"database"`
	Forecast ForecastConfig `mapstructure:"forecast" yaml:"forecast"`
	Gate     GateConfig     `mapstructure:"gate" yaml:"gate"`
}

// LoggerConfig holds all the configuration for the logger.
type LoggerConfig struct {
	Level       string `mapstructure:"level" yaml:"level"`
	Format      string `mapstructure:"format" yaml:"format"`
	AddSource   bool   `mapstructure:"add_source" yaml:"add_source"`
	ServiceName string `mapstructure:"service_name" yaml:"service_name"`
	LogFile     string `mapstructure:"log_file" yaml:"log_file"`
	MaxSize     int    `mapstructure:"max_size" yaml:"max_size"`
	MaxBackups  int    `mapstructure:"max_backups" yaml:"max_backups"`
	MaxAge      int    `mapstructure:"max_age" yaml:"max_age"`
	Compress    bool   `mapstructure:"compress" yaml:"compress"`
}

// DatabaseConfig holds the Postgres connection details.
type DatabaseConfig struct {
	URL string `mapstructure:"url" yaml:"url"`
}

// ForecastConfig tunes the forecasting engine.
type ForecastConfig struct {
	// HorizonDays is the number of future days the predictor projects.
	HorizonDays int `mapstructure:"horizon_days" yaml:"horizon_days"`
	// HistoryWindowDays bounds how far back historical reads go.
	HistoryWindowDays int `mapstructure:"history_window_days" yaml:"history_window_days"`
	// MaxRecommendations caps the generated recommendation list.
	MaxRecommendations int `mapstructure:"max_recommendations" yaml:"max_recommendations"`
}

// GateConfig exposes the reward gate's heuristic tuning values. These are
// configuration, not algorithmic truths; the defaults match the observed
// production behavior.
type GateConfig struct {
	// BaseMinimumDays is the starting adaptive minimum before compliance
	// adjustments.
	BaseMinimumDays int `mapstructure:"base_minimum_days" yaml:"base_minimum_days"`
	// MinimumFloor and MinimumCeiling clamp the adaptive minimum.
	MinimumFloor   int `mapstructure:"minimum_floor" yaml:"minimum_floor"`
	MinimumCeiling int `mapstructure:"minimum_ceiling" yaml:"minimum_ceiling"`
	// HistoricalMaxDay is the cycle day at which the roll probability
	// saturates.
	HistoricalMaxDay int `mapstructure:"historical_max_day" yaml:"historical_max_day"`
	// RampSlope scales the linear probability ramp between the adaptive
	// minimum and HistoricalMaxDay.
	RampSlope float64 `mapstructure:"ramp_slope" yaml:"ramp_slope"`
	// StrongSignalBonus and WeakSignalPenalty adjust the ramp for
	// engagement quality.
	StrongSignalBonus float64 `mapstructure:"strong_signal_bonus" yaml:"strong_signal_bonus"`
	WeakSignalPenalty float64 `mapstructure:"weak_signal_penalty" yaml:"weak_signal_penalty"`
	// ProbabilityFloor and ProbabilityCeiling clamp the ramp output.
	ProbabilityFloor   float64 `mapstructure:"probability_floor" yaml:"probability_floor"`
	ProbabilityCeiling float64 `mapstructure:"probability_ceiling" yaml:"probability_ceiling"`
}

// SetDefaults initializes default values for all configuration parameters.
func SetDefaults(v *viper.Viper) {
	// -- Logger --
	v.SetDefault("logger.level", "info")
	v.SetDefault("logger.format", "console")
	v.SetDefault("logger.add_source", false)
	v.SetDefault("logger.service_name", "momentum")
	v.SetDefault("logger.log_file", "")
	v.SetDefault("logger.max_size", 100)
	v.SetDefault("logger.max_backups", 5)
	v.SetDefault("logger.max_age", 30)
	v.SetDefault("logger.compress", true)

	// -- Forecast --
	v.SetDefault("forecast.horizon_days", 14)
	v.SetDefault("forecast.history_window_days", 90)
	v.SetDefault("forecast.max_recommendations", 5)

	// -- Gate --
	v.SetDefault("gate.base_minimum_days", 3)
	v.SetDefault("gate.minimum_floor", 2)
	v.SetDefault("gate.minimum_ceiling", 10)
	v.SetDefault("gate.historical_max_day", 10)
	v.SetDefault("gate.ramp_slope", 0.5)
	v.SetDefault("gate.strong_signal_bonus", 0.2)
	v.SetDefault("gate.weak_signal_penalty", 0.1)
	v.SetDefault("gate.probability_floor", 0.05)
	v.SetDefault("gate.probability_ceiling", 0.9)
}

// NewDefaultConfig creates a configuration populated with default values.
func NewDefaultConfig() *Config {
	v := viper.New()
	SetDefaults(v)

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		// Cannot happen with defaults alone.
		panic(fmt.Sprintf("failed to unmarshal default config: %v", err))
	}
	return &cfg
}

// NewConfigFromViper creates a configuration instance from a viper object.
func NewConfigFromViper(v *viper.Viper) (*Config, error) {
	var cfg Config

	// The database URL carries credentials; prefer the environment.
	v.BindEnv("database.url", "MOMENTUM_DATABASE_URL")

	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("error unmarshaling config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return &cfg, nil
}

// Validate checks the configuration for sane values.
func (c *Config) Validate() error {
	if c.Forecast.HorizonDays <= 0 {
		return fmt.Errorf("forecast.horizon_days must be a positive integer")
	}
	if c.Forecast.HistoryWindowDays <= 0 {
		return fmt.Errorf("forecast.history_window_days must be a positive integer")
	}
	if c.Forecast.MaxRecommendations <= 0 {
		return fmt.Errorf("forecast.max_recommendations must be a positive integer")
	}
	return c.Gate.Validate()
}

// Validate checks the gate tuning values.
func (g *GateConfig) Validate() error {
	if g.MinimumFloor < 0 || g.MinimumCeiling < g.MinimumFloor {
		return fmt.Errorf("gate minimum bounds are inverted: floor %d, ceiling %d", g.MinimumFloor, g.MinimumCeiling)
	}
	if g.BaseMinimumDays < g.MinimumFloor || g.BaseMinimumDays > g.MinimumCeiling {
		return fmt.Errorf("gate.base_minimum_days %d outside [%d, %d]", g.BaseMinimumDays, g.MinimumFloor, g.MinimumCeiling)
	}
	if g.HistoricalMaxDay <= 0 {
		return fmt.Errorf("gate.historical_max_day must be a positive integer")
	}
	if g.RampSlope <= 0 {
		return fmt.Errorf("gate.ramp_slope must be positive")
	}
	if g.ProbabilityFloor < 0 || g.ProbabilityCeiling > 1 || g.ProbabilityCeiling < g.ProbabilityFloor {
		return fmt.Errorf("gate probability bounds must satisfy 0 <= floor <= ceiling <= 1")
	}
	return nil
}
