package config

import (
	"fmt"
	"os"
	"time"

	"github.com/spf13/viper"

	"github.com/JameDevOfficial/WebUntisTest/pkg/dateutil"
)

// MaxDates is the maximum number of week dates a single run may fetch.
const MaxDates = 4

// Config represents application configuration
type Config struct {
	Untis  UntisConfig  `mapstructure:"untis"`
	Output OutputConfig `mapstructure:"output"`
	Format FormatConfig `mapstructure:"format"`
	Merge  MergeConfig  `mapstructure:"merge"`
	Log    LogConfig    `mapstructure:"log"`
}

// UntisConfig represents the WebUntis connection configuration
type UntisConfig struct {
	BaseURL     string   `mapstructure:"base_url"`
	School      string   `mapstructure:"school"`
	Username    string   `mapstructure:"username"`
	Password    string   `mapstructure:"password"`
	ElementType int      `mapstructure:"element_type"`
	ElementID   int      `mapstructure:"element_id"`
	Dates       []string `mapstructure:"dates"` // one fetch per date, max 4
}

// OutputConfig represents calendar output configuration
type OutputConfig struct {
	Path         string `mapstructure:"path"`
	CalendarName string `mapstructure:"calendar_name"`
	Timezone     string `mapstructure:"timezone"` // fixed named zone for event timestamps
}

// FormatConfig represents the synthesis/splitting switches
type FormatConfig struct {
	SkipSummaries    bool              `mapstructure:"skip_summaries"`
	NoGapSplit       bool              `mapstructure:"no_gap_split"`
	SplitByCourse    bool              `mapstructure:"split_by_course"`
	SplitByOverrides bool              `mapstructure:"split_by_overrides"`
	AllFormats       bool              `mapstructure:"all_formats"`
	Overrides        map[string]string `mapstructure:"overrides"` // course short name -> replacement long name
	Locale           string            `mapstructure:"locale"`
}

// MergeConfig represents the incremental merge configuration
type MergeConfig struct {
	PreviousFile string `mapstructure:"previous_file"`
}

// LogConfig represents logging configuration
type LogConfig struct {
	File  string `mapstructure:"file"`
	Level string `mapstructure:"level"`
}

// Load loads configuration from file
func Load(configPath string) (*Config, error) {
	v := viper.New()

	// Set config file
	if configPath != "" {
		v.SetConfigFile(configPath)
	} else {
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
		v.AddConfigPath("$HOME/.untiscal")
		v.AddConfigPath("/etc/untiscal")
	}

	v.SetDefault("output.timezone", "Europe/Berlin")
	v.SetDefault("output.calendar_name", "Timetable")

	// Read environment variables
	v.AutomaticEnv()

	// Read config file
	if err := v.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("failed to read config: %w", err)
	}

	var config Config
	if err := v.Unmarshal(&config); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	config.ExpandEnvVars()

	// Validate config
	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	return &config, nil
}

// Validate validates the configuration. All rejection happens here,
// before any network activity.
func (c *Config) Validate() error {
	if c.Untis.BaseURL == "" {
		return fmt.Errorf("untis.base_url is required")
	}
	if c.Untis.School == "" {
		return fmt.Errorf("untis.school is required")
	}
	if c.Untis.Username == "" {
		return fmt.Errorf("untis.username is required")
	}
	if c.Untis.ElementType <= 0 {
		return fmt.Errorf("untis.element_type must be positive")
	}
	if c.Untis.ElementID <= 0 {
		return fmt.Errorf("untis.element_id must be positive")
	}
	if len(c.Untis.Dates) == 0 {
		return fmt.Errorf("untis.dates must contain at least one date")
	}
	if len(c.Untis.Dates) > MaxDates {
		return fmt.Errorf("untis.dates must contain at most %d dates, got %d", MaxDates, len(c.Untis.Dates))
	}
	if _, err := c.Dates(); err != nil {
		return err
	}

	if c.Output.Path == "" {
		return fmt.Errorf("output.path is required")
	}
	if _, err := time.LoadLocation(c.Output.Timezone); err != nil {
		return fmt.Errorf("output.timezone %q is not a valid zone: %w", c.Output.Timezone, err)
	}

	if c.Format.SplitByCourse && c.Format.SplitByOverrides {
		return fmt.Errorf("format.split_by_course and format.split_by_overrides are mutually exclusive")
	}
	if c.Format.SplitByOverrides && len(c.Format.Overrides) == 0 {
		return fmt.Errorf("format.split_by_overrides requires a non-empty format.overrides map")
	}

	return nil
}

// Dates parses the configured fetch dates in request order
func (c *Config) Dates() ([]time.Time, error) {
	dates := make([]time.Time, 0, len(c.Untis.Dates))
	for _, s := range c.Untis.Dates {
		d, err := dateutil.ParseDate(s)
		if err != nil {
			return nil, fmt.Errorf("untis.dates: %w", err)
		}
		dates = append(dates, d)
	}
	return dates, nil
}

// ExpandEnvVars expands environment variables in credential strings so
// secrets can be kept out of the config file.
func (c *Config) ExpandEnvVars() {
	c.Untis.Username = os.ExpandEnv(c.Untis.Username)
	c.Untis.Password = os.ExpandEnv(c.Untis.Password)
	c.Untis.School = os.ExpandEnv(c.Untis.School)
}
