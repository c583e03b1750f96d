package config

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/teambition/rrule-go"
	"gopkg.in/yaml.v3"
)

const configBaseName = "call_rota_config"

// Defaults for optional settings
const (
	DefaultGmailUserID      = "me"
	DefaultLeaveLabel       = "INBOX"
	DefaultLeaveMaxMessages = 20
)

// SchedulerConfig tunes the multi-trial scheduler
type SchedulerConfig struct {
	Trials               int      `yaml:"trials,omitempty" validate:"omitempty,min=1"`
	Workers              int      `yaml:"workers,omitempty" validate:"omitempty,min=1"`
	TimeBudget           string   `yaml:"timeBudget,omitempty"`
	Seed                 uint64   `yaml:"seed,omitempty"`
	FairnessWeight       *float64 `yaml:"fairnessWeight,omitempty" validate:"omitempty,min=0,max=1"`
	SoftConstraintWeight *float64 `yaml:"softConstraintWeight,omitempty" validate:"omitempty,min=0,max=1"`
	PGY4Cap              int      `yaml:"pgy4Cap" validate:"required,min=1"`
}

// Budget returns the parsed time budget, or zero if unset
func (s SchedulerConfig) Budget() time.Duration {
	d, _ := time.ParseDuration(s.TimeBudget)
	return d
}

// Weights returns the fairness and soft-constraint weights. Zero values let the scheduler
// apply its defaults.
func (s SchedulerConfig) Weights() (fairness, soft float64) {
	if s.FairnessWeight != nil {
		fairness = *s.FairnessWeight
	}
	if s.SoftConstraintWeight != nil {
		soft = *s.SoftConstraintWeight
	}
	return fairness, soft
}

// RecurringPreference is a soft constraint that repeats, e.g. every Tuesday for a clinic
type RecurringPreference struct {
	Resident string `yaml:"resident" validate:"required"`
	RRule    string `yaml:"rrule" validate:"required"`
}

// Config represents the application configuration
type Config struct {
	AcademicYearStart    int                   `yaml:"academicYearStart" validate:"required,min=2000,max=2100"`
	Scheduler            SchedulerConfig       `yaml:"scheduler"`
	RecurringPreferences []RecurringPreference `yaml:"recurringPreferences,omitempty" validate:"dive"`
	DatabaseURL          string                `yaml:"databaseURL,omitempty" validate:"omitempty,url"`
	CalendarSheetID      string                `yaml:"calendarSheetID,omitempty"`
	ScheduleTab          string                `yaml:"scheduleTab,omitempty"`
	GmailUserID          string                `yaml:"gmailUserID,omitempty"`
	LeaveLabel           string                `yaml:"leaveLabel,omitempty"`
	LeaveMaxMessages     int64                 `yaml:"leaveMaxMessages,omitempty" validate:"omitempty,min=1"`
}

var validate *validator.Validate

func init() {
	validate = validator.New()
}

// Load loads and validates call_rota_config.yaml from the current directory or home directory
func Load() (*Config, error) {
	return LoadWithEnv("")
}

// LoadWithEnv loads call_rota_config.<env>.yaml, or call_rota_config.yaml when env is empty
func LoadWithEnv(env string) (*Config, error) {
	name := configBaseName + ".yaml"
	if env != "" {
		name = configBaseName + "." + env + ".yaml"
	}

	path, err := findFile(name)
	if err != nil {
		return nil, fmt.Errorf("failed to find config file: %w", err)
	}

	return LoadFromPath(path)
}

// LoadFromPath loads and validates the configuration from a specific path
func LoadFromPath(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}

	if err := Validate(&cfg); err != nil {
		return nil, err
	}
	cfg.applyDefaults()

	return &cfg, nil
}

// Validate checks struct rules, the time budget, weight sum and rrule syntax
func Validate(cfg *Config) error {
	if err := validate.Struct(cfg); err != nil {
		return fmt.Errorf("config validation failed: %w", err)
	}

	if cfg.Scheduler.TimeBudget != "" {
		d, err := time.ParseDuration(cfg.Scheduler.TimeBudget)
		if err != nil || d <= 0 {
			return fmt.Errorf("invalid scheduler.timeBudget %q", cfg.Scheduler.TimeBudget)
		}
	}

	fw, sw := cfg.Scheduler.FairnessWeight, cfg.Scheduler.SoftConstraintWeight
	if (fw == nil) != (sw == nil) {
		return fmt.Errorf("scheduler.fairnessWeight and scheduler.softConstraintWeight must be set together")
	}
	if fw != nil {
		if sum := *fw + *sw; sum < 0.999999 || sum > 1.000001 {
			return fmt.Errorf("scheduler weights must sum to 1, got %v", sum)
		}
	}

	for i, pref := range cfg.RecurringPreferences {
		if _, err := rrule.StrToRRule(pref.RRule); err != nil {
			return fmt.Errorf("invalid rrule in recurringPreferences[%d]: %w", i, err)
		}
	}

	return nil
}

func (c *Config) applyDefaults() {
	if c.GmailUserID == "" {
		c.GmailUserID = DefaultGmailUserID
	}
	if c.LeaveLabel == "" {
		c.LeaveLabel = DefaultLeaveLabel
	}
	if c.LeaveMaxMessages == 0 {
		c.LeaveMaxMessages = DefaultLeaveMaxMessages
	}
}

// findFile looks for name in the current directory, then the home directory
func findFile(name string) (string, error) {
	if _, err := os.Stat(name); err == nil {
		return name, nil
	}

	homeDir, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("failed to get home directory: %w", err)
	}

	homePath := filepath.Join(homeDir, name)
	if _, err := os.Stat(homePath); err == nil {
		return homePath, nil
	}

	return "", fmt.Errorf("%s not found in current directory or home directory", name)
}
