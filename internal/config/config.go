package config

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/teambition/rrule-go"
	"gopkg.in/yaml.v3"

	"github.com/tackroom/fairshare/pkg/core/fairness"
	"github.com/tackroom/fairshare/pkg/core/model"
	"github.com/tackroom/fairshare/pkg/core/schedule"
)

// RoutineRule defines a recurring duty that generateInstances expands into
// work instances
type RoutineRule struct {
	Name            string  `yaml:"name" validate:"required"`
	Kind            string  `yaml:"kind,omitempty" validate:"omitempty,oneof=shift routine"`
	RRule           string  `yaml:"rrule" validate:"required"`
	StartTime       string  `yaml:"startTime" validate:"required"`
	DurationMinutes int     `yaml:"durationMinutes,omitempty" validate:"omitempty,min=0"`
	PointValue      float64 `yaml:"pointValue" validate:"min=0"`
}

// DatabaseConfig selects the storage backend and its connection details
type DatabaseConfig struct {
	Backend       string `yaml:"backend" validate:"required,oneof=memory postgres mongodb"`
	PostgresURL   string `yaml:"postgresURL,omitempty"`
	MongoURI      string `yaml:"mongoURI,omitempty"`
	MongoDatabase string `yaml:"mongoDatabase,omitempty"`
}

// ServerConfig holds the HTTP API settings
type ServerConfig struct {
	Addr string `yaml:"addr,omitempty"`
}

// Config represents the application configuration
type Config struct {
	GroupID                string         `yaml:"groupID" validate:"required"`
	DefaultAlgorithm       string         `yaml:"defaultAlgorithm,omitempty" validate:"omitempty,oneof=draft_pick points_balance fair_rotation"`
	MemoryHorizonDays      int            `yaml:"memoryHorizonDays,omitempty" validate:"min=0"`
	ResetPolicy            string         `yaml:"resetPolicy,omitempty" validate:"omitempty,oneof=rolling periodic"`
	ResetDate              string         `yaml:"resetDate,omitempty"`
	DistributionWindowDays int            `yaml:"distributionWindowDays,omitempty" validate:"min=0"`
	EscalationWindowDays   int            `yaml:"escalationWindowDays,omitempty" validate:"min=0"`
	Routines               []RoutineRule  `yaml:"routines,omitempty" validate:"dive"`
	Database               DatabaseConfig `yaml:"database"`
	Server                 ServerConfig   `yaml:"server,omitempty"`
}

var validate *validator.Validate

func init() {
	validate = validator.New()
}

// Load loads and validates the configuration from fairshare_config.yaml.
// FAIRSHARE_CONFIG overrides the search path; otherwise the current directory
// is checked first, then the user's home directory.
func Load() (*Config, error) {
	if path := os.Getenv("FAIRSHARE_CONFIG"); path != "" {
		return LoadFromPath(path)
	}

	configPath, err := findConfigFile()
	if err != nil {
		return nil, fmt.Errorf("failed to find config file: %w", err)
	}

	return LoadFromPath(configPath)
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

	applyDefaults(&cfg)
	applyEnvOverrides(&cfg)

	if err := Validate(&cfg); err != nil {
		return nil, err
	}

	return &cfg, nil
}

// applyDefaults fills in the optional settings most deployments never touch
func applyDefaults(cfg *Config) {
	if cfg.DefaultAlgorithm == "" {
		cfg.DefaultAlgorithm = string(model.AlgorithmPointsBalance)
	}
	if cfg.ResetPolicy == "" {
		cfg.ResetPolicy = string(fairness.PolicyRolling)
	}
	if cfg.DistributionWindowDays == 0 {
		cfg.DistributionWindowDays = 14
	}
	if cfg.EscalationWindowDays == 0 {
		cfg.EscalationWindowDays = 7
	}
	if cfg.Database.Backend == "" {
		cfg.Database.Backend = "memory"
	}
	if cfg.Server.Addr == "" {
		cfg.Server.Addr = ":8080"
	}
}

// applyEnvOverrides lets connection strings live in the environment instead
// of the config file
func applyEnvOverrides(cfg *Config) {
	if v := os.Getenv("POSTGRES_URL"); v != "" {
		cfg.Database.PostgresURL = v
	}
	if v := os.Getenv("MONGO_URI"); v != "" {
		cfg.Database.MongoURI = v
	}
	if v := os.Getenv("MONGO_DATABASE"); v != "" {
		cfg.Database.MongoDatabase = v
	}
}

// Validate validates the configuration struct and checks rrule and clock time syntax
func Validate(cfg *Config) error {
	// Run struct validation
	if err := validate.Struct(cfg); err != nil {
		return fmt.Errorf("config validation failed: %w", err)
	}

	// Validate rrule and start time syntax for each routine
	for i, routine := range cfg.Routines {
		if _, err := rrule.StrToRRule(routine.RRule); err != nil {
			return fmt.Errorf("invalid rrule in routines[%d]: %w", i, err)
		}
		if _, err := time.Parse("15:04", routine.StartTime); err != nil {
			return fmt.Errorf("invalid startTime in routines[%d]: %w", i, err)
		}
	}

	if cfg.ResetPolicy == string(fairness.PolicyPeriodic) {
		if cfg.ResetDate == "" {
			return fmt.Errorf("config validation failed: resetDate is required when resetPolicy is periodic")
		}
		if _, err := time.Parse("2006-01-02", cfg.ResetDate); err != nil {
			return fmt.Errorf("invalid resetDate (want YYYY-MM-DD): %w", err)
		}
	}

	switch cfg.Database.Backend {
	case "postgres":
		if cfg.Database.PostgresURL == "" {
			return fmt.Errorf("config validation failed: database.postgresURL is required when backend is postgres")
		}
	case "mongodb":
		if cfg.Database.MongoURI == "" || cfg.Database.MongoDatabase == "" {
			return fmt.Errorf("config validation failed: database.mongoURI and database.mongoDatabase are required when backend is mongodb")
		}
	}

	return nil
}

// Horizon returns the fairness horizon the configuration describes.
// Validate guarantees ResetDate parses, so the error is dropped here.
func (c *Config) Horizon() fairness.Horizon {
	h := fairness.Horizon{
		Policy: fairness.Policy(c.ResetPolicy),
		Days:   c.MemoryHorizonDays,
	}
	if c.ResetPolicy == string(fairness.PolicyPeriodic) && c.ResetDate != "" {
		resetAt, err := time.Parse("2006-01-02", c.ResetDate)
		if err == nil {
			h.ResetAt = resetAt
		}
	}
	return h
}

// ScheduleRules converts the configured routines into the expander's rule type
func (c *Config) ScheduleRules() []schedule.RoutineRule {
	rules := make([]schedule.RoutineRule, len(c.Routines))
	for i, r := range c.Routines {
		rules[i] = schedule.RoutineRule{
			Name:            r.Name,
			Kind:            model.InstanceKind(r.Kind),
			RRule:           r.RRule,
			StartTime:       r.StartTime,
			DurationMinutes: r.DurationMinutes,
			PointValue:      r.PointValue,
		}
	}
	return rules
}

// findConfigFile searches for fairshare_config.yaml in current directory and home directory
func findConfigFile() (string, error) {
	configFileName := "fairshare_config.yaml"

	// Check current directory
	if _, err := os.Stat(configFileName); err == nil {
		return configFileName, nil
	}

	// Check home directory
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("failed to get home directory: %w", err)
	}

	homeConfigPath := filepath.Join(homeDir, configFileName)
	if _, err := os.Stat(homeConfigPath); err == nil {
		return homeConfigPath, nil
	}

	return "", fmt.Errorf("config file not found in current directory or home directory")
}
