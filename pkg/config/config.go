// Package config provides configuration loading and management for spatialrpe.
// It handles loading configuration from YAML files, validation, and default values.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"

	"spatialrpe/internal/models"
)

// Config represents the analysis configuration loaded from YAML
type Config struct {
	// Analysis parameters
	Analysis struct {
		// Algorithm names the estimator. It is informational: every
		// algorithm is served by inverse distance weighting.
		Algorithm string `yaml:"algorithm" validate:"required"`

		// Resolution is the lattice step in coordinate units (degrees)
		Resolution float64 `yaml:"resolution" validate:"gt=0"`

		// Classes is the number of ordinal classes for the classified surface
		Classes int `yaml:"classes" validate:"gt=0"`

		// Classification selects how class breakpoints are placed
		Classification string `yaml:"classification" validate:"oneof=equal quantile sorted-index jenks natural-breaks"`

		// Folds is the k of k-fold cross-validation
		Folds int `yaml:"folds" validate:"gte=2"`

		// Power is the inverse distance weighting exponent
		Power float64 `yaml:"power" validate:"gt=0"`
	} `yaml:"analysis"`

	// Reliable prediction extent parameters
	Reliability struct {
		// Method is one of convex-hull, distance, kernel-density, uncertainty, combined
		Method string `yaml:"method" validate:"oneof=convex-hull distance kernel-density uncertainty combined"`

		// Buffer is the hull buffer distance; the distance-based methods use
		// multiples of it
		Buffer float64 `yaml:"buffer" validate:"gte=0"`

		// UncertaintyThreshold is the score below which a cell is reliable
		UncertaintyThreshold float64 `yaml:"uncertaintyThreshold" validate:"gte=0,lte=1"`
	} `yaml:"reliability"`

	// Output parameters
	Output struct {
		// Verbose controls the level of logging output
		Verbose bool `yaml:"verbose"`

		// GeoJSON is the path of the GeoJSON export; empty disables it
		GeoJSON string `yaml:"geojson"`

		// ASCIIGrid is the path of the ESRI ASCII grid export of the
		// continuous surface; empty disables it
		ASCIIGrid string `yaml:"asciiGrid"`
	} `yaml:"output"`
}

var validate = validator.New()

// DefaultConfig returns a configuration with default values
func DefaultConfig() *Config {
	cfg := &Config{}

	cfg.Analysis.Algorithm = "idw"
	cfg.Analysis.Resolution = 0.01
	cfg.Analysis.Classes = 5
	cfg.Analysis.Classification = "equal"
	cfg.Analysis.Folds = 5
	cfg.Analysis.Power = 2

	cfg.Reliability.Method = "convex-hull"
	cfg.Reliability.Buffer = 0.01
	cfg.Reliability.UncertaintyThreshold = 0.5

	cfg.Output.Verbose = false

	return cfg
}

// Validate checks the configuration. Failures wrap models.ErrInvalidConfig.
func (c *Config) Validate() error {
	err := validate.Struct(c)
	if err == nil {
		return nil
	}

	var verrs validator.ValidationErrors
	if errors.As(err, &verrs) && len(verrs) > 0 {
		fe := verrs[0]
		return fmt.Errorf("%w: %s fails %q (value %v)", models.ErrInvalidConfig, fe.Namespace(), fe.Tag(), fe.Value())
	}
	return fmt.Errorf("%w: %v", models.ErrInvalidConfig, err)
}

// LoadConfig loads configuration from a YAML file
// If the file doesn't exist, it returns the default configuration
func LoadConfig(configPath string) (*Config, error) {
	cfg := DefaultConfig()

	if _, err := os.Stat(configPath); os.IsNotExist(err) {
		return cfg, nil
	}

	data, err := os.ReadFile(configPath)
	if err != nil {
		return nil, fmt.Errorf("error reading config file: %w", err)
	}

	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("error parsing config file: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config file %s: %w", configPath, err)
	}

	return cfg, nil
}

// SaveConfig saves the configuration to a YAML file
func SaveConfig(cfg *Config, configPath string) error {
	dir := filepath.Dir(configPath)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("error creating config directory: %w", err)
	}

	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("error marshaling config: %w", err)
	}

	if err := os.WriteFile(configPath, data, 0644); err != nil {
		return fmt.Errorf("error writing config file: %w", err)
	}

	return nil
}

// CreateDefaultConfigFile creates a default configuration file at the specified path
func CreateDefaultConfigFile(configPath string) error {
	cfg := DefaultConfig()
	return SaveConfig(cfg, configPath)
}
