package config

import (
	"fmt"
	"os"
	"strings"

	"github.com/bmatcuk/doublestar/v4"
	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
	yamlv3 "gopkg.in/yaml.v3"
)

const envPrefix = "NETSENTRY_"

// sections are the nested keys environment variables can address, e.g.
// NETSENTRY_SERVER_PORT -> server.port.
var sections = []string{"server", "client", "detector", "charts", "notify"}

// Load reads configuration from the given YAML file, then overlays
// environment variable overrides (NETSENTRY_*).
func Load(path string) (*Config, error) {
	k := koanf.New(".")

	// Start from defaults.
	cfg := DefaultConfig()

	// Load YAML file if it exists.
	if _, err := os.Stat(path); err == nil {
		if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
			return nil, fmt.Errorf("reading config %s: %w", path, err)
		}
	} else if !os.IsNotExist(err) {
		return nil, fmt.Errorf("accessing config %s: %w", path, err)
	}

	if err := k.Load(env.Provider(envPrefix, ".", envKey), nil); err != nil {
		return nil, fmt.Errorf("loading env overrides: %w", err)
	}

	if err := k.Unmarshal("", cfg); err != nil {
		return nil, fmt.Errorf("unmarshalling config: %w", err)
	}

	return cfg, nil
}

// envKey maps NETSENTRY_DETECTOR_TIME_COLUMN to detector.time_column.
func envKey(s string) string {
	key := strings.ToLower(strings.TrimPrefix(s, envPrefix))
	for _, section := range sections {
		if rest, ok := strings.CutPrefix(key, section+"_"); ok {
			return section + "." + rest
		}
	}
	return key
}

// Save writes the configuration to the given YAML file path.
func (c *Config) Save(path string) error {
	data, err := yamlv3.Marshal(c)
	if err != nil {
		return fmt.Errorf("marshalling config: %w", err)
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("writing config to %s: %w", path, err)
	}
	return nil
}

// Validate checks that the configuration contains valid values.
func (c *Config) Validate() error {
	if c.DataDir == "" {
		return ErrNoDataDir
	}
	if c.Server.Port < 1 || c.Server.Port > 65535 {
		return ErrInvalidPort
	}
	if c.Client.Timeout < 0 {
		return ErrInvalidTimeout
	}

	d := c.Detector
	if d.PredictionsFile == "" && d.PredictionsGlob == "" {
		return ErrNoPredictions
	}
	if d.PredictionsGlob != "" && !doublestar.ValidatePattern(d.PredictionsGlob) {
		return fmt.Errorf("%w: %q", ErrInvalidGlob, d.PredictionsGlob)
	}
	if d.AnomalyColumn == "" {
		return ErrNoAnomalyColumn
	}
	if d.CommandTimeout < 0 {
		return ErrInvalidCommandLimit
	}

	if c.Charts.Width <= 0 || c.Charts.Height <= 0 {
		return ErrInvalidChartSize
	}
	if c.Notify.WebhookURL != "" && c.Notify.MinAnomalies < 1 {
		return ErrInvalidMinAnomalies
	}
	return nil
}
