package config

import (
	"path/filepath"
	"time"

	"github.com/adrg/xdg"
)

// AppName names the data directory.
const AppName = "netsentry"

// DefaultPath is the config file looked up in the working directory.
const DefaultPath = ".netsentry.yml"

// DefaultDataDir returns $XDG_DATA_HOME/netsentry.
func DefaultDataDir() string {
	return filepath.Join(xdg.DataHome, AppName)
}

// DefaultConfig returns a Config with sensible defaults. The detector runs
// the capture and prediction scripts of the bundled model.
func DefaultConfig() *Config {
	return &Config{
		DataDir: DefaultDataDir(),
		Server: ServerConfig{
			Port: 5000,
		},
		Detector: DetectorConfig{
			CaptureCommand:  []string{"python", "src/live_capture.py"},
			PredictCommand:  []string{"python", "src/predict.py"},
			PredictionsFile: "predictions.csv",
			AnomalyColumn:   "anomaly",
			TimeColumn:      "time",
			CommandTimeout:  5 * time.Minute,
		},
		Charts: ChartsConfig{
			Width:     640,
			Height:    360,
			OutputDir: "charts",
		},
		Notify: NotifyConfig{
			MinAnomalies: 1,
		},
	}
}

// DatabasePath is where scan history and preferences are kept.
func (c *Config) DatabasePath() string {
	return filepath.Join(c.DataDir, "netsentry.db")
}
