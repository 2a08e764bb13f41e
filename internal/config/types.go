package config

import "time"

// Config is the top-level netsentry configuration, corresponding to
// .netsentry.yml.
type Config struct {
	DataDir  string         `yaml:"data_dir" koanf:"data_dir"`
	Server   ServerConfig   `yaml:"server" koanf:"server"`
	Client   ClientConfig   `yaml:"client" koanf:"client"`
	Detector DetectorConfig `yaml:"detector" koanf:"detector"`
	Charts   ChartsConfig   `yaml:"charts" koanf:"charts"`
	Notify   NotifyConfig   `yaml:"notify" koanf:"notify"`
}

// ServerConfig holds the dashboard server settings.
type ServerConfig struct {
	Port            int  `yaml:"port" koanf:"port"`
	AllowAllOrigins bool `yaml:"allow_all_origins" koanf:"allow_all_origins"`
}

// ClientConfig controls how `netsentry scan` reaches a running server.
// An empty BaseURL runs the detector in-process.
type ClientConfig struct {
	BaseURL string `yaml:"base_url" koanf:"base_url"`
	// Timeout bounds a scan request; zero waits indefinitely.
	Timeout time.Duration `yaml:"timeout" koanf:"timeout"`
}

// DetectorConfig describes the capture and prediction pipeline behind
// GET /scan.
type DetectorConfig struct {
	CaptureCommand  []string      `yaml:"capture_command" koanf:"capture_command"`
	PredictCommand  []string      `yaml:"predict_command" koanf:"predict_command"`
	PredictionsFile string        `yaml:"predictions_file" koanf:"predictions_file"`
	PredictionsGlob string        `yaml:"predictions_glob" koanf:"predictions_glob"`
	AnomalyColumn   string        `yaml:"anomaly_column" koanf:"anomaly_column"`
	TimeColumn      string        `yaml:"time_column" koanf:"time_column"`
	CommandTimeout  time.Duration `yaml:"command_timeout" koanf:"command_timeout"`
}

// ChartsConfig sets the size of rendered charts and where the CLI writes
// them.
type ChartsConfig struct {
	Width     int    `yaml:"width" koanf:"width"`
	Height    int    `yaml:"height" koanf:"height"`
	OutputDir string `yaml:"output_dir" koanf:"output_dir"`
}

// NotifyConfig configures the anomaly webhook.
type NotifyConfig struct {
	WebhookURL   string `yaml:"webhook_url" koanf:"webhook_url"`
	MinAnomalies int    `yaml:"min_anomalies" koanf:"min_anomalies"`
}
