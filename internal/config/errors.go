package config

import "errors"

// Configuration validation errors returned by Config.Validate.
var (
	ErrNoDataDir           = errors.New("data_dir is required")
	ErrInvalidPort         = errors.New("invalid server.port: must be between 1 and 65535")
	ErrInvalidTimeout      = errors.New("invalid client.timeout: must be non-negative")
	ErrNoPredictions       = errors.New("detector needs predictions_file or predictions_glob")
	ErrInvalidGlob         = errors.New("invalid detector.predictions_glob")
	ErrNoAnomalyColumn     = errors.New("detector.anomaly_column is required")
	ErrInvalidCommandLimit = errors.New("invalid detector.command_timeout: must be non-negative")
	ErrInvalidChartSize    = errors.New("invalid charts size: width and height must be positive")
	ErrInvalidMinAnomalies = errors.New("invalid notify.min_anomalies: must be positive")
)
