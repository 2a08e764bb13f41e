package cmd

import (
	"context"
	"fmt"

	"github.com/ziadkadry99/netsentry/internal/chart"
	"github.com/ziadkadry99/netsentry/internal/config"
	"github.com/ziadkadry99/netsentry/internal/dashboard"
	"github.com/ziadkadry99/netsentry/internal/db"
	"github.com/ziadkadry99/netsentry/internal/detector"
	"github.com/ziadkadry99/netsentry/internal/scan"
)

// loadConfig loads and validates the config file named by --config.
func loadConfig() (*config.Config, error) {
	cfg, err := config.Load(cfgFile)
	if err != nil {
		return nil, fmt.Errorf("loading config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	return cfg, nil
}

// openDatabase opens the database in the configured data directory.
func openDatabase(cfg *config.Config) (*db.DB, error) {
	database, err := db.Open(cfg.DatabasePath())
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}
	return database, nil
}

// newDetector creates the /scan backend from config. Commands run in the
// working directory.
func newDetector(cfg *config.Config) *detector.Detector {
	d := cfg.Detector
	return detector.New(detector.Config{
		CaptureCommand:  d.CaptureCommand,
		PredictCommand:  d.PredictCommand,
		PredictionsFile: d.PredictionsFile,
		PredictionsGlob: d.PredictionsGlob,
		AnomalyColumn:   d.AnomalyColumn,
		TimeColumn:      d.TimeColumn,
		CommandTimeout:  d.CommandTimeout,
	})
}

// hookedScanner scans in-process and passes every outcome to hooks, the
// same way GET /scan does.
func hookedScanner(det *detector.Detector, hooks ...detector.Hook) dashboard.ScannerFunc {
	return func(ctx context.Context) (*scan.Result, error) {
		res, err := det.Scan(ctx)
		if err != nil {
			return nil, err
		}
		for _, hook := range hooks {
			hook(ctx, res)
		}
		return res, nil
	}
}

func chartSize(cfg *config.Config) chart.Size {
	return chart.Size{Width: cfg.Charts.Width, Height: cfg.Charts.Height}
}
