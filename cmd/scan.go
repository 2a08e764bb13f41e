package cmd

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/ziadkadry99/netsentry/internal/chart"
	"github.com/ziadkadry99/netsentry/internal/dashboard"
	"github.com/ziadkadry99/netsentry/internal/history"
	"github.com/ziadkadry99/netsentry/internal/notifications"
	"github.com/ziadkadry99/netsentry/internal/prefs"
	"github.com/ziadkadry99/netsentry/internal/progress"
	"github.com/ziadkadry99/netsentry/internal/scan"
)

var errScanFailed = errors.New("scan failed")

var (
	scanServer string
	scanOut    string
)

var scanCmd = &cobra.Command{
	Use:   "scan",
	Short: "Run one scan and write its charts",
	Long: `Runs one network scan from the terminal. With --server (or client.base_url)
the scan is requested from a running netsentry server; otherwise the detector
pipeline runs in-process and the outcome is recorded in the scan history.

The traffic and distribution charts are written as PNG files to --out
(charts.output_dir), drawn in the theme set with "netsentry theme".`,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}
		if scanServer != "" {
			cfg.Client.BaseURL = scanServer
		}
		if scanOut != "" {
			cfg.Charts.OutputDir = scanOut
		}

		database, err := openDatabase(cfg)
		if err != nil {
			return err
		}
		defer database.Close()

		var scanner dashboard.Scanner
		if cfg.Client.BaseURL != "" {
			scanner = scan.NewClient(cfg.Client.BaseURL, cfg.Client.Timeout)
		} else {
			hist := history.NewStore(database)
			notifier := notifications.NewDispatcher(cfg.Notify.WebhookURL, cfg.Notify.MinAnomalies)
			scanner = hookedScanner(newDetector(cfg), hist.Hook, notifier.Hook)
		}

		linePath := filepath.Join(cfg.Charts.OutputDir, "traffic.png")
		piePath := filepath.Join(cfg.Charts.OutputDir, "distribution.png")
		term := dashboard.NewTerminal(os.Stdout)
		view := term.View(progress.NewIndicator(),
			chart.NewFileSurface(linePath),
			chart.NewFileSurface(piePath),
		)
		ctrl := dashboard.NewController(view, scanner,
			prefs.NewStore(database).ForClient(prefs.CLIClientID),
			dashboard.WithChartSize(chartSize(cfg)),
		)

		ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		ctrl.Initialize(ctx)
		if err := ctrl.Scan(ctx); err != nil {
			return err
		}
		if ctrl.State() != dashboard.Scanned {
			return errScanFailed
		}

		if err := chartErrors(ctrl); err != nil {
			return fmt.Errorf("writing charts: %w", err)
		}

		fmt.Printf("Charts written to %s and %s\n", linePath, piePath)
		return nil
	},
}

// chartErrors joins the rendering errors of the controller's live charts.
func chartErrors(ctrl *dashboard.Controller) error {
	var errs []error
	for _, inst := range []*chart.Instance{ctrl.LineChart(), ctrl.PieChart()} {
		if inst != nil && inst.Err() != nil {
			errs = append(errs, inst.Err())
		}
	}
	return errors.Join(errs...)
}

func init() {
	scanCmd.Flags().StringVar(&scanServer, "server", "", "Base URL of a netsentry server to scan with")
	scanCmd.Flags().StringVar(&scanOut, "out", "", "Directory to write chart images to (overrides charts.output_dir)")
	rootCmd.AddCommand(scanCmd)
}
