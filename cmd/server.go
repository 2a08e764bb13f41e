package cmd

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/ziadkadry99/netsentry/internal/about"
	"github.com/ziadkadry99/netsentry/internal/dashboard"
	"github.com/ziadkadry99/netsentry/internal/detector"
	"github.com/ziadkadry99/netsentry/internal/history"
	"github.com/ziadkadry99/netsentry/internal/log"
	"github.com/ziadkadry99/netsentry/internal/notifications"
	"github.com/ziadkadry99/netsentry/internal/prefs"
	"github.com/ziadkadry99/netsentry/internal/scan"
	"github.com/ziadkadry99/netsentry/internal/server"
)

var (
	serverPort      int
	serverRetention time.Duration
)

var serverCmd = &cobra.Command{
	Use:   "server",
	Short: "Start the dashboard and scan backend",
	Long: `Starts the netsentry server: the dashboard page, the GET /scan backend
that runs the detector pipeline, scan history and the anomaly webhook.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}
		if cmd.Flags().Changed("port") {
			cfg.Server.Port = serverPort
		}

		database, err := openDatabase(cfg)
		if err != nil {
			return err
		}
		defer database.Close()

		srv := server.New(server.Config{
			Port:     cfg.Server.Port,
			AllowAll: cfg.Server.AllowAllOrigins,
		}, database)
		r := srv.Router()

		// Scan backend, with history and alerts observing every outcome.
		hist := history.NewStore(database)
		notifier := notifications.NewDispatcher(cfg.Notify.WebhookURL, cfg.Notify.MinAnomalies)
		detector.RegisterRoutes(r, newDetector(cfg), hist.Hook, notifier.Hook)
		history.RegisterRoutes(r, hist)

		if err := about.RegisterRoutes(r); err != nil {
			return fmt.Errorf("rendering about page: %w", err)
		}

		// The dashboard scans through the HTTP endpoint, ours unless a
		// remote backend is configured.
		baseURL := cfg.Client.BaseURL
		if baseURL == "" {
			baseURL = fmt.Sprintf("http://127.0.0.1:%d", cfg.Server.Port)
		}
		dash := dashboard.New(scan.NewClient(baseURL, cfg.Client.Timeout), prefs.NewStore(database), chartSize(cfg))
		dash.RegisterRoutes(r)

		ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		g, ctx := errgroup.WithContext(ctx)
		g.Go(func() error {
			if err := srv.Start(); !errors.Is(err, http.ErrServerClosed) {
				return err
			}
			return nil
		})
		g.Go(func() error {
			<-ctx.Done()
			log.Info("shutting down server")
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
			defer cancel()
			return srv.Shutdown(shutdownCtx)
		})
		if serverRetention > 0 {
			g.Go(func() error {
				pruneHistory(ctx, hist, serverRetention)
				return nil
			})
		}

		fmt.Fprintf(os.Stderr, "netsentry server %s starting on port %d\n", Version, cfg.Server.Port)
		fmt.Fprintf(os.Stderr, "  Database: %s\n", database.Path())
		fmt.Fprintf(os.Stderr, "  Scan backend: %s/scan\n", baseURL)
		if notifier.Enabled() {
			fmt.Fprintf(os.Stderr, "  Alerts: %s (min %d anomalies)\n", cfg.Notify.WebhookURL, cfg.Notify.MinAnomalies)
		}

		return g.Wait()
	},
}

// pruneHistory drops scan records older than retention, hourly, until ctx
// is done.
func pruneHistory(ctx context.Context, hist *history.Store, retention time.Duration) {
	ticker := time.NewTicker(time.Hour)
	defer ticker.Stop()
	for {
		n, err := hist.DeleteBefore(ctx, time.Now().Add(-retention))
		switch {
		case err != nil && ctx.Err() == nil:
			log.Warn("pruning scan history", "error", err)
		case n > 0:
			log.Info("pruned scan history", "deleted", n)
		}

		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
		}
	}
}

func init() {
	serverCmd.Flags().IntVar(&serverPort, "port", 5000, "Port to listen on (overrides server.port)")
	serverCmd.Flags().DurationVar(&serverRetention, "history-retention", 30*24*time.Hour, "Delete scan history older than this; 0 keeps everything")
	rootCmd.AddCommand(serverCmd)
}
