package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/ziadkadry99/netsentry/internal/history"
	mcpserver "github.com/ziadkadry99/netsentry/internal/mcp"
	"github.com/ziadkadry99/netsentry/internal/notifications"
)

var mcpCmd = &cobra.Command{
	Use:   "mcp",
	Short: "Start the MCP server (stdio)",
	Long: `Starts an MCP server on stdio that lets agents run scans and read the
scan history. Scans run the detector pipeline in-process.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}
		database, err := openDatabase(cfg)
		if err != nil {
			return err
		}
		defer database.Close()

		// run_scan records history itself.
		notifier := notifications.NewDispatcher(cfg.Notify.WebhookURL, cfg.Notify.MinAnomalies)
		scanner := hookedScanner(newDetector(cfg), notifier.Hook)

		mcpserver.Version = Version
		srv := mcpserver.NewServer(scanner, history.NewStore(database))

		fmt.Fprintf(os.Stderr, "netsentry MCP server %s starting on stdio\n", Version)
		return srv.Serve()
	},
}

func init() {
	rootCmd.AddCommand(mcpCmd)
}
