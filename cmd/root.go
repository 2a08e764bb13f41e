package cmd

import (
	"github.com/spf13/cobra"

	"github.com/ziadkadry99/netsentry/internal/config"
	"github.com/ziadkadry99/netsentry/internal/log"
)

var (
	cfgFile string
	verbose bool
)

var rootCmd = &cobra.Command{
	Use:   "netsentry",
	Short: "Network anomaly scanning dashboard",
	Long: `NetSentry captures live traffic, runs it through an anomaly detection
model and shows the results on a dashboard: packets over time, the
anomaly count and how the anomalies split into categories.`,
	SilenceUsage: true,
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		log.SetVerbose(verbose)
	},
}

func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", config.DefaultPath, "config file path")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "verbose output")
}
