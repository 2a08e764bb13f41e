package cmd

import (
	"github.com/spf13/cobra"

	"github.com/ziadkadry99/netsentry/internal/config"
)

var initCmd = &cobra.Command{
	Use:   "init",
	Short: "Initialize netsentry configuration with an interactive wizard",
	Long:  `Runs an interactive wizard to configure the detector pipeline and dashboard, and generates a .netsentry.yml file.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		_, err := config.RunWizard()
		return err
	},
}

func init() {
	rootCmd.AddCommand(initCmd)
}
