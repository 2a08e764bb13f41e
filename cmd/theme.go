package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/ziadkadry99/netsentry/internal/prefs"
	"github.com/ziadkadry99/netsentry/internal/theme"
)

var themeCmd = &cobra.Command{
	Use:       "theme [light|dark|toggle]",
	Short:     "Show or change the theme used for terminal charts",
	Args:      cobra.MatchAll(cobra.MaximumNArgs(1), cobra.OnlyValidArgs),
	ValidArgs: []string{"light", "dark", "toggle"},
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

		ctx := cmd.Context()
		store := prefs.NewStore(database).ForClient(prefs.CLIClientID)

		stored, err := store.Get(ctx, theme.StorageKey)
		if err != nil {
			return fmt.Errorf("reading theme: %w", err)
		}
		current := theme.Parse(stored)
		if len(args) == 0 {
			fmt.Println(current)
			return nil
		}

		next := theme.Parse(args[0])
		if args[0] == "toggle" {
			next = current.Toggle()
		}
		if err := store.Set(ctx, theme.StorageKey, string(next)); err != nil {
			return fmt.Errorf("saving theme: %w", err)
		}
		fmt.Printf("Theme set to %s\n", next)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(themeCmd)
}
