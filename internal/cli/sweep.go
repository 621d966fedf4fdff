package cli

import (
	"github.com/spf13/cobra"

	"macro-risk-alerts/internal/app"
)

var (
	sweepSkipExpire  bool
	sweepSkipCleanup bool
)

var sweepCmd = &cobra.Command{
	Use:   "sweep",
	Short: "Expire stale alerts and purge old resolved ones, then exit",
	RunE: func(cmd *cobra.Command, args []string) error {
		opts := app.SweepOptions{
			SkipExpire:  sweepSkipExpire,
			SkipCleanup: sweepSkipCleanup,
		}
		return getApp().Sweep(cmd.Context(), opts)
	},
}

func init() {
	sweepCmd.Flags().BoolVar(&sweepSkipExpire, "skip-expire", false, "Skip the stale-alert expiry pass")
	sweepCmd.Flags().BoolVar(&sweepSkipCleanup, "skip-cleanup", false, "Skip the resolved-alert cleanup pass")
}
