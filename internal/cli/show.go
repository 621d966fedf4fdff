package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"macro-risk-alerts/internal/app"
)

var (
	showLimit    int
	showAll      bool
	showType     string
	showSeverity string
)

var showCmd = &cobra.Command{
	Use:   "show",
	Short: "Display recent alerts",
	RunE: func(cmd *cobra.Command, args []string) error {
		if showLimit <= 0 {
			return fmt.Errorf("--limit must be greater than zero")
		}

		opts := app.ShowOptions{
			Limit:      showLimit,
			ActiveOnly: !showAll,
			Type:       showType,
			Severity:   showSeverity,
		}

		return getApp().Show(cmd.Context(), opts)
	},
}

func init() {
	showCmd.Flags().IntVar(&showLimit, "limit", 20, "Number of alerts to display")
	showCmd.Flags().BoolVar(&showAll, "all", false, "Include resolved alerts")
	showCmd.Flags().StringVar(&showType, "type", "", "Filter by alert type (FX, YIELDS, CREDIT, POLITICAL, ECON)")
	showCmd.Flags().StringVar(&showSeverity, "severity", "", "Filter by severity (CRITICAL, HIGH, MEDIUM, LOW)")
}
