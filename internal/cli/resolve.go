package cli

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"
)

var resolveCmd = &cobra.Command{
	Use:   "resolve <id>",
	Short: "Mark an alert as resolved",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		id, err := strconv.ParseInt(args[0], 10, 64)
		if err != nil {
			return fmt.Errorf("invalid alert id %q: %w", args[0], err)
		}
		return getApp().Resolve(cmd.Context(), id)
	},
}

var ackCmd = &cobra.Command{
	Use:   "ack <id>",
	Short: "Acknowledge an alert without resolving it",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		id, err := strconv.ParseInt(args[0], 10, 64)
		if err != nil {
			return fmt.Errorf("invalid alert id %q: %w", args[0], err)
		}
		return getApp().Acknowledge(cmd.Context(), id)
	},
}
