package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/driftwoodlabs/momentum/internal/observability"
)

func newGateCmd() *cobra.Command {
	var userID string
	var currentDay int

	gateCmd := &cobra.Command{
		Use:   "gate",
		Short: "Evaluates reward eligibility for a user's current cycle day",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			logger := observability.GetLogger()

			engine, cleanup, err := buildEngine(ctx, logger)
			if err != nil {
				return err
			}
			defer cleanup()

			decision, err := engine.EvaluateEligibility(ctx, userID, currentDay)
			if err != nil {
				return fmt.Errorf("eligibility evaluation failed: %w", err)
			}
			return printJSON(decision)
		},
	}

	gateCmd.Flags().StringVarP(&userID, "user", "u", "", "user ID to evaluate")
	gateCmd.Flags().IntVarP(&currentDay, "day", "d", 0, "current cycle day")
	_ = gateCmd.MarkFlagRequired("user")
	_ = gateCmd.MarkFlagRequired("day")
	return gateCmd
}

func init() {
	rootCmd.AddCommand(newGateCmd())
}
