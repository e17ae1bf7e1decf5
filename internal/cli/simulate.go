package cli

import (
	"errors"

	"github.com/shopspring/decimal"
	"github.com/spf13/cobra"
)

var (
	simulateAnchor float64
	simulateCross  float64
)

var simulateCmd = &cobra.Command{
	Use:   "simulate-alert",
	Short: "Simulate a cross-venue discrepancy and dispatch the alert",
	RunE: func(cmd *cobra.Command, args []string) error {
		if simulateAnchor <= 0 || simulateCross <= 0 {
			return errors.New("--anchor and --cross must be greater than 0")
		}

		anchorPrice := decimal.NewFromFloat(simulateAnchor)
		crossPrice := decimal.NewFromFloat(simulateCross)
		return getApp().SimulateAlert(cmd.Context(), cmd.OutOrStdout(), anchorPrice, crossPrice)
	},
}

func init() {
	simulateCmd.Flags().Float64Var(&simulateAnchor, "anchor", 0, "Anchor venue price")
	simulateCmd.Flags().Float64Var(&simulateCross, "cross", 0, "Cross-check venue price")
}
