package cli

import (
	"github.com/spf13/cobra"

	"eth-anchor/internal/app"
)

var snapshotTable bool

var snapshotCmd = &cobra.Command{
	Use:   "snapshot",
	Short: "Compute one cross-checked anchor snapshot",
	RunE: func(cmd *cobra.Command, args []string) error {
		return getApp().Snapshot(cmd.Context(), cmd.OutOrStdout(), app.SnapshotOptions{Table: snapshotTable})
	},
}

var sampleCmd = &cobra.Command{
	Use:   "sample",
	Short: "Run the simple sampler once",
	RunE: func(cmd *cobra.Command, args []string) error {
		return getApp().Sample(cmd.Context(), cmd.OutOrStdout())
	},
}

var checkCmd = &cobra.Command{
	Use:   "check",
	Short: "Compute a snapshot and alert on a material discrepancy",
	RunE: func(cmd *cobra.Command, args []string) error {
		return getApp().Check(cmd.Context(), cmd.OutOrStdout())
	},
}

func init() {
	snapshotCmd.Flags().BoolVar(&snapshotTable, "table", false, "Render as a table instead of JSON")
}
