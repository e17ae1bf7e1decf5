package app

import (
	"fmt"
	"io"
	"strings"

	"github.com/olekukonko/tablewriter"

	"eth-anchor/internal/service"
)

func renderSnapshot(out io.Writer, resp service.SnapshotResponse) {
	table := tablewriter.NewWriter(out)
	table.Header("Field", "Value")

	age := "n/a"
	if resp.Anchor.AgeSeconds != nil {
		age = fmt.Sprintf("%ds", *resp.Anchor.AgeSeconds)
	}

	table.Append("Anchor venue", resp.Anchor.Venue)
	table.Append("Product", resp.Anchor.Product)
	table.Append("Method", string(resp.Anchor.Used))
	table.Append("Anchor price", fmt.Sprintf("%.2f", resp.Anchor.Price))
	table.Append("Local time", resp.Anchor.LocalTimestamp)
	table.Append("Anchor age", age)
	table.Append("Server times", joinTimestamps(resp.Anchor.ServerTimestamps))
	table.Append("Cross venue", resp.CrossCheck.Venue)
	table.Append("Cross price", formatOptional(resp.CrossCheck.Price, "%.2f"))
	table.Append("Diff %", formatOptional(resp.CrossCheck.Discrepancy.DiffPct, "%.4f"))
	table.Append("Discrepancy", string(resp.CrossCheck.Discrepancy.Level))
	table.Append("ETH/BTC", formatOptional(resp.Ratios.ETHBTC, "%.6f"))

	table.Render()
}

func formatOptional(v *float64, format string) string {
	if v == nil {
		return "n/a"
	}
	return fmt.Sprintf(format, *v)
}

func joinTimestamps(ts []*string) string {
	parts := make([]string, 0, len(ts))
	for _, t := range ts {
		if t == nil {
			parts = append(parts, "-")
			continue
		}
		parts = append(parts, *t)
	}
	return strings.Join(parts, " | ")
}
