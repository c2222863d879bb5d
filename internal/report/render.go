package report

import (
	"encoding/json"
	"fmt"
	"io"
	"time"

	"github.com/coinchrono/coinchrono/internal/holdings"
	"github.com/olekukonko/tablewriter"
)

// Fixed display precision. Balances show six fractional digits, ages one;
// the JSON output keeps full precision for machine consumers.
const (
	balancePlaces = 6
	agePlaces     = 1
)

// WriteTable renders the report as a GitHub-flavored markdown table.
func WriteTable(w io.Writer, rep holdings.Report) {
	fmt.Fprintf(w, "Holdings for %s (as of %s)\n\n", rep.Address, rep.GeneratedAt.Format(time.RFC3339))

	table := tablewriter.NewWriter(w)
	table.SetHeader([]string{"Asset", "Balance", "Avg Hold (days)"})
	table.SetAutoFormatHeaders(false)
	table.SetAutoWrapText(false)
	table.SetBorders(tablewriter.Border{Left: true, Top: false, Right: true, Bottom: false})
	table.SetCenterSeparator("|")

	for _, row := range rep.Rows {
		table.Append([]string{
			row.Asset,
			row.Balance.StringFixed(balancePlaces),
			row.AvgHoldDays.StringFixed(agePlaces),
		})
	}
	table.Render()

	if len(rep.Failures) > 0 {
		fmt.Fprintf(w, "\n%d asset(s) skipped due to bad transfer data:\n", len(rep.Failures))
		for _, f := range rep.Failures {
			fmt.Fprintf(w, "  - %s: %v\n", f.Asset, f.Err)
		}
	}
}

type jsonRow struct {
	Asset       string `json:"asset"`
	Contract    string `json:"contract,omitempty"`
	Balance     string `json:"balance"`
	AvgHoldDays string `json:"average_hold_days"`
}

type jsonFailure struct {
	Asset string `json:"asset"`
	Error string `json:"error"`
}

type jsonReport struct {
	Address     string        `json:"address"`
	GeneratedAt time.Time     `json:"generated_at"`
	Holdings    []jsonRow     `json:"holdings"`
	Failures    []jsonFailure `json:"failures,omitempty"`
}

// WriteJSON renders the report as indented JSON. Decimal fields are emitted
// as strings at full precision.
func WriteJSON(w io.Writer, rep holdings.Report) error {
	out := jsonReport{
		Address:     rep.Address,
		GeneratedAt: rep.GeneratedAt,
		Holdings:    make([]jsonRow, 0, len(rep.Rows)),
	}

	for _, row := range rep.Rows {
		out.Holdings = append(out.Holdings, jsonRow{
			Asset:       row.Asset,
			Contract:    row.Contract,
			Balance:     row.Balance.String(),
			AvgHoldDays: row.AvgHoldDays.String(),
		})
	}
	for _, f := range rep.Failures {
		out.Failures = append(out.Failures, jsonFailure{
			Asset: f.Asset,
			Error: f.Err.Error(),
		})
	}

	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(out)
}
