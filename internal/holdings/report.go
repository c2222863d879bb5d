package holdings

import (
	"time"

	"github.com/shopspring/decimal"
)

// Row is one line of a holding report.
type Row struct {
	// Asset is the display label: NativeSymbol for the native row, the
	// token's symbol otherwise.
	Asset string
	// Contract is empty for the native row.
	Contract string
	// Balance is the total received amount in whole-asset units.
	Balance decimal.Decimal
	// AvgHoldDays is the value-weighted average age of the balance in days.
	AvgHoldDays decimal.Decimal
}

// GroupFailure records an asset group whose data was rejected during
// aggregation. Other groups are unaffected.
type GroupFailure struct {
	Asset string
	// Key is the zero value for the native group.
	Key AssetKey
	Err error
}

// Report is the outcome of one analysis pass over an address.
type Report struct {
	Address     string
	GeneratedAt time.Time
	Rows        []Row
	Failures    []GroupFailure
}

// Build runs the full computation: records from both source sequences are
// classified into per-asset groups and each group is aggregated independently
// against now.
//
// The native row comes first and is always present, zero-valued when the
// address never received native currency. Token rows follow in first-observed
// order. A group whose aggregation fails produces a Failures entry instead of
// a row and leaves every other group's result intact.
func Build(address string, native, tokens []TransferRecord, now time.Time) Report {
	records := make([]TransferRecord, 0, len(native)+len(tokens))
	records = append(records, native...)
	records = append(records, tokens...)

	nativeGroup, tokenGroups := Classify(records, address)

	rep := Report{Address: address, GeneratedAt: now}

	total, avgAge, err := Aggregate(nativeGroup, now)
	if err != nil {
		rep.Failures = append(rep.Failures, GroupFailure{Asset: NativeSymbol, Err: err})
	} else {
		rep.Rows = append(rep.Rows, Row{Asset: NativeSymbol, Balance: total, AvgHoldDays: avgAge})
	}

	for _, g := range tokenGroups {
		total, avgAge, err := Aggregate(g.Records, now)
		if err != nil {
			rep.Failures = append(rep.Failures, GroupFailure{Asset: g.Key.Symbol, Key: g.Key, Err: err})
			continue
		}
		rep.Rows = append(rep.Rows, Row{
			Asset:       g.Key.Symbol,
			Contract:    g.Key.Contract,
			Balance:     total,
			AvgHoldDays: avgAge,
		})
	}
	return rep
}
