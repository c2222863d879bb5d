package holdings

import (
	"time"

	"github.com/shopspring/decimal"
)

const secondsPerDay = 86400

// Aggregate computes the total received amount and the value-weighted average
// age in days for one asset group.
//
// now is the reference instant and must be supplied by the caller; the
// function never reads the system clock, so a run is reproducible. Ages are
// measured at seconds precision and may come out negative for records
// stamped after now. Amounts are scaled exactly from the raw smallest-unit
// integers, so balances beyond 2^53 smallest units lose nothing.
//
// An empty group yields (0, 0, nil): zero activity is a defined result, not
// an error. A record with a missing, zero, or negative value, or a missing
// timestamp, fails the whole group with an *InputDataError naming the record.
func Aggregate(group AssetGroup, now time.Time) (total, avgAgeDays decimal.Decimal, err error) {
	nowUnix := now.Unix()
	day := decimal.NewFromInt(secondsPerDay)

	var weightedAge decimal.Decimal
	for i, rec := range group {
		if err := validateRecord(i, rec); err != nil {
			return decimal.Zero, decimal.Zero, err
		}
		amount := decimal.NewFromBigInt(rec.RawAmount, -int32(rec.Decimals))
		ageDays := decimal.NewFromInt(nowUnix - rec.Timestamp).Div(day)
		total = total.Add(amount)
		weightedAge = weightedAge.Add(amount.Mul(ageDays))
	}

	if !total.IsPositive() {
		return total, decimal.Zero, nil
	}
	return total, weightedAge.Div(total), nil
}

func validateRecord(i int, rec TransferRecord) error {
	switch {
	case rec.RawAmount == nil:
		return &InputDataError{Index: i, Reason: "missing or non-numeric value", Record: rec}
	case rec.RawAmount.Sign() < 0:
		return &InputDataError{Index: i, Reason: "negative value " + rec.RawAmount.String(), Record: rec}
	case rec.RawAmount.Sign() == 0:
		return &InputDataError{Index: i, Reason: "zero value", Record: rec}
	case rec.Timestamp < 0:
		return &InputDataError{Index: i, Reason: "missing timestamp", Record: rec}
	}
	return nil
}
