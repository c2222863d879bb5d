package holdings

import (
	"fmt"
	"math/big"
	"strings"
)

// Native-currency identity. Explorer rows for plain ETH transfers carry no
// contract address or symbol; the chain fixes the scale at 18.
const (
	NativeSymbol   = "ETH"
	NativeDecimals = 18
)

// TransferRecord is one observed incoming-value event.
//
// Records come from the retrieval layer, which parses explorer rows but never
// drops them: a row whose value or timestamp could not be parsed is carried
// with RawAmount == nil or Timestamp < 0 so aggregation can reject the group
// instead of the row silently skewing the weighted average.
type TransferRecord struct {
	// Timestamp is seconds since the Unix epoch (UTC). Negative means the
	// source row had no usable timestamp.
	Timestamp int64
	// RawAmount is the transferred value in the asset's smallest unit (wei
	// for ETH). nil means the source row had no usable value.
	RawAmount *big.Int
	// Decimals scales RawAmount: amount = RawAmount / 10^Decimals.
	Decimals uint8
	// Recipient is the receiving address. Compared case-insensitively.
	Recipient string
	// Contract and Symbol identify a token asset. An empty Contract marks a
	// native-currency record.
	Contract string
	Symbol   string
	// TxHash is carried for diagnostics only and never enters the math.
	TxHash string
}

// Native reports whether the record is a native-currency transfer.
func (r TransferRecord) Native() bool {
	return r.Contract == ""
}

// AssetKey identifies a fungible token asset. The full (contract, symbol,
// decimals) triple is the grouping identity, not the contract alone: records
// that disagree on decimals for one contract land in separate groups rather
// than being averaged together on mismatched scales.
type AssetKey struct {
	Contract string
	Symbol   string
	Decimals uint8
}

func (k AssetKey) String() string {
	return fmt.Sprintf("%s (%s, %d decimals)", k.Symbol, k.Contract, k.Decimals)
}

// keyFor builds the grouping key for a token record. Contract addresses are
// lowercased so differently-cased reports of one contract group together.
func keyFor(r TransferRecord) AssetKey {
	return AssetKey{
		Contract: strings.ToLower(r.Contract),
		Symbol:   r.Symbol,
		Decimals: r.Decimals,
	}
}

// AssetGroup is an ordered sequence of records denominated in one asset.
// Order is the source (chronological) order.
type AssetGroup []TransferRecord

// TokenGroup pairs a token asset with its records. Groups travel in a slice,
// not a map, because report rows must come out in the order each asset was
// first observed.
type TokenGroup struct {
	Key     AssetKey
	Records AssetGroup
}

// InputDataError reports a malformed record inside an asset group. The
// affected group's aggregation fails as a whole; zeroing or skipping the
// record would corrupt the weighted average without anyone noticing.
type InputDataError struct {
	// Index is the record's position within its group.
	Index  int
	Reason string
	Record TransferRecord
}

func (e *InputDataError) Error() string {
	if e.Record.TxHash != "" {
		return fmt.Sprintf("record %d (tx %s): %s", e.Index, e.Record.TxHash, e.Reason)
	}
	return fmt.Sprintf("record %d: %s", e.Index, e.Reason)
}
