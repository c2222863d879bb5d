package etherscan

import (
	"math/big"
	"strconv"

	"github.com/coinchrono/coinchrono/internal/holdings"
)

// Etherscan omits tokenDecimal on some very old transfer events. The ERC-20
// convention in that case is 18.
const defaultTokenDecimals = 18

// NativeTx is one row of the account txlist action. Etherscan serializes
// every numeric field as a decimal string.
type NativeTx struct {
	BlockNumber string `json:"blockNumber"`
	TimeStamp   string `json:"timeStamp"`
	Hash        string `json:"hash"`
	From        string `json:"from"`
	To          string `json:"to"`
	Value       string `json:"value"`
}

// TokenTx is one row of the account tokentx action.
type TokenTx struct {
	BlockNumber     string `json:"blockNumber"`
	TimeStamp       string `json:"timeStamp"`
	Hash            string `json:"hash"`
	From            string `json:"from"`
	To              string `json:"to"`
	Value           string `json:"value"`
	ContractAddress string `json:"contractAddress"`
	TokenName       string `json:"tokenName"`
	TokenSymbol     string `json:"tokenSymbol"`
	TokenDecimal    string `json:"tokenDecimal"`
}

// NativeRecords normalizes txlist rows for classification. Every row is
// kept: one whose numeric fields do not parse becomes a defective record
// (nil amount or negative timestamp) that aggregation rejects loudly.
func NativeRecords(txs []NativeTx) []holdings.TransferRecord {
	records := make([]holdings.TransferRecord, 0, len(txs))
	for _, tx := range txs {
		records = append(records, holdings.TransferRecord{
			Timestamp: parseTimestamp(tx.TimeStamp),
			RawAmount: parseBig(tx.Value),
			Decimals:  holdings.NativeDecimals,
			Recipient: tx.To,
			TxHash:    tx.Hash,
		})
	}
	return records
}

// TokenRecords normalizes tokentx rows the same way.
func TokenRecords(txs []TokenTx) []holdings.TransferRecord {
	records := make([]holdings.TransferRecord, 0, len(txs))
	for _, tx := range txs {
		rec := holdings.TransferRecord{
			Timestamp: parseTimestamp(tx.TimeStamp),
			RawAmount: parseBig(tx.Value),
			Recipient: tx.To,
			Contract:  tx.ContractAddress,
			Symbol:    tx.TokenSymbol,
			TxHash:    tx.Hash,
		}
		dec, ok := parseDecimals(tx.TokenDecimal)
		if !ok {
			// Without a trustworthy scale the value cannot be interpreted.
			rec.RawAmount = nil
		}
		rec.Decimals = dec
		records = append(records, rec)
	}
	return records
}

func parseBig(s string) *big.Int {
	v, ok := new(big.Int).SetString(s, 10)
	if !ok {
		return nil
	}
	return v
}

func parseTimestamp(s string) int64 {
	ts, err := strconv.ParseInt(s, 10, 64)
	if err != nil || ts < 0 {
		return -1
	}
	return ts
}

func parseDecimals(s string) (uint8, bool) {
	if s == "" {
		return defaultTokenDecimals, true
	}
	v, err := strconv.ParseUint(s, 10, 8)
	if err != nil {
		return 0, false
	}
	return uint8(v), true
}
