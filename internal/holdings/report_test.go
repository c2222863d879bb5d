package holdings

import (
	"math/big"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBuildEmptyHistory(t *testing.T) {
	rep := Build(testAddress, nil, nil, testNow)

	assert.Equal(t, testAddress, rep.Address)
	assert.Equal(t, testNow, rep.GeneratedAt)
	assert.Empty(t, rep.Failures)

	// The native row is always present, zero-valued for an unused address.
	require.Len(t, rep.Rows, 1)
	assert.Equal(t, NativeSymbol, rep.Rows[0].Asset)
	assert.True(t, rep.Rows[0].Balance.IsZero())
	assert.True(t, rep.Rows[0].AvgHoldDays.IsZero())
}

func TestBuildFullReport(t *testing.T) {
	native := []TransferRecord{
		aged(testNow, 10*24*time.Hour, 100, 18),
		aged(testNow, 2*24*time.Hour, 300, 18),
	}
	usdc := tokenTo(testAddress, usdcContract, "USDC", 6, "0x01")
	usdc.Timestamp = testNow.Add(-5 * 24 * time.Hour).Unix()
	usdc.RawAmount = big.NewInt(2500000)
	dai := tokenTo(testAddress, daiContract, "DAI", 18, "0x02")
	dai.Timestamp = testNow.Add(-20 * 24 * time.Hour).Unix()
	dai.RawAmount = new(big.Int).Mul(big.NewInt(7), big.NewInt(1e18))

	rep := Build(testAddress, native, []TransferRecord{usdc, dai}, testNow)

	require.Empty(t, rep.Failures)
	require.Len(t, rep.Rows, 3)

	assert.Equal(t, NativeSymbol, rep.Rows[0].Asset)
	assert.Equal(t, "", rep.Rows[0].Contract)
	assert.Equal(t, "400", rep.Rows[0].Balance.String())
	assert.Equal(t, "4", rep.Rows[0].AvgHoldDays.String())

	assert.Equal(t, "USDC", rep.Rows[1].Asset)
	assert.Equal(t, "0xa0b86991c6218b36c1d19d4a2e9eb0ce3606eb48", rep.Rows[1].Contract)
	assert.Equal(t, "2.5", rep.Rows[1].Balance.String())
	assert.Equal(t, "5", rep.Rows[1].AvgHoldDays.String())

	assert.Equal(t, "DAI", rep.Rows[2].Asset)
	assert.Equal(t, "7", rep.Rows[2].Balance.String())
	assert.Equal(t, "20", rep.Rows[2].AvgHoldDays.String())
}

func TestBuildIgnoresOutgoingTransfers(t *testing.T) {
	incoming := aged(testNow, 24*time.Hour, 10, 18)
	outgoing := aged(testNow, 24*time.Hour, 999, 18)
	outgoing.Recipient = otherAddress

	rep := Build(testAddress, []TransferRecord{incoming, outgoing}, nil, testNow)

	require.Len(t, rep.Rows, 1)
	assert.Equal(t, "10", rep.Rows[0].Balance.String())
}

func TestBuildIsolatesGroupFailures(t *testing.T) {
	good := tokenTo(testAddress, daiContract, "DAI", 18, "0x01")
	good.Timestamp = testNow.Add(-24 * time.Hour).Unix()
	good.RawAmount = big.NewInt(1e18)

	// A zero-value transfer, typical of airdrop spam, poisons its own group
	// only.
	bad := tokenTo(testAddress, usdcContract, "SPAM", 18, "0x02")
	bad.RawAmount = big.NewInt(0)

	rep := Build(testAddress, []TransferRecord{aged(testNow, 24*time.Hour, 2, 18)}, []TransferRecord{bad, good}, testNow)

	require.Len(t, rep.Failures, 1)
	assert.Equal(t, "SPAM", rep.Failures[0].Asset)
	var dataErr *InputDataError
	require.ErrorAs(t, rep.Failures[0].Err, &dataErr)
	assert.Equal(t, "zero value", dataErr.Reason)

	require.Len(t, rep.Rows, 2)
	assert.Equal(t, NativeSymbol, rep.Rows[0].Asset)
	assert.Equal(t, "DAI", rep.Rows[1].Asset)
	assert.Equal(t, "1", rep.Rows[1].Balance.String())
}

func TestBuildNativeFailureKeepsTokenRows(t *testing.T) {
	badNative := TransferRecord{
		Timestamp: -1,
		RawAmount: big.NewInt(1e18),
		Decimals:  NativeDecimals,
		Recipient: testAddress,
		TxHash:    "0xbad",
	}
	token := tokenTo(testAddress, usdcContract, "USDC", 6, "0x01")
	token.Timestamp = testNow.Add(-24 * time.Hour).Unix()
	token.RawAmount = big.NewInt(1000000)

	rep := Build(testAddress, []TransferRecord{badNative}, []TransferRecord{token}, testNow)

	require.Len(t, rep.Failures, 1)
	assert.Equal(t, NativeSymbol, rep.Failures[0].Asset)

	require.Len(t, rep.Rows, 1)
	assert.Equal(t, "USDC", rep.Rows[0].Asset)
}

func TestBuildDoesNotMutateInputs(t *testing.T) {
	native := make([]TransferRecord, 0, 8)
	native = append(native, aged(testNow, 24*time.Hour, 1, 18))
	tokens := []TransferRecord{tokenTo(testAddress, usdcContract, "USDC", 6, "0x01")}
	tokens[0].RawAmount = big.NewInt(1000000)
	tokens[0].Timestamp = testNow.Unix()

	before := append([]TransferRecord(nil), native...)
	Build(testAddress, native, tokens, testNow)

	assert.Equal(t, before, native)
}
