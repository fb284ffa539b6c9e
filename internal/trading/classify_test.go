package trading

import (
	"testing"

	"github.com/rxtech-lab/mt5-bridge/internal/types"
	"github.com/stretchr/testify/assert"
)

func TestClassify(t *testing.T) {
	tests := []struct {
		name    string
		retcode types.TradeRetcode
		dryRun  bool
		want    Classification
	}{
		{"done", types.TradeRetcodeDone, false, ClassSuccess},
		{"done partial", types.TradeRetcodeDonePartial, false, ClassSuccess},
		{"no changes", types.TradeRetcodeNoChanges, false, ClassSuccess},
		{"check ok on validation path", types.TradeRetcodeCheckOK, true, ClassSuccess},
		{"zero on execution path", types.TradeRetcodeCheckOK, false, ClassUnknown},
		{"reject", types.TradeRetcodeReject, false, ClassFailure},
		{"invalid", types.TradeRetcodeInvalid, false, ClassFailure},
		{"invalid volume", types.TradeRetcodeInvalidVolume, false, ClassFailure},
		{"no money", types.TradeRetcodeNoMoney, false, ClassFailure},
		{"market closed", types.TradeRetcodeMarketClosed, false, ClassFailure},
		{"trade disabled on check path", types.TradeRetcodeTradeDisabled, true, ClassFailure},
		{"placed is not a market order verdict", types.TradeRetcodePlaced, false, ClassUnknown},
		{"unlisted code", types.TradeRetcode(10041), false, ClassUnknown},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, Classify(tc.retcode, tc.dryRun))
		})
	}
}

func TestClassificationString(t *testing.T) {
	assert.Equal(t, "success", ClassSuccess.String())
	assert.Equal(t, "failure", ClassFailure.String())
	assert.Equal(t, "unknown", ClassUnknown.String())
}
