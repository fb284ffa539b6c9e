package trading

import "github.com/rxtech-lab/mt5-bridge/internal/types"

// Classification is the verdict over a trade server return code. The code
// sets are fixed at compile time; anything outside both sets is Unknown and
// the raw result is kept for the caller to inspect.
type Classification int

const (
	ClassUnknown Classification = iota
	ClassSuccess
	ClassFailure
)

// String implements fmt.Stringer.
func (c Classification) String() string {
	switch c {
	case ClassSuccess:
		return "success"
	case ClassFailure:
		return "failure"
	default:
		return "unknown"
	}
}

var successRetcodes = map[types.TradeRetcode]struct{}{
	types.TradeRetcodeDone:        {},
	types.TradeRetcodeDonePartial: {},
	types.TradeRetcodeNoChanges:   {},
}

var failureRetcodes = map[types.TradeRetcode]struct{}{
	types.TradeRetcodeRequote:           {},
	types.TradeRetcodeReject:            {},
	types.TradeRetcodeCancel:            {},
	types.TradeRetcodeError:             {},
	types.TradeRetcodeTimeout:           {},
	types.TradeRetcodeInvalid:           {},
	types.TradeRetcodeInvalidVolume:     {},
	types.TradeRetcodeInvalidPrice:      {},
	types.TradeRetcodeInvalidStops:      {},
	types.TradeRetcodeTradeDisabled:     {},
	types.TradeRetcodeMarketClosed:      {},
	types.TradeRetcodeNoMoney:           {},
	types.TradeRetcodePriceChanged:      {},
	types.TradeRetcodePriceOff:          {},
	types.TradeRetcodeInvalidExpiration: {},
	types.TradeRetcodeTooManyRequests:   {},
	types.TradeRetcodeLocked:            {},
	types.TradeRetcodeFrozen:            {},
	types.TradeRetcodeInvalidFill:       {},
	types.TradeRetcodeConnection:        {},
	types.TradeRetcodeLimitOrders:       {},
	types.TradeRetcodeLimitVolume:       {},
	types.TradeRetcodePositionClosed:    {},
}

// Classify maps a return code to a verdict. Zero is the validation path's
// success code and counts as success only there; the execution path never
// returns zero.
func Classify(retcode types.TradeRetcode, dryRun bool) Classification {
	if retcode == types.TradeRetcodeCheckOK {
		if dryRun {
			return ClassSuccess
		}

		return ClassUnknown
	}

	if _, ok := successRetcodes[retcode]; ok {
		return ClassSuccess
	}

	if _, ok := failureRetcodes[retcode]; ok {
		return ClassFailure
	}

	return ClassUnknown
}
