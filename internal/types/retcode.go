package types

// TradeRetcode is a terminal trade server return code.
type TradeRetcode uint32

const (
	// TradeRetcodeCheckOK is the retcode an order-check (validation-only)
	// call returns when the request would be accepted. The execution path
	// never returns zero.
	TradeRetcodeCheckOK TradeRetcode = 0

	TradeRetcodeRequote           TradeRetcode = 10004
	TradeRetcodeReject            TradeRetcode = 10006
	TradeRetcodeCancel            TradeRetcode = 10007
	TradeRetcodePlaced            TradeRetcode = 10008
	TradeRetcodeDone              TradeRetcode = 10009
	TradeRetcodeDonePartial       TradeRetcode = 10010
	TradeRetcodeError             TradeRetcode = 10011
	TradeRetcodeTimeout           TradeRetcode = 10012
	TradeRetcodeInvalid           TradeRetcode = 10013
	TradeRetcodeInvalidVolume     TradeRetcode = 10014
	TradeRetcodeInvalidPrice      TradeRetcode = 10015
	TradeRetcodeInvalidStops      TradeRetcode = 10016
	TradeRetcodeTradeDisabled     TradeRetcode = 10017
	TradeRetcodeMarketClosed      TradeRetcode = 10018
	TradeRetcodeNoMoney           TradeRetcode = 10019
	TradeRetcodePriceChanged      TradeRetcode = 10020
	TradeRetcodePriceOff          TradeRetcode = 10021
	TradeRetcodeInvalidExpiration TradeRetcode = 10022
	TradeRetcodeOrderChanged      TradeRetcode = 10023
	TradeRetcodeTooManyRequests   TradeRetcode = 10024
	TradeRetcodeNoChanges         TradeRetcode = 10025
	TradeRetcodeLocked            TradeRetcode = 10028
	TradeRetcodeFrozen            TradeRetcode = 10029
	TradeRetcodeInvalidFill       TradeRetcode = 10030
	TradeRetcodeConnection        TradeRetcode = 10031
	TradeRetcodeLimitOrders       TradeRetcode = 10033
	TradeRetcodeLimitVolume       TradeRetcode = 10034
	TradeRetcodePositionClosed    TradeRetcode = 10036
)

// Terminal last_error codes.
const (
	ResOK                  = 1
	ResFail                = -1
	ResInvalidParams       = -2
	ResNoMemory            = -3
	ResNotFound            = -4
	ResInvalidVersion      = -5
	ResAuthFailed          = -6
	ResUnsupported         = -7
	ResAutoTradingDisabled = -8
	ResInternalFail        = -10000
)
