package types

import (
	"strings"

	"github.com/rxtech-lab/mt5-bridge/pkg/errors"
)

// Timeframe is a terminal bar timeframe constant.
type Timeframe int

const (
	TimeframeM1  Timeframe = 1
	TimeframeM2  Timeframe = 2
	TimeframeM3  Timeframe = 3
	TimeframeM4  Timeframe = 4
	TimeframeM5  Timeframe = 5
	TimeframeM6  Timeframe = 6
	TimeframeM10 Timeframe = 10
	TimeframeM12 Timeframe = 12
	TimeframeM15 Timeframe = 15
	TimeframeM20 Timeframe = 20
	TimeframeM30 Timeframe = 30
	TimeframeH1  Timeframe = 16385
	TimeframeH2  Timeframe = 16386
	TimeframeH3  Timeframe = 16387
	TimeframeH4  Timeframe = 16388
	TimeframeH6  Timeframe = 16390
	TimeframeH8  Timeframe = 16392
	TimeframeH12 Timeframe = 16396
	TimeframeD1  Timeframe = 16408
	TimeframeW1  Timeframe = 32769
	TimeframeMN1 Timeframe = 49153
)

var timeframeByName = map[string]Timeframe{
	"M1": TimeframeM1, "M2": TimeframeM2, "M3": TimeframeM3, "M4": TimeframeM4,
	"M5": TimeframeM5, "M6": TimeframeM6, "M10": TimeframeM10, "M12": TimeframeM12,
	"M15": TimeframeM15, "M20": TimeframeM20, "M30": TimeframeM30,
	"H1": TimeframeH1, "H2": TimeframeH2, "H3": TimeframeH3, "H4": TimeframeH4,
	"H6": TimeframeH6, "H8": TimeframeH8, "H12": TimeframeH12,
	"D1": TimeframeD1, "W1": TimeframeW1, "MN1": TimeframeMN1,
}

// ParseTimeframe converts a granularity suffix like "M1" or "H4" into a
// Timeframe constant.
func ParseTimeframe(name string) (Timeframe, error) {
	tf, ok := timeframeByName[strings.ToUpper(name)]
	if !ok {
		return 0, errors.Newf(errors.ErrCodeInvalidTimeframe, "unsupported granularity: %s", name)
	}

	return tf, nil
}

// TickFlag selects which tick kinds a copy-ticks call returns.
type TickFlag uint32

const (
	TickFlagInfo   TickFlag = 1
	TickFlagBid    TickFlag = 2
	TickFlagAsk    TickFlag = 4
	TickFlagLast   TickFlag = 8
	TickFlagVolume TickFlag = 16
	TickFlagAll    TickFlag = 31
)

// OrderType is a terminal order type constant.
type OrderType int

const (
	OrderTypeBuy           OrderType = 0
	OrderTypeSell          OrderType = 1
	OrderTypeBuyLimit      OrderType = 2
	OrderTypeSellLimit     OrderType = 3
	OrderTypeBuyStop       OrderType = 4
	OrderTypeSellStop      OrderType = 5
	OrderTypeBuyStopLimit  OrderType = 6
	OrderTypeSellStopLimit OrderType = 7
	OrderTypeCloseBy       OrderType = 8
)

// OrderFilling is a terminal order filling mode constant.
type OrderFilling int

const (
	OrderFillingFOK    OrderFilling = 0
	OrderFillingIOC    OrderFilling = 1
	OrderFillingReturn OrderFilling = 2
)

// ParseOrderFilling converts "FOK", "IOC" or "RETURN" into an OrderFilling.
func ParseOrderFilling(name string) (OrderFilling, error) {
	switch strings.ToUpper(name) {
	case "FOK":
		return OrderFillingFOK, nil
	case "IOC":
		return OrderFillingIOC, nil
	case "RETURN":
		return OrderFillingReturn, nil
	default:
		return 0, errors.Newf(errors.ErrCodeInvalidParameter, "unsupported filling mode: %s", name)
	}
}

// OrderTime is a terminal order lifetime mode constant.
type OrderTime int

const (
	OrderTimeGTC          OrderTime = 0
	OrderTimeDay          OrderTime = 1
	OrderTimeSpecified    OrderTime = 2
	OrderTimeSpecifiedDay OrderTime = 3
)

// ParseOrderTime converts "GTC", "DAY", "SPECIFIED" or "SPECIFIED_DAY" into
// an OrderTime.
func ParseOrderTime(name string) (OrderTime, error) {
	switch strings.ToUpper(name) {
	case "GTC":
		return OrderTimeGTC, nil
	case "DAY":
		return OrderTimeDay, nil
	case "SPECIFIED":
		return OrderTimeSpecified, nil
	case "SPECIFIED_DAY":
		return OrderTimeSpecifiedDay, nil
	default:
		return 0, errors.Newf(errors.ErrCodeInvalidParameter, "unsupported time mode: %s", name)
	}
}

// TradeAction is a terminal trade request action constant.
type TradeAction int

const (
	TradeActionDeal    TradeAction = 1
	TradeActionPending TradeAction = 5
	TradeActionSLTP    TradeAction = 6
	TradeActionModify  TradeAction = 7
	TradeActionRemove  TradeAction = 8
	TradeActionCloseBy TradeAction = 10
)

// PositionType is a terminal position direction constant.
type PositionType int

const (
	PositionTypeBuy  PositionType = 0
	PositionTypeSell PositionType = 1
)

// DealType is a terminal deal type constant.
type DealType int

const (
	DealTypeBuy        DealType = 0
	DealTypeSell       DealType = 1
	DealTypeBalance    DealType = 2
	DealTypeCredit     DealType = 3
	DealTypeCharge     DealType = 4
	DealTypeCorrection DealType = 5
	DealTypeCommission DealType = 7
	DealTypeDividend   DealType = 15
)

// DealEntry is a terminal deal entry direction constant.
type DealEntry int

const (
	DealEntryIn    DealEntry = 0
	DealEntryOut   DealEntry = 1
	DealEntryInOut DealEntry = 2
	DealEntryOutBy DealEntry = 3
)
