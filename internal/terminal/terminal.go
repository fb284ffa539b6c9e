// Package terminal defines the call surface of the MetaTrader 5 terminal.
//
// The native API is a closed, synchronous, not-thread-safe surface. This
// package only mirrors it; shaping, error translation and call serialization
// live in the session and data layers above. Implementations follow the
// native failure convention: a failed call returns a nil result (or ok=false)
// and records the failure so that LastError reports it. An empty, non-nil
// slice is legitimate "no data", not a failure.
package terminal

import "github.com/rxtech-lab/mt5-bridge/internal/types"

// InitParams are the terminal connection parameters. Timeout is a
// connection-level bound set once at initialize time; there is no per-call
// deadline in the native API.
type InitParams struct {
	Path      string
	Login     int64
	Password  string
	Server    string
	TimeoutMS int
	Portable  bool
}

// OrderFilter narrows an active orders or positions query. Zero values mean
// no filter.
type OrderFilter struct {
	Symbol string
	Group  string
	Ticket uint64
}

// HistoryQuery selects historical orders or deals. Either the date range or
// one of Ticket/Position must be set.
type HistoryQuery struct {
	From     int64 // epoch seconds, inclusive
	To       int64 // epoch seconds, inclusive
	Group    string
	Ticket   uint64
	Position uint64
}

// API is the terminal call surface. Only one call may be in flight per
// connection; the session wrapper enforces that.
type API interface {
	// Lifecycle
	Initialize(params InitParams) bool
	Login(login int64, password, server string, timeoutMS int) bool
	Shutdown()
	Version() (types.TerminalVersion, bool)
	LastError() (code int, description string)

	// Account and terminal state
	AccountInfo() *types.Account
	TerminalInfo() *types.TerminalStatus

	// Symbols
	SymbolsTotal() int
	SymbolsGet(group string) []types.SymbolSpec
	SymbolInfo(symbol string) *types.SymbolSpec
	SymbolInfoTick(symbol string) *types.Tick
	SymbolSelect(symbol string, enable bool) bool
	MarketBookGet(symbol string) []types.BookEntry

	// Market history
	CopyRatesFrom(symbol string, timeframe types.Timeframe, from int64, count int) []types.Rate
	CopyRatesFromPos(symbol string, timeframe types.Timeframe, startPos, count int) []types.Rate
	CopyRatesRange(symbol string, timeframe types.Timeframe, from, to int64) []types.Rate
	CopyTicksFrom(symbol string, from int64, count int, flags types.TickFlag) []types.Tick
	CopyTicksRange(symbol string, from, to int64, flags types.TickFlag) []types.Tick

	// Orders and positions
	OrdersTotal() int
	OrdersGet(filter OrderFilter) []types.Order
	PositionsTotal() int
	PositionsGet(filter OrderFilter) []types.Position
	HistoryOrdersGet(query HistoryQuery) []types.Order
	HistoryDealsGet(query HistoryQuery) []types.Deal

	// Trading
	OrderCalcMargin(action types.OrderType, symbol string, volume, price float64) (float64, bool)
	OrderCalcProfit(action types.OrderType, symbol string, volume, priceOpen, priceClose float64) (float64, bool)
	OrderCheck(request *types.TradeRequest) *types.TradeResult
	OrderSend(request *types.TradeRequest) *types.TradeResult
}
