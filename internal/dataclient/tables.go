package dataclient

import (
	"context"
	"time"

	"github.com/rxtech-lab/mt5-bridge/internal/tabular"
	"github.com/rxtech-lab/mt5-bridge/internal/terminal"
	"github.com/rxtech-lab/mt5-bridge/internal/types"
)

// Table fetch variants for the HTTP façade and the export store. Each one
// applies the kind's natural index; the index is skipped automatically when
// the fetch legitimately returns no rows.

// SymbolsTable fetches instruments as a table indexed by name.
func (c *Client) SymbolsTable(ctx context.Context, group string, opts ...tabular.Option) (*tabular.Table, error) {
	symbols, err := c.Symbols(ctx, group)
	if err != nil {
		return nil, err
	}

	t := tabular.FromSymbols(symbols, opts...)
	t.SetIndex("name")

	return t, nil
}

// RatesFromTable fetches bars as a table indexed by open time.
func (c *Client) RatesFromTable(ctx context.Context, symbol string, timeframe types.Timeframe, from time.Time, count int, opts ...tabular.Option) (*tabular.Table, error) {
	rates, err := c.RatesFrom(ctx, symbol, timeframe, from, count)
	if err != nil {
		return nil, err
	}

	t := tabular.FromRates(rates, opts...)
	t.SetIndex("time")

	return t, nil
}

// RatesFromPosTable fetches bars by position as a table indexed by open time.
func (c *Client) RatesFromPosTable(ctx context.Context, symbol string, timeframe types.Timeframe, startPos, count int, opts ...tabular.Option) (*tabular.Table, error) {
	rates, err := c.RatesFromPos(ctx, symbol, timeframe, startPos, count)
	if err != nil {
		return nil, err
	}

	t := tabular.FromRates(rates, opts...)
	t.SetIndex("time")

	return t, nil
}

// RatesRangeTable fetches a bar range as a table indexed by open time.
func (c *Client) RatesRangeTable(ctx context.Context, symbol string, timeframe types.Timeframe, from, to time.Time, opts ...tabular.Option) (*tabular.Table, error) {
	rates, err := c.RatesRange(ctx, symbol, timeframe, from, to)
	if err != nil {
		return nil, err
	}

	t := tabular.FromRates(rates, opts...)
	t.SetIndex("time")

	return t, nil
}

// TicksFromTable fetches ticks as a table indexed by millisecond time.
func (c *Client) TicksFromTable(ctx context.Context, symbol string, from time.Time, count int, flags types.TickFlag, opts ...tabular.Option) (*tabular.Table, error) {
	ticks, err := c.TicksFrom(ctx, symbol, from, count, flags)
	if err != nil {
		return nil, err
	}

	t := tabular.FromTicks(ticks, opts...)
	t.SetIndex("time_msc")

	return t, nil
}

// TicksRangeTable fetches a tick range as a table indexed by millisecond time.
func (c *Client) TicksRangeTable(ctx context.Context, symbol string, from, to time.Time, flags types.TickFlag, opts ...tabular.Option) (*tabular.Table, error) {
	ticks, err := c.TicksRange(ctx, symbol, from, to, flags)
	if err != nil {
		return nil, err
	}

	t := tabular.FromTicks(ticks, opts...)
	t.SetIndex("time_msc")

	return t, nil
}

// PositionsTable fetches open positions as a table indexed by ticket.
func (c *Client) PositionsTable(ctx context.Context, filter terminal.OrderFilter, opts ...tabular.Option) (*tabular.Table, error) {
	positions, err := c.Positions(ctx, filter)
	if err != nil {
		return nil, err
	}

	t := tabular.FromPositions(positions, opts...)
	t.SetIndex("ticket")

	return t, nil
}

// OrdersTable fetches active orders as a table indexed by ticket.
func (c *Client) OrdersTable(ctx context.Context, filter terminal.OrderFilter, opts ...tabular.Option) (*tabular.Table, error) {
	orders, err := c.Orders(ctx, filter)
	if err != nil {
		return nil, err
	}

	t := tabular.FromOrders(orders, opts...)
	t.SetIndex("ticket")

	return t, nil
}

// HistoryOrdersTable fetches historical orders as a table indexed by ticket.
func (c *Client) HistoryOrdersTable(ctx context.Context, query terminal.HistoryQuery, opts ...tabular.Option) (*tabular.Table, error) {
	orders, err := c.HistoryOrders(ctx, query)
	if err != nil {
		return nil, err
	}

	t := tabular.FromOrders(orders, opts...)
	t.SetIndex("ticket")

	return t, nil
}

// HistoryDealsTable fetches historical deals as a table indexed by ticket.
func (c *Client) HistoryDealsTable(ctx context.Context, query terminal.HistoryQuery, opts ...tabular.Option) (*tabular.Table, error) {
	deals, err := c.HistoryDeals(ctx, query)
	if err != nil {
		return nil, err
	}

	t := tabular.FromDeals(deals, opts...)
	t.SetIndex("ticket")

	return t, nil
}

// AccountTable fetches the account state as a single-row table.
func (c *Client) AccountTable(ctx context.Context, opts ...tabular.Option) (*tabular.Table, error) {
	account, err := c.AccountInfo(ctx)
	if err != nil {
		return nil, err
	}

	return tabular.FromAccount(*account, opts...), nil
}

// TerminalTable fetches the terminal status as a single-row table.
func (c *Client) TerminalTable(ctx context.Context, opts ...tabular.Option) (*tabular.Table, error) {
	status, err := c.TerminalInfo(ctx)
	if err != nil {
		return nil, err
	}

	return tabular.FromTerminalStatus(*status, opts...), nil
}

// MarketBookTable fetches the depth snapshot as a table.
func (c *Client) MarketBookTable(ctx context.Context, symbol string, opts ...tabular.Option) (*tabular.Table, error) {
	book, err := c.MarketBook(ctx, symbol)
	if err != nil {
		return nil, err
	}

	return tabular.FromBookEntries(book, opts...), nil
}
