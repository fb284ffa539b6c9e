package tabular

import (
	"github.com/rxtech-lab/mt5-bridge/internal/types"
)

// FromTicks shapes quote ticks. The column order follows the native tick
// structure.
func FromTicks(ticks []types.Tick, opts ...Option) *Table {
	t := &Table{
		Columns: []string{"time", "bid", "ask", "last", "volume", "time_msc", "flags", "volume_real"},
		Rows:    make([][]any, 0, len(ticks)),
	}

	for _, tick := range ticks {
		t.Rows = append(t.Rows, []any{
			tick.Time, tick.Bid, tick.Ask, tick.Last, tick.Volume,
			tick.TimeMsc, tick.Flags, tick.VolumeReal,
		})
	}

	return finish(t, buildOptions(opts))
}

// FromRates shapes OHLCV bars.
func FromRates(rates []types.Rate, opts ...Option) *Table {
	t := &Table{
		Columns: []string{"time", "open", "high", "low", "close", "tick_volume", "spread", "real_volume"},
		Rows:    make([][]any, 0, len(rates)),
	}

	for _, r := range rates {
		t.Rows = append(t.Rows, []any{
			r.Time, r.Open, r.High, r.Low, r.Close,
			r.TickVolume, r.Spread, r.RealVolume,
		})
	}

	return finish(t, buildOptions(opts))
}

// FromSymbols shapes instrument specifications.
func FromSymbols(symbols []types.SymbolSpec, opts ...Option) *Table {
	t := &Table{
		Columns: []string{
			"name", "time", "digits", "spread", "bid", "ask", "last", "point",
			"volume_min", "volume_max", "volume_step", "trade_contract_size",
			"trade_mode", "currency_base", "currency_profit", "currency_margin",
			"visible", "description", "path",
		},
		Rows: make([][]any, 0, len(symbols)),
	}

	for _, s := range symbols {
		t.Rows = append(t.Rows, []any{
			s.Name, s.Time, s.Digits, s.Spread, s.Bid, s.Ask, s.Last, s.Point,
			s.VolumeMin, s.VolumeMax, s.VolumeStep, s.TradeContractSize,
			s.TradeMode, s.CurrencyBase, s.CurrencyProfit, s.CurrencyMargin,
			s.Visible, s.Description, s.Path,
		})
	}

	return finish(t, buildOptions(opts))
}

// FromPositions shapes open positions.
func FromPositions(positions []types.Position, opts ...Option) *Table {
	t := &Table{
		Columns: []string{
			"ticket", "time", "time_msc", "time_update", "time_update_msc",
			"type", "magic", "identifier", "reason", "volume", "price_open",
			"sl", "tp", "price_current", "swap", "profit", "symbol", "comment",
			"external_id",
		},
		Rows: make([][]any, 0, len(positions)),
	}

	for _, p := range positions {
		t.Rows = append(t.Rows, []any{
			p.Ticket, p.Time, p.TimeMsc, p.TimeUpdate, p.TimeUpdateMsc,
			int(p.Type), p.Magic, p.Identifier, p.Reason, p.Volume, p.PriceOpen,
			p.SL, p.TP, p.PriceCurrent, p.Swap, p.Profit, p.Symbol, p.Comment,
			p.ExternalID,
		})
	}

	return finish(t, buildOptions(opts))
}

// FromOrders shapes active or historical orders.
func FromOrders(orders []types.Order, opts ...Option) *Table {
	t := &Table{
		Columns: []string{
			"ticket", "time_setup", "time_setup_msc", "time_done",
			"time_done_msc", "time_expiration", "type", "type_time",
			"type_filling", "state", "magic", "position_id", "volume_initial",
			"volume_current", "price_open", "sl", "tp", "price_current",
			"price_stoplimit", "symbol", "comment", "external_id",
		},
		Rows: make([][]any, 0, len(orders)),
	}

	for _, o := range orders {
		t.Rows = append(t.Rows, []any{
			o.Ticket, o.TimeSetup, o.TimeSetupMsc, o.TimeDone,
			o.TimeDoneMsc, o.TimeExpiration, int(o.Type), int(o.TypeTime),
			int(o.TypeFilling), o.State, o.Magic, o.PositionID, o.VolumeInitial,
			o.VolumeCurrent, o.PriceOpen, o.SL, o.TP, o.PriceCurrent,
			o.PriceStopLimit, o.Symbol, o.Comment, o.ExternalID,
		})
	}

	return finish(t, buildOptions(opts))
}

// FromDeals shapes executed deals from account history.
func FromDeals(deals []types.Deal, opts ...Option) *Table {
	t := &Table{
		Columns: []string{
			"ticket", "order", "time", "time_msc", "type", "entry", "magic",
			"position_id", "reason", "volume", "price", "commission", "swap",
			"profit", "fee", "symbol", "comment", "external_id",
		},
		Rows: make([][]any, 0, len(deals)),
	}

	for _, d := range deals {
		t.Rows = append(t.Rows, []any{
			d.Ticket, d.Order, d.Time, d.TimeMsc, int(d.Type), int(d.Entry),
			d.Magic, d.PositionID, d.Reason, d.Volume, d.Price, d.Commission,
			d.Swap, d.Profit, d.Fee, d.Symbol, d.Comment, d.ExternalID,
		})
	}

	return finish(t, buildOptions(opts))
}

// FromAccount shapes the account state as a single-row table.
func FromAccount(account types.Account, opts ...Option) *Table {
	t := &Table{
		Columns: []string{
			"login", "trade_mode", "leverage", "limit_orders", "trade_allowed",
			"trade_expert", "balance", "credit", "profit", "equity", "margin",
			"margin_free", "margin_level", "currency", "server", "company",
			"name",
		},
		Rows: [][]any{{
			account.Login, account.TradeMode, account.Leverage,
			account.LimitOrders, account.TradeAllowed, account.TradeExpert,
			account.Balance, account.Credit, account.Profit, account.Equity,
			account.Margin, account.MarginFree, account.MarginLevel,
			account.Currency, account.Server, account.Company, account.Name,
		}},
	}

	return finish(t, buildOptions(opts))
}

// FromTerminalStatus shapes the terminal status as a single-row table.
func FromTerminalStatus(status types.TerminalStatus, opts ...Option) *Table {
	t := &Table{
		Columns: []string{
			"connected", "trade_allowed", "build", "ping_last", "maxbars",
			"name", "company", "language", "path",
		},
		Rows: [][]any{{
			status.Connected, status.TradeAllowed, status.Build,
			status.PingLast, status.MaxBars, status.Name, status.Company,
			status.Language, status.Path,
		}},
	}

	return finish(t, buildOptions(opts))
}

// FromBookEntries shapes a market depth snapshot.
func FromBookEntries(entries []types.BookEntry, opts ...Option) *Table {
	t := &Table{
		Columns: []string{"type", "price", "volume", "volume_dbl"},
		Rows:    make([][]any, 0, len(entries)),
	}

	for _, e := range entries {
		t.Rows = append(t.Rows, []any{e.Type, e.Price, e.Volume, e.VolumeDbl})
	}

	return finish(t, buildOptions(opts))
}
