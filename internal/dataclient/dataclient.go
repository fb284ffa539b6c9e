// Package dataclient provides read access to the terminal through the
// session layer. It translates the native nil-on-error convention into
// structured errors carrying the venue's last-error code, and retries
// read-only fetches a bounded number of times. An empty result set is data,
// not an error.
package dataclient

import (
	"context"
	"time"

	"github.com/rxtech-lab/mt5-bridge/internal/logger"
	"github.com/rxtech-lab/mt5-bridge/internal/session"
	"github.com/rxtech-lab/mt5-bridge/internal/terminal"
	"github.com/rxtech-lab/mt5-bridge/internal/types"
	"github.com/rxtech-lab/mt5-bridge/pkg/errors"
	"go.uber.org/zap"
)

// Config bounds the read retry behavior.
type Config struct {
	// ReadRetries is the number of additional attempts after a failed read.
	ReadRetries int
	// RetryInterval is the base backoff; attempt i sleeps i*RetryInterval.
	RetryInterval time.Duration
}

// Client fetches terminal data through a session.
type Client struct {
	sess *session.Session
	cfg  Config
	log  *logger.Logger
}

// New creates a data client on top of the given session.
func New(sess *session.Session, cfg Config, log *logger.Logger) *Client {
	if cfg.RetryInterval <= 0 {
		cfg.RetryInterval = 100 * time.Millisecond
	}

	return &Client{sess: sess, cfg: cfg, log: log}
}

// Ready reports whether the underlying session has a live connection.
func (c *Client) Ready() error {
	return c.sess.EnsureReady()
}

// venueErr builds the structured error for a failed terminal call, reading
// the last-error state while still inside the serialized call.
func venueErr(api terminal.API, op string) error {
	code, desc := api.LastError()

	return errors.Wrapf(errors.ErrCodeVenueOperation,
		errors.NewVenueError(op, code, desc), "%s returned no result", op)
}

// read runs a fetch through the session and retries venue failures up to the
// configured bound. Session-level errors (not initialized, cancelled) are
// never retried.
func (c *Client) read(ctx context.Context, name string, fn func(terminal.API) error) error {
	var err error

	for attempt := 0; attempt <= c.cfg.ReadRetries; attempt++ {
		if attempt > 0 {
			c.log.Warn("retrying terminal read",
				zap.String("op", name),
				zap.Int("attempt", attempt),
				zap.Error(err),
			)

			select {
			case <-ctx.Done():
				return errors.Wrapf(errors.ErrCodeCallCancelled, ctx.Err(), "%s cancelled during retry backoff", name)
			case <-time.After(time.Duration(attempt) * c.cfg.RetryInterval):
			}
		}

		err = c.sess.Do(ctx, name, fn)
		if err == nil || !errors.IsVenueError(err) {
			return err
		}
	}

	return err
}

// Version returns the terminal version triple.
func (c *Client) Version(ctx context.Context) (types.TerminalVersion, error) {
	var version types.TerminalVersion

	err := c.read(ctx, "version", func(api terminal.API) error {
		v, ok := api.Version()
		if !ok {
			return venueErr(api, "version")
		}

		version = v

		return nil
	})

	return version, err
}

// AccountInfo returns the current account state.
func (c *Client) AccountInfo(ctx context.Context) (*types.Account, error) {
	var account *types.Account

	err := c.read(ctx, "account_info", func(api terminal.API) error {
		account = api.AccountInfo()
		if account == nil {
			return venueErr(api, "account_info")
		}

		return nil
	})

	return account, err
}

// TerminalInfo returns the connected terminal's status.
func (c *Client) TerminalInfo(ctx context.Context) (*types.TerminalStatus, error) {
	var status *types.TerminalStatus

	err := c.read(ctx, "terminal_info", func(api terminal.API) error {
		status = api.TerminalInfo()
		if status == nil {
			return venueErr(api, "terminal_info")
		}

		return nil
	})

	return status, err
}

// Symbols returns the instruments matching the group pattern; an empty group
// returns all of them.
func (c *Client) Symbols(ctx context.Context, group string) ([]types.SymbolSpec, error) {
	var symbols []types.SymbolSpec

	err := c.read(ctx, "symbols_get", func(api terminal.API) error {
		symbols = api.SymbolsGet(group)
		if symbols == nil {
			return venueErr(api, "symbols_get")
		}

		return nil
	})

	return symbols, err
}

// SymbolSpec returns the specification of a single instrument.
func (c *Client) SymbolSpec(ctx context.Context, symbol string) (*types.SymbolSpec, error) {
	var spec *types.SymbolSpec

	err := c.read(ctx, "symbol_info", func(api terminal.API) error {
		spec = api.SymbolInfo(symbol)
		if spec == nil {
			return venueErr(api, "symbol_info")
		}

		return nil
	})

	return spec, err
}

// Tick returns the latest quote for a symbol.
func (c *Client) Tick(ctx context.Context, symbol string) (*types.Tick, error) {
	var tick *types.Tick

	err := c.read(ctx, "symbol_info_tick", func(api terminal.API) error {
		tick = api.SymbolInfoTick(symbol)
		if tick == nil {
			return venueErr(api, "symbol_info_tick")
		}

		return nil
	})

	return tick, err
}

// MarketBook returns the current depth snapshot for a symbol.
func (c *Client) MarketBook(ctx context.Context, symbol string) ([]types.BookEntry, error) {
	var book []types.BookEntry

	err := c.read(ctx, "market_book_get", func(api terminal.API) error {
		book = api.MarketBookGet(symbol)
		if book == nil {
			return venueErr(api, "market_book_get")
		}

		return nil
	})

	return book, err
}

// RatesFrom returns count bars starting at the given open time.
func (c *Client) RatesFrom(ctx context.Context, symbol string, timeframe types.Timeframe, from time.Time, count int) ([]types.Rate, error) {
	var rates []types.Rate

	err := c.read(ctx, "copy_rates_from", func(api terminal.API) error {
		rates = api.CopyRatesFrom(symbol, timeframe, from.Unix(), count)
		if rates == nil {
			return venueErr(api, "copy_rates_from")
		}

		return nil
	})

	return rates, err
}

// RatesFromPos returns count bars counting back from bar position startPos,
// where position zero is the current bar.
func (c *Client) RatesFromPos(ctx context.Context, symbol string, timeframe types.Timeframe, startPos, count int) ([]types.Rate, error) {
	var rates []types.Rate

	err := c.read(ctx, "copy_rates_from_pos", func(api terminal.API) error {
		rates = api.CopyRatesFromPos(symbol, timeframe, startPos, count)
		if rates == nil {
			return venueErr(api, "copy_rates_from_pos")
		}

		return nil
	})

	return rates, err
}

// RatesRange returns the bars between from and to, inclusive.
func (c *Client) RatesRange(ctx context.Context, symbol string, timeframe types.Timeframe, from, to time.Time) ([]types.Rate, error) {
	var rates []types.Rate

	err := c.read(ctx, "copy_rates_range", func(api terminal.API) error {
		rates = api.CopyRatesRange(symbol, timeframe, from.Unix(), to.Unix())
		if rates == nil {
			return venueErr(api, "copy_rates_range")
		}

		return nil
	})

	return rates, err
}

// TicksFrom returns up to count ticks starting at the given time.
func (c *Client) TicksFrom(ctx context.Context, symbol string, from time.Time, count int, flags types.TickFlag) ([]types.Tick, error) {
	var ticks []types.Tick

	err := c.read(ctx, "copy_ticks_from", func(api terminal.API) error {
		ticks = api.CopyTicksFrom(symbol, from.Unix(), count, flags)
		if ticks == nil {
			return venueErr(api, "copy_ticks_from")
		}

		return nil
	})

	return ticks, err
}

// TicksRange returns the ticks between from and to, inclusive.
func (c *Client) TicksRange(ctx context.Context, symbol string, from, to time.Time, flags types.TickFlag) ([]types.Tick, error) {
	var ticks []types.Tick

	err := c.read(ctx, "copy_ticks_range", func(api terminal.API) error {
		ticks = api.CopyTicksRange(symbol, from.Unix(), to.Unix(), flags)
		if ticks == nil {
			return venueErr(api, "copy_ticks_range")
		}

		return nil
	})

	return ticks, err
}

// Positions returns the open positions matching the filter.
func (c *Client) Positions(ctx context.Context, filter terminal.OrderFilter) ([]types.Position, error) {
	var positions []types.Position

	err := c.read(ctx, "positions_get", func(api terminal.API) error {
		positions = api.PositionsGet(filter)
		if positions == nil {
			return venueErr(api, "positions_get")
		}

		return nil
	})

	return positions, err
}

// Orders returns the active orders matching the filter.
func (c *Client) Orders(ctx context.Context, filter terminal.OrderFilter) ([]types.Order, error) {
	var orders []types.Order

	err := c.read(ctx, "orders_get", func(api terminal.API) error {
		orders = api.OrdersGet(filter)
		if orders == nil {
			return venueErr(api, "orders_get")
		}

		return nil
	})

	return orders, err
}

// HistoryOrders returns historical orders matching the query.
func (c *Client) HistoryOrders(ctx context.Context, query terminal.HistoryQuery) ([]types.Order, error) {
	var orders []types.Order

	err := c.read(ctx, "history_orders_get", func(api terminal.API) error {
		orders = api.HistoryOrdersGet(query)
		if orders == nil {
			return venueErr(api, "history_orders_get")
		}

		return nil
	})

	return orders, err
}

// HistoryDeals returns historical deals matching the query.
func (c *Client) HistoryDeals(ctx context.Context, query terminal.HistoryQuery) ([]types.Deal, error) {
	var deals []types.Deal

	err := c.read(ctx, "history_deals_get", func(api terminal.API) error {
		deals = api.HistoryDealsGet(query)
		if deals == nil {
			return venueErr(api, "history_deals_get")
		}

		return nil
	})

	return deals, err
}
