package trading

import (
	"context"
	"math"
	"time"

	"github.com/rxtech-lab/mt5-bridge/internal/tabular"
	"github.com/rxtech-lab/mt5-bridge/internal/terminal"
	"github.com/rxtech-lab/mt5-bridge/internal/types"
	"github.com/rxtech-lab/mt5-bridge/pkg/errors"
	"github.com/shopspring/decimal"
)

// entryPrice picks the quote side an order of the given type would fill at.
func entryPrice(tick *types.Tick, side types.OrderType) float64 {
	if side == types.OrderTypeSell {
		return tick.Bid
	}

	return tick.Ask
}

// orderCalcMargin runs the venue margin calculation through the session.
func (c *Client) orderCalcMargin(ctx context.Context, side types.OrderType, symbol string, volume, price float64) (float64, error) {
	var margin float64

	err := c.sess.Do(ctx, "order_calc_margin", func(api terminal.API) error {
		m, ok := api.OrderCalcMargin(side, symbol, volume, price)
		if !ok {
			code, desc := api.LastError()

			return errors.Wrap(errors.ErrCodeVenueOperation,
				"order_calc_margin returned no result",
				errors.NewVenueError("order_calc_margin", code, desc))
		}

		margin = m

		return nil
	})

	return margin, err
}

// OrderMargin returns the margin a new market order of the given size would
// require, priced at the current quote for its side.
func (c *Client) OrderMargin(ctx context.Context, symbol string, side types.OrderType, volume float64) (float64, error) {
	tick, err := c.data.Tick(ctx, symbol)
	if err != nil {
		return 0, err
	}

	price := entryPrice(tick, side)
	if price == 0 {
		return 0, errors.Newf(errors.ErrCodeMissingMarketData,
			"no usable quote for %s", symbol)
	}

	return c.orderCalcMargin(ctx, side, symbol, volume, price)
}

// MinimumOrderMargin returns the margin of the smallest order the symbol
// allows, along with that minimum volume.
func (c *Client) MinimumOrderMargin(ctx context.Context, symbol string, side types.OrderType) (margin, volumeMin float64, err error) {
	spec, err := c.data.SymbolSpec(ctx, symbol)
	if err != nil {
		return 0, 0, err
	}

	margin, err = c.OrderMargin(ctx, symbol, side, spec.VolumeMin)
	if err != nil {
		return 0, 0, err
	}

	return margin, spec.VolumeMin, nil
}

// VolumeByMargin returns the largest volume whose margin requirement stays
// within the given budget, floored to the symbol's volume step and capped at
// its maximum volume. A budget below one step's margin yields zero.
func (c *Client) VolumeByMargin(ctx context.Context, symbol string, side types.OrderType, marginBudget float64) (float64, error) {
	if marginBudget <= 0 {
		return 0, errors.New(errors.ErrCodeInvalidParameter, "margin budget must be positive")
	}

	spec, err := c.data.SymbolSpec(ctx, symbol)
	if err != nil {
		return 0, err
	}

	stepMargin, err := c.OrderMargin(ctx, symbol, side, spec.VolumeStep)
	if err != nil {
		return 0, err
	}

	if stepMargin <= 0 {
		return 0, errors.Newf(errors.ErrCodeMissingMarketData,
			"zero margin per volume step for %s", symbol)
	}

	steps := math.Floor(marginBudget / stepMargin)
	volume := steps * spec.VolumeStep
	if volume > spec.VolumeMax {
		volume = spec.VolumeMax
	}

	return roundToStep(volume, spec.VolumeStep), nil
}

// roundToStep snaps a volume to the step's own decimal precision, absorbing
// float drift from the steps*step multiplication.
func roundToStep(volume, step float64) float64 {
	if step <= 0 {
		return volume
	}

	digits := 0
	for step < 1 && digits < 8 {
		step *= 10
		digits++
	}

	mult := math.Pow10(digits)

	return math.Round(volume*mult) / mult
}

// SpreadRatio returns the bid/ask spread normalized by the mid price:
// (ask-bid)/(ask+bid)*2.
func (c *Client) SpreadRatio(ctx context.Context, symbol string) (float64, error) {
	tick, err := c.data.Tick(ctx, symbol)
	if err != nil {
		return 0, err
	}

	if tick.Bid+tick.Ask == 0 {
		return 0, errors.Newf(errors.ErrCodeMissingMarketData,
			"no usable quote for %s", symbol)
	}

	return (tick.Ask - tick.Bid) / (tick.Ask + tick.Bid) * 2, nil
}

// PositionMetrics are the derived figures for one open position. Signed
// fields carry the position direction, so sums over a mixed book net out.
type PositionMetrics struct {
	Ticket       uint64
	Symbol       string
	Elapsed      time.Duration
	Margin       float64
	SignedMargin float64
	SignedVolume float64
	// ProfitRatio is the underlier price move since entry, signed by
	// direction: (current/open - 1) * direction.
	ProfitRatio float64
}

// positionMetrics derives the metrics for one position.
func (c *Client) positionMetrics(ctx context.Context, pos types.Position, now time.Time) (PositionMetrics, error) {
	if pos.PriceOpen == 0 {
		return PositionMetrics{}, errors.Newf(errors.ErrCodeMissingMarketData,
			"position %d has zero entry price", pos.Ticket)
	}

	margin, err := c.orderCalcMargin(ctx, types.OrderType(pos.Type), pos.Symbol, pos.Volume, pos.PriceOpen)
	if err != nil {
		return PositionMetrics{}, err
	}

	sign := pos.DirectionSign()
	opened := time.Unix(pos.Time, 0)
	if pos.TimeMsc != 0 {
		opened = time.UnixMilli(pos.TimeMsc)
	}

	return PositionMetrics{
		Ticket:       pos.Ticket,
		Symbol:       pos.Symbol,
		Elapsed:      now.Sub(opened),
		Margin:       margin,
		SignedMargin: margin * sign,
		SignedVolume: pos.Volume * sign,
		ProfitRatio:  (pos.PriceCurrent/pos.PriceOpen - 1) * sign,
	}, nil
}

// PositionsMetrics derives metrics for every open position the filter
// matches, in the venue's position order.
func (c *Client) PositionsMetrics(ctx context.Context, filter terminal.OrderFilter) ([]PositionMetrics, error) {
	positions, err := c.data.Positions(ctx, filter)
	if err != nil {
		return nil, err
	}

	now := c.now()
	out := make([]PositionMetrics, 0, len(positions))

	for _, pos := range positions {
		m, err := c.positionMetrics(ctx, pos, now)
		if err != nil {
			return nil, err
		}

		out = append(out, m)
	}

	return out, nil
}

// PositionsWithMetrics returns the open positions as a table with the metric
// columns appended to the native position columns.
func (c *Client) PositionsWithMetrics(ctx context.Context, filter terminal.OrderFilter, opts ...tabular.Option) (*tabular.Table, error) {
	positions, err := c.data.Positions(ctx, filter)
	if err != nil {
		return nil, err
	}

	t := tabular.FromPositions(positions, opts...)
	t.Columns = append(t.Columns,
		"elapsed_seconds", "margin", "signed_margin", "signed_volume", "underlier_profit_ratio")

	now := c.now()

	for i, pos := range positions {
		m, err := c.positionMetrics(ctx, pos, now)
		if err != nil {
			return nil, err
		}

		t.Rows[i] = append(t.Rows[i],
			m.Elapsed.Seconds(), m.Margin, m.SignedMargin, m.SignedVolume, m.ProfitRatio)
	}

	t.SetIndex("ticket")

	return t, nil
}

// NewPositionMarginRatio returns the share of account equity the book would
// tie up if a new order of the given size were added to the symbol's open
// positions. Signed margins are summed with decimals so long and short
// exposure nets out without float drift.
func (c *Client) NewPositionMarginRatio(ctx context.Context, symbol string, side types.OrderType, volume float64) (float64, error) {
	account, err := c.data.AccountInfo(ctx)
	if err != nil {
		return 0, err
	}

	if account.Equity <= 0 {
		return 0, errors.New(errors.ErrCodeInvalidParameter, "account equity is not positive")
	}

	newMargin, err := c.OrderMargin(ctx, symbol, side, volume)
	if err != nil {
		return 0, err
	}

	sign := decimal.NewFromInt(1)
	if side == types.OrderTypeSell {
		sign = decimal.NewFromInt(-1)
	}

	total := decimal.NewFromFloat(newMargin).Mul(sign)

	metrics, err := c.PositionsMetrics(ctx, terminal.OrderFilter{Symbol: symbol})
	if err != nil {
		return 0, err
	}

	for _, m := range metrics {
		total = total.Add(decimal.NewFromFloat(m.SignedMargin))
	}

	ratio := total.Abs().Div(decimal.NewFromFloat(account.Equity))
	f, _ := ratio.Float64()

	return f, nil
}
