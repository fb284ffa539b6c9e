package trading

import (
	"context"
	"math"

	"github.com/moznion/go-optional"
	"github.com/rxtech-lab/mt5-bridge/internal/terminal"
	"github.com/rxtech-lab/mt5-bridge/internal/types"
	"github.com/rxtech-lab/mt5-bridge/pkg/errors"
	"go.uber.org/zap"
)

// Selector narrows a batch operation to a subset of open positions. Zero
// values select everything.
type Selector struct {
	Symbol  string
	Group   string
	Tickets []uint64
}

// CloseParams configures a batch close sweep.
type CloseParams struct {
	Selector    Selector
	FillingMode types.OrderFilling
	Deviation   uint64
	Comment     string
	DryRun      bool
}

// CloseResult is the per-position outcome of a close sweep.
type CloseResult struct {
	Ticket  uint64
	Symbol  string
	Volume  float64
	Outcome *Outcome
	Err     error
}

// SLTPParams configures a batch stop-loss / take-profit rewrite. None leaves
// the respective price as the position already has it.
type SLTPParams struct {
	Symbol  string `validate:"required"`
	Tickets []uint64
	SL      optional.Option[float64]
	TP      optional.Option[float64]
	DryRun  bool
}

// SLTPResult is the per-position outcome of an SL/TP sweep. Skipped marks a
// position whose protective prices already matched the rounded targets.
type SLTPResult struct {
	Ticket  uint64
	Symbol  string
	SL      float64
	TP      float64
	Skipped bool
	Outcome *Outcome
	Err     error
}

// resolvePositions fetches the positions a selector addresses, preserving the
// venue's ticket order.
func (c *Client) resolvePositions(ctx context.Context, sel Selector) ([]types.Position, error) {
	positions, err := c.data.Positions(ctx, terminal.OrderFilter{Symbol: sel.Symbol, Group: sel.Group})
	if err != nil {
		return nil, err
	}

	if len(sel.Tickets) == 0 {
		return positions, nil
	}

	wanted := make(map[uint64]struct{}, len(sel.Tickets))
	for _, ticket := range sel.Tickets {
		wanted[ticket] = struct{}{}
	}

	out := make([]types.Position, 0, len(sel.Tickets))
	for _, p := range positions {
		if _, ok := wanted[p.Ticket]; ok {
			out = append(out, p)
		}
	}

	return out, nil
}

func (c *Client) checkBatchSize(op string, n int) error {
	if n > c.cfg.BatchLimit {
		return errors.Newf(errors.ErrCodeBatchTooLarge,
			"%s addresses %d positions, limit is %d", op, n, c.cfg.BatchLimit)
	}

	return nil
}

// ClosePositions closes every position the selector addresses, one request
// per position. A failed close never aborts the sweep; each result carries
// its own outcome or error, in the venue's position order.
func (c *Client) ClosePositions(ctx context.Context, p CloseParams) ([]CloseResult, error) {
	positions, err := c.resolvePositions(ctx, p.Selector)
	if err != nil {
		return nil, err
	}

	if len(positions) == 0 {
		c.log.Warn("close sweep matched no open positions",
			zap.String("symbol", p.Selector.Symbol),
			zap.String("group", p.Selector.Group),
		)

		return []CloseResult{}, nil
	}

	if err := c.checkBatchSize("close", len(positions)); err != nil {
		return nil, err
	}

	results := make([]CloseResult, 0, len(positions))

	for _, pos := range positions {
		request := &types.TradeRequest{
			Action:      types.TradeActionDeal,
			Symbol:      pos.Symbol,
			Volume:      pos.Volume,
			Type:        closingSide(pos.Type),
			Position:    pos.Ticket,
			TypeFilling: p.FillingMode,
			Deviation:   p.Deviation,
			Comment:     p.Comment,
		}

		outcome, err := c.sendOrCheck(ctx, request, p.DryRun)
		results = append(results, CloseResult{
			Ticket:  pos.Ticket,
			Symbol:  pos.Symbol,
			Volume:  pos.Volume,
			Outcome: outcome,
			Err:     err,
		})
	}

	return results, nil
}

// closingSide returns the order side that flattens a position.
func closingSide(positionType types.PositionType) types.OrderType {
	if positionType == types.PositionTypeBuy {
		return types.OrderTypeSell
	}

	return types.OrderTypeBuy
}

// UpdateSLTP rewrites the protective prices of every selected position on one
// symbol. Targets are rounded to the symbol's digits first; positions already
// at the rounded targets are skipped without a venue call.
func (c *Client) UpdateSLTP(ctx context.Context, p SLTPParams) ([]SLTPResult, error) {
	if err := c.validate.Struct(p); err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidRequest, "invalid SL/TP parameters", err)
	}

	spec, err := c.data.SymbolSpec(ctx, p.Symbol)
	if err != nil {
		return nil, err
	}

	positions, err := c.resolvePositions(ctx, Selector{Symbol: p.Symbol, Tickets: p.Tickets})
	if err != nil {
		return nil, err
	}

	if len(positions) == 0 {
		c.log.Warn("SL/TP sweep matched no open positions", zap.String("symbol", p.Symbol))

		return []SLTPResult{}, nil
	}

	if err := c.checkBatchSize("sltp", len(positions)); err != nil {
		return nil, err
	}

	results := make([]SLTPResult, 0, len(positions))

	for _, pos := range positions {
		sl := roundToDigits(p.SL.TakeOr(pos.SL), spec.Digits)
		tp := roundToDigits(p.TP.TakeOr(pos.TP), spec.Digits)

		if sl == pos.SL && tp == pos.TP {
			results = append(results, SLTPResult{
				Ticket:  pos.Ticket,
				Symbol:  pos.Symbol,
				SL:      sl,
				TP:      tp,
				Skipped: true,
			})

			continue
		}

		request := &types.TradeRequest{
			Action:   types.TradeActionSLTP,
			Symbol:   pos.Symbol,
			Position: pos.Ticket,
			SL:       sl,
			TP:       tp,
		}

		outcome, err := c.sendOrCheck(ctx, request, p.DryRun)
		results = append(results, SLTPResult{
			Ticket:  pos.Ticket,
			Symbol:  pos.Symbol,
			SL:      sl,
			TP:      tp,
			Outcome: outcome,
			Err:     err,
		})
	}

	return results, nil
}

func roundToDigits(v float64, digits int) float64 {
	mult := math.Pow10(digits)

	return math.Round(v*mult) / mult
}
