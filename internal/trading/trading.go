// Package trading builds, validates and dispatches trade requests, and
// derives margin and position metrics from venue data.
//
// Dispatch is a two-way switch: a dry run goes to the venue's validation
// call only, a live run goes to the execution call only. There is never a
// validate-then-execute fallback; the caller decides once, up front.
package trading

import (
	"context"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/moznion/go-optional"
	"github.com/rxtech-lab/mt5-bridge/internal/logger"
	"github.com/rxtech-lab/mt5-bridge/internal/session"
	"github.com/rxtech-lab/mt5-bridge/internal/terminal"
	"github.com/rxtech-lab/mt5-bridge/internal/types"
	"github.com/rxtech-lab/mt5-bridge/pkg/errors"
	"go.uber.org/zap"
)

// DefaultBatchLimit bounds how many positions a single batch operation may
// touch. Larger sweeps must be split by the caller.
const DefaultBatchLimit = 200

// MarketData is the read surface the trading helper needs. Kept narrow so
// tests can substitute it.
type MarketData interface {
	SymbolSpec(ctx context.Context, symbol string) (*types.SymbolSpec, error)
	Tick(ctx context.Context, symbol string) (*types.Tick, error)
	AccountInfo(ctx context.Context) (*types.Account, error)
	Positions(ctx context.Context, filter terminal.OrderFilter) ([]types.Position, error)
}

// Config tunes the trading helper.
type Config struct {
	// BatchLimit caps batch close / SL-TP sweeps; zero means DefaultBatchLimit.
	BatchLimit int
}

// Client is the trading operations helper.
type Client struct {
	sess     *session.Session
	data     MarketData
	validate *validator.Validate
	log      *logger.Logger
	cfg      Config
	now      func() time.Time
}

// New creates a trading client. data is typically the dataclient on the same
// session.
func New(sess *session.Session, data MarketData, cfg Config, log *logger.Logger) *Client {
	if cfg.BatchLimit <= 0 {
		cfg.BatchLimit = DefaultBatchLimit
	}

	return &Client{
		sess:     sess,
		data:     data,
		validate: validator.New(),
		log:      log,
		cfg:      cfg,
		now:      time.Now,
	}
}

// MarketOrderParams describes a market order to place. SL and TP are absolute
// prices; None leaves them unset.
type MarketOrderParams struct {
	Symbol      string  `validate:"required"`
	Side        types.OrderType
	Volume      float64 `validate:"required,gt=0"`
	FillingMode types.OrderFilling
	TimeMode    types.OrderTime
	SL          optional.Option[float64]
	TP          optional.Option[float64]
	Deviation   uint64
	Magic       uint64
	Comment     string
	// Extra carries venue request fields not modeled above; keys are native
	// request field names.
	Extra map[string]any
}

func (c *Client) validateMarketOrder(p MarketOrderParams) error {
	if err := c.validate.Struct(p); err != nil {
		return errors.Wrap(errors.ErrCodeInvalidRequest, "invalid market order parameters", err)
	}

	if p.Side != types.OrderTypeBuy && p.Side != types.OrderTypeSell {
		return errors.Newf(errors.ErrCodeInvalidRequest, "side must be buy or sell, got %d", p.Side)
	}

	if p.SL.IsSome() && p.SL.Unwrap() <= 0 {
		return errors.New(errors.ErrCodeInvalidRequest, "stop loss must be a positive price")
	}

	if p.TP.IsSome() && p.TP.Unwrap() <= 0 {
		return errors.New(errors.ErrCodeInvalidRequest, "take profit must be a positive price")
	}

	return nil
}

func buildMarketOrderRequest(p MarketOrderParams) *types.TradeRequest {
	return &types.TradeRequest{
		Action:      types.TradeActionDeal,
		Symbol:      p.Symbol,
		Volume:      p.Volume,
		Type:        p.Side,
		TypeFilling: p.FillingMode,
		TypeTime:    p.TimeMode,
		SL:          p.SL.TakeOr(0),
		TP:          p.TP.TakeOr(0),
		Deviation:   p.Deviation,
		Magic:       p.Magic,
		Comment:     p.Comment,
		Extra:       p.Extra,
	}
}

// Outcome is the full record of one dispatched request: what was sent, what
// came back, and how the return code classified.
type Outcome struct {
	Request *types.TradeRequest
	Result  *types.TradeResult
	Class   Classification
	DryRun  bool
}

// sendOrCheck dispatches one request. Dry run routes to the validation call,
// live to the execution call, never both. A Failure or Unknown verdict is
// returned as an error alongside the outcome so callers keep the raw payload.
func (c *Client) sendOrCheck(ctx context.Context, request *types.TradeRequest, dryRun bool) (*Outcome, error) {
	op := "order_send"
	if dryRun {
		op = "order_check"
	}

	var result *types.TradeResult
	err := c.sess.Do(ctx, op, func(api terminal.API) error {
		if dryRun {
			result = api.OrderCheck(request)
		} else {
			result = api.OrderSend(request)
		}

		if result == nil {
			code, desc := api.LastError()

			return errors.Wrapf(errors.ErrCodeVenueOperation,
				errors.NewVenueError(op, code, desc), "%s returned no result", op)
		}

		return nil
	})
	if err != nil {
		return nil, err
	}

	outcome := &Outcome{
		Request: request,
		Result:  result,
		Class:   Classify(result.Retcode, dryRun),
		DryRun:  dryRun,
	}

	switch outcome.Class {
	case ClassSuccess:
		return outcome, nil
	case ClassFailure:
		return outcome, errors.Newf(errors.ErrCodeOrderRejected,
			"%s failed with retcode %d: %s", op, result.Retcode, result.Comment)
	default:
		c.log.Warn("unclassified trade retcode",
			zap.String("op", op),
			zap.Uint32("retcode", uint32(result.Retcode)),
			zap.String("comment", result.Comment),
		)

		return outcome, errors.Newf(errors.ErrCodeUnknownRetcode,
			"%s returned unclassified retcode %d: %s", op, result.Retcode, result.Comment)
	}
}

// PlaceMarketOrder validates, builds and dispatches a market order. With
// dryRun the venue only validates the request; nothing reaches the book.
func (c *Client) PlaceMarketOrder(ctx context.Context, p MarketOrderParams, dryRun bool) (*Outcome, error) {
	if err := c.validateMarketOrder(p); err != nil {
		return nil, err
	}

	return c.sendOrCheck(ctx, buildMarketOrderRequest(p), dryRun)
}
