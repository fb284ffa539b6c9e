package sim

import (
	"github.com/rxtech-lab/mt5-bridge/internal/types"
)

// OrderCalcMargin implements terminal.API.
func (t *Terminal) OrderCalcMargin(action types.OrderType, symbol string, volume, price float64) (float64, bool) {
	t.mu.Lock()
	defer t.mu.Unlock()

	spec, found := t.symbols[symbol]
	if !found {
		t.fail(types.ResNotFound, "Terminal: symbol not found")

		return 0, false
	}

	if t.shouldFail("order_calc_margin") {
		return 0, false
	}

	if volume <= 0 || price <= 0 {
		t.fail(types.ResInvalidParams, "Terminal: invalid request parameters")

		return 0, false
	}

	t.ok()

	return volume * spec.TradeContractSize * price / float64(t.account.Leverage), true
}

// OrderCalcProfit implements terminal.API.
func (t *Terminal) OrderCalcProfit(action types.OrderType, symbol string, volume, priceOpen, priceClose float64) (float64, bool) {
	t.mu.Lock()
	defer t.mu.Unlock()

	spec, found := t.symbols[symbol]
	if !found {
		t.fail(types.ResNotFound, "Terminal: symbol not found")

		return 0, false
	}

	if t.shouldFail("order_calc_profit") {
		return 0, false
	}

	sign := 1.0
	if action == types.OrderTypeSell {
		sign = -1.0
	}

	t.ok()

	return (priceClose - priceOpen) * sign * volume * spec.TradeContractSize, true
}

// validateRequestLocked runs the shared checks of the validation and
// execution paths and returns a failure retcode, or TradeRetcodeCheckOK.
func (t *Terminal) validateRequestLocked(request *types.TradeRequest) (types.TradeRetcode, string) {
	spec, found := t.symbols[request.Symbol]
	if !found {
		return types.TradeRetcodeInvalid, "Invalid request"
	}

	switch request.Action {
	case types.TradeActionDeal:
		if request.Volume < spec.VolumeMin || request.Volume > spec.VolumeMax {
			return types.TradeRetcodeInvalidVolume, "Invalid volume"
		}

		margin := request.Volume * spec.TradeContractSize * t.entryPrice(spec, request.Type) / float64(t.account.Leverage)
		if margin > t.account.MarginFree {
			return types.TradeRetcodeNoMoney, "No money"
		}
	case types.TradeActionSLTP:
		if _, ok := t.positions[request.Position]; !ok {
			return types.TradeRetcodeInvalid, "Position not found"
		}
	default:
		return types.TradeRetcodeInvalid, "Unsupported action"
	}

	return types.TradeRetcodeCheckOK, "Done"
}

func (t *Terminal) entryPrice(spec *types.SymbolSpec, orderType types.OrderType) float64 {
	if orderType == types.OrderTypeSell {
		return spec.Bid
	}

	return spec.Ask
}

// OrderCheck implements terminal.API. The validation path never mutates
// state and returns retcode zero on success, mirroring the native behavior.
func (t *Terminal) OrderCheck(request *types.TradeRequest) *types.TradeResult {
	t.mu.Lock()
	defer t.mu.Unlock()

	if request == nil {
		t.fail(types.ResInvalidParams, "Terminal: invalid request parameters")

		return nil
	}

	if t.shouldFail("order_check") {
		return nil
	}

	t.refreshAccountLocked()
	t.ok()

	if t.forcedRetcode != 0 {
		rc := t.forcedRetcode
		t.forcedRetcode = 0

		return &types.TradeResult{Retcode: rc, Comment: "Forced"}
	}

	rc, comment := t.validateRequestLocked(request)
	result := &types.TradeResult{
		Retcode:     rc,
		Comment:     comment,
		Balance:     t.account.Balance,
		Equity:      t.account.Equity,
		Profit:      t.account.Profit,
		MarginFree:  t.account.MarginFree,
		MarginLevel: t.account.MarginLevel,
	}

	if rc == types.TradeRetcodeCheckOK && request.Action == types.TradeActionDeal {
		if spec, found := t.symbols[request.Symbol]; found {
			result.Margin = request.Volume * spec.TradeContractSize * t.entryPrice(spec, request.Type) / float64(t.account.Leverage)
		}
	}

	return result
}

// OrderSend implements terminal.API. Market deals fill immediately at the
// current quote; SLTP requests rewrite the position's protective prices.
func (t *Terminal) OrderSend(request *types.TradeRequest) *types.TradeResult {
	t.mu.Lock()
	defer t.mu.Unlock()

	if request == nil {
		t.fail(types.ResInvalidParams, "Terminal: invalid request parameters")

		return nil
	}

	if t.shouldFail("order_send") {
		return nil
	}

	t.refreshAccountLocked()
	t.ok()

	if t.forcedRetcode != 0 {
		rc := t.forcedRetcode
		t.forcedRetcode = 0

		return &types.TradeResult{Retcode: rc, Comment: "Forced"}
	}

	if rc, comment := t.validateRequestLocked(request); rc != types.TradeRetcodeCheckOK {
		return &types.TradeResult{Retcode: rc, Comment: comment}
	}

	switch request.Action {
	case types.TradeActionSLTP:
		pos := t.positions[request.Position]
		pos.SL = request.SL
		pos.TP = request.TP
		pos.TimeUpdate = t.clock().Unix()
		pos.TimeUpdateMsc = t.clock().UnixMilli()

		return &types.TradeResult{Retcode: types.TradeRetcodeDone, Comment: "Done"}
	case types.TradeActionDeal:
		return t.executeDealLocked(request)
	default:
		return &types.TradeResult{Retcode: types.TradeRetcodeInvalid, Comment: "Unsupported action"}
	}
}

func (t *Terminal) executeDealLocked(request *types.TradeRequest) *types.TradeResult {
	spec := t.symbols[request.Symbol]
	price := t.entryPrice(spec, request.Type)
	now := t.clock()

	t.nextTicket++
	dealTicket := t.nextTicket
	t.nextTicket++
	orderTicket := t.nextTicket

	// Closing flow: request targets an existing position with the
	// opposite order type.
	if request.Position != 0 {
		pos, found := t.positions[request.Position]
		if !found {
			return &types.TradeResult{Retcode: types.TradeRetcodeInvalid, Comment: "Position not found"}
		}

		profit := (price - pos.PriceOpen) * pos.DirectionSign() * pos.Volume * spec.TradeContractSize
		t.account.Balance += profit
		delete(t.positions, request.Position)

		t.deals = append(t.deals, types.Deal{
			Ticket:     dealTicket,
			Order:      orderTicket,
			Time:       now.Unix(),
			TimeMsc:    now.UnixMilli(),
			Type:       types.DealType(request.Type),
			Entry:      types.DealEntryOut,
			PositionID: pos.Ticket,
			Volume:     request.Volume,
			Price:      price,
			Profit:     profit,
			Symbol:     request.Symbol,
			Comment:    request.Comment,
		})

		return &types.TradeResult{
			Retcode:     types.TradeRetcodeDone,
			Comment:     "Request executed",
			Deal:        dealTicket,
			OrderTicket: orderTicket,
			Volume:      request.Volume,
			Price:       price,
			Bid:         spec.Bid,
			Ask:         spec.Ask,
		}
	}

	// Opening flow.
	t.nextTicket++
	posTicket := t.nextTicket

	posType := types.PositionTypeBuy
	if request.Type == types.OrderTypeSell {
		posType = types.PositionTypeSell
	}

	t.positions[posTicket] = &types.Position{
		Ticket:       posTicket,
		Time:         now.Unix(),
		TimeMsc:      now.UnixMilli(),
		Type:         posType,
		Identifier:   int64(posTicket),
		Volume:       request.Volume,
		PriceOpen:    price,
		SL:           request.SL,
		TP:           request.TP,
		PriceCurrent: price,
		Symbol:       request.Symbol,
		Comment:      request.Comment,
	}

	t.deals = append(t.deals, types.Deal{
		Ticket:     dealTicket,
		Order:      orderTicket,
		Time:       now.Unix(),
		TimeMsc:    now.UnixMilli(),
		Type:       types.DealType(request.Type),
		Entry:      types.DealEntryIn,
		PositionID: posTicket,
		Volume:     request.Volume,
		Price:      price,
		Symbol:     request.Symbol,
		Comment:    request.Comment,
	})

	return &types.TradeResult{
		Retcode:     types.TradeRetcodeDone,
		Comment:     "Request executed",
		Deal:        dealTicket,
		OrderTicket: orderTicket,
		Volume:      request.Volume,
		Price:       price,
		Bid:         spec.Bid,
		Ask:         spec.Ask,
	}
}
