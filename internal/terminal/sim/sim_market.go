package sim

import (
	"math"
	"sort"

	"github.com/rxtech-lab/mt5-bridge/internal/terminal"
	"github.com/rxtech-lab/mt5-bridge/internal/types"
)

// timeframeSeconds converts a Timeframe constant into its bar length.
func timeframeSeconds(tf types.Timeframe) int64 {
	switch {
	case tf >= types.TimeframeMN1:
		return 30 * 24 * 3600
	case tf >= types.TimeframeW1:
		return 7 * 24 * 3600
	case tf >= types.TimeframeD1:
		return 24 * 3600
	case tf >= types.TimeframeH1:
		return int64(tf-types.TimeframeH1+1) * 3600
	default:
		return int64(tf) * 60
	}
}

// barAt synthesizes one deterministic OHLCV bar for the given open time.
func (t *Terminal) barAt(spec *types.SymbolSpec, openTime int64) types.Rate {
	phase := float64(openTime/60%360) * math.Pi / 180
	center := t.baseQuote(spec.Name) + math.Sin(phase)*spec.Point*20
	span := spec.Point * 15

	return types.Rate{
		Time:       openTime,
		Open:       roundTo(center-span/3, spec.Digits),
		High:       roundTo(center+span, spec.Digits),
		Low:        roundTo(center-span, spec.Digits),
		Close:      roundTo(center+span/3, spec.Digits),
		TickVolume: 40 + openTime%60,
		Spread:     spec.Spread,
		RealVolume: 0,
	}
}

// CopyRatesFrom implements terminal.API.
func (t *Terminal) CopyRatesFrom(symbol string, timeframe types.Timeframe, from int64, count int) []types.Rate {
	t.mu.Lock()
	defer t.mu.Unlock()

	spec, found := t.symbols[symbol]
	if !found {
		t.fail(types.ResNotFound, "Terminal: symbol not found")

		return nil
	}

	if t.shouldFail("copy_rates_from") {
		return nil
	}

	step := timeframeSeconds(timeframe)
	start := from - from%step
	rates := make([]types.Rate, 0, count)
	now := t.clock().Unix()

	for i := 0; i < count; i++ {
		open := start + int64(i)*step
		if open > now {
			break
		}

		rates = append(rates, t.barAt(spec, open))
	}

	t.ok()

	return rates
}

// CopyRatesFromPos implements terminal.API. Position zero is the current bar,
// counting backwards in time.
func (t *Terminal) CopyRatesFromPos(symbol string, timeframe types.Timeframe, startPos, count int) []types.Rate {
	t.mu.Lock()
	defer t.mu.Unlock()

	spec, found := t.symbols[symbol]
	if !found {
		t.fail(types.ResNotFound, "Terminal: symbol not found")

		return nil
	}

	if t.shouldFail("copy_rates_from_pos") {
		return nil
	}

	step := timeframeSeconds(timeframe)
	now := t.clock().Unix()
	latest := now - now%step

	rates := make([]types.Rate, 0, count)
	for i := count - 1; i >= 0; i-- {
		open := latest - int64(startPos+i)*step
		if open < 0 {
			continue
		}

		rates = append(rates, t.barAt(spec, open))
	}

	t.ok()

	return rates
}

// CopyRatesRange implements terminal.API.
func (t *Terminal) CopyRatesRange(symbol string, timeframe types.Timeframe, from, to int64) []types.Rate {
	t.mu.Lock()
	defer t.mu.Unlock()

	spec, found := t.symbols[symbol]
	if !found {
		t.fail(types.ResNotFound, "Terminal: symbol not found")

		return nil
	}

	if t.shouldFail("copy_rates_range") {
		return nil
	}

	step := timeframeSeconds(timeframe)
	start := from - from%step
	now := t.clock().Unix()
	rates := []types.Rate{}

	for open := start; open <= to && open <= now; open += step {
		rates = append(rates, t.barAt(spec, open))
	}

	t.ok()

	return rates
}

func (t *Terminal) ticksBetween(spec *types.SymbolSpec, from, to int64) []types.Tick {
	now := t.clock().Unix()
	ticks := []types.Tick{}

	for ts := from; ts <= to && ts <= now; ts++ {
		phase := float64(ts%360) * math.Pi / 180
		drift := math.Sin(phase) * spec.Point * 10
		base := t.baseQuote(spec.Name)
		spread := float64(spec.Spread) * spec.Point
		ticks = append(ticks, types.Tick{
			Time:       ts,
			TimeMsc:    ts * 1000,
			Bid:        roundTo(base+drift, spec.Digits),
			Ask:        roundTo(base+drift+spread, spec.Digits),
			Last:       roundTo(base+drift, spec.Digits),
			Volume:     1,
			Flags:      uint32(types.TickFlagBid | types.TickFlagAsk),
			VolumeReal: 1,
		})
	}

	return ticks
}

// CopyTicksFrom implements terminal.API.
func (t *Terminal) CopyTicksFrom(symbol string, from int64, count int, flags types.TickFlag) []types.Tick {
	t.mu.Lock()
	defer t.mu.Unlock()

	spec, found := t.symbols[symbol]
	if !found {
		t.fail(types.ResNotFound, "Terminal: symbol not found")

		return nil
	}

	if t.shouldFail("copy_ticks_from") {
		return nil
	}

	ticks := t.ticksBetween(spec, from, from+int64(count)-1)
	if len(ticks) > count {
		ticks = ticks[:count]
	}

	t.ok()

	return ticks
}

// CopyTicksRange implements terminal.API.
func (t *Terminal) CopyTicksRange(symbol string, from, to int64, flags types.TickFlag) []types.Tick {
	t.mu.Lock()
	defer t.mu.Unlock()

	spec, found := t.symbols[symbol]
	if !found {
		t.fail(types.ResNotFound, "Terminal: symbol not found")

		return nil
	}

	if t.shouldFail("copy_ticks_range") {
		return nil
	}

	ticks := t.ticksBetween(spec, from, to)
	t.ok()

	return ticks
}

// OrdersTotal implements terminal.API.
func (t *Terminal) OrdersTotal() int {
	t.mu.Lock()
	defer t.mu.Unlock()

	return len(t.orders)
}

// OrdersGet implements terminal.API.
func (t *Terminal) OrdersGet(filter terminal.OrderFilter) []types.Order {
	t.mu.Lock()
	defer t.mu.Unlock()

	if t.shouldFail("orders_get") {
		return nil
	}

	out := []types.Order{}

	for _, o := range t.orders {
		if filter.Ticket != 0 && o.Ticket != filter.Ticket {
			continue
		}

		if filter.Symbol != "" && o.Symbol != filter.Symbol {
			continue
		}

		if filter.Group != "" && !matchGroup(o.Symbol, filter.Group) {
			continue
		}

		out = append(out, *o)
	}

	t.ok()

	return out
}

// PositionsTotal implements terminal.API.
func (t *Terminal) PositionsTotal() int {
	t.mu.Lock()
	defer t.mu.Unlock()

	return len(t.positions)
}

// PositionsGet implements terminal.API. Results come back in ticket order so
// batch operations resolve a stable sequence.
func (t *Terminal) PositionsGet(filter terminal.OrderFilter) []types.Position {
	t.mu.Lock()
	defer t.mu.Unlock()

	if t.shouldFail("positions_get") {
		return nil
	}

	t.refreshAccountLocked()

	out := []types.Position{}

	tickets := make([]uint64, 0, len(t.positions))
	for ticket := range t.positions {
		tickets = append(tickets, ticket)
	}

	sortTickets(tickets)

	for _, ticket := range tickets {
		p := t.positions[ticket]
		if filter.Ticket != 0 && p.Ticket != filter.Ticket {
			continue
		}

		if filter.Symbol != "" && p.Symbol != filter.Symbol {
			continue
		}

		if filter.Group != "" && !matchGroup(p.Symbol, filter.Group) {
			continue
		}

		out = append(out, *p)
	}

	t.ok()

	return out
}

// HistoryOrdersGet implements terminal.API.
func (t *Terminal) HistoryOrdersGet(query terminal.HistoryQuery) []types.Order {
	t.mu.Lock()
	defer t.mu.Unlock()

	if t.shouldFail("history_orders_get") {
		return nil
	}

	t.ok()

	// The simulator executes market orders immediately, so its order
	// history is derived from deals.
	out := []types.Order{}

	for _, d := range t.deals {
		if !historyMatch(query, d.Time, d.Ticket, d.PositionID, d.Symbol) {
			continue
		}

		orderType := types.OrderTypeBuy
		if d.Type == types.DealTypeSell {
			orderType = types.OrderTypeSell
		}

		out = append(out, types.Order{
			Ticket:        d.Order,
			TimeSetup:     d.Time,
			TimeSetupMsc:  d.TimeMsc,
			TimeDone:      d.Time,
			TimeDoneMsc:   d.TimeMsc,
			Type:          orderType,
			State:         4, // filled
			PositionID:    d.PositionID,
			VolumeInitial: d.Volume,
			PriceOpen:     d.Price,
			PriceCurrent:  d.Price,
			Symbol:        d.Symbol,
			Comment:       d.Comment,
		})
	}

	return out
}

// HistoryDealsGet implements terminal.API.
func (t *Terminal) HistoryDealsGet(query terminal.HistoryQuery) []types.Deal {
	t.mu.Lock()
	defer t.mu.Unlock()

	if t.shouldFail("history_deals_get") {
		return nil
	}

	t.ok()

	out := []types.Deal{}

	for _, d := range t.deals {
		if !historyMatch(query, d.Time, d.Ticket, d.PositionID, d.Symbol) {
			continue
		}

		out = append(out, d)
	}

	return out
}

func historyMatch(query terminal.HistoryQuery, ts int64, ticket, position uint64, symbol string) bool {
	if query.Ticket != 0 {
		return ticket == query.Ticket
	}

	if query.Position != 0 {
		return position == query.Position
	}

	if ts < query.From || ts > query.To {
		return false
	}

	if query.Group != "" && !matchGroup(symbol, query.Group) {
		return false
	}

	return true
}

func sortTickets(tickets []uint64) {
	sort.Slice(tickets, func(i, j int) bool { return tickets[i] < tickets[j] })
}
