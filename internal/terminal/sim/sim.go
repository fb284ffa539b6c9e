// Package sim provides an in-memory terminal backend. It implements the
// terminal.API surface with deterministic market data and a small matching
// model, for local development and tests. The real terminal binding is
// platform-specific and lives outside this repository.
package sim

import (
	"math"
	"strings"
	"sync"
	"time"

	"github.com/rxtech-lab/mt5-bridge/internal/terminal"
	"github.com/rxtech-lab/mt5-bridge/internal/types"
)

// SymbolConfig seeds one simulated instrument.
type SymbolConfig struct {
	Name         string
	Digits       int
	Point        float64
	Bid          float64
	Ask          float64
	VolumeMin    float64
	VolumeMax    float64
	VolumeStep   float64
	ContractSize float64
}

// Config seeds the simulated terminal.
type Config struct {
	Symbols  []SymbolConfig
	Balance  float64
	Currency string
	Leverage int64
	// Clock returns current time; defaults to time.Now. Tests pin it.
	Clock func() time.Time
}

// DefaultConfig returns a terminal with a few forex symbols and a funded
// account.
func DefaultConfig() Config {
	return Config{
		Symbols: []SymbolConfig{
			{Name: "EURUSD", Digits: 5, Point: 0.00001, Bid: 1.08437, Ask: 1.08445, VolumeMin: 0.01, VolumeMax: 500, VolumeStep: 0.01, ContractSize: 100000},
			{Name: "USDJPY", Digits: 3, Point: 0.001, Bid: 151.262, Ask: 151.271, VolumeMin: 0.01, VolumeMax: 500, VolumeStep: 0.01, ContractSize: 100000},
			{Name: "XAUUSD", Digits: 2, Point: 0.01, Bid: 2312.55, Ask: 2312.95, VolumeMin: 0.01, VolumeMax: 100, VolumeStep: 0.01, ContractSize: 100},
		},
		Balance:  100000,
		Currency: "USD",
		Leverage: 100,
	}
}

// Terminal is an in-memory terminal.API implementation. All state mutations
// are guarded by a single mutex; the session layer serializes calls anyway,
// but tests poke at the terminal directly.
type Terminal struct {
	mu sync.Mutex

	cfg         Config
	clock       func() time.Time
	initialized bool

	symbols   map[string]*types.SymbolSpec
	account   types.Account
	positions map[uint64]*types.Position
	orders    map[uint64]*types.Order
	deals     []types.Deal

	nextTicket uint64

	lastErrCode int
	lastErrDesc string

	// forcedRetcode, when non-zero, is returned by the next OrderSend /
	// OrderCheck instead of the computed outcome. Test hook.
	forcedRetcode types.TradeRetcode
	// failNext makes the named operation fail once with the given error.
	failNext map[string]struct {
		code int
		desc string
	}
}

// New creates a simulated terminal from the given config.
func New(cfg Config) *Terminal {
	clock := cfg.Clock
	if clock == nil {
		clock = time.Now
	}

	t := &Terminal{
		cfg:         cfg,
		clock:       clock,
		symbols:     make(map[string]*types.SymbolSpec),
		positions:   make(map[uint64]*types.Position),
		orders:      make(map[uint64]*types.Order),
		nextTicket:  100000,
		lastErrCode: types.ResOK,
		lastErrDesc: "Success",
		failNext: make(map[string]struct {
			code int
			desc string
		}),
	}

	for _, s := range cfg.Symbols {
		spec := &types.SymbolSpec{
			Name:              s.Name,
			Digits:            s.Digits,
			Point:             s.Point,
			Bid:               s.Bid,
			Ask:               s.Ask,
			Last:              s.Bid,
			Spread:            int(math.Round((s.Ask - s.Bid) / s.Point)),
			VolumeMin:         s.VolumeMin,
			VolumeMax:         s.VolumeMax,
			VolumeStep:        s.VolumeStep,
			TradeContractSize: s.ContractSize,
			TradeMode:         4, // full access
			CurrencyBase:      s.Name[:3],
			CurrencyProfit:    cfg.Currency,
			CurrencyMargin:    s.Name[:3],
			Visible:           true,
			Path:              "Forex\\" + s.Name,
		}
		t.symbols[s.Name] = spec
	}

	t.account = types.Account{
		Login:        9000001,
		TradeMode:    0,
		Leverage:     cfg.Leverage,
		LimitOrders:  200,
		TradeAllowed: true,
		TradeExpert:  true,
		Balance:      cfg.Balance,
		Equity:       cfg.Balance,
		MarginFree:   cfg.Balance,
		Currency:     cfg.Currency,
		Server:       "Sim-Server",
		Company:      "Simulated Markets Ltd.",
		Name:         "sim",
	}

	return t
}

func (t *Terminal) fail(code int, desc string) {
	t.lastErrCode = code
	t.lastErrDesc = desc
}

func (t *Terminal) ok() {
	t.lastErrCode = types.ResOK
	t.lastErrDesc = "Success"
}

func (t *Terminal) shouldFail(op string) bool {
	f, found := t.failNext[op]
	if !found {
		return false
	}

	delete(t.failNext, op)
	t.fail(f.code, f.desc)

	return true
}

// FailNext makes the named operation fail exactly once with the given
// last-error code and description. Test hook.
func (t *Terminal) FailNext(op string, code int, desc string) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.failNext[op] = struct {
		code int
		desc string
	}{code, desc}
}

// ForceRetcode makes the next OrderCheck/OrderSend return the given retcode
// instead of the computed one. Test hook.
func (t *Terminal) ForceRetcode(rc types.TradeRetcode) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.forcedRetcode = rc
}

// SeedPosition inserts an open position directly, bypassing order flow.
func (t *Terminal) SeedPosition(p types.Position) uint64 {
	t.mu.Lock()
	defer t.mu.Unlock()

	if p.Ticket == 0 {
		t.nextTicket++
		p.Ticket = t.nextTicket
	}

	if p.Time == 0 {
		p.Time = t.clock().Unix()
		p.TimeMsc = t.clock().UnixMilli()
	}

	cp := p
	t.positions[p.Ticket] = &cp

	return p.Ticket
}

// Initialize implements terminal.API.
func (t *Terminal) Initialize(params terminal.InitParams) bool {
	t.mu.Lock()
	defer t.mu.Unlock()

	if t.shouldFail("initialize") {
		return false
	}

	t.initialized = true
	t.ok()

	return true
}

// Login implements terminal.API.
func (t *Terminal) Login(login int64, password, server string, timeoutMS int) bool {
	t.mu.Lock()
	defer t.mu.Unlock()

	if !t.initialized {
		t.fail(types.ResFail, "Terminal: not initialized")

		return false
	}

	if t.shouldFail("login") {
		return false
	}

	t.account.Login = login
	if server != "" {
		t.account.Server = server
	}

	t.ok()

	return true
}

// Shutdown implements terminal.API.
func (t *Terminal) Shutdown() {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.initialized = false
}

// Version implements terminal.API.
func (t *Terminal) Version() (types.TerminalVersion, bool) {
	t.mu.Lock()
	defer t.mu.Unlock()

	if !t.initialized {
		t.fail(types.ResFail, "Terminal: not initialized")

		return types.TerminalVersion{}, false
	}

	return types.TerminalVersion{Version: 500, Build: 4424, ReleaseDate: "14 Jun 2024"}, true
}

// LastError implements terminal.API.
func (t *Terminal) LastError() (int, string) {
	t.mu.Lock()
	defer t.mu.Unlock()

	return t.lastErrCode, t.lastErrDesc
}

// AccountInfo implements terminal.API.
func (t *Terminal) AccountInfo() *types.Account {
	t.mu.Lock()
	defer t.mu.Unlock()

	if !t.initialized {
		t.fail(types.ResFail, "Terminal: not initialized")

		return nil
	}

	if t.shouldFail("account_info") {
		return nil
	}

	t.refreshAccountLocked()
	acc := t.account

	return &acc
}

// TerminalInfo implements terminal.API.
func (t *Terminal) TerminalInfo() *types.TerminalStatus {
	t.mu.Lock()
	defer t.mu.Unlock()

	if !t.initialized {
		t.fail(types.ResFail, "Terminal: not initialized")

		return nil
	}

	return &types.TerminalStatus{
		Connected:    true,
		TradeAllowed: true,
		Build:        4424,
		PingLast:     8000,
		MaxBars:      100000,
		Name:         "Simulated MetaTrader 5",
		Company:      "Simulated Markets Ltd.",
		Language:     "English",
		Path:         "/opt/sim-terminal",
	}
}

// SymbolsTotal implements terminal.API.
func (t *Terminal) SymbolsTotal() int {
	t.mu.Lock()
	defer t.mu.Unlock()

	return len(t.symbols)
}

// SymbolsGet implements terminal.API. Group supports the terminal's leading
// and trailing wildcard form, e.g. "*USD*".
func (t *Terminal) SymbolsGet(group string) []types.SymbolSpec {
	t.mu.Lock()
	defer t.mu.Unlock()

	if t.shouldFail("symbols_get") {
		return nil
	}

	out := make([]types.SymbolSpec, 0, len(t.symbols))

	for _, cfg := range t.cfg.Symbols {
		spec := t.symbols[cfg.Name]
		if group != "" && !matchGroup(spec.Name, group) {
			continue
		}

		t.refreshSymbolLocked(spec)
		out = append(out, *spec)
	}

	t.ok()

	return out
}

// SymbolInfo implements terminal.API.
func (t *Terminal) SymbolInfo(symbol string) *types.SymbolSpec {
	t.mu.Lock()
	defer t.mu.Unlock()

	spec, found := t.symbols[symbol]
	if !found {
		t.fail(types.ResNotFound, "Terminal: symbol not found")

		return nil
	}

	t.refreshSymbolLocked(spec)
	t.ok()
	cp := *spec

	return &cp
}

// SymbolInfoTick implements terminal.API.
func (t *Terminal) SymbolInfoTick(symbol string) *types.Tick {
	t.mu.Lock()
	defer t.mu.Unlock()

	spec, found := t.symbols[symbol]
	if !found {
		t.fail(types.ResNotFound, "Terminal: symbol not found")

		return nil
	}

	if t.shouldFail("symbol_info_tick") {
		return nil
	}

	t.refreshSymbolLocked(spec)
	now := t.clock()
	t.ok()

	return &types.Tick{
		Time:       now.Unix(),
		TimeMsc:    now.UnixMilli(),
		Bid:        spec.Bid,
		Ask:        spec.Ask,
		Last:       spec.Last,
		Volume:     1,
		Flags:      uint32(types.TickFlagBid | types.TickFlagAsk),
		VolumeReal: 1,
	}
}

// SymbolSelect implements terminal.API.
func (t *Terminal) SymbolSelect(symbol string, enable bool) bool {
	t.mu.Lock()
	defer t.mu.Unlock()

	spec, found := t.symbols[symbol]
	if !found {
		t.fail(types.ResNotFound, "Terminal: symbol not found")

		return false
	}

	spec.Visible = enable
	t.ok()

	return true
}

// MarketBookGet implements terminal.API.
func (t *Terminal) MarketBookGet(symbol string) []types.BookEntry {
	t.mu.Lock()
	defer t.mu.Unlock()

	spec, found := t.symbols[symbol]
	if !found {
		t.fail(types.ResNotFound, "Terminal: symbol not found")

		return nil
	}

	// Two synthetic levels each side of the spread.
	book := make([]types.BookEntry, 0, 4)
	for i := 1; i <= 2; i++ {
		step := float64(i) * spec.Point * 10
		book = append(book,
			types.BookEntry{Type: 1, Price: spec.Ask + step, Volume: int64(50 * i), VolumeDbl: float64(50 * i)},
			types.BookEntry{Type: 2, Price: spec.Bid - step, Volume: int64(50 * i), VolumeDbl: float64(50 * i)},
		)
	}

	t.ok()

	return book
}

// refreshSymbolLocked advances the simulated quote deterministically from the
// clock so repeated calls with a pinned clock stay stable.
func (t *Terminal) refreshSymbolLocked(spec *types.SymbolSpec) {
	now := t.clock()
	spec.Time = now.Unix()

	// Deterministic drift: a slow sine walk seeded by the minute.
	phase := float64(now.Unix()/60%360) * math.Pi / 180
	drift := math.Sin(phase) * spec.Point * 20
	base := t.baseQuote(spec.Name)
	spread := float64(spec.Spread) * spec.Point
	spec.Bid = roundTo(base+drift, spec.Digits)
	spec.Ask = roundTo(base+drift+spread, spec.Digits)
	spec.Last = spec.Bid
}

func (t *Terminal) baseQuote(symbol string) float64 {
	for _, s := range t.cfg.Symbols {
		if s.Name == symbol {
			return s.Bid
		}
	}

	return 0
}

func (t *Terminal) refreshAccountLocked() {
	profit := 0.0
	margin := 0.0

	for _, p := range t.positions {
		spec, found := t.symbols[p.Symbol]
		if !found {
			continue
		}

		t.refreshSymbolLocked(spec)

		current := spec.Bid
		if p.Type == types.PositionTypeSell {
			current = spec.Ask
		}

		p.PriceCurrent = current
		p.Profit = (current - p.PriceOpen) * p.DirectionSign() * p.Volume * spec.TradeContractSize
		profit += p.Profit
		margin += p.Volume * spec.TradeContractSize * p.PriceOpen / float64(t.account.Leverage)
	}

	t.account.Profit = profit
	t.account.Equity = t.account.Balance + profit
	t.account.Margin = margin
	t.account.MarginFree = t.account.Equity - margin

	if margin > 0 {
		t.account.MarginLevel = t.account.Equity / margin * 100
	} else {
		t.account.MarginLevel = 0
	}
}

func matchGroup(name, group string) bool {
	pattern := strings.Trim(group, "*")
	if pattern == "" {
		return true
	}

	switch {
	case strings.HasPrefix(group, "*") && strings.HasSuffix(group, "*"):
		return strings.Contains(name, pattern)
	case strings.HasSuffix(group, "*"):
		return strings.HasPrefix(name, pattern)
	case strings.HasPrefix(group, "*"):
		return strings.HasSuffix(name, pattern)
	default:
		return name == group
	}
}

func roundTo(v float64, digits int) float64 {
	mult := math.Pow10(digits)

	return math.Round(v*mult) / mult
}
