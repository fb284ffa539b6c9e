package types

// Record structs mirror the terminal's native result structures field for
// field. Time fields stay as raw epoch integers here; the tabular layer owns
// datetime conversion so the raw surface and the shaped surface never drift.

// Tick is an instantaneous quote for a symbol.
type Tick struct {
	Time       int64   `json:"time"`
	Bid        float64 `json:"bid"`
	Ask        float64 `json:"ask"`
	Last       float64 `json:"last"`
	Volume     uint64  `json:"volume"`
	TimeMsc    int64   `json:"time_msc"`
	Flags      uint32  `json:"flags"`
	VolumeReal float64 `json:"volume_real"`
}

// Rate is a single OHLCV bar.
type Rate struct {
	Time       int64   `json:"time"`
	Open       float64 `json:"open"`
	High       float64 `json:"high"`
	Low        float64 `json:"low"`
	Close      float64 `json:"close"`
	TickVolume int64   `json:"tick_volume"`
	Spread     int     `json:"spread"`
	RealVolume int64   `json:"real_volume"`
}

// SymbolSpec describes a tradable instrument.
type SymbolSpec struct {
	Name              string  `json:"name"`
	Time              int64   `json:"time"`
	Digits            int     `json:"digits"`
	Spread            int     `json:"spread"`
	Bid               float64 `json:"bid"`
	Ask               float64 `json:"ask"`
	Last              float64 `json:"last"`
	Point             float64 `json:"point"`
	VolumeMin         float64 `json:"volume_min"`
	VolumeMax         float64 `json:"volume_max"`
	VolumeStep        float64 `json:"volume_step"`
	TradeContractSize float64 `json:"trade_contract_size"`
	TradeMode         int     `json:"trade_mode"`
	CurrencyBase      string  `json:"currency_base"`
	CurrencyProfit    string  `json:"currency_profit"`
	CurrencyMargin    string  `json:"currency_margin"`
	Visible           bool    `json:"visible"`
	Description       string  `json:"description"`
	Path              string  `json:"path"`
}

// BookEntry is a single market depth level.
type BookEntry struct {
	Type      int     `json:"type"`
	Price     float64 `json:"price"`
	Volume    int64   `json:"volume"`
	VolumeDbl float64 `json:"volume_dbl"`
}

// Account is the state of the trading account.
type Account struct {
	Login        int64   `json:"login"`
	TradeMode    int     `json:"trade_mode"`
	Leverage     int64   `json:"leverage"`
	LimitOrders  int     `json:"limit_orders"`
	TradeAllowed bool    `json:"trade_allowed"`
	TradeExpert  bool    `json:"trade_expert"`
	Balance      float64 `json:"balance"`
	Credit       float64 `json:"credit"`
	Profit       float64 `json:"profit"`
	Equity       float64 `json:"equity"`
	Margin       float64 `json:"margin"`
	MarginFree   float64 `json:"margin_free"`
	MarginLevel  float64 `json:"margin_level"`
	Currency     string  `json:"currency"`
	Server       string  `json:"server"`
	Company      string  `json:"company"`
	Name         string  `json:"name"`
}

// TerminalStatus is the connected terminal's status and settings.
type TerminalStatus struct {
	Connected    bool   `json:"connected"`
	TradeAllowed bool   `json:"trade_allowed"`
	Build        int    `json:"build"`
	PingLast     int    `json:"ping_last"`
	MaxBars      int    `json:"maxbars"`
	Name         string `json:"name"`
	Company      string `json:"company"`
	Language     string `json:"language"`
	Path         string `json:"path"`
}

// TerminalVersion is the terminal version triple.
type TerminalVersion struct {
	Version     int    `json:"mt5_terminal_version"`
	Build       int    `json:"build"`
	ReleaseDate string `json:"build_release_date"`
}

// Position is an open, venue-tracked holding.
type Position struct {
	Ticket        uint64       `json:"ticket"`
	Time          int64        `json:"time"`
	TimeMsc       int64        `json:"time_msc"`
	TimeUpdate    int64        `json:"time_update"`
	TimeUpdateMsc int64        `json:"time_update_msc"`
	Type          PositionType `json:"type"`
	Magic         int64        `json:"magic"`
	Identifier    int64        `json:"identifier"`
	Reason        int          `json:"reason"`
	Volume        float64      `json:"volume"`
	PriceOpen     float64      `json:"price_open"`
	SL            float64      `json:"sl"`
	TP            float64      `json:"tp"`
	PriceCurrent  float64      `json:"price_current"`
	Swap          float64      `json:"swap"`
	Profit        float64      `json:"profit"`
	Symbol        string       `json:"symbol"`
	Comment       string       `json:"comment"`
	ExternalID    string       `json:"external_id"`
}

// DirectionSign returns +1 for a long position and -1 for a short one, so
// signed metrics from a mixed portfolio are directly additive.
func (p Position) DirectionSign() float64 {
	if p.Type == PositionTypeBuy {
		return 1
	}

	return -1
}

// Order is an active or historical order.
type Order struct {
	Ticket         uint64       `json:"ticket"`
	TimeSetup      int64        `json:"time_setup"`
	TimeSetupMsc   int64        `json:"time_setup_msc"`
	TimeDone       int64        `json:"time_done"`
	TimeDoneMsc    int64        `json:"time_done_msc"`
	TimeExpiration int64        `json:"time_expiration"`
	Type           OrderType    `json:"type"`
	TypeTime       OrderTime    `json:"type_time"`
	TypeFilling    OrderFilling `json:"type_filling"`
	State          int          `json:"state"`
	Magic          int64        `json:"magic"`
	PositionID     uint64       `json:"position_id"`
	VolumeInitial  float64      `json:"volume_initial"`
	VolumeCurrent  float64      `json:"volume_current"`
	PriceOpen      float64      `json:"price_open"`
	SL             float64      `json:"sl"`
	TP             float64      `json:"tp"`
	PriceCurrent   float64      `json:"price_current"`
	PriceStopLimit float64      `json:"price_stoplimit"`
	Symbol         string       `json:"symbol"`
	Comment        string       `json:"comment"`
	ExternalID     string       `json:"external_id"`
}

// Deal is an executed trade from account history.
type Deal struct {
	Ticket     uint64    `json:"ticket"`
	Order      uint64    `json:"order"`
	Time       int64     `json:"time"`
	TimeMsc    int64     `json:"time_msc"`
	Type       DealType  `json:"type"`
	Entry      DealEntry `json:"entry"`
	Magic      int64     `json:"magic"`
	PositionID uint64    `json:"position_id"`
	Reason     int       `json:"reason"`
	Volume     float64   `json:"volume"`
	Price      float64   `json:"price"`
	Commission float64   `json:"commission"`
	Swap       float64   `json:"swap"`
	Profit     float64   `json:"profit"`
	Fee        float64   `json:"fee"`
	Symbol     string    `json:"symbol"`
	Comment    string    `json:"comment"`
	ExternalID string    `json:"external_id"`
}
