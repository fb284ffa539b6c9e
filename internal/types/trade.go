package types

// TradeRequest is one logical order action sent to the terminal. It is
// constructed per call, immutable once built, and consumed exactly once by
// the dispatch step.
type TradeRequest struct {
	Action      TradeAction  `json:"action"`
	Magic       uint64       `json:"magic,omitempty"`
	Order       uint64       `json:"order,omitempty"`
	Symbol      string       `json:"symbol"`
	Volume      float64      `json:"volume,omitempty"`
	Price       float64      `json:"price,omitempty"`
	StopLimit   float64      `json:"stoplimit,omitempty"`
	SL          float64      `json:"sl,omitempty"`
	TP          float64      `json:"tp,omitempty"`
	Deviation   uint64       `json:"deviation,omitempty"`
	Type        OrderType    `json:"type"`
	TypeFilling OrderFilling `json:"type_filling"`
	TypeTime    OrderTime    `json:"type_time"`
	Expiration  int64        `json:"expiration,omitempty"`
	Comment     string       `json:"comment,omitempty"`
	Position    uint64       `json:"position,omitempty"`
	PositionBy  uint64       `json:"position_by,omitempty"`
	// Extra carries venue-specific request parameters that have no
	// dedicated field. Keys follow the terminal's request naming.
	Extra map[string]any `json:"extra,omitempty"`
}

// TradeResult is the terminal's answer to a checked or sent trade request.
// The validation-only path fills the margin fields; the execution path fills
// deal/order/price fields. Retcode and Comment are common to both.
type TradeResult struct {
	Retcode TradeRetcode `json:"retcode"`
	Comment string       `json:"comment"`

	// Execution path
	Deal            uint64  `json:"deal,omitempty"`
	OrderTicket     uint64  `json:"order,omitempty"`
	Volume          float64 `json:"volume,omitempty"`
	Price           float64 `json:"price,omitempty"`
	Bid             float64 `json:"bid,omitempty"`
	Ask             float64 `json:"ask,omitempty"`
	RequestID       uint32  `json:"request_id,omitempty"`
	RetcodeExternal int     `json:"retcode_external,omitempty"`

	// Validation-only path
	Balance     float64 `json:"balance,omitempty"`
	Equity      float64 `json:"equity,omitempty"`
	Profit      float64 `json:"profit,omitempty"`
	Margin      float64 `json:"margin,omitempty"`
	MarginFree  float64 `json:"margin_free,omitempty"`
	MarginLevel float64 `json:"margin_level,omitempty"`
}
