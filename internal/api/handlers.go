package api

import (
	"net/http"

	"github.com/rxtech-lab/mt5-bridge/internal/terminal"
	"github.com/rxtech-lab/mt5-bridge/internal/types"
)

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	status := "ok"
	if err := s.data.Ready(); err != nil {
		status = "degraded"
	}

	respondJSON(w, http.StatusOK, map[string]string{"status": status})
}

func (s *Server) handleVersion(w http.ResponseWriter, r *http.Request) {
	version, err := s.data.Version(r.Context())
	if err != nil {
		writeError(w, r, err)

		return
	}

	respondJSON(w, http.StatusOK, version)
}

func (s *Server) handleSymbols(w http.ResponseWriter, r *http.Request) {
	table, err := s.data.SymbolsTable(r.Context(), r.URL.Query().Get("group"))
	if err != nil {
		writeError(w, r, err)

		return
	}

	s.respondTable(w, r, table, "symbols")
}

func (s *Server) handleSymbol(w http.ResponseWriter, r *http.Request) {
	symbol, err := symbolFromPath(r)
	if err != nil {
		writeError(w, r, err)

		return
	}

	spec, err := s.data.SymbolSpec(r.Context(), symbol)
	if err != nil {
		writeError(w, r, err)

		return
	}

	respondJSON(w, http.StatusOK, spec)
}

func (s *Server) handleTick(w http.ResponseWriter, r *http.Request) {
	symbol, err := symbolFromPath(r)
	if err != nil {
		writeError(w, r, err)

		return
	}

	tick, err := s.data.Tick(r.Context(), symbol)
	if err != nil {
		writeError(w, r, err)

		return
	}

	respondJSON(w, http.StatusOK, tick)
}

func (s *Server) handleMarketBook(w http.ResponseWriter, r *http.Request) {
	symbol, err := symbolFromPath(r)
	if err != nil {
		writeError(w, r, err)

		return
	}

	table, err := s.data.MarketBookTable(r.Context(), symbol)
	if err != nil {
		writeError(w, r, err)

		return
	}

	s.respondTable(w, r, table, "market_book_"+symbol)
}

func (s *Server) handleRatesFrom(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()

	symbol, err := requireParam(q, "symbol")
	if err != nil {
		writeError(w, r, err)

		return
	}

	timeframe, err := parseTimeframeParam(q)
	if err != nil {
		writeError(w, r, err)

		return
	}

	from, err := parseTimeParam(q, "from")
	if err != nil {
		writeError(w, r, err)

		return
	}

	count, err := parseCountParam(q, "count", defaultCount)
	if err != nil {
		writeError(w, r, err)

		return
	}

	table, err := s.data.RatesFromTable(r.Context(), symbol, timeframe, from, count)
	if err != nil {
		writeError(w, r, err)

		return
	}

	s.respondTable(w, r, table, "rates_"+symbol)
}

func (s *Server) handleRatesFromPos(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()

	symbol, err := requireParam(q, "symbol")
	if err != nil {
		writeError(w, r, err)

		return
	}

	timeframe, err := parseTimeframeParam(q)
	if err != nil {
		writeError(w, r, err)

		return
	}

	startPos, err := parseCountParam(q, "start_pos", 0)
	if err != nil {
		writeError(w, r, err)

		return
	}

	count, err := parseCountParam(q, "count", defaultCount)
	if err != nil {
		writeError(w, r, err)

		return
	}

	table, err := s.data.RatesFromPosTable(r.Context(), symbol, timeframe, startPos, count)
	if err != nil {
		writeError(w, r, err)

		return
	}

	s.respondTable(w, r, table, "rates_"+symbol)
}

func (s *Server) handleRatesRange(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()

	symbol, err := requireParam(q, "symbol")
	if err != nil {
		writeError(w, r, err)

		return
	}

	timeframe, err := parseTimeframeParam(q)
	if err != nil {
		writeError(w, r, err)

		return
	}

	from, err := parseTimeParam(q, "from")
	if err != nil {
		writeError(w, r, err)

		return
	}

	to, err := parseTimeParam(q, "to")
	if err != nil {
		writeError(w, r, err)

		return
	}

	table, err := s.data.RatesRangeTable(r.Context(), symbol, timeframe, from, to)
	if err != nil {
		writeError(w, r, err)

		return
	}

	s.respondTable(w, r, table, "rates_"+symbol)
}

func (s *Server) handleTicksFrom(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()

	symbol, err := requireParam(q, "symbol")
	if err != nil {
		writeError(w, r, err)

		return
	}

	from, err := parseTimeParam(q, "from")
	if err != nil {
		writeError(w, r, err)

		return
	}

	count, err := parseCountParam(q, "count", defaultCount)
	if err != nil {
		writeError(w, r, err)

		return
	}

	table, err := s.data.TicksFromTable(r.Context(), symbol, from, count, types.TickFlagAll)
	if err != nil {
		writeError(w, r, err)

		return
	}

	s.respondTable(w, r, table, "ticks_"+symbol)
}

func (s *Server) handleTicksRange(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()

	symbol, err := requireParam(q, "symbol")
	if err != nil {
		writeError(w, r, err)

		return
	}

	from, err := parseTimeParam(q, "from")
	if err != nil {
		writeError(w, r, err)

		return
	}

	to, err := parseTimeParam(q, "to")
	if err != nil {
		writeError(w, r, err)

		return
	}

	table, err := s.data.TicksRangeTable(r.Context(), symbol, from, to, types.TickFlagAll)
	if err != nil {
		writeError(w, r, err)

		return
	}

	s.respondTable(w, r, table, "ticks_"+symbol)
}

func (s *Server) handleAccount(w http.ResponseWriter, r *http.Request) {
	table, err := s.data.AccountTable(r.Context())
	if err != nil {
		writeError(w, r, err)

		return
	}

	s.respondTable(w, r, table, "account")
}

func (s *Server) handleTerminal(w http.ResponseWriter, r *http.Request) {
	table, err := s.data.TerminalTable(r.Context())
	if err != nil {
		writeError(w, r, err)

		return
	}

	s.respondTable(w, r, table, "terminal")
}

func (s *Server) orderFilter(r *http.Request) (terminal.OrderFilter, error) {
	q := r.URL.Query()

	ticket, err := parseTicketParam(q)
	if err != nil {
		return terminal.OrderFilter{}, err
	}

	return terminal.OrderFilter{
		Symbol: q.Get("symbol"),
		Group:  q.Get("group"),
		Ticket: ticket,
	}, nil
}

func (s *Server) handlePositions(w http.ResponseWriter, r *http.Request) {
	filter, err := s.orderFilter(r)
	if err != nil {
		writeError(w, r, err)

		return
	}

	table, err := s.data.PositionsTable(r.Context(), filter)
	if err != nil {
		writeError(w, r, err)

		return
	}

	s.respondTable(w, r, table, "positions")
}

func (s *Server) handleOrders(w http.ResponseWriter, r *http.Request) {
	filter, err := s.orderFilter(r)
	if err != nil {
		writeError(w, r, err)

		return
	}

	table, err := s.data.OrdersTable(r.Context(), filter)
	if err != nil {
		writeError(w, r, err)

		return
	}

	s.respondTable(w, r, table, "orders")
}

func (s *Server) historyQuery(r *http.Request) (terminal.HistoryQuery, error) {
	q := r.URL.Query()

	from, err := parseTimeParam(q, "from")
	if err != nil {
		return terminal.HistoryQuery{}, err
	}

	to, err := parseTimeParam(q, "to")
	if err != nil {
		return terminal.HistoryQuery{}, err
	}

	return terminal.HistoryQuery{
		From:  from.Unix(),
		To:    to.Unix(),
		Group: q.Get("group"),
	}, nil
}

func (s *Server) handleHistoryOrders(w http.ResponseWriter, r *http.Request) {
	query, err := s.historyQuery(r)
	if err != nil {
		writeError(w, r, err)

		return
	}

	table, err := s.data.HistoryOrdersTable(r.Context(), query)
	if err != nil {
		writeError(w, r, err)

		return
	}

	s.respondTable(w, r, table, "history_orders")
}

func (s *Server) handleHistoryDeals(w http.ResponseWriter, r *http.Request) {
	query, err := s.historyQuery(r)
	if err != nil {
		writeError(w, r, err)

		return
	}

	table, err := s.data.HistoryDealsTable(r.Context(), query)
	if err != nil {
		writeError(w, r, err)

		return
	}

	s.respondTable(w, r, table, "history_deals")
}
