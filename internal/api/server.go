// Package api exposes the terminal's read surface over HTTP. All endpoints
// are GETs under /api/v1; responses are JSON envelopes or Parquet bodies,
// and every error is an RFC 7807 problem.
package api

import (
	"context"
	"net/http"
	"time"

	"github.com/gorilla/mux"
	"github.com/rxtech-lab/mt5-bridge/internal/dataclient"
	"github.com/rxtech-lab/mt5-bridge/internal/logger"
	"go.uber.org/zap"
)

// Config configures the HTTP façade.
type Config struct {
	Addr string
	// APIKey guards every non-health route; empty disables auth.
	APIKey string
	// RateLimit is requests per second per caller; zero disables limiting.
	RateLimit float64
	RateBurst int
}

// Server is the HTTP façade over the data client.
type Server struct {
	cfg      Config
	data     *dataclient.Client
	log      *logger.Logger
	router   *mux.Router
	limiters *limiterPool
	httpSrv  *http.Server
}

// NewServer builds the façade with its full middleware chain and routes.
func NewServer(cfg Config, data *dataclient.Client, log *logger.Logger) *Server {
	s := &Server{
		cfg:  cfg,
		data: data,
		log:  log,
	}

	if cfg.RateLimit > 0 {
		s.limiters = newLimiterPool(cfg.RateLimit, cfg.RateBurst)
	}

	s.router = s.buildRouter()
	s.httpSrv = &http.Server{
		Addr:              cfg.Addr,
		Handler:           s.router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	return s
}

func (s *Server) buildRouter() *mux.Router {
	root := mux.NewRouter()
	root.Use(requestIDMiddleware)
	root.Use(s.loggingMiddleware)
	root.Use(s.recoverMiddleware)
	root.Use(s.rateLimitMiddleware)

	api := root.PathPrefix("/api/v1").Subrouter()

	// Health stays reachable without a key so probes can watch the process.
	api.HandleFunc("/health", s.handleHealth).Methods(http.MethodGet)

	protected := api.NewRoute().Subrouter()
	protected.Use(s.authMiddleware)

	protected.HandleFunc("/version", s.handleVersion).Methods(http.MethodGet)
	protected.HandleFunc("/symbols", s.handleSymbols).Methods(http.MethodGet)
	protected.HandleFunc("/symbols/{symbol}", s.handleSymbol).Methods(http.MethodGet)
	protected.HandleFunc("/symbols/{symbol}/tick", s.handleTick).Methods(http.MethodGet)
	protected.HandleFunc("/market-book/{symbol}", s.handleMarketBook).Methods(http.MethodGet)
	protected.HandleFunc("/rates/from", s.handleRatesFrom).Methods(http.MethodGet)
	protected.HandleFunc("/rates/from-pos", s.handleRatesFromPos).Methods(http.MethodGet)
	protected.HandleFunc("/rates/range", s.handleRatesRange).Methods(http.MethodGet)
	protected.HandleFunc("/ticks/from", s.handleTicksFrom).Methods(http.MethodGet)
	protected.HandleFunc("/ticks/range", s.handleTicksRange).Methods(http.MethodGet)
	protected.HandleFunc("/account", s.handleAccount).Methods(http.MethodGet)
	protected.HandleFunc("/account/terminal", s.handleTerminal).Methods(http.MethodGet)
	protected.HandleFunc("/positions", s.handlePositions).Methods(http.MethodGet)
	protected.HandleFunc("/orders", s.handleOrders).Methods(http.MethodGet)
	protected.HandleFunc("/history/orders", s.handleHistoryOrders).Methods(http.MethodGet)
	protected.HandleFunc("/history/deals", s.handleHistoryDeals).Methods(http.MethodGet)

	return root
}

// Handler exposes the router for tests.
func (s *Server) Handler() http.Handler {
	return s.router
}

// Start serves until the listener fails or Shutdown is called.
func (s *Server) Start() error {
	s.log.Info("http server listening", zap.String("addr", s.cfg.Addr))

	err := s.httpSrv.ListenAndServe()
	if err == http.ErrServerClosed {
		return nil
	}

	return err
}

// Shutdown drains in-flight requests and stops the server.
func (s *Server) Shutdown(ctx context.Context) error {
	return s.httpSrv.Shutdown(ctx)
}
