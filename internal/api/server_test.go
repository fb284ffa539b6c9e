package api

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/rxtech-lab/mt5-bridge/internal/dataclient"
	"github.com/rxtech-lab/mt5-bridge/internal/logger"
	"github.com/rxtech-lab/mt5-bridge/internal/session"
	"github.com/rxtech-lab/mt5-bridge/internal/terminal/sim"
	"github.com/rxtech-lab/mt5-bridge/internal/types"
	"github.com/stretchr/testify/suite"
)

const testAPIKey = "test-key"

type ServerTestSuite struct {
	suite.Suite
	term   *sim.Terminal
	sess   *session.Session
	server *Server
	ts     *httptest.Server
}

func TestServerSuite(t *testing.T) {
	suite.Run(t, new(ServerTestSuite))
}

func (s *ServerTestSuite) SetupTest() {
	s.term = sim.New(sim.DefaultConfig())
	s.sess = session.New(s.term, session.Config{RetryInterval: time.Millisecond}, logger.NewNopLogger())
	s.Require().NoError(s.sess.Connect(context.Background()))

	data := dataclient.New(s.sess, dataclient.Config{ReadRetries: 0}, logger.NewNopLogger())
	s.server = NewServer(Config{Addr: "127.0.0.1:0", APIKey: testAPIKey}, data, logger.NewNopLogger())
	s.ts = httptest.NewServer(s.server.Handler())
}

func (s *ServerTestSuite) TearDownTest() {
	s.ts.Close()
	s.sess.Close()
}

func (s *ServerTestSuite) get(path string, headers map[string]string) *http.Response {
	req, err := http.NewRequest(http.MethodGet, s.ts.URL+path, nil)
	s.Require().NoError(err)

	req.Header.Set(headerAPIKey, testAPIKey)
	for k, v := range headers {
		req.Header.Set(k, v)
	}

	resp, err := http.DefaultClient.Do(req)
	s.Require().NoError(err)

	return resp
}

func (s *ServerTestSuite) decodeJSON(resp *http.Response, into any) {
	defer resp.Body.Close()
	s.Require().NoError(json.NewDecoder(resp.Body).Decode(into))
}

func (s *ServerTestSuite) TestHealthWithoutAuth() {
	resp, err := http.Get(s.ts.URL + "/api/v1/health")
	s.Require().NoError(err)
	s.Equal(http.StatusOK, resp.StatusCode)

	var body map[string]string
	s.decodeJSON(resp, &body)
	s.Equal("ok", body["status"])
}

func (s *ServerTestSuite) TestHealthDegradedWhenDisconnected() {
	s.sess.Disconnect()

	resp, err := http.Get(s.ts.URL + "/api/v1/health")
	s.Require().NoError(err)
	s.Equal(http.StatusOK, resp.StatusCode)

	var body map[string]string
	s.decodeJSON(resp, &body)
	s.Equal("degraded", body["status"])
}

func (s *ServerTestSuite) TestMissingAPIKey() {
	resp, err := http.Get(s.ts.URL + "/api/v1/version")
	s.Require().NoError(err)
	defer resp.Body.Close()

	s.Equal(http.StatusUnauthorized, resp.StatusCode)
	s.Equal("application/problem+json", resp.Header.Get("Content-Type"))

	var problem Problem
	s.Require().NoError(json.NewDecoder(resp.Body).Decode(&problem))
	s.Equal(http.StatusUnauthorized, problem.Status)
	s.Equal("/api/v1/version", problem.Instance)
}

func (s *ServerTestSuite) TestVersion() {
	resp := s.get("/api/v1/version", nil)
	s.Equal(http.StatusOK, resp.StatusCode)

	var version types.TerminalVersion
	s.decodeJSON(resp, &version)
	s.Equal(500, version.Version)
}

func (s *ServerTestSuite) TestTick() {
	resp := s.get("/api/v1/symbols/EURUSD/tick", nil)
	s.Equal(http.StatusOK, resp.StatusCode)

	var tick types.Tick
	s.decodeJSON(resp, &tick)
	s.Greater(tick.Ask, tick.Bid)
}

func (s *ServerTestSuite) TestUnknownSymbolMapsToServiceUnavailable() {
	resp := s.get("/api/v1/symbols/NOSUCH/tick", nil)
	defer resp.Body.Close()
	s.Equal(http.StatusServiceUnavailable, resp.StatusCode)
}

func (s *ServerTestSuite) TestPositionsEnvelope() {
	s.term.SeedPosition(types.Position{Symbol: "EURUSD", Type: types.PositionTypeBuy, Volume: 0.5, PriceOpen: 1.08})

	resp := s.get("/api/v1/positions", nil)
	s.Equal(http.StatusOK, resp.StatusCode)

	var body envelope
	s.decodeJSON(resp, &body)
	s.Equal(1, body.Count)
	s.Equal("json", body.Format)
	s.Require().Len(body.Data, 1)
	s.Equal("EURUSD", body.Data[0]["symbol"])
}

func (s *ServerTestSuite) TestRatesRange() {
	from := time.Now().Add(-5 * time.Minute).UTC().Format(time.RFC3339)
	to := time.Now().UTC().Format(time.RFC3339)

	resp := s.get(fmt.Sprintf("/api/v1/rates/range?symbol=EURUSD&timeframe=M1&from=%s&to=%s", from, to), nil)
	s.Equal(http.StatusOK, resp.StatusCode)

	var body envelope
	s.decodeJSON(resp, &body)
	s.Greater(body.Count, 0)
}

func (s *ServerTestSuite) TestMissingParameter() {
	resp := s.get("/api/v1/rates/range?symbol=EURUSD&timeframe=M1", nil)
	defer resp.Body.Close()
	s.Equal(http.StatusBadRequest, resp.StatusCode)
}

func (s *ServerTestSuite) TestInvalidTimeframe() {
	resp := s.get("/api/v1/rates/from?symbol=EURUSD&timeframe=M7&from=1717580400", nil)
	defer resp.Body.Close()
	s.Equal(http.StatusBadRequest, resp.StatusCode)
}

func (s *ServerTestSuite) TestDisconnectedTerminalMapsTo503() {
	s.sess.Disconnect()

	resp := s.get("/api/v1/account", nil)
	defer resp.Body.Close()
	s.Equal(http.StatusServiceUnavailable, resp.StatusCode)
}

func (s *ServerTestSuite) TestFormatQueryParamWinsOverAccept() {
	resp := s.get("/api/v1/positions?format=json", map[string]string{"Accept": "application/parquet"})
	defer resp.Body.Close()
	s.Equal(http.StatusOK, resp.StatusCode)
	s.Contains(resp.Header.Get("Content-Type"), "application/json")
}

func (s *ServerTestSuite) TestParquetViaAcceptHeader() {
	resp := s.get("/api/v1/positions", map[string]string{"Accept": "application/parquet"})
	defer resp.Body.Close()
	s.Equal(http.StatusOK, resp.StatusCode)
	s.Equal("application/parquet", resp.Header.Get("Content-Type"))
	s.Contains(resp.Header.Get("Content-Disposition"), ".parquet")
}

func (s *ServerTestSuite) TestParquetViaQueryParam() {
	resp := s.get("/api/v1/symbols?format=parquet", nil)
	defer resp.Body.Close()
	s.Equal(http.StatusOK, resp.StatusCode)
	s.Equal("application/parquet", resp.Header.Get("Content-Type"))
}

func (s *ServerTestSuite) TestRequestAndProcessTimeHeaders() {
	resp := s.get("/api/v1/version", nil)
	defer resp.Body.Close()
	s.NotEmpty(resp.Header.Get(headerRequestID))
	s.NotEmpty(resp.Header.Get(headerProcessTime))
}

func (s *ServerTestSuite) TestCallerRequestIDIsEchoed() {
	resp := s.get("/api/v1/version", map[string]string{headerRequestID: "caller-id-1"})
	defer resp.Body.Close()
	s.Equal("caller-id-1", resp.Header.Get(headerRequestID))
}

func TestRateLimit(t *testing.T) {
	term := sim.New(sim.DefaultConfig())
	sess := session.New(term, session.Config{RetryInterval: time.Millisecond}, logger.NewNopLogger())
	if err := sess.Connect(context.Background()); err != nil {
		t.Fatal(err)
	}
	defer sess.Close()

	data := dataclient.New(sess, dataclient.Config{}, logger.NewNopLogger())
	server := NewServer(Config{Addr: "127.0.0.1:0", RateLimit: 1, RateBurst: 1}, data, logger.NewNopLogger())
	ts := httptest.NewServer(server.Handler())
	defer ts.Close()

	first, err := http.Get(ts.URL + "/api/v1/version")
	if err != nil {
		t.Fatal(err)
	}
	first.Body.Close()
	if first.StatusCode != http.StatusOK {
		t.Fatalf("first request: got %d", first.StatusCode)
	}

	second, err := http.Get(ts.URL + "/api/v1/version")
	if err != nil {
		t.Fatal(err)
	}
	defer second.Body.Close()
	if second.StatusCode != http.StatusTooManyRequests {
		t.Fatalf("second request: got %d, want 429", second.StatusCode)
	}
	if ct := second.Header.Get("Content-Type"); ct != "application/problem+json" {
		t.Fatalf("rate limit response content type: %s", ct)
	}
}
