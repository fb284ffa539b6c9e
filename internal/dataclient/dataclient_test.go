package dataclient

import (
	"context"
	"testing"
	"time"

	"github.com/rxtech-lab/mt5-bridge/internal/logger"
	"github.com/rxtech-lab/mt5-bridge/internal/session"
	"github.com/rxtech-lab/mt5-bridge/internal/terminal"
	"github.com/rxtech-lab/mt5-bridge/internal/terminal/sim"
	"github.com/rxtech-lab/mt5-bridge/internal/types"
	"github.com/rxtech-lab/mt5-bridge/pkg/errors"
	"github.com/stretchr/testify/suite"
)

type DataClientTestSuite struct {
	suite.Suite
	term   *sim.Terminal
	sess   *session.Session
	client *Client
}

func TestDataClientSuite(t *testing.T) {
	suite.Run(t, new(DataClientTestSuite))
}

func (s *DataClientTestSuite) SetupTest() {
	s.term = sim.New(sim.DefaultConfig())
	s.sess = session.New(s.term, session.Config{RetryInterval: time.Millisecond}, logger.NewNopLogger())
	s.Require().NoError(s.sess.Connect(context.Background()))
	s.client = New(s.sess, Config{ReadRetries: 1, RetryInterval: time.Millisecond}, logger.NewNopLogger())
}

func (s *DataClientTestSuite) TearDownTest() {
	s.sess.Close()
}

func (s *DataClientTestSuite) TestTick() {
	tick, err := s.client.Tick(context.Background(), "EURUSD")
	s.Require().NoError(err)
	s.Require().NotNil(tick)
	s.Greater(tick.Ask, tick.Bid)
}

func (s *DataClientTestSuite) TestUnknownSymbolIsVenueError() {
	_, err := s.client.Tick(context.Background(), "NOSUCH")
	s.Require().Error(err)
	s.True(errors.HasCode(err, errors.ErrCodeVenueOperation))

	var venueErr *errors.VenueError
	s.Require().True(errors.As(err, &venueErr))
	s.Equal("symbol_info_tick", venueErr.Operation)
	s.Equal(types.ResNotFound, venueErr.VenueCode)
}

func (s *DataClientTestSuite) TestReadRetriesTransientFailure() {
	s.term.FailNext("symbol_info_tick", types.ResFail, "IPC timeout")

	tick, err := s.client.Tick(context.Background(), "EURUSD")
	s.Require().NoError(err)
	s.NotNil(tick)
}

func (s *DataClientTestSuite) TestReadRetriesExhausted() {
	s.client.cfg.ReadRetries = 0
	s.term.FailNext("account_info", types.ResFail, "IPC timeout")

	_, err := s.client.AccountInfo(context.Background())
	s.Require().Error(err)
	s.True(errors.HasCode(err, errors.ErrCodeVenueOperation))
}

func (s *DataClientTestSuite) TestEmptyPositionsIsNotAnError() {
	positions, err := s.client.Positions(context.Background(), terminal.OrderFilter{})
	s.Require().NoError(err)
	s.Empty(positions)
}

func (s *DataClientTestSuite) TestEmptyPositionsTableKeepsSchema() {
	table, err := s.client.PositionsTable(context.Background(), terminal.OrderFilter{})
	s.Require().NoError(err)
	s.True(table.IsEmpty())
	s.Contains(table.Columns, "ticket")
	s.Contains(table.Columns, "price_open")
	s.Nil(table.IndexKeys)
}

func (s *DataClientTestSuite) TestPositionsTableIndexedByTicket() {
	s.term.SeedPosition(types.Position{
		Symbol: "EURUSD", Type: types.PositionTypeBuy, Volume: 0.5, PriceOpen: 1.08,
	})

	table, err := s.client.PositionsTable(context.Background(), terminal.OrderFilter{})
	s.Require().NoError(err)
	s.Equal(1, table.Len())
	s.Equal([]string{"ticket"}, table.IndexKeys)
}

func (s *DataClientTestSuite) TestRatesRangeTable() {
	from := time.Now().Add(-10 * time.Minute)
	to := time.Now()

	table, err := s.client.RatesRangeTable(context.Background(), "EURUSD", types.TimeframeM1, from, to)
	s.Require().NoError(err)
	s.Greater(table.Len(), 0)
	s.Equal([]string{"time"}, table.IndexKeys)

	_, isTime := table.Rows[0][0].(time.Time)
	s.True(isTime)
}

func (s *DataClientTestSuite) TestSymbolsGroupFilter() {
	symbols, err := s.client.Symbols(context.Background(), "*USD")
	s.Require().NoError(err)

	for _, spec := range symbols {
		s.True(len(spec.Name) >= 3)
		s.Equal("USD", spec.Name[len(spec.Name)-3:])
	}
	s.NotEmpty(symbols)
}

func (s *DataClientTestSuite) TestNotInitializedIsNotRetried() {
	s.sess.Disconnect()

	start := time.Now()
	_, err := s.client.AccountInfo(context.Background())
	s.Require().Error(err)
	s.True(errors.HasCode(err, errors.ErrCodeNotInitialized))
	s.Less(time.Since(start), 50*time.Millisecond)
}
