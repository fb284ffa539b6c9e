package trading

import (
	"context"
	"testing"
	"time"

	"github.com/rxtech-lab/mt5-bridge/internal/dataclient"
	"github.com/rxtech-lab/mt5-bridge/internal/logger"
	"github.com/rxtech-lab/mt5-bridge/internal/session"
	"github.com/rxtech-lab/mt5-bridge/internal/terminal"
	"github.com/rxtech-lab/mt5-bridge/internal/terminal/sim"
	"github.com/rxtech-lab/mt5-bridge/internal/types"
	"github.com/rxtech-lab/mt5-bridge/pkg/errors"
	"github.com/stretchr/testify/suite"
)

type MetricsTestSuite struct {
	suite.Suite
	term   *sim.Terminal
	sess   *session.Session
	data   *dataclient.Client
	client *Client
}

func TestMetricsSuite(t *testing.T) {
	suite.Run(t, new(MetricsTestSuite))
}

func (s *MetricsTestSuite) SetupTest() {
	s.term = sim.New(sim.DefaultConfig())
	s.sess = session.New(s.term, session.Config{RetryInterval: time.Millisecond}, logger.NewNopLogger())
	s.Require().NoError(s.sess.Connect(context.Background()))
	s.data = dataclient.New(s.sess, dataclient.Config{}, logger.NewNopLogger())
	s.client = New(s.sess, s.data, Config{}, logger.NewNopLogger())
}

func (s *MetricsTestSuite) TearDownTest() {
	s.sess.Close()
}

func (s *MetricsTestSuite) TestOrderMargin() {
	tick, err := s.data.Tick(context.Background(), "EURUSD")
	s.Require().NoError(err)

	margin, err := s.client.OrderMargin(context.Background(), "EURUSD", types.OrderTypeBuy, 0.5)
	s.Require().NoError(err)

	// leverage 100, contract size 100000
	s.InDelta(0.5*100000*tick.Ask/100, margin, 1e-9)
}

func (s *MetricsTestSuite) TestMinimumOrderMargin() {
	margin, volumeMin, err := s.client.MinimumOrderMargin(context.Background(), "EURUSD", types.OrderTypeBuy)
	s.Require().NoError(err)
	s.Equal(0.01, volumeMin)
	s.Greater(margin, 0.0)
}

func (s *MetricsTestSuite) TestVolumeByMargin() {
	stepMargin, err := s.client.OrderMargin(context.Background(), "EURUSD", types.OrderTypeBuy, 0.01)
	s.Require().NoError(err)

	budget := stepMargin*7 + stepMargin/2
	volume, err := s.client.VolumeByMargin(context.Background(), "EURUSD", types.OrderTypeBuy, budget)
	s.Require().NoError(err)

	// Floors to a whole number of steps, never exceeding the budget.
	s.InDelta(0.07, volume, 1e-9)

	used, err := s.client.OrderMargin(context.Background(), "EURUSD", types.OrderTypeBuy, volume)
	s.Require().NoError(err)
	s.LessOrEqual(used, budget)
}

func (s *MetricsTestSuite) TestVolumeByMarginBudgetBelowOneStep() {
	stepMargin, err := s.client.OrderMargin(context.Background(), "EURUSD", types.OrderTypeBuy, 0.01)
	s.Require().NoError(err)

	volume, err := s.client.VolumeByMargin(context.Background(), "EURUSD", types.OrderTypeBuy, stepMargin/2)
	s.Require().NoError(err)
	s.Zero(volume)
}

func (s *MetricsTestSuite) TestVolumeByMarginInvalidBudget() {
	_, err := s.client.VolumeByMargin(context.Background(), "EURUSD", types.OrderTypeBuy, 0)
	s.Require().Error(err)
	s.True(errors.HasCode(err, errors.ErrCodeInvalidParameter))
}

func (s *MetricsTestSuite) TestSpreadRatio() {
	tick, err := s.data.Tick(context.Background(), "EURUSD")
	s.Require().NoError(err)

	ratio, err := s.client.SpreadRatio(context.Background(), "EURUSD")
	s.Require().NoError(err)
	s.InDelta((tick.Ask-tick.Bid)/(tick.Ask+tick.Bid)*2, ratio, 1e-12)
	s.Greater(ratio, 0.0)
}

func (s *MetricsTestSuite) TestPositionsMetricsSignedFields() {
	now := time.Now()
	s.client.now = func() time.Time { return now }

	s.term.SeedPosition(types.Position{
		Symbol: "EURUSD", Type: types.PositionTypeBuy, Volume: 0.5,
		PriceOpen: 1.08, Time: now.Add(-time.Hour).Unix(), TimeMsc: now.Add(-time.Hour).UnixMilli(),
	})
	s.term.SeedPosition(types.Position{
		Symbol: "EURUSD", Type: types.PositionTypeSell, Volume: 0.3,
		PriceOpen: 1.09, Time: now.Add(-time.Minute).Unix(), TimeMsc: now.Add(-time.Minute).UnixMilli(),
	})

	metrics, err := s.client.PositionsMetrics(context.Background(), terminal.OrderFilter{Symbol: "EURUSD"})
	s.Require().NoError(err)
	s.Require().Len(metrics, 2)

	long, short := metrics[0], metrics[1]
	s.InDelta(time.Hour.Seconds(), long.Elapsed.Seconds(), 1.0)
	s.Greater(long.SignedMargin, 0.0)
	s.Equal(0.5, long.SignedVolume)

	s.InDelta(time.Minute.Seconds(), short.Elapsed.Seconds(), 1.0)
	s.Less(short.SignedMargin, 0.0)
	s.Equal(-0.3, short.SignedVolume)
	s.InDelta(short.Margin, -short.SignedMargin, 1e-9)
}

func (s *MetricsTestSuite) TestPositionMetricsZeroEntryPrice() {
	s.term.SeedPosition(types.Position{Symbol: "EURUSD", Type: types.PositionTypeBuy, Volume: 0.5})

	_, err := s.client.PositionsMetrics(context.Background(), terminal.OrderFilter{})
	s.Require().Error(err)
	s.True(errors.HasCode(err, errors.ErrCodeMissingMarketData))
}

func (s *MetricsTestSuite) TestPositionsWithMetricsTable() {
	s.term.SeedPosition(types.Position{
		Symbol: "EURUSD", Type: types.PositionTypeSell, Volume: 0.3, PriceOpen: 1.09,
	})

	table, err := s.client.PositionsWithMetrics(context.Background(), terminal.OrderFilter{})
	s.Require().NoError(err)
	s.Require().Equal(1, table.Len())
	s.Equal([]string{"ticket"}, table.IndexKeys)

	for _, col := range []string{"elapsed_seconds", "margin", "signed_margin", "signed_volume", "underlier_profit_ratio"} {
		s.Contains(table.Columns, col)
	}

	signedVolume := table.Column("signed_volume")
	s.Equal(-0.3, signedVolume[0])
}

func (s *MetricsTestSuite) TestPositionsWithMetricsEmptyBook() {
	table, err := s.client.PositionsWithMetrics(context.Background(), terminal.OrderFilter{})
	s.Require().NoError(err)
	s.True(table.IsEmpty())
	s.Contains(table.Columns, "signed_margin")
	s.Nil(table.IndexKeys)
}

func (s *MetricsTestSuite) TestNewPositionMarginRatio() {
	newMargin, err := s.client.OrderMargin(context.Background(), "EURUSD", types.OrderTypeBuy, 0.5)
	s.Require().NoError(err)

	account, err := s.data.AccountInfo(context.Background())
	s.Require().NoError(err)

	ratio, err := s.client.NewPositionMarginRatio(context.Background(), "EURUSD", types.OrderTypeBuy, 0.5)
	s.Require().NoError(err)
	s.InDelta(newMargin/account.Equity, ratio, 1e-9)
}

func (s *MetricsTestSuite) TestNewPositionMarginRatioNetsOppositeExposure() {
	s.term.SeedPosition(types.Position{
		Symbol: "EURUSD", Type: types.PositionTypeSell, Volume: 0.5, PriceOpen: 1.08,
	})

	ratio, err := s.client.NewPositionMarginRatio(context.Background(), "EURUSD", types.OrderTypeBuy, 0.5)
	s.Require().NoError(err)

	// A long of equal size against an existing short nets to a small
	// residual, far below the standalone margin ratio.
	account, err := s.data.AccountInfo(context.Background())
	s.Require().NoError(err)
	newMargin, err := s.client.OrderMargin(context.Background(), "EURUSD", types.OrderTypeBuy, 0.5)
	s.Require().NoError(err)

	s.Less(ratio, newMargin/account.Equity/2)
	s.GreaterOrEqual(ratio, 0.0)
}
