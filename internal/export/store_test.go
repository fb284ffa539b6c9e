package export

import (
	"context"
	"testing"

	"github.com/rxtech-lab/mt5-bridge/internal/logger"
	"github.com/rxtech-lab/mt5-bridge/internal/tabular"
	"github.com/rxtech-lab/mt5-bridge/internal/types"
	"github.com/rxtech-lab/mt5-bridge/pkg/errors"
	"github.com/stretchr/testify/suite"
)

type StoreTestSuite struct {
	suite.Suite
	store *Store
}

func TestStoreSuite(t *testing.T) {
	suite.Run(t, new(StoreTestSuite))
}

func (s *StoreTestSuite) SetupTest() {
	store, err := Open("", logger.NewNopLogger())
	s.Require().NoError(err)
	s.store = store
}

func (s *StoreTestSuite) TearDownTest() {
	s.Require().NoError(s.store.Close())
}

func ratesTable(times ...int64) *tabular.Table {
	rates := make([]types.Rate, 0, len(times))
	for _, ts := range times {
		rates = append(rates, types.Rate{
			Time: ts, Open: 1.08, High: 1.09, Low: 1.07, Close: 1.085,
			TickVolume: 40, Spread: 8,
		})
	}

	t := tabular.FromRates(rates)
	t.SetIndex("time")

	return t
}

func (s *StoreTestSuite) TestAppendAndCount() {
	inserted, err := s.store.Append(context.Background(), "rates_eurusd_m1", ratesTable(1717580400, 1717580460))
	s.Require().NoError(err)
	s.Equal(2, inserted)

	n, err := s.store.Count(context.Background(), "rates_eurusd_m1")
	s.Require().NoError(err)
	s.Equal(2, n)
}

func (s *StoreTestSuite) TestAppendIsIdempotent() {
	table := ratesTable(1717580400, 1717580460)

	_, err := s.store.Append(context.Background(), "rates", table)
	s.Require().NoError(err)

	inserted, err := s.store.Append(context.Background(), "rates", ratesTable(1717580400, 1717580460))
	s.Require().NoError(err)
	s.Zero(inserted)

	n, err := s.store.Count(context.Background(), "rates")
	s.Require().NoError(err)
	s.Equal(2, n)
}

func (s *StoreTestSuite) TestAppendOnlyNewKeys() {
	_, err := s.store.Append(context.Background(), "rates", ratesTable(1717580400))
	s.Require().NoError(err)

	inserted, err := s.store.Append(context.Background(), "rates", ratesTable(1717580400, 1717580460, 1717580520))
	s.Require().NoError(err)
	s.Equal(2, inserted)

	n, err := s.store.Count(context.Background(), "rates")
	s.Require().NoError(err)
	s.Equal(3, n)
}

func (s *StoreTestSuite) TestAppendEmptyTable() {
	inserted, err := s.store.Append(context.Background(), "rates", ratesTable())
	s.Require().NoError(err)
	s.Zero(inserted)
}

func (s *StoreTestSuite) TestAppendWithoutIndexKeys() {
	rates := tabular.FromRates([]types.Rate{{Time: 1717580400}})

	_, err := s.store.Append(context.Background(), "rates", rates)
	s.Require().Error(err)
	s.True(errors.HasCode(err, errors.ErrCodeExportFailed))
}

func (s *StoreTestSuite) TestAppendDuplicateKeysWithinBatch() {
	inserted, err := s.store.Append(context.Background(), "rates", ratesTable(1717580400, 1717580400))
	s.Require().NoError(err)
	s.Equal(1, inserted)
}

func TestEncodeParquet(t *testing.T) {
	data, err := EncodeParquet(context.Background(), ratesTable(1717580400, 1717580460))
	if err != nil {
		t.Fatalf("encode: %v", err)
	}

	// PAR1 magic at both ends of the file.
	if len(data) < 8 || string(data[:4]) != "PAR1" || string(data[len(data)-4:]) != "PAR1" {
		t.Fatalf("output is not a parquet file (%d bytes)", len(data))
	}
}

func TestEncodeParquetEmptyTable(t *testing.T) {
	data, err := EncodeParquet(context.Background(), ratesTable())
	if err != nil {
		t.Fatalf("encode: %v", err)
	}

	if len(data) == 0 {
		t.Fatal("empty table must still produce a parquet file with the schema")
	}
}
