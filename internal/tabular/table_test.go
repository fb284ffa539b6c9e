package tabular

import (
	"testing"
	"time"

	"github.com/rxtech-lab/mt5-bridge/internal/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFromTicksConvertsTimeColumns(t *testing.T) {
	ticks := []types.Tick{
		{Time: 1717580400, Bid: 1.08437, Ask: 1.08445, TimeMsc: 1717580400123},
	}

	table := FromTicks(ticks)

	require.Equal(t, 1, table.Len())

	timeCol := table.Column("time")
	require.Len(t, timeCol, 1)
	assert.Equal(t, time.Unix(1717580400, 0).UTC(), timeCol[0])

	mscCol := table.Column("time_msc")
	require.Len(t, mscCol, 1)
	assert.Equal(t, time.UnixMilli(1717580400123).UTC(), mscCol[0])

	// Non-time columns keep their native values.
	assert.Equal(t, 1.08437, table.Column("bid")[0])
}

func TestFromTicksRawTime(t *testing.T) {
	ticks := []types.Tick{{Time: 1717580400, TimeMsc: 1717580400123}}

	table := FromTicks(ticks, WithRawTime())

	assert.Equal(t, int64(1717580400), table.Column("time")[0])
	assert.Equal(t, int64(1717580400123), table.Column("time_msc")[0])
}

func TestZeroEpochStaysUnset(t *testing.T) {
	positions := []types.Position{
		{Ticket: 1, Time: 1717580400, TimeUpdate: 0},
	}

	table := FromPositions(positions)

	assert.IsType(t, time.Time{}, table.Column("time")[0])
	assert.Equal(t, int64(0), table.Column("time_update")[0])
}

func TestEmptyUpstreamKeepsSchema(t *testing.T) {
	table := FromRates(nil)

	assert.True(t, table.IsEmpty())
	assert.Equal(t,
		[]string{"time", "open", "high", "low", "close", "tick_volume", "spread", "real_volume"},
		table.Columns)
}

func TestSetIndex(t *testing.T) {
	table := FromPositions([]types.Position{{Ticket: 42, Symbol: "EURUSD"}})

	table.SetIndex("ticket")
	assert.Equal(t, []string{"ticket"}, table.IndexKeys)
}

func TestSetIndexOnEmptyTableIsNoOp(t *testing.T) {
	table := FromPositions(nil)

	table.SetIndex("ticket")
	assert.Nil(t, table.IndexKeys)
}

func TestSetIndexUnknownColumnIsNoOp(t *testing.T) {
	table := FromPositions([]types.Position{{Ticket: 42}})

	table.SetIndex("ticket", "no_such_column")
	assert.Nil(t, table.IndexKeys)
}

func TestTimeUnitRule(t *testing.T) {
	tests := []struct {
		column string
		unit   time.Duration
		isTime bool
	}{
		{"time", time.Second, true},
		{"time_msc", time.Millisecond, true},
		{"time_setup", time.Second, true},
		{"time_setup_msc", time.Millisecond, true},
		{"time_update", time.Second, true},
		{"tick_volume", 0, false},
		{"timestamp", 0, false},
		{"price_open", 0, false},
	}

	for _, tc := range tests {
		unit, isTime := timeUnit(tc.column)
		assert.Equal(t, tc.isTime, isTime, tc.column)
		assert.Equal(t, tc.unit, unit, tc.column)
	}
}

func TestFromAccountSingleRow(t *testing.T) {
	table := FromAccount(types.Account{Login: 9000001, Balance: 100000, Currency: "USD"})

	require.Equal(t, 1, table.Len())
	assert.Equal(t, int64(9000001), table.Column("login")[0])
	assert.Equal(t, "USD", table.Column("currency")[0])
}

func TestColumnUnknownName(t *testing.T) {
	table := FromRates([]types.Rate{{Time: 1717580400}})

	assert.Nil(t, table.Column("volume"))
}
