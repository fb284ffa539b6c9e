// Package tabular shapes native terminal records into column-oriented tables.
//
// Every builder declares its column set explicitly, so an empty upstream
// result still yields a table with the full schema and zero rows. Epoch time
// fields are converted to time.Time in UTC by default: a column named "time"
// or "time_*" carries epoch seconds, and a "time_*_msc" column carries epoch
// milliseconds.
package tabular

import (
	"strings"
	"time"
)

// Table is an ordered set of columns with row-major data. IndexKeys names the
// columns a consumer should treat as the row identity; it is advisory and set
// via SetIndex.
type Table struct {
	Columns   []string
	Rows      [][]any
	IndexKeys []string
}

// Len returns the number of rows.
func (t *Table) Len() int {
	return len(t.Rows)
}

// IsEmpty reports whether the table has no rows.
func (t *Table) IsEmpty() bool {
	return len(t.Rows) == 0
}

// ColumnIndex returns the position of the named column.
func (t *Table) ColumnIndex(name string) (int, bool) {
	for i, c := range t.Columns {
		if c == name {
			return i, true
		}
	}

	return 0, false
}

// Column returns all values of the named column, or nil when absent.
func (t *Table) Column(name string) []any {
	idx, found := t.ColumnIndex(name)
	if !found {
		return nil
	}

	out := make([]any, len(t.Rows))
	for i, row := range t.Rows {
		out[i] = row[idx]
	}

	return out
}

// SetIndex marks the given columns as the table's index. Setting an index on
// an empty table, or naming a column the table does not have, leaves the
// table unchanged.
func (t *Table) SetIndex(keys ...string) {
	if t.IsEmpty() || len(keys) == 0 {
		return
	}

	for _, k := range keys {
		if _, found := t.ColumnIndex(k); !found {
			return
		}
	}

	t.IndexKeys = keys
}

type options struct {
	rawTime bool
}

// Option adjusts how a builder shapes its table.
type Option func(*options)

// WithRawTime disables epoch-to-time.Time conversion; time columns keep their
// native integer values.
func WithRawTime() Option {
	return func(o *options) {
		o.rawTime = true
	}
}

func buildOptions(opts []Option) options {
	var o options
	for _, opt := range opts {
		opt(&o)
	}

	return o
}

// timeUnit reports whether the named column is an epoch time field, and at
// which resolution.
func timeUnit(column string) (time.Duration, bool) {
	if column == "time" {
		return time.Second, true
	}

	if !strings.HasPrefix(column, "time_") {
		return 0, false
	}

	if strings.HasSuffix(column, "_msc") {
		return time.Millisecond, true
	}

	return time.Second, true
}

// convertTimes rewrites epoch integers in time columns to UTC time.Time
// values, in place. Zero epochs stay zero integers: an unset venue timestamp
// is "absent", not 1970.
func convertTimes(t *Table) {
	for col, name := range t.Columns {
		unit, isTime := timeUnit(name)
		if !isTime {
			continue
		}

		for _, row := range t.Rows {
			epoch, isInt := row[col].(int64)
			if !isInt || epoch == 0 {
				continue
			}

			if unit == time.Millisecond {
				row[col] = time.UnixMilli(epoch).UTC()
			} else {
				row[col] = time.Unix(epoch, 0).UTC()
			}
		}
	}
}

func finish(t *Table, o options) *Table {
	if !o.rawTime {
		convertTimes(t)
	}

	return t
}
