// Package export persists fetched tables into an embedded DuckDB database
// and encodes tables as Parquet. Appends are idempotent: rows whose index
// key tuple is already stored are skipped.
package export

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	sq "github.com/Masterminds/squirrel"
	_ "github.com/marcboeker/go-duckdb"
	"github.com/rxtech-lab/mt5-bridge/internal/logger"
	"github.com/rxtech-lab/mt5-bridge/internal/tabular"
	"github.com/rxtech-lab/mt5-bridge/pkg/errors"
	"go.uber.org/zap"
)

// Store is a DuckDB-backed table archive.
type Store struct {
	db  *sql.DB
	log *logger.Logger
}

// Open opens (or creates) the database at path. An empty path opens an
// in-memory database.
func Open(path string, log *logger.Logger) (*Store, error) {
	db, err := sql.Open("duckdb", path)
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeExportFailed, "failed to open duckdb database", err)
	}

	return &Store{db: db, log: log}, nil
}

// Close closes the underlying database.
func (s *Store) Close() error {
	return s.db.Close()
}

// columnType infers the storage type of a column from its first non-nil
// value. A column with no values defaults to VARCHAR.
func columnType(t *tabular.Table, col int) string {
	for _, row := range t.Rows {
		switch row[col].(type) {
		case nil:
			continue
		case time.Time:
			return "TIMESTAMP"
		case bool:
			return "BOOLEAN"
		case float32, float64:
			return "DOUBLE"
		case uint, uint32, uint64:
			return "UBIGINT"
		case int, int8, int16, int32, int64:
			return "BIGINT"
		default:
			return "VARCHAR"
		}
	}

	return "VARCHAR"
}

func quoteIdent(name string) string {
	return `"` + strings.ReplaceAll(name, `"`, `""`) + `"`
}

// ensureTable creates the target table from the tabular schema when it does
// not exist yet.
func (s *Store) ensureTable(ctx context.Context, name string, t *tabular.Table) error {
	cols := make([]string, 0, len(t.Columns))
	for i, c := range t.Columns {
		cols = append(cols, fmt.Sprintf("%s %s", quoteIdent(c), columnType(t, i)))
	}

	query := fmt.Sprintf("CREATE TABLE IF NOT EXISTS %s (%s)", quoteIdent(name), strings.Join(cols, ", "))
	if _, err := s.db.ExecContext(ctx, query); err != nil {
		return errors.Wrapf(errors.ErrCodeExportFailed, err, "failed to create table %s", name)
	}

	return nil
}

// keyString flattens a key tuple into a comparable string.
func keyString(values []any) string {
	parts := make([]string, len(values))
	for i, v := range values {
		parts[i] = fmt.Sprintf("%v", v)
	}

	return strings.Join(parts, "\x1f")
}

// existingKeys loads the key tuples already stored in the target table.
func (s *Store) existingKeys(ctx context.Context, name string, keys []string) (map[string]struct{}, error) {
	quoted := make([]string, len(keys))
	for i, k := range keys {
		quoted[i] = quoteIdent(k)
	}

	query, args, err := sq.Select(quoted...).From(quoteIdent(name)).ToSql()
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeExportFailed, "failed to build key query", err)
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, errors.Wrapf(errors.ErrCodeExportFailed, err, "failed to read keys from %s", name)
	}
	defer rows.Close()

	seen := make(map[string]struct{})
	values := make([]any, len(keys))
	ptrs := make([]any, len(keys))
	for i := range values {
		ptrs[i] = &values[i]
	}

	for rows.Next() {
		if err := rows.Scan(ptrs...); err != nil {
			return nil, errors.Wrap(errors.ErrCodeExportFailed, "failed to scan key row", err)
		}

		seen[keyString(values)] = struct{}{}
	}

	return seen, rows.Err()
}

// Append stores the table's rows under the given name, skipping rows whose
// index key tuple is already present. It returns the number of rows actually
// inserted. The table must carry index keys.
func (s *Store) Append(ctx context.Context, name string, t *tabular.Table) (int, error) {
	if t.IsEmpty() {
		return 0, nil
	}

	if len(t.IndexKeys) == 0 {
		return 0, errors.Newf(errors.ErrCodeExportFailed,
			"table %s has no index keys to de-duplicate on", name)
	}

	if err := s.ensureTable(ctx, name, t); err != nil {
		return 0, err
	}

	seen, err := s.existingKeys(ctx, name, t.IndexKeys)
	if err != nil {
		return 0, err
	}

	keyIdx := make([]int, len(t.IndexKeys))
	for i, k := range t.IndexKeys {
		idx, found := t.ColumnIndex(k)
		if !found {
			return 0, errors.Newf(errors.ErrCodeExportFailed, "index key %s not in table %s", k, name)
		}

		keyIdx[i] = idx
	}

	quotedCols := make([]string, len(t.Columns))
	for i, c := range t.Columns {
		quotedCols[i] = quoteIdent(c)
	}

	builder := sq.Insert(quoteIdent(name)).Columns(quotedCols...)
	inserted := 0
	key := make([]any, len(keyIdx))

	for _, row := range t.Rows {
		for i, idx := range keyIdx {
			key[i] = row[idx]
		}

		ks := keyString(key)
		if _, dup := seen[ks]; dup {
			continue
		}

		seen[ks] = struct{}{}
		builder = builder.Values(row...)
		inserted++
	}

	if inserted == 0 {
		s.log.Debug("append found no new rows", zap.String("table", name))

		return 0, nil
	}

	query, args, err := builder.ToSql()
	if err != nil {
		return 0, errors.Wrap(errors.ErrCodeExportFailed, "failed to build insert", err)
	}

	if _, err := s.db.ExecContext(ctx, query, args...); err != nil {
		return 0, errors.Wrapf(errors.ErrCodeExportFailed, err, "failed to insert into %s", name)
	}

	s.log.Info("appended rows",
		zap.String("table", name),
		zap.Int("inserted", inserted),
		zap.Int("skipped", t.Len()-inserted),
	)

	return inserted, nil
}

// Count returns the number of stored rows in the named table.
func (s *Store) Count(ctx context.Context, name string) (int, error) {
	query, args, err := sq.Select("COUNT(*)").From(quoteIdent(name)).ToSql()
	if err != nil {
		return 0, errors.Wrap(errors.ErrCodeExportFailed, "failed to build count query", err)
	}

	var n int
	if err := s.db.QueryRowContext(ctx, query, args...).Scan(&n); err != nil {
		return 0, errors.Wrapf(errors.ErrCodeExportFailed, err, "failed to count rows in %s", name)
	}

	return n, nil
}
