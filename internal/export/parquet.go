package export

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	sq "github.com/Masterminds/squirrel"
	"github.com/google/uuid"
	"github.com/rxtech-lab/mt5-bridge/internal/logger"
	"github.com/rxtech-lab/mt5-bridge/internal/tabular"
	"github.com/rxtech-lab/mt5-bridge/pkg/errors"
)

// EncodeParquet serializes a table to Parquet bytes. The table is staged
// into a throwaway in-memory DuckDB relation and copied out with DuckDB's
// Parquet writer, so the column types follow the same inference as the
// store.
func EncodeParquet(ctx context.Context, t *tabular.Table) ([]byte, error) {
	store, err := Open("", logger.NewNopLogger())
	if err != nil {
		return nil, err
	}
	defer store.Close()

	staging := "staging_" + strings.ReplaceAll(uuid.NewString(), "-", "")

	if err := store.ensureTable(ctx, staging, t); err != nil {
		return nil, err
	}

	if !t.IsEmpty() {
		quotedCols := make([]string, len(t.Columns))
		for i, c := range t.Columns {
			quotedCols[i] = quoteIdent(c)
		}

		builder := sq.Insert(quoteIdent(staging)).Columns(quotedCols...)
		for _, row := range t.Rows {
			builder = builder.Values(row...)
		}

		query, args, err := builder.ToSql()
		if err != nil {
			return nil, errors.Wrap(errors.ErrCodeEncodeFailed, "failed to build staging insert", err)
		}

		if _, err := store.db.ExecContext(ctx, query, args...); err != nil {
			return nil, errors.Wrap(errors.ErrCodeEncodeFailed, "failed to stage rows", err)
		}
	}

	out := filepath.Join(os.TempDir(), staging+".parquet")
	defer os.Remove(out)

	copyStmt := fmt.Sprintf("COPY (SELECT * FROM %s) TO '%s' (FORMAT PARQUET)", quoteIdent(staging), out)
	if _, err := store.db.ExecContext(ctx, copyStmt); err != nil {
		return nil, errors.Wrap(errors.ErrCodeEncodeFailed, "failed to write parquet", err)
	}

	data, err := os.ReadFile(out)
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeEncodeFailed, "failed to read parquet output", err)
	}

	return data, nil
}
