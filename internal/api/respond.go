package api

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strings"

	"github.com/rxtech-lab/mt5-bridge/internal/export"
	"github.com/rxtech-lab/mt5-bridge/internal/tabular"
)

const (
	formatJSON    = "json"
	formatParquet = "parquet"
)

// negotiateFormat picks the response encoding. The format query parameter
// wins over the Accept header; the default is JSON.
func negotiateFormat(r *http.Request) string {
	switch strings.ToLower(r.URL.Query().Get("format")) {
	case formatJSON:
		return formatJSON
	case formatParquet:
		return formatParquet
	}

	accept := r.Header.Get("Accept")
	if strings.Contains(accept, "application/parquet") ||
		strings.Contains(accept, "application/vnd.apache.parquet") {
		return formatParquet
	}

	return formatJSON
}

// envelope is the JSON response shape for tabular data.
type envelope struct {
	Data   []map[string]any `json:"data"`
	Count  int              `json:"count"`
	Format string           `json:"format"`
}

func tableRecords(t *tabular.Table) []map[string]any {
	records := make([]map[string]any, 0, t.Len())

	for _, row := range t.Rows {
		rec := make(map[string]any, len(t.Columns))
		for i, col := range t.Columns {
			rec[col] = row[i]
		}

		records = append(records, rec)
	}

	return records
}

// respondTable writes a table in the negotiated format.
func (s *Server) respondTable(w http.ResponseWriter, r *http.Request, t *tabular.Table, name string) {
	switch negotiateFormat(r) {
	case formatParquet:
		data, err := export.EncodeParquet(r.Context(), t)
		if err != nil {
			writeError(w, r, err)

			return
		}

		w.Header().Set("Content-Type", "application/parquet")
		w.Header().Set("Content-Disposition", fmt.Sprintf(`attachment; filename="%s.parquet"`, name))
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write(data)
	default:
		respondJSON(w, http.StatusOK, envelope{
			Data:   tableRecords(t),
			Count:  t.Len(),
			Format: formatJSON,
		})
	}
}

func respondJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}
