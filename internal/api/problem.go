package api

import (
	"encoding/json"
	"net/http"

	"github.com/rxtech-lab/mt5-bridge/pkg/errors"
)

// Problem is an RFC 7807 problem details body. Every non-2xx response uses
// this shape.
type Problem struct {
	Type     string `json:"type"`
	Title    string `json:"title"`
	Status   int    `json:"status"`
	Detail   string `json:"detail,omitempty"`
	Instance string `json:"instance,omitempty"`
}

func writeProblem(w http.ResponseWriter, r *http.Request, status int, title, detail string) {
	w.Header().Set("Content-Type", "application/problem+json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(Problem{
		Type:     "about:blank",
		Title:    title,
		Status:   status,
		Detail:   detail,
		Instance: r.URL.Path,
	})
}

// writeError maps a structured error to a problem response. Request
// validation maps to 400, an unavailable or failing terminal to 503, and
// anything unexpected to an opaque 500.
func writeError(w http.ResponseWriter, r *http.Request, err error) {
	switch errors.GetCode(err) {
	case errors.ErrCodeInvalidRequest, errors.ErrCodeInvalidParameter,
		errors.ErrCodeMissingParameter, errors.ErrCodeInvalidSymbol,
		errors.ErrCodeInvalidTimeframe, errors.ErrCodeBatchTooLarge,
		errors.ErrCodeInvalidVolume:
		writeProblem(w, r, http.StatusBadRequest, "Invalid request", err.Error())
	case errors.ErrCodeNotInitialized, errors.ErrCodeConnectFailed,
		errors.ErrCodeSessionClosed:
		writeProblem(w, r, http.StatusServiceUnavailable, "Terminal not available", err.Error())
	case errors.ErrCodeVenueOperation, errors.ErrCodeVenueNilResult:
		writeProblem(w, r, http.StatusServiceUnavailable, "Terminal operation failed", err.Error())
	case errors.ErrCodeMissingMarketData:
		writeProblem(w, r, http.StatusBadRequest, "Market data unavailable", err.Error())
	default:
		// Internal detail stays out of the response body.
		writeProblem(w, r, http.StatusInternalServerError, "Internal server error", "")
	}
}
