package api

import (
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/gorilla/mux"
	"github.com/rxtech-lab/mt5-bridge/internal/types"
	"github.com/rxtech-lab/mt5-bridge/pkg/errors"
)

const (
	defaultCount = 100
	maxCount     = 100000
)

// requireParam returns the named query parameter or a missing-parameter
// error.
func requireParam(q url.Values, name string) (string, error) {
	v := q.Get(name)
	if v == "" {
		return "", errors.Newf(errors.ErrCodeMissingParameter, "missing required parameter %q", name)
	}

	return v, nil
}

// parseTimeParam accepts RFC 3339 or epoch seconds.
func parseTimeParam(q url.Values, name string) (time.Time, error) {
	v, err := requireParam(q, name)
	if err != nil {
		return time.Time{}, err
	}

	if ts, err := time.Parse(time.RFC3339, v); err == nil {
		return ts, nil
	}

	if epoch, err := strconv.ParseInt(v, 10, 64); err == nil {
		return time.Unix(epoch, 0).UTC(), nil
	}

	return time.Time{}, errors.Newf(errors.ErrCodeInvalidParameter,
		"parameter %q must be RFC 3339 or epoch seconds, got %q", name, v)
}

func parseCountParam(q url.Values, name string, fallback int) (int, error) {
	v := q.Get(name)
	if v == "" {
		return fallback, nil
	}

	n, err := strconv.Atoi(v)
	if err != nil || n < 0 {
		return 0, errors.Newf(errors.ErrCodeInvalidParameter,
			"parameter %q must be a non-negative integer, got %q", name, v)
	}

	if n > maxCount {
		return 0, errors.Newf(errors.ErrCodeInvalidParameter,
			"parameter %q exceeds the maximum of %d", name, maxCount)
	}

	return n, nil
}

func parseTimeframeParam(q url.Values) (types.Timeframe, error) {
	v, err := requireParam(q, "timeframe")
	if err != nil {
		return 0, err
	}

	return types.ParseTimeframe(v)
}

func parseTicketParam(q url.Values) (uint64, error) {
	v := q.Get("ticket")
	if v == "" {
		return 0, nil
	}

	ticket, err := strconv.ParseUint(v, 10, 64)
	if err != nil {
		return 0, errors.Newf(errors.ErrCodeInvalidParameter,
			"parameter \"ticket\" must be a positive integer, got %q", v)
	}

	return ticket, nil
}

func symbolFromPath(r *http.Request) (string, error) {
	symbol := mux.Vars(r)["symbol"]
	if symbol == "" {
		return "", errors.New(errors.ErrCodeMissingParameter, "missing symbol in path")
	}

	return symbol, nil
}
