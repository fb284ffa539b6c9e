// Package mocks contains generated mocks for the interfaces the tests
// substitute. Regenerate with `go generate ./mocks`.
package mocks

//go:generate mockgen -destination=trading_mock/marketdata_mock.go -package=trading_mock github.com/rxtech-lab/mt5-bridge/internal/trading MarketData
