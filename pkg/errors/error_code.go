package errors

// ErrorCode represents a unique error code for identifying different error types.
type ErrorCode int

const (
	// General errors (1-99)
	ErrCodeUnknown ErrorCode = 1

	// Request validation errors (100-199). Raised before any terminal call
	// is made, so a rejected request never has partial side effects.
	ErrCodeInvalidRequest       ErrorCode = 100
	ErrCodeInvalidConfiguration ErrorCode = 101
	ErrCodeInvalidParameter     ErrorCode = 102
	ErrCodeMissingParameter     ErrorCode = 103
	ErrCodeInvalidVolume        ErrorCode = 104
	ErrCodeInvalidSymbol        ErrorCode = 105
	ErrCodeInvalidTimeframe     ErrorCode = 106
	ErrCodeBatchTooLarge        ErrorCode = 107

	// Session errors (200-299)
	ErrCodeNotInitialized ErrorCode = 200
	ErrCodeConnectFailed  ErrorCode = 201
	ErrCodeLoginFailed    ErrorCode = 202
	ErrCodeSessionClosed  ErrorCode = 203
	ErrCodeCallCancelled  ErrorCode = 204

	// Venue operation errors (300-399). These carry the terminal's
	// last-error code and description.
	ErrCodeVenueOperation ErrorCode = 300
	ErrCodeVenueNilResult ErrorCode = 301

	// Market data errors (400-499). Degenerate venue data (missing tick,
	// zero quotes, zero entry price) all classify as missing market data.
	ErrCodeMissingMarketData ErrorCode = 400

	// Trading errors (500-599)
	ErrCodeUnknownRetcode   ErrorCode = 500
	ErrCodeOrderRejected    ErrorCode = 501
	ErrCodePositionNotFound ErrorCode = 502

	// Storage/export errors (600-699)
	ErrCodeExportFailed ErrorCode = 600
	ErrCodeEncodeFailed ErrorCode = 601
)
