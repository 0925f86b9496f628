package analysis

import (
	"errors"
	"fmt"
)

// ErrInvalidTicker is returned when the requested ticker is empty.
var ErrInvalidTicker = errors.New("invalid ticker")

// ErrMalformedResponse marks model output that failed the strict JSON parse.
// It is recovered locally by the fallback renderer and never reaches the
// HTTP boundary.
var ErrMalformedResponse = errors.New("malformed model response")

// NoDataError is returned when the market-data source has no history for a
// ticker. The request is aborted: a report without a chart is not served.
type NoDataError struct {
	Ticker string
}

func (e *NoDataError) Error() string {
	return fmt.Sprintf("no stock data found for %s", e.Ticker)
}
