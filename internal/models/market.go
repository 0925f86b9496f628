// Package models defines data structures for Stockbrief
package models

import (
	"time"
)

// MarketSnapshot holds point-in-time quote and fundamental fields for a
// ticker. Pointer fields are nil when the source omitted the value; a nil
// CurrentPrice with a non-nil PreviousClose means the previous close is the
// display fallback.
type MarketSnapshot struct {
	Ticker          string   `json:"ticker"`
	CurrentPrice    *float64 `json:"current_price,omitempty"`
	AfterHoursPrice *float64 `json:"after_hours_price,omitempty"`
	PreviousClose   *float64 `json:"previous_close,omitempty"`
	Volume          *int64   `json:"volume,omitempty"`
	RevenueTTM      *float64 `json:"revenue_ttm,omitempty"`
	NetIncomeTTM    *float64 `json:"net_income_ttm,omitempty"`
}

// DisplayPrice returns the price to show: the live price when available,
// otherwise the previous close. The boolean reports whether any price exists.
func (s *MarketSnapshot) DisplayPrice() (float64, bool) {
	if s.CurrentPrice != nil {
		return *s.CurrentPrice, true
	}
	if s.PreviousClose != nil {
		return *s.PreviousClose, true
	}
	return 0, false
}

// EODBar represents a single day's price data
type EODBar struct {
	Date     time.Time `json:"date"`
	Open     float64   `json:"open"`
	High     float64   `json:"high"`
	Low      float64   `json:"low"`
	Close    float64   `json:"close"`
	AdjClose float64   `json:"adjusted_close"`
	Volume   int64     `json:"volume"`
}

// EODResponse wraps a series of EOD bars
type EODResponse struct {
	Data []EODBar `json:"data"`
}

// ChartSeries holds the parallel ordered sequences consumed by the front-end
// chart. All six slices always have identical length.
type ChartSeries struct {
	Dates  []string  `json:"dates"`
	Open   []float64 `json:"open"`
	High   []float64 `json:"high"`
	Low    []float64 `json:"low"`
	Close  []float64 `json:"close"`
	Volume []int64   `json:"volume"`
}

// Len returns the number of trading days in the series.
func (c *ChartSeries) Len() int {
	return len(c.Dates)
}

// NewsItem represents a single news article
type NewsItem struct {
	Title       string    `json:"title"`
	Summary     string    `json:"summary"`
	URL         string    `json:"url"`
	Source      string    `json:"source"`
	PublishedAt time.Time `json:"published_at"`
}
