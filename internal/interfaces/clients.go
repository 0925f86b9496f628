// Package interfaces defines service contracts for Stockbrief
package interfaces

import (
	"context"
	"time"

	"github.com/stockbrief/stockbrief/internal/models"
)

// QuoteClient provides point-in-time market snapshots
type QuoteClient interface {
	// GetSnapshot retrieves current quote and fundamental fields for a ticker
	GetSnapshot(ctx context.Context, ticker string) (*models.MarketSnapshot, error)
}

// EODHDClient provides access to the EODHD API
type EODHDClient interface {
	// GetEOD retrieves end-of-day price data
	GetEOD(ctx context.Context, ticker string, opts ...EODOption) (*models.EODResponse, error)

	// GetNews retrieves news for a ticker
	GetNews(ctx context.Context, ticker string, limit int) ([]*models.NewsItem, error)
}

// EODOption configures EOD data requests
type EODOption func(*EODParams)

// EODParams holds EOD query parameters
type EODParams struct {
	From   time.Time
	To     time.Time
	Period string // d=daily, w=weekly, m=monthly
	Order  string // a=ascending, d=descending
}

// WithDateRange sets the date range for EOD query
func WithDateRange(from, to time.Time) EODOption {
	return func(p *EODParams) {
		p.From = from
		p.To = to
	}
}

// WithPeriod sets the period for EOD query
func WithPeriod(period string) EODOption {
	return func(p *EODParams) {
		p.Period = period
	}
}

// WithOrder sets the sort order for EOD query
func WithOrder(order string) EODOption {
	return func(p *EODParams) {
		p.Order = order
	}
}

// GenAIClient provides access to the text-generation model
type GenAIClient interface {
	// GenerateContent generates AI content from a prompt
	GenerateContent(ctx context.Context, prompt string) (string, error)
}
