// Package yahoo provides a client for the Yahoo Finance quote API
package yahoo

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"golang.org/x/time/rate"

	"github.com/stockbrief/stockbrief/internal/common"
	"github.com/stockbrief/stockbrief/internal/interfaces"
	"github.com/stockbrief/stockbrief/internal/models"
)

const (
	DefaultBaseURL   = "https://query1.finance.yahoo.com"
	DefaultTimeout   = 30 * time.Second
	DefaultRateLimit = 5 // requests per second
)

// Client implements the QuoteClient interface
type Client struct {
	baseURL    string
	httpClient *http.Client
	logger     *common.Logger
	limiter    *rate.Limiter
}

// ClientOption configures the client
type ClientOption func(*Client)

// WithBaseURL sets the base URL
func WithBaseURL(baseURL string) ClientOption {
	return func(c *Client) {
		c.baseURL = baseURL
	}
}

// WithLogger sets the logger
func WithLogger(logger *common.Logger) ClientOption {
	return func(c *Client) {
		c.logger = logger
	}
}

// WithRateLimit sets the rate limit
func WithRateLimit(requestsPerSecond int) ClientOption {
	return func(c *Client) {
		c.limiter = rate.NewLimiter(rate.Limit(requestsPerSecond), requestsPerSecond)
	}
}

// WithTimeout sets the HTTP timeout
func WithTimeout(timeout time.Duration) ClientOption {
	return func(c *Client) {
		c.httpClient.Timeout = timeout
	}
}

// NewClient creates a new quote client
func NewClient(opts ...ClientOption) *Client {
	c := &Client{
		baseURL: DefaultBaseURL,
		httpClient: &http.Client{
			Timeout: DefaultTimeout,
		},
		limiter: rate.NewLimiter(rate.Limit(DefaultRateLimit), DefaultRateLimit),
		logger:  common.NewSilentLogger(),
	}

	for _, opt := range opts {
		opt(c)
	}

	return c
}

// APIError represents an API error
type APIError struct {
	StatusCode int
	Message    string
	Endpoint   string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("quote API error: %s (status: %d, endpoint: %s)", e.Message, e.StatusCode, e.Endpoint)
}

// quoteEnvelope is the v7 finance/quote response wrapper.
type quoteEnvelope struct {
	QuoteResponse struct {
		Result []quoteResult `json:"result"`
		Error  *quoteError   `json:"error"`
	} `json:"quoteResponse"`
}

type quoteError struct {
	Code        string `json:"code"`
	Description string `json:"description"`
}

// quoteResult is the per-symbol field map inside the envelope. Field names
// follow the source verbatim; pointers keep omitted values distinguishable
// from zero.
type quoteResult struct {
	Symbol             string   `json:"symbol"`
	RegularMarketPrice *float64 `json:"regularMarketPrice"`
	PostMarketPrice    *float64 `json:"postMarketPrice"`
	PreviousClose      *float64 `json:"regularMarketPreviousClose"`
	Volume             *int64   `json:"regularMarketVolume"`
	TotalRevenue       *float64 `json:"totalRevenue"`
	NetIncomeToCommon  *float64 `json:"netIncomeToCommon"`
}

// GetSnapshot retrieves current quote and fundamental fields for a ticker
// via GET /v7/finance/quote?symbols={TICKER}. An empty result set yields a
// snapshot with no fields: the quote source knows nothing about the symbol,
// and the history lookup decides whether the ticker exists at all.
func (c *Client) GetSnapshot(ctx context.Context, ticker string) (*models.MarketSnapshot, error) {
	if err := c.limiter.Wait(ctx); err != nil {
		return nil, fmt.Errorf("rate limit wait: %w", err)
	}

	ticker = strings.ToUpper(strings.TrimSpace(ticker))

	path := "/v7/finance/quote"
	params := url.Values{}
	params.Set("symbols", ticker)
	reqURL := fmt.Sprintf("%s%s?%s", c.baseURL, path, params.Encode())

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	c.logger.Debug().Str("url", c.baseURL+path).Str("ticker", ticker).Msg("Quote API request")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to execute request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		return nil, &APIError{
			StatusCode: resp.StatusCode,
			Message:    string(body),
			Endpoint:   path,
		}
	}

	var envelope quoteEnvelope
	if err := json.NewDecoder(resp.Body).Decode(&envelope); err != nil {
		return nil, fmt.Errorf("failed to decode response: %w", err)
	}

	if apiErr := envelope.QuoteResponse.Error; apiErr != nil {
		return nil, &APIError{
			StatusCode: resp.StatusCode,
			Message:    apiErr.Description,
			Endpoint:   path,
		}
	}

	if len(envelope.QuoteResponse.Result) == 0 {
		return &models.MarketSnapshot{Ticker: ticker}, nil
	}

	info := envelope.QuoteResponse.Result[0]
	return &models.MarketSnapshot{
		Ticker:          ticker,
		CurrentPrice:    info.RegularMarketPrice,
		AfterHoursPrice: info.PostMarketPrice,
		PreviousClose:   info.PreviousClose,
		Volume:          info.Volume,
		RevenueTTM:      info.TotalRevenue,
		NetIncomeTTM:    info.NetIncomeToCommon,
	}, nil
}

// Ensure Client implements QuoteClient
var _ interfaces.QuoteClient = (*Client)(nil)
