// Package analysis runs the stock analysis pipeline: fetch market data,
// prompt the model, normalize its response, and render the report.
package analysis

import (
	"context"
	"strings"
	"time"

	"github.com/stockbrief/stockbrief/internal/common"
	"github.com/stockbrief/stockbrief/internal/interfaces"
	"github.com/stockbrief/stockbrief/internal/models"
)

const (
	// HistoryLookback is the chart window.
	HistoryLookback = 90 * 24 * time.Hour

	// newsLimit is the number of headlines requested for prompt grounding.
	newsLimit = 3
)

// Disclaimer is the fixed boilerplate returned with every successful report.
const Disclaimer = "<div class='alert alert-warning'>Disclaimer: The stock analysis and recommendations provided " +
	"are for informational purposes only and should not be considered financial advice. Always do your " +
	"own research or consult with a financial professional.</div>"

// modelDodge is a phrase the model emits when a tool lookup came back empty;
// it reads poorly in a report and is rewritten before parsing.
const modelDodge = "Not explicitly provided in the tool output."

const modelDodgeReplacement = "Not available but will continue fetching other relevant data..."

// Service implements AnalysisService
type Service struct {
	quote  interfaces.QuoteClient
	eodhd  interfaces.EODHDClient
	genai  interfaces.GenAIClient
	logger *common.Logger
}

// NewService creates a new analysis service
func NewService(
	quote interfaces.QuoteClient,
	eodhd interfaces.EODHDClient,
	genai interfaces.GenAIClient,
	logger *common.Logger,
) *Service {
	return &Service{
		quote:  quote,
		eodhd:  eodhd,
		genai:  genai,
		logger: logger,
	}
}

// Analyze runs the full pipeline for one ticker. The pipeline is strictly
// sequential and owns no state beyond this call, so concurrent requests are
// independent.
func (s *Service) Analyze(ctx context.Context, ticker string) (*models.AnalyzeResponse, error) {
	ticker = strings.ToUpper(strings.TrimSpace(ticker))
	if ticker == "" {
		return nil, ErrInvalidTicker
	}

	s.logger.Info().Str("ticker", ticker).Msg("Generating stock analysis")

	// Step 1: point-in-time snapshot for prompt seeding
	snapshot, err := s.quote.GetSnapshot(ctx, ticker)
	if err != nil {
		return nil, err
	}

	// Step 2: price history. An empty history aborts the request before the
	// model call: a report without a chart is not served.
	history, err := s.fetchHistory(ctx, ticker)
	if err != nil {
		return nil, err
	}

	// Step 3: recent headlines for prompt grounding (best-effort)
	news, err := s.eodhd.GetNews(ctx, ticker, newsLimit)
	if err != nil {
		s.logger.Warn().Err(err).Str("ticker", ticker).Msg("News fetch failed (continuing without headlines)")
		news = nil
	}

	// Step 4: prompt the model
	prompt, err := BuildPrompt(ticker, snapshot, news)
	if err != nil {
		return nil, err
	}

	raw, err := s.genai.GenerateContent(ctx, prompt)
	if err != nil {
		return nil, err
	}
	raw = strings.TrimSpace(strings.ReplaceAll(raw, modelDodge, modelDodgeReplacement))

	// Step 5: extract, parse and render, falling back to text cleanup when
	// the model did not honor the JSON contract.
	response := &models.AnalyzeResponse{
		PlotData:   buildChartSeries(history),
		Disclaimer: Disclaimer,
	}

	report, rawJSON, err := ParseReport(ExtractJSON(raw))
	if err != nil {
		s.logger.Warn().Err(err).Str("ticker", ticker).Msg("Strict JSON parse failed, using fallback rendering")
		response.Result = RenderFallback(raw)
		return response, nil
	}

	response.Result = RenderReport(report)
	response.RawJSON = rawJSON

	s.logger.Info().
		Str("ticker", ticker).
		Int("bars", response.PlotData.Len()).
		Int("news_items", len(report.RecentNews)).
		Msg("Stock analysis generated")

	return response, nil
}

// BuildChartSeries fetches history and shapes it for charting, independent
// of any model call.
func (s *Service) BuildChartSeries(ctx context.Context, ticker string) (*models.ChartSeries, error) {
	ticker = strings.ToUpper(strings.TrimSpace(ticker))
	if ticker == "" {
		return nil, ErrInvalidTicker
	}

	history, err := s.fetchHistory(ctx, ticker)
	if err != nil {
		return nil, err
	}

	return buildChartSeries(history), nil
}

// FetchHistory exposes the raw bars for PNG rendering.
func (s *Service) FetchHistory(ctx context.Context, ticker string) ([]models.EODBar, error) {
	ticker = strings.ToUpper(strings.TrimSpace(ticker))
	if ticker == "" {
		return nil, ErrInvalidTicker
	}
	return s.fetchHistory(ctx, ticker)
}

func (s *Service) fetchHistory(ctx context.Context, ticker string) ([]models.EODBar, error) {
	to := time.Now()
	from := to.Add(-HistoryLookback)

	resp, err := s.eodhd.GetEOD(ctx, ticker,
		interfaces.WithDateRange(from, to),
		interfaces.WithPeriod("d"),
		interfaces.WithOrder("a"),
	)
	if err != nil {
		return nil, err
	}

	if len(resp.Data) == 0 {
		return nil, &NoDataError{Ticker: ticker}
	}

	return resp.Data, nil
}

// Ensure Service implements AnalysisService
var _ interfaces.AnalysisService = (*Service)(nil)
