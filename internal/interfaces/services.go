package interfaces

import (
	"context"

	"github.com/stockbrief/stockbrief/internal/models"
)

// AnalysisService runs the full analyze pipeline for a ticker
type AnalysisService interface {
	// Analyze fetches market data, prompts the model, and renders the report
	Analyze(ctx context.Context, ticker string) (*models.AnalyzeResponse, error)

	// BuildChartSeries fetches history and shapes it for charting
	BuildChartSeries(ctx context.Context, ticker string) (*models.ChartSeries, error)

	// FetchHistory returns the raw EOD bars for a ticker
	FetchHistory(ctx context.Context, ticker string) ([]models.EODBar, error)
}
