package server

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/stockbrief/stockbrief/internal/common"
	"github.com/stockbrief/stockbrief/internal/interfaces"
	"github.com/stockbrief/stockbrief/internal/models"
	"github.com/stockbrief/stockbrief/internal/services/analysis"
)

type mockAnalysisService struct {
	analyze          func(ctx context.Context, ticker string) (*models.AnalyzeResponse, error)
	buildChartSeries func(ctx context.Context, ticker string) (*models.ChartSeries, error)
	fetchHistory     func(ctx context.Context, ticker string) ([]models.EODBar, error)
}

func (m *mockAnalysisService) Analyze(ctx context.Context, ticker string) (*models.AnalyzeResponse, error) {
	return m.analyze(ctx, ticker)
}

func (m *mockAnalysisService) BuildChartSeries(ctx context.Context, ticker string) (*models.ChartSeries, error) {
	return m.buildChartSeries(ctx, ticker)
}

func (m *mockAnalysisService) FetchHistory(ctx context.Context, ticker string) ([]models.EODBar, error) {
	if m.fetchHistory == nil {
		return nil, &analysis.NoDataError{Ticker: ticker}
	}
	return m.fetchHistory(ctx, ticker)
}

func newTestServer(svc interfaces.AnalysisService) *Server {
	config := common.NewDefaultConfig()
	return NewServer(config, svc, common.NewSilentLogger())
}

func postAnalyze(t *testing.T, handler http.Handler, ticker string) *httptest.ResponseRecorder {
	t.Helper()
	form := url.Values{}
	form.Set("ticker", ticker)

	req := httptest.NewRequest(http.MethodPost, "/api/analyze", strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	return rec
}

func TestHandleAnalyze_Success(t *testing.T) {
	svc := &mockAnalysisService{
		analyze: func(ctx context.Context, ticker string) (*models.AnalyzeResponse, error) {
			assert.Equal(t, "AAPL", ticker)
			return &models.AnalyzeResponse{
				Result:     "<div>report</div>",
				RawJSON:    map[string]interface{}{"Company Overview": map[string]interface{}{}},
				PlotData:   &models.ChartSeries{Dates: []string{"2025-08-29"}, Open: []float64{1}, High: []float64{1}, Low: []float64{1}, Close: []float64{1}, Volume: []int64{1}},
				Disclaimer: analysis.Disclaimer,
			}, nil
		},
	}

	rec := postAnalyze(t, newTestServer(svc).Handler(), "AAPL")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))

	var resp models.AnalyzeResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, "<div>report</div>", resp.Result)
	assert.NotNil(t, resp.RawJSON)
	assert.Equal(t, 1, resp.PlotData.Len())
	assert.Equal(t, analysis.Disclaimer, resp.Disclaimer)
}

func TestHandleAnalyze_FallbackResponseOmitsRawJSON(t *testing.T) {
	svc := &mockAnalysisService{
		analyze: func(ctx context.Context, ticker string) (*models.AnalyzeResponse, error) {
			return &models.AnalyzeResponse{
				Result:     "<h2>Report</h2>",
				PlotData:   &models.ChartSeries{},
				Disclaimer: analysis.Disclaimer,
			}, nil
		},
	}

	rec := postAnalyze(t, newTestServer(svc).Handler(), "AAPL")
	require.Equal(t, http.StatusOK, rec.Code)

	var payload map[string]interface{}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &payload))
	_, hasRaw := payload["raw_json"]
	assert.False(t, hasRaw, "raw_json must be omitted when the parse failed")
	assert.Contains(t, payload, "plot_data")
	assert.Contains(t, payload, "disclaimer")
}

func TestHandleAnalyze_InvalidTicker(t *testing.T) {
	svc := &mockAnalysisService{
		analyze: func(ctx context.Context, ticker string) (*models.AnalyzeResponse, error) {
			return nil, analysis.ErrInvalidTicker
		},
	}

	rec := postAnalyze(t, newTestServer(svc).Handler(), "")
	require.Equal(t, http.StatusBadRequest, rec.Code)

	var resp ErrorResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, "Please enter a valid stock ticker.", resp.Error)
}

func TestHandleAnalyze_NoData(t *testing.T) {
	svc := &mockAnalysisService{
		analyze: func(ctx context.Context, ticker string) (*models.AnalyzeResponse, error) {
			return nil, &analysis.NoDataError{Ticker: "ZZZZINVALID"}
		},
	}

	rec := postAnalyze(t, newTestServer(svc).Handler(), "ZZZZINVALID")
	require.Equal(t, http.StatusNotFound, rec.Code)

	var resp ErrorResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, "No stock data found for ZZZZINVALID.", resp.Error)
}

func TestHandleAnalyze_UpstreamError(t *testing.T) {
	svc := &mockAnalysisService{
		analyze: func(ctx context.Context, ticker string) (*models.AnalyzeResponse, error) {
			return nil, errors.New("model quota exceeded")
		},
	}

	rec := postAnalyze(t, newTestServer(svc).Handler(), "AAPL")
	require.Equal(t, http.StatusInternalServerError, rec.Code)

	var resp ErrorResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, "Error processing request: model quota exceeded", resp.Error)
}

func TestHandleAnalyze_MethodNotAllowed(t *testing.T) {
	svc := &mockAnalysisService{}
	req := httptest.NewRequest(http.MethodGet, "/api/analyze", nil)
	rec := httptest.NewRecorder()
	newTestServer(svc).Handler().ServeHTTP(rec, req)

	assert.Equal(t, http.StatusMethodNotAllowed, rec.Code)
	assert.Equal(t, "POST", rec.Header().Get("Allow"))
}

func TestHandleHealth(t *testing.T) {
	svc := &mockAnalysisService{}
	req := httptest.NewRequest(http.MethodGet, "/api/health", nil)
	rec := httptest.NewRecorder()
	newTestServer(svc).Handler().ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"status":"ok"}`, rec.Body.String())
}

func TestHandleVersion(t *testing.T) {
	svc := &mockAnalysisService{}
	req := httptest.NewRequest(http.MethodGet, "/api/version", nil)
	rec := httptest.NewRecorder()
	newTestServer(svc).Handler().ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)

	var resp map[string]string
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Contains(t, resp, "version")
	assert.Contains(t, resp, "build")
	assert.Contains(t, resp, "commit")
}

func TestCorrelationIDHeader(t *testing.T) {
	svc := &mockAnalysisService{}
	handler := newTestServer(svc).Handler()

	req := httptest.NewRequest(http.MethodGet, "/api/health", nil)
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	assert.NotEmpty(t, rec.Header().Get("X-Correlation-ID"))

	req = httptest.NewRequest(http.MethodGet, "/api/health", nil)
	req.Header.Set("X-Request-ID", "abc123")
	rec = httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	assert.Equal(t, "abc123", rec.Header().Get("X-Correlation-ID"))
}

func TestCORSPreflight(t *testing.T) {
	svc := &mockAnalysisService{}
	req := httptest.NewRequest(http.MethodOptions, "/api/analyze", nil)
	rec := httptest.NewRecorder()
	newTestServer(svc).Handler().ServeHTTP(rec, req)

	assert.Equal(t, http.StatusNoContent, rec.Code)
	assert.Equal(t, "*", rec.Header().Get("Access-Control-Allow-Origin"))
}

func TestRecoveryMiddleware(t *testing.T) {
	svc := &mockAnalysisService{
		analyze: func(ctx context.Context, ticker string) (*models.AnalyzeResponse, error) {
			panic("boom")
		},
	}

	rec := postAnalyze(t, newTestServer(svc).Handler(), "AAPL")
	require.Equal(t, http.StatusInternalServerError, rec.Code)

	var resp ErrorResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, "Internal server error", resp.Error)
}

type mockQuote struct{}

func (mockQuote) GetSnapshot(ctx context.Context, ticker string) (*models.MarketSnapshot, error) {
	price := 100.0
	return &models.MarketSnapshot{Ticker: ticker, CurrentPrice: &price}, nil
}

type mockEODHD struct {
	bars []models.EODBar
}

func (m mockEODHD) GetEOD(ctx context.Context, ticker string, opts ...interfaces.EODOption) (*models.EODResponse, error) {
	return &models.EODResponse{Data: m.bars}, nil
}

func (mockEODHD) GetNews(ctx context.Context, ticker string, limit int) ([]*models.NewsItem, error) {
	return nil, nil
}

type mockGenAI struct{}

func (mockGenAI) GenerateContent(ctx context.Context, prompt string) (string, error) {
	return "{}", nil
}

func TestHandleChartPNG(t *testing.T) {
	bars := make([]models.EODBar, 10)
	for i := range bars {
		bars[i] = models.EODBar{
			Date:  timeForDay(i),
			Close: 100 + float64(i),
		}
	}

	svc := analysis.NewService(mockQuote{}, mockEODHD{bars: bars}, mockGenAI{}, common.NewSilentLogger())
	handler := newTestServer(svc).Handler()

	req := httptest.NewRequest(http.MethodGet, "/api/analyze/AAPL/chart.png", nil)
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "image/png", rec.Header().Get("Content-Type"))
	require.True(t, rec.Body.Len() > 4)
	assert.Equal(t, []byte{0x89, 'P', 'N', 'G'}, rec.Body.Bytes()[:4])
}

func TestHandleChartPNG_NoData(t *testing.T) {
	svc := analysis.NewService(mockQuote{}, mockEODHD{}, mockGenAI{}, common.NewSilentLogger())
	handler := newTestServer(svc).Handler()

	req := httptest.NewRequest(http.MethodGet, "/api/analyze/ZZZZINVALID/chart.png", nil)
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	require.Equal(t, http.StatusNotFound, rec.Code)

	var resp ErrorResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, "No stock data found for ZZZZINVALID.", resp.Error)
}
