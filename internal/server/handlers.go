package server

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/stockbrief/stockbrief/internal/services/analysis"
)

// handleAnalyze handles POST /api/analyze. The ticker arrives as form input;
// the response carries the rendered report, the parsed JSON when the model
// honored the contract, the chart series, and the disclaimer. Failures map
// to a single error message.
func (s *Server) handleAnalyze(w http.ResponseWriter, r *http.Request) {
	if !RequireMethod(w, r, http.MethodPost) {
		return
	}

	ticker := r.FormValue("ticker")

	response, err := s.analysis.Analyze(r.Context(), ticker)
	if err != nil {
		s.writeAnalysisError(w, err)
		return
	}

	WriteJSON(w, http.StatusOK, response)
}

// handleChartPNG handles GET /api/analyze/{ticker}/chart.png.
func (s *Server) handleChartPNG(w http.ResponseWriter, r *http.Request) {
	if !RequireMethod(w, r, http.MethodGet) {
		return
	}

	ticker := PathParam(r, "/api/analyze/", "/chart.png")

	bars, err := s.analysis.FetchHistory(r.Context(), ticker)
	if err != nil {
		s.writeAnalysisError(w, err)
		return
	}

	png, err := analysis.RenderPriceChart(ticker, bars)
	if err != nil {
		s.writeAnalysisError(w, err)
		return
	}

	w.Header().Set("Content-Type", "image/png")
	w.WriteHeader(http.StatusOK)
	w.Write(png)
}

// writeAnalysisError maps pipeline errors to the user-facing payload. Parse
// failures never reach here; they are recovered inside the service. Anything
// outside the known taxonomy collapses to a generic message carrying the
// underlying cause.
func (s *Server) writeAnalysisError(w http.ResponseWriter, err error) {
	var noData *analysis.NoDataError

	switch {
	case errors.Is(err, analysis.ErrInvalidTicker):
		WriteError(w, http.StatusBadRequest, "Please enter a valid stock ticker.")
	case errors.As(err, &noData):
		WriteError(w, http.StatusNotFound, fmt.Sprintf("No stock data found for %s.", noData.Ticker))
	default:
		s.logger.Error().Err(err).Msg("Analysis request failed")
		WriteError(w, http.StatusInternalServerError, fmt.Sprintf("Error processing request: %s", err))
	}
}
