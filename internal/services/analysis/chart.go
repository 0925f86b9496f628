package analysis

import (
	"bytes"
	"fmt"
	"time"

	"github.com/wcharczuk/go-chart/v2"
	"github.com/wcharczuk/go-chart/v2/drawing"

	"github.com/stockbrief/stockbrief/internal/models"
)

// buildChartSeries converts EOD bars into the six parallel sequences the
// front-end chart consumes. All slices share one length; dates are ISO
// formatted.
func buildChartSeries(bars []models.EODBar) *models.ChartSeries {
	series := &models.ChartSeries{
		Dates:  make([]string, len(bars)),
		Open:   make([]float64, len(bars)),
		High:   make([]float64, len(bars)),
		Low:    make([]float64, len(bars)),
		Close:  make([]float64, len(bars)),
		Volume: make([]int64, len(bars)),
	}

	for i, bar := range bars {
		series.Dates[i] = bar.Date.Format("2006-01-02")
		series.Open[i] = bar.Open
		series.High[i] = bar.High
		series.Low[i] = bar.Low
		series.Close[i] = bar.Close
		series.Volume[i] = bar.Volume
	}

	return series
}

// RenderPriceChart renders a PNG line chart of closing prices from EOD bars.
// Returns raw PNG bytes.
func RenderPriceChart(ticker string, bars []models.EODBar) ([]byte, error) {
	if len(bars) < 2 {
		return nil, fmt.Errorf("need at least 2 data points, got %d", len(bars))
	}

	xValues := make([]time.Time, len(bars))
	closeY := make([]float64, len(bars))

	for i, bar := range bars {
		xValues[i] = bar.Date
		closeY[i] = bar.Close
	}

	closeSeries := chart.TimeSeries{
		Name: "Close",
		Style: chart.Style{
			StrokeColor: drawing.ColorFromHex("2563eb"), // blue-600
			StrokeWidth: 2.5,
		},
		XValues: xValues,
		YValues: closeY,
	}

	graph := chart.Chart{
		Title:  fmt.Sprintf("%s - 3 Month Close", ticker),
		Width:  900,
		Height: 400,
		Background: chart.Style{
			Padding: chart.Box{Top: 40, Left: 10, Right: 20, Bottom: 10},
		},
		XAxis: chart.XAxis{
			TickPosition: chart.TickPositionBetweenTicks,
			ValueFormatter: func(v interface{}) string {
				if t, ok := v.(float64); ok {
					return chart.TimeFromFloat64(t).Format("Jan 02")
				}
				return ""
			},
		},
		YAxis: chart.YAxis{
			ValueFormatter: func(v interface{}) string {
				if f, ok := v.(float64); ok {
					return fmt.Sprintf("$%.2f", f)
				}
				return ""
			},
		},
		Series: []chart.Series{
			closeSeries,
		},
	}

	var buf bytes.Buffer
	if err := graph.Render(chart.PNG, &buf); err != nil {
		return nil, fmt.Errorf("render chart: %w", err)
	}

	return buf.Bytes(), nil
}
