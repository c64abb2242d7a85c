package render

import (
	"bytes"
	"fmt"
	"time"

	"github.com/wcharczuk/go-chart/v2"
	"github.com/wcharczuk/go-chart/v2/drawing"

	"github.com/quantfold/vantage/internal/models"
)

// RenderPriceChart renders a PNG line chart of closing prices over the
// analysis window. Returns raw PNG bytes.
func RenderPriceChart(ticker string, bars []models.PriceBar) ([]byte, error) {
	if len(bars) < 2 {
		return nil, fmt.Errorf("need at least 2 price bars, got %d", len(bars))
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
			StrokeWidth: 2.0,
		},
		XValues: xValues,
		YValues: closeY,
	}

	graph := chart.Chart{
		Title:  fmt.Sprintf("%s Closing Price", ticker),
		Width:  900,
		Height: 360,
		Background: chart.Style{
			Padding: chart.Box{Top: 40, Left: 10, Right: 20, Bottom: 10},
		},
		XAxis: chart.XAxis{
			TickPosition: chart.TickPositionBetweenTicks,
			ValueFormatter: func(v interface{}) string {
				if t, ok := v.(float64); ok {
					return chart.TimeFromFloat64(t).Format("02 Jan")
				}
				return ""
			},
		},
		YAxis: chart.YAxis{
			ValueFormatter: func(v interface{}) string {
				if f, ok := v.(float64); ok {
					return fmt.Sprintf("%.2f", f)
				}
				return ""
			},
		},
		Series: []chart.Series{closeSeries},
	}

	var buf bytes.Buffer
	if err := graph.Render(chart.PNG, &buf); err != nil {
		return nil, fmt.Errorf("chart render failed: %w", err)
	}

	return buf.Bytes(), nil
}
