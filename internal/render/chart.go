package render

import (
	"fmt"
	"io"

	"github.com/wcharczuk/go-chart/v2"
	"github.com/wcharczuk/go-chart/v2/drawing"
)

var chartColors = map[Status]drawing.Color{
	Success: {R: 95, G: 215, B: 175, A: 255},
	Partial: {R: 255, G: 175, B: 0, A: 255},
	Failure: {R: 255, G: 95, B: 135, A: 255},
	NoData:  {R: 200, G: 200, B: 200, A: 255},
}

const (
	barWidth   = 20
	barSpacing = 8
)

// Chart draws daily availability of a card as a PNG bar chart, one bar per
// day colored by status. Days without data get an empty bar.
func Chart(w io.Writer, c Card) error {
	if len(c.Cells) == 0 {
		return fmt.Errorf("chart %s: no days to draw", c.Key)
	}

	bars := make([]chart.Value, 0, len(c.Cells))
	for _, cell := range c.Cells {
		v := 0.0
		if cell.Average.Valid {
			v = cell.Average.Float64 * 100
		}
		col := chartColors[cell.Status]
		bars = append(bars, chart.Value{
			Value: v,
			Label: fmt.Sprintf("%02d-%02d", int(cell.Date.Month), cell.Date.Day),
			Style: chart.Style{
				FillColor:   col,
				StrokeColor: col,
				StrokeWidth: 1,
			},
		})
	}

	width := len(bars)*(barWidth+barSpacing) + 160
	if width < 600 {
		width = 600
	}

	graph := chart.BarChart{
		Title: fmt.Sprintf("Daily Availability - %s (%s)", c.Key, c.UpTime),
		TitleStyle: chart.Style{
			FontSize: 16,
		},
		Background: chart.Style{
			Padding: chart.Box{
				Top:    40,
				Left:   20,
				Right:  20,
				Bottom: 20,
			},
		},
		Width:      width,
		Height:     400,
		BarWidth:   barWidth,
		BarSpacing: barSpacing,
		XAxis: chart.Style{
			StrokeColor: drawing.ColorBlack,
			FontSize:    8,
		},
		YAxis: chart.YAxis{
			Name: "Uptime %",
			Style: chart.Style{
				StrokeColor: drawing.ColorBlack,
				FontSize:    10,
			},
			Range: &chart.ContinuousRange{
				Min: 0,
				Max: 100,
			},
			GridMajorStyle: chart.Style{
				StrokeColor: drawing.Color{R: 200, G: 200, B: 200, A: 255},
				StrokeWidth: 1.0,
			},
		},
		Bars: bars,
	}

	return graph.Render(chart.PNG, w)
}
