// Package chart draws the dashboard revenue trend as an ECharts HTML page.
package chart

import (
	"fmt"
	"html/template"
	"io"

	"github.com/go-echarts/go-echarts/v2/charts"
	"github.com/go-echarts/go-echarts/v2/opts"

	"github.com/salesdash/salesdash-backend/internal/dashboard/domain"
)

// Series names, matching the JSON fields of domain.TrendPoint.
const (
	SeriesAmount   = "amount"
	SeriesForecast = "forecast"
)

// EmptyMessage is shown instead of a chart when there is nothing to plot.
const EmptyMessage = "Gathering real-time analytics..."

// nullValue is how ECharts spells a missing data point.
const nullValue = "-"

const (
	amountColor       = "#3b82f6"
	forecastColor     = "#94a3b8"
	forecastFillColor = "#f1f5f9"
)

var emptyPage = template.Must(template.New("empty").Parse(`<!DOCTYPE html>
<html>
<head><meta charset="utf-8"><title>{{.Title}}</title></head>
<body>
<div style="display:flex;align-items:center;justify-content:center;height:{{.Height}};color:#64748b;font-family:sans-serif">
{{.Message}}
</div>
</body>
</html>
`))

// Renderer turns a stitched trend into an HTML page
type Renderer struct {
	title  string
	height string
}

// NewRenderer creates a renderer with the page title and chart height (CSS units).
func NewRenderer(title, height string) *Renderer {
	return &Renderer{title: title, height: height}
}

// Render writes the chart page for points to w. The stats summary goes in the
// subtitle. An empty trend renders the placeholder page.
func (r *Renderer) Render(w io.Writer, points []domain.TrendPoint, stats domain.Stats) error {
	if len(points) == 0 {
		return emptyPage.Execute(w, struct {
			Title, Height, Message string
		}{r.title, r.height, EmptyMessage})
	}

	dates, amounts, forecasts := SeriesFromPoints(points)

	line := charts.NewLine()
	line.SetGlobalOptions(
		charts.WithInitializationOpts(opts.Initialization{
			PageTitle: r.title,
			Width:     "100%",
			Height:    r.height,
		}),
		charts.WithTitleOpts(opts.Title{
			Title:    r.title,
			Subtitle: Subtitle(stats),
		}),
		charts.WithTooltipOpts(opts.Tooltip{Trigger: "axis"}),
		charts.WithLegendOpts(opts.Legend{Show: opts.Bool(true)}),
	)

	line.SetXAxis(dates).
		AddSeries(SeriesAmount, amounts,
			charts.WithLineChartOpts(opts.LineChart{
				Smooth:       opts.Bool(true),
				ConnectNulls: opts.Bool(true),
			}),
			charts.WithLineStyleOpts(opts.LineStyle{Color: amountColor, Width: 3}),
			charts.WithItemStyleOpts(opts.ItemStyle{Color: amountColor}),
			charts.WithAreaStyleOpts(opts.AreaStyle{Color: amountColor, Opacity: opts.Float(0.1)}),
		).
		AddSeries(SeriesForecast, forecasts,
			charts.WithLineChartOpts(opts.LineChart{
				Smooth:       opts.Bool(true),
				ConnectNulls: opts.Bool(true),
			}),
			charts.WithLineStyleOpts(opts.LineStyle{Color: forecastColor, Width: 2, Type: "dashed"}),
			charts.WithItemStyleOpts(opts.ItemStyle{Color: forecastColor}),
			charts.WithAreaStyleOpts(opts.AreaStyle{Color: forecastFillColor, Opacity: opts.Float(0.4)}),
		)

	return line.Render(w)
}

// SeriesFromPoints splits a stitched trend into x-axis labels and the two
// value columns. Absent values become the ECharts null marker so both columns
// stay aligned with the labels.
func SeriesFromPoints(points []domain.TrendPoint) (dates []string, amounts, forecasts []opts.LineData) {
	dates = make([]string, 0, len(points))
	amounts = make([]opts.LineData, 0, len(points))
	forecasts = make([]opts.LineData, 0, len(points))

	for _, p := range points {
		dates = append(dates, p.Date)
		amounts = append(amounts, lineValue(p.Amount))
		forecasts = append(forecasts, lineValue(p.Forecast))
	}
	return dates, amounts, forecasts
}

// Subtitle formats the summary cards as a single line.
func Subtitle(s domain.Stats) string {
	return fmt.Sprintf("Total Revenue $%.2f | Total Orders %d | Avg Order Value $%.2f",
		s.TotalRevenue, s.TotalOrders, s.AvgOrderValue)
}

func lineValue(v *float64) opts.LineData {
	if v == nil {
		return opts.LineData{Value: nullValue}
	}
	return opts.LineData{Value: *v}
}
