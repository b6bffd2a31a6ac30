package charts

import (
	"fmt"
	"io"
	"math"

	"github.com/go-echarts/go-echarts/v2/charts"
	"github.com/go-echarts/go-echarts/v2/components"
	"github.com/go-echarts/go-echarts/v2/opts"

	"github.com/iafilius/SRTStatsPlot/src/logging"
)

// Default figure size in pixels.
const (
	DefaultWidth  = 700
	DefaultHeight = 300
)

// connectGroup links zoom and pan of every figure on a page.
const connectGroup = "srtstats"

// HTMLOptions controls the interactive report.
type HTMLOptions struct {
	Width      int
	Height     int
	AssetsHost string // overrides the echarts script location, e.g. for offline use
}

// xRange is the x extent shared by every figure of a page.
type xRange struct {
	min, max float64
	ok       bool
}

// layoutXRange spans the finite x values of all present figures. Grouped
// sockets cover different time spans, so each axis is pinned to this range
// and a linked zoom selects the same time window everywhere.
func layoutXRange(l *Layout) xRange {
	r := xRange{min: math.Inf(1), max: math.Inf(-1)}
	for _, f := range l.Figures() {
		for _, s := range f.Series {
			for _, x := range s.X {
				if math.IsNaN(x) || math.IsInf(x, 0) {
					continue
				}
				r.min, r.max = math.Min(r.min, x), math.Max(r.max, x)
				r.ok = true
			}
		}
	}
	return r
}

// RenderHTML writes the layout as one self-contained interactive page. All
// figures share a linked x-range: zooming one zooms the others.
func RenderHTML(w io.Writer, l *Layout, o HTMLOptions) error {
	width, height := o.Width, o.Height
	if width <= 0 {
		width = DefaultWidth
	}
	if height <= 0 {
		height = DefaultHeight
	}
	xr := layoutXRange(l)
	var list []components.Charter
	var lines []*charts.Line
	for r, row := range l.Rows {
		for c, f := range row {
			if f == nil {
				continue
			}
			id := fmt.Sprintf("panel_%d_%d", r, c)
			line := lineChart(f, id, width, height, o.AssetsHost, xr)
			line.AddJSFuncs(fmt.Sprintf("goecharts_%s.group = %q;", id, connectGroup))
			lines = append(lines, line)
			list = append(list, line)
		}
	}
	if len(lines) == 0 {
		return fmt.Errorf("%s: %w", l.Title, ErrNoData)
	}
	lines[len(lines)-1].AddJSFuncs(fmt.Sprintf("echarts.connect(%q);", connectGroup))
	logging.Debugf("rendering %d figures", len(lines))

	page := components.NewPage()
	page.SetPageTitle(l.Title)
	if o.AssetsHost != "" {
		page.SetAssetsHost(o.AssetsHost)
	}
	page.SetLayout(components.PageFlexLayout)
	page.AddCharts(list...)
	return page.Render(w)
}

func lineChart(f *Figure, id string, width, height int, assetsHost string, xr xRange) *charts.Line {
	line := charts.NewLine()
	xAxis := opts.XAxis{Name: f.XLabel, Type: "value", AxisLabel: axisLabel(f.XFormat)}
	if xr.ok {
		xAxis.Min, xAxis.Max = xr.min, xr.max
	}
	var legend []string
	for _, s := range f.Series {
		if s.Legend {
			legend = append(legend, s.Name)
		}
	}
	line.SetGlobalOptions(
		charts.WithInitializationOpts(opts.Initialization{
			PageTitle:  f.Title,
			Width:      fmt.Sprintf("%dpx", width),
			Height:     fmt.Sprintf("%dpx", height),
			ChartID:    id,
			AssetsHost: assetsHost,
		}),
		charts.WithTitleOpts(opts.Title{Title: f.Title}),
		charts.WithTooltipOpts(opts.Tooltip{Show: opts.Bool(true), Trigger: "axis"}),
		charts.WithLegendOpts(opts.Legend{Show: opts.Bool(len(legend) > 0), Data: legend}),
		charts.WithXAxisOpts(xAxis),
		charts.WithYAxisOpts(opts.YAxis{Name: f.YLabel, Type: "value", AxisLabel: axisLabel(f.YFormat)}),
		charts.WithDataZoomOpts(
			opts.DataZoom{Type: "inside", XAxisIndex: []int{0}},
			opts.DataZoom{Type: "slider", XAxisIndex: []int{0}},
		),
		charts.WithToolboxOpts(opts.Toolbox{
			Show: opts.Bool(true),
			Feature: &opts.ToolBoxFeature{
				SaveAsImage: &opts.ToolBoxFeatureSaveAsImage{Show: opts.Bool(true)},
				DataZoom:    &opts.ToolBoxFeatureDataZoom{Show: opts.Bool(true)},
				Restore:     &opts.ToolBoxFeatureRestore{Show: opts.Bool(true)},
			},
		}),
	)
	for _, s := range f.Series {
		color := cssColor(s.Color)
		line.AddSeries(s.Name, lineData(s.X, s.Y),
			charts.WithLineChartOpts(opts.LineChart{ShowSymbol: opts.Bool(false)}),
			charts.WithLineStyleOpts(opts.LineStyle{Color: color, Width: 1}),
			charts.WithItemStyleOpts(opts.ItemStyle{Color: color}),
		)
	}
	return line
}

// axisLabel formats tick labels in the browser with the figure's number
// pattern. An empty pattern keeps the echarts default.
func axisLabel(pattern string) *opts.AxisLabel {
	if pattern == "" {
		return nil
	}
	decimals, grouping := parsePattern(pattern)
	return &opts.AxisLabel{
		Show: opts.Bool(true),
		Formatter: opts.FuncOpts(fmt.Sprintf(
			"function (value) { return Number(value).toLocaleString('en-US', "+
				"{minimumFractionDigits: %d, maximumFractionDigits: %d, useGrouping: %t}); }",
			decimals, decimals, grouping)),
	}
}

// lineData pairs x and y; a missing y becomes a gap.
func lineData(x, y []float64) []opts.LineData {
	out := make([]opts.LineData, 0, len(x))
	for i := range x {
		if i >= len(y) || math.IsNaN(x[i]) {
			continue
		}
		var v interface{} = y[i]
		if math.IsNaN(y[i]) || math.IsInf(y[i], 0) {
			v = "-"
		}
		out = append(out, opts.LineData{Value: []interface{}{x[i], v}})
	}
	return out
}
