package charts

import (
	"fmt"
	"math"
	"strings"

	"github.com/wcharczuk/go-chart/v2"
	"github.com/wcharczuk/go-chart/v2/drawing"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

var printer = message.NewPrinter(language.English)

// FormatNumber renders v using a numeral-style pattern such as "0,0" or
// "0,0.00": a comma in the integer part enables digit grouping, the digits
// after the point set the precision. An empty pattern picks a precision
// from the magnitude.
func FormatNumber(v float64, pattern string) string {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return fmt.Sprint(v)
	}
	if pattern == "" {
		return formatTick(v)
	}
	decimals, grouping := parsePattern(pattern)
	verb := fmt.Sprintf("%%.%df", decimals)
	if grouping {
		return printer.Sprintf(verb, v)
	}
	return fmt.Sprintf(verb, v)
}

// parsePattern reads the precision and digit grouping of a numeral pattern.
func parsePattern(pattern string) (decimals int, grouping bool) {
	intPart, frac, _ := strings.Cut(pattern, ".")
	return strings.Count(frac, "0"), strings.Contains(intPart, ",")
}

func formatTick(v float64) string {
	if v == 0 {
		return "0"
	}
	av := math.Abs(v)
	switch {
	case av >= 100:
		return fmt.Sprintf("%.0f", v)
	case av >= 10:
		return fmt.Sprintf("%.1f", v)
	default:
		return fmt.Sprintf("%.2f", v)
	}
}

func valueFormatter(pattern string) chart.ValueFormatter {
	return func(v interface{}) string {
		if f, ok := v.(float64); ok {
			return FormatNumber(f, pattern)
		}
		return fmt.Sprint(v)
	}
}

// niceAxisBounds expands [min,max] by a small margin and rounds to "nice" numbers.
func niceAxisBounds(min, max float64) (float64, float64) {
	if math.IsNaN(min) || math.IsNaN(max) {
		return min, max
	}
	if max <= min {
		max = min + 1
	}
	span := max - min
	pad := span * 0.05
	a := min - pad
	b := max + pad
	mag := math.Pow(10, math.Floor(math.Log10(span)))
	if !math.IsInf(mag, 0) && mag > 0 {
		a = math.Floor(a/mag) * mag
		b = math.Ceil(b/mag) * mag
	}
	return a, b
}

// yBounds anchors non-negative data at zero, like the absolute charts of the
// interactive report.
func yBounds(min, max float64) (float64, float64) {
	if min >= 0 {
		if max <= 0 {
			max = 1
		}
		_, b := niceAxisBounds(0, max)
		return 0, b
	}
	return niceAxisBounds(min, max)
}

var namedColors = map[string]string{
	"black":  "#000000",
	"blue":   "#1f77b4",
	"green":  "#2ca02c",
	"grey":   "#808080",
	"gray":   "#808080",
	"orange": "#ff7f0e",
	"red":    "#d62728",
	"purple": "#9467bd",
	"brown":  "#8c564b",
	"cyan":   "#17becf",
}

// cssColor returns a color usable by both renderers; unknown names pass through.
func cssColor(name string) string {
	n := strings.ToLower(strings.TrimSpace(name))
	if n == "" {
		return namedColors["blue"]
	}
	if hex, ok := namedColors[n]; ok {
		return hex
	}
	return n
}

func drawingColor(name string) drawing.Color {
	c := cssColor(name)
	if strings.HasPrefix(c, "#") {
		return drawing.ColorFromHex(strings.TrimPrefix(c, "#"))
	}
	return chart.ColorBlue
}
