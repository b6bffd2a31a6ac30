package charts

import (
	"bytes"
	"errors"
	"fmt"
	"image"
	"image/color"
	"image/draw"
	"image/png"
	"io"
	"math"
	"os"
	"path/filepath"
	"strings"

	"github.com/wcharczuk/go-chart/v2"
	"golang.org/x/image/font"
	"golang.org/x/image/font/basicfont"
	"golang.org/x/image/math/fixed"

	"github.com/iafilius/SRTStatsPlot/src/logging"
)

// ErrNoData is returned when a figure has no finite point to draw.
var ErrNoData = errors.New("no data to plot")

// PNGOptions controls static image export.
type PNGOptions struct {
	Width   int
	Height  int
	Caption string // drawn at the bottom-left when set
}

func (o PNGOptions) size() (int, int) {
	w, h := o.Width, o.Height
	if w <= 0 {
		w = DefaultWidth
	}
	if h <= 0 {
		h = DefaultHeight
	}
	return w, h
}

// RenderPNG draws one figure as a PNG image.
func RenderPNG(w io.Writer, f *Figure, o PNGOptions) error {
	if f == nil {
		return ErrNoData
	}
	minY, maxY := math.MaxFloat64, -math.MaxFloat64
	minX, maxX := math.MaxFloat64, -math.MaxFloat64
	var series []chart.Series
	for _, s := range f.Series {
		xs, ys := finitePoints(s.X, s.Y)
		if len(xs) == 0 {
			continue
		}
		for i := range xs {
			minX, maxX = math.Min(minX, xs[i]), math.Max(maxX, xs[i])
			minY, maxY = math.Min(minY, ys[i]), math.Max(maxY, ys[i])
		}
		st := chart.Style{StrokeColor: drawingColor(s.Color), StrokeWidth: 1.5}
		if len(xs) == 1 {
			// A lone sample still gets a visible segment.
			xs = append(xs, xs[0]+1)
			ys = append(ys, ys[0])
			st.DotWidth = 4
			st.DotColor = st.StrokeColor
		}
		name := ""
		if s.Legend {
			name = s.Name
		}
		series = append(series, chart.ContinuousSeries{Name: name, XValues: xs, YValues: ys, Style: st})
	}
	if len(series) == 0 {
		return fmt.Errorf("%s: %w", f.Key, ErrNoData)
	}
	if maxX <= minX {
		maxX = minX + 1
	}
	nMin, nMax := yBounds(minY, maxY)
	padBottom := 28
	if o.Caption != "" {
		padBottom += 18
	}
	width, height := o.size()
	ch := chart.Chart{
		Title:      f.Title,
		Width:      width,
		Height:     height,
		Background: chart.Style{Padding: chart.Box{Top: 40, Left: 16, Right: 12, Bottom: padBottom}},
		XAxis: chart.XAxis{
			Name:           f.XLabel,
			ValueFormatter: valueFormatter(f.XFormat),
			Range:          &chart.ContinuousRange{Min: minX, Max: maxX},
		},
		YAxis: chart.YAxis{
			Name:           f.YLabel,
			ValueFormatter: valueFormatter(f.YFormat),
			Range:          &chart.ContinuousRange{Min: nMin, Max: nMax},
		},
		Series: series,
	}
	if f.HasLegend() {
		ch.Elements = []chart.Renderable{chart.Legend(&ch)}
	}
	var buf bytes.Buffer
	if err := ch.Render(chart.PNG, &buf); err != nil {
		return fmt.Errorf("render %s: %w", f.Key, err)
	}
	if o.Caption == "" {
		_, err := buf.WriteTo(w)
		return err
	}
	img, err := png.Decode(&buf)
	if err != nil {
		return fmt.Errorf("decode %s: %w", f.Key, err)
	}
	return png.Encode(w, drawCaption(img, o.Caption))
}

// finitePoints drops samples where either coordinate is missing.
func finitePoints(x, y []float64) ([]float64, []float64) {
	n := len(x)
	if len(y) < n {
		n = len(y)
	}
	xs := make([]float64, 0, n)
	ys := make([]float64, 0, n)
	for i := 0; i < n; i++ {
		if math.IsNaN(x[i]) || math.IsNaN(y[i]) || math.IsInf(x[i], 0) || math.IsInf(y[i], 0) {
			continue
		}
		xs = append(xs, x[i])
		ys = append(ys, y[i])
	}
	return xs, ys
}

// drawCaption draws a small caption onto the image near the bottom-left.
func drawCaption(img image.Image, text string) image.Image {
	if img == nil || strings.TrimSpace(text) == "" {
		return img
	}
	b := img.Bounds()
	rgba := image.NewRGBA(b)
	draw.Draw(rgba, b, img, b.Min, draw.Src)
	face := basicfont.Face7x13
	dr := &font.Drawer{
		Dst:  rgba,
		Src:  image.NewUniform(color.RGBA{R: 80, G: 80, B: 80, A: 255}),
		Face: face,
		Dot:  fixed.Point26_6{X: fixed.I(b.Min.X + 8), Y: fixed.I(b.Max.Y - 6)},
	}
	dr.DrawString(text)
	return rgba
}

// ExportPNGs writes every tagged figure of the layout to dir as
// <stem>-<tag>.png and returns the written paths. Figures without a tag are
// not exported.
func ExportPNGs(l *Layout, dir, stem string, o PNGOptions) ([]string, error) {
	var written []string
	for _, f := range l.Figures() {
		if f.Tag == "" {
			continue
		}
		path := filepath.Join(dir, stem+"-"+f.Tag+".png")
		if err := writePNG(path, f, o); err != nil {
			if errors.Is(err, ErrNoData) {
				logging.Warnf("skip %s: %v", path, err)
				continue
			}
			return written, err
		}
		logging.Debugf("wrote %s", path)
		written = append(written, path)
	}
	return written, nil
}

func writePNG(path string, f *Figure, o PNGOptions) error {
	var buf bytes.Buffer
	if err := RenderPNG(&buf, f, o); err != nil {
		return err
	}
	return os.WriteFile(path, buf.Bytes(), 0o644)
}
