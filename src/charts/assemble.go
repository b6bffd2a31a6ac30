// Package charts turns a derived statistics table into chart figures and renders them.
//
// Assemble walks a schema's grid and produces one Figure per cell, or nil when
// the cell's panel does not apply (wrong side, FEC off) or a required column is
// absent. RenderHTML writes every figure into one interactive page with linked
// time axes; RenderPNG draws a single figure as a static image.
package charts

import (
	"strings"

	"github.com/iafilius/SRTStatsPlot/src/derive"
	"github.com/iafilius/SRTStatsPlot/src/logging"
	"github.com/iafilius/SRTStatsPlot/src/schema"
	"github.com/iafilius/SRTStatsPlot/src/stats"
)

// Series is one plotted line of a figure.
type Series struct {
	Column string
	Name   string // legend label, or the column name when the line has no legend entry
	Legend bool
	Color  string
	X, Y   []float64
}

// Figure is a single chart panel ready to render.
type Figure struct {
	Key     string
	Tag     string // PNG export suffix, empty when the panel is not exported
	Title   string
	XLabel  string
	YLabel  string
	XFormat string
	YFormat string
	Series  []Series
}

// HasLegend reports whether any series has a legend entry.
func (f *Figure) HasLegend() bool {
	for _, s := range f.Series {
		if s.Legend {
			return true
		}
	}
	return false
}

// Layout is the arranged report. A nil cell is an absent figure.
type Layout struct {
	Title string
	Rows  [][]*Figure
}

// Figures returns the present figures in row order.
func (l *Layout) Figures() []*Figure {
	var out []*Figure
	for _, row := range l.Rows {
		for _, f := range row {
			if f != nil {
				out = append(out, f)
			}
		}
	}
	return out
}

// Figure returns the first present figure with the given key.
func (l *Layout) Figure(key string) *Figure {
	for _, f := range l.Figures() {
		if f.Key == key {
			return f
		}
	}
	return nil
}

// Options selects the panels of a sided schema.
type Options struct {
	Side schema.Side
	FEC  bool
}

// Assemble builds the report layout for a derived table.
func Assemble(t *stats.Table, s *schema.Schema, o Options) *Layout {
	l := &Layout{Title: s.Title}
	if l.Title == "" {
		l.Title = "SRT Stats Visualization"
	}
	if s.GroupBy != "" && t.Has(s.GroupBy) {
		for _, part := range derive.SplitSockets(t, s.GroupBy) {
			logging.Infof("%s socket %d (%s): %d rows", s.Name, part.ID, part.Label, part.Table.Len())
			l.Rows = append(l.Rows, gridRows(part.Table, s, o, part.Label)...)
		}
		return l
	}
	l.Rows = gridRows(t, s, o, "")
	return l
}

func gridRows(t *stats.Table, s *schema.Schema, o Options, label string) [][]*Figure {
	rows := make([][]*Figure, 0, len(s.Grid))
	for _, keys := range s.Grid {
		row := make([]*Figure, len(keys))
		for i, k := range keys {
			if k == "" {
				continue
			}
			p, ok := s.Panel(k, o.Side, o.FEC)
			if !ok {
				continue
			}
			row[i] = BuildFigure(t, s, p, label)
		}
		rows = append(rows, row)
	}
	return rows
}

// BuildFigure returns nil when a column the panel requires is absent.
// The label, when set, names the socket of a grouped file.
func BuildFigure(t *stats.Table, s *schema.Schema, p schema.Panel, label string) *Figure {
	for _, c := range p.RequiredColumns() {
		if !derive.HasColumn(t, c) {
			logging.Debugf("panel %s skipped: column %s absent", p.Key, c)
			return nil
		}
	}
	xs, ok := t.Values(s.XColumn)
	if !ok {
		return nil
	}
	f := &Figure{
		Key:     p.Key,
		Tag:     p.Tag,
		Title:   p.Title,
		XLabel:  s.XLabel,
		YLabel:  p.YLabel,
		XFormat: s.XFormat,
		YFormat: p.YFormat,
	}
	if label != "" {
		f.Title += " – " + label
		if f.Tag != "" {
			f.Tag += "-" + slug(label)
		}
	}
	for _, ln := range p.Lines {
		ys, ok := t.Values(ln.Column)
		if !ok {
			// Optional line of a panel gated by Requires.
			continue
		}
		sr := Series{Column: ln.Column, Name: ln.Legend, Legend: ln.Legend != "", Color: ln.Color, X: xs, Y: ys}
		if !sr.Legend {
			sr.Name = ln.Column
		}
		f.Series = append(f.Series, sr)
	}
	if len(f.Series) == 0 {
		return nil
	}
	return f
}

func slug(s string) string {
	return strings.ToLower(strings.ReplaceAll(strings.TrimSpace(s), " ", ""))
}
