package derive

import (
	"fmt"
	"math"
	"strings"
	"time"

	"github.com/iafilius/SRTStatsPlot/src/logging"
	"github.com/iafilius/SRTStatsPlot/src/schema"
	"github.com/iafilius/SRTStatsPlot/src/stats"
)

// timepointLayouts are tried in order for the Timepoint column.
var timepointLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05.999999999Z0700",
	"2006-01-02T15:04:05.999999999",
	"2006-01-02 15:04:05.999999999Z07:00",
	"2006-01-02 15:04:05.999999999Z0700",
	"2006-01-02 15:04:05.999999999",
	"15:04:05.999999999",
}

// ParseTimepoint parses one harness timestamp.
func ParseTimepoint(s string) (time.Time, error) {
	s = strings.TrimSpace(s)
	for _, l := range timepointLayouts {
		if t, err := time.Parse(l, s); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("unrecognized timestamp %q", s)
}

// Validate checks every required raw column of the schema up front.
func Validate(t *stats.Table, s *schema.Schema) error {
	for _, c := range s.Required {
		if !t.Has(c) {
			return &SchemaError{Schema: s.Name, Column: c}
		}
	}
	return nil
}

// Apply augments the table in place with the schema's derived columns.
// Missing required columns fail with a *SchemaError; optional derivations
// whose source column is absent are skipped.
func Apply(t *stats.Table, s *schema.Schema) error {
	defer logging.TimeTrack(time.Now(), "derive "+s.Name)
	if err := Validate(t, s); err != nil {
		return err
	}
	if s.Timepoint != "" {
		if err := elapsedSeconds(t, s.Timepoint, s.XColumn); err != nil {
			return fmt.Errorf("schema %s: %w", s.Name, err)
		}
	}
	if !t.Has(s.XColumn) {
		return &SchemaError{Schema: s.Name, Column: s.XColumn}
	}
	checkOrdered(t, s.XColumn)
	for _, c := range s.Conversions {
		if c.Optional && !t.Has(c.Raw) {
			logging.Debugf("optional column %s absent; %s not derived", c.Raw, c.Column)
			continue
		}
		if err := ConvertUnits(t, c.Raw, c.Column, c.Divisor); err != nil {
			return withSchema(err, s.Name)
		}
	}
	for _, in := range s.Instants {
		if in.Optional && !t.Has(in.Cumulative) {
			logging.Debugf("optional column %s absent; %s not derived", in.Cumulative, in.Column)
			continue
		}
		if err := ToInstantaneous(t, in.Cumulative, in.Column, in.Integer); err != nil {
			return withSchema(err, s.Name)
		}
	}
	return nil
}

func withSchema(err error, name string) error {
	if se, ok := err.(*SchemaError); ok && se.Schema == "" {
		return &SchemaError{Schema: name, Column: se.Column}
	}
	return err
}

// elapsedSeconds derives col as seconds since the first row of the timestamp column.
// A numeric timestamp column is taken as seconds already.
func elapsedSeconds(t *stats.Table, tpCol, col string) error {
	raw, ok := t.Raw(tpCol)
	if !ok {
		vals, _ := t.Values(tpCol)
		out := make([]float64, len(vals))
		for i, v := range vals {
			out[i] = v - vals[0]
		}
		return t.AddColumn(col, out, false)
	}
	out := make([]float64, len(raw))
	var origin time.Time
	for i, s := range raw {
		if s == "" {
			out[i] = math.NaN()
			continue
		}
		tp, err := ParseTimepoint(s)
		if err != nil {
			return fmt.Errorf("%s row %d: %w", tpCol, i+1, err)
		}
		if origin.IsZero() {
			origin = tp
		}
		out[i] = tp.Sub(origin).Seconds()
	}
	return t.AddColumn(col, out, false)
}

func checkOrdered(t *stats.Table, col string) {
	vals, _ := t.Values(col)
	prev := math.Inf(-1)
	for i, v := range vals {
		if math.IsNaN(v) {
			continue
		}
		if v < prev {
			logging.Warnf("%s decreases at row %d (%v < %v); rows are expected in sample time order", col, i+1, v, prev)
			return
		}
		prev = v
	}
}
