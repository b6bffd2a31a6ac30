// Package derive computes derived columns from raw per-interval counters.
//
// There are three transforms: unit conversion, cumulative-to-instantaneous
// differencing and aggregate percentages. Which raw columns they apply to is
// decided by a schema.Schema; nothing here knows concrete column names.
package derive

import (
	"errors"
	"fmt"
	"math"
	"strings"

	"github.com/iafilius/SRTStatsPlot/src/stats"
)

// Divisors for ConvertUnits.
const (
	BytesPerMegabyte = 1e6
	BytesPerMegabit  = 1e6 / 8 // value*8/1e6
)

var (
	// ErrSchema matches every *SchemaError.
	ErrSchema = errors.New("schema error")
	// ErrDivisionUndefined is returned when a percentage denominator sums to zero.
	ErrDivisionUndefined = errors.New("division undefined: denominator is zero")
)

// SchemaError reports a required raw column that is absent from the table.
type SchemaError struct {
	Schema string
	Column string
}

func (e *SchemaError) Error() string {
	if e.Schema == "" {
		return fmt.Sprintf("required column %q is missing", e.Column)
	}
	return fmt.Sprintf("schema %s: required column %q is missing", e.Schema, e.Column)
}

func (e *SchemaError) Is(target error) bool { return target == ErrSchema }

// HasColumn is a pure membership test against the table's column set.
func HasColumn(t *stats.Table, col string) bool { return t.Has(col) }

// ConvertUnits adds newCol = raw / divisor. NaN cells stay NaN.
func ConvertUnits(t *stats.Table, raw, newCol string, divisor float64) error {
	vals, ok := t.Values(raw)
	if !ok {
		return &SchemaError{Column: raw}
	}
	if divisor == 0 {
		return fmt.Errorf("convert %s: %w", raw, ErrDivisionUndefined)
	}
	out := make([]float64, len(vals))
	for i, v := range vals {
		out[i] = v / divisor
	}
	integer := false
	if divisor == 1 || divisor == -1 {
		integer = t.Integer(raw)
	}
	return t.AddColumn(newCol, out, integer)
}

// ToInstantaneous adds newCol holding the first difference of a cumulative counter.
// Row 0 is seeded with the cumulative value itself, so the series sums back to the
// last cumulative sample. Integer results are truncated toward zero.
//
// A difference that is undefined because a cell is missing takes the seed value
// too, so the derived column never has gaps. The seed of an empty first cell is 0.
func ToInstantaneous(t *stats.Table, cumulative, newCol string, integer bool) error {
	vals, ok := t.Values(cumulative)
	if !ok {
		return &SchemaError{Column: cumulative}
	}
	out := make([]float64, len(vals))
	seed := 0.0
	if len(vals) > 0 && !math.IsNaN(vals[0]) {
		seed = vals[0]
	}
	for i, v := range vals {
		d := v
		if i > 0 {
			d = v - vals[i-1]
		}
		if math.IsNaN(d) {
			d = seed
		}
		if integer {
			d = math.Trunc(d)
		}
		out[i] = d
	}
	return t.AddColumn(newCol, out, integer)
}

// AggregatePercentage returns round(100*sum(numerator)/(sum(denominators)-sum(exclusions)), 2).
func AggregatePercentage(t *stats.Table, numerator string, denominators, exclusions []string) (float64, error) {
	num, ok := t.Sum(numerator)
	if !ok {
		return 0, &SchemaError{Column: numerator}
	}
	denom := 0.0
	for _, c := range denominators {
		s, ok := t.Sum(c)
		if !ok {
			return 0, &SchemaError{Column: c}
		}
		denom += s
	}
	for _, c := range exclusions {
		s, ok := t.Sum(c)
		if !ok {
			return 0, &SchemaError{Column: c}
		}
		denom -= s
	}
	if denom == 0 {
		return 0, fmt.Errorf("%s / (%s): %w", numerator, describe(denominators, exclusions), ErrDivisionUndefined)
	}
	return Round(100*num/denom, 2), nil
}

func describe(denominators, exclusions []string) string {
	s := strings.Join(denominators, " + ")
	for _, e := range exclusions {
		s += " - " + e
	}
	return s
}

// Round rounds to the given number of decimals; exact ties go to the even digit.
func Round(v float64, decimals int) float64 {
	p := math.Pow(10, float64(decimals))
	return math.RoundToEven(v*p) / p
}
