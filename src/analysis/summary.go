// Package analysis aggregates whole-file statistics (packet loss and FEC
// percentages) from a loaded statistics table.
package analysis

import (
	"fmt"
	"math"

	"github.com/iafilius/SRTStatsPlot/src/derive"
	"github.com/iafilius/SRTStatsPlot/src/logging"
	"github.com/iafilius/SRTStatsPlot/src/schema"
	"github.com/iafilius/SRTStatsPlot/src/stats"
)

// Raw receiver counters used by the summaries.
const (
	colRecv         = "pktRecv"
	colFilterExtra  = "pktRcvFilterExtra"
	colFilterSupply = "pktRcvFilterSupply"
	colFilterLoss   = "pktRcvFilterLoss"
)

// Percentage is one aggregate statistic. A failed statistic keeps its error and
// does not affect the others.
type Percentage struct {
	Name  string  `json:"name" yaml:"name"`
	Value float64 `json:"value_pct" yaml:"value_pct"`
	Error string  `json:"error,omitempty" yaml:"error,omitempty"`
	err   error
}

// Err returns the error of a failed statistic.
func (p Percentage) Err() error { return p.err }

func (p Percentage) String() string {
	if p.err != nil {
		return fmt.Sprintf("%s: n/a (%v)", p.Name, p.err)
	}
	return fmt.Sprintf("%s: %v %%", p.Name, p.Value)
}

func newPercentage(name string, v float64, err error) Percentage {
	p := Percentage{Name: name, Value: v, err: err}
	if err != nil {
		p.Error = err.Error()
	}
	return p
}

// Summary holds the aggregate statistics of one file or one socket of a grouped file.
type Summary struct {
	File     string       `json:"file" yaml:"file"`
	Socket   string       `json:"socket,omitempty" yaml:"socket,omitempty"`
	Rows     int          `json:"rows" yaml:"rows"`
	Received []Percentage `json:"received,omitempty" yaml:"received,omitempty"`
	FEC      []Percentage `json:"fec,omitempty" yaml:"fec,omitempty"`
	// AvgFECOverheadPct is the mean of the per-row overhead; rows with a zero denominator are skipped.
	AvgFECOverheadPct *float64 `json:"avg_fec_overhead_pct,omitempty" yaml:"avg_fec_overhead_pct,omitempty"`
}

// exclusions returns the FEC extra-packet column when the table has it.
// Receivers without a packet filter still report plain SRT packets.
func exclusions(t *stats.Table) []string {
	if derive.HasColumn(t, colFilterExtra) {
		return []string{colFilterExtra}
	}
	return nil
}

// ReceivedPackets returns lost, retransmitted, dropped and belated packets as a
// percentage of received SRT packets (extra FEC packets excluded).
func ReceivedPackets(t *stats.Table) []Percentage {
	items := []struct{ name, col string }{
		{"lost", "pktRcvLoss"},
		{"retransmitted", "pktRcvRetrans"},
		{"dropped", "pktRcvDrop"},
		{"belated", "pktRcvBelated"},
	}
	excl := exclusions(t)
	out := make([]Percentage, 0, len(items))
	for _, it := range items {
		v, err := derive.AggregatePercentage(t, it.col, []string{colRecv}, excl)
		out = append(out, newPercentage(it.name, v, err))
	}
	return out
}

// FEC returns the packet filter overhead and reconstruction rates plus the
// average per-row overhead (nil when no row has a usable denominator).
func FEC(t *stats.Table) ([]Percentage, *float64) {
	excl := []string{colFilterExtra}
	items := []struct{ name, col string }{
		{"fec_overhead", colFilterExtra},
		{"fec_reconstructed", colFilterSupply},
		{"fec_not_reconstructed", colFilterLoss},
	}
	out := make([]Percentage, 0, len(items))
	for _, it := range items {
		v, err := derive.AggregatePercentage(t, it.col, []string{colRecv}, excl)
		out = append(out, newPercentage(it.name, v, err))
	}
	return out, avgOverhead(t)
}

func avgOverhead(t *stats.Table) *float64 {
	recv, ok1 := t.Values(colRecv)
	extra, ok2 := t.Values(colFilterExtra)
	if !ok1 || !ok2 {
		return nil
	}
	sum, n := 0.0, 0
	for i := range recv {
		d := recv[i] - extra[i]
		if d == 0 || math.IsNaN(d) || math.IsNaN(extra[i]) {
			continue
		}
		sum += extra[i] * 100 / d
		n++
	}
	if n == 0 {
		return nil
	}
	avg := derive.Round(sum/float64(n), 4)
	return &avg
}

// Analyze builds summaries for a loaded table. Grouped schemas yield one summary
// per socket (group first, then members); a whole-file sum would count member
// traffic twice.
func Analyze(t *stats.Table, s *schema.Schema, file string, fec bool) []Summary {
	if s != nil && s.GroupBy != "" && t.Has(s.GroupBy) {
		var out []Summary
		for _, part := range derive.SplitSockets(t, s.GroupBy) {
			sum := summarize(part.Table, file, fec)
			sum.Socket = part.Label
			out = append(out, sum)
		}
		return out
	}
	return []Summary{summarize(t, file, fec)}
}

func summarize(t *stats.Table, file string, fec bool) Summary {
	sum := Summary{File: file, Rows: t.Len(), Received: ReceivedPackets(t)}
	if fec {
		sum.FEC, sum.AvgFECOverheadPct = FEC(t)
	}
	return sum
}

// AnalyzeFile loads one CSV file and summarizes it.
func AnalyzeFile(path string, s *schema.Schema, fec bool) ([]Summary, error) {
	t, err := stats.LoadCSV(path)
	if err != nil {
		return nil, err
	}
	if s != nil {
		if err := derive.Validate(t, s); err != nil {
			return nil, err
		}
	}
	return Analyze(t, s, path, fec), nil
}

// AnalyzeDir summarizes every .csv file of a directory. A file that fails to
// load is logged and skipped; the error is returned only when nothing succeeded.
func AnalyzeDir(dir string, s *schema.Schema, fec bool) ([]Summary, error) {
	files, err := stats.ListCSV(dir)
	if err != nil {
		return nil, err
	}
	if len(files) == 0 {
		return nil, fmt.Errorf("no .csv files in %s", dir)
	}
	var out []Summary
	var firstErr error
	for _, f := range files {
		sums, err := AnalyzeFile(f, s, fec)
		if err != nil {
			logging.Warnf("skip %s: %v", f, err)
			if firstErr == nil {
				firstErr = err
			}
			continue
		}
		out = append(out, sums...)
	}
	if len(out) == 0 {
		return nil, firstErr
	}
	return out, nil
}
