// srtstats prints aggregate packet loss and FEC statistics for SRT statistics
// files without rendering any chart.
package main

import (
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/spf13/pflag"

	"github.com/iafilius/SRTStatsPlot/src/analysis"
	"github.com/iafilius/SRTStatsPlot/src/config"
	"github.com/iafilius/SRTStatsPlot/src/logging"
	"github.com/iafilius/SRTStatsPlot/src/schema"
)

type readerConfig struct {
	Schema   string           `mapstructure:"schema"`
	Format   string           `mapstructure:"format"`
	IsFEC    bool             `mapstructure:"is-fec"`
	LogLevel string           `mapstructure:"log-level"`
	Schemas  []*schema.Schema `mapstructure:"schemas"`
}

func main() {
	os.Exit(run(os.Args[1:], os.Stdout, os.Stderr))
}

func run(args []string, stdout, stderr io.Writer) int {
	fs := pflag.NewFlagSet("srtstats", pflag.ContinueOnError)
	fs.SetOutput(stderr)
	fs.String("config", "", "config file shared with srtplot (default is $HOME/.config/srtplot/config.yml)")
	fs.String("schema", "srt", "statistics variant (srt|group|quic or a configured schema)")
	fs.String("format", analysis.FormatText, "output format (text|json|yaml)")
	fs.Bool("is-fec", false, "include packet filter (FEC) statistics")
	fs.String("log-level", "warn", "log level (debug|info|warn|error)")
	if err := fs.Parse(args); err != nil {
		if errors.Is(err, pflag.ErrHelp) {
			return 0
		}
		return 2
	}
	if fs.NArg() != 1 {
		fmt.Fprintf(stderr, "Usage: srtstats [flags] <stats.csv | directory>\n")
		fs.PrintDefaults()
		return 2
	}

	v, err := config.Load(fs)
	if err != nil {
		fmt.Fprintf(stderr, "error loading config: %v\n", err)
		return 1
	}
	var cfg readerConfig
	if err := v.Unmarshal(&cfg); err != nil {
		fmt.Fprintf(stderr, "error loading config: %v\n", err)
		return 1
	}
	logging.SetLogLevel(cfg.LogLevel)

	reg, err := schema.NewRegistry(cfg.Schemas)
	if err != nil {
		fmt.Fprintf(stderr, "error: %v\n", err)
		return 1
	}
	s, err := reg.Lookup(cfg.Schema)
	if err != nil {
		fmt.Fprintf(stderr, "error: %v\n", err)
		return 1
	}

	target := fs.Arg(0)
	var sums []analysis.Summary
	if st, statErr := os.Stat(target); statErr == nil && st.IsDir() {
		sums, err = analysis.AnalyzeDir(target, s, cfg.IsFEC)
	} else {
		sums, err = analysis.AnalyzeFile(target, s, cfg.IsFEC)
	}
	if err != nil {
		fmt.Fprintf(stderr, "error: %v\n", err)
		return 1
	}
	if err := analysis.WriteReport(stdout, sums, cfg.Format); err != nil {
		fmt.Fprintf(stderr, "error: %v\n", err)
		return 1
	}
	return 0
}
