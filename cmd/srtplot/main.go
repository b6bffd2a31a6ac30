// srtplot renders SRT core statistics (.csv files written by the SRT test
// applications) into an interactive HTML report with linked time axes, and
// optionally exports selected charts as PNG images.
//
// Usage:
//
//	srtplot [flags] <stats.csv | directory>
//
// The side of the connection is taken from --is-sender unless the file name
// carries a "snd" or "rcv" part, which wins. A directory argument plots every
// .csv file inside it.
package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/spf13/pflag"

	"github.com/iafilius/SRTStatsPlot/src/analysis"
	"github.com/iafilius/SRTStatsPlot/src/logging"
	"github.com/iafilius/SRTStatsPlot/src/schema"
)

var (
	version   = "dev"
	commit    = "unknown"
	buildTime = "unknown"
)

func main() {
	os.Exit(run(context.Background(), os.Args[1:], os.Stdout, os.Stderr))
}

func run(ctx context.Context, args []string, stdout, stderr io.Writer) int {
	fs := newFlagSet()
	fs.SetOutput(stderr)
	fs.Usage = func() {
		fmt.Fprintf(stderr, "Usage: srtplot [flags] <stats.csv | directory>\n\n")
		fs.PrintDefaults()
	}
	if err := fs.Parse(args); err != nil {
		if errors.Is(err, pflag.ErrHelp) {
			return 0
		}
		return 2
	}
	if v, _ := fs.GetBool("version"); v {
		fmt.Fprintf(stdout, "srtplot - SRT statistics plotter\n")
		fmt.Fprintf(stdout, "  Version: %s\n", version)
		fmt.Fprintf(stdout, "  Commit:  %s\n", commit)
		fmt.Fprintf(stdout, "  Built:   %s\n", buildTime)
		return 0
	}
	if fs.NArg() != 1 {
		fs.Usage()
		return 2
	}

	cfg, err := loadConfig(fs)
	if err != nil {
		fmt.Fprintf(stderr, "error loading config: %v\n", err)
		return 1
	}
	logging.SetLogLevel(cfg.LogLevel)
	if cfg.ConfigPath != "" {
		logging.Debugf("config %s", cfg.ConfigPath)
	}

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

	p := &plotter{cfg: cfg, schema: s, out: stdout}
	target := fs.Arg(0)
	var sums []analysis.Summary
	if st, statErr := os.Stat(target); statErr == nil && st.IsDir() {
		sums, err = p.plotDir(ctx, target)
	} else {
		sums, err = p.plotFile(target)
	}
	if len(sums) > 0 {
		if werr := analysis.WriteReport(stdout, sums, analysis.FormatText); werr != nil {
			logging.Warnf("summary: %v", werr)
		}
	}
	if err != nil {
		fmt.Fprintf(stderr, "error: %v\n", err)
		return 1
	}
	return 0
}
