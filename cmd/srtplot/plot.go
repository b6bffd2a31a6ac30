package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/iafilius/SRTStatsPlot/src/analysis"
	"github.com/iafilius/SRTStatsPlot/src/charts"
	"github.com/iafilius/SRTStatsPlot/src/derive"
	"github.com/iafilius/SRTStatsPlot/src/logging"
	"github.com/iafilius/SRTStatsPlot/src/schema"
	"github.com/iafilius/SRTStatsPlot/src/stats"
)

// plotter renders one statistics file into an HTML report and optional PNGs.
type plotter struct {
	cfg    plotConfig
	schema *schema.Schema
	out    io.Writer // user-facing notices, stdout in production
}

// resolveSide applies the file naming convention: a "snd" name part forces the
// sender view and "rcv" the receiver view, overriding isSender with a notice.
func resolveSide(out io.Writer, path string, isSender bool) bool {
	parts := strings.Split(stats.Stem(path), "-")
	for _, p := range parts {
		if p == "snd" && !isSender {
			fmt.Fprintln(out, "Stats filename corresponds to a sender statistics, however, "+
				"--is-sender is not set. Further stats processing will be done as in case of sender statistics.")
			isSender = true
		}
	}
	for _, p := range parts {
		if p == "rcv" && isSender {
			fmt.Fprintln(out, "Stats filename corresponds to a receiver statistics, however, "+
				"--is-sender is set. Further stats processing will be done as in case of receiver statistics.")
			isSender = false
		}
	}
	return isSender
}

// htmlPath returns <dir>/<stem>.html for the input file.
func htmlPath(path string) string {
	return filepath.Join(filepath.Dir(path), stats.Stem(path)+".html")
}

// plotFile produces <stem>.html next to the input and returns the summaries
// when requested.
func (p *plotter) plotFile(path string) ([]analysis.Summary, error) {
	defer logging.TimeTrack(time.Now(), "plot "+path)
	if err := stats.CheckPath(path); err != nil {
		return nil, err
	}
	if _, err := os.Stat(path); err != nil {
		return nil, err
	}
	isSender := p.cfg.IsSender
	if p.schema.Sided {
		isSender = resolveSide(p.out, path, isSender)
	}

	t, err := stats.LoadCSV(path)
	if err != nil {
		return nil, err
	}
	if err := derive.Apply(t, p.schema); err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	layout := charts.Assemble(t, p.schema, charts.Options{Side: schema.SideOf(isSender), FEC: p.cfg.IsFEC})

	out := htmlPath(path)
	if err := writeHTML(out, layout, charts.HTMLOptions{Width: p.cfg.Width, Height: p.cfg.Height, AssetsHost: p.cfg.AssetsHost}); err != nil {
		return nil, err
	}
	logging.Infof("wrote %s (%d charts)", out, len(layout.Figures()))

	if p.cfg.ExportPNG {
		o := charts.PNGOptions{Width: p.cfg.Width, Height: p.cfg.Height}
		if p.cfg.PNGCaption {
			o.Caption = filepath.Base(path)
		}
		pngs, err := charts.ExportPNGs(layout, filepath.Dir(path), stats.Stem(path), o)
		if err != nil {
			return nil, err
		}
		logging.Infof("exported %d PNG charts for %s", len(pngs), path)
	}

	if !p.cfg.Summary {
		return nil, nil
	}
	return analysis.Analyze(t, p.schema, path, p.cfg.IsFEC), nil
}

// writeHTML renders through a temporary file; path is replaced only on success.
func writeHTML(path string, l *charts.Layout, o charts.HTMLOptions) error {
	tmp, err := os.CreateTemp(filepath.Dir(path), ".srtplot-*.html")
	if err != nil {
		return err
	}
	defer os.Remove(tmp.Name())
	if err := charts.RenderHTML(tmp, l, o); err != nil {
		tmp.Close()
		return fmt.Errorf("render %s: %w", path, err)
	}
	if err := tmp.Close(); err != nil {
		return err
	}
	return os.Rename(tmp.Name(), path)
}

// plotDir plots every .csv file of dir, cfg.Jobs at a time. Every file is
// attempted and the per-file errors are joined.
func (p *plotter) plotDir(ctx context.Context, dir string) ([]analysis.Summary, error) {
	files, err := stats.ListCSV(dir)
	if err != nil {
		return nil, err
	}
	if len(files) == 0 {
		return nil, fmt.Errorf("no .csv files in %s", dir)
	}
	results := make([][]analysis.Summary, len(files))
	errs := make([]error, len(files))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(p.cfg.Jobs)
	for i, f := range files {
		i, f := i, f
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				errs[i] = err
				return nil
			}
			sums, err := p.plotFile(f)
			if err != nil {
				logging.Errorf("%s: %v", f, err)
				errs[i] = err
				return nil
			}
			results[i] = sums
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	var out []analysis.Summary
	for _, r := range results {
		out = append(out, r...)
	}
	return out, errors.Join(errs...)
}
