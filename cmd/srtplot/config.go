package main

import (
	"fmt"

	"github.com/spf13/pflag"

	"github.com/iafilius/SRTStatsPlot/src/charts"
	"github.com/iafilius/SRTStatsPlot/src/config"
	"github.com/iafilius/SRTStatsPlot/src/logging"
	"github.com/iafilius/SRTStatsPlot/src/schema"
)

// plotConfig merges defaults, the optional config file, SRTPLOT_* environment
// variables and command line flags, in increasing precedence.
type plotConfig struct {
	LogLevel   string           `mapstructure:"log-level"`
	Width      int              `mapstructure:"width"`
	Height     int              `mapstructure:"height"`
	Jobs       int              `mapstructure:"jobs"`
	PNGCaption bool             `mapstructure:"png-caption"`
	AssetsHost string           `mapstructure:"assets-host"`
	Schema     string           `mapstructure:"schema"`
	IsSender   bool             `mapstructure:"is-sender"`
	IsFEC      bool             `mapstructure:"is-fec"`
	ExportPNG  bool             `mapstructure:"export-png"`
	Summary    bool             `mapstructure:"summary"`
	Schemas    []*schema.Schema `mapstructure:"schemas"`

	ConfigPath string `mapstructure:"-"`
}

func newFlagSet() *pflag.FlagSet {
	fs := pflag.NewFlagSet("srtplot", pflag.ContinueOnError)
	fs.SortFlags = false
	fs.String("config", "", "config file (default is $HOME/.config/srtplot/config.yml)")
	fs.Bool("version", false, "print version information")
	fs.String("schema", "srt", "statistics variant (srt|group|quic or a configured schema)")
	fs.Bool("is-sender", false, "statistics were collected on the sender side")
	fs.Bool("is-fec", false, "plot packet filter (FEC) statistics")
	fs.Bool("export-png", false, "also export selected charts as <name>-<chart>.png")
	fs.Bool("summary", false, "print aggregate loss and FEC statistics after plotting")
	fs.Int("width", charts.DefaultWidth, "chart width in pixels")
	fs.Int("height", charts.DefaultHeight, "chart height in pixels")
	fs.Int("jobs", 1, "files plotted concurrently in directory mode")
	fs.Bool("png-caption", false, "draw the input file name onto exported PNGs")
	fs.String("log-level", "info", "log level (debug|info|warn|error)")
	return fs
}

func loadConfig(fs *pflag.FlagSet) (plotConfig, error) {
	var cfg plotConfig

	v, err := config.Load(fs)
	if err != nil {
		return cfg, err
	}
	if err := v.Unmarshal(&cfg); err != nil {
		return cfg, err
	}
	cfg.ConfigPath = v.ConfigFileUsed()
	if cfg.Width <= 0 || cfg.Height <= 0 {
		return cfg, fmt.Errorf("invalid chart size %dx%d", cfg.Width, cfg.Height)
	}
	if cfg.Jobs <= 0 {
		cfg.Jobs = 1
	}
	if !logging.ValidLevel(cfg.LogLevel) {
		return cfg, fmt.Errorf("invalid log-level %q", cfg.LogLevel)
	}
	return cfg, nil
}
