// Package schema describes the statistics variants the plotter understands.
//
// A Schema is a plain configuration record: which raw columns must exist, which
// derived columns to compute from them, and which chart panels to lay out in
// which grid cells. Adding a new statistics layout means adding a Schema value
// (or a config file entry), never new transform code.
package schema

import (
	"fmt"
	"sort"
	"strings"
)

// Side selects sender or receiver panels. The empty side matches both.
type Side string

const (
	SideAny      Side = ""
	SideSender   Side = "sender"
	SideReceiver Side = "receiver"
)

// SideOf maps the --is-sender flag to a Side.
func SideOf(isSender bool) Side {
	if isSender {
		return SideSender
	}
	return SideReceiver
}

// Conversion derives Column = Raw / Divisor.
type Conversion struct {
	Raw      string  `mapstructure:"raw" yaml:"raw"`
	Column   string  `mapstructure:"column" yaml:"column"`
	Divisor  float64 `mapstructure:"divisor" yaml:"divisor"`
	Optional bool    `mapstructure:"optional" yaml:"optional,omitempty"`
}

// Instant derives the per-interval increment Column from a cumulative counter.
type Instant struct {
	Cumulative string `mapstructure:"cumulative" yaml:"cumulative"`
	Column     string `mapstructure:"column" yaml:"column"`
	Integer    bool   `mapstructure:"integer" yaml:"integer,omitempty"`
	Optional   bool   `mapstructure:"optional" yaml:"optional,omitempty"`
}

// Line is one plotted series. An empty Legend means no legend entry.
type Line struct {
	Column string `mapstructure:"column" yaml:"column"`
	Legend string `mapstructure:"legend" yaml:"legend,omitempty"`
	Color  string `mapstructure:"color" yaml:"color"`
}

// Panel is one chart of the catalog.
type Panel struct {
	Key     string `mapstructure:"key" yaml:"key"`
	Side    Side   `mapstructure:"side" yaml:"side,omitempty"`
	FEC     bool   `mapstructure:"fec" yaml:"fec,omitempty"`
	Tag     string `mapstructure:"tag" yaml:"tag,omitempty"` // PNG export suffix; empty = never exported
	Title   string `mapstructure:"title" yaml:"title"`
	YLabel  string `mapstructure:"ylabel" yaml:"ylabel"`
	YFormat string `mapstructure:"yformat" yaml:"yformat,omitempty"`
	Lines   []Line `mapstructure:"lines" yaml:"lines"`
	// Requires lists the columns whose absence suppresses the panel.
	// When empty, every line column is required.
	Requires []string `mapstructure:"requires" yaml:"requires,omitempty"`
}

// RequiredColumns returns Requires, or the line columns when Requires is empty.
func (p Panel) RequiredColumns() []string {
	if len(p.Requires) > 0 {
		return p.Requires
	}
	out := make([]string, 0, len(p.Lines))
	for _, l := range p.Lines {
		out = append(out, l.Column)
	}
	return out
}

// Matches reports whether the panel applies to the given side and FEC mode.
func (p Panel) Matches(side Side, fec bool) bool {
	if p.FEC && !fec {
		return false
	}
	return p.Side == SideAny || p.Side == side
}

// Schema is the column mapping and chart catalog of one statistics variant.
type Schema struct {
	Name  string `mapstructure:"name" yaml:"name"`
	Title string `mapstructure:"title" yaml:"title"`

	XColumn string `mapstructure:"x-column" yaml:"x-column"`
	XLabel  string `mapstructure:"x-label" yaml:"x-label"`
	XFormat string `mapstructure:"x-format" yaml:"x-format,omitempty"`
	// Timepoint, when set, names a timestamp column; XColumn is then derived as
	// seconds elapsed since the first row.
	Timepoint string `mapstructure:"timepoint" yaml:"timepoint,omitempty"`
	// GroupBy splits the table by socket id and lays the grid out once per socket.
	GroupBy string `mapstructure:"group-by" yaml:"group-by,omitempty"`
	// Sided schemas honour --is-sender and the snd/rcv filename convention.
	Sided bool `mapstructure:"sided" yaml:"sided,omitempty"`

	Required    []string     `mapstructure:"required" yaml:"required"`
	Conversions []Conversion `mapstructure:"conversions" yaml:"conversions,omitempty"`
	Instants    []Instant    `mapstructure:"instants" yaml:"instants,omitempty"`
	Panels      []Panel      `mapstructure:"panels" yaml:"panels"`
	Grid        [][]string   `mapstructure:"grid" yaml:"grid"`
}

// Panel resolves a grid key for the active side and FEC mode.
func (s *Schema) Panel(key string, side Side, fec bool) (Panel, bool) {
	for _, p := range s.Panels {
		if p.Key == key && p.Matches(side, fec) {
			return p, true
		}
	}
	return Panel{}, false
}

// Validate checks the schema for internal consistency.
func (s *Schema) Validate() error {
	if strings.TrimSpace(s.Name) == "" {
		return fmt.Errorf("schema without name")
	}
	if s.XColumn == "" {
		return fmt.Errorf("schema %s: x-column is required", s.Name)
	}
	derived := map[string]bool{}
	for _, c := range s.Conversions {
		if c.Raw == "" || c.Column == "" {
			return fmt.Errorf("schema %s: conversion needs raw and column", s.Name)
		}
		if c.Divisor == 0 {
			return fmt.Errorf("schema %s: conversion %s has zero divisor", s.Name, c.Column)
		}
		if derived[c.Column] {
			return fmt.Errorf("schema %s: column %s derived twice", s.Name, c.Column)
		}
		derived[c.Column] = true
	}
	for _, in := range s.Instants {
		if in.Cumulative == "" || in.Column == "" {
			return fmt.Errorf("schema %s: instant needs cumulative and column", s.Name)
		}
		if derived[in.Column] {
			return fmt.Errorf("schema %s: column %s derived twice", s.Name, in.Column)
		}
		derived[in.Column] = true
	}
	keys := map[string]bool{}
	for _, p := range s.Panels {
		if p.Key == "" {
			return fmt.Errorf("schema %s: panel without key", s.Name)
		}
		switch p.Side {
		case SideAny, SideSender, SideReceiver:
		default:
			return fmt.Errorf("schema %s: panel %s has unknown side %q", s.Name, p.Key, p.Side)
		}
		for _, l := range p.Lines {
			if l.Column == "" {
				return fmt.Errorf("schema %s: panel %s has a line without column", s.Name, p.Key)
			}
		}
		keys[p.Key] = true
	}
	for _, row := range s.Grid {
		for _, k := range row {
			if k != "" && !keys[k] {
				return fmt.Errorf("schema %s: grid references unknown panel %q", s.Name, k)
			}
		}
	}
	return nil
}

var builtins = map[string]func() *Schema{
	"srt":   SRT,
	"group": Group,
	"quic":  QUIC,
}

// Registry resolves schema names to built-in and configured schemas.
type Registry struct {
	custom map[string]*Schema
}

// NewRegistry validates the custom schemas; they may shadow built-ins.
func NewRegistry(custom []*Schema) (*Registry, error) {
	r := &Registry{custom: map[string]*Schema{}}
	for _, s := range custom {
		if err := s.Validate(); err != nil {
			return nil, err
		}
		r.custom[s.Name] = s
	}
	return r, nil
}

// Lookup returns the named schema. Built-ins are constructed on every call.
func (r *Registry) Lookup(name string) (*Schema, error) {
	if r != nil {
		if s, ok := r.custom[name]; ok {
			return s, nil
		}
	}
	if fn, ok := builtins[name]; ok {
		return fn(), nil
	}
	return nil, fmt.Errorf("unknown schema %q (known: %s)", name, strings.Join(r.Names(), ", "))
}

// Names lists known schema names, sorted.
func (r *Registry) Names() []string {
	seen := map[string]bool{}
	for n := range builtins {
		seen[n] = true
	}
	if r != nil {
		for n := range r.custom {
			seen[n] = true
		}
	}
	out := make([]string, 0, len(seen))
	for n := range seen {
		out = append(out, n)
	}
	sort.Strings(out)
	return out
}

// Lookup resolves a built-in schema.
func Lookup(name string) (*Schema, error) {
	var r *Registry
	return r.Lookup(name)
}
