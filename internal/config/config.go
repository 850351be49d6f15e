package config

import (
	"fmt"
	"os"
	"time"

	"github.com/spf13/pflag"
	"gopkg.in/yaml.v3"

	"par-ca/internal/core"
)

// PatternRandom is the pattern value that selects random fill.
const PatternRandom = "random"

// Config holds every runtime option of the ca binary. Zero is not a usable
// configuration; start from Default.
type Config struct {
	Rows int `yaml:"rows"`
	Cols int `yaml:"cols"`

	Backend string `yaml:"backend"`
	Rule    string `yaml:"rule"`
	Seed    int64  `yaml:"seed"`

	FillProb        float64 `yaml:"fill_probability"`
	VirtualFillProb float64 `yaml:"virtual_fill_probability"`

	MaxIterations uint64 `yaml:"max_iterations"`

	Pattern string `yaml:"pattern"`
	Anchor  string `yaml:"anchor"`

	Workers int `yaml:"workers"`

	Render        bool `yaml:"render"`
	RenderDelayMs int  `yaml:"render_delay_ms"`
	SkipFrames    int  `yaml:"skip_frames"`
	Start         bool `yaml:"start"`
	Scale         int  `yaml:"scale"`

	Bench bool `yaml:"bench"`
	Print bool `yaml:"print"`
}

// Default returns the standard configuration.
func Default() Config {
	return Config{
		Rows:     1200,
		Cols:     1200,
		Backend:  "gpu",
		Rule:     "B3/S23",
		FillProb: 0.2,
		Pattern:  PatternRandom,
		Anchor:   "center",
		Scale:    1,
	}
}

// Bind attaches the configuration to the provided flag set.
func (c *Config) Bind(fs *pflag.FlagSet) {
	fs.IntVarP(&c.Cols, "cols", "x", c.Cols, "grid width in cells")
	fs.IntVarP(&c.Rows, "rows", "y", c.Rows, "grid height in cells")
	fs.StringVarP(&c.Backend, "backend", "b", c.Backend, "compute backend")
	fs.StringVar(&c.Rule, "rule", c.Rule, "birth/survival rule in B/S notation")
	fs.Int64VarP(&c.Seed, "seed", "s", c.Seed, "noise seed, 0 derives one from the clock")
	fs.Float64VarP(&c.FillProb, "fill-probability", "p", c.FillProb, "probability a cell starts alive under random fill")
	fs.Float64VarP(&c.VirtualFillProb, "virtual-fill-probability", "v", c.VirtualFillProb, "probability a dead cell is revived each generation")
	fs.Uint64VarP(&c.MaxIterations, "max", "m", c.MaxIterations, "stop after this many generations, 0 runs until interrupted")
	fs.StringVarP(&c.Pattern, "file", "f", c.Pattern, "pattern file to load, or \"random\"")
	fs.StringVar(&c.Anchor, "anchor", c.Anchor, "pattern placement: center or topleft")
	fs.IntVarP(&c.Workers, "workers", "w", c.Workers, "cpu backend worker count, 0 uses all cores")
	fs.BoolVarP(&c.Render, "render", "r", c.Render, "render the grid in a window (needs the ebiten build)")
	fs.IntVarP(&c.RenderDelayMs, "render-delay", "d", c.RenderDelayMs, "delay between generations in milliseconds")
	fs.IntVar(&c.SkipFrames, "skip-frames", c.SkipFrames, "extra generations computed per rendered frame")
	fs.BoolVar(&c.Start, "start", c.Start, "start evolving immediately instead of paused")
	fs.IntVar(&c.Scale, "scale", c.Scale, "window pixel scale multiplier")
	fs.BoolVar(&c.Bench, "bench", c.Bench, "keep per-generation timings and print a summary on exit")
	fs.BoolVar(&c.Print, "print", c.Print, "print the final grid as RLE on exit")
}

// LoadFile overlays values from a YAML file onto the config.
func (c *Config) LoadFile(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return err
	}
	if err := yaml.Unmarshal(data, c); err != nil {
		return &core.ConfigurationError{Field: "config file", Reason: err.Error()}
	}
	return nil
}

// MergeFile loads a YAML config file underneath the flag values: fields the
// user set on the command line win, everything else comes from the file.
func (c *Config) MergeFile(path string, fs *pflag.FlagSet) error {
	file := Default()
	if err := file.LoadFile(path); err != nil {
		return err
	}
	if !fs.Changed("rows") {
		c.Rows = file.Rows
	}
	if !fs.Changed("cols") {
		c.Cols = file.Cols
	}
	if !fs.Changed("backend") {
		c.Backend = file.Backend
	}
	if !fs.Changed("rule") {
		c.Rule = file.Rule
	}
	if !fs.Changed("seed") {
		c.Seed = file.Seed
	}
	if !fs.Changed("fill-probability") {
		c.FillProb = file.FillProb
	}
	if !fs.Changed("virtual-fill-probability") {
		c.VirtualFillProb = file.VirtualFillProb
	}
	if !fs.Changed("max") {
		c.MaxIterations = file.MaxIterations
	}
	if !fs.Changed("file") {
		c.Pattern = file.Pattern
	}
	if !fs.Changed("anchor") {
		c.Anchor = file.Anchor
	}
	if !fs.Changed("workers") {
		c.Workers = file.Workers
	}
	if !fs.Changed("render") {
		c.Render = file.Render
	}
	if !fs.Changed("render-delay") {
		c.RenderDelayMs = file.RenderDelayMs
	}
	if !fs.Changed("skip-frames") {
		c.SkipFrames = file.SkipFrames
	}
	if !fs.Changed("start") {
		c.Start = file.Start
	}
	if !fs.Changed("scale") {
		c.Scale = file.Scale
	}
	if !fs.Changed("bench") {
		c.Bench = file.Bench
	}
	if !fs.Changed("print") {
		c.Print = file.Print
	}
	return nil
}

// Validate reports the first invalid option.
func (c *Config) Validate() error {
	if c.Rows <= 0 {
		return &core.ConfigurationError{Field: "rows", Reason: "must be positive"}
	}
	if c.Cols <= 0 {
		return &core.ConfigurationError{Field: "cols", Reason: "must be positive"}
	}
	if c.FillProb < 0 || c.FillProb > 1 {
		return &core.ConfigurationError{Field: "fill-probability", Reason: "must be within [0, 1]"}
	}
	if c.VirtualFillProb < 0 || c.VirtualFillProb > 1 {
		return &core.ConfigurationError{Field: "virtual-fill-probability", Reason: "must be within [0, 1]"}
	}
	if c.Workers < 0 {
		return &core.ConfigurationError{Field: "workers", Reason: "must not be negative"}
	}
	if c.RenderDelayMs < 0 {
		return &core.ConfigurationError{Field: "render-delay", Reason: "must not be negative"}
	}
	if c.SkipFrames < 0 {
		return &core.ConfigurationError{Field: "skip-frames", Reason: "must not be negative"}
	}
	if c.Scale < 1 {
		return &core.ConfigurationError{Field: "scale", Reason: "must be at least 1"}
	}
	if c.Pattern == "" {
		return &core.ConfigurationError{Field: "file", Reason: fmt.Sprintf("must be a path or %q", PatternRandom)}
	}
	if _, err := core.ParseRule(c.Rule); err != nil {
		return &core.ConfigurationError{Field: "rule", Reason: err.Error()}
	}
	if _, err := core.ParseAnchor(c.Anchor); err != nil {
		return &core.ConfigurationError{Field: "anchor", Reason: err.Error()}
	}
	return nil
}

// RenderDelay returns the configured inter-generation delay.
func (c *Config) RenderDelay() time.Duration {
	return time.Duration(c.RenderDelayMs) * time.Millisecond
}
