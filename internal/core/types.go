package core

import (
	"fmt"
	"slices"
	"strings"
)

// Size describes the dimensions of an automaton grid.
type Size struct {
	W int
	H int
}

// Anchor selects where a loaded pattern lands on the grid.
type Anchor int

const (
	// AnchorCenter places the pattern centered on the grid.
	AnchorCenter Anchor = iota
	// AnchorTopLeft places the pattern at the origin.
	AnchorTopLeft
)

// ParseAnchor maps a placement name to an Anchor.
func ParseAnchor(s string) (Anchor, error) {
	switch strings.ToLower(s) {
	case "", "center", "centre":
		return AnchorCenter, nil
	case "topleft", "top-left":
		return AnchorTopLeft, nil
	}
	return AnchorCenter, fmt.Errorf("unknown anchor %q", s)
}

// Options carries everything a backend needs at construction time. Backends
// hold it as given; validation happens in Prepare.
type Options struct {
	Rows int
	Cols int

	Rule Rule
	Seed uint64

	// FillProb is the probability a cell starts alive under random fill.
	// It is ignored when Pattern is set.
	FillProb float64
	// VirtualFillProb revives dead cells each generation with this
	// probability, keyed off the same noise source on every backend.
	VirtualFillProb float64

	// Pattern, when non-nil, seeds the grid instead of random fill.
	Pattern *Pattern
	Anchor  Anchor

	// Workers is the host backend's goroutine count; 0 uses all cores.
	Workers int

	// KeepTimings retains every generation's duration for reporting.
	KeepTimings bool

	// Frame is a shared RGBA buffer of 4*Rows*Cols bytes that accelerator
	// backends fill directly during UpdateRenderBuffers. Nil when headless.
	Frame []byte
	// RenderHook is invoked by the host backend's UpdateRenderBuffers so
	// the display can pull the current cells. Nil when headless.
	RenderHook func()
}

// Validate reports the first invalid option. It runs before any allocation.
func (o *Options) Validate() error {
	if o.Rows <= 0 {
		return &ConfigurationError{Field: "rows", Reason: "must be positive"}
	}
	if o.Cols <= 0 {
		return &ConfigurationError{Field: "cols", Reason: "must be positive"}
	}
	if o.FillProb < 0 || o.FillProb > 1 {
		return &ConfigurationError{Field: "fill probability", Reason: "must be within [0, 1]"}
	}
	if o.VirtualFillProb < 0 || o.VirtualFillProb > 1 {
		return &ConfigurationError{Field: "virtual fill probability", Reason: "must be within [0, 1]"}
	}
	if o.Workers < 0 {
		return &ConfigurationError{Field: "workers", Reason: "must not be negative"}
	}
	if o.Frame != nil && len(o.Frame) != 4*o.Rows*o.Cols {
		return &ConfigurationError{
			Field:  "frame",
			Reason: fmt.Sprintf("want %d bytes, got %d", 4*o.Rows*o.Cols, len(o.Frame)),
		}
	}
	return nil
}

// Automaton is the contract every compute backend implements. The lifecycle
// is construct, Prepare once, then any number of Evolve and
// UpdateRenderBuffers calls, then Close. Calling Evolve or
// UpdateRenderBuffers before Prepare is a programming error and panics.
type Automaton interface {
	Name() string
	Size() Size
	// Prepare validates options, allocates both generation buffers and
	// applies the initial state.
	Prepare() error
	// Evolve advances exactly one generation, reading the current buffer
	// and writing the next, then swaps them. When collectStats is set the
	// live-cell count is refreshed as part of the pass.
	Evolve(collectStats bool) error
	// UpdateRenderBuffers produces a displayable snapshot of the current
	// generation. It is a no-op when no render target is configured.
	UpdateRenderBuffers() error
	// Cells exposes the current generation as one byte per cell.
	Cells() []uint8
	Stats() Snapshot
	// Timings returns retained per-generation durations in seconds when
	// timing retention was requested, nil otherwise.
	Timings() []float64
	// Close releases the generation buffers.
	Close() error
}

// Factory constructs an unprepared Automaton from options.
type Factory func(opts Options) (Automaton, error)

var backends = map[string]Factory{}

// Register adds a backend factory under the provided name.
func Register(name string, f Factory) {
	if name == "" || f == nil {
		return
	}
	backends[name] = f
}

// Backends exposes the registry of available backend factories.
func Backends() map[string]Factory {
	return backends
}

// Names returns the registered backend names in sorted order.
func Names() []string {
	names := make([]string, 0, len(backends))
	for name := range backends {
		names = append(names, name)
	}
	slices.Sort(names)
	return names
}
