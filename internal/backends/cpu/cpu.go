package cpu

import (
	"runtime"
	"time"

	"golang.org/x/sync/errgroup"

	"par-ca/internal/core"
	"par-ca/pkg/noise"
)

// Backend evolves the grid on host cores. Each generation the rows are split
// into contiguous bands, one goroutine per band; workers read the shared
// current buffer and write disjoint rows of the next buffer, so no locks are
// needed. A single join ends the generation before the buffer swap.
type Backend struct {
	opts core.Options
	size core.Size

	cur *core.ByteGrid
	nxt *core.ByteGrid

	workers int
	counts  []int64

	stats    *core.Stats
	prepared bool
}

func init() {
	core.Register("cpu", New)
}

// New constructs the host backend. Buffers are allocated by Prepare.
func New(opts core.Options) (core.Automaton, error) {
	return &Backend{opts: opts}, nil
}

// Name identifies the backend.
func (b *Backend) Name() string { return "cpu" }

// Size returns the grid dimensions.
func (b *Backend) Size() core.Size { return b.size }

// Cells exposes the current generation.
func (b *Backend) Cells() []uint8 { return b.cur.Cells() }

// Stats returns a copy of the instance counters.
func (b *Backend) Stats() core.Snapshot { return b.stats.Snapshot() }

// Timings returns retained per-generation durations in seconds.
func (b *Backend) Timings() []float64 { return b.stats.Timings() }

// Prepare validates the options, allocates both generation buffers and
// applies the initial state.
func (b *Backend) Prepare() error {
	if err := b.opts.Validate(); err != nil {
		return err
	}
	cells, alive, err := core.InitialCells(b.opts)
	if err != nil {
		return err
	}

	w, h := b.opts.Cols, b.opts.Rows
	b.size = core.Size{W: w, H: h}
	b.cur = core.WrapCells(w, h, cells)
	b.nxt = core.NewByteGrid(w, h)

	b.workers = b.opts.Workers
	if b.workers <= 0 {
		b.workers = runtime.NumCPU()
	}
	if b.workers > h {
		b.workers = h
	}
	b.counts = make([]int64, b.workers)

	b.stats = core.NewStats(2*uint64(len(cells)), b.opts.KeepTimings)
	b.stats.SetAlive(alive)
	b.prepared = true
	return nil
}

// Evolve advances the grid by one generation.
func (b *Backend) Evolve(collectStats bool) error {
	if !b.prepared {
		panic("cpu: Evolve before Prepare")
	}
	start := time.Now()
	gen := b.stats.Iterations() + 1

	h := b.size.H
	band := (h + b.workers - 1) / b.workers
	var g errgroup.Group
	for i := 0; i < b.workers; i++ {
		i := i
		y0 := i * band
		y1 := min(y0+band, h)
		if y0 >= y1 {
			b.counts[i] = 0
			continue
		}
		g.Go(func() error {
			b.counts[i] = b.evolveRows(y0, y1, gen, collectStats)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return err
	}
	b.cur, b.nxt = b.nxt, b.cur

	var alive int64
	if collectStats {
		for _, c := range b.counts {
			alive += c
		}
	}
	b.stats.RecordEvolve(time.Since(start), alive, collectStats)
	return nil
}

// evolveRows computes next-generation rows [y0, y1) and returns the band's
// live-cell count when counting is requested.
func (b *Backend) evolveRows(y0, y1 int, gen uint64, count bool) int64 {
	w, h := b.size.W, b.size.H
	cur := b.cur.Cells()
	nxt := b.nxt.Cells()
	rule := b.opts.Rule
	seed := b.opts.Seed
	vp := b.opts.VirtualFillProb

	var alive int64
	for y := y0; y < y1; y++ {
		for x := 0; x < w; x++ {
			neighbors := 0
			for dy := -core.Radius; dy <= core.Radius; dy++ {
				for dx := -core.Radius; dx <= core.Radius; dx++ {
					if dx == 0 && dy == 0 {
						continue
					}
					nx := (x + dx + w) % w
					ny := (y + dy + h) % h
					if cur[ny*w+nx] != 0 {
						neighbors++
					}
				}
			}
			idx := y*w + x
			state := rule.Next(cur[idx] != 0, neighbors)
			if state == 0 && noise.Below(seed, gen, uint64(idx), vp) {
				state = 1
			}
			nxt[idx] = state
			if count && state != 0 {
				alive++
			}
		}
	}
	return alive
}

// UpdateRenderBuffers invokes the render hook so the display can pull the
// current cells. Headless instances have no hook and skip the step.
func (b *Backend) UpdateRenderBuffers() error {
	if !b.prepared {
		panic("cpu: UpdateRenderBuffers before Prepare")
	}
	if b.opts.RenderHook != nil {
		b.opts.RenderHook()
	}
	return nil
}

// Close releases the generation buffers.
func (b *Backend) Close() error {
	b.cur, b.nxt = nil, nil
	b.prepared = false
	return nil
}
