package gpu

import (
	"time"

	"github.com/LynnColeArt/guda"

	"par-ca/internal/core"
	"par-ca/internal/render"
	"par-ca/pkg/noise"
)

// Dense evolves the grid on the guda runtime with one thread per cell and
// one byte of device memory per cell. Each generation is a single 2D kernel
// launch over the current buffer, a synchronize, then the buffer swap.
type Dense struct {
	opts core.Options
	size core.Size

	dCur, dNxt guda.DevicePtr
	cur, nxt   []uint8

	stats    *core.Stats
	prepared bool
}

func init() {
	core.Register("gpu", NewDense)
}

// NewDense constructs the dense accelerator backend. Device memory is
// allocated by Prepare.
func NewDense(opts core.Options) (core.Automaton, error) {
	return &Dense{opts: opts}, nil
}

// Name identifies the backend.
func (d *Dense) Name() string { return "gpu" }

// Size returns the grid dimensions.
func (d *Dense) Size() core.Size { return d.size }

// Cells exposes the current generation. Device memory is unified, so the
// view reads in place without a transfer.
func (d *Dense) Cells() []uint8 { return d.cur }

// Stats returns a copy of the instance counters.
func (d *Dense) Stats() core.Snapshot { return d.stats.Snapshot() }

// Timings returns retained per-generation durations in seconds.
func (d *Dense) Timings() []float64 { return d.stats.Timings() }

// Prepare validates the options, allocates both device buffers and uploads
// the initial state.
func (d *Dense) Prepare() error {
	if err := d.opts.Validate(); err != nil {
		return err
	}
	cells, alive, err := core.InitialCells(d.opts)
	if err != nil {
		return err
	}

	w, h := d.opts.Cols, d.opts.Rows
	d.size = core.Size{W: w, H: h}
	n := w * h

	if d.dCur, err = devAlloc("gpu: malloc current buffer", n); err != nil {
		return err
	}
	if d.dNxt, err = devAlloc("gpu: malloc next buffer", n); err != nil {
		guda.Free(d.dCur)
		return err
	}
	d.cur = d.dCur.Byte()
	d.nxt = d.dNxt.Byte()

	if err := guda.Memcpy(d.dCur, cells, n, guda.MemcpyHostToDevice); err != nil {
		return &core.AcceleratorError{Op: "gpu: upload initial state", Err: err}
	}

	d.stats = core.NewStats(2*uint64(n), d.opts.KeepTimings)
	d.stats.SetAlive(alive)
	d.prepared = true
	return nil
}

// Evolve advances the grid by one generation.
func (d *Dense) Evolve(collectStats bool) error {
	if !d.prepared {
		panic("gpu: Evolve before Prepare")
	}
	start := time.Now()
	gen := d.stats.Iterations() + 1

	w, h := d.size.W, d.size.H
	cur, nxt := d.cur, d.nxt
	rule := d.opts.Rule
	seed := d.opts.Seed
	vp := d.opts.VirtualFillProb

	kernel := guda.KernelFunc(func(tid guda.ThreadID, args ...interface{}) {
		x := tid.GlobalX()
		y := tid.GlobalY()
		if x >= w || y >= h {
			return
		}
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
	})

	grid := guda.Dim3{X: (w + 15) / 16, Y: (h + 15) / 16, Z: 1}
	block := guda.Dim3{X: 16, Y: 16, Z: 1}
	if err := launch("gpu: evolve kernel", kernel, grid, block); err != nil {
		return err
	}

	d.dCur, d.dNxt = d.dNxt, d.dCur
	d.cur, d.nxt = d.nxt, d.cur

	var alive int64
	if collectStats {
		for _, c := range d.cur {
			if c != 0 {
				alive++
			}
		}
	}
	d.stats.RecordEvolve(time.Since(start), alive, collectStats)
	return nil
}

// UpdateRenderBuffers writes the current generation's pixels straight into
// the shared frame, one thread per cell. Headless instances have no frame
// and skip the step.
func (d *Dense) UpdateRenderBuffers() error {
	if !d.prepared {
		panic("gpu: UpdateRenderBuffers before Prepare")
	}
	frame := d.opts.Frame
	if frame == nil {
		return nil
	}
	cur := d.cur
	n := len(cur)
	on, off := render.Alive, render.Dead

	kernel := guda.KernelFunc(func(tid guda.ThreadID, args ...interface{}) {
		idx := tid.Global()
		if idx >= n {
			return
		}
		render.PutPixel(frame, idx, cur[idx] != 0, on, off)
	})

	grid := guda.Dim3{X: (n + kernelBlock - 1) / kernelBlock, Y: 1, Z: 1}
	block := guda.Dim3{X: kernelBlock, Y: 1, Z: 1}
	return launch("gpu: pixel kernel", kernel, grid, block)
}

// Close releases the device buffers.
func (d *Dense) Close() error {
	if !d.prepared {
		return nil
	}
	d.prepared = false
	var first error
	free("gpu: free current buffer", d.dCur, &first)
	free("gpu: free next buffer", d.dNxt, &first)
	d.cur, d.nxt = nil, nil
	return first
}
