package gpu

import (
	"time"
	"unsafe"

	"github.com/LynnColeArt/guda"

	"par-ca/internal/core"
	"par-ca/internal/render"
	"par-ca/pkg/noise"
)

// Bit evolves the grid on the guda runtime with one thread per 64-cell word.
// Neighbor counts for all 64 cells of a word are computed at once with
// bit-plane adders over the nine aligned neighbor words, so each thread
// covers 64 cells with a handful of word loads.
type Bit struct {
	opts core.Options
	size core.Size

	dCur, dNxt guda.DevicePtr
	cur, nxt   *core.PackedGrid

	dense    []uint8 // scratch for Cells
	stats    *core.Stats
	prepared bool
}

func init() {
	core.Register("gpu-bit", NewBit)
}

// NewBit constructs the bit-packed accelerator backend. Device memory is
// allocated by Prepare.
func NewBit(opts core.Options) (core.Automaton, error) {
	return &Bit{opts: opts}, nil
}

// Name identifies the backend.
func (b *Bit) Name() string { return "gpu-bit" }

// Size returns the grid dimensions.
func (b *Bit) Size() core.Size { return b.size }

// Cells expands the current generation into a dense byte view. The scratch
// slice is reused across calls, so the result is only valid until the next
// call.
func (b *Bit) Cells() []uint8 {
	b.cur.Unpack(b.dense)
	return b.dense
}

// Stats returns a copy of the instance counters.
func (b *Bit) Stats() core.Snapshot { return b.stats.Snapshot() }

// Timings returns retained per-generation durations in seconds.
func (b *Bit) Timings() []float64 { return b.stats.Timings() }

// Prepare validates the options, allocates both device word buffers and
// uploads the packed initial state.
func (b *Bit) Prepare() error {
	if core.Radius != 1 {
		return &core.ConfigurationError{Field: "backend", Reason: "gpu-bit supports neighborhood radius 1 only"}
	}
	if err := b.opts.Validate(); err != nil {
		return err
	}
	cells, alive, err := core.InitialCells(b.opts)
	if err != nil {
		return err
	}

	w, h := b.opts.Cols, b.opts.Rows
	b.size = core.Size{W: w, H: h}

	host := core.NewPackedGrid(w, h)
	host.Pack(cells)
	nWords := len(host.Words())
	nBytes := nWords * 8

	if b.dCur, err = devAlloc("gpu-bit: malloc current buffer", nBytes); err != nil {
		return err
	}
	if b.dNxt, err = devAlloc("gpu-bit: malloc next buffer", nBytes); err != nil {
		guda.Free(b.dCur)
		return err
	}
	b.cur = core.WrapWords(w, h, devWords(b.dCur, nWords))
	b.nxt = core.WrapWords(w, h, devWords(b.dNxt, nWords))

	src := unsafe.Pointer(&host.Words()[0])
	if err := guda.Memcpy(b.dCur, src, nBytes, guda.MemcpyHostToDevice); err != nil {
		return &core.AcceleratorError{Op: "gpu-bit: upload initial state", Err: err}
	}

	b.dense = make([]uint8, w*h)
	b.stats = core.NewStats(2*uint64(nBytes), b.opts.KeepTimings)
	b.stats.SetAlive(alive)
	b.prepared = true
	return nil
}

// Evolve advances the grid by one generation.
func (b *Bit) Evolve(collectStats bool) error {
	if !b.prepared {
		panic("gpu-bit: Evolve before Prepare")
	}
	start := time.Now()
	gen := b.stats.Iterations() + 1

	cur, nxt := b.cur, b.nxt
	w, h := b.size.W, b.size.H
	wpr := cur.Stride()
	lastBits := w - (wpr-1)*core.WordBits
	total := wpr * h
	rule := b.opts.Rule
	seed := b.opts.Seed
	vp := b.opts.VirtualFillProb

	kernel := guda.KernelFunc(func(tid guda.ThreadID, args ...interface{}) {
		wi := tid.Global()
		if wi >= total {
			return
		}
		row := wi / wpr
		col := wi % wpr
		up := row - 1
		if up < 0 {
			up = h - 1
		}
		dn := row + 1
		if dn == h {
			dn = 0
		}

		nw, nn, ne := cur.NeighborWords(up, col)
		ww, cc, ee := cur.NeighborWords(row, col)
		sw, ss, se := cur.NeighborWords(dn, col)
		next := core.NextWord(rule, nw, nn, ne, ww, cc, ee, sw, ss, se)

		if vp > 0 {
			bits := core.WordBits
			if col == wpr-1 {
				bits = lastBits
			}
			base := uint64(row*w + col*core.WordBits)
			for k := 0; k < bits; k++ {
				if next>>uint(k)&1 == 0 && noise.Below(seed, gen, base+uint64(k), vp) {
					next |= uint64(1) << uint(k)
				}
			}
		}
		nxt.Words()[wi] = next & cur.RowMask(col)
	})

	grid := guda.Dim3{X: (total + kernelBlock - 1) / kernelBlock, Y: 1, Z: 1}
	block := guda.Dim3{X: kernelBlock, Y: 1, Z: 1}
	if err := launch("gpu-bit: evolve kernel", kernel, grid, block); err != nil {
		return err
	}

	b.dCur, b.dNxt = b.dNxt, b.dCur
	b.cur, b.nxt = b.nxt, b.cur

	var alive int64
	if collectStats {
		alive = b.cur.Popcount()
	}
	b.stats.RecordEvolve(time.Since(start), alive, collectStats)
	return nil
}

// UpdateRenderBuffers writes the current generation's pixels straight into
// the shared frame, one thread per packed word. Headless instances have no
// frame and skip the step.
func (b *Bit) UpdateRenderBuffers() error {
	if !b.prepared {
		panic("gpu-bit: UpdateRenderBuffers before Prepare")
	}
	frame := b.opts.Frame
	if frame == nil {
		return nil
	}
	cur := b.cur
	w, h := b.size.W, b.size.H
	wpr := cur.Stride()
	lastBits := w - (wpr-1)*core.WordBits
	total := wpr * h
	on, off := render.Alive, render.Dead

	kernel := guda.KernelFunc(func(tid guda.ThreadID, args ...interface{}) {
		wi := tid.Global()
		if wi >= total {
			return
		}
		row := wi / wpr
		col := wi % wpr
		word := cur.Word(row, col)
		bits := core.WordBits
		if col == wpr-1 {
			bits = lastBits
		}
		base := row*w + col*core.WordBits
		for k := 0; k < bits; k++ {
			render.PutPixel(frame, base+k, word>>uint(k)&1 != 0, on, off)
		}
	})

	grid := guda.Dim3{X: (total + kernelBlock - 1) / kernelBlock, Y: 1, Z: 1}
	block := guda.Dim3{X: kernelBlock, Y: 1, Z: 1}
	return launch("gpu-bit: pixel kernel", kernel, grid, block)
}

// Close releases the device buffers.
func (b *Bit) Close() error {
	if !b.prepared {
		return nil
	}
	b.prepared = false
	var first error
	free("gpu-bit: free current buffer", b.dCur, &first)
	free("gpu-bit: free next buffer", b.dNxt, &first)
	b.cur, b.nxt = nil, nil
	return first
}
