package core

import "math/bits"

// WordBits is the number of cells stored per packed word.
const WordBits = 64

// PackedGrid stores one cell per bit in row-major order, 64 cells per word
// with the lowest column in the least significant bit. Unused high bits of a
// ragged last word are always zero; every writer maintains that invariant.
type PackedGrid struct {
	W, H  int
	wpr   int    // words per row
	top   uint   // highest valid bit index in the last word of a row
	tail  uint64 // valid-bit mask for the last word of a row
	words []uint64
}

// WordsPerRow returns the packed row stride in words for the given width.
func WordsPerRow(cols int) int { return (cols + WordBits - 1) / WordBits }

// TailMask returns the valid-bit mask for the last word in a row.
func TailMask(cols int) uint64 {
	r := cols % WordBits
	if r == 0 {
		return ^uint64(0)
	}
	return uint64(1)<<r - 1
}

// NewPackedGrid allocates a zeroed packed grid.
func NewPackedGrid(w, h int) *PackedGrid {
	if w <= 0 {
		w = 1
	}
	if h <= 0 {
		h = 1
	}
	return wrapPacked(w, h, make([]uint64, WordsPerRow(w)*h))
}

// WrapWords adopts an existing word slice without copying, for example a
// device memory view. len(words) must be WordsPerRow(w)*h.
func WrapWords(w, h int, words []uint64) *PackedGrid {
	return wrapPacked(w, h, words)
}

func wrapPacked(w, h int, words []uint64) *PackedGrid {
	top := uint(WordBits - 1)
	if r := w % WordBits; r != 0 {
		top = uint(r) - 1
	}
	return &PackedGrid{W: w, H: h, wpr: WordsPerRow(w), top: top, tail: TailMask(w), words: words}
}

// Words exposes the backing slice.
func (g *PackedGrid) Words() []uint64 { return g.words }

// Stride returns the row stride in words.
func (g *PackedGrid) Stride() int { return g.wpr }

// RowMask returns the valid-bit mask for word index wi within a row.
func (g *PackedGrid) RowMask(wi int) uint64 {
	if wi == g.wpr-1 {
		return g.tail
	}
	return ^uint64(0)
}

// Word returns the packed word at word index wi of the given row.
func (g *PackedGrid) Word(row, wi int) uint64 { return g.words[row*g.wpr+wi] }

// Get returns the cell at (x, y).
func (g *PackedGrid) Get(x, y int) uint8 {
	w := g.words[y*g.wpr+x/WordBits]
	return uint8(w >> (uint(x) % WordBits) & 1)
}

// Set writes the cell at (x, y).
func (g *PackedGrid) Set(x, y int, v uint8) {
	i := y*g.wpr + x/WordBits
	bit := uint64(1) << (uint(x) % WordBits)
	if v != 0 {
		g.words[i] |= bit
	} else {
		g.words[i] &^= bit
	}
}

// Pack overwrites the grid from a dense cell slice of length W*H.
func (g *PackedGrid) Pack(cells []uint8) {
	for i := range g.words {
		g.words[i] = 0
	}
	for y := 0; y < g.H; y++ {
		row := y * g.W
		base := y * g.wpr
		for x := 0; x < g.W; x++ {
			if cells[row+x] != 0 {
				g.words[base+x/WordBits] |= uint64(1) << (uint(x) % WordBits)
			}
		}
	}
}

// Unpack expands the grid into a dense cell slice of length W*H.
func (g *PackedGrid) Unpack(cells []uint8) {
	for y := 0; y < g.H; y++ {
		row := y * g.W
		base := y * g.wpr
		for x := 0; x < g.W; x++ {
			cells[row+x] = uint8(g.words[base+x/WordBits] >> (uint(x) % WordBits) & 1)
		}
	}
}

// Popcount returns the number of live cells.
func (g *PackedGrid) Popcount() int64 {
	var n int64
	for _, w := range g.words {
		n += int64(bits.OnesCount64(w))
	}
	return n
}

// NeighborWords returns the center word at (row, wi) together with the west
// and east neighbor planes: bit k of west holds the left neighbor of the
// cell at bit k, bit k of east its right neighbor. Horizontal toroidal wrap
// and ragged row tails are resolved here so kernels never special-case the
// grid edge.
func (g *PackedGrid) NeighborWords(row, wi int) (west, center, east uint64) {
	base := row * g.wpr
	center = g.words[base+wi]

	li := wi - 1
	if li < 0 {
		li = g.wpr - 1
	}
	ri := wi + 1
	if ri == g.wpr {
		ri = 0
	}
	left := g.words[base+li]
	right := g.words[base+ri]

	// carry into bit 0 comes from the highest valid bit of the left word
	lTop := uint(WordBits - 1)
	if li == g.wpr-1 {
		lTop = g.top
	}
	west = (center<<1 | left>>lTop&1) & g.RowMask(wi)

	// carry from the right word's bit 0 lands on this word's highest valid bit
	cTop := uint(WordBits - 1)
	if wi == g.wpr-1 {
		cTop = g.top
	}
	east = (center>>1 | (right&1)<<cTop) & g.RowMask(wi)
	return west, center, east
}

// NextWord applies the rule to 64 cells at once using bit-plane adders. The
// nine inputs are the aligned neighbor planes produced by NeighborWords for
// the rows above, at and below the center word; c is the center plane.
// Invalid high bits of a ragged word may come back set, so callers mask the
// result with RowMask before storing it.
func NextWord(r Rule, nw, n, ne, w, c, e, sw, s, se uint64) uint64 {
	// neighbor count per bit as planes: count = ones + 2*twos + 4*fours + 8*eights
	t1, t2 := add3(nw, n, ne)
	b1, b2 := add3(sw, s, se)
	m1, m2 := w^e, w&e

	s1 := t1 ^ m1
	c1 := t1 & m1
	ones := s1 ^ b1
	tfo := c1 | s1&b1 // weight-2 carries out of the ones column

	x := t2 ^ m2
	cx := t2 & m2
	y := b2 ^ tfo
	cy := b2 & tfo
	twos := x ^ y
	cz := x & y
	fours := cx ^ cy ^ cz
	eights := cx & cy

	var next uint64
	for count := 0; count <= MaxNeighbors; count++ {
		bit := uint16(1) << uint(count)
		if r.Birth&bit == 0 && r.Survive&bit == 0 {
			continue
		}
		eq := eqCount(count, ones, twos, fours, eights)
		if r.Birth&bit != 0 {
			next |= eq &^ c
		}
		if r.Survive&bit != 0 {
			next |= eq & c
		}
	}
	return next
}

// add3 sums three one-bit planes into ones and twos planes.
func add3(a, b, c uint64) (ones, twos uint64) {
	s := a ^ b
	ones = s ^ c
	twos = a&b | s&c
	return ones, twos
}

// eqCount selects the bits whose neighbor count equals n.
func eqCount(n int, ones, twos, fours, eights uint64) uint64 {
	p := ones
	if n&1 == 0 {
		p = ^ones
	}
	if n&2 != 0 {
		p &= twos
	} else {
		p &= ^twos
	}
	if n&4 != 0 {
		p &= fours
	} else {
		p &= ^fours
	}
	if n&8 != 0 {
		p &= eights
	} else {
		p &= ^eights
	}
	return p
}
