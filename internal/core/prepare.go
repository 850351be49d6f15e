package core

import (
	"fmt"

	"par-ca/pkg/noise"
)

// Coord is a single cell position within a pattern's bounding box.
type Coord struct {
	X int
	Y int
}

// Pattern is a decoded initial-state description: the live cells of a
// bounding box that Prepare places onto the grid once and does not retain.
type Pattern struct {
	Width  int
	Height int
	// Rule is the rule string from the pattern header, empty when absent.
	Rule  string
	Cells []Coord
}

// InitialCells computes generation zero for the given options. Every backend
// seeds from this one routine, so differing storage layouts still start from
// bit-identical state. The returned count is the number of live cells.
func InitialCells(opts Options) ([]uint8, int64, error) {
	cells := make([]uint8, opts.Rows*opts.Cols)

	if opts.Pattern == nil {
		var alive int64
		for i := range cells {
			if noise.Below(opts.Seed, 0, uint64(i), opts.FillProb) {
				cells[i] = 1
				alive++
			}
		}
		return cells, alive, nil
	}

	p := opts.Pattern
	if p.Width > opts.Cols || p.Height > opts.Rows {
		return nil, 0, &ConfigurationError{
			Field:  "pattern",
			Reason: fmt.Sprintf("%dx%d does not fit a %dx%d grid", p.Width, p.Height, opts.Cols, opts.Rows),
		}
	}

	ox, oy := 0, 0
	if opts.Anchor == AnchorCenter {
		ox = (opts.Cols - p.Width) / 2
		oy = (opts.Rows - p.Height) / 2
	}
	var alive int64
	for _, c := range p.Cells {
		idx := (oy+c.Y)*opts.Cols + ox + c.X
		if cells[idx] == 0 {
			cells[idx] = 1
			alive++
		}
	}
	return cells, alive, nil
}
