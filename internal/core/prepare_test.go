package core

import (
	"errors"
	"slices"
	"testing"
)

func TestInitialCellsRandomFillDeterministic(t *testing.T) {
	opts := Options{Rows: 40, Cols: 30, Seed: 1234, FillProb: 0.3}

	a, aliveA, err := InitialCells(opts)
	if err != nil {
		t.Fatal(err)
	}
	b, aliveB, err := InitialCells(opts)
	if err != nil {
		t.Fatal(err)
	}
	if !slices.Equal(a, b) {
		t.Fatal("same seed produced different initial states")
	}
	if aliveA != aliveB {
		t.Fatalf("same seed produced alive counts %d and %d", aliveA, aliveB)
	}

	var counted int64
	for _, c := range a {
		if c != 0 {
			counted++
		}
	}
	if counted != aliveA {
		t.Fatalf("reported %d alive, grid holds %d", aliveA, counted)
	}
}

func TestInitialCellsFillExtremes(t *testing.T) {
	empty, alive, err := InitialCells(Options{Rows: 10, Cols: 10, Seed: 5, FillProb: 0})
	if err != nil {
		t.Fatal(err)
	}
	if alive != 0 {
		t.Fatalf("p=0 reported %d alive", alive)
	}
	for i, c := range empty {
		if c != 0 {
			t.Fatalf("p=0 left cell %d alive", i)
		}
	}

	full, alive, err := InitialCells(Options{Rows: 10, Cols: 10, Seed: 5, FillProb: 1})
	if err != nil {
		t.Fatal(err)
	}
	if alive != 100 {
		t.Fatalf("p=1 reported %d alive, want 100", alive)
	}
	for i, c := range full {
		if c == 0 {
			t.Fatalf("p=1 left cell %d dead", i)
		}
	}
}

func TestInitialCellsSeedMatters(t *testing.T) {
	a, _, err := InitialCells(Options{Rows: 40, Cols: 30, Seed: 1, FillProb: 0.3})
	if err != nil {
		t.Fatal(err)
	}
	b, _, err := InitialCells(Options{Rows: 40, Cols: 30, Seed: 2, FillProb: 0.3})
	if err != nil {
		t.Fatal(err)
	}
	if slices.Equal(a, b) {
		t.Fatal("different seeds produced identical initial states")
	}
}

func TestInitialCellsPatternCentered(t *testing.T) {
	p := &Pattern{Width: 3, Height: 1, Cells: []Coord{{X: 0, Y: 0}, {X: 1, Y: 0}, {X: 2, Y: 0}}}
	cells, alive, err := InitialCells(Options{Rows: 5, Cols: 7, Pattern: p, Anchor: AnchorCenter})
	if err != nil {
		t.Fatal(err)
	}
	if alive != 3 {
		t.Fatalf("placed %d cells, want 3", alive)
	}
	// (7-3)/2 = 2, (5-1)/2 = 2
	for _, want := range []Coord{{X: 2, Y: 2}, {X: 3, Y: 2}, {X: 4, Y: 2}} {
		if cells[want.Y*7+want.X] != 1 {
			t.Fatalf("expected live cell at (%d,%d)", want.X, want.Y)
		}
	}
	var counted int
	for _, c := range cells {
		if c != 0 {
			counted++
		}
	}
	if counted != 3 {
		t.Fatalf("grid holds %d live cells, want 3", counted)
	}
}

func TestInitialCellsPatternTopLeft(t *testing.T) {
	p := &Pattern{Width: 2, Height: 2, Cells: []Coord{{X: 0, Y: 0}, {X: 1, Y: 1}}}
	cells, alive, err := InitialCells(Options{Rows: 6, Cols: 6, Pattern: p, Anchor: AnchorTopLeft})
	if err != nil {
		t.Fatal(err)
	}
	if alive != 2 {
		t.Fatalf("placed %d cells, want 2", alive)
	}
	if cells[0] != 1 || cells[1*6+1] != 1 {
		t.Fatal("pattern not at the origin")
	}
}

func TestInitialCellsPatternDoesNotFit(t *testing.T) {
	p := &Pattern{Width: 9, Height: 2, Cells: []Coord{{X: 0, Y: 0}}}
	_, _, err := InitialCells(Options{Rows: 8, Cols: 8, Pattern: p})
	if err == nil {
		t.Fatal("oversized pattern accepted")
	}
	var cerr *ConfigurationError
	if !errors.As(err, &cerr) {
		t.Fatalf("want ConfigurationError, got %T: %v", err, err)
	}
	if cerr.Field != "pattern" {
		t.Fatalf("error names field %q, want pattern", cerr.Field)
	}
}

func TestInitialCellsPatternIgnoresFillProb(t *testing.T) {
	p := &Pattern{Width: 1, Height: 1, Cells: []Coord{{X: 0, Y: 0}}}
	cells, alive, err := InitialCells(Options{Rows: 4, Cols: 4, Seed: 9, FillProb: 1, Pattern: p, Anchor: AnchorTopLeft})
	if err != nil {
		t.Fatal(err)
	}
	if alive != 1 {
		t.Fatalf("alive = %d, want the pattern's single cell", alive)
	}
	var counted int
	for _, c := range cells {
		if c != 0 {
			counted++
		}
	}
	if counted != 1 {
		t.Fatalf("random fill ran despite a pattern, %d cells live", counted)
	}
}
