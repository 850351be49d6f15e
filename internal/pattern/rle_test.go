package pattern

import (
	"errors"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"testing"

	"par-ca/internal/core"
	"par-ca/pkg/noise"
)

const gliderRLE = `#N Glider
#C The smallest spaceship.
x = 3, y = 3, rule = B3/S23
bob$2bo$3o!
`

func TestDecodeGlider(t *testing.T) {
	p, err := DecodeString(gliderRLE)
	if err != nil {
		t.Fatal(err)
	}
	if p.Width != 3 || p.Height != 3 {
		t.Fatalf("bounding box %dx%d, want 3x3", p.Width, p.Height)
	}
	if p.Rule != "B3/S23" {
		t.Fatalf("rule %q, want B3/S23", p.Rule)
	}
	want := []core.Coord{{X: 1, Y: 0}, {X: 2, Y: 1}, {X: 0, Y: 2}, {X: 1, Y: 2}, {X: 2, Y: 2}}
	if !slices.Equal(p.Cells, want) {
		t.Fatalf("cells = %v, want %v", p.Cells, want)
	}
}

func TestDecodeBlinker(t *testing.T) {
	p, err := DecodeString("x = 3, y = 1\n3o!\n")
	if err != nil {
		t.Fatal(err)
	}
	if p.Rule != "" {
		t.Fatalf("rule %q on a header without one", p.Rule)
	}
	want := []core.Coord{{X: 0, Y: 0}, {X: 1, Y: 0}, {X: 2, Y: 0}}
	if !slices.Equal(p.Cells, want) {
		t.Fatalf("cells = %v, want %v", p.Cells, want)
	}
}

func TestDecodeBlankRowRun(t *testing.T) {
	p, err := DecodeString("x = 1, y = 4\no3$o!")
	if err != nil {
		t.Fatal(err)
	}
	want := []core.Coord{{X: 0, Y: 0}, {X: 0, Y: 3}}
	if !slices.Equal(p.Cells, want) {
		t.Fatalf("cells = %v, want %v", p.Cells, want)
	}
}

func TestDecodeStopsAtTerminator(t *testing.T) {
	p, err := DecodeString("x = 1, y = 1\no!\ngarbage after the terminator\n")
	if err != nil {
		t.Fatal(err)
	}
	if len(p.Cells) != 1 {
		t.Fatalf("cells = %v, want the single live cell", p.Cells)
	}
}

func TestDecodeMalformed(t *testing.T) {
	cases := []struct {
		name string
		text string
	}{
		{"empty input", ""},
		{"comments only", "#N nothing\n#C here\n"},
		{"header missing y", "x = 3\no!"},
		{"header bad width", "x = a, y = 3\no!"},
		{"header zero height", "x = 3, y = 0\no!"},
		{"header unknown key", "x = 3, y = 3, colour = red\no!"},
		{"header bad rule", "x = 3, y = 3, rule = B9/S2\no!"},
		{"header junk field", "x = 3, y = 3, nonsense\no!"},
		{"row too wide", "x = 3, y = 2\n4o!"},
		{"too many rows", "x = 3, y = 1\no$o!"},
		{"unexpected character", "x = 3, y = 3\nqo!"},
		{"missing terminator", "x = 3, y = 3\nooo"},
		{"run split across lines", "x = 3, y = 3\n2\noo!"},
		{"zero run count", "x = 3, y = 3\n0o!"},
	}
	for _, c := range cases {
		_, err := DecodeString(c.text)
		if err == nil {
			t.Fatalf("%s: accepted", c.name)
		}
		var perr *core.MalformedPatternError
		if !errors.As(err, &perr) {
			t.Fatalf("%s: want MalformedPatternError, got %T: %v", c.name, err, err)
		}
	}
}

func TestDecodeReportsBodyLine(t *testing.T) {
	_, err := DecodeString("#C comment\nx = 3, y = 3\nbob\nq!")
	var perr *core.MalformedPatternError
	if !errors.As(err, &perr) {
		t.Fatalf("want MalformedPatternError, got %v", err)
	}
	if perr.Line != 4 {
		t.Fatalf("error reports line %d, want 4", perr.Line)
	}
}

func TestEncodeDecodeRoundTrip(t *testing.T) {
	const cols, rows = 100, 8
	cells := make([]uint8, cols*rows)
	for i := range cells {
		if noise.Below(31, 0, uint64(i), 0.5) {
			cells[i] = 1
		}
	}
	// A live first and last cell pins the bounding box to the full grid.
	cells[0] = 1
	cells[len(cells)-1] = 1

	var buf strings.Builder
	if err := Encode(&buf, cols, rows, cells, core.DefaultRule); err != nil {
		t.Fatal(err)
	}
	for _, line := range strings.Split(buf.String(), "\n") {
		if len(line) > 70 {
			t.Fatalf("encoded line longer than 70 columns: %q", line)
		}
	}

	p, err := DecodeString(buf.String())
	if err != nil {
		t.Fatalf("decoding our own output: %v\n%s", err, buf.String())
	}
	if p.Width != cols || p.Height != rows {
		t.Fatalf("bounding box %dx%d, want %dx%d", p.Width, p.Height, cols, rows)
	}
	if p.Rule != "B3/S23" {
		t.Fatalf("rule %q, want B3/S23", p.Rule)
	}

	back := make([]uint8, cols*rows)
	for _, c := range p.Cells {
		back[c.Y*cols+c.X] = 1
	}
	if !slices.Equal(cells, back) {
		t.Fatal("round trip changed the cells")
	}
}

func TestEncodeSkipsTrailingDead(t *testing.T) {
	// 4x3 with a single live cell at (1,0).
	cells := make([]uint8, 12)
	cells[1] = 1
	var buf strings.Builder
	if err := Encode(&buf, 4, 3, cells, core.DefaultRule); err != nil {
		t.Fatal(err)
	}
	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	if lines[len(lines)-1] != "bo!" {
		t.Fatalf("body = %q, want bo!", lines[len(lines)-1])
	}
}

func TestLoadFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "glider.rle")
	if err := os.WriteFile(path, []byte(gliderRLE), 0o644); err != nil {
		t.Fatal(err)
	}
	p, err := Load(path)
	if err != nil {
		t.Fatal(err)
	}
	if len(p.Cells) != 5 {
		t.Fatalf("loaded %d cells, want 5", len(p.Cells))
	}
	if _, err := Load(filepath.Join(t.TempDir(), "missing.rle")); err == nil {
		t.Fatal("missing file loaded")
	}
}
