package core

import (
	"slices"
	"testing"
)

func TestOptionsValidate(t *testing.T) {
	good := Options{Rows: 4, Cols: 5, FillProb: 0.5}
	if err := good.Validate(); err != nil {
		t.Fatalf("valid options rejected: %v", err)
	}

	cases := []struct {
		name string
		opts Options
	}{
		{"zero rows", Options{Rows: 0, Cols: 5}},
		{"negative cols", Options{Rows: 4, Cols: -1}},
		{"fill above one", Options{Rows: 4, Cols: 5, FillProb: 1.5}},
		{"fill below zero", Options{Rows: 4, Cols: 5, FillProb: -0.1}},
		{"virtual fill above one", Options{Rows: 4, Cols: 5, VirtualFillProb: 2}},
		{"negative workers", Options{Rows: 4, Cols: 5, Workers: -2}},
		{"short frame", Options{Rows: 4, Cols: 5, Frame: make([]byte, 10)}},
	}
	for _, c := range cases {
		if err := c.opts.Validate(); err == nil {
			t.Fatalf("%s: invalid options accepted", c.name)
		}
	}

	framed := Options{Rows: 4, Cols: 5, Frame: make([]byte, 4*4*5)}
	if err := framed.Validate(); err != nil {
		t.Fatalf("well-sized frame rejected: %v", err)
	}
}

func TestParseAnchor(t *testing.T) {
	for _, s := range []string{"", "center", "Centre", "CENTER"} {
		a, err := ParseAnchor(s)
		if err != nil || a != AnchorCenter {
			t.Fatalf("ParseAnchor(%q) = %v, %v", s, a, err)
		}
	}
	for _, s := range []string{"topleft", "top-left", "TopLeft"} {
		a, err := ParseAnchor(s)
		if err != nil || a != AnchorTopLeft {
			t.Fatalf("ParseAnchor(%q) = %v, %v", s, a, err)
		}
	}
	if _, err := ParseAnchor("bottom"); err == nil {
		t.Fatal("unknown anchor accepted")
	}
}

func TestRegistry(t *testing.T) {
	f := func(Options) (Automaton, error) { return nil, nil }
	Register("zz-test-a", f)
	Register("zz-test-b", f)
	Register("", f)
	Register("zz-test-nil", nil)

	names := Names()
	if !slices.Contains(names, "zz-test-a") || !slices.Contains(names, "zz-test-b") {
		t.Fatalf("registered backends missing from %v", names)
	}
	if slices.Contains(names, "") || slices.Contains(names, "zz-test-nil") {
		t.Fatalf("registry accepted an empty name or nil factory: %v", names)
	}
	if !slices.IsSorted(names) {
		t.Fatalf("names not sorted: %v", names)
	}
	if _, ok := Backends()["zz-test-a"]; !ok {
		t.Fatal("registered factory not reachable through Backends")
	}
}
