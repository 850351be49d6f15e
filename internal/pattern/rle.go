package pattern

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"par-ca/internal/core"
)

// Load reads and decodes a run-length encoded pattern file.
func Load(path string) (*core.Pattern, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	return DecodeString(string(data))
}

// Decode parses run-length encoded pattern text from r.
func Decode(r io.Reader) (*core.Pattern, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, err
	}
	return DecodeString(string(data))
}

// DecodeString parses run-length encoded pattern text. The format is the
// usual .rle file: # comment lines, an "x = <w>, y = <h>" header with an
// optional rule field, then runs of b (dead), o (alive) and $ (end of row)
// terminated by !. Cells not named before a row ends are dead.
func DecodeString(text string) (*core.Pattern, error) {
	lines := strings.Split(text, "\n")

	i := 0
	for ; i < len(lines); i++ {
		t := strings.TrimSpace(lines[i])
		if t == "" || strings.HasPrefix(t, "#") {
			continue
		}
		break
	}
	if i == len(lines) {
		return nil, &core.MalformedPatternError{Reason: "missing header"}
	}
	p, err := parseHeader(lines[i], i+1)
	if err != nil {
		return nil, err
	}

	d := decoder{p: p}
	for li := i + 1; li < len(lines); li++ {
		lineNo := li + 1
		for _, r := range lines[li] {
			switch {
			case r >= '0' && r <= '9':
				d.run = d.run*10 + int(r-'0')
				d.hasRun = true
			case r == 'b' || r == 'B':
				if err := d.cells(lineNo, false); err != nil {
					return nil, err
				}
			case r == 'o' || r == 'O':
				if err := d.cells(lineNo, true); err != nil {
					return nil, err
				}
			case r == '$':
				n, err := d.take(lineNo)
				if err != nil {
					return nil, err
				}
				d.y += n
				d.x = 0
			case r == '!':
				return p, nil
			case r == ' ' || r == '\t' || r == '\r':
				// insignificant between tokens
			default:
				return nil, &core.MalformedPatternError{
					Line:   lineNo,
					Reason: fmt.Sprintf("unexpected character %q", string(r)),
				}
			}
		}
		if d.hasRun {
			return nil, &core.MalformedPatternError{Line: lineNo, Reason: "run count split across lines"}
		}
	}
	return nil, &core.MalformedPatternError{Line: len(lines), Reason: "missing ! terminator"}
}

type decoder struct {
	p      *core.Pattern
	x, y   int
	run    int
	hasRun bool
}

// take consumes the pending run count, defaulting to one.
func (d *decoder) take(lineNo int) (int, error) {
	n := 1
	if d.hasRun {
		n = d.run
	}
	d.run, d.hasRun = 0, false
	if n == 0 {
		return 0, &core.MalformedPatternError{Line: lineNo, Reason: "zero run count"}
	}
	return n, nil
}

// cells applies a run of dead or alive cells at the cursor.
func (d *decoder) cells(lineNo int, alive bool) error {
	n, err := d.take(lineNo)
	if err != nil {
		return err
	}
	if d.y >= d.p.Height {
		return &core.MalformedPatternError{
			Line:   lineNo,
			Reason: fmt.Sprintf("more rows than the declared height %d", d.p.Height),
		}
	}
	if d.x+n > d.p.Width {
		return &core.MalformedPatternError{
			Line:   lineNo,
			Reason: fmt.Sprintf("row %d wider than the declared width %d", d.y+1, d.p.Width),
		}
	}
	if alive {
		for k := 0; k < n; k++ {
			d.p.Cells = append(d.p.Cells, core.Coord{X: d.x + k, Y: d.y})
		}
	}
	d.x += n
	return nil
}

func parseHeader(line string, lineNo int) (*core.Pattern, error) {
	p := &core.Pattern{}
	sawX, sawY := false, false
	for _, part := range strings.Split(line, ",") {
		kv := strings.SplitN(part, "=", 2)
		if len(kv) != 2 {
			return nil, &core.MalformedPatternError{
				Line:   lineNo,
				Reason: fmt.Sprintf("bad header field %q", strings.TrimSpace(part)),
			}
		}
		key := strings.ToLower(strings.TrimSpace(kv[0]))
		val := strings.TrimSpace(kv[1])
		switch key {
		case "x":
			n, err := strconv.Atoi(val)
			if err != nil || n <= 0 {
				return nil, &core.MalformedPatternError{Line: lineNo, Reason: fmt.Sprintf("bad width %q", val)}
			}
			p.Width = n
			sawX = true
		case "y":
			n, err := strconv.Atoi(val)
			if err != nil || n <= 0 {
				return nil, &core.MalformedPatternError{Line: lineNo, Reason: fmt.Sprintf("bad height %q", val)}
			}
			p.Height = n
			sawY = true
		case "rule":
			if _, err := core.ParseRule(val); err != nil {
				return nil, &core.MalformedPatternError{Line: lineNo, Reason: err.Error()}
			}
			p.Rule = val
		default:
			return nil, &core.MalformedPatternError{Line: lineNo, Reason: fmt.Sprintf("unknown header key %q", key)}
		}
	}
	if !sawX || !sawY {
		return nil, &core.MalformedPatternError{Line: lineNo, Reason: "header must declare x and y"}
	}
	return p, nil
}

// Encode writes a grid as run-length encoded text: the dimension header with
// the rule, then runs wrapped near 70 columns. Trailing dead cells in a row
// and trailing dead rows are omitted, blank rows fold into the next row
// terminator.
func Encode(w io.Writer, cols, rows int, cells []uint8, rule core.Rule) error {
	bw := bufio.NewWriter(w)
	fmt.Fprintf(bw, "x = %d, y = %d, rule = %s\n", cols, rows, rule)

	var line strings.Builder
	emit := func(tok string) {
		if line.Len()+len(tok) > 69 {
			bw.WriteString(line.String())
			bw.WriteByte('\n')
			line.Reset()
		}
		line.WriteString(tok)
	}
	tok := func(n int, tag byte) string {
		if n == 1 {
			return string(tag)
		}
		return strconv.Itoa(n) + string(tag)
	}

	last := -1 // row of the previously emitted content
	for y := 0; y < rows; y++ {
		row := cells[y*cols : (y+1)*cols]
		end := cols
		for end > 0 && row[end-1] == 0 {
			end--
		}
		if end == 0 {
			continue
		}
		switch {
		case last < 0 && y > 0:
			emit(tok(y, '$'))
		case last >= 0:
			emit(tok(y-last, '$'))
		}
		last = y
		for x := 0; x < end; {
			v := row[x]
			n := 1
			for x+n < end && row[x+n] == v {
				n++
			}
			tag := byte('b')
			if v != 0 {
				tag = 'o'
			}
			emit(tok(n, tag))
			x += n
		}
	}
	emit("!")
	bw.WriteString(line.String())
	bw.WriteByte('\n')
	return bw.Flush()
}
