package grid

import (
	"errors"
	"fmt"
	"math"
	"strings"
)

// Sizing constants for repeated charts.
const (
	// MinArea is the cell count a repeated chart aims to fill.
	MinArea = 10000
	// ChartSide is the side of a MinArea square chart.
	ChartSide = 100
	// MinIterations is the number of full copies a repeated chart must hold.
	MinIterations = 2
)

var (
	// ErrEmptyBinary indicates Layout was called without any bits.
	ErrEmptyBinary = errors.New("grid: empty binary string")
	// ErrNotBinary indicates the input contains characters other than '0' and '1'.
	ErrNotBinary = errors.New("grid: binary string may only contain 0 and 1")
)

// Policy names the sizing rule that produced a Grid.
type Policy string

const (
	PolicySingle       Policy = "single"
	PolicyRepeat100    Policy = "repeat-100"
	PolicyRepeatScaled Policy = "repeat-scaled"
)

// Grid is a rows×cols chart of '0' and '1' cells.
type Grid struct {
	Rows       int      `json:"rows"`
	Cols       int      `json:"cols"`
	Policy     Policy   `json:"policy"`
	Iterations int      `json:"iterations"`
	Cells      []string `json:"cells"` // one string of Cols bits per row, top row first
}

// Layout sizes a chart for bits and fills it. With repeat unset the bits
// appear once, zero padded; with repeat set they are tiled to fill the
// chart. See the package documentation for the sizing rules.
func Layout(bits string, repeat bool) (*Grid, error) {
	n := len(bits)
	if n == 0 {
		return nil, ErrEmptyBinary
	}
	if i := strings.IndexFunc(bits, func(r rune) bool { return r != '0' && r != '1' }); i >= 0 {
		return nil, fmt.Errorf("%w: offset %d", ErrNotBinary, i)
	}

	g := &Grid{}
	var fill string
	if !repeat {
		g.Policy = PolicySingle
		g.Cols = ceilSqrt(n)
		g.Rows = (n + g.Cols - 1) / g.Cols
		g.Iterations = 1
		fill = bits + strings.Repeat("0", g.Rows*g.Cols-n)
	} else {
		side := ChartSide
		g.Policy = PolicyRepeat100
		if MinArea/n < MinIterations {
			side = ceilSqrt(n * MinIterations)
			g.Policy = PolicyRepeatScaled
		}
		g.Rows, g.Cols = side, side
		area := side * side
		g.Iterations = area / n
		fill = strings.Repeat(bits, (area+n-1)/n)[:area]
	}

	g.Cells = make([]string, g.Rows)
	for r := range g.Cells {
		g.Cells[r] = fill[r*g.Cols : (r+1)*g.Cols]
	}
	return g, nil
}

// ceilSqrt returns the smallest c with c*c >= n.
func ceilSqrt(n int) int {
	c := int(math.Sqrt(float64(n)))
	for c*c < n {
		c++
	}
	for c > 1 && (c-1)*(c-1) >= n {
		c--
	}
	return c
}

// At returns the cell at row, col (row 0 is the top row). It returns 0 for
// coordinates outside the chart.
func (g *Grid) At(row, col int) byte {
	if row < 0 || row >= g.Rows || col < 0 || col >= g.Cols {
		return 0
	}
	return g.Cells[row][col]
}

// Count returns the number of '1' and '0' cells.
func (g *Grid) Count() (ones, zeros int) {
	for _, row := range g.Cells {
		n := strings.Count(row, "1")
		ones += n
		zeros += len(row) - n
	}
	return ones, zeros
}

// String renders the chart one row per line, top row first.
func (g *Grid) String() string {
	return strings.Join(g.Cells, "\n")
}

// Side of the fabric a row is worked on.
type Side string

const (
	RightSide Side = "RS"
	WrongSide Side = "WS"
)

// KnitRow is one chart row in working order.
type KnitRow struct {
	Number   int    `json:"number"`
	Side     Side   `json:"side"`
	Stitches string `json:"stitches"` // cells in the order they are worked
}

// KnitRows lists the rows bottom first. Right-side rows are read right to
// left, wrong-side rows left to right.
func (g *Grid) KnitRows() []KnitRow {
	out := make([]KnitRow, 0, g.Rows)
	for i := g.Rows - 1; i >= 0; i-- {
		number := g.Rows - i
		row := KnitRow{Number: number, Side: WrongSide, Stitches: g.Cells[i]}
		if number%2 == 1 {
			row.Side = RightSide
			row.Stitches = reverse(g.Cells[i])
		}
		out = append(out, row)
	}
	return out
}

func reverse(s string) string {
	b := []byte(s)
	for i, j := 0, len(b)-1; i < j; i, j = i+1, j-1 {
		b[i], b[j] = b[j], b[i]
	}
	return string(b)
}
