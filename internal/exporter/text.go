package exporter

import (
	"bytes"
	"fmt"
	"strings"
)

// EncodeText renders a printable chart: a header, the grid drawn with
// '#' for purl and '.' for knit (top row first, numbered as knitted), and
// the row-by-row instructions bottom up.
func EncodeText(req Request) ([]byte, error) {
	c, g := req.Chart, req.Grid
	s := BuildSummary(g)

	var buf bytes.Buffer
	title := c.Label
	if title == "" {
		title = "Knitted cipher chart"
	}
	fmt.Fprintf(&buf, "%s\n", title)
	fmt.Fprintf(&buf, "Cipher: %s (%s)\n", c.Algorithm, c.Code)
	fmt.Fprintf(&buf, "Size: %d rows x %d stitches, %s", s.Rows, s.Cols, s.Policy)
	if s.Iterations > 1 {
		fmt.Fprintf(&buf, ", %d repeats", s.Iterations)
	}
	buf.WriteString("\n")
	fmt.Fprintf(&buf, "Stitches: %d knit (.), %d purl (#)\n\n", s.Knit, s.Purl)

	width := len(fmt.Sprint(g.Rows))
	for r, cells := range g.Cells {
		drawn := strings.Map(func(r rune) rune {
			if r == PurlCell {
				return '#'
			}
			return '.'
		}, cells)
		fmt.Fprintf(&buf, "%*d %s\n", width, g.Rows-r, drawn)
	}

	buf.WriteString("\n")
	for _, row := range g.KnitRows() {
		buf.WriteString(Instruction(row))
		buf.WriteString("\n")
	}
	return buf.Bytes(), nil
}
