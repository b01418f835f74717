package exporter

import (
	"fmt"
	"strings"

	"github.com/RowanDark/knitcipher/internal/grid"
)

// Stitch symbols. A '0' cell is a knit stitch in the main colour and a
// '1' cell is a purl stitch in the contrast colour.
const (
	KnitCell = '0'
	PurlCell = '1'
)

// Summary aggregates stitch counts for a chart.
type Summary struct {
	Rows       int         `json:"rows"`
	Cols       int         `json:"cols"`
	Stitches   int         `json:"stitches"`
	Knit       int         `json:"knit"`
	Purl       int         `json:"purl"`
	Policy     grid.Policy `json:"policy"`
	Iterations int         `json:"iterations"`
}

// BuildSummary derives aggregate counts for g.
func BuildSummary(g *grid.Grid) Summary {
	purl, knit := g.Count()
	return Summary{
		Rows:       g.Rows,
		Cols:       g.Cols,
		Stitches:   g.Rows * g.Cols,
		Knit:       knit,
		Purl:       purl,
		Policy:     g.Policy,
		Iterations: g.Iterations,
	}
}

// Instruction renders a worked row as run-length stitch instructions,
// for example "Row 1 (RS): k3, p2, k1".
func Instruction(row grid.KnitRow) string {
	var parts []string
	stitches := row.Stitches
	for i := 0; i < len(stitches); {
		j := i
		for j < len(stitches) && stitches[j] == stitches[i] {
			j++
		}
		op := "k"
		if stitches[i] == PurlCell {
			op = "p"
		}
		parts = append(parts, fmt.Sprintf("%s%d", op, j-i))
		i = j
	}
	return fmt.Sprintf("Row %d (%s): %s", row.Number, row.Side, strings.Join(parts, ", "))
}
