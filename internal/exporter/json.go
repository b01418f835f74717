package exporter

import (
	"bytes"
	"encoding/json"
	"fmt"

	"github.com/tidwall/sjson"

	"github.com/RowanDark/knitcipher/internal/chartstore"
	"github.com/RowanDark/knitcipher/internal/grid"
)

type jsonExport struct {
	Chart   *chartstore.Chart `json:"chart"`
	Grid    *grid.Grid        `json:"grid"`
	Summary Summary           `json:"summary"`
}

var legend = map[string]any{
	"0":         map[string]string{"stitch": "knit", "colour": "white"},
	"1":         map[string]string{"stitch": "purl", "colour": "black"},
	"direction": "Work from the bottom row up. Right-side (odd) rows are read right to left, wrong-side (even) rows left to right.",
}

// EncodeJSON renders the chart, its grid, a stitch summary and the
// legend a knitter needs to read the cells.
func EncodeJSON(req Request) ([]byte, error) {
	var buf bytes.Buffer
	encoder := json.NewEncoder(&buf)
	encoder.SetEscapeHTML(false)
	encoder.SetIndent("", "  ")

	if err := encoder.Encode(jsonExport{Chart: req.Chart, Grid: req.Grid, Summary: BuildSummary(req.Grid)}); err != nil {
		return nil, fmt.Errorf("encode chart: %w", err)
	}

	out, err := sjson.SetBytesOptions(buf.Bytes(), "legend", legend, &sjson.Options{ReplaceInPlace: true})
	if err != nil {
		return nil, fmt.Errorf("add legend: %w", err)
	}
	out, err = sjson.SetBytes(out, "instructions", instructions(req.Grid))
	if err != nil {
		return nil, fmt.Errorf("add instructions: %w", err)
	}
	return out, nil
}

func instructions(g *grid.Grid) []string {
	rows := g.KnitRows()
	out := make([]string, len(rows))
	for i, row := range rows {
		out[i] = Instruction(row)
	}
	return out
}
