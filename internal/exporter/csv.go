package exporter

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"strconv"
)

// EncodeCSV renders the grid with one chart row per record, top row
// first. The first column holds the chart row number as knitted, so the
// bottom record is row 1.
func EncodeCSV(req Request) ([]byte, error) {
	var buf bytes.Buffer
	writer := csv.NewWriter(&buf)

	g := req.Grid
	header := make([]string, 0, g.Cols+1)
	header = append(header, "row")
	for c := 1; c <= g.Cols; c++ {
		header = append(header, strconv.Itoa(c))
	}
	if err := writer.Write(header); err != nil {
		return nil, fmt.Errorf("write csv header: %w", err)
	}

	record := make([]string, g.Cols+1)
	for r, cells := range g.Cells {
		record[0] = strconv.Itoa(g.Rows - r)
		for c := 0; c < len(cells); c++ {
			record[c+1] = cells[c : c+1]
		}
		if err := writer.Write(record); err != nil {
			return nil, fmt.Errorf("write row %d: %w", g.Rows-r, err)
		}
	}

	writer.Flush()
	if err := writer.Error(); err != nil {
		return nil, fmt.Errorf("flush csv writer: %w", err)
	}
	return buf.Bytes(), nil
}
