package exporter

import (
	"os"
	"strings"
)

const defaultOutputDir = "."

// Format identifies the supported export encodings.
type Format string

const (
	// FormatCSV renders one chart row per line of 0/1 cells.
	FormatCSV Format = "csv"
	// FormatJSON renders the chart, its grid and a knitting legend.
	FormatJSON Format = "json"
	// FormatText renders a printable chart with row-by-row instructions.
	FormatText Format = "text"
)

func init() {
	base := strings.TrimSpace(os.Getenv("KNITCHART_OUT"))
	if base == "" {
		base = defaultOutputDir
	}
	setBaseOutput(base)

	MustRegisterFormat(FormatSpec{
		Format:      FormatCSV,
		Extension:   "csv",
		ContentType: "text/csv",
		Description: "Chart cells as comma-separated values, one row per line",
		Encode:      EncodeCSV,
	})

	MustRegisterFormat(FormatSpec{
		Format:      FormatJSON,
		Extension:   "json",
		ContentType: "application/json",
		Description: "Chart metadata, grid and stitch legend as JSON",
		Encode:      EncodeJSON,
	})

	MustRegisterFormat(FormatSpec{
		Format:      FormatText,
		Extension:   "txt",
		ContentType: "text/plain; charset=utf-8",
		Description: "Printable chart with row-by-row knitting instructions",
		Encode:      EncodeText,
	})
}
