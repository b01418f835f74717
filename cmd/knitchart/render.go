package main

import (
	"fmt"
	"io"
	"os"
	"strings"

	"golang.org/x/term"

	"github.com/RowanDark/knitcipher/internal/grid"
)

const (
	styleAuto   = "auto"
	styleBlocks = "blocks"
	styleBits   = "bits"
)

var blockCells = strings.NewReplacer("1", "█", "0", "░")

func isTerminal(w io.Writer) bool {
	f, ok := w.(*os.File)
	return ok && term.IsTerminal(int(f.Fd()))
}

// resolveStyle turns auto into blocks on a terminal and bits elsewhere.
func resolveStyle(style string, w io.Writer) (string, error) {
	switch strings.ToLower(strings.TrimSpace(style)) {
	case "", styleAuto:
		if isTerminal(w) {
			return styleBlocks, nil
		}
		return styleBits, nil
	case styleBlocks:
		return styleBlocks, nil
	case styleBits:
		return styleBits, nil
	default:
		return "", fmt.Errorf("unknown style %q (want auto, blocks or bits)", style)
	}
}

// drawGrid writes the chart top row first, one line per row.
func drawGrid(w io.Writer, g *grid.Grid, style string) {
	for _, row := range g.Cells {
		if style == styleBlocks {
			row = blockCells.Replace(row)
		}
		fmt.Fprintln(w, row)
	}
}
