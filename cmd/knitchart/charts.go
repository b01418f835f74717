package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/RowanDark/knitcipher/internal/chartstore"
	"github.com/RowanDark/knitcipher/internal/exporter"
)

func runChartsList(args []string) int {
	fs := newFlagSet("charts list")
	algorithm := fs.String("algorithm", "", "only list charts made with this cipher key")
	limit := fs.Int("limit", chartstore.DefaultListLimit, "maximum number of charts")
	if err := fs.Parse(args); err != nil {
		return 2
	}

	cfg, ok := loadConfig()
	if !ok {
		return 1
	}
	store, ok := openStore(cfg)
	if !ok {
		return 1
	}
	defer store.Close()

	charts, err := store.List(context.Background(), chartstore.Filter{
		Algorithm: strings.ToLower(strings.TrimSpace(*algorithm)),
		Limit:     *limit,
	})
	if err != nil {
		fmt.Fprintf(stderr, "list charts: %v\n", err)
		return 1
	}
	if len(charts) == 0 {
		fmt.Fprintln(stdout, "no saved charts")
		return 0
	}

	tw := tabwriter.NewWriter(stdout, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tCODE\tSIZE\tCREATED\tLABEL")
	for _, c := range charts {
		fmt.Fprintf(tw, "%s\t%s\t%dx%d\t%s\t%s\n",
			c.ID, c.Code, c.Rows, c.Cols, c.CreatedAt.Format(time.RFC3339), c.Label)
	}
	if err := tw.Flush(); err != nil {
		fmt.Fprintf(stderr, "write table: %v\n", err)
		return 1
	}
	return 0
}

// chartIDArg returns the single positional chart ID of a charts subcommand.
func chartIDArg(name string, args []string) (string, []string, bool) {
	if len(args) == 0 || strings.HasPrefix(args[0], "-") {
		fmt.Fprintf(stderr, "usage: knitchart charts %s <id> [flags]\n", name)
		return "", nil, false
	}
	return args[0], args[1:], true
}

func runChartsShow(args []string) int {
	id, rest, ok := chartIDArg("show", args)
	if !ok {
		return 2
	}
	fs := newFlagSet("charts show")
	style := fs.String("style", styleAuto, "grid drawing: auto, blocks or bits")
	if err := fs.Parse(rest); err != nil {
		return 2
	}
	drawStyle, err := resolveStyle(*style, stdout)
	if err != nil {
		fmt.Fprintln(stderr, err)
		return 2
	}

	cfg, ok := loadConfig()
	if !ok {
		return 1
	}
	store, ok := openStore(cfg)
	if !ok {
		return 1
	}
	defer store.Close()

	c, code := getChart(store, id)
	if c == nil {
		return code
	}
	g, err := c.Grid()
	if err != nil {
		fmt.Fprintf(stderr, "lay out chart: %v\n", err)
		return 1
	}

	fmt.Fprintf(stdout, "ID:         %s\n", c.ID)
	fmt.Fprintf(stdout, "Content ID: %s\n", c.CID)
	if c.Label != "" {
		fmt.Fprintf(stdout, "Label:      %s\n", c.Label)
	}
	fmt.Fprintf(stdout, "Cipher:     %s (%s)\n", c.Algorithm, c.Code)
	fmt.Fprintf(stdout, "Ciphertext: %s\n", c.Ciphertext)
	fmt.Fprintf(stdout, "Chart:      %d rows x %d stitches (%s)\n", g.Rows, g.Cols, g.Policy)
	fmt.Fprintf(stdout, "Created:    %s\n\n", c.CreatedAt.Format(time.RFC3339))
	drawGrid(stdout, g, drawStyle)
	return 0
}

func runChartsDelete(args []string) int {
	id, rest, ok := chartIDArg("delete", args)
	if !ok {
		return 2
	}
	if len(rest) > 0 {
		fmt.Fprintln(stderr, "charts delete takes exactly one chart id")
		return 2
	}

	cfg, ok := loadConfig()
	if !ok {
		return 1
	}
	store, ok := openStore(cfg)
	if !ok {
		return 1
	}
	defer store.Close()

	if err := store.Delete(context.Background(), id); err != nil {
		fmt.Fprintf(stderr, "delete chart: %v\n", err)
		return 1
	}
	fmt.Fprintf(stdout, "Deleted chart %s\n", id)
	return 0
}

func runExport(args []string) int {
	fs := newFlagSet("export")
	id := fs.String("id", "", "saved chart ID")
	formatFlag := fs.String("format", string(exporter.FormatText), "export format")
	out := fs.String("out", "", "output path; - for stdout (default derived from the chart ID)")
	if err := fs.Parse(args); err != nil {
		return 2
	}
	if strings.TrimSpace(*id) == "" {
		fmt.Fprintln(stderr, "--id is required")
		return 2
	}
	format, err := exporter.ParseFormat(*formatFlag)
	if err != nil {
		fmt.Fprintln(stderr, err)
		return 2
	}

	cfg, ok := loadConfig()
	if !ok {
		return 1
	}
	store, ok := openStore(cfg)
	if !ok {
		return 1
	}
	defer store.Close()

	c, code := getChart(store, *id)
	if c == nil {
		return code
	}
	req, err := exporter.NewRequest(c)
	if err != nil {
		fmt.Fprintf(stderr, "prepare export: %v\n", err)
		return 1
	}
	data, err := exporter.Encode(format, req)
	if err != nil {
		fmt.Fprintf(stderr, "export: %v\n", err)
		return 1
	}

	if *out == "-" {
		if _, err := stdout.Write(data); err != nil {
			fmt.Fprintf(stderr, "write export: %v\n", err)
			return 1
		}
		return 0
	}
	path := *out
	if path == "" {
		path, err = exporter.DefaultPath(format, c)
		if err != nil {
			fmt.Fprintf(stderr, "export path: %v\n", err)
			return 1
		}
	}
	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			fmt.Fprintf(stderr, "create output directory: %v\n", err)
			return 1
		}
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		fmt.Fprintf(stderr, "write export: %v\n", err)
		return 1
	}
	fmt.Fprintf(stdout, "Wrote %s\n", path)
	return 0
}

// getChart loads a chart and returns the exit code to use when it fails.
func getChart(store *chartstore.Store, id string) (*chartstore.Chart, int) {
	c, err := store.Get(context.Background(), id)
	if err != nil {
		if errors.Is(err, chartstore.ErrNotFound) {
			fmt.Fprintf(stderr, "chart %s not found\n", id)
		} else {
			fmt.Fprintf(stderr, "load chart: %v\n", err)
		}
		return nil, 1
	}
	return c, 0
}
