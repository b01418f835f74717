package exporter

import (
	"errors"
	"fmt"
	"path/filepath"
	"slices"
	"strings"
	"sync"

	"github.com/RowanDark/knitcipher/internal/chartstore"
	"github.com/RowanDark/knitcipher/internal/grid"
)

// Request is a saved chart together with its laid out grid.
type Request struct {
	Chart *chartstore.Chart
	Grid  *grid.Grid
}

// NewRequest lays out the chart's grid and bundles both for an exporter.
func NewRequest(c *chartstore.Chart) (Request, error) {
	g, err := c.Grid()
	if err != nil {
		return Request{}, fmt.Errorf("lay out chart: %w", err)
	}
	return Request{Chart: c, Grid: g}, nil
}

// EncodeFunc renders a chart as the bytes of one export format.
type EncodeFunc func(Request) ([]byte, error)

// FormatSpec describes one export format.
type FormatSpec struct {
	Format      Format
	Description string
	Extension   string
	ContentType string
	Encode      EncodeFunc
}

// catalog holds the registered formats and the default output directory.
type catalog struct {
	mu      sync.RWMutex
	formats map[Format]FormatSpec
	outDir  string
}

var formats = &catalog{formats: map[Format]FormatSpec{}, outDir: defaultOutputDir}

func normalise(raw string) Format {
	return Format(strings.ToLower(strings.TrimSpace(raw)))
}

func (c *catalog) add(spec FormatSpec) error {
	spec.Format = normalise(string(spec.Format))
	switch {
	case spec.Format == "":
		return errors.New("export format name is required")
	case spec.Encode == nil:
		return fmt.Errorf("export format %q has no encoder", spec.Format)
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	if _, taken := c.formats[spec.Format]; taken {
		return fmt.Errorf("export format %q already registered", spec.Format)
	}
	c.formats[spec.Format] = spec
	return nil
}

func (c *catalog) get(f Format) (FormatSpec, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	spec, ok := c.formats[f]
	return spec, ok
}

func (c *catalog) names() []string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	names := make([]string, 0, len(c.formats))
	for f := range c.formats {
		names = append(names, string(f))
	}
	slices.Sort(names)
	return names
}

// RegisterFormat makes a format available to Encode and ParseFormat.
// Names are case-insensitive and may be registered once.
func RegisterFormat(spec FormatSpec) error {
	return formats.add(spec)
}

// MustRegisterFormat is RegisterFormat for package initialisation.
func MustRegisterFormat(spec FormatSpec) {
	if err := RegisterFormat(spec); err != nil {
		panic(err)
	}
}

// ParseFormat resolves a user supplied format name.
func ParseFormat(raw string) (Format, error) {
	f := normalise(raw)
	if _, ok := formats.get(f); ok && f != "" {
		return f, nil
	}
	return "", fmt.Errorf("unsupported format %q (available: %s)", raw, strings.Join(formats.names(), ", "))
}

// Lookup returns the registered spec for format.
func Lookup(format Format) (FormatSpec, bool) {
	return formats.get(format)
}

// Encode renders req in the given format.
func Encode(format Format, req Request) ([]byte, error) {
	spec, ok := formats.get(format)
	if !ok {
		return nil, fmt.Errorf("unregistered export format: %s", format)
	}
	if req.Chart == nil || req.Grid == nil {
		return nil, fmt.Errorf("export %s: chart and grid are required", format)
	}
	return spec.Encode(req)
}

// DefaultPath returns where an export of the chart is written when no
// output path is given: <base>/<chart id or code>.<extension>.
func DefaultPath(format Format, c *chartstore.Chart) (string, error) {
	spec, ok := formats.get(format)
	if !ok {
		return "", fmt.Errorf("unregistered export format: %s", format)
	}
	name := c.ID
	if name == "" {
		name = "chart-" + strings.ToLower(c.Code)
	}

	formats.mu.RLock()
	dir := formats.outDir
	formats.mu.RUnlock()
	return filepath.Join(dir, name+"."+spec.Extension), nil
}

// Formats lists the registered formats by name.
func Formats() []FormatSpec {
	names := formats.names()
	specs := make([]FormatSpec, 0, len(names))
	for _, name := range names {
		spec, _ := formats.get(Format(name))
		specs = append(specs, spec)
	}
	return specs
}

func setBaseOutput(dir string) {
	formats.mu.Lock()
	formats.outDir = dir
	formats.mu.Unlock()
}
