package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/tidwall/gjson"

	"github.com/RowanDark/knitcipher/internal/bitcodec"
	"github.com/RowanDark/knitcipher/internal/cipher"
	"github.com/RowanDark/knitcipher/internal/knit"
)

func runDecrypt(args []string) int {
	fs := newFlagSet("decrypt")
	var bits, code, chartPath string
	fs.StringVar(&bits, "binary", "", "chart bits; characters other than 0 and 1 are ignored")
	fs.StringVar(&bits, "b", "", "shorthand for --binary")
	fs.StringVar(&code, "code", "", "short code printed with the chart, e.g. C3")
	fs.StringVar(&code, "c", "", "shorthand for --code")
	fs.StringVar(&chartPath, "chart", "", "read binary and code from a JSON chart or export")
	if err := fs.Parse(args); err != nil {
		return 2
	}

	if chartPath != "" {
		fromBits, fromCode, err := readChartFile(chartPath)
		if err != nil {
			fmt.Fprintf(stderr, "read chart: %v\n", err)
			return 1
		}
		if bits == "" {
			bits = fromBits
		}
		if code == "" {
			code = fromCode
		}
	}
	if bitcodec.Strip(bits) == "" || strings.TrimSpace(code) == "" {
		fmt.Fprintln(stderr, "--binary and --code (or --chart) are required")
		return 2
	}

	text := knit.Decrypt(bits, code)
	fmt.Fprintln(stdout, text)
	if text == cipher.InvalidCode || text == cipher.DecryptionFailed {
		return 1
	}
	return 0
}

// readChartFile pulls the bit string and short code out of a chart JSON
// document. Exports nest them under "chart"; API responses and stored
// charts carry them at the top level.
func readChartFile(path string) (bits, code string, err error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return "", "", err
	}
	if !gjson.ValidBytes(data) {
		return "", "", fmt.Errorf("%s is not valid JSON", path)
	}
	field := func(name string) string {
		for _, p := range []string{"chart." + name, name} {
			if v := gjson.GetBytes(data, p); v.Exists() {
				return v.String()
			}
		}
		return ""
	}
	bits, code = field("binary"), field("code")
	if bits == "" || code == "" {
		return "", "", fmt.Errorf("%s has no binary and code fields", path)
	}
	return bits, code, nil
}

func runIdentify(args []string) int {
	fs := newFlagSet("identify")
	var bits string
	fs.StringVar(&bits, "binary", "", "chart bits whose code is unknown")
	fs.StringVar(&bits, "b", "", "shorthand for --binary")
	limit := fs.Int("limit", 5, "maximum number of candidates to print (0 for all)")
	timeout := fs.Duration("timeout", 10*time.Second, "give up after this long")
	asJSON := fs.Bool("json", false, "print candidates as JSON")
	if err := fs.Parse(args); err != nil {
		return 2
	}
	if bits == "" {
		bits = strings.Join(fs.Args(), "")
	}

	ctx, cancel := context.WithTimeout(context.Background(), *timeout)
	defer cancel()
	candidates, err := knit.Identify(ctx, bits)
	if err != nil {
		fmt.Fprintf(stderr, "identify: %v\n", err)
		if errors.Is(err, knit.ErrEmptyBinary) {
			return 2
		}
		return 1
	}
	if *limit > 0 && len(candidates) > *limit {
		candidates = candidates[:*limit]
	}

	if *asJSON {
		if candidates == nil {
			candidates = []knit.Candidate{}
		}
		enc := json.NewEncoder(stdout)
		enc.SetIndent("", "  ")
		enc.SetEscapeHTML(false)
		if err := enc.Encode(candidates); err != nil {
			fmt.Fprintf(stderr, "encode candidates: %v\n", err)
			return 1
		}
		return 0
	}

	if len(candidates) == 0 {
		fmt.Fprintln(stderr, "no readable decryption found")
		return 1
	}
	for _, c := range candidates {
		fmt.Fprintln(stdout, c.String())
		fmt.Fprintf(stdout, "    %s\n", c.Reasoning)
	}
	return 0
}
