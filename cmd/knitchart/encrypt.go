package main

import (
	"context"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"strings"

	"github.com/RowanDark/knitcipher/internal/chartstore"
	"github.com/RowanDark/knitcipher/internal/cipher"
	"github.com/RowanDark/knitcipher/internal/knit"
)

func runEncrypt(args []string) int {
	fs := newFlagSet("encrypt")
	var message, algorithm, label, style string
	fs.StringVar(&message, "message", "", "message to encrypt (remaining arguments are used when empty)")
	fs.StringVar(&message, "m", "", "shorthand for --message")
	fs.StringVar(&algorithm, "algorithm", "", "cipher key, see `knitchart algorithms` (default from config)")
	fs.StringVar(&algorithm, "a", "", "shorthand for --algorithm")
	repeat := fs.Bool("repeat", false, "tile the pattern over a chart of at least 100x100 stitches")
	explain := fs.Bool("explain", false, "print how the cipher transformed the message")
	save := fs.Bool("save", false, "store the chart in the chart library")
	fs.StringVar(&label, "label", "", "label for a saved chart")
	fs.StringVar(&style, "style", styleAuto, "grid drawing: auto, blocks or bits")
	asJSON := fs.Bool("json", false, "print the result as JSON")
	if err := fs.Parse(args); err != nil {
		return 2
	}

	if message == "" {
		message = strings.Join(fs.Args(), " ")
	}
	if message == "" {
		fmt.Fprintln(stderr, "--message must not be empty")
		return 2
	}
	style, err := resolveStyle(style, stdout)
	if err != nil {
		fmt.Fprintln(stderr, err)
		return 2
	}

	cfg, ok := loadConfig()
	if !ok {
		return 1
	}
	if algorithm == "" {
		algorithm = cfg.Defaults.Algorithm
	}
	visited := map[string]bool{}
	fs.Visit(func(f *flag.Flag) { visited[f.Name] = true })
	if !visited["repeat"] {
		*repeat = cfg.Defaults.Repeat
	}

	res, err := knit.Encrypt(message, strings.ToLower(strings.TrimSpace(algorithm)), *repeat)
	if err != nil {
		fmt.Fprintf(stderr, "encrypt: %v\n", err)
		if errors.Is(err, knit.ErrUnknownAlgorithm) {
			return 2
		}
		return 1
	}

	var saved *chartstore.Chart
	if *save {
		store, ok := openStore(cfg)
		if !ok {
			return 1
		}
		defer store.Close()
		saved, err = store.Save(context.Background(), chartstore.FromResult(res, label))
		if err != nil {
			fmt.Fprintf(stderr, "save chart: %v\n", err)
			return 1
		}
	}

	if *asJSON {
		out := struct {
			*knit.Result
			Steps []string          `json:"steps,omitempty"`
			Saved *chartstore.Chart `json:"saved,omitempty"`
		}{Result: res, Saved: saved}
		if *explain {
			out.Steps = explainSteps(res, message)
		}
		enc := json.NewEncoder(stdout)
		enc.SetIndent("", "  ")
		enc.SetEscapeHTML(false)
		if err := enc.Encode(out); err != nil {
			fmt.Fprintf(stderr, "encode result: %v\n", err)
			return 1
		}
		return 0
	}

	alg, _ := cipher.Default().Get(res.Algorithm)
	fmt.Fprintf(stdout, "Cipher:     %s (%s)\n", alg.Name, res.Code)
	fmt.Fprintf(stdout, "Ciphertext: %s\n", res.Ciphertext)
	fmt.Fprintf(stdout, "Binary:     %s\n", res.Binary)
	fmt.Fprintf(stdout, "Chart:      %d rows x %d stitches (%s", res.Rows, res.Cols, res.Grid.Policy)
	if res.Grid.Iterations > 1 {
		fmt.Fprintf(stdout, ", %d repeats", res.Grid.Iterations)
	}
	fmt.Fprintln(stdout, ")")
	if *explain {
		fmt.Fprintln(stdout)
		for i, step := range explainSteps(res, message) {
			fmt.Fprintf(stdout, "%d. %s\n", i+1, step)
		}
	}
	fmt.Fprintln(stdout)
	drawGrid(stdout, res.Grid, style)
	if saved != nil {
		fmt.Fprintf(stdout, "\nSaved chart %s (%s)\n", saved.ID, saved.CID)
	}
	return 0
}

func explainSteps(res *knit.Result, message string) []string {
	alg, ok := cipher.Default().Get(res.Algorithm)
	if !ok {
		return nil
	}
	return alg.Steps(message, res.Ciphertext)
}
