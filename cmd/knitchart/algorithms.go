package main

import (
	"errors"
	"fmt"
	"strings"
	"text/tabwriter"

	"github.com/RowanDark/knitcipher/internal/cipher"
)

func runAlgorithms(args []string) int {
	fs := newFlagSet("algorithms")
	verbose := fs.Bool("v", false, "include descriptions")
	if err := fs.Parse(args); err != nil {
		return 2
	}
	if fs.NArg() > 0 {
		fmt.Fprintln(stderr, "algorithms takes no arguments")
		return 2
	}

	tw := tabwriter.NewWriter(stdout, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "CODE\tKEY\tNAME")
	for _, alg := range cipher.Default().List() {
		fmt.Fprintf(tw, "%s\t%s\t%s\n", alg.Code, alg.Key, alg.Name)
		if *verbose {
			fmt.Fprintf(tw, "\t\t%s\n", alg.Description)
		}
	}
	if err := tw.Flush(); err != nil {
		fmt.Fprintf(stderr, "write table: %v\n", err)
		return 1
	}
	return 0
}

func runChain(args []string) int {
	fs := newFlagSet("chain")
	var keys, input string
	fs.StringVar(&keys, "algorithms", "", "comma separated cipher keys, applied in order")
	fs.StringVar(&keys, "a", "", "shorthand for --algorithms")
	fs.StringVar(&input, "input", "", "text to transform (remaining arguments are used when empty)")
	fs.StringVar(&input, "i", "", "shorthand for --input")
	decode := fs.Bool("d", false, "decode: undo the chain, last cipher first")
	if err := fs.Parse(args); err != nil {
		return 2
	}
	if input == "" {
		input = strings.Join(fs.Args(), " ")
	}

	var p cipher.Pipeline
	for _, key := range strings.Split(keys, ",") {
		if key = strings.ToLower(strings.TrimSpace(key)); key != "" {
			p.Keys = append(p.Keys, key)
		}
	}

	run := p.Encode
	if *decode {
		run = p.Decode
	}
	out, err := run(cipher.Default(), input)
	if err != nil {
		fmt.Fprintf(stderr, "chain: %v\n", err)
		if errors.Is(err, cipher.ErrEmptyPipeline) || errors.Is(err, cipher.ErrUnknownAlgorithm) {
			return 2
		}
		return 1
	}
	fmt.Fprintln(stdout, out)
	if out == cipher.DecryptionFailed {
		return 1
	}
	return 0
}
