package main

import (
	"flag"
	"fmt"
	"io"
	"os"
)

const productName = "knitchart"
const cliBanner = productName + " - encrypt messages into knitting charts"

// Output streams, swapped by tests.
var (
	stdout io.Writer = os.Stdout
	stderr io.Writer = os.Stderr
)

func usage() {
	fmt.Fprintln(stderr, cliBanner)
	fmt.Fprintln(stderr)
	fmt.Fprintln(stderr, "Usage: knitchart <command> [flags]")
	fmt.Fprintln(stderr)
	fmt.Fprintln(stderr, "Commands:")
	fmt.Fprintln(stderr, "  encrypt     encrypt a message into a chart")
	fmt.Fprintln(stderr, "  decrypt     recover a message from chart bits and a short code")
	fmt.Fprintln(stderr, "  identify    guess the cipher of chart bits without a code")
	fmt.Fprintln(stderr, "  algorithms  list the available ciphers and their short codes")
	fmt.Fprintln(stderr, "  chain       run several ciphers over text in sequence")
	fmt.Fprintln(stderr, "  charts      list, show or delete saved charts")
	fmt.Fprintln(stderr, "  export      write a saved chart as csv, json or text")
	fmt.Fprintln(stderr, "  version     print the version")
}

func main() {
	os.Exit(run(os.Args[1:]))
}

// run dispatches a command line and returns the process exit code:
// 0 on success, 1 on runtime failure, 2 on usage errors.
func run(args []string) int {
	if len(args) == 0 {
		usage()
		return 2
	}

	switch args[0] {
	case "encrypt":
		return runEncrypt(args[1:])
	case "decrypt":
		return runDecrypt(args[1:])
	case "identify":
		return runIdentify(args[1:])
	case "algorithms":
		return runAlgorithms(args[1:])
	case "chain":
		return runChain(args[1:])
	case "charts":
		if len(args) < 2 {
			fmt.Fprintln(stderr, "charts subcommand required (list, show, delete)")
			return 2
		}
		switch args[1] {
		case "list":
			return runChartsList(args[2:])
		case "show":
			return runChartsShow(args[2:])
		case "delete":
			return runChartsDelete(args[2:])
		default:
			fmt.Fprintf(stderr, "unknown charts subcommand: %s\n", args[1])
			return 2
		}
	case "export":
		return runExport(args[1:])
	case "version", "--version", "-version":
		return runVersion(args[1:])
	case "help", "-h", "--help":
		usage()
		return 0
	default:
		fmt.Fprintf(stderr, "unknown command: %s\n", args[0])
		usage()
		return 2
	}
}

// newFlagSet returns a flag set that reports errors instead of exiting.
func newFlagSet(name string) *flag.FlagSet {
	fs := flag.NewFlagSet(name, flag.ContinueOnError)
	fs.SetOutput(stderr)
	return fs
}
