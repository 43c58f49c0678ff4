// Command synergyphi computes alignment and resonance metrics for
// conversational AI sessions and serves them over HTTP.
//
// Usage:
//
//	synergyphi bsq FILE        expanded Being-Seen Quotient
//	synergyphi ra FILE         intrinsic resonance
//	synergyphi coherence FILE  cosine similarity of consecutive embeddings
//	synergyphi dsi FILE        dyadic synergy index
//	synergyphi harmonic FILE   harmonic Being-Seen Quotient
//	synergyphi witness FILE    sign FILE and print a receipt
//	synergyphi serve           run the HTTP API
//	synergyphi version
//
// FILE is a JSON document; "-" reads standard input.
package main

import (
	"fmt"
	"io"
	"os"
	"sort"
	"strings"
)

const greeting = "Hello from synergy_phi!"

// command runs a subcommand with its own arguments.
type command struct {
	usage string
	run   func(args []string, stdin io.Reader, stdout io.Writer) error
}

var commands = map[string]command{
	"bsq":       {"bsq FILE", runBSQ},
	"ra":        {"ra FILE", runResonance},
	"coherence": {"coherence FILE", runCoherence},
	"dsi":       {"dsi FILE", runSynergy},
	"harmonic":  {"harmonic FILE", runHarmonic},
	"witness":   {"witness [-key HEX] FILE", runWitness},
	"serve":     {"serve [-config PATH]", runServe},
	"version":   {"version", runVersion},
}

func main() {
	os.Exit(run(os.Args[1:], os.Stdin, os.Stdout, os.Stderr))
}

// run dispatches to a subcommand and returns the process exit code.
func run(args []string, stdin io.Reader, stdout, stderr io.Writer) int {
	if len(args) == 0 {
		fmt.Fprintln(stdout, greeting)
		return 0
	}

	name := args[0]
	if name == "help" || name == "-h" || name == "--help" {
		printUsage(stdout)
		return 0
	}

	cmd, ok := commands[name]
	if !ok {
		fmt.Fprintf(stderr, "error: unknown command %q\n", name)
		printUsage(stderr)
		return 1
	}

	if err := cmd.run(args[1:], stdin, stdout); err != nil {
		fmt.Fprintf(stderr, "error: %v\n", err)
		return 1
	}
	return 0
}

func printUsage(w io.Writer) {
	names := make([]string, 0, len(commands))
	for n := range commands {
		names = append(names, n)
	}
	sort.Strings(names)

	var b strings.Builder
	b.WriteString("usage: synergyphi <command> [args]\n\ncommands:\n")
	for _, n := range names {
		fmt.Fprintf(&b, "  synergyphi %s\n", commands[n].usage)
	}
	fmt.Fprint(w, b.String())
}
