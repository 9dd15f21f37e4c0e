// Command rcore evaluates R expressions: interactively, from a script
// file, or from the -c flag.
package main

import (
	"flag"
	"fmt"
	"os"

	"github.com/glycerine/rcore/rcore"
)

const usageText = `usage: rcore [flags] [script.R]

With a script, rcore evaluates it top level expression by top level
expression, printing visible results, then starts the REPL unless the
script succeeded. -c evaluates its expressions and exits. -json prints
results as canonical JSON. Settings may also come from an rcore.toml
file named by -config; its values override the flags.

flags:
`

func usage(fs *flag.FlagSet) {
	fmt.Fprint(os.Stderr, usageText)
	fs.SetOutput(os.Stderr)
	fs.PrintDefaults()
}

func main() {
	cfg := rcore.NewConfig("rcore")
	cfg.DefineFlags()
	cfg.Flags.Usage = func() { usage(cfg.Flags) }

	// the flag set exits on its own errors
	cfg.Flags.Parse(os.Args[1:])

	if err := cfg.ValidateConfig(); err != nil {
		fmt.Fprintf(os.Stderr, "rcore: %v\n", err)
		usage(cfg.Flags)
		os.Exit(2)
	}
	rcore.ReplMain(cfg)
}
