package rcore

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/shurcooL/go-goon"
)

// set with -ldflags "-X github.com/glycerine/rcore/rcore.GitLastTag=..."
var GitLastTag = "v0.1.0"

func Version() string {
	return GitLastTag
}

func getLine(reader *bufio.Reader) (string, error) {
	line := make([]byte, 0)
	for {
		linepart, hasMore, err := reader.ReadLine()
		if err != nil {
			return "", err
		}
		line = append(line, linepart...)
		if !hasMore {
			break
		}
	}
	return string(line), nil
}

var continuationPrompt = "+ "

// getExpression reads lines until they parse, prompting with the
// continuation prompt while the input is incomplete.
func (pr *Prompter) getExpression(reader *bufio.Reader, noLiner bool) (readin string, xs []Value, err error) {
	read := func(prompt string) (string, error) {
		if noLiner {
			fmt.Print(prompt)
			return getLine(reader)
		}
		return pr.Getline(&prompt)
	}

	line, err := read(pr.prompt)
	if err != nil {
		return "", nil, err
	}
	for {
		xs, err = Parse(line)
		var se *SyntaxError
		if err == nil || !errors.As(err, &se) || !se.Incomplete {
			return line, xs, err
		}
		nextline, err := read(continuationPrompt)
		if err != nil {
			return "", nil, err
		}
		line += "\n" + nextline
	}
}

func (rt *Runtime) processDumpCommand(args []string) {
	if len(args) == 0 {
		s, err := rt.Show(rt.GlobalEnv, "global")
		if err != nil {
			fmt.Fprintln(rt.Out, err)
			return
		}
		fmt.Fprint(rt.Out, s)
		return
	}
	v, err := rt.GetVar(rt.GlobalEnv, args[0])
	if err != nil {
		fmt.Fprintln(rt.Out, err)
		return
	}
	fmt.Fprint(rt.Out, goon.Sdump(v))
}

// PrintResult shows a top level value: as JSON when the config asks
// for it, else through print. Invisible values are not shown.
func (rt *Runtime) PrintResult(v Value) error {
	if !rt.visible {
		return nil
	}
	if rt.cfg.JSON {
		by, err := ValueToJson(v)
		if err != nil {
			return err
		}
		fmt.Fprintln(rt.Out, string(by))
		return nil
	}
	return rt.PrintValue(v, rt.GlobalEnv)
}

// EvalAndPrint evaluates the top level expressions in order, printing
// each visible result. It stops at the first error.
func (rt *Runtime) EvalAndPrint(exprs []Value) error {
	for _, e := range exprs {
		v, err := rt.Eval(e, rt.GlobalEnv)
		if err != nil {
			return err
		}
		if err := rt.PrintResult(v); err != nil {
			return err
		}
	}
	return nil
}

func (rt *Runtime) reportError(err error) {
	fmt.Fprintln(rt.Err, err)
}

func Repl(rt *Runtime, cfg *Config) {
	var reader *bufio.Reader
	if cfg.NoLiner {
		// reader is used if one wishes to drop the liner library.
		// Useful for not full terminal env, like under test.
		reader = bufio.NewReader(os.Stdin)
	}

	if !cfg.Quiet {
		if cfg.Sandboxed {
			fmt.Printf("rcore [sandbox mode] version %s\n", Version())
		} else {
			fmt.Printf("rcore version %s\n", Version())
		}
		fmt.Printf("press tab to complete names. Ctrl-d to exit.\n")
	}
	var pr *Prompter // can be nil if noLiner
	if !cfg.NoLiner {
		pr = NewPrompter(cfg.Prompt, rt)
		defer pr.Close()
	} else {
		pr = &Prompter{prompt: cfg.Prompt}
	}

	for {
		line, exprs, err := pr.getExpression(reader, cfg.NoLiner)
		if err != nil {
			if err == io.EOF {
				return
			}
			rt.reportError(err)
			continue
		}

		parts := strings.Fields(line)
		if len(parts) == 0 {
			continue
		}
		first := parts[0]

		switch first {
		case ".quit":
			return
		case ".dump":
			rt.processDumpCommand(parts[1:])
			continue
		case ".ls":
			s, err := rt.Show(rt.GlobalEnv, "global")
			if err != nil {
				fmt.Println(err)
			} else {
				fmt.Print(s)
			}
			continue
		case ".frames":
			fmt.Print(rt.ShowFrames())
			continue
		case ".verb":
			Verbose = !Verbose
			fmt.Printf("verbose: %v.\n", Verbose)
			continue
		case ".gc":
			fmt.Printf("released %d environments, %d live.\n", rt.GC(), rt.LiveEnvs())
			continue
		}

		if err := rt.EvalAndPrint(exprs); err != nil {
			rt.reportError(err)
		}
	}
}

func runScript(rt *Runtime, fname string, cfg *Config) error {
	src, err := os.ReadFile(fname)
	if err != nil {
		return err
	}
	exprs, err := Parse(string(src))
	if err != nil {
		return fmt.Errorf("%s: %w", fname, err)
	}
	return rt.EvalAndPrint(exprs)
}

// like main() for a standalone repl, now in library
func ReplMain(cfg *Config) {
	rt := NewRuntime(cfg)
	defer rt.Close()

	if cfg.Command != "" {
		exprs, err := Parse(cfg.Command)
		if err == nil {
			err = rt.EvalAndPrint(exprs)
		}
		if err != nil {
			rt.reportError(err)
			os.Exit(1)
		}
		os.Exit(0)
	}

	args := cfg.Flags.Args()
	if len(args) > 0 {
		err := runScript(rt, args[0], cfg)
		if err == nil {
			return
		}
		rt.reportError(err)
		if cfg.ExitOnFailure {
			os.Exit(1)
		}
	}
	Repl(rt, cfg)
}
