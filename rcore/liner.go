package rcore

import (
	"log"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/peterh/liner"
)

var historyName = ".rcorehist"

func historyPath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return historyName
	}
	return filepath.Join(home, historyName)
}

type Prompter struct {
	prompt   string
	prompter *liner.State
	origMode liner.ModeApplier
	rawMode  liner.ModeApplier
}

// NewPrompter sets up line editing. Tab completes names visible from
// the global environment.
func NewPrompter(prompt string, rt *Runtime) *Prompter {
	origMode, err := liner.TerminalMode()
	if err != nil {
		panic(err)
	}

	p := &Prompter{
		prompt:   prompt,
		prompter: liner.NewLiner(),
		origMode: origMode,
	}

	rawMode, err := liner.TerminalMode()
	if err != nil {
		panic(err)
	}
	p.rawMode = rawMode

	p.prompter.SetCtrlCAborts(false)

	p.prompter.SetCompleter(func(line string) (c []string) {
		start := strings.LastIndexFunc(line, func(r rune) bool {
			return !(r == '.' || r == '_' || r >= '0' && r <= '9' || r >= 'a' && r <= 'z' || r >= 'A' && r <= 'Z')
		}) + 1
		head, word := line[:start], line[start:]
		if word == "" {
			return nil
		}
		for _, n := range rt.completions() {
			if strings.HasPrefix(n, word) {
				c = append(c, head+n)
			}
		}
		return
	})

	if f, err := os.Open(historyPath()); err == nil {
		p.prompter.ReadHistory(f)
		f.Close()
	}

	return p
}

// completions are the binding names of the global and base
// environments, sorted.
func (rt *Runtime) completions() []string {
	seen := map[string]bool{}
	var out []string
	for _, r := range []EnvRef{rt.GlobalEnv, rt.BaseEnv} {
		names, err := rt.Names(r, false)
		if err != nil {
			continue
		}
		for _, n := range names {
			if !seen[n] {
				seen[n] = true
				out = append(out, n)
			}
		}
	}
	sort.Strings(out)
	return out
}

func (p *Prompter) Close() {
	defer p.prompter.Close()
	if f, err := os.Create(historyPath()); err != nil {
		log.Print("Error writing history file: ", err)
	} else {
		p.prompter.WriteHistory(f)
		f.Close()
	}
}

func (p *Prompter) Getline(prompt *string) (line string, err error) {
	applyErr := p.rawMode.ApplyMode()
	if applyErr != nil {
		panic(applyErr)
	}
	defer func() {
		applyErr := p.origMode.ApplyMode()
		if applyErr != nil {
			panic(applyErr)
		}
	}()

	if prompt == nil {
		line, err = p.prompter.Prompt(p.prompt)
	} else {
		line, err = p.prompter.Prompt(*prompt)
	}
	if err == nil {
		p.prompter.AppendHistory(line)
		return line, nil
	}
	return "", err
}
