package rcore

import (
	"flag"
	"fmt"
	"os"

	"github.com/BurntSushi/toml"
)

// Config configures a Runtime and the rcore repl.
type Config struct {
	Flags *flag.FlagSet

	Command       string
	ConfigFile    string
	ExitOnFailure bool
	Sandboxed     bool
	Quiet         bool
	JSON          bool

	// liner bombs under emacs, avoid it with this flag.
	NoLiner bool
	Prompt  string // default "> "

	// Verbosity is the commonlog level: 0 quiet, 1 errors ... 5 debug.
	Verbosity int

	// Warn mirrors options(warn=): 0 defers warnings to the end of the
	// top level evaluation, 1 prints them as they occur, 2 or more turns
	// them into errors.
	Warn int

	// MaxDepth bounds nested closure and builtin calls.
	MaxDepth int
}

// fileConfig is the layout of rcore.toml.
type fileConfig struct {
	Prompt    *string `toml:"prompt"`
	Quiet     *bool   `toml:"quiet"`
	Sandbox   *bool   `toml:"sandbox"`
	Verbosity *int    `toml:"verbosity"`
	Warn      *int    `toml:"warn"`
	MaxDepth  *int    `toml:"max-depth"`
}

const defaultMaxDepth = 5000

func NewConfig(cmdname string) *Config {
	return &Config{
		Flags:    flag.NewFlagSet(cmdname, flag.ExitOnError),
		MaxDepth: defaultMaxDepth,
	}
}

// call DefineFlags before myflags.Parse()
func (c *Config) DefineFlags() {
	c.Flags.StringVar(&c.Command, "c", "", "expressions to evaluate")
	c.Flags.StringVar(&c.ConfigFile, "config", "", "path to an rcore.toml file")
	c.Flags.BoolVar(&c.ExitOnFailure, "exitonfail", false, "exit on failure instead of starting repl")
	c.Flags.BoolVar(&c.Sandboxed, "sandbox", false, "run sandboxed; disallow Sys.getenv and friends")
	c.Flags.BoolVar(&c.Quiet, "quiet", false, "start repl without printing the banner")
	c.Flags.BoolVar(&c.JSON, "json", false, "print results as JSON")
	c.Flags.BoolVar(&c.NoLiner, "noliner", false, "read plain lines, without line editing")
	c.Flags.IntVar(&c.Verbosity, "v", 0, "log verbosity (0-5)")
	c.Flags.IntVar(&c.Warn, "warn", 0, "warning policy, as options(warn=)")
	c.Flags.IntVar(&c.MaxDepth, "maxdepth", defaultMaxDepth, "maximum nesting of calls")
}

// LoadFile reads settings from an rcore.toml file. Keys absent from the
// file leave c unchanged.
func (c *Config) LoadFile(path string) error {
	var fc fileConfig
	if _, err := toml.DecodeFile(path, &fc); err != nil {
		return fmt.Errorf("parse error in %s: %w", path, err)
	}
	if fc.Prompt != nil {
		c.Prompt = *fc.Prompt
	}
	if fc.Quiet != nil {
		c.Quiet = *fc.Quiet
	}
	if fc.Sandbox != nil {
		c.Sandboxed = *fc.Sandbox
	}
	if fc.Verbosity != nil {
		c.Verbosity = *fc.Verbosity
	}
	if fc.Warn != nil {
		c.Warn = *fc.Warn
	}
	if fc.MaxDepth != nil {
		c.MaxDepth = *fc.MaxDepth
	}
	return nil
}

// call c.ValidateConfig() after myflags.Parse()
func (c *Config) ValidateConfig() error {
	if c.ConfigFile != "" {
		if _, err := os.Stat(c.ConfigFile); err != nil {
			return fmt.Errorf("cannot read config %s: %w", c.ConfigFile, err)
		}
		if err := c.LoadFile(c.ConfigFile); err != nil {
			return err
		}
	}
	if c.Prompt == "" {
		c.Prompt = "> "
	}
	if c.MaxDepth <= 0 {
		c.MaxDepth = defaultMaxDepth
	}
	if c.Verbosity < 0 || c.Verbosity > 5 {
		return fmt.Errorf("verbosity must be between 0 and 5, got %d", c.Verbosity)
	}
	return nil
}
