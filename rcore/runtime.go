package rcore

import (
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/tliron/commonlog"
)

// Runtime is one R evaluation context: an environment arena, a call
// stack, condition handlers and the S3 method registry. A Runtime is not
// safe for concurrent use; run one per goroutine.
type Runtime struct {
	cfg *Config

	envs      envArena
	EmptyEnv  EnvRef
	BaseEnv   EnvRef
	GlobalEnv EnvRef

	frames   *Stack
	handlers *Stack
	restarts *Stack

	s3 *methodRegistry

	// pending are warnings raised inside the running builtin, signalled
	// against its call once it returns.
	pending []string

	// warnings deferred until the end of the top level evaluation, and
	// the ones reported after the last one.
	warnings     []Warning
	lastWarnings []Warning

	visible     bool
	evalDepth   int
	topLevel    int
	preserved   map[Value]int
	gcRequested bool
	closed      bool

	// Out receives cat() and print() output, Err warnings and try()
	// error reports.
	Out io.Writer
	Err io.Writer

	log commonlog.Logger
}

// Warning is one deferred warning: the call it was raised against and
// its message.
type Warning struct {
	Call Value
	Msg  string
}

func (w Warning) String() string {
	if w.Call == nil || w.Call == Value(Nil) {
		return w.Msg
	}
	return fmt.Sprintf("In %s : %s", deparseOneLine(w.Call), w.Msg)
}

// NewRuntime creates the empty, base and global environments, installs
// the builtins into base and evaluates the R prelude there.
func NewRuntime(cfg *Config) *Runtime {
	if cfg == nil {
		cfg = NewConfig("rcore")
	}
	if cfg.MaxDepth <= 0 {
		cfg.MaxDepth = defaultMaxDepth
	}
	configureLogging(cfg.Verbosity)

	rt := &Runtime{
		cfg:       cfg,
		frames:    NewStack("frames"),
		handlers:  NewStack("handlers"),
		restarts:  NewStack("restarts"),
		s3:        newMethodRegistry(),
		preserved: make(map[Value]int),
		Out:       OurStdout,
		Err:       os.Stderr,
		log:       commonlog.GetLogger("rcore"),
	}
	rt.EmptyEnv = rt.NewNamedEnv(EnvRef{}, "R_EmptyEnv")
	rt.BaseEnv = rt.NewNamedEnv(rt.EmptyEnv, "base")
	rt.GlobalEnv = rt.NewNamedEnv(rt.BaseEnv, "R_GlobalEnv")

	rt.installBuiltins()
	if err := rt.loadPrelude(); err != nil {
		panic(fmt.Sprintf("rcore prelude failed: %v", err))
	}
	rt.log.Infof("runtime ready: %d base bindings", len(rt.mustEnv(rt.BaseEnv).Map))
	return rt
}

func (rt *Runtime) installBuiltins() {
	all := AllBuiltinFunctions()
	if rt.cfg.Sandboxed {
		for name := range SystemFunctions() {
			delete(all, name)
		}
	}
	base := rt.mustEnv(rt.BaseEnv)
	for name, b := range all {
		base.Map[name] = &Binding{Value: b}
	}
}

func (rt *Runtime) loadPrelude() error {
	exprs, err := Parse(preludeSource)
	if err != nil {
		return err
	}
	for _, e := range exprs {
		if _, err := rt.eval(e, rt.BaseEnv); err != nil {
			return err
		}
	}
	return nil
}

func (rt *Runtime) mustEnv(r EnvRef) *Env {
	e, err := rt.envs.get(r)
	if err != nil {
		panic(err)
	}
	return e
}

// Close releases every environment. Using rt afterwards fails with
// ErrRuntimeClose.
func (rt *Runtime) Close() {
	if rt.closed {
		return
	}
	rt.closed = true
	rt.frames.TruncateToSize(0)
	rt.handlers.TruncateToSize(0)
	rt.restarts.TruncateToSize(0)
	rt.preserved = nil
	rt.envs = envArena{}
}

func (rt *Runtime) Config() *Config { return rt.cfg }

// Visible reports whether the value of the last evaluation should be
// auto-printed.
func (rt *Runtime) Visible() bool { return rt.visible }

// Parse parses R source into top level expressions.
func (rt *Runtime) Parse(src string) ([]Value, error) {
	return Parse(src)
}

// Eval evaluates expr in env. Called from outside any evaluation it is a
// top level evaluation: deferred warnings are reported afterwards, the
// stacks are reset on error and a requested gc() runs.
func (rt *Runtime) Eval(expr Value, env EnvRef) (Value, error) {
	if rt.closed {
		return nil, ErrRuntimeClose
	}
	if env.IsZero() {
		env = rt.GlobalEnv
	}
	top := rt.topLevel == 0
	rt.topLevel++
	v, err := rt.eval(expr, env)
	rt.topLevel--
	if err != nil {
		err = rt.topLevelError(err)
	}
	if top {
		rt.endTopLevel(v)
	}
	return v, err
}

// EvalString parses src and evaluates each expression in the global
// environment, returning the last value.
func (rt *Runtime) EvalString(src string) (Value, error) {
	exprs, err := Parse(src)
	if err != nil {
		return nil, err
	}
	if len(exprs) == 0 {
		return Nil, nil
	}
	var v Value
	for _, e := range exprs {
		v, err = rt.Eval(e, rt.GlobalEnv)
		if err != nil {
			return nil, err
		}
	}
	return v, nil
}

// topLevelError turns control signals that escaped every construct able
// to catch them into R errors. A nested Eval passes loop and return
// signals on to its caller.
func (rt *Runtime) topLevelError(err error) error {
	if rt.topLevel > 0 && isControlSignal(err) {
		return err
	}
	switch e := err.(type) {
	case breakSignal, nextSignal:
		err = errorf(KindEval, "no loop for break/next, jumping to top level")
	case *returnSignal:
		err = errorf(KindEval, "no function to return from, jumping to top level")
	case *restartSignal:
		err = errorf(KindEval, "no 'restart' '%s' found", e.name)
	case *unwindSignal:
		err = errorf(KindEval, "condition handler unwound past its tryCatch")
	}
	var re *RError
	if errors.As(err, &re) {
		if re.Call == nil {
			re.Call = Nil
		}
		if rt.topLevel == 0 && !re.signaled {
			return rt.raiseAt(err, Nil)
		}
	}
	return err
}

// endTopLevel resets the stacks after a top level evaluation. result is
// the value handed back to the host, so a requested collection keeps it.
func (rt *Runtime) endTopLevel(result Value) {
	rt.frames.TruncateToSize(0)
	rt.handlers.TruncateToSize(0)
	rt.restarts.TruncateToSize(0)
	rt.evalDepth = 0
	rt.pending = rt.pending[:0]
	rt.lastWarnings = rt.warnings
	rt.warnings = nil
	if len(rt.lastWarnings) > 0 && rt.Err != nil {
		fmt.Fprint(rt.Err, FormatWarnings(rt.lastWarnings))
	}
	if rt.gcRequested {
		rt.gcRequested = false
		n := rt.collect(result)
		rt.log.Debugf("gc released %d environments", n)
	}
}

// LastWarnings returns the warnings reported after the last top level
// evaluation.
func (rt *Runtime) LastWarnings() []Warning {
	return rt.lastWarnings
}

// FormatWarnings renders warnings the way R reports them after a top
// level evaluation.
func FormatWarnings(ws []Warning) string {
	var b strings.Builder
	switch len(ws) {
	case 0:
		return ""
	case 1:
		b.WriteString("Warning message:\n")
		b.WriteString(ws[0].String())
		b.WriteByte('\n')
	default:
		b.WriteString("Warning messages:\n")
		for i, w := range ws {
			fmt.Fprintf(&b, "%d: %s\n", i+1, w.String())
		}
	}
	return b.String()
}

// warnf queues a warning raised inside a builtin.
func (rt *Runtime) warnf(format string, args ...interface{}) {
	rt.pending = append(rt.pending, fmt.Sprintf(format, args...))
}

// flushWarnings signals the warnings queued since mark against call.
func (rt *Runtime) flushWarnings(mark int, call Value) error {
	if len(rt.pending) <= mark {
		return nil
	}
	msgs := append([]string(nil), rt.pending[mark:]...)
	rt.pending = rt.pending[:mark]
	for _, msg := range msgs {
		if err := rt.signalWarning(makeCondition(msg, call, "simpleWarning", "warning", "condition")); err != nil {
			return err
		}
	}
	return nil
}

// deferWarning applies the warn policy to a warning no handler muffled.
func (rt *Runtime) deferWarning(call Value, msg string) error {
	switch {
	case rt.cfg.Warn >= 2:
		return &RError{Kind: KindEval, Call: call, Msg: "(converted from warning) " + msg}
	case rt.cfg.Warn == 1:
		if rt.Err != nil {
			w := Warning{Call: call, Msg: msg}
			fmt.Fprintf(rt.Err, "Warning: %s\n", w.String())
		}
	case rt.cfg.Warn >= 0:
		rt.warnings = append(rt.warnings, Warning{Call: call, Msg: msg})
	}
	return nil
}

// Preserve keeps v, and every environment it reaches, alive across
// collections until a matching Release.
func (rt *Runtime) Preserve(v Value) {
	rt.preserved[v]++
}

func (rt *Runtime) Release(v Value) {
	if n := rt.preserved[v]; n > 1 {
		rt.preserved[v] = n - 1
	} else {
		delete(rt.preserved, v)
	}
}

// GC runs a collection now. It must not be called while an evaluation
// is in progress.
func (rt *Runtime) GC() int {
	if rt.topLevel > 0 {
		rt.gcRequested = true
		return 0
	}
	return rt.collect()
}

// LiveEnvs is the number of environments in the arena.
func (rt *Runtime) LiveEnvs() int {
	return rt.envs.live
}
