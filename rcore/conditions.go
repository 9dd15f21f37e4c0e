package rcore

import (
	"errors"
	"fmt"
	"strings"
)

// catchPoint identifies one tryCatch or try activation. The exiting
// handlers it establishes share it.
type catchPoint struct {
	frames   int
	restarts int
}

// handlerEntry is an established condition handler. Calling handlers
// run in place with the handler stack cut back to below; exiting ones
// unwind to their catch point first.
type handlerEntry struct {
	class   string
	handler Value
	exiting bool
	below   int
	token   *catchPoint
	env     EnvRef
}

func (h *handlerEntry) IsStackElem() {}

// restartEntry is an established restart, e.g. muffleWarning.
type restartEntry struct {
	name string
}

func (r *restartEntry) IsStackElem() {}

// makeCondition builds list(message = msg, call = call) with class.
func makeCondition(msg string, call Value, class ...string) *List {
	if call == nil {
		call = Nil
	}
	l := &List{V: []Value{strScalar(msg), call}}
	l.attrs = l.attrs.With("names", Str("message", "call")).With("class", Str(class...))
	return l
}

func conditionField(cond Value, field string) Value {
	l, ok := cond.(*List)
	if !ok {
		return Nil
	}
	for i, n := range namesOf(l) {
		if n == field && i < len(l.V) {
			return l.V[i]
		}
	}
	return Nil
}

func conditionMessage(cond Value) string {
	if c, ok := conditionField(cond, "message").(*Character); ok && c.Len() > 0 {
		return c.V[0]
	}
	return ""
}

// signalCondition offers cond to the established handlers, innermost
// first. An exiting handler ends the search with an unwindSignal;
// calling handlers that return let the search continue.
func (rt *Runtime) signalCondition(cond Value, isError bool) error {
	classes := classAttr(cond)
	for i := rt.handlers.Size() - 1; i >= 0; i-- {
		if i >= rt.handlers.Size() {
			continue
		}
		h := rt.handlers.At(i).(*handlerEntry)
		if !classMatches(classes, h.class) {
			continue
		}
		if h.exiting {
			return &unwindSignal{target: h, cond: cond, handler: h.handler}
		}
		saved := rt.handlers.Clone()
		rt.handlers.TruncateToSize(h.below)
		_, err := rt.CallFunction(h.handler, Sym("handler"), []Arg{{Value: cond}}, h.env)
		rt.handlers = saved
		if err != nil {
			return err
		}
	}
	return nil
}

func classMatches(classes []string, want string) bool {
	for _, c := range classes {
		if c == want {
			return true
		}
	}
	return false
}

// signalWarning signals a warning condition with a muffleWarning restart
// established. Unless a handler muffles it the warn policy applies.
func (rt *Runtime) signalWarning(cond *List) error {
	re := &restartEntry{name: "muffleWarning"}
	depth := rt.restarts.Size()
	rt.restarts.Push(re)
	err := rt.signalCondition(cond, false)
	rt.restarts.TruncateToSize(depth)
	var rs *restartSignal
	if errors.As(err, &rs) && rs.token == re {
		return nil
	}
	if err != nil {
		return err
	}
	return rt.deferWarning(conditionField(cond, "call"), conditionMessage(cond))
}

// settle signals an error nothing has signalled yet, while the caller's
// handlers are still established.
func (rt *Runtime) settle(err error) error {
	var re *RError
	if errors.As(err, &re) && !re.signaled {
		return rt.raiseAt(err, Nil)
	}
	return err
}

// callerCall is the call of the closure a builtin was called from, Nil
// at top level.
func (rt *Runtime) callerCall(env EnvRef) Value {
	if k := rt.contextOf(env); k >= 0 {
		return rt.frame(k).Call
	}
	return Nil
}

// pasteMessage joins stop()/warning() arguments as as.character would.
func (rt *Runtime) pasteMessage(args []Arg) (string, error) {
	var b strings.Builder
	for _, a := range args {
		cv, err := asCharacterVector(a.Value, rt)
		if err != nil {
			return "", err
		}
		for _, s := range cv.V {
			if s == NAString {
				s = "NA"
			}
			b.WriteString(s)
		}
	}
	return b.String(), nil
}

func callFlag(bc *BuiltinCall) (bool, error) {
	if v := bc.Arg("call."); v != nil {
		return asFlag(v, "call.")
	}
	return true, nil
}

func StopFunction(rt *Runtime, bc *BuiltinCall) (Value, error) {
	withCall, err := callFlag(bc)
	if err != nil {
		return nil, err
	}
	var call Value = Nil
	if withCall {
		call = rt.callerCall(bc.Env)
	}
	dots := bc.Dots()
	if len(dots) == 1 && inheritsFrom(dots[0].Value, "condition") {
		cond := dots[0].Value.(*List)
		re := &RError{Kind: KindUser, Call: conditionField(cond, "call"), Msg: conditionMessage(cond), Cond: cond, signaled: true}
		if err := rt.signalCondition(cond, true); err != nil {
			return nil, err
		}
		return nil, re
	}
	msg, err := rt.pasteMessage(dots)
	if err != nil {
		return nil, err
	}
	re := &RError{Kind: KindUser, Call: call, Msg: msg, signaled: true}
	if err := rt.signalCondition(re.Condition(), true); err != nil {
		return nil, err
	}
	return nil, re
}

func WarningFunction(rt *Runtime, bc *BuiltinCall) (Value, error) {
	withCall, err := callFlag(bc)
	if err != nil {
		return nil, err
	}
	dots := bc.Dots()
	var cond *List
	if len(dots) == 1 && inheritsFrom(dots[0].Value, "condition") {
		cond = dots[0].Value.(*List)
	} else {
		msg, err := rt.pasteMessage(dots)
		if err != nil {
			return nil, err
		}
		var call Value = Nil
		if withCall {
			call = rt.callerCall(bc.Env)
		}
		cond = makeCondition(msg, call, "simpleWarning", "warning", "condition")
	}
	if err := rt.signalWarning(cond); err != nil {
		return nil, err
	}
	rt.visible = false
	return strScalar(conditionMessage(cond)), nil
}

func SignalConditionFunction(rt *Runtime, bc *BuiltinCall) (Value, error) {
	cond := bc.Arg("cond")
	if cond == nil {
		return nil, errorf(KindArgumentMatch, "argument \"cond\" is missing, with no default")
	}
	if err := rt.signalCondition(cond, false); err != nil {
		return nil, err
	}
	return Nil, nil
}

func InvokeRestartFunction(rt *Runtime, bc *BuiltinCall) (Value, error) {
	r := bc.Arg("r")
	if r == nil {
		return nil, errorf(KindArgumentMatch, "argument \"r\" is missing, with no default")
	}
	name, err := asScalarString(r, "r")
	if err != nil {
		return nil, err
	}
	for i := rt.restarts.Size() - 1; i >= 0; i-- {
		re := rt.restarts.At(i).(*restartEntry)
		if re.name == name {
			return nil, &restartSignal{name: name, token: re}
		}
	}
	return nil, errorf(KindEval, "no 'restart' '%s' found", name)
}

// handlerArgs evaluates the tagged handler arguments of tryCatch and
// withCallingHandlers.
func (rt *Runtime) handlerArgs(args []Arg, env EnvRef) ([]Arg, error) {
	out := make([]Arg, 0, len(args))
	for _, a := range args {
		if a.Tag == "" {
			return nil, errorf(KindEval, "condition handlers must be specified with a condition class")
		}
		h, err := rt.eval(a.Value, env)
		if err != nil {
			return nil, err
		}
		if !IsFunction(h) {
			return nil, errorf(KindEval, "attempt to apply non-function")
		}
		out = append(out, Arg{Tag: a.Tag, Value: h})
	}
	return out, nil
}

// TryCatchFunction is tryCatch(expr, ..., finally). The first handler
// in argument order whose class matches wins.
func TryCatchFunction(rt *Runtime, bc *BuiltinCall) (Value, error) {
	m, err := MatchArgs([]string{"expr", "...", "finally"}, bc.Args)
	if err != nil {
		return nil, err
	}
	handlers, err := rt.handlerArgs(m.Dots, bc.Env)
	if err != nil {
		return nil, err
	}
	cp := &catchPoint{frames: rt.frames.Size(), restarts: rt.restarts.Size()}
	below := rt.handlers.Size()
	for i := len(handlers) - 1; i >= 0; i-- {
		rt.handlers.Push(&handlerEntry{
			class:   handlers[i].Tag,
			handler: handlers[i].Value,
			exiting: true,
			below:   below,
			token:   cp,
			env:     bc.Env,
		})
	}

	var v Value = Nil
	if m.Supplied(0) {
		v, err = rt.eval(m.Slots[0], bc.Env)
		if err != nil {
			err = rt.settle(err)
		}
	}
	rt.handlers.TruncateToSize(below)

	var us *unwindSignal
	if err != nil && errors.As(err, &us) && us.target.token == cp {
		rt.frames.TruncateToSize(cp.frames)
		rt.restarts.TruncateToSize(cp.restarts)
		v, err = rt.CallFunction(us.handler, Sym("value"), []Arg{{Value: us.cond}}, bc.Env)
	}

	if m.Supplied(2) {
		visible := rt.visible
		if _, ferr := rt.eval(m.Slots[2], bc.Env); ferr != nil {
			return nil, ferr
		}
		rt.visible = visible
	}
	return v, err
}

// WithCallingHandlersFunction is withCallingHandlers(expr, ...).
func WithCallingHandlersFunction(rt *Runtime, bc *BuiltinCall) (Value, error) {
	m, err := MatchArgs([]string{"expr", "..."}, bc.Args)
	if err != nil {
		return nil, err
	}
	handlers, err := rt.handlerArgs(m.Dots, bc.Env)
	if err != nil {
		return nil, err
	}
	below := rt.handlers.Size()
	for i := len(handlers) - 1; i >= 0; i-- {
		rt.handlers.Push(&handlerEntry{
			class:   handlers[i].Tag,
			handler: handlers[i].Value,
			below:   below,
			env:     bc.Env,
		})
	}
	var v Value = Nil
	if m.Supplied(0) {
		v, err = rt.eval(m.Slots[0], bc.Env)
		if err != nil {
			err = rt.settle(err)
		}
	}
	rt.handlers.TruncateToSize(below)
	return v, err
}

// TryFunction is try(expr, silent = FALSE): an error becomes an invisible
// "try-error" string, reported on Err unless silent.
func TryFunction(rt *Runtime, bc *BuiltinCall) (Value, error) {
	m, err := MatchArgs([]string{"expr", "silent", "outFile"}, bc.Args)
	if err != nil {
		return nil, err
	}
	silent := false
	if m.Supplied(1) {
		sv, err := rt.eval(m.Slots[1], bc.Env)
		if err != nil {
			return nil, err
		}
		if silent, err = asFlag(sv, "silent"); err != nil {
			return nil, err
		}
	}
	cp := &catchPoint{frames: rt.frames.Size(), restarts: rt.restarts.Size()}
	below := rt.handlers.Size()
	rt.handlers.Push(&handlerEntry{class: "error", exiting: true, below: below, token: cp, env: bc.Env})

	var v Value = Nil
	if m.Supplied(0) {
		v, err = rt.eval(m.Slots[0], bc.Env)
		if err != nil {
			err = rt.settle(err)
		}
	}
	rt.handlers.TruncateToSize(below)

	var us *unwindSignal
	if err == nil || !errors.As(err, &us) || us.target.token != cp {
		return v, err
	}
	rt.frames.TruncateToSize(cp.frames)
	rt.restarts.TruncateToSize(cp.restarts)

	call := conditionField(us.cond, "call")
	msg := conditionMessage(us.cond)
	var report string
	if call == Value(Nil) {
		report = fmt.Sprintf("Error : %s\n", msg)
	} else {
		report = fmt.Sprintf("Error in %s : %s\n", deparseOneLine(call), msg)
	}
	if !silent && rt.Err != nil {
		fmt.Fprint(rt.Err, report)
	}
	res := strScalar(report)
	res.attrs = res.attrs.With("class", Str("try-error")).With("condition", us.cond)
	rt.visible = false
	return res, nil
}

// ConditionFunctions returns the condition system builtins.
func ConditionFunctions() map[string]*Builtin {
	return map[string]*Builtin{
		"stop":                {Fn: StopFunction, Formals: []string{"...", "call."}},
		"warning":             {Fn: WarningFunction, Formals: []string{"...", "call."}},
		"signalCondition":     {Fn: SignalConditionFunction, Formals: []string{"cond", "message", "call"}},
		"invokeRestart":       {Fn: InvokeRestartFunction, Formals: []string{"r", "..."}},
		"tryCatch":            {Fn: TryCatchFunction, Special: true},
		"withCallingHandlers": {Fn: WithCallingHandlersFunction, Special: true},
		"try":                 {Fn: TryFunction, Special: true},
	}
}
