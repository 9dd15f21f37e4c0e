package rcore

// Frame introspection builtins. Each reports on the frame whose
// environment the builtin was called from, so a default argument such
// as sys.parent() forced deep in the stack still describes the function
// it belongs to.

func whichArg(bc *BuiltinCall, name string, def int) (int, error) {
	v := bc.Arg(name)
	if v == nil {
		return def, nil
	}
	return asScalarInt(v, name)
}

func SysCallFunction(rt *Runtime, bc *BuiltinCall) (Value, error) {
	which, err := whichArg(bc, "which", 0)
	if err != nil {
		return nil, err
	}
	idx, err := rt.frameIndexFor(which, rt.contextOf(bc.Env))
	if err != nil {
		return nil, err
	}
	if idx < 0 {
		return Nil, nil
	}
	return rt.frame(idx).Call, nil
}

func SysFunctionFunction(rt *Runtime, bc *BuiltinCall) (Value, error) {
	which, err := whichArg(bc, "which", 0)
	if err != nil {
		return nil, err
	}
	idx, err := rt.frameIndexFor(which, rt.contextOf(bc.Env))
	if err != nil {
		return nil, err
	}
	if idx < 0 {
		return nil, errorf(KindEval, "not that many frames on the stack")
	}
	return rt.frame(idx).Fn, nil
}

func SysFrameFunction(rt *Runtime, bc *BuiltinCall) (Value, error) {
	which, err := whichArg(bc, "which", 0)
	if err != nil {
		return nil, err
	}
	if which == 0 {
		return rt.EnvValue(rt.GlobalEnv), nil
	}
	idx, err := rt.frameIndexFor(which, rt.contextOf(bc.Env))
	if err != nil {
		return nil, err
	}
	if idx < 0 {
		return rt.EnvValue(rt.GlobalEnv), nil
	}
	return rt.EnvValue(rt.frame(idx).Env), nil
}

func SysNframeFunction(rt *Runtime, bc *BuiltinCall) (Value, error) {
	return intScalar(rt.contextOf(bc.Env) + 1), nil
}

func SysParentFunction(rt *Runtime, bc *BuiltinCall) (Value, error) {
	n, err := whichArg(bc, "n", 1)
	if err != nil {
		return nil, err
	}
	if n < 1 {
		return nil, errorf(KindEval, "invalid '%s' value", "n")
	}
	return intScalar(rt.sysParent(n, rt.contextOf(bc.Env))), nil
}

func SysParentsFunction(rt *Runtime, bc *BuiltinCall) (Value, error) {
	k := rt.contextOf(bc.Env)
	nframe := k + 1
	r := make([]int32, nframe)
	for i := 0; i < nframe; i++ {
		r[i] = int32(rt.sysParent(nframe-i, k))
	}
	return &Integer{V: r}, nil
}

func SysCallsFunction(rt *Runtime, bc *BuiltinCall) (Value, error) {
	k := rt.contextOf(bc.Env)
	if k < 0 {
		return Nil, nil
	}
	calls := make([]Value, k+1)
	for i := 0; i <= k; i++ {
		calls[i] = rt.frame(i).Call
	}
	return NewList(calls...), nil
}

func SysFramesFunction(rt *Runtime, bc *BuiltinCall) (Value, error) {
	k := rt.contextOf(bc.Env)
	if k < 0 {
		return Nil, nil
	}
	envs := make([]Value, k+1)
	for i := 0; i <= k; i++ {
		envs[i] = rt.EnvValue(rt.frame(i).Env)
	}
	return NewList(envs...), nil
}

func ParentFrameFunction(rt *Runtime, bc *BuiltinCall) (Value, error) {
	n, err := whichArg(bc, "n", 1)
	if err != nil {
		return nil, err
	}
	if n < 1 {
		return nil, errorf(KindEval, "invalid '%s' value", "n")
	}
	return rt.EnvValue(rt.parentFrameEnv(bc.Env, n)), nil
}

func NargsFunction(rt *Runtime, bc *BuiltinCall) (Value, error) {
	k := rt.contextOf(bc.Env)
	if k < 0 {
		return intScalar(0), nil
	}
	return intScalar(len(rt.frame(k).PromArgs)), nil
}

// OnExitFunction is on.exit(expr, add = FALSE, after = TRUE).
func OnExitFunction(rt *Runtime, bc *BuiltinCall) (Value, error) {
	m, err := MatchArgs([]string{"expr", "add", "after"}, bc.Args)
	if err != nil {
		return nil, err
	}
	add, after := false, true
	if m.Supplied(1) {
		v, err := rt.eval(m.Slots[1], bc.Env)
		if err != nil {
			return nil, err
		}
		if add, err = asFlag(v, "add"); err != nil {
			return nil, err
		}
	}
	if m.Supplied(2) {
		v, err := rt.eval(m.Slots[2], bc.Env)
		if err != nil {
			return nil, err
		}
		if after, err = asFlag(v, "after"); err != nil {
			return nil, err
		}
	}
	rt.visible = false
	k := rt.contextOf(bc.Env)
	if k < 0 {
		return Nil, nil
	}
	f := rt.frame(k)
	var expr Value
	if m.Supplied(0) {
		expr = m.Slots[0]
	}
	switch {
	case !add:
		f.onExit = nil
		if expr != nil {
			f.onExit = []Value{expr}
		}
	case expr == nil:
	case after:
		f.onExit = append(f.onExit, expr)
	default:
		f.onExit = append([]Value{expr}, f.onExit...)
	}
	return Nil, nil
}

func RecallFunction(rt *Runtime, bc *BuiltinCall) (Value, error) {
	k := rt.contextOf(bc.Env)
	if k < 0 {
		return nil, errorf(KindEval, "'Recall' called from outside a closure")
	}
	f := rt.frame(k)
	return rt.CallFunction(f.Fn, f.Call.Fn, bc.Args, f.SysParent)
}

// MatchCallFunction is match.call(definition, call, expand.dots, envir):
// the call with every argument tagged by the formal it matched, in
// formals order.
func MatchCallFunction(rt *Runtime, bc *BuiltinCall) (Value, error) {
	k := rt.contextOf(bc.Env)
	var fn Value
	var call *Language
	var envir EnvRef
	if k >= 0 {
		f := rt.frame(k)
		fn, call, envir = f.Fn, f.Call, f.SysParent
	}
	if d := bc.Arg("definition"); d != nil && d != Value(Nil) {
		fn = d
	}
	if c := bc.Arg("call"); c != nil {
		l, ok := c.(*Language)
		if !ok {
			return nil, errorf(KindEval, "invalid '%s' argument", "call")
		}
		call = l
	}
	if e, ok := bc.Arg("envir").(*EnvValue); ok {
		envir = e.Ref
	}
	expand := true
	if v := bc.Arg("expand.dots"); v != nil {
		var err error
		if expand, err = asFlag(v, "expand.dots"); err != nil {
			return nil, err
		}
	}
	if call == nil || fn == nil {
		return nil, errorf(KindEval, "match.call() was called from outside a function")
	}
	clo, ok := fn.(*Closure)
	if !ok {
		return nil, errorf(KindEval, "invalid '%s' argument", "definition")
	}

	var supplied []Arg
	for _, a := range call.Args {
		if s, ok := a.Value.(*Symbol); ok && s.Name == "..." && !envir.IsZero() {
			if d, err := rt.lookupDots(envir); err == nil {
				for _, da := range d.Args {
					supplied = append(supplied, Arg{Tag: da.Tag, Value: promiseExpr(da.Value)})
				}
			}
			continue
		}
		supplied = append(supplied, a)
	}
	formals := clo.formalNames()
	m, err := MatchArgs(formals, supplied)
	if err != nil {
		return nil, err
	}
	out := &Language{Fn: call.Fn}
	for i, f := range formals {
		if f == "..." {
			if len(m.Dots) == 0 {
				continue
			}
			if expand {
				out.Args = append(out.Args, m.Dots...)
			} else {
				out.Args = append(out.Args, Arg{Tag: "...", Value: &Pairlist{Args: m.Dots}})
			}
			continue
		}
		if m.Slots[i] != nil {
			out.Args = append(out.Args, Arg{Tag: f, Value: m.Slots[i]})
		}
	}
	return out, nil
}

// FrameFunctions returns the call stack introspection builtins.
func FrameFunctions() map[string]*Builtin {
	return map[string]*Builtin{
		"sys.call":     {Fn: SysCallFunction, Formals: []string{"which"}},
		"sys.function": {Fn: SysFunctionFunction, Formals: []string{"which"}},
		"sys.frame":    {Fn: SysFrameFunction, Formals: []string{"which"}},
		"sys.nframe":   {Fn: SysNframeFunction, Formals: []string{}},
		"sys.parent":   {Fn: SysParentFunction, Formals: []string{"n"}},
		"sys.parents":  {Fn: SysParentsFunction, Formals: []string{}},
		"sys.calls":    {Fn: SysCallsFunction, Formals: []string{}},
		"sys.frames":   {Fn: SysFramesFunction, Formals: []string{}},
		"parent.frame": {Fn: ParentFrameFunction, Formals: []string{"n"}},
		"nargs":        {Fn: NargsFunction, Formals: []string{}},
		"on.exit":      {Fn: OnExitFunction, Special: true},
		"Recall":       {Fn: RecallFunction},
		"match.call":   {Fn: MatchCallFunction, Formals: []string{"definition", "call", "expand.dots", "envir"}},
	}
}
