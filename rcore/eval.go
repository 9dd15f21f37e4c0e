package rcore

import (
	"errors"
	"strconv"
)

// eval evaluates expr in env. Constants evaluate to themselves.
func (rt *Runtime) eval(expr Value, env EnvRef) (Value, error) {
	rt.visible = true
	switch x := expr.(type) {
	case *Symbol:
		return rt.evalSymbol(x, env)
	case *Language:
		return rt.evalCall(x, env)
	case *Promise:
		return rt.Force(x)
	case *Dots:
		return nil, rt.raiseAt(errorf(KindEval, "'...' used in an incorrect context"), rt.callerCall(env))
	}
	return expr, nil
}

// evalSymbol signals its errors at once, reported against the call of
// the closure whose environment env is.
func (rt *Runtime) evalSymbol(s *Symbol, env EnvRef) (Value, error) {
	v, err := rt.symbolValue(s, env)
	if err != nil {
		return nil, rt.raiseAt(err, rt.callerCall(env))
	}
	return v, nil
}

func (rt *Runtime) symbolValue(s *Symbol, env EnvRef) (Value, error) {
	if s == MissingArg || s.Name == "" {
		return nil, errorf(KindArgumentMatch, "argument is missing, with no default")
	}
	if s.Name == "..." {
		return nil, errorf(KindEval, "'...' used in an incorrect context")
	}
	if n, ok := ddIndex(s.Name); ok {
		return rt.dotsElement(env, n)
	}
	v, e, err := rt.lookupVar(env, s.Name)
	if err != nil {
		return nil, err
	}
	if e == nil {
		return nil, errorf(KindEnvironment, "object '%s' not found", s.Name)
	}
	return rt.bindingValue(s.Name, v)
}

// bindingValue forces what a symbol is bound to.
func (rt *Runtime) bindingValue(name string, v Value) (Value, error) {
	if v == Value(MissingArg) {
		return nil, errorf(KindArgumentMatch, "argument \"%s\" is missing, with no default", name)
	}
	p, ok := v.(*Promise)
	if !ok {
		if _, isDots := v.(*Dots); isDots {
			return nil, errorf(KindEval, "'...' used in an incorrect context")
		}
		return v, nil
	}
	if p.state == Forced {
		return p.value, nil
	}
	val, err := rt.Force(p)
	if err != nil {
		return nil, err
	}
	if val == Value(MissingArg) {
		return nil, errorf(KindArgumentMatch, "argument \"%s\" is missing, with no default", name)
	}
	return val, nil
}

// GetVar is get(): lookup with inheritance, forcing promises.
func (rt *Runtime) GetVar(env EnvRef, name string) (Value, error) {
	return rt.symbolValue(Sym(name), env)
}

func (rt *Runtime) dotsElement(env EnvRef, n int) (Value, error) {
	d, err := rt.lookupDots(env)
	if err != nil {
		return nil, err
	}
	if n > len(d.Args) {
		return nil, errorf(KindEval, "the ... list contains fewer than %d elements", n)
	}
	return rt.bindingValue(fmtDD(n), d.Args[n-1].Value)
}

func fmtDD(n int) string {
	return ".." + strconv.Itoa(n)
}

func (rt *Runtime) lookupDots(env EnvRef) (*Dots, error) {
	v, e, err := rt.lookupVar(env, "...")
	if err != nil {
		return nil, err
	}
	if e == nil {
		return nil, errorf(KindEval, "'...' used in an incorrect context")
	}
	switch d := v.(type) {
	case *Dots:
		return d, nil
	}
	return &Dots{}, nil
}

// FindFun looks name up as a function, skipping non-function bindings.
func (rt *Runtime) FindFun(env EnvRef, name string) (Value, error) {
	for !env.IsZero() {
		e, err := rt.Env(env)
		if err != nil {
			return nil, err
		}
		if b, ok := e.Map[name]; ok {
			v := b.Value
			if v == Value(MissingArg) {
				return nil, errorf(KindArgumentMatch, "argument \"%s\" is missing, with no default", name)
			}
			if p, isProm := v.(*Promise); isProm {
				fv, err := rt.Force(p)
				if err != nil {
					return nil, err
				}
				v = fv
			}
			if IsFunction(v) {
				return v, nil
			}
		}
		env = e.Parent
	}
	return nil, errorf(KindEnvironment, "could not find function \"%s\"", name)
}

func (rt *Runtime) evalCall(call *Language, env EnvRef) (Value, error) {
	var fn Value
	var err error
	if s, ok := call.Fn.(*Symbol); ok {
		fn, err = rt.FindFun(env, s.Name)
	} else {
		fn, err = rt.eval(call.Fn, env)
		if err == nil && !IsFunction(fn) {
			err = errorf(KindEval, "attempt to apply non-function")
		}
	}
	if err != nil {
		return nil, rt.raiseAt(err, call)
	}

	rt.evalDepth++
	defer func() { rt.evalDepth-- }()
	if rt.evalDepth > rt.cfg.MaxDepth {
		return nil, rt.raiseAt(errorf(KindEval, "evaluation nested too deeply: infinite recursion / options(expressions=)?"), call)
	}

	switch f := fn.(type) {
	case *Builtin:
		return rt.applyBuiltin(call, f, env)
	case *Closure:
		args, err := rt.promiseArgs(call.Args, env)
		if err != nil {
			return nil, rt.raiseAt(err, call)
		}
		return rt.applyClosure(call, f, args, env, nil)
	}
	return nil, rt.raiseAt(errorf(KindEval, "attempt to apply non-function"), call)
}

// applyBuiltin runs a builtin. Specials see their arguments unevaluated.
// Warnings the builtin raised are signalled against call afterwards.
func (rt *Runtime) applyBuiltin(call *Language, f *Builtin, env EnvRef) (Value, error) {
	bc := &BuiltinCall{Name: f.Name, Call: call, Env: env, formals: f.Formals}
	if f.Special {
		bc.Args = call.Args
	} else {
		args, err := rt.evalArgs(call.Args, env)
		if err != nil {
			return nil, err
		}
		if f.Dispatch || f.Group != "" {
			v, done, err := rt.dispatchBuiltin(call, f, args, env)
			if done || err != nil {
				return v, err
			}
		}
		bc.Args = argValues(args)
	}
	if f.Formals != nil && !f.Special {
		m, err := matchBuiltin(f, bc.Args)
		if err != nil {
			return nil, rt.raiseAt(err, call)
		}
		bc.matched = m
	}
	pendingMark := len(rt.pending)
	v, err := f.Fn(rt, bc)
	if werr := rt.flushWarnings(pendingMark, call); werr != nil && err == nil {
		err = werr
	}
	if err != nil {
		return nil, rt.raiseAt(err, call)
	}
	return v, nil
}

// evalArgs evaluates call arguments for a builtin, expanding `...`.
// The result keeps the source of each argument in a forced promise so
// dispatch can hand methods the original expressions.
func (rt *Runtime) evalArgs(args []Arg, env EnvRef) ([]Arg, error) {
	out := make([]Arg, 0, len(args))
	for _, a := range args {
		if s, ok := a.Value.(*Symbol); ok && s.Name == "..." {
			d, err := rt.lookupDots(env)
			if err != nil {
				return nil, rt.raiseAt(err, rt.callerCall(env))
			}
			for _, da := range d.Args {
				if da.Value == Value(MissingArg) {
					out = append(out, Arg{Tag: da.Tag, Value: MissingArg})
					continue
				}
				v, err := rt.forceValue(da.Value)
				if err != nil {
					return nil, err
				}
				out = append(out, Arg{Tag: da.Tag, Value: forcedPromise(promiseExpr(da.Value), v)})
			}
			continue
		}
		if a.Value == Value(MissingArg) {
			out = append(out, Arg{Tag: a.Tag, Value: MissingArg})
			continue
		}
		v, err := rt.eval(a.Value, env)
		if err != nil {
			return nil, err
		}
		out = append(out, Arg{Tag: a.Tag, Value: forcedPromise(a.Value, v)})
	}
	return out, nil
}

// argValues strips the promise wrappers evalArgs added.
func argValues(args []Arg) []Arg {
	out := make([]Arg, len(args))
	for i, a := range args {
		v := a.Value
		if p, ok := v.(*Promise); ok && p.state == Forced {
			v = p.value
		}
		out[i] = Arg{Tag: a.Tag, Value: v}
	}
	return out
}

// promiseArgs wraps closure call arguments in promises, expanding `...`
// into the promises it holds. Constants are passed as themselves.
func (rt *Runtime) promiseArgs(args []Arg, env EnvRef) ([]Arg, error) {
	out := make([]Arg, 0, len(args))
	for _, a := range args {
		switch x := a.Value.(type) {
		case *Symbol:
			if x.Name == "..." {
				v, _, found := rt.Lookup(env, "...")
				if !found {
					return nil, errorf(KindEval, "'...' used in an incorrect context")
				}
				if d, ok := v.(*Dots); ok {
					out = append(out, d.Args...)
				}
				continue
			}
			if x == MissingArg {
				out = append(out, a)
				continue
			}
			out = append(out, Arg{Tag: a.Tag, Value: NewPromise(x, env)})
		case *Language:
			out = append(out, Arg{Tag: a.Tag, Value: NewPromise(x, env)})
		case *Promise:
			out = append(out, a)
		default:
			out = append(out, a)
		}
	}
	return out, nil
}

// applyClosure matches args to fn's formals in a fresh environment,
// pushes a frame and evaluates the body. The frame is popped and its
// on.exit expressions run on every path out.
func (rt *Runtime) applyClosure(call *Language, fn *Closure, args []Arg, sysparent EnvRef, dctx *dispatchContext) (Value, error) {
	m, err := MatchArgs(fn.formalNames(), args)
	if err != nil {
		return nil, rt.raiseAt(err, call)
	}
	fenv := rt.NewEnv(fn.Env)
	e, err := rt.Env(fenv)
	if err != nil {
		return nil, err
	}
	for i, f := range fn.Formals {
		if f.Tag == "..." {
			e.bindFormal("...", &Dots{Args: m.Dots}, len(m.Dots) == 0)
			continue
		}
		if m.Supplied(i) {
			e.bindFormal(f.Tag, m.Slots[i], false)
			continue
		}
		if f.Value != Value(MissingArg) && f.Value != nil {
			e.bindFormal(f.Tag, NewPromise(f.Value, fenv), true)
		} else {
			e.bindFormal(f.Tag, MissingArg, true)
		}
	}
	if dctx != nil {
		dctx.bind(rt, e)
	}

	frame := &CallFrame{
		Call:      call,
		Fn:        fn,
		Env:       fenv,
		SysParent: sysparent,
		PromArgs:  args,
		dispatch:  dctx,
	}
	depth := rt.frames.Size()
	rt.pushFrame(frame)
	rt.log.Debugf("enter %s (depth %d)", deparseOneLine(call.Fn), depth+1)

	val, err := rt.eval(fn.Body, fenv)
	if err != nil {
		var rs *returnSignal
		if errors.As(err, &rs) && rs.Env == fenv {
			val, err = rs.Value, nil
		}
	}
	if err != nil {
		switch err.(type) {
		case breakSignal, nextSignal:
			err = errorf(KindEval, "no loop for break/next, jumping to top level")
		}
		err = rt.raiseAt(err, call)
	}
	saved := rt.visible
	exitErr := rt.runOnExit(frame)
	rt.visible = saved
	rt.popFrame(depth)
	if err == nil && exitErr != nil {
		return nil, exitErr
	}
	return val, err
}

// raiseAt gives an R error without a call context the context call, and
// signals it to the condition handlers once. Non-error signals pass
// through untouched.
func (rt *Runtime) raiseAt(err error, call Value) error {
	var re *RError
	if !errors.As(err, &re) {
		return err
	}
	if re.Call == nil {
		if call == nil {
			re.Call = Nil
		} else {
			re.Call = call
		}
	}
	if re.signaled {
		return err
	}
	re.signaled = true
	if serr := rt.signalCondition(re.Condition(), true); serr != nil {
		return serr
	}
	return err
}

// CallFunction applies fn to already evaluated arguments, as do.call
// and the apply family do. The call is recorded as calling fnExpr.
func (rt *Runtime) CallFunction(fn Value, fnExpr Value, args []Arg, env EnvRef) (Value, error) {
	call := &Language{Fn: fnExpr, Args: args}
	switch f := fn.(type) {
	case *Closure:
		return rt.applyClosure(call, f, args, env, nil)
	case *Builtin:
		if f.Special {
			return rt.applyBuiltin(call, f, env)
		}
		bc := &BuiltinCall{Name: f.Name, Call: call, Env: env, Args: argValues(args), formals: f.Formals}
		if f.Dispatch || f.Group != "" {
			wrapped := make([]Arg, len(args))
			for i, a := range args {
				wrapped[i] = Arg{Tag: a.Tag, Value: forcedPromise(a.Value, a.Value)}
			}
			v, done, err := rt.dispatchBuiltin(call, f, wrapped, env)
			if done || err != nil {
				return v, err
			}
		}
		if f.Formals != nil {
			m, err := matchBuiltin(f, bc.Args)
			if err != nil {
				return nil, rt.raiseAt(err, call)
			}
			bc.matched = m
		}
		mark := len(rt.pending)
		v, err := f.Fn(rt, bc)
		if werr := rt.flushWarnings(mark, call); werr != nil && err == nil {
			err = werr
		}
		if err != nil {
			return nil, rt.raiseAt(err, call)
		}
		return v, nil
	}
	return nil, errorf(KindEval, "attempt to apply non-function")
}

// evalSeq evaluates the expressions of a `{` block.
func (rt *Runtime) evalSeq(args []Arg, env EnvRef) (Value, error) {
	var v Value = Nil
	rt.visible = true
	for _, a := range args {
		var err error
		v, err = rt.eval(a.Value, env)
		if err != nil {
			return nil, err
		}
	}
	return v, nil
}

// makeClosure evaluates a `function` expression.
func (rt *Runtime) makeClosure(call *Language, env EnvRef) (Value, error) {
	if len(call.Args) < 2 {
		return nil, errorf(KindEval, "invalid formal argument list for \"function\"")
	}
	var formals []Arg
	switch pl := call.Args[0].Value.(type) {
	case *Pairlist:
		formals = pl.Args
	case *NullValue:
	default:
		return nil, errorf(KindEval, "invalid formal argument list for \"function\"")
	}
	return &Closure{Formals: formals, Body: call.Args[1].Value, Env: env}, nil
}
