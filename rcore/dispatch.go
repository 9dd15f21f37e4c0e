package rcore

import (
	"fmt"
	"strings"
)

// dispatchContext is what a method knows about how it was reached. It
// is bound into the method environment as .Generic, .Class, .Method,
// .GenericCallEnv and .GenericDefEnv, and read back by NextMethod.
type dispatchContext struct {
	generic string
	classes []string
	method  string
	group   string
	callEnv EnvRef
	defEnv  EnvRef
}

func (d *dispatchContext) bind(rt *Runtime, e *Env) {
	e.Map[".Generic"] = &Binding{Value: strScalar(d.generic)}
	e.Map[".Class"] = &Binding{Value: Str(d.classes...)}
	e.Map[".Method"] = &Binding{Value: strScalar(d.method)}
	e.Map[".GenericCallEnv"] = &Binding{Value: rt.EnvValue(d.callEnv)}
	e.Map[".GenericDefEnv"] = &Binding{Value: rt.EnvValue(d.defEnv)}
	if d.group != "" {
		e.Map[".Group"] = &Binding{Value: strScalar(d.group)}
	}
}

// methodRegistry holds methods registered with registerS3method.
type methodRegistry struct {
	methods map[[2]string]Value
}

func newMethodRegistry() *methodRegistry {
	return &methodRegistry{methods: make(map[[2]string]Value)}
}

func (r *methodRegistry) register(generic, class string, fn Value) {
	r.methods[[2]string{generic, class}] = fn
}

func (r *methodRegistry) lookup(generic, class string) (Value, bool) {
	fn, ok := r.methods[[2]string{generic, class}]
	return fn, ok
}

// RegisterS3Method makes fn the method of generic for class regardless
// of what environment generic is called from.
func (rt *Runtime) RegisterS3Method(generic, class string, fn Value) {
	rt.s3.register(generic, class, fn)
}

// findFunQuiet is FindFun that reports absence as a nil function.
func (rt *Runtime) findFunQuiet(env EnvRef, name string) (Value, error) {
	fn, err := rt.FindFun(env, name)
	if err != nil {
		if IsKind(err, KindEnvironment) && strings.HasPrefix(err.(*RError).Msg, "could not find function") {
			return nil, nil
		}
		return nil, err
	}
	return fn, nil
}

// lookupMethod finds generic.class from the generic's call environment,
// then from its definition environment, then in the registry.
func (rt *Runtime) lookupMethod(generic, class string, callEnv, defEnv EnvRef) (Value, error) {
	name := generic + "." + class
	fn, err := rt.findFunQuiet(callEnv, name)
	if err != nil || fn != nil {
		return fn, err
	}
	if !defEnv.IsZero() && defEnv != callEnv {
		fn, err = rt.findFunQuiet(defEnv, name)
		if err != nil || fn != nil {
			return fn, err
		}
	}
	if fn, ok := rt.s3.lookup(generic, class); ok {
		return fn, nil
	}
	return nil, nil
}

func noMethodError(generic string, classes []string) *RError {
	var cls string
	if len(classes) == 1 {
		cls = fmt.Sprintf("%q", classes[0])
	} else {
		q := make([]string, len(classes))
		for i, c := range classes {
			q[i] = "'" + c + "'"
		}
		cls = "\"c(" + strings.Join(q, ", ") + ")\""
	}
	return errorf(KindDispatch, "no applicable method for '%s' applied to an object of class %s", generic, cls)
}

// applyMethod runs fn as a method for the call recorded in call, on
// already matched promise arguments.
func (rt *Runtime) applyMethod(call *Language, fn Value, args []Arg, sysparent EnvRef, dctx *dispatchContext) (Value, error) {
	mcall := &Language{Fn: Sym(dctx.method), Args: call.Args, attrs: call.attrs}
	rt.log.Debugf("dispatch %s -> %s", dctx.generic, dctx.method)
	switch f := fn.(type) {
	case *Closure:
		return rt.applyClosure(mcall, f, args, sysparent, dctx)
	case *Builtin:
		vals := make([]Arg, len(args))
		for i, a := range args {
			if a.Value == Value(MissingArg) {
				vals[i] = a
				continue
			}
			v, err := rt.forceValue(a.Value)
			if err != nil {
				return nil, err
			}
			vals[i] = Arg{Tag: a.Tag, Value: v}
		}
		return rt.callBuiltinValues(mcall, f, vals, sysparent)
	}
	return nil, errorf(KindEval, "attempt to apply non-function")
}

// callBuiltinValues runs a non-special builtin on evaluated arguments
// without offering them to dispatch again.
func (rt *Runtime) callBuiltinValues(call *Language, f *Builtin, args []Arg, env EnvRef) (Value, error) {
	bc := &BuiltinCall{Name: f.Name, Call: call, Env: env, Args: args, formals: f.Formals}
	if f.Formals != nil {
		m, err := matchBuiltin(f, args)
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

// dispatchS3 tries generic.class for each class, then generic.default.
func (rt *Runtime) dispatchS3(generic string, classes []string, call *Language, args []Arg, sysparent, callEnv, defEnv EnvRef, withDefault bool) (Value, bool, error) {
	for i, c := range classes {
		fn, err := rt.lookupMethod(generic, c, callEnv, defEnv)
		if err != nil {
			return nil, false, err
		}
		if fn != nil {
			dctx := &dispatchContext{generic: generic, classes: classes[i:], method: generic + "." + c, callEnv: callEnv, defEnv: defEnv}
			v, err := rt.applyMethod(call, fn, args, sysparent, dctx)
			return v, true, err
		}
	}
	if !withDefault {
		return nil, false, nil
	}
	fn, err := rt.lookupMethod(generic, "default", callEnv, defEnv)
	if err != nil || fn == nil {
		return nil, false, err
	}
	dctx := &dispatchContext{generic: generic, method: generic + ".default", callEnv: callEnv, defEnv: defEnv}
	v, err := rt.applyMethod(call, fn, args, sysparent, dctx)
	return v, true, err
}

// dispatchObject is the object UseMethod dispatches on when none is
// given: the first argument of the generic's frame.
func (rt *Runtime) dispatchObject(f *CallFrame, generic string) (Value, error) {
	clo, ok := f.Fn.(*Closure)
	if !ok || len(clo.Formals) == 0 {
		return nil, errorf(KindDispatch, "UseMethod called from outside a function")
	}
	first := clo.Formals[0].Tag
	if first == "..." {
		d, err := rt.lookupDots(f.Env)
		if err != nil || len(d.Args) == 0 {
			return nil, noMethodError(generic, []string{"NULL"})
		}
		return rt.forceValue(d.Args[0].Value)
	}
	b, ok := rt.LookupLocal(f.Env, first)
	if !ok || b.Value == Value(MissingArg) {
		return Nil, nil
	}
	return rt.bindingValue(first, b.Value)
}

func UseMethodFunction(rt *Runtime, bc *BuiltinCall) (Value, error) {
	g := bc.Arg("generic")
	if g == nil {
		return nil, errorf(KindArgumentMatch, "argument \"generic\" is missing, with no default")
	}
	gs, ok := g.(*Character)
	if !ok || gs.Len() != 1 {
		return nil, errorf(KindDispatch, "'generic' argument must be a character string")
	}
	generic := gs.V[0]
	k := rt.contextOf(bc.Env)
	if k < 0 {
		return nil, errorf(KindDispatch, "UseMethod called from outside a function")
	}
	frame := rt.frame(k)
	obj := bc.Arg("object")
	if obj == nil {
		var err error
		if obj, err = rt.dispatchObject(frame, generic); err != nil {
			return nil, err
		}
	}
	classes := dispatchClass(obj)
	var defEnv EnvRef
	if clo, ok := frame.Fn.(*Closure); ok {
		defEnv = clo.Env
	}
	v, found, err := rt.dispatchS3(generic, classes, frame.Call, frame.PromArgs, frame.SysParent, frame.SysParent, defEnv, true)
	if err != nil {
		return nil, err
	}
	if !found {
		return nil, noMethodError(generic, implicitForError(obj))
	}
	return nil, &returnSignal{Env: frame.Env, Value: v}
}

// implicitForError is the class vector named in dispatch errors.
func implicitForError(obj Value) []string {
	if c := classAttr(obj); c != nil {
		return c
	}
	return dispatchClass(obj)
}

// nextArgs rebuilds the arguments of the current method call for the
// next method: every argument matched to a named formal becomes a
// promise of that formal in the method's environment, so changes the
// method made to it are seen; `...` arguments pass through.
func (rt *Runtime) nextArgs(frame *CallFrame, extra []Arg) ([]Arg, error) {
	args := make([]Arg, len(frame.PromArgs))
	copy(args, frame.PromArgs)
	if clo, ok := frame.Fn.(*Closure); ok {
		formals := clo.formalNames()
		m, err := MatchArgs(formals, frame.PromArgs)
		if err != nil {
			return nil, err
		}
		for j, a := range args {
			for i, f := range formals {
				if f == "..." || m.Slots[i] == nil || m.Slots[i] != a.Value {
					continue
				}
				if a.Value == Value(MissingArg) {
					if b, ok := rt.LookupLocal(frame.Env, f); ok && b.Value == Value(MissingArg) {
						break
					}
				}
				args[j] = Arg{Tag: a.Tag, Value: NewPromise(Sym(f), frame.Env)}
				break
			}
		}
	}
outer:
	for _, e := range extra {
		if e.Tag != "" {
			for j := range args {
				if args[j].Tag == e.Tag {
					args[j].Value = e.Value
					continue outer
				}
			}
		}
		args = append(args, e)
	}
	return args, nil
}

func NextMethodFunction(rt *Runtime, bc *BuiltinCall) (Value, error) {
	k := rt.contextOf(bc.Env)
	if k < 0 {
		return nil, errorf(KindDispatch, "NextMethod called from outside a method dispatch")
	}
	frame := rt.frame(k)
	dctx := frame.dispatch

	generic := ""
	if g, ok := bc.Arg("generic").(*Character); ok && g.Len() == 1 {
		generic = g.V[0]
	}
	var classes []string
	var callEnv, defEnv EnvRef
	if dctx != nil {
		if generic == "" {
			generic = dctx.generic
		}
		if len(dctx.classes) > 0 {
			classes = dctx.classes[1:]
		}
		callEnv, defEnv = dctx.callEnv, dctx.defEnv
	} else {
		// called directly, as print.foo(x): recover the generic from
		// the method name and the object's classes
		obj := bc.Arg("object")
		if obj == nil {
			var err error
			if obj, err = rt.dispatchObject(frame, generic); err != nil {
				return nil, errorf(KindDispatch, "object not specified")
			}
		}
		all := dispatchClass(obj)
		name := frame.Call.FnName()
		for i, c := range all {
			if strings.HasSuffix(name, "."+c) {
				if generic == "" {
					generic = strings.TrimSuffix(name, "."+c)
				}
				classes = all[i+1:]
				break
			}
		}
		callEnv, defEnv = frame.SysParent, rt.GlobalEnv
	}
	if generic == "" {
		return nil, errorf(KindDispatch, "generic function not specified")
	}

	args, err := rt.nextArgs(frame, bc.Dots())
	if err != nil {
		return nil, err
	}
	v, found, err := rt.dispatchS3(generic, classes, frame.Call, args, callEnv, callEnv, defEnv, true)
	if err != nil || found {
		return v, err
	}
	fn, err := rt.findFunQuiet(rt.BaseEnv, generic)
	if err != nil {
		return nil, err
	}
	if b, ok := fn.(*Builtin); ok && !b.Special {
		dc := &dispatchContext{generic: generic, method: generic, callEnv: callEnv, defEnv: defEnv}
		return rt.applyMethod(frame.Call, b, args, callEnv, dc)
	}
	return nil, errorf(KindDispatch, "no more methods for '%s'", generic)
}

// tryDispatch offers a call of an internal generic to S3 methods of
// its first argument's explicit class. args are forced promises.
func (rt *Runtime) tryDispatch(generic string, call *Language, args []Arg, env EnvRef) (Value, bool, error) {
	if len(args) == 0 {
		return nil, false, nil
	}
	obj := args[0].Value
	if p, ok := obj.(*Promise); ok {
		obj = p.value
	}
	if obj == nil {
		return nil, false, nil
	}
	classes := classAttr(obj)
	if classes == nil {
		return nil, false, nil
	}
	return rt.dispatchS3(generic, classes, call, args, env, env, rt.BaseEnv, false)
}

// dispatchBuiltin routes an internal generic or an Ops member to S3
// methods when its arguments carry a class.
func (rt *Runtime) dispatchBuiltin(call *Language, f *Builtin, args []Arg, env EnvRef) (Value, bool, error) {
	if f.Group == "Ops" {
		return rt.dispatchOps(call, f, args, env)
	}
	return rt.tryDispatch(f.Name, call, args, env)
}

// opsMethod finds op.class or Ops.class for the first class of x that
// has either.
func (rt *Runtime) opsMethod(op string, x Value, env EnvRef) (Value, *dispatchContext, error) {
	classes := classAttr(x)
	for i, c := range classes {
		for _, g := range []string{op, "Ops"} {
			fn, err := rt.lookupMethod(g, c, env, rt.BaseEnv)
			if err != nil {
				return nil, nil, err
			}
			if fn != nil {
				return fn, &dispatchContext{generic: op, group: "Ops", classes: classes[i:], method: g + "." + c, callEnv: env, defEnv: rt.BaseEnv}, nil
			}
		}
	}
	return nil, nil, nil
}

func (rt *Runtime) dispatchOps(call *Language, f *Builtin, args []Arg, env EnvRef) (Value, bool, error) {
	var fns [2]Value
	var ctxs [2]*dispatchContext
	for i := 0; i < len(args) && i < 2; i++ {
		v := args[i].Value
		if p, ok := v.(*Promise); ok {
			v = p.value
		}
		if v == nil || classAttr(v) == nil {
			continue
		}
		fn, dc, err := rt.opsMethod(f.Name, v, env)
		if err != nil {
			return nil, false, err
		}
		fns[i], ctxs[i] = fn, dc
	}
	var fn Value
	var dc *dispatchContext
	switch {
	case fns[0] != nil && fns[1] != nil:
		if fns[0] != fns[1] {
			msg := fmt.Sprintf("Incompatible methods (\"%s\", \"%s\") for \"%s\"", ctxs[0].method, ctxs[1].method, f.Name)
			if err := rt.signalWarning(makeCondition(msg, call, "simpleWarning", "warning", "condition")); err != nil {
				return nil, false, err
			}
			return nil, false, nil
		}
		fn, dc = fns[0], ctxs[0]
	case fns[0] != nil:
		fn, dc = fns[0], ctxs[0]
	case fns[1] != nil:
		fn, dc = fns[1], ctxs[1]
	default:
		return nil, false, nil
	}
	v, err := rt.applyMethod(call, fn, args, env, dc)
	return v, true, err
}

func RegisterS3MethodFunction(rt *Runtime, bc *BuiltinCall) (Value, error) {
	generic, err := asScalarString(bc.Arg("genname"), "genname")
	if err != nil {
		return nil, err
	}
	class, err := asScalarString(bc.Arg("class"), "class")
	if err != nil {
		return nil, err
	}
	method := bc.Arg("method")
	if s, ok := method.(*Character); ok && s.Len() == 1 {
		env := bc.Env
		if ev, ok := bc.Arg("envir").(*EnvValue); ok {
			env = ev.Ref
		}
		if method, err = rt.FindFun(env, s.V[0]); err != nil {
			return nil, err
		}
	}
	if !IsFunction(method) {
		return nil, errorf(KindDispatch, "bad 'method' argument")
	}
	rt.RegisterS3Method(generic, class, method)
	rt.visible = false
	return Nil, nil
}

// DispatchFunctions returns the S3 builtins.
func DispatchFunctions() map[string]*Builtin {
	return map[string]*Builtin{
		"UseMethod":        {Fn: UseMethodFunction, Formals: []string{"generic", "object"}},
		"NextMethod":       {Fn: NextMethodFunction, Formals: []string{"generic", "object", "..."}},
		"registerS3method": {Fn: RegisterS3MethodFunction, Formals: []string{"genname", "class", "method", "envir"}},
	}
}
