package rcore

// AssignFunction implements `<-`, `=` and `<<-`. A call on the left is a
// complex assignment: f(x, ...) <- value becomes
// x <- `f<-`(x, ..., value = value), applied recursively.
func AssignFunction(rt *Runtime, bc *BuiltinCall) (Value, error) {
	if len(bc.Args) != 2 {
		return nil, errorf(KindEval, "invalid assignment")
	}
	super := bc.Name == "<<-"
	lhs, rhsExpr := bc.Args[0].Value, bc.Args[1].Value
	value, err := rt.eval(rhsExpr, bc.Env)
	if err != nil {
		return nil, err
	}
	switch x := lhs.(type) {
	case *Symbol:
		err = rt.assignName(x.Name, value, bc.Env, super)
	case *Character:
		if x.Len() != 1 {
			return nil, errorf(KindEval, "invalid assignment target")
		}
		err = rt.assignName(x.V[0], value, bc.Env, super)
	case *Language:
		err = rt.complexAssign(x, rhsExpr, value, bc.Env, super)
	default:
		err = errorf(KindEval, "invalid (do_set) left-hand side to assignment")
	}
	if err != nil {
		return nil, err
	}
	rt.visible = false
	return value, nil
}

func (rt *Runtime) assignName(name string, v Value, env EnvRef, super bool) error {
	if name == "" {
		return errorf(KindEval, "invalid assignment target")
	}
	if super {
		return rt.SuperAssign(env, name, v)
	}
	return rt.Define(env, name, v)
}

// assignTarget is the variable a complex assignment ultimately changes.
func assignTarget(lhs Value) (string, error) {
	for {
		switch x := lhs.(type) {
		case *Symbol:
			return x.Name, nil
		case *Character:
			if x.Len() == 1 {
				return x.V[0], nil
			}
		case *Language:
			if len(x.Args) > 0 {
				lhs = x.Args[0].Value
				continue
			}
		}
		return "", errorf(KindEval, "invalid assignment target")
	}
}

func (rt *Runtime) complexAssign(lhs *Language, rhsExpr, value Value, env EnvRef, super bool) error {
	name, err := assignTarget(lhs)
	if err != nil {
		return err
	}
	from := env
	if super {
		if from, err = rt.Parent(env); err != nil {
			return err
		}
	}
	cur, _, found := rt.Lookup(from, name)
	if !found {
		return errorf(KindEnvironment, "object '%s' not found", name)
	}
	if cur, err = rt.bindingValue(name, cur); err != nil {
		return err
	}
	nv, err := rt.assignInto(lhs, forcedPromise(rhsExpr, value), env, name, cur)
	if err != nil {
		return err
	}
	return rt.assignName(name, nv, env, super)
}

// withCurrent replaces the assigned variable in a getter expression by
// its current value, so getters see the value being replaced rather
// than whatever the name resolves to in env.
func withCurrent(expr Value, name string, cur Value) Value {
	switch x := expr.(type) {
	case *Symbol:
		return forcedPromise(x, cur)
	case *Character:
		return forcedPromise(Sym(name), cur)
	case *Language:
		args := make([]Arg, len(x.Args))
		copy(args, x.Args)
		args[0].Value = withCurrent(args[0].Value, name, cur)
		return &Language{Fn: x.Fn, Args: args, attrs: x.attrs}
	}
	return expr
}

func replacementName(fn Value) (Value, error) {
	switch f := fn.(type) {
	case *Symbol:
		return Sym(f.Name + "<-"), nil
	case *Character:
		if f.Len() == 1 {
			return Sym(f.V[0] + "<-"), nil
		}
	case *Language:
		// pkg::f(x) <- v calls pkg::`f<-`
		if n := f.FnName(); (n == "::" || n == ":::") && len(f.Args) == 2 {
			if s, ok := f.Args[1].Value.(*Symbol); ok {
				return &Language{Fn: f.Fn, Args: []Arg{f.Args[0], {Value: Sym(s.Name + "<-")}}}, nil
			}
		}
	}
	return nil, errorf(KindEval, "invalid function in complex assignment")
}

// assignInto returns the new value of the target of lhs after storing
// rhs (a forced promise) into it.
func (rt *Runtime) assignInto(lhs Value, rhs *Promise, env EnvRef, name string, cur Value) (Value, error) {
	call, ok := lhs.(*Language)
	if !ok {
		return rhs.value, nil
	}
	if len(call.Args) == 0 {
		return nil, errorf(KindEval, "invalid assignment target")
	}
	fn, err := replacementName(call.Fn)
	if err != nil {
		return nil, err
	}
	target := call.Args[0].Value
	getter := withCurrent(target, name, cur)
	tv, err := rt.eval(getter, env)
	if err != nil {
		return nil, err
	}
	args := make([]Arg, 0, len(call.Args)+1)
	args = append(args, Arg{Tag: call.Args[0].Tag, Value: forcedPromise(promiseExpr(getter), tv)})
	args = append(args, call.Args[1:]...)
	args = append(args, Arg{Tag: "value", Value: rhs})
	nv, err := rt.eval(&Language{Fn: fn, Args: args}, env)
	if err != nil {
		return nil, err
	}
	return rt.assignInto(target, forcedPromise(target, nv), env, name, cur)
}

// AssignFunctions returns the assignment operators.
func AssignFunctions() map[string]*Builtin {
	return map[string]*Builtin{
		"<-":  {Fn: AssignFunction, Special: true},
		"=":   {Fn: AssignFunction, Special: true},
		"<<-": {Fn: AssignFunction, Special: true},
	}
}
