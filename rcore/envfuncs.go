package rcore

// envArg resolves an environment argument; absent means def.
func (rt *Runtime) envArg(v Value, what string, def EnvRef) (EnvRef, error) {
	switch x := v.(type) {
	case nil:
		return def, nil
	case *EnvValue:
		if _, err := rt.Env(x.Ref); err != nil {
			return EnvRef{}, err
		}
		return x.Ref, nil
	case *NullValue:
		return EnvRef{}, errorf(KindEnvironment, "use of NULL environment is defunct")
	}
	return EnvRef{}, errorf(KindEnvironment, "invalid '%s' argument", what)
}

func flagArg(bc *BuiltinCall, name string, def bool) (bool, error) {
	v := bc.Arg(name)
	if v == nil {
		return def, nil
	}
	return asFlag(v, name)
}

func EnvironmentFunction(rt *Runtime, bc *BuiltinCall) (Value, error) {
	switch f := bc.Arg("fun").(type) {
	case nil, *NullValue:
		return rt.EnvValue(bc.Env), nil
	case *Closure:
		return rt.EnvValue(f.Env), nil
	}
	return Nil, nil
}

func SetEnvironmentFunction(rt *Runtime, bc *BuiltinCall) (Value, error) {
	ev, ok := bc.Arg("value").(*EnvValue)
	if !ok {
		return nil, errorf(KindEnvironment, "replacement object is not an environment")
	}
	f, ok := bc.Arg("fun").(*Closure)
	if !ok {
		return nil, errorf(KindEnvironment, "invalid '%s' argument", "fun")
	}
	return &Closure{Formals: f.Formals, Body: f.Body, Env: ev.Ref, attrs: f.attrs}, nil
}

func NewEnvFunction(rt *Runtime, bc *BuiltinCall) (Value, error) {
	parent, err := rt.envArg(bc.Arg("parent"), "enclos", bc.Env)
	if err != nil {
		return nil, err
	}
	return rt.EnvValue(rt.NewEnv(parent)), nil
}

func GlobalEnvFunction(rt *Runtime, bc *BuiltinCall) (Value, error) {
	return rt.EnvValue(rt.GlobalEnv), nil
}

func EmptyEnvFunction(rt *Runtime, bc *BuiltinCall) (Value, error) {
	return rt.EnvValue(rt.EmptyEnv), nil
}

func BaseEnvFunction(rt *Runtime, bc *BuiltinCall) (Value, error) {
	return rt.EnvValue(rt.BaseEnv), nil
}

func ParentEnvFunction(rt *Runtime, bc *BuiltinCall) (Value, error) {
	env, err := rt.envArg(bc.Arg("env"), "env", EnvRef{})
	if err != nil {
		return nil, err
	}
	if env.IsZero() {
		return nil, errorf(KindEnvironment, "argument is not an environment")
	}
	if env == rt.EmptyEnv {
		return nil, errorf(KindEnvironment, "the empty environment has no parent")
	}
	p, err := rt.Parent(env)
	if err != nil {
		return nil, err
	}
	return rt.EnvValue(p), nil
}

func SetParentEnvFunction(rt *Runtime, bc *BuiltinCall) (Value, error) {
	env, err := rt.envArg(bc.Arg("env"), "env", EnvRef{})
	if err != nil || env.IsZero() {
		return nil, errorf(KindEnvironment, "argument is not an environment")
	}
	p, err := rt.envArg(bc.Arg("value"), "parent", EnvRef{})
	if err != nil || p.IsZero() {
		return nil, errorf(KindEnvironment, "'parent' is not an environment")
	}
	if env == rt.EmptyEnv {
		return nil, errorf(KindEnvironment, "can not set the parent of the empty environment")
	}
	e, err := rt.Env(env)
	if err != nil {
		return nil, err
	}
	e.Parent = p
	return bc.Arg("env"), nil
}

func EnvironmentNameFunction(rt *Runtime, bc *BuiltinCall) (Value, error) {
	ev, ok := bc.Arg("env").(*EnvValue)
	if !ok {
		return strScalar(""), nil
	}
	return strScalar(rt.environmentName(ev.Ref)), nil
}

func AssignValueFunction(rt *Runtime, bc *BuiltinCall) (Value, error) {
	name, err := asScalarString(bc.Arg("x"), "x")
	if err != nil {
		return nil, err
	}
	value := bc.Arg("value")
	if value == nil {
		return nil, errorf(KindArgumentMatch, "argument \"value\" is missing, with no default")
	}
	env, err := rt.targetEnv(bc, "pos")
	if err != nil {
		return nil, err
	}
	inherits, err := flagArg(bc, "inherits", false)
	if err != nil {
		return nil, err
	}
	if inherits {
		if _, e, found := rt.Lookup(env, name); found {
			err = e.define(name, value)
		} else {
			err = rt.Define(rt.GlobalEnv, name, value)
		}
	} else {
		err = rt.Define(env, name, value)
	}
	if err != nil {
		return nil, err
	}
	rt.visible = false
	return value, nil
}

func modeMatches(v Value, mode string) bool {
	switch mode {
	case "any":
		return true
	case "function":
		return IsFunction(v)
	}
	return modeName(v) == mode
}

// getLike is the lookup shared by get, get0 and exists.
func (rt *Runtime) getLike(bc *BuiltinCall) (string, Value, bool, error) {
	name, err := asScalarString(bc.Arg("x"), "x")
	if err != nil {
		return "", nil, false, err
	}
	pos := "pos"
	if bc.Name == "exists" {
		pos = "where"
	}
	env, err := rt.targetEnv(bc, pos)
	if err != nil {
		return "", nil, false, err
	}
	mode := "any"
	if m := bc.Arg("mode"); m != nil {
		if mode, err = asScalarString(m, "mode"); err != nil {
			return "", nil, false, err
		}
	}
	inherits, err := flagArg(bc, "inherits", true)
	if err != nil {
		return "", nil, false, err
	}
	for !env.IsZero() {
		e, err := rt.Env(env)
		if err != nil {
			return "", nil, false, err
		}
		if b, ok := e.Map[name]; ok {
			v, err := rt.bindingValue(name, b.Value)
			if err != nil {
				return "", nil, false, err
			}
			if modeMatches(v, mode) {
				return name, v, true, nil
			}
		}
		if !inherits {
			break
		}
		env = e.Parent
	}
	return name, nil, false, nil
}

func GetFunction(rt *Runtime, bc *BuiltinCall) (Value, error) {
	name, v, found, err := rt.getLike(bc)
	if err != nil {
		return nil, err
	}
	if !found {
		if m, ok := bc.Arg("mode").(*Character); ok && m.Len() == 1 && m.V[0] != "any" {
			return nil, errorf(KindEnvironment, "object '%s' of mode '%s' was not found", name, m.V[0])
		}
		return nil, errorf(KindEnvironment, "object '%s' not found", name)
	}
	return v, nil
}

func Get0Function(rt *Runtime, bc *BuiltinCall) (Value, error) {
	_, v, found, err := rt.getLike(bc)
	if err != nil {
		return nil, err
	}
	if !found {
		if d := bc.Arg("ifnotfound"); d != nil {
			return d, nil
		}
		return Nil, nil
	}
	return v, nil
}

func ExistsFunction(rt *Runtime, bc *BuiltinCall) (Value, error) {
	_, _, found, err := rt.getLike(bc)
	if err != nil {
		return nil, err
	}
	return lglScalar(found), nil
}

// RmFunction is rm(..., list = character(), envir). Names in ... may be
// symbols or strings.
func RmFunction(rt *Runtime, bc *BuiltinCall) (Value, error) {
	m, err := MatchArgs([]string{"...", "list", "envir", "inherits"}, bc.Args)
	if err != nil {
		return nil, err
	}
	var names []string
	for _, a := range m.Dots {
		switch x := a.Value.(type) {
		case *Symbol:
			names = append(names, x.Name)
		case *Character:
			names = append(names, x.V...)
		default:
			return nil, errorf(KindEval, "... must contain names or character strings")
		}
	}
	env := bc.Env
	if m.Supplied(1) {
		lv, err := rt.eval(m.Slots[1], bc.Env)
		if err != nil {
			return nil, err
		}
		cv, ok := lv.(*Character)
		if !ok {
			return nil, errorf(KindEval, "invalid first argument")
		}
		names = append(names, cv.V...)
	}
	if m.Supplied(2) {
		ev, err := rt.eval(m.Slots[2], bc.Env)
		if err != nil {
			return nil, err
		}
		if env, err = rt.envArg(ev, "envir", bc.Env); err != nil {
			return nil, err
		}
	}
	for _, n := range names {
		if err := rt.Remove(env, n); err != nil {
			if IsKind(err, KindEnvironment) {
				rt.warnf("object '%s' not found", n)
				continue
			}
			return nil, err
		}
	}
	rt.visible = false
	return Nil, nil
}

func LsFunction(rt *Runtime, bc *BuiltinCall) (Value, error) {
	pos := "name"
	if bc.Arg("name") == nil {
		pos = "pos"
	}
	env, err := rt.targetEnv(bc, pos)
	if err != nil {
		return nil, err
	}
	all, err := flagArg(bc, "all.names", false)
	if err != nil {
		return nil, err
	}
	names, err := rt.Names(env, all)
	if err != nil {
		return nil, err
	}
	return Str(names...), nil
}

func LockEnvironmentFunction(rt *Runtime, bc *BuiltinCall) (Value, error) {
	env, err := rt.envArg(bc.Arg("env"), "env", EnvRef{})
	if err != nil || env.IsZero() {
		return nil, errorf(KindEnvironment, "not an environment")
	}
	bindings, err := flagArg(bc, "bindings", false)
	if err != nil {
		return nil, err
	}
	rt.visible = false
	return Nil, rt.LockEnvironment(env, bindings)
}

func EnvironmentIsLockedFunction(rt *Runtime, bc *BuiltinCall) (Value, error) {
	env, err := rt.envArg(bc.Arg("env"), "env", EnvRef{})
	if err != nil || env.IsZero() {
		return nil, errorf(KindEnvironment, "not an environment")
	}
	e, err := rt.Env(env)
	if err != nil {
		return nil, err
	}
	return lglScalar(e.Locked), nil
}

// bindingLock serves lockBinding, unlockBinding and bindingIsLocked.
func bindingLock(op string) BuiltinFunction {
	return func(rt *Runtime, bc *BuiltinCall) (Value, error) {
		name, err := asScalarString(bc.Arg("sym"), "sym")
		if err != nil {
			return nil, err
		}
		env, err := rt.envArg(bc.Arg("env"), "env", EnvRef{})
		if err != nil || env.IsZero() {
			return nil, errorf(KindEnvironment, "not an environment")
		}
		switch op {
		case "lock":
			err = rt.setBindingLock(env, name, true)
		case "unlock":
			err = rt.setBindingLock(env, name, false)
		default:
			b, ok := rt.LookupLocal(env, name)
			if !ok {
				return nil, errorf(KindEnvironment, "no binding for \"%s\"", name)
			}
			return lglScalar(b.Locked), nil
		}
		rt.visible = false
		return Nil, err
	}
}

// DelayedAssignFunction binds x to an unforced promise of value.
func DelayedAssignFunction(rt *Runtime, bc *BuiltinCall) (Value, error) {
	m, err := MatchArgs([]string{"x", "value", "eval.env", "assign.env"}, bc.Args)
	if err != nil {
		return nil, err
	}
	if !m.Supplied(0) {
		return nil, errorf(KindArgumentMatch, "argument \"x\" is missing, with no default")
	}
	xv, err := rt.eval(m.Slots[0], bc.Env)
	if err != nil {
		return nil, err
	}
	name, err := asScalarString(xv, "x")
	if err != nil {
		return nil, err
	}
	evalEnv, assignEnv := bc.Env, bc.Env
	if m.Supplied(2) {
		v, err := rt.eval(m.Slots[2], bc.Env)
		if err != nil {
			return nil, err
		}
		if evalEnv, err = rt.envArg(v, "eval.env", bc.Env); err != nil {
			return nil, err
		}
	}
	if m.Supplied(3) {
		v, err := rt.eval(m.Slots[3], bc.Env)
		if err != nil {
			return nil, err
		}
		if assignEnv, err = rt.envArg(v, "assign.env", bc.Env); err != nil {
			return nil, err
		}
	}
	var expr Value = Nil
	if m.Supplied(1) {
		expr = m.Slots[1]
	}
	if err := rt.Define(assignEnv, name, NewPromise(expr, evalEnv)); err != nil {
		return nil, err
	}
	rt.visible = false
	return Nil, nil
}

func ForceFunction(rt *Runtime, bc *BuiltinCall) (Value, error) {
	if len(bc.Args) != 1 {
		return nil, WrongNargs
	}
	return bc.Args[0].Value, nil
}

// MissingFunction is missing(x) for a formal of the calling closure.
func MissingFunction(rt *Runtime, bc *BuiltinCall) (Value, error) {
	if len(bc.Args) != 1 {
		return nil, errorf(KindEval, "'missing' requires exactly one argument")
	}
	var name string
	switch x := bc.Args[0].Value.(type) {
	case *Symbol:
		name = x.Name
	case *Character:
		if x.Len() == 1 {
			name = x.V[0]
		}
	}
	if name == "" {
		return nil, errorf(KindEval, "invalid use of 'missing'")
	}
	m, err := rt.isMissing(bc.Env, name)
	if err != nil {
		return nil, err
	}
	return lglScalar(m), nil
}

// substituteIn replaces symbols bound in env: promises by their
// expressions, `...` by the expressions it holds, and ordinary bindings
// by their values.
func (rt *Runtime) substituteIn(expr Value, env EnvRef, list *List) Value {
	switch x := expr.(type) {
	case *Symbol:
		if x == MissingArg {
			return x
		}
		v, ok := rt.substLookup(x.Name, env, list)
		if !ok {
			return x
		}
		switch b := v.(type) {
		case *Promise:
			return promiseExpr(b)
		case *Dots:
			return x
		}
		if v == Value(MissingArg) {
			return x
		}
		return v
	case *Language:
		out := &Language{Fn: rt.substituteIn(x.Fn, env, list), attrs: x.attrs}
		for _, a := range x.Args {
			if s, ok := a.Value.(*Symbol); ok && s.Name == "..." {
				if v, ok := rt.substLookup("...", env, list); ok {
					if d, ok := v.(*Dots); ok {
						for _, da := range d.Args {
							out.Args = append(out.Args, Arg{Tag: da.Tag, Value: promiseExpr(da.Value)})
						}
						continue
					}
				}
			}
			out.Args = append(out.Args, Arg{Tag: a.Tag, Value: rt.substituteIn(a.Value, env, list)})
		}
		return out
	case *Pairlist:
		out := &Pairlist{attrs: x.attrs}
		for _, a := range x.Args {
			out.Args = append(out.Args, Arg{Tag: a.Tag, Value: rt.substituteIn(a.Value, env, list)})
		}
		return out
	}
	return expr
}

func (rt *Runtime) substLookup(name string, env EnvRef, list *List) (Value, bool) {
	if list != nil {
		for i, n := range namesOf(list) {
			if n == name {
				return list.V[i], true
			}
		}
		return nil, false
	}
	b, ok := rt.LookupLocal(env, name)
	if !ok {
		return nil, false
	}
	return b.Value, true
}

func SubstituteFunction(rt *Runtime, bc *BuiltinCall) (Value, error) {
	m, err := MatchArgs([]string{"expr", "env"}, bc.Args)
	if err != nil {
		return nil, err
	}
	var expr Value = MissingArg
	if m.Supplied(0) {
		expr = m.Slots[0]
	}
	env := bc.Env
	var list *List
	if m.Supplied(1) {
		ev, err := rt.eval(m.Slots[1], bc.Env)
		if err != nil {
			return nil, err
		}
		switch x := ev.(type) {
		case *EnvValue:
			env = x.Ref
		case *List:
			list = x
		default:
			return nil, errorf(KindEval, "invalid environment specified")
		}
	}
	if list == nil && env == rt.GlobalEnv {
		return expr, nil
	}
	return rt.substituteIn(expr, env, list), nil
}

// evalEnvArg turns eval's envir argument into an environment; a list
// becomes a fresh environment enclosed by enclos.
func (rt *Runtime) evalEnvArg(v Value, enclos EnvRef) (EnvRef, error) {
	switch x := v.(type) {
	case *List:
		ref := rt.NewEnv(enclos)
		names := namesOf(x)
		for i, n := range names {
			if n == "" || n == NAString {
				continue
			}
			if err := rt.Define(ref, n, x.V[i]); err != nil {
				return EnvRef{}, err
			}
		}
		return ref, nil
	case *NullValue:
		return rt.NewEnv(enclos), nil
	}
	return rt.envArg(v, "envir", enclos)
}

// evalIn evaluates expr in env the way eval() does: a return() aimed at
// env ends the evaluation.
func (rt *Runtime) evalIn(expr Value, env EnvRef) (Value, error) {
	v, err := rt.eval(expr, env)
	if rs, ok := err.(*returnSignal); ok && rs.Env == env {
		return rs.Value, nil
	}
	return v, err
}

func EvalFunction(rt *Runtime, bc *BuiltinCall) (Value, error) {
	expr := bc.Arg("expr")
	if expr == nil {
		return nil, errorf(KindArgumentMatch, "argument \"expr\" is missing, with no default")
	}
	enclos, err := rt.envArg(bc.Arg("enclos"), "enclos", bc.Env)
	if err != nil {
		return nil, err
	}
	env := bc.Env
	if v := bc.Arg("envir"); v != nil {
		if env, err = rt.evalEnvArg(v, enclos); err != nil {
			return nil, err
		}
	}
	return rt.evalIn(expr, env)
}

func EvalqFunction(rt *Runtime, bc *BuiltinCall) (Value, error) {
	m, err := MatchArgs([]string{"expr", "envir", "enclos"}, bc.Args)
	if err != nil {
		return nil, err
	}
	env := bc.Env
	if m.Supplied(1) {
		ev, err := rt.eval(m.Slots[1], bc.Env)
		if err != nil {
			return nil, err
		}
		if env, err = rt.evalEnvArg(ev, bc.Env); err != nil {
			return nil, err
		}
	}
	if !m.Supplied(0) {
		return Nil, nil
	}
	return rt.evalIn(m.Slots[0], env)
}

func LocalFunction(rt *Runtime, bc *BuiltinCall) (Value, error) {
	m, err := MatchArgs([]string{"expr", "envir"}, bc.Args)
	if err != nil {
		return nil, err
	}
	var env EnvRef
	if m.Supplied(1) {
		ev, err := rt.eval(m.Slots[1], bc.Env)
		if err != nil {
			return nil, err
		}
		if env, err = rt.envArg(ev, "envir", bc.Env); err != nil {
			return nil, err
		}
	} else {
		env = rt.NewEnv(bc.Env)
	}
	if !m.Supplied(0) {
		return Nil, nil
	}
	return rt.evalIn(m.Slots[0], env)
}

func IsEnvironmentFunction(rt *Runtime, bc *BuiltinCall) (Value, error) {
	if len(bc.Args) != 1 {
		return nil, WrongNargs
	}
	_, ok := bc.Args[0].Value.(*EnvValue)
	return lglScalar(ok), nil
}

func AsEnvironmentFunction(rt *Runtime, bc *BuiltinCall) (Value, error) {
	if len(bc.Args) != 1 {
		return nil, WrongNargs
	}
	return rt.asEnvironment(bc.Args[0].Value, bc.Env)
}

// asEnvironment converts a search position, name or list to an
// environment. Position -1 is caller.
func (rt *Runtime) asEnvironment(v Value, caller EnvRef) (*EnvValue, error) {
	switch x := v.(type) {
	case *EnvValue:
		if _, err := rt.Env(x.Ref); err != nil {
			return nil, err
		}
		return x, nil
	case *Character:
		if x.Len() == 1 {
			switch x.V[0] {
			case ".GlobalEnv", "R_GlobalEnv":
				return rt.EnvValue(rt.GlobalEnv), nil
			case "package:base", "base":
				return rt.EnvValue(rt.BaseEnv), nil
			}
			return nil, errorf(KindEnvironment, "no item called \"%s\" on the search list", x.V[0])
		}
	case *List:
		ref, err := rt.evalEnvArg(x, rt.EmptyEnv)
		if err != nil {
			return nil, err
		}
		return rt.EnvValue(ref), nil
	case Vector:
		n, err := asScalarInt(x, "pos")
		if err != nil {
			return nil, err
		}
		switch n {
		case -1:
			return rt.EnvValue(caller), nil
		case 1:
			return rt.EnvValue(rt.GlobalEnv), nil
		case 2:
			return rt.EnvValue(rt.BaseEnv), nil
		}
		return nil, errorf(KindEnvironment, "invalid 'pos' argument")
	}
	return nil, errorf(KindEnvironment, "invalid object for 'as.environment'")
}

// targetEnv resolves the envir argument of assign, get, exists and ls.
// When envir is absent the position argument pos stands in for it, as
// envir = as.environment(pos).
func (rt *Runtime) targetEnv(bc *BuiltinCall, pos string) (EnvRef, error) {
	if ev := bc.Arg("envir"); ev != nil {
		return rt.envArg(ev, "envir", bc.Env)
	}
	if p := bc.Arg(pos); p != nil {
		ev, err := rt.asEnvironment(p, bc.Env)
		if err != nil {
			return EnvRef{}, err
		}
		return ev.Ref, nil
	}
	return bc.Env, nil
}

func GcFunction(rt *Runtime, bc *BuiltinCall) (Value, error) {
	rt.gcRequested = true
	rt.visible = false
	return Nil, nil
}

// EnvFunctions returns the environment and promise builtins.
func EnvFunctions() map[string]*Builtin {
	return map[string]*Builtin{
		"environment":         {Fn: EnvironmentFunction, Formals: []string{"fun"}},
		"environment<-":       {Fn: SetEnvironmentFunction, Formals: []string{"fun", "value"}},
		"new.env":             {Fn: NewEnvFunction, Formals: []string{"hash", "parent", "size"}},
		"globalenv":           {Fn: GlobalEnvFunction, Formals: []string{}},
		"emptyenv":            {Fn: EmptyEnvFunction, Formals: []string{}},
		"baseenv":             {Fn: BaseEnvFunction, Formals: []string{}},
		"parent.env":          {Fn: ParentEnvFunction, Formals: []string{"env"}},
		"parent.env<-":        {Fn: SetParentEnvFunction, Formals: []string{"env", "value"}},
		"environmentName":     {Fn: EnvironmentNameFunction, Formals: []string{"env"}},
		"assign":              {Fn: AssignValueFunction, Formals: []string{"x", "value", "pos", "envir", "inherits", "immediate"}},
		"get":                 {Fn: GetFunction, Formals: []string{"x", "pos", "envir", "mode", "inherits"}},
		"get0":                {Fn: Get0Function, Formals: []string{"x", "envir", "mode", "inherits", "ifnotfound"}},
		"exists":              {Fn: ExistsFunction, Formals: []string{"x", "where", "envir", "frame", "mode", "inherits"}},
		"rm":                  {Fn: RmFunction, Special: true},
		"ls":                  {Fn: LsFunction, Formals: []string{"name", "pos", "envir", "all.names", "pattern", "sorted"}},
		"lockEnvironment":     {Fn: LockEnvironmentFunction, Formals: []string{"env", "bindings"}},
		"environmentIsLocked": {Fn: EnvironmentIsLockedFunction, Formals: []string{"env"}},
		"lockBinding":         {Fn: bindingLock("lock"), Formals: []string{"sym", "env"}},
		"unlockBinding":       {Fn: bindingLock("unlock"), Formals: []string{"sym", "env"}},
		"bindingIsLocked":     {Fn: bindingLock("query"), Formals: []string{"sym", "env"}},
		"delayedAssign":       {Fn: DelayedAssignFunction, Special: true},
		"force":               {Fn: ForceFunction},
		"missing":             {Fn: MissingFunction, Special: true},
		"substitute":          {Fn: SubstituteFunction, Special: true},
		"eval":                {Fn: EvalFunction, Formals: []string{"expr", "envir", "enclos"}},
		"evalq":               {Fn: EvalqFunction, Special: true},
		"local":               {Fn: LocalFunction, Special: true},
		"is.environment":      {Fn: IsEnvironmentFunction},
		"as.environment":      {Fn: AsEnvironmentFunction},
		"gc":                  {Fn: GcFunction, Formals: []string{"verbose", "reset", "full"}},
	}
}
