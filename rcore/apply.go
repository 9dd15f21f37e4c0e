package rcore

import (
	"strings"
)

// DoCallFunction is do.call(what, args, quote, envir). It pushes no
// frame of its own: the callee's caller is envir, by default the
// environment do.call was called from. Unless quote is TRUE, symbols
// and calls among args are evaluated in envir, lazily for closures.
func DoCallFunction(rt *Runtime, bc *BuiltinCall) (Value, error) {
	what := bc.Arg("what")
	if what == nil {
		return nil, errorf(KindArgumentMatch, "argument \"what\" is missing, with no default")
	}
	envir := bc.Env
	if e := bc.Arg("envir"); e != nil {
		ev, ok := e.(*EnvValue)
		if !ok {
			return nil, errorf(KindEval, "'envir' must be an environment")
		}
		envir = ev.Ref
	}
	quote := false
	if q := bc.Arg("quote"); q != nil {
		var err error
		if quote, err = asFlag(q, "quote"); err != nil {
			return nil, err
		}
	}

	var fn Value
	var fnExpr Value
	switch w := what.(type) {
	case *Character:
		if w.Len() != 1 {
			return nil, errorf(KindEval, "'what' must be a function or character string")
		}
		f, err := rt.FindFun(envir, w.V[0])
		if err != nil {
			return nil, err
		}
		fn, fnExpr = f, Sym(w.V[0])
	case *Closure, *Builtin:
		fn, fnExpr = w, w
	default:
		return nil, errorf(KindEval, "'what' must be a function or character string")
	}

	var args []Arg
	switch a := bc.Arg("args").(type) {
	case nil, *NullValue:
	case *List:
		names := namesOf(a)
		for i, v := range a.V {
			arg := Arg{Value: v}
			if names != nil && names[i] != NAString {
				arg.Tag = names[i]
			}
			args = append(args, arg)
		}
	default:
		return nil, errorf(KindEval, "second argument must be a list")
	}

	if !quote {
		_, isClosure := fn.(*Closure)
		for i, a := range args {
			switch a.Value.(type) {
			case *Symbol, *Language:
				if isClosure {
					args[i].Value = NewPromise(a.Value, envir)
					continue
				}
				v, err := rt.eval(a.Value, envir)
				if err != nil {
					return nil, err
				}
				args[i].Value = v
			}
		}
	}
	return rt.CallFunction(fn, fnExpr, args, envir)
}

// MatchFunFunction is match.fun: FUN itself when it is a function,
// otherwise the function its name finds from the caller's caller.
func MatchFunFunction(rt *Runtime, bc *BuiltinCall) (Value, error) {
	f := bc.Arg("FUN")
	if f == nil {
		return nil, errorf(KindArgumentMatch, "argument \"FUN\" is missing, with no default")
	}
	if IsFunction(f) {
		return f, nil
	}
	name, err := asScalarString(f, "FUN")
	if err != nil {
		return nil, errorf(KindEval, "'%s' is not a function, character or symbol", deparseOneLine(f))
	}
	return rt.FindFun(rt.parentFrameEnv(bc.Env, 1), name)
}

// MatchArgFunction is match.arg(arg, choices, several.ok). Without
// choices, the default of the calling function's formal of the same
// name supplies them.
func MatchArgFunction(rt *Runtime, bc *BuiltinCall) (Value, error) {
	var argExpr, choicesExpr, severalExpr Value
	for i, a := range bc.Args {
		switch {
		case a.Tag == "choices":
			choicesExpr = a.Value
		case a.Tag == "several.ok":
			severalExpr = a.Value
		case a.Tag == "arg" || (a.Tag == "" && argExpr == nil && i == 0):
			argExpr = a.Value
		case a.Tag == "" && choicesExpr == nil:
			choicesExpr = a.Value
		case a.Tag == "" && severalExpr == nil:
			severalExpr = a.Value
		default:
			return nil, errorf(KindArgumentMatch, "unused argument (%s)", deparseOneLine(a.Value))
		}
	}
	if argExpr == nil {
		return nil, errorf(KindArgumentMatch, "argument \"arg\" is missing, with no default")
	}
	several := false
	if severalExpr != nil {
		v, err := rt.eval(severalExpr, bc.Env)
		if err != nil {
			return nil, err
		}
		if several, err = asFlag(v, "several.ok"); err != nil {
			return nil, err
		}
	}

	var choices Value
	if choicesExpr != nil {
		v, err := rt.eval(choicesExpr, bc.Env)
		if err != nil {
			return nil, err
		}
		choices = v
	} else {
		sym, ok := argExpr.(*Symbol)
		k := rt.contextOf(bc.Env)
		if !ok || k < 0 {
			return nil, errorf(KindEval, "'match.arg' without 'choices' must be called from a function on one of its arguments")
		}
		clo, isClo := rt.frame(k).Fn.(*Closure)
		if !isClo {
			return nil, errorf(KindEval, "'match.arg' without 'choices' must be called from a function on one of its arguments")
		}
		for _, f := range clo.Formals {
			if f.Tag == sym.Name {
				v, err := rt.eval(f.Value, bc.Env)
				if err != nil {
					return nil, err
				}
				choices = v
			}
		}
		if choices == nil {
			return nil, errorf(KindEval, "'arg' must be one of the formal arguments")
		}
	}
	cs, ok := choices.(*Character)
	if !ok {
		return nil, errorf(KindEval, "'arg' must be NULL or a character vector")
	}

	argv, err := rt.eval(argExpr, bc.Env)
	if err != nil {
		return nil, err
	}
	if _, isNull := argv.(*NullValue); isNull {
		if cs.Len() == 0 {
			return Nil, nil
		}
		return strScalar(cs.V[0]), nil
	}
	av, ok := argv.(*Character)
	if !ok {
		return nil, errorf(KindEval, "'arg' must be NULL or a character vector")
	}
	if !several {
		if Identical(av, cs) {
			return strScalar(cs.V[0]), nil
		}
		if av.Len() != 1 {
			return nil, errorf(KindEval, "'arg' must be of length 1")
		}
	} else if av.Len() == 0 {
		return nil, errorf(KindEval, "'arg' must be of length >= 1")
	}
	var out []string
	for _, s := range av.V {
		if i := pmatchOne(s, cs.V); i >= 0 {
			out = append(out, cs.V[i])
		}
	}
	if len(out) == 0 || (!several && len(out) != 1) {
		quoted := make([]string, cs.Len())
		for i, c := range cs.V {
			quoted[i] = "“" + c + "”"
		}
		return nil, errorf(KindEval, "'arg' should be one of %s", strings.Join(quoted, ", "))
	}
	return Str(out...), nil
}

// pmatchOne is the index of the choice s matches exactly, or else the
// unique choice it is a prefix of; -1 when there is none.
func pmatchOne(s string, choices []string) int {
	partial := -1
	for i, c := range choices {
		if c == s {
			return i
		}
		if s != "" && strings.HasPrefix(c, s) {
			if partial >= 0 {
				return -1
			}
			partial = i
		}
	}
	return partial
}

// VapplyFunction applies FUN to each element of X, checking every
// result against the type and length of FUN.VALUE.
func VapplyFunction(rt *Runtime, bc *BuiltinCall) (Value, error) {
	x, fun, tmpl := bc.Arg("X"), bc.Arg("FUN"), bc.Arg("FUN.VALUE")
	if x == nil || fun == nil || tmpl == nil {
		return nil, WrongNargs
	}
	if !IsFunction(fun) {
		f, err := rt.matchFun(fun, bc.Env)
		if err != nil {
			return nil, err
		}
		fun = f
	}
	proto, ok := tmpl.(Vector)
	if !ok {
		return nil, errorf(KindEval, "'FUN.VALUE' must be a vector")
	}
	useNames := true
	if u := bc.Arg("USE.NAMES"); u != nil {
		var err error
		if useNames, err = asFlag(u, "USE.NAMES"); err != nil {
			return nil, err
		}
	}
	xs, err := rt.asApplyList(x)
	if err != nil {
		return nil, err
	}
	width := proto.Len()
	t := proto.Type()
	results := make([]Vector, xs.Len())
	for i, e := range xs.V {
		args := append([]Arg{{Value: e}}, bc.Dots()...)
		v, err := rt.CallFunction(fun, Sym("FUN"), args, bc.Env)
		if err != nil {
			return nil, err
		}
		rv, ok := v.(Vector)
		if !ok || rv.Len() != width {
			return nil, errorf(KindEval, "values must be length %d,\n but FUN(X[[%d]]) result is length %d", width, i+1, Length(v))
		}
		rt2 := rv.Type()
		okType := rt2 == t ||
			(t == TypeDouble && (rt2 == TypeInteger || rt2 == TypeLogical)) ||
			(t == TypeInteger && rt2 == TypeLogical) ||
			(t == TypeList)
		if !okType {
			return nil, errorf(KindEval, "values must be type '%s',\n but FUN(X[[%d]]) result is type '%s'", t, i+1, rt2)
		}
		if t == TypeList && rt2 != TypeList {
			rv = NewList(rv)
		}
		results[i] = rv
	}

	n := xs.Len()
	out := emptyVector(t).blank(n * width)
	for i, rv := range results {
		cv, err := coerceVector(rv, t, rt)
		if err != nil {
			return nil, err
		}
		for j := 0; j < width; j++ {
			out.put(i*width+j, cv, j)
		}
	}
	var names Value
	if useNames {
		if nm := namesOf(xs); nm != nil {
			names = Str(nm...)
		} else if c, isChr := x.(*Character); isChr {
			names = Str(c.V...)
		}
	}
	var attrs *Attrs
	switch {
	case width == 1:
		if names != nil {
			attrs = attrs.With("names", names)
		}
	default:
		attrs = attrs.With("dim", Int(int32(width), int32(n)))
		rowNames := Value(Nil)
		if pn := namesOf(proto); pn != nil {
			rowNames = Str(pn...)
		}
		if names != nil || rowNames != Value(Nil) {
			if names == nil {
				names = Nil
			}
			attrs = attrs.With("dimnames", NewList(rowNames, names))
		}
	}
	return out.withAttrs(attrs), nil
}

func (rt *Runtime) matchFun(f Value, env EnvRef) (Value, error) {
	name, err := asScalarString(f, "FUN")
	if err != nil {
		return nil, errorf(KindEval, "'%s' is not a function, character or symbol", deparseOneLine(f))
	}
	return rt.FindFun(env, name)
}

// asApplyList is X as the apply family sees it: a list with the names
// of X.
func (rt *Runtime) asApplyList(x Value) (*List, error) {
	switch v := x.(type) {
	case *NullValue:
		return NewList(), nil
	case *List:
		return v, nil
	case *EnvValue:
		l, err := rt.envAsList(v.Ref)
		if err != nil {
			return nil, err
		}
		return l.(*List), nil
	case Vector:
		out := make([]Value, v.Len())
		for i := range out {
			out[i] = v.Subset([]int{i})
		}
		l := NewList(out...)
		if nm := namesOf(v); nm != nil {
			l.attrs = l.attrs.With("names", Str(nm...))
		}
		return l, nil
	}
	return nil, errorf(KindEval, "cannot coerce type '%s' to vector of type 'list'", x.Type())
}

// Simplify2ArrayFunction is the simplification step of sapply: all
// length one results become a vector, equal longer lengths a matrix.
func Simplify2ArrayFunction(rt *Runtime, bc *BuiltinCall) (Value, error) {
	x, ok := bc.Arg("x").(*List)
	if !ok || x.Len() == 0 {
		if bc.Arg("x") == nil {
			return nil, WrongNargs
		}
		return bc.Arg("x"), nil
	}
	width := -1
	t := TypeLogical
	for _, e := range x.V {
		vec, isVec := e.(Vector)
		if !isVec || (!IsAtomic(e) && vec.Type() != TypeList) {
			return x, nil
		}
		if width >= 0 && vec.Len() != width {
			return x, nil
		}
		width = vec.Len()
		t = higherType(t, vec.Type())
	}
	if width < 1 {
		return x, nil
	}
	n := x.Len()
	out := emptyVector(t).blank(n * width)
	for i, e := range x.V {
		cv, err := coerceVector(e, t, rt)
		if err != nil {
			return nil, err
		}
		for j := 0; j < width; j++ {
			out.put(i*width+j, cv, j)
		}
	}
	names := namesOf(x)
	var attrs *Attrs
	if width == 1 {
		if names != nil {
			attrs = attrs.With("names", Str(names...))
		}
		return out.withAttrs(attrs), nil
	}
	attrs = attrs.With("dim", Int(int32(width), int32(n)))
	var rowNames Value = Nil
	if rn := namesOf(x.V[0]); rn != nil {
		rowNames = Str(rn...)
	}
	var colNames Value = Nil
	if names != nil {
		colNames = Str(names...)
	}
	if rowNames != Value(Nil) || colNames != Value(Nil) {
		attrs = attrs.With("dimnames", NewList(rowNames, colNames))
	}
	return out.withAttrs(attrs), nil
}

func IsObjectFunction(rt *Runtime, bc *BuiltinCall) (Value, error) {
	x := bc.Arg("x")
	if x == nil {
		return nil, WrongNargs
	}
	return lglScalar(classAttr(x) != nil), nil
}

// ApplyFunctions returns do.call, match.fun, match.arg and the Go half
// of the apply family. lapply and sapply are R closures in the prelude.
func ApplyFunctions() map[string]*Builtin {
	return map[string]*Builtin{
		"do.call":        {Fn: DoCallFunction, Formals: []string{"what", "args", "quote", "envir"}},
		"match.fun":      {Fn: MatchFunFunction, Formals: []string{"FUN", "descend"}},
		"match.arg":      {Fn: MatchArgFunction, Special: true},
		"vapply":         {Fn: VapplyFunction, Formals: []string{"X", "FUN", "FUN.VALUE", "...", "USE.NAMES"}},
		"simplify2array": {Fn: Simplify2ArrayFunction, Formals: []string{"x", "higher"}},
		"is.object":      {Fn: IsObjectFunction, Formals: []string{"x"}},
	}
}
