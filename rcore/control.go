package rcore

import "errors"

func BraceFunction(rt *Runtime, bc *BuiltinCall) (Value, error) {
	return rt.evalSeq(bc.Args, bc.Env)
}

func ParenFunction(rt *Runtime, bc *BuiltinCall) (Value, error) {
	if len(bc.Args) != 1 {
		return nil, errorf(KindEval, "%d arguments passed to '(' which requires 1", len(bc.Args))
	}
	v, err := rt.eval(bc.Args[0].Value, bc.Env)
	rt.visible = true
	return v, err
}

func IfFunction(rt *Runtime, bc *BuiltinCall) (Value, error) {
	if len(bc.Args) < 2 {
		return nil, errorf(KindEval, "argument is of length zero")
	}
	c, err := rt.eval(bc.Args[0].Value, bc.Env)
	if err != nil {
		return nil, err
	}
	ok, err := asCondition(c, "if")
	if err != nil {
		return nil, err
	}
	if ok {
		return rt.eval(bc.Args[1].Value, bc.Env)
	}
	if len(bc.Args) > 2 {
		return rt.eval(bc.Args[2].Value, bc.Env)
	}
	rt.visible = false
	return Nil, nil
}

// loopBody evaluates one iteration, reporting whether a break was seen.
func (rt *Runtime) loopBody(body Value, env EnvRef) (bool, error) {
	_, err := rt.eval(body, env)
	switch err.(type) {
	case nil:
		return false, nil
	case breakSignal:
		return true, nil
	case nextSignal:
		return false, nil
	}
	return false, err
}

// ForFunction is for(var in seq) body. seq is evaluated once; the loop
// variable is rebound in the calling environment each iteration.
func ForFunction(rt *Runtime, bc *BuiltinCall) (Value, error) {
	if len(bc.Args) != 3 {
		return nil, errorf(KindEval, "invalid for() loop sequence")
	}
	sym, ok := bc.Args[0].Value.(*Symbol)
	if !ok {
		return nil, errorf(KindEval, "invalid for() loop sequence")
	}
	seq, err := rt.eval(bc.Args[1].Value, bc.Env)
	if err != nil {
		return nil, err
	}
	e, err := rt.Env(bc.Env)
	if err != nil {
		return nil, err
	}
	var n int
	var elem func(i int) Value
	switch x := seq.(type) {
	case *NullValue:
	case *List:
		n = x.Len()
		elem = func(i int) Value { return x.V[i] }
	case Vector:
		n = x.Len()
		elem = func(i int) Value { return x.Subset([]int{i}) }
	case *Pairlist:
		n = len(x.Args)
		elem = func(i int) Value { return x.Args[i].Value }
	case *Language:
		n = len(x.Args) + 1
		elem = func(i int) Value {
			if i == 0 {
				return x.Fn
			}
			return x.Args[i-1].Value
		}
	default:
		return nil, errorf(KindEval, "invalid for() loop sequence")
	}
	for i := 0; i < n; i++ {
		if err := e.define(sym.Name, elem(i)); err != nil {
			return nil, err
		}
		brk, err := rt.loopBody(bc.Args[2].Value, bc.Env)
		if err != nil {
			return nil, err
		}
		if brk {
			break
		}
	}
	rt.visible = false
	return Nil, nil
}

func WhileFunction(rt *Runtime, bc *BuiltinCall) (Value, error) {
	if len(bc.Args) != 2 {
		return nil, WrongNargs
	}
	for {
		c, err := rt.eval(bc.Args[0].Value, bc.Env)
		if err != nil {
			return nil, err
		}
		ok, err := asCondition(c, "while")
		if err != nil {
			return nil, err
		}
		if !ok {
			break
		}
		brk, err := rt.loopBody(bc.Args[1].Value, bc.Env)
		if err != nil {
			return nil, err
		}
		if brk {
			break
		}
	}
	rt.visible = false
	return Nil, nil
}

func RepeatFunction(rt *Runtime, bc *BuiltinCall) (Value, error) {
	if len(bc.Args) != 1 {
		return nil, WrongNargs
	}
	for {
		brk, err := rt.loopBody(bc.Args[0].Value, bc.Env)
		if err != nil {
			return nil, err
		}
		if brk {
			break
		}
	}
	rt.visible = false
	return Nil, nil
}

func BreakFunction(rt *Runtime, bc *BuiltinCall) (Value, error) {
	return nil, breakSignal{}
}

func NextFunction(rt *Runtime, bc *BuiltinCall) (Value, error) {
	return nil, nextSignal{}
}

// ReturnFunction unwinds to the closure whose environment return was
// evaluated in.
func ReturnFunction(rt *Runtime, bc *BuiltinCall) (Value, error) {
	var v Value = Nil
	switch len(bc.Args) {
	case 0:
	case 1:
		var err error
		if v, err = rt.eval(bc.Args[0].Value, bc.Env); err != nil {
			return nil, err
		}
	default:
		return nil, errorf(KindEval, "multi-argument returns are not permitted")
	}
	return nil, &returnSignal{Env: bc.Env, Value: v}
}

func FunctionFunction(rt *Runtime, bc *BuiltinCall) (Value, error) {
	return rt.makeClosure(bc.Call, bc.Env)
}

func QuoteFunction(rt *Runtime, bc *BuiltinCall) (Value, error) {
	if len(bc.Args) != 1 {
		return nil, errorf(KindEval, "%d arguments passed to 'quote' which requires 1", len(bc.Args))
	}
	return bc.Args[0].Value, nil
}

// SwitchFunction is switch(EXPR, ...). For a string, the alternative
// with that tag is chosen; empty alternatives fall through to the next
// non-empty one, and a single untagged alternative is the default.
func SwitchFunction(rt *Runtime, bc *BuiltinCall) (Value, error) {
	if len(bc.Args) < 1 {
		return nil, errorf(KindArgumentMatch, "'EXPR' is missing")
	}
	x, err := rt.eval(bc.Args[0].Value, bc.Env)
	if err != nil {
		return nil, err
	}
	alts := bc.Args[1:]
	vec, ok := x.(Vector)
	if !ok || !IsAtomic(x) || vec.Len() != 1 {
		return nil, errorf(KindEval, "EXPR must be a length 1 vector")
	}
	if len(alts) == 0 {
		rt.warnf("'switch' with no alternatives")
		rt.visible = false
		return Nil, nil
	}
	if s, isStr := x.(*Character); isStr {
		key := s.V[0]
		defaults := 0
		for _, a := range alts {
			if a.Tag == "" {
				defaults++
			}
		}
		if defaults > 1 {
			return nil, errorf(KindEval, "duplicate 'switch' defaults")
		}
		for i, a := range alts {
			if a.Tag != key || key == NAString {
				continue
			}
			for j := i; j < len(alts); j++ {
				if alts[j].Value != Value(MissingArg) {
					return rt.eval(alts[j].Value, bc.Env)
				}
			}
			rt.visible = false
			return Nil, nil
		}
		for _, a := range alts {
			if a.Tag == "" && a.Value != Value(MissingArg) {
				return rt.eval(a.Value, bc.Env)
			}
		}
		rt.visible = false
		return Nil, nil
	}
	i, ok := elemInteger(vec, 0)
	if !ok || i == NAInteger || int(i) < 1 || int(i) > len(alts) {
		rt.visible = false
		return Nil, nil
	}
	a := alts[i-1]
	if a.Value == Value(MissingArg) {
		return nil, errorf(KindEval, "empty alternative in numeric switch")
	}
	return rt.eval(a.Value, bc.Env)
}

// ControlFunctions returns the language constructs.
func ControlFunctions() map[string]*Builtin {
	return map[string]*Builtin{
		"{":        {Fn: BraceFunction, Special: true},
		"(":        {Fn: ParenFunction, Special: true},
		"if":       {Fn: IfFunction, Special: true},
		"for":      {Fn: ForFunction, Special: true},
		"while":    {Fn: WhileFunction, Special: true},
		"repeat":   {Fn: RepeatFunction, Special: true},
		"break":    {Fn: BreakFunction, Special: true},
		"next":     {Fn: NextFunction, Special: true},
		"return":   {Fn: ReturnFunction, Special: true},
		"function": {Fn: FunctionFunction, Special: true},
		"quote":    {Fn: QuoteFunction, Special: true},
		"switch":   {Fn: SwitchFunction, Special: true},
	}
}

// isControlSignal reports whether err is a loop or function exit in
// flight rather than an error.
func isControlSignal(err error) bool {
	switch err.(type) {
	case breakSignal, nextSignal:
		return true
	}
	var rs *returnSignal
	return errors.As(err, &rs)
}
