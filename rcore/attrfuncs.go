package rcore

import "sort"

// Attribute access builtins. The replacement forms return a modified
// copy; the complex assignment machinery binds it.

func objectArg(bc *BuiltinCall, name string) (Value, error) {
	x := bc.Arg(name)
	if x == nil {
		return nil, errorf(KindArgumentMatch, "argument \"%s\" is missing, with no default", name)
	}
	return x, nil
}

func ClassFunction(rt *Runtime, bc *BuiltinCall) (Value, error) {
	x, err := objectArg(bc, "x")
	if err != nil {
		return nil, err
	}
	return Str(implicitClass(x)...), nil
}

func OldClassFunction(rt *Runtime, bc *BuiltinCall) (Value, error) {
	x, err := objectArg(bc, "x")
	if err != nil {
		return nil, err
	}
	if c := x.Attrs().Get("class"); c != nil {
		return c, nil
	}
	return Nil, nil
}

// SetClassFunction serves `class<-` and `oldClass<-`. Setting an
// implicit class such as "numeric" or "matrix" removes the attribute.
func SetClassFunction(rt *Runtime, bc *BuiltinCall) (Value, error) {
	x, err := objectArg(bc, "x")
	if err != nil {
		return nil, err
	}
	value := bc.Arg("value")
	if value == nil {
		value = Nil
	}
	if _, isNull := value.(*NullValue); isNull {
		return setAttr(x, "class", Nil, rt)
	}
	cv, ok := value.(*Character)
	if !ok {
		return nil, errorf(KindEval, "attempt to set invalid 'class' attribute")
	}
	if bc.Name == "class<-" && cv.Len() == 1 {
		switch cv.V[0] {
		case "matrix", "array":
			if dimOf(x) == nil {
				return nil, errorf(KindEval, "cannot set class to \"%s\" unless the dimension attribute has length > 0", cv.V[0])
			}
			return setAttr(x, "class", Nil, rt)
		case "numeric":
			v, err := coerceVector(x, TypeDouble, rt)
			if err != nil {
				return nil, err
			}
			return setAttr(v, "class", Nil, rt)
		}
		if implicit := implicitClass(stripClass(x)); len(implicit) == 1 && implicit[0] == cv.V[0] {
			return setAttr(x, "class", Nil, rt)
		}
	}
	return setAttr(x, "class", cv, rt)
}

func stripClass(x Value) Value {
	return WithAttrs(x, x.Attrs().Without("class"))
}

func UnclassFunction(rt *Runtime, bc *BuiltinCall) (Value, error) {
	x, err := objectArg(bc, "x")
	if err != nil {
		return nil, err
	}
	if _, isEnv := x.(*EnvValue); isEnv {
		return nil, errorf(KindEval, "cannot unclass an environment")
	}
	return stripClass(x), nil
}

// InheritsFunction is inherits(x, what, which).
func InheritsFunction(rt *Runtime, bc *BuiltinCall) (Value, error) {
	x, err := objectArg(bc, "x")
	if err != nil {
		return nil, err
	}
	what, ok := bc.Arg("what").(*Character)
	if !ok {
		return nil, errorf(KindEval, "'what' must be a character vector or an object with a nameOfClass() method")
	}
	which, err := flagArg(bc, "which", false)
	if err != nil {
		return nil, err
	}
	classes := implicitClass(x)
	if which {
		r := make([]int32, what.Len())
		for i, w := range what.V {
			for j, c := range classes {
				if c == w {
					r[i] = int32(j + 1)
					break
				}
			}
		}
		return &Integer{V: r}, nil
	}
	for _, w := range what.V {
		for _, c := range classes {
			if c == w {
				return lglScalar(true), nil
			}
		}
	}
	return lglScalar(false), nil
}

// AttrFunction is attr(x, which, exact). Without exact, a unique
// partial match is accepted.
func AttrFunction(rt *Runtime, bc *BuiltinCall) (Value, error) {
	x, err := objectArg(bc, "x")
	if err != nil {
		return nil, err
	}
	which, ok := bc.Arg("which").(*Character)
	if !ok || which.Len() != 1 {
		return nil, errorf(KindEval, "exactly one attribute 'which' must be given")
	}
	exact, err := flagArg(bc, "exact", false)
	if err != nil {
		return nil, err
	}
	name := which.V[0]
	if name == "names" {
		return namesValue(x), nil
	}
	if v := x.Attrs().Get(name); v != nil {
		return v, nil
	}
	if exact {
		return Nil, nil
	}
	var found Value = Nil
	n := 0
	x.Attrs().Each(func(k string, v Value) {
		if len(k) > len(name) && k[:len(name)] == name {
			found = v
			n++
		}
	})
	if n == 1 {
		return found, nil
	}
	return Nil, nil
}

func SetAttrFunction(rt *Runtime, bc *BuiltinCall) (Value, error) {
	x, err := objectArg(bc, "x")
	if err != nil {
		return nil, err
	}
	which, ok := bc.Arg("which").(*Character)
	if !ok || which.Len() != 1 {
		return nil, errorf(KindEval, "'name' must be non-null character string")
	}
	return setAttr(x, which.V[0], bc.Arg("value"), rt)
}

// AttributesFunction returns the attribute list, names first.
func AttributesFunction(rt *Runtime, bc *BuiltinCall) (Value, error) {
	x, err := objectArg(bc, "x")
	if err != nil {
		return nil, err
	}
	var args []Arg
	if l, isLang := x.(*Language); isLang {
		if nv := namesValue(l); nv != Value(Nil) {
			args = append(args, Arg{Tag: "names", Value: nv})
		}
	}
	if nm := x.Attrs().Get("names"); nm != nil {
		args = append(args, Arg{Tag: "names", Value: nm})
	}
	x.Attrs().Each(func(k string, v Value) {
		if k != "names" {
			args = append(args, Arg{Tag: k, Value: v})
		}
	})
	if len(args) == 0 {
		return Nil, nil
	}
	return NamedList(args), nil
}

func SetAttributesFunction(rt *Runtime, bc *BuiltinCall) (Value, error) {
	x, err := objectArg(bc, "x")
	if err != nil {
		return nil, err
	}
	value := bc.Arg("value")
	x = WithAttrs(x, nil)
	switch l := value.(type) {
	case nil, *NullValue:
		return x, nil
	case *List:
		names := namesOf(l)
		if names == nil && l.Len() > 0 {
			return nil, errorf(KindEval, "attributes must be named")
		}
		// dim goes first so dimnames can be checked against it
		for i, n := range names {
			if n == "dim" {
				if x, err = setAttr(x, n, l.V[i], rt); err != nil {
					return nil, err
				}
			}
		}
		for i, n := range names {
			if n == "dim" {
				continue
			}
			if n == "" || n == NAString {
				return nil, errorf(KindEval, "all attributes must have names [%d does not]", i+1)
			}
			if x, err = setAttr(x, n, l.V[i], rt); err != nil {
				return nil, err
			}
		}
		return x, nil
	}
	return nil, errorf(KindEval, "attributes must be a list or NULL")
}

// namesValue is names(x), including the tags of calls and pairlists.
func namesValue(x Value) Value {
	switch v := x.(type) {
	case *Language:
		names := []string{""}
		tagged := false
		for _, a := range v.Args {
			names = append(names, a.Tag)
			if a.Tag != "" {
				tagged = true
			}
		}
		if !tagged {
			return Nil
		}
		return Str(names...)
	case *Pairlist:
		names := make([]string, len(v.Args))
		for i, a := range v.Args {
			names[i] = a.Tag
		}
		return Str(names...)
	case *EnvValue:
		return Nil
	}
	if nm := x.Attrs().Get("names"); nm != nil {
		return nm
	}
	if dn, ok := x.Attrs().Get("dimnames").(*List); ok && dn.Len() == 1 {
		return dn.V[0]
	}
	return Nil
}

func NamesFunction(rt *Runtime, bc *BuiltinCall) (Value, error) {
	if len(bc.Args) != 1 {
		return nil, WrongNargs
	}
	x := bc.Args[0].Value
	if ev, isEnv := x.(*EnvValue); isEnv {
		names, err := rt.Names(ev.Ref, true)
		if err != nil {
			return nil, err
		}
		sort.Strings(names)
		return Str(names...), nil
	}
	return namesValue(x), nil
}

func SetNamesFunction(rt *Runtime, bc *BuiltinCall) (Value, error) {
	if len(bc.Args) != 2 {
		return nil, WrongNargs
	}
	x, value := bc.Args[0].Value, bc.Args[1].Value
	if _, isEnv := x.(*EnvValue); isEnv {
		return nil, errorf(KindEval, "names() applied to a non-vector")
	}
	if p, isPl := x.(*Pairlist); isPl {
		cv, err := asCharacterVector(value, rt)
		if err != nil {
			return nil, err
		}
		out := &Pairlist{Args: make([]Arg, len(p.Args)), attrs: p.attrs}
		for i, a := range p.Args {
			out.Args[i] = Arg{Value: a.Value}
			if i < cv.Len() && cv.V[i] != NAString {
				out.Args[i].Tag = cv.V[i]
			}
		}
		return out, nil
	}
	return setAttr(x, "names", value, rt)
}

func DimFunction(rt *Runtime, bc *BuiltinCall) (Value, error) {
	if len(bc.Args) != 1 {
		return nil, WrongNargs
	}
	if d := bc.Args[0].Value.Attrs().Get("dim"); d != nil {
		return d, nil
	}
	return Nil, nil
}

func SetDimFunction(rt *Runtime, bc *BuiltinCall) (Value, error) {
	if len(bc.Args) != 2 {
		return nil, WrongNargs
	}
	x := bc.Args[0].Value
	if _, ok := x.(Vector); !ok {
		return nil, errorf(KindEval, "invalid first argument, must be vector (list or atomic)")
	}
	return setAttr(x, "dim", bc.Args[1].Value, rt)
}

func DimnamesFunction(rt *Runtime, bc *BuiltinCall) (Value, error) {
	if len(bc.Args) != 1 {
		return nil, WrongNargs
	}
	if d := bc.Args[0].Value.Attrs().Get("dimnames"); d != nil {
		return d, nil
	}
	return Nil, nil
}

func SetDimnamesFunction(rt *Runtime, bc *BuiltinCall) (Value, error) {
	if len(bc.Args) != 2 {
		return nil, WrongNargs
	}
	return setAttr(bc.Args[0].Value, "dimnames", bc.Args[1].Value, rt)
}

// StructureFunction is structure(.Data, ...).
func StructureFunction(rt *Runtime, bc *BuiltinCall) (Value, error) {
	x := bc.Arg(".Data")
	if x == nil {
		return nil, errorf(KindArgumentMatch, "argument \".Data\" is missing, with no default")
	}
	var err error
	for _, a := range bc.Dots() {
		name := a.Tag
		switch name {
		case ".Names":
			name = "names"
		case ".Dim":
			name = "dim"
		case ".Dimnames":
			name = "dimnames"
		}
		if name == "" {
			return nil, errorf(KindEval, "attributes must be named")
		}
		if x, err = setAttr(x, name, a.Value, rt); err != nil {
			return nil, err
		}
	}
	return x, nil
}

func FormalsFunction(rt *Runtime, bc *BuiltinCall) (Value, error) {
	f := bc.Arg("fun")
	if s, ok := f.(*Character); ok && s.Len() == 1 {
		var err error
		if f, err = rt.FindFun(bc.Env, s.V[0]); err != nil {
			return nil, err
		}
	}
	c, ok := f.(*Closure)
	if !ok || len(c.Formals) == 0 {
		return Nil, nil
	}
	return &Pairlist{Args: c.Formals}, nil
}

func BodyFunction(rt *Runtime, bc *BuiltinCall) (Value, error) {
	c, ok := bc.Arg("fun").(*Closure)
	if !ok {
		return Nil, nil
	}
	return c.Body, nil
}

// AttrFunctions returns the attribute builtins.
func AttrFunctions() map[string]*Builtin {
	return map[string]*Builtin{
		"class":        {Fn: ClassFunction, Formals: []string{"x"}},
		"oldClass":     {Fn: OldClassFunction, Formals: []string{"x"}},
		"class<-":      {Fn: SetClassFunction, Formals: []string{"x", "value"}},
		"oldClass<-":   {Fn: SetClassFunction, Formals: []string{"x", "value"}},
		"unclass":      {Fn: UnclassFunction, Formals: []string{"x"}},
		"inherits":     {Fn: InheritsFunction, Formals: []string{"x", "what", "which"}},
		"attr":         {Fn: AttrFunction, Formals: []string{"x", "which", "exact"}},
		"attr<-":       {Fn: SetAttrFunction, Formals: []string{"x", "which", "value"}},
		"attributes":   {Fn: AttributesFunction, Formals: []string{"x"}},
		"attributes<-": {Fn: SetAttributesFunction, Formals: []string{"x", "value"}},
		"names":        {Fn: NamesFunction, Dispatch: true},
		"names<-":      {Fn: SetNamesFunction, Dispatch: true},
		"dim":          {Fn: DimFunction, Dispatch: true},
		"dim<-":        {Fn: SetDimFunction, Dispatch: true},
		"dimnames":     {Fn: DimnamesFunction, Dispatch: true},
		"dimnames<-":   {Fn: SetDimnamesFunction, Dispatch: true},
		"structure":    {Fn: StructureFunction, Formals: []string{".Data", "..."}},
		"formals":      {Fn: FormalsFunction, Formals: []string{"fun", "envir"}},
		"body":         {Fn: BodyFunction, Formals: []string{"fun"}},
	}
}
