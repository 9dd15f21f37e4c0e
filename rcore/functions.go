package rcore

import (
	"fmt"
	"os"
	"sort"

	"github.com/shurcooL/go-goon"
)

// MergeFuncMap merges builtin tables, naming each builtin by its key.
func MergeFuncMap(funcs ...map[string]*Builtin) map[string]*Builtin {
	n := make(map[string]*Builtin)

	for _, f := range funcs {
		for k, v := range f {
			// disallow dups, avoiding possible security implications and confusion generally.
			if _, dup := n[k]; dup {
				panic(fmt.Sprintf(" duplicate function '%s' not allowed", k))
			}
			v.Name = k
			n[k] = v
		}
	}
	return n
}

// SandboxSafeFunctions returns all builtins that are safe to run in a sandbox
func SandboxSafeFunctions() map[string]*Builtin {
	return MergeFuncMap(
		ControlFunctions(),
		AssignFunctions(),
		FrameFunctions(),
		ConditionFunctions(),
		DispatchFunctions(),
		EnvFunctions(),
		VectorFunctions(),
		AttrFunctions(),
		ArithFunctions(),
		IndexFunctions(),
		ApplyFunctions(),
		StrFunctions(),
		EncodingFunctions(),
	)
}

// AllBuiltinFunctions returns all built in functions
func AllBuiltinFunctions() map[string]*Builtin {
	return MergeFuncMap(
		SandboxSafeFunctions(),
		SystemFunctions(),
	)
}

// SystemFunctions touch the host process. A sandboxed runtime leaves
// them out.
func SystemFunctions() map[string]*Builtin {
	return map[string]*Builtin{
		"Sys.getenv": {Fn: SysGetenvFunction, Formals: []string{"x", "unset"}},
		"Sys.setenv": {Fn: SysSetenvFunction},
		"inspect":    {Fn: InspectFunction, Formals: []string{"x"}},
	}
}

func SysGetenvFunction(rt *Runtime, bc *BuiltinCall) (Value, error) {
	unset := ""
	if u := bc.Arg("unset"); u != nil {
		var err error
		if unset, err = asScalarString(u, "unset"); err != nil {
			return nil, err
		}
	}
	x := bc.Arg("x")
	if x == nil {
		env := os.Environ()
		sort.Strings(env)
		return Str(env...), nil
	}
	names, ok := x.(*Character)
	if !ok {
		return nil, errorf(KindEval, "wrong type for argument")
	}
	out := make([]string, names.Len())
	for i, n := range names.V {
		v, found := os.LookupEnv(n)
		if !found {
			v = unset
		}
		out[i] = v
	}
	r := Str(out...)
	if names.Len() > 1 {
		r.attrs = r.attrs.With("names", Str(names.V...))
	}
	return r, nil
}

func SysSetenvFunction(rt *Runtime, bc *BuiltinCall) (Value, error) {
	res := make([]bool, len(bc.Args))
	for i, a := range bc.Args {
		if a.Tag == "" {
			return nil, errorf(KindEval, "all arguments must be named")
		}
		v, err := asScalarString(a.Value, a.Tag)
		if err != nil {
			return nil, err
		}
		res[i] = os.Setenv(a.Tag, v) == nil
	}
	rt.visible = false
	return Lgl(res...), nil
}

// InspectFunction dumps the Go representation of x. Without x it shows
// the call stack.
func InspectFunction(rt *Runtime, bc *BuiltinCall) (Value, error) {
	x := bc.Arg("x")
	rt.visible = false
	if x == nil {
		fmt.Fprint(rt.Out, rt.ShowFrames())
		return Nil, nil
	}
	fmt.Fprint(rt.Out, goon.Sdump(x))
	return x, nil
}
