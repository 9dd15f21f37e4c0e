package rcore

import (
	"math"
	"sort"
	"strconv"
)

// leaf is one element gathered by c() and unlist().
type leaf struct {
	name string
	v    Value
}

type combiner struct {
	leaves    []leaf
	recursive bool
	isList    bool
	named     bool
}

func composeName(prefix, name string, i, n int) string {
	switch {
	case prefix == "":
		return name
	case name != "" && name != NAString:
		return prefix + "." + name
	case n == 1:
		return prefix
	}
	return prefix + strconv.Itoa(i+1)
}

// add gathers v. Lists are spliced one level, and fully when recursive.
func (c *combiner) add(prefix string, v Value, depth int) {
	switch x := v.(type) {
	case *NullValue:
		return
	case *List:
		if depth > 0 && !c.recursive {
			c.push(prefix, x)
			c.isList = true
			return
		}
		names := namesOf(x)
		for i, e := range x.V {
			nm := ""
			if names != nil {
				nm = names[i]
			}
			c.add(composeName(prefix, nm, i, len(x.V)), e, depth+1)
		}
		if !c.recursive {
			c.isList = true
		}
	case Vector:
		names := namesOf(x)
		n := x.Len()
		for i := 0; i < n; i++ {
			nm := ""
			if names != nil {
				nm = names[i]
			}
			c.push(composeName(prefix, nm, i, n), x.Subset([]int{i}))
		}
	case *Pairlist:
		c.add(prefix, NamedList(x.Args), depth)
	default:
		c.push(prefix, v)
		c.isList = true
	}
}

func (c *combiner) push(name string, v Value) {
	if name != "" {
		c.named = true
	}
	c.leaves = append(c.leaves, leaf{name: name, v: v})
}

func (c *combiner) result(rt *Runtime, useNames bool) (Value, error) {
	if len(c.leaves) == 0 && !c.isList {
		return Nil, nil
	}
	var out Vector
	if c.isList {
		vals := make([]Value, len(c.leaves))
		for i, l := range c.leaves {
			vals[i] = l.v
		}
		out = &List{V: vals}
	} else {
		t := TypeLogical
		for _, l := range c.leaves {
			t = higherType(t, l.v.Type())
		}
		if len(c.leaves) > 0 && c.leaves[0].v.Type() == TypeRaw {
			allRaw := true
			for _, l := range c.leaves {
				allRaw = allRaw && l.v.Type() == TypeRaw
			}
			if allRaw {
				t = TypeRaw
			}
		}
		out = emptyVector(t).blank(len(c.leaves))
		for i, l := range c.leaves {
			cv, err := coerceVector(l.v, t, rt)
			if err != nil {
				return nil, err
			}
			out.put(i, cv, 0)
		}
	}
	if useNames && c.named {
		names := make([]string, len(c.leaves))
		for i, l := range c.leaves {
			names[i] = l.name
		}
		out = out.withAttrs((*Attrs)(nil).With("names", Str(names...)))
	}
	return out, nil
}

// CFunction is c(...): combine into a vector of the highest type.
func CFunction(rt *Runtime, bc *BuiltinCall) (Value, error) {
	c := &combiner{}
	useNames := true
	for _, a := range bc.Args {
		switch a.Tag {
		case "recursive":
			b, err := asFlag(a.Value, "recursive")
			if err != nil {
				return nil, err
			}
			c.recursive = b
			continue
		case "use.names":
			b, err := asFlag(a.Value, "use.names")
			if err != nil {
				return nil, err
			}
			useNames = b
			continue
		}
	}
	for _, a := range bc.Args {
		if a.Tag == "recursive" || a.Tag == "use.names" {
			continue
		}
		c.add(a.Tag, a.Value, 0)
	}
	return c.result(rt, useNames)
}

func UnlistFunction(rt *Runtime, bc *BuiltinCall) (Value, error) {
	x := bc.Arg("x")
	l, ok := x.(*List)
	if !ok {
		if x == nil {
			return Nil, nil
		}
		return x, nil
	}
	recursive, err := flagArg(bc, "recursive", true)
	if err != nil {
		return nil, err
	}
	useNames, err := flagArg(bc, "use.names", true)
	if err != nil {
		return nil, err
	}
	c := &combiner{recursive: recursive}
	names := namesOf(l)
	for i, e := range l.V {
		nm := ""
		if names != nil {
			nm = names[i]
		}
		c.add(nm, e, 0)
	}
	return c.result(rt, useNames)
}

// VectorFunction is vector(mode, length).
func VectorFunction(rt *Runtime, bc *BuiltinCall) (Value, error) {
	mode := "logical"
	if m := bc.Arg("mode"); m != nil {
		var err error
		if mode, err = asScalarString(m, "mode"); err != nil {
			return nil, err
		}
	}
	n := 0
	if l := bc.Arg("length"); l != nil {
		var err error
		if n, err = asScalarInt(l, "length"); err != nil {
			return nil, err
		}
	}
	return newVector(mode, n)
}

func newVector(mode string, n int) (Value, error) {
	if n < 0 {
		return nil, errorf(KindEval, "vector: cannot make a vector of negative length")
	}
	switch mode {
	case "logical":
		return &Logical{V: make([]int32, n)}, nil
	case "integer":
		return &Integer{V: make([]int32, n)}, nil
	case "numeric", "double":
		return &Double{V: make([]float64, n)}, nil
	case "complex":
		return &Complex{V: make([]complex128, n)}, nil
	case "character":
		return &Character{V: make([]string, n)}, nil
	case "raw":
		return &Raw{V: make([]byte, n)}, nil
	case "list":
		vals := make([]Value, n)
		for i := range vals {
			vals[i] = Nil
		}
		return &List{V: vals}, nil
	}
	return nil, errorf(KindEval, "vector: cannot make a vector of mode '%s'.", mode)
}

func typedVector(mode string) BuiltinFunction {
	return func(rt *Runtime, bc *BuiltinCall) (Value, error) {
		n := 0
		if l := bc.Arg("length"); l != nil {
			var err error
			if n, err = asScalarInt(l, "length"); err != nil {
				return nil, err
			}
		}
		return newVector(mode, n)
	}
}

// ListFunction is list(...).
func ListFunction(rt *Runtime, bc *BuiltinCall) (Value, error) {
	return NamedList(bc.Args), nil
}

// AsVectorFunction returns as.<type>: attributes other than names are
// dropped, as R does for as.vector.
func AsVectorFunction(t TypeCode) BuiltinFunction {
	return func(rt *Runtime, bc *BuiltinCall) (Value, error) {
		x := bc.Arg("x")
		if x == nil {
			return emptyVector(t), nil
		}
		r, err := coerceVector(x, t, rt)
		if err != nil {
			return nil, err
		}
		if t == TypeList {
			if _, isEnv := x.(*EnvValue); isEnv {
				return rt.envAsList(x.(*EnvValue).Ref)
			}
			return r, nil
		}
		return r.withAttrs(nil), nil
	}
}

func (rt *Runtime) envAsList(r EnvRef) (Value, error) {
	names, err := rt.Names(r, false)
	if err != nil {
		return nil, err
	}
	sort.Strings(names)
	args := make([]Arg, len(names))
	for i, n := range names {
		v, err := rt.GetVar(r, n)
		if err != nil {
			return nil, err
		}
		args[i] = Arg{Tag: n, Value: v}
	}
	return NamedList(args), nil
}

// AsVectorModeFunction is as.vector(x, mode).
func AsVectorModeFunction(rt *Runtime, bc *BuiltinCall) (Value, error) {
	x := bc.Arg("x")
	if x == nil {
		return nil, errorf(KindArgumentMatch, "argument \"x\" is missing, with no default")
	}
	mode := "any"
	if m := bc.Arg("mode"); m != nil {
		var err error
		if mode, err = asScalarString(m, "mode"); err != nil {
			return nil, err
		}
	}
	var t TypeCode
	switch mode {
	case "any":
		switch v := x.(type) {
		case *List:
			return &List{V: v.V, attrs: (*Attrs)(nil).With("names", v.Attrs().Get("names"))}, nil
		case Vector:
			return v.withAttrs(nil), nil
		}
		return x, nil
	case "logical":
		t = TypeLogical
	case "integer":
		t = TypeInteger
	case "numeric", "double":
		t = TypeDouble
	case "complex":
		t = TypeComplex
	case "character":
		t = TypeCharacter
	case "raw":
		t = TypeRaw
	case "list":
		t = TypeList
	case "symbol", "name":
		s, err := asScalarString(x, "x")
		if err != nil {
			return nil, err
		}
		return Sym(s), nil
	default:
		return nil, errorf(KindEval, "vector: cannot make a vector of mode '%s'.", mode)
	}
	r, err := coerceVector(x, t, rt)
	if err != nil {
		return nil, err
	}
	if t == TypeList {
		return r, nil
	}
	return r.withAttrs(nil), nil
}

func AsSymbolFunction(rt *Runtime, bc *BuiltinCall) (Value, error) {
	x := bc.Arg("x")
	if s, ok := x.(*Symbol); ok {
		return s, nil
	}
	vec, ok := x.(Vector)
	if !ok || !IsAtomic(x) || vec.Len() == 0 {
		return nil, errorf(KindEval, "invalid type/length (symbol/%d) in vector allocation", Length(x))
	}
	return Sym(elemString(vec, 0, 15)), nil
}

// IsTypeFunction returns an is.* predicate.
func IsTypeFunction(test func(Value) bool) BuiltinFunction {
	return func(rt *Runtime, bc *BuiltinCall) (Value, error) {
		x := bc.Arg("x")
		if x == nil {
			return nil, errorf(KindArgumentMatch, "argument \"x\" is missing, with no default")
		}
		return lglScalar(test(x)), nil
	}
}

func isType(ts ...TypeCode) func(Value) bool {
	return func(v Value) bool {
		for _, t := range ts {
			if v.Type() == t {
				return true
			}
		}
		return false
	}
}

func isVectorValue(v Value) bool {
	switch v.(type) {
	case Vector:
		for _, n := range v.Attrs().Names() {
			if n != "names" {
				return false
			}
		}
		return true
	}
	return false
}

func isNumericValue(v Value) bool {
	switch v.(type) {
	case *Integer, *Double:
		return !inheritsFrom(v, "factor")
	}
	return false
}

func TypeofFunction(rt *Runtime, bc *BuiltinCall) (Value, error) {
	x := bc.Arg("x")
	if x == nil {
		return nil, errorf(KindArgumentMatch, "argument \"x\" is missing, with no default")
	}
	return strScalar(x.Type().String()), nil
}

func ModeFunction(rt *Runtime, bc *BuiltinCall) (Value, error) {
	x := bc.Arg("x")
	if x == nil {
		return nil, errorf(KindArgumentMatch, "argument \"x\" is missing, with no default")
	}
	return strScalar(modeName(x)), nil
}

func LengthFunction(rt *Runtime, bc *BuiltinCall) (Value, error) {
	if len(bc.Args) != 1 {
		return nil, errorf(KindEval, "%d arguments passed to 'length' which requires 1", len(bc.Args))
	}
	return intScalar(Length(bc.Args[0].Value)), nil
}

func SeqLenFunction(rt *Runtime, bc *BuiltinCall) (Value, error) {
	v := bc.Arg("length.out")
	vec, ok := v.(Vector)
	if !ok || !IsAtomic(v) || vec.Len() != 1 {
		return nil, errorf(KindEval, "argument of length 0")
	}
	f, _ := elemDouble(vec, 0)
	if math.IsNaN(f) || f < 0 {
		return nil, errorf(KindEval, "argument must be coercible to non-negative integer")
	}
	n := int(f)
	r := make([]int32, n)
	for i := range r {
		r[i] = int32(i + 1)
	}
	return &Integer{V: r}, nil
}

func SeqAlongFunction(rt *Runtime, bc *BuiltinCall) (Value, error) {
	x := bc.Arg("along.with")
	if x == nil {
		return nil, errorf(KindArgumentMatch, "argument \"along.with\" is missing, with no default")
	}
	n := Length(x)
	r := make([]int32, n)
	for i := range r {
		r[i] = int32(i + 1)
	}
	return &Integer{V: r}, nil
}

func RevFunction(rt *Runtime, bc *BuiltinCall) (Value, error) {
	x := bc.Arg("x")
	vec, ok := x.(Vector)
	if !ok {
		if _, isNull := x.(*NullValue); isNull {
			return Nil, nil
		}
		return nil, errorf(KindEval, "argument is not a vector")
	}
	n := vec.Len()
	idx := make([]int, n)
	for i := range idx {
		idx[i] = n - 1 - i
	}
	r := vec.Subset(idx)
	if names := namesOf(vec); names != nil {
		nn := make([]string, n)
		for i, k := range idx {
			nn[i] = names[k]
		}
		r = r.withAttrs(r.Attrs().With("names", Str(nn...)))
	}
	return r, nil
}

// RepFunction is rep(x, times, length.out, each).
func RepFunction(rt *Runtime, bc *BuiltinCall) (Value, error) {
	x := bc.Arg("x")
	if _, isNull := x.(*NullValue); isNull || x == nil {
		return Nil, nil
	}
	vec, ok := x.(Vector)
	if !ok {
		return nil, errorf(KindEval, "attempt to replicate an object of type '%s'", x.Type())
	}
	n := vec.Len()
	each := 1
	if e := bc.Arg("each"); e != nil {
		var err error
		if each, err = asScalarInt(e, "each"); err != nil || each < 0 {
			return nil, errorf(KindEval, "invalid '%s' argument", "each")
		}
	}
	var idx []int
	for i := 0; i < n; i++ {
		for j := 0; j < each; j++ {
			idx = append(idx, i)
		}
	}
	if t := bc.Arg("times"); t != nil {
		tv, err := asIntegerVector(t, rt)
		if err != nil {
			return nil, err
		}
		switch {
		case tv.Len() == 1:
			k := int(tv.V[0])
			if tv.V[0] == NAInteger || k < 0 {
				return nil, errorf(KindEval, "invalid '%s' argument", "times")
			}
			base := idx
			idx = make([]int, 0, len(base)*k)
			for j := 0; j < k; j++ {
				idx = append(idx, base...)
			}
		case tv.Len() == len(idx):
			var out []int
			for i, k := range tv.V {
				if k == NAInteger || k < 0 {
					return nil, errorf(KindEval, "invalid '%s' argument", "times")
				}
				for j := 0; j < int(k); j++ {
					out = append(out, idx[i])
				}
			}
			idx = out
		default:
			return nil, errorf(KindEval, "invalid '%s' argument", "times")
		}
	}
	if lo := bc.Arg("length.out"); lo != nil {
		l, err := asScalarInt(lo, "length.out")
		if err != nil {
			return nil, err
		}
		if len(idx) == 0 && l > 0 {
			return nil, errorf(KindEval, "attempt to replicate an object of type '%s'", x.Type())
		}
		out := make([]int, l)
		for i := range out {
			out[i] = idx[i%len(idx)]
		}
		idx = out
	}
	if idx == nil {
		idx = []int{}
	}
	r := vec.Subset(idx)
	if names := namesOf(vec); names != nil {
		nn := make([]string, len(idx))
		for i, k := range idx {
			nn[i] = names[k]
		}
		r = r.withAttrs(r.Attrs().With("names", Str(nn...)))
	}
	return r, nil
}

func IsNAFunction(rt *Runtime, bc *BuiltinCall) (Value, error) {
	if len(bc.Args) != 1 {
		return nil, WrongNargs
	}
	x := bc.Args[0].Value
	switch v := x.(type) {
	case *NullValue:
		return &Logical{V: []int32{}}, nil
	case *List:
		r := make([]int32, v.Len())
		for i, e := range v.V {
			if ev, ok := e.(Vector); ok && IsAtomic(e) && ev.Len() == 1 {
				r[i] = b2i(elemIsNA(ev, 0))
			}
		}
		return &Logical{V: r, attrs: keepStructural(v.attrs)}, nil
	case Vector:
		n := v.Len()
		r := make([]int32, n)
		for i := 0; i < n; i++ {
			r[i] = b2i(elemIsNA(v, i))
		}
		return &Logical{V: r, attrs: keepStructural(v.Attrs())}, nil
	}
	rt.warnf("is.na() applied to non-(list or vector) of type '%s'", x.Type())
	return lglScalar(false), nil
}

// elemIsNA is true for NA and NaN.
func elemIsNA(v Vector, i int) bool {
	switch x := v.(type) {
	case *Logical:
		return x.V[i] == NALogical
	case *Integer:
		return x.V[i] == NAInteger
	case *Double:
		return math.IsNaN(x.V[i])
	case *Complex:
		return math.IsNaN(real(x.V[i])) || math.IsNaN(imag(x.V[i]))
	case *Character:
		return x.V[i] == NAString
	}
	return false
}

func IdenticalFunction(rt *Runtime, bc *BuiltinCall) (Value, error) {
	x, y := bc.Arg("x"), bc.Arg("y")
	if x == nil {
		return nil, errorf(KindArgumentMatch, "argument \"x\" is missing, with no default")
	}
	if y == nil {
		return nil, errorf(KindArgumentMatch, "argument \"y\" is missing, with no default")
	}
	return lglScalar(Identical(x, y)), nil
}

func InvisibleFunction(rt *Runtime, bc *BuiltinCall) (Value, error) {
	var v Value = Nil
	if len(bc.Args) > 0 {
		v = bc.Args[0].Value
	}
	rt.visible = false
	return v, nil
}

// numericArg admits logical, integer and double input for the
// summaries.
func numericArg(v Value, what string) (Vector, error) {
	switch x := v.(type) {
	case *Logical, *Integer, *Double:
		return x.(Vector), nil
	case *NullValue:
		return &Integer{V: []int32{}}, nil
	}
	return nil, errorf(KindEval, "invalid 'type' (%s) of argument", v.Type())
}

// CumFunction returns cumsum, cumprod, cummax or cummin. Once an NA is
// met the rest of the result is NA.
func CumFunction(name string) BuiltinFunction {
	return func(rt *Runtime, bc *BuiltinCall) (Value, error) {
		if len(bc.Args) != 1 {
			return nil, WrongNargs
		}
		x, err := numericArg(bc.Args[0].Value, name)
		if err != nil {
			if c, isStr := bc.Args[0].Value.(*Character); isStr {
				d, err := asDoubleVector(c, rt)
				if err != nil {
					return nil, err
				}
				x = d
			} else {
				return nil, err
			}
		}
		n := x.Len()
		names := x.Attrs().Get("names")
		intOut := x.Type() != TypeDouble && (name == "cumsum" || name == "cummax" || name == "cummin")
		if intOut {
			r := make([]int32, n)
			var acc int64
			na := false
			for i := 0; i < n; i++ {
				e, _ := elemInteger(x, i)
				if na || e == NAInteger {
					na = true
					r[i] = NAInteger
					continue
				}
				switch {
				case i == 0:
					acc = int64(e)
				case name == "cumsum":
					acc += int64(e)
				case name == "cummax":
					acc = max64(acc, int64(e))
				default:
					acc = min64(acc, int64(e))
				}
				if acc > math.MaxInt32 || acc <= math.MinInt32 {
					rt.warnf("integer overflow in 'cumsum'; use 'cumsum(as.numeric(.))'")
					for ; i < n; i++ {
						r[i] = NAInteger
					}
					break
				}
				r[i] = int32(acc)
			}
			return &Integer{V: r, attrs: (*Attrs)(nil).With("names", names)}, nil
		}
		r := make([]float64, n)
		acc := 0.0
		na := false
		for i := 0; i < n; i++ {
			e, _ := elemDouble(x, i)
			if na || IsNA(e) {
				na = true
				r[i] = NADouble
				continue
			}
			switch {
			case i == 0 && name != "cumsum" && name != "cumprod":
				acc = e
			case name == "cumsum":
				acc += e
			case name == "cumprod":
				if i == 0 {
					acc = e
				} else {
					acc *= e
				}
			case name == "cummax":
				if math.IsNaN(e) || math.IsNaN(acc) {
					acc = math.NaN()
				} else {
					acc = math.Max(acc, e)
				}
			default:
				if math.IsNaN(e) || math.IsNaN(acc) {
					acc = math.NaN()
				} else {
					acc = math.Min(acc, e)
				}
			}
			r[i] = acc
		}
		return &Double{V: r, attrs: (*Attrs)(nil).With("names", names)}, nil
	}
}

func max64(a, b int64) int64 {
	if a > b {
		return a
	}
	return b
}

func min64(a, b int64) int64 {
	if a < b {
		return a
	}
	return b
}

// summaryArgs splits off na.rm and checks the remaining arguments.
func summaryArgs(bc *BuiltinCall) ([]Vector, bool, error) {
	narm := false
	var vals []Vector
	for _, a := range bc.Args {
		if a.Tag == "na.rm" {
			b, err := asFlag(a.Value, "na.rm")
			if err != nil {
				return nil, false, err
			}
			narm = b
			continue
		}
		switch x := a.Value.(type) {
		case *NullValue:
		case *Logical, *Integer, *Double, *Complex, *Character:
			vals = append(vals, x.(Vector))
		default:
			return nil, false, errorf(KindEval, "invalid 'type' (%s) of argument", a.Value.Type())
		}
	}
	return vals, narm, nil
}

// SummaryFunction returns sum, prod, max or min.
func SummaryFunction(name string) BuiltinFunction {
	return func(rt *Runtime, bc *BuiltinCall) (Value, error) {
		vals, narm, err := summaryArgs(bc)
		if err != nil {
			return nil, err
		}
		t := TypeInteger
		for _, v := range vals {
			t = higherType(t, v.Type())
		}
		if t == TypeComplex && (name == "max" || name == "min") {
			return nil, errorf(KindEval, "invalid 'type' (complex) of argument")
		}
		if t == TypeCharacter {
			if name == "sum" || name == "prod" {
				return nil, errorf(KindEval, "invalid 'type' (character) of argument")
			}
			return rt.stringExtreme(name, vals, narm)
		}
		if t == TypeComplex {
			acc := complex(0, 0)
			if name == "prod" {
				acc = 1
			}
			for _, v := range vals {
				for i := 0; i < v.Len(); i++ {
					z, _ := elemComplex(v, i)
					if isNAComplex(z) {
						if narm {
							continue
						}
						return &Complex{V: []complex128{NAComplex}}, nil
					}
					if name == "sum" {
						acc += z
					} else {
						acc *= z
					}
				}
			}
			return &Complex{V: []complex128{acc}}, nil
		}
		if t == TypeInteger && name == "sum" {
			var acc int64
			for _, v := range vals {
				for i := 0; i < v.Len(); i++ {
					e, _ := elemInteger(v, i)
					if e == NAInteger {
						if narm {
							continue
						}
						return &Integer{V: []int32{NAInteger}}, nil
					}
					acc += int64(e)
				}
			}
			if acc > math.MaxInt32 || acc <= math.MinInt32 {
				rt.warnf("integer overflow - use sum(as.numeric(.))")
				return &Integer{V: []int32{NAInteger}}, nil
			}
			return &Integer{V: []int32{int32(acc)}}, nil
		}
		var acc float64
		switch name {
		case "prod":
			acc = 1
		case "max":
			acc = math.Inf(-1)
		case "min":
			acc = math.Inf(1)
		}
		seen := false
		sawNaN := false
		for _, v := range vals {
			for i := 0; i < v.Len(); i++ {
				e, _ := elemDouble(v, i)
				if math.IsNaN(e) {
					if narm {
						continue
					}
					if IsNA(e) {
						return naOfSummary(t, name), nil
					}
					sawNaN = true
					continue
				}
				seen = true
				switch name {
				case "sum":
					acc += e
				case "prod":
					acc *= e
				case "max":
					acc = math.Max(acc, e)
				case "min":
					acc = math.Min(acc, e)
				}
			}
		}
		if sawNaN {
			return dblScalar(math.NaN()), nil
		}
		if !seen && (name == "max" || name == "min") {
			rt.warnf("no non-missing arguments to %s; returning %s", name, map[string]string{"max": "-Inf", "min": "Inf"}[name])
			return dblScalar(acc), nil
		}
		if t == TypeInteger && name != "prod" {
			return &Integer{V: []int32{int32(acc)}}, nil
		}
		return dblScalar(acc), nil
	}
}

func naOfSummary(t TypeCode, name string) Value {
	if t == TypeInteger && name != "prod" {
		return &Integer{V: []int32{NAInteger}}
	}
	return dblScalar(NADouble)
}

func (rt *Runtime) stringExtreme(name string, vals []Vector, narm bool) (Value, error) {
	best, seen := "", false
	for _, v := range vals {
		for i := 0; i < v.Len(); i++ {
			s := elemString(v, i, 15)
			if s == NAString {
				if narm {
					continue
				}
				return &Character{V: []string{NAString}}, nil
			}
			if !seen || (name == "max" && s > best) || (name == "min" && s < best) {
				best, seen = s, true
			}
		}
	}
	if !seen {
		return nil, errorf(KindEval, "no non-missing arguments to %s", name)
	}
	return strScalar(best), nil
}

// AnyAllFunction returns any or all.
func AnyAllFunction(name string) BuiltinFunction {
	return func(rt *Runtime, bc *BuiltinCall) (Value, error) {
		narm := false
		result := int32(b2i(name == "all"))
		sawNA := false
		for _, a := range bc.Args {
			if a.Tag == "na.rm" {
				b, err := asFlag(a.Value, "na.rm")
				if err != nil {
					return nil, err
				}
				narm = b
				continue
			}
		}
		for _, a := range bc.Args {
			if a.Tag == "na.rm" {
				continue
			}
			var vec Vector
			switch x := a.Value.(type) {
			case *NullValue:
				continue
			case *Logical:
				vec = x
			case *Integer, *Double:
				rt.warnf("coercing argument of type '%s' to logical", x.Type())
				vec = x.(Vector)
			default:
				return nil, errorf(KindEval, "invalid 'type' (%s) of argument", a.Value.Type())
			}
			for i := 0; i < vec.Len(); i++ {
				switch b := elemLogical(vec, i); {
				case b == NALogical:
					sawNA = true
				case name == "any" && b == 1:
					return lglScalar(true), nil
				case name == "all" && b == 0:
					return lglScalar(false), nil
				}
			}
		}
		if sawNA && !narm {
			return naLogical(), nil
		}
		return &Logical{V: []int32{result}}, nil
	}
}

// MatrixFunction is matrix(data, nrow, ncol, byrow, dimnames).
func MatrixFunction(rt *Runtime, bc *BuiltinCall) (Value, error) {
	data := bc.Arg("data")
	if data == nil {
		data = naLogical()
	}
	vec, ok := data.(Vector)
	if !ok {
		return nil, errorf(KindEval, "'data' must be of a vector type, was '%s'", data.Type())
	}
	n := vec.Len()
	nrow, ncol := -1, -1
	if v := bc.Arg("nrow"); v != nil {
		var err error
		if nrow, err = asScalarInt(v, "nrow"); err != nil || nrow < 0 {
			return nil, errorf(KindEval, "invalid 'nrow' value (< 0)")
		}
	}
	if v := bc.Arg("ncol"); v != nil {
		var err error
		if ncol, err = asScalarInt(v, "ncol"); err != nil || ncol < 0 {
			return nil, errorf(KindEval, "invalid 'ncol' value (< 0)")
		}
	}
	switch {
	case nrow < 0 && ncol < 0:
		nrow, ncol = n, 1
	case nrow < 0:
		nrow = ceilDiv(n, ncol)
	case ncol < 0:
		ncol = ceilDiv(n, nrow)
	}
	total := nrow * ncol
	if n > 0 && total > 0 {
		if total%n != 0 && n%nrow != 0 && n%ncol != 0 {
			rt.warnf("data length [%d] is not a sub-multiple or multiple of the number of rows [%d]", n, nrow)
		} else if n > total {
			rt.warnf("data length differs from size of matrix: [%d != %d x %d]", n, nrow, ncol)
		}
	}
	byrow, err := flagArg(bc, "byrow", false)
	if err != nil {
		return nil, err
	}
	idx := make([]int, total)
	for k := range idx {
		if n == 0 {
			idx[k] = -1
			continue
		}
		if byrow {
			i, j := k%nrow, k/nrow
			idx[k] = (i*ncol + j) % n
		} else {
			idx[k] = k % n
		}
	}
	r := vec.Subset(idx)
	a := (*Attrs)(nil).With("dim", Int(int32(nrow), int32(ncol)))
	r = r.withAttrs(a)
	if dn := bc.Arg("dimnames"); dn != nil {
		v, err := setAttr(r, "dimnames", dn, rt)
		if err != nil {
			return nil, err
		}
		return v, nil
	}
	return r, nil
}

func ceilDiv(a, b int) int {
	if b == 0 {
		return 0
	}
	return (a + b - 1) / b
}

// VectorFunctions returns the vector construction, coercion and
// summary builtins.
func VectorFunctions() map[string]*Builtin {
	return map[string]*Builtin{
		"c":            {Fn: CFunction, Dispatch: true},
		"list":         {Fn: ListFunction},
		"unlist":       {Fn: UnlistFunction, Formals: []string{"x", "recursive", "use.names"}},
		"vector":       {Fn: VectorFunction, Formals: []string{"mode", "length"}},
		"logical":      {Fn: typedVector("logical"), Formals: []string{"length"}},
		"integer":      {Fn: typedVector("integer"), Formals: []string{"length"}},
		"numeric":      {Fn: typedVector("numeric"), Formals: []string{"length"}},
		"double":       {Fn: typedVector("double"), Formals: []string{"length"}},
		"complex":      {Fn: typedVector("complex"), Formals: []string{"length.out"}},
		"character":    {Fn: typedVector("character"), Formals: []string{"length"}},
		"raw":          {Fn: typedVector("raw"), Formals: []string{"length"}},
		"as.logical":   {Fn: AsVectorFunction(TypeLogical), Formals: []string{"x", "..."}},
		"as.integer":   {Fn: AsVectorFunction(TypeInteger), Formals: []string{"x", "..."}},
		"as.double":    {Fn: AsVectorFunction(TypeDouble), Formals: []string{"x", "..."}},
		"as.numeric":   {Fn: AsVectorFunction(TypeDouble), Formals: []string{"x", "..."}},
		"as.complex":   {Fn: AsVectorFunction(TypeComplex), Formals: []string{"x", "..."}},
		"as.character": {Fn: AsVectorFunction(TypeCharacter), Formals: []string{"x", "..."}, Dispatch: true},
		"as.raw":       {Fn: AsVectorFunction(TypeRaw), Formals: []string{"x"}},
		"as.list":      {Fn: AsVectorFunction(TypeList), Formals: []string{"x", "..."}, Dispatch: true},
		"as.vector":    {Fn: AsVectorModeFunction, Formals: []string{"x", "mode"}, Dispatch: true},
		"as.symbol":    {Fn: AsSymbolFunction, Formals: []string{"x"}},
		"as.name":      {Fn: AsSymbolFunction, Formals: []string{"x"}},
		"is.null":      {Fn: IsTypeFunction(isType(TypeNull)), Formals: []string{"x"}},
		"is.logical":   {Fn: IsTypeFunction(isType(TypeLogical)), Formals: []string{"x"}},
		"is.integer":   {Fn: IsTypeFunction(isType(TypeInteger)), Formals: []string{"x"}},
		"is.double":    {Fn: IsTypeFunction(isType(TypeDouble)), Formals: []string{"x"}},
		"is.complex":   {Fn: IsTypeFunction(isType(TypeComplex)), Formals: []string{"x"}},
		"is.character": {Fn: IsTypeFunction(isType(TypeCharacter)), Formals: []string{"x"}},
		"is.raw":       {Fn: IsTypeFunction(isType(TypeRaw)), Formals: []string{"x"}},
		"is.list":      {Fn: IsTypeFunction(isType(TypeList, TypePairlist)), Formals: []string{"x"}},
		"is.pairlist":  {Fn: IsTypeFunction(isType(TypePairlist, TypeNull)), Formals: []string{"x"}},
		"is.symbol":    {Fn: IsTypeFunction(isType(TypeSymbol)), Formals: []string{"x"}},
		"is.name":      {Fn: IsTypeFunction(isType(TypeSymbol)), Formals: []string{"x"}},
		"is.call":      {Fn: IsTypeFunction(isType(TypeLanguage)), Formals: []string{"x"}},
		"is.function":  {Fn: IsTypeFunction(IsFunction), Formals: []string{"x"}},
		"is.primitive": {Fn: IsTypeFunction(isType(TypeBuiltin, TypeSpecial)), Formals: []string{"x"}},
		"is.atomic":    {Fn: IsTypeFunction(IsAtomic), Formals: []string{"x"}},
		"is.vector":    {Fn: IsTypeFunction(isVectorValue), Formals: []string{"x", "mode"}},
		"is.numeric":   {Fn: IsTypeFunction(isNumericValue), Formals: []string{"x"}},
		"typeof":       {Fn: TypeofFunction, Formals: []string{"x"}},
		"mode":         {Fn: ModeFunction, Formals: []string{"x"}},
		"length":       {Fn: LengthFunction, Dispatch: true},
		"seq_len":      {Fn: SeqLenFunction, Formals: []string{"length.out"}},
		"seq_along":    {Fn: SeqAlongFunction, Formals: []string{"along.with"}},
		"rev":          {Fn: RevFunction, Formals: []string{"x"}, Dispatch: true},
		"rep":          {Fn: RepFunction, Formals: []string{"x", "times", "length.out", "each"}, Dispatch: true},
		"is.na":        {Fn: IsNAFunction, Dispatch: true},
		"identical":    {Fn: IdenticalFunction, Formals: []string{"x", "y", "num.eq", "single.NA", "attrib.as.set", "ignore.bytecode", "ignore.environment", "ignore.srcref", "extptr.as.ref"}},
		"invisible":    {Fn: InvisibleFunction},
		"cumsum":       {Fn: CumFunction("cumsum")},
		"cumprod":      {Fn: CumFunction("cumprod")},
		"cummax":       {Fn: CumFunction("cummax")},
		"cummin":       {Fn: CumFunction("cummin")},
		"sum":          {Fn: SummaryFunction("sum")},
		"prod":         {Fn: SummaryFunction("prod")},
		"max":          {Fn: SummaryFunction("max")},
		"min":          {Fn: SummaryFunction("min")},
		"any":          {Fn: AnyAllFunction("any")},
		"all":          {Fn: AnyAllFunction("all")},
		"matrix":       {Fn: MatrixFunction, Formals: []string{"data", "nrow", "ncol", "byrow", "dimnames"}},
	}
}
