package rcore

import (
	"strings"
)

var compareOps = map[string]bool{
	"==": true,
	"!=": true,
	"<":  true,
	">":  true,
	"<=": true,
	">=": true,
}

// compareOperand turns symbols and calls into their deparsed text, as R
// compares quote(a) == "a".
func compareOperand(v Value) (Vector, bool) {
	switch x := v.(type) {
	case *NullValue:
		return &Logical{V: []int32{}}, true
	case *Symbol:
		return strScalar(x.Name), true
	case *Language:
		return strScalar(deparseOneLine(x)), true
	case *List:
		return nil, false
	case Vector:
		return x, true
	}
	return nil, false
}

func signum(c int) func(string) bool {
	return func(op string) bool {
		switch op {
		case "==":
			return c == 0
		case "!=":
			return c != 0
		case "<":
			return c < 0
		case ">":
			return c > 0
		case "<=":
			return c <= 0
		}
		return c >= 0
	}
}

func compareFloat(a, b float64) int {
	switch {
	case a < b:
		return -1
	case a > b:
		return 1
	}
	return 0
}

// CompareFunction returns the builtin for a comparison operator.
func CompareFunction(op string) BuiltinFunction {
	return func(rt *Runtime, bc *BuiltinCall) (Value, error) {
		if len(bc.Args) != 2 {
			return nil, errorf(KindEval, "operator needs two arguments")
		}
		return rt.Compare(op, bc.Args[0].Value, bc.Args[1].Value)
	}
}

// Compare applies a comparison elementwise. Strings compare by code
// point.
func (rt *Runtime) Compare(op string, xv, yv Value) (Value, error) {
	x, okx := compareOperand(xv)
	y, oky := compareOperand(yv)
	if !okx || !oky {
		return nil, errorf(KindEval, "comparison (%s) is possible only for atomic and list types", op)
	}
	n := recycleLen(rt, x.Len(), y.Len())
	attrs, err := binaryAttrs(xv, yv, n)
	if err != nil {
		return nil, err
	}
	attrs = attrs.Without("class")
	if c := classAttr(xv); c != nil && Length(xv) == n {
		attrs = attrs.With("class", Str(c...))
	}
	nx, ny := x.Len(), y.Len()
	r := make([]int32, n)
	t := higherType(x.Type(), y.Type())
	if t == TypeRaw {
		t = TypeInteger
	}
	if t == TypeComplex && op != "==" && op != "!=" {
		return nil, errorf(KindEval, "invalid comparison with complex values")
	}
	for i := 0; i < n; i++ {
		switch t {
		case TypeCharacter:
			a := elemString(x, i%nx, 15)
			b := elemString(y, i%ny, 15)
			if a == NAString || b == NAString {
				r[i] = NALogical
				continue
			}
			r[i] = b2i(signum(strings.Compare(a, b))(op))
		case TypeComplex:
			a, _ := elemComplex(x, i%nx)
			b, _ := elemComplex(y, i%ny)
			if isNAComplex(a) || isNAComplex(b) {
				r[i] = NALogical
				continue
			}
			eq := a == b
			r[i] = b2i(eq == (op == "=="))
		default:
			a, _ := elemDouble(x, i%nx)
			b, _ := elemDouble(y, i%ny)
			if IsNAorNaN(a) || IsNAorNaN(b) {
				r[i] = NALogical
				continue
			}
			r[i] = b2i(signum(compareFloat(a, b))(op))
		}
	}
	return &Logical{V: r, attrs: attrs}, nil
}

func logicOperand(v Value) (Vector, bool) {
	switch x := v.(type) {
	case *NullValue:
		return &Logical{V: []int32{}}, true
	case *Logical, *Integer, *Double, *Complex, *Raw:
		return x.(Vector), true
	}
	return nil, false
}

// NotFunction is unary !. Raw vectors are negated bitwise.
func NotFunction(rt *Runtime, bc *BuiltinCall) (Value, error) {
	if len(bc.Args) != 1 {
		return nil, WrongNargs
	}
	x, ok := logicOperand(bc.Args[0].Value)
	if !ok {
		return nil, errorf(KindEval, "invalid argument type")
	}
	if raw, isRaw := x.(*Raw); isRaw {
		r := make([]byte, len(raw.V))
		for i, b := range raw.V {
			r[i] = ^b
		}
		return &Raw{V: r, attrs: raw.attrs}, nil
	}
	n := x.Len()
	r := make([]int32, n)
	for i := 0; i < n; i++ {
		switch b := elemLogical(x, i); b {
		case NALogical:
			r[i] = NALogical
		default:
			r[i] = 1 - b
		}
	}
	attrs := x.Attrs()
	if !IsLogicalType(x) {
		// only names, dims and dimnames survive on coerced input
		attrs = keepStructural(attrs)
	}
	return &Logical{V: r, attrs: attrs}, nil
}

func IsLogicalType(v Value) bool {
	_, ok := v.(*Logical)
	return ok
}

func keepStructural(a *Attrs) *Attrs {
	var out *Attrs
	a.Each(func(name string, v Value) {
		switch name {
		case "names", "dim", "dimnames":
			out = out.With(name, v)
		}
	})
	return out
}

// andLogic is the three valued and of R.
func andLogic(a, b int32) int32 {
	if a == 0 || b == 0 {
		return 0
	}
	if a == NALogical || b == NALogical {
		return NALogical
	}
	return 1
}

func orLogic(a, b int32) int32 {
	if a == 1 || b == 1 {
		return 1
	}
	if a == NALogical || b == NALogical {
		return NALogical
	}
	return 0
}

// LogicFunction returns the elementwise & or |.
func LogicFunction(op string) BuiltinFunction {
	return func(rt *Runtime, bc *BuiltinCall) (Value, error) {
		if len(bc.Args) != 2 {
			return nil, WrongNargs
		}
		xv, yv := bc.Args[0].Value, bc.Args[1].Value
		x, okx := logicOperand(xv)
		y, oky := logicOperand(yv)
		if !okx || !oky {
			return nil, errorf(KindEval, "operations are possible only for numeric, logical or complex types")
		}
		n := recycleLen(rt, x.Len(), y.Len())
		attrs, err := binaryAttrs(xv, yv, n)
		if err != nil {
			return nil, err
		}
		xr, xraw := x.(*Raw)
		yr, yraw := y.(*Raw)
		if xraw && yraw {
			r := make([]byte, n)
			for i := range r {
				if op == "&" {
					r[i] = xr.V[i%len(xr.V)] & yr.V[i%len(yr.V)]
				} else {
					r[i] = xr.V[i%len(xr.V)] | yr.V[i%len(yr.V)]
				}
			}
			return &Raw{V: r, attrs: attrs}, nil
		}
		nx, ny := x.Len(), y.Len()
		r := make([]int32, n)
		for i := range r {
			a, b := elemLogical(x, i%nx), elemLogical(y, i%ny)
			if op == "&" {
				r[i] = andLogic(a, b)
			} else {
				r[i] = orLogic(a, b)
			}
		}
		return &Logical{V: r, attrs: attrs}, nil
	}
}

// scalarLogic evaluates one operand of && or ||.
func (rt *Runtime) scalarLogic(a Arg, env EnvRef, which, op string) (int32, error) {
	v, err := rt.eval(a.Value, env)
	if err != nil {
		return 0, err
	}
	vec, ok := logicOperand(v)
	if !ok {
		if c, isStr := v.(*Character); isStr && c.Len() == 1 {
			b := elemLogical(c, 0)
			if b != NALogical {
				return b, nil
			}
		}
		return 0, errorf(KindEval, "invalid '%s' type in 'x %s y'", which, op)
	}
	switch vec.Len() {
	case 0:
		return NALogical, nil
	case 1:
		return elemLogical(vec, 0), nil
	}
	return 0, errorf(KindEval, "'length = %d' in coercion to 'logical(1)'", vec.Len())
}

func AndAndFunction(rt *Runtime, bc *BuiltinCall) (Value, error) {
	if len(bc.Args) != 2 {
		return nil, WrongNargs
	}
	a, err := rt.scalarLogic(bc.Args[0], bc.Env, "x", "&&")
	if err != nil {
		return nil, err
	}
	if a == 0 {
		return lglScalar(false), nil
	}
	b, err := rt.scalarLogic(bc.Args[1], bc.Env, "y", "&&")
	if err != nil {
		return nil, err
	}
	rt.visible = true
	return &Logical{V: []int32{andLogic(a, b)}}, nil
}

func OrOrFunction(rt *Runtime, bc *BuiltinCall) (Value, error) {
	if len(bc.Args) != 2 {
		return nil, WrongNargs
	}
	a, err := rt.scalarLogic(bc.Args[0], bc.Env, "x", "||")
	if err != nil {
		return nil, err
	}
	if a == 1 {
		return lglScalar(true), nil
	}
	b, err := rt.scalarLogic(bc.Args[1], bc.Env, "y", "||")
	if err != nil {
		return nil, err
	}
	rt.visible = true
	return &Logical{V: []int32{orLogic(a, b)}}, nil
}
