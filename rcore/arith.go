package rcore

import (
	"math"
	"math/cmplx"
)

type NumericOp int

const (
	Add NumericOp = iota
	Sub
	Mult
	Div
	Pow
	Mod
	IntDiv
)

var numericOps = map[string]NumericOp{
	"+":   Add,
	"-":   Sub,
	"*":   Mult,
	"/":   Div,
	"^":   Pow,
	"%%":  Mod,
	"%/%": IntDiv,
}

const (
	recycleWarning  = "longer object length is not a multiple of shorter object length"
	overflowWarning = "NAs produced by integer overflow"
)

// arithOperand admits NULL as a zero length operand.
func arithOperand(v Value) (Vector, bool) {
	switch x := v.(type) {
	case *NullValue:
		return &Integer{V: []int32{}}, true
	case *Logical, *Integer, *Double, *Complex:
		return x.(Vector), true
	}
	return nil, false
}

// recycleLen is the length of a binary result; mismatched lengths
// warn.
func recycleLen(w warnSink, nx, ny int) int {
	if nx == 0 || ny == 0 {
		return 0
	}
	n, m := nx, ny
	if m > n {
		n, m = m, n
	}
	if n%m != 0 {
		w.warnf(recycleWarning)
	}
	return n
}

// binaryAttrs combines the attributes of the operands of an
// elementwise operation giving a result of length n. Attributes come
// from operands of length n, the first taking precedence.
func binaryAttrs(x, y Value, n int) (*Attrs, error) {
	dx, dy := dimOf(x), dimOf(y)
	if dx != nil && dy != nil && !sameInts(dx, dy) {
		return nil, errorf(KindEval, "non-conformable arrays")
	}
	for _, d := range []struct {
		dim []int
		v   Value
	}{{dx, x}, {dy, y}} {
		if d.dim != nil && Length(d.v) != n && n != 0 {
			return nil, errorf(KindEval, "dims [product %d] do not match the length of object [%d]", Length(d.v), n)
		}
	}
	var a *Attrs
	if Length(y) == n {
		a = y.Attrs()
	}
	if Length(x) == n {
		x.Attrs().Each(func(name string, v Value) {
			a = a.With(name, v)
		})
	}
	return a, nil
}

func sameInts(a, b []int) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

// ArithFunction returns the builtin for an arithmetic operator.
func ArithFunction(name string) BuiltinFunction {
	op := numericOps[name]
	return func(rt *Runtime, bc *BuiltinCall) (Value, error) {
		switch len(bc.Args) {
		case 1:
			return rt.unaryArith(name, bc.Args[0].Value)
		case 2:
			return rt.Arith(op, bc.Args[0].Value, bc.Args[1].Value)
		}
		return nil, errorf(KindEval, "operator needs one or two arguments")
	}
}

func (rt *Runtime) unaryArith(name string, v Value) (Value, error) {
	x, ok := arithOperand(v)
	if !ok || (name != "+" && name != "-") {
		return nil, errorf(KindEval, "invalid argument to unary operator")
	}
	if l, isLgl := x.(*Logical); isLgl {
		x = &Integer{V: l.V, attrs: l.attrs}
	}
	if name == "+" {
		return x, nil
	}
	switch t := x.(type) {
	case *Integer:
		r := make([]int32, len(t.V))
		for i, e := range t.V {
			if e == NAInteger {
				r[i] = NAInteger
			} else {
				r[i] = -e
			}
		}
		return &Integer{V: r, attrs: t.attrs}, nil
	case *Double:
		r := make([]float64, len(t.V))
		for i, e := range t.V {
			if IsNA(e) {
				r[i] = NADouble
			} else {
				r[i] = -e
			}
		}
		return &Double{V: r, attrs: t.attrs}, nil
	case *Complex:
		r := make([]complex128, len(t.V))
		for i, e := range t.V {
			r[i] = -e
		}
		return &Complex{V: r, attrs: t.attrs}, nil
	}
	return nil, errorf(KindEval, "invalid argument to unary operator")
}

// Arith applies a binary arithmetic operator elementwise with
// recycling.
func (rt *Runtime) Arith(op NumericOp, xv, yv Value) (Value, error) {
	x, okx := arithOperand(xv)
	y, oky := arithOperand(yv)
	if !okx || !oky {
		return nil, errorf(KindEval, "non-numeric argument to binary operator")
	}
	n := recycleLen(rt, x.Len(), y.Len())
	attrs, err := binaryAttrs(xv, yv, n)
	if err != nil {
		return nil, err
	}
	tx, ty := x.Type(), y.Type()
	var res Vector
	switch {
	case tx == TypeComplex || ty == TypeComplex:
		if op == Mod || op == IntDiv {
			return nil, errorf(KindEval, "invalid operation on complex numbers")
		}
		res = complexArith(op, x, y, n)
	case tx == TypeDouble || ty == TypeDouble || op == Div || op == Pow:
		res = doubleArith(op, x, y, n)
	default:
		res = rt.integerArith(op, x, y, n)
	}
	return res.withAttrs(attrs), nil
}

func doubleArith(op NumericOp, x, y Vector, n int) *Double {
	nx, ny := x.Len(), y.Len()
	r := make([]float64, n)
	for i := 0; i < n; i++ {
		a, _ := elemDouble(x, i%nx)
		b, _ := elemDouble(y, i%ny)
		r[i] = NumericFloatDo(op, a, b)
	}
	return &Double{V: r}
}

// NumericFloatDo applies op to two doubles. NA wins over NaN, except
// where R defines the result regardless (1^NA, NA^0).
func NumericFloatDo(op NumericOp, a, b float64) float64 {
	if op == Pow {
		if a == 1 || b == 0 {
			return 1
		}
	}
	if IsNA(a) || IsNA(b) {
		return NADouble
	}
	switch op {
	case Add:
		return a + b
	case Sub:
		return a - b
	case Mult:
		return a * b
	case Div:
		return a / b
	case Pow:
		return math.Pow(a, b)
	case Mod:
		if b == 0 {
			return math.NaN()
		}
		r := math.Mod(a, b)
		if r != 0 && (r < 0) != (b < 0) {
			r += b
		}
		return r
	case IntDiv:
		return math.Floor(a / b)
	}
	return math.NaN()
}

func (rt *Runtime) integerArith(op NumericOp, x, y Vector, n int) *Integer {
	nx, ny := x.Len(), y.Len()
	r := make([]int32, n)
	overflow := false
	for i := 0; i < n; i++ {
		a, _ := elemInteger(x, i%nx)
		b, _ := elemInteger(y, i%ny)
		v, ok := NumericIntDo(op, a, b)
		if !ok {
			overflow = true
		}
		r[i] = v
	}
	if overflow {
		rt.warnf(overflowWarning)
	}
	return &Integer{V: r}
}

// NumericIntDo applies op to two integers; ok is false when a result
// overflowed to NA.
func NumericIntDo(op NumericOp, a, b int32) (int32, bool) {
	if a == NAInteger || b == NAInteger {
		return NAInteger, true
	}
	x, y := int64(a), int64(b)
	var r int64
	switch op {
	case Add:
		r = x + y
	case Sub:
		r = x - y
	case Mult:
		r = x * y
	case Mod:
		if y == 0 {
			return NAInteger, true
		}
		r = x % y
		if r != 0 && (r < 0) != (y < 0) {
			r += y
		}
	case IntDiv:
		if y == 0 {
			return NAInteger, true
		}
		r = int64(math.Floor(float64(x) / float64(y)))
	}
	if r > math.MaxInt32 || r <= math.MinInt32 {
		return NAInteger, false
	}
	return int32(r), true
}

func complexArith(op NumericOp, x, y Vector, n int) *Complex {
	nx, ny := x.Len(), y.Len()
	r := make([]complex128, n)
	for i := 0; i < n; i++ {
		a, _ := elemComplex(x, i%nx)
		b, _ := elemComplex(y, i%ny)
		if isNAComplex(a) || isNAComplex(b) {
			r[i] = NAComplex
			continue
		}
		switch op {
		case Add:
			r[i] = a + b
		case Sub:
			r[i] = a - b
		case Mult:
			r[i] = a * b
		case Div:
			r[i] = a / b
		case Pow:
			r[i] = cmplx.Pow(a, b)
		}
	}
	return &Complex{V: r}
}

// ColonFunction is from:to.
func ColonFunction(rt *Runtime, bc *BuiltinCall) (Value, error) {
	if len(bc.Args) != 2 {
		return nil, WrongNargs
	}
	bound := func(v Value) (float64, error) {
		vec, ok := v.(Vector)
		if !ok || !IsAtomic(v) || vec.Len() == 0 {
			return 0, errorf(KindEval, "argument of length 0")
		}
		if vec.Len() > 1 {
			rt.warnf("numerical expression has %d elements: only the first used", vec.Len())
		}
		f, _ := elemDouble(vec, 0)
		if math.IsNaN(f) {
			return 0, errorf(KindEval, "NA/NaN argument")
		}
		return f, nil
	}
	from, err := bound(bc.Args[0].Value)
	if err != nil {
		return nil, err
	}
	to, err := bound(bc.Args[1].Value)
	if err != nil {
		return nil, err
	}
	n := int(math.Floor(math.Abs(to-from)+1e-10)) + 1
	step := 1.0
	if to < from {
		step = -1
	}
	if from == math.Trunc(from) && from <= math.MaxInt32 && from > math.MinInt32 &&
		from+step*float64(n-1) <= math.MaxInt32 && from+step*float64(n-1) > math.MinInt32 {
		r := make([]int32, n)
		for i := range r {
			r[i] = int32(from + step*float64(i))
		}
		return &Integer{V: r}, nil
	}
	r := make([]float64, n)
	for i := range r {
		r[i] = from + step*float64(i)
	}
	return &Double{V: r}, nil
}

// ArithFunctions returns the arithmetic, comparison and logical
// operators. All but `:` and the short-circuit forms dispatch on the
// Ops group.
func ArithFunctions() map[string]*Builtin {
	m := map[string]*Builtin{
		":":  {Fn: ColonFunction},
		"&&": {Fn: AndAndFunction, Special: true},
		"||": {Fn: OrOrFunction, Special: true},
	}
	for name := range numericOps {
		m[name] = &Builtin{Fn: ArithFunction(name), Group: "Ops"}
	}
	for name := range compareOps {
		m[name] = &Builtin{Fn: CompareFunction(name), Group: "Ops"}
	}
	m["!"] = &Builtin{Fn: NotFunction, Group: "Ops"}
	m["&"] = &Builtin{Fn: LogicFunction("&"), Group: "Ops"}
	m["|"] = &Builtin{Fn: LogicFunction("|"), Group: "Ops"}
	return m
}
