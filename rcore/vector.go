package rcore

// Vector is an atomic vector or a list. Vectors are never mutated once
// they have been handed out; modifying operations build new ones.
type Vector interface {
	Value
	Len() int

	// Subset returns the elements at idx as a new vector without
	// attributes. A negative index yields NA (NULL for lists).
	Subset(idx []int) Vector

	// blank returns a fresh vector of the same type and length n, every
	// element NA.
	blank(n int) Vector

	// put copies src[j] into v[i]. src must have the same type, and v
	// must be a fresh vector nobody else has seen.
	put(i int, src Vector, j int)

	// withAttrs returns a shallow copy carrying a.
	withAttrs(a *Attrs) Vector
}

type Logical struct {
	V     []int32
	attrs *Attrs
}

type Integer struct {
	V     []int32
	attrs *Attrs
}

type Double struct {
	V     []float64
	attrs *Attrs
}

type Complex struct {
	V     []complex128
	attrs *Attrs
}

type Character struct {
	V     []string
	attrs *Attrs
}

type Raw struct {
	V     []byte
	attrs *Attrs
}

// List is R's generic vector.
type List struct {
	V     []Value
	attrs *Attrs
}

func (v *Logical) Type() TypeCode   { return TypeLogical }
func (v *Integer) Type() TypeCode   { return TypeInteger }
func (v *Double) Type() TypeCode    { return TypeDouble }
func (v *Complex) Type() TypeCode   { return TypeComplex }
func (v *Character) Type() TypeCode { return TypeCharacter }
func (v *Raw) Type() TypeCode       { return TypeRaw }
func (v *List) Type() TypeCode      { return TypeList }

func (v *Logical) Attrs() *Attrs   { return v.attrs }
func (v *Integer) Attrs() *Attrs   { return v.attrs }
func (v *Double) Attrs() *Attrs    { return v.attrs }
func (v *Complex) Attrs() *Attrs   { return v.attrs }
func (v *Character) Attrs() *Attrs { return v.attrs }
func (v *Raw) Attrs() *Attrs       { return v.attrs }
func (v *List) Attrs() *Attrs      { return v.attrs }

func (v *Logical) Len() int   { return len(v.V) }
func (v *Integer) Len() int   { return len(v.V) }
func (v *Double) Len() int    { return len(v.V) }
func (v *Complex) Len() int   { return len(v.V) }
func (v *Character) Len() int { return len(v.V) }
func (v *Raw) Len() int       { return len(v.V) }
func (v *List) Len() int      { return len(v.V) }

func (v *Logical) Subset(idx []int) Vector {
	r := make([]int32, len(idx))
	for i, k := range idx {
		if k < 0 || k >= len(v.V) {
			r[i] = NALogical
		} else {
			r[i] = v.V[k]
		}
	}
	return &Logical{V: r}
}

func (v *Integer) Subset(idx []int) Vector {
	r := make([]int32, len(idx))
	for i, k := range idx {
		if k < 0 || k >= len(v.V) {
			r[i] = NAInteger
		} else {
			r[i] = v.V[k]
		}
	}
	return &Integer{V: r}
}

func (v *Double) Subset(idx []int) Vector {
	r := make([]float64, len(idx))
	for i, k := range idx {
		if k < 0 || k >= len(v.V) {
			r[i] = NADouble
		} else {
			r[i] = v.V[k]
		}
	}
	return &Double{V: r}
}

func (v *Complex) Subset(idx []int) Vector {
	r := make([]complex128, len(idx))
	for i, k := range idx {
		if k < 0 || k >= len(v.V) {
			r[i] = NAComplex
		} else {
			r[i] = v.V[k]
		}
	}
	return &Complex{V: r}
}

func (v *Character) Subset(idx []int) Vector {
	r := make([]string, len(idx))
	for i, k := range idx {
		if k < 0 || k >= len(v.V) {
			r[i] = NAString
		} else {
			r[i] = v.V[k]
		}
	}
	return &Character{V: r}
}

// raw has no NA; out of range elements are 00.
func (v *Raw) Subset(idx []int) Vector {
	r := make([]byte, len(idx))
	for i, k := range idx {
		if k >= 0 && k < len(v.V) {
			r[i] = v.V[k]
		}
	}
	return &Raw{V: r}
}

func (v *List) Subset(idx []int) Vector {
	r := make([]Value, len(idx))
	for i, k := range idx {
		if k < 0 || k >= len(v.V) {
			r[i] = Nil
		} else {
			r[i] = v.V[k]
		}
	}
	return &List{V: r}
}

func (v *Logical) blank(n int) Vector {
	r := make([]int32, n)
	for i := range r {
		r[i] = NALogical
	}
	return &Logical{V: r}
}

func (v *Integer) blank(n int) Vector {
	r := make([]int32, n)
	for i := range r {
		r[i] = NAInteger
	}
	return &Integer{V: r}
}

func (v *Double) blank(n int) Vector {
	r := make([]float64, n)
	for i := range r {
		r[i] = NADouble
	}
	return &Double{V: r}
}

func (v *Complex) blank(n int) Vector {
	r := make([]complex128, n)
	for i := range r {
		r[i] = NAComplex
	}
	return &Complex{V: r}
}

func (v *Character) blank(n int) Vector {
	r := make([]string, n)
	for i := range r {
		r[i] = NAString
	}
	return &Character{V: r}
}

func (v *Raw) blank(n int) Vector { return &Raw{V: make([]byte, n)} }

func (v *List) blank(n int) Vector {
	r := make([]Value, n)
	for i := range r {
		r[i] = Nil
	}
	return &List{V: r}
}

func (v *Logical) put(i int, src Vector, j int)   { v.V[i] = src.(*Logical).V[j] }
func (v *Integer) put(i int, src Vector, j int)   { v.V[i] = src.(*Integer).V[j] }
func (v *Double) put(i int, src Vector, j int)    { v.V[i] = src.(*Double).V[j] }
func (v *Complex) put(i int, src Vector, j int)   { v.V[i] = src.(*Complex).V[j] }
func (v *Character) put(i int, src Vector, j int) { v.V[i] = src.(*Character).V[j] }
func (v *Raw) put(i int, src Vector, j int)       { v.V[i] = src.(*Raw).V[j] }
func (v *List) put(i int, src Vector, j int)      { v.V[i] = src.(*List).V[j] }

func (v *Logical) withAttrs(a *Attrs) Vector   { return &Logical{V: v.V, attrs: a} }
func (v *Integer) withAttrs(a *Attrs) Vector   { return &Integer{V: v.V, attrs: a} }
func (v *Double) withAttrs(a *Attrs) Vector    { return &Double{V: v.V, attrs: a} }
func (v *Complex) withAttrs(a *Attrs) Vector   { return &Complex{V: v.V, attrs: a} }
func (v *Character) withAttrs(a *Attrs) Vector { return &Character{V: v.V, attrs: a} }
func (v *Raw) withAttrs(a *Attrs) Vector       { return &Raw{V: v.V, attrs: a} }
func (v *List) withAttrs(a *Attrs) Vector      { return &List{V: v.V, attrs: a} }

// scalar constructors

func Lgl(vals ...bool) *Logical {
	r := make([]int32, len(vals))
	for i, b := range vals {
		if b {
			r[i] = 1
		}
	}
	return &Logical{V: r}
}

func Int(vals ...int32) *Integer        { return &Integer{V: vals} }
func Dbl(vals ...float64) *Double       { return &Double{V: vals} }
func Cplx(vals ...complex128) *Complex  { return &Complex{V: vals} }
func Str(vals ...string) *Character     { return &Character{V: vals} }
func RawBytes(vals ...byte) *Raw        { return &Raw{V: vals} }
func NewList(vals ...Value) *List       { return &List{V: vals} }
func naLogical() *Logical               { return &Logical{V: []int32{NALogical}} }
func lglScalar(b bool) *Logical         { return Lgl(b) }
func intScalar(i int) *Integer          { return &Integer{V: []int32{int32(i)}} }
func strScalar(s string) *Character     { return &Character{V: []string{s}} }
func dblScalar(f float64) *Double       { return &Double{V: []float64{f}} }

// NamedList builds a list from tagged args, setting names.
func NamedList(args []Arg) *List {
	vals := make([]Value, len(args))
	names := make([]string, len(args))
	named := false
	for i, a := range args {
		vals[i] = a.Value
		names[i] = a.Tag
		if a.Tag != "" {
			named = true
		}
	}
	l := &List{V: vals}
	if named {
		l.attrs = l.attrs.With("names", Str(names...))
	}
	return l
}

// Length is length() without dispatch.
func Length(v Value) int {
	switch x := v.(type) {
	case Vector:
		return x.Len()
	case *NullValue:
		return 0
	case *Language:
		return len(x.Args) + 1
	case *Pairlist:
		return len(x.Args)
	case *Dots:
		return len(x.Args)
	case *EnvValue:
		env, err := x.arena.get(x.Ref)
		if err != nil {
			return 0
		}
		return len(env.Map)
	}
	return 1
}

// IsAtomic reports whether v is an atomic vector (or NULL, as is.atomic
// did historically for our purposes of coercion).
func IsAtomic(v Value) bool {
	switch v.(type) {
	case *Logical, *Integer, *Double, *Complex, *Character, *Raw:
		return true
	}
	return false
}

// WithAttrs returns v carrying attributes a. Vectors and language objects
// are shallow-copied; environments are modified in place.
func WithAttrs(v Value, a *Attrs) Value {
	switch x := v.(type) {
	case Vector:
		return x.withAttrs(a)
	case *Language:
		return &Language{Fn: x.Fn, Args: x.Args, attrs: a}
	case *Closure:
		return &Closure{Formals: x.Formals, Body: x.Body, Env: x.Env, attrs: a}
	case *Pairlist:
		return &Pairlist{Args: x.Args, attrs: a}
	case *Builtin:
		b := *x
		b.attrs = a
		return &b
	case *EnvValue:
		if env, err := x.arena.get(x.Ref); err == nil {
			env.attrs = a
		}
		return x
	}
	return v
}

// stripAttrs drops every attribute.
func stripAttrs(v Value) Value {
	if v.Attrs().Len() == 0 {
		return v
	}
	return WithAttrs(v, nil)
}

// namesOf returns the names attribute as a Go slice, or nil.
func namesOf(v Value) []string {
	n, ok := v.Attrs().Get("names").(*Character)
	if !ok {
		return nil
	}
	return n.V
}

// seqInts returns 0..n-1.
func seqInts(n int) []int {
	r := make([]int, n)
	for i := range r {
		r[i] = i
	}
	return r
}
