package rcore

import (
	"fmt"
)

// Attrs is an ordered attribute list. It is immutable: With and Without
// return new lists, so values sharing an Attrs never see each other's
// changes. A nil *Attrs is the empty list.
type Attrs struct {
	keys []string
	vals []Value
}

func (a *Attrs) Len() int {
	if a == nil {
		return 0
	}
	return len(a.keys)
}

// Get returns the attribute or nil.
func (a *Attrs) Get(name string) Value {
	if a == nil {
		return nil
	}
	for i, k := range a.keys {
		if k == name {
			return a.vals[i]
		}
	}
	return nil
}

// Names lists the attribute names in order.
func (a *Attrs) Names() []string {
	if a == nil {
		return nil
	}
	return append([]string(nil), a.keys...)
}

// Each visits the attributes in order.
func (a *Attrs) Each(fn func(name string, v Value)) {
	if a == nil {
		return
	}
	for i, k := range a.keys {
		fn(k, a.vals[i])
	}
}

// With sets name to v. A nil or NULL v removes the attribute.
func (a *Attrs) With(name string, v Value) *Attrs {
	if v == nil || v == Value(Nil) {
		return a.Without(name)
	}
	if _, isNull := v.(*NullValue); isNull {
		return a.Without(name)
	}
	n := &Attrs{}
	replaced := false
	if a != nil {
		n.keys = make([]string, 0, len(a.keys)+1)
		n.vals = make([]Value, 0, len(a.keys)+1)
		for i, k := range a.keys {
			if k == name {
				n.keys = append(n.keys, k)
				n.vals = append(n.vals, v)
				replaced = true
				continue
			}
			n.keys = append(n.keys, k)
			n.vals = append(n.vals, a.vals[i])
		}
	}
	if !replaced {
		n.keys = append(n.keys, name)
		n.vals = append(n.vals, v)
	}
	return n
}

func (a *Attrs) Without(name string) *Attrs {
	if a.Get(name) == nil {
		return a
	}
	n := &Attrs{}
	for i, k := range a.keys {
		if k != name {
			n.keys = append(n.keys, k)
			n.vals = append(n.vals, a.vals[i])
		}
	}
	if len(n.keys) == 0 {
		return nil
	}
	return n
}

// setAttr validates the reserved attributes (names, dim, dimnames, class)
// against x and returns x carrying the new attribute.
func setAttr(x Value, name string, v Value, w warnSink) (Value, error) {
	if v == nil {
		v = Nil
	}
	_, removing := v.(*NullValue)
	if removing {
		if name == "dim" {
			// dropping dim drops dimnames too
			return WithAttrs(x, x.Attrs().Without("dim").Without("dimnames")), nil
		}
		return WithAttrs(x, x.Attrs().Without(name)), nil
	}
	switch name {
	case "names":
		n := Length(x)
		cv, err := asCharacterVector(v, w)
		if err != nil {
			return nil, err
		}
		if cv.Len() > n {
			return nil, errorf(KindEval, "'names' attribute [%d] must be the same length as the vector [%d]", cv.Len(), n)
		}
		names := make([]string, n)
		for i := range names {
			if i < cv.Len() {
				names[i] = cv.V[i]
			} else {
				names[i] = NAString
			}
		}
		if _, isLang := x.(*Language); isLang {
			return namesOnCall(x.(*Language), names), nil
		}
		return WithAttrs(x, x.Attrs().With("names", Str(names...))), nil
	case "dim":
		iv, err := asIntegerVector(v, w)
		if err != nil {
			return nil, err
		}
		if iv.Len() == 0 {
			return nil, errorf(KindEval, "length-0 dimension vector is invalid")
		}
		prod := 1
		for _, d := range iv.V {
			if d == NAInteger || d < 0 {
				return nil, errorf(KindEval, "the dims contain missing or negative values")
			}
			prod *= int(d)
		}
		if prod != Length(x) {
			return nil, errorf(KindEval, "dims [product %d] do not match the length of object [%d]", prod, Length(x))
		}
		a := x.Attrs().Without("names").Without("dimnames")
		return WithAttrs(x, a.With("dim", &Integer{V: iv.V})), nil
	case "dimnames":
		dim, ok := x.Attrs().Get("dim").(*Integer)
		if !ok {
			return nil, errorf(KindEval, "'dimnames' applied to non-array")
		}
		l, ok := v.(*List)
		if !ok {
			return nil, errorf(KindEval, "'dimnames' must be a list")
		}
		if l.Len() != dim.Len() {
			return nil, errorf(KindEval, "length of 'dimnames' [%d] must match that of 'dims' [%d]", l.Len(), dim.Len())
		}
		fixed := make([]Value, l.Len())
		for i, e := range l.V {
			if _, isNull := e.(*NullValue); isNull {
				fixed[i] = Nil
				continue
			}
			cv, err := asCharacterVector(e, w)
			if err != nil {
				return nil, err
			}
			if cv.Len() != int(dim.V[i]) {
				return nil, errorf(KindEval, "length of 'dimnames' [%d] not equal to array extent", i+1)
			}
			fixed[i] = &Character{V: cv.V}
		}
		return WithAttrs(x, x.Attrs().With("dimnames", &List{V: fixed, attrs: l.attrs})), nil
	case "class":
		cv, ok := v.(*Character)
		if !ok {
			return nil, errorf(KindEval, "attempt to set invalid 'class' attribute")
		}
		if cv.Len() == 0 {
			return WithAttrs(x, x.Attrs().Without("class")), nil
		}
		return WithAttrs(x, x.Attrs().With("class", &Character{V: cv.V})), nil
	}
	return WithAttrs(x, x.Attrs().With(name, v)), nil
}

// namesOnCall puts names on the arguments of a call as tags.
func namesOnCall(l *Language, names []string) *Language {
	n := &Language{Fn: l.Fn, Args: make([]Arg, len(l.Args)), attrs: l.attrs}
	for i, a := range l.Args {
		tag := ""
		if i+1 < len(names) && names[i+1] != NAString {
			tag = names[i+1]
		}
		n.Args[i] = Arg{Tag: tag, Value: a.Value}
	}
	return n
}

// classAttr returns the explicit class attribute, or nil.
func classAttr(v Value) []string {
	c, ok := v.Attrs().Get("class").(*Character)
	if !ok {
		return nil
	}
	return c.V
}

// dimOf returns the dim attribute as ints, or nil.
func dimOf(v Value) []int {
	d, ok := v.Attrs().Get("dim").(*Integer)
	if !ok {
		return nil
	}
	r := make([]int, d.Len())
	for i, x := range d.V {
		r[i] = int(x)
	}
	return r
}

func (a *Attrs) String() string {
	if a == nil {
		return "<no attributes>"
	}
	return fmt.Sprintf("attributes%v", a.keys)
}
