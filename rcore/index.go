package rcore

import (
	"math"
	"strings"
)

// Subscript resolution follows R: positions are 1-based, zero is
// dropped, negatives exclude, logicals recycle and character subscripts
// match names. Resolved positions are 0-based; -1 marks an NA or out of
// range element.

type subscript struct {
	pos []int
	// added names positions created past the end by character
	// subscripts in an assignment
	added []string
}

func (rt *Runtime) resolveIndex(idx Value, n int, names []string, extend bool) (*subscript, error) {
	switch x := idx.(type) {
	case nil:
		return &subscript{pos: seqInts(n)}, nil
	case *Symbol:
		if x == MissingArg {
			return &subscript{pos: seqInts(n)}, nil
		}
		return nil, errorf(KindEval, "invalid subscript type 'symbol'")
	case *NullValue:
		return &subscript{pos: []int{}}, nil
	case *Logical:
		return logicalIndex(x, n, extend), nil
	case *Integer, *Double:
		return numericIndex(x.(Vector), n, extend)
	case *Character:
		return charIndex(x, names, n, extend), nil
	case *List:
		return nil, errorf(KindEval, "invalid subscript type 'list'")
	}
	return nil, errorf(KindEval, "invalid subscript type '%s'", idx.Type())
}

func logicalIndex(x *Logical, n int, extend bool) *subscript {
	l := n
	if x.Len() > l {
		l = x.Len()
	}
	s := &subscript{pos: []int{}}
	if x.Len() == 0 {
		return s
	}
	for i := 0; i < l; i++ {
		switch x.V[i%x.Len()] {
		case 0:
		case NALogical:
			s.pos = append(s.pos, -1)
		default:
			if i >= n && !extend {
				s.pos = append(s.pos, -1)
			} else {
				s.pos = append(s.pos, i)
			}
		}
	}
	return s
}

func numericIndex(x Vector, n int, extend bool) (*subscript, error) {
	m := x.Len()
	ks := make([]int, 0, m)
	neg, pos, na := false, false, false
	for i := 0; i < m; i++ {
		f, _ := elemDouble(x, i)
		if math.IsNaN(f) {
			na = true
			ks = append(ks, math.MinInt32)
			continue
		}
		k := int(f)
		switch {
		case k < 0:
			neg = true
		case k > 0:
			pos = true
		}
		ks = append(ks, k)
	}
	if neg && (pos || na) {
		return nil, errorf(KindEval, "can't mix positive and negative subscripts")
	}
	if neg {
		drop := make([]bool, n)
		for _, k := range ks {
			if -k <= n {
				drop[-k-1] = true
			}
		}
		s := &subscript{pos: []int{}}
		for i := 0; i < n; i++ {
			if !drop[i] {
				s.pos = append(s.pos, i)
			}
		}
		return s, nil
	}
	s := &subscript{pos: make([]int, 0, m)}
	for _, k := range ks {
		switch {
		case k == math.MinInt32:
			s.pos = append(s.pos, -1)
		case k == 0:
		case k > n && !extend:
			s.pos = append(s.pos, -1)
		default:
			s.pos = append(s.pos, k-1)
		}
	}
	return s, nil
}

func charIndex(x *Character, names []string, n int, extend bool) *subscript {
	s := &subscript{pos: make([]int, 0, x.Len())}
	for _, want := range x.V {
		k := -1
		if want != NAString && want != "" {
			for i, nm := range names {
				if nm == want {
					k = i
					break
				}
			}
			if k < 0 && extend {
				for j, a := range s.added {
					if a == want {
						k = n + j
						break
					}
				}
				if k < 0 {
					s.added = append(s.added, want)
					k = n + len(s.added) - 1
				}
			}
		}
		s.pos = append(s.pos, k)
	}
	return s
}

// asIndexable views lists, pairlists and calls as vectors.
func asIndexable(x Value) (Vector, bool) {
	switch v := x.(type) {
	case Vector:
		return v, true
	case *Pairlist:
		return NamedList(v.Args), true
	case *Language:
		l, _ := coerceVector(v, TypeList, nil)
		return l, true
	}
	return nil, false
}

// fromIndexable turns a list extracted from a call back into a call.
func fromIndexable(orig Value, v Vector) Value {
	if _, isLang := orig.(*Language); !isLang {
		return v
	}
	l, ok := v.(*List)
	if !ok || l.Len() == 0 {
		return v
	}
	names := namesOf(l)
	out := &Language{Fn: l.V[0]}
	for i := 1; i < len(l.V); i++ {
		tag := ""
		if names != nil && names[i] != NAString {
			tag = names[i]
		}
		out.Args = append(out.Args, Arg{Tag: tag, Value: l.V[i]})
	}
	return out
}

func notSubsettable(x Value) error {
	return errorf(KindEval, "object of type '%s' is not subsettable", x.Type())
}

// indexArgs splits the arguments of `[` and friends into the object,
// the subscripts and the named options.
func indexArgs(args []Arg, options ...string) (Value, []Value, map[string]Value, error) {
	if len(args) == 0 {
		return nil, nil, nil, WrongNargs
	}
	opts := make(map[string]Value)
	var subs []Value
	for _, a := range args[1:] {
		matched := false
		for _, o := range options {
			if a.Tag == o {
				opts[o] = a.Value
				matched = true
			}
		}
		if !matched {
			subs = append(subs, a.Value)
		}
	}
	return args[0].Value, subs, opts, nil
}

func optFlag(opts map[string]Value, name string, def bool) (bool, error) {
	v, ok := opts[name]
	if !ok || v == Value(MissingArg) {
		return def, nil
	}
	return asFlag(v, name)
}

// SubsetFunction is x[i], x[i, j, ...] with drop.
func SubsetFunction(rt *Runtime, bc *BuiltinCall) (Value, error) {
	x, subs, opts, err := indexArgs(bc.Args, "drop", "exact")
	if err != nil {
		return nil, err
	}
	drop, err := optFlag(opts, "drop", true)
	if err != nil {
		return nil, err
	}
	return rt.Subset(x, subs, drop)
}

// Subset is `[` without dispatch.
func (rt *Runtime) Subset(x Value, subs []Value, drop bool) (Value, error) {
	if _, isNull := x.(*NullValue); isNull {
		return Nil, nil
	}
	if ev, isEnv := x.(*EnvValue); isEnv {
		return nil, notSubsettable(ev)
	}
	vec, ok := asIndexable(x)
	if !ok {
		return nil, notSubsettable(x)
	}
	if len(subs) == 0 {
		return x, nil
	}
	dim := dimOf(x)
	if len(subs) >= 2 {
		if len(subs) != len(dim) {
			return nil, errorf(KindEval, "incorrect number of dimensions")
		}
		return rt.matrixSubset(vec, dim, subs, drop)
	}
	names := namesOf(vec)
	s, err := rt.resolveIndex(subs[0], vec.Len(), names, false)
	if err != nil {
		return nil, err
	}
	r := vec.Subset(s.pos)
	if names != nil {
		nn := make([]string, len(s.pos))
		for i, k := range s.pos {
			if k < 0 || k >= len(names) {
				nn[i] = NAString
			} else {
				nn[i] = names[k]
			}
		}
		r = r.withAttrs(r.Attrs().With("names", Str(nn...)))
	}
	return fromIndexable(x, r), nil
}

// matrixOffsets resolves one subscript per dimension and returns the
// column-major offsets they select, with the extent of each.
func (rt *Runtime) matrixOffsets(x Value, dim []int, subs []Value) ([]int, [][]int, error) {
	var dimnames *List
	if dn, ok := x.Attrs().Get("dimnames").(*List); ok {
		dimnames = dn
	}
	per := make([][]int, len(dim))
	for k, sub := range subs {
		var names []string
		if dimnames != nil {
			if c, ok := dimnames.V[k].(*Character); ok {
				names = c.V
			}
		}
		s, err := rt.resolveIndex(sub, dim[k], names, false)
		if err != nil {
			return nil, nil, err
		}
		for _, p := range s.pos {
			if p < 0 || p >= dim[k] {
				return nil, nil, errorf(KindEval, "subscript out of bounds")
			}
		}
		per[k] = s.pos
	}
	total := 1
	for _, p := range per {
		total *= len(p)
	}
	offsets := make([]int, 0, total)
	if total == 0 {
		return offsets, per, nil
	}
	counter := make([]int, len(dim))
	for {
		off, stride := 0, 1
		for k := range dim {
			off += per[k][counter[k]] * stride
			stride *= dim[k]
		}
		offsets = append(offsets, off)
		k := 0
		for ; k < len(dim); k++ {
			counter[k]++
			if counter[k] < len(per[k]) {
				break
			}
			counter[k] = 0
		}
		if k == len(dim) {
			break
		}
	}
	return offsets, per, nil
}

func (rt *Runtime) matrixSubset(vec Vector, dim []int, subs []Value, drop bool) (Value, error) {
	offsets, per, err := rt.matrixOffsets(vec, dim, subs)
	if err != nil {
		return nil, err
	}
	r := vec.Subset(offsets)
	var dimnames *List
	if dn, ok := vec.Attrs().Get("dimnames").(*List); ok {
		dimnames = dn
	}
	var newDim []int32
	var newNames []Value
	for k, p := range per {
		if drop && len(p) == 1 {
			continue
		}
		newDim = append(newDim, int32(len(p)))
		var nm Value = Nil
		if dimnames != nil {
			if c, ok := dimnames.V[k].(*Character); ok {
				nm = c.Subset(p)
			}
		}
		newNames = append(newNames, nm)
	}
	switch {
	case len(newDim) > 1 || (!drop && len(newDim) == 1):
		a := r.Attrs().With("dim", &Integer{V: newDim})
		if dimnames != nil {
			a = a.With("dimnames", &List{V: newNames})
		}
		return r.withAttrs(a), nil
	case len(newDim) == 1 && dimnames != nil:
		if _, isNull := newNames[0].(*NullValue); !isNull {
			return r.withAttrs(r.Attrs().With("names", newNames[0])), nil
		}
	}
	return r, nil
}

// Subset2Function is x[[i]] and x[[i, j]].
func Subset2Function(rt *Runtime, bc *BuiltinCall) (Value, error) {
	x, subs, opts, err := indexArgs(bc.Args, "exact", "drop")
	if err != nil {
		return nil, err
	}
	exact, err := optFlag(opts, "exact", true)
	if err != nil {
		return nil, err
	}
	return rt.Subset2(x, subs, exact)
}

// Subset2 is `[[` without dispatch. A longer subscript on a list
// indexes recursively.
func (rt *Runtime) Subset2(x Value, subs []Value, exact bool) (Value, error) {
	switch v := x.(type) {
	case *NullValue:
		return Nil, nil
	case *EnvValue:
		if len(subs) != 1 {
			return nil, errorf(KindEval, "wrong arguments for subsetting an environment")
		}
		name, err := asScalarString(subs[0], "subscript")
		if err != nil {
			return nil, errorf(KindEval, "wrong args for environment subassignment")
		}
		b, ok := rt.LookupLocal(v.Ref, name)
		if !ok {
			return Nil, nil
		}
		return rt.bindingValue(name, b.Value)
	}
	vec, ok := asIndexable(x)
	if !ok {
		return nil, notSubsettable(x)
	}
	if len(subs) == 0 {
		return nil, errorf(KindEval, "invalid subscript")
	}
	if len(subs) > 1 {
		dim := dimOf(x)
		if len(subs) != len(dim) {
			return nil, errorf(KindEval, "incorrect number of subscripts")
		}
		offsets, _, err := rt.matrixOffsets(vec, dim, subs)
		if err != nil {
			return nil, err
		}
		if len(offsets) != 1 {
			return nil, errorf(KindEval, "subscript out of bounds")
		}
		return element(vec, offsets[0]), nil
	}
	sub := subs[0]
	sv, isVec := sub.(Vector)
	if !isVec || !IsAtomic(sub) {
		if _, isMissing := sub.(*Symbol); isMissing {
			return nil, errorf(KindEval, "invalid subscript")
		}
		return nil, errorf(KindEval, "invalid subscript type '%s'", sub.Type())
	}
	switch {
	case sv.Len() == 0:
		return nil, errorf(KindEval, "attempt to select less than one element in get1index")
	case sv.Len() > 1:
		if _, isList := vec.(*List); !isList {
			return nil, errorf(KindEval, "attempt to select more than one element in vectorIndex")
		}
		cur := x
		for i := 0; i < sv.Len(); i++ {
			var err error
			if cur, err = rt.Subset2(cur, []Value{sv.Subset([]int{i})}, exact); err != nil {
				return nil, err
			}
		}
		return cur, nil
	}
	k, err := get1index(sv, vec, exact)
	if err != nil {
		return nil, err
	}
	if k < 0 || k >= vec.Len() {
		if _, isList := vec.(*List); isList {
			if _, byName := sv.(*Character); byName {
				return Nil, nil
			}
		}
		return nil, errorf(KindEval, "subscript out of bounds")
	}
	return element(vec, k), nil
}

// get1index resolves the single subscript of [[ to a position.
func get1index(sub Vector, vec Vector, exact bool) (int, error) {
	if s, ok := sub.(*Character); ok {
		want := s.V[0]
		names := namesOf(vec)
		for i, n := range names {
			if n == want && want != NAString {
				return i, nil
			}
		}
		if !exact {
			k := -1
			for i, n := range names {
				if strings.HasPrefix(n, want) {
					if k >= 0 {
						return -1, nil
					}
					k = i
				}
			}
			return k, nil
		}
		return -1, nil
	}
	f, _ := elemDouble(sub, 0)
	if math.IsNaN(f) {
		return -1, nil
	}
	k := int(f)
	if k < 0 {
		if vec.Len() == 2 && (k == -1 || k == -2) {
			return 2 + k, nil
		}
		return -1, errorf(KindEval, "invalid negative subscript in get1index <real>")
	}
	if k == 0 {
		return -1, errorf(KindEval, "attempt to select less than one element in get1index <real>")
	}
	return k - 1, nil
}

// element is x[[k]] for a resolved position.
func element(vec Vector, k int) Value {
	if l, ok := vec.(*List); ok {
		return l.V[k]
	}
	return vec.Subset([]int{k})
}

// DollarFunction is x$name. The name is never evaluated.
func DollarFunction(rt *Runtime, bc *BuiltinCall) (Value, error) {
	if len(bc.Args) != 2 {
		return nil, WrongNargs
	}
	x, err := rt.eval(bc.Args[0].Value, bc.Env)
	if err != nil {
		return nil, err
	}
	name, err := asScalarString(bc.Args[1].Value, "name")
	if err != nil {
		return nil, errorf(KindEval, "invalid subscript type '%s'", bc.Args[1].Value.Type())
	}
	if classAttr(x) != nil {
		args := []Arg{{Value: forcedPromise(bc.Args[0].Value, x)}, {Value: forcedPromise(strScalar(name), strScalar(name))}}
		v, done, err := rt.tryDispatch("$", bc.Call, args, bc.Env)
		if done || err != nil {
			return v, err
		}
	}
	return rt.Dollar(x, name)
}

// Dollar is `$` without dispatch: exact, then unique partial, name match.
func (rt *Runtime) Dollar(x Value, name string) (Value, error) {
	switch v := x.(type) {
	case *NullValue:
		return Nil, nil
	case *EnvValue:
		return rt.Subset2(v, []Value{strScalar(name)}, true)
	case *List, *Pairlist, *Language:
		vec, _ := asIndexable(v)
		k, _ := get1index(strScalar(name), vec, false)
		if k < 0 {
			return Nil, nil
		}
		return element(vec, k), nil
	case Vector:
		return nil, errorf(KindEval, "$ operator is invalid for atomic vectors")
	}
	return nil, notSubsettable(x)
}

// replaceArgs splits a replacement call into object, subscripts and
// value.
func replaceArgs(args []Arg) (Value, []Value, Value, error) {
	if len(args) < 2 {
		return nil, nil, nil, WrongNargs
	}
	vi := len(args) - 1
	for i, a := range args {
		if a.Tag == "value" {
			vi = i
		}
	}
	var subs []Value
	for i, a := range args[1:] {
		if i+1 != vi {
			subs = append(subs, a.Value)
		}
	}
	return args[0].Value, subs, args[vi].Value, nil
}

// SubassignFunction is `[<-`.
func SubassignFunction(rt *Runtime, bc *BuiltinCall) (Value, error) {
	x, subs, value, err := replaceArgs(bc.Args)
	if err != nil {
		return nil, err
	}
	return rt.Subassign(x, subs, value)
}

// Subassign is `[<-` without dispatch.
func (rt *Runtime) Subassign(x Value, subs []Value, value Value) (Value, error) {
	if _, isNull := x.(*NullValue); isNull {
		if _, vnull := value.(*NullValue); vnull {
			return Nil, nil
		}
		x = emptyVector(valueType(value))
	}
	vec, ok := asIndexable(x)
	if !ok {
		return nil, notSubsettable(x)
	}
	var s *subscript
	var err error
	if len(subs) >= 2 {
		dim := dimOf(x)
		if len(subs) != len(dim) {
			return nil, errorf(KindEval, "incorrect number of subscripts on matrix")
		}
		offsets, _, err := rt.matrixOffsets(vec, dim, subs)
		if err != nil {
			return nil, err
		}
		s = &subscript{pos: offsets}
	} else {
		var sub Value
		if len(subs) == 1 {
			sub = subs[0]
		}
		if s, err = rt.resolveIndex(sub, vec.Len(), namesOf(vec), true); err != nil {
			return nil, err
		}
	}
	if _, vnull := value.(*NullValue); vnull {
		if l, isList := vec.(*List); isList {
			return fromIndexable(x, deleteElements(l, s.pos)), nil
		}
		if len(s.pos) == 0 {
			return x, nil
		}
		return nil, errorf(KindEval, "replacement has length zero")
	}
	rv, ok := asIndexable(value)
	if !ok {
		rv = NewList(value)
	}
	if rv.Len() == 0 {
		if len(s.pos) == 0 {
			return x, nil
		}
		return nil, errorf(KindEval, "replacement has length zero")
	}
	if len(s.pos)%rv.Len() != 0 {
		rt.warnf("number of items to replace is not a multiple of replacement length")
	}
	out, err := rt.assignPositions(vec, s, rv)
	if err != nil {
		return nil, err
	}
	return fromIndexable(x, out), nil
}

// valueType is the vector type a NULL becomes when assigned into.
func valueType(v Value) TypeCode {
	if _, ok := v.(Vector); ok {
		return v.Type()
	}
	return TypeList
}

// assignPositions stores rv, recycled, at the positions of s in a copy
// of vec promoted to the common type, extending vec as needed.
func (rt *Runtime) assignPositions(vec Vector, s *subscript, rv Vector) (Vector, error) {
	t := higherType(vec.Type(), rv.Type())
	if _, isList := vec.(*List); isList {
		t = TypeList
	}
	base, err := coerceVector(vec, t, rt)
	if err != nil {
		return nil, err
	}
	src, err := coerceVector(stripAttrs(rv), t, rt)
	if err != nil {
		return nil, err
	}
	if t == TypeList && rv.Type() != TypeList {
		src, _ = coerceVector(rv, TypeList, rt)
	}
	n := base.Len()
	for _, p := range s.pos {
		if p+1 > n {
			n = p + 1
		}
	}
	out := base.blank(n)
	for i := 0; i < base.Len(); i++ {
		out.put(i, base, i)
	}
	for i, p := range s.pos {
		if p < 0 {
			continue
		}
		out.put(p, src, i%src.Len())
	}
	attrs := base.Attrs()
	if n > base.Len() {
		if dimOf(base) != nil {
			return nil, errorf(KindEval, "subscript out of bounds")
		}
		names := namesOf(base)
		if names != nil || len(s.added) > 0 {
			nn := make([]string, n)
			copy(nn, names)
			for i := len(names); i < n; i++ {
				nn[i] = ""
			}
			for j, a := range s.added {
				nn[base.Len()+j] = a
			}
			attrs = attrs.With("names", Str(nn...))
		}
	}
	return out.withAttrs(attrs), nil
}

func deleteElements(l *List, pos []int) *List {
	drop := make(map[int]bool, len(pos))
	for _, p := range pos {
		drop[p] = true
	}
	names := namesOf(l)
	out := &List{V: []Value{}}
	var nn []string
	for i, v := range l.V {
		if drop[i] {
			continue
		}
		out.V = append(out.V, v)
		if names != nil {
			nn = append(nn, names[i])
		}
	}
	attrs := l.attrs.Without("names").Without("dim").Without("dimnames")
	if names != nil {
		attrs = attrs.With("names", Str(nn...))
	}
	out.attrs = attrs
	return out
}

// Subassign2Function is `[[<-`.
func Subassign2Function(rt *Runtime, bc *BuiltinCall) (Value, error) {
	x, subs, value, err := replaceArgs(bc.Args)
	if err != nil {
		return nil, err
	}
	return rt.Subassign2(x, subs, value)
}

// Subassign2 is `[[<-` without dispatch.
func (rt *Runtime) Subassign2(x Value, subs []Value, value Value) (Value, error) {
	if len(subs) == 0 {
		return nil, errorf(KindEval, "[[ ]] with missing subscript")
	}
	if ev, isEnv := x.(*EnvValue); isEnv {
		name, err := asScalarString(subs[0], "subscript")
		if err != nil {
			return nil, errorf(KindEval, "wrong args for environment subassignment")
		}
		if err := rt.Define(ev.Ref, name, value); err != nil {
			return nil, err
		}
		return ev, nil
	}
	if len(subs) > 1 {
		if v, ok := value.(Vector); !ok || v.Len() != 1 {
			return nil, errorf(KindEval, "more elements supplied than there are to replace")
		}
		return rt.Subassign(x, subs, value)
	}
	sv, ok := subs[0].(Vector)
	if !ok || !IsAtomic(subs[0]) {
		return nil, errorf(KindEval, "invalid subscript type '%s'", subs[0].Type())
	}
	if sv.Len() == 0 {
		return nil, errorf(KindEval, "[[ ]] with missing subscript")
	}
	if sv.Len() > 1 {
		return nil, errorf(KindEval, "[[ ]] subscript out of bounds")
	}
	_, isNull := x.(*NullValue)
	_, isList := x.(*List)
	_, vnull := value.(*NullValue)
	rv, atomicValue := value.(Vector)
	atomicValue = atomicValue && IsAtomic(value)
	switch {
	case isNull && vnull:
		return Nil, nil
	case isNull && atomicValue && rv.Len() == 1:
		return rt.Subassign(x, subs, value)
	case isNull:
		x = &List{V: []Value{}}
		isList = true
	}
	if isList || !atomicValue {
		vec, ok := asIndexable(x)
		if !ok {
			return nil, notSubsettable(x)
		}
		l, err := coerceVector(vec, TypeList, rt)
		if err != nil {
			return nil, err
		}
		s, err := rt.resolveIndex(sv, l.Len(), namesOf(l), true)
		if err != nil {
			return nil, err
		}
		if vnull {
			if len(s.pos) == 1 && s.pos[0] >= l.Len() {
				return fromIndexable(x, l), nil
			}
			return fromIndexable(x, deleteElements(l.(*List), s.pos)), nil
		}
		out, err := rt.assignPositions(l, s, NewList(value))
		if err != nil {
			return nil, err
		}
		return fromIndexable(x, out), nil
	}
	if rv.Len() == 0 {
		return nil, errorf(KindEval, "replacement has length zero")
	}
	if rv.Len() > 1 {
		return nil, errorf(KindEval, "more elements supplied than there are to replace")
	}
	return rt.Subassign(x, subs, value)
}

// DollarAssignFunction is `$<-`; the name is never evaluated.
func DollarAssignFunction(rt *Runtime, bc *BuiltinCall) (Value, error) {
	if len(bc.Args) != 3 {
		return nil, WrongNargs
	}
	x, err := rt.eval(bc.Args[0].Value, bc.Env)
	if err != nil {
		return nil, err
	}
	name, err := asScalarString(bc.Args[1].Value, "name")
	if err != nil {
		return nil, errorf(KindEval, "invalid subscript type '%s'", bc.Args[1].Value.Type())
	}
	value, err := rt.eval(bc.Args[2].Value, bc.Env)
	if err != nil {
		return nil, err
	}
	if classAttr(x) != nil {
		args := []Arg{
			{Value: forcedPromise(bc.Args[0].Value, x)},
			{Value: forcedPromise(strScalar(name), strScalar(name))},
			{Tag: "value", Value: forcedPromise(bc.Args[2].Value, value)},
		}
		v, done, err := rt.tryDispatch("$<-", bc.Call, args, bc.Env)
		if done || err != nil {
			return v, err
		}
	}
	rt.visible = true
	return rt.DollarAssign(x, name, value)
}

func (rt *Runtime) DollarAssign(x Value, name string, value Value) (Value, error) {
	switch x.(type) {
	case *EnvValue, *NullValue, *List, *Pairlist, *Language:
	case Vector:
		rt.warnf("Coercing LHS to a list")
		l, err := coerceVector(x, TypeList, rt)
		if err != nil {
			return nil, err
		}
		x = l
	default:
		return nil, notSubsettable(x)
	}
	return rt.Subassign2(x, []Value{strScalar(name)}, value)
}

// IndexFunctions returns the subscript operators and their
// replacement forms.
func IndexFunctions() map[string]*Builtin {
	return map[string]*Builtin{
		"[":    {Fn: SubsetFunction, Dispatch: true},
		"[[":   {Fn: Subset2Function, Dispatch: true},
		"$":    {Fn: DollarFunction, Special: true},
		"[<-":  {Fn: SubassignFunction, Dispatch: true},
		"[[<-": {Fn: Subassign2Function, Dispatch: true},
		"$<-":  {Fn: DollarAssignFunction, Special: true},
	}
}
