package rcore

import (
	"fmt"
	"math"
	"strconv"
	"strings"
)

// coercion rank for c() and binary operators
func typeRank(t TypeCode) int {
	switch t {
	case TypeNull:
		return 0
	case TypeRaw:
		return 1
	case TypeLogical:
		return 2
	case TypeInteger:
		return 3
	case TypeDouble:
		return 4
	case TypeComplex:
		return 5
	case TypeCharacter:
		return 6
	}
	return 7
}

// higherType is the type both a and b coerce to when combined.
func higherType(a, b TypeCode) TypeCode {
	if typeRank(a) >= typeRank(b) {
		if typeRank(a) == 7 {
			return TypeList
		}
		return a
	}
	if typeRank(b) == 7 {
		return TypeList
	}
	return b
}

// coerceVector converts v to type t keeping its attributes. Lossy
// conversions report through w.
func coerceVector(v Value, t TypeCode, w warnSink) (Vector, error) {
	if v.Type() == t {
		if vec, ok := v.(Vector); ok {
			return vec, nil
		}
	}
	switch x := v.(type) {
	case *NullValue:
		return emptyVector(t), nil
	case *Symbol:
		if t == TypeCharacter {
			return strScalar(x.Name), nil
		}
		if t == TypeList {
			return NewList(x), nil
		}
	case *Language:
		if t == TypeList {
			vals := []Value{x.Fn}
			names := []string{""}
			named := false
			for _, a := range x.Args {
				vals = append(vals, a.Value)
				names = append(names, a.Tag)
				if a.Tag != "" {
					named = true
				}
			}
			l := &List{V: vals}
			if named {
				l.attrs = l.attrs.With("names", Str(names...))
			}
			return l, nil
		}
		if t == TypeCharacter {
			s := []string{deparseOneLine(x.Fn)}
			for _, a := range x.Args {
				s = append(s, deparseOneLine(a.Value))
			}
			return Str(s...), nil
		}
	case *Pairlist:
		l := NamedList(x.Args)
		if t == TypeList {
			return l, nil
		}
		return coerceVector(l, t, w)
	case *Dots:
		l := NamedList(x.Args)
		return coerceVector(l, t, w)
	case *List:
		return coerceList(x, t, w)
	case Vector:
		if t == TypeList {
			n := x.Len()
			vals := make([]Value, n)
			for i := 0; i < n; i++ {
				vals[i] = x.Subset([]int{i})
			}
			return &List{V: vals, attrs: x.Attrs()}, nil
		}
		r, err := coerceAtomic(x, t, w)
		if err != nil {
			return nil, err
		}
		return r.withAttrs(x.Attrs()), nil
	}
	if t == TypeList {
		return NewList(v), nil
	}
	return nil, errorf(KindCoercion, "cannot coerce type '%s' to vector of type '%s'", v.Type(), t)
}

func emptyVector(t TypeCode) Vector {
	switch t {
	case TypeLogical:
		return &Logical{V: []int32{}}
	case TypeInteger:
		return &Integer{V: []int32{}}
	case TypeDouble:
		return &Double{V: []float64{}}
	case TypeComplex:
		return &Complex{V: []complex128{}}
	case TypeCharacter:
		return &Character{V: []string{}}
	case TypeRaw:
		return &Raw{V: []byte{}}
	}
	return &List{V: []Value{}}
}

// coerceList converts a list whose elements are all length one atomic
// values to an atomic vector.
func coerceList(x *List, t TypeCode, w warnSink) (Vector, error) {
	if t == TypeList {
		return x, nil
	}
	out := emptyVector(t).blank(x.Len())
	for i, e := range x.V {
		ev, ok := e.(Vector)
		if !ok || !IsAtomic(e) || ev.Len() != 1 {
			if t == TypeCharacter {
				out.(*Character).V[i] = deparseOneLine(e)
				continue
			}
			return nil, errorf(KindCoercion, "'list' object cannot be coerced to type '%s'", t)
		}
		c, err := coerceAtomic(ev, t, w)
		if err != nil {
			return nil, err
		}
		out.put(i, c, 0)
	}
	if nm := x.Attrs().Get("names"); nm != nil {
		out = out.withAttrs((*Attrs)(nil).With("names", nm))
	}
	return out, nil
}

// coerceAtomic converts the data of an atomic vector; attributes are not
// carried.
func coerceAtomic(x Vector, t TypeCode, w warnSink) (Vector, error) {
	n := x.Len()
	switch t {
	case TypeLogical:
		r := make([]int32, n)
		for i := range r {
			r[i] = elemLogical(x, i)
		}
		return &Logical{V: r}, nil
	case TypeInteger:
		r := make([]int32, n)
		warned := false
		for i := range r {
			v, ok := elemInteger(x, i)
			if !ok && !warned {
				warned = true
				if _, isStr := x.(*Character); isStr && !numericLike(x.(*Character).V[i]) {
					warnOn(w, "NAs introduced by coercion")
				} else {
					warnOn(w, "NAs introduced by coercion to integer range")
				}
			}
			r[i] = v
		}
		if c, ok := x.(*Complex); ok {
			warnImaginary(c, w)
		}
		return &Integer{V: r}, nil
	case TypeDouble:
		r := make([]float64, n)
		warned := false
		for i := range r {
			v, ok := elemDouble(x, i)
			if !ok && !warned {
				warned = true
				warnOn(w, "NAs introduced by coercion")
			}
			r[i] = v
		}
		if c, ok := x.(*Complex); ok {
			warnImaginary(c, w)
		}
		return &Double{V: r}, nil
	case TypeComplex:
		r := make([]complex128, n)
		warned := false
		for i := range r {
			v, ok := elemComplex(x, i)
			if !ok && !warned {
				warned = true
				warnOn(w, "NAs introduced by coercion")
			}
			r[i] = v
		}
		return &Complex{V: r}, nil
	case TypeCharacter:
		r := make([]string, n)
		for i := range r {
			r[i] = elemString(x, i, 15)
		}
		return &Character{V: r}, nil
	case TypeRaw:
		r := make([]byte, n)
		warned := false
		for i := range r {
			b, ok := elemRaw(x, i)
			if !ok && !warned {
				warned = true
				warnOn(w, "out-of-range values treated as 0 in coercion to raw")
			}
			r[i] = b
		}
		return &Raw{V: r}, nil
	case TypeList:
		return coerceVector(x, TypeList, w)
	}
	return nil, errorf(KindCoercion, "cannot coerce type '%s' to vector of type '%s'", x.Type(), t)
}

func warnOn(w warnSink, msg string) {
	if w != nil {
		w.warnf("%s", msg)
	}
}

func warnImaginary(c *Complex, w warnSink) {
	for _, z := range c.V {
		if !isNAComplex(z) && imag(z) != 0 {
			warnOn(w, "imaginary parts discarded in coercion")
			return
		}
	}
}

func elemLogical(x Vector, i int) int32 {
	switch v := x.(type) {
	case *Logical:
		return v.V[i]
	case *Integer:
		if v.V[i] == NAInteger {
			return NALogical
		}
		return b2i(v.V[i] != 0)
	case *Double:
		if math.IsNaN(v.V[i]) {
			return NALogical
		}
		return b2i(v.V[i] != 0)
	case *Complex:
		if isNAComplex(v.V[i]) {
			return NALogical
		}
		return b2i(v.V[i] != 0)
	case *Character:
		switch v.V[i] {
		case "TRUE", "true", "T", "True":
			return 1
		case "FALSE", "false", "F", "False":
			return 0
		}
		return NALogical
	case *Raw:
		return b2i(v.V[i] != 0)
	}
	return NALogical
}

func b2i(b bool) int32 {
	if b {
		return 1
	}
	return 0
}

// elemInteger reports ok == false when a non-NA input became NA.
func elemInteger(x Vector, i int) (int32, bool) {
	switch v := x.(type) {
	case *Logical:
		return v.V[i], true
	case *Integer:
		return v.V[i], true
	case *Double:
		return doubleToInt(v.V[i])
	case *Complex:
		if isNAComplex(v.V[i]) {
			return NAInteger, true
		}
		return doubleToInt(real(v.V[i]))
	case *Character:
		s := v.V[i]
		if s == NAString {
			return NAInteger, true
		}
		f, ok := parseRNumber(s)
		if !ok {
			return NAInteger, false
		}
		return doubleToInt(f)
	case *Raw:
		return int32(v.V[i]), true
	}
	return NAInteger, false
}

func doubleToInt(f float64) (int32, bool) {
	if math.IsNaN(f) {
		return NAInteger, true
	}
	if f >= 2147483648 || f <= -2147483648 {
		return NAInteger, false
	}
	return int32(f), true
}

func elemDouble(x Vector, i int) (float64, bool) {
	switch v := x.(type) {
	case *Logical:
		if v.V[i] == NALogical {
			return NADouble, true
		}
		return float64(v.V[i]), true
	case *Integer:
		if v.V[i] == NAInteger {
			return NADouble, true
		}
		return float64(v.V[i]), true
	case *Double:
		return v.V[i], true
	case *Complex:
		if isNAComplex(v.V[i]) {
			return NADouble, true
		}
		return real(v.V[i]), true
	case *Character:
		if v.V[i] == NAString {
			return NADouble, true
		}
		f, ok := parseRNumber(v.V[i])
		if !ok {
			return NADouble, false
		}
		return f, true
	case *Raw:
		return float64(v.V[i]), true
	}
	return NADouble, false
}

func elemComplex(x Vector, i int) (complex128, bool) {
	switch v := x.(type) {
	case *Complex:
		return v.V[i], true
	case *Character:
		if v.V[i] == NAString {
			return NAComplex, true
		}
		z, ok := parseRComplex(v.V[i])
		if !ok {
			return NAComplex, false
		}
		return z, true
	}
	f, ok := elemDouble(x, i)
	if IsNA(f) {
		return NAComplex, ok
	}
	return complex(f, 0), ok
}

// elemString formats element i as as.character does, with digits
// significant digits for doubles.
func elemString(x Vector, i int, digits int) string {
	switch v := x.(type) {
	case *Logical:
		switch v.V[i] {
		case NALogical:
			return NAString
		case 0:
			return "FALSE"
		}
		return "TRUE"
	case *Integer:
		if v.V[i] == NAInteger {
			return NAString
		}
		return strconv.Itoa(int(v.V[i]))
	case *Double:
		if IsNA(v.V[i]) {
			return NAString
		}
		return formatReal(v.V[i], digits)
	case *Complex:
		if isNAComplex(v.V[i]) {
			return NAString
		}
		return formatComplex(v.V[i], digits)
	case *Character:
		return v.V[i]
	case *Raw:
		return fmt.Sprintf("%02x", v.V[i])
	case *List:
		e := v.V[i]
		if ev, ok := e.(Vector); ok && IsAtomic(e) && ev.Len() == 1 {
			return elemString(ev, 0, digits)
		}
		return deparseOneLine(e)
	}
	return NAString
}

func elemRaw(x Vector, i int) (byte, bool) {
	var f float64
	switch v := x.(type) {
	case *Raw:
		return v.V[i], true
	case *Logical:
		if v.V[i] == NALogical {
			return 0, false
		}
		return byte(v.V[i]), true
	case *Integer:
		if v.V[i] == NAInteger {
			return 0, false
		}
		f = float64(v.V[i])
	case *Double:
		f = v.V[i]
	case *Complex:
		f = real(v.V[i])
	case *Character:
		var ok bool
		f, ok = parseRNumber(v.V[i])
		if !ok {
			return 0, false
		}
	}
	if math.IsNaN(f) || f < 0 || f >= 256 {
		return 0, false
	}
	return byte(f), true
}

// parseRNumber is the string to double conversion of as.numeric.
func parseRNumber(s string) (float64, bool) {
	s = strings.TrimSpace(s)
	switch s {
	case "NA":
		return NADouble, true
	case "NaN":
		return math.NaN(), true
	case "Inf", "inf", "+Inf":
		return math.Inf(1), true
	case "-Inf", "-inf":
		return math.Inf(-1), true
	}
	if s == "" {
		return NADouble, false
	}
	neg := false
	body := s
	if body[0] == '-' || body[0] == '+' {
		neg = body[0] == '-'
		body = body[1:]
	}
	if strings.HasPrefix(body, "0x") || strings.HasPrefix(body, "0X") {
		u, err := strconv.ParseUint(body[2:], 16, 64)
		if err != nil {
			return NADouble, false
		}
		f := float64(u)
		if neg {
			f = -f
		}
		return f, true
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil {
		if ne, ok := err.(*strconv.NumError); ok && ne.Err == strconv.ErrRange {
			return f, true
		}
		return NADouble, false
	}
	return f, true
}

func numericLike(s string) bool {
	_, ok := parseRNumber(s)
	return ok
}

func parseRComplex(s string) (complex128, bool) {
	s = strings.TrimSpace(s)
	if f, ok := parseRNumber(s); ok {
		return complex(f, 0), true
	}
	if !strings.HasSuffix(s, "i") {
		return NAComplex, false
	}
	body := s[:len(s)-1]
	cut := strings.LastIndexAny(body, "+-")
	if cut <= 0 {
		im, ok := parseRNumber(body)
		return complex(0, im), ok
	}
	re, ok1 := parseRNumber(body[:cut])
	im, ok2 := parseRNumber(body[cut:])
	if !ok1 || !ok2 {
		return NAComplex, false
	}
	return complex(re, im), true
}

// asCharacterVector is as.character without dispatch or attributes.
func asCharacterVector(v Value, w warnSink) (*Character, error) {
	r, err := coerceVector(v, TypeCharacter, w)
	if err != nil {
		return nil, err
	}
	return &Character{V: r.(*Character).V}, nil
}

func asIntegerVector(v Value, w warnSink) (*Integer, error) {
	r, err := coerceVector(v, TypeInteger, w)
	if err != nil {
		return nil, err
	}
	return &Integer{V: r.(*Integer).V}, nil
}

func asDoubleVector(v Value, w warnSink) (*Double, error) {
	r, err := coerceVector(v, TypeDouble, w)
	if err != nil {
		return nil, err
	}
	return &Double{V: r.(*Double).V}, nil
}

func asLogicalVector(v Value, w warnSink) (*Logical, error) {
	r, err := coerceVector(v, TypeLogical, w)
	if err != nil {
		return nil, err
	}
	return &Logical{V: r.(*Logical).V}, nil
}

// asScalarString is the first element of v as a string, for arguments
// that must be a single name.
func asScalarString(v Value, what string) (string, error) {
	switch x := v.(type) {
	case *Symbol:
		return x.Name, nil
	case *Character:
		if x.Len() >= 1 {
			return x.V[0], nil
		}
	}
	return "", errorf(KindEval, "invalid '%s' argument", what)
}

// asScalarInt is the first element of v as an int.
func asScalarInt(v Value, what string) (int, error) {
	if vec, ok := v.(Vector); ok && IsAtomic(v) && vec.Len() >= 1 {
		i, _ := elemInteger(vec, 0)
		if i == NAInteger {
			return 0, errorf(KindEval, "invalid '%s' argument", what)
		}
		return int(i), nil
	}
	return 0, errorf(KindEval, "invalid '%s' argument", what)
}

// asFlag is the first element of v as a non-NA logical.
func asFlag(v Value, what string) (bool, error) {
	if vec, ok := v.(Vector); ok && IsAtomic(v) && vec.Len() >= 1 {
		b := elemLogical(vec, 0)
		if b != NALogical {
			return b == 1, nil
		}
	}
	return false, errorf(KindEval, "invalid '%s' argument", what)
}

// asCondition is the scalar test of if and while.
func asCondition(v Value, what string) (bool, error) {
	vec, ok := v.(Vector)
	if !ok || !IsAtomic(v) {
		if _, isNull := v.(*NullValue); isNull {
			return false, errorf(KindEval, "argument is of length zero")
		}
		return false, errorf(KindEval, "argument is not interpretable as logical")
	}
	switch vec.Len() {
	case 0:
		return false, errorf(KindEval, "argument is of length zero")
	case 1:
	default:
		return false, errorf(KindEval, "the condition has length > 1")
	}
	if c, ok := vec.(*Character); ok {
		b := elemLogical(c, 0)
		if b == NALogical {
			return false, errorf(KindEval, "argument is not interpretable as logical")
		}
		return b == 1, nil
	}
	b := elemLogical(vec, 0)
	if b == NALogical {
		return false, errorf(KindEval, "missing value where TRUE/FALSE needed")
	}
	return b == 1, nil
}

// modeName is mode(x).
func modeName(v Value) string {
	switch v.Type() {
	case TypeInteger, TypeDouble:
		return "numeric"
	case TypeClosure, TypeBuiltin, TypeSpecial:
		return "function"
	case TypeSymbol:
		return "name"
	case TypeLanguage:
		if l, ok := v.(*Language); ok && l.FnName() == "(" {
			return "("
		}
		return "call"
	}
	return v.Type().String()
}

// implicitClass is class(x): the class attribute, or the class R infers
// from dim and type.
func implicitClass(v Value) []string {
	if c := classAttr(v); c != nil {
		return c
	}
	var r []string
	if d := dimOf(v); d != nil {
		if len(d) == 2 {
			r = append(r, "matrix", "array")
		} else {
			r = append(r, "array")
		}
	}
	switch v.Type() {
	case TypeClosure, TypeBuiltin, TypeSpecial:
		return append(r, "function")
	case TypeSymbol:
		return append(r, "name")
	case TypeLanguage:
		return append(r, languageClass(v.(*Language)))
	case TypeDouble:
		return append(r, "numeric")
	}
	return append(r, v.Type().String())
}

// dispatchClass is the class vector S3 dispatch walks: the implicit class
// with "integer"/"double" followed by "numeric", and "function" for all
// function types.
func dispatchClass(v Value) []string {
	if c := classAttr(v); c != nil {
		return c
	}
	var r []string
	if d := dimOf(v); d != nil {
		if len(d) == 2 {
			r = append(r, "matrix", "array")
		} else {
			r = append(r, "array")
		}
	}
	switch v.Type() {
	case TypeInteger:
		return append(r, "integer", "numeric")
	case TypeDouble:
		return append(r, "double", "numeric")
	case TypeClosure, TypeBuiltin, TypeSpecial:
		return append(r, "function")
	case TypeSymbol:
		return append(r, "name")
	case TypeLanguage:
		return append(r, languageClass(v.(*Language)))
	}
	return append(r, v.Type().String())
}

func languageClass(l *Language) string {
	switch l.FnName() {
	case "if":
		return "if"
	case "for":
		return "for"
	case "while":
		return "while"
	case "(":
		return "("
	case "{":
		return "{"
	case "<-", "=":
		return "<-"
	}
	return "call"
}

func inheritsFrom(v Value, what string) bool {
	for _, c := range implicitClass(v) {
		if c == what {
			return true
		}
	}
	return false
}
