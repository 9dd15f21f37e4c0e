package rcore

import (
	"bytes"
	"fmt"
	"math"
	"reflect"
	"sort"

	"github.com/ugorji/go/codec"
)

/*
 Conversion map

 R value <--(1)--> Go interface{} <--(2)--> JSON

(1) ValueToGo() and GoToValue() herein. Unnamed vectors of length
    one become scalars, named vectors and named lists become maps,
    other vectors arrays. NA becomes null.
(2) provided by ugorji/go/codec with a canonical JsonHandle, so map
    keys are written sorted.
*/

type jsonHelper struct {
	initialized bool
	jh          codec.JsonHandle
}

func (m *jsonHelper) init() {
	if m.initialized {
		return
	}
	m.jh.MapType = reflect.TypeOf(map[string]interface{}(nil))
	m.jh.SignedInteger = true
	m.jh.Canonical = true // sort maps before writing them
	m.initialized = true
}

var jsonHelp jsonHelper

func init() {
	jsonHelp.init()
}

// ValueToJson renders v as JSON text.
func ValueToJson(v Value) ([]byte, error) {
	iface := ValueToGo(v)
	var w bytes.Buffer
	encoder := codec.NewEncoder(&w, &jsonHelp.jh)
	if err := encoder.Encode(&iface); err != nil {
		return nil, err
	}
	return w.Bytes(), nil
}

// JsonToValue parses JSON text into an R value.
func JsonToValue(json []byte) (Value, error) {
	var iface interface{}
	decoder := codec.NewDecoderBytes(json, &jsonHelp.jh)
	if err := decoder.Decode(&iface); err != nil {
		return nil, err
	}
	VPrintf("decoded type : %T", iface)
	return GoToValue(iface), nil
}

// ValueToGo converts an R value to plain Go data.
func ValueToGo(v Value) interface{} {
	switch x := v.(type) {
	case nil, *NullValue:
		return nil
	case *Symbol:
		return x.Name
	case *Language, *Closure:
		return deparseOneLine(x)
	case *Builtin:
		return x.Name
	case *EnvValue:
		return "<environment>"
	case *List:
		names := namesOf(x)
		if names != nil {
			m := make(map[string]interface{}, x.Len())
			for i, e := range x.V {
				m[names[i]] = ValueToGo(e)
			}
			return m
		}
		arr := make([]interface{}, x.Len())
		for i, e := range x.V {
			arr[i] = ValueToGo(e)
		}
		return arr
	case Vector:
		n := x.Len()
		elems := make([]interface{}, n)
		for i := range elems {
			elems[i] = elemToGo(x, i)
		}
		if names := namesOf(x); names != nil {
			m := make(map[string]interface{}, n)
			for i, e := range elems {
				m[names[i]] = e
			}
			return m
		}
		if n == 1 {
			return elems[0]
		}
		return elems
	}
	return fmt.Sprintf("<%s>", v.Type())
}

func elemToGo(x Vector, i int) interface{} {
	switch v := x.(type) {
	case *Logical:
		if v.V[i] == NALogical {
			return nil
		}
		return v.V[i] == 1
	case *Integer:
		if v.V[i] == NAInteger {
			return nil
		}
		return int64(v.V[i])
	case *Double:
		f := v.V[i]
		if math.IsNaN(f) || math.IsInf(f, 0) {
			return nil
		}
		return f
	case *Character:
		if v.V[i] == NAString {
			return nil
		}
		return v.V[i]
	case *Complex:
		if isNAComplex(v.V[i]) {
			return nil
		}
		return formatComplex(v.V[i], 15)
	case *Raw:
		return int64(v.V[i])
	}
	return nil
}

// GoToValue converts decoded JSON to an R value. Arrays of scalars of
// one kind simplify to atomic vectors, with null as NA.
func GoToValue(iface interface{}) Value {
	switch x := iface.(type) {
	case nil:
		return Nil
	case bool:
		return Lgl(x)
	case int64:
		return goInt(x)
	case uint64:
		if x <= math.MaxInt32 {
			return goInt(int64(x))
		}
		return dblScalar(float64(x))
	case float64:
		return dblScalar(x)
	case string:
		return strScalar(x)
	case []byte:
		return strScalar(string(x))
	case map[string]interface{}:
		keys := make([]string, 0, len(x))
		for k := range x {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		args := make([]Arg, len(keys))
		for i, k := range keys {
			args[i] = Arg{Tag: k, Value: GoToValue(x[k])}
		}
		return NamedList(args)
	case []interface{}:
		vals := make([]Value, len(x))
		for i, e := range x {
			vals[i] = GoToValue(e)
		}
		if v, ok := simplifyScalars(vals); ok {
			return v
		}
		return NewList(vals...)
	}
	return strScalar(fmt.Sprintf("%v", iface))
}

func goInt(x int64) Value {
	if x > math.MaxInt32 || x <= math.MinInt32 {
		return dblScalar(float64(x))
	}
	return intScalar(int(x))
}

// simplifyScalars joins length one atomic values into one vector of
// their highest type. NULLs become NA.
func simplifyScalars(vals []Value) (Value, bool) {
	if len(vals) == 0 {
		return nil, false
	}
	t := TypeLogical
	seen := false
	for _, v := range vals {
		if _, isNull := v.(*NullValue); isNull {
			continue
		}
		vec, ok := v.(Vector)
		if !ok || !IsAtomic(v) || vec.Len() != 1 {
			return nil, false
		}
		t = higherType(t, vec.Type())
		seen = true
	}
	if !seen {
		return nil, false
	}
	out := emptyVector(t).blank(len(vals))
	for i, v := range vals {
		if _, isNull := v.(*NullValue); isNull {
			continue
		}
		cv, err := coerceVector(v, t, nil)
		if err != nil {
			return nil, false
		}
		out.put(i, cv, 0)
	}
	return out, true
}

func ToJsonFunction(rt *Runtime, bc *BuiltinCall) (Value, error) {
	x := bc.Arg("x")
	if x == nil {
		return nil, WrongNargs
	}
	by, err := ValueToJson(x)
	if err != nil {
		return nil, errorf(KindEval, "toJSON: %v", err)
	}
	return strScalar(string(by)), nil
}

func FromJsonFunction(rt *Runtime, bc *BuiltinCall) (Value, error) {
	txt, err := asScalarString(bc.Arg("txt"), "txt")
	if err != nil {
		return nil, err
	}
	v, err := JsonToValue([]byte(txt))
	if err != nil {
		return nil, errorf(KindEval, "fromJSON: %v", err)
	}
	return v, nil
}

// FingerprintFunction is the hex digest of the canonical encoding of x;
// identical values share it.
func FingerprintFunction(rt *Runtime, bc *BuiltinCall) (Value, error) {
	x := bc.Arg("x")
	if x == nil {
		return nil, WrongNargs
	}
	return strScalar(fmt.Sprintf("%016x", Fingerprint(x))), nil
}

// EncodingFunctions returns the JSON and fingerprint builtins.
func EncodingFunctions() map[string]*Builtin {
	return map[string]*Builtin{
		"toJSON":      {Fn: ToJsonFunction, Formals: []string{"x"}},
		"fromJSON":    {Fn: FromJsonFunction, Formals: []string{"txt"}},
		"fingerprint": {Fn: FingerprintFunction, Formals: []string{"x"}},
	}
}
