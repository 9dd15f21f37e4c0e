package rcore

import (
	"math"
)

// TypeCode is the internal type of a Value, named as typeof() reports it.
type TypeCode int

const (
	TypeNull TypeCode = iota
	TypeSymbol
	TypePairlist
	TypeClosure
	TypeEnvironment
	TypePromise
	TypeLanguage
	TypeSpecial
	TypeBuiltin
	TypeLogical
	TypeInteger
	TypeDouble
	TypeComplex
	TypeCharacter
	TypeDots
	TypeList
	TypeRaw
)

var typeNames = map[TypeCode]string{
	TypeNull:        "NULL",
	TypeSymbol:      "symbol",
	TypePairlist:    "pairlist",
	TypeClosure:     "closure",
	TypeEnvironment: "environment",
	TypePromise:     "promise",
	TypeLanguage:    "language",
	TypeSpecial:     "special",
	TypeBuiltin:     "builtin",
	TypeLogical:     "logical",
	TypeInteger:     "integer",
	TypeDouble:      "double",
	TypeComplex:     "complex",
	TypeCharacter:   "character",
	TypeDots:        "...",
	TypeList:        "list",
	TypeRaw:         "raw",
}

func (t TypeCode) String() string {
	if s, ok := typeNames[t]; ok {
		return s
	}
	return "unknown"
}

// Value is anything the evaluator can bind, pass or return.
type Value interface {
	Type() TypeCode
	Attrs() *Attrs
}

// NA bit patterns. R strings can never contain NUL, so the character NA
// cannot collide with a real string.
const (
	NAInteger   int32 = math.MinInt32
	NALogical   int32 = math.MinInt32
	NAString          = "\x00NA\x00"
	naDoubleLow       = 1954
)

var NADouble = math.Float64frombits(0x7FF00000000007A2)

// IsNA reports whether x is the double NA (and not merely NaN).
func IsNA(x float64) bool {
	return math.IsNaN(x) && uint32(math.Float64bits(x)) == naDoubleLow
}

// IsNAorNaN is is.na() for doubles.
func IsNAorNaN(x float64) bool {
	return math.IsNaN(x)
}

var NAComplex = complex(NADouble, 0)

func isNAComplex(z complex128) bool {
	return math.IsNaN(real(z)) || math.IsNaN(imag(z))
}

// NullValue is R's NULL. There is exactly one, Nil.
type NullValue struct{}

var Nil = &NullValue{}

func (n *NullValue) Type() TypeCode { return TypeNull }
func (n *NullValue) Attrs() *Attrs  { return nil }

// Symbol is a name. MissingArg is the empty symbol R uses to mark an
// argument that was not supplied.
type Symbol struct {
	Name string
}

var MissingArg = &Symbol{Name: ""}

func (s *Symbol) Type() TypeCode { return TypeSymbol }
func (s *Symbol) Attrs() *Attrs  { return nil }

// Sym returns a symbol for name.
func Sym(name string) *Symbol {
	return &Symbol{Name: name}
}

// Arg is one tagged element of a call, a pairlist or a dots value.
type Arg struct {
	Tag   string
	Value Value
}

// Language is an unevaluated call.
type Language struct {
	Fn    Value
	Args  []Arg
	attrs *Attrs
}

func (l *Language) Type() TypeCode { return TypeLanguage }
func (l *Language) Attrs() *Attrs  { return l.attrs }

// FnName returns the function symbol name of the call, or "".
func (l *Language) FnName() string {
	if s, ok := l.Fn.(*Symbol); ok {
		return s.Name
	}
	return ""
}

// Call builds a call to the named function with untagged arguments.
func Call(fn string, args ...Value) *Language {
	l := &Language{Fn: Sym(fn)}
	for _, a := range args {
		l.Args = append(l.Args, Arg{Value: a})
	}
	return l
}

// Pairlist holds tagged values; formals() and as.pairlist() return one.
type Pairlist struct {
	Args  []Arg
	attrs *Attrs
}

func (p *Pairlist) Type() TypeCode { return TypePairlist }
func (p *Pairlist) Attrs() *Attrs  { return p.attrs }
func (p *Pairlist) Len() int       { return len(p.Args) }

// Closure is a user function: formals, body and the defining environment.
// A formal without a default has Value == MissingArg.
type Closure struct {
	Formals []Arg
	Body    Value
	Env     EnvRef
	attrs   *Attrs
}

func (c *Closure) Type() TypeCode { return TypeClosure }
func (c *Closure) Attrs() *Attrs  { return c.attrs }

func (c *Closure) formalNames() []string {
	names := make([]string, len(c.Formals))
	for i, f := range c.Formals {
		names[i] = f.Tag
	}
	return names
}

// BuiltinFunction implements a builtin. For specials the args are the
// unevaluated call arguments; for builtins they are values.
type BuiltinFunction func(rt *Runtime, bc *BuiltinCall) (Value, error)

// BuiltinCall is what a builtin sees of its invocation.
type BuiltinCall struct {
	Name string
	Call *Language
	Env  EnvRef
	Args []Arg

	// filled in when the builtin declares Formals
	formals []string
	matched *MatchResult
}

// Builtin is a function implemented in Go.
type Builtin struct {
	Name    string
	Fn      BuiltinFunction
	Special bool

	// Formals, if set, are matched against the supplied arguments with
	// the same matcher closures use.
	Formals []string

	// Dispatch marks internal generics: an object argument with a class
	// attribute is offered to S3 methods first.
	Dispatch bool
	Group    string
	attrs    *Attrs
}

func (b *Builtin) Type() TypeCode {
	if b.Special {
		return TypeSpecial
	}
	return TypeBuiltin
}
func (b *Builtin) Attrs() *Attrs { return b.attrs }

// Dots is the value bound to `...` in a closure environment.
type Dots struct {
	Args []Arg
}

func (d *Dots) Type() TypeCode { return TypeDots }
func (d *Dots) Attrs() *Attrs  { return nil }

// EnvValue is an environment as a first class value. It is a handle:
// copies of it all refer to the same mutable environment.
type EnvValue struct {
	Ref   EnvRef
	arena *envArena
}

func (e *EnvValue) Type() TypeCode { return TypeEnvironment }
func (e *EnvValue) Attrs() *Attrs {
	env, err := e.arena.get(e.Ref)
	if err != nil {
		return nil
	}
	return env.attrs
}

// IsFunction reports whether v can be called.
func IsFunction(v Value) bool {
	switch v.(type) {
	case *Closure, *Builtin:
		return true
	}
	return false
}
