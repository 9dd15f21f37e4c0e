package rcore

import "strings"

type PromiseState int

const (
	Unforced PromiseState = iota
	Forcing
	Forced
	PromiseFailed
)

func (s PromiseState) String() string {
	switch s {
	case Forcing:
		return "forcing"
	case Forced:
		return "forced"
	case PromiseFailed:
		return "error"
	}
	return "unforced"
}

// Promise is a lazily evaluated argument. Expr is kept after forcing so
// substitute() can still recover the argument's source.
type Promise struct {
	Expr Value
	Env  EnvRef

	state PromiseState
	value Value
	err   error
}

func (p *Promise) Type() TypeCode { return TypePromise }
func (p *Promise) Attrs() *Attrs  { return nil }

func (p *Promise) State() PromiseState { return p.state }

// Value returns the forced value, or nil if the promise has not been
// forced successfully.
func (p *Promise) Value() Value {
	if p.state != Forced {
		return nil
	}
	return p.value
}

// Err is the error the last forcing attempt ended with.
func (p *Promise) Err() error { return p.err }

func NewPromise(expr Value, env EnvRef) *Promise {
	return &Promise{Expr: expr, Env: env}
}

// forcedPromise wraps an already computed value while keeping its
// source expression, as dispatching builtins pass their arguments on.
func forcedPromise(expr, v Value) *Promise {
	return &Promise{Expr: expr, state: Forced, value: v}
}

const cyclicPromiseMsg = "promise already under evaluation: recursive default argument reference or earlier problems?"

// Force evaluates p once. Re-entering a promise that is being forced is
// a cyclic dependency and fails instead of looping.
func (rt *Runtime) Force(p *Promise) (Value, error) {
	switch p.state {
	case Forced:
		return p.value, nil
	case Forcing:
		return nil, errorf(KindCyclicPromise, cyclicPromiseMsg)
	}
	p.state = Forcing
	v, err := rt.eval(p.Expr, p.Env)
	if err != nil {
		p.state = PromiseFailed
		p.err = err
		return nil, err
	}
	p.state = Forced
	p.value = v
	p.err = nil
	p.Env = EnvRef{}
	return v, nil
}

// forceValue forces v if it is a promise.
func (rt *Runtime) forceValue(v Value) (Value, error) {
	if p, ok := v.(*Promise); ok {
		return rt.Force(p)
	}
	return v, nil
}

// promiseExpr is the source of an argument: the expression of a promise,
// or the value itself.
func promiseExpr(v Value) Value {
	for {
		p, ok := v.(*Promise)
		if !ok {
			return v
		}
		v = p.Expr
	}
}

// rootPromise follows chains of promises whose expression is itself a
// promise, as produced by NextMethod and do.call.
func rootPromise(p *Promise) *Promise {
	for {
		inner, ok := p.Expr.(*Promise)
		if !ok {
			return p
		}
		p = inner
	}
}

// isMissing is missing(name) evaluated in env.
func (rt *Runtime) isMissing(env EnvRef, name string) (bool, error) {
	if n, ok := ddIndex(name); ok {
		return rt.isMissingDots(env, n)
	}
	b, ok := rt.LookupLocal(env, name)
	if !ok {
		return false, errorf(KindEval, "'missing' can only be used for arguments")
	}
	if b.Missing || b.Value == Value(MissingArg) {
		return true, nil
	}
	p, ok := b.Value.(*Promise)
	if !ok {
		return false, nil
	}
	p = rootPromise(p)
	sym, ok := p.Expr.(*Symbol)
	if !ok || p.Env.IsZero() {
		return false, nil
	}
	return rt.symbolMissing(sym, p.Env), nil
}

// symbolMissing follows unforced promises whose expression is a bare
// symbol, looking in each promise's own frame only.
func (rt *Runtime) symbolMissing(sym *Symbol, env EnvRef) bool {
	if sym == MissingArg {
		return true
	}
	if n, ok := ddIndex(sym.Name); ok {
		m, _ := rt.isMissingDots(env, n)
		return m
	}
	b, ok := rt.LookupLocal(env, sym.Name)
	if !ok {
		return false
	}
	if b.Missing || b.Value == Value(MissingArg) {
		return true
	}
	p, ok := b.Value.(*Promise)
	if !ok || p.state == Forced {
		return false
	}
	if inner, ok := p.Expr.(*Symbol); ok {
		if p.state == Forcing {
			return true
		}
		if p.Env.IsZero() {
			return false
		}
		return rt.symbolMissing(inner, p.Env)
	}
	return false
}

func (rt *Runtime) isMissingDots(env EnvRef, n int) (bool, error) {
	b, ok := rt.LookupLocal(env, "...")
	if !ok {
		return false, errorf(KindEval, "'missing' can only be used for arguments")
	}
	d, ok := b.Value.(*Dots)
	if !ok || n > len(d.Args) {
		return true, nil
	}
	v := d.Args[n-1].Value
	if v == Value(MissingArg) {
		return true, nil
	}
	if p, ok := v.(*Promise); ok && p.state != Forced {
		if sym, ok := p.Expr.(*Symbol); ok && !p.Env.IsZero() {
			return rt.symbolMissing(sym, p.Env), nil
		}
	}
	return false, nil
}

// ddIndex recognises ..1, ..2, ...
func ddIndex(name string) (int, bool) {
	if !strings.HasPrefix(name, "..") || len(name) < 3 {
		return 0, false
	}
	n := 0
	for _, c := range name[2:] {
		if c < '0' || c > '9' {
			return 0, false
		}
		n = n*10 + int(c-'0')
	}
	if n == 0 {
		return 0, false
	}
	return n, true
}
