package rcore

import (
	"errors"
	"fmt"
)

// ErrorKind classifies evaluation errors.
type ErrorKind int

const (
	KindEval ErrorKind = iota
	KindArgumentMatch
	KindCoercion
	KindCyclicPromise
	KindDispatch
	KindEnvironment
	KindUser
)

func (k ErrorKind) String() string {
	switch k {
	case KindArgumentMatch:
		return "ArgumentMatchError"
	case KindCoercion:
		return "CoercionError"
	case KindCyclicPromise:
		return "CyclicPromiseError"
	case KindDispatch:
		return "DispatchError"
	case KindEnvironment:
		return "EnvironmentError"
	case KindUser:
		return "UserError"
	}
	return "EvalError"
}

var (
	WrongNargs      = errors.New("wrong number of arguments")
	ErrStaleEnv     = errors.New("stale environment handle")
	ErrRuntimeClose = errors.New("runtime is closed")
	ErrNoInput      = errors.New("no expressions found")
)

// RError is an R error condition travelling up the Go stack. Call is the
// call it is reported against ("Error in f(x) : ..."), Nil if none.
type RError struct {
	Kind ErrorKind
	Call Value
	Msg  string

	// Cond is the condition object stop() was given, or one built on
	// demand from Msg and Call.
	Cond *List

	// signaled is set once handlers have seen the condition.
	signaled bool
}

func (e *RError) Error() string {
	if e.Call == nil || e.Call == Value(Nil) {
		return "Error: " + e.Msg
	}
	return fmt.Sprintf("Error in %s : %s", deparseOneLine(e.Call), e.Msg)
}

// Condition returns the R condition object for the error.
func (e *RError) Condition() *List {
	if e.Cond == nil {
		call := e.Call
		if call == nil {
			call = Nil
		}
		e.Cond = makeCondition(e.Msg, call, "simpleError", "error", "condition")
	}
	return e.Cond
}

func errorf(kind ErrorKind, format string, args ...interface{}) *RError {
	return &RError{Kind: kind, Msg: fmt.Sprintf(format, args...)}
}

// withCall fills in the call context of err if it has none.
func withCall(err error, call Value) error {
	var re *RError
	if errors.As(err, &re) && re.Call == nil {
		re.Call = call
	}
	return err
}

// IsKind reports whether err is an *RError of the given kind.
func IsKind(err error, kind ErrorKind) bool {
	var re *RError
	if errors.As(err, &re) {
		return re.Kind == kind
	}
	return false
}

// control flow signals travel as errors until the construct that owns
// them catches them.

type breakSignal struct{}
type nextSignal struct{}

func (breakSignal) Error() string { return "no loop for break/next, jumping to top level" }
func (nextSignal) Error() string  { return "no loop for break/next, jumping to top level" }

// returnSignal unwinds to the closure application whose environment is Env.
type returnSignal struct {
	Env   EnvRef
	Value Value
}

func (r *returnSignal) Error() string { return "no function to return from, jumping to top level" }

// unwindSignal carries a condition to the tryCatch that owns target.
type unwindSignal struct {
	target  *handlerEntry
	cond    Value
	handler Value
}

func (u *unwindSignal) Error() string { return "unwinding to tryCatch" }

// restartSignal is invokeRestart travelling to its establishing point.
type restartSignal struct {
	name  string
	token *restartEntry
}

func (r *restartSignal) Error() string { return fmt.Sprintf("no 'restart' '%s' found", r.name) }

// warnSink collects warnings raised below a builtin; they are signalled
// when control returns to the evaluator.
type warnSink interface {
	warnf(format string, args ...interface{})
}
