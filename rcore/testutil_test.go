package rcore

import (
	"bytes"
	"errors"
)

// newTestRuntime returns a runtime whose output and warnings go to
// buffers the test can inspect.
func newTestRuntime() (rt *Runtime, out *bytes.Buffer, errOut *bytes.Buffer) {
	cfg := NewConfig("rcore-test")
	rt = NewRuntime(cfg)
	out = &bytes.Buffer{}
	errOut = &bytes.Buffer{}
	rt.Out = out
	rt.Err = errOut
	return
}

func mustEval(rt *Runtime, src string) Value {
	v, err := rt.EvalString(src)
	if err != nil {
		panic(err)
	}
	return v
}

// isTrue reports whether v is the scalar TRUE.
func isTrue(v Value) bool {
	l, ok := v.(*Logical)
	return ok && len(l.V) == 1 && l.V[0] == 1
}

func evalTrue(rt *Runtime, src string) bool {
	v, err := rt.EvalString(src)
	if err != nil {
		P("evalTrue(%q): %v", src, err)
		return false
	}
	return isTrue(v)
}

// errMsg is the message of the R error err carries, "" for nil.
func errMsg(err error) string {
	if err == nil {
		return ""
	}
	var re *RError
	if errors.As(err, &re) {
		return re.Msg
	}
	return err.Error()
}
