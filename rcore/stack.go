package rcore

import (
	"fmt"
	"strings"
)

type StackElem interface {
	IsStackElem()
}

// Stack is the runtime's LIFO of call frames, and separately of
// condition handlers. Element 0 is the bottom.
type Stack struct {
	tos      int
	elements []StackElem
	Name     string
}

func NewStack(name string) *Stack {
	return &Stack{
		tos:      -1,
		elements: make([]StackElem, 0),
		Name:     name,
	}
}

func (stack *Stack) Clone() *Stack {
	ret := &Stack{Name: stack.Name}
	ret.tos = stack.tos
	ret.elements = make([]StackElem, len(stack.elements))
	copy(ret.elements, stack.elements)
	return ret
}

func (stack *Stack) IsEmpty() bool {
	return stack.tos < 0
}

func (stack *Stack) Push(elem StackElem) {
	n := len(stack.elements)
	switch {
	case stack.tos == n-1:
		stack.tos++
		stack.elements = append(stack.elements, elem)
	case stack.tos > n-1:
		panic(fmt.Sprintf("stack %p is really messed up! tos=%v > "+
			"len(stack.elements)=%v", stack, stack.tos, n))
	default:
		// an aborted operation left entries above tos; drop them now.
		stack.TruncateToSize(stack.tos + 1)
		stack.tos++
		stack.elements = append(stack.elements, elem)
	}
}

func (stack *Stack) Size() int {
	return stack.tos + 1
}

var StackUnderFlowErr = fmt.Errorf("invalid stack access: underflow")

// Get returns the element n below the top; Get(0) is the top.
func (stack *Stack) Get(n int) (StackElem, error) {
	if n < 0 || stack.tos-n < 0 {
		return nil, StackUnderFlowErr
	}
	return stack.elements[stack.tos-n], nil
}

// At returns the element at absolute position i, 0 being the bottom.
func (stack *Stack) At(i int) StackElem {
	return stack.elements[i]
}

// set newsize to 0 to truncate everything
func (stack *Stack) TruncateToSize(newsize int) {
	for i := newsize; i < len(stack.elements); i++ {
		stack.elements[i] = nil
	}
	stack.elements = stack.elements[:newsize]
	stack.tos = newsize - 1
}

// CallFrame records one closure application.
type CallFrame struct {
	Call *Language
	Fn   Value

	// Env is the environment the closure body runs in.
	Env EnvRef

	// SysParent is the environment the call was evaluated from.
	SysParent EnvRef

	// PromArgs are the supplied arguments after `...` expansion, as
	// promises, in call order.
	PromArgs []Arg

	onExit []Value

	// dispatch is set on frames created by UseMethod and NextMethod.
	dispatch *dispatchContext
}

func (f *CallFrame) IsStackElem() {}

func (f *CallFrame) String() string {
	return fmt.Sprintf("frame %s (env %v, sysparent %v)", deparseOneLine(f.Call), f.Env, f.SysParent)
}

func (rt *Runtime) pushFrame(f *CallFrame) {
	rt.frames.Push(f)
}

// popFrame drops the frame pushed when the stack held depth frames,
// along with anything an unwound handler left above it.
func (rt *Runtime) popFrame(depth int) {
	rt.frames.TruncateToSize(depth)
}

func (rt *Runtime) frameCount() int {
	return rt.frames.Size()
}

// frame returns the frame at 0-based position i from the bottom.
func (rt *Runtime) frame(i int) *CallFrame {
	return rt.frames.At(i).(*CallFrame)
}

// CurrentFrame is the innermost closure frame, or nil at top level.
func (rt *Runtime) CurrentFrame() *CallFrame {
	if rt.frames.IsEmpty() {
		return nil
	}
	top, err := rt.frames.Get(0)
	if err != nil {
		return nil
	}
	return top.(*CallFrame)
}

// FrameAt returns frame n counted from 1 at the bottom when n > 0, or n
// frames down from the innermost when n <= 0.
func (rt *Runtime) FrameAt(n int) (*CallFrame, error) {
	size := rt.frameCount()
	idx := n - 1
	if n <= 0 {
		idx = size - 1 + n
	}
	if idx < 0 || idx >= size {
		return nil, errorf(KindEval, "not that many frames on the stack")
	}
	return rt.frame(idx), nil
}

// ParentOf returns the frame that called f, or nil if f was called from
// top level.
func (rt *Runtime) ParentOf(f *CallFrame) *CallFrame {
	k := rt.indexOfFrame(f)
	if k < 0 {
		return nil
	}
	n := rt.sysParent(1, k)
	if n == 0 {
		return nil
	}
	return rt.frame(n - 1)
}

func (rt *Runtime) indexOfFrame(f *CallFrame) int {
	for i := rt.frameCount() - 1; i >= 0; i-- {
		if rt.frame(i) == f {
			return i
		}
	}
	return -1
}

// contextOf finds the frame a frame-introspecting builtin called from env
// reports on: the innermost frame whose callee environment is env. It
// returns -1 for top level.
func (rt *Runtime) contextOf(env EnvRef) int {
	for i := rt.frameCount() - 1; i >= 0; i-- {
		if rt.frame(i).Env == env {
			return i
		}
	}
	return -1
}

// sysParent is the frame number of the caller of the frame n generations
// up from k. 0 means top level.
func (rt *Runtime) sysParent(n int, k int) int {
	for k >= 0 && n > 1 {
		n--
		k--
	}
	if k < 0 {
		return 0
	}
	s := rt.frame(k).SysParent
	if s == rt.GlobalEnv {
		return 0
	}
	j := 0
	for i := k; i >= 0; i-- {
		j++
		if rt.frame(i).Env == s {
			n = j
		}
	}
	n = j - n + 1
	if n < 0 {
		n = 0
	}
	return n
}

// frameIndexFor maps a sys.call/sys.function/sys.frame `which` argument,
// seen from context k, to a 0-based frame index. -1 is top level.
func (rt *Runtime) frameIndexFor(which int, k int) (int, error) {
	var m int
	if which > 0 {
		m = (k + 1) - which
	} else {
		m = -which
	}
	if m < 0 {
		return 0, errorf(KindEval, "not that many frames on the stack")
	}
	target := k - m
	if target < -1 {
		return 0, errorf(KindEval, "not that many frames on the stack")
	}
	return target, nil
}

// parentFrameEnv is parent.frame(n) called from env.
func (rt *Runtime) parentFrameEnv(env EnvRef, n int) EnvRef {
	t := env
	for i := rt.frameCount() - 1; i >= 0; i-- {
		f := rt.frame(i)
		if f.Env == t {
			if n == 1 {
				return f.SysParent
			}
			n--
			t = f.SysParent
		}
	}
	return rt.GlobalEnv
}

// runOnExit runs and clears the on.exit expressions of f.
func (rt *Runtime) runOnExit(f *CallFrame) error {
	exprs := f.onExit
	f.onExit = nil
	var first error
	for _, e := range exprs {
		saved := rt.visible
		_, err := rt.eval(e, f.Env)
		rt.visible = saved
		if err != nil && first == nil {
			first = err
		}
	}
	return first
}

// ShowFrames renders the call stack, innermost first, for the REPL
// .frames command and inspect(). Each frame names its caller's number.
func (rt *Runtime) ShowFrames() string {
	var b strings.Builder
	n := rt.frameCount()
	for i := n - 1; i >= 0; i-- {
		f := rt.frame(i)
		from := 0
		if p := rt.ParentOf(f); p != nil {
			from = rt.indexOfFrame(p) + 1
		}
		fmt.Fprintf(&b, "%d: %s [from %d]\n", i+1, deparseOneLine(f.Call), from)
	}
	return b.String()
}
