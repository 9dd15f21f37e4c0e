package rcore

import (
	"strings"
	"testing"

	cv "github.com/glycerine/goconvey/convey"
)

func Test300SysCallAndFunction(t *testing.T) {
	cv.Convey("sys.call and sys.function describe the running closure", t, func() {
		rt, _, _ := newTestRuntime()
		cv.So(evalTrue(rt, `f <- function(x, y) sys.call(); identical(f(1, y = 2), quote(f(1, y = 2)))`), cv.ShouldBeTrue)
		cv.So(evalTrue(rt, `g <- function() sys.function(); identical(g(), g)`), cv.ShouldBeTrue)
		cv.So(evalTrue(rt, `is.null(sys.call())`), cv.ShouldBeTrue)

		cv.Convey("sys.function outside any closure is an error", func() {
			_, err := rt.EvalString(`sys.function()`)
			cv.So(errMsg(err), cv.ShouldEqual, "not that many frames on the stack")
		})
	})
}

func Test301FrameCounting(t *testing.T) {
	cv.Convey("frame numbers follow the closure a promise belongs to", t, func() {
		rt, _, _ := newTestRuntime()
		mustEval(rt, `f <- function(x = sys.nframe()) x`)
		cv.So(evalTrue(rt, `f() == 1`), cv.ShouldBeTrue)
		cv.So(evalTrue(rt, `sys.nframe() == 0`), cv.ShouldBeTrue)

		cv.Convey("a default is forced in its own frame", func() {
			cv.So(evalTrue(rt, `g <- function() f(); g() == 2`), cv.ShouldBeTrue)
		})
		cv.Convey("a supplied argument is forced in the caller's frame", func() {
			cv.So(evalTrue(rt, `g <- function() f(sys.nframe()); g() == 1`), cv.ShouldBeTrue)
		})
		cv.Convey("nargs counts the supplied arguments only", func() {
			cv.So(evalTrue(rt, `h <- function(a, b, c = 3) nargs(); h(1, 2) == 2`), cv.ShouldBeTrue)
		})
	})
}

func Test302ParentFrame(t *testing.T) {
	cv.Convey("parent.frame is the environment the closure was called from", t, func() {
		rt, _, _ := newTestRuntime()
		mustEval(rt, `g <- function() parent.frame()`)
		cv.So(evalTrue(rt, `identical(g(), globalenv())`), cv.ShouldBeTrue)
		cv.So(evalTrue(rt, `h <- function() identical(g(), environment()); h()`), cv.ShouldBeTrue)

		cv.Convey("so assign can reach into the caller", func() {
			mustEval(rt, `setter <- function() assign("made", 7, envir = parent.frame())`)
			cv.So(evalTrue(rt, `k <- function() { setter(); made }; k() == 7`), cv.ShouldBeTrue)
			cv.So(evalTrue(rt, `!exists("made")`), cv.ShouldBeTrue)
		})

		cv.Convey("n must be positive", func() {
			_, err := rt.EvalString(`parent.frame(0)`)
			cv.So(errMsg(err), cv.ShouldEqual, "invalid 'n' value")
		})
	})
}

func Test303MatchCallAndRecall(t *testing.T) {
	cv.Convey("match.call names every argument by its formal", t, func() {
		rt, _, _ := newTestRuntime()
		mustEval(rt, `f <- function(x, y, ...) match.call()`)
		cv.So(evalTrue(rt, `identical(f(1, z = 3, 2), quote(f(x = 1, y = 2, z = 3)))`), cv.ShouldBeTrue)
		cv.So(evalTrue(rt, `identical(f(y = a, b), quote(f(x = b, y = a)))`), cv.ShouldBeTrue)

		cv.Convey("dots passed down are expanded in place", func() {
			cv.So(evalTrue(rt, `g <- function(...) f(...); identical(g(1, 2, w = 9), quote(f(x = 1, y = 2, w = 9)))`), cv.ShouldBeTrue)
		})

		cv.Convey("at top level it is an error", func() {
			_, err := rt.EvalString(`match.call()`)
			cv.So(errMsg(err), cv.ShouldEqual, "match.call() was called from outside a function")
		})

		cv.Convey("Recall calls the running function again", func() {
			cv.So(evalTrue(rt, `fib <- function(n) if (n < 2) n else Recall(n - 1) + Recall(n - 2); fib(10) == 55`), cv.ShouldBeTrue)
		})
	})
}

func Test304FramesAreUnwoundAfterErrors(t *testing.T) {
	cv.Convey("an error at depth leaves no frames behind", t, func() {
		rt, _, _ := newTestRuntime()
		_, err := rt.EvalString(`f <- function() g(); g <- function() stop("deep"); f()`)
		cv.So(errMsg(err), cv.ShouldEqual, "deep")
		cv.So(rt.ShowFrames(), cv.ShouldEqual, "")
		cv.So(evalTrue(rt, `sys.nframe() == 0`), cv.ShouldBeTrue)
	})
}

const callChain = `
foo <- function() list(parent = c(sys.parent(1), sys.parent(2), sys.parent(3), sys.parent(4), sys.parent(5)),
                       parents = sys.parents(), nframe = sys.nframe())
bar <- function() foo()
boo <- function() bar()
callboo <- function() boo()
fun <- function() callboo()
`

func Test305SysParentChain(t *testing.T) {
	cv.Convey("sys.parent(n) walks n callers up a five deep chain", t, func() {
		rt, _, _ := newTestRuntime()
		mustEval(rt, callChain)
		mustEval(rt, `r <- fun()`)
		cv.So(evalTrue(rt, `identical(r$parent, c(4L, 3L, 2L, 1L, 0L))`), cv.ShouldBeTrue)
		cv.So(evalTrue(rt, `r$nframe == 5L`), cv.ShouldBeTrue)

		cv.Convey("sys.parents lists the caller of every frame", func() {
			cv.So(evalTrue(rt, `identical(r$parents, c(0L, 1L, 2L, 3L, 4L))`), cv.ShouldBeTrue)
		})

		cv.Convey("sys.parent(n + 1) is the parent of sys.parent(n)", func() {
			cv.So(evalTrue(rt, `all(sapply(1:4, function(n) r$parents[r$parent[n]] == r$parent[n + 1]))`), cv.ShouldBeTrue)
		})

		cv.Convey("at top level every parent is 0", func() {
			cv.So(evalTrue(rt, `sys.parent() == 0L && length(sys.parents()) == 0L`), cv.ShouldBeTrue)
		})
	})
}

func Test306DoCallFrames(t *testing.T) {
	cv.Convey("do.call adds no frame of its own", t, func() {
		rt, _, _ := newTestRuntime()
		mustEval(rt, `g <- function() c(sys.parent(), sys.nframe())`)
		mustEval(rt, `h <- function() do.call(g, list())`)

		cv.So(evalTrue(rt, `identical(do.call(g, list()), c(0L, 1L))`), cv.ShouldBeTrue)
		cv.So(evalTrue(rt, `identical(h(), c(1L, 2L))`), cv.ShouldBeTrue)
		cv.So(evalTrue(rt, `k <- function() do.call("g", list()); identical(k(), c(1L, 2L))`), cv.ShouldBeTrue)

		cv.Convey("the callee's parent.frame is envir", func() {
			mustEval(rt, `pf <- function() parent.frame()`)
			cv.So(evalTrue(rt, `m <- function() identical(do.call(pf, list()), environment()); m()`), cv.ShouldBeTrue)
			cv.So(evalTrue(rt, `e <- new.env(); identical(do.call(pf, list(), envir = e), e)`), cv.ShouldBeTrue)
		})
	})
}

func Test307FrameAPI(t *testing.T) {
	cv.Convey("CurrentFrame, FrameAt and ParentOf expose the stack to Go", t, func() {
		rt, out, _ := newTestRuntime()
		mustEval(rt, callChain)
		mustEval(rt, `foo <- function() stackNow()`)

		var calls, fromBottom []string
		var relative string
		var shown string
		var err error
		stackNow := &Builtin{Name: "stackNow", Fn: func(rt *Runtime, bc *BuiltinCall) (Value, error) {
			for f := rt.CurrentFrame(); f != nil; f = rt.ParentOf(f) {
				calls = append(calls, deparseOneLine(f.Call))
			}
			for n := 1; n <= 5; n++ {
				f, ferr := rt.FrameAt(n)
				if ferr != nil {
					err = ferr
					break
				}
				fromBottom = append(fromBottom, deparseOneLine(f.Call))
			}
			if f, ferr := rt.FrameAt(-1); ferr == nil {
				relative = deparseOneLine(f.Call)
			}
			shown = rt.ShowFrames()
			return Nil, nil
		}}
		cv.So(rt.Define(rt.GlobalEnv, "stackNow", stackNow), cv.ShouldBeNil)
		mustEval(rt, `fun()`)

		cv.So(err, cv.ShouldBeNil)
		cv.So(calls, cv.ShouldResemble, []string{"foo()", "bar()", "boo()", "callboo()", "fun()"})
		cv.So(fromBottom, cv.ShouldResemble, []string{"fun()", "callboo()", "boo()", "bar()", "foo()"})
		cv.So(relative, cv.ShouldEqual, "bar()")
		cv.So(shown, cv.ShouldStartWith, "5: foo() [from 4]\n4: bar() [from 3]\n")
		cv.So(shown, cv.ShouldEndWith, "1: fun() [from 0]\n")

		cv.Convey("which is empty at top level", func() {
			cv.So(rt.CurrentFrame(), cv.ShouldBeNil)
			_, err := rt.FrameAt(1)
			cv.So(errMsg(err), cv.ShouldEqual, "not that many frames on the stack")
		})

		cv.Convey("inspect() with no argument prints the same stack", func() {
			mustEval(rt, `foo <- function() inspect()`)
			mustEval(rt, `fun()`)
			cv.So(strings.Count(out.String(), "[from "), cv.ShouldEqual, 5)
			cv.So(out.String(), cv.ShouldContainSubstring, "3: boo() [from 2]")
		})
	})
}
