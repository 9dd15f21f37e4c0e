package rcore

import (
	"errors"
	"testing"

	cv "github.com/glycerine/goconvey/convey"
)

func Test200LazyArguments(t *testing.T) {
	cv.Convey("arguments are promises, forced at most once and only when used", t, func() {
		rt, out, _ := newTestRuntime()

		cv.Convey("an unused argument is never evaluated", func() {
			cv.So(evalTrue(rt, `f <- function(x) 1; f(stop("never")) == 1`), cv.ShouldBeTrue)
		})

		cv.Convey("a used argument is evaluated once", func() {
			mustEval(rt, `f <- function(x) { x; x; x }`)
			mustEval(rt, `f(cat("once"))`)
			cv.So(out.String(), cv.ShouldEqual, "once")
		})

		cv.Convey("defaults are evaluated in the function's environment, late", func() {
			cv.So(evalTrue(rt, `f <- function(x, y = x * 2) { x <- 10; y }; f(1) == 20`), cv.ShouldBeTrue)
		})

		cv.Convey("a default that refers to itself is a cyclic promise", func() {
			_, err := rt.EvalString(`f <- function(x = x) x; f()`)
			var re *RError
			cv.So(errors.As(err, &re), cv.ShouldBeTrue)
			cv.So(re.Kind, cv.ShouldEqual, KindCyclicPromise)
			cv.So(re.Msg, cv.ShouldEqual, cyclicPromiseMsg)
		})

		cv.Convey("two promises that need each other are a cycle too", func() {
			_, err := rt.EvalString(`delayedAssign("x", y); delayedAssign("y", x); x`)
			cv.So(IsKind(err, KindCyclicPromise), cv.ShouldBeTrue)
			cv.So(errMsg(err), cv.ShouldEqual, cyclicPromiseMsg)
		})

		cv.Convey("delayedAssign binds a promise forced on first use", func() {
			mustEval(rt, `delayedAssign("z", {cat("forced"); 5})`)
			cv.So(out.String(), cv.ShouldEqual, "")
			cv.So(evalTrue(rt, `z + z == 10`), cv.ShouldBeTrue)
			cv.So(out.String(), cv.ShouldEqual, "forced")
		})
	})
}

func Test201Missing(t *testing.T) {
	cv.Convey("missing() sees through promise chains to the original omission", t, func() {
		rt, _, _ := newTestRuntime()
		mustEval(rt, `f <- function(x) missing(x)`)
		mustEval(rt, `g <- function(y) f(y)`)
		cv.So(evalTrue(rt, `f()`), cv.ShouldBeTrue)
		cv.So(evalTrue(rt, `!f(1)`), cv.ShouldBeTrue)
		cv.So(evalTrue(rt, `g()`), cv.ShouldBeTrue)
		cv.So(evalTrue(rt, `!g(2)`), cv.ShouldBeTrue)

		cv.Convey("a formal with a default is still missing when not supplied", func() {
			cv.So(evalTrue(rt, `h <- function(a = 1) missing(a); h()`), cv.ShouldBeTrue)
		})

		cv.Convey("using a missing argument without default is an error", func() {
			_, err := rt.EvalString(`k <- function(a) a + 1; k()`)
			cv.So(errMsg(err), cv.ShouldEqual, `argument "a" is missing, with no default`)
		})
	})
}

func Test202ClosuresAndScope(t *testing.T) {
	cv.Convey("closures capture their defining environment", t, func() {
		rt, _, _ := newTestRuntime()
		mustEval(rt, `
make_counter <- function() {
    i <- 0
    function() {
        i <<- i + 1
        i
    }
}
counter <- make_counter()
counter()
counter()
`)
		cv.So(evalTrue(rt, `counter() == 3`), cv.ShouldBeTrue)
		cv.So(evalTrue(rt, `!exists("i")`), cv.ShouldBeTrue)

		cv.Convey("recursion works through the global binding", func() {
			cv.So(evalTrue(rt, `fact <- function(n) if (n <= 1) 1 else n * fact(n - 1); fact(10) == 3628800`), cv.ShouldBeTrue)
		})

		cv.Convey("an unbound name is an error naming the object", func() {
			_, err := rt.EvalString(`nope + 1`)
			cv.So(errMsg(err), cv.ShouldEqual, "object 'nope' not found")
		})

		cv.Convey("calling a non function is an error", func() {
			_, err := rt.EvalString(`x <- 1; x(2)`)
			cv.So(errMsg(err), cv.ShouldEqual, `could not find function "x"`)
		})
	})
}

func Test203ControlFlow(t *testing.T) {
	cv.Convey("loops, switch and return behave as in R", t, func() {
		rt, out, _ := newTestRuntime()

		cv.So(evalTrue(rt, `s <- 0; for (i in 1:10) { if (i %% 2 == 0) next; if (i > 7) break; s <- s + i }; s == 16`), cv.ShouldBeTrue)
		cv.So(evalTrue(rt, `n <- 0; while (TRUE) { n <- n + 1; if (n >= 5) break }; n == 5`), cv.ShouldBeTrue)
		cv.So(evalTrue(rt, `n <- 0; repeat { n <- n + 2; if (n > 9) break }; n == 10`), cv.ShouldBeTrue)

		cv.Convey("switch falls through empty alternatives", func() {
			cv.So(evalTrue(rt, `identical(switch("b", a = , b = , c = "C", "other"), "C")`), cv.ShouldBeTrue)
			cv.So(evalTrue(rt, `identical(switch("z", a = 1, "other"), "other")`), cv.ShouldBeTrue)
			cv.So(evalTrue(rt, `is.null(switch("z", a = 1))`), cv.ShouldBeTrue)
			cv.So(evalTrue(rt, `identical(switch(2, "x", "y"), "y")`), cv.ShouldBeTrue)
		})

		cv.Convey("return leaves the function from inside a loop", func() {
			cv.So(evalTrue(rt, `f <- function() { for (i in 1:10) if (i == 3) return(i); 0 }; f() == 3`), cv.ShouldBeTrue)
		})

		cv.Convey("on.exit runs when the function returns", func() {
			mustEval(rt, `f <- function() { on.exit(cat("bye")); cat("hi "); 1 }; f()`)
			cv.So(out.String(), cv.ShouldEqual, "hi bye")
		})

		cv.Convey("if needs a single logical", func() {
			_, err := rt.EvalString(`if (NA) 1`)
			cv.So(errMsg(err), cv.ShouldEqual, "missing value where TRUE/FALSE needed")
			_, err = rt.EvalString(`if (c(TRUE, FALSE)) 1`)
			cv.So(errMsg(err), cv.ShouldEqual, "the condition has length > 1")
		})
	})
}

func Test204Substitute(t *testing.T) {
	cv.Convey("substitute and quote hand back unevaluated expressions", t, func() {
		rt, _, _ := newTestRuntime()
		cv.So(evalTrue(rt, `f <- function(x) substitute(x); identical(f(a + b), quote(a + b))`), cv.ShouldBeTrue)
		cv.So(evalTrue(rt, `identical(deparse(quote(x + y * 2)), "x + y * 2")`), cv.ShouldBeTrue)
		cv.So(evalTrue(rt, `e <- quote(1 + 2); eval(e) == 3`), cv.ShouldBeTrue)
		cv.So(evalTrue(rt, `eval(quote(a * 2), list(a = 21)) == 42`), cv.ShouldBeTrue)
	})
}

func Test205PositionalAndNamedBinding(t *testing.T) {
	cv.Convey("f(c = 9, 1) binds a by position, c by name and leaves b to its default", t, func() {
		rt, out, _ := newTestRuntime()
		mustEval(rt, `f <- function(a, b = {cat("b forced"); 2}, c = 3) list(a = a, b.missing = missing(b), c = c)`)
		cv.So(evalTrue(rt, `identical(f(c = 9, 1), list(a = 1, b.missing = TRUE, c = 9))`), cv.ShouldBeTrue)
		cv.So(out.String(), cv.ShouldEqual, "")

		cv.Convey("the default is forced only when b is used", func() {
			mustEval(rt, `g <- function(a, b = {cat("b forced"); 2}, c = 3) a + b + c`)
			cv.So(evalTrue(rt, `g(c = 9, 1) == 12`), cv.ShouldBeTrue)
			cv.So(out.String(), cv.ShouldEqual, "b forced")
		})
	})
}

func Test206DotDotNAndComposedNames(t *testing.T) {
	cv.Convey("..n picks the nth element of ... and names itself in errors", t, func() {
		rt, _, _ := newTestRuntime()
		mustEval(rt, `f <- function(...) ..2`)
		cv.So(evalTrue(rt, `f(1, 20, 300) == 20`), cv.ShouldBeTrue)

		_, err := rt.EvalString(`f(1)`)
		cv.So(errMsg(err), cv.ShouldEqual, "the ... list contains fewer than 2 elements")

		_, err = rt.EvalString(`f(1, )`)
		cv.So(errMsg(err), cv.ShouldEqual, `argument "..2" is missing, with no default`)
	})

	cv.Convey("c() numbers the elements of an unnamed vector under a tag", t, func() {
		rt, _, _ := newTestRuntime()
		cv.So(evalTrue(rt, `identical(names(c(a = c(1, 2), b = 3)), c("a1", "a2", "b"))`), cv.ShouldBeTrue)
		cv.So(evalTrue(rt, `identical(names(c(a = c(x = 1, 2))), c("a.x", "a2"))`), cv.ShouldBeTrue)
	})
}
