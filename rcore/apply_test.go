package rcore

import (
	"testing"

	cv "github.com/glycerine/goconvey/convey"
)

func Test980Lapply(t *testing.T) {
	cv.Convey("lapply and sapply call FUN on every element", t, func() {
		rt, _, _ := newTestRuntime()
		cv.So(evalTrue(rt, `identical(lapply(1:3, function(x) x * 2), list(2, 4, 6))`), cv.ShouldBeTrue)
		cv.So(evalTrue(rt, `identical(lapply(list(a = 1, b = 2), "+", 10), list(a = 11, b = 12))`), cv.ShouldBeTrue)
		cv.So(evalTrue(rt, `identical(sapply(1:3, function(x) x^2), c(1, 4, 9))`), cv.ShouldBeTrue)
		cv.So(evalTrue(rt, `identical(sapply(c("a", "bb"), nchar), c(a = 1L, bb = 2L))`), cv.ShouldBeTrue)
		cv.So(evalTrue(rt, `identical(dim(sapply(1:2, function(i) c(i, i * 10))), c(2L, 2L))`), cv.ShouldBeTrue)
		cv.So(evalTrue(rt, `identical(sapply(list(), length), list())`), cv.ShouldBeTrue)
		cv.So(evalTrue(rt, `identical(sapply(1:2, function(i) list(i)), list(1L, 2L))`), cv.ShouldBeTrue)

		cv.Convey("FUN that is not a function is reported", func() {
			_, err := rt.EvalString(`lapply(1:2, 5)`)
			cv.So(errMsg(err), cv.ShouldEqual, "'5' is not a function, character or symbol")
		})
	})
}

func Test981Vapply(t *testing.T) {
	cv.Convey("vapply checks every result against FUN.VALUE", t, func() {
		rt, _, _ := newTestRuntime()
		cv.So(evalTrue(rt, `identical(vapply(1:3, function(x) x * 2, numeric(1)), c(2, 4, 6))`), cv.ShouldBeTrue)
		cv.So(evalTrue(rt, `identical(vapply(c(a = 1, b = 2), function(x) x > 1, logical(1)), c(a = FALSE, b = TRUE))`), cv.ShouldBeTrue)
		cv.So(evalTrue(rt, `identical(dim(vapply(1:3, function(x) c(x, x), integer(2))), c(2L, 3L))`), cv.ShouldBeTrue)

		cv.Convey("a result of the wrong type", func() {
			_, err := rt.EvalString(`vapply(1:2, function(x) "a", numeric(1))`)
			cv.So(errMsg(err), cv.ShouldEqual, "values must be type 'double',\n but FUN(X[[1]]) result is type 'character'")
		})
		cv.Convey("a result of the wrong length", func() {
			_, err := rt.EvalString(`vapply(1:2, function(x) c(x, x), numeric(1))`)
			cv.So(errMsg(err), cv.ShouldEqual, "values must be length 1,\n but FUN(X[[1]]) result is length 2")
		})
	})
}

func Test982DoCall(t *testing.T) {
	cv.Convey("do.call builds and runs a call from a list", t, func() {
		rt, _, _ := newTestRuntime()
		cv.So(evalTrue(rt, `do.call("sum", list(1, 2, 3)) == 6`), cv.ShouldBeTrue)
		cv.So(evalTrue(rt, `identical(do.call(paste, list("a", "b", sep = "-")), "a-b")`), cv.ShouldBeTrue)
		cv.So(evalTrue(rt, `f <- function(x, y) x - y; do.call(f, list(y = 1, x = 10)) == 9`), cv.ShouldBeTrue)

		cv.Convey("language arguments reach a closure unevaluated", func() {
			cv.So(evalTrue(rt, `g <- function(x) substitute(x); identical(do.call(g, list(quote(a + b))), quote(a + b))`), cv.ShouldBeTrue)
		})

		cv.Convey("the function is looked up in envir", func() {
			mustEval(rt, `e <- new.env(); assign("h", function() "from e", envir = e)`)
			cv.So(evalTrue(rt, `identical(do.call("h", list(), envir = e), "from e")`), cv.ShouldBeTrue)
		})

		cv.Convey("args must be a list", func() {
			_, err := rt.EvalString(`do.call("sum", 1)`)
			cv.So(errMsg(err), cv.ShouldEqual, "second argument must be a list")
		})
	})
}

func Test983MatchArg(t *testing.T) {
	cv.Convey("match.arg picks from the formal's default choices", t, func() {
		rt, _, _ := newTestRuntime()
		mustEval(rt, `f <- function(type = c("linear", "quadratic", "cubic")) match.arg(type)`)
		cv.So(evalTrue(rt, `identical(f(), "linear")`), cv.ShouldBeTrue)
		cv.So(evalTrue(rt, `identical(f("quad"), "quadratic")`), cv.ShouldBeTrue)
		cv.So(evalTrue(rt, `identical(match.arg("b", c("apple", "banana")), "banana")`), cv.ShouldBeTrue)
		cv.So(evalTrue(rt, `identical(match.arg(c("a", "c"), c("a", "b", "c"), several.ok = TRUE), c("a", "c"))`), cv.ShouldBeTrue)

		cv.Convey("a value that matches nothing lists the choices", func() {
			_, err := rt.EvalString(`f("z")`)
			cv.So(errMsg(err), cv.ShouldEqual, "'arg' should be one of “linear”, “quadratic”, “cubic”")
		})

		cv.Convey("match.fun finds functions by name", func() {
			cv.So(evalTrue(rt, `identical(match.fun("f"), f)`), cv.ShouldBeTrue)
			cv.So(evalTrue(rt, `is.function(match.fun(sum))`), cv.ShouldBeTrue)
		})
	})
}
