package rcore

import (
	"testing"

	cv "github.com/glycerine/goconvey/convey"
)

func Test600VectorSubset(t *testing.T) {
	cv.Convey("[ selects by position, negation, logical mask and name", t, func() {
		rt, _, _ := newTestRuntime()
		mustEval(rt, `x <- c(10, 20, 30)`)
		cv.So(evalTrue(rt, `identical(x[2], 20)`), cv.ShouldBeTrue)
		cv.So(evalTrue(rt, `identical(x[-1], c(20, 30))`), cv.ShouldBeTrue)
		cv.So(evalTrue(rt, `identical(x[c(TRUE, FALSE)], c(10, 30))`), cv.ShouldBeTrue)
		cv.So(evalTrue(rt, `is.na(x[5])`), cv.ShouldBeTrue)
		cv.So(evalTrue(rt, `identical(x[0], numeric(0))`), cv.ShouldBeTrue)
		cv.So(evalTrue(rt, `identical(x[], x)`), cv.ShouldBeTrue)

		cv.Convey("names travel with the selected elements", func() {
			mustEval(rt, `names(x) <- c("a", "b", "c")`)
			cv.So(evalTrue(rt, `identical(x[["b"]], 20)`), cv.ShouldBeTrue)
			cv.So(evalTrue(rt, `identical(x["c"], c(c = 30))`), cv.ShouldBeTrue)
		})

		cv.Convey("subscript errors", func() {
			_, err := rt.EvalString(`x[[5]]`)
			cv.So(errMsg(err), cv.ShouldEqual, "subscript out of bounds")
			_, err = rt.EvalString(`x[c(-1, 2)]`)
			cv.So(errMsg(err), cv.ShouldEqual, "can't mix positive and negative subscripts")
			_, err = rt.EvalString(`x[[1:2]]`)
			cv.So(errMsg(err), cv.ShouldEqual, "attempt to select more than one element in vectorIndex")
			_, err = rt.EvalString(`x$a`)
			cv.So(errMsg(err), cv.ShouldEqual, "$ operator is invalid for atomic vectors")
		})
	})
}

func Test601VectorSubassign(t *testing.T) {
	cv.Convey("replacement grows, coerces and copies", t, func() {
		rt, _, errOut := newTestRuntime()
		cv.So(evalTrue(rt, `y <- 1:3; y[5] <- 10L; identical(y, c(1L, 2L, 3L, NA, 10L))`), cv.ShouldBeTrue)
		cv.So(evalTrue(rt, `y <- 1:3; y[2] <- 2.5; identical(y, c(1, 2.5, 3))`), cv.ShouldBeTrue)
		cv.So(evalTrue(rt, `a <- c(1, 2); b <- a; b[1] <- 99; a[1] == 1`), cv.ShouldBeTrue)

		cv.Convey("a replacement function on a replacement target", func() {
			mustEval(rt, `x <- c(a = 1, b = 2, c = 3); names(x)[2] <- "B"`)
			cv.So(evalTrue(rt, `identical(names(x), c("a", "B", "c"))`), cv.ShouldBeTrue)
			mustEval(rt, `attr(x, "unit") <- "cm"`)
			cv.So(evalTrue(rt, `identical(attr(x, "unit"), "cm")`), cv.ShouldBeTrue)
		})

		cv.Convey("a short replacement is recycled with a warning", func() {
			mustEval(rt, `z <- 1:4; z[1:3] <- 1:2`)
			cv.So(evalTrue(rt, `identical(z, c(1L, 2L, 1L, 4L))`), cv.ShouldBeTrue)
			cv.So(errOut.String(), cv.ShouldContainSubstring, "number of items to replace is not a multiple of replacement length")
		})

		cv.Convey("assigning into an unbound name is an error", func() {
			_, err := rt.EvalString(`nope[1] <- 2`)
			cv.So(errMsg(err), cv.ShouldEqual, "object 'nope' not found")
		})
	})
}

func Test602Lists(t *testing.T) {
	cv.Convey("lists are indexed by [[, $ and [", t, func() {
		rt, _, _ := newTestRuntime()
		mustEval(rt, `l <- list(a = 1, b = "x")`)
		cv.So(evalTrue(rt, `identical(l[["b"]], "x")`), cv.ShouldBeTrue)
		cv.So(evalTrue(rt, `identical(l["a"], list(a = 1))`), cv.ShouldBeTrue)
		cv.So(evalTrue(rt, `is.null(l$zz) && is.null(l[["zz"]])`), cv.ShouldBeTrue)
		cv.So(evalTrue(rt, `list(alpha = 1)$al == 1`), cv.ShouldBeTrue)

		cv.Convey("assigning NULL drops an element", func() {
			mustEval(rt, `l$c <- TRUE`)
			cv.So(evalTrue(rt, `length(l) == 3`), cv.ShouldBeTrue)
			mustEval(rt, `l$b <- NULL`)
			cv.So(evalTrue(rt, `identical(names(l), c("a", "c"))`), cv.ShouldBeTrue)
		})

		cv.Convey("list(NULL) stores a NULL element", func() {
			mustEval(rt, `l["b"] <- list(NULL)`)
			cv.So(evalTrue(rt, `length(l) == 2 && is.null(l$b)`), cv.ShouldBeTrue)
		})

		cv.Convey("nested replacement updates the inner list", func() {
			mustEval(rt, `n <- list(inner = list(v = 1)); n$inner$v <- 2`)
			cv.So(evalTrue(rt, `n$inner$v == 2`), cv.ShouldBeTrue)
			cv.So(evalTrue(rt, `n[[c("inner", "v")]] == 2`), cv.ShouldBeTrue)
		})
	})
}

func Test603Matrices(t *testing.T) {
	cv.Convey("a matrix is indexed by row and column", t, func() {
		rt, _, _ := newTestRuntime()
		mustEval(rt, `m <- matrix(1:6, nrow = 2)`)
		cv.So(evalTrue(rt, `m[2, 3] == 6`), cv.ShouldBeTrue)
		cv.So(evalTrue(rt, `identical(m[1, ], c(1L, 3L, 5L))`), cv.ShouldBeTrue)
		cv.So(evalTrue(rt, `identical(dim(m[, 2:3]), c(2L, 2L))`), cv.ShouldBeTrue)
		cv.So(evalTrue(rt, `identical(dim(m), c(2L, 3L))`), cv.ShouldBeTrue)

		cv.Convey("out of range rows are an error", func() {
			_, err := rt.EvalString(`m[3, 1]`)
			cv.So(errMsg(err), cv.ShouldEqual, "subscript out of bounds")
			_, err = rt.EvalString(`m[1, 1, 1]`)
			cv.So(errMsg(err), cv.ShouldEqual, "incorrect number of dimensions")
		})

		cv.Convey("and assigned the same way", func() {
			mustEval(rt, `m[1, 2] <- 0L`)
			cv.So(evalTrue(rt, `identical(m[1, ], c(1L, 0L, 5L))`), cv.ShouldBeTrue)
		})
	})
}

func Test604EnvironmentIndexing(t *testing.T) {
	cv.Convey("$ and [[ read and write environment bindings", t, func() {
		rt, _, _ := newTestRuntime()
		mustEval(rt, `e <- new.env(); e$k <- 5; e[["j"]] <- 6`)
		cv.So(evalTrue(rt, `e[["k"]] + e$j == 11`), cv.ShouldBeTrue)
		cv.So(evalTrue(rt, `is.null(e$missing)`), cv.ShouldBeTrue)
		cv.So(evalTrue(rt, `f <- function(env) env$k <- 100; f(e); e$k == 100`), cv.ShouldBeTrue)
	})
}
