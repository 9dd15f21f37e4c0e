package rcore

import (
	"testing"

	cv "github.com/glycerine/goconvey/convey"
)

func Test500UseMethod(t *testing.T) {
	cv.Convey("UseMethod picks the method for the first matching class", t, func() {
		rt, out, _ := newTestRuntime()
		mustEval(rt, `
area <- function(s, ...) UseMethod("area")
area.square <- function(s, ...) s$side^2
area.default <- function(s, ...) 0
`)
		cv.So(evalTrue(rt, `sq <- structure(list(side = 3), class = "square"); area(sq) == 9`), cv.ShouldBeTrue)
		cv.So(evalTrue(rt, `area(1) == 0`), cv.ShouldBeTrue)

		cv.Convey("implicit classes take part in dispatch", func() {
			mustEval(rt, `kind <- function(x) UseMethod("kind"); kind.integer <- function(x) "int"; kind.numeric <- function(x) "num"; kind.matrix <- function(x) "mat"`)
			cv.So(evalTrue(rt, `identical(kind(1L), "int")`), cv.ShouldBeTrue)
			cv.So(evalTrue(rt, `identical(kind(2.5), "num")`), cv.ShouldBeTrue)
			cv.So(evalTrue(rt, `identical(kind(matrix(1:4, 2)), "mat")`), cv.ShouldBeTrue)
		})

		cv.Convey("the generic does not continue after UseMethod", func() {
			mustEval(rt, `h <- function(x) { UseMethod("h"); cat("never") }; h.default <- function(x) "d"`)
			cv.So(evalTrue(rt, `identical(h(1), "d")`), cv.ShouldBeTrue)
			cv.So(out.String(), cv.ShouldEqual, "")
		})

		cv.Convey("no method and no default is an error naming the classes", func() {
			_, err := rt.EvalString(`g <- function(x) UseMethod("g"); g(1)`)
			cv.So(errMsg(err), cv.ShouldEqual, `no applicable method for 'g' applied to an object of class "c('double', 'numeric')"`)
			cv.So(IsKind(err, KindDispatch), cv.ShouldBeTrue)
			_, err = rt.EvalString(`g(structure(1, class = "thing"))`)
			cv.So(errMsg(err), cv.ShouldEqual, `no applicable method for 'g' applied to an object of class "thing"`)
		})

		cv.Convey("a method sees the generic's arguments, not re-evaluated", func() {
			mustEval(rt, `twice <- function(x) UseMethod("twice"); twice.default <- function(x) c(x, x)`)
			mustEval(rt, `twice({cat("eval "); 1})`)
			cv.So(out.String(), cv.ShouldEqual, "eval ")
		})
	})
}

func Test501NextMethod(t *testing.T) {
	cv.Convey("NextMethod walks the rest of the class vector", t, func() {
		rt, _, _ := newTestRuntime()
		mustEval(rt, `
describe <- function(x) UseMethod("describe")
describe.child <- function(x) c("child", NextMethod())
describe.parent <- function(x) c("parent", NextMethod())
describe.default <- function(x) "default"
obj <- structure(1, class = c("child", "parent"))
`)
		cv.So(evalTrue(rt, `identical(describe(obj), c("child", "parent", "default"))`), cv.ShouldBeTrue)

		cv.Convey("changes a method makes to its arguments are passed on", func() {
			mustEval(rt, `m <- function(x) UseMethod("m"); m.a <- function(x) { x <- unclass(x) + 1; NextMethod() }; m.default <- function(x) x`)
			cv.So(evalTrue(rt, `identical(m(structure(1, class = "a")), 2)`), cv.ShouldBeTrue)
		})

		cv.Convey("the dispatch variables are visible in the method", func() {
			mustEval(rt, `who <- function(x) UseMethod("who"); who.child <- function(x) list(.Generic, .Class)`)
			cv.So(evalTrue(rt, `identical(who(obj), list("who", c("child", "parent")))`), cv.ShouldBeTrue)
		})

		cv.Convey("outside a method it is an error", func() {
			_, err := rt.EvalString(`f <- function() NextMethod(); f()`)
			cv.So(errMsg(err), cv.ShouldEqual, "NextMethod called from outside a method dispatch")
		})
	})
}

func Test502OpsGroup(t *testing.T) {
	cv.Convey("operators dispatch on the class of either operand", t, func() {
		rt, _, _ := newTestRuntime()
		mustEval(rt, `"+.money" <- function(e1, e2) structure(unclass(e1) + unclass(e2), class = "money")`)
		mustEval(rt, `a <- structure(5, class = "money")`)
		cv.So(evalTrue(rt, `b <- a + a; inherits(b, "money") && unclass(b) == 10`), cv.ShouldBeTrue)
		cv.So(evalTrue(rt, `inherits(1 + a, "money")`), cv.ShouldBeTrue)

		cv.Convey("the Ops group method serves every operator", func() {
			mustEval(rt, `Ops.temp <- function(e1, e2) get(.Generic)(unclass(e1), unclass(e2))`)
			mustEval(rt, `t1 <- structure(3, class = "temp")`)
			cv.So(evalTrue(rt, `identical(t1 * 2, 6)`), cv.ShouldBeTrue)
			cv.So(evalTrue(rt, `identical(t1 > 1, TRUE)`), cv.ShouldBeTrue)
			cv.So(evalTrue(rt, `identical(t1 - 1, 2)`), cv.ShouldBeTrue)
		})

		cv.Convey("internal generics dispatch too", func() {
			mustEval(rt, `length.stack <- function(x) 99L`)
			cv.So(evalTrue(rt, `length(structure(list(), class = "stack")) == 99`), cv.ShouldBeTrue)
			cv.So(evalTrue(rt, `length(list(1, 2)) == 2`), cv.ShouldBeTrue)
		})
	})
}

func Test503RegisterS3Method(t *testing.T) {
	cv.Convey("registered methods are found from any environment", t, func() {
		rt, _, _ := newTestRuntime()
		mustEval(rt, `area <- function(s) UseMethod("area")`)
		mustEval(rt, `local({ area.tri <- function(s) "tri"; registerS3method("area", "tri", area.tri) })`)
		cv.So(evalTrue(rt, `!exists("area.tri")`), cv.ShouldBeTrue)
		cv.So(evalTrue(rt, `identical(area(structure(list(), class = "tri")), "tri")`), cv.ShouldBeTrue)

		cv.Convey("a visible method takes precedence over the registry", func() {
			mustEval(rt, `area.tri <- function(s) "local"`)
			cv.So(evalTrue(rt, `identical(area(structure(list(), class = "tri")), "local")`), cv.ShouldBeTrue)
		})

		cv.Convey("from Go as well", func() {
			fn := mustEval(rt, `function(s) "sq"`)
			rt.RegisterS3Method("area", "sq", fn)
			cv.So(evalTrue(rt, `identical(area(structure(list(), class = "sq")), "sq")`), cv.ShouldBeTrue)
		})
	})
}

func Test504Inherits(t *testing.T) {
	cv.Convey("inherits checks the class vector", t, func() {
		rt, _, _ := newTestRuntime()
		mustEval(rt, `x <- structure(1, class = c("a", "b"))`)
		cv.So(evalTrue(rt, `inherits(x, "b")`), cv.ShouldBeTrue)
		cv.So(evalTrue(rt, `!inherits(x, "numeric")`), cv.ShouldBeTrue)
		cv.So(evalTrue(rt, `identical(inherits(x, c("z", "b"), which = TRUE), c(0L, 2L))`), cv.ShouldBeTrue)
		cv.So(evalTrue(rt, `inherits(1, "numeric") && inherits(matrix(1), "matrix")`), cv.ShouldBeTrue)
		cv.So(evalTrue(rt, `identical(class(unclass(x)), "numeric")`), cv.ShouldBeTrue)
	})
}
