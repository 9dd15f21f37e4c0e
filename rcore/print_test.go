package rcore

import (
	"testing"

	cv "github.com/glycerine/goconvey/convey"
)

func printed(rt *Runtime, src string) string {
	return rt.formatValue(mustEval(rt, src))
}

func Test970PrintVectors(t *testing.T) {
	cv.Convey("vectors print with [i] row labels", t, func() {
		rt, _, _ := newTestRuntime()
		cv.So(printed(rt, `1:3`), cv.ShouldEqual, "[1] 1 2 3\n")
		cv.So(printed(rt, `c("a", "bb")`), cv.ShouldEqual, "[1] \"a\"  \"bb\"\n")
		cv.So(printed(rt, `c(TRUE, NA)`), cv.ShouldEqual, "[1] TRUE   NA\n")
		cv.So(printed(rt, `NULL`), cv.ShouldEqual, "NULL\n")
		cv.So(printed(rt, `integer(0)`), cv.ShouldEqual, "integer(0)\n")
		cv.So(printed(rt, `character(0)`), cv.ShouldEqual, "character(0)\n")

		cv.Convey("long vectors wrap with the index of each row", func() {
			s := printed(rt, `1:30`)
			cv.So(s, cv.ShouldStartWith, " [1]  1  2  3")
			cv.So(s, cv.ShouldContainSubstring, "\n[")
		})

		cv.Convey("named vectors print names above values", func() {
			cv.So(printed(rt, `c(a = 1L, bb = 2L)`), cv.ShouldEqual, " a bb\n 1  2\n")
		})

		cv.Convey("other attributes are listed after the data", func() {
			cv.So(printed(rt, `structure(1L, unit = "cm")`), cv.ShouldEqual, "[1] 1\nattr(,\"unit\")\n[1] \"cm\"\n")
		})
	})
}

func Test971PrintListsAndMatrices(t *testing.T) {
	cv.Convey("lists print element by element", t, func() {
		rt, _, _ := newTestRuntime()
		cv.So(printed(rt, `list(1L, "a")`), cv.ShouldEqual, "[[1]]\n[1] 1\n\n[[2]]\n[1] \"a\"\n\n")
		cv.So(printed(rt, `list(x = 1L)`), cv.ShouldEqual, "$x\n[1] 1\n\n")
		cv.So(printed(rt, `list(x = list(y = 2L))`), cv.ShouldEqual, "$x\n$x$y\n[1] 2\n\n\n")
		cv.So(printed(rt, `list()`), cv.ShouldEqual, "list()\n")

		cv.Convey("matrices print as a grid", func() {
			cv.So(printed(rt, `matrix(1:4, 2)`), cv.ShouldEqual, "     [,1] [,2]\n[1,]    1    3\n[2,]    2    4\n")
		})

		cv.Convey("language and functions print as source", func() {
			cv.So(printed(rt, `quote(f(x, y = 2))`), cv.ShouldEqual, "f(x, y = 2)\n")
			cv.So(printed(rt, `as.name("abc")`), cv.ShouldEqual, "abc\n")
			cv.So(printed(rt, `globalenv()`), cv.ShouldEqual, "<environment: R_GlobalEnv>\n")
		})
	})
}

func Test972PrintDispatch(t *testing.T) {
	cv.Convey("objects with a class go through print methods", t, func() {
		rt, out, _ := newTestRuntime()
		mustEval(rt, `print.point <- function(x, ...) { cat("<point ", x$x, ">\n", sep = ""); invisible(x) }`)
		p := mustEval(rt, `structure(list(x = 3), class = "point")`)
		cv.So(rt.PrintValue(p, rt.GlobalEnv), cv.ShouldBeNil)
		cv.So(out.String(), cv.ShouldEqual, "<point 3>\n")

		cv.Convey("and fall back to print.default", func() {
			out.Reset()
			q := mustEval(rt, `structure(2L, class = "other")`)
			cv.So(rt.PrintValue(q, rt.GlobalEnv), cv.ShouldBeNil)
			cv.So(out.String(), cv.ShouldEqual, "[1] 2\nattr(,\"class\")\n[1] \"other\"\n")
		})

		cv.Convey("conditions print with their class and message", func() {
			out.Reset()
			mustEval(rt, `print(simpleError("boom"))`)
			cv.So(out.String(), cv.ShouldEqual, "<simpleError: boom>\n")
		})

		cv.Convey("a classed language object is not evaluated when printed", func() {
			out.Reset()
			mustEval(rt, `print.wrapped <- function(x, ...) cat("wrapped\n")`)
			w := mustEval(rt, `structure(quote(stop("no")), class = "wrapped")`)
			cv.So(rt.PrintValue(w, rt.GlobalEnv), cv.ShouldBeNil)
			cv.So(out.String(), cv.ShouldEqual, "wrapped\n")
		})
	})
}
