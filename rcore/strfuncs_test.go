package rcore

import (
	"testing"

	cv "github.com/glycerine/goconvey/convey"
)

func Test960Paste(t *testing.T) {
	cv.Convey("paste recycles and joins its arguments", t, func() {
		rt, _, _ := newTestRuntime()
		cv.So(evalTrue(rt, `identical(paste("a", 1:2), c("a 1", "a 2"))`), cv.ShouldBeTrue)
		cv.So(evalTrue(rt, `identical(paste0("x", 1:3, collapse = "+"), "x1+x2+x3")`), cv.ShouldBeTrue)
		cv.So(evalTrue(rt, `identical(paste("a", "b", sep = "-"), "a-b")`), cv.ShouldBeTrue)
		cv.So(evalTrue(rt, `identical(paste("v", NA), "v NA")`), cv.ShouldBeTrue)
		cv.So(evalTrue(rt, `identical(paste(quote(x + y)), "x + y")`), cv.ShouldBeTrue)
		cv.So(evalTrue(rt, `identical(paste(character(0), collapse = ""), "")`), cv.ShouldBeTrue)
	})
}

func Test961StringFunctions(t *testing.T) {
	cv.Convey("nchar, substr and case conversion", t, func() {
		rt, _, _ := newTestRuntime()
		cv.So(evalTrue(rt, `identical(nchar(c("abc", "", NA)), c(3L, 0L, NA))`), cv.ShouldBeTrue)
		cv.So(evalTrue(rt, `nchar(NA) == 2`), cv.ShouldBeTrue)
		cv.So(evalTrue(rt, `nchar("héllo") == 5 && nchar("héllo", type = "bytes") == 6`), cv.ShouldBeTrue)
		cv.So(evalTrue(rt, `identical(substr("abcdef", 2, 4), "bcd")`), cv.ShouldBeTrue)
		cv.So(evalTrue(rt, `identical(substr("abc", 3, 10), "c")`), cv.ShouldBeTrue)
		cv.So(evalTrue(rt, `identical(toupper(c(a = "x")), c(a = "X")) && identical(tolower("MiXeD"), "mixed")`), cv.ShouldBeTrue)
	})
}

func Test962Sprintf(t *testing.T) {
	cv.Convey("sprintf is vectorised over format and arguments", t, func() {
		rt, _, _ := newTestRuntime()
		cv.So(evalTrue(rt, `identical(sprintf("%d items", 3L), "3 items")`), cv.ShouldBeTrue)
		cv.So(evalTrue(rt, `identical(sprintf("%d", 3), "3")`), cv.ShouldBeTrue)
		cv.So(evalTrue(rt, `identical(sprintf("%5.2f", 3.14159), " 3.14")`), cv.ShouldBeTrue)
		cv.So(evalTrue(rt, `identical(sprintf("%s-%d", c("a", "b"), 1:2), c("a-1", "b-2"))`), cv.ShouldBeTrue)
		cv.So(evalTrue(rt, `identical(sprintf("100%%"), "100%")`), cv.ShouldBeTrue)
		cv.So(evalTrue(rt, `identical(sprintf("%d", NA_integer_), "NA")`), cv.ShouldBeTrue)
		cv.So(evalTrue(rt, `identical(sprintf("%f", pi), "3.141593")`), cv.ShouldBeTrue)

		cv.Convey("with R's complaints about mismatched formats", func() {
			_, err := rt.EvalString(`sprintf("%d", 1.5)`)
			cv.So(errMsg(err), cv.ShouldEqual, "invalid format '%d'; use format %f, %e, %g or %a for numeric objects")
			_, err = rt.EvalString(`sprintf("%f", "a")`)
			cv.So(errMsg(err), cv.ShouldEqual, "invalid format '%f'; use format %s for character objects")
			_, err = rt.EvalString(`sprintf("%s %s", "a")`)
			cv.So(errMsg(err), cv.ShouldEqual, "too few arguments")
		})
	})
}

func Test963Cat(t *testing.T) {
	cv.Convey("cat writes its arguments to the runtime output", t, func() {
		rt, out, _ := newTestRuntime()
		v := mustEval(rt, `cat("a", 1L, 2.5, TRUE, NULL, "\n")`)
		cv.So(v, cv.ShouldEqual, Nil)
		cv.So(rt.Visible(), cv.ShouldBeFalse)
		cv.So(out.String(), cv.ShouldEqual, "a 1 2.5 TRUE \n")

		cv.Convey("with a separator", func() {
			out.Reset()
			mustEval(rt, `cat(1:3, sep = ",")`)
			cv.So(out.String(), cv.ShouldEqual, "1,2,3")
		})

		cv.Convey("but not nested lists", func() {
			_, err := rt.EvalString(`cat(list(1, list(2)))`)
			cv.So(errMsg(err), cv.ShouldEqual, "argument 1 (type 'list') cannot be handled by 'cat'")
		})
	})
}
