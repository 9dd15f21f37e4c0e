package rcore

import (
	"math"
	"strings"
	"testing"

	cv "github.com/glycerine/goconvey/convey"
)

func Test900JsonRoundTrip(t *testing.T) {
	cv.Convey("values go to JSON and back", t, func() {
		rt, _, _ := newTestRuntime()
		cv.So(evalTrue(rt, `x <- list(b = 2L, a = "x"); identical(fromJSON(toJSON(x)), list(a = "x", b = 2L))`), cv.ShouldBeTrue)
		cv.So(evalTrue(rt, `identical(fromJSON("[1, 2, null]"), c(1L, 2L, NA))`), cv.ShouldBeTrue)
		cv.So(evalTrue(rt, `identical(fromJSON("[1.5, 2]"), c(1.5, 2))`), cv.ShouldBeTrue)
		cv.So(evalTrue(rt, `identical(fromJSON("[true, \"a\"]"), c("TRUE", "a"))`), cv.ShouldBeTrue)
		cv.So(evalTrue(rt, `identical(fromJSON("[[1], {\"k\": 2}]"), list(1L, list(k = 2L)))`), cv.ShouldBeTrue)

		cv.Convey("keys are written sorted", func() {
			b, err := ValueToJson(mustEval(rt, `list(zeta = 1L, alpha = "q")`))
			cv.So(err, cv.ShouldBeNil)
			cv.So(strings.TrimSpace(string(b)), cv.ShouldEqual, `{"alpha":"q","zeta":1}`)
		})

		cv.Convey("NA is written as null", func() {
			b, err := ValueToJson(mustEval(rt, `c(1L, NA)`))
			cv.So(err, cv.ShouldBeNil)
			cv.So(strings.TrimSpace(string(b)), cv.ShouldEqual, `[1,null]`)
		})

		cv.Convey("bad JSON is an R error", func() {
			_, err := rt.EvalString(`fromJSON("{")`)
			cv.So(errMsg(err), cv.ShouldStartWith, "fromJSON: ")
		})
	})
}

func Test901Fingerprint(t *testing.T) {
	cv.Convey("identical values share a fingerprint", t, func() {
		rt, _, _ := newTestRuntime()
		cv.So(evalTrue(rt, `identical(fingerprint(c(a = 1)), fingerprint(c(a = 1)))`), cv.ShouldBeTrue)
		cv.So(evalTrue(rt, `fingerprint(c(a = 1)) != fingerprint(c(b = 1))`), cv.ShouldBeTrue)
		cv.So(evalTrue(rt, `fingerprint(1L) != fingerprint(1)`), cv.ShouldBeTrue)
		cv.So(evalTrue(rt, `nchar(fingerprint(NULL)) == 16`), cv.ShouldBeTrue)

		cv.Convey("and identical agrees with the canonical encoding", func() {
			cv.So(Identical(Dbl(0), Dbl(math.Copysign(0, -1))), cv.ShouldBeTrue)
			x := mustEval(rt, `structure(1:3, foo = "a", bar = "b")`)
			y := mustEval(rt, `structure(1:3, bar = "b", foo = "a")`)
			cv.So(Identical(x, y), cv.ShouldBeTrue)
			cv.So(Fingerprint(x), cv.ShouldEqual, Fingerprint(y))
			cv.So(evalTrue(rt, `!identical(new.env(), new.env())`), cv.ShouldBeTrue)
			cv.So(evalTrue(rt, `e <- new.env(); identical(e, e)`), cv.ShouldBeTrue)
		})
	})
}
