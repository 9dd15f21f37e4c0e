package rcore

import (
	"math"
	"testing"

	cv "github.com/glycerine/goconvey/convey"
	"github.com/stretchr/testify/assert"
)

func TestNumericIntDo(t *testing.T) {
	v, ok := NumericIntDo(Add, math.MaxInt32, 1)
	assert.False(t, ok)
	assert.Equal(t, NAInteger, v)

	v, ok = NumericIntDo(Mod, -7, 3)
	assert.True(t, ok)
	assert.Equal(t, int32(2), v)

	v, ok = NumericIntDo(IntDiv, -7, 2)
	assert.True(t, ok)
	assert.Equal(t, int32(-4), v)

	v, ok = NumericIntDo(Mult, NAInteger, 0)
	assert.True(t, ok)
	assert.Equal(t, NAInteger, v)
}

func TestBasePi(t *testing.T) {
	rt, _, _ := newTestRuntime()
	v, err := rt.EvalString("pi")
	assert.NoError(t, err)
	assert.Equal(t, []float64{math.Pi}, v.(*Double).V)
}

func TestNumericFloatDo(t *testing.T) {
	assert.Equal(t, 1.0, NumericFloatDo(Pow, 1, NADouble))
	assert.Equal(t, 1.0, NumericFloatDo(Pow, NADouble, 0))
	assert.True(t, IsNA(NumericFloatDo(Add, NADouble, math.NaN())))
	assert.True(t, math.IsNaN(NumericFloatDo(Mod, 5, 0)))
	assert.Equal(t, 1.0, NumericFloatDo(Mod, -5, 3))
	assert.True(t, math.IsInf(NumericFloatDo(Div, 1, 0), 1))
}

func Test700Arithmetic(t *testing.T) {
	cv.Convey("arithmetic follows R's type rules", t, func() {
		rt, _, errOut := newTestRuntime()
		cv.So(evalTrue(rt, `identical(1L + 2L, 3L)`), cv.ShouldBeTrue)
		cv.So(evalTrue(rt, `identical(1L + 2, 3)`), cv.ShouldBeTrue)
		cv.So(evalTrue(rt, `identical(5L / 2L, 2.5)`), cv.ShouldBeTrue)
		cv.So(evalTrue(rt, `identical(5L %/% 2L, 2L)`), cv.ShouldBeTrue)
		cv.So(evalTrue(rt, `identical(-5 %% 3, 1)`), cv.ShouldBeTrue)
		cv.So(evalTrue(rt, `identical(TRUE + TRUE, 2L)`), cv.ShouldBeTrue)
		cv.So(evalTrue(rt, `identical(2^10, 1024)`), cv.ShouldBeTrue)
		cv.So(evalTrue(rt, `identical(-(1:3), c(-1L, -2L, -3L))`), cv.ShouldBeTrue)

		cv.Convey("NA propagates", func() {
			cv.So(evalTrue(rt, `is.na(NA + 1) && is.na(NA_integer_ * 2L)`), cv.ShouldBeTrue)
			cv.So(evalTrue(rt, `1^NA == 1`), cv.ShouldBeTrue)
		})

		cv.Convey("the shorter operand is recycled", func() {
			cv.So(evalTrue(rt, `identical(1:4 * 2L, c(2L, 4L, 6L, 8L))`), cv.ShouldBeTrue)
			mustEval(rt, `x <- 1:3 + 1:2`)
			cv.So(evalTrue(rt, `identical(x, c(2L, 4L, 4L))`), cv.ShouldBeTrue)
			cv.So(errOut.String(), cv.ShouldContainSubstring, recycleWarning)
		})

		cv.Convey("integer overflow gives NA with a warning", func() {
			mustEval(rt, `big <- 2147483647L + 1L`)
			cv.So(evalTrue(rt, `is.na(big)`), cv.ShouldBeTrue)
			cv.So(errOut.String(), cv.ShouldContainSubstring, overflowWarning)
		})

		cv.Convey("a zero length operand gives a zero length result", func() {
			cv.So(evalTrue(rt, `identical(numeric(0) + 1, numeric(0))`), cv.ShouldBeTrue)
		})

		cv.Convey("names come from the first operand", func() {
			cv.So(evalTrue(rt, `identical(names(c(a = 1, b = 2) + 1), c("a", "b"))`), cv.ShouldBeTrue)
		})

		cv.Convey("strings are not numbers", func() {
			_, err := rt.EvalString(`"1" + 1`)
			cv.So(errMsg(err), cv.ShouldEqual, "non-numeric argument to binary operator")
			_, err = rt.EvalString(`-"a"`)
			cv.So(errMsg(err), cv.ShouldEqual, "invalid argument to unary operator")
		})
	})
}

func Test701Comparison(t *testing.T) {
	cv.Convey("comparison and logic", t, func() {
		rt, _, _ := newTestRuntime()
		cv.So(evalTrue(rt, `identical(1:3 > 1, c(FALSE, TRUE, TRUE))`), cv.ShouldBeTrue)
		cv.So(evalTrue(rt, `"10" < "9"`), cv.ShouldBeTrue)
		cv.So(evalTrue(rt, `1 == "1"`), cv.ShouldBeTrue)
		cv.So(evalTrue(rt, `is.na(NA > 1)`), cv.ShouldBeTrue)
		cv.So(evalTrue(rt, `identical(c(TRUE, NA, FALSE) & c(FALSE, FALSE, NA), c(FALSE, FALSE, FALSE))`), cv.ShouldBeTrue)
		cv.So(evalTrue(rt, `identical(NA | TRUE, TRUE)`), cv.ShouldBeTrue)
		cv.So(evalTrue(rt, `identical(!c(TRUE, FALSE), c(FALSE, TRUE))`), cv.ShouldBeTrue)

		cv.Convey("&& and || short circuit", func() {
			cv.So(evalTrue(rt, `FALSE && stop("no")`), cv.ShouldBeFalse)
			cv.So(evalTrue(rt, `TRUE || stop("no")`), cv.ShouldBeTrue)
			cv.So(evalTrue(rt, `is.na(NA && TRUE)`), cv.ShouldBeTrue)
			_, err := rt.EvalString(`c(TRUE, TRUE) && TRUE`)
			cv.So(errMsg(err), cv.ShouldEqual, "'length = 2' in coercion to 'logical(1)'")
		})
	})
}

func Test702Summaries(t *testing.T) {
	cv.Convey("sum, max and friends reduce their arguments", t, func() {
		rt, _, _ := newTestRuntime()
		cv.So(evalTrue(rt, `identical(sum(1:10), 55L)`), cv.ShouldBeTrue)
		cv.So(evalTrue(rt, `identical(sum(1, 2:3), 6)`), cv.ShouldBeTrue)
		cv.So(evalTrue(rt, `is.na(sum(1, NA))`), cv.ShouldBeTrue)
		cv.So(evalTrue(rt, `sum(1, NA, na.rm = TRUE) == 1`), cv.ShouldBeTrue)
		cv.So(evalTrue(rt, `max(3, 9, 2) == 9 && min(3:1) == 1`), cv.ShouldBeTrue)
		cv.So(evalTrue(rt, `any(c(FALSE, TRUE)) && !all(c(TRUE, FALSE))`), cv.ShouldBeTrue)
		cv.So(evalTrue(rt, `identical(cumsum(1:4), c(1L, 3L, 6L, 10L))`), cv.ShouldBeTrue)
		cv.So(evalTrue(rt, `identical(rev(1:3), 3:1)`), cv.ShouldBeTrue)
		cv.So(evalTrue(rt, `identical(rep(1:2, times = 2), c(1L, 2L, 1L, 2L))`), cv.ShouldBeTrue)
		cv.So(evalTrue(rt, `identical(rep(c("a", "b"), each = 2), c("a", "a", "b", "b"))`), cv.ShouldBeTrue)
		cv.So(evalTrue(rt, `identical(seq_len(3), 1:3) && identical(seq_along(c("x", "y")), 1:2)`), cv.ShouldBeTrue)
		cv.So(evalTrue(rt, `identical(5:3, c(5L, 4L, 3L))`), cv.ShouldBeTrue)
	})
}
