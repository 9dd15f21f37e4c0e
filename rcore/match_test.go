package rcore

import (
	"testing"

	cv "github.com/glycerine/goconvey/convey"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func args(pairs ...interface{}) []Arg {
	var out []Arg
	for i := 0; i < len(pairs); i += 2 {
		out = append(out, Arg{Tag: pairs[i].(string), Value: pairs[i+1].(Value)})
	}
	return out
}

func TestMatchExactPartialPositional(t *testing.T) {
	a, b, c := Dbl(1), Dbl(2), Dbl(3)

	m, err := MatchArgs([]string{"alpha", "beta", "gamma"}, args("gamma", c, "al", a, "", b))
	require.NoError(t, err)
	assert.Same(t, a, m.Slots[0])
	assert.Same(t, b, m.Slots[1])
	assert.Same(t, c, m.Slots[2])
	assert.Equal(t, -1, m.DotsAt)
}

func TestMatchDotsCollectLeftovers(t *testing.T) {
	x, y, z := Dbl(1), Dbl(2), Dbl(3)

	m, err := MatchArgs([]string{"x", "...", "na.rm"}, args("", x, "foo", y, "", z))
	require.NoError(t, err)
	assert.Same(t, x, m.Slots[0])
	assert.Equal(t, 1, m.DotsAt)
	require.Len(t, m.Dots, 2)
	assert.Equal(t, "foo", m.Dots[0].Tag)
	assert.Same(t, z, m.Dots[1].Value)
	assert.False(t, m.Supplied(2))

	// formals after ... match exactly only
	m, err = MatchArgs([]string{"...", "na.rm"}, args("na", Lgl(true)))
	require.NoError(t, err)
	assert.Nil(t, m.Slots[1])
	assert.Len(t, m.Dots, 1)
}

func Test100MatchErrors(t *testing.T) {
	cv.Convey("the matcher reports R's argument matching errors", t, func() {
		cv.Convey("an unused argument", func() {
			_, err := MatchArgs([]string{"x"}, args("", Dbl(1), "", Dbl(2)))
			cv.So(errMsg(err), cv.ShouldEqual, "unused argument (2)")
		})
		cv.Convey("several unused arguments, tags shown", func() {
			_, err := MatchArgs([]string{"x"}, args("", Dbl(1), "y", Dbl(2), "z", Dbl(3)))
			cv.So(errMsg(err), cv.ShouldEqual, "unused arguments (y = 2, z = 3)")
		})
		cv.Convey("a formal matched twice exactly", func() {
			_, err := MatchArgs([]string{"x"}, args("x", Dbl(1), "x", Dbl(2)))
			cv.So(errMsg(err), cv.ShouldEqual, `formal argument "x" matched by multiple actual arguments`)
		})
		cv.Convey("an ambiguous partial tag", func() {
			_, err := MatchArgs([]string{"value", "verbose"}, args("v", Dbl(1)))
			cv.So(errMsg(err), cv.ShouldEqual, "argument 1 matches multiple formal arguments")
		})
		cv.Convey("errors are of the argument matching kind", func() {
			_, err := MatchArgs([]string{"x"}, args("", Dbl(1), "", Dbl(2)))
			var re *RError
			cv.So(err, cv.ShouldHaveSameTypeAs, re)
			cv.So(err.(*RError).Kind, cv.ShouldEqual, KindArgumentMatch)
		})
	})
}

func Test101MatchFromR(t *testing.T) {
	cv.Convey("closures see matched arguments the way R binds them", t, func() {
		rt, _, _ := newTestRuntime()
		mustEval(rt, `f <- function(alpha, beta = 2, ...) list(alpha, beta, list(...))`)
		cv.So(evalTrue(rt, `identical(f(be = 5, 1), list(1, 5, list()))`), cv.ShouldBeTrue)
		cv.So(evalTrue(rt, `identical(f(1, 2, 3, k = 4), list(1, 2, list(3, k = 4)))`), cv.ShouldBeTrue)

		_, err := rt.EvalString(`g <- function(x) x; g(1, 2)`)
		cv.So(errMsg(err), cv.ShouldEqual, "unused argument (2)")
	})
}

func permutations(n int) [][]int {
	if n == 1 {
		return [][]int{{0}}
	}
	var out [][]int
	for _, p := range permutations(n - 1) {
		for i := 0; i <= len(p); i++ {
			q := append(append(append([]int{}, p[:i]...), n-1), p[i:]...)
			out = append(out, q)
		}
	}
	return out
}

func TestMatchNamedOrderDoesNotMatter(t *testing.T) {
	formals := []string{"alpha", "beta", "gamma", "delta"}
	named := args("gamma", Dbl(3), "al", Dbl(1), "delta", Dbl(4))
	positional := Dbl(2)

	want, err := MatchArgs(formals, append(append([]Arg{}, named...), Arg{Value: positional}))
	require.NoError(t, err)
	assert.Same(t, positional, want.Slots[1])

	for _, perm := range permutations(len(named)) {
		actuals := make([]Arg, 0, len(named)+1)
		for _, i := range perm {
			actuals = append(actuals, named[i])
		}
		actuals = append(actuals, Arg{Value: positional})
		m, err := MatchArgs(formals, actuals)
		require.NoError(t, err, "order %v", perm)
		for i := range formals {
			assert.Same(t, want.Slots[i], m.Slots[i], "formal %s, order %v", formals[i], perm)
		}
	}
}

func TestMatchDefaultLeftUnsupplied(t *testing.T) {
	one, nine := Dbl(1), Dbl(9)
	m, err := MatchArgs([]string{"a", "b", "c"}, args("c", nine, "", one))
	require.NoError(t, err)
	assert.Same(t, one, m.Slots[0])
	assert.Same(t, nine, m.Slots[2])
	assert.False(t, m.Supplied(1))
	assert.True(t, m.Supplied(0))
	assert.True(t, m.Supplied(2))
}
