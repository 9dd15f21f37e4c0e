package rcore

import (
	"errors"
	"testing"

	cv "github.com/glycerine/goconvey/convey"
)

func parseOne(src string) Value {
	xs, err := Parse(src)
	if err != nil {
		panic(err)
	}
	if len(xs) != 1 {
		panic("expected one expression")
	}
	return xs[0]
}

func Test001ParseConstants(t *testing.T) {
	cv.Convey("numeric, integer, complex and string literals parse to vectors of their type", t, func() {
		cv.So(parseOne("1"), cv.ShouldResemble, Dbl(1))
		cv.So(parseOne("1L"), cv.ShouldResemble, Int(1))
		cv.So(parseOne("0x10"), cv.ShouldResemble, Dbl(16))
		cv.So(parseOne("1e3"), cv.ShouldResemble, Dbl(1000))
		cv.So(parseOne("2i"), cv.ShouldResemble, Cplx(complex(0, 2)))
		cv.So(parseOne(`"a\tb"`), cv.ShouldResemble, Str("a\tb"))
		cv.So(parseOne("TRUE"), cv.ShouldResemble, Lgl(true))
		cv.So(parseOne("NULL"), cv.ShouldEqual, Nil)
	})
}

func Test002ParsePrecedence(t *testing.T) {
	cv.Convey("operators bind with R precedence", t, func() {
		e := parseOne("1 + 2 * 3").(*Language)
		cv.So(e.FnName(), cv.ShouldEqual, "+")
		cv.So(e.Args[1].Value.(*Language).FnName(), cv.ShouldEqual, "*")

		cv.Convey("unary minus binds looser than ^", func() {
			e := parseOne("-2^2").(*Language)
			cv.So(e.FnName(), cv.ShouldEqual, "-")
			cv.So(len(e.Args), cv.ShouldEqual, 1)
			cv.So(e.Args[0].Value.(*Language).FnName(), cv.ShouldEqual, "^")
		})

		cv.Convey("^ is right associative", func() {
			e := parseOne("2^3^2").(*Language)
			cv.So(e.Args[1].Value.(*Language).FnName(), cv.ShouldEqual, "^")
		})

		cv.Convey("assignment is right associative", func() {
			e := parseOne("a <- b <- 1").(*Language)
			cv.So(e.FnName(), cv.ShouldEqual, "<-")
			cv.So(e.Args[1].Value.(*Language).FnName(), cv.ShouldEqual, "<-")
		})

		cv.Convey("-> turns into <- with the sides swapped", func() {
			e := parseOne("1 -> x").(*Language)
			cv.So(e.FnName(), cv.ShouldEqual, "<-")
			cv.So(e.Args[0].Value, cv.ShouldResemble, Sym("x"))
		})
	})
}

func Test003ParseCallArguments(t *testing.T) {
	cv.Convey("call arguments keep their tags and empty positions", t, func() {
		e := parseOne("f(x, y = 2)").(*Language)
		cv.So(e.FnName(), cv.ShouldEqual, "f")
		cv.So(len(e.Args), cv.ShouldEqual, 2)
		cv.So(e.Args[1].Tag, cv.ShouldEqual, "y")

		idx := parseOne("x[1, ]").(*Language)
		cv.So(idx.FnName(), cv.ShouldEqual, "[")
		cv.So(len(idx.Args), cv.ShouldEqual, 3)
		cv.So(idx.Args[2].Value, cv.ShouldEqual, MissingArg)

		empty := parseOne("x[]").(*Language)
		cv.So(len(empty.Args), cv.ShouldEqual, 1)

		cv.So(parseOne("x[[1]]").(*Language).FnName(), cv.ShouldEqual, "[[")
		cv.So(parseOne("`my var` + 1").(*Language).Args[0].Value, cv.ShouldResemble, Sym("my var"))
	})
}

func Test004ParseFunctionsAndControl(t *testing.T) {
	cv.Convey("function, lambda shorthand, if/else and loops parse to calls", t, func() {
		cv.So(parseOne("function(x, y = 2) x + y").(*Language).FnName(), cv.ShouldEqual, "function")
		cv.So(parseOne(`\(x) x`).(*Language).FnName(), cv.ShouldEqual, "function")
		e := parseOne("if (a) b else c").(*Language)
		cv.So(e.FnName(), cv.ShouldEqual, "if")
		cv.So(len(e.Args), cv.ShouldEqual, 3)
		cv.So(parseOne("for (i in 1:3) x").(*Language).FnName(), cv.ShouldEqual, "for")
		cv.So(parseOne("while (TRUE) break").(*Language).FnName(), cv.ShouldEqual, "while")

		cv.Convey("else on a new line is accepted inside braces", func() {
			e := parseOne("{\n if (a) b\n else c\n}").(*Language)
			cv.So(e.FnName(), cv.ShouldEqual, "{")
			cv.So(len(e.Args[0].Value.(*Language).Args), cv.ShouldEqual, 3)
		})
	})
}

func Test005ParseStatementSeparation(t *testing.T) {
	cv.Convey("newlines and semicolons separate top level statements", t, func() {
		xs, err := Parse("a <- 1; b <- 2\nc <- 3\n")
		cv.So(err, cv.ShouldBeNil)
		cv.So(len(xs), cv.ShouldEqual, 3)

		cv.Convey("a binary operator at the end of a line continues the expression", func() {
			xs, err := Parse("1 +\n 2")
			cv.So(err, cv.ShouldBeNil)
			cv.So(len(xs), cv.ShouldEqual, 1)
		})
	})
}

func Test006ParseIncompleteInput(t *testing.T) {
	cv.Convey("unfinished input is reported as incomplete, so a repl can ask for more", t, func() {
		for _, src := range []string{"f(", "{ x <- 1", `"abc`, "1 +"} {
			_, err := Parse(src)
			var se *SyntaxError
			cv.So(errors.As(err, &se), cv.ShouldBeTrue)
			cv.So(se.Incomplete, cv.ShouldBeTrue)
		}

		cv.Convey("while a genuine syntax error is not", func() {
			_, err := Parse("1 2")
			var se *SyntaxError
			cv.So(errors.As(err, &se), cv.ShouldBeTrue)
			cv.So(se.Incomplete, cv.ShouldBeFalse)
		})
	})
}

func Test007DeparseRoundTrip(t *testing.T) {
	cv.Convey("deparsing a parsed call gives back R source", t, func() {
		for _, src := range []string{
			"x + y * 2",
			"f(a, b = 1)",
			"x[1]",
			"x$name",
			"-x",
			"(a + b) * c",
		} {
			cv.So(deparseOneLine(parseOne(src)), cv.ShouldEqual, src)
		}
	})
}
