package rcore

import (
	"os"
	"path/filepath"
	"testing"

	cv "github.com/glycerine/goconvey/convey"
)

func Test990EvalAndPrint(t *testing.T) {
	cv.Convey("the top level prints visible results only", t, func() {
		rt, out, _ := newTestRuntime()
		exprs, err := Parse("x <- 1\nx + 1\ninvisible(3)\n(y <- 5)\nf <- function() invisible(7)\nf()\n")
		cv.So(err, cv.ShouldBeNil)
		cv.So(rt.EvalAndPrint(exprs), cv.ShouldBeNil)
		cv.So(out.String(), cv.ShouldEqual, "[1] 2\n[1] 5\n")

		cv.Convey("in JSON mode results are written as JSON", func() {
			out.Reset()
			rt.Config().JSON = true
			exprs, err := Parse(`list(a = 1L, b = "z")`)
			cv.So(err, cv.ShouldBeNil)
			cv.So(rt.EvalAndPrint(exprs), cv.ShouldBeNil)
			cv.So(out.String(), cv.ShouldStartWith, `{"a":1,"b":"z"}`)
		})

		cv.Convey("evaluation stops at the first error", func() {
			out.Reset()
			exprs, err := Parse("1\nstop(\"halt\")\n2\n")
			cv.So(err, cv.ShouldBeNil)
			err = rt.EvalAndPrint(exprs)
			cv.So(errMsg(err), cv.ShouldEqual, "halt")
			cv.So(out.String(), cv.ShouldEqual, "[1] 1\n")
		})

		cv.Convey(".dump shows a binding's Go representation", func() {
			out.Reset()
			rt.processDumpCommand([]string{"x"})
			cv.So(out.String(), cv.ShouldContainSubstring, "Double")
			out.Reset()
			rt.processDumpCommand(nil)
			cv.So(out.String(), cv.ShouldContainSubstring, "x -> 1")
		})
	})
}

func Test991RunScript(t *testing.T) {
	cv.Convey("a script file runs top level expression by expression", t, func() {
		rt, out, _ := newTestRuntime()
		path := filepath.Join(t.TempDir(), "script.R")
		cv.So(os.WriteFile(path, []byte("sq <- function(n) n * n\nsq(4L)\n"), 0644), cv.ShouldBeNil)
		cv.So(runScript(rt, path, rt.Config()), cv.ShouldBeNil)
		cv.So(out.String(), cv.ShouldEqual, "[1] 16\n")

		cv.Convey("a syntax error names the file", func() {
			bad := filepath.Join(t.TempDir(), "bad.R")
			cv.So(os.WriteFile(bad, []byte("1 2\n"), 0644), cv.ShouldBeNil)
			err := runScript(rt, bad, rt.Config())
			cv.So(err, cv.ShouldNotBeNil)
			cv.So(err.Error(), cv.ShouldContainSubstring, bad)
		})
	})
}
