package rcore

import (
	"os"
	"path/filepath"
	"testing"

	cv "github.com/glycerine/goconvey/convey"
)

func Test950ConfigFile(t *testing.T) {
	cv.Convey("rcore.toml settings are applied after the flags", t, func() {
		dir := t.TempDir()
		path := filepath.Join(dir, "rcore.toml")
		err := os.WriteFile(path, []byte("prompt = \"R> \"\nwarn = 1\nmax-depth = 200\nsandbox = true\n"), 0644)
		cv.So(err, cv.ShouldBeNil)

		cfg := NewConfig("rcore-test")
		cfg.DefineFlags()
		cv.So(cfg.Flags.Parse([]string{"-warn", "2", "-config", path}), cv.ShouldBeNil)
		cv.So(cfg.Warn, cv.ShouldEqual, 2)
		cv.So(cfg.ValidateConfig(), cv.ShouldBeNil)

		cv.So(cfg.Prompt, cv.ShouldEqual, "R> ")
		cv.So(cfg.Warn, cv.ShouldEqual, 1)
		cv.So(cfg.MaxDepth, cv.ShouldEqual, 200)
		cv.So(cfg.Sandboxed, cv.ShouldBeTrue)
		cv.So(cfg.Quiet, cv.ShouldBeFalse)

		cv.Convey("a malformed file is reported with its path", func() {
			bad := filepath.Join(dir, "bad.toml")
			cv.So(os.WriteFile(bad, []byte("prompt = \n"), 0644), cv.ShouldBeNil)
			err := cfg.LoadFile(bad)
			cv.So(err, cv.ShouldNotBeNil)
			cv.So(err.Error(), cv.ShouldContainSubstring, bad)
		})

		cv.Convey("a missing file is an error", func() {
			c := NewConfig("rcore-test")
			c.ConfigFile = filepath.Join(dir, "absent.toml")
			cv.So(c.ValidateConfig(), cv.ShouldNotBeNil)
		})
	})
}

func Test951ConfigDefaults(t *testing.T) {
	cv.Convey("ValidateConfig fills in defaults and checks ranges", t, func() {
		c := NewConfig("rcore-test")
		cv.So(c.ValidateConfig(), cv.ShouldBeNil)
		cv.So(c.Prompt, cv.ShouldEqual, "> ")
		cv.So(c.MaxDepth, cv.ShouldEqual, defaultMaxDepth)

		c.Verbosity = 9
		cv.So(c.ValidateConfig(), cv.ShouldNotBeNil)
	})
}

func Test952RuntimeLimits(t *testing.T) {
	cv.Convey("the runtime honours its configuration", t, func() {

		cv.Convey("a sandboxed runtime has no system builtins", func() {
			cfg := NewConfig("rcore-test")
			cfg.Sandboxed = true
			rt := NewRuntime(cfg)
			_, err := rt.EvalString(`Sys.getenv("HOME")`)
			cv.So(errMsg(err), cv.ShouldEqual, `could not find function "Sys.getenv"`)

			open, _, _ := newTestRuntime()
			cv.So(evalTrue(open, `is.function(Sys.getenv)`), cv.ShouldBeTrue)
		})

		cv.Convey("runaway recursion stops at MaxDepth", func() {
			rt, _, _ := newTestRuntime()
			rt.Config().MaxDepth = 100
			_, err := rt.EvalString(`f <- function(n) f(n + 1); f(1)`)
			cv.So(errMsg(err), cv.ShouldStartWith, "evaluation nested too deeply")

			cv.So(evalTrue(rt, `f <- function(n) if (n == 0) 0 else f(n - 1); f(20) == 0`), cv.ShouldBeTrue)
		})

		cv.Convey("output goes to OurStdout unless the host redirects it", func() {
			rt := NewRuntime(NewConfig("rcore-test"))
			cv.So(rt.Out, cv.ShouldEqual, OurStdout)
		})

		cv.Convey("a closed runtime refuses work", func() {
			rt, _, _ := newTestRuntime()
			rt.Close()
			_, err := rt.EvalString(`1`)
			cv.So(err, cv.ShouldEqual, ErrRuntimeClose)
		})
	})
}
