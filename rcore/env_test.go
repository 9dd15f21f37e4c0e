package rcore

import (
	"testing"

	cv "github.com/glycerine/goconvey/convey"
)

func Test800Environments(t *testing.T) {
	cv.Convey("environments are first class and chained by their parents", t, func() {
		rt, _, _ := newTestRuntime()
		mustEval(rt, `e <- new.env(); assign("a", 1, envir = e)`)
		cv.So(evalTrue(rt, `get("a", envir = e) == 1`), cv.ShouldBeTrue)
		cv.So(evalTrue(rt, `exists("a", envir = e) && !exists("a")`), cv.ShouldBeTrue)
		cv.So(evalTrue(rt, `exists("c", envir = e) && !exists("c", envir = e, inherits = FALSE)`), cv.ShouldBeTrue)
		cv.So(evalTrue(rt, `eval(quote(a + 1), e) == 2 && evalq(a, e) == 1`), cv.ShouldBeTrue)
		cv.So(evalTrue(rt, `identical(parent.env(globalenv()), baseenv())`), cv.ShouldBeTrue)
		cv.So(evalTrue(rt, `identical(environmentName(globalenv()), "R_GlobalEnv")`), cv.ShouldBeTrue)
		cv.So(evalTrue(rt, `f <- function() 1; identical(environment(f), globalenv())`), cv.ShouldBeTrue)

		cv.Convey("get reports what it could not find", func() {
			_, err := rt.EvalString(`get("nope")`)
			cv.So(errMsg(err), cv.ShouldEqual, "object 'nope' not found")
			cv.So(IsKind(err, KindEnvironment), cv.ShouldBeTrue)
			cv.So(evalTrue(rt, `identical(get0("nope", ifnotfound = "dflt"), "dflt")`), cv.ShouldBeTrue)
		})

		cv.Convey("the empty environment ends the chain", func() {
			_, err := rt.EvalString(`parent.env(emptyenv())`)
			cv.So(errMsg(err), cv.ShouldEqual, "the empty environment has no parent")
			cv.So(evalTrue(rt, `!exists("c", envir = new.env(parent = emptyenv()))`), cv.ShouldBeTrue)
		})

		cv.Convey("ls lists sorted names, hiding dot names", func() {
			mustEval(rt, `assign("b", 2, envir = e); assign(".h", 3, envir = e)`)
			cv.So(evalTrue(rt, `identical(ls(envir = e), c("a", "b"))`), cv.ShouldBeTrue)
			cv.So(evalTrue(rt, `identical(ls(e, all.names = TRUE), c(".h", "a", "b"))`), cv.ShouldBeTrue)
			names, err := rt.Names(rt.GlobalEnv, false)
			cv.So(err, cv.ShouldBeNil)
			cv.So(names, cv.ShouldResemble, []string{"e", "f"})
		})

		cv.Convey("an environment in the position argument stands for envir", func() {
			mustEval(rt, `p <- new.env(); assign("v", 1, p)`)
			cv.So(evalTrue(rt, `!exists("v") && exists("v", p) && get("v", p) == 1`), cv.ShouldBeTrue)
			cv.So(evalTrue(rt, `identical(ls(p), "v")`), cv.ShouldBeTrue)
			cv.So(evalTrue(rt, `assign("w", 2, pos = 1); exists("w", where = globalenv()) && get("w", 1) == 2`), cv.ShouldBeTrue)

			cv.Convey("with -1 meaning the calling environment", func() {
				cv.So(evalTrue(rt, `f <- function() { assign("loc", 3, pos = -1); exists("loc", inherits = FALSE) }; f() && !exists("loc")`), cv.ShouldBeTrue)
			})
			cv.Convey("and envir winning when both are given", func() {
				cv.So(evalTrue(rt, `q <- new.env(); assign("z", 5, pos = 1, envir = q); exists("z", q) && !exists("z")`), cv.ShouldBeTrue)
			})
		})

		cv.Convey("rm, local and <<-", func() {
			cv.So(evalTrue(rt, `x <- 1; rm(x); !exists("x")`), cv.ShouldBeTrue)
			cv.So(evalTrue(rt, `local({ y <- 2; y * 3 }) == 6 && !exists("y")`), cv.ShouldBeTrue)
			cv.So(evalTrue(rt, `g <- function() zz <<- 5; g(); zz == 5`), cv.ShouldBeTrue)
		})
	})
}

func Test801Locking(t *testing.T) {
	cv.Convey("locked environments and bindings refuse changes", t, func() {
		rt, _, _ := newTestRuntime()
		mustEval(rt, `e <- new.env(); assign("a", 1, envir = e); lockEnvironment(e)`)
		cv.So(evalTrue(rt, `environmentIsLocked(e)`), cv.ShouldBeTrue)

		_, err := rt.EvalString(`assign("b", 2, envir = e)`)
		cv.So(errMsg(err), cv.ShouldEqual, "cannot add bindings to a locked environment")

		cv.So(evalTrue(rt, `assign("a", 10, envir = e); e$a == 10`), cv.ShouldBeTrue)

		mustEval(rt, `lockBinding("a", e)`)
		cv.So(evalTrue(rt, `bindingIsLocked("a", e)`), cv.ShouldBeTrue)
		_, err = rt.EvalString(`assign("a", 3, envir = e)`)
		cv.So(errMsg(err), cv.ShouldEqual, "cannot change value of locked binding for 'a'")

		mustEval(rt, `unlockBinding("a", e); assign("a", 3, envir = e)`)
		cv.So(evalTrue(rt, `e$a == 3`), cv.ShouldBeTrue)
	})
}

func Test802Collection(t *testing.T) {
	cv.Convey("unreachable environments are released by a collection", t, func() {
		rt, _, _ := newTestRuntime()
		rt.GC()
		before := rt.LiveEnvs()

		mustEval(rt, `f <- function() { e <- new.env(); 1 }; for (i in 1:10) f()`)
		cv.So(rt.LiveEnvs(), cv.ShouldBeGreaterThanOrEqualTo, before+20)
		cv.So(rt.GC(), cv.ShouldBeGreaterThanOrEqualTo, 20)
		cv.So(rt.LiveEnvs(), cv.ShouldEqual, before)

		cv.Convey("a closure keeps its environment alive", func() {
			mustEval(rt, `mk <- function() { x <- 1; function() x }; g <- mk()`)
			rt.GC()
			cv.So(rt.LiveEnvs(), cv.ShouldEqual, before+1)
			cv.So(evalTrue(rt, `g() == 1`), cv.ShouldBeTrue)

			mustEval(rt, `rm(g)`)
			rt.GC()
			cv.So(rt.LiveEnvs(), cv.ShouldEqual, before)
		})

		cv.Convey("a released handle is reported as stale", func() {
			ev := mustEval(rt, `new.env()`).(*EnvValue)
			rt.GC()
			_, err := rt.Env(ev.Ref)
			cv.So(IsKind(err, KindEnvironment), cv.ShouldBeTrue)
		})

		cv.Convey("preserved values survive", func() {
			ev := mustEval(rt, `new.env()`).(*EnvValue)
			rt.Preserve(ev)
			rt.GC()
			_, err := rt.Env(ev.Ref)
			cv.So(err, cv.ShouldBeNil)
			rt.Release(ev)
			rt.GC()
			_, err = rt.Env(ev.Ref)
			cv.So(err, cv.ShouldNotBeNil)
		})

		cv.Convey("gc() from R collects once the top level call is done", func() {
			mustEval(rt, `invisible(new.env()); gc()`)
			cv.So(rt.LiveEnvs(), cv.ShouldEqual, before)
		})

		cv.Convey("the value returned by the evaluation that ran gc() is kept", func() {
			fn := mustEval(rt, `{ gc(); local({ a <- 42; function() a }) }`)
			v, err := rt.CallFunction(fn, Sym("f"), nil, rt.GlobalEnv)
			cv.So(err, cv.ShouldBeNil)
			cv.So(v.(*Double).V, cv.ShouldResemble, []float64{42})

			ev := mustEval(rt, `{ gc(); new.env() }`).(*EnvValue)
			_, err = rt.Env(ev.Ref)
			cv.So(err, cv.ShouldBeNil)
		})

		cv.Convey("a closure whose environment was collected reports a stale handle", func() {
			fn := mustEval(rt, `local({ a <- 42; function() a })`)
			rt.GC()
			_, err := rt.CallFunction(fn, Sym("f"), nil, rt.GlobalEnv)
			cv.So(IsKind(err, KindEnvironment), cv.ShouldBeTrue)
			cv.So(errMsg(err), cv.ShouldEqual, ErrStaleEnv.Error())

			_, err = rt.Eval(Sym("a"), fn.(*Closure).Env)
			cv.So(errMsg(err), cv.ShouldEqual, ErrStaleEnv.Error())
		})
	})
}
