package rcore

import (
	"testing"

	cv "github.com/glycerine/goconvey/convey"
)

func Test400TryCatch(t *testing.T) {
	cv.Convey("tryCatch hands a matching condition to its exiting handler", t, func() {
		rt, out, _ := newTestRuntime()
		cv.So(evalTrue(rt, `identical(tryCatch(stop("boom"), error = function(e) conditionMessage(e)), "boom")`), cv.ShouldBeTrue)
		cv.So(evalTrue(rt, `tryCatch(42, error = function(e) 0) == 42`), cv.ShouldBeTrue)

		cv.Convey("the error call is the closure stop was called from", func() {
			cv.So(evalTrue(rt, `f <- function() stop("bad"); identical(tryCatch(f(), error = conditionCall), quote(f()))`), cv.ShouldBeTrue)
		})

		cv.Convey("finally runs on success and on error", func() {
			mustEval(rt, `tryCatch(1, finally = cat("a"))`)
			mustEval(rt, `tryCatch(stop("x"), error = function(e) NULL, finally = cat("b"))`)
			cv.So(out.String(), cv.ShouldEqual, "ab")
		})

		cv.Convey("the first matching handler in argument order wins", func() {
			cv.So(evalTrue(rt, `identical(tryCatch(stop("e"), condition = function(c) "cond", error = function(e) "err"), "cond")`), cv.ShouldBeTrue)
		})

		cv.Convey("a handler for another class lets the error through", func() {
			_, err := rt.EvalString(`tryCatch(stop("through"), warning = function(w) 1)`)
			cv.So(errMsg(err), cv.ShouldEqual, "through")
		})

		cv.Convey("a condition object given to stop keeps its class", func() {
			cv.So(evalTrue(rt, `identical(tryCatch(stop(simpleError("mine")), simpleError = function(e) conditionMessage(e)), "mine")`), cv.ShouldBeTrue)
		})

		cv.Convey("errors raised by builtins are catchable too", func() {
			cv.So(evalTrue(rt, `identical(tryCatch(1 + "a", error = conditionMessage), "non-numeric argument to binary operator")`), cv.ShouldBeTrue)
		})
	})
}

func Test401CallingHandlers(t *testing.T) {
	cv.Convey("calling handlers run where the condition is signalled", t, func() {
		rt, out, _ := newTestRuntime()

		cv.Convey("a muffled warning is not reported", func() {
			v := mustEval(rt, `withCallingHandlers({ warning("w"); "done" },
                warning = function(w) { cat("saw", conditionMessage(w)); invokeRestart("muffleWarning") })`)
			cv.So(v, cv.ShouldResemble, Str("done"))
			cv.So(out.String(), cv.ShouldEqual, "saw w")
			cv.So(len(rt.LastWarnings()), cv.ShouldEqual, 0)
		})

		cv.Convey("a calling handler that returns lets outer handlers see the error", func() {
			mustEval(rt, `tryCatch(withCallingHandlers(stop("e1"), error = function(e) cat("calling ")),
                error = function(e) cat("exiting"))`)
			cv.So(out.String(), cv.ShouldEqual, "calling exiting")
		})

		cv.Convey("custom conditions reach handlers for their class", func() {
			mustEval(rt, `cond <- simpleCondition("hi"); class(cond) <- c("custom", "condition")`)
			mustEval(rt, `withCallingHandlers(signalCondition(cond), custom = function(c) cat("got", conditionMessage(c)))`)
			cv.So(out.String(), cv.ShouldEqual, "got hi")
			cv.So(evalTrue(rt, `identical(tryCatch(signalCondition(cond), custom = function(c) "caught"), "caught")`), cv.ShouldBeTrue)
			cv.So(evalTrue(rt, `is.null(signalCondition(cond))`), cv.ShouldBeTrue)
		})

		cv.Convey("invoking a restart nobody established is an error", func() {
			_, err := rt.EvalString(`invokeRestart("muffleWarning")`)
			cv.So(errMsg(err), cv.ShouldEqual, "no 'restart' 'muffleWarning' found")
		})
	})
}

func Test402DeferredWarnings(t *testing.T) {
	cv.Convey("unhandled warnings are reported after the top level call", t, func() {
		rt, _, errOut := newTestRuntime()
		mustEval(rt, `f <- function() { warning("careful"); 1 }`)
		v := mustEval(rt, `f()`)
		cv.So(v, cv.ShouldResemble, Dbl(1))
		ws := rt.LastWarnings()
		cv.So(len(ws), cv.ShouldEqual, 1)
		cv.So(ws[0].Msg, cv.ShouldEqual, "careful")
		cv.So(errOut.String(), cv.ShouldEqual, "Warning message:\nIn f() : careful\n")

		cv.Convey("suppressWarnings swallows them", func() {
			errOut.Reset()
			mustEval(rt, `suppressWarnings(f())`)
			cv.So(len(rt.LastWarnings()), cv.ShouldEqual, 0)
			cv.So(errOut.String(), cv.ShouldEqual, "")
		})

		cv.Convey("warn = 2 turns them into errors", func() {
			rt.Config().Warn = 2
			_, err := rt.EvalString(`f()`)
			cv.So(errMsg(err), cv.ShouldEqual, "(converted from warning) careful")
		})

		cv.Convey("each top level expression reports its own warnings", func() {
			errOut.Reset()
			mustEval(rt, `warning("one"); warning("two")`)
			cv.So(len(rt.LastWarnings()), cv.ShouldEqual, 1)
			cv.So(FormatWarnings([]Warning{{Msg: "one"}, {Msg: "two"}}), cv.ShouldEqual, "Warning messages:\n1: one\n2: two\n")
		})
	})
}

func Test403Try(t *testing.T) {
	cv.Convey("try turns an error into a try-error value", t, func() {
		rt, _, errOut := newTestRuntime()
		mustEval(rt, `f <- function() stop("bad")`)
		cv.So(evalTrue(rt, `r <- try(f(), silent = TRUE); inherits(r, "try-error")`), cv.ShouldBeTrue)
		cv.So(evalTrue(rt, `identical(conditionMessage(attr(r, "condition")), "bad")`), cv.ShouldBeTrue)
		cv.So(errOut.String(), cv.ShouldEqual, "")

		cv.Convey("and reports it unless silent", func() {
			mustEval(rt, `try(f())`)
			cv.So(errOut.String(), cv.ShouldEqual, "Error in f() : bad\n")
		})

		cv.Convey("a value passes straight through", func() {
			cv.So(evalTrue(rt, `try(5) == 5`), cv.ShouldBeTrue)
		})
	})
}

func Test404UncaughtErrors(t *testing.T) {
	cv.Convey("an error nobody catches comes back from Eval with its call", t, func() {
		rt, _, _ := newTestRuntime()
		_, err := rt.EvalString(`f <- function(x) stop("oops: ", x); f(3)`)
		cv.So(err, cv.ShouldNotBeNil)
		cv.So(err.Error(), cv.ShouldEqual, "Error in f(3) : oops: 3")
		cv.So(IsKind(err, KindUser), cv.ShouldBeTrue)

		cv.Convey("call. = FALSE leaves the call out", func() {
			_, err := rt.EvalString(`g <- function() stop("plain", call. = FALSE); g()`)
			cv.So(err.Error(), cv.ShouldEqual, "Error: plain")
		})

		cv.Convey("break outside a loop is an error at top level", func() {
			_, err := rt.EvalString(`break`)
			cv.So(errMsg(err), cv.ShouldEqual, "no loop for break/next, jumping to top level")
		})
	})
}
