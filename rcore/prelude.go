package rcore

// preludeSource is evaluated in the base environment when a Runtime
// starts. It holds the parts of base that read best as R.
const preludeSource = `
pi <- 3.141592653589793

simpleCondition <- function(message, call = NULL)
    structure(class = c("simpleCondition", "condition"),
              list(message = as.character(message), call = call))

simpleError <- function(message, call = NULL)
    structure(class = c("simpleError", "error", "condition"),
              list(message = as.character(message), call = call))

simpleWarning <- function(message, call = NULL)
    structure(class = c("simpleWarning", "warning", "condition"),
              list(message = as.character(message), call = call))

conditionMessage <- function(c) UseMethod("conditionMessage")
conditionMessage.condition <- function(c) c$message

conditionCall <- function(c) UseMethod("conditionCall")
conditionCall.condition <- function(c) c$call

suppressWarnings <- function(expr, classes = "warning")
    withCallingHandlers(expr, warning = function(w)
        if (inherits(w, classes)) invokeRestart("muffleWarning"))

print <- function(x, ...) UseMethod("print")
format <- function(x, ...) UseMethod("format")

print.condition <- function(x, ...) {
    msg <- conditionMessage(x)
    call <- conditionCall(x)
    cl <- class(x)[1L]
    if (!is.null(call))
        cat("<", cl, " in ", deparse(call)[1L], ": ", msg, ">\n", sep = "")
    else
        cat("<", cl, ": ", msg, ">\n", sep = "")
    invisible(x)
}

isTRUE <- function(x) is.logical(x) && length(x) == 1L && !is.na(x) && x
isFALSE <- function(x) is.logical(x) && length(x) == 1L && !is.na(x) && !x

lapply <- function(X, FUN, ...) {
    FUN <- match.fun(FUN)
    if (!is.vector(X) || is.object(X)) X <- as.list(X)
    out <- vector("list", length(X))
    for (i in seq_along(X)) out[i] <- list(FUN(X[[i]], ...))
    names(out) <- names(X)
    out
}

sapply <- function(X, FUN, ..., simplify = TRUE, USE.NAMES = TRUE) {
    FUN <- match.fun(FUN)
    answer <- lapply(X = X, FUN = FUN, ...)
    if (USE.NAMES && is.character(X) && is.null(names(answer)))
        names(answer) <- X
    if (!isFALSE(simplify) && length(answer))
        simplify2array(answer)
    else answer
}
`
