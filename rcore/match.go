package rcore

import (
	"fmt"
	"strings"
)

// MatchResult binds formals to supplied arguments. Slots[i] is the value
// supplied for formal i, or nil if none was. The slot for `...` is
// unused; its arguments are in Dots.
type MatchResult struct {
	Slots  []Value
	DotsAt int
	Dots   []Arg
}

// Supplied reports whether formal i received an argument.
func (m *MatchResult) Supplied(i int) bool {
	return m.Slots[i] != nil && m.Slots[i] != Value(MissingArg)
}

// MatchArgs performs R's three-pass argument matching: exact tags, then
// unique partial tags against the formals before `...`, then positions.
// Leftover arguments go to `...` in call order with their tags, or are
// an error when there is no `...`. supplied must already have any `...`
// of the caller expanded.
func MatchArgs(formals []string, supplied []Arg) (*MatchResult, error) {
	nf := len(formals)
	res := &MatchResult{Slots: make([]Value, nf), DotsAt: -1}

	// 0 unused, 1 partially matched, 2 exactly matched
	used := make([]int, len(supplied))
	fmatched := make([]int, nf)

	for i, f := range formals {
		if f == "..." {
			res.DotsAt = i
			continue
		}
		for j, a := range supplied {
			if a.Tag == "" || used[j] != 0 || a.Tag != f {
				continue
			}
			if fmatched[i] != 0 {
				return nil, errorf(KindArgumentMatch, "formal argument \"%s\" matched by multiple actual arguments", f)
			}
			fmatched[i] = 2
			used[j] = 2
			res.Slots[i] = a.Value
		}
	}

	// partial matching stops at `...`
	for i, f := range formals {
		if f == "..." {
			break
		}
		if fmatched[i] == 2 {
			continue
		}
		for j, a := range supplied {
			if a.Tag == "" || used[j] == 2 || !strings.HasPrefix(f, a.Tag) {
				continue
			}
			if fmatched[i] != 0 {
				return nil, errorf(KindArgumentMatch, "formal argument \"%s\" matched by multiple actual arguments", f)
			}
			if used[j] == 1 {
				return nil, errorf(KindArgumentMatch, "argument %d matches multiple formal arguments", j+1)
			}
			fmatched[i] = 1
			used[j] = 1
			res.Slots[i] = a.Value
		}
	}

	j := 0
	for i, f := range formals {
		if f == "..." {
			break
		}
		if fmatched[i] != 0 {
			continue
		}
		for j < len(supplied) && (used[j] != 0 || supplied[j].Tag != "") {
			j++
		}
		if j == len(supplied) {
			break
		}
		fmatched[i] = 3
		used[j] = 3
		res.Slots[i] = supplied[j].Value
		j++
	}

	var unused []Arg
	for k, a := range supplied {
		if used[k] == 0 {
			unused = append(unused, a)
		}
	}
	if res.DotsAt >= 0 {
		res.Dots = unused
		return res, nil
	}
	if len(unused) > 0 {
		return nil, unusedArgsError(unused)
	}
	return res, nil
}

func unusedArgsError(unused []Arg) *RError {
	parts := make([]string, len(unused))
	for i, a := range unused {
		src := deparseOneLine(promiseExpr(a.Value))
		if a.Tag != "" {
			parts[i] = fmt.Sprintf("%s = %s", quoteName(a.Tag), src)
		} else {
			parts[i] = src
		}
	}
	word := "argument"
	if len(unused) > 1 {
		word = "arguments"
	}
	return errorf(KindArgumentMatch, "unused %s (%s)", word, strings.Join(parts, ", "))
}

// matchBuiltin matches the arguments of a builtin that declares formals.
func matchBuiltin(b *Builtin, args []Arg) (*MatchResult, error) {
	return MatchArgs(b.Formals, args)
}

// Arg returns the value matched to the formal name, or nil. Builtins
// with declared formals read their arguments through it.
func (bc *BuiltinCall) Arg(name string) Value {
	if bc.matched == nil {
		return nil
	}
	for i, f := range bc.formals {
		if f == name {
			v := bc.matched.Slots[i]
			if v == Value(MissingArg) {
				return nil
			}
			return v
		}
	}
	return nil
}

// Dots returns the arguments a builtin's `...` formal captured.
func (bc *BuiltinCall) Dots() []Arg {
	if bc.matched == nil {
		return bc.Args
	}
	return bc.matched.Dots
}
