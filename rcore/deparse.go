package rcore

import (
	"fmt"
	"strings"
	"unicode"
)

// binary operator table shared by the parser and the deparser. Higher
// Bp binds tighter.
type opInfo struct {
	Bp     int
	Right  bool // right associative
	Spaced bool // deparsed with spaces around it
}

var binaryOps = map[string]opInfo{
	"?":   {1, false, true},
	"=":   {2, true, true},
	"<-":  {3, true, true},
	"<<-": {3, true, true},
	"->":  {4, false, true},
	"->>": {4, false, true},
	"~":   {5, false, true},
	"||":  {6, false, true},
	"|":   {6, false, true},
	"&&":  {7, false, true},
	"&":   {7, false, true},
	"==":  {9, false, true},
	"!=":  {9, false, true},
	"<":   {9, false, true},
	">":   {9, false, true},
	"<=":  {9, false, true},
	">=":  {9, false, true},
	"+":   {10, false, true},
	"-":   {10, false, true},
	"*":   {11, false, true},
	"/":   {11, false, false},
	"%%":  {12, false, false},
	"%/%": {12, false, false},
	"|>":  {12, false, true},
	":":   {13, false, false},
	"^":   {15, true, false},
	"$":   {16, false, false},
	"@":   {16, false, false},
	"::":  {17, false, false},
	":::": {17, false, false},
}

const (
	bpNot   = 8
	bpUnary = 14
)

func lookupBinary(name string) (opInfo, bool) {
	if op, ok := binaryOps[name]; ok {
		return op, true
	}
	if len(name) >= 2 && strings.HasPrefix(name, "%") && strings.HasSuffix(name, "%") {
		return opInfo{Bp: 12, Spaced: true}, true
	}
	return opInfo{}, false
}

var reservedWords = map[string]bool{
	"if": true, "else": true, "repeat": true, "while": true, "function": true,
	"for": true, "next": true, "break": true, "TRUE": true, "FALSE": true,
	"NULL": true, "Inf": true, "NaN": true, "NA": true, "NA_integer_": true,
	"NA_real_": true, "NA_character_": true, "NA_complex_": true, "in": true,
}

// isSyntacticName reports whether name can appear unquoted in source.
func isSyntacticName(name string) bool {
	if name == "" || reservedWords[name] {
		return false
	}
	if name == "..." {
		return true
	}
	if _, ok := ddIndex(name); ok {
		return true
	}
	for i, r := range name {
		switch {
		case unicode.IsLetter(r):
		case r == '.':
			if i == 0 && len(name) > 1 && name[1] >= '0' && name[1] <= '9' {
				return false
			}
		case r == '_' || unicode.IsDigit(r):
			if i == 0 {
				return false
			}
		default:
			return false
		}
	}
	return true
}

// quoteName backquotes name if it is not syntactic.
func quoteName(name string) string {
	if isSyntacticName(name) {
		return name
	}
	return "`" + strings.ReplaceAll(name, "`", "\\`") + "`"
}

type deparser struct {
	b      strings.Builder
	indent int
}

// deparseLines renders v as R source, one string per line.
func deparseLines(v Value) []string {
	d := &deparser{}
	d.value(v, false)
	return strings.Split(d.b.String(), "\n")
}

// deparseOneLine renders v as R source on a single line, for messages.
func deparseOneLine(v Value) string {
	if v == nil {
		return "NULL"
	}
	lines := deparseLines(v)
	if len(lines) == 1 {
		return lines[0]
	}
	for i := range lines {
		lines[i] = strings.TrimSpace(lines[i])
	}
	return strings.Join(lines, " ")
}

func (d *deparser) write(s string) { d.b.WriteString(s) }

func (d *deparser) newline() {
	d.b.WriteByte('\n')
	d.b.WriteString(strings.Repeat("    ", d.indent))
}

// value deparses v. inCall selects backquoting of symbols.
func (d *deparser) value(v Value, inCall bool) {
	switch x := v.(type) {
	case nil:
		d.write("NULL")
	case *NullValue:
		d.write("NULL")
	case *Symbol:
		if inCall {
			d.write(quoteName(x.Name))
		} else {
			d.write(x.Name)
		}
	case *Language:
		d.call(x)
	case *Promise:
		d.value(x.Expr, inCall)
	case *Closure:
		d.write("function(")
		d.formals(x.Formals)
		d.write(") ")
		d.value(x.Body, true)
	case *Builtin:
		d.write(fmt.Sprintf(".Primitive(%s)", quoteString(x.Name)))
	case *EnvValue:
		d.write("<environment>")
	case *Dots:
		d.write("...")
	case *Pairlist:
		d.write("pairlist(")
		d.args(x.Args)
		d.write(")")
	case Vector:
		d.vector(x)
	default:
		d.write(fmt.Sprintf("<%s>", v.Type()))
	}
}

func (d *deparser) formals(formals []Arg) {
	for i, f := range formals {
		if i > 0 {
			d.write(", ")
		}
		d.write(quoteName(f.Tag))
		if f.Value != Value(MissingArg) && f.Value != nil {
			d.write(" = ")
			d.value(f.Value, true)
		}
	}
}

func (d *deparser) args(args []Arg) {
	for i, a := range args {
		if i > 0 {
			d.write(", ")
		}
		if a.Tag != "" {
			d.write(quoteName(a.Tag))
			if a.Value == Value(MissingArg) {
				d.write(" = ")
				continue
			}
			d.write(" = ")
		}
		if a.Value == Value(MissingArg) {
			continue
		}
		d.value(a.Value, true)
	}
}

// operand deparses an operand of an operator of binding power bp,
// adding parentheses where the operand binds more loosely.
func (d *deparser) operand(v Value, bp int, strict bool) {
	if l, ok := v.(*Language); ok {
		name := l.FnName()
		if op, isBin := lookupBinary(name); isBin && len(l.Args) == 2 {
			if op.Bp < bp || (strict && op.Bp == bp) {
				d.write("(")
				d.call(l)
				d.write(")")
				return
			}
		}
		if (name == "-" || name == "+") && len(l.Args) == 1 && bp > bpUnary {
			d.write("(")
			d.call(l)
			d.write(")")
			return
		}
		if name == "!" && len(l.Args) == 1 && bp > bpNot {
			d.write("(")
			d.call(l)
			d.write(")")
			return
		}
	}
	d.value(v, true)
}

func (d *deparser) call(l *Language) {
	name := l.FnName()
	args := l.Args
	if sym, ok := l.Fn.(*Symbol); ok {
		switch name {
		case "{":
			d.write("{")
			d.indent++
			for _, a := range args {
				d.newline()
				d.value(a.Value, true)
			}
			d.indent--
			d.newline()
			d.write("}")
			return
		case "(":
			if len(args) == 1 {
				d.write("(")
				d.value(args[0].Value, true)
				d.write(")")
				return
			}
		case "if":
			if len(args) >= 2 {
				d.write("if (")
				d.value(args[0].Value, true)
				d.write(") ")
				d.value(args[1].Value, true)
				if len(args) == 3 {
					d.write(" else ")
					d.value(args[2].Value, true)
				}
				return
			}
		case "for":
			if len(args) == 3 {
				d.write("for (")
				d.value(args[0].Value, true)
				d.write(" in ")
				d.value(args[1].Value, true)
				d.write(") ")
				d.value(args[2].Value, true)
				return
			}
		case "while":
			if len(args) == 2 {
				d.write("while (")
				d.value(args[0].Value, true)
				d.write(") ")
				d.value(args[1].Value, true)
				return
			}
		case "repeat":
			if len(args) == 1 {
				d.write("repeat ")
				d.value(args[0].Value, true)
				return
			}
		case "function":
			if len(args) >= 2 {
				d.write("function(")
				if pl, ok := args[0].Value.(*Pairlist); ok {
					d.formals(pl.Args)
				}
				d.write(") ")
				d.value(args[1].Value, true)
				return
			}
		case "[", "[[":
			if len(args) >= 1 {
				d.operand(args[0].Value, 16, false)
				d.write(name)
				d.args(args[1:])
				if name == "[" {
					d.write("]")
				} else {
					d.write("]]")
				}
				return
			}
		case "-", "+", "!", "~", "?":
			if len(args) == 1 {
				d.write(name)
				bp := bpUnary
				if name == "!" {
					bp = bpNot
				}
				d.operand(args[0].Value, bp, false)
				return
			}
		}
		if op, ok := lookupBinary(name); ok && len(args) == 2 && args[0].Tag == "" && args[1].Tag == "" {
			d.operand(args[0].Value, op.Bp, op.Right)
			if op.Spaced {
				d.write(" " + name + " ")
			} else {
				d.write(name)
			}
			if name == "$" || name == "@" {
				if s, ok := args[1].Value.(*Symbol); ok {
					d.write(quoteName(s.Name))
					return
				}
			}
			d.operand(args[1].Value, op.Bp, !op.Right)
			return
		}
		d.write(quoteName(sym.Name))
	} else {
		switch fn := l.Fn.(type) {
		case *Language:
			if fn.FnName() == "function" {
				d.write("(")
				d.call(fn)
				d.write(")")
			} else {
				d.call(fn)
			}
		default:
			d.value(fn, true)
		}
	}
	d.write("(")
	d.args(args)
	d.write(")")
}

func (d *deparser) vector(v Vector) {
	a := v.Attrs()
	extra := a.Without("names")
	if extra.Len() > 0 {
		d.write("structure(")
		d.vectorData(v)
		extra.Each(func(name string, val Value) {
			d.write(", ")
			d.write(quoteName(name))
			d.write(" = ")
			d.value(val, true)
		})
		d.write(")")
		return
	}
	d.vectorData(v)
}

func (d *deparser) vectorData(v Vector) {
	n := v.Len()
	names := namesOf(v)
	if l, ok := v.(*List); ok {
		d.write("list(")
		for i, e := range l.V {
			if i > 0 {
				d.write(", ")
			}
			if names != nil && names[i] != "" && names[i] != NAString {
				d.write(quoteName(names[i]) + " = ")
			}
			d.value(e, true)
		}
		d.write(")")
		return
	}
	if n == 0 {
		switch v.Type() {
		case TypeLogical:
			d.write("logical(0)")
		case TypeInteger:
			d.write("integer(0)")
		case TypeDouble:
			d.write("numeric(0)")
		case TypeComplex:
			d.write("complex(0)")
		case TypeCharacter:
			d.write("character(0)")
		case TypeRaw:
			d.write("raw(0)")
		}
		return
	}
	if names == nil {
		if iv, ok := v.(*Integer); ok && n > 1 && isIntRange(iv.V) {
			d.write(fmt.Sprintf("%d:%d", iv.V[0], iv.V[n-1]))
			return
		}
	}
	if r, ok := v.(*Raw); ok {
		parts := make([]string, n)
		for i, b := range r.V {
			parts[i] = fmt.Sprintf("0x%02x", b)
		}
		if n == 1 {
			d.write("as.raw(" + parts[0] + ")")
		} else {
			d.write("as.raw(c(" + strings.Join(parts, ", ") + "))")
		}
		return
	}
	if n == 1 && names == nil {
		d.write(deparseElem(v, 0, true))
		return
	}
	d.write("c(")
	for i := 0; i < n; i++ {
		if i > 0 {
			d.write(", ")
		}
		if names != nil && names[i] != "" && names[i] != NAString {
			d.write(quoteName(names[i]) + " = ")
		}
		d.write(deparseElem(v, i, false))
	}
	d.write(")")
}

func isIntRange(xs []int32) bool {
	for i, x := range xs {
		if x == NAInteger || (i > 0 && x != xs[i-1]+1) {
			return false
		}
	}
	return true
}

// deparseElem renders one element; alone selects the typed NA names.
func deparseElem(v Vector, i int, alone bool) string {
	switch x := v.(type) {
	case *Logical:
		switch x.V[i] {
		case NALogical:
			return "NA"
		case 0:
			return "FALSE"
		}
		return "TRUE"
	case *Integer:
		if x.V[i] == NAInteger {
			if alone {
				return "NA_integer_"
			}
			return "NA"
		}
		return fmt.Sprintf("%dL", x.V[i])
	case *Double:
		if IsNA(x.V[i]) {
			if alone {
				return "NA_real_"
			}
			return "NA"
		}
		return formatReal(x.V[i], 15)
	case *Complex:
		if isNAComplex(x.V[i]) {
			if alone {
				return "NA_complex_"
			}
			return "NA"
		}
		return formatComplex(x.V[i], 15)
	case *Character:
		if x.V[i] == NAString {
			if alone {
				return "NA_character_"
			}
			return "NA"
		}
		return quoteString(x.V[i])
	}
	return "NULL"
}
