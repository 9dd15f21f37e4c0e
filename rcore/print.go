package rcore

import (
	"fmt"
	"strings"
)

const printWidth = 80

// PrintValue writes v the way the R top level does. Objects with a
// class go through the print generic so S3 methods see them.
func (rt *Runtime) PrintValue(v Value, env EnvRef) error {
	if classAttr(v) != nil {
		_, err := rt.Eval(Call("print", forcedPromise(Sym("x"), v)), env)
		return err
	}
	_, err := fmt.Fprint(rt.Out, rt.formatValue(v))
	return err
}

// formatValue renders v as print.default does, newline terminated.
func (rt *Runtime) formatValue(v Value) string {
	var b strings.Builder
	rt.printTo(&b, v, "")
	return b.String()
}

func (rt *Runtime) printTo(b *strings.Builder, v Value, prefix string) {
	switch x := v.(type) {
	case nil, *NullValue:
		b.WriteString("NULL\n")
	case *Symbol:
		b.WriteString(x.Name + "\n")
	case *Language:
		for _, l := range deparseLines(x) {
			b.WriteString(l + "\n")
		}
	case *Closure:
		for _, l := range deparseLines(&Closure{Formals: x.Formals, Body: x.Body}) {
			b.WriteString(l + "\n")
		}
		if x.Env != rt.GlobalEnv && x.Env != rt.BaseEnv {
			b.WriteString(rt.envLabel(x.Env) + "\n")
		}
	case *Builtin:
		fmt.Fprintf(b, "function (...) .Primitive(%s)\n", quoteString(x.Name))
	case *EnvValue:
		b.WriteString(rt.envLabel(x.Ref) + "\n")
	case *List:
		rt.printList(b, x, prefix)
	case *Pairlist:
		rt.printList(b, NamedList(x.Args), prefix)
	case Vector:
		if d := dimOf(x); len(d) == 2 {
			printMatrix(b, x, d)
		} else {
			printVector(b, x)
		}
	default:
		fmt.Fprintf(b, "<%s>\n", v.Type())
	}
	rt.printAttrs(b, v, prefix)
}

func (rt *Runtime) envLabel(r EnvRef) string {
	if name := rt.environmentName(r); name != "" {
		return fmt.Sprintf("<environment: %s>", name)
	}
	return fmt.Sprintf("<environment: %v>", r)
}

// printAttrs shows the attributes print does not render itself.
func (rt *Runtime) printAttrs(b *strings.Builder, v Value, prefix string) {
	switch v.(type) {
	case nil, *EnvValue:
		return
	}
	v.Attrs().Each(func(name string, a Value) {
		switch name {
		case "names", "dim", "dimnames", "srcref":
			return
		}
		fmt.Fprintf(b, "attr(,%s)\n", quoteString(name))
		rt.printTo(b, a, prefix)
	})
}

func (rt *Runtime) printList(b *strings.Builder, x *List, prefix string) {
	if x.Len() == 0 {
		b.WriteString("list()\n")
		return
	}
	names := namesOf(x)
	for i, e := range x.V {
		tag := fmt.Sprintf("%s[[%d]]", prefix, i+1)
		if names != nil && names[i] != "" && names[i] != NAString {
			tag = prefix + "$" + quoteName(names[i])
		}
		b.WriteString(tag + "\n")
		if sub, ok := e.(*List); ok && classAttr(sub) == nil {
			rt.printList(b, sub, tag)
		} else {
			rt.printTo(b, e, tag)
		}
		b.WriteString("\n")
	}
}

func padLeft(s string, w int) string {
	if n := len([]rune(s)); n < w {
		return strings.Repeat(" ", w-n) + s
	}
	return s
}

func padRight(s string, w int) string {
	if n := len([]rune(s)); n < w {
		return s + strings.Repeat(" ", w-n)
	}
	return s
}

func maxWidth(ss []string) int {
	w := 0
	for _, s := range ss {
		if n := len([]rune(s)); n > w {
			w = n
		}
	}
	return w
}

// printVector lays out an atomic vector in rows of [i] indexed
// columns, or under its names when it has them.
func printVector(b *strings.Builder, x Vector) {
	n := x.Len()
	if n == 0 {
		if _, isChar := x.(*Character); isChar {
			b.WriteString("character(0)\n")
			return
		}
		b.WriteString(modeZero(x) + "\n")
		return
	}
	elems := formatElements(x, true)
	if names := namesOf(x); names != nil {
		printNamed(b, elems, names)
		return
	}
	w := maxWidth(elems)
	lab := len(fmt.Sprintf("[%d]", n))
	perLine := (printWidth - lab) / (w + 1)
	if perLine < 1 {
		perLine = 1
	}
	_, left := x.(*Character)
	for i := 0; i < n; i += perLine {
		b.WriteString(padLeft(fmt.Sprintf("[%d]", i+1), lab))
		for j := i; j < i+perLine && j < n; j++ {
			b.WriteByte(' ')
			if left {
				b.WriteString(padRight(elems[j], w))
			} else {
				b.WriteString(padLeft(elems[j], w))
			}
		}
		b.WriteString("\n")
	}
	trimTrailing(b)
}

// trimTrailing drops padding spaces at the ends of lines.
func trimTrailing(b *strings.Builder) {
	lines := strings.Split(b.String(), "\n")
	for i := range lines {
		lines[i] = strings.TrimRight(lines[i], " ")
	}
	b.Reset()
	b.WriteString(strings.Join(lines, "\n"))
}

func modeZero(x Vector) string {
	switch x.(type) {
	case *Logical:
		return "logical(0)"
	case *Integer:
		return "integer(0)"
	case *Double:
		return "numeric(0)"
	case *Complex:
		return "complex(0)"
	case *Raw:
		return "raw(0)"
	}
	return "character(0)"
}

func printNamed(b *strings.Builder, elems, names []string) {
	shown := make([]string, len(names))
	for i, nm := range names {
		if nm == NAString {
			nm = "<NA>"
		}
		shown[i] = nm
	}
	w := maxWidth(elems)
	if nw := maxWidth(shown); nw > w {
		w = nw
	}
	perLine := printWidth / (w + 1)
	if perLine < 1 {
		perLine = 1
	}
	for i := 0; i < len(elems); i += perLine {
		var top, bot []string
		for j := i; j < i+perLine && j < len(elems); j++ {
			top = append(top, padLeft(shown[j], w))
			bot = append(bot, padLeft(elems[j], w))
		}
		b.WriteString(strings.Join(top, " ") + "\n")
		b.WriteString(strings.Join(bot, " ") + "\n")
	}
}

// printMatrix prints a two dimensional array column aligned, with
// dimnames when present.
func printMatrix(b *strings.Builder, x Vector, d []int) {
	nr, nc := d[0], d[1]
	elems := formatElements(x, true)
	var rowNames, colNames []string
	if dn, ok := x.Attrs().Get("dimnames").(*List); ok && dn.Len() == 2 {
		if c, ok := dn.V[0].(*Character); ok {
			rowNames = c.V
		}
		if c, ok := dn.V[1].(*Character); ok {
			colNames = c.V
		}
	}
	rowLab := make([]string, nr)
	for i := range rowLab {
		if rowNames != nil {
			rowLab[i] = rowNames[i]
		} else {
			rowLab[i] = fmt.Sprintf("[%d,]", i+1)
		}
	}
	rw := maxWidth(rowLab)
	header := padRight("", rw)
	cols := make([][]string, nc)
	for j := 0; j < nc; j++ {
		lab := fmt.Sprintf("[,%d]", j+1)
		if colNames != nil {
			lab = colNames[j]
		}
		col := elems[j*nr : (j+1)*nr]
		w := maxWidth(append([]string{lab}, col...))
		header += " " + padLeft(lab, w)
		cols[j] = make([]string, nr)
		for i := range col {
			cols[j][i] = padLeft(col[i], w)
		}
	}
	b.WriteString(header + "\n")
	for i := 0; i < nr; i++ {
		b.WriteString(padRight(rowLab[i], rw))
		for j := 0; j < nc; j++ {
			b.WriteString(" " + cols[j][i])
		}
		b.WriteString("\n")
	}
}
