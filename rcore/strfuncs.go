package rcore

import (
	"fmt"
	"regexp"
	"strings"
	"unicode/utf8"
)

// stringArg is the optional scalar string argument name, def when it
// was not supplied.
func stringArg(bc *BuiltinCall, name, def string) (string, error) {
	v := bc.Arg(name)
	if v == nil {
		return def, nil
	}
	c, ok := v.(*Character)
	if !ok || c.Len() != 1 || c.V[0] == NAString {
		return "", errorf(KindEval, "invalid '%s' argument", name)
	}
	return c.V[0], nil
}

// pasteStrings renders one paste() argument.
func (rt *Runtime) pasteStrings(v Value) ([]string, error) {
	switch x := v.(type) {
	case *Symbol:
		return []string{x.Name}, nil
	case *Language:
		return []string{deparseOneLine(x)}, nil
	case *List:
		out := make([]string, x.Len())
		for i, e := range x.V {
			if c, ok := e.(*Character); ok && c.Len() == 1 {
				out[i] = c.V[0]
			} else {
				out[i] = deparseOneLine(e)
			}
		}
		return out, nil
	}
	c, err := asCharacterVector(v, rt)
	if err != nil {
		return nil, err
	}
	out := make([]string, c.Len())
	for i, s := range c.V {
		if s == NAString {
			s = "NA"
		}
		out[i] = s
	}
	return out, nil
}

// PasteFunction serves paste and paste0. Zero length arguments take
// part as "" unless every argument is empty.
func PasteFunction(rt *Runtime, bc *BuiltinCall) (Value, error) {
	sep := " "
	if bc.Name == "paste0" {
		sep = ""
	} else {
		var err error
		if sep, err = stringArg(bc, "sep", " "); err != nil {
			return nil, err
		}
	}
	var collapse *string
	if c := bc.Arg("collapse"); c != nil {
		if _, isNull := c.(*NullValue); !isNull {
			s, err := stringArg(bc, "collapse", "")
			if err != nil {
				return nil, err
			}
			collapse = &s
		}
	}
	var cols [][]string
	n := 0
	for _, a := range bc.Dots() {
		col, err := rt.pasteStrings(a.Value)
		if err != nil {
			return nil, err
		}
		if len(col) > n {
			n = len(col)
		}
		cols = append(cols, col)
	}
	res := make([]string, n)
	for i := range res {
		parts := make([]string, 0, len(cols))
		for _, col := range cols {
			if len(col) == 0 {
				parts = append(parts, "")
				continue
			}
			parts = append(parts, col[i%len(col)])
		}
		res[i] = strings.Join(parts, sep)
	}
	if collapse != nil {
		return strScalar(strings.Join(res, *collapse)), nil
	}
	return Str(res...), nil
}

// NcharFunction counts characters, or bytes with type="bytes". A
// logical NA counts as the two characters of "NA".
func NcharFunction(rt *Runtime, bc *BuiltinCall) (Value, error) {
	x := bc.Arg("x")
	if x == nil {
		return nil, WrongNargs
	}
	typ, err := stringArg(bc, "type", "chars")
	if err != nil {
		return nil, err
	}
	if !IsAtomic(x) {
		if _, isNull := x.(*NullValue); isNull {
			return &Integer{V: []int32{}}, nil
		}
		return nil, errorf(KindEval, "'nchar()' requires a character vector")
	}
	_, isLgl := x.(*Logical)
	c, err := asCharacterVector(x, rt)
	if err != nil {
		return nil, err
	}
	r := make([]int32, c.Len())
	for i, s := range c.V {
		switch {
		case s == NAString && isLgl:
			r[i] = 2
		case s == NAString:
			r[i] = NAInteger
		case strings.HasPrefix(typ, "b"):
			r[i] = int32(len(s))
		default:
			r[i] = int32(utf8.RuneCountInString(s))
		}
	}
	return &Integer{V: r, attrs: keepStructural(x.Attrs())}, nil
}

// CaseFunction returns toupper or tolower.
func CaseFunction(upper bool) BuiltinFunction {
	return func(rt *Runtime, bc *BuiltinCall) (Value, error) {
		x := bc.Arg("x")
		if x == nil {
			return nil, WrongNargs
		}
		c, ok := x.(*Character)
		if !ok {
			if !IsAtomic(x) {
				return nil, errorf(KindEval, "non-character argument")
			}
			var err error
			if c, err = asCharacterVector(x, rt); err != nil {
				return nil, err
			}
		}
		r := make([]string, c.Len())
		for i, s := range c.V {
			switch {
			case s == NAString:
				r[i] = s
			case upper:
				r[i] = strings.ToUpper(s)
			default:
				r[i] = strings.ToLower(s)
			}
		}
		return &Character{V: r, attrs: keepStructural(x.Attrs())}, nil
	}
}

// SubstrFunction is substr(x, start, stop), counting characters from 1.
func SubstrFunction(rt *Runtime, bc *BuiltinCall) (Value, error) {
	x, start, stop := bc.Arg("x"), bc.Arg("start"), bc.Arg("stop")
	if x == nil || start == nil || stop == nil {
		return nil, WrongNargs
	}
	c, err := asCharacterVector(x, rt)
	if err != nil {
		return nil, err
	}
	st, err := asIntegerVector(start, rt)
	if err != nil {
		return nil, err
	}
	sp, err := asIntegerVector(stop, rt)
	if err != nil {
		return nil, err
	}
	if c.Len() > 0 && (st.Len() == 0 || sp.Len() == 0) {
		return nil, errorf(KindEval, "invalid substring arguments")
	}
	r := make([]string, c.Len())
	for i, s := range c.V {
		a, b := st.V[i%st.Len()], sp.V[i%sp.Len()]
		if s == NAString || a == NAInteger || b == NAInteger {
			r[i] = NAString
			continue
		}
		runes := []rune(s)
		if a < 1 {
			a = 1
		}
		if int(b) > len(runes) {
			b = int32(len(runes))
		}
		if a > b {
			r[i] = ""
			continue
		}
		r[i] = string(runes[a-1 : b])
	}
	return &Character{V: r, attrs: keepStructural(x.Attrs())}, nil
}

var sprintfSpec = regexp.MustCompile(`%(%|[-+ 0#]*[0-9]*(?:\.[0-9]+)?[dioxXfeEgGs])`)

// SprintfFunction formats vectorised over fmt and the arguments.
func SprintfFunction(rt *Runtime, bc *BuiltinCall) (Value, error) {
	fv := bc.Arg("fmt")
	if fv == nil {
		return nil, WrongNargs
	}
	fmts, ok := fv.(*Character)
	if !ok {
		return nil, errorf(KindEval, "'fmt' is not a character vector")
	}
	args := bc.Dots()
	vecs := make([]Vector, len(args))
	n := fmts.Len()
	for i, a := range args {
		vec, ok := a.Value.(Vector)
		if !ok || !IsAtomic(a.Value) {
			return nil, errorf(KindEval, "unsupported type")
		}
		vecs[i] = vec
		if vec.Len() == 0 {
			return &Character{V: []string{}}, nil
		}
		if vec.Len() > n {
			n = vec.Len()
		}
	}
	if fmts.Len() == 0 {
		return &Character{V: []string{}}, nil
	}
	out := make([]string, n)
	for i := range out {
		f := fmts.V[i%fmts.Len()]
		next := 0
		var ferr error
		out[i] = sprintfSpec.ReplaceAllStringFunc(f, func(spec string) string {
			if spec == "%%" {
				return "%"
			}
			if next >= len(vecs) {
				ferr = errorf(KindEval, "too few arguments")
				return spec
			}
			vec := vecs[next]
			next++
			s, err := sprintfOne(spec, vec, i%vec.Len())
			if err != nil {
				ferr = err
			}
			return s
		})
		if ferr != nil {
			return nil, ferr
		}
	}
	return Str(out...), nil
}

func sprintfOne(spec string, vec Vector, i int) (string, error) {
	verb := spec[len(spec)-1]
	flags := spec[:len(spec)-1]
	switch verb {
	case 's':
		s := elemString(vec, i, 15)
		if s == NAString {
			s = "NA"
		}
		return fmt.Sprintf(flags+"s", s), nil
	case 'd', 'i', 'o', 'x', 'X':
		if verb == 'i' {
			verb = 'd'
		}
		if d, isDbl := vec.(*Double); isDbl && d.V[i] != float64(int64(d.V[i])) && !IsNAorNaN(d.V[i]) {
			return "", errorf(KindEval, "invalid format '%s'; use format %%f, %%e, %%g or %%a for numeric objects", spec)
		}
		if _, isChar := vec.(*Character); isChar {
			return "", errorf(KindEval, "invalid format '%s'; use format %%s for character objects", spec)
		}
		v, _ := elemDouble(vec, i)
		if IsNAorNaN(v) {
			return fmt.Sprintf(strings.TrimRight(flags, "0")+"s", "NA"), nil
		}
		return fmt.Sprintf(flags+string(verb), int64(v)), nil
	}
	if _, isChar := vec.(*Character); isChar {
		return "", errorf(KindEval, "invalid format '%s'; use format %%s for character objects", spec)
	}
	v, _ := elemDouble(vec, i)
	if s, special := formatNonFinite(v); special {
		return fmt.Sprintf(strings.TrimRight(flags, "0")+"s", s), nil
	}
	return fmt.Sprintf(spec, v), nil
}

// catItem renders one cat() argument as its elements.
func catItem(v Value, pos int) ([]string, error) {
	switch x := v.(type) {
	case *NullValue:
		return nil, nil
	case *Symbol:
		return []string{x.Name}, nil
	case *Character:
		out := make([]string, x.Len())
		for i, s := range x.V {
			if s == NAString {
				s = "NA"
			}
			out[i] = s
		}
		return out, nil
	case *Double:
		out := make([]string, x.Len())
		for i, f := range x.V {
			out[i] = formatReal(f, 7)
		}
		return out, nil
	case *List:
		var out []string
		for _, e := range x.V {
			if vec, ok := e.(Vector); !ok || !IsAtomic(e) || vec.Len() != 1 {
				return nil, errorf(KindEval, "argument %d (type 'list') cannot be handled by 'cat'", pos)
			}
			s, err := catItem(e, pos)
			if err != nil {
				return nil, err
			}
			out = append(out, s...)
		}
		return out, nil
	case Vector:
		if IsAtomic(x) {
			out := make([]string, x.Len())
			for i := range out {
				s := elemString(x, i, 7)
				if s == NAString {
					s = "NA"
				}
				out[i] = s
			}
			return out, nil
		}
	}
	return nil, errorf(KindEval, "argument %d (type '%s') cannot be handled by 'cat'", pos, v.Type())
}

// CatFunction writes its arguments to the runtime's output, separated
// by sep.
func CatFunction(rt *Runtime, bc *BuiltinCall) (Value, error) {
	sep, err := stringArg(bc, "sep", " ")
	if err != nil {
		return nil, err
	}
	var items []string
	for i, a := range bc.Dots() {
		s, err := catItem(a.Value, i+1)
		if err != nil {
			return nil, err
		}
		items = append(items, s...)
	}
	fmt.Fprint(rt.Out, strings.Join(items, sep))
	rt.visible = false
	return Nil, nil
}

// PrintDefaultFunction is print.default: the Go printer, returning x
// invisibly.
func PrintDefaultFunction(rt *Runtime, bc *BuiltinCall) (Value, error) {
	x := bc.Arg("x")
	if x == nil {
		return nil, WrongNargs
	}
	fmt.Fprint(rt.Out, rt.formatValue(x))
	rt.visible = false
	return x, nil
}

// FormatDefaultFunction renders the elements of x as strings of a
// common width, keeping names and dims.
func FormatDefaultFunction(rt *Runtime, bc *BuiltinCall) (Value, error) {
	x := bc.Arg("x")
	if x == nil {
		return nil, WrongNargs
	}
	switch v := x.(type) {
	case *NullValue:
		return &Character{V: []string{}}, nil
	case *List:
		out := make([]string, v.Len())
		for i, e := range v.V {
			if vec, ok := e.(Vector); ok && IsAtomic(e) {
				out[i] = strings.Join(formatElements(vec, false), ", ")
			} else {
				out[i] = deparseOneLine(e)
			}
		}
		return &Character{V: out, attrs: keepStructural(v.Attrs())}, nil
	case Vector:
		elems := formatElements(v, false)
		w := maxWidth(elems)
		_, left := v.(*Character)
		for i, s := range elems {
			if left {
				elems[i] = padRight(s, w)
			} else {
				elems[i] = padLeft(s, w)
			}
		}
		return &Character{V: elems, attrs: keepStructural(v.Attrs())}, nil
	}
	return Str(deparseLines(x)...), nil
}

func DeparseFunction(rt *Runtime, bc *BuiltinCall) (Value, error) {
	x := bc.Arg("expr")
	if x == nil {
		return nil, WrongNargs
	}
	return Str(deparseLines(x)...), nil
}

// StrFunctions returns the string and output builtins.
func StrFunctions() map[string]*Builtin {
	return map[string]*Builtin{
		"paste":          {Fn: PasteFunction, Formals: []string{"...", "sep", "collapse"}},
		"paste0":         {Fn: PasteFunction, Formals: []string{"...", "collapse"}},
		"nchar":          {Fn: NcharFunction, Formals: []string{"x", "type"}},
		"toupper":        {Fn: CaseFunction(true), Formals: []string{"x"}},
		"tolower":        {Fn: CaseFunction(false), Formals: []string{"x"}},
		"substr":         {Fn: SubstrFunction, Formals: []string{"x", "start", "stop"}},
		"sprintf":        {Fn: SprintfFunction, Formals: []string{"fmt", "..."}},
		"cat":            {Fn: CatFunction, Formals: []string{"...", "sep"}},
		"print.default":  {Fn: PrintDefaultFunction, Formals: []string{"x", "..."}},
		"format.default": {Fn: FormatDefaultFunction, Formals: []string{"x", "..."}},
		"deparse":        {Fn: DeparseFunction, Formals: []string{"expr", "width.cutoff"}},
	}
}
