package rcore

import (
	"math"
	"strconv"
	"strings"
)

// sciInfo describes the shortest rendering of x with at most digits
// significant digits: sig significant digits and decimal exponent e.
type sciInfo struct {
	neg bool
	sig int
	e   int
}

func scientific(x float64, digits int) sciInfo {
	info := sciInfo{neg: x < 0}
	if x == 0 {
		info.sig = 1
		return info
	}
	ax := math.Abs(x)
	full := strconv.FormatFloat(ax, 'e', digits-1, 64)
	ref, _ := strconv.ParseFloat(full, 64)
	info.sig = digits
	for s := 1; s <= digits; s++ {
		cand := strconv.FormatFloat(ax, 'e', s-1, 64)
		cv, _ := strconv.ParseFloat(cand, 64)
		if cv == ref {
			info.sig = s
			break
		}
	}
	str := strconv.FormatFloat(ax, 'e', info.sig-1, 64)
	k := strings.IndexByte(str, 'e')
	info.e, _ = strconv.Atoi(str[k+1:])
	return info
}

// fixed notation: digits left and right of the point.
func (s sciInfo) fixedParts() (left, rgt int) {
	if s.e >= 0 {
		left = s.e + 1
		rgt = s.sig - s.e - 1
	} else {
		left = 1
		rgt = s.sig - s.e - 1
	}
	if rgt < 0 {
		rgt = 0
	}
	return
}

func expWidth(e int) int {
	if e >= 100 || e <= -100 {
		return 5
	}
	return 4
}

// formatReal renders x the way R does for a single number: the shortest
// representation with at most digits significant digits, in fixed
// notation unless scientific is narrower.
func formatReal(x float64, digits int) string {
	if special, ok := formatNonFinite(x); ok {
		return special
	}
	s := scientific(x, digits)
	left, rgt := s.fixedParts()
	neg := 0
	if s.neg {
		neg = 1
	}
	fixedW := neg + left
	if rgt > 0 {
		fixedW += rgt + 1
	}
	sciW := neg + 1 + expWidth(s.e)
	if s.sig > 1 {
		sciW += s.sig
	}
	if fixedW <= sciW {
		return strconv.FormatFloat(x, 'f', rgt, 64)
	}
	return formatSci(x, s.sig-1)
}

func formatNonFinite(x float64) (string, bool) {
	switch {
	case IsNA(x):
		return "NA", true
	case math.IsNaN(x):
		return "NaN", true
	case math.IsInf(x, 1):
		return "Inf", true
	case math.IsInf(x, -1):
		return "-Inf", true
	}
	return "", false
}

// formatSci renders x as R does: a mantissa with mdigits decimals and a
// signed exponent of at least two digits.
func formatSci(x float64, mdigits int) string {
	str := strconv.FormatFloat(x, 'e', mdigits, 64)
	k := strings.IndexByte(str, 'e')
	mant, exp := str[:k], str[k+1:]
	sign := exp[0]
	exp = exp[1:]
	for len(exp) > 2 && exp[0] == '0' {
		exp = exp[1:]
	}
	if len(exp) < 2 {
		exp = "0" + exp
	}
	return mant + "e" + string(sign) + exp
}

// formatRealCommon formats a vector of doubles with a common number of
// decimals, as print does.
func formatRealCommon(xs []float64, digits int) []string {
	out := make([]string, len(xs))
	maxLeft, maxRgt, maxSig := 1, 0, 1
	minE, maxE := 0, 0
	anyNeg := false
	first := true
	for _, x := range xs {
		if _, ok := formatNonFinite(x); ok {
			continue
		}
		s := scientific(x, digits)
		left, rgt := s.fixedParts()
		if first {
			minE, maxE = s.e, s.e
			first = false
		}
		if left > maxLeft {
			maxLeft = left
		}
		if rgt > maxRgt {
			maxRgt = rgt
		}
		if s.sig > maxSig {
			maxSig = s.sig
		}
		if s.e < minE {
			minE = s.e
		}
		if s.e > maxE {
			maxE = s.e
		}
		if s.neg {
			anyNeg = true
		}
	}
	if first {
		for i, x := range xs {
			out[i], _ = formatNonFinite(x)
		}
		return out
	}
	neg := 0
	if anyNeg {
		neg = 1
	}
	fixedW := neg + maxLeft
	if maxRgt > 0 {
		fixedW += maxRgt + 1
	}
	ew := expWidth(minE)
	if w := expWidth(maxE); w > ew {
		ew = w
	}
	sciW := neg + 1 + ew
	if maxSig > 1 {
		sciW += maxSig
	}
	for i, x := range xs {
		if special, ok := formatNonFinite(x); ok {
			out[i] = special
			continue
		}
		if fixedW <= sciW {
			out[i] = strconv.FormatFloat(x, 'f', maxRgt, 64)
		} else {
			out[i] = formatSci(x, maxSig-1)
		}
	}
	return out
}

func formatComplex(z complex128, digits int) string {
	if isNAComplex(z) {
		return "NA"
	}
	re := formatReal(real(z), digits)
	im := imag(z)
	sign := "+"
	if im < 0 || (im == 0 && math.Signbit(im)) {
		sign = "-"
		im = -im
	}
	return re + sign + formatReal(im, digits) + "i"
}

// quoteString renders s as an R string literal.
func quoteString(s string) string {
	if s == NAString {
		return "NA"
	}
	var b strings.Builder
	b.WriteByte('"')
	for _, r := range s {
		switch r {
		case '"':
			b.WriteString(`\"`)
		case '\\':
			b.WriteString(`\\`)
		case '\n':
			b.WriteString(`\n`)
		case '\t':
			b.WriteString(`\t`)
		case '\r':
			b.WriteString(`\r`)
		case 0:
			b.WriteString(`\0`)
		default:
			if r < 0x20 {
				b.WriteString(`\` + strconv.FormatInt(int64(r), 8))
				continue
			}
			b.WriteRune(r)
		}
	}
	b.WriteByte('"')
	return b.String()
}

// formatElements renders each element of an atomic vector for print:
// strings quoted, doubles with common decimals.
func formatElements(v Vector, quote bool) []string {
	n := v.Len()
	out := make([]string, n)
	switch x := v.(type) {
	case *Double:
		return formatRealCommon(x.V, 7)
	case *Character:
		for i, s := range x.V {
			switch {
			case s == NAString && quote:
				out[i] = "NA"
			case s == NAString:
				out[i] = "<NA>"
			case quote:
				out[i] = quoteString(s)
			default:
				out[i] = s
			}
		}
		return out
	case *Complex:
		for i, z := range x.V {
			out[i] = formatComplex(z, 7)
		}
		return out
	}
	for i := 0; i < n; i++ {
		s := elemString(v, i, 7)
		if s == NAString {
			s = "NA"
		}
		out[i] = s
	}
	return out
}
