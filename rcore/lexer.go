package rcore

import (
	"fmt"
	"math"
	"strconv"
	"strings"
	"unicode"
	"unicode/utf8"
)

type TokenType int

const (
	TokenTypeEmpty TokenType = iota
	TokenLParen
	TokenRParen
	TokenLSquare
	TokenLDoubleSquare
	TokenRSquare
	TokenLCurly
	TokenRCurly
	TokenComma
	TokenSemicolon
	TokenNewline
	TokenSymbol
	TokenBacktickName
	TokenString
	TokenNum
	TokenInt
	TokenComplex
	TokenConst
	TokenOperator
	TokenKeyword
	TokenLambda
	TokenEnd
)

type Token struct {
	typ  TokenType
	str  string
	val  Value
	line int
	// spaceBefore is set when whitespace separated this token from the
	// previous one.
	spaceBefore bool
}

var EndTk = Token{typ: TokenEnd}

func (t Token) String() string {
	switch t.typ {
	case TokenLParen:
		return "("
	case TokenRParen:
		return ")"
	case TokenLSquare:
		return "["
	case TokenLDoubleSquare:
		return "[["
	case TokenRSquare:
		return "]"
	case TokenLCurly:
		return "{"
	case TokenRCurly:
		return "}"
	case TokenComma:
		return ","
	case TokenSemicolon:
		return ";"
	case TokenNewline:
		return "newline"
	case TokenString:
		return quoteString(t.str)
	case TokenBacktickName:
		return "`" + t.str + "`"
	case TokenLambda:
		return "\\"
	case TokenEnd:
		return "end of input"
	}
	return t.str
}

// SyntaxError reports a parse failure with its position. Incomplete is
// set when more input could complete the expression, which the REPL uses
// to ask for a continuation line.
type SyntaxError struct {
	Line       int
	Msg        string
	Incomplete bool
}

func (e *SyntaxError) Error() string {
	return fmt.Sprintf("<text>:%d: %s", e.Line, e.Msg)
}

type Lexer struct {
	src    []rune
	pos    int
	line   int
	tokens []Token
}

func NewLexer(src string) *Lexer {
	return &Lexer{src: []rune(src), line: 1}
}

func (lexer *Lexer) Linenum() int {
	return lexer.line
}

// PeekNextToken returns the next token without consuming it.
func (lexer *Lexer) PeekNextToken() (Token, error) {
	return lexer.PeekAhead(0)
}

// PeekAhead looks n tokens past the next one.
func (lexer *Lexer) PeekAhead(n int) (Token, error) {
	for len(lexer.tokens) <= n {
		tok, err := lexer.scan()
		if err != nil {
			return EndTk, err
		}
		lexer.tokens = append(lexer.tokens, tok)
		if tok.typ == TokenEnd {
			break
		}
	}
	if n >= len(lexer.tokens) {
		return lexer.tokens[len(lexer.tokens)-1], nil
	}
	return lexer.tokens[n], nil
}

func (lexer *Lexer) GetNextToken() (Token, error) {
	tok, err := lexer.PeekNextToken()
	if err != nil {
		return tok, err
	}
	if tok.typ != TokenEnd {
		lexer.tokens = lexer.tokens[1:]
	}
	return tok, nil
}

func (lexer *Lexer) errorf(incomplete bool, format string, args ...interface{}) error {
	return &SyntaxError{Line: lexer.line, Msg: fmt.Sprintf(format, args...), Incomplete: incomplete}
}

func (lexer *Lexer) peekRune(k int) rune {
	if lexer.pos+k >= len(lexer.src) {
		return 0
	}
	return lexer.src[lexer.pos+k]
}

func (lexer *Lexer) scan() (Token, error) {
	space := false
	for lexer.pos < len(lexer.src) {
		r := lexer.src[lexer.pos]
		if r == '#' {
			for lexer.pos < len(lexer.src) && lexer.src[lexer.pos] != '\n' {
				lexer.pos++
			}
			continue
		}
		if r == ' ' || r == '\t' || r == '\r' || r == '\f' {
			lexer.pos++
			space = true
			continue
		}
		break
	}
	if lexer.pos >= len(lexer.src) {
		return Token{typ: TokenEnd, line: lexer.line}, nil
	}
	tok, err := lexer.scanToken()
	tok.spaceBefore = space
	return tok, err
}

func (lexer *Lexer) tok(typ TokenType, str string, width int) Token {
	lexer.pos += width
	return Token{typ: typ, str: str, line: lexer.line}
}

func (lexer *Lexer) scanToken() (Token, error) {
	r := lexer.src[lexer.pos]
	switch r {
	case '\n':
		t := lexer.tok(TokenNewline, "\n", 1)
		lexer.line++
		return t, nil
	case '(':
		return lexer.tok(TokenLParen, "(", 1), nil
	case ')':
		return lexer.tok(TokenRParen, ")", 1), nil
	case '{':
		return lexer.tok(TokenLCurly, "{", 1), nil
	case '}':
		return lexer.tok(TokenRCurly, "}", 1), nil
	case '[':
		if lexer.peekRune(1) == '[' {
			return lexer.tok(TokenLDoubleSquare, "[[", 2), nil
		}
		return lexer.tok(TokenLSquare, "[", 1), nil
	case ']':
		return lexer.tok(TokenRSquare, "]", 1), nil
	case ',':
		return lexer.tok(TokenComma, ",", 1), nil
	case ';':
		return lexer.tok(TokenSemicolon, ";", 1), nil
	case '\\':
		return lexer.tok(TokenLambda, "\\", 1), nil
	case '"', '\'':
		return lexer.scanString(r)
	case '`':
		return lexer.scanBacktick()
	case '%':
		end := lexer.pos + 1
		for end < len(lexer.src) && lexer.src[end] != '%' && lexer.src[end] != '\n' {
			end++
		}
		if end >= len(lexer.src) || lexer.src[end] != '%' {
			return EndTk, lexer.errorf(false, "unexpected input")
		}
		op := string(lexer.src[lexer.pos : end+1])
		return lexer.tok(TokenOperator, op, end+1-lexer.pos), nil
	}
	if r == 'r' || r == 'R' {
		if q := lexer.peekRune(1); q == '"' || q == '\'' {
			return lexer.scanRawString()
		}
	}
	if unicode.IsDigit(r) || (r == '.' && unicode.IsDigit(lexer.peekRune(1))) {
		return lexer.scanNumber()
	}
	if unicode.IsLetter(r) || r == '.' {
		return lexer.scanIdent()
	}
	for _, op := range operatorsByLength {
		if lexer.hasPrefix(op) {
			if op == "**" {
				return lexer.tok(TokenOperator, "^", 2), nil
			}
			return lexer.tok(TokenOperator, op, utf8.RuneCountInString(op)), nil
		}
	}
	return EndTk, lexer.errorf(false, "unexpected input '%c'", r)
}

// longest first, so "<<-" wins over "<-" and "<".
var operatorsByLength = []string{
	"<<-", "->>", ":::",
	"<-", "->", "<=", ">=", "==", "!=", "&&", "||", "::", "|>", "**",
	"+", "-", "*", "/", "^", "<", ">", "!", "&", "|", "~", "?", ":", "=", "$", "@",
}

func (lexer *Lexer) hasPrefix(s string) bool {
	i := 0
	for _, r := range s {
		if lexer.peekRune(i) != r {
			return false
		}
		i++
	}
	return true
}

var constTokens = map[string]Value{
	"TRUE":          Lgl(true),
	"FALSE":         Lgl(false),
	"NULL":          Nil,
	"NA":            naLogical(),
	"NA_integer_":   Int(NAInteger),
	"NA_real_":      Dbl(NADouble),
	"NA_character_": Str(NAString),
	"NA_complex_":   Cplx(NAComplex),
	"Inf":           Dbl(math.Inf(1)),
	"NaN":           Dbl(math.NaN()),
}

var keywords = map[string]bool{
	"if": true, "else": true, "for": true, "in": true, "while": true,
	"repeat": true, "function": true, "break": true, "next": true,
}

func (lexer *Lexer) scanIdent() (Token, error) {
	start := lexer.pos
	for lexer.pos < len(lexer.src) {
		r := lexer.src[lexer.pos]
		if unicode.IsLetter(r) || unicode.IsDigit(r) || r == '.' || r == '_' {
			lexer.pos++
			continue
		}
		break
	}
	word := string(lexer.src[start:lexer.pos])
	if v, ok := constTokens[word]; ok {
		return Token{typ: TokenConst, str: word, val: v, line: lexer.line}, nil
	}
	if keywords[word] {
		return Token{typ: TokenKeyword, str: word, line: lexer.line}, nil
	}
	return Token{typ: TokenSymbol, str: word, line: lexer.line}, nil
}

func (lexer *Lexer) scanNumber() (Token, error) {
	start := lexer.pos
	hex := false
	if lexer.peekRune(0) == '0' && (lexer.peekRune(1) == 'x' || lexer.peekRune(1) == 'X') {
		hex = true
		lexer.pos += 2
		for lexer.pos < len(lexer.src) && isHexDigit(lexer.src[lexer.pos]) {
			lexer.pos++
		}
	} else {
		for lexer.pos < len(lexer.src) && (unicode.IsDigit(lexer.src[lexer.pos]) || lexer.src[lexer.pos] == '.') {
			lexer.pos++
		}
		if r := lexer.peekRune(0); r == 'e' || r == 'E' {
			next := lexer.peekRune(1)
			if unicode.IsDigit(next) || ((next == '+' || next == '-') && unicode.IsDigit(lexer.peekRune(2))) {
				lexer.pos += 2
				for lexer.pos < len(lexer.src) && unicode.IsDigit(lexer.src[lexer.pos]) {
					lexer.pos++
				}
			}
		}
	}
	text := string(lexer.src[start:lexer.pos])
	var f float64
	if hex {
		u, err := strconv.ParseUint(text[2:], 16, 64)
		if err != nil {
			return EndTk, lexer.errorf(false, "malformed number '%s'", text)
		}
		f = float64(u)
	} else {
		var err error
		f, err = strconv.ParseFloat(text, 64)
		if err != nil {
			if ne, ok := err.(*strconv.NumError); !ok || ne.Err != strconv.ErrRange {
				return EndTk, lexer.errorf(false, "malformed number '%s'", text)
			}
		}
	}
	switch lexer.peekRune(0) {
	case 'L':
		lexer.pos++
		if f == math.Trunc(f) && math.Abs(f) < 2147483648 {
			return Token{typ: TokenInt, str: text + "L", val: Int(int32(f)), line: lexer.line}, nil
		}
		return Token{typ: TokenNum, str: text, val: Dbl(f), line: lexer.line}, nil
	case 'i':
		lexer.pos++
		return Token{typ: TokenComplex, str: text + "i", val: Cplx(complex(0, f)), line: lexer.line}, nil
	}
	return Token{typ: TokenNum, str: text, val: Dbl(f), line: lexer.line}, nil
}

func isHexDigit(r rune) bool {
	return unicode.IsDigit(r) || (r >= 'a' && r <= 'f') || (r >= 'A' && r <= 'F')
}

func (lexer *Lexer) scanString(quote rune) (Token, error) {
	startLine := lexer.line
	lexer.pos++
	var b strings.Builder
	for {
		if lexer.pos >= len(lexer.src) {
			return EndTk, &SyntaxError{Line: startLine, Msg: "unexpected INCOMPLETE_STRING", Incomplete: true}
		}
		r := lexer.src[lexer.pos]
		lexer.pos++
		if r == quote {
			break
		}
		if r == '\n' {
			lexer.line++
		}
		if r != '\\' {
			b.WriteRune(r)
			continue
		}
		if err := lexer.scanEscape(&b); err != nil {
			return EndTk, err
		}
	}
	return Token{typ: TokenString, str: b.String(), line: startLine}, nil
}

func (lexer *Lexer) scanEscape(b *strings.Builder) error {
	if lexer.pos >= len(lexer.src) {
		return lexer.errorf(true, "unexpected INCOMPLETE_STRING")
	}
	r := lexer.src[lexer.pos]
	lexer.pos++
	switch r {
	case 'n':
		b.WriteByte('\n')
	case 't':
		b.WriteByte('\t')
	case 'r':
		b.WriteByte('\r')
	case '0', '1', '2', '3', '4', '5', '6', '7':
		n := int(r - '0')
		for k := 0; k < 2 && lexer.pos < len(lexer.src) && lexer.src[lexer.pos] >= '0' && lexer.src[lexer.pos] <= '7'; k++ {
			n = n*8 + int(lexer.src[lexer.pos]-'0')
			lexer.pos++
		}
		if n == 0 {
			return lexer.errorf(false, "nul character not allowed")
		}
		b.WriteRune(rune(n))
	case 'a':
		b.WriteByte('\a')
	case 'b':
		b.WriteByte('\b')
	case 'f':
		b.WriteByte('\f')
	case 'v':
		b.WriteByte('\v')
	case 'x':
		n, ok := lexer.hexRun(2)
		if !ok {
			return lexer.errorf(false, "'\\x' used without hex digits in character string")
		}
		b.WriteRune(rune(n))
	case 'u', 'U':
		max := 4
		if r == 'U' {
			max = 8
		}
		braced := lexer.peekRune(0) == '{'
		if braced {
			lexer.pos++
		}
		n, ok := lexer.hexRun(max)
		if !ok {
			return lexer.errorf(false, "'\\%c' used without hex digits in character string", r)
		}
		if braced {
			if lexer.peekRune(0) != '}' {
				return lexer.errorf(false, "invalid \\%c{xxxx} sequence", r)
			}
			lexer.pos++
		}
		b.WriteRune(rune(n))
	case '\\', '"', '\'', '`', ' ', '\n':
		if r == '\n' {
			lexer.line++
		}
		b.WriteRune(r)
	default:
		return lexer.errorf(false, "'\\%c' is an unrecognized escape in character string", r)
	}
	return nil
}

func (lexer *Lexer) hexRun(max int) (int, bool) {
	n, k := 0, 0
	for k < max && lexer.pos < len(lexer.src) && isHexDigit(lexer.src[lexer.pos]) {
		d, _ := strconv.ParseInt(string(lexer.src[lexer.pos]), 16, 32)
		n = n*16 + int(d)
		lexer.pos++
		k++
	}
	return n, k > 0
}

// scanRawString handles r"(...)" with optional dashes and [] or {}.
func (lexer *Lexer) scanRawString() (Token, error) {
	startLine := lexer.line
	quote := lexer.src[lexer.pos+1]
	lexer.pos += 2
	dashes := 0
	for lexer.peekRune(0) == '-' {
		dashes++
		lexer.pos++
	}
	open := lexer.peekRune(0)
	var close rune
	switch open {
	case '(':
		close = ')'
	case '[':
		close = ']'
	case '{':
		close = '}'
	default:
		return EndTk, lexer.errorf(false, "malformed raw string literal")
	}
	lexer.pos++
	terminator := string(close) + strings.Repeat("-", dashes) + string(quote)
	start := lexer.pos
	for lexer.pos < len(lexer.src) {
		if lexer.hasPrefix(terminator) {
			s := string(lexer.src[start:lexer.pos])
			lexer.pos += utf8.RuneCountInString(terminator)
			return Token{typ: TokenString, str: s, line: startLine}, nil
		}
		if lexer.src[lexer.pos] == '\n' {
			lexer.line++
		}
		lexer.pos++
	}
	return EndTk, &SyntaxError{Line: startLine, Msg: "unexpected INCOMPLETE_STRING", Incomplete: true}
}

func (lexer *Lexer) scanBacktick() (Token, error) {
	lexer.pos++
	var b strings.Builder
	for {
		if lexer.pos >= len(lexer.src) {
			return EndTk, lexer.errorf(true, "unexpected INCOMPLETE_STRING")
		}
		r := lexer.src[lexer.pos]
		lexer.pos++
		if r == '`' {
			break
		}
		if r == '\\' {
			if err := lexer.scanEscape(&b); err != nil {
				return EndTk, err
			}
			continue
		}
		b.WriteRune(r)
	}
	return Token{typ: TokenBacktickName, str: b.String(), line: lexer.line}, nil
}
