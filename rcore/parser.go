package rcore

import (
	"fmt"
)

// Pratt parsing. see http://javascript.crockford.com/tdop/tdop.html
//
// Binding powers come from binaryOps (deparse.go) so the parser and the
// deparser agree on R's precedence table:
//
//  1  ?
//  2  =              (right)
//  3  <- <<-         (right)
//  4  -> ->>
//  5  ~
//  6  || |
//  7  && &
//  8  !              (unary)
//  9  comparisons
// 10  + -
// 11  * /
// 12  %any% |>
// 13  :
// 14  unary + -
// 15  ^              (right)
// 16  $ @
// 17  :: :::
// 18  ( [ [[         (postfix)

const bpPostfix = 18

type LeftMuncher func(p *Parser, op Token, left Value) (Value, error)
type RightMuncher func(p *Parser, op Token) (Value, error)

// InfixOp lets us attach led (MunchLeft) and nud (MunchRight)
// Pratt parsing methods, along with a binding power, to an operator.
type InfixOp struct {
	Sym        string
	Bp         int // binding power, aka precedence level.
	MunchRight RightMuncher
	MunchLeft  LeftMuncher
}

var infixOps = map[string]*InfixOp{}
var prefixOps = map[string]*InfixOp{}

// Infix creates a left associative binary operator.
func Infix(op string, bp int) *InfixOp {
	iop := &InfixOp{
		Sym: op,
		Bp:  bp,
		MunchLeft: func(p *Parser, tok Token, left Value) (Value, error) {
			right, err := p.operand(bp)
			if err != nil {
				return nil, err
			}
			return Call(op, left, right), nil
		},
	}
	infixOps[op] = iop
	return iop
}

// Infixr creates a right associative binary operator.
func Infixr(op string, bp int) *InfixOp {
	iop := &InfixOp{
		Sym: op,
		Bp:  bp,
		MunchLeft: func(p *Parser, tok Token, left Value) (Value, error) {
			right, err := p.operand(bp - 1)
			if err != nil {
				return nil, err
			}
			return Call(op, left, right), nil
		},
	}
	infixOps[op] = iop
	return iop
}

// Prefix creates a unary operator.
func Prefix(op string, bp int) *InfixOp {
	iop := &InfixOp{
		Sym: op,
		Bp:  bp,
		MunchRight: func(p *Parser, tok Token) (Value, error) {
			right, err := p.operand(bp)
			if err != nil {
				return nil, err
			}
			return Call(op, right), nil
		},
	}
	prefixOps[op] = iop
	return iop
}

// Assignment creates a right-to-left assignment operator. A rightward
// op (->, ->>) is stored as its leftward twin with operands swapped.
func Assignment(op string, bp int, stored string, rightward bool) *InfixOp {
	iop := &InfixOp{
		Sym: op,
		Bp:  bp,
		MunchLeft: func(p *Parser, tok Token, left Value) (Value, error) {
			rbp := bp - 1
			if rightward {
				rbp = bp
			}
			right, err := p.operand(rbp)
			if err != nil {
				return nil, err
			}
			if rightward {
				return Call(stored, right, left), nil
			}
			return Call(stored, left, right), nil
		},
	}
	infixOps[op] = iop
	return iop
}

// selector operators ($ @ ::) take a single name on their right.
func selector(op string, bp int) *InfixOp {
	iop := &InfixOp{
		Sym: op,
		Bp:  bp,
		MunchLeft: func(p *Parser, tok Token, left Value) (Value, error) {
			p.skipNewlines()
			t, err := p.lex.GetNextToken()
			if err != nil {
				return nil, err
			}
			var right Value
			switch t.typ {
			case TokenSymbol, TokenBacktickName, TokenKeyword:
				right = Sym(t.str)
			case TokenString:
				if op == "$" || op == "@" {
					right = Sym(t.str)
				} else {
					right = Str(t.str)
				}
			case TokenLParen:
				if op != "$" && op != "@" {
					return nil, p.unexpected(t)
				}
				inner, err := p.parenExpr()
				if err != nil {
					return nil, err
				}
				right = inner
			default:
				return nil, p.unexpected(t)
			}
			return Call(op, left, right), nil
		},
	}
	infixOps[op] = iop
	return iop
}

func init() {
	InitInfixOps()
}

// InitInfixOps establishes the operator tables.
func InitInfixOps() {
	for name, info := range binaryOps {
		switch name {
		case "=":
			Assignment("=", info.Bp, "=", false)
		case "<-", "<<-":
			Assignment(name, info.Bp, name, false)
		case "->":
			Assignment("->", info.Bp, "<-", true)
		case "->>":
			Assignment("->>", info.Bp, "<<-", true)
		case "$", "@", "::", ":::":
			selector(name, info.Bp)
		case "|>":
			pipe(info.Bp)
		default:
			if info.Right {
				Infixr(name, info.Bp)
			} else {
				Infix(name, info.Bp)
			}
		}
	}
	Prefix("-", bpUnary)
	Prefix("+", bpUnary)
	Prefix("!", bpNot)
	Prefix("~", binaryOps["~"].Bp)
	Prefix("?", binaryOps["?"].Bp)
}

// pipe rewrites lhs |> f(args) to f(lhs, args) at parse time.
func pipe(bp int) {
	infixOps["|>"] = &InfixOp{
		Sym: "|>",
		Bp:  bp,
		MunchLeft: func(p *Parser, tok Token, left Value) (Value, error) {
			right, err := p.operand(bp)
			if err != nil {
				return nil, err
			}
			call, ok := right.(*Language)
			if !ok {
				return nil, &SyntaxError{Line: tok.line, Msg: "The pipe operator requires a function call as RHS"}
			}
			args := append([]Arg{{Value: left}}, call.Args...)
			return &Language{Fn: call.Fn, Args: args}, nil
		},
	}
}

type parseContext int

const (
	ctxTop parseContext = iota
	ctxBrace
	ctxParen
)

type Parser struct {
	lex *Lexer
	ctx []parseContext
}

func NewParser(src string) *Parser {
	return &Parser{lex: NewLexer(src), ctx: []parseContext{ctxTop}}
}

// Parse parses a whole program into its top level expressions.
func Parse(src string) ([]Value, error) {
	return NewParser(src).ParseTokens()
}

func (p *Parser) push(c parseContext) { p.ctx = append(p.ctx, c) }
func (p *Parser) pop()                { p.ctx = p.ctx[:len(p.ctx)-1] }
func (p *Parser) inParens() bool      { return p.ctx[len(p.ctx)-1] == ctxParen }

func (p *Parser) peek() (Token, error) {
	return p.lex.PeekNextToken()
}

func (p *Parser) next() (Token, error) {
	return p.lex.GetNextToken()
}

func (p *Parser) skipNewlines() {
	for {
		t, err := p.peek()
		if err != nil || t.typ != TokenNewline {
			return
		}
		p.next()
	}
}

func (p *Parser) unexpected(t Token) error {
	if t.typ == TokenEnd {
		return &SyntaxError{Line: t.line, Msg: "unexpected end of input", Incomplete: true}
	}
	what := t.String()
	switch t.typ {
	case TokenSymbol:
		what = "symbol"
	case TokenNum, TokenInt, TokenComplex:
		what = "numeric constant"
	case TokenString:
		what = "string constant"
	}
	return &SyntaxError{Line: t.line, Msg: fmt.Sprintf("unexpected %s", what)}
}

func (p *Parser) expect(typ TokenType) (Token, error) {
	p.skipNewlines()
	t, err := p.next()
	if err != nil {
		return t, err
	}
	if t.typ != typ {
		return t, p.unexpected(t)
	}
	return t, nil
}

// ParseTokens parses statements until end of input.
func (p *Parser) ParseTokens() (sx []Value, err error) {
	for {
		t, err := p.peek()
		if err != nil {
			return nil, err
		}
		switch t.typ {
		case TokenEnd:
			return sx, nil
		case TokenNewline, TokenSemicolon:
			p.next()
			continue
		}
		expr, err := p.Expression(0)
		if err != nil {
			return nil, err
		}
		sx = append(sx, expr)
		t, err = p.peek()
		if err != nil {
			return nil, err
		}
		switch t.typ {
		case TokenEnd, TokenNewline, TokenSemicolon:
		default:
			return nil, p.unexpected(t)
		}
	}
}

// operand parses the right side of an operator: newlines are allowed
// before it since the expression is incomplete.
func (p *Parser) operand(rbp int) (Value, error) {
	p.skipNewlines()
	return p.Expression(rbp)
}

// Expression is Pratt's expression(rbp): a nud followed by leds of
// higher binding power.
func (p *Parser) Expression(rbp int) (Value, error) {
	t, err := p.next()
	if err != nil {
		return nil, err
	}
	left, err := p.nud(t)
	if err != nil {
		return nil, err
	}
	for {
		if p.inParens() {
			p.skipNewlines()
		}
		t, err := p.peek()
		if err != nil {
			return nil, err
		}
		lbp, led := p.ledFor(t)
		if led == nil || lbp <= rbp {
			return left, nil
		}
		p.next()
		left, err = led(p, t, left)
		if err != nil {
			return nil, err
		}
	}
}

func (p *Parser) ledFor(t Token) (int, LeftMuncher) {
	switch t.typ {
	case TokenOperator:
		if op, ok := infixOps[t.str]; ok {
			return op.Bp, op.MunchLeft
		}
		if len(t.str) > 1 && t.str[0] == '%' {
			return 12, func(p *Parser, tok Token, left Value) (Value, error) {
				right, err := p.operand(12)
				if err != nil {
					return nil, err
				}
				return Call(tok.str, left, right), nil
			}
		}
	case TokenLParen:
		return bpPostfix, (*Parser).callArgs
	case TokenLSquare, TokenLDoubleSquare:
		return bpPostfix, (*Parser).subscript
	}
	return 0, nil
}

func (p *Parser) nud(t Token) (Value, error) {
	switch t.typ {
	case TokenNum, TokenInt, TokenComplex, TokenConst:
		return t.val, nil
	case TokenString:
		return Str(t.str), nil
	case TokenSymbol, TokenBacktickName:
		return Sym(t.str), nil
	case TokenLParen:
		inner, err := p.parenExprAfterOpen()
		if err != nil {
			return nil, err
		}
		return Call("(", inner), nil
	case TokenLCurly:
		return p.brace()
	case TokenLambda:
		return p.function(t)
	case TokenOperator:
		if op, ok := prefixOps[t.str]; ok {
			return op.MunchRight(p, t)
		}
	case TokenKeyword:
		switch t.str {
		case "function":
			return p.function(t)
		case "if":
			return p.ifExpr()
		case "for":
			return p.forExpr()
		case "while":
			return p.whileExpr()
		case "repeat":
			body, err := p.operand(0)
			if err != nil {
				return nil, err
			}
			return Call("repeat", body), nil
		case "break", "next":
			return &Language{Fn: Sym(t.str)}, nil
		}
	}
	return nil, p.unexpected(t)
}

// parenExpr parses "( expr )" with the opening paren still pending.
func (p *Parser) parenExpr() (Value, error) {
	if _, err := p.expect(TokenLParen); err != nil {
		return nil, err
	}
	return p.parenExprAfterOpen()
}

func (p *Parser) parenExprAfterOpen() (Value, error) {
	p.push(ctxParen)
	defer p.pop()
	p.skipNewlines()
	inner, err := p.Expression(0)
	if err != nil {
		return nil, err
	}
	if _, err := p.expect(TokenRParen); err != nil {
		return nil, err
	}
	return inner, nil
}

func (p *Parser) brace() (Value, error) {
	p.push(ctxBrace)
	defer p.pop()
	block := &Language{Fn: Sym("{")}
	for {
		t, err := p.peek()
		if err != nil {
			return nil, err
		}
		switch t.typ {
		case TokenRCurly:
			p.next()
			return block, nil
		case TokenNewline, TokenSemicolon:
			p.next()
			continue
		case TokenEnd:
			return nil, p.unexpected(t)
		}
		expr, err := p.Expression(0)
		if err != nil {
			return nil, err
		}
		block.Args = append(block.Args, Arg{Value: expr})
		t, err = p.peek()
		if err != nil {
			return nil, err
		}
		switch t.typ {
		case TokenRCurly, TokenNewline, TokenSemicolon:
		default:
			return nil, p.unexpected(t)
		}
	}
}

// function parses formals and body after `function` or `\`.
func (p *Parser) function(t Token) (Value, error) {
	if _, err := p.expect(TokenLParen); err != nil {
		return nil, err
	}
	p.push(ctxParen)
	formals := &Pairlist{}
	seen := map[string]bool{}
	p.skipNewlines()
	if nt, _ := p.peek(); nt.typ == TokenRParen {
		p.next()
	} else {
		for {
			p.skipNewlines()
			nt, err := p.next()
			if err != nil {
				p.pop()
				return nil, err
			}
			if nt.typ != TokenSymbol && nt.typ != TokenBacktickName {
				p.pop()
				return nil, p.unexpected(nt)
			}
			if seen[nt.str] {
				p.pop()
				return nil, &SyntaxError{Line: nt.line, Msg: fmt.Sprintf("repeated formal argument '%s'", nt.str)}
			}
			seen[nt.str] = true
			arg := Arg{Tag: nt.str, Value: MissingArg}
			p.skipNewlines()
			nt, err = p.peek()
			if err != nil {
				p.pop()
				return nil, err
			}
			if nt.typ == TokenOperator && nt.str == "=" {
				p.next()
				def, err := p.operand(2)
				if err != nil {
					p.pop()
					return nil, err
				}
				arg.Value = def
			}
			formals.Args = append(formals.Args, arg)
			p.skipNewlines()
			nt, err = p.next()
			if err != nil {
				p.pop()
				return nil, err
			}
			if nt.typ == TokenRParen {
				break
			}
			if nt.typ != TokenComma {
				p.pop()
				return nil, p.unexpected(nt)
			}
		}
	}
	p.pop()
	body, err := p.operand(0)
	if err != nil {
		return nil, err
	}
	return Call("function", formals, body), nil
}

func (p *Parser) ifExpr() (Value, error) {
	cond, err := p.parenExpr()
	if err != nil {
		return nil, err
	}
	yes, err := p.operand(0)
	if err != nil {
		return nil, err
	}
	// else may follow a newline only inside braces or parens
	k := 0
	if p.ctx[len(p.ctx)-1] != ctxTop {
		for {
			t, err := p.lex.PeekAhead(k)
			if err != nil {
				return nil, err
			}
			if t.typ != TokenNewline {
				break
			}
			k++
		}
	}
	t, err := p.lex.PeekAhead(k)
	if err != nil {
		return nil, err
	}
	if t.typ == TokenKeyword && t.str == "else" {
		for i := 0; i <= k; i++ {
			p.next()
		}
		no, err := p.operand(0)
		if err != nil {
			return nil, err
		}
		return Call("if", cond, yes, no), nil
	}
	return Call("if", cond, yes), nil
}

func (p *Parser) forExpr() (Value, error) {
	if _, err := p.expect(TokenLParen); err != nil {
		return nil, err
	}
	p.push(ctxParen)
	v, err := p.expect(TokenSymbol)
	if err != nil {
		p.pop()
		return nil, err
	}
	in, err := p.expect(TokenKeyword)
	if err != nil || in.str != "in" {
		p.pop()
		if err == nil {
			err = p.unexpected(in)
		}
		return nil, err
	}
	p.skipNewlines()
	seq, err := p.Expression(0)
	if err != nil {
		p.pop()
		return nil, err
	}
	if _, err := p.expect(TokenRParen); err != nil {
		p.pop()
		return nil, err
	}
	p.pop()
	body, err := p.operand(0)
	if err != nil {
		return nil, err
	}
	return Call("for", Sym(v.str), seq, body), nil
}

func (p *Parser) whileExpr() (Value, error) {
	cond, err := p.parenExpr()
	if err != nil {
		return nil, err
	}
	body, err := p.operand(0)
	if err != nil {
		return nil, err
	}
	return Call("while", cond, body), nil
}

// callArgs is the led for "(": a call of left.
func (p *Parser) callArgs(t Token, left Value) (Value, error) {
	args, err := p.argList(TokenRParen)
	if err != nil {
		return nil, err
	}
	if s, ok := left.(*Character); ok && s.Len() == 1 {
		left = Sym(s.V[0])
	}
	return &Language{Fn: left, Args: args}, nil
}

// subscript is the led for "[" and "[[".
func (p *Parser) subscript(t Token, left Value) (Value, error) {
	args, err := p.argList(TokenRSquare)
	if err != nil {
		return nil, err
	}
	fn := "["
	if t.typ == TokenLDoubleSquare {
		fn = "[["
		if _, err := p.expect(TokenRSquare); err != nil {
			return nil, err
		}
	}
	return &Language{Fn: Sym(fn), Args: append([]Arg{{Value: left}}, args...)}, nil
}

// argList parses call arguments up to the closing token. Empty
// arguments become MissingArg; a lone empty argument is no argument.
func (p *Parser) argList(closer TokenType) ([]Arg, error) {
	p.push(ctxParen)
	defer p.pop()
	var args []Arg
	for {
		p.skipNewlines()
		t, err := p.peek()
		if err != nil {
			return nil, err
		}
		if t.typ == closer {
			p.next()
			args = append(args, Arg{Value: MissingArg})
			break
		}
		if t.typ == TokenComma {
			p.next()
			args = append(args, Arg{Value: MissingArg})
			continue
		}
		arg, err := p.arg()
		if err != nil {
			return nil, err
		}
		args = append(args, arg)
		p.skipNewlines()
		t, err = p.next()
		if err != nil {
			return nil, err
		}
		if t.typ == closer {
			break
		}
		if t.typ != TokenComma {
			return nil, p.unexpected(t)
		}
	}
	if len(args) == 1 && args[0].Tag == "" && args[0].Value == Value(MissingArg) {
		return nil, nil
	}
	return args, nil
}

// arg parses one argument, which may be tagged: name = value.
func (p *Parser) arg() (Arg, error) {
	t, err := p.peek()
	if err != nil {
		return Arg{}, err
	}
	switch t.typ {
	case TokenSymbol, TokenBacktickName, TokenString:
		eq, err := p.lex.PeekAhead(1)
		if err != nil {
			return Arg{}, err
		}
		if eq.typ == TokenOperator && eq.str == "=" {
			p.next()
			p.next()
			p.skipNewlines()
			nt, err := p.peek()
			if err != nil {
				return Arg{}, err
			}
			if nt.typ == TokenComma || nt.typ == TokenRParen || nt.typ == TokenRSquare {
				return Arg{Tag: t.str, Value: MissingArg}, nil
			}
			v, err := p.Expression(2)
			if err != nil {
				return Arg{}, err
			}
			return Arg{Tag: t.str, Value: v}, nil
		}
	}
	v, err := p.Expression(0)
	if err != nil {
		return Arg{}, err
	}
	return Arg{Value: v}, nil
}
