package compiler

import (
	"fmt"
	"strconv"
)

// SyntaxError reports a parse failure at a byte offset in the source.
type SyntaxError struct {
	Pos int
	Msg string
}

func (e *SyntaxError) Error() string {
	return fmt.Sprintf("syntax error at %d: %s", e.Pos, e.Msg)
}

type tokenKind byte

const (
	tokEOF tokenKind = iota
	tokInt
	tokPlus
	tokMinus
	tokStar
	tokSlash
	tokLParen
	tokRParen
)

type token struct {
	kind tokenKind
	text string
	pos  int
}

func lex(src string) ([]token, error) {
	var toks []token
	for i := 0; i < len(src); {
		c := src[i]
		switch {
		case c == ' ' || c == '\t' || c == '\n' || c == '\r':
			i++
			continue
		case c >= '0' && c <= '9':
			start := i
			for i < len(src) && src[i] >= '0' && src[i] <= '9' {
				i++
			}
			toks = append(toks, token{kind: tokInt, text: src[start:i], pos: start})
			continue
		}

		var kind tokenKind
		switch c {
		case '+':
			kind = tokPlus
		case '-':
			kind = tokMinus
		case '*':
			kind = tokStar
		case '/':
			kind = tokSlash
		case '(':
			kind = tokLParen
		case ')':
			kind = tokRParen
		default:
			return nil, &SyntaxError{Pos: i, Msg: fmt.Sprintf("unexpected character %q", c)}
		}
		toks = append(toks, token{kind: kind, text: src[i : i+1], pos: i})
		i++
	}
	return append(toks, token{kind: tokEOF, pos: len(src)}), nil
}

// MaxDepth bounds both parser recursion and the height of the parsed tree,
// so that parsing and compiling untrusted input cannot exhaust the stack.
const MaxDepth = 1000

type parser struct {
	toks  []token
	pos   int
	depth int
}

func errTooDeep(pos int) error {
	return &SyntaxError{Pos: pos, Msg: "expression nested too deeply"}
}

func (p *parser) enter(pos int) error {
	p.depth++
	if p.depth > MaxDepth {
		return errTooDeep(pos)
	}
	return nil
}

func (p *parser) leave() {
	p.depth--
}

func (p *parser) binary(op Operator, left, right Expr, pos int) (Expr, error) {
	e := newBinary(op, left, right)
	if Height(e) > MaxDepth {
		return nil, errTooDeep(pos)
	}
	return e, nil
}

// Parse reads an infix integer expression such as "1 + 2 * (3 - 4)".
// The usual precedence applies and all operators are left associative.
func Parse(src string) (Expr, error) {
	toks, err := lex(src)
	if err != nil {
		return nil, err
	}
	p := &parser{toks: toks}
	e, err := p.expr()
	if err != nil {
		return nil, err
	}
	if tok := p.peek(); tok.kind != tokEOF {
		return nil, &SyntaxError{Pos: tok.pos, Msg: fmt.Sprintf("unexpected %q", tok.text)}
	}
	return e, nil
}

func (p *parser) peek() token {
	return p.toks[p.pos]
}

func (p *parser) next() token {
	tok := p.toks[p.pos]
	if tok.kind != tokEOF {
		p.pos++
	}
	return tok
}

// expr := term (('+'|'-') term)*
func (p *parser) expr() (Expr, error) {
	left, err := p.term()
	if err != nil {
		return nil, err
	}
	for {
		var op Operator
		switch p.peek().kind {
		case tokPlus:
			op = OpAdd
		case tokMinus:
			op = OpSub
		default:
			return left, nil
		}
		opTok := p.next()
		right, err := p.term()
		if err != nil {
			return nil, err
		}
		if left, err = p.binary(op, left, right, opTok.pos); err != nil {
			return nil, err
		}
	}
}

// term := unary (('*'|'/') unary)*
func (p *parser) term() (Expr, error) {
	left, err := p.unary()
	if err != nil {
		return nil, err
	}
	for {
		var op Operator
		switch p.peek().kind {
		case tokStar:
			op = OpMul
		case tokSlash:
			op = OpDiv
		default:
			return left, nil
		}
		opTok := p.next()
		right, err := p.unary()
		if err != nil {
			return nil, err
		}
		if left, err = p.binary(op, left, right, opTok.pos); err != nil {
			return nil, err
		}
	}
}

// unary := '-' unary | primary
func (p *parser) unary() (Expr, error) {
	if p.peek().kind != tokMinus {
		return p.primary()
	}
	minus := p.next()
	if tok := p.peek(); tok.kind == tokInt {
		p.next()
		return parseInt("-"+tok.text, tok.pos)
	}
	if err := p.enter(minus.pos); err != nil {
		return nil, err
	}
	defer p.leave()
	operand, err := p.unary()
	if err != nil {
		return nil, err
	}
	return p.binary(OpSub, LitI(0), operand, minus.pos)
}

// primary := INT | '(' expr ')'
func (p *parser) primary() (Expr, error) {
	tok := p.next()
	switch tok.kind {
	case tokInt:
		return parseInt(tok.text, tok.pos)
	case tokLParen:
		if err := p.enter(tok.pos); err != nil {
			return nil, err
		}
		defer p.leave()
		e, err := p.expr()
		if err != nil {
			return nil, err
		}
		if closing := p.next(); closing.kind != tokRParen {
			return nil, &SyntaxError{Pos: closing.pos, Msg: "expected ')'"}
		}
		return e, nil
	case tokEOF:
		return nil, &SyntaxError{Pos: tok.pos, Msg: "unexpected end of input"}
	}
	return nil, &SyntaxError{Pos: tok.pos, Msg: fmt.Sprintf("unexpected %q", tok.text)}
}

func parseInt(text string, pos int) (Expr, error) {
	v, err := strconv.ParseInt(text, 10, 64)
	if err != nil {
		return nil, &SyntaxError{Pos: pos, Msg: fmt.Sprintf("integer %s out of range", text)}
	}
	return LitI(v), nil
}
