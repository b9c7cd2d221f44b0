package filter

import (
	"fmt"
	"strconv"
	"strings"
)

type parser struct {
	toks []token
	pos  int
}

// Parse parses expr. A blank expression yields a nil Node, which matches
// every record.
func Parse(expr string) (Node, error) {
	if strings.TrimSpace(expr) == "" {
		return nil, nil
	}

	toks, err := lex(expr)
	if err != nil {
		return nil, err
	}

	p := &parser{toks: toks}
	n, err := p.parseOr()
	if err != nil {
		return nil, err
	}
	if tok := p.peek(); tok.kind != tokEOF {
		return nil, &SyntaxError{Pos: tok.pos, Msg: fmt.Sprintf("unexpected %s", tok.kind)}
	}
	return n, nil
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

func (p *parser) expect(kind tokenKind) (token, error) {
	tok := p.next()
	if tok.kind != kind {
		return tok, &SyntaxError{Pos: tok.pos, Msg: fmt.Sprintf("expected %s, got %s", kind, tok.kind)}
	}
	return tok, nil
}

func (p *parser) parseOr() (Node, error) {
	return p.parseLogical(tokOr, p.parseAnd)
}

func (p *parser) parseAnd() (Node, error) {
	return p.parseLogical(tokAnd, p.parseUnary)
}

func (p *parser) parseLogical(sep tokenKind, operand func() (Node, error)) (Node, error) {
	first, err := operand()
	if err != nil {
		return nil, err
	}
	terms := []Node{first}
	for p.peek().kind == sep {
		p.next()
		n, err := operand()
		if err != nil {
			return nil, err
		}
		terms = append(terms, n)
	}
	if len(terms) == 1 {
		return first, nil
	}
	return &Logical{Or: sep == tokOr, Terms: terms}, nil
}

func (p *parser) parseUnary() (Node, error) {
	if p.peek().kind == tokLParen {
		p.next()
		n, err := p.parseOr()
		if err != nil {
			return nil, err
		}
		if _, err := p.expect(tokRParen); err != nil {
			return nil, err
		}
		return n, nil
	}
	return p.parseComparison()
}

func (p *parser) parseComparison() (Node, error) {
	field, err := p.expect(tokIdent)
	if err != nil {
		return nil, err
	}
	opTok, err := p.expect(tokOp)
	if err != nil {
		return nil, err
	}
	op := parseOp(opTok.text)
	if op == opUndefined {
		return nil, &SyntaxError{Pos: opTok.pos, Msg: fmt.Sprintf("unknown operator %q", opTok.text)}
	}
	val, err := p.parseLiteral()
	if err != nil {
		return nil, err
	}
	return &Comparison{Field: field.text, Op: op, Value: val}, nil
}

func (p *parser) parseLiteral() (Value, error) {
	tok := p.next()
	switch tok.kind {
	case tokString:
		return Value{Kind: ValueString, Str: tok.text}, nil
	case tokNumber:
		f, err := strconv.ParseFloat(tok.text, 64)
		if err != nil {
			return Value{}, &SyntaxError{Pos: tok.pos, Msg: fmt.Sprintf("bad number %q", tok.text)}
		}
		return Value{Kind: ValueNumber, Num: f}, nil
	case tokIdent:
		switch tok.text {
		case "true":
			return Value{Kind: ValueBool, Bool: true}, nil
		case "false":
			return Value{Kind: ValueBool, Bool: false}, nil
		case "null":
			return Value{Kind: ValueNull}, nil
		}
	}
	return Value{}, &SyntaxError{Pos: tok.pos, Msg: fmt.Sprintf("expected literal, got %s", tok.kind)}
}
