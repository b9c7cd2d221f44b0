package filter

import (
	"fmt"
	"strings"
	"unicode"
)

type tokenKind int

const (
	tokEOF tokenKind = iota
	tokIdent
	tokString
	tokNumber
	tokOp
	tokAnd
	tokOr
	tokLParen
	tokRParen
)

type token struct {
	kind tokenKind
	text string
	pos  int
}

func (k tokenKind) String() string {
	switch k {
	case tokEOF:
		return "end of input"
	case tokIdent:
		return "identifier"
	case tokString:
		return "string"
	case tokNumber:
		return "number"
	case tokOp:
		return "operator"
	case tokAnd:
		return "&&"
	case tokOr:
		return "||"
	case tokLParen:
		return "("
	case tokRParen:
		return ")"
	}
	return "unknown"
}

// lex splits an expression into tokens. String tokens carry their unescaped
// contents.
func lex(input string) ([]token, error) {
	var toks []token
	runes := []rune(input)
	i := 0

	for i < len(runes) {
		r := runes[i]
		switch {
		case unicode.IsSpace(r):
			i++

		case r == '(':
			toks = append(toks, token{kind: tokLParen, text: "(", pos: i})
			i++

		case r == ')':
			toks = append(toks, token{kind: tokRParen, text: ")", pos: i})
			i++

		case r == '&' || r == '|':
			if i+1 >= len(runes) || runes[i+1] != r {
				return nil, &SyntaxError{Pos: i, Msg: fmt.Sprintf("unexpected %q", r)}
			}
			kind := tokAnd
			if r == '|' {
				kind = tokOr
			}
			toks = append(toks, token{kind: kind, text: string([]rune{r, r}), pos: i})
			i += 2

		case r == '=' || r == '~':
			toks = append(toks, token{kind: tokOp, text: string(r), pos: i})
			i++

		case r == '!' || r == '>' || r == '<':
			start := i
			i++
			if i < len(runes) && (runes[i] == '=' || (r == '!' && runes[i] == '~')) {
				i++
			}
			op := string(runes[start:i])
			if op == "!" {
				return nil, &SyntaxError{Pos: start, Msg: "unexpected '!'"}
			}
			toks = append(toks, token{kind: tokOp, text: op, pos: start})

		case r == '\'' || r == '"':
			start := i
			text, next, err := lexString(runes, i)
			if err != nil {
				return nil, err
			}
			toks = append(toks, token{kind: tokString, text: text, pos: start})
			i = next

		case unicode.IsDigit(r) || (r == '-' && i+1 < len(runes) && unicode.IsDigit(runes[i+1])):
			start := i
			i++
			dot := false
			for i < len(runes) && (unicode.IsDigit(runes[i]) || runes[i] == '.') {
				if runes[i] == '.' {
					if dot {
						return nil, &SyntaxError{Pos: i, Msg: "unexpected second '.' in number"}
					}
					dot = true
				}
				i++
			}
			toks = append(toks, token{kind: tokNumber, text: string(runes[start:i]), pos: start})

		case isIdentStart(r):
			start := i
			for i < len(runes) && isIdentPart(runes[i]) {
				i++
			}
			toks = append(toks, token{kind: tokIdent, text: string(runes[start:i]), pos: start})

		default:
			return nil, &SyntaxError{Pos: i, Msg: fmt.Sprintf("unexpected %q", r)}
		}
	}

	toks = append(toks, token{kind: tokEOF, pos: len(runes)})
	return toks, nil
}

// lexString reads a quoted literal starting at runes[start]. A backslash
// escapes the following rune.
func lexString(runes []rune, start int) (string, int, error) {
	quote := runes[start]
	var b strings.Builder
	i := start + 1
	for i < len(runes) {
		r := runes[i]
		switch r {
		case '\\':
			if i+1 >= len(runes) {
				return "", 0, &SyntaxError{Pos: i, Msg: "dangling escape"}
			}
			b.WriteRune(runes[i+1])
			i += 2
		case quote:
			return b.String(), i + 1, nil
		default:
			b.WriteRune(r)
			i++
		}
	}
	return "", 0, &SyntaxError{Pos: start, Msg: "unterminated string"}
}

func isIdentStart(r rune) bool {
	return r == '_' || unicode.IsLetter(r)
}

func isIdentPart(r rune) bool {
	return r == '_' || r == '.' || unicode.IsLetter(r) || unicode.IsDigit(r)
}
