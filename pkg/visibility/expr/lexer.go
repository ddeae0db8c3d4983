package expr

import (
	"fmt"
	"strings"
	"unicode"
)

type tokenKind int

const (
	tokIdent tokenKind = iota
	tokString
	tokNumber
	tokOp
	tokLParen
	tokRParen
	tokEOF
)

type token struct {
	kind tokenKind
	text string
}

var operators = []string{"==", "!=", "<=", ">=", "&&", "||", "<", ">", "!"}

func lex(input string) ([]token, error) {
	var tokens []token
	for i := 0; i < len(input); {
		ch := rune(input[i])
		switch {
		case unicode.IsSpace(ch):
			i++
		case ch == '(':
			tokens = append(tokens, token{kind: tokLParen, text: "("})
			i++
		case ch == ')':
			tokens = append(tokens, token{kind: tokRParen, text: ")"})
			i++
		case ch == '"' || ch == '\'':
			text, next, err := lexString(input, i)
			if err != nil {
				return nil, err
			}
			tokens = append(tokens, token{kind: tokString, text: text})
			i = next
		case unicode.IsDigit(ch) || (ch == '-' && i+1 < len(input) && unicode.IsDigit(rune(input[i+1]))):
			start := i
			i++
			for i < len(input) && (unicode.IsDigit(rune(input[i])) || input[i] == '.') {
				i++
			}
			tokens = append(tokens, token{kind: tokNumber, text: input[start:i]})
		case isIdentStart(ch):
			start := i
			for i < len(input) && isIdentPart(rune(input[i])) {
				i++
			}
			tokens = append(tokens, token{kind: tokIdent, text: input[start:i]})
		default:
			op := matchOperator(input[i:])
			if op == "" {
				return nil, fmt.Errorf("%w: unexpected %q at offset %d", ErrSyntax, ch, i)
			}
			tokens = append(tokens, token{kind: tokOp, text: op})
			i += len(op)
		}
	}
	return append(tokens, token{kind: tokEOF}), nil
}

func lexString(input string, start int) (string, int, error) {
	quote := input[start]
	var b strings.Builder
	for i := start + 1; i < len(input); i++ {
		switch input[i] {
		case '\\':
			if i+1 < len(input) {
				i++
				b.WriteByte(input[i])
			}
		case quote:
			return b.String(), i + 1, nil
		default:
			b.WriteByte(input[i])
		}
	}
	return "", 0, fmt.Errorf("%w: unterminated string at offset %d", ErrSyntax, start)
}

func matchOperator(rest string) string {
	for _, op := range operators {
		if strings.HasPrefix(rest, op) {
			return op
		}
	}
	return ""
}

func isIdentStart(r rune) bool {
	return r == '_' || r == '$' || unicode.IsLetter(r)
}

func isIdentPart(r rune) bool {
	return isIdentStart(r) || unicode.IsDigit(r) || r == '.' || r == '[' || r == ']'
}
