package parsers

import (
	"fmt"
	"math"
	"strconv"
	"strings"
	"unicode"
)

// Restricted arithmetic expression evaluator. Grammar is fixed on purpose:
// decimal numbers, + - * /, unary minus, and parentheses. No identifiers,
// no function calls, no host-language evaluation of user text.
//
//	expr   := term (('+'|'-') term)*
//	term   := factor (('*'|'/') factor)*
//	factor := '-' factor | number | '(' expr ')'

// basic safety limits to avoid pathological inputs
const (
	maxExprLen    = 1024
	maxParenDepth = 64
)

type exprParser struct {
	input string
	pos   int
	depth int
}

// Evaluate parses and computes the value of a restricted arithmetic
// expression.
func Evaluate(expr string) (float64, error) {
	expr = strings.TrimSpace(expr)
	if expr == "" {
		return 0, fmt.Errorf("empty expression")
	}
	if len(expr) > maxExprLen {
		return 0, fmt.Errorf("expression too long (max %d chars)", maxExprLen)
	}

	p := &exprParser{input: expr}
	v, err := p.parseExpr()
	if err != nil {
		return 0, err
	}
	p.skipSpaces()
	if p.pos != len(p.input) {
		return 0, fmt.Errorf("unexpected character %q at position %d", p.input[p.pos], p.pos)
	}
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return 0, fmt.Errorf("result is not a finite number")
	}
	return v, nil
}

// FormatResult renders a computed value with minimal digits (4, not
// 4.000000).
func FormatResult(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}

func (p *exprParser) parseExpr() (float64, error) {
	v, err := p.parseTerm()
	if err != nil {
		return 0, err
	}
	for {
		op, ok := p.peekOp("+-")
		if !ok {
			return v, nil
		}
		p.pos++
		rhs, err := p.parseTerm()
		if err != nil {
			return 0, err
		}
		if op == '+' {
			v += rhs
		} else {
			v -= rhs
		}
	}
}

func (p *exprParser) parseTerm() (float64, error) {
	v, err := p.parseFactor()
	if err != nil {
		return 0, err
	}
	for {
		op, ok := p.peekOp("*/")
		if !ok {
			return v, nil
		}
		p.pos++
		rhs, err := p.parseFactor()
		if err != nil {
			return 0, err
		}
		if op == '*' {
			v *= rhs
		} else {
			if rhs == 0 {
				return 0, fmt.Errorf("division by zero")
			}
			v /= rhs
		}
	}
}

func (p *exprParser) parseFactor() (float64, error) {
	p.skipSpaces()
	if p.pos >= len(p.input) {
		return 0, fmt.Errorf("unexpected end of expression")
	}

	switch c := p.input[p.pos]; {
	case c == '-':
		p.pos++
		v, err := p.parseFactor()
		if err != nil {
			return 0, err
		}
		return -v, nil
	case c == '(':
		p.depth++
		if p.depth > maxParenDepth {
			return 0, fmt.Errorf("expression nested too deeply")
		}
		p.pos++
		v, err := p.parseExpr()
		if err != nil {
			return 0, err
		}
		p.skipSpaces()
		if p.pos >= len(p.input) || p.input[p.pos] != ')' {
			return 0, fmt.Errorf("missing closing parenthesis")
		}
		p.pos++
		p.depth--
		return v, nil
	case c >= '0' && c <= '9' || c == '.':
		return p.parseNumber()
	default:
		return 0, fmt.Errorf("unexpected character %q at position %d", c, p.pos)
	}
}

func (p *exprParser) parseNumber() (float64, error) {
	start := p.pos
	seenDot := false
	for p.pos < len(p.input) {
		c := p.input[p.pos]
		if c == '.' {
			if seenDot {
				return 0, fmt.Errorf("malformed number at position %d", start)
			}
			seenDot = true
			p.pos++
			continue
		}
		if c < '0' || c > '9' {
			break
		}
		p.pos++
	}
	lit := p.input[start:p.pos]
	if lit == "" || lit == "." {
		return 0, fmt.Errorf("malformed number at position %d", start)
	}
	v, err := strconv.ParseFloat(lit, 64)
	if err != nil {
		return 0, fmt.Errorf("malformed number %q: %w", lit, err)
	}
	return v, nil
}

// peekOp reports whether the next non-space character is one of ops, without
// consuming it.
func (p *exprParser) peekOp(ops string) (byte, bool) {
	p.skipSpaces()
	if p.pos >= len(p.input) {
		return 0, false
	}
	c := p.input[p.pos]
	if strings.IndexByte(ops, c) < 0 {
		return 0, false
	}
	return c, true
}

func (p *exprParser) skipSpaces() {
	for p.pos < len(p.input) && unicode.IsSpace(rune(p.input[p.pos])) {
		p.pos++
	}
}
