package protocol

import (
	"fmt"
	"math"
	"strconv"
	"strings"
	"unicode"
	"unicode/utf8"
)

// TokenKind classifies a scanned token.
type TokenKind int

const (
	TokenEOF TokenKind = iota
	TokenWord
	TokenNumber
	TokenString
	TokenPunct
)

func (k TokenKind) String() string {
	switch k {
	case TokenEOF:
		return "end of line"
	case TokenWord:
		return "word"
	case TokenNumber:
		return "number"
	case TokenString:
		return "string"
	case TokenPunct:
		return "punctuation"
	default:
		return fmt.Sprintf("TokenKind(%d)", int(k))
	}
}

// Token is one lexical unit of a command line. For strings Text holds the
// unquoted, unescaped value.
type Token struct {
	Kind TokenKind
	Text string
	Col  int
}

func (t Token) describe() string {
	switch t.Kind {
	case TokenEOF:
		return "end of line"
	case TokenString:
		return strconv.Quote(t.Text)
	default:
		return fmt.Sprintf("%q", t.Text)
	}
}

// Scanner splits a single command line into tokens. Whitespace separates
// tokens and is otherwise ignored.
type Scanner struct {
	src    string
	pos    int
	peeked *Token
}

// NewScanner returns a scanner over line.
func NewScanner(line string) *Scanner {
	return &Scanner{src: line}
}

// Peek returns the next token without consuming it.
func (s *Scanner) Peek() (Token, error) {
	if s.peeked != nil {
		return *s.peeked, nil
	}
	tok, err := s.scan()
	if err != nil {
		return Token{}, err
	}
	s.peeked = &tok
	return tok, nil
}

// Next consumes and returns the next token.
func (s *Scanner) Next() (Token, error) {
	if s.peeked != nil {
		tok := *s.peeked
		s.peeked = nil
		return tok, nil
	}
	return s.scan()
}

func (s *Scanner) scan() (Token, error) {
	for s.pos < len(s.src) {
		r, size := utf8.DecodeRuneInString(s.src[s.pos:])
		if !unicode.IsSpace(r) {
			break
		}
		s.pos += size
	}
	if s.pos >= len(s.src) {
		return Token{Kind: TokenEOF, Col: s.pos + 1}, nil
	}

	start := s.pos
	c := s.src[s.pos]
	switch {
	case c == '"' || c == '\'':
		text, err := s.scanString(c)
		if err != nil {
			return Token{}, err
		}
		return Token{Kind: TokenString, Text: text, Col: start + 1}, nil
	case isDigit(c) || (c == '.' && s.pos+1 < len(s.src) && isDigit(s.src[s.pos+1])):
		return Token{Kind: TokenNumber, Text: s.scanNumber(), Col: start + 1}, nil
	case isWordStart(c):
		for s.pos < len(s.src) && isWordPart(s.src[s.pos]) {
			s.pos++
		}
		return Token{Kind: TokenWord, Text: s.src[start:s.pos], Col: start + 1}, nil
	default:
		_, size := utf8.DecodeRuneInString(s.src[s.pos:])
		s.pos += size
		return Token{Kind: TokenPunct, Text: s.src[start:s.pos], Col: start + 1}, nil
	}
}

func (s *Scanner) scanNumber() string {
	start := s.pos
	for s.pos < len(s.src) && isDigit(s.src[s.pos]) {
		s.pos++
	}
	if s.pos < len(s.src) && s.src[s.pos] == '.' {
		s.pos++
		for s.pos < len(s.src) && isDigit(s.src[s.pos]) {
			s.pos++
		}
	}
	if s.pos < len(s.src) && (s.src[s.pos] == 'e' || s.src[s.pos] == 'E') {
		mark := s.pos
		s.pos++
		if s.pos < len(s.src) && (s.src[s.pos] == '+' || s.src[s.pos] == '-') {
			s.pos++
		}
		if s.pos < len(s.src) && isDigit(s.src[s.pos]) {
			for s.pos < len(s.src) && isDigit(s.src[s.pos]) {
				s.pos++
			}
		} else {
			// Not an exponent after all.
			s.pos = mark
		}
	}
	return s.src[start:s.pos]
}

func (s *Scanner) scanString(quote byte) (string, error) {
	startCol := s.pos + 1
	s.pos++
	var sb strings.Builder
	for s.pos < len(s.src) {
		c := s.src[s.pos]
		switch {
		case c == quote:
			s.pos++
			return sb.String(), nil
		case c == '\\':
			s.pos++
			if s.pos >= len(s.src) {
				return "", &ParseError{Column: startCol, Msg: "unterminated string"}
			}
			esc := s.src[s.pos]
			s.pos++
			switch esc {
			case 'n':
				sb.WriteByte('\n')
			case 't':
				sb.WriteByte('\t')
			case 'r':
				sb.WriteByte('\r')
			case 'b':
				sb.WriteByte('\b')
			case 'f':
				sb.WriteByte('\f')
			case 'x':
				end := s.pos
				for end < len(s.src) && end-s.pos < 2 && isHex(s.src[end]) {
					end++
				}
				if end == s.pos {
					return "", &ParseError{Column: s.pos, Msg: "malformed \\x escape"}
				}
				v, _ := strconv.ParseUint(s.src[s.pos:end], 16, 8)
				sb.WriteByte(byte(v))
				s.pos = end
			case '0', '1', '2', '3', '4', '5', '6', '7':
				end := s.pos - 1
				for end < len(s.src) && end-(s.pos-1) < 3 && s.src[end] >= '0' && s.src[end] <= '7' {
					end++
				}
				v, _ := strconv.ParseUint(s.src[s.pos-1:end], 8, 16)
				sb.WriteByte(byte(v))
				s.pos = end
			default:
				sb.WriteByte(esc)
			}
		default:
			sb.WriteByte(c)
			s.pos++
		}
	}
	return "", &ParseError{Column: startCol, Msg: "unterminated string"}
}

func isDigit(c byte) bool { return c >= '0' && c <= '9' }

func isHex(c byte) bool {
	return isDigit(c) || (c >= 'a' && c <= 'f') || (c >= 'A' && c <= 'F')
}

func isWordStart(c byte) bool {
	return c == '_' || (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z') || c >= utf8.RuneSelf
}

func isWordPart(c byte) bool {
	return isWordStart(c) || isDigit(c) || c == '.'
}

// ParseCommand reads the method name from line and returns an argument
// cursor positioned after it.
func ParseCommand(line string) (string, *Args, error) {
	s := NewScanner(strings.TrimSpace(line))
	tok, err := s.Next()
	if err != nil {
		return "", nil, err
	}
	if tok.Kind != TokenWord {
		return "", nil, &ParseError{Column: tok.Col, Msg: "expected command name, found " + tok.describe()}
	}
	return tok.Text, &Args{s: s}, nil
}

// Args is a typed cursor over a command's parenthesized argument list.
//
// Errors are sticky: after the first failure every accessor returns a zero
// value and End reports the original error. Handlers read all their arguments
// and then check End once.
type Args struct {
	s      *Scanner
	opened bool
	count  int
	err    error
}

// NewArgs returns an argument cursor over an argument list such as
// `("id", 10, -2.5)`.
func NewArgs(list string) *Args {
	return &Args{s: NewScanner(list)}
}

// Err returns the first error encountered, if any.
func (a *Args) Err() error { return a.err }

func (a *Args) fail(tok Token, format string, args ...any) {
	if a.err == nil {
		a.err = &ParseError{Column: tok.Col, Msg: fmt.Sprintf(format, args...)}
	}
}

func (a *Args) expect(want string) bool {
	if a.err != nil {
		return false
	}
	tok, err := a.s.Next()
	if err != nil {
		a.err = err
		return false
	}
	if tok.Kind != TokenPunct || tok.Text != want {
		a.fail(tok, "expected %q, found %s", want, tok.describe())
		return false
	}
	return true
}

// next positions the cursor on the next argument and returns its first token.
func (a *Args) next() (Token, bool) {
	if a.err != nil {
		return Token{}, false
	}
	if !a.opened {
		if !a.expect("(") {
			return Token{}, false
		}
		a.opened = true
	} else if a.count > 0 {
		if !a.expect(",") {
			return Token{}, false
		}
	}
	a.count++
	tok, err := a.s.Next()
	if err != nil {
		a.err = err
		return Token{}, false
	}
	return tok, true
}

// More reports whether another argument follows. It never consumes input.
func (a *Args) More() bool {
	if a.err != nil {
		return false
	}
	tok, err := a.s.Peek()
	if err != nil {
		return false
	}
	if !a.opened {
		return tok.Kind == TokenPunct && tok.Text == "("
	}
	if a.count == 0 {
		return !(tok.Kind == TokenPunct && tok.Text == ")") && tok.Kind != TokenEOF
	}
	return tok.Kind == TokenPunct && tok.Text == ","
}

// String reads a quoted string. A bare word is accepted as well.
func (a *Args) String() string {
	tok, ok := a.next()
	if !ok {
		return ""
	}
	if tok.Kind != TokenString && tok.Kind != TokenWord {
		a.fail(tok, "expected string, found %s", tok.describe())
		return ""
	}
	return tok.Text
}

// number reads a numeric literal, joining a leading "-" or "+" token.
func (a *Args) number() (string, Token, bool) {
	tok, ok := a.next()
	if !ok {
		return "", tok, false
	}
	sign := ""
	if tok.Kind == TokenPunct && (tok.Text == "-" || tok.Text == "+") {
		sign = tok.Text
		digits, err := a.s.Next()
		if err != nil {
			a.err = err
			return "", tok, false
		}
		if digits.Kind != TokenNumber {
			a.fail(digits, "expected number after %q, found %s", sign, digits.describe())
			return "", tok, false
		}
		tok = digits
	}
	if tok.Kind == TokenWord {
		// NaN and Infinity arrive as words.
		switch tok.Text {
		case "NaN", "Infinity", "inf", "nan":
			return sign + tok.Text, tok, true
		}
	}
	if tok.Kind != TokenNumber {
		a.fail(tok, "expected number, found %s", tok.describe())
		return "", tok, false
	}
	return sign + tok.Text, tok, true
}

// Float reads a floating-point number.
func (a *Args) Float() float64 {
	text, tok, ok := a.number()
	if !ok {
		return 0
	}
	v, err := strconv.ParseFloat(text, 64)
	if err != nil {
		a.fail(tok, "invalid number %q", text)
		return 0
	}
	return v
}

// Int reads an integer. A float literal with no fractional part is accepted.
func (a *Args) Int() int {
	text, tok, ok := a.number()
	if !ok {
		return 0
	}
	if v, err := strconv.ParseInt(text, 10, 64); err == nil {
		return int(v)
	}
	f, err := strconv.ParseFloat(text, 64)
	if err != nil || f != math.Trunc(f) || math.IsInf(f, 0) {
		a.fail(tok, "expected integer, found %q", text)
		return 0
	}
	if f >= math.MaxInt || f < math.MinInt {
		a.fail(tok, "integer %q out of range", text)
		return 0
	}
	return int(f)
}

// Bool reads a boolean. Any word starting with "t" is true.
func (a *Args) Bool() bool {
	tok, ok := a.next()
	if !ok {
		return false
	}
	switch tok.Kind {
	case TokenWord, TokenString:
		return strings.HasPrefix(strings.ToLower(tok.Text), "t")
	case TokenNumber:
		return tok.Text != "0"
	default:
		a.fail(tok, "expected boolean, found %s", tok.describe())
		return false
	}
}

// StringList reads a braced list of strings such as {"a", "b"}.
func (a *Args) StringList() []string {
	tok, ok := a.next()
	if !ok {
		return nil
	}
	if tok.Kind != TokenPunct || tok.Text != "{" {
		a.fail(tok, "expected \"{\", found %s", tok.describe())
		return nil
	}
	var out []string
	for {
		item, err := a.s.Next()
		if err != nil {
			a.err = err
			return nil
		}
		if item.Kind == TokenPunct && item.Text == "}" && len(out) == 0 {
			return out
		}
		if item.Kind != TokenString && item.Kind != TokenWord && item.Kind != TokenNumber {
			a.fail(item, "expected list item, found %s", item.describe())
			return nil
		}
		out = append(out, item.Text)

		sep, err := a.s.Next()
		if err != nil {
			a.err = err
			return nil
		}
		if sep.Kind == TokenPunct && sep.Text == "}" {
			return out
		}
		if sep.Kind != TokenPunct || sep.Text != "," {
			a.fail(sep, "expected \",\" or \"}\", found %s", sep.describe())
			return nil
		}
	}
}

// End consumes the closing parenthesis and verifies nothing follows.
// A command without any argument list at all is accepted.
func (a *Args) End() error {
	if a.err != nil {
		return a.err
	}
	if !a.opened {
		tok, err := a.s.Next()
		if err != nil {
			return err
		}
		if tok.Kind == TokenEOF {
			return nil
		}
		if tok.Kind != TokenPunct || tok.Text != "(" {
			a.fail(tok, "expected \"(\", found %s", tok.describe())
			return a.err
		}
		a.opened = true
	}
	if !a.expect(")") {
		return a.err
	}
	tok, err := a.s.Next()
	if err != nil {
		return err
	}
	if tok.Kind != TokenEOF {
		a.fail(tok, "unexpected %s after \")\"", tok.describe())
		return a.err
	}
	return nil
}
