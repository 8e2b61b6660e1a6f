package tokenize

import (
	"strings"
	"unicode"
	"unicode/utf8"
)

// Scanner splits source text into kind-tagged tokens. It understands just
// enough of the common C, script and SQL syntaxes to tell comments, strings
// and numbers apart from code; it never reports errors.
type Scanner struct {
	src       string
	off       int
	lineStart bool
}

// NewScanner creates a scanner over src.
func NewScanner(src string) *Scanner {
	return &Scanner{src: src, lineStart: true}
}

// Scan returns every token of src, terminated by exactly one EOF token.
func Scan(src string) []Token {
	s := NewScanner(src)
	var tokens []Token
	for {
		tok := s.Next()
		tokens = append(tokens, tok)
		if tok.Kind == EOF {
			return tokens
		}
	}
}

// Next returns the next token. After the input is exhausted it keeps
// returning EOF.
func (s *Scanner) Next() Token {
	s.skipSpace()
	if s.off >= len(s.src) {
		return Token{Kind: EOF, Offset: len(s.src)}
	}

	start := s.off
	atLineStart := s.lineStart
	s.lineStart = false

	ch := s.src[s.off]
	switch {
	case ch == '#':
		return s.scanHash(start, atLineStart)
	case ch == '/' && s.peekAt(1) == '/':
		return s.scanLineComment(start)
	case ch == '/' && s.peekAt(1) == '*':
		return s.scanBlockComment(start)
	case ch == '-' && s.peekAt(1) == '-' && atLineStart && isSpaceByte(s.peekAt(2)):
		return s.scanLineComment(start)
	case ch == '"' || ch == '\'' || ch == '`':
		return s.scanString(start, ch)
	case isDigit(ch) || ch == '.' && isDigit(s.peekAt(1)):
		return s.scanNumber(start)
	case isIdentStartByte(ch):
		return s.scanIdent(start)
	case ch >= utf8.RuneSelf:
		r, size := utf8.DecodeRuneInString(s.src[s.off:])
		if r != utf8.RuneError && unicode.IsLetter(r) {
			return s.scanIdent(start)
		}
		s.off += size
		return s.token(Unknown, start)
	default:
		return s.scanOperatorOrPunct(start)
	}
}

func (s *Scanner) token(kind Kind, start int) Token {
	return Token{Kind: kind, Text: s.src[start:s.off], Offset: start}
}

func (s *Scanner) peekAt(n int) byte {
	if s.off+n >= len(s.src) {
		return 0
	}
	return s.src[s.off+n]
}

func (s *Scanner) skipSpace() {
	for s.off < len(s.src) {
		ch := s.src[s.off]
		switch {
		case ch == '\n':
			s.off++
			s.lineStart = true
		case isSpaceByte(ch):
			s.off++
		case ch >= utf8.RuneSelf:
			r, size := utf8.DecodeRuneInString(s.src[s.off:])
			if r == utf8.RuneError || !unicode.IsSpace(r) {
				return
			}
			s.off += size
		default:
			return
		}
	}
}

// scanHash handles preprocessor directives, attribute markers and the
// '#' line comments of shell, Python and Ruby.
func (s *Scanner) scanHash(start int, atLineStart bool) Token {
	next := s.peekAt(1)
	if next == '[' || next == '!' && s.peekAt(2) == '[' {
		s.off++
		return s.token(Punct, start)
	}

	if atLineStart && isIdentStartByte(next) {
		end := s.off + 1
		for end < len(s.src) && isIdentContinueByte(s.src[end]) {
			end++
		}
		if _, ok := preprocessorDirectives[s.src[s.off+1:end]]; ok {
			s.off = end
			return s.token(Preprocessor, start)
		}
	}

	return s.scanLineComment(start)
}

func (s *Scanner) scanLineComment(start int) Token {
	if i := strings.IndexByte(s.src[s.off:], '\n'); i >= 0 {
		s.off += i
	} else {
		s.off = len(s.src)
	}
	return s.token(Comment, start)
}

func (s *Scanner) scanBlockComment(start int) Token {
	if i := strings.Index(s.src[s.off+2:], "*/"); i >= 0 {
		s.off += 2 + i + 2
	} else {
		s.off = len(s.src)
	}
	return s.token(Comment, start)
}

// scanString accepts unterminated literals: a quoted string ends at its
// closing quote, at a newline (except for backticks) or at the end of input.
func (s *Scanner) scanString(start int, quote byte) Token {
	if quote != '`' && s.peekAt(1) == quote && s.peekAt(2) == quote {
		delim := s.src[s.off : s.off+3]
		if i := strings.Index(s.src[s.off+3:], delim); i >= 0 {
			s.off += 3 + i + 3
		} else {
			s.off = len(s.src)
		}
		return s.token(String, start)
	}

	s.off++
	for s.off < len(s.src) {
		ch := s.src[s.off]
		if ch == '\\' {
			s.off = min(s.off+2, len(s.src))
			continue
		}
		if ch == quote {
			s.off++
			break
		}
		if ch == '\n' && quote != '`' {
			break
		}
		s.off++
	}
	return s.token(String, start)
}

func (s *Scanner) scanNumber(start int) Token {
	if s.src[s.off] == '0' && strings.IndexByte("xXbBoO", s.peekAt(1)) >= 0 && s.peekAt(1) != 0 {
		s.off += 2
		for s.off < len(s.src) && isIdentContinueByte(s.src[s.off]) {
			s.off++
		}
		return s.token(Number, start)
	}

	s.skipDigits()
	if s.off < len(s.src) && s.src[s.off] == '.' && isDigit(s.peekAt(1)) {
		s.off++
		s.skipDigits()
	}
	if s.off < len(s.src) && (s.src[s.off] == 'e' || s.src[s.off] == 'E') {
		next := s.peekAt(1)
		if isDigit(next) || (next == '+' || next == '-') && isDigit(s.peekAt(2)) {
			s.off += 2
			s.skipDigits()
		}
	}
	// Type suffixes such as 10L, 1.5f or 42u32.
	for s.off < len(s.src) && isIdentContinueByte(s.src[s.off]) {
		s.off++
	}
	return s.token(Number, start)
}

func (s *Scanner) skipDigits() {
	for s.off < len(s.src) && (isDigit(s.src[s.off]) || s.src[s.off] == '_') {
		s.off++
	}
}

func (s *Scanner) scanIdent(start int) Token {
	for s.off < len(s.src) {
		ch := s.src[s.off]
		if isIdentContinueByte(ch) {
			s.off++
			continue
		}
		if ch < utf8.RuneSelf {
			break
		}
		r, size := utf8.DecodeRuneInString(s.src[s.off:])
		if r == utf8.RuneError || !(unicode.IsLetter(r) || unicode.IsDigit(r)) {
			break
		}
		s.off += size
	}

	tok := s.token(Ident, start)
	if _, ok := keywords[tok.Text]; ok {
		tok.Kind = Keyword
	}
	return tok
}

func (s *Scanner) scanOperatorOrPunct(start int) Token {
	rest := s.src[s.off:]
	for _, op := range operators {
		if strings.HasPrefix(rest, op) {
			s.off += len(op)
			return s.token(Operator, start)
		}
	}

	ch := s.src[s.off]
	s.off++
	if ch > ' ' && ch < 0x7f {
		return s.token(Punct, start)
	}
	return s.token(Unknown, start)
}

func isSpaceByte(ch byte) bool {
	return ch == ' ' || ch == '\t' || ch == '\r' || ch == '\v' || ch == '\f'
}

func isDigit(ch byte) bool {
	return '0' <= ch && ch <= '9'
}

func isIdentStartByte(ch byte) bool {
	return 'a' <= ch && ch <= 'z' || 'A' <= ch && ch <= 'Z' || ch == '_' || ch == '$'
}

func isIdentContinueByte(ch byte) bool {
	return isIdentStartByte(ch) || isDigit(ch)
}
