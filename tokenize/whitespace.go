package tokenize

import (
	"strings"
	"unicode/utf8"

	"github.com/kljensen/snowball/english"
	"golang.org/x/text/unicode/norm"
)

// Whitespace splits text on runs of white space. Each chunk is one feature.
type Whitespace struct {
	lowercase bool
	stem      bool
}

// WhitespaceOption configures a Whitespace tokenizer.
type WhitespaceOption func(*Whitespace)

// WithLowercase folds every chunk to lower case.
func WithLowercase() WhitespaceOption {
	return func(w *Whitespace) {
		w.lowercase = true
	}
}

// WithStemming reduces purely alphabetic chunks to their English stem.
func WithStemming() WhitespaceOption {
	return func(w *Whitespace) {
		w.stem = true
	}
}

// NewWhitespace returns a whitespace tokenizer.
func NewWhitespace(opts ...WhitespaceOption) *Whitespace {
	w := &Whitespace{}
	for _, opt := range opts {
		opt(w)
	}
	return w
}

// Features returns the whitespace-delimited chunks of src. Valid UTF-8 is
// normalized to NFC first so composed and decomposed spellings agree.
func (w *Whitespace) Features(src string) []string {
	if utf8.ValidString(src) {
		src = norm.NFC.String(src)
	}

	chunks := strings.Fields(src)
	for i, chunk := range chunks {
		if w.lowercase {
			chunk = strings.ToLower(chunk)
		}
		if w.stem && isAlphabetic(chunk) {
			chunk = english.Stem(chunk, false)
		}
		chunks[i] = chunk
	}
	return chunks
}

func isAlphabetic(s string) bool {
	if s == "" {
		return false
	}
	for i := 0; i < len(s); i++ {
		c := s[i]
		if !('a' <= c && c <= 'z' || 'A' <= c && c <= 'Z') {
			return false
		}
	}
	return true
}
