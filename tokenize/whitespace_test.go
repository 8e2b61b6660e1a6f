package tokenize

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestWhitespaceFeatures(t *testing.T) {
	tests := []struct {
		name string
		tok  *Whitespace
		src  string
		want []string
	}{
		{"empty", NewWhitespace(), "", []string{}},
		{"only spaces", NewWhitespace(), " \t\n\r ", []string{}},
		{"duplicates kept", NewWhitespace(), "a b  a\n", []string{"a", "b", "a"}},
		{"punctuation stays attached", NewWhitespace(), "print(x) {}", []string{"print(x)", "{}"}},
		{"lowercase", NewWhitespace(WithLowercase()), "SELECT Name", []string{"select", "name"}},
		{"stemming", NewWhitespace(WithStemming()), "running x:=1", []string{"run", "x:=1"}},
		{"stemming skips mixed chunks", NewWhitespace(WithStemming()), "running_total", []string{"running_total"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := tt.tok.Features(tt.src)
			if len(tt.want) == 0 {
				assert.Empty(t, got)
				return
			}
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestWhitespaceNormalizesComposition(t *testing.T) {
	tok := NewWhitespace()
	composed := tok.Features("caf\u00e9")
	decomposed := tok.Features("cafe\u0301")
	assert.Equal(t, composed, decomposed)
}

func TestWhitespaceInvalidUTF8(t *testing.T) {
	tok := NewWhitespace(WithLowercase(), WithStemming())
	got := tok.Features("ok \xff\xfe bad")
	assert.Len(t, got, 3)
	assert.Equal(t, "ok", got[0])
	assert.Equal(t, "bad", got[2])
}
