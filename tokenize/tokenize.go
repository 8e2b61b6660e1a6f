// Package tokenize turns raw source text into classification features.
//
// Every tokenizer in this package is total: any input, including the empty
// string and invalid UTF-8, yields a finite result without panicking.
package tokenize

// Tokenizer extracts classification features from source text.
type Tokenizer interface {
	Features(src string) []string
}
