package tokenize

import "strings"

// Kinds extracts order-free features from scanner tokens. Keywords,
// operators, punctuation and directives keep their text; identifiers and
// literals collapse to their kind, and comments to their opening marker.
type Kinds struct{}

// NewKinds returns a scanner-backed tokenizer.
func NewKinds() *Kinds {
	return &Kinds{}
}

// Features implements Tokenizer.
func (*Kinds) Features(src string) []string {
	tokens := Scan(src)
	features := make([]string, 0, len(tokens)-1)
	for _, tok := range tokens {
		switch tok.Kind {
		case EOF:
			continue
		case Keyword, Operator, Punct, Preprocessor:
			features = append(features, tok.Kind.String()+":"+tok.Text)
		case Comment:
			features = append(features, "comment:"+commentMarker(tok.Text))
		default:
			features = append(features, tok.Kind.String())
		}
	}
	return features
}

func commentMarker(text string) string {
	for _, marker := range []string{"//", "/*", "--", "#"} {
		if strings.HasPrefix(text, marker) {
			return marker
		}
	}
	return ""
}
