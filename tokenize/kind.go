package tokenize

// Kind represents the category of a scanned token.
type Kind uint8

const (
	// EOF marks the end of the input. It is always the last token.
	EOF Kind = iota
	// Unknown covers bytes no other kind accepts, including invalid UTF-8.
	Unknown
	// Ident is an identifier that is not a known keyword.
	Ident
	// Keyword is an identifier found in the shared keyword table.
	Keyword
	// Number is a numeric literal.
	Number
	// String is a quoted string or character literal.
	String
	// Comment is a line or block comment.
	Comment
	// Preprocessor is a directive such as #include at the start of a line.
	Preprocessor
	// Operator is an operator matched by maximal munch.
	Operator
	// Punct is a single punctuation byte.
	Punct
)

var kindNames = [...]string{
	EOF:          "eof",
	Unknown:      "unknown",
	Ident:        "ident",
	Keyword:      "keyword",
	Number:       "number",
	String:       "string",
	Comment:      "comment",
	Preprocessor: "preprocessor",
	Operator:     "operator",
	Punct:        "punct",
}

// String returns the lower-case name of the kind.
func (k Kind) String() string {
	if int(k) < len(kindNames) {
		return kindNames[k]
	}
	return "unknown"
}

// Token is a scanned unit of source text.
type Token struct {
	Kind   Kind
	Text   string
	Offset int
}
