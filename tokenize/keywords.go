package tokenize

// keywords is the union of reserved words across the languages the bundled
// corpus covers. Matching is case sensitive; SQL keywords are listed in upper
// case as they are conventionally written.
var keywords = map[string]struct{}{}

func init() {
	for _, kw := range []string{
		// C family
		"auto", "break", "case", "char", "const", "continue", "default", "do", "double",
		"else", "enum", "extern", "float", "for", "goto", "if", "int", "long", "register",
		"return", "short", "signed", "sizeof", "static", "struct", "switch", "typedef",
		"union", "unsigned", "void", "volatile", "while", "inline", "restrict",
		// C#, Java, Kotlin
		"abstract", "as", "base", "bool", "byte", "catch", "checked", "class", "decimal",
		"delegate", "event", "explicit", "finally", "fixed", "foreach", "implicit", "in",
		"interface", "internal", "is", "lock", "namespace", "new", "null", "object",
		"operator", "out", "override", "params", "private", "protected", "public",
		"readonly", "ref", "sealed", "stackalloc", "string", "this", "throw", "try",
		"typeof", "using", "virtual", "boolean", "extends", "final", "implements",
		"import", "instanceof", "native", "package", "super", "synchronized", "throws",
		"transient", "fun", "val", "var", "when", "object", "companion", "data", "open",
		"lateinit", "suspend",
		// Go
		"chan", "defer", "fallthrough", "func", "go", "map", "range", "select", "type",
		// JavaScript
		"await", "async", "const", "debugger", "delete", "export", "function", "let",
		"of", "undefined", "yield", "true", "false",
		// Python
		"and", "assert", "def", "del", "elif", "except", "from", "global", "lambda",
		"nonlocal", "not", "or", "pass", "raise", "with", "None", "True", "False", "self",
		// Ruby
		"begin", "elsif", "end", "ensure", "module", "next", "nil", "redo", "rescue",
		"retry", "then", "unless", "until", "puts", "require", "attr_accessor",
		// Rust
		"crate", "dyn", "fn", "impl", "loop", "match", "mod", "move", "mut", "pub",
		"trait", "unsafe", "where", "Self",
		// Shell
		"done", "esac", "fi", "echo", "local", "export",
		// PHP
		"echo", "foreach", "endif", "endforeach", "array", "isset", "unset",
		// SQL
		"SELECT", "FROM", "WHERE", "INSERT", "INTO", "VALUES", "UPDATE", "SET",
		"DELETE", "CREATE", "TABLE", "JOIN", "LEFT", "INNER", "ON", "GROUP", "BY",
		"ORDER", "HAVING", "LIMIT", "PRIMARY", "KEY", "NOT", "NULL", "AND", "OR",
	} {
		keywords[kw] = struct{}{}
	}
}

// preprocessorDirectives are recognized after a '#' at the start of a line.
var preprocessorDirectives = map[string]struct{}{
	"include": {}, "define": {}, "undef": {}, "if": {}, "ifdef": {}, "ifndef": {},
	"else": {}, "elif": {}, "endif": {}, "pragma": {}, "error": {}, "warning": {},
	"line": {}, "region": {}, "endregion": {}, "import": {},
}

// operators are tried longest first.
var operators = []string{
	">>>=", "<<=", ">>=", "...", "===", "!==", "**=", "//=", "<=>", "&&=", "||=", "??=",
	"->", "=>", "::", "==", "!=", "<=", ">=", "&&", "||", "++", "--", "+=", "-=", "*=",
	"/=", "%=", "&=", "|=", "^=", "<<", ">>", ":=", "??", "?.", "**", "<-", "..",
	"+", "-", "*", "/", "%", "=", "<", ">", "!", "&", "|", "^", "~", "?", ":", ".",
}
