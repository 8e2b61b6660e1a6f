// Command codebayes guesses the programming language of source snippets.
//
// Usage:
//
//	codebayes serve [--port 8000] [--auth-token TOKEN]
//	codebayes classify [--detailed] [FILE]
//	codebayes tokenize [--tokens] [FILE]
//	codebayes snapshot save|inspect [PATH]
//
// Every command accepts --config FILE (TOML), --log-level and --color.
// Settings may also come from CODEBAYES_* environment variables.
package main

var runMain = func() error {
	return newRootCmd(newApplication()).Execute()
}

func main() {
	if err := runMain(); err != nil {
		logFatal(err)
	}
}
