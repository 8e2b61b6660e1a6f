// Package trainingset bundles the example sources the classifier is
// trained on by default. Each directory under languages/ is one language.
package trainingset

import (
	"embed"
	"io/fs"
)

//go:embed languages
var languages embed.FS

// FS returns the bundled corpus rooted at the language directories.
func FS() fs.FS {
	sub, err := fs.Sub(languages, "languages")
	if err != nil {
		panic(err)
	}
	return sub
}
