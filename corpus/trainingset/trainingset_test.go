package trainingset

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hickeroar/codebayes/corpus"
)

func TestBundledLanguages(t *testing.T) {
	groups, err := corpus.NewLoader().Load(context.Background(), FS())
	require.NoError(t, err)

	var langs []string
	for _, g := range groups {
		langs = append(langs, g.Language)
		assert.NotEmpty(t, g.Text, g.Language)
	}
	assert.Equal(t, []string{"c", "csharp", "go", "java", "js", "kotlin", "php", "python", "ruby", "rust", "sh", "sql"}, langs)
}
