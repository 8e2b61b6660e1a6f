package matchtree

import (
	"cmp"
	"slices"

	"github.com/hickeroar/codebayes/tokenize"
)

// Score is the match score of one language.
type Score struct {
	Language string
	Value    float64
}

// Model keeps one tree per language. It is not safe for concurrent
// mutation.
type Model struct {
	depth int
	trees map[string]*Tree
}

// NewModel returns an empty model whose trees store windows of up to depth
// kinds.
func NewModel(depth int) *Model {
	return &Model{depth: depth, trees: make(map[string]*Tree)}
}

// Learn adds tokens to the tree of lang.
func (m *Model) Learn(lang string, tokens []tokenize.Token) {
	tree, ok := m.trees[lang]
	if !ok {
		tree = NewTree(m.depth)
		m.trees[lang] = tree
	}
	tree.Learn(tokens)
}

// Languages returns the trained languages in lexical order.
func (m *Model) Languages() []string {
	langs := make([]string, 0, len(m.trees))
	for lang := range m.trees {
		langs = append(langs, lang)
	}
	slices.Sort(langs)
	return langs
}

// Scores returns the score of every language, best first. Equal scores are
// ordered by language name.
func (m *Model) Scores(tokens []tokenize.Token) []Score {
	scores := make([]Score, 0, len(m.trees))
	for lang, tree := range m.trees {
		scores = append(scores, Score{Language: lang, Value: tree.Score(tokens)})
	}
	slices.SortFunc(scores, func(a, b Score) int {
		if c := cmp.Compare(b.Value, a.Value); c != 0 {
			return c
		}
		return cmp.Compare(a.Language, b.Language)
	})
	return scores
}

// Classify returns the best matching language. It reports false when the
// model is untrained or no language matches any window of tokens.
func (m *Model) Classify(tokens []tokenize.Token) (string, bool) {
	scores := m.Scores(tokens)
	if len(scores) == 0 || scores[0].Value <= 0 {
		return "", false
	}
	return scores[0].Language, true
}
