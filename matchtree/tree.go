// Package matchtree scores source text by how well its sequence of token
// kinds matches sequences seen during training.
//
// Unlike the bag-of-words classifier in package bayes, a match tree is
// order sensitive: every run of up to Depth consecutive token kinds is
// stored as a path in a trie, and each node remembers the literal token
// texts seen at that position.
package matchtree

import "github.com/hickeroar/codebayes/tokenize"

// DefaultDepth is the longest token-kind run stored in a tree.
const DefaultDepth = 10

// MaxDepth bounds the run length. Node weights double per level, so deeper
// trees would overflow float64 and score every snippet as zero.
const MaxDepth = 64

const (
	levelMultiplier      = 2
	exactMatchMultiplier = 5
)

type node struct {
	children map[tokenize.Kind]*node
	weight   float64
	examples map[string]struct{}
}

func newNode(weight float64) *node {
	return &node{
		children: make(map[tokenize.Kind]*node),
		weight:   weight,
		examples: make(map[string]struct{}),
	}
}

// Tree is a trie over token-kind runs. Create trees with NewTree.
type Tree struct {
	root  *node
	depth int
	total float64
}

// NewTree returns an empty tree storing runs of up to depth kinds. A
// non-positive depth selects DefaultDepth and depths above MaxDepth are
// capped.
func NewTree(depth int) *Tree {
	switch {
	case depth <= 0:
		depth = DefaultDepth
	case depth > MaxDepth:
		depth = MaxDepth
	}
	return &Tree{root: newNode(1), depth: depth}
}

// Total reports the summed weight of every node in the tree. Each node
// weighs twice its parent, so deep distinct paths dominate the total.
func (t *Tree) Total() float64 {
	return t.total
}

// Learn inserts the run starting at every token.
func (t *Tree) Learn(tokens []tokenize.Token) {
	tokens = trimEOF(tokens)
	for i := range tokens {
		n := t.root
		for j := i; j < len(tokens) && j-i < t.depth; j++ {
			tok := tokens[j]
			next, ok := n.children[tok.Kind]
			if !ok {
				next = newNode(n.weight * levelMultiplier)
				n.children[tok.Kind] = next
				t.total += next.weight
			}
			next.examples[tok.Text] = struct{}{}
			n = next
		}
	}
}

// Score measures how familiar tokens look to the tree. The run starting at
// each token is followed down the tree; every matched node multiplies the
// run's score by 5 when it has seen the exact token text and by 2 otherwise.
// Runs whose first token does not match add nothing. The sum is normalized
// by the token count and the tree total, so an untrained tree scores zero.
func (t *Tree) Score(tokens []tokenize.Token) float64 {
	tokens = trimEOF(tokens)
	if t.total == 0 || len(tokens) == 0 {
		return 0
	}

	var score float64
	for i := range tokens {
		n := t.root
		run := 1.0
		matched := false
		for j := i; j < len(tokens) && j-i < t.depth; j++ {
			next, ok := n.children[tokens[j].Kind]
			if !ok {
				break
			}
			matched = true
			if _, exact := next.examples[tokens[j].Text]; exact {
				run *= exactMatchMultiplier
			} else {
				run *= levelMultiplier
			}
			n = next
		}
		if matched {
			score += run
		}
	}
	return score / float64(len(tokens)) / t.total
}

func trimEOF(tokens []tokenize.Token) []tokenize.Token {
	for len(tokens) > 0 && tokens[len(tokens)-1].Kind == tokenize.EOF {
		tokens = tokens[:len(tokens)-1]
	}
	return tokens
}
