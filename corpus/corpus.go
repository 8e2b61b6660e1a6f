// Package corpus loads grouped training text from a file system.
//
// Every top-level directory of the file system is one group and holds all
// regular files below it. Every top-level regular file is a group of its
// own. Groups are named after the entry without its extension, so
// "kotlin.lang/" and "kotlin.txt" both feed "kotlin". Hidden entries are
// skipped.
package corpus

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"path"
	"runtime"
	"slices"
	"strings"
	"unicode/utf8"

	"golang.org/x/sync/errgroup"
	"golang.org/x/text/encoding/charmap"
	"golang.org/x/text/encoding/unicode"
	"golang.org/x/text/transform"

	"github.com/hickeroar/codebayes/tokenize"
)

// ErrEmptyCorpus is returned when the file system holds no readable group.
var ErrEmptyCorpus = errors.New("corpus contains no language groups")

// Group is the concatenated text of one language.
type Group struct {
	Language string
	Files    []string
	Text     string
}

// Learner receives one observation per group.
type Learner interface {
	Learn(category string, features []string)
}

// Loader reads groups from a file system.
type Loader struct {
	parallelism int
	logger      *slog.Logger
}

// Option configures a Loader.
type Option func(*Loader)

// WithParallelism bounds the number of files read at once. Non-positive
// values select GOMAXPROCS.
func WithParallelism(n int) Option {
	return func(l *Loader) {
		l.parallelism = n
	}
}

// WithLogger sets the logger used to report loaded groups.
func WithLogger(logger *slog.Logger) Option {
	return func(l *Loader) {
		if logger != nil {
			l.logger = logger
		}
	}
}

// NewLoader returns a Loader.
func NewLoader(opts ...Option) *Loader {
	l := &Loader{logger: slog.New(slog.DiscardHandler)}
	for _, opt := range opts {
		opt(l)
	}
	if l.parallelism <= 0 {
		l.parallelism = runtime.GOMAXPROCS(0)
	}
	return l
}

// Load returns the groups of fsys ordered by language. Files of a group are
// read in lexical order and joined with a newline.
func (l *Loader) Load(ctx context.Context, fsys fs.FS) ([]Group, error) {
	files, err := listGroups(fsys)
	if err != nil {
		return nil, err
	}
	if len(files) == 0 {
		return nil, ErrEmptyCorpus
	}

	languages := make([]string, 0, len(files))
	var paths []string
	for lang, names := range files {
		languages = append(languages, lang)
		paths = append(paths, names...)
	}
	slices.Sort(languages)
	slices.Sort(paths)

	contents := make([]string, len(paths))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(min(l.parallelism, len(paths)))
	for i, name := range paths {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			text, err := readText(fsys, name)
			if err != nil {
				return err
			}
			contents[i] = text
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	byPath := make(map[string]string, len(paths))
	for i, name := range paths {
		byPath[name] = contents[i]
	}

	groups := make([]Group, 0, len(languages))
	for _, lang := range languages {
		names := files[lang]
		slices.Sort(names)
		texts := make([]string, len(names))
		for i, name := range names {
			texts[i] = byPath[name]
		}
		group := Group{Language: lang, Files: names, Text: strings.Join(texts, "\n")}
		l.logger.Debug("loaded corpus group", "language", lang, "files", len(names), "bytes", len(group.Text))
		groups = append(groups, group)
	}
	return groups, nil
}

// Train loads fsys and feeds each group's features to learner.
func (l *Loader) Train(ctx context.Context, fsys fs.FS, tok tokenize.Tokenizer, learner Learner) error {
	groups, err := l.Load(ctx, fsys)
	if err != nil {
		return err
	}
	for _, group := range groups {
		if err := ctx.Err(); err != nil {
			return err
		}
		features := tok.Features(group.Text)
		learner.Learn(group.Language, features)
		l.logger.Debug("trained language", "language", group.Language, "files", len(group.Files), "features", len(features))
	}
	return nil
}

func listGroups(fsys fs.FS) (map[string][]string, error) {
	entries, err := fs.ReadDir(fsys, ".")
	if err != nil {
		return nil, fmt.Errorf("failed to read corpus root: %w", err)
	}

	groups := make(map[string][]string)
	for _, entry := range entries {
		name := entry.Name()
		if isHidden(name) {
			continue
		}
		lang := strings.TrimSuffix(name, path.Ext(name))
		if lang == "" {
			continue
		}
		if entry.IsDir() {
			names, err := listFiles(fsys, name)
			if err != nil {
				return nil, err
			}
			if len(names) > 0 {
				groups[lang] = append(groups[lang], names...)
			}
			continue
		}
		if entry.Type().IsRegular() {
			groups[lang] = append(groups[lang], name)
		}
	}
	return groups, nil
}

func listFiles(fsys fs.FS, dir string) ([]string, error) {
	var names []string
	err := fs.WalkDir(fsys, dir, func(name string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if name != dir && isHidden(d.Name()) {
			if d.IsDir() {
				return fs.SkipDir
			}
			return nil
		}
		if d.Type().IsRegular() {
			names = append(names, name)
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to list corpus group %q: %w", dir, err)
	}
	return names, nil
}

func isHidden(name string) bool {
	return strings.HasPrefix(name, ".")
}

var byteOrderMarks = [][]byte{
	{0xEF, 0xBB, 0xBF},
	{0xFF, 0xFE},
	{0xFE, 0xFF},
}

func readText(fsys fs.FS, name string) (string, error) {
	data, err := fs.ReadFile(fsys, name)
	if err != nil {
		return "", fmt.Errorf("failed to read corpus file %q: %w", name, err)
	}
	text, err := decode(data)
	if err != nil {
		return "", fmt.Errorf("failed to decode corpus file %q: %w", name, err)
	}
	return text, nil
}

// decode honours a UTF-8 or UTF-16 byte order mark. Input without a mark
// that is not valid UTF-8 is read as Windows-1252.
func decode(data []byte) (string, error) {
	if !hasBOM(data) && !utf8.Valid(data) {
		out, err := charmap.Windows1252.NewDecoder().Bytes(data)
		if err != nil {
			return "", err
		}
		return string(out), nil
	}

	out, _, err := transform.Bytes(unicode.BOMOverride(unicode.UTF8.NewDecoder()), data)
	if err != nil {
		return "", err
	}
	return string(out), nil
}

func hasBOM(data []byte) bool {
	for _, bom := range byteOrderMarks {
		if bytes.HasPrefix(data, bom) {
			return true
		}
	}
	return false
}
