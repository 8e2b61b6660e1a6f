// Package config loads codebayes settings from defaults, an optional TOML
// file and CODEBAYES_* environment variables, in that order.
package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"fortio.org/safecast"
	"github.com/BurntSushi/toml"

	"github.com/hickeroar/codebayes/bayes"
	"github.com/hickeroar/codebayes/langclass"
	"github.com/hickeroar/codebayes/matchtree"
)

const envPrefix = "CODEBAYES_"

// Tokenizer names.
const (
	TokenizerWhitespace = "whitespace"
	TokenizerKinds      = "kinds"
)

// Config holds all codebayes configuration.
type Config struct {
	Server     ServerConfig     `toml:"server"`
	Classifier ClassifierConfig `toml:"classifier"`
	Tokenizer  TokenizerConfig  `toml:"tokenizer"`
	Log        LogConfig        `toml:"log"`
}

// ServerConfig holds HTTP API settings.
type ServerConfig struct {
	Port      int    `toml:"port"`
	AuthToken string `toml:"auth_token"`
}

// ClassifierConfig holds classification settings.
type ClassifierConfig struct {
	Capacity        int    `toml:"capacity"`
	DefaultLanguage string `toml:"default_language"`
	Strategy        string `toml:"strategy"`
	CorpusDir       string `toml:"corpus_dir"` // empty selects the bundled corpus
	TreeDepth       int    `toml:"tree_depth"`
}

// TokenizerConfig holds feature extraction settings.
type TokenizerConfig struct {
	Kind      string `toml:"kind"` // "whitespace" or "kinds"
	Lowercase bool   `toml:"lowercase"`
	Stem      bool   `toml:"stem"`
}

// LogConfig holds logging settings.
type LogConfig struct {
	Level  string `toml:"level"`
	Format string `toml:"format"` // "text" or "json"
}

// lookupEnv is swapped in tests.
var lookupEnv = os.LookupEnv

// Default returns the built-in configuration.
func Default() Config {
	return Config{
		Server: ServerConfig{Port: 8000},
		Classifier: ClassifierConfig{
			Capacity:        bayes.DefaultCapacity,
			DefaultLanguage: langclass.DefaultLanguage,
			Strategy:        string(langclass.StrategyBayes),
			TreeDepth:       matchtree.DefaultDepth,
		},
		Tokenizer: TokenizerConfig{Kind: TokenizerWhitespace},
		Log:       LogConfig{Level: "info", Format: "text"},
	}
}

// Load returns the defaults overlaid with the TOML file at path, when path
// is not empty, and then with environment variables. The result is
// validated.
func Load(path string) (Config, error) {
	cfg := Default()

	if path != "" {
		meta, err := toml.DecodeFile(path, &cfg)
		if err != nil {
			return Config{}, fmt.Errorf("failed to decode config %q: %w", path, err)
		}
		if undecoded := meta.Undecoded(); len(undecoded) > 0 {
			keys := make([]string, len(undecoded))
			for i, key := range undecoded {
				keys[i] = key.String()
			}
			return Config{}, fmt.Errorf("%w: unknown keys in %q: %s", bayes.ErrInvalidConfiguration, path, strings.Join(keys, ", "))
		}
	}

	if err := applyEnv(&cfg); err != nil {
		return Config{}, err
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func applyEnv(cfg *Config) error {
	strs := []struct {
		key string
		dst *string
	}{
		{"AUTH_TOKEN", &cfg.Server.AuthToken},
		{"DEFAULT_LANGUAGE", &cfg.Classifier.DefaultLanguage},
		{"STRATEGY", &cfg.Classifier.Strategy},
		{"CORPUS_DIR", &cfg.Classifier.CorpusDir},
		{"TOKENIZER", &cfg.Tokenizer.Kind},
		{"LOG_LEVEL", &cfg.Log.Level},
		{"LOG_FORMAT", &cfg.Log.Format},
	}
	for _, s := range strs {
		if v, ok := lookupEnv(envPrefix + s.key); ok {
			*s.dst = v
		}
	}

	ints := []struct {
		key string
		dst *int
	}{
		{"PORT", &cfg.Server.Port},
		{"CAPACITY", &cfg.Classifier.Capacity},
		{"TREE_DEPTH", &cfg.Classifier.TreeDepth},
	}
	for _, i := range ints {
		v, ok := lookupEnv(envPrefix + i.key)
		if !ok {
			continue
		}
		n, err := strconv.Atoi(strings.TrimSpace(v))
		if err != nil {
			return fmt.Errorf("%w: %s%s=%q is not an integer", bayes.ErrInvalidConfiguration, envPrefix, i.key, v)
		}
		*i.dst = n
	}

	bools := []struct {
		key string
		dst *bool
	}{
		{"LOWERCASE", &cfg.Tokenizer.Lowercase},
		{"STEM", &cfg.Tokenizer.Stem},
	}
	for _, b := range bools {
		v, ok := lookupEnv(envPrefix + b.key)
		if !ok {
			continue
		}
		parsed, err := strconv.ParseBool(strings.TrimSpace(v))
		if err != nil {
			return fmt.Errorf("%w: %s%s=%q is not a boolean", bayes.ErrInvalidConfiguration, envPrefix, b.key, v)
		}
		*b.dst = parsed
	}

	return nil
}

// Validate reports the first setting the service cannot run with.
func (c Config) Validate() error {
	if port, err := safecast.Conv[uint16](c.Server.Port); err != nil || port == 0 {
		return fmt.Errorf("%w: server.port must be between 1 and 65535, got %d", bayes.ErrInvalidConfiguration, c.Server.Port)
	}
	if c.Classifier.Capacity <= 0 {
		return fmt.Errorf("%w: classifier.capacity must be positive, got %d", bayes.ErrInvalidConfiguration, c.Classifier.Capacity)
	}
	if strings.TrimSpace(c.Classifier.DefaultLanguage) == "" {
		return fmt.Errorf("%w: classifier.default_language must not be empty", bayes.ErrInvalidConfiguration)
	}
	if _, err := langclass.ParseStrategy(c.Classifier.Strategy); err != nil {
		return fmt.Errorf("%w: classifier.strategy: %w", bayes.ErrInvalidConfiguration, err)
	}
	if c.Classifier.TreeDepth <= 0 || c.Classifier.TreeDepth > matchtree.MaxDepth {
		return fmt.Errorf("%w: classifier.tree_depth must be between 1 and %d, got %d", bayes.ErrInvalidConfiguration, matchtree.MaxDepth, c.Classifier.TreeDepth)
	}
	switch c.Tokenizer.Kind {
	case TokenizerWhitespace, TokenizerKinds:
	default:
		return fmt.Errorf("%w: tokenizer.kind must be %q or %q, got %q", bayes.ErrInvalidConfiguration, TokenizerWhitespace, TokenizerKinds, c.Tokenizer.Kind)
	}
	switch strings.ToLower(c.Log.Format) {
	case "text", "json":
	default:
		return fmt.Errorf("%w: log.format must be \"text\" or \"json\", got %q", bayes.ErrInvalidConfiguration, c.Log.Format)
	}
	return nil
}
