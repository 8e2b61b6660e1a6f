package main

import (
	"errors"
	"fmt"
	"io"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/fatih/color"
	"github.com/mattn/go-runewidth"
	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/hickeroar/codebayes/bayes"
	"github.com/hickeroar/codebayes/corpus"
	"github.com/hickeroar/codebayes/corpus/trainingset"
	"github.com/hickeroar/codebayes/internal/config"
	"github.com/hickeroar/codebayes/internal/logging"
	"github.com/hickeroar/codebayes/langclass"
	"github.com/hickeroar/codebayes/tokenize"
)

var errNoInput = errors.New("no input: pass a file or pipe a snippet on stdin")

// application carries what every subcommand shares once flags and
// configuration are resolved.
type application struct {
	cfg      config.Config
	logger   *slog.Logger
	stdin    io.Reader
	stdout   io.Writer
	useColor bool
}

func newApplication() *application {
	return &application{
		cfg:    config.Default(),
		logger: slog.Default(),
		stdin:  os.Stdin,
		stdout: os.Stdout,
	}
}

func (a *application) tokenizer() tokenize.Tokenizer {
	if a.cfg.Tokenizer.Kind == config.TokenizerKinds {
		return tokenize.NewKinds()
	}

	var opts []tokenize.WhitespaceOption
	if a.cfg.Tokenizer.Lowercase {
		opts = append(opts, tokenize.WithLowercase())
	}
	if a.cfg.Tokenizer.Stem {
		opts = append(opts, tokenize.WithStemming())
	}
	return tokenize.NewWhitespace(opts...)
}

func (a *application) newClassifier() (*langclass.Classifier, error) {
	strategy, err := langclass.ParseStrategy(a.cfg.Classifier.Strategy)
	if err != nil {
		return nil, err
	}
	return langclass.New(
		langclass.WithTokenizer(a.tokenizer()),
		langclass.WithCapacity(a.cfg.Classifier.Capacity),
		langclass.WithDefaultLanguage(a.cfg.Classifier.DefaultLanguage),
		langclass.WithStrategy(strategy),
		langclass.WithTreeDepth(a.cfg.Classifier.TreeDepth),
		langclass.WithLogger(a.logger),
	)
}

func (a *application) corpusFS() (fs.FS, error) {
	dir := a.cfg.Classifier.CorpusDir
	if dir == "" {
		return trainingset.FS(), nil
	}

	info, err := os.Stat(dir)
	if err != nil {
		return nil, fmt.Errorf("corpus directory: %w", err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("corpus directory: %q is not a directory", dir)
	}
	return os.DirFS(dir), nil
}

// readInput reads the file named by args, or stdin when args is empty or
// "-". An interactive stdin is rejected rather than waited on.
func (a *application) readInput(args []string) (string, error) {
	if len(args) > 0 && args[0] != "-" {
		data, err := os.ReadFile(args[0])
		if err != nil {
			return "", err
		}
		return string(data), nil
	}

	if isTerminal(a.stdin) {
		return "", errNoInput
	}
	data, err := io.ReadAll(a.stdin)
	if err != nil {
		return "", fmt.Errorf("read stdin: %w", err)
	}
	return string(data), nil
}

func isTerminal(v any) bool {
	f, ok := v.(*os.File)
	return ok && term.IsTerminal(int(f.Fd()))
}

func newRootCmd(app *application) *cobra.Command {
	root := &cobra.Command{
		Use:           "codebayes",
		Short:         "Guess the programming language of source snippets",
		Long:          `codebayes classifies source code by language with a naive Bayes model trained on example sources`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			return app.configure(cmd)
		},
	}

	root.PersistentFlags().String("config", "", "path to a TOML configuration file")
	root.PersistentFlags().String("log-level", "", "log level (debug|info|warn|error)")
	root.PersistentFlags().String("color", "auto", "colorize output (auto|on|off)")

	root.AddCommand(newServeCmd(app))
	root.AddCommand(newClassifyCmd(app))
	root.AddCommand(newTokenizeCmd(app))
	root.AddCommand(newSnapshotCmd(app))
	return root
}

func (a *application) configure(cmd *cobra.Command) error {
	flags := cmd.Root().PersistentFlags()

	path, err := flags.GetString("config")
	if err != nil {
		return fmt.Errorf("failed to get config flag: %w", err)
	}
	cfg, err := config.Load(path)
	if err != nil {
		return err
	}

	if level, _ := flags.GetString("log-level"); level != "" {
		cfg.Log.Level = level
	}

	switch colorFlag, _ := flags.GetString("color"); colorFlag {
	case "on":
		a.useColor = true
	case "off":
		a.useColor = false
	case "auto":
		a.useColor = isTerminal(a.stdout)
	default:
		return fmt.Errorf("unknown color mode: %s", colorFlag)
	}

	a.cfg = cfg
	a.logger = logging.Init(cfg.Log.Format, logging.ParseLevel(cfg.Log.Level))
	return nil
}

func newServeCmd(app *application) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the classification HTTP API",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if cmd.Flags().Changed("port") {
				port, err := cmd.Flags().GetInt("port")
				if err != nil {
					return fmt.Errorf("failed to get port flag: %w", err)
				}
				app.cfg.Server.Port = port
			}
			if cmd.Flags().Changed("auth-token") {
				token, err := cmd.Flags().GetString("auth-token")
				if err != nil {
					return fmt.Errorf("failed to get auth-token flag: %w", err)
				}
				app.cfg.Server.AuthToken = token
			}
			if err := app.cfg.Validate(); err != nil {
				return err
			}
			return runServe(cmd.Context(), app)
		},
	}
	cmd.Flags().Int("port", 8000, "port the server listens on")
	cmd.Flags().String("auth-token", "", "bearer token required by non-probe endpoints")
	return cmd
}

func newClassifyCmd(app *application) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "classify [file]",
		Short: "Print the language of a file or of stdin",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			detailed, err := cmd.Flags().GetBool("detailed")
			if err != nil {
				return fmt.Errorf("failed to get detailed flag: %w", err)
			}

			snippet, err := app.readInput(args)
			if err != nil {
				return err
			}

			classifier, err := app.newClassifier()
			if err != nil {
				return err
			}
			fsys, err := app.corpusFS()
			if err != nil {
				return err
			}
			if err := classifier.Train(cmd.Context(), fsys); err != nil {
				return err
			}

			if detailed {
				return writeScores(app.stdout, classifier.ClassifyDetailed(snippet), app.useColor)
			}
			_, err = fmt.Fprintln(app.stdout, classifier.Classify(snippet))
			return err
		},
	}
	cmd.Flags().Bool("detailed", false, "print every language's score")
	return cmd
}

// writeScores prints one aligned row per language, best first, with the
// winner highlighted.
func writeScores(w io.Writer, scores []langclass.Score, useColor bool) error {
	width := len("LANGUAGE")
	for _, s := range scores {
		width = max(width, runewidth.StringWidth(s.Language))
	}

	header := color.New(color.Bold)
	best := color.New(color.FgGreen, color.Bold)
	if useColor {
		header.EnableColor()
		best.EnableColor()
	} else {
		header.DisableColor()
		best.DisableColor()
	}

	if _, err := header.Fprintf(w, "%s  %11s  %12s\n", runewidth.FillRight("LANGUAGE", width), "PROBABILITY", "LOG SCORE"); err != nil {
		return err
	}
	for i, s := range scores {
		line := fmt.Sprintf("%s  %11.6f  %12.4f\n", runewidth.FillRight(s.Language, width), s.Probability, s.LogScore)
		var err error
		if i == 0 {
			_, err = best.Fprint(w, line)
		} else {
			_, err = io.WriteString(w, line)
		}
		if err != nil {
			return err
		}
	}
	return nil
}

func newTokenizeCmd(app *application) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "tokenize [file]",
		Short: "Print the features extracted from a file or from stdin",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			tokens, err := cmd.Flags().GetBool("tokens")
			if err != nil {
				return fmt.Errorf("failed to get tokens flag: %w", err)
			}

			src, err := app.readInput(args)
			if err != nil {
				return err
			}

			if tokens {
				for _, tok := range tokenize.Scan(src) {
					if _, err := fmt.Fprintf(app.stdout, "%6d  %-12s  %q\n", tok.Offset, tok.Kind, tok.Text); err != nil {
						return err
					}
				}
				return nil
			}

			for _, feature := range app.tokenizer().Features(src) {
				if _, err := fmt.Fprintln(app.stdout, feature); err != nil {
					return err
				}
			}
			return nil
		},
	}
	cmd.Flags().Bool("tokens", false, "print scanner tokens instead of features")
	return cmd
}

func newSnapshotCmd(app *application) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "snapshot",
		Short: "Save or inspect a trained model snapshot",
	}

	cmd.AddCommand(&cobra.Command{
		Use:   "save [path]",
		Short: "Train on the corpus and save the model",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			path, err := snapshotPath(args)
			if err != nil {
				return err
			}

			classifier, err := bayes.NewClassifier[string, string](bayes.WithCapacity(app.cfg.Classifier.Capacity))
			if err != nil {
				return err
			}
			fsys, err := app.corpusFS()
			if err != nil {
				return err
			}
			loader := corpus.NewLoader(corpus.WithLogger(app.logger))
			if err := loader.Train(cmd.Context(), fsys, app.tokenizer(), classifier); err != nil {
				return err
			}
			if err := classifier.SaveToFile(path); err != nil {
				return err
			}

			app.logger.Info("snapshot saved", "path", path, "observations", classifier.MemorySize())
			_, err = fmt.Fprintf(app.stdout, "saved %d languages to %s\n", len(classifier.Categories()), displayPath(path))
			return err
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "inspect [path]",
		Short: "Print a summary of a saved model",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(_ *cobra.Command, args []string) error {
			path, err := snapshotPath(args)
			if err != nil {
				return err
			}

			classifier, err := bayes.NewClassifier[string, string]()
			if err != nil {
				return err
			}
			if err := classifier.LoadFromFile(path); err != nil {
				return err
			}

			if _, err := fmt.Fprintf(app.stdout, "capacity: %d\nobservations: %d\nfeatures: %d\n",
				classifier.Capacity(), classifier.MemorySize(), len(classifier.Features())); err != nil {
				return err
			}
			for _, lang := range classifier.Categories() {
				distinct, occurrences := classifier.CategoryFeatureStats(lang)
				if _, err := fmt.Fprintf(app.stdout, "  %s  features=%d occurrences=%d\n", lang, distinct, occurrences); err != nil {
					return err
				}
			}
			return nil
		},
	})

	return cmd
}

// snapshotPath resolves the optional path argument. An empty result selects
// the default snapshot location.
func snapshotPath(args []string) (string, error) {
	if len(args) == 0 || args[0] == "" {
		return "", nil
	}
	return filepath.Abs(args[0])
}

func displayPath(path string) string {
	if path == "" {
		return "the default snapshot path"
	}
	return path
}
