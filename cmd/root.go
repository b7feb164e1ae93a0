package cmd

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/termenv"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"
	"golang.org/x/term"

	"github.com/takaishi/grepapp/config"
	"github.com/takaishi/grepapp/logger"
	"github.com/takaishi/grepapp/render"
	"github.com/takaishi/grepapp/search"
	"github.com/takaishi/grepapp/tui"
)

var (
	// Build info - set via -ldflags at build time
	Version   = "dev"
	CommitID  = "unknown"
	BuildDate = "unknown"
)

const usageTips = `
Tips:
  Search for actual code patterns, not keywords or questions.
  Good: 'useState(', 'import React from', 'async function'
  Bad:  'react tutorial', 'best practices', 'how to use'

  Use --use-regexp with (?s) prefix to match across multiple lines.
`

// rootOptions holds flag values and the collaborators of one invocation
type rootOptions struct {
	configFile string
	req        search.Request
	jsonOut    bool
	here       bool
	tuiMode    bool
	noColor    bool

	v *viper.Viper

	newSearcher func(cfg *config.Config, log *zap.Logger) tui.Searcher
	isTerminal  func() bool
	getwd       func() (string, error)
}

func defaultOptions() *rootOptions {
	return &rootOptions{
		v: config.NewViper(),
		newSearcher: func(cfg *config.Config, log *zap.Logger) tui.Searcher {
			return search.NewClient(cfg.Server.Endpoint, cfg.Timeout(), log)
		},
		isTerminal: func() bool {
			return term.IsTerminal(int(os.Stdin.Fd())) && term.IsTerminal(int(os.Stdout.Fd()))
		},
		getwd: os.Getwd,
	}
}

// NewRootCmd builds the command tree
func NewRootCmd() *cobra.Command {
	return newRootCmd(defaultOptions())
}

func newRootCmd(o *rootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "grepapp <query>",
		Short: "Search real-world code examples from over a million public GitHub repositories",
		Long: `grepapp searches public GitHub code through grep.app and prints the
matching snippets with syntax highlighting and the matches marked.`,
		Version:       Version,
		Args:          cobra.ArbitraryArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE:          o.run,
	}
	cmd.SetVersionTemplate("grepapp {{.Version}}\n")

	pf := cmd.PersistentFlags()
	pf.StringVarP(&o.configFile, "config", "c", "", "config file path")
	pf.String("endpoint", "", "search service URL")
	pf.Int("timeout", 0, "request timeout in seconds (0 disables)")
	_ = o.v.BindPFlag("server.endpoint", pf.Lookup("endpoint"))
	_ = o.v.BindPFlag("server.timeout", pf.Lookup("timeout"))

	f := cmd.Flags()
	f.BoolVar(&o.req.MatchCase, "match-case", false, "case sensitive search")
	f.BoolVar(&o.req.MatchWholeWords, "match-whole-words", false, "match whole words only")
	f.BoolVar(&o.req.UseRegexp, "use-regexp", false, "interpret query as a regular expression")
	f.StringVar(&o.req.Repo, "repo", "", "filter by repository (e.g., 'facebook/react')")
	f.StringVar(&o.req.Path, "path", "", "filter by file path (e.g., 'src/components/Button.tsx')")
	f.StringArrayVar(&o.req.Languages, "language", nil, "filter by programming language (repeatable)")
	f.BoolVar(&o.jsonOut, "json", false, "print parsed results as JSON")
	f.BoolVar(&o.here, "here", false, "restrict to the GitHub repository of the current git checkout")
	f.BoolVar(&o.tuiMode, "tui", false, "browse results interactively")
	f.BoolVar(&o.noColor, "no-color", false, "disable colored output")
	cmd.MarkFlagsMutuallyExclusive("here", "repo")
	cmd.MarkFlagsMutuallyExclusive("json", "tui")

	cmd.SetUsageTemplate(cmd.UsageTemplate() + "{{if not .HasParent}}" + usageTips + "{{end}}")

	cmd.AddCommand(newConfigCmd(o))
	cmd.AddCommand(newVersionCmd())
	return cmd
}

// Execute runs the root command
func Execute(ctx context.Context) error {
	search.ClientVersion = Version
	return NewRootCmd().ExecuteContext(ctx)
}

// loadConfig reads the configuration and applies the output flags
func (o *rootOptions) loadConfig() (*config.Config, error) {
	cfg, err := config.Load(o.v, o.configFile)
	if err != nil {
		return nil, err
	}
	if o.noColor {
		cfg.Output.Color = config.ColorNever
	}
	if o.jsonOut {
		cfg.Output.Format = config.FormatJSON
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (o *rootOptions) run(cmd *cobra.Command, args []string) error {
	o.req.Query = strings.Join(args, " ")
	if o.req.Query == "" && !o.tuiMode {
		return errors.New("a search query is required (see --help)")
	}

	cfg, err := o.loadConfig()
	if err != nil {
		return err
	}

	if err := logger.InitGlobal(&cfg.Logging); err != nil {
		return fmt.Errorf("init logger: %w", err)
	}
	defer logger.Sync()
	log := logger.L().Named("cli")

	if o.here {
		repo, err := o.currentRepository()
		if err != nil {
			return err
		}
		o.req.Repo = repo
		log.Debug("restricting search to current repository", zap.String("repo", repo))
	}

	out := cmd.OutOrStdout()

	var printer *render.Printer
	if o.tuiMode || cfg.Output.Format != config.FormatJSON {
		printer, err = newPrinter(cfg, out)
		if err != nil {
			return err
		}
	}

	searcher := o.newSearcher(cfg, log.Logger)

	if o.tuiMode {
		if !o.isTerminal() {
			return errors.New("--tui requires an interactive terminal")
		}
		return tui.New(searcher, printer, o.req, log.Named("tui").Logger).Start()
	}

	results, err := searcher.Find(cmd.Context(), o.req)
	if err != nil {
		if search.IsTimeout(err) {
			return fmt.Errorf("search timed out after %s: %w", cfg.Timeout(), err)
		}
		return err
	}
	log.Info("search finished", zap.String("query", o.req.Query), zap.Int("results", len(results)))

	if cfg.Output.Format == config.FormatJSON {
		enc := json.NewEncoder(out)
		enc.SetIndent("", "  ")
		return enc.Encode(results)
	}
	return printer.Fprint(out, results, o.req.Query, o.req.MatchCase)
}

func (o *rootOptions) currentRepository() (string, error) {
	wd, err := o.getwd()
	if err != nil {
		return "", fmt.Errorf("--here: %w", err)
	}
	repo, err := search.CurrentRepository(wd)
	if err != nil {
		return "", fmt.Errorf("--here: %w", err)
	}
	return repo, nil
}

// colorProfile maps output.color to a termenv profile for out
func colorProfile(mode string, out io.Writer) termenv.Profile {
	switch mode {
	case config.ColorNever:
		return termenv.Ascii
	case config.ColorAlways:
		return termenv.TrueColor
	default:
		return termenv.NewOutput(out).EnvColorProfile()
	}
}

func newPrinter(cfg *config.Config, out io.Writer) (*render.Printer, error) {
	mode, err := render.ParseMode(cfg.Theme.Mode)
	if err != nil {
		return nil, err
	}
	profile := colorProfile(cfg.Output.Color, out)

	// Only ask the terminal when colours will actually be written
	var detect func() bool
	if profile != termenv.Ascii {
		detect = lipgloss.HasDarkBackground
	}
	dark := mode.IsDark(detect)

	name := cfg.Theme.Light
	if dark {
		name = cfg.Theme.Dark
	}
	theme, err := render.LoadTheme(name, dark)
	if err != nil {
		return nil, err
	}
	return render.NewPrinter(theme, profile), nil
}
