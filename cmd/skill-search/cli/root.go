// Package cli implements the skill-search command line.
package cli

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/deepnoodle-ai/skillsearch"
	"github.com/deepnoodle-ai/skillsearch/agents"
	"github.com/deepnoodle-ai/skillsearch/config"
	"github.com/deepnoodle-ai/skillsearch/log"
	"github.com/deepnoodle-ai/skillsearch/remote"
	"github.com/fatih/color"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

const envPrefix = "SKILL_SEARCH"

// app holds the state shared by all commands. Everything but the flags is
// populated by setup before a command runs.
type app struct {
	version string
	v       *viper.Viper
	out     io.Writer
	errOut  io.Writer

	configPath string
	jsonOutput bool
	noColor    bool

	cfg      *config.Config
	logger   log.Logger
	registry *agents.Registry
	repo     *skillsearch.Repository
	searcher *skillsearch.Searcher
	remote   *remote.Client
}

// Execute runs the command line and returns the process exit code.
func Execute(version string) int {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cmd := NewRootCommand(version, os.Stdout, os.Stderr)
	if err := cmd.ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, errorStyle.Sprintf("Error: %v", err))
		return 1
	}
	return 0
}

// NewRootCommand builds the command tree writing to out and errOut.
func NewRootCommand(version string, out, errOut io.Writer) *cobra.Command {
	a := &app{
		version: version,
		v:       viper.New(),
		out:     out,
		errOut:  errOut,
	}

	var opts searchOptions
	cmd := &cobra.Command{
		Use:   "skill-search [query...]",
		Short: "Search AI agent skills installed locally and on skills.sh",
		Long: `skill-search finds the skills installed for AI coding agents on this
machine (Claude Code, Codex, Cursor and others) and in the public skills.sh
registry.

With a query it searches both; use the search command's --local and --remote
flags to narrow the sources.`,
		Example: `  skill-search react
  skill-search search --local log
  skill-search search --remote --limit 5 vercel
  skill-search list --agent claude-code`,
		Args:              cobra.ArbitraryArgs,
		Version:           version,
		SilenceUsage:      true,
		SilenceErrors:     true,
		PersistentPreRunE: a.setup,
		RunE: func(cmd *cobra.Command, args []string) error {
			if len(args) == 0 {
				return cmd.Help()
			}
			return a.runSearch(cmd.Context(), strings.Join(args, " "), opts)
		},
	}
	cmd.SetOut(out)
	cmd.SetErr(errOut)

	pflags := cmd.PersistentFlags()
	pflags.StringVar(&a.configPath, "config", "", "Config file path (default: ~/.skill-search/config.yaml)")
	pflags.String("log-level", "", "Log level (debug, info, warn, error, none)")
	pflags.BoolVar(&a.jsonOutput, "json", false, "Print results as JSON")
	pflags.BoolVar(&a.noColor, "no-color", false, "Disable colored output")
	addSearchFlags(cmd, &opts)

	_ = a.v.BindPFlag("log_level", pflags.Lookup("log-level"))
	_ = a.v.BindEnv("log_level", envPrefix+"_LOG_LEVEL")
	_ = a.v.BindEnv("remote.url", envPrefix+"_REMOTE_URL")
	_ = a.v.BindEnv("remote.limit", envPrefix+"_REMOTE_LIMIT")
	_ = a.v.BindEnv("config", envPrefix+"_CONFIG")

	cmd.AddCommand(
		newSearchCommand(a),
		newListCommand(a),
		newAgentsCommand(a),
		newOnboardCommand(a),
		newMCPCommand(a),
		newConfigCommand(a),
		newVersionCommand(a),
	)
	return cmd
}

// setup loads configuration and builds the shared services.
func (a *app) setup(cmd *cobra.Command, _ []string) error {
	if a.noColor || a.jsonOutput {
		color.NoColor = true
	}

	path := a.configPath
	if path == "" {
		path = a.v.GetString("config")
	}
	cfg, err := config.Load(path)
	if err != nil {
		return err
	}
	if a.v.IsSet("log_level") {
		cfg.LogLevel = a.v.GetString("log_level")
	}
	if a.v.IsSet("remote.url") {
		cfg.Remote.URL = a.v.GetString("remote.url")
	}
	if a.v.IsSet("remote.limit") {
		cfg.Remote.Limit = a.v.GetInt("remote.limit")
	}
	if err := cfg.Validate(); err != nil {
		return err
	}
	a.cfg = cfg

	level := log.LevelFromString(cfg.LogLevel)
	log.SetDefaultLevel(level)
	a.logger = log.NewWithOptions(log.Options{
		Writer:  a.errOut,
		Level:   level,
		NoColor: a.noColor,
	})
	cmd.SetContext(log.WithLogger(cmd.Context(), a.logger))

	registry, err := agents.DefaultRegistry()
	if err != nil {
		return err
	}
	if a.registry, err = registry.Restrict(cfg.Agents); err != nil {
		return fmt.Errorf("config agents: %w", err)
	}

	a.repo = skillsearch.NewRepository(skillsearch.RepositoryOptions{
		Agents:   a.registry,
		MaxDepth: cfg.MaxDepth,
		Exclude:  cfg.Exclude,
		Logger:   a.logger,
	})
	a.searcher = skillsearch.NewSearcher(a.repo)
	a.remote = remote.NewClient(
		remote.WithBaseURL(cfg.Remote.URL),
		remote.WithTimeout(cfg.RemoteTimeout()),
		remote.WithUserAgent("skill-search/"+a.version),
	)
	return nil
}

// agentNames resolves a glob over agent ids to the display names stored on
// skills. An empty pattern returns nil, meaning no filter.
func (a *app) agentNames(pattern string) (map[string]bool, error) {
	if pattern == "" {
		return nil, nil
	}
	ids, err := a.registry.Match(pattern)
	if err != nil {
		return nil, err
	}
	names := make(map[string]bool, len(ids))
	for _, id := range ids {
		cfg, err := a.registry.Get(id)
		if err != nil {
			return nil, err
		}
		names[cfg.DisplayName] = true
	}
	return names, nil
}

func newVersionCommand(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print the version",
		Args:  cobra.NoArgs,
		// Printing the version needs no configuration.
		PersistentPreRunE: func(*cobra.Command, []string) error { return nil },
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Fprintln(a.out, a.version)
		},
	}
}
