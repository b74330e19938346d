package cli

import (
	"context"
	"strings"

	"github.com/deepnoodle-ai/skillsearch"
	"github.com/deepnoodle-ai/skillsearch/log"
	"github.com/deepnoodle-ai/skillsearch/remote"
	"github.com/deepnoodle-ai/skillsearch/skill"
	"github.com/spf13/cobra"
)

type searchOptions struct {
	local  bool
	remote bool
	limit  int
	agent  string
}

func addSearchFlags(cmd *cobra.Command, opts *searchOptions) {
	flags := cmd.Flags()
	flags.BoolVar(&opts.local, "local", false, "Search only locally installed skills")
	flags.BoolVar(&opts.remote, "remote", false, "Search only the skills.sh registry")
	flags.IntVar(&opts.limit, "limit", 0, "Maximum number of remote results (default from config, 10)")
	flags.StringVar(&opts.agent, "agent", "", "Only show local skills of agents matching this pattern, e.g. claude*")
}

// sources returns which sides to search. Passing neither flag, or both,
// searches both.
func (o searchOptions) sources() (local, remote bool) {
	if o.local == o.remote {
		return true, true
	}
	return o.local, o.remote
}

func newSearchCommand(a *app) *cobra.Command {
	var opts searchOptions
	cmd := &cobra.Command{
		Use:   "search [query...]",
		Short: "Search local and remote skills",
		Long: `Search skill names, descriptions and tags. Local matches tolerate typos
and prefixes and are ranked best first; internal skills are hidden. An empty
query lists every public local skill.`,
		Args: cobra.ArbitraryArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.runSearch(cmd.Context(), strings.Join(args, " "), opts)
		},
	}
	addSearchFlags(cmd, &opts)
	return cmd
}

func (a *app) runSearch(ctx context.Context, query string, opts searchOptions) error {
	searchLocal, searchRemote := opts.sources()
	result := skillsearch.Result{
		Local:  []skill.LocalSkill{},
		Remote: []remote.Skill{},
	}

	if searchLocal {
		names, err := a.agentNames(opts.agent)
		if err != nil {
			return err
		}
		skills, err := a.searcher.Search(ctx, query)
		if err != nil {
			return err
		}
		result.Local = filterAgents(skills, names)
	}

	if searchRemote && strings.TrimSpace(query) != "" {
		limit := opts.limit
		if limit <= 0 {
			limit = a.cfg.Remote.Limit
		}
		skills, err := a.remote.Search(ctx, query, limit)
		if err != nil {
			log.Ctx(ctx).Warn("remote search failed", "error", err)
		} else {
			result.Remote = skills
		}
	}

	if a.jsonOutput {
		return writeJSON(a.out, result)
	}
	w := newRenderer(a.out)
	if searchLocal && searchRemote && result.Empty() {
		w.line(mutedStyle.Sprintf("No skills found for %q", query))
		return nil
	}
	if searchLocal {
		w.localSkills(result.Local, false)
	}
	if searchRemote {
		if searchLocal {
			w.blank()
		}
		w.remoteSkills(result.Remote)
	}
	return nil
}

func filterAgents(skills []skill.LocalSkill, names map[string]bool) []skill.LocalSkill {
	if names == nil {
		return skills
	}
	out := []skill.LocalSkill{}
	for _, s := range skills {
		if names[s.Agent] {
			out = append(out, s)
		}
	}
	return out
}
