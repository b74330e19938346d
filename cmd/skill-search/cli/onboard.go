package cli

import (
	"errors"
	"fmt"

	"github.com/deepnoodle-ai/skillsearch/onboard"
	"github.com/spf13/cobra"
)

func newOnboardCommand(a *app) *cobra.Command {
	var quiet bool
	cmd := &cobra.Command{
		Use:   "onboard",
		Short: "Teach installed agents how to use skill-search",
		Long: `Append skill-search usage instructions to the memory file (CLAUDE.md or
AGENTS.md) of every installed agent. Files that already carry the
instructions are left alone.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			results, err := onboard.Run(cmd.Context(), a.registry)
			if errors.Is(err, onboard.ErrNoAgents) {
				if a.jsonOutput {
					_ = writeJSON(a.out, map[string]any{"success": false, "error": err.Error()})
				} else {
					w := newRenderer(a.out)
					w.line(warningStyle.Sprint("!") + " No AI agents detected")
					w.blank()
					w.line("Please install an AI agent (Claude Code, Cursor, Codex, etc.) first.")
				}
				return err
			}
			if err != nil {
				return err
			}
			if a.jsonOutput {
				return writeJSON(a.out, map[string]any{"success": true, "results": results})
			}
			if !quiet {
				renderOnboard(newRenderer(a.out), results)
			}
			if n := onboard.Count(results, onboard.StatusError); n > 0 {
				return fmt.Errorf("failed to onboard %s", plural(n, "agent"))
			}
			return nil
		},
	}
	cmd.Flags().BoolVarP(&quiet, "quiet", "q", false, "Print nothing on success")
	return cmd
}

func renderOnboard(w *renderer, results []onboard.Result) {
	groups := []struct {
		status onboard.Status
		title  string
		ok     bool
	}{
		{onboard.StatusAdded, "Added skill-search instructions to", true},
		{onboard.StatusAlreadyOnboarded, "Already onboarded to", true},
		{onboard.StatusError, "Failed to onboard", false},
	}
	for _, g := range groups {
		n := onboard.Count(results, g.status)
		if n == 0 {
			continue
		}
		mark := successStyle.Sprint(checkmark)
		if !g.ok {
			mark = errorStyle.Sprint(xmark)
		}
		w.line(fmt.Sprintf("%s %s %s:", mark, g.title, plural(n, "agent")))
		for _, r := range results {
			if r.Status != g.status {
				continue
			}
			detail := shortenHome(r.File)
			if r.Status == onboard.StatusError {
				detail = r.Error
			}
			w.line(mutedStyle.Sprintf("  %s: %s", r.Agent, detail))
		}
		w.blank()
	}
	if onboard.Count(results, onboard.StatusError) < len(results) {
		w.line(mutedStyle.Sprint("Your agents now know how to use skill-search!"))
	}
}
