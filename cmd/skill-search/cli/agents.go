package cli

import (
	"fmt"

	"github.com/spf13/cobra"
)

type agentStatus struct {
	ID              string `json:"id"`
	Name            string `json:"name"`
	Installed       bool   `json:"installed"`
	SkillsDir       string `json:"skills_dir"`
	GlobalSkillsDir string `json:"global_skills_dir,omitempty"`
}

func newAgentsCommand(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "agents",
		Short: "Show the supported agents and which are installed",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			installed := make(map[string]bool)
			for _, id := range a.registry.DetectInstalled(cmd.Context()) {
				installed[id] = true
			}
			var statuses []agentStatus
			for _, c := range a.registry.All() {
				statuses = append(statuses, agentStatus{
					ID:              c.Name,
					Name:            c.DisplayName,
					Installed:       installed[c.Name],
					SkillsDir:       c.SkillsDir,
					GlobalSkillsDir: c.GlobalSkillsDir,
				})
			}
			if a.jsonOutput {
				return writeJSON(a.out, statuses)
			}

			w := newRenderer(a.out)
			w.header(fmt.Sprintf("Agents (%d installed)", len(installed)))
			for _, s := range statuses {
				mark := mutedStyle.Sprint(dot)
				if s.Installed {
					mark = successStyle.Sprint(checkmark)
				}
				w.line(fmt.Sprintf("  %s %s %s", mark, boldStyle.Sprint(padRight(s.ID, 16)), s.Name))
				if s.Installed && s.GlobalSkillsDir != "" {
					w.line("      " + mutedStyle.Sprint(shortenHome(s.GlobalSkillsDir)))
				}
			}
			return nil
		},
	}
}
