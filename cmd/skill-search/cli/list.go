package cli

import (
	"github.com/spf13/cobra"
)

func newListCommand(a *app) *cobra.Command {
	var agent string
	cmd := &cobra.Command{
		Use:   "list",
		Short: "List all locally installed skills",
		Long:  "List every skill installed for the detected agents, internal ones included.",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			names, err := a.agentNames(agent)
			if err != nil {
				return err
			}
			skills, err := a.repo.Scan(cmd.Context())
			if err != nil {
				return err
			}
			skills = filterAgents(skills, names)
			if a.jsonOutput {
				return writeJSON(a.out, skills)
			}
			newRenderer(a.out).localSkills(skills, true)
			return nil
		},
	}
	cmd.Flags().StringVar(&agent, "agent", "", "Only list skills of agents matching this pattern, e.g. claude-code")
	return cmd
}
