package cli

import (
	"github.com/deepnoodle-ai/skillsearch/mcp"
	"github.com/spf13/cobra"
)

func newMCPCommand(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "mcp",
		Short: "Serve skill search as MCP tools over stdio",
		Long: `Run a Model Context Protocol server on stdin and stdout exposing the
search_local_skills, list_local_skills, search_remote_skills, refresh_skills
and cache_status tools. Logs go to stderr.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			a.logger.Info("starting mcp server", "version", a.version)
			return mcp.ServeStdio(mcp.NewServer(a.searcher, a.repo, a.remote, a.version, a.logger), a.logger)
		},
	}
}
