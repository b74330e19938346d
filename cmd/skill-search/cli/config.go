package cli

import (
	"github.com/deepnoodle-ai/skillsearch/config"
	"github.com/spf13/cobra"
)

func newConfigCommand(a *app) *cobra.Command {
	var save bool
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Print or save the effective configuration",
		Long: `Print the configuration after applying the config file, environment variables and flags.

With --save the effective configuration is written to the config file instead,
so that flag and environment overrides persist.`,
		Example: `  skill-search config
  skill-search config --log-level info --save`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if save {
				path := a.configPath
				if path == "" {
					p, err := config.DefaultPath()
					if err != nil {
						return err
					}
					path = p
				}
				if err := a.cfg.Save(path); err != nil {
					return err
				}
				if !a.jsonOutput {
					newRenderer(a.out).line(successStyle.Sprint(checkmark) + " Saved configuration to " + shortenHome(path))
				}
				return nil
			}
			if a.jsonOutput {
				return writeJSON(a.out, a.cfg)
			}
			return a.cfg.Write(a.out)
		},
	}
	cmd.Flags().BoolVar(&save, "save", false, "Write the effective configuration to the config file")
	return cmd
}
