package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/yega/scaffold/internal/config"
)

func (a *app) configCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Manage LLM provider settings",
		Long: `Manage the provider settings stored in ~/.config/yega/config.yaml.

Settings resolve in this order, highest first: command-line flags, the
backend brief frontmatter, YEGA_* environment variables, the config file.
Without an api-key the provider's own variable is used (ANTHROPIC_API_KEY,
OPENAI_API_KEY, BLACKBOX_API_KEY).`,
	}
	cmd.AddCommand(
		&cobra.Command{
			Use:       "set <key> <value>",
			Short:     "Set a config value",
			Args:      cobra.ExactArgs(2),
			ValidArgs: config.ValidKeys,
			RunE: func(cmd *cobra.Command, args []string) error {
				s, err := a.store()
				if err != nil {
					return err
				}
				if err := s.Set(args[0], args[1]); err != nil {
					return err
				}
				fmt.Fprintf(a.out, "%s updated in %s\n", args[0], s.Path)
				return nil
			},
		},
		&cobra.Command{
			Use:   "list",
			Short: "Show the stored config",
			Args:  cobra.NoArgs,
			RunE: func(cmd *cobra.Command, args []string) error {
				s, err := a.store()
				if err != nil {
					return err
				}
				values, err := s.List()
				if err != nil {
					return err
				}
				for _, k := range config.ValidKeys {
					v := values[k]
					if v == "" {
						v = "(not set)"
					}
					fmt.Fprintf(a.out, "%-9s %s\n", k, v)
				}
				return nil
			},
		},
		&cobra.Command{
			Use:   "reset",
			Short: "Remove the config file",
			Args:  cobra.NoArgs,
			RunE: func(cmd *cobra.Command, args []string) error {
				s, err := a.store()
				if err != nil {
					return err
				}
				if err := s.Reset(); err != nil {
					return err
				}
				fmt.Fprintln(a.out, "config reset")
				return nil
			},
		},
	)
	return cmd
}
