package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/yega/scaffold/internal/brief"
	"github.com/yega/scaffold/internal/endpoint"
)

func (a *app) examplesCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "examples [name]",
		Short: "List the built-in endpoint configurations or print one as YAML",
		Long: `Without arguments, list the built-in endpoint configurations. With a name,
print that configuration as YAML; the output is a starting point for
yega endpoint --file.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if len(args) == 0 {
				presets := endpoint.Presets()
				for _, name := range endpoint.PresetNames() {
					fmt.Fprintf(a.out, "%-12s %s\n", name, presets[name].Description)
				}
				return nil
			}
			cfg, err := endpoint.Preset(args[0])
			if err != nil {
				return err
			}
			data, err := endpoint.Marshal(cfg)
			if err != nil {
				return err
			}
			_, err = a.out.Write(data)
			return err
		},
	}
}

func (a *app) briefCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "brief",
		Short: "Manage the backend context document sent with every prompt",
	}
	cmd.AddCommand(&cobra.Command{
		Use:   "init",
		Short: "Write a starter " + brief.FileName + " in the backend directory",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			created, err := brief.Init(a.fs, a.backendDir())
			if err != nil {
				return err
			}
			if created {
				fmt.Fprintf(a.out, "created %s\n", brief.FileName)
			} else {
				fmt.Fprintf(a.out, "%s already exists\n", brief.FileName)
			}
			return nil
		},
	})
	return cmd
}
