package cmd

import (
	"fmt"

	"github.com/MeKo-Tech/spreadscan/internal/config"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"
)

func newConfigCommand(a *app) *cobra.Command {
	c := &cobra.Command{
		Use:   "config",
		Short: "Inspect or create configuration files",
	}

	initCmd := &cobra.Command{
		Use:   "init [file]",
		Short: "Write a configuration file with the default settings",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			path := config.ConfigFileName + ".yaml"
			if len(args) > 0 {
				path = args[0]
			}
			force, _ := cmd.Flags().GetBool("force")
			if err := config.GenerateDefaultConfigFile(path, force); err != nil {
				return err
			}
			_, _ = fmt.Fprintf(cmd.OutOrStdout(), "Wrote %s\n", path)
			return nil
		},
	}
	initCmd.Flags().Bool("force", false, "overwrite an existing file")

	showCmd := &cobra.Command{
		Use:   "show",
		Short: "Print the effective configuration with secrets masked",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			data, err := yaml.Marshal(a.cfg.Redacted())
			if err != nil {
				return fmt.Errorf("encode configuration: %w", err)
			}
			w := cmd.OutOrStdout()
			if used := a.loader.GetConfigFileUsed(); used != "" {
				_, _ = fmt.Fprintf(w, "# file: %s\n", used)
			}
			_, err = w.Write(data)
			return err
		},
	}

	c.AddCommand(initCmd, showCmd)
	return c
}
