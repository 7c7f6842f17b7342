package cmd

import (
	"fmt"

	"github.com/MeKo-Tech/spreadscan/internal/version"
	"github.com/spf13/cobra"
)

func newVersionCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print build information",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			v, commit, date := version.Info()
			w := cmd.OutOrStdout()
			_, _ = fmt.Fprintf(w, "spreadscan version %s\n", v)
			_, _ = fmt.Fprintf(w, "Commit: %s\n", commit)
			_, _ = fmt.Fprintf(w, "Date: %s\n", date)
			return nil
		},
	}
}
