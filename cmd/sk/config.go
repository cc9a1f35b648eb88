package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"
)

var configCmd = &cobra.Command{
	Use:     "config",
	GroupID: "setup",
	Short:   "Show the resolved project configuration",
	Long: `Print the configuration in effect for this project: defaults, overridden
by .skein/config.yaml, overridden by SKEIN_* environment variables.`,
	Args: cobra.NoArgs,
	RunE: func(_ *cobra.Command, _ []string) error {
		var b strings.Builder
		fmt.Fprintf(&b, "dir:          %s\n", cfg.Dir)
		fmt.Fprintf(&b, "active:       %s\n", cfg.Active)
		fmt.Fprintf(&b, "archive:      %s\n", cfg.Archive)
		fmt.Fprintf(&b, "limit:        %d\n", cfg.Limit)
		if cfg.Actor != "" {
			fmt.Fprintf(&b, "actor:        %s\n", cfg.Actor)
		}
		fmt.Fprintf(&b, "force_delete: %t\n", cfg.ForceDelete)
		return output(cfg, b.String())
	},
}

func init() {
	rootCmd.AddCommand(configCmd)
}
