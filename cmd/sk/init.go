package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/steveyegge/skein/internal/configfile"
)

var initCmd = &cobra.Command{
	Use:     "init",
	GroupID: "setup",
	Short:   "Create a .skein project in the current directory",
	Args:    cobra.NoArgs,
	RunE: func(_ *cobra.Command, _ []string) error {
		cfg, err := configfile.Init(workDir)
		if err != nil {
			return err
		}
		return output(cfg, fmt.Sprintf("Initialized skein project at %s\n", cfg.Dir))
	},
}

func init() {
	rootCmd.AddCommand(initCmd)
}
