package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/talentflow/talentflow/internal/utils"
)

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the current version",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Fprintln(cmd.OutOrStdout(), "talentflow", version)
		if c := utils.SafeEnv("TALENTFLOW_COMMIT", ""); c != "" {
			fmt.Fprintln(cmd.OutOrStdout(), "commit", c)
		}
	},
}
