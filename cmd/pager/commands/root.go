package commands

import (
	"fmt"

	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "pager",
	Short: "pager - paginated message widgets for Slack and the terminal",
	Long: `pager renders paged, navigable content as interactive messages.

Commands:
  pager demo             Browse files in an interactive terminal pager
  pager slack            Serve paginators over Slack (/pager)
  pager config           Manage configuration`,
}

func init() {
	rootCmd.AddCommand(versionCmd)
}

func Execute(ver string) error {
	version = ver
	return rootCmd.Execute()
}

var version string

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print version information",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Printf("pager %s\n", version)
	},
}
