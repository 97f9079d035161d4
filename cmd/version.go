package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
)

// versionCmd prints detailed build information.
var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print version, commit and build date",
	Run: func(_ *cobra.Command, _ []string) {
		fmt.Printf("feedwatch %s\n", version)
		fmt.Printf("commit: %s\n", commit)
		fmt.Printf("built: %s\n", date)
	},
}
