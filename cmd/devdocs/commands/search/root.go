package search

import "github.com/spf13/cobra"

func Apply(rootCmd *cobra.Command) {
	rootCmd.AddCommand(buildCmd)
}
