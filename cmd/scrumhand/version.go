package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/scrumhand/scrumhand"
)

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the version number of scrumhand",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Printf("scrumhand version %s\n", strings.TrimSpace(scrumhand.Version))
	},
}

func init() {
	rootCmd.AddCommand(versionCmd)
}
