package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/ShayCichocki/coverdesk/internal/version"
)

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the version number",
	// No config needed.
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error { return nil },
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Printf("coverdesk version %s\n", version.String())
	},
}
