package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
)

// Version is set at build time via -ldflags.
var Version = "dev"

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the cryptobot version",
	Run: func(*cobra.Command, []string) {
		fmt.Println("cryptobot", Version)
	},
}

func init() {
	rootCmd.AddCommand(versionCmd)
}
