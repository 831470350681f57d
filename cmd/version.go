package cmd

import (
	"runtime/debug"

	"github.com/spf13/cobra"
)

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Show the version information",
		Long:  "Displays the varscope build version and the Go version it was built with.",
		Run: func(cmd *cobra.Command, _ []string) {
			version := "unknown"
			goVersion := "unknown"

			if info, ok := debug.ReadBuildInfo(); ok {
				goVersion = info.GoVersion

				if info.Main.Version != "" {
					version = info.Main.Version
				}
			}

			cmd.Printf("varscope %s (go %s)\n", version, goVersion)
		},
	}
}

// versionCmd represents the version command.
var versionCmd = newVersionCmd()

func init() {
	rootCmd.AddCommand(versionCmd)
}
