// Package cmd provides the root command and CLI setup for varscope.
package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
	"varscope.dev/pkg/varscope/internal/adapter"
	"varscope.dev/pkg/varscope/internal/controller"
)

var treeStore adapter.TreeStore

// treeFileFlag is a root-level flag naming the variable tree file shared by
// commands that read or write trees.
var treeFileFlag string

// verboseFlag raises the log level to debug.
var verboseFlag bool

// newUI builds the display for a command invocation. Tests swap outputs by
// setting the command's out stream; interactive commands build their own
// TUI instead.
var newUI = func(cmd *cobra.Command) controller.UI {
	return controller.NewSimpleUI(cmd)
}

func init() {
	configureRootFlags(rootCmd)

	treeStore = adapter.NewYAMLTreeStore()
}

const rootLongDescription = `Varscope manages hierarchical variable trees: named collections of nested
values scoped by path. It can view trees, merge sharded trees into one,
and partition a tree's collections by filter expressions.

Filter expressions:
  - all            every collection
  - none           no collection
  - a,b            exactly the named collections
  - not:a,b        everything except the named collections`

// rootCmd represents the base command when called without any subcommands.
var rootCmd = baseRootCmd()

func baseRootCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "varscope",
		Short: "Scoped variable tree tool",
		Long:  rootLongDescription,
		PersistentPreRun: func(_ *cobra.Command, _ []string) {
			configureLogger(viper.GetString(logFilenameKey), verboseFlag || viper.GetBool(logVerboseKey))
		},
		RunE: func(cmd *cobra.Command, _ []string) error {
			return cmd.Help()
		},
	}
}

func configureRootFlags(cmd *cobra.Command) {
	cmd.PersistentFlags().
		StringVarP(
			&treeFileFlag, treeFlagName, "t",
			viper.GetString(treeFlagName),
			"variable tree file read by view/partition and written by merge",
		)
	bindFlagToConfig(cmd.PersistentFlags().Lookup(treeFlagName), treeFlagName)

	cmd.PersistentFlags().BoolVarP(&verboseFlag, verboseFlagName, "v", viper.GetBool(logVerboseKey), "enable debug logging")
	bindFlagToConfig(cmd.PersistentFlags().Lookup(verboseFlagName), logVerboseKey)
}

// bindFlagToConfig wires a Cobra flag to a Viper key so config/env values feed the flag.
func bindFlagToConfig(flag *pflag.Flag, key string) {
	if flag == nil {
		cobra.CheckErr(fmt.Errorf("flag for config key %q not found", key))
		return
	}

	cobra.CheckErr(viper.BindPFlag(key, flag))
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the rootCmd.
func Execute() {
	err := rootCmd.Execute()
	if err != nil {
		os.Exit(1)
	}
}

// treeArg resolves the tree file for a command: the positional argument if
// given, otherwise the root-level flag.
func treeArg(args []string) string {
	if len(args) > 0 {
		return args[0]
	}

	return viper.GetString(treeFlagName)
}
