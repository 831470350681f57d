package cmd

import (
	"context"

	"github.com/spf13/cobra"
	"varscope.dev/pkg/varscope/internal/adapter"
)

var interactiveFlag bool

// viewCmd represents the view command.
var viewCmd = newViewCmd()

func newViewCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "view [tree]",
		Short: "View a variable tree",
		Long:  "View the flattened leaves of a variable tree file as a table, or browse them interactively.",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := context.Background()

			cols, err := treeStore.Load(ctx, treeArg(args))
			if err != nil {
				return err
			}

			if interactiveFlag {
				return adapter.NewTUI(cmd.OutOrStdout()).DisplayTree(cols)
			}

			return newUI(cmd).DisplayTree(ctx, cols, nil)
		},
	}

	cmd.Flags().BoolVarP(&interactiveFlag, interactiveFlagName, "i", false, "browse the tree in an interactive pager")

	return cmd
}

func init() {
	rootCmd.AddCommand(viewCmd)
}
