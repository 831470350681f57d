package cmd

import (
	"context"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"varscope.dev/pkg/varscope/internal/controller"
	"varscope.dev/pkg/varscope/internal/domain"
)

var filterExprs []string

// partitionCmd represents the partition command.
var partitionCmd = newPartitionCmd()

func newPartitionCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "partition [tree]",
		Short: "Partition a tree's collections by filters",
		Long: `Split a variable tree's collections into groups, one per --filter
expression. Each collection goes to the first filter that admits it;
collections no filter admits are dropped.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := context.Background()

			cols, err := treeStore.Load(ctx, treeArg(args))
			if err != nil {
				return err
			}

			// Read the flag variable, not viper: viper CSV-splits bound
			// string-array values, which would break "a,b" expressions.
			exprs := filterExprs
			if len(exprs) == 0 {
				exprs = []string{"all"}
			}

			filters := make([]domain.Filter, 0, len(exprs))
			for _, expr := range exprs {
				filters = append(filters, parseFilterExpr(expr))
			}

			groups := domain.GroupCollections(cols, filters)

			display := make([]controller.PartitionGroup, 0, len(groups))
			for i, group := range groups {
				display = append(display, controller.PartitionGroup{Expr: exprs[i], Collections: group})
			}

			return newUI(cmd).DisplayPartition(ctx, display)
		},
	}

	cmd.Flags().StringArrayVarP(&filterExprs, filterFlagName, "f", viper.GetStringSlice(filterConfigKey), "filter expression per group: all, none, a,b or not:a,b (can be repeated)")
	bindFlagToConfig(cmd.Flags().Lookup(filterFlagName), filterConfigKey)

	return cmd
}

// parseFilterExpr converts a CLI filter expression to a Filter. Unknown
// syntax falls through to a plain name list.
func parseFilterExpr(expr string) domain.Filter {
	expr = strings.TrimSpace(expr)

	switch expr {
	case "", "all":
		return domain.AllowAll
	case "none":
		return domain.DenyAll
	}

	if rest, ok := strings.CutPrefix(expr, "not:"); ok {
		return domain.DenyList(parseFilterExpr(rest))
	}

	return domain.Names(splitNames(expr)...)
}

func splitNames(expr string) []string {
	parts := strings.Split(expr, ",")

	names := make([]string, 0, len(parts))
	for _, part := range parts {
		if name := strings.TrimSpace(part); name != "" {
			names = append(names, name)
		}
	}

	return names
}

func init() {
	rootCmd.AddCommand(partitionCmd)
}
