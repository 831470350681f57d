package cmd

import (
	"context"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"golang.org/x/sync/errgroup"
	m "varscope.dev/pkg/varscope/internal/model"
)

var mergeParallelFlag int

// mergeCmd represents the merge command.
var mergeCmd = newMergeCmd()

func newMergeCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "merge [trees...]",
		Short: "Merge variable trees into one",
		Long: `Merge variable tree files into a single tree, later files overriding
earlier ones, and write the result to the --tree file.`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := context.Background()

			inputs, err := loadTrees(ctx, args, viper.GetInt(mergeParallelConfigKey))
			if err != nil {
				return err
			}

			merged := m.Collections{}
			for _, cols := range inputs {
				m.MergeCollections(merged, cols)
			}

			outPath := viper.GetString(treeFlagName)
			if err := treeStore.Save(ctx, outPath, merged); err != nil {
				return err
			}

			newUI(cmd).DisplayMergeInfo(ctx, len(inputs), m.CountLeaves(merged))

			return nil
		},
	}

	cmd.Flags().IntVarP(&mergeParallelFlag, mergeParallelFlagName, "p", viper.GetInt(mergeParallelConfigKey), "number of tree files to load in parallel")
	bindFlagToConfig(cmd.Flags().Lookup(mergeParallelFlagName), mergeParallelConfigKey)

	return cmd
}

// loadTrees reads every input concurrently, preserving argument order so
// merge precedence is stable.
func loadTrees(ctx context.Context, paths []string, parallel int) ([]m.Collections, error) {
	if parallel < 1 {
		parallel = 1
	}

	inputs := make([]m.Collections, len(paths))

	group, groupCtx := errgroup.WithContext(ctx)
	group.SetLimit(parallel)

	for i, path := range paths {
		i, path := i, path
		group.Go(func() error {
			cols, err := treeStore.Load(groupCtx, path)
			if err != nil {
				return err
			}

			inputs[i] = cols

			return nil
		})
	}

	if err := group.Wait(); err != nil {
		return nil, err
	}

	return inputs, nil
}

func init() {
	rootCmd.AddCommand(mergeCmd)
}
