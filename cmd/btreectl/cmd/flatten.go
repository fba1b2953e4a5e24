package cmd

import (
	"github.com/spf13/cobra"

	"github.com/ssargent/kvbtree/pkg/btree"
)

// flattenCmd represents the flatten command.
var flattenCmd = &cobra.Command{
	Use:   "flatten",
	Short: "Print every key in sorted order",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		tree, err := treeFromContext(cmd)
		if err != nil {
			return err
		}

		keys, err := tree.Flatten()
		if err != nil {
			return err
		}
		for _, key := range keys {
			cmd.Println(btree.DecodeInt64Key(key))
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(flattenCmd)
}
