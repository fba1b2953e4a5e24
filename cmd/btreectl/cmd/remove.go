package cmd

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/ssargent/kvbtree/pkg/btree"
)

// removeCmd represents the remove command.
var removeCmd = &cobra.Command{
	Use:   "remove <key>",
	Short: "Delete a key if present",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		tree, err := treeFromContext(cmd)
		if err != nil {
			return err
		}

		key, err := strconv.ParseInt(args[0], 10, 64)
		if err != nil {
			return fmt.Errorf("invalid key %q: %w", args[0], err)
		}

		status, err := tree.Remove(btree.EncodeInt64Key(key))
		if err != nil {
			return err
		}
		cmd.Println(status)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(removeCmd)
}
