package cmd

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/ssargent/kvbtree/pkg/btree"
)

// getCmd represents the get command.
var getCmd = &cobra.Command{
	Use:   "get <key>",
	Short: "Look up a key",
	Long: `Look up a key in the tree and print its value (long_hash) or
just confirm presence (long_set).

Example:
  btreectl get 42`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		tree, err := treeFromContext(cmd)
		if err != nil {
			return err
		}

		key, err := strconv.ParseInt(args[0], 10, 64)
		if err != nil {
			return fmt.Errorf("invalid key %q: %w", args[0], err)
		}

		found, value, err := tree.Find(btree.EncodeInt64Key(key))
		if err != nil {
			return err
		}
		if !found {
			cmd.Println(btree.StatusNotFound)
			return nil
		}
		if value != nil {
			cmd.Println(btree.DecodeInt64Key(value))
			return nil
		}
		cmd.Println(btree.StatusFound)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(getCmd)
}
