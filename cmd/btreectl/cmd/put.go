package cmd

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/ssargent/kvbtree/pkg/btree"
)

// putCmd represents the put command.
var putCmd = &cobra.Command{
	Use:   "put <key> [value]",
	Short: "Insert a key (and, with --hash, a value) if absent",
	Long: `Insert a key into the tree. value is required when --hash is
set and ignored otherwise.

Example:
  btreectl put 42
  btreectl --hash put 42 100`,
	Args: cobra.RangeArgs(1, 2),
	RunE: func(cmd *cobra.Command, args []string) error {
		tree, err := treeFromContext(cmd)
		if err != nil {
			return err
		}

		key, err := strconv.ParseInt(args[0], 10, 64)
		if err != nil {
			return fmt.Errorf("invalid key %q: %w", args[0], err)
		}

		var value []byte
		if useHashType {
			if len(args) != 2 {
				return fmt.Errorf("put requires a value when --hash is set")
			}
			v, err := strconv.ParseInt(args[1], 10, 64)
			if err != nil {
				return fmt.Errorf("invalid value %q: %w", args[1], err)
			}
			value = btree.EncodeInt64Key(v)
		}

		status, err := tree.Add(btree.EncodeInt64Key(key), value)
		if err != nil {
			return err
		}
		cmd.Println(status)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(putCmd)
}
