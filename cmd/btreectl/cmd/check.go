package cmd

import (
	"github.com/spf13/cobra"
)

// checkCmd represents the check command.
var checkCmd = &cobra.Command{
	Use:   "check",
	Short: "Verify the tree's minimum-fill and ordering invariants",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		tree, err := treeFromContext(cmd)
		if err != nil {
			return err
		}

		status, err := tree.IsBalanced()
		if err != nil {
			return err
		}
		cmd.Println(status)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(checkCmd)
}
