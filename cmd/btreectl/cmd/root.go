/*
Copyright © 2025 NAME HERE <EMAIL ADDRESS>
*/
package cmd

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/ssargent/kvbtree/pkg/btree"
	"github.com/ssargent/kvbtree/pkg/pagestore"
)

var (
	dataDir     string
	order       int
	cacheSize   int
	useHashType bool
)

// rootCmd represents the base command when called without any subcommands.
var rootCmd = &cobra.Command{
	Use:   "btreectl",
	Short: "btreectl - operate a disk-backed B-tree",
	Long: `btreectl drives a single disk-backed B-tree instance: a fixed
branching factor, a page file under --data-dir, and one subcommand per
tree operation.`,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		if err := os.MkdirAll(dataDir, 0750); err != nil {
			return fmt.Errorf("failed to create data dir: %w", err)
		}

		td := btree.LongSet()
		if useHashType {
			td = btree.LongHash()
		}

		accessor, err := pagestore.Open(pagestore.Config{
			Path:        filepath.Join(dataDir, "tree.page"),
			Type:        td,
			MaxNodeSize: order,
			CacheSize:   cacheSize,
		})
		if err != nil {
			return fmt.Errorf("failed to open page file: %w", err)
		}

		tree, err := openOrCreate(td, accessor)
		if err != nil {
			accessor.Close()
			return fmt.Errorf("failed to open tree: %w", err)
		}

		ctx := context.WithValue(cmd.Context(), treeContextKey, tree)
		ctx = context.WithValue(ctx, accessorContextKey, accessor)
		cmd.SetContext(ctx)
		return nil
	},
	PersistentPostRunE: func(cmd *cobra.Command, args []string) error {
		accessor, ok := cmd.Context().Value(accessorContextKey).(*pagestore.PagedAccessor)
		if !ok {
			return nil
		}
		if tree, ok := cmd.Context().Value(treeContextKey).(*btree.Tree); ok {
			if err := accessor.PersistRoot(tree.RootID(), tree.Height()); err != nil {
				accessor.Close()
				return fmt.Errorf("failed to persist root: %w", err)
			}
		}
		return accessor.Close()
	},
}

type contextKey string

const (
	treeContextKey     contextKey = "tree"
	accessorContextKey contextKey = "accessor"
)

// openOrCreate builds a Tree over the page file's persisted root if one
// was recorded by a prior invocation's PersistRoot call, or creates a
// fresh tree otherwise. The root id is never assumed to be node id 1:
// a root split mints a new page for the new root and demotes the old
// root to a child, so only the header's recorded root id (not the
// first-ever allocated page) is trustworthy across process restarts.
func openOrCreate(td *btree.TypeDescriptor, accessor *pagestore.PagedAccessor) (*btree.Tree, error) {
	rootID, _, ok := accessor.Root()
	if !ok {
		return btree.Create(td, order, accessor)
	}
	return btree.Open(td, order, accessor, rootID)
}

func treeFromContext(cmd *cobra.Command) (*btree.Tree, error) {
	tree, ok := cmd.Context().Value(treeContextKey).(*btree.Tree)
	if !ok {
		return nil, fmt.Errorf("tree not found in command context")
	}
	return tree, nil
}

// Execute adds all child commands to the root command and sets flags
// appropriately. This is called by main.main(); it only needs to run
// once for rootCmd.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&dataDir, "data-dir", "d", "./data", "Data directory holding the tree's page file")
	rootCmd.PersistentFlags().IntVar(&order, "order", 64, "Branching factor (m); must be even and >= 4")
	rootCmd.PersistentFlags().IntVar(&cacheSize, "cache-size", 256, "Number of decoded pages kept warm in the page cache")
	rootCmd.PersistentFlags().BoolVar(&useHashType, "hash", false, "Use the long_hash type descriptor (keys map to 8-byte values) instead of long_set")
}
