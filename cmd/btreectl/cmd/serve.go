package cmd

import (
	"github.com/spf13/cobra"

	"github.com/ssargent/kvbtree/pkg/btreeapi"
	"github.com/ssargent/kvbtree/pkg/btreemetrics"
	"github.com/ssargent/kvbtree/pkg/pagestore"
)

var debugBind string

// serveCmd represents the serve command.
var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve Prometheus metrics and read-only debug endpoints over the tree",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		tree, err := treeFromContext(cmd)
		if err != nil {
			return err
		}

		metrics := btreemetrics.New(tree.Type().Name)
		tree.SetHooks(metrics)
		if accessor, ok := cmd.Context().Value(accessorContextKey).(*pagestore.PagedAccessor); ok {
			accessor.SetHooks(metrics)
		}

		server := btreeapi.NewServer(tree)
		cmd.Printf("Serving metrics and debug endpoints on %s\n", debugBind)
		return server.ListenAndServe(debugBind)
	},
}

func init() {
	rootCmd.AddCommand(serveCmd)
	serveCmd.Flags().StringVar(&debugBind, "debug-bind", "127.0.0.1:8090", "Address to serve /metrics and /debug on")
}
