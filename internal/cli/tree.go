package cli

import (
	"fmt"

	"github.com/agentx-labs/modgraph/internal/registry"
	"github.com/spf13/cobra"
)

var treeJSON bool

var treeCmd = &cobra.Command{
	Use:   "tree [term]",
	Short: "Show modules, aliases and linked records",
	Long:  `Show the module tree. With a term, keep only aliases whose name or JSON content contains it (case-insensitive).`,
	Args:  cobra.MaximumNArgs(1),
	RunE:  runTree,
}

func init() {
	treeCmd.Flags().BoolVar(&treeJSON, "json", false, "Output in JSON format")
	rootCmd.AddCommand(treeCmd)
}

func runTree(cmd *cobra.Command, args []string) error {
	reg, err := openRegistry()
	if err != nil {
		return err
	}
	defer reg.Close()

	term := ""
	if len(args) == 1 {
		term = args[0]
	}
	nodes := reg.FilterTree(term)

	if treeJSON {
		return printJSON(cmd, nodes)
	}
	if len(nodes) == 0 {
		fmt.Fprintln(cmd.OutOrStdout(), "Nothing matches.")
		return nil
	}
	registry.PrintFilterTree(cmd.OutOrStdout(), nodes)
	return nil
}
