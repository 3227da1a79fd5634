package cli

import (
	"fmt"
	"sort"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"
)

var grepCmd = &cobra.Command{
	Use:   "grep <term>",
	Short: "Find aliases whose JSON content contains a term",
	Args:  cobra.ExactArgs(1),
	RunE:  runGrep,
}

func init() {
	rootCmd.AddCommand(grepCmd)
}

func runGrep(cmd *cobra.Command, args []string) error {
	reg, err := openRegistry()
	if err != nil {
		return err
	}
	defer reg.Close()

	records, modules := reg.FilterByTerm(args[0])
	if len(records) == 0 {
		fmt.Fprintf(cmd.OutOrStdout(), "No JSON records contain %q.\n", args[0])
		return nil
	}

	ids := make([]string, 0, len(records))
	for id := range records {
		ids = append(ids, id)
	}
	sort.Strings(ids)

	w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 3, ' ', 0)
	fmt.Fprintln(w, "ALIAS\tMODULE\tRECORD\tREFERENCES")
	for _, id := range ids {
		refs := "-"
		if r := records[id].References(); len(r) > 0 {
			refs = strings.Join(r, ", ")
		}
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\n", id, modules[id], records[id].ID(), refs)
	}
	return w.Flush()
}
