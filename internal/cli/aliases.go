package cli

import (
	"fmt"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"
)

var aliasesJSON bool

var aliasesCmd = &cobra.Command{
	Use:   "aliases <module>",
	Short: "List a module's aliases and components",
	Args:  cobra.ExactArgs(1),
	RunE:  runAliases,
}

func init() {
	aliasesCmd.Flags().BoolVar(&aliasesJSON, "json", false, "Output in JSON format")
	rootCmd.AddCommand(aliasesCmd)
}

type aliasEntry struct {
	ID      string   `json:"id"`
	Section string   `json:"section"`
	Records []string `json:"records"`
}

func runAliases(cmd *cobra.Command, args []string) error {
	reg, err := openRegistry()
	if err != nil {
		return err
	}
	defer reg.Close()

	m := reg.Module(args[0])
	if m == nil {
		return fmt.Errorf("module %q not found", args[0])
	}

	entries := []aliasEntry{}
	for _, c := range m.Containers() {
		e := aliasEntry{ID: c.ID(), Section: c.Section(), Records: []string{}}
		for _, rec := range c.Records() {
			e.Records = append(e.Records, rec.ID())
		}
		entries = append(entries, e)
	}

	if aliasesJSON {
		return printJSON(cmd, entries)
	}

	w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 3, ' ', 0)
	fmt.Fprintln(w, "ALIAS\tSECTION\tRECORDS")
	for _, e := range entries {
		records := strings.Join(e.Records, ", ")
		if records == "" {
			records = "-"
		}
		fmt.Fprintf(w, "%s\t%s\t%s\n", e.ID, e.Section, records)
	}
	return w.Flush()
}
