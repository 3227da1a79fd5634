package cli

import (
	"encoding/json"
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"
)

var modulesJSON bool

var modulesCmd = &cobra.Command{
	Use:   "modules",
	Short: "List the modules under the mods root",
	RunE:  runModules,
}

func init() {
	modulesCmd.Flags().BoolVar(&modulesJSON, "json", false, "Output in JSON format")
	rootCmd.AddCommand(modulesCmd)
}

// moduleEntry represents a loaded module for display.
type moduleEntry struct {
	Name        string `json:"name"`
	Version     string `json:"version"`
	Description string `json:"description,omitempty"`
	Path        string `json:"path"`
	Containers  int    `json:"containers"`
}

func runModules(cmd *cobra.Command, args []string) error {
	reg, err := openRegistry()
	if err != nil {
		return err
	}
	defer reg.Close()

	var entries []moduleEntry
	for _, m := range reg.Modules() {
		e := moduleEntry{
			Name:        m.Name(),
			Description: m.Manifest().Info.Description,
			Path:        m.Path(),
			Containers:  len(m.Containers()),
		}
		if v := m.Version(); v != nil {
			e.Version = v.String()
		}
		entries = append(entries, e)
	}

	if modulesJSON {
		return printJSON(cmd, entries)
	}
	if len(entries) == 0 {
		fmt.Fprintf(cmd.OutOrStdout(), "No modules found under %s.\n", reg.ModsRoot())
		return nil
	}

	w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 3, ' ', 0)
	fmt.Fprintln(w, "NAME\tVERSION\tALIASES\tPATH")
	for _, e := range entries {
		version := e.Version
		if version == "" {
			version = "-"
		}
		fmt.Fprintf(w, "%s\t%s\t%d\t%s\n", e.Name, version, e.Containers, e.Path)
	}
	return w.Flush()
}

func printJSON(cmd *cobra.Command, v any) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return err
	}
	_, err = fmt.Fprintln(cmd.OutOrStdout(), string(data))
	return err
}
