package cli

import (
	"fmt"

	"github.com/spf13/cobra"
)

var errorsCmd = &cobra.Command{
	Use:   "errors",
	Short: "List records that failed to load",
	RunE:  runErrors,
}

func init() {
	rootCmd.AddCommand(errorsCmd)
}

func runErrors(cmd *cobra.Command, args []string) error {
	reg, err := openRegistry()
	if err != nil {
		return err
	}
	defer reg.Close()

	out := cmd.OutOrStdout()
	if !reg.HasErrors() {
		fmt.Fprintln(out, "✓ All records loaded.")
		return nil
	}
	records := reg.ErrorRecords()
	for _, re := range records {
		fmt.Fprintf(out, "  ✗ %s: %v\n", re.Record.ID(), re.Err)
	}
	return fmt.Errorf("%d records failed to load", len(records))
}
