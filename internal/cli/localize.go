package cli

import (
	"fmt"

	"github.com/spf13/cobra"
)

var localizeCmd = &cobra.Command{
	Use:   "localize <key>",
	Short: "Look up a localization string",
	Long: `Look up "module:path" or a bare path in the default module (default_module).
An unknown key is printed unchanged and the command fails.`,
	Args: cobra.ExactArgs(1),
	RunE: runLocalize,
}

func init() {
	rootCmd.AddCommand(localizeCmd)
}

func runLocalize(cmd *cobra.Command, args []string) error {
	reg, err := openRegistry()
	if err != nil {
		return err
	}
	defer reg.Close()

	fmt.Fprintln(cmd.OutOrStdout(), reg.LocalizeString(args[0]))
	if !reg.HasLocalizationKey(args[0]) {
		return fmt.Errorf("no localization for %q", args[0])
	}
	return nil
}
