package cli

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"
)

var costCmd = &cobra.Command{
	Use:   "cost <tag>...",
	Short: "Average net worth of records carrying every given tag",
	Args:  cobra.MinimumNArgs(1),
	RunE:  runCost,
}

func init() {
	rootCmd.AddCommand(costCmd)
}

func runCost(cmd *cobra.Command, args []string) error {
	reg, err := openRegistry()
	if err != nil {
		return err
	}
	defer reg.Close()

	tags := strings.Join(args, " ")
	fmt.Fprintf(cmd.OutOrStdout(), "%s: %d\n", tags, reg.AverageDerivedValue(tags))
	return nil
}
