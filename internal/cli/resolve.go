package cli

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/agentx-labs/modgraph/internal/registry"
	"github.com/spf13/cobra"
)

var resolveBase string

var resolveCmd = &cobra.Command{
	Use:   "resolve <reference>",
	Short: "Resolve an alias or file reference",
	Long: `Resolve "module:alias" or a file reference (file(x), ./x, /module/x).
File references are resolved against --base, the current directory by default.`,
	Args: cobra.ExactArgs(1),
	RunE: runResolve,
}

func init() {
	resolveCmd.Flags().StringVar(&resolveBase, "base", "", "Directory the reference is written in")
	rootCmd.AddCommand(resolveCmd)
}

func runResolve(cmd *cobra.Command, args []string) error {
	reg, err := openRegistry()
	if err != nil {
		return err
	}
	defer reg.Close()

	base := resolveBase
	if base == "" {
		if base, err = os.Getwd(); err != nil {
			return err
		}
	}
	if base, err = filepath.Abs(base); err != nil {
		return err
	}

	found, c := reg.ResolveReference(args[0], base)
	out := cmd.OutOrStdout()
	switch {
	case !found:
		return fmt.Errorf("%s: not found", args[0])
	case c == nil && registry.IsAliasReference(args[0]):
		return fmt.Errorf("%s: alias does not resolve", args[0])
	case c == nil:
		fmt.Fprintf(out, "%s: found, not owned by an alias\n", args[0])
	default:
		fmt.Fprintf(out, "%s -> %s (%s)\n", args[0], c.ID(), c.Section())
		for _, rec := range c.Records() {
			fmt.Fprintf(out, "  %s\t%s\n", rec.Kind(), rec.ID())
		}
	}
	return nil
}
