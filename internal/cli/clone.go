package cli

import (
	"bufio"
	"errors"
	"fmt"
	"strings"

	"github.com/agentx-labs/modgraph/internal/registry"
	"github.com/spf13/cobra"
)

var (
	clonePrefix         string
	cloneReplace        []string
	cloneDryRun         bool
	cloneDiff           bool
	cloneYes            bool
	cloneRewriteContent bool
)

var cloneCmd = &cobra.Command{
	Use:   "clone <module:alias | module/section/alias[/file]>",
	Short: "Clone an entity and everything it depends on",
	Long: `Clone an alias (or a record) together with every record and alias it reaches.
Identifiers are rewritten with --prefix or with --replace old=new pairs applied in order.
Dependencies the rewrite leaves unchanged are shared, not copied.`,
	Args: cobra.ExactArgs(1),
	RunE: runClone,
}

func init() {
	cloneCmd.Flags().StringVar(&clonePrefix, "prefix", "", "Prefix the last segment of every identifier")
	cloneCmd.Flags().StringArrayVar(&cloneReplace, "replace", nil, "Replace old=new in every identifier (repeatable)")
	cloneCmd.Flags().BoolVar(&cloneDryRun, "dry-run", false, "Print the plan without writing")
	cloneCmd.Flags().BoolVar(&cloneDiff, "diff", false, "Show how each JSON record changes")
	cloneCmd.Flags().BoolVarP(&cloneYes, "yes", "y", false, "Skip confirmation prompt")
	cloneCmd.Flags().BoolVar(&cloneRewriteContent, "rewrite-content", false, "Apply --replace to the whole text of JSON records")
	rootCmd.AddCommand(cloneCmd)
}

func runClone(cmd *cobra.Command, args []string) error {
	params, err := cloneParams(clonePrefix, cloneReplace, cloneRewriteContent)
	if err != nil {
		return err
	}

	reg, err := openRegistry()
	if err != nil {
		return err
	}
	defer reg.Close()

	target, err := findTarget(reg, args[0])
	if err != nil {
		return err
	}

	plan, err := reg.PlanClone(target, params)
	if err != nil {
		return err
	}
	out := cmd.OutOrStdout()
	registry.PrintPlan(out, plan)

	if cloneDiff {
		diffs, err := reg.CloneDiffs(target, params)
		if err != nil {
			return err
		}
		for _, d := range diffs {
			if !d.Changed {
				continue
			}
			fmt.Fprintf(out, "--- %s\n+++ %s\n%s\n", d.ID, d.NewID, d.Diff)
		}
	}

	if cloneDryRun {
		return nil
	}

	if !cloneYes {
		fmt.Fprint(out, "? Proceed with clone? (Y/n) ")
		scanner := bufio.NewScanner(cmd.InOrStdin())
		if scanner.Scan() {
			answer := strings.TrimSpace(strings.ToLower(scanner.Text()))
			if answer != "" && answer != "y" && answer != "yes" {
				fmt.Fprintln(out, "Clone cancelled.")
				return nil
			}
		}
	}

	seen := registry.NewVisited()
	if err := reg.ExecuteClone(target, params, seen); err != nil {
		fmt.Fprintf(out, "✗ clone stopped after %d entries\n", seen.Len())
		return err
	}
	fmt.Fprintf(out, "✓ Cloned %d entries.\n", seen.Len())
	return nil
}

// cloneParams builds the rewrite from the command-line flags.
func cloneParams(prefix string, replace []string, rewriteContent bool) (registry.CloneParameters, error) {
	if prefix != "" && len(replace) > 0 {
		return registry.CloneParameters{}, errors.New("use either --prefix or --replace, not both")
	}
	if prefix != "" {
		if rewriteContent {
			return registry.CloneParameters{}, errors.New("--rewrite-content needs --replace")
		}
		return registry.Prefix(prefix), nil
	}
	if len(replace) == 0 {
		return registry.CloneParameters{}, errors.New("one of --prefix or --replace is required")
	}

	var pairs []string
	for _, r := range replace {
		from, to, ok := strings.Cut(r, "=")
		if !ok || from == "" {
			return registry.CloneParameters{}, fmt.Errorf("invalid --replace %q, want old=new", r)
		}
		pairs = append(pairs, from, to)
	}
	p := registry.Replace(pairs...)
	p.RewriteContent = rewriteContent
	return p, nil
}

// findTarget accepts "module:alias" or a tree selection.
func findTarget(reg *registry.Registry, arg string) (registry.Target, error) {
	if strings.Contains(arg, ":") {
		c, err := reg.ResolveContainer(arg)
		if err != nil {
			return nil, err
		}
		return c, nil
	}
	if rec := reg.RecordAt(arg); rec != nil {
		return rec, nil
	}
	return nil, fmt.Errorf("%w: %s", registry.ErrNotFound, arg)
}
