package cli

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/agentx-labs/modgraph/internal/config"
	"github.com/agentx-labs/modgraph/internal/manifest"
	"github.com/spf13/cobra"
)

var validateCmd = &cobra.Command{
	Use:   "validate [module-dir]...",
	Short: "Validate module manifests against the schema",
	Long:  `Validate the manifest of every module under the mods root, or of the given module directories.`,
	RunE:  runValidate,
}

func init() {
	rootCmd.AddCommand(validateCmd)
}

func runValidate(cmd *cobra.Command, args []string) error {
	dirs := args
	if len(dirs) == 0 {
		root := config.ModsRoot()
		entries, err := os.ReadDir(root)
		if err != nil {
			return fmt.Errorf("reading mods root: %w", err)
		}
		for _, e := range entries {
			if e.IsDir() && !strings.HasPrefix(e.Name(), ".") {
				dirs = append(dirs, filepath.Join(root, e.Name()))
			}
		}
	}

	out := cmd.OutOrStdout()
	failed := 0
	for _, dir := range dirs {
		path, err := manifest.Find(dir)
		if err != nil {
			if errors.Is(err, manifest.ErrMissing) {
				fmt.Fprintf(out, "✗ %s: no manifest\n", dir)
				failed++
				continue
			}
			return err
		}

		result, err := manifest.ValidateFile(path)
		if err != nil {
			fmt.Fprintf(out, "✗ %s: %v\n", path, err)
			failed++
			continue
		}
		if result.Valid {
			fmt.Fprintf(out, "✓ %s\n", path)
			continue
		}
		failed++
		fmt.Fprintf(out, "✗ %s\n", path)
		for _, issue := range result.Issues {
			fmt.Fprintf(out, "    %s: %s (%s)\n", issue.Path, issue.Message, issue.Keyword)
		}
	}

	if failed > 0 {
		return fmt.Errorf("%d of %d manifests invalid", failed, len(dirs))
	}
	return nil
}
