package registry

import (
	"fmt"
	"io"
)

// PrintPlan prints a clone plan as a tree followed by a summary.
func PrintPlan(w io.Writer, plan *ClonePlan) {
	fmt.Fprintln(w, "Resolving clone closure...")
	fmt.Fprintln(w)

	PrintPlanTree(w, plan.Root, "", true)
	fmt.Fprintln(w)

	aliases, records, shared := countPlan(plan.Root)
	fmt.Fprintf(w, "  Clone: %d aliases, %d records\n", aliases, records)
	if shared > 0 {
		fmt.Fprintf(w, "  (%d entries unchanged by the rewrite, referenced as is)\n", shared)
	}
	fmt.Fprintln(w)
}

// PrintPlanTree prints the clone walk with box-drawing characters.
func PrintPlanTree(w io.Writer, node *PlanNode, prefix string, isLast bool) {
	if node == nil {
		return
	}

	label := fmt.Sprintf("%s: %s -> %s", node.Kind, node.ID, node.NewID)
	if node.Deduped {
		label += " (deduped)"
	} else if node.Shared {
		label = fmt.Sprintf("%s: %s (shared)", node.Kind, node.ID)
	}

	printBranch(w, label, prefix, isLast)
	childPrefix := nextPrefix(prefix, isLast)
	for i, child := range node.Children {
		PrintPlanTree(w, child, childPrefix, i == len(node.Children)-1)
	}
}

// PrintFilterTree prints filtered module trees.
func PrintFilterTree(w io.Writer, nodes []*TreeNode) {
	for _, n := range nodes {
		printTreeNode(w, n, "", true)
	}
}

func printTreeNode(w io.Writer, node *TreeNode, prefix string, isLast bool) {
	printBranch(w, node.Name, prefix, isLast)
	childPrefix := nextPrefix(prefix, isLast)
	for i, child := range node.Children {
		printTreeNode(w, child, childPrefix, i == len(node.Children)-1)
	}
}

// printBranch prints one line; the root (empty prefix) has no connector.
func printBranch(w io.Writer, label, prefix string, isLast bool) {
	connector := "├── "
	if isLast {
		connector = "└── "
	}
	if prefix == "" {
		fmt.Fprintf(w, "  %s\n", label)
		return
	}
	fmt.Fprintf(w, "  %s%s%s\n", prefix, connector, label)
}

func nextPrefix(prefix string, isLast bool) string {
	if prefix == "" {
		return " "
	}
	if isLast {
		return prefix + "    "
	}
	return prefix + "│   "
}

func countPlan(node *PlanNode) (aliases, records, shared int) {
	if node == nil || node.Deduped {
		return
	}
	if node.Shared {
		return 0, 0, 1
	}
	if node.Kind == "alias" {
		aliases++
	} else {
		records++
	}
	for _, child := range node.Children {
		a, r, s := countPlan(child)
		aliases += a
		records += r
		shared += s
	}
	return
}
