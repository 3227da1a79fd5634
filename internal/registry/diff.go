package registry

import (
	"bytes"
	"strings"

	"github.com/sergi/go-diff/diffmatchpatch"
)

// CloneDiffs runs the clone walk without writing and returns, for every JSON
// record in the closure, its content as the clone would read.
func (r *Registry) CloneDiffs(t Target, p CloneParameters) ([]RecordDiff, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	if r.closed {
		return nil, ErrClosed
	}

	diffs := []RecordDiff{}
	w := r.newWalk(p, NewVisited(), false)
	w.diffs = &diffs
	if _, err := w.start(t); err != nil {
		return nil, err
	}
	return diffs, nil
}

func newRecordDiff(id, newID string, before, after []byte) RecordDiff {
	d := RecordDiff{ID: id, NewID: newID, Changed: !bytes.Equal(before, after)}
	if d.Changed {
		d.Diff = lineDiff(string(before), string(after))
	}
	return d
}

// lineDiff renders a line-level diff: "-" for removed lines, "+" for added
// ones and two spaces for context.
func lineDiff(before, after string) string {
	dmp := diffmatchpatch.New()
	a, b, lines := dmp.DiffLinesToChars(before, after)
	diffs := dmp.DiffCharsToLines(dmp.DiffMain(a, b, false), lines)

	var sb strings.Builder
	for _, d := range diffs {
		prefix := "  "
		switch d.Type {
		case diffmatchpatch.DiffDelete:
			prefix = "- "
		case diffmatchpatch.DiffInsert:
			prefix = "+ "
		}
		for _, line := range strings.SplitAfter(d.Text, "\n") {
			if line == "" {
				continue
			}
			sb.WriteString(prefix)
			sb.WriteString(line)
			if !strings.HasSuffix(line, "\n") {
				sb.WriteByte('\n')
			}
		}
	}
	return sb.String()
}
