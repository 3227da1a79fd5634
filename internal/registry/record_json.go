package registry

import (
	"bytes"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/tidwall/gjson"
	"github.com/tidwall/jsonc"
	"golang.org/x/text/cases"
)

// Lookup paths for the aggregate inputs.
const (
	derivedValuePath = "entity_data.net_worth.value_in_gold"
	tagsPath         = "components.material.tags"
)

var aliasForm = regexp.MustCompile(`^[A-Za-z0-9_-]+:[^\s:][^\s]*$`)

// JSONRecord is a structured document. Its string values may reference other
// containers ("module:alias") or files (file(x), ./x, ../x, /module/x, or a
// bare name with a known extension).
type JSONRecord struct {
	recordBase
	raw     []byte // as read, comments included
	doc     []byte // plain JSON for lookups
	refs    []string
	targets map[string]refTarget
	deps    []*Container
}

// refTarget is what a reference string resolved to: exactly one field is set.
type refTarget struct {
	container *Container
	record    Record
}

func (j *JSONRecord) Kind() Kind { return KindJSON }

// Load reads the document and collects reference candidates. Resolution
// waits for fixup, when every module is indexed.
func (j *JSONRecord) Load() error {
	raw, err := os.ReadFile(j.path)
	if err != nil {
		return fmt.Errorf("reading %s: %w", j.path, err)
	}
	j.raw = raw

	doc := jsonc.ToJSON(raw)
	if !gjson.ValidBytes(doc) {
		return fmt.Errorf("parsing %s: invalid JSON", j.path)
	}
	j.doc = doc
	j.refs = collectReferences(gjson.ParseBytes(doc))
	return nil
}

// References returns the reference candidates in document order.
func (j *JSONRecord) References() []string {
	out := make([]string, len(j.refs))
	copy(out, j.refs)
	return out
}

// Dependencies returns the containers this document references by alias,
// excluding its own.
func (j *JSONRecord) Dependencies() []*Container { return j.deps }

// Get looks up a dotted path in the document.
func (j *JSONRecord) Get(path string) gjson.Result {
	return gjson.GetBytes(j.doc, path)
}

func (j *JSONRecord) DerivedValue() int {
	if j.doc == nil {
		return 0
	}
	return int(j.Get(derivedValuePath).Int())
}

func (j *JSONRecord) Tags() []string {
	if j.doc == nil {
		return nil
	}
	return strings.Fields(j.Get(tagsPath).String())
}

// Contains reports whether the raw content contains term, ignoring case.
func (j *JSONRecord) Contains(term string) bool {
	if term == "" {
		return true
	}
	fold := cases.Fold()
	return strings.Contains(fold.String(string(j.raw)), fold.String(term))
}

func (j *JSONRecord) fixup(r *Registry) {
	if len(j.refs) == 0 {
		return
	}
	dir := filepath.Dir(j.path)
	j.targets = make(map[string]refTarget, len(j.refs))

	for _, ref := range j.refs {
		if aliasForm.MatchString(ref) {
			c, err := r.resolveContainer(ref)
			if err != nil {
				// Component names and other colon-separated strings.
				continue
			}
			j.targets[ref] = refTarget{container: c}
			if c != j.container && !hasContainer(j.deps, c) {
				j.deps = append(j.deps, c)
			}
			continue
		}

		abs, ok := r.resolveFilePath(ref, dir)
		if !ok || abs == j.path {
			continue
		}
		rec := r.recordFor(abs)
		if rec == nil {
			continue
		}
		r.fixupRecord(rec)
		j.targets[ref] = refTarget{record: rec}
		j.addLinked(rec)
		rec.base().addLinkedBy(j)
	}
}

func (j *JSONRecord) materialize(dst string, w *cloneWalk) error {
	info, err := os.Stat(j.path)
	if err != nil {
		return err
	}
	return writeNew(dst, j.rewrite(dst, w), info.Mode().Perm())
}

// rewrite returns the document as it reads at dst: every resolved reference
// points at its target's clone, or at the shared original. Formatting and
// comments are kept because only quoted reference strings are replaced.
func (j *JSONRecord) rewrite(dst string, w *cloneWalk) []byte {
	if w.params.RewriteContent && w.params.Func == nil && len(w.params.Replacements) > 0 {
		return []byte(w.params.replaceAll(string(j.raw)))
	}

	out := j.raw
	for _, ref := range j.refs {
		t, ok := j.targets[ref]
		if !ok {
			continue
		}
		newRef, changed := w.rewriteReference(ref, t, j.container, filepath.Dir(dst))
		if !changed {
			continue
		}
		out = bytes.ReplaceAll(out, quoteJSON(ref), quoteJSON(newRef))
	}
	return out
}

// collectReferences walks every string value and keeps the ones shaped like
// an alias or a file reference, deduplicated, in document order.
func collectReferences(root gjson.Result) []string {
	seen := make(map[string]bool)
	var out []string

	var walk func(v gjson.Result)
	walk = func(v gjson.Result) {
		switch {
		case v.IsObject(), v.IsArray():
			v.ForEach(func(_, child gjson.Result) bool {
				walk(child)
				return true
			})
		case v.Type == gjson.String:
			s := v.String()
			if seen[s] {
				return
			}
			if aliasForm.MatchString(s) || isFileForm(s) {
				seen[s] = true
				out = append(out, s)
			}
		}
	}
	walk(root)
	return out
}

// isFileForm reports whether s is written like a file reference.
func isFileForm(s string) bool {
	if _, wrapped := unwrapFileRef(s); wrapped {
		return true
	}
	if strings.ContainsAny(s, " \t\r\n") {
		return false
	}
	if strings.HasPrefix(s, "./") || strings.HasPrefix(s, "../") {
		return true
	}
	if strings.HasPrefix(s, "/") && len(s) > 1 {
		return true
	}
	return isRecordExtension(s)
}

// unwrapFileRef strips the file(...) wrapper.
func unwrapFileRef(ref string) (string, bool) {
	if strings.HasPrefix(ref, "file(") && strings.HasSuffix(ref, ")") {
		return ref[len("file(") : len(ref)-1], true
	}
	return ref, false
}

func quoteJSON(s string) []byte {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	_ = enc.Encode(s)
	return bytes.TrimSuffix(buf.Bytes(), []byte("\n"))
}

func hasContainer(list []*Container, c *Container) bool {
	for _, x := range list {
		if x == c {
			return true
		}
	}
	return false
}
