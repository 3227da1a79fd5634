package registry

import (
	"fmt"
	"path"
	"path/filepath"
	"strings"

	"github.com/agentx-labs/modgraph/internal/manifest"
)

// Replacement is one ordered substitution.
type Replacement struct {
	From string
	To   string
}

// CloneParameters describe how a clone renames what it copies. The same
// rewrite is applied to every identifier in the closure.
type CloneParameters struct {
	Replacements []Replacement
	// Func overrides Replacements when set.
	Func func(string) string
	// RewriteContent applies Replacements to the whole text of JSON records
	// instead of only their references.
	RewriteContent bool
}

// Prefix renames the last segment of every identifier:
// "base:door" becomes "base:clone_door", "base/door.json" "base/clone_door.json".
func Prefix(prefix string) CloneParameters {
	return CloneParameters{Func: func(id string) string {
		i := strings.LastIndexAny(id, "/:")
		return id[:i+1] + prefix + id[i+1:]
	}}
}

// Replace builds parameters from old/new pairs. A trailing odd value is
// ignored.
func Replace(pairs ...string) CloneParameters {
	var p CloneParameters
	for i := 0; i+1 < len(pairs); i += 2 {
		p.Replacements = append(p.Replacements, Replacement{From: pairs[i], To: pairs[i+1]})
	}
	return p
}

// Transform applies the rewrite to one identifier.
func (p CloneParameters) Transform(id string) string {
	if p.Func != nil {
		return p.Func(id)
	}
	return p.replaceAll(id)
}

func (p CloneParameters) replaceAll(s string) string {
	for _, r := range p.Replacements {
		if r.From == "" {
			continue
		}
		s = strings.ReplaceAll(s, r.From, r.To)
	}
	return s
}

// ExecuteClone copies the closure of t under p's rewrite and registers the
// new aliases. seen collects the rewritten identifiers; pass nil when the
// caller does not need them. Writes made before a failure stay on disk.
func (r *Registry) ExecuteClone(t Target, p CloneParameters, seen *Visited) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.closed {
		return ErrClosed
	}
	if seen == nil {
		seen = NewVisited()
	}

	w := r.newWalk(p, seen, true)
	_, err := w.start(t)
	w.registerPending()
	return err
}

// PreviewClone runs the clone walk without writing and returns the
// identifiers ExecuteClone would touch.
func (r *Registry) PreviewClone(t Target, p CloneParameters) (*Visited, error) {
	plan, err := r.PlanClone(t, p)
	if err != nil {
		return nil, err
	}
	return plan.Visited, nil
}

// PlanClone runs the clone walk without writing and returns the walk as a
// tree.
func (r *Registry) PlanClone(t Target, p CloneParameters) (*ClonePlan, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	if r.closed {
		return nil, ErrClosed
	}

	w := r.newWalk(p, NewVisited(), false)
	root, err := w.start(t)
	if err != nil {
		return nil, err
	}
	return &ClonePlan{Root: root, Visited: w.visited}, nil
}

// cloneWalk is the state of one closure walk.
type cloneWalk struct {
	reg     *Registry
	params  CloneParameters
	visited *Visited
	commit  bool

	diffs   *[]RecordDiff // collected when non-nil
	pending []pendingAlias
}

// pendingAlias is a container clone whose records are written and whose
// alias still has to be registered.
type pendingAlias struct {
	source *Container
	alias  string
	ids    []string
}

func (r *Registry) newWalk(p CloneParameters, seen *Visited, commit bool) *cloneWalk {
	return &cloneWalk{reg: r, params: p, visited: seen, commit: commit}
}

func (w *cloneWalk) start(t Target) (*PlanNode, error) {
	switch v := t.(type) {
	case *Container:
		if v == nil {
			return nil, fmt.Errorf("%w: nil container", ErrCloneFailed)
		}
		return w.cloneContainer(v, true)
	case Record:
		if c := v.Container(); c != nil {
			return w.cloneContainer(c, true)
		}
		if w.params.Transform(v.ID()) == v.ID() {
			return nil, &CloneError{ID: v.ID(), Err: ErrCloneUnchanged}
		}
		return w.cloneRecord(v)
	default:
		return nil, fmt.Errorf("%w: unsupported target %T", ErrCloneFailed, t)
	}
}

func (w *cloneWalk) cloneContainer(c *Container, top bool) (*PlanNode, error) {
	id := c.ID()
	newID := w.params.Transform(id)
	node := &PlanNode{ID: id, NewID: newID, Kind: "alias"}

	if newID == id {
		if top {
			return nil, &CloneError{ID: id, Err: ErrCloneUnchanged}
		}
		node.Shared = true
		return node, nil
	}
	if w.visited.Contains(newID) {
		node.Deduped = true
		return node, nil
	}

	modName, alias, ok := splitAlias(newID)
	if !ok || modName != c.module.name {
		return nil, &CloneError{ID: id, Err: fmt.Errorf("rewrite moves it to %q, outside module %s", newID, c.module.name)}
	}
	if c.module.GetContainer(c.section, alias) != nil {
		return nil, &CloneError{ID: id, Err: fmt.Errorf("%w: %s", ErrAliasExists, newID)}
	}
	w.visited.Add(newID)

	var ids []string
	for _, rec := range c.records {
		child, err := w.cloneRecord(rec)
		if err != nil {
			return nil, err
		}
		node.Children = append(node.Children, child)
		ids = append(ids, child.NewID)
	}

	if w.commit {
		w.pending = append(w.pending, pendingAlias{source: c, alias: alias, ids: ids})
	}
	return node, nil
}

func (w *cloneWalk) cloneRecord(rec Record) (*PlanNode, error) {
	id := rec.ID()
	newID := w.params.Transform(id)
	node := &PlanNode{ID: id, NewID: newID, Kind: rec.Kind().String()}

	if newID == id {
		node.Shared = true
		return node, nil
	}
	if w.visited.Contains(newID) {
		node.Deduped = true
		return node, nil
	}

	dst := w.destination(newID)
	if dst == "" {
		return nil, &CloneError{ID: id, Err: fmt.Errorf("rewrite moves it to %q, outside the mods root", newID)}
	}
	w.visited.Add(newID)

	if w.diffs != nil {
		if j, ok := rec.(*JSONRecord); ok {
			*w.diffs = append(*w.diffs, newRecordDiff(id, newID, j.raw, j.rewrite(dst, w)))
		}
	}
	if w.commit {
		if err := rec.materialize(dst, w); err != nil {
			return nil, &CloneError{ID: id, Err: err}
		}
		w.reg.logger.Info("record cloned", "record", id, "clone", newID)
	}

	for _, linked := range rec.Linked() {
		var child *PlanNode
		var err error
		if lc := foreignContainer(linked, rec.Container()); lc != nil {
			child, err = w.cloneContainer(lc, false)
		} else {
			child, err = w.cloneRecord(linked)
		}
		if err != nil {
			return nil, err
		}
		node.Children = append(node.Children, child)
	}
	for _, related := range rec.Related() {
		child, err := w.cloneRecord(related)
		if err != nil {
			return nil, err
		}
		node.Children = append(node.Children, child)
	}
	if j, ok := rec.(*JSONRecord); ok {
		for _, dep := range j.deps {
			child, err := w.cloneContainer(dep, false)
			if err != nil {
				return nil, err
			}
			node.Children = append(node.Children, child)
		}
	}
	return node, nil
}

// foreignContainer returns the container owning rec when that is not owner.
// Such a record is cloned together with its container, so it stays shared
// whenever the container does.
func foreignContainer(rec Record, owner *Container) *Container {
	if c := rec.Container(); c != nil && c != owner {
		return c
	}
	return nil
}

// recordCloneID returns the identifier rec has in a clone reached from a
// record of owner, or its own identifier when the walk shares it.
func (w *cloneWalk) recordCloneID(rec Record, owner *Container) string {
	if c := foreignContainer(rec, owner); c != nil && w.params.Transform(c.ID()) == c.ID() {
		return rec.ID()
	}
	return w.params.Transform(rec.ID())
}

// destination maps a record identifier to an absolute path, or "" when the
// identifier escapes the mods root.
func (w *cloneWalk) destination(id string) string {
	dst := filepath.Join(w.reg.root, filepath.FromSlash(id))
	if _, ok := w.reg.relToRoot(dst); !ok {
		return ""
	}
	return dst
}

// rewriteReference returns how ref, resolved to t, reads in a clone of a
// record of owner written to dstDir.
func (w *cloneWalk) rewriteReference(ref string, t refTarget, owner *Container, dstDir string) (string, bool) {
	if t.container != nil {
		newID := w.params.Transform(t.container.ID())
		return newID, newID != t.container.ID()
	}

	target := t.record.Path()
	if newID := w.recordCloneID(t.record, owner); newID != t.record.ID() {
		if dst := w.destination(newID); dst != "" {
			target = dst
		}
	}

	lex := w.reg.lexicalPath(ref, dstDir)
	if lex == target || filepath.Join(lex, filepath.Base(lex)+".json") == target {
		return ref, false
	}

	inner, wrapped := unwrapFileRef(ref)
	var out string
	if strings.HasPrefix(inner, "/") {
		rel, _ := w.reg.relToRoot(target)
		out = "/" + rel
	} else {
		rel, err := filepath.Rel(dstDir, target)
		if err != nil {
			return ref, false
		}
		out = filepath.ToSlash(rel)
		if strings.HasPrefix(inner, "./") && !strings.HasPrefix(out, "../") {
			out = "./" + out
		}
	}
	if wrapped {
		out = "file(" + out + ")"
	}
	return out, out != ref
}

// registerPending adds the aliases of cloned containers to their manifests
// on disk and in memory. Failures are logged; the records are already
// written.
func (w *cloneWalk) registerPending() {
	for _, p := range w.pending {
		if err := w.reg.registerAlias(p); err != nil {
			w.reg.logger.Warn("registering cloned alias failed", "alias", p.source.module.name+":"+p.alias, "error", err)
		}
	}
	w.pending = nil
}

func (r *Registry) registerAlias(p pendingAlias) error {
	m := p.source.module
	c := &Container{alias: p.alias, section: p.source.section, module: m}

	var refs []string
	for _, id := range p.ids {
		abs := filepath.Join(r.root, filepath.FromSlash(id))
		rel, err := filepath.Rel(m.path, abs)
		if err != nil {
			return err
		}
		refs = append(refs, "file("+path.Clean(filepath.ToSlash(rel))+")")
	}

	if m.manifest != nil && m.manifest.Path != "" {
		if err := manifest.AddAlias(m.manifest.Path, c.section, c.alias, refs...); err != nil {
			return err
		}
		m.manifest.Append(c.section, manifest.AliasEntry{Alias: c.alias, Paths: refs})
	}

	for _, id := range p.ids {
		rec := r.recordFor(filepath.Join(r.root, filepath.FromSlash(id)))
		if rec == nil {
			continue
		}
		c.attach(rec)
	}
	for _, rec := range c.records {
		r.fixupRecord(rec)
	}
	m.addContainer(c)
	r.logger.Info("alias registered", "alias", c.ID(), "records", len(c.records))
	return nil
}
