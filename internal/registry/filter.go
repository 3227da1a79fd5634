package registry

import (
	"strings"

	"golang.org/x/text/cases"
)

// FilterTree returns the module tree restricted to containers whose alias or
// JSON content contains term, ignoring case. An empty term keeps everything.
// Modules and sections without a match are dropped.
func (r *Registry) FilterTree(term string) []*TreeNode {
	r.mu.RLock()
	defer r.mu.RUnlock()

	fold := cases.Fold()
	needle := fold.String(term)

	var out []*TreeNode
	for _, m := range r.modules {
		modNode := &TreeNode{Name: m.name, Kind: NodeModule, ID: m.name}
		sections := make(map[string]*TreeNode)

		for _, c := range m.containers {
			if !containerMatches(c, needle, fold) {
				continue
			}
			sec, ok := sections[c.section]
			if !ok {
				sec = &TreeNode{Name: c.section, Kind: NodeSection, ID: m.name + "/" + c.section}
				sections[c.section] = sec
				modNode.Children = append(modNode.Children, sec)
			}
			aliasNode := &TreeNode{Name: c.alias, Kind: NodeAlias, ID: c.ID()}
			for _, rec := range c.records {
				aliasNode.Children = append(aliasNode.Children, recordNode(rec, map[string]bool{}))
			}
			sec.Children = append(sec.Children, aliasNode)
		}

		if len(modNode.Children) > 0 {
			out = append(out, modNode)
		}
	}
	return out
}

func containerMatches(c *Container, needle string, fold cases.Caser) bool {
	if needle == "" || strings.Contains(fold.String(c.alias), needle) {
		return true
	}
	for _, rec := range c.records {
		if j, ok := rec.(*JSONRecord); ok && strings.Contains(fold.String(string(j.raw)), needle) {
			return true
		}
	}
	return false
}

// recordNode renders a record and what it links, stopping at cycles.
func recordNode(rec Record, seen map[string]bool) *TreeNode {
	n := &TreeNode{Name: rec.ID(), Kind: NodeRecord, ID: rec.ID()}
	if seen[rec.Path()] {
		return n
	}
	seen[rec.Path()] = true
	for _, linked := range rec.Linked() {
		n.Children = append(n.Children, recordNode(linked, seen))
	}
	return n
}

// FilterByTerm returns the JSON primary records whose content contains term,
// keyed by "module:alias", together with each key's module name.
func (r *Registry) FilterByTerm(term string) (map[string]*JSONRecord, map[string]string) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	records := make(map[string]*JSONRecord)
	modules := make(map[string]string)
	for _, m := range r.modules {
		for _, c := range m.containers {
			j, ok := c.Primary().(*JSONRecord)
			if !ok || !j.Contains(term) {
				continue
			}
			records[c.ID()] = j
			modules[c.ID()] = m.name
		}
	}
	return records, modules
}

// RecordAt resolves a tree selection "module/section/alias[/file]" to a
// record. Selections naming only a module or a section give nil.
func (r *Registry) RecordAt(selection string) Record {
	r.mu.RLock()
	defer r.mu.RUnlock()

	c, rest := r.containerAt(selection)
	if c == nil {
		return nil
	}
	return c.GetRecord(rest...)
}

// IsContainerSelection reports whether selection names exactly a container.
func (r *Registry) IsContainerSelection(selection string) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()

	c, rest := r.containerAt(selection)
	return c != nil && len(rest) == 0
}

func (r *Registry) containerAt(selection string) (*Container, []string) {
	parts := strings.Split(strings.Trim(selection, "/"), "/")
	if len(parts) < 3 {
		return nil, nil
	}
	m := r.byName[parts[0]]
	if m == nil {
		return nil, nil
	}
	return m.GetContainer(parts[1], parts[2]), parts[3:]
}
