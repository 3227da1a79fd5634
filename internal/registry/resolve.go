package registry

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/agentx-labs/modgraph/internal/manifest"
)

// ResolveContainer looks up a "module:alias" identifier. The aliases section
// is searched before components. A missing module or alias gives an error
// wrapping ErrNotFound.
func (r *Registry) ResolveContainer(fullAlias string) (*Container, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.resolveContainer(fullAlias)
}

func (r *Registry) resolveContainer(fullAlias string) (*Container, error) {
	modName, alias, ok := splitAlias(fullAlias)
	if !ok {
		return nil, fmt.Errorf("%w: %q is not a module:alias identifier", ErrNotFound, fullAlias)
	}
	m := r.byName[modName]
	if m == nil {
		return nil, fmt.Errorf("%w: module %q", ErrNotFound, modName)
	}
	for _, section := range manifest.Sections {
		if c := m.GetContainer(section, alias); c != nil {
			return c, nil
		}
	}
	return nil, fmt.Errorf("%w: alias %q in module %q", ErrNotFound, alias, modName)
}

// IsAliasReference reports whether ref is resolved as "module:alias" rather
// than as a file reference.
func IsAliasReference(ref string) bool {
	return strings.Contains(ref, ":") && !strings.HasPrefix(ref, "file(")
}

// ResolveReference resolves an alias or file reference written in a file
// under baseDir.
//
// A reference containing a colon is treated as an alias and always reports
// found, with a nil container when the alias does not resolve. A file
// reference reports found when the file exists and lies in a known module;
// the container is the one owning the record, if any.
func (r *Registry) ResolveReference(ref, baseDir string) (bool, *Container) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	if IsAliasReference(ref) {
		c, err := r.resolveContainer(ref)
		if err != nil {
			return true, nil
		}
		return true, c
	}

	abs, ok := r.resolveFilePath(ref, baseDir)
	if !ok {
		return false, nil
	}
	rel, ok := r.relToRoot(abs)
	if !ok {
		return false, nil
	}
	modDir, _, _ := strings.Cut(rel, "/")
	if r.moduleByDir(modDir) == nil {
		return false, nil
	}
	if rec, ok := r.records[abs]; ok {
		return true, rec.Container()
	}
	return true, nil
}

// resolveFilePath turns a file reference into an absolute path to an
// existing regular file.
func (r *Registry) resolveFilePath(ref, baseDir string) (string, bool) {
	p := r.lexicalPath(ref, baseDir)
	if p == "" {
		return "", false
	}
	info, err := os.Stat(p)
	if err != nil {
		return "", false
	}
	if info.IsDir() {
		p = filepath.Join(p, filepath.Base(p)+".json")
		info, err = os.Stat(p)
		if err != nil {
			return "", false
		}
	}
	if !info.Mode().IsRegular() {
		return "", false
	}
	return p, true
}

// lexicalPath computes where a reference points without touching the disk.
func (r *Registry) lexicalPath(ref, baseDir string) string {
	ref, _ = unwrapFileRef(strings.TrimSpace(ref))
	if ref == "" {
		return ""
	}
	if strings.HasPrefix(ref, "/") {
		return filepath.Join(r.root, filepath.FromSlash(ref))
	}
	return filepath.Join(baseDir, filepath.FromSlash(ref))
}

// splitAlias splits on the first colon.
func splitAlias(fullAlias string) (module, alias string, ok bool) {
	module, alias, ok = strings.Cut(fullAlias, ":")
	if !ok || module == "" || alias == "" {
		return "", "", false
	}
	return module, alias, true
}
