package registry

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/Masterminds/semver/v3"
	"github.com/agentx-labs/modgraph/internal/manifest"
	"github.com/tidwall/gjson"
	"github.com/tidwall/jsonc"
)

const defaultLocale = "en"

// Module is a named collection of containers backed by one directory.
type Module struct {
	reg        *Registry
	name       string
	path       string
	manifest   *manifest.ModuleManifest
	version    *semver.Version
	containers []*Container
	index      map[string]*Container
	locale     []byte
}

func newModule(reg *Registry, path string) *Module {
	return &Module{
		reg:   reg,
		name:  filepath.Base(path),
		path:  path,
		index: make(map[string]*Container),
	}
}

func (m *Module) Name() string { return m.name }

// Path returns the module directory.
func (m *Module) Path() string { return m.path }

// Version returns the parsed manifest version, or nil when absent or invalid.
func (m *Module) Version() *semver.Version { return m.version }

// Manifest returns the parsed manifest.
func (m *Module) Manifest() *manifest.ModuleManifest { return m.manifest }

// InitializeFromManifest reads the manifest, sets the module name and loads
// the localization table. A missing or unreadable manifest is a
// StructuralError.
func (m *Module) InitializeFromManifest() error {
	path, err := manifest.Find(m.path)
	if err != nil {
		if errors.Is(err, manifest.ErrMissing) {
			return &StructuralError{Path: m.path, Err: ErrManifestMissing}
		}
		return &StructuralError{Path: m.path, Err: err}
	}

	mf, err := manifest.ParseFile(path)
	if err != nil {
		return &StructuralError{Path: m.path, Err: fmt.Errorf("%w: %v", ErrManifestInvalid, err)}
	}
	m.manifest = mf
	if mf.Info.Name != "" {
		m.name = mf.Info.Name
	}

	if mf.Info.Version != "" {
		v, err := manifest.ParseVersion(mf.Info.Version)
		if err != nil {
			m.reg.logger.Warn("ignoring invalid module version", "module", m.name, "version", mf.Info.Version, "error", err)
		} else {
			m.version = v
		}
	}

	m.loadLocale()
	return nil
}

// loadLocale reads locales/<default_locale>.json. A missing table leaves
// every lookup unresolved.
func (m *Module) loadLocale() {
	locale := m.manifest.DefaultLocale
	if locale == "" {
		locale = defaultLocale
	}
	path := filepath.Join(m.path, "locales", locale+".json")
	raw, err := os.ReadFile(path)
	if err != nil {
		return
	}
	doc := jsonc.ToJSON(raw)
	if !gjson.ValidBytes(doc) {
		m.reg.logger.Warn("ignoring invalid localization file", "module", m.name, "path", path)
		return
	}
	m.locale = doc
}

// LoadFiles builds one container per manifest alias and loads its records.
// Paths that do not resolve to a file are logged and skipped.
func (m *Module) LoadFiles() error {
	if m.manifest == nil {
		return &StructuralError{Module: m.name, Path: m.path, Err: ErrManifestMissing}
	}

	for _, section := range manifest.Sections {
		for _, entry := range m.manifest.Section(section) {
			if m.GetContainer(section, entry.Alias) != nil {
				m.reg.logger.Warn("duplicate alias ignored", "module", m.name, "section", section, "alias", entry.Alias)
				continue
			}

			c := &Container{alias: entry.Alias, section: section, module: m}
			for _, ref := range entry.Paths {
				abs, ok := m.reg.resolveFilePath(ref, m.path)
				if !ok {
					m.reg.logger.Warn("alias points at a missing file", "alias", c.ID(), "path", ref)
					continue
				}
				rec := m.reg.recordFor(abs)
				if rec == nil {
					m.reg.logger.Warn("alias points outside the mods root", "alias", c.ID(), "path", ref)
					continue
				}
				c.attach(rec)
			}
			m.addContainer(c)
		}
	}

	m.reg.logger.Debug("module loaded", "module", m.name, "containers", len(m.containers))
	return nil
}

// PostLoadFixup lets every record resolve references now that all modules
// are indexed.
func (m *Module) PostLoadFixup() {
	for _, c := range m.containers {
		for _, rec := range c.records {
			m.reg.fixupRecord(rec)
		}
	}
}

// GetContainer looks up a container by section and alias.
func (m *Module) GetContainer(section, alias string) *Container {
	return m.index[containerKey(section, alias)]
}

// GetAliasFile looks up a container in the aliases section.
func (m *Module) GetAliasFile(alias string) *Container {
	return m.GetContainer(manifest.SectionAliases, alias)
}

// GetAliases returns the aliases-section containers in manifest order.
func (m *Module) GetAliases() []*Container {
	var out []*Container
	for _, c := range m.containers {
		if c.section == manifest.SectionAliases {
			out = append(out, c)
		}
	}
	return out
}

// Containers returns every container in manifest order, section by section.
func (m *Module) Containers() []*Container { return m.containers }

func (m *Module) addContainer(c *Container) {
	m.index[containerKey(c.section, c.alias)] = c
	m.containers = append(m.containers, c)
}

func containerKey(section, alias string) string {
	return section + "\x00" + alias
}
