package registry

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"sync/atomic"

	gocache "github.com/patrickmn/go-cache"
)

// DefaultModule is the module bare localization keys are looked up in.
const DefaultModule = "base"

// Config holds the settings for a Registry.
type Config struct {
	ModsRoot      string       // directory whose subdirectories are modules; required
	DefaultModule string       // localization default, DefaultModule when empty
	Logger        *slog.Logger // slog.Default() when nil
}

// Registry owns every module under one mods root. Load and ExecuteClone take
// the registry exclusively; every other operation may run concurrently with
// the rest.
type Registry struct {
	mu            sync.RWMutex
	root          string
	defaultModule string
	logger        *slog.Logger
	closed        bool

	modules []*Module
	byName  map[string]*Module
	byDir   map[string]*Module
	records map[string]Record

	aggregates *gocache.Cache
	scans      atomic.Int64

	errMu  sync.Mutex
	errors []RecordError
}

// New creates an empty registry. Call Load to populate it.
func New(cfg Config) (*Registry, error) {
	if cfg.ModsRoot == "" {
		return nil, errors.New("mods root is required")
	}
	root, err := filepath.Abs(cfg.ModsRoot)
	if err != nil {
		return nil, fmt.Errorf("resolving mods root: %w", err)
	}

	r := &Registry{
		root:          filepath.Clean(root),
		defaultModule: cfg.DefaultModule,
		logger:        cfg.Logger,
		aggregates:    gocache.New(gocache.NoExpiration, 0),
	}
	if r.defaultModule == "" {
		r.defaultModule = DefaultModule
	}
	if r.logger == nil {
		r.logger = slog.Default()
	}
	r.reset()
	return r, nil
}

// ModsRoot returns the absolute mods root.
func (r *Registry) ModsRoot() string { return r.root }

// Load discovers every module under the mods root and builds the graph:
// modules read their manifests, then load their records, then resolve
// references. A StructuralError aborts the load and leaves the registry
// partially populated.
func (r *Registry) Load() error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.closed {
		return ErrClosed
	}
	r.reset()

	entries, err := os.ReadDir(r.root)
	if err != nil {
		return fmt.Errorf("reading mods root: %w", err)
	}
	sort.Slice(entries, func(i, j int) bool { return entries[i].Name() < entries[j].Name() })

	for _, entry := range entries {
		if !entry.IsDir() || strings.HasPrefix(entry.Name(), ".") {
			continue
		}
		m := newModule(r, filepath.Join(r.root, entry.Name()))
		if err := m.InitializeFromManifest(); err != nil {
			return err
		}
		if prev, ok := r.byName[m.name]; ok {
			return &StructuralError{
				Module: m.name,
				Path:   m.path,
				Err:    fmt.Errorf("%w: also declared by %s", ErrDuplicateModule, prev.path),
			}
		}
		r.byName[m.name] = m
		r.byDir[entry.Name()] = m
		r.modules = append(r.modules, m)
		r.logger.Debug("module discovered", "module", m.name, "path", m.path)
	}

	for _, m := range r.modules {
		if err := m.LoadFiles(); err != nil {
			return err
		}
	}
	for _, m := range r.modules {
		m.PostLoadFixup()
	}

	r.logger.Debug("registry loaded", "modules", len(r.modules), "records", len(r.records))
	return nil
}

// Close tears the registry down. Every later Load or clone fails with
// ErrClosed and lookups find nothing.
func (r *Registry) Close() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.reset()
	r.closed = true
}

// reset drops the graph, the aggregate cache and the error records.
func (r *Registry) reset() {
	r.modules = nil
	r.byName = make(map[string]*Module)
	r.byDir = make(map[string]*Module)
	r.records = make(map[string]Record)
	r.aggregates.Flush()

	r.errMu.Lock()
	r.errors = nil
	r.errMu.Unlock()
}

// Modules returns the modules in directory order.
func (r *Registry) Modules() []*Module {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]*Module, len(r.modules))
	copy(out, r.modules)
	return out
}

// Module returns the named module, or nil.
func (r *Registry) Module(name string) *Module {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.byName[name]
}

// moduleByDir finds a module by its directory name under the mods root.
func (r *Registry) moduleByDir(dir string) *Module {
	return r.byDir[dir]
}

// relToRoot returns the slash path of abs relative to the mods root, or false
// when abs lies outside it.
func (r *Registry) relToRoot(abs string) (string, bool) {
	rel, err := filepath.Rel(r.root, abs)
	if err != nil || rel == "." || rel == ".." || strings.HasPrefix(rel, ".."+string(filepath.Separator)) {
		return "", false
	}
	return filepath.ToSlash(rel), true
}

// recordFor returns the record for an absolute path, loading it on first
// use. Each path is loaded once per registry. A load failure is kept in the
// error records and the record is returned anyway. Paths outside the mods
// root give nil.
func (r *Registry) recordFor(abs string) Record {
	abs = filepath.Clean(abs)
	if rec, ok := r.records[abs]; ok {
		return rec
	}
	id, ok := r.relToRoot(abs)
	if !ok {
		return nil
	}

	rec := newRecord(r, abs, id)
	r.records[abs] = rec
	if err := rec.Load(); err != nil {
		r.logger.Warn("record failed to load", "record", id, "error", err)
		r.AddErrorRecord(rec, err)
	}
	return rec
}

// fixupRecord resolves a record's references once.
func (r *Registry) fixupRecord(rec Record) {
	b := rec.base()
	if b.fixedUp {
		return
	}
	b.fixedUp = true
	rec.fixup(r)
}

// AddErrorRecord remembers a record whose loader reported err. A record is
// kept once; later reports for it are ignored.
func (r *Registry) AddErrorRecord(rec Record, err error) {
	r.errMu.Lock()
	defer r.errMu.Unlock()
	for _, e := range r.errors {
		if e.Record == rec {
			return
		}
	}
	r.errors = append(r.errors, RecordError{Record: rec, Err: err})
}

// ErrorRecords returns the records that failed to load, in load order.
func (r *Registry) ErrorRecords() []RecordError {
	r.errMu.Lock()
	defer r.errMu.Unlock()
	out := make([]RecordError, len(r.errors))
	copy(out, r.errors)
	return out
}

// HasErrors reports whether any record failed to load.
func (r *Registry) HasErrors() bool {
	r.errMu.Lock()
	defer r.errMu.Unlock()
	return len(r.errors) > 0
}
