package registry

import (
	"path/filepath"
	"strings"
)

// Record is a single loadable content unit. The set of implementations is
// closed: *JSONRecord and *AssetRecord.
type Record interface {
	Target

	// Path returns the absolute file path.
	Path() string
	Kind() Kind
	// Load reads whatever in-memory state the kind needs.
	Load() error
	// Linked returns records this one owns, discovered while loading or
	// resolving references, in discovery order.
	Linked() []Record
	// Related returns sibling representations of the same entity.
	Related() []Record
	// LinkedBy returns the records that link to this one.
	LinkedBy() []Record
	// Container returns the owning container, or nil for records reachable
	// only through another record.
	Container() *Container
	// DerivedValue returns the aggregate input value, 0 when the kind has none.
	DerivedValue() int
	// Tags returns the aggregate tag set, nil when the kind has none.
	Tags() []string

	base() *recordBase
	fixup(r *Registry)
	materialize(dst string, w *cloneWalk) error
}

// modelCompanions maps a model extension to the extension of its companion.
var modelCompanions = map[string]string{
	".qb": ".qmo",
}

// newRecord picks the record kind from the file extension.
func newRecord(reg *Registry, path, id string) Record {
	b := recordBase{reg: reg, path: path, id: id}
	switch ext := strings.ToLower(filepath.Ext(path)); ext {
	case ".json":
		return &JSONRecord{recordBase: b}
	case ".qb", ".qmo":
		return &AssetRecord{recordBase: b, kind: KindModel}
	default:
		return &AssetRecord{recordBase: b, kind: KindAsset}
	}
}

// isRecordExtension reports whether a string ends in an extension records are
// commonly stored under. Used to spot bare file references in JSON content.
func isRecordExtension(s string) bool {
	switch strings.ToLower(filepath.Ext(s)) {
	case ".json", ".qb", ".qmo", ".lua", ".png", ".ogg", ".wav", ".txt", ".yaml":
		return true
	}
	return false
}

type recordBase struct {
	reg       *Registry
	path      string
	id        string
	container *Container
	linked    []Record
	linkedIdx map[string]Record
	related   []Record
	linkedBy  []Record
	fixedUp   bool
}

func (b *recordBase) Path() string          { return b.path }
func (b *recordBase) ID() string            { return b.id }
func (b *recordBase) Container() *Container { return b.container }
func (b *recordBase) Linked() []Record      { return b.linked }
func (b *recordBase) Related() []Record     { return b.related }
func (b *recordBase) LinkedBy() []Record    { return b.linkedBy }
func (b *recordBase) base() *recordBase     { return b }

// addLinked records rec as owned, once per path.
func (b *recordBase) addLinked(rec Record) {
	if b.linkedIdx == nil {
		b.linkedIdx = make(map[string]Record)
	}
	if _, ok := b.linkedIdx[rec.Path()]; ok {
		return
	}
	b.linkedIdx[rec.Path()] = rec
	b.linked = append(b.linked, rec)
}

func (b *recordBase) addRelated(rec Record) {
	for _, r := range b.related {
		if r == rec {
			return
		}
	}
	b.related = append(b.related, rec)
}

func (b *recordBase) addLinkedBy(rec Record) {
	for _, r := range b.linkedBy {
		if r == rec {
			return
		}
	}
	b.linkedBy = append(b.linkedBy, rec)
}
