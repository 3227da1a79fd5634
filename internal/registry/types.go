package registry

// Kind distinguishes the record variants.
type Kind int

const (
	KindJSON  Kind = iota // structured document
	KindModel             // binary model, may carry a companion file
	KindAsset             // any other file, tracked for linkage only
)

func (k Kind) String() string {
	switch k {
	case KindJSON:
		return "json"
	case KindModel:
		return "model"
	case KindAsset:
		return "asset"
	default:
		return "unknown"
	}
}

// Target is anything a clone can start from: a *Container or a Record.
type Target interface {
	ID() string
}

// Visited is the set of identifiers handled by one closure walk. It keeps
// insertion order so previews print the way the walk discovered them.
type Visited struct {
	order []string
	set   map[string]struct{}
}

// NewVisited returns an empty set.
func NewVisited() *Visited {
	return &Visited{set: make(map[string]struct{})}
}

// Add inserts id and reports whether it was new.
func (v *Visited) Add(id string) bool {
	if _, ok := v.set[id]; ok {
		return false
	}
	v.set[id] = struct{}{}
	v.order = append(v.order, id)
	return true
}

// Contains reports whether id is in the set.
func (v *Visited) Contains(id string) bool {
	_, ok := v.set[id]
	return ok
}

// Len returns the number of identifiers.
func (v *Visited) Len() int { return len(v.order) }

// List returns the identifiers in insertion order.
func (v *Visited) List() []string {
	out := make([]string, len(v.order))
	copy(out, v.order)
	return out
}

// PlanNode is one step of a clone walk.
type PlanNode struct {
	ID       string // identifier before the rewrite
	NewID    string // identifier after the rewrite
	Kind     string // "alias" or a record kind
	Shared   bool   // rewrite leaves it unchanged, so it is referenced, not cloned
	Deduped  bool   // already handled earlier in the same walk
	Children []*PlanNode
}

// ClonePlan is the outcome of a preview walk.
type ClonePlan struct {
	Root    *PlanNode
	Visited *Visited
}

// RecordDiff shows how a JSON record's content changes when cloned.
type RecordDiff struct {
	ID      string
	NewID   string
	Changed bool
	Diff    string
}

// NodeKind labels a level of the filtered module tree.
type NodeKind string

const (
	NodeModule  NodeKind = "module"
	NodeSection NodeKind = "section"
	NodeAlias   NodeKind = "alias"
	NodeRecord  NodeKind = "record"
)

// TreeNode is one entry of the filtered module tree.
type TreeNode struct {
	Name     string      `json:"name"`
	Kind     NodeKind    `json:"kind"`
	ID       string      `json:"id"`
	Children []*TreeNode `json:"children,omitempty"`
}
