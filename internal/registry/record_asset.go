package registry

import (
	"os"
	"path/filepath"
	"strings"
)

// AssetRecord stands for a file whose content the registry never reads:
// models, scripts, textures, sounds. Only its linkage is tracked. A model
// links its companion file (door.qb -> door.qmo) when one sits next to it.
type AssetRecord struct {
	recordBase
	kind Kind
}

func (a *AssetRecord) Kind() Kind { return a.kind }

// Load probes for a companion file. A missing companion is not an error.
func (a *AssetRecord) Load() error {
	ext := strings.ToLower(filepath.Ext(a.path))
	companionExt, ok := modelCompanions[ext]
	if !ok {
		return nil
	}

	companion := strings.TrimSuffix(a.path, filepath.Ext(a.path)) + companionExt
	info, err := os.Stat(companion)
	if err != nil || info.IsDir() {
		return nil
	}

	rec := a.reg.recordFor(companion)
	if rec == nil {
		return nil
	}
	a.addLinked(rec)
	rec.base().addLinkedBy(a)
	return nil
}

func (a *AssetRecord) DerivedValue() int { return 0 }

func (a *AssetRecord) Tags() []string { return nil }

func (a *AssetRecord) fixup(*Registry) {}

func (a *AssetRecord) materialize(dst string, w *cloneWalk) error {
	return copyFile(a.path, dst)
}
