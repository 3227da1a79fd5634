package registry

import (
	"errors"
	"fmt"
)

var (
	// ErrManifestMissing means a module directory has no manifest file.
	ErrManifestMissing = errors.New("manifest missing")
	// ErrManifestInvalid means a manifest exists but could not be parsed.
	ErrManifestInvalid = errors.New("manifest invalid")
	// ErrDuplicateModule means two module directories declare the same name.
	ErrDuplicateModule = errors.New("duplicate module name")
	// ErrNotFound is returned by lookups that report absence as an error.
	ErrNotFound = errors.New("not found")
	// ErrCloneFailed matches every *CloneError.
	ErrCloneFailed = errors.New("clone failed")
	// ErrAliasExists means a clone would register an alias its module already has.
	ErrAliasExists = errors.New("alias already exists")
	// ErrCloneUnchanged means the rewrite leaves the clone target's identifier as is.
	ErrCloneUnchanged = errors.New("rewrite does not change identifier")
	// ErrDestinationExists means a clone would overwrite an existing file.
	ErrDestinationExists = errors.New("destination already exists")
	// ErrClosed is returned by operations on a registry after Close.
	ErrClosed = errors.New("registry closed")
)

// StructuralError reports a problem with the module layout that aborts Load.
type StructuralError struct {
	Module string // module name, empty when the manifest could not be read
	Path   string // module directory
	Err    error
}

func (e *StructuralError) Error() string {
	if e.Module != "" {
		return fmt.Sprintf("module %s (%s): %v", e.Module, e.Path, e.Err)
	}
	return fmt.Sprintf("module at %s: %v", e.Path, e.Err)
}

func (e *StructuralError) Unwrap() error { return e.Err }

// CloneError reports the entity whose clone step failed. Entities written
// before the failure stay on disk.
type CloneError struct {
	ID  string
	Err error
}

func (e *CloneError) Error() string {
	return fmt.Sprintf("cloning %s: %v", e.ID, e.Err)
}

func (e *CloneError) Unwrap() error { return e.Err }

// Is makes every CloneError match ErrCloneFailed.
func (e *CloneError) Is(target error) bool { return target == ErrCloneFailed }

// RecordError pairs a record with the error its loader reported.
type RecordError struct {
	Record Record
	Err    error
}
