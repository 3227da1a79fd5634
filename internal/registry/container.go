package registry

import (
	"path/filepath"
	"strings"
)

// Container is an alias-addressable unit within a module. It wraps one or
// more records that represent the same entity.
type Container struct {
	alias   string
	section string
	module  *Module
	records []Record
}

// ID returns the fully qualified alias, "module:alias".
func (c *Container) ID() string { return c.module.name + ":" + c.alias }

func (c *Container) Alias() string   { return c.alias }
func (c *Container) Section() string { return c.section }
func (c *Container) Module() *Module { return c.module }

// Records returns the wrapped records in manifest order.
func (c *Container) Records() []Record { return c.records }

// Primary returns the first record, or nil for a container whose paths all
// failed to resolve.
func (c *Container) Primary() Record {
	if len(c.records) == 0 {
		return nil
	}
	return c.records[0]
}

// GetRecord picks a record by trailing path segments. No segments selects the
// primary record; otherwise the last segment must match a record's file name,
// with or without extension.
func (c *Container) GetRecord(segments ...string) Record {
	if len(segments) == 0 {
		return c.Primary()
	}
	want := segments[len(segments)-1]
	for _, rec := range c.records {
		name := filepath.Base(rec.Path())
		if name == want || strings.TrimSuffix(name, filepath.Ext(name)) == want {
			return rec
		}
	}
	return nil
}

// attach takes ownership of rec and makes it related to every sibling.
func (c *Container) attach(rec Record) {
	for _, existing := range c.records {
		if existing == rec {
			return
		}
	}
	if rec.Container() == nil {
		rec.base().container = c
	}
	for _, sibling := range c.records {
		sibling.base().addRelated(rec)
		rec.base().addRelated(sibling)
	}
	c.records = append(c.records, rec)
}
