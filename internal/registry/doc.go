// Package registry indexes content modules and the records they expose, and
// runs the operations that need the whole graph at once.
//
// A Registry owns every Module found under a mods root. Each Module reads its
// manifest and wraps every alias in a Container holding one or more Records.
// Records come in a closed set of kinds (JSON documents, models with optional
// companion files, opaque assets). After all modules are loaded a fixup pass
// resolves the references records make to each other, across module
// boundaries, through "module:alias" and relative path forms.
//
// On top of that graph the package resolves references, previews and executes
// deep clones with identifier rewriting, computes cached aggregates over record
// data, answers localization lookups and filters modules for listing UIs.
//
// Lifecycle is explicit: New, Load, use, Close. Load and ExecuteClone take the
// registry exclusively; resolve, preview, plan and aggregate calls may run
// concurrently with each other.
package registry
