// Package manifest handles the per-module manifest file: locating it in a
// module directory, parsing it from JSON, JSONC or YAML, validating it against
// the embedded JSON schema, and inserting new aliases into it without
// disturbing the rest of the document.
package manifest
