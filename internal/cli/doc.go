// Package cli defines the Cobra command tree for the modgraph CLI. Each file
// in this package registers one top-level command (modules, resolve, clone,
// etc.) with the root command. Command implementations delegate to
// internal/registry and internal/manifest and only handle flag parsing, I/O
// formatting, and user interaction.
package cli
