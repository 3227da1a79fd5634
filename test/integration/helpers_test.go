//go:build integration

package integration_test

import (
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"testing"

	"github.com/agentx-labs/modgraph/internal/registry"
)

// testEnv holds paths to isolated test directories.
type testEnv struct {
	HomeDir  string // HOME, so no user config leaks in
	ModsRoot string // mods root with every fixture module
}

// setupTestEnv creates isolated temp directories and points HOME at one of
// them. The environment is restored after the test.
func setupTestEnv(t *testing.T) *testEnv {
	t.Helper()

	env := &testEnv{
		HomeDir:  t.TempDir(),
		ModsRoot: t.TempDir(),
	}
	t.Setenv("HOME", env.HomeDir)
	return env
}

// setupMods lays out three modules that exercise every reference form:
//
//	base:      door (JSON linking a model), door_model (.qb with .qmo companion),
//	           chair (directory form), a JSONC manifest and an English locale
//	furniture: table (two representations), lamp (root-absolute file reference)
//	addon:     window depending on base:door, YAML manifest
func setupMods(t *testing.T, root string) {
	t.Helper()

	writeFile(t, filepath.Join(root, "base", "manifest.jsonc"), `{
  // shared building blocks
  "info": {"name": "base", "version": "1.0.0", "description": "Base content"},
  "default_locale": "en",
  "aliases": {
    "door": "file(door.json)",
    "door_model": "file(models/door.qb)",
    "chair": "file(chair)",
  },
  "components": {
    "door_logic": "file(scripts/door_logic.lua)"
  }
}
`)
	writeFile(t, filepath.Join(root, "base", "door.json"), `{
  "type": "entity",
  "components": {
    "model": "file(models/door.qb)",
    "material": {"tags": "wood door"}
  },
  "entity_data": {"net_worth": {"value_in_gold": 12}}
}
`)
	writeFile(t, filepath.Join(root, "base", "models", "door.qb"), "QB-door")
	writeFile(t, filepath.Join(root, "base", "models", "door.qmo"), "QMO-door")
	writeFile(t, filepath.Join(root, "base", "chair", "chair.json"), `{
  "type": "entity",
  "components": {"material": {"tags": "wood chair"}},
  "entity_data": {"net_worth": {"value_in_gold": 4}}
}
`)
	writeFile(t, filepath.Join(root, "base", "scripts", "door_logic.lua"), "return {}\n")
	writeFile(t, filepath.Join(root, "base", "locales", "en.json"), `{"door": {"display_name": "Wooden Door"}}`)

	writeFile(t, filepath.Join(root, "furniture", "manifest.json"), `{
  "info": {"name": "furniture", "version": "0.3.0"},
  "aliases": {
    "table": ["file(table.qb)", "file(table.json)"],
    "lamp": "file(lamp.json)"
  }
}
`)
	writeFile(t, filepath.Join(root, "furniture", "table.qb"), "QB-table")
	writeFile(t, filepath.Join(root, "furniture", "table.json"), `{
  "type": "entity",
  "seat": "base:chair",
  "components": {"material": {"tags": "wood table"}},
  "entity_data": {"net_worth": {"value_in_gold": 20}}
}
`)
	writeFile(t, filepath.Join(root, "furniture", "lamp.json"), `{
  "type": "entity",
  "model": "/base/models/door.qb"
}
`)

	writeFile(t, filepath.Join(root, "addon", "manifest.yaml"), `# addon module
info:
  name: addon
aliases:
  window: file(window.json)
`)
	writeFile(t, filepath.Join(root, "addon", "window.json"), `{
  "type": "entity",
  "parent": "base:door",
  "components": {"material": {"tags": "glass window"}},
  "entity_data": {"net_worth": {"value_in_gold": 30}}
}
`)
}

func loadRegistry(t *testing.T, root string) *registry.Registry {
	t.Helper()
	reg, err := registry.New(registry.Config{
		ModsRoot: root,
		Logger:   slog.New(slog.NewTextHandler(io.Discard, nil)),
	})
	if err != nil {
		t.Fatalf("registry.New: %v", err)
	}
	t.Cleanup(reg.Close)
	if err := reg.Load(); err != nil {
		t.Fatalf("Load: %v", err)
	}
	return reg
}

// writeFile creates a file with the given content, creating parent directories.
func writeFile(t *testing.T, path, content string) {
	t.Helper()
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		t.Fatalf("creating dir for %s: %v", path, err)
	}
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatalf("writing %s: %v", path, err)
	}
}

func readFile(t *testing.T, path string) string {
	t.Helper()
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("reading %s: %v", path, err)
	}
	return string(data)
}

// assertFileExists fails the test if the path does not exist.
func assertFileExists(t *testing.T, path string) {
	t.Helper()
	if _, err := os.Stat(path); err != nil {
		t.Errorf("expected file to exist: %s", path)
	}
}

// assertNotExists fails the test if the path exists.
func assertNotExists(t *testing.T, path string) {
	t.Helper()
	if _, err := os.Stat(path); err == nil {
		t.Errorf("expected path to not exist: %s", path)
	}
}
