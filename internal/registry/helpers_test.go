package registry

import (
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"testing"
)

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
}

func readFile(t *testing.T, path string) string {
	t.Helper()
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	return string(data)
}

func fileExists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}

func quietLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// loadRegistry builds and loads a registry over root, closing it when the
// test ends.
func loadRegistry(t *testing.T, root string) *Registry {
	t.Helper()
	reg, err := New(Config{ModsRoot: root, Logger: quietLogger()})
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	t.Cleanup(reg.Close)
	if err := reg.Load(); err != nil {
		t.Fatalf("Load: %v", err)
	}
	return reg
}

// writeSampleMods lays out two modules:
//
//	base:  door -> door.json (links models/door.qb), door_model -> models/door.qb
//	       (companion door.qmo), component door_logic -> door_logic.lua,
//	       locales/en.json
//	addon: window -> window.json (depends on base:door), YAML manifest
func writeSampleMods(t *testing.T) string {
	t.Helper()
	root := t.TempDir()

	writeFile(t, filepath.Join(root, "base", "manifest.json"), `{
  // the base module
  "info": {"name": "base", "version": "1.0.0"},
  "aliases": {
    "door": "file(door.json)",
    "door_model": "file(models/door.qb)"
  },
  "components": {
    "door_logic": "file(door_logic.lua)"
  }
}
`)
	writeFile(t, filepath.Join(root, "base", "door.json"), `{
  "type": "entity",
  "components": {
    "model": "file(models/door.qb)",
    "material": {
      "tags": "wood door"
    }
  },
  "entity_data": {
    "net_worth": {
      "value_in_gold": 10
    }
  }
}
`)
	writeFile(t, filepath.Join(root, "base", "models", "door.qb"), "QB\x00\x01")
	writeFile(t, filepath.Join(root, "base", "models", "door.qmo"), "QMO\x00")
	writeFile(t, filepath.Join(root, "base", "door_logic.lua"), "return {}\n")
	writeFile(t, filepath.Join(root, "base", "locales", "en.json"), `{"door": {"name": "Door", "count": 3}}`)

	writeFile(t, filepath.Join(root, "addon", "manifest.yaml"), `# addon module
info:
  name: addon
aliases:
  window: file(window.json)
`)
	writeFile(t, filepath.Join(root, "addon", "window.json"), `{
  "type": "entity",
  "parent": "base:door",
  "components": {
    "material": {
      "tags": "wood window"
    }
  },
  "entity_data": {
    "net_worth": {
      "value_in_gold": 20
    }
  }
}
`)
	return root
}

func mustContainer(t *testing.T, reg *Registry, id string) *Container {
	t.Helper()
	c, err := reg.ResolveContainer(id)
	if err != nil {
		t.Fatalf("ResolveContainer(%q): %v", id, err)
	}
	return c
}
