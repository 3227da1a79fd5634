//go:build integration

package integration_test

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/agentx-labs/modgraph/internal/manifest"
	"github.com/agentx-labs/modgraph/internal/registry"
	"github.com/google/go-cmp/cmp"
)

// TestFullFlowPreviewCloneReload tests the complete flow:
// validate manifests -> load -> preview -> clone -> reload -> query the clones.
func TestFullFlowPreviewCloneReload(t *testing.T) {
	env := setupTestEnv(t)
	setupMods(t, env.ModsRoot)

	// Step 1: Every fixture manifest is valid.
	for _, mod := range []string{"base", "furniture", "addon"} {
		path, err := manifest.Find(filepath.Join(env.ModsRoot, mod))
		if err != nil {
			t.Fatalf("Find(%s): %v", mod, err)
		}
		result, err := manifest.ValidateFile(path)
		if err != nil {
			t.Fatalf("ValidateFile(%s): %v", path, err)
		}
		if !result.Valid {
			t.Errorf("%s invalid: %+v", path, result.Issues)
		}
	}

	// Step 2: Load.
	reg := loadRegistry(t, env.ModsRoot)
	if reg.HasErrors() {
		t.Fatalf("load errors: %v", reg.ErrorRecords())
	}
	window, err := reg.ResolveContainer("addon:window")
	if err != nil {
		t.Fatalf("ResolveContainer: %v", err)
	}

	// Step 3: Preview touches nothing on disk.
	params := registry.Prefix("clone_")
	preview, err := reg.PreviewClone(window, params)
	if err != nil {
		t.Fatalf("PreviewClone: %v", err)
	}
	assertNotExists(t, filepath.Join(env.ModsRoot, "addon", "clone_window.json"))

	// Step 4: Execute visits the same identifiers.
	seen := registry.NewVisited()
	if err := reg.ExecuteClone(window, params, seen); err != nil {
		t.Fatalf("ExecuteClone: %v", err)
	}
	if diff := cmp.Diff(preview.List(), seen.List()); diff != "" {
		t.Errorf("preview and execute differ (-preview +execute):\n%s", diff)
	}
	for _, rel := range []string{
		"addon/clone_window.json",
		"base/clone_door.json",
		"base/models/clone_door.qb",
		"base/models/clone_door.qmo",
	} {
		assertFileExists(t, filepath.Join(env.ModsRoot, filepath.FromSlash(rel)))
	}

	// Step 5: A fresh registry sees the clones through the edited manifests.
	fresh := loadRegistry(t, env.ModsRoot)
	door, err := fresh.ResolveContainer("base:clone_door")
	if err != nil {
		t.Fatalf("cloned alias not registered: %v", err)
	}
	model := door.Primary().Linked()
	if len(model) != 1 || model[0].ID() != "base/models/clone_door.qb" {
		t.Errorf("cloned door links %v", model)
	}
	found, c := fresh.ResolveReference("file(clone_window.json)", filepath.Join(env.ModsRoot, "addon"))
	if !found || c == nil || c.ID() != "addon:clone_window" {
		t.Errorf("ResolveReference = %v, %v", found, c)
	}
	if got := fresh.LocalizeString("door.display_name"); got != "Wooden Door" {
		t.Errorf("LocalizeString = %q", got)
	}
	// door, chair, table and two cloned-or-original doors carry "wood".
	if got := fresh.AverageDerivedValue("wood"); got != (12+4+20+12)/4 {
		t.Errorf("AverageDerivedValue(wood) = %d", got)
	}
}

// TestCloneMultiRepresentationAcrossModules clones an alias with two records
// whose JSON side depends on another module and is referenced by path.
func TestCloneMultiRepresentationAcrossModules(t *testing.T) {
	env := setupTestEnv(t)
	setupMods(t, env.ModsRoot)
	reg := loadRegistry(t, env.ModsRoot)

	table, err := reg.ResolveContainer("furniture:table")
	if err != nil {
		t.Fatal(err)
	}
	seen := registry.NewVisited()
	if err := reg.ExecuteClone(table, registry.Replace("table", "desk", "chair", "stool"), seen); err != nil {
		t.Fatalf("ExecuteClone: %v", err)
	}

	want := []string{
		"furniture:desk",
		"furniture/desk.qb",
		"furniture/desk.json",
		"base:stool",
		"base/stool/stool.json",
	}
	if diff := cmp.Diff(want, seen.List()); diff != "" {
		t.Errorf("closure (-want +got):\n%s", diff)
	}

	desk := readFile(t, filepath.Join(env.ModsRoot, "furniture", "desk.json"))
	if !strings.Contains(desk, `"seat": "base:stool"`) {
		t.Errorf("desk.json should reference the cloned stool:\n%s", desk)
	}

	m, err := manifest.ParseFile(filepath.Join(env.ModsRoot, "furniture", "manifest.json"))
	if err != nil {
		t.Fatal(err)
	}
	last := m.Aliases[len(m.Aliases)-1]
	if last.Alias != "desk" || len(last.Paths) != 2 {
		t.Errorf("registered alias = %+v", last)
	}
}

// TestRootAbsoluteReferenceSurvivesClone checks that a "/module/path"
// reference keeps its form when the target is cloned too.
func TestRootAbsoluteReferenceSurvivesClone(t *testing.T) {
	env := setupTestEnv(t)
	setupMods(t, env.ModsRoot)
	reg := loadRegistry(t, env.ModsRoot)

	lamp, err := reg.ResolveContainer("furniture:lamp")
	if err != nil {
		t.Fatal(err)
	}
	if err := reg.ExecuteClone(lamp, registry.Prefix("new_"), nil); err != nil {
		t.Fatalf("ExecuteClone: %v", err)
	}

	got := readFile(t, filepath.Join(env.ModsRoot, "furniture", "new_lamp.json"))
	if !strings.Contains(got, `"model": "/base/models/new_door.qb"`) {
		t.Errorf("new_lamp.json:\n%s", got)
	}
	assertFileExists(t, filepath.Join(env.ModsRoot, "base", "models", "new_door.qmo"))
	if _, err := os.Stat(filepath.Join(env.ModsRoot, "base", "new_door.json")); err == nil {
		t.Error("door.json is not reachable from the lamp and should not be cloned")
	}
}
