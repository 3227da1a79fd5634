package registry

import (
	"bytes"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/agentx-labs/modgraph/internal/manifest"
	"github.com/google/go-cmp/cmp"
	"pgregory.net/rapid"
)

func TestTransform(t *testing.T) {
	tests := []struct {
		name   string
		params CloneParameters
		in     string
		want   string
	}{
		{"prefix alias", Prefix("clone_"), "base:door", "base:clone_door"},
		{"prefix record", Prefix("clone_"), "base/models/door.qb", "base/models/clone_door.qb"},
		{"replace ordered", Replace("door", "gate", "gate", "portal"), "base:door", "base:portal"},
		{"replace odd pair ignored", Replace("door", "gate", "stray"), "base:door", "base:gate"},
		{"empty from ignored", Replace("", "x"), "base:door", "base:door"},
		{"func wins", CloneParameters{Func: strings.ToUpper, Replacements: []Replacement{{"door", "x"}}}, "a:door", "A:DOOR"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.params.Transform(tt.in); got != tt.want {
				t.Errorf("Transform(%q) = %q, want %q", tt.in, got, tt.want)
			}
		})
	}
}

var sampleClosure = []string{
	"addon:clone_window",
	"addon/clone_window.json",
	"base:clone_door",
	"base/clone_door.json",
	"base:clone_door_model",
	"base/models/clone_door.qb",
	"base/models/clone_door.qmo",
}

func TestPreviewCloneAcrossModules(t *testing.T) {
	root := writeSampleMods(t)
	reg := loadRegistry(t, root)

	visited, err := reg.PreviewClone(mustContainer(t, reg, "addon:window"), Prefix("clone_"))
	if err != nil {
		t.Fatalf("PreviewClone: %v", err)
	}
	if diff := cmp.Diff(sampleClosure, visited.List()); diff != "" {
		t.Errorf("preview closure (-want +got):\n%s", diff)
	}
	if fileExists(filepath.Join(root, "addon", "clone_window.json")) {
		t.Error("preview must not write files")
	}
}

func TestExecuteCloneAcrossModules(t *testing.T) {
	root := writeSampleMods(t)
	reg := loadRegistry(t, root)
	originalDoor := readFile(t, filepath.Join(root, "base", "door.json"))
	originalWindow := readFile(t, filepath.Join(root, "addon", "window.json"))

	seen := NewVisited()
	if err := reg.ExecuteClone(mustContainer(t, reg, "addon:window"), Prefix("clone_"), seen); err != nil {
		t.Fatalf("ExecuteClone: %v", err)
	}
	if diff := cmp.Diff(sampleClosure, seen.List()); diff != "" {
		t.Errorf("execute closure (-want +got):\n%s", diff)
	}

	for _, rel := range []string{"addon/clone_window.json", "base/clone_door.json", "base/models/clone_door.qb", "base/models/clone_door.qmo"} {
		if !fileExists(filepath.Join(root, filepath.FromSlash(rel))) {
			t.Errorf("%s was not written", rel)
		}
	}
	if got := readFile(t, filepath.Join(root, "base", "door.json")); got != originalDoor {
		t.Error("original door.json changed")
	}
	if got := readFile(t, filepath.Join(root, "addon", "window.json")); got != originalWindow {
		t.Error("original window.json changed")
	}

	window := readFile(t, filepath.Join(root, "addon", "clone_window.json"))
	if !strings.Contains(window, `"parent": "base:clone_door"`) {
		t.Errorf("clone_window.json should point at the cloned door:\n%s", window)
	}
	door := readFile(t, filepath.Join(root, "base", "clone_door.json"))
	if !strings.Contains(door, `"model": "file(models/clone_door.qb)"`) {
		t.Errorf("clone_door.json should point at the cloned model:\n%s", door)
	}
	if got := readFile(t, filepath.Join(root, "base", "models", "clone_door.qb")); got != "QB\x00\x01" {
		t.Errorf("model bytes = %q", got)
	}
}

func TestExecuteCloneRegistersAliases(t *testing.T) {
	root := writeSampleMods(t)
	reg := loadRegistry(t, root)

	if err := reg.ExecuteClone(mustContainer(t, reg, "addon:window"), Prefix("clone_"), nil); err != nil {
		t.Fatalf("ExecuteClone: %v", err)
	}

	door := mustContainer(t, reg, "base:clone_door")
	model := mustContainer(t, reg, "base:clone_door_model").Primary()
	if rec := door.Primary(); len(rec.Linked()) != 1 || rec.Linked()[0] != model {
		t.Errorf("cloned door should link the cloned model, got %v", rec.Linked())
	}
	if len(model.Linked()) != 1 || model.Linked()[0].ID() != "base/models/clone_door.qmo" {
		t.Errorf("cloned model companion = %v", model.Linked())
	}
	window := mustContainer(t, reg, "addon:clone_window").Primary().(*JSONRecord)
	if deps := window.Dependencies(); len(deps) != 1 || deps[0] != door {
		t.Errorf("cloned window dependencies = %v", deps)
	}

	addon, err := manifest.ParseFile(filepath.Join(root, "addon", "manifest.yaml"))
	if err != nil {
		t.Fatal(err)
	}
	if len(addon.Aliases) != 2 || addon.Aliases[1].Alias != "clone_window" || addon.Aliases[1].Paths[0] != "file(clone_window.json)" {
		t.Errorf("addon manifest aliases = %+v", addon.Aliases)
	}
	base, err := manifest.ParseFile(filepath.Join(root, "base", "manifest.json"))
	if err != nil {
		t.Fatal(err)
	}
	var aliases []string
	for _, e := range base.Aliases {
		aliases = append(aliases, e.Alias)
	}
	if diff := cmp.Diff([]string{"door", "door_model", "clone_door_model", "clone_door"}, aliases); diff != "" {
		t.Errorf("base manifest aliases (-want +got):\n%s", diff)
	}

	// A fresh load sees the same graph.
	if err := reg.Load(); err != nil {
		t.Fatalf("reload: %v", err)
	}
	mustContainer(t, reg, "addon:clone_window")
	mustContainer(t, reg, "base:clone_door")
}

func TestCloneSharesUnchangedDependencies(t *testing.T) {
	root := writeSampleMods(t)
	reg := loadRegistry(t, root)

	plan, err := reg.PlanClone(mustContainer(t, reg, "addon:window"), Replace("window", "pane"))
	if err != nil {
		t.Fatalf("PlanClone: %v", err)
	}
	if diff := cmp.Diff([]string{"addon:pane", "addon/pane.json"}, plan.Visited.List()); diff != "" {
		t.Errorf("closure (-want +got):\n%s", diff)
	}
	record := plan.Root.Children[0]
	if len(record.Children) != 1 || !record.Children[0].Shared || record.Children[0].ID != "base:door" {
		t.Errorf("base:door should be shared, got %+v", record.Children)
	}

	if err := reg.ExecuteClone(mustContainer(t, reg, "addon:window"), Replace("window", "pane"), nil); err != nil {
		t.Fatalf("ExecuteClone: %v", err)
	}
	pane := readFile(t, filepath.Join(root, "addon", "pane.json"))
	if !strings.Contains(pane, `"parent": "base:door"`) {
		t.Errorf("shared reference should be kept:\n%s", pane)
	}
}

func TestCloneRewriteContent(t *testing.T) {
	root := writeSampleMods(t)
	reg := loadRegistry(t, root)

	params := Replace("window", "pane")
	params.RewriteContent = true
	if err := reg.ExecuteClone(mustContainer(t, reg, "addon:window"), params, nil); err != nil {
		t.Fatalf("ExecuteClone: %v", err)
	}
	pane := readFile(t, filepath.Join(root, "addon", "pane.json"))
	if !strings.Contains(pane, `"tags": "wood pane"`) {
		t.Errorf("content should be rewritten:\n%s", pane)
	}
}

func TestCloneRecordTarget(t *testing.T) {
	root := writeSampleMods(t)
	reg := loadRegistry(t, root)

	owned := mustContainer(t, reg, "base:door").Primary()
	visited, err := reg.PreviewClone(owned, Prefix("x_"))
	if err != nil {
		t.Fatal(err)
	}
	if visited.List()[0] != "base:x_door" {
		t.Errorf("an owned record should clone its container, got %v", visited.List())
	}

	companion := mustContainer(t, reg, "base:door_model").Primary().Linked()[0]
	visited, err = reg.PreviewClone(companion, Prefix("x_"))
	if err != nil {
		t.Fatal(err)
	}
	if diff := cmp.Diff([]string{"base/models/x_door.qmo"}, visited.List()); diff != "" {
		t.Errorf("free record closure (-want +got):\n%s", diff)
	}
}

func TestCloneCycle(t *testing.T) {
	root := t.TempDir()
	writeFile(t, filepath.Join(root, "m", "manifest.json"), `{
  "info": {"name": "m"},
  "aliases": {"a": "file(a.json)", "b": "file(b.json)"}
}`)
	writeFile(t, filepath.Join(root, "m", "a.json"), `{"next": "m:b"}`)
	writeFile(t, filepath.Join(root, "m", "b.json"), `{"next": "m:a"}`)
	reg := loadRegistry(t, root)

	seen := NewVisited()
	if err := reg.ExecuteClone(mustContainer(t, reg, "m:a"), Prefix("c_"), seen); err != nil {
		t.Fatalf("ExecuteClone: %v", err)
	}
	want := []string{"m:c_a", "m/c_a.json", "m:c_b", "m/c_b.json"}
	if diff := cmp.Diff(want, seen.List()); diff != "" {
		t.Errorf("closure (-want +got):\n%s", diff)
	}
	if got := readFile(t, filepath.Join(root, "m", "c_b.json")); got != `{"next": "m:c_a"}` {
		t.Errorf("c_b.json = %s", got)
	}
}

func TestCloneKeepsReferenceToSharedContainerRecord(t *testing.T) {
	root := t.TempDir()
	writeFile(t, filepath.Join(root, "m", "manifest.json"), `{
  "info": {"name": "m"},
  "aliases": {"chair": "file(chair.json)", "furniture_model": "file(models/chair.qb)"}
}`)
	writeFile(t, filepath.Join(root, "m", "chair.json"), `{"model": "file(models/chair.qb)"}`)
	writeFile(t, filepath.Join(root, "m", "models", "chair.qb"), "QB\x00")
	reg := loadRegistry(t, root)

	seen := NewVisited()
	if err := reg.ExecuteClone(mustContainer(t, reg, "m:chair"), Replace("chair", "stool"), seen); err != nil {
		t.Fatalf("ExecuteClone: %v", err)
	}
	if diff := cmp.Diff([]string{"m:stool", "m/stool.json"}, seen.List()); diff != "" {
		t.Errorf("closure (-want +got):\n%s", diff)
	}
	if fileExists(filepath.Join(root, "m", "models", "stool.qb")) {
		t.Error("the model belongs to an unchanged alias and must not be copied")
	}
	if got := readFile(t, filepath.Join(root, "m", "stool.json")); got != `{"model": "file(models/chair.qb)"}` {
		t.Errorf("stool.json = %s, want the original model reference", got)
	}
}

func TestCloneFailures(t *testing.T) {
	root := writeSampleMods(t)
	reg := loadRegistry(t, root)
	door := mustContainer(t, reg, "base:door")

	tests := []struct {
		name   string
		params CloneParameters
		want   error
	}{
		{"unchanged", Replace("zzz", "y"), ErrCloneUnchanged},
		{"alias exists", Replace("door", "door_model"), ErrAliasExists},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := reg.ExecuteClone(door, tt.params, nil)
			if !errors.Is(err, tt.want) || !errors.Is(err, ErrCloneFailed) {
				t.Fatalf("ExecuteClone error = %v, want %v", err, tt.want)
			}
			var ce *CloneError
			if !errors.As(err, &ce) || ce.ID != "base:door" {
				t.Errorf("error should name base:door, got %v", err)
			}
		})
	}

	if _, err := reg.PreviewClone(door, Replace("base:", "addon:")); !errors.Is(err, ErrCloneFailed) {
		t.Errorf("moving across modules should fail, got %v", err)
	}
}

func TestCloneRefusesToOverwrite(t *testing.T) {
	root := writeSampleMods(t)
	writeFile(t, filepath.Join(root, "base", "models", "clone_door.qb"), "already here")
	reg := loadRegistry(t, root)

	err := reg.ExecuteClone(mustContainer(t, reg, "base:door"), Prefix("clone_"), nil)
	if !errors.Is(err, ErrDestinationExists) {
		t.Fatalf("ExecuteClone error = %v, want ErrDestinationExists", err)
	}
	if got := readFile(t, filepath.Join(root, "base", "models", "clone_door.qb")); got != "already here" {
		t.Error("existing file was overwritten")
	}
	// Writes before the failure stay.
	if !fileExists(filepath.Join(root, "base", "clone_door.json")) {
		t.Error("clone_door.json should remain after the failure")
	}
}

func TestCloneDiffs(t *testing.T) {
	root := writeSampleMods(t)
	reg := loadRegistry(t, root)

	diffs, err := reg.CloneDiffs(mustContainer(t, reg, "addon:window"), Prefix("clone_"))
	if err != nil {
		t.Fatalf("CloneDiffs: %v", err)
	}
	if len(diffs) != 2 {
		t.Fatalf("got %d diffs, want 2", len(diffs))
	}
	if diffs[0].ID != "addon/window.json" || diffs[0].NewID != "addon/clone_window.json" || !diffs[0].Changed {
		t.Errorf("first diff = %+v", diffs[0])
	}
	if !strings.Contains(diffs[0].Diff, `-   "parent": "base:door",`) || !strings.Contains(diffs[0].Diff, `+   "parent": "base:clone_door",`) {
		t.Errorf("window diff:\n%s", diffs[0].Diff)
	}
	if !strings.Contains(diffs[1].Diff, `+     "model": "file(models/clone_door.qb)",`) {
		t.Errorf("door diff:\n%s", diffs[1].Diff)
	}
}

func TestPrintPlan(t *testing.T) {
	root := writeSampleMods(t)
	reg := loadRegistry(t, root)

	plan, err := reg.PlanClone(mustContainer(t, reg, "addon:window"), Replace("window", "pane"))
	if err != nil {
		t.Fatal(err)
	}
	var buf bytes.Buffer
	PrintPlan(&buf, plan)
	out := buf.String()

	for _, want := range []string{
		"alias: addon:window -> addon:pane",
		"└── json: addon/window.json -> addon/pane.json",
		"alias: base:door (shared)",
		"Clone: 1 aliases, 1 records",
	} {
		if !strings.Contains(out, want) {
			t.Errorf("plan output missing %q:\n%s", want, out)
		}
	}
}

func TestPreviewMatchesExecute(t *testing.T) {
	rapid.Check(t, func(rt *rapid.T) {
		n := rapid.IntRange(1, 6).Draw(rt, "containers")
		deps := make([][]int, n)
		for i := range deps {
			deps[i] = rapid.SliceOfDistinct(rapid.IntRange(0, n-1), rapid.ID[int]).Draw(rt, fmt.Sprintf("deps%d", i))
		}
		start := rapid.IntRange(0, n-1).Draw(rt, "start")

		root, err := os.MkdirTemp("", "modgraph-rapid-")
		if err != nil {
			rt.Fatal(err)
		}
		defer os.RemoveAll(root)

		var aliases []string
		for i := 0; i < n; i++ {
			aliases = append(aliases, fmt.Sprintf(`"e%d": "file(e%d.json)"`, i, i))
			var refs []string
			for _, d := range deps[i] {
				refs = append(refs, fmt.Sprintf(`"m:e%d"`, d))
			}
			body := fmt.Sprintf(`{"deps": [%s]}`, strings.Join(refs, ", "))
			if err := writeRaw(filepath.Join(root, "m", fmt.Sprintf("e%d.json", i)), body); err != nil {
				rt.Fatal(err)
			}
		}
		mf := fmt.Sprintf(`{"info": {"name": "m"}, "aliases": {%s}}`, strings.Join(aliases, ", "))
		if err := writeRaw(filepath.Join(root, "m", "manifest.json"), mf); err != nil {
			rt.Fatal(err)
		}

		reg, err := New(Config{ModsRoot: root, Logger: quietLogger()})
		if err != nil {
			rt.Fatal(err)
		}
		defer reg.Close()
		if err := reg.Load(); err != nil {
			rt.Fatal(err)
		}
		target, err := reg.ResolveContainer(fmt.Sprintf("m:e%d", start))
		if err != nil {
			rt.Fatal(err)
		}

		preview, err := reg.PreviewClone(target, Prefix("p_"))
		if err != nil {
			rt.Fatal(err)
		}
		seen := NewVisited()
		if err := reg.ExecuteClone(target, Prefix("p_"), seen); err != nil {
			rt.Fatal(err)
		}
		if diff := cmp.Diff(preview.List(), seen.List()); diff != "" {
			rt.Fatalf("preview and execute differ (-preview +execute):\n%s", diff)
		}
		for _, id := range seen.List() {
			if strings.HasSuffix(id, ".json") && !fileExists(filepath.Join(root, filepath.FromSlash(id))) {
				rt.Fatalf("%s was not written", id)
			}
		}
	})
}

func writeRaw(path, content string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	return os.WriteFile(path, []byte(content), 0o644)
}
