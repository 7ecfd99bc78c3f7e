package workset_test

import (
	"os"
	"path/filepath"
	"testing"

	"flacpress/internal/workset"
)

func writeFile(t *testing.T, path string) {
	t.Helper()
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatalf("mkdir %s: %v", filepath.Dir(path), err)
	}
	if err := os.WriteFile(path, []byte("fLaC"), 0o644); err != nil {
		t.Fatalf("write %s: %v", path, err)
	}
}

func TestDiscoverFindsNestedAndHiddenFlacFiles(t *testing.T) {
	root := t.TempDir()
	writeFile(t, filepath.Join(root, "A", "song1.flac"))
	writeFile(t, filepath.Join(root, "B", "deep", "song2.flac"))
	writeFile(t, filepath.Join(root, ".hidden", "song3.flac"))
	writeFile(t, filepath.Join(root, "A", "cover.jpg"))
	writeFile(t, filepath.Join(root, "notes.txt"))

	items, err := workset.Discover(root)
	if err != nil {
		t.Fatalf("Discover failed: %v", err)
	}
	if len(items) != 3 {
		t.Fatalf("expected 3 items, got %d: %+v", len(items), items)
	}
	for _, item := range items {
		if filepath.Ext(item.Source) != ".flac" {
			t.Fatalf("unexpected source %q", item.Source)
		}
		if filepath.Ext(item.Target) != ".mp3" {
			t.Fatalf("unexpected target %q", item.Target)
		}
		if filepath.Dir(item.Source) != filepath.Dir(item.Target) {
			t.Fatalf("target %q left its source directory %q", item.Target, item.Source)
		}
	}
}

func TestDiscoverMatchesExtensionCaseInsensitively(t *testing.T) {
	root := t.TempDir()
	writeFile(t, filepath.Join(root, "loud.FLAC"))

	items, err := workset.Discover(root)
	if err != nil {
		t.Fatalf("Discover failed: %v", err)
	}
	if len(items) != 1 {
		t.Fatalf("expected 1 item, got %d", len(items))
	}
	if filepath.Base(items[0].Target) != "loud.mp3" {
		t.Fatalf("unexpected target %q", items[0].Target)
	}
}

func TestDiscoverEmptyTree(t *testing.T) {
	items, err := workset.Discover(t.TempDir())
	if err != nil {
		t.Fatalf("Discover failed: %v", err)
	}
	if len(items) != 0 {
		t.Fatalf("expected empty work set, got %d items", len(items))
	}
}

func TestDiscoverRejectsMissingRoot(t *testing.T) {
	if _, err := workset.Discover(filepath.Join(t.TempDir(), "absent")); err == nil {
		t.Fatal("expected error for missing root")
	}
}

func TestDiscoverRejectsFileRoot(t *testing.T) {
	root := t.TempDir()
	file := filepath.Join(root, "single.flac")
	writeFile(t, file)
	if _, err := workset.Discover(file); err == nil {
		t.Fatal("expected error for non-directory root")
	}
}

func TestTargetPathSwapsExtensionInPlace(t *testing.T) {
	got := workset.TargetPath("/music/Album Name/01 - intro.flac")
	want := "/music/Album Name/01 - intro.mp3"
	if got != want {
		t.Fatalf("TargetPath = %q, want %q", got, want)
	}
}

func TestTargetPathKeepsInnerDots(t *testing.T) {
	got := workset.TargetPath("/m/track.v2.final.flac")
	if got != "/m/track.v2.final.mp3" {
		t.Fatalf("TargetPath = %q", got)
	}
}

func TestFindTargetCollisionsCaseFolded(t *testing.T) {
	items := []workset.Item{
		{Source: "/m/Song.flac", Target: "/m/Song.mp3"},
		{Source: "/m/song.flac", Target: "/m/song.mp3"},
		{Source: "/m/other.flac", Target: "/m/other.mp3"},
	}
	collisions := workset.FindTargetCollisions(items)
	if len(collisions) != 1 {
		t.Fatalf("expected 1 collision, got %d", len(collisions))
	}
	if len(collisions[0].Sources) != 2 {
		t.Fatalf("expected 2 colliding sources, got %v", collisions[0].Sources)
	}
	if collisions[0].Target != "/m/Song.mp3" {
		t.Fatalf("Target must be the first real target path, got %q", collisions[0].Target)
	}
}

func TestFindTargetCollisionsNone(t *testing.T) {
	items := []workset.Item{
		{Source: "/m/a.flac", Target: "/m/a.mp3"},
		{Source: "/m/b.flac", Target: "/m/b.mp3"},
	}
	if got := workset.FindTargetCollisions(items); len(got) != 0 {
		t.Fatalf("expected no collisions, got %v", got)
	}
}
