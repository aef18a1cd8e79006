package walker

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/filetwin/filetwin/internal/candidate"
	"github.com/filetwin/filetwin/internal/config"
)

func writeFile(t *testing.T, path string, contents string) {
	t.Helper()
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(path, []byte(contents), 0o644); err != nil {
		t.Fatal(err)
	}
}

func TestWalkFlatRootDoesNotRecurse(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, "a.txt"), "aaa")
	writeFile(t, filepath.Join(dir, "sub", "b.txt"), "bbb")

	arena := candidate.NewArena(0)
	roots := []config.Root{{Path: dir, Recurse: false, Order: 1}}
	w := New(roots, config.Config{}, arena, nil, nil)
	head, stats := w.Run()

	if stats.Matched != 1 {
		t.Fatalf("expected 1 candidate from flat scan, got %d", stats.Matched)
	}
	if !head.Valid() {
		t.Fatalf("expected a head candidate")
	}
}

func TestWalkRecursiveFindsNestedFiles(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, "a.txt"), "aaa")
	writeFile(t, filepath.Join(dir, "sub", "b.txt"), "bbb")

	arena := candidate.NewArena(0)
	roots := []config.Root{{Path: dir, Recurse: true, Order: 1}}
	w := New(roots, config.Config{}, arena, nil, nil)
	_, stats := w.Run()

	if stats.Matched != 2 {
		t.Fatalf("expected 2 candidates from recursive scan, got %d", stats.Matched)
	}
}

func TestWalkSkipsHiddenWhenConfigured(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, ".hidden"), "h")
	writeFile(t, filepath.Join(dir, "visible.txt"), "v")

	arena := candidate.NewArena(0)
	roots := []config.Root{{Path: dir, Recurse: false, Order: 1}}
	w := New(roots, config.Config{NoHidden: true}, arena, nil, nil)
	_, stats := w.Run()

	if stats.Matched != 1 {
		t.Fatalf("expected hidden file to be excluded, got %d matches", stats.Matched)
	}
}

func TestWalkRejectsZeroSizeByDefault(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, "empty.txt"), "")
	writeFile(t, filepath.Join(dir, "nonempty.txt"), "x")

	arena := candidate.NewArena(0)
	roots := []config.Root{{Path: dir, Recurse: false, Order: 1}}
	w := New(roots, config.Config{}, arena, nil, nil)
	_, stats := w.Run()

	if stats.Matched != 1 {
		t.Fatalf("expected zero-size file excluded by default, got %d matches", stats.Matched)
	}
}

func TestWalkSizeBounds(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, "small.txt"), "x")
	writeFile(t, filepath.Join(dir, "big.txt"), "xxxxxxxxxx")

	arena := candidate.NewArena(0)
	roots := []config.Root{{Path: dir, Recurse: false, Order: 1}}
	cfg := config.Config{HasMinSize: true, MinSize: 5}
	w := New(roots, cfg, arena, nil, nil)
	_, stats := w.Run()

	if stats.Matched != 1 {
		t.Fatalf("expected only the big file to pass the min-size filter, got %d", stats.Matched)
	}
}

func TestUserOrderFollowsCommandLinePosition(t *testing.T) {
	dirA := t.TempDir()
	dirB := t.TempDir()
	writeFile(t, filepath.Join(dirA, "a.txt"), "a")
	writeFile(t, filepath.Join(dirB, "b.txt"), "b")

	arena := candidate.NewArena(0)
	roots := []config.Root{
		{Path: dirA, Recurse: false, Order: 1},
		{Path: dirB, Recurse: false, Order: 2},
	}
	w := New(roots, config.Config{}, arena, nil, nil)
	w.Run()

	seenOrders := map[int]bool{}
	for i := 0; i < arena.Len(); i++ {
		seenOrders[arena.Get(candidate.Ref(i)).UserOrder] = true
	}
	if !seenOrders[1] || !seenOrders[2] {
		t.Fatalf("expected candidates from both user_order 1 and 2, got %v", seenOrders)
	}
}

func TestWalkRecursesIntoSymlinkedDirectory(t *testing.T) {
	dir := t.TempDir()
	real := filepath.Join(t.TempDir(), "real")
	writeFile(t, filepath.Join(real, "nested.txt"), "nested")

	link := filepath.Join(dir, "link")
	if err := os.Symlink(real, link); err != nil {
		t.Fatal(err)
	}

	arena := candidate.NewArena(0)
	roots := []config.Root{{Path: dir, Recurse: true, Order: 1}}
	w := New(roots, config.Config{Symlinks: true}, arena, nil, nil)
	_, stats := w.Run()

	// real/ lies outside the scanned root, so nested.txt can only be reached
	// by recursing through the symlink.
	if stats.Matched != 1 {
		t.Fatalf("expected nested.txt to be found via the symlink, got %d matches", stats.Matched)
	}
}

func TestWalkSkipsSymlinkedDirectoryWithoutFollowSymlinks(t *testing.T) {
	dir := t.TempDir()
	real := filepath.Join(dir, "real")
	writeFile(t, filepath.Join(real, "nested.txt"), "nested")

	link := filepath.Join(dir, "link")
	if err := os.Symlink(real, link); err != nil {
		t.Fatal(err)
	}

	arena := candidate.NewArena(0)
	roots := []config.Root{{Path: dir, Recurse: true, Order: 1}}
	w := New(roots, config.Config{}, arena, nil, nil)
	_, stats := w.Run()

	if stats.Matched != 1 {
		t.Fatalf("expected nested.txt to be found only via real/, got %d matches", stats.Matched)
	}
}
