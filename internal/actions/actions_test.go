//go:build unix

package actions

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/filetwin/filetwin/internal/candidate"
	"github.com/filetwin/filetwin/internal/config"
)

func newCandidateFromFile(t *testing.T, path string) *candidate.Candidate {
	t.Helper()
	info, err := os.Stat(path)
	if err != nil {
		t.Fatal(err)
	}
	return &candidate.Candidate{Path: path, Size: info.Size(), ModTime: info.ModTime()}
}

func TestHardlinkActionReplacesTarget(t *testing.T) {
	dir := t.TempDir()
	srcPath := filepath.Join(dir, "a.txt")
	dstPath := filepath.Join(dir, "b.txt")
	if err := os.WriteFile(srcPath, []byte("dup"), 0o644); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(dstPath, []byte("dup"), 0o644); err != nil {
		t.Fatal(err)
	}

	arena := candidate.NewArena(0)
	headRef := arena.Alloc(*newCandidateFromFile(t, srcPath))
	targetRef := arena.Alloc(*newCandidateFromFile(t, dstPath))
	arena.Get(headRef).HasDupes = true
	arena.Get(headRef).Duplicates = targetRef
	arena.Get(headRef).Dev, arena.Get(headRef).Ino = 1, 1
	arena.Get(targetRef).Dev, arena.Get(targetRef).Ino = 1, 2

	e := New(arena, config.Config{LinkHard: true}, nil, false)
	results := e.Run(headRef)

	if len(results) != 1 || results[0].Err != nil {
		t.Fatalf("expected one successful hardlink result, got %+v", results)
	}

	srcInfo, _ := os.Stat(srcPath)
	dstInfo, _ := os.Stat(dstPath)
	if !os.SameFile(srcInfo, dstInfo) {
		t.Fatalf("expected target to be hardlinked to source")
	}
}

func TestSkipsAlreadyLinkedMembers(t *testing.T) {
	dir := t.TempDir()
	srcPath := filepath.Join(dir, "a.txt")
	if err := os.WriteFile(srcPath, []byte("dup"), 0o644); err != nil {
		t.Fatal(err)
	}

	arena := candidate.NewArena(0)
	headRef := arena.Alloc(*newCandidateFromFile(t, srcPath))
	sameInodeRef := arena.Alloc(*newCandidateFromFile(t, srcPath))
	arena.Get(headRef).HasDupes = true
	arena.Get(headRef).Duplicates = sameInodeRef
	arena.Get(headRef).Dev, arena.Get(headRef).Ino = 1, 1
	arena.Get(sameInodeRef).Dev, arena.Get(sameInodeRef).Ino = 1, 1

	e := New(arena, config.Config{LinkHard: true}, nil, false)
	results := e.Run(headRef)

	if len(results) != 0 {
		t.Fatalf("expected already-linked member to be skipped, got %+v", results)
	}
}
