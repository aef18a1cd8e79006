// Package walker implements the single-threaded recursive directory
// traversal that produces candidates for the match engine.
//
// Shaped after the teacher's scanner package (single-use New()/Run(),
// batched ReadDir, an atomic-free stats struct with a String() the progress
// reporter describes), but deliberately sequential: §5 of the design
// mandates one traversal, one hash, one compare in flight at a time, so the
// teacher's walker-goroutine/semaphore/channel fan-out is not reused here.
//
// Under --one-file-system, a subdirectory is entered only if it is on the
// same device as the directory that contains it, so the boundary is checked
// per root and per level rather than against the first root's device.
package walker

import (
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"time"

	"github.com/filetwin/filetwin/internal/candidate"
	"github.com/filetwin/filetwin/internal/config"
	"github.com/filetwin/filetwin/internal/logging"
	"github.com/filetwin/filetwin/internal/progress"
)

const readDirBatch = 1000

// Stats tracks traversal counters for progress reporting.
type Stats struct {
	Scanned   int
	Matched   int
	startTime time.Time
}

func (s *Stats) String() string {
	return progress.Status{Done: s.Scanned, Total: s.Scanned, Pairs: 0, Phase: "scanning", FilePct: 100}.String()
}

// Walker is single-use: build with New, call Run once.
type Walker struct {
	roots    []config.Root
	cfg      config.Config
	arena    *candidate.Arena
	reporter *progress.Reporter
	abortFn  func() bool

	trav  candidate.TraversalSet
	stats Stats
	head  candidate.Ref // most recently emitted candidate (LIFO list head)
}

// New creates a Walker over arena, one per scan.
func New(roots []config.Root, cfg config.Config, arena *candidate.Arena, reporter *progress.Reporter, abortFn func() bool) *Walker {
	return &Walker{
		roots:    roots,
		cfg:      cfg,
		arena:    arena,
		reporter: reporter,
		abortFn:  abortFn,
		trav:     candidate.NewTraversalSet(),
		head:     candidate.NilRef,
	}
}

// Run traverses every root and returns the head of the LIFO candidate list
// (walker emission order, deliberately preserved per §4 data model) along
// with final stats.
func (w *Walker) Run() (candidate.Ref, Stats) {
	w.stats.startTime = time.Now()
	for _, root := range w.roots {
		if w.abortFn != nil && w.abortFn() {
			break
		}
		w.walkRoot(root)
	}
	return w.head, w.stats
}

func (w *Walker) walkRoot(root config.Root) {
	abs, err := filepath.Abs(root.Path)
	if err != nil {
		logging.Warn("resolving root", "path", root.Path, "error", err)
		return
	}
	w.walkDir(abs, root)
}

// walkDir implements §4.2's ten ordered rules for one directory.
func (w *Walker) walkDir(dir string, root config.Root) {
	info, err := os.Stat(dir)
	if err != nil {
		logging.Warn("stat directory", "path", dir, "error", err)
		return
	}
	if di, ok := devIno(info); ok {
		if w.trav.SeenOrMark(di) {
			return
		}
	}

	entries, err := readDirAll(dir)
	if err != nil {
		logging.Warn("read directory", "path", dir, "error", err)
		return
	}

	dirID, _ := devIno(info)
	rootDev := dirID.Dev

	for _, entry := range entries {
		if w.abortFn != nil && w.abortFn() {
			return
		}
		name := entry.Name()
		full := filepath.Join(dir, name)

		if w.cfg.NoHidden && len(name) > 0 && name[0] == '.' {
			continue
		}

		fi, err := entry.Info()
		if err != nil {
			logging.Debug("stat entry", "path", full, "error", err)
			continue
		}

		isSymlink := fi.Mode()&os.ModeSymlink != 0

		if isSymlink {
			if !w.cfg.Symlinks {
				continue
			}
			target, err := os.Stat(full)
			if err != nil {
				logging.Debug("stat symlink target", "path", full, "error", err)
				continue
			}
			if target.IsDir() {
				// A symlink entry never reports ModeDir itself (os.DirEntry
				// reflects the link, not its target), so a symlinked
				// directory only surfaces as such once its target is
				// resolved here — route it into recursion rather than
				// falling through to considerFile as a pseudo-file.
				w.maybeRecurse(full, target, root, rootDev)
				continue
			}
			fi = target
		} else if entry.IsDir() {
			w.maybeRecurse(full, fi, root, rootDev)
			continue
		} else if !fi.Mode().IsRegular() {
			continue
		}

		w.considerFile(full, fi, isSymlink, root)
	}
}

func (w *Walker) maybeRecurse(full string, fi fs.FileInfo, root config.Root, parentDev uint64) {
	if !root.Recurse {
		return
	}
	if w.cfg.OneFileSystem {
		if di, ok := devIno(fi); ok && di.Dev != parentDev {
			return
		}
	}
	w.walkDir(full, root)
}

func (w *Walker) considerFile(path string, fi fs.FileInfo, isSymlink bool, root config.Root) {
	w.stats.Scanned++
	size := fi.Size()

	if size == 0 && !w.cfg.ZeroMatch {
		return
	}
	if !w.cfg.SizeAdmits(size) {
		return
	}

	di, _ := devIno(fi)
	nlink := linkCount(fi)

	if w.cfg.LinkHard && linkCapped(nlink) {
		return
	}

	c := candidate.Candidate{
		Path:       path,
		Size:       size,
		Dev:        di.Dev,
		Ino:        di.Ino,
		ModTime:    fi.ModTime(),
		Mode:       fi.Mode(),
		UID:        ownerUID(fi),
		GID:        ownerGID(fi),
		IsSymlink:  isSymlink,
		Nlink:      nlink,
		UserOrder:  root.Order,
		Next:       w.head,
		Duplicates: candidate.NilRef,
	}
	ref := w.arena.Alloc(c)
	w.head = ref
	w.stats.Matched++

	if w.reporter != nil {
		w.reporter.Report(progress.Status{Done: w.stats.Scanned, Total: 0, Phase: "scanning", FilePct: 100})
	}
}

func readDirAll(dir string) ([]os.DirEntry, error) {
	f, err := os.Open(dir)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	var entries []os.DirEntry
	for {
		batch, err := f.ReadDir(readDirBatch)
		entries = append(entries, batch...)
		if err != nil {
			if err == io.EOF {
				break
			}
			return entries, err
		}
		if len(batch) == 0 {
			break
		}
	}
	return entries, nil
}
