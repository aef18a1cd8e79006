//go:build unix

package actions

import (
	"errors"
	"fmt"
	"os"
	"syscall"

	"github.com/filetwin/filetwin/internal/candidate"
	"github.com/filetwin/filetwin/internal/config"
	"github.com/filetwin/filetwin/internal/logging"
	"github.com/filetwin/filetwin/internal/progress"
)

func isCrossDevice(err error) bool {
	return errors.Is(err, syscall.EXDEV)
}

// Kind identifies which link action replaced a target.
type Kind int

const (
	KindHardlink Kind = iota
	KindSymlink
	KindReflink
	KindSkipped
)

func (k Kind) String() string {
	switch k {
	case KindHardlink:
		return "hardlink"
	case KindSymlink:
		return "symlink"
	case KindReflink:
		return "reflink"
	default:
		return "skipped"
	}
}

// Result records the outcome of acting on one group member.
type Result struct {
	Source     string
	Target     string
	Kind       Kind
	BytesSaved int64
	Err        error
}

func (r Result) String() string {
	if r.Err != nil {
		return fmt.Sprintf("%s: skipped (%v)", r.Target, r.Err)
	}
	return fmt.Sprintf("%s -> %s (%s)", r.Target, r.Source, r.Kind)
}

// Engine replaces non-head group members with links to the head, per the
// scan's --linkhard/--linksoft/--reflink configuration. Single-use: build
// with New, call Run once.
type Engine struct {
	arena    *candidate.Arena
	cfg      config.Config
	reporter *progress.Reporter
	verbose  bool

	SavedBytes int64
	Processed  int
}

// New creates an Engine over arena.
func New(arena *candidate.Arena, cfg config.Config, reporter *progress.Reporter, verbose bool) *Engine {
	return &Engine{arena: arena, cfg: cfg, reporter: reporter, verbose: verbose}
}

// Run walks every confirmed group reachable from head and links its
// non-head members to the head file, skipping members already linked to it
// (same dev/ino) and files modified since the scan observed them.
func (e *Engine) Run(head candidate.Ref) []Result {
	var results []Result
	groupN := 0
	for cur := head; cur.Valid(); cur = e.arena.Get(cur).Next {
		c := e.arena.Get(cur)
		if !c.HasDupes {
			continue
		}
		groupN++
		source := c
		for m := c.Duplicates; m.Valid(); m = e.arena.Get(m).Duplicates {
			target := e.arena.Get(m)
			if target.Dev == source.Dev && target.Ino == source.Ino {
				continue // already linked to source
			}
			res := e.link(source, target)
			results = append(results, res)
			if res.Err == nil {
				e.SavedBytes += res.BytesSaved
				e.Processed++
			} else {
				logging.Warn("link action", "target", target.Path, "error", res.Err)
			}
			if e.verbose {
				fmt.Fprintln(os.Stdout, res.String())
			}
			if e.reporter != nil {
				e.reporter.Report(progress.Status{Done: e.Processed, Phase: "linking", FilePct: 100})
			}
		}
	}
	return results
}

// link chooses hardlink, reflink, or symlink per config and performs the
// atomic replace, guarding against concurrent modification with an
// advisory lock plus an mtime recheck.
func (e *Engine) link(source, target *candidate.Candidate) Result {
	f, err := os.Open(target.Path)
	if err != nil {
		return Result{Source: source.Path, Target: target.Path, Kind: KindSkipped, Err: err}
	}
	defer f.Close()

	if err := flockExclusive(f); err != nil {
		return Result{Source: source.Path, Target: target.Path, Kind: KindSkipped,
			Err: errors.New("file in use (locked by another process)")}
	}

	info, err := f.Stat()
	if err != nil {
		return Result{Source: source.Path, Target: target.Path, Kind: KindSkipped, Err: err}
	}
	if !info.ModTime().Equal(target.ModTime) {
		return Result{Source: source.Path, Target: target.Path, Kind: KindSkipped,
			Err: errors.New("file modified since scan")}
	}

	switch {
	case e.cfg.Reflink:
		err := createReflink(source.Path, target.Path)
		if err == nil {
			return Result{Source: source.Path, Target: target.Path, Kind: KindReflink, BytesSaved: target.Size}
		} else if e.cfg.LinkHard {
			// Fall back to a plain hardlink when the filesystem doesn't
			// support reflinks but hardlinking was also requested.
			if err := createHardlink(source.Path, target.Path); err == nil {
				return Result{Source: source.Path, Target: target.Path, Kind: KindHardlink, BytesSaved: target.Size}
			}
		}
		return Result{Source: source.Path, Target: target.Path, Kind: KindSkipped, Err: err}

	case e.cfg.LinkHard:
		err := createHardlink(source.Path, target.Path)
		if err == nil {
			return Result{Source: source.Path, Target: target.Path, Kind: KindHardlink, BytesSaved: target.Size}
		} else if errors.Is(err, os.ErrExist) || isCrossDevice(err) {
			if e.cfg.LinkSoft {
				if err2 := createSymlink(source.Path, target.Path); err2 == nil {
					return Result{Source: source.Path, Target: target.Path, Kind: KindSymlink, BytesSaved: target.Size}
				}
			}
		}
		return Result{Source: source.Path, Target: target.Path, Kind: KindSkipped, Err: err}

	case e.cfg.LinkSoft:
		if err := createSymlink(source.Path, target.Path); err == nil {
			return Result{Source: source.Path, Target: target.Path, Kind: KindSymlink, BytesSaved: target.Size}
		} else {
			return Result{Source: source.Path, Target: target.Path, Kind: KindSkipped, Err: err}
		}
	}

	return Result{Source: source.Path, Target: target.Path, Kind: KindSkipped, Err: errors.New("no link action configured")}
}
