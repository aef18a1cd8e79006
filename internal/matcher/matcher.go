// Package matcher is the match engine (§4.5): it drives every candidate
// from the walker through the search tree, resolves hash-level matches with
// a byte-by-byte confirmation pass, and feeds confirmed pairs to the group
// registry. It implements searchtree.HashSource, owning the file I/O the
// tree itself never performs.
package matcher

import (
	"bytes"
	"io"
	"os"

	"github.com/filetwin/filetwin/internal/candidate"
	"github.com/filetwin/filetwin/internal/config"
	"github.com/filetwin/filetwin/internal/groups"
	"github.com/filetwin/filetwin/internal/hasher"
	"github.com/filetwin/filetwin/internal/logging"
	"github.com/filetwin/filetwin/internal/progress"
	"github.com/filetwin/filetwin/internal/searchtree"
)

// Engine drives the walker's candidate list through a Tree, confirming
// hash-matches with byte comparison and registering confirmed pairs.
type Engine struct {
	arena     *candidate.Arena
	cfg       config.Config
	tree      *searchtree.Tree
	registry  *groups.Registry
	reporter  *progress.Reporter
	abortFn   func() bool
	chunkSize int64

	sessions map[candidate.Ref]*hasher.Session

	Pairs int
}

// New creates an Engine over arena. chunkSize should come from
// hasher.ChunkSize(); callers needing a fixed size for tests may override.
func New(arena *candidate.Arena, cfg config.Config, reporter *progress.Reporter, abortFn func() bool, chunkSize int64) *Engine {
	return &Engine{
		arena:     arena,
		cfg:       cfg,
		tree:      searchtree.New(arena, cfg),
		registry:  groups.New(arena, cfg),
		reporter:  reporter,
		abortFn:   abortFn,
		chunkSize: chunkSize,
		sessions:  make(map[candidate.Ref]*hasher.Session),
	}
}

// Run walks the candidate list (walker emission order, head first — which
// is LIFO relative to traversal, per §5) through the tree, confirming and
// registering duplicates as it goes.
func (e *Engine) Run(head candidate.Ref) {
	n := 0
	for cur := head; cur.Valid(); cur = e.arena.Get(cur).Next {
		if e.abortFn != nil && e.abortFn() {
			break
		}
		e.insertOne(cur)
		n++
		if e.reporter != nil {
			e.reporter.Report(progress.Status{Done: n, Pairs: e.Pairs, Phase: "hashing", FilePct: 100})
		}
	}
}

func (e *Engine) insertOne(c candidate.Ref) {
	if e.tree.Empty() {
		e.tree.Seed(c)
		return
	}

	m, matched := e.tree.Insert(c, e)
	e.closeSessions()
	if !matched {
		return
	}

	a := e.arena.Get(m)
	b := e.arena.Get(c)

	unconditionalLink := e.cfg.HardLinks && a.Dev == b.Dev && a.Ino == b.Ino

	switch {
	case unconditionalLink, e.cfg.Quick:
		e.confirmAndRegister(m, c)
	default:
		equal, ok := e.bytesEqual(a.Path, b.Path, b.Size)
		if !ok {
			return
		}
		if equal {
			e.confirmAndRegister(m, c)
		}
		// A hash collision without byte equality is dropped silently: c is
		// never inserted into the tree and never grouped, matching the
		// reference engine's checkmatch/confirmmatch behavior for the rare
		// false-positive case.
	}
}

func (e *Engine) confirmAndRegister(head, newmatch candidate.Ref) {
	newHead := e.registry.RegisterPair(head, newmatch)
	e.reassignHead(head, newHead)
	e.Pairs++
}

// reassignHead patches the search tree's node so it keys off the group's
// current head, needed because RegisterPair can promote newmatch to be the
// new chain head.
func (e *Engine) reassignHead(oldHead, newHead candidate.Ref) {
	if oldHead == newHead {
		return
	}
	e.tree.Reparent(oldHead, newHead)
}

// bytesEqual streams both files in chunkSize blocks, polling abort every
// CheckMinimum chunks, per §4.5/§4.7.
func (e *Engine) bytesEqual(pathA, pathB string, size int64) (equal bool, ok bool) {
	fa, err := os.Open(pathA)
	if err != nil {
		logging.Debug("open for confirm", "path", pathA, "error", err)
		return false, false
	}
	defer fa.Close()

	fb, err := os.Open(pathB)
	if err != nil {
		logging.Debug("open for confirm", "path", pathB, "error", err)
		return false, false
	}
	defer fb.Close()

	chunk := e.chunkSize
	if chunk <= 0 {
		chunk = hasher.DefaultChunkSize
	}
	bufA := make([]byte, chunk)
	bufB := make([]byte, chunk)

	remaining := size
	chunks := 0
	for remaining > 0 {
		want := chunk
		if remaining < want {
			want = remaining
		}
		na, erra := io.ReadFull(fa, bufA[:want])
		nb, errb := io.ReadFull(fb, bufB[:want])
		if erra != nil || errb != nil {
			return false, false
		}
		if na != nb || !bytes.Equal(bufA[:na], bufB[:nb]) {
			return false, true
		}
		remaining -= int64(na)
		chunks++
		if e.abortFn != nil && chunks%hasher.CheckMinimum == 0 && e.abortFn() {
			return false, false
		}
	}
	return true, true
}

// PartialHash implements searchtree.HashSource.
func (e *Engine) PartialHash(r candidate.Ref) (uint64, bool) {
	cand := e.arena.Get(r)
	if cand.HashPartialOK {
		return cand.HashPartial, true
	}

	sess, err := hasher.Open(cand.Path)
	if err != nil {
		logging.Debug("open for hash", "path", cand.Path, "error", err)
		return 0, false
	}

	readLen := cand.Size
	if readLen > hasher.PartialHashSize {
		readLen = hasher.PartialHashSize
	}

	sum, aborted, err := sess.ReadChunked(readLen, e.chunkSize, e.abortFn)
	if err != nil || aborted {
		sess.Close()
		return 0, false
	}

	cand.HashPartial = sum
	cand.HashPartialOK = true

	if cand.Size <= hasher.PartialHashSize {
		cand.HashFull = sum
		cand.HashFullOK = true
		sess.Close()
	} else {
		e.sessions[r] = sess
	}
	return sum, true
}

// FullHash implements searchtree.HashSource, resuming the partial hash's
// open session rather than re-reading the prefix when that session is
// still open.
func (e *Engine) FullHash(r candidate.Ref) (uint64, bool) {
	cand := e.arena.Get(r)
	if cand.HashFullOK {
		return cand.HashFull, true
	}

	remaining := cand.Size - hasher.PartialHashSize
	sess, ok := e.sessions[r]
	if ok {
		delete(e.sessions, r)
	} else {
		// The partial hash was cached during an earlier insertion, whose
		// session closeSessions has since closed: hash the whole file
		// afresh, which yields the same digest as resuming would.
		var err error
		if sess, err = hasher.Open(cand.Path); err != nil {
			logging.Debug("open for hash", "path", cand.Path, "error", err)
			return 0, false
		}
		remaining = cand.Size
	}

	sum, aborted, err := sess.ReadChunked(remaining, e.chunkSize, e.abortFn)
	sess.Close()
	if err != nil || aborted {
		return 0, false
	}

	cand.HashFull = sum
	cand.HashFullOK = true
	return sum, true
}

func (e *Engine) closeSessions() {
	for r, s := range e.sessions {
		s.Close()
		delete(e.sessions, r)
	}
}
