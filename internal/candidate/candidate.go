// Package candidate holds the per-file record the rest of the pipeline
// operates on, plus the bump arena it lives in.
//
// Per the "arena lifetime" design note, candidates and search-tree nodes are
// never individually freed or reference-counted: everything is allocated
// into a slice-backed arena and referenced by index (Ref), not by pointer.
// This sidesteps the parent-pointer cycles the search tree's rebalancer
// needs (a rotation is three index swaps, never a lifetime puzzle) and lets
// the whole scan be torn down in one step when the arena goes out of scope.
package candidate

import (
	"os"
	"time"
)

// Ref is a non-owning index into an Arena. The zero value, Ref(0), is a
// valid reference to the arena's first candidate, not an absent one — use
// NilRef for "no candidate"/"no child" the way the spec's C ancestor uses
// NULL pointers.
type Ref int32

// NilRef represents the absence of a candidate, the way a NULL file_t*
// would in the original design.
const NilRef Ref = -1

// Valid reports whether r refers to an allocated candidate.
func (r Ref) Valid() bool { return r >= 0 }

// Candidate is one regular file that survived the walker's filters.
//
// Mutated only by the match engine: hash caches, has_dupes, and the two
// chain links (Next, Duplicates). Everything else is set once by the walker
// and read-only thereafter.
type Candidate struct {
	Path string
	Size int64

	Dev uint64
	Ino uint64

	ModTime time.Time
	Mode    os.FileMode

	UID uint32
	GID uint32

	IsSymlink bool
	Nlink     uint32

	// UserOrder is the 1-based index of the command-line root this file
	// came from, assigned in command-line order regardless of the
	// flat/recursive split at --recurse:.
	UserOrder int

	HashPartial   uint64
	HashPartialOK bool
	HashFull      uint64
	HashFullOK    bool

	// HasDupes is set iff this candidate is the head of a duplicate group.
	HasDupes bool

	// Next links candidates in the global walker-emission list. Emission is
	// LIFO within a directory, directories in enumeration order, and this
	// order is deliberately preserved — it determines tree shape and
	// therefore which candidate ends up a group head.
	Next Ref

	// Duplicates links to the next member within the same group, head
	// first (ascending by the active comparator).
	Duplicates Ref
}

// DevIno uniquely identifies a concrete inode for cycle/hardlink detection.
type DevIno struct {
	Dev uint64
	Ino uint64
}

// Arena is the single bump allocator a scan's candidates live in; search
// tree nodes live in searchtree.Tree's own node slice. Create with
// NewArena, never copy by value.
type Arena struct {
	candidates []Candidate
}

// NewArena returns an empty arena. capHint pre-sizes the backing slice; pass 0
// if the file count is unknown.
func NewArena(capHint int) *Arena {
	return &Arena{candidates: make([]Candidate, 0, capHint)}
}

// Alloc copies c into the arena and returns its Ref.
func (a *Arena) Alloc(c Candidate) Ref {
	a.candidates = append(a.candidates, c)
	return Ref(len(a.candidates) - 1)
}

// Get returns a mutable pointer to the candidate at r. Panics on an invalid
// ref, the same contract violation the spec treats as a fatal nullptr().
func (a *Arena) Get(r Ref) *Candidate {
	return &a.candidates[r]
}

// Len returns the number of allocated candidates.
func (a *Arena) Len() int { return len(a.candidates) }

// TraversalSet records visited directory inodes for cycle prevention
// (invariant: at most one visit per concrete inode per scan).
type TraversalSet map[DevIno]struct{}

// NewTraversalSet returns an empty set.
func NewTraversalSet() TraversalSet { return make(TraversalSet) }

// SeenOrMark reports whether d was already present, marking it present as a
// side effect either way. The walker uses this to skip already-traversed
// directories (symlink loops, repeated roots) without a warning.
func (s TraversalSet) SeenOrMark(d DevIno) bool {
	if _, ok := s[d]; ok {
		return true
	}
	s[d] = struct{}{}
	return false
}
