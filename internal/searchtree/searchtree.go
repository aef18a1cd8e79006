// Package searchtree implements the ordered binary tree the match engine
// inserts candidates into. Node order is derived from the condition
// filter's verdict, then partial hash, then full hash (§4.4). Like
// candidate.Arena, nodes live in a slice and are referenced by index, so a
// rotation is three index swaps with no lifetime puzzle.
package searchtree

import (
	"github.com/filetwin/filetwin/internal/candidate"
	"github.com/filetwin/filetwin/internal/config"
	"github.com/filetwin/filetwin/internal/filter"
)

// NodeRef indexes into a Tree's node slice.
type NodeRef int32

// NilNode is the "no child"/"empty tree" sentinel.
const NilNode NodeRef = -1

// initialDepthThreshold and balanceThreshold reproduce jdupes'
// USE_TREE_REBALANCE constants: rebalancing triggers once the deepest
// insertion chain since the last rebalance exceeds the threshold, which
// then doubles (up to 512) and afterward grows by 64.
const (
	initialDepthThreshold = 8
	balanceThreshold      = 4
	thresholdCap          = 512
	thresholdStep         = 64
)

type node struct {
	cand                candidate.Ref
	left, right, parent NodeRef
	weight              int // size of the subtree rooted here, including self
}

// HashSource lazily computes and caches a candidate's partial/full hash.
// Implemented by the match engine, which owns file I/O and the abort
// controller; the tree itself never opens a file.
type HashSource interface {
	// PartialHash returns the candidate's cached or freshly computed
	// partial hash. ok is false on a read failure or abort, in which case
	// the tree aborts the insertion without adding a node.
	PartialHash(r candidate.Ref) (hash uint64, ok bool)
	// FullHash is the same contract for the full-file hash.
	FullHash(r candidate.Ref) (hash uint64, ok bool)
}

// Tree is a single-use, single-threaded search structure over an Arena's
// candidates.
type Tree struct {
	arena *candidate.Arena
	cfg   config.Config
	nodes []node
	root  NodeRef

	// owner maps a candidate back to the node holding it, so the match
	// engine can repoint a node at a group's new head after the group
	// registry promotes a different member (see Reparent).
	owner map[candidate.Ref]NodeRef

	depthThreshold int
	curDepth       int
	maxDepth       int
}

// New creates an empty tree over arena, applying cfg's match-condition
// policy during insertion.
func New(arena *candidate.Arena, cfg config.Config) *Tree {
	return &Tree{
		arena:          arena,
		cfg:            cfg,
		root:           NilNode,
		owner:          make(map[candidate.Ref]NodeRef),
		depthThreshold: initialDepthThreshold,
	}
}

// Empty reports whether the tree has no nodes yet.
func (t *Tree) Empty() bool { return t.root == NilNode }

// Seed inserts c as the tree's very first node, unconditionally. Must only
// be called when Empty() is true.
func (t *Tree) Seed(c candidate.Ref) {
	t.root = t.newNode(c, NilNode)
}

func (t *Tree) newNode(c candidate.Ref, parent NodeRef) NodeRef {
	t.nodes = append(t.nodes, node{cand: c, left: NilNode, right: NilNode, parent: parent, weight: 1})
	r := NodeRef(len(t.nodes) - 1)
	t.owner[c] = r
	return r
}

// Reparent repoints the node currently holding oldCand so it holds newCand
// instead. Used when the group registry promotes a different chain member
// to be the group's head: the tree's key for that node (size/hash, all
// identical across a confirmed duplicate group) doesn't change, but the
// candidate it exposes to future comparisons (path, dev/ino) must track
// the current head.
func (t *Tree) Reparent(oldCand, newCand candidate.Ref) {
	r, ok := t.owner[oldCand]
	if !ok {
		return
	}
	t.n(r).cand = newCand
	delete(t.owner, oldCand)
	t.owner[newCand] = r
}

func (t *Tree) n(r NodeRef) *node { return &t.nodes[r] }

func (t *Tree) weight(r NodeRef) int {
	if r == NilNode {
		return 0
	}
	return t.n(r).weight
}

// Insert walks the tree per §4.4. It returns (match, true) when c collides
// with an existing candidate (either an unconditional link match or a
// hash-confirmed pair awaiting byte confirmation by the caller), or
// (_, false) otherwise: either c was inserted as a new leaf (no match
// found), or c was left out of the tree because of a Reject verdict or a
// hashing failure, which the spec treats as "no match" rather than
// propagating the I/O error.
func (t *Tree) Insert(c candidate.Ref, hs HashSource) (match candidate.Ref, matched bool) {
	t.curDepth = 0
	m, ok := t.insertAt(t.root, c, hs)
	if t.curDepth > t.maxDepth {
		t.maxDepth = t.curDepth
	}
	if t.maxDepth > t.depthThreshold {
		t.rebalance(t.root)
		t.maxDepth = 0
		if t.depthThreshold < thresholdCap {
			t.depthThreshold <<= 1
		} else {
			t.depthThreshold += thresholdStep
		}
	}
	return m, ok
}

func (t *Tree) insertAt(cur NodeRef, c candidate.Ref, hs HashSource) (candidate.Ref, bool) {
	nd := t.n(cur)
	n := t.arena.Get(nd.cand)
	incoming := t.arena.Get(c)

	verdict := filter.Check(n, incoming, t.cfg)

	switch verdict {
	case filter.Reject:
		return candidate.NilRef, false
	case filter.Match:
		return nd.cand, true
	case filter.Lt:
		return t.descend(cur, c, hs, true)
	case filter.Gt:
		return t.descend(cur, c, hs, false)
	}

	// Tie: resolve with partial, then (if needed) full hash. Files no
	// larger than the partial hash window have already been promoted to a
	// full hash by the hash source, so this is the only comparison needed
	// even for small files.
	partialN, okN := hs.PartialHash(nd.cand)
	partialC, okC := hs.PartialHash(c)
	if !okN || !okC {
		return candidate.NilRef, false
	}

	cmp := compareHash(partialC, partialN)
	if cmp == 0 {
		fullN, okN := hs.FullHash(nd.cand)
		fullC, okC := hs.FullHash(c)
		if !okN || !okC {
			return candidate.NilRef, false
		}
		cmp = compareHash(fullC, fullN)
		if cmp == 0 {
			return nd.cand, true
		}
	}

	if cmp < 0 {
		return t.descend(cur, c, hs, false) // gt: recurse left
	}
	return t.descend(cur, c, hs, true) // lt: recurse right
}

// descend recurses right when goRight is true (the filter verdict was "Lt",
// or the newcomer's hash is greater), else left. If the chosen child is absent,
// c is linked there as a fresh leaf instead.
func (t *Tree) descend(cur NodeRef, c candidate.Ref, hs HashSource, goRight bool) (candidate.Ref, bool) {
	t.curDepth++
	nd := t.n(cur)
	child := nd.right
	if !goRight {
		child = nd.left
	}
	if child != NilNode {
		return t.insertAt(child, c, hs)
	}
	leaf := t.newNode(c, cur)
	// newNode may grow t.nodes and reallocate its backing array, so nd (taken
	// before the append) can no longer be trusted — refetch before writing.
	nd = t.n(cur)
	if goRight {
		nd.right = leaf
	} else {
		nd.left = leaf
	}
	t.bumpWeights(cur)
	return candidate.NilRef, false
}

// bumpWeights increments the subtree-size counter of start and every
// ancestor above it after a new leaf was attached somewhere below start.
func (t *Tree) bumpWeights(start NodeRef) {
	for r := start; r != NilNode; r = t.n(r).parent {
		t.n(r).weight++
	}
}

func compareHash(a, b uint64) int {
	switch {
	case a > b:
		return 1
	case a < b:
		return -1
	default:
		return 0
	}
}

// rebalance ports jdupes' USE_TREE_REBALANCE pass: rebalance children first,
// then rotate the heavier child up if the weight imbalance exceeds
// balanceThreshold and doing so would reduce it, i.e. the promoted child's
// own imbalance is smaller than the current one (the "CONSIDER_IMBALANCE"
// guard).
func (t *Tree) rebalance(r NodeRef) {
	if r == NilNode {
		return
	}
	nd := t.n(r)
	lw, rw := t.weight(nd.left), t.weight(nd.right)
	if lw > balanceThreshold {
		t.rebalance(nd.left)
	}
	if rw > balanceThreshold {
		t.rebalance(nd.right)
	}

	nd = t.n(r)
	lw, rw = t.weight(nd.left), t.weight(nd.right)
	direction := rw - lw
	difference := direction
	if difference < 0 {
		difference = -difference
	}
	if difference <= balanceThreshold {
		return
	}

	if direction > 0 {
		promote := nd.right
		l := t.weight(t.n(promote).left)
		rr := t.weight(t.n(promote).right)
		imbalance := l - rr
		if imbalance < 0 {
			imbalance = -imbalance
		}
		if imbalance >= difference {
			return
		}
		t.rotateLeft(r)
	} else {
		promote := nd.left
		rr := t.weight(t.n(promote).right)
		l := t.weight(t.n(promote).left)
		imbalance := rr - l
		if imbalance < 0 {
			imbalance = -imbalance
		}
		if imbalance >= difference {
			return
		}
		t.rotateRight(r)
	}
}

// rotateLeft promotes demote's right child to take demote's place.
func (t *Tree) rotateLeft(demote NodeRef) {
	d := t.n(demote)
	promote := d.right
	p := t.n(promote)

	parent := d.parent

	d.right = p.left
	if d.right != NilNode {
		t.n(d.right).parent = demote
	}
	p.left = demote
	d.parent = promote
	p.parent = parent

	t.reattach(parent, demote, promote)
	t.recomputeWeight(demote)
	t.recomputeWeight(promote)
}

// rotateRight promotes demote's left child to take demote's place.
func (t *Tree) rotateRight(demote NodeRef) {
	d := t.n(demote)
	promote := d.left
	p := t.n(promote)

	parent := d.parent

	d.left = p.right
	if d.left != NilNode {
		t.n(d.left).parent = demote
	}
	p.right = demote
	d.parent = promote
	p.parent = parent

	t.reattach(parent, demote, promote)
	t.recomputeWeight(demote)
	t.recomputeWeight(promote)
}

func (t *Tree) reattach(parent, oldChild, newChild NodeRef) {
	if parent == NilNode {
		t.root = newChild
		return
	}
	pn := t.n(parent)
	if pn.left == oldChild {
		pn.left = newChild
	} else {
		pn.right = newChild
	}
}

func (t *Tree) recomputeWeight(r NodeRef) {
	nd := t.n(r)
	nd.weight = 1 + t.weight(nd.left) + t.weight(nd.right)
}
