// Package groups implements the duplicate group registry: the insertion
// order chains hung off a head candidate's Duplicates pointer, built up one
// pair at a time as the match engine confirms duplicates.
//
// Ported from jdupes.c's registerpair()/sort_pairs_by_*, including its
// documented insert-time-only sort limitation: a comparator only runs
// against the pair being registered, so later insertions can leave an
// already-placed member out of strict order relative to a newer sibling.
// Preserved deliberately — see DESIGN.md — rather than rewritten into a
// full post-hoc sort, since fixing it would change group head selection for
// existing users of the ordering flags.
package groups

import (
	"unicode"

	"github.com/filetwin/filetwin/internal/candidate"
	"github.com/filetwin/filetwin/internal/config"
)

// Comparator reports whether a sorts before, with, or after b: negative,
// zero, or positive respectively, mirroring jdupes' sort_pairs_by_*
// int(*)(file_t*,file_t*) signature.
type Comparator func(a, b *candidate.Candidate) int

// Registry owns the arena and config needed to build and walk chains. A
// Registry is single-use, built per scan.
type Registry struct {
	arena   *candidate.Arena
	cmp     Comparator
	reverse int
}

// New returns a Registry using cfg's --paramorder/-o/-i settings to build
// the comparator chain.
func New(arena *candidate.Arena, cfg config.Config) *Registry {
	dir := 1
	if cfg.Reverse {
		dir = -1
	}
	var base Comparator
	if cfg.Order == config.OrderByTime {
		base = byMTime
	} else {
		base = byFilename
	}
	cmp := base
	if cfg.ParamOrder {
		cmp = chain(byParamOrder, base)
	}
	return &Registry{arena: arena, cmp: cmp, reverse: dir}
}

func chain(first, second Comparator) Comparator {
	return func(a, b *candidate.Candidate) int {
		if r := first(a, b); r != 0 {
			return r
		}
		return second(a, b)
	}
}

func byParamOrder(a, b *candidate.Candidate) int {
	switch {
	case a.UserOrder < b.UserOrder:
		return -1
	case a.UserOrder > b.UserOrder:
		return 1
	default:
		return 0
	}
}

func byMTime(a, b *candidate.Candidate) int {
	switch {
	case a.ModTime.Before(b.ModTime):
		return -1
	case a.ModTime.After(b.ModTime):
		return 1
	default:
		return 0
	}
}

func byFilename(a, b *candidate.Candidate) int {
	return naturalCompare(a.Path, b.Path)
}

// naturalCompare implements the numeric-aware ("natural") ordering jdupes
// gets from its numeric_sort() helper: runs of digits compare by numeric
// value rather than character-by-character, so "file2" sorts before
// "file10".
func naturalCompare(a, b string) int {
	ra, rb := []rune(a), []rune(b)
	i, j := 0, 0
	for i < len(ra) && j < len(rb) {
		ca, cb := ra[i], rb[j]
		if unicode.IsDigit(ca) && unicode.IsDigit(cb) {
			starti, startj := i, j
			for i < len(ra) && unicode.IsDigit(ra[i]) {
				i++
			}
			for j < len(rb) && unicode.IsDigit(rb[j]) {
				j++
			}
			numA := trimLeadingZeros(string(ra[starti:i]))
			numB := trimLeadingZeros(string(rb[startj:j]))
			if len(numA) != len(numB) {
				if len(numA) < len(numB) {
					return -1
				}
				return 1
			}
			if numA != numB {
				if numA < numB {
					return -1
				}
				return 1
			}
			continue
		}
		if ca != cb {
			if ca < cb {
				return -1
			}
			return 1
		}
		i++
		j++
	}
	switch {
	case len(ra)-i < len(rb)-j:
		return -1
	case len(ra)-i > len(rb)-j:
		return 1
	default:
		return 0
	}
}

func trimLeadingZeros(s string) string {
	n := 0
	for n < len(s)-1 && s[n] == '0' {
		n++
	}
	return s[n:]
}

func (r *Registry) signed(cmp Comparator) Comparator {
	if r.reverse == 1 {
		return cmp
	}
	return func(a, b *candidate.Candidate) int { return -cmp(a, b) }
}

// RegisterPair inserts newmatch into the chain currently headed by head and
// returns the chain's head after insertion (newmatch itself when it sorts
// first, head otherwise unchanged) — callers must update whatever they use
// to track "the group's head" (e.g. the search tree node's candidate) with
// this value.
func (r *Registry) RegisterPair(head, newmatch candidate.Ref) candidate.Ref {
	a := r.arena
	cmp := r.signed(r.cmp)

	headCand := a.Get(head)
	headCand.HasDupes = true

	nm := a.Get(newmatch)

	if cmp(nm, headCand) <= 0 {
		nm.Duplicates = head
		nm.HasDupes = true
		headCand.HasDupes = false
		return newmatch
	}

	traverseRef := head
	for {
		traverse := a.Get(traverseRef)
		if !traverse.Duplicates.Valid() {
			traverse.Duplicates = newmatch
			return head
		}
		nextRef := traverse.Duplicates
		next := a.Get(nextRef)
		if cmp(nm, next) <= 0 {
			nm.Duplicates = nextRef
			traverse.Duplicates = newmatch
			return head
		}
		traverseRef = nextRef
	}
}

// Walk invokes fn for every member of the chain headed by head, head first.
func (r *Registry) Walk(head candidate.Ref, fn func(candidate.Ref)) {
	for cur := head; cur.Valid(); cur = r.arena.Get(cur).Duplicates {
		fn(cur)
	}
}

// Count returns the number of members in the chain headed by head,
// including head itself.
func (r *Registry) Count(head candidate.Ref) int {
	n := 0
	r.Walk(head, func(candidate.Ref) { n++ })
	return n
}
