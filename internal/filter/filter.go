// Package filter implements the pairwise admissibility check (condition
// filter) that decides whether two candidates may even be compared for
// duplication, before any hashing happens.
package filter

import (
	"github.com/filetwin/filetwin/internal/candidate"
	"github.com/filetwin/filetwin/internal/config"
)

// Verdict is the outcome of comparing two candidates.
type Verdict int

const (
	// Tie means no condition decided the pair; proceed to hash comparison.
	Tie Verdict = iota
	// Match means the pair is an unconditional duplicate (hard/soft linked
	// with linkage-as-dupe enabled) — no hashing needed.
	Match
	// Reject means the pair is linked but the user asked for linked files
	// not to count as duplicates: suppress both from any group.
	Reject
	// Lt means tree traversal should send b to the right of a.
	Lt
	// Gt means tree traversal should send b to the left of a.
	Gt
)

// Check compares the tree node's candidate a against the incoming candidate
// b, in that order — direction matters (see below) and callers must always
// pass (existing-node, newcomer).
//
// Precedence, each checked in order with the first match winning:
//  1. isolation (-I): same user_order → Lt
//  2. one-filesystem (-1): different device → Lt
//  3. permission-sensitivity (-p): mode/uid/gid differ → Lt
//  4. linkage: same (dev, inode) → Match if --hardlinks, else Reject
//  5. size: a>b → Lt, a<b → Gt, equal → Tie
//
// Rules 1-3 always return Lt regardless of which operand actually differs —
// this is not a well-formed total order (Check(a,b) and Check(b,a) can both
// return Lt), but it is the behavior the reference implementation relies on:
// these checks only ever run with a fixed (tree-node, newcomer) argument
// order during a single descent, so the asymmetry just consistently pushes
// the newcomer to one side. Preserved deliberately, not a bug to fix.
func Check(a, b *candidate.Candidate, cfg config.Config) Verdict {
	if cfg.Isolate && a.UserOrder == b.UserOrder {
		return Lt
	}
	if cfg.OneFileSystem && a.Dev != b.Dev {
		return Lt
	}
	if cfg.Permissions && (a.Mode != b.Mode || a.UID != b.UID || a.GID != b.GID) {
		return Lt
	}

	if a.Dev == b.Dev && a.Ino == b.Ino {
		if cfg.HardLinks {
			return Match
		}
		return Reject
	}

	switch {
	case a.Size > b.Size:
		return Lt
	case a.Size < b.Size:
		return Gt
	default:
		return Tie
	}
}
