// Package printer renders confirmed duplicate groups, in both the plain
// text and JSON forms, ported from jdupes' act_printmatches.c
// (printmatches/jsonoutput). Group iteration mirrors that source exactly:
// walk the walker's global Next list, and for every head (HasDupes set)
// walk its Duplicates chain.
package printer

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/dustin/go-humanize"

	"github.com/filetwin/filetwin/internal/candidate"
	"github.com/filetwin/filetwin/internal/config"
)

// Printer renders groups from an arena's candidate list.
type Printer struct {
	arena *candidate.Arena
	cfg   config.Config
}

// New creates a Printer for arena, honoring cfg's --omitfirst/--size/--json
// reporting flags.
func New(arena *candidate.Arena, cfg config.Config) *Printer {
	return &Printer{arena: arena, cfg: cfg}
}

// members collects a group's paths, head first, honoring --omitfirst.
func (p *Printer) members(head candidate.Ref) []string {
	var out []string
	if !p.cfg.OmitFirst {
		out = append(out, p.arena.Get(head).Path)
	}
	for cur := p.arena.Get(head).Duplicates; cur.Valid(); cur = p.arena.Get(cur).Duplicates {
		out = append(out, p.arena.Get(cur).Path)
	}
	return out
}

// Plain writes the traditional newline-separated group listing, one blank
// line between groups. Returns the number of groups printed.
func (p *Printer) Plain(w io.Writer, head candidate.Ref) int {
	printed := 0
	first := true
	for cur := head; cur.Valid(); cur = p.arena.Get(cur).Next {
		c := p.arena.Get(cur)
		if !c.HasDupes {
			continue
		}
		if !first {
			fmt.Fprintln(w)
		}
		first = false
		printed++

		if p.cfg.ShowSize {
			plural := "s"
			if c.Size == 1 {
				plural = ""
			}
			fmt.Fprintf(w, "%d byte%s each:\n", c.Size, plural)
		}
		for _, path := range p.members(cur) {
			fmt.Fprintln(w, path)
		}
	}
	if printed == 0 {
		fmt.Fprintln(w, "No duplicates found.")
	}
	return printed
}

// JSON writes the duplicate groups as an outer array of inner path-string
// arrays (one per group), matching the plain printer's --omitfirst handling.
// The -S size header has no place in this contract and is not emitted here.
func (p *Printer) JSON(w io.Writer, head candidate.Ref) error {
	out := [][]string{}
	for cur := head; cur.Valid(); cur = p.arena.Get(cur).Next {
		c := p.arena.Get(cur)
		if !c.HasDupes {
			continue
		}
		out = append(out, p.members(cur))
	}
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(out)
}

// Summary writes the --summarize line: group count, total duplicate file
// count, and reclaimable space if every group but its head were removed.
func (p *Printer) Summary(w io.Writer, head candidate.Ref) {
	groupsN := 0
	filesN := 0
	var reclaimable uint64
	for cur := head; cur.Valid(); cur = p.arena.Get(cur).Next {
		c := p.arena.Get(cur)
		if !c.HasDupes {
			continue
		}
		groupsN++
		n := 0
		for m := cur; m.Valid(); m = p.arena.Get(m).Duplicates {
			n++
		}
		filesN += n
		if n > 1 {
			reclaimable += uint64(c.Size) * uint64(n-1)
		}
	}
	fmt.Fprintf(w, "%d duplicate groups, %d files, %s reclaimable\n",
		groupsN, filesN, humanize.IBytes(reclaimable))
}
