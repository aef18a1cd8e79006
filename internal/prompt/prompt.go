// Package prompt implements the interactive deletion prompt driven by
// --delete/-N: for each confirmed group, ask which members to keep and
// remove the rest, or under --noprompt automatically keep the group head.
//
// Modeled on jdupes' act_deletefiles.c numbered "preserve files" prompt:
// list every member 1..N, read a comma-separated keep-list (or "all"),
// delete everything not in that list.
package prompt

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/filetwin/filetwin/internal/candidate"
	"github.com/filetwin/filetwin/internal/config"
	"github.com/filetwin/filetwin/internal/logging"
)

// Deleter drives the interactive (or --noprompt automatic) deletion pass
// over confirmed groups.
type Deleter struct {
	arena *candidate.Arena
	cfg   config.Config
	in    *bufio.Scanner
	out   io.Writer
}

// New creates a Deleter reading prompts from in and writing them to out.
// Pass os.Stdin/os.Stdout for interactive use.
func New(arena *candidate.Arena, cfg config.Config, in io.Reader, out io.Writer) *Deleter {
	return &Deleter{arena: arena, cfg: cfg, in: bufio.NewScanner(in), out: out}
}

// Result records one file's fate.
type Result struct {
	Path    string
	Deleted bool
	Err     error
}

// Run walks every confirmed group reachable from head, deleting members
// not kept. Under --noprompt, the head (lowest by the active sort order)
// is always the sole survivor.
func (d *Deleter) Run(head candidate.Ref) []Result {
	var results []Result
	totalSets := d.countSets(head)
	setNum := 0
	for cur := head; cur.Valid(); cur = d.arena.Get(cur).Next {
		c := d.arena.Get(cur)
		if !c.HasDupes {
			continue
		}
		setNum++
		members := d.collect(cur)
		keep := d.chooseKeep(setNum, totalSets, members)
		for i, m := range members {
			if keep[i] {
				continue
			}
			path := d.arena.Get(m).Path
			err := os.Remove(path)
			results = append(results, Result{Path: path, Deleted: err == nil, Err: err})
			if err != nil {
				logging.Warn("delete", "path", path, "error", err)
			}
		}
	}
	return results
}

func (d *Deleter) collect(head candidate.Ref) []candidate.Ref {
	var out []candidate.Ref
	for cur := head; cur.Valid(); cur = d.arena.Get(cur).Duplicates {
		out = append(out, cur)
	}
	return out
}

// countSets returns the number of confirmed duplicate sets reachable from
// head, needed up front so chooseKeep's "Set N of M" prompt reports the
// total across the whole scan rather than the current group's size.
func (d *Deleter) countSets(head candidate.Ref) int {
	n := 0
	for cur := head; cur.Valid(); cur = d.arena.Get(cur).Next {
		if d.arena.Get(cur).HasDupes {
			n++
		}
	}
	return n
}

// chooseKeep returns, per member index, whether that member survives.
func (d *Deleter) chooseKeep(setNum, totalSets int, members []candidate.Ref) []bool {
	keep := make([]bool, len(members))

	if d.cfg.NoPrompt {
		keep[0] = true
		return keep
	}

	fmt.Fprintf(d.out, "Set %d of %d duplicates:\n", setNum, totalSets)
	for i, m := range members {
		fmt.Fprintf(d.out, "[%d] %s\n", i+1, d.arena.Get(m).Path)
	}
	fmt.Fprint(d.out, "Preserve files [1 - "+strconv.Itoa(len(members))+", all, none]: ")

	if !d.in.Scan() {
		keep[0] = true
		return keep
	}
	return parseKeepList(d.in.Text(), len(members))
}

// parseKeepList parses a reply like "1,3" or "all" or "none" into a
// per-index keep mask. An empty or unparseable reply keeps only the first
// member (the group head), matching the --noprompt default.
func parseKeepList(reply string, n int) []bool {
	keep := make([]bool, n)
	reply = strings.TrimSpace(reply)

	switch strings.ToLower(reply) {
	case "all":
		for i := range keep {
			keep[i] = true
		}
		return keep
	case "none":
		return keep
	case "":
		keep[0] = true
		return keep
	}

	any := false
	for _, field := range strings.Split(reply, ",") {
		field = strings.TrimSpace(field)
		idx, err := strconv.Atoi(field)
		if err != nil || idx < 1 || idx > n {
			continue
		}
		keep[idx-1] = true
		any = true
	}
	if !any {
		keep[0] = true
	}
	return keep
}
