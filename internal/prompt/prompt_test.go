package prompt

import (
	"bytes"
	"strings"
	"testing"

	"github.com/filetwin/filetwin/internal/candidate"
	"github.com/filetwin/filetwin/internal/config"
)

func TestParseKeepListAll(t *testing.T) {
	keep := parseKeepList("all", 3)
	for i, k := range keep {
		if !k {
			t.Fatalf("index %d should be kept under 'all'", i)
		}
	}
}

func TestParseKeepListNone(t *testing.T) {
	keep := parseKeepList("none", 3)
	for i, k := range keep {
		if k {
			t.Fatalf("index %d should not be kept under 'none'", i)
		}
	}
}

func TestParseKeepListCommaList(t *testing.T) {
	keep := parseKeepList("1, 3", 3)
	if !keep[0] || keep[1] || !keep[2] {
		t.Fatalf("unexpected keep mask: %v", keep)
	}
}

func TestParseKeepListEmptyDefaultsToFirst(t *testing.T) {
	keep := parseKeepList("", 3)
	if !keep[0] || keep[1] || keep[2] {
		t.Fatalf("expected only the first member kept on empty input, got %v", keep)
	}
}

func TestParseKeepListGarbageDefaultsToFirst(t *testing.T) {
	keep := parseKeepList("nonsense", 3)
	if !keep[0] || keep[1] || keep[2] {
		t.Fatalf("expected only the first member kept on unparseable input, got %v", keep)
	}
}

func TestRunPromptReportsTotalSetCountAcrossGroups(t *testing.T) {
	arena := candidate.NewArena(0)

	// Group 1: 2 members. Group 2: 3 members.
	g1a := arena.Alloc(candidate.Candidate{Path: "g1a", HasDupes: true, Next: candidate.NilRef, Duplicates: candidate.NilRef})
	g1b := arena.Alloc(candidate.Candidate{Path: "g1b", Next: candidate.NilRef, Duplicates: candidate.NilRef})
	arena.Get(g1a).Duplicates = g1b

	g2a := arena.Alloc(candidate.Candidate{Path: "g2a", HasDupes: true, Next: candidate.NilRef, Duplicates: candidate.NilRef})
	g2b := arena.Alloc(candidate.Candidate{Path: "g2b", Next: candidate.NilRef, Duplicates: candidate.NilRef})
	g2c := arena.Alloc(candidate.Candidate{Path: "g2c", Next: candidate.NilRef, Duplicates: candidate.NilRef})
	arena.Get(g2a).Duplicates = g2b
	arena.Get(g2b).Duplicates = g2c

	arena.Get(g2a).Next = g1a
	head := g2a

	var out bytes.Buffer
	in := strings.NewReader("all\nall\n")
	d := New(arena, config.Config{}, in, &out)
	d.Run(head)

	text := out.String()
	if !strings.Contains(text, "Set 1 of 2 duplicates:") {
		t.Fatalf("expected first prompt to report 2 total sets, got: %s", text)
	}
	if !strings.Contains(text, "Set 2 of 2 duplicates:") {
		t.Fatalf("expected second prompt to report 2 total sets, got: %s", text)
	}
}
