// Package config holds the immutable flag snapshot threaded through the
// walker, filter, and match engine. It is built once by the CLI layer after
// parsing and never mutated afterward, per the "process-global flag state"
// design note: every other package receives it by value.
package config

// OrderKey selects the comparator the group registry sorts chain members
// with.
type OrderKey int

const (
	// OrderByName sorts group members by natural/numeric-aware path order.
	OrderByName OrderKey = iota
	// OrderByTime sorts group members by modification time.
	OrderByTime
)

// Root is one command-line path together with its resolved recursion mode.
// Recursion is resolved by the CLI layer from --recurse / --recurse: before
// the walker ever sees it, so the walker itself stays a pure function of
// (Root, Config).
type Root struct {
	Path    string
	Recurse bool
	// Order is the 1-based command-line position of this root, assigned
	// before any --recurse: flat/recursive split is applied.
	Order int
}

// Config is the read-only flag surface consumed by every pipeline stage.
// Zero value is a reasonable "no filters" default for unit tests.
type Config struct {
	// Traversal
	OneFileSystem bool // -1 / --one-file-system
	NoHidden      bool // -A / --nohidden
	Symlinks      bool // -s / --symlinks (follow)
	ZeroMatch     bool // -z / --zeromatch
	MinSize       int64
	MaxSize       int64 // applied only when HasMaxSize is set
	HasMinSize    bool
	HasMaxSize    bool

	// Match policy
	Isolate      bool // -I / --isolate
	Permissions  bool // -p / --permissions
	HardLinks    bool // -H / --hardlinks
	Quick        bool // -Q / --quick

	// Grouping / ordering
	ParamOrder bool     // -O / --paramorder
	Reverse    bool     // -i / --reverse
	Order      OrderKey // -o name|time

	// Reporting
	OmitFirst bool // -f / --omitfirst
	ShowSize  bool // -S / --size
	JSON      bool // -j / --json
	Quiet     bool // -q / --quiet
	Summarize bool // -m / --summarize

	// Actions (external, but fully specified — §6.4)
	Delete    bool // -d / --delete
	NoPrompt  bool // -N / --noprompt
	LinkHard  bool // -L / --linkhard
	LinkSoft  bool // -l / --linksoft
	Reflink   bool // --reflink

	// Abort
	SoftAbort bool // -Z / --softabort
}

// SizeAdmits reports whether size passes the --xsize bounds. Sign convention
// per spec.md §6: MinSize excludes files strictly smaller, MaxSize (the "+N"
// form) excludes files strictly larger.
func (c Config) SizeAdmits(size int64) bool {
	if c.HasMinSize && size < c.MinSize {
		return false
	}
	if c.HasMaxSize && size > c.MaxSize {
		return false
	}
	return true
}
