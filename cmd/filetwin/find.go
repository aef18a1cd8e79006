package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/filetwin/filetwin/internal/abort"
	"github.com/filetwin/filetwin/internal/actions"
	"github.com/filetwin/filetwin/internal/candidate"
	"github.com/filetwin/filetwin/internal/config"
	"github.com/filetwin/filetwin/internal/hasher"
	"github.com/filetwin/filetwin/internal/logging"
	"github.com/filetwin/filetwin/internal/matcher"
	"github.com/filetwin/filetwin/internal/printer"
	"github.com/filetwin/filetwin/internal/progress"
	"github.com/filetwin/filetwin/internal/prompt"
	"github.com/filetwin/filetwin/internal/walker"
)

// exitCode is what run returns when the command finished without error.
// Nothing assigns it, so it stays 0, including when duplicates exist or
// the scan completed via soft-abort.
var exitCode int

// findOptions holds the CLI flags for the find command.
type findOptions struct {
	oneFileSystem bool
	noHidden      bool
	symlinks      bool
	zeromatch     bool
	xsize         string

	isolate     bool
	permissions bool
	hardlinks   bool
	quick       bool

	paramorder bool
	reverse    bool
	order      string

	omitfirst bool
	size      bool
	jsonOut   bool
	quiet     bool
	summarize bool

	delete    bool
	noprompt  bool
	linkhard  bool
	linksoft  bool
	reflink   bool

	recurseAll bool
	softabort  bool

	logLevel string
}

func newFindCmd() *cobra.Command {
	opts := &findOptions{}

	cmd := &cobra.Command{
		Use:   "find [paths...]",
		Short: "Scan paths for duplicate files and report or act on them",
		Long: `Scans one or more paths for duplicate files.

Roots are recursed individually: use -r/--recurse to recurse every root, or
-R/--recurse: before some of the roots on the command line to recurse only
those that follow it. A post-scan report is always printed; -d, -L, -l,
or --reflink then hand the confirmed groups to an action.`,
		Args:              cobra.ArbitraryArgs,
		DisableFlagParsing: true,
		RunE: func(cmd *cobra.Command, rawArgs []string) error {
			return runFind(cmd, rawArgs, opts)
		},
	}

	bindFindFlags(cmd, opts)
	return cmd
}

func bindFindFlags(cmd *cobra.Command, opts *findOptions) {
	f := cmd.Flags()
	f.BoolVarP(&opts.oneFileSystem, "one-file-system", "1", false, "Don't cross filesystem boundaries while recursing")
	f.BoolVarP(&opts.noHidden, "nohidden", "A", false, "Exclude hidden files and directories")
	f.BoolVarP(&opts.symlinks, "symlinks", "s", false, "Follow symlinks")
	f.BoolVarP(&opts.zeromatch, "zeromatch", "z", false, "Consider zero-length files as matches")
	f.StringVarP(&opts.xsize, "xsize", "x", "", "Exclude files smaller than N, or larger with +N ([K|M|G] suffix)")

	f.BoolVarP(&opts.isolate, "isolate", "I", false, "Forbid matches within the same command-line root")
	f.BoolVarP(&opts.permissions, "permissions", "p", false, "Require matching permissions/ownership")
	f.BoolVarP(&opts.hardlinks, "hardlinks", "H", false, "Treat hard-linked files as duplicates unconditionally")
	f.BoolVarP(&opts.quick, "quick", "Q", false, "Skip byte-for-byte confirmation (unsafe)")

	f.BoolVarP(&opts.paramorder, "paramorder", "O", false, "Sort group members by command-line root order first")
	f.BoolVarP(&opts.reverse, "reverse", "i", false, "Reverse intra-group sort direction")
	f.StringVarP(&opts.order, "order", "o", "name", "Group sort key: name|time")

	f.BoolVarP(&opts.omitfirst, "omitfirst", "f", false, "Omit the first entry of each group from output")
	f.BoolVarP(&opts.size, "size", "S", false, "Include file size in the printed group header")
	f.BoolVarP(&opts.jsonOut, "json", "j", false, "Emit JSON instead of plain text")
	f.BoolVarP(&opts.quiet, "quiet", "q", false, "Suppress progress output")
	f.BoolVarP(&opts.summarize, "summarize", "m", false, "Print a one-line summary after the report")

	f.BoolVarP(&opts.delete, "delete", "d", false, "Interactively delete duplicate members")
	f.BoolVarP(&opts.noprompt, "noprompt", "N", false, "With --delete, keep the group head without prompting")
	f.BoolVarP(&opts.linkhard, "linkhard", "L", false, "Replace duplicate members with hard links to the group head")
	f.BoolVarP(&opts.linksoft, "linksoft", "l", false, "Replace duplicate members with symlinks to the group head")
	f.BoolVar(&opts.reflink, "reflink", false, "Replace duplicate members with copy-on-write reflinks")

	f.BoolVarP(&opts.recurseAll, "recurse", "r", false, "Recurse every root")
	f.BoolVarP(&opts.softabort, "softabort", "Z", false, "First SIGINT stops scanning and acts on partial results")

	f.StringVar(&opts.logLevel, "log-level", "warn", "Logging level: debug|info|warn|error")

	// -R/--recurse: is resolved by resolveRoots before cobra ever sees the
	// argument list; registered here only so it shows up in --help.
	f.BoolP("recurse:", "R", false, "Recurse only roots that follow this argument")
}

func runFind(cmd *cobra.Command, rawArgs []string, opts *findOptions) error {
	flagArgs, roots := resolveRoots(rawArgs)
	if err := cmd.Flags().Parse(flagArgs); err != nil {
		return err
	}
	applyRecurseAll(roots, opts.recurseAll)

	if len(roots) == 0 {
		return fmt.Errorf("at least one path is required")
	}
	if opts.delete && (opts.linkhard || opts.linksoft || opts.reflink) {
		return fmt.Errorf("--delete cannot be combined with --linkhard/--linksoft/--reflink")
	}

	logging.Init(opts.logLevel, "text", os.Stderr)

	cfg, err := buildConfig(opts)
	if err != nil {
		return err
	}

	arena := candidate.NewArena(0)
	ctrl := abort.New(opts.softabort, func() {
		fmt.Fprintln(os.Stderr, "filetwin: aborted")
		os.Exit(130)
	})
	ctrl.Watch()
	defer ctrl.Stop()

	reporter := progress.New(!opts.quiet, -1)

	w := walker.New(roots, cfg, arena, reporter, ctrl.Aborted)
	head, _ := w.Run()

	chunkSize := hasher.ChunkSize()
	eng := matcher.New(arena, cfg, reporter, ctrl.Aborted, chunkSize)
	eng.Run(head)
	reporter.Finish()

	return reportAndAct(cmd, arena, cfg, opts, head)
}

func buildConfig(opts *findOptions) (config.Config, error) {
	cfg := config.Config{
		OneFileSystem: opts.oneFileSystem,
		NoHidden:      opts.noHidden,
		Symlinks:      opts.symlinks,
		ZeroMatch:     opts.zeromatch,

		Isolate:     opts.isolate,
		Permissions: opts.permissions,
		HardLinks:   opts.hardlinks,
		Quick:       opts.quick,

		ParamOrder: opts.paramorder,
		Reverse:    opts.reverse,

		OmitFirst: opts.omitfirst,
		ShowSize:  opts.size,
		JSON:      opts.jsonOut,
		Quiet:     opts.quiet,
		Summarize: opts.summarize,

		Delete:   opts.delete,
		NoPrompt: opts.noprompt,
		LinkHard: opts.linkhard,
		LinkSoft: opts.linksoft,
		Reflink:  opts.reflink,

		SoftAbort: opts.softabort,
	}

	switch opts.order {
	case "", "name":
		cfg.Order = config.OrderByName
	case "time":
		cfg.Order = config.OrderByTime
	default:
		return cfg, fmt.Errorf("invalid --order %q: must be name or time", opts.order)
	}

	if opts.xsize != "" {
		size, isMax, err := parseXSize(opts.xsize)
		if err != nil {
			return cfg, err
		}
		if isMax {
			cfg.MaxSize, cfg.HasMaxSize = size, true
		} else {
			cfg.MinSize, cfg.HasMinSize = size, true
		}
	}

	return cfg, nil
}

// reportAndAct prints (or JSON-encodes) the confirmed groups, then hands
// them to --delete/--linkhard/--linksoft/--reflink if requested.
func reportAndAct(cmd *cobra.Command, arena *candidate.Arena, cfg config.Config, opts *findOptions, head candidate.Ref) error {
	p := printer.New(arena, cfg)
	out := cmd.OutOrStdout()

	if cfg.JSON {
		if err := p.JSON(out, head); err != nil {
			return err
		}
	} else {
		p.Plain(out, head)
	}
	if cfg.Summarize {
		p.Summary(out, head)
	}

	switch {
	case cfg.Delete:
		d := prompt.New(arena, cfg, os.Stdin, out)
		d.Run(head)
	case cfg.LinkHard || cfg.LinkSoft || cfg.Reflink:
		a := actions.New(arena, cfg, nil, !opts.quiet)
		a.Run(head)
	}

	return nil
}
