package main

import "github.com/filetwin/filetwin/internal/config"

// valueFlags lists every flag that consumes a following argument (or an
// attached "=value"), needed so resolveRoots can tell flags from root
// paths while walking the raw argument list by hand. -R/--recurse: is
// deliberately NOT a normal flag: unlike every other option, its *position*
// among the positional root arguments is significant (everything after it
// recurses, everything before does not), which pflag's flag/positional
// split would discard. So roots and the recurse: marker are resolved here,
// before cobra ever sees the argument list.
var valueFlags = map[string]bool{
	"-x": true, "--xsize": true,
	"-o": true, "--order": true,
	"--log-level": true,
}

// isRecurseMarker reports whether tok is -R/--recurse:'s spelling on the
// command line.
func isRecurseMarker(tok string) bool {
	return tok == "-R" || tok == "--recurse:"
}

// resolveRoots walks args, splitting them into the flags cobra/pflag should
// parse normally and the ordered list of root paths. Each root's Recurse
// reflects only the -R marker; -r/--recurse isn't known until pflag parses
// flagArgs, so the caller applies it afterward with applyRecurseAll.
func resolveRoots(args []string) (flagArgs []string, roots []config.Root) {
	recursing := false
	order := 0

	for i := 0; i < len(args); i++ {
		tok := args[i]

		if isRecurseMarker(tok) {
			recursing = true
			continue
		}

		if len(tok) > 1 && tok[0] == '-' {
			flagArgs = append(flagArgs, tok)
			if valueFlags[tok] && i+1 < len(args) {
				i++
				flagArgs = append(flagArgs, args[i])
			}
			continue
		}

		order++
		roots = append(roots, config.Root{
			Path:    tok,
			Recurse: recursing,
			Order:   order,
		})
	}

	return flagArgs, roots
}

// applyRecurseAll forces every root to recurse when -r/--recurse was given.
func applyRecurseAll(roots []config.Root, recurseAll bool) {
	if !recurseAll {
		return
	}
	for i := range roots {
		roots[i].Recurse = true
	}
}
