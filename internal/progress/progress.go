// Package progress wraps schollz/progressbar into the throttled status line
// the walker/matcher pipeline reports through, following the teacher's Bar
// pattern: a no-op zero value when disabled, spinner mode when the total
// file count isn't known up front.
package progress

import (
	"fmt"
	"os"
	"time"

	"github.com/schollz/progressbar/v3"
)

// updateInterval caps reporting at one line per second, per §4.7.
const updateInterval = time.Second

// Status is the information a Reporter formats into the progress line:
// "Progress [done/total, pairs] pct%  (phase: file_pct%)".
type Status struct {
	Done    int
	Total   int
	Pairs   int
	Phase   string
	FilePct int
}

func (s Status) String() string {
	pct := 0
	if s.Total > 0 {
		pct = s.Done * 100 / s.Total
	}
	return fmt.Sprintf("Progress [%d/%d, %d pairs] %d%%  (%s: %d%%)",
		s.Done, s.Total, s.Pairs, pct, s.Phase, s.FilePct)
}

// Reporter is the throttled progress line. All methods are no-ops when
// disabled (the --quiet contract).
type Reporter struct {
	bar *progressbar.ProgressBar
}

// New creates a Reporter. enabled is false under --quiet; total<=0 selects
// spinner mode for an unknown file count (scan not yet finished).
func New(enabled bool, total int) *Reporter {
	if !enabled {
		return &Reporter{}
	}

	opts := []progressbar.Option{
		progressbar.OptionSetWriter(os.Stderr),
		progressbar.OptionThrottle(updateInterval),
		progressbar.OptionClearOnFinish(),
		progressbar.OptionSetElapsedTime(false),
	}

	if total <= 0 {
		opts = append(opts, progressbar.OptionSpinnerType(14))
		return &Reporter{bar: progressbar.NewOptions(-1, opts...)}
	}
	opts = append(opts, progressbar.OptionSetWidth(40))
	return &Reporter{bar: progressbar.NewOptions(total, opts...)}
}

// Report updates the displayed status. Actual emission is throttled by the
// underlying bar's OptionThrottle, so callers may call this as often as
// they like (e.g. every confirmed pair) without flooding the error stream.
func (r *Reporter) Report(s Status) {
	if r.bar == nil {
		return
	}
	_ = r.bar.Set(s.Done)
	r.bar.Describe(s.String())
}

// Finish completes the reporter, clearing the line.
func (r *Reporter) Finish() {
	if r.bar != nil {
		_ = r.bar.Finish()
	}
}
