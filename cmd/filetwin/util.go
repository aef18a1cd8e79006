package main

import (
	"fmt"
	"strings"

	"github.com/dustin/go-humanize"
)

// parseXSize parses the --xsize=[+]N[K|M|G] argument. A leading '+' means
// "exclude larger than N" (MaxSize); its absence means "exclude smaller
// than N" (MinSize), per spec.md's sign convention.
func parseXSize(s string) (size int64, isMax bool, err error) {
	if s == "" {
		return 0, false, fmt.Errorf("empty --xsize value")
	}
	if strings.HasPrefix(s, "+") {
		isMax = true
		s = s[1:]
	}
	num := s
	// A bare K/M/G suffix is binary (1024-based); humanize reads it as
	// decimal unless it carries the "i".
	if n := len(num); n > 0 {
		switch num[n-1] {
		case 'K', 'k', 'M', 'm', 'G', 'g':
			num += "i"
		}
	}
	bytes, err := humanize.ParseBytes(num)
	if err != nil {
		return 0, false, fmt.Errorf("invalid --xsize %q: %w", s, err)
	}
	return int64(bytes), isMax, nil
}
