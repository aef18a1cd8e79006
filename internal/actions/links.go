//go:build unix

// Package actions implements the post-scan actions of §6.4: replacing
// confirmed-duplicate group members with hardlinks, symlinks, or
// copy-on-write reflinks. The --summarize report is printed by
// internal/printer, not here. Adapted from the
// teacher's internal/deduper package, generalized from its sibling-group
// model to this design's duplicate chains (candidate.Candidate.Duplicates).
package actions

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"syscall"
	"time"

	"golang.org/x/sys/unix"
)

// orphanedTmpMaxAge is the minimum age for a leftover .filetwin.tmp file to
// be considered safe to clean up and retry under.
const orphanedTmpMaxAge = time.Minute

// createHardlink links source to target atomically via a temp file and
// rename, retrying once if a stale temp file from an earlier aborted run is
// in the way.
func createHardlink(source, target string) error {
	tmp := target + ".filetwin.tmp"

	err := os.Link(source, tmp)
	if errors.Is(err, syscall.EEXIST) {
		if cleanupErr := tryCleanupOrphanedTmp(tmp, orphanedTmpMaxAge); cleanupErr != nil {
			return fmt.Errorf("tmp file exists and cannot be cleaned: %w", cleanupErr)
		}
		err = os.Link(source, tmp)
	}
	if err != nil {
		return err
	}
	if err := os.Rename(tmp, target); err != nil {
		_ = os.Remove(tmp)
		return err
	}
	return nil
}

// createSymlink symlinks target to source (relative when possible),
// atomically via a temp file and rename.
func createSymlink(source, target string) error {
	if _, err := os.Stat(source); err != nil {
		return fmt.Errorf("source missing before symlink creation: %w", err)
	}

	tmp := target + ".filetwin.tmp"

	relPath, err := filepath.Rel(filepath.Dir(target), source)
	if err != nil {
		relPath = source
	}

	err = os.Symlink(relPath, tmp)
	if errors.Is(err, syscall.EEXIST) {
		if cleanupErr := tryCleanupOrphanedTmp(tmp, orphanedTmpMaxAge); cleanupErr != nil {
			return fmt.Errorf("tmp file exists and cannot be cleaned: %w", cleanupErr)
		}
		err = os.Symlink(relPath, tmp)
	}
	if err != nil {
		return err
	}
	if err := os.Rename(tmp, target); err != nil {
		_ = os.Remove(tmp)
		return err
	}
	return nil
}

// createReflink clones target from source using the Linux FICLONE ioctl
// (copy-on-write block sharing), atomically via a temp file and rename.
// Returns syscall.ENOTSUP-wrapping errors unchanged so callers can fall
// back to a hardlink on filesystems without reflink support (tmpfs, most
// non-btrfs/xfs-reflink setups).
func createReflink(source, target string) error {
	src, err := os.Open(source)
	if err != nil {
		return err
	}
	defer src.Close()

	tmp := target + ".filetwin.tmp"
	dst, err := os.OpenFile(tmp, os.O_CREATE|os.O_EXCL|os.O_WRONLY, 0o644)
	if errors.Is(err, os.ErrExist) {
		if cleanupErr := tryCleanupOrphanedTmp(tmp, orphanedTmpMaxAge); cleanupErr != nil {
			return fmt.Errorf("tmp file exists and cannot be cleaned: %w", cleanupErr)
		}
		dst, err = os.OpenFile(tmp, os.O_CREATE|os.O_EXCL|os.O_WRONLY, 0o644)
	}
	if err != nil {
		return err
	}

	ioctlErr := unix.IoctlFileClone(int(dst.Fd()), int(src.Fd()))
	closeErr := dst.Close()
	if ioctlErr != nil {
		_ = os.Remove(tmp)
		return ioctlErr
	}
	if closeErr != nil {
		_ = os.Remove(tmp)
		return closeErr
	}
	if err := os.Rename(tmp, target); err != nil {
		_ = os.Remove(tmp)
		return err
	}
	return nil
}

// tryCleanupOrphanedTmp removes path only if it is old enough to be
// confident no concurrent action owns it, and either a symlink (no data
// loss possible) or a regular file with other hardlinks still referencing
// its data (nlink > 1). A regular file with nlink == 1 is never removed: it
// may be the only copy.
func tryCleanupOrphanedTmp(path string, maxAge time.Duration) error {
	info, err := os.Lstat(path)
	if err != nil {
		return fmt.Errorf("lstat: %w", err)
	}

	cutoff := time.Now().Add(-maxAge)
	if info.ModTime().After(cutoff) {
		return fmt.Errorf("file too recent (mtime %v, cutoff %v)", info.ModTime(), cutoff)
	}

	mode := info.Mode()
	if mode&os.ModeSymlink != 0 {
		return os.Remove(path)
	}
	if !mode.IsRegular() {
		return fmt.Errorf("not a regular file or symlink (mode %v)", mode)
	}

	stat, ok := info.Sys().(*syscall.Stat_t)
	if !ok {
		return fmt.Errorf("cannot get syscall.Stat_t")
	}
	if stat.Nlink <= 1 {
		return fmt.Errorf("nlink=%d, may be only copy of data", stat.Nlink)
	}
	return os.Remove(path)
}

// flockExclusive acquires a non-blocking exclusive advisory lock on f's
// descriptor, returning an error immediately if another process holds it.
func flockExclusive(f *os.File) error {
	return syscall.Flock(int(f.Fd()), syscall.LOCK_EX|syscall.LOCK_NB)
}
