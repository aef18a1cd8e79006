package walker

import (
	"io/fs"
	"syscall"

	"github.com/filetwin/filetwin/internal/candidate"
)

// devIno extracts the (device, inode) pair from a FileInfo's platform Sys()
// value, following the teacher's newFileInfo precedent of asserting
// *syscall.Stat_t directly rather than special-casing by GOOS.
func devIno(info fs.FileInfo) (candidate.DevIno, bool) {
	stat, ok := info.Sys().(*syscall.Stat_t)
	if !ok {
		return candidate.DevIno{}, false
	}
	return candidate.DevIno{Dev: uint64(stat.Dev), Ino: stat.Ino}, true //nolint:unconvert // platform-dependent type
}

func linkCount(info fs.FileInfo) uint32 {
	if stat, ok := info.Sys().(*syscall.Stat_t); ok {
		return uint32(stat.Nlink)
	}
	return 0
}

func ownerUID(info fs.FileInfo) uint32 {
	if stat, ok := info.Sys().(*syscall.Stat_t); ok {
		return stat.Uid
	}
	return 0
}

func ownerGID(info fs.FileInfo) uint32 {
	if stat, ok := info.Sys().(*syscall.Stat_t); ok {
		return stat.Gid
	}
	return 0
}

// linkCapped reports whether nlink has hit the platform's hard-link count
// ceiling, at which point further hardlinking of this file must be avoided.
// Linux has no practical cap under ext4/xfs; this returns false until a
// platform that does enforce one is wired in.
func linkCapped(nlink uint32) bool {
	return false
}
