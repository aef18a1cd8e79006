// Package hasher implements the pluggable 64-bit block-mixing primitive the
// search tree uses to filter candidates before falling back to a byte
// compare. The mixing function is BLAKE3 (github.com/zeebo/blake3, carried
// over from the teacher's Merkle-hashing sibling repo) truncated to its low
// 64 bits: not used for its cryptographic properties here, only because a
// streaming, resumable hash.Hash gives the spec's associativity property
// (mix(mix(h0,a),b) == mix(h0, a‖b)) for free — Sum() does not reset state,
// so writing the remainder of a file after taking the partial digest yields
// exactly the digest of the whole file.
package hasher

import (
	"encoding/binary"
	"hash"
	"io"
	"os"

	"github.com/klauspost/cpuid/v2"
	"github.com/zeebo/blake3"
)

const (
	// PartialHashSize is the number of leading bytes the partial hash
	// covers. The tie-break in searchtree relies on max_read never being
	// smaller than ChunkSize(); see the hard precondition note in
	// DESIGN.md.
	PartialHashSize = 4096

	// DefaultChunkSize bounds auto-probed chunk sizes from above.
	DefaultChunkSize = 32768

	// CheckMinimum is how many chunks a streaming read performs between
	// abort-flag polls.
	CheckMinimum = 256

	minChunkSize = 4096
)

// Mixer is a resumable 64-bit hash accumulator.
type Mixer struct {
	h hash.Hash
}

// NewMixer returns a fresh accumulator seeded at BLAKE3's default IV.
func NewMixer() *Mixer {
	return &Mixer{h: blake3.New()}
}

// Write feeds more bytes into the running hash.
func (m *Mixer) Write(b []byte) (int, error) { return m.h.Write(b) }

// Sum64 returns the low 64 bits of the current digest without resetting
// state — further Write calls continue accumulating from here, which is
// exactly how the partial hash seeds the full hash.
func (m *Mixer) Sum64() uint64 {
	var buf [8]byte
	sum := m.h.Sum(nil)
	copy(buf[:], sum[:8])
	return binary.BigEndian.Uint64(buf[:])
}

// ChunkSize probes the CPU's L1 data cache (via klauspost/cpuid, the same
// library BLAKE3 itself uses to pick a SIMD implementation) and returns half
// of it, rounded up to a 4 KiB multiple and clamped to [4096, CHUNK_SIZE].
// An unknown cache size yields DefaultChunkSize. This follows jdupes'
// cache-probe-based auto_chunk_size, replacing its direct
// sysconf/cpuid-instruction probe with a portable library call.
func ChunkSize() int64 {
	l1 := cpuid.CPU.Cache.L1D
	if l1 <= 0 {
		return DefaultChunkSize
	}
	size := int64(l1) / 2
	if rem := size % minChunkSize; rem != 0 {
		size += minChunkSize - rem
	}
	if size < minChunkSize {
		size = minChunkSize
	}
	if size > DefaultChunkSize {
		size = DefaultChunkSize
	}
	return size
}

// Session streams one file's bytes through a Mixer, letting a caller take
// the partial digest and later resume into the full digest without
// re-reading the prefix.
type Session struct {
	f *os.File
	m *Mixer
}

// Open opens path for a fresh hashing session.
func Open(path string) (*Session, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	return &Session{f: f, m: NewMixer()}, nil
}

// Close releases the underlying file handle. Always safe to call, including
// after a failed ReadChunked.
func (s *Session) Close() error { return s.f.Close() }

// ReadChunked writes up to n more bytes from the session's current file
// position into the mixer, chunkSize bytes at a time, polling abort every
// CheckMinimum chunks. It returns the running digest after the read. An
// abort mid-read is reported via aborted=true with whatever partial progress
// was made discarded by the caller (the candidate simply isn't cached yet).
func (s *Session) ReadChunked(n, chunkSize int64, abort func() bool) (sum uint64, aborted bool, err error) {
	if chunkSize <= 0 {
		chunkSize = DefaultChunkSize
	}
	buf := make([]byte, chunkSize)
	var remaining = n
	var chunks int
	for remaining > 0 {
		want := chunkSize
		if remaining < want {
			want = remaining
		}
		read, rerr := io.ReadFull(s.f, buf[:want])
		if read > 0 {
			s.m.Write(buf[:read])
			remaining -= int64(read)
		}
		if rerr != nil {
			return 0, false, rerr
		}
		chunks++
		if abort != nil && chunks%CheckMinimum == 0 && abort() {
			return 0, true, nil
		}
	}
	return s.m.Sum64(), false, nil
}
