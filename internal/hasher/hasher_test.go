package hasher

import (
	"os"
	"path/filepath"
	"testing"
)

func TestMixerAssociativity(t *testing.T) {
	whole := NewMixer()
	whole.Write([]byte("hello "))
	whole.Write([]byte("world"))
	wholeSum := whole.Sum64()

	combined := NewMixer()
	combined.Write([]byte("hello world"))
	if got := combined.Sum64(); got != wholeSum {
		t.Fatalf("mix(mix(h0,a),b) != mix(h0, a concat b): %d vs %d", got, wholeSum)
	}
}

func TestMixerDeterministic(t *testing.T) {
	a := NewMixer()
	a.Write([]byte("deterministic"))
	b := NewMixer()
	b.Write([]byte("deterministic"))
	if a.Sum64() != b.Sum64() {
		t.Fatalf("same input produced different digests")
	}
}

func TestSessionReadChunkedResumesFromPartial(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "f.bin")
	contents := make([]byte, 10000)
	for i := range contents {
		contents[i] = byte(i)
	}
	if err := os.WriteFile(path, contents, 0o644); err != nil {
		t.Fatal(err)
	}

	sess, err := Open(path)
	if err != nil {
		t.Fatal(err)
	}
	defer sess.Close()

	partial, aborted, err := sess.ReadChunked(4096, 1024, nil)
	if err != nil || aborted {
		t.Fatalf("partial read failed: err=%v aborted=%v", err, aborted)
	}

	full, aborted, err := sess.ReadChunked(int64(len(contents))-4096, 1024, nil)
	if err != nil || aborted {
		t.Fatalf("full read failed: err=%v aborted=%v", err, aborted)
	}

	whole := NewMixer()
	whole.Write(contents)
	want := whole.Sum64()

	if full != want {
		t.Fatalf("resumed full hash %d != whole-file hash %d (partial was %d)", full, want, partial)
	}
}

func TestSessionReadChunkedAborts(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "f.bin")
	if err := os.WriteFile(path, make([]byte, 1<<20), 0o644); err != nil {
		t.Fatal(err)
	}

	sess, err := Open(path)
	if err != nil {
		t.Fatal(err)
	}
	defer sess.Close()

	calls := 0
	abortAfterFirstCheck := func() bool {
		calls++
		return true
	}

	_, aborted, err := sess.ReadChunked(1<<20, 512, abortAfterFirstCheck)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !aborted {
		t.Fatalf("expected abort to be reported")
	}
	if calls == 0 {
		t.Fatalf("abort function was never polled")
	}
}

func TestChunkSizeWithinBounds(t *testing.T) {
	size := ChunkSize()
	if size < minChunkSize || size > DefaultChunkSize {
		t.Fatalf("chunk size %d out of bounds [%d, %d]", size, minChunkSize, DefaultChunkSize)
	}
	if size%minChunkSize != 0 {
		t.Fatalf("chunk size %d is not a 4KiB multiple", size)
	}
}
