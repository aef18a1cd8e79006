package filter

import (
	"testing"

	"github.com/filetwin/filetwin/internal/candidate"
	"github.com/filetwin/filetwin/internal/config"
)

func TestCheckIsolationPushesSameRootApart(t *testing.T) {
	a := &candidate.Candidate{Ino: 1, UserOrder: 1, Size: 10}
	b := &candidate.Candidate{Ino: 2, UserOrder: 1, Size: 10}
	if v := Check(a, b, config.Config{Isolate: true}); v != Lt {
		t.Fatalf("expected Lt for same user_order under isolation, got %v", v)
	}
	b.UserOrder = 2
	if v := Check(a, b, config.Config{Isolate: true}); v != Tie {
		t.Fatalf("expected Tie for different user_order, got %v", v)
	}
}

func TestCheckOneFileSystem(t *testing.T) {
	a := &candidate.Candidate{Dev: 1, Size: 5}
	b := &candidate.Candidate{Dev: 2, Size: 5}
	if v := Check(a, b, config.Config{OneFileSystem: true}); v != Lt {
		t.Fatalf("expected Lt across devices under one-file-system, got %v", v)
	}
}

func TestCheckPermissions(t *testing.T) {
	a := &candidate.Candidate{Ino: 1, Mode: 0o644, UID: 1, GID: 1, Size: 5}
	b := &candidate.Candidate{Ino: 2, Mode: 0o600, UID: 1, GID: 1, Size: 5}
	if v := Check(a, b, config.Config{Permissions: true}); v != Lt {
		t.Fatalf("expected Lt for mismatched mode under -p, got %v", v)
	}
	b.Mode = 0o644
	if v := Check(a, b, config.Config{Permissions: true}); v != Tie {
		t.Fatalf("expected Tie once mode/uid/gid match, got %v", v)
	}
}

func TestCheckLinkageMatchRequiresHardLinksFlag(t *testing.T) {
	a := &candidate.Candidate{Dev: 1, Ino: 1, Size: 5}
	b := &candidate.Candidate{Dev: 1, Ino: 1, Size: 5}

	if v := Check(a, b, config.Config{}); v != Reject {
		t.Fatalf("expected Reject for same inode without --hardlinks, got %v", v)
	}
	if v := Check(a, b, config.Config{HardLinks: true}); v != Match {
		t.Fatalf("expected Match for same inode with --hardlinks, got %v", v)
	}
}

func TestCheckSizeOrdering(t *testing.T) {
	a := &candidate.Candidate{Dev: 1, Ino: 1, Size: 20}
	b := &candidate.Candidate{Dev: 1, Ino: 2, Size: 10}
	if v := Check(a, b, config.Config{}); v != Lt {
		t.Fatalf("expected Lt when a.Size > b.Size, got %v", v)
	}
	if v := Check(b, a, config.Config{}); v != Gt {
		t.Fatalf("expected Gt when a.Size < b.Size, got %v", v)
	}
	b.Size = 20
	if v := Check(a, b, config.Config{}); v != Tie {
		t.Fatalf("expected Tie for equal sizes, got %v", v)
	}
}

func TestCheckPrecedenceIsolationBeforeLinkage(t *testing.T) {
	// Same inode AND same user_order: isolation must win so two paths to
	// the same file within one root are pushed apart rather than reaching
	// the linkage rule at all.
	a := &candidate.Candidate{Dev: 1, Ino: 1, UserOrder: 1, Size: 5}
	b := &candidate.Candidate{Dev: 1, Ino: 1, UserOrder: 1, Size: 5}
	cfg := config.Config{Isolate: true, HardLinks: true}
	if v := Check(a, b, cfg); v != Lt {
		t.Fatalf("expected isolation to take precedence over linkage, got %v", v)
	}
}

func TestConfigSizeAdmits(t *testing.T) {
	cfg := config.Config{HasMinSize: true, MinSize: 100}
	if cfg.SizeAdmits(50) {
		t.Fatalf("expected size below MinSize to be excluded")
	}
	if !cfg.SizeAdmits(100) {
		t.Fatalf("expected size == MinSize to be admitted")
	}

	cfg = config.Config{HasMaxSize: true, MaxSize: 100}
	if cfg.SizeAdmits(101) {
		t.Fatalf("expected size above MaxSize to be excluded")
	}
	if !cfg.SizeAdmits(100) {
		t.Fatalf("expected size == MaxSize to be admitted")
	}
}
