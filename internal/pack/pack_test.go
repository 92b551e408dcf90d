package pack

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/adewale/olsen/pkg/models"
)

func writeSourceFile(t *testing.T, path, contents string) {
	t.Helper()
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		t.Fatalf("MkdirAll failed: %v", err)
	}
	if err := os.WriteFile(path, []byte(contents), 0644); err != nil {
		t.Fatalf("WriteFile failed: %v", err)
	}
}

func TestTargetPathShardsOnSHAPrefix(t *testing.T) {
	got := TargetPath("/pack", "abcdef0123456789", models.FormatJPEG)
	want := "/pack/ab/abcdef0123456789.jpg"
	if got != want {
		t.Errorf("TargetPath() = %q; want %q", got, want)
	}
}

func TestDesiredSetIncludesSOTAndUngroupedPhotos(t *testing.T) {
	photos := []models.PhotoRecord{
		{ID: 1, Path: "/a.jpg"},
		{ID: 2, Path: "/b.jpg"},
		{ID: 3, Path: "/c.jpg"}, // ungrouped
	}
	groups := []models.DuplicateGroup{
		{Members: []int64{1, 2}, SourceOfTruth: 1},
	}

	desired := DesiredSet(photos, groups)
	ids := map[int64]bool{}
	for _, p := range desired {
		ids[p.ID] = true
	}
	if len(ids) != 2 || !ids[1] || !ids[3] {
		t.Errorf("DesiredSet() ids = %v; want {1, 3}", ids)
	}
}

func TestWriteCopiesAndReconciles(t *testing.T) {
	dir := t.TempDir()
	srcPath := filepath.Join(dir, "src", "photo.jpg")
	writeSourceFile(t, srcPath, "jpeg-bytes")

	packRoot := filepath.Join(dir, "pack")
	rec := models.PhotoRecord{
		Path:   srcPath,
		SHA256: [32]byte{0xAB, 0xCD},
		Format: models.FormatJPEG,
		Size:   10,
	}

	if err := Write(packRoot, []models.PhotoRecord{rec}, ProgressSink{}); err != nil {
		t.Fatalf("Write failed: %v", err)
	}

	target := TargetPath(packRoot, rec.SHA256Hex(), models.FormatJPEG)
	if _, err := os.Stat(target); err != nil {
		t.Fatalf("packed file must exist at its content-addressable path: %v", err)
	}

	manifest, err := OpenManifest(packRoot)
	if err != nil {
		t.Fatalf("OpenManifest failed: %v", err)
	}
	defer manifest.Close()
	has, err := manifest.Has(rec.SHA256Hex())
	if err != nil {
		t.Fatalf("manifest.Has failed: %v", err)
	}
	if !has {
		t.Error("manifest.Has() = false; want true after Write")
	}
}

func TestWriteCleansUpSuperseded(t *testing.T) {
	dir := t.TempDir()
	srcPath := filepath.Join(dir, "src", "photo.jpg")
	writeSourceFile(t, srcPath, "jpeg-bytes")

	packRoot := filepath.Join(dir, "pack")
	rec := models.PhotoRecord{
		Path: srcPath, SHA256: [32]byte{0x11}, Format: models.FormatJPEG, Size: 10,
	}
	if err := Write(packRoot, []models.PhotoRecord{rec}, ProgressSink{}); err != nil {
		t.Fatalf("Write failed: %v", err)
	}

	target := TargetPath(packRoot, rec.SHA256Hex(), models.FormatJPEG)
	if _, err := os.Stat(target); err != nil {
		t.Fatalf("Stat failed: %v", err)
	}

	// Rerunning Write with an empty desired set (the quality-upgrade
	// scenario: the JPEG's SHA is no longer in the pack's target set)
	// must remove the stale file and its manifest row.
	if err := Write(packRoot, nil, ProgressSink{}); err != nil {
		t.Fatalf("Write failed: %v", err)
	}

	if _, err := os.Stat(target); !os.IsNotExist(err) {
		t.Errorf("Stat(target) err = %v; want a not-exist error", err)
	}

	manifest, err := OpenManifest(packRoot)
	if err != nil {
		t.Fatalf("OpenManifest failed: %v", err)
	}
	defer manifest.Close()
	has, err := manifest.Has(rec.SHA256Hex())
	if err != nil {
		t.Fatalf("manifest.Has failed: %v", err)
	}
	if has {
		t.Error("manifest.Has() = true; want false after the record left the desired set")
	}
}

func TestWriteSkipsReconcileWhenAlreadyPresent(t *testing.T) {
	dir := t.TempDir()
	srcPath := filepath.Join(dir, "src", "photo.jpg")
	writeSourceFile(t, srcPath, "jpeg-bytes")

	packRoot := filepath.Join(dir, "pack")
	rec := models.PhotoRecord{
		Path: srcPath, SHA256: [32]byte{0x22}, Format: models.FormatJPEG, Size: 10,
	}
	if err := Write(packRoot, []models.PhotoRecord{rec}, ProgressSink{}); err != nil {
		t.Fatalf("Write failed: %v", err)
	}

	var packed int
	sink := ProgressSink{FilePacked: func(n int) { packed = n }}
	if err := Write(packRoot, []models.PhotoRecord{rec}, sink); err != nil {
		t.Fatalf("Write failed: %v", err)
	}

	if packed != 1 {
		t.Errorf("packed = %d; want 1, a second Write over the same desired record still reports it as reconciled", packed)
	}
}
