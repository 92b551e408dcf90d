package hasher

import (
	"image"
	"image/color"
	"image/png"
	"os"
	"path/filepath"
	"testing"
)

func writePNG(t *testing.T, path string, img image.Image) {
	t.Helper()
	f, err := os.Create(path)
	if err != nil {
		t.Fatalf("Create(%s) failed: %v", path, err)
	}
	defer f.Close()
	if err := png.Encode(f, img); err != nil {
		t.Fatalf("png.Encode failed: %v", err)
	}
}

// gradientImage builds a deterministic left-to-right brightness ramp so the
// aHash/dHash bit patterns it produces are stable across runs.
func gradientImage(w, h int) image.Image {
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			v := uint8(x * 255 / w)
			img.Set(x, y, color.RGBA{R: v, G: v, B: v, A: 255})
		}
	}
	return img
}

func TestSHA256FileIsDeterministic(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "f.bin")
	if err := os.WriteFile(path, []byte("hello duplicate detector"), 0644); err != nil {
		t.Fatalf("WriteFile failed: %v", err)
	}

	a, err := SHA256File(path)
	if err != nil {
		t.Fatalf("SHA256File failed: %v", err)
	}
	b, err := SHA256File(path)
	if err != nil {
		t.Fatalf("SHA256File failed: %v", err)
	}
	if a != b {
		t.Error("SHA256File returned different digests for the same file across calls")
	}
}

func TestSHA256FileDiffersOnContent(t *testing.T) {
	dir := t.TempDir()
	p1 := filepath.Join(dir, "a.bin")
	p2 := filepath.Join(dir, "b.bin")
	if err := os.WriteFile(p1, []byte("one"), 0644); err != nil {
		t.Fatalf("WriteFile failed: %v", err)
	}
	if err := os.WriteFile(p2, []byte("two"), 0644); err != nil {
		t.Fatalf("WriteFile failed: %v", err)
	}

	a, err := SHA256File(p1)
	if err != nil {
		t.Fatalf("SHA256File failed: %v", err)
	}
	b, err := SHA256File(p2)
	if err != nil {
		t.Fatalf("SHA256File failed: %v", err)
	}
	if a == b {
		t.Error("SHA256File returned identical digests for different content")
	}
}

func TestPerceptualHashIsStableAcrossCalls(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "gradient.png")
	writePNG(t, path, gradientImage(64, 64))

	a1, d1, err := PerceptualHash(path, 0)
	if err != nil {
		t.Fatalf("PerceptualHash failed: %v", err)
	}
	a2, d2, err := PerceptualHash(path, 0)
	if err != nil {
		t.Fatalf("PerceptualHash failed: %v", err)
	}

	if a1 != a2 {
		t.Errorf("aHash changed across calls: %x vs %x", a1, a2)
	}
	if d1 != d2 {
		t.Errorf("dHash changed across calls: %x vs %x", d1, d2)
	}
}

func TestPerceptualHashDifferenceHashCapturesGradientDirection(t *testing.T) {
	dir := t.TempDir()
	ltr := filepath.Join(dir, "ltr.png")
	writePNG(t, ltr, gradientImage(64, 64))

	_, dLTR, err := PerceptualHash(ltr, 0)
	if err != nil {
		t.Fatalf("PerceptualHash failed: %v", err)
	}

	// dHash should not be the all-zero degenerate pattern for a monotonic
	// brightness ramp.
	if dLTR == 0 {
		t.Error("dHash = 0 for a monotonic gradient; want a non-degenerate pattern")
	}
}

func TestHammingDistance(t *testing.T) {
	cases := []struct {
		a, b uint64
		want int
	}{
		{0xFF, 0xFF, 0},
		{0b1000, 0b0000, 1},
		{0, ^uint64(0), 64},
	}
	for _, c := range cases {
		if got := HammingDistance(c.a, c.b); got != c.want {
			t.Errorf("HammingDistance(%b, %b) = %d; want %d", c.a, c.b, got, c.want)
		}
	}
}

func TestPerceptualHashRejectsUndecodableFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "not-an-image.png")
	if err := os.WriteFile(path, []byte("this is not image data"), 0644); err != nil {
		t.Fatalf("WriteFile failed: %v", err)
	}

	if _, _, err := PerceptualHash(path, 0); err == nil {
		t.Error("PerceptualHash succeeded on undecodable data; want error")
	}
}
