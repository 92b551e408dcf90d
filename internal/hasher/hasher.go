// Package hasher computes the two content fingerprints the catalog stores
// per photo: a streaming SHA-256 of the raw bytes, and a pair of 64-bit
// perceptual hashes (aHash, dHash) derived from a fixed 9x8 pixel buffer.
//
// The perceptual hash's bit layout is a versioned contract shared with
// internal/catalog (catalog.PhashVersion). Any change to the decode, resize,
// or luminance steps below must bump that constant so every cataloged photo
// is re-hashed rather than silently compared against a stale bit pattern.
package hasher

import (
	"crypto/sha256"
	"fmt"
	"image"
	"image/color"
	_ "image/jpeg"
	_ "image/png"
	"io"
	"os"

	_ "golang.org/x/image/bmp"
	_ "golang.org/x/image/tiff"
	_ "golang.org/x/image/webp"

	"github.com/nfnt/resize"

	"github.com/adewale/olsen/internal/quality"
)

// hashWidth and hashHeight size the working buffer: 9 columns wide so dHash
// can compare each pixel to its right-hand neighbor across 8 columns per
// row, 8 rows tall so aHash has a full 8x8 left-hand sub-block to average.
const (
	hashWidth  = 9
	hashHeight = 8
)

// SHA256File streams filePath through SHA-256 without holding it entirely
// in memory.
func SHA256File(filePath string) ([32]byte, error) {
	var out [32]byte

	f, err := os.Open(filePath)
	if err != nil {
		return out, fmt.Errorf("failed to open %s: %w", filePath, err)
	}
	defer f.Close()

	h := sha256.New()
	if _, err := io.Copy(h, f); err != nil {
		return out, fmt.Errorf("failed to hash %s: %w", filePath, err)
	}

	copy(out[:], h.Sum(nil))
	return out, nil
}

// PerceptualHash decodes filePath, corrects for EXIF orientation, and
// returns the aHash/dHash pair. Callers must check
// models.PhotoFormat.SupportsPerceptualHash before calling this: RAW and
// HEIC files are not decoded here.
func PerceptualHash(filePath string, orientation int) (aHash, dHash uint64, err error) {
	f, err := os.Open(filePath)
	if err != nil {
		return 0, 0, fmt.Errorf("failed to open %s: %w", filePath, err)
	}
	defer f.Close()

	img, format, err := image.Decode(f)
	if err != nil {
		return 0, 0, fmt.Errorf("failed to decode %s: %w", filePath, err)
	}

	// A color JPEG is hashed from its luma plane alone: the decoded Y
	// channel is wrapped as a grayscale image and the chroma planes are
	// ignored from here on.
	if ycc, ok := img.(*image.YCbCr); ok && format == "jpeg" {
		img = &image.Gray{Pix: ycc.Y, Stride: ycc.YStride, Rect: ycc.Rect}
	}

	tracker := quality.NewOrientationTracker()
	if err := tracker.Apply(orientation); err != nil {
		return 0, 0, fmt.Errorf("failed to hash %s: %w", filePath, err)
	}
	oriented, _ := quality.ApplyOrientation(img, tracker.Value())

	small := resize.Resize(hashWidth, hashHeight, oriented, resize.Lanczos3)

	var lum [hashHeight][hashWidth]float64
	for y := 0; y < hashHeight; y++ {
		for x := 0; x < hashWidth; x++ {
			lum[y][x] = luminance(small.At(x, y))
		}
	}

	aHash = averageHash(lum)
	dHash = differenceHash(lum)
	return aHash, dHash, nil
}

// luminance applies the BT.601 coefficients to a pixel's 16-bit RGBA
// components, matching the weighting the teacher's color-extraction code
// uses elsewhere in the corpus for grayscale conversion.
func luminance(c color.Color) float64 {
	r, g, b, _ := c.RGBA()
	return 0.299*float64(r>>8) + 0.587*float64(g>>8) + 0.114*float64(b>>8)
}

// averageHash sets bit i for the i-th pixel (row-major) of the left-hand 8x8
// sub-block whose luminance is at or above the sub-block's mean.
func averageHash(lum [hashHeight][hashWidth]float64) uint64 {
	var sum float64
	for y := 0; y < hashHeight; y++ {
		for x := 0; x < hashHeight; x++ {
			sum += lum[y][x]
		}
	}
	mean := sum / float64(hashHeight*hashHeight)

	var hash uint64
	bit := uint(0)
	for y := 0; y < hashHeight; y++ {
		for x := 0; x < hashHeight; x++ {
			if lum[y][x] >= mean {
				hash |= 1 << bit
			}
			bit++
		}
	}
	return hash
}

// differenceHash sets bit i when pixel (x, y)'s right-hand neighbor
// (x+1, y) is brighter than it, row-major across all 8 columns of each of
// the 8 rows.
func differenceHash(lum [hashHeight][hashWidth]float64) uint64 {
	var hash uint64
	bit := uint(0)
	for y := 0; y < hashHeight; y++ {
		for x := 0; x < hashHeight; x++ {
			if lum[y][x+1] > lum[y][x] {
				hash |= 1 << bit
			}
			bit++
		}
	}
	return hash
}

// HammingDistance counts the differing bits between two 64-bit hashes.
func HammingDistance(a, b uint64) int {
	x := a ^ b
	count := 0
	for x != 0 {
		x &= x - 1
		count++
	}
	return count
}
