package models

import "strings"

// PhotoFormat is the closed set of image formats the catalog understands.
type PhotoFormat int

const (
	FormatUnknown PhotoFormat = iota
	FormatWebP
	FormatHEIC
	FormatJPEG
	FormatPNG
	FormatTIFF
	FormatCR2
	FormatCR3
	FormatNEF
	FormatARW
	FormatORF
	FormatRAF
	FormatRW2
	FormatDNG
)

var extensionFormats = map[string]PhotoFormat{
	".cr2":  FormatCR2,
	".cr3":  FormatCR3,
	".nef":  FormatNEF,
	".arw":  FormatARW,
	".orf":  FormatORF,
	".raf":  FormatRAF,
	".rw2":  FormatRW2,
	".dng":  FormatDNG,
	".tiff": FormatTIFF,
	".tif":  FormatTIFF,
	".png":  FormatPNG,
	".jpg":  FormatJPEG,
	".jpeg": FormatJPEG,
	".heic": FormatHEIC,
	".webp": FormatWebP,
}

// FormatFromExtension maps a file extension (with or without leading dot) to
// a PhotoFormat. Returns FormatUnknown for anything the catalog doesn't track.
func FormatFromExtension(ext string) PhotoFormat {
	ext = strings.ToLower(ext)
	if !strings.HasPrefix(ext, ".") {
		ext = "." + ext
	}
	f, ok := extensionFormats[ext]
	if !ok {
		return FormatUnknown
	}
	return f
}

// QualityTier ranks formats for source-of-truth election: higher wins.
// RAW variants (5) > TIFF (4) > PNG (3) > JPEG (2) > HEIC (1) > WebP (0).
func (f PhotoFormat) QualityTier() int {
	switch f {
	case FormatCR2, FormatCR3, FormatNEF, FormatARW, FormatORF, FormatRAF, FormatRW2, FormatDNG:
		return 5
	case FormatTIFF:
		return 4
	case FormatPNG:
		return 3
	case FormatJPEG:
		return 2
	case FormatHEIC:
		return 1
	case FormatWebP:
		return 0
	default:
		return -1
	}
}

// SupportsPerceptualHash reports whether the decode+resize+hash pipeline
// can run on this format. HEIC and RAW are excluded to avoid decoder hangs
// and unsupported colorspaces.
func (f PhotoFormat) SupportsPerceptualHash() bool {
	switch f {
	case FormatJPEG, FormatPNG, FormatTIFF, FormatWebP:
		return true
	default:
		return false
	}
}

// Extension returns the lowercase, format-canonical extension (without the
// leading dot) used when naming pack files.
func (f PhotoFormat) Extension() string {
	switch f {
	case FormatCR2:
		return "cr2"
	case FormatCR3:
		return "cr3"
	case FormatNEF:
		return "nef"
	case FormatARW:
		return "arw"
	case FormatORF:
		return "orf"
	case FormatRAF:
		return "raf"
	case FormatRW2:
		return "rw2"
	case FormatDNG:
		return "dng"
	case FormatTIFF:
		return "tiff"
	case FormatPNG:
		return "png"
	case FormatJPEG:
		return "jpg"
	case FormatHEIC:
		return "heic"
	case FormatWebP:
		return "webp"
	default:
		return ""
	}
}

// String renders the format's canonical name, used for logging and the
// catalog's persisted representation.
func (f PhotoFormat) String() string {
	switch f {
	case FormatCR2:
		return "CR2"
	case FormatCR3:
		return "CR3"
	case FormatNEF:
		return "NEF"
	case FormatARW:
		return "ARW"
	case FormatORF:
		return "ORF"
	case FormatRAF:
		return "RAF"
	case FormatRW2:
		return "RW2"
	case FormatDNG:
		return "DNG"
	case FormatTIFF:
		return "TIFF"
	case FormatPNG:
		return "PNG"
	case FormatJPEG:
		return "JPEG"
	case FormatHEIC:
		return "HEIC"
	case FormatWebP:
		return "WebP"
	default:
		return "Unknown"
	}
}

// FormatFromString parses a format's canonical name back into a PhotoFormat,
// used when reading persisted rows out of the catalog.
func FormatFromString(s string) PhotoFormat {
	switch strings.ToUpper(s) {
	case "CR2":
		return FormatCR2
	case "CR3":
		return FormatCR3
	case "NEF":
		return FormatNEF
	case "ARW":
		return FormatARW
	case "ORF":
		return FormatORF
	case "RAF":
		return FormatRAF
	case "RW2":
		return FormatRW2
	case "DNG":
		return FormatDNG
	case "TIFF":
		return FormatTIFF
	case "PNG":
		return FormatPNG
	case "JPEG":
		return FormatJPEG
	case "HEIC":
		return FormatHEIC
	case "WEBP":
		return FormatWebP
	default:
		return FormatUnknown
	}
}
