// Package exif extracts the narrow slice of EXIF metadata the matcher needs
// for triangulation: capture time, camera model, and orientation.
package exif

import (
	"fmt"
	"os"
	"strings"
	"time"

	goexif "github.com/dsoprea/go-exif/v3"

	"github.com/adewale/olsen/pkg/models"
)

// Extract reads the EXIF block of filePath and returns the fields relevant
// to duplicate matching. A file with no EXIF block (PNG, many WebP files)
// is not an error: it returns a zero-value ExifData.
func Extract(filePath string) (models.ExifData, error) {
	data, err := os.ReadFile(filePath)
	if err != nil {
		return models.ExifData{}, fmt.Errorf("failed to read %s: %w", filePath, err)
	}

	rawExif, err := goexif.SearchAndExtractExif(data)
	if err != nil {
		// No EXIF segment at all is common and not a failure worth
		// propagating; the record simply carries no EXIF fields.
		return models.ExifData{}, nil
	}

	entries, _, err := goexif.GetFlatExifData(rawExif, nil)
	if err != nil {
		return models.ExifData{}, fmt.Errorf("failed to parse EXIF in %s: %w", filePath, err)
	}

	var out models.ExifData
	for _, entry := range entries {
		val := entry.Value
		if val == nil {
			continue
		}

		switch entry.TagName {
		case "Model":
			out.CameraModel = strings.Trim(fmt.Sprintf("%v", val), "\x00 ")
		case "Orientation":
			if v, ok := val.([]uint16); ok && len(v) > 0 {
				out.Orientation = int(v[0])
			}
		case "DateTimeOriginal":
			if s, ok := val.(string); ok {
				if t, err := parseDateTime(s); err == nil {
					out.CapturedAt = t
				}
			}
		case "DateTime":
			if out.CapturedAt.IsZero() {
				if s, ok := val.(string); ok {
					if t, err := parseDateTime(s); err == nil {
						out.CapturedAt = t
					}
				}
			}
		}
	}

	return out, nil
}

func parseDateTime(s string) (time.Time, error) {
	s = strings.Trim(s, "\x00 ")
	if s == "" {
		return time.Time{}, fmt.Errorf("empty date string")
	}

	formats := []string{
		"2006:01:02 15:04:05",
		"2006:01:02 15:04:05.000",
		"2006-01-02 15:04:05",
		"2006-01-02T15:04:05",
		"2006-01-02T15:04:05Z",
	}
	for _, format := range formats {
		if t, err := time.Parse(format, s); err == nil {
			return t.Truncate(time.Second), nil
		}
	}
	return time.Time{}, fmt.Errorf("unable to parse EXIF date %q", s)
}
