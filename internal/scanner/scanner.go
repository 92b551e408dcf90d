// Package scanner walks a source directory and discovers the photo files it
// contains, mapping each onto a models.PhotoFormat and handing back a flat
// path list for the orchestrator to plan against.
package scanner

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/adewale/olsen/pkg/models"
)

// DiscoveredFile is a single file the walk found, before any hashing or
// catalog lookup happens. Format is FormatUnknown for an unrecognized
// extension.
type DiscoveredFile struct {
	Path   string
	Format models.PhotoFormat
	Size   int64
	Mtime  int64
}

// Discover walks root recursively and returns every file it finds, each
// tagged with the models.PhotoFormat its extension maps to; Recognized
// drops the unrecognized ones. Symlinks are followed only when they
// resolve inside root; a symlink pointing outside the tree, or one that
// would revisit a directory already walked, is skipped rather than
// followed, so a cycle of symlinks cannot loop the walk forever.
func Discover(root string) ([]DiscoveredFile, error) {
	realRoot, err := filepath.EvalSymlinks(root)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve source root %s: %w", root, err)
	}

	visited := map[string]bool{realRoot: true}
	var files []DiscoveredFile

	var walk func(dir string) error
	walk = func(dir string) error {
		entries, err := os.ReadDir(dir)
		if err != nil {
			return fmt.Errorf("failed to read directory %s: %w", dir, err)
		}

		for _, entry := range entries {
			path := filepath.Join(dir, entry.Name())

			info, err := entry.Info()
			if err != nil {
				return fmt.Errorf("failed to stat %s: %w", path, err)
			}

			if info.Mode()&os.ModeSymlink != 0 {
				target, err := filepath.EvalSymlinks(path)
				if err != nil {
					// Broken symlink: skip rather than fail the whole walk.
					continue
				}
				if !withinRoot(realRoot, target) || visited[target] {
					continue
				}
				targetInfo, err := os.Stat(target)
				if err != nil {
					continue
				}
				if targetInfo.IsDir() {
					visited[target] = true
					if err := walk(target); err != nil {
						return err
					}
					continue
				}
				files = append(files, discoveredFileFrom(path, targetInfo))
				continue
			}

			if info.IsDir() {
				if err := walk(path); err != nil {
					return err
				}
				continue
			}

			files = append(files, discoveredFileFrom(path, info))
		}
		return nil
	}

	if err := walk(realRoot); err != nil {
		return nil, err
	}
	return files, nil
}

func discoveredFileFrom(path string, info os.FileInfo) DiscoveredFile {
	format := models.FormatFromExtension(filepath.Ext(path))
	return DiscoveredFile{
		Path:   path,
		Format: format,
		Size:   info.Size(),
		Mtime:  info.ModTime().Unix(),
	}
}

// Recognized filters a discovered file list down to formats the catalog
// knows how to index, dropping anything with an unrecognized extension.
func Recognized(files []DiscoveredFile) []DiscoveredFile {
	var out []DiscoveredFile
	for _, f := range files {
		if f.Format != models.FormatUnknown {
			out = append(out, f)
		}
	}
	return out
}

func withinRoot(root, path string) bool {
	rel, err := filepath.Rel(root, path)
	if err != nil {
		return false
	}
	if rel == "." {
		return true
	}
	return len(rel) > 0 && rel[0] != '.' && rel != ".."
}
