package ingest

import (
	"io/fs"
	"log/slog"
	"path/filepath"
	"sort"
)

// DirStats summarizes a directory scan.
type DirStats struct {
	Scanned uint32 // files visited
	Matched uint32 // files with an allowed image extension
	Skipped uint32 // hidden entries skipped
	Failed  uint32 // entries the walker could not stat
}

// DiscoverImages walks root and returns the image files under it, sorted for
// a stable processing order. Unreadable entries are counted and walked past
// rather than aborting the scan. Hidden entries are skipped when skipHidden
// is set, except for the root itself.
func DiscoverImages(root string, skipHidden bool) ([]string, DirStats, error) {
	var (
		paths []string
		stats DirStats
	)
	err := filepath.WalkDir(root, func(path string, d fs.DirEntry, walkErr error) error {
		if walkErr != nil {
			slog.Warn("scan entry failed", "path", path, "error", walkErr)
			stats.Failed++
			return nil // continue walking
		}
		if skipHidden && IsHidden(path) && path != root {
			stats.Skipped++
			if d.IsDir() {
				return filepath.SkipDir
			}
			return nil
		}
		if d.IsDir() {
			return nil
		}
		stats.Scanned++
		if AllowedExt(path) {
			stats.Matched++
			paths = append(paths, path)
		}
		return nil
	})
	if err != nil {
		return paths, stats, err
	}
	sort.Strings(paths)
	return paths, stats, nil
}
