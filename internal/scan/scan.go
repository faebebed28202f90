package scan

import (
	"context"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"snapsort/internal/faults"
	"snapsort/internal/logging"
	"snapsort/internal/media"
)

// junkNames are artifacts that should never be organized or reported.
var junkNames = map[string]struct{}{
	".ds_store":   {},
	"thumbs.db":   {},
	"desktop.ini": {},
}

// Walk discovers every regular file under root and classifies it. The
// returned slice is in deterministic walk order. Unsupported files are
// included (the coordinator routes them to the Unknown bucket); junk files
// are dropped silently. A root that cannot be read at all is a run-level
// failure.
func Walk(ctx context.Context, root string, sniffBytes int, logger *slog.Logger) ([]media.File, error) {
	logger = logging.NewComponentLogger(logger, "scan")

	var files []media.File
	err := filepath.WalkDir(root, func(path string, entry fs.DirEntry, walkErr error) error {
		if walkErr != nil {
			if path == root {
				return faults.Wrap(faults.ErrSourceUnreadable, "scan", "walk", "source root unreadable", walkErr)
			}
			logger.Warn("skipping unreadable entry", logging.String("path", path), logging.Error(walkErr))
			if entry != nil && entry.IsDir() {
				return fs.SkipDir
			}
			return nil
		}
		if err := ctx.Err(); err != nil {
			return err
		}
		if entry.IsDir() {
			return nil
		}
		if !entry.Type().IsRegular() {
			return nil
		}
		if _, junk := junkNames[strings.ToLower(entry.Name())]; junk {
			logger.Debug("skipping junk file", logging.String("path", path))
			return nil
		}

		info, err := entry.Info()
		if err != nil {
			logger.Warn("skipping file without stat info", logging.String("path", path), logging.Error(err))
			return nil
		}

		kind, err := media.ClassifyFile(path, sniffBytes)
		if err != nil {
			// Unreadable header: keep the file with an unsupported kind so
			// the pipeline can report it instead of losing it.
			logger.Debug("classification read failed", logging.String("path", path), logging.Error(err))
			kind = media.KindUnsupported
		}

		files = append(files, media.File{
			Path:    path,
			Kind:    kind,
			Size:    info.Size(),
			ModTime: info.ModTime(),
		})
		return nil
	})
	if err != nil {
		return nil, err
	}

	logger.Info("scan complete", logging.Int("files", len(files)))
	return files, nil
}

// CleanupEmptyDirs removes directories left empty under root, deepest first.
// Junk files are deleted along the way so a directory holding nothing but a
// .DS_Store still counts as empty. The root itself is preserved. Returns the
// number of directories removed.
func CleanupEmptyDirs(root string) (int, error) {
	var dirs []string
	err := filepath.WalkDir(root, func(path string, entry fs.DirEntry, walkErr error) error {
		if walkErr != nil {
			return nil
		}
		if entry.IsDir() && path != root {
			dirs = append(dirs, path)
			return nil
		}
		if entry.Type().IsRegular() {
			if _, junk := junkNames[strings.ToLower(entry.Name())]; junk {
				_ = os.Remove(path)
			}
		}
		return nil
	})
	if err != nil {
		return 0, err
	}

	removed := 0
	// Deepest paths sort last in walk order; remove in reverse.
	for i := len(dirs) - 1; i >= 0; i-- {
		if removeIfEmpty(dirs[i]) {
			removed++
		}
	}
	return removed, nil
}

func removeIfEmpty(path string) bool {
	entries, err := os.ReadDir(path)
	if err != nil || len(entries) > 0 {
		return false
	}
	return os.Remove(path) == nil
}
