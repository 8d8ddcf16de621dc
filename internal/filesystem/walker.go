package filesystem

import (
	"os"
	"path/filepath"
	"strings"

	"github.com/smolin/dupscan/internal/classify"
	"github.com/smolin/dupscan/pkg/models"
	"go.uber.org/zap"
)

// Walker walks the filesystem and enumerates candidate files. It applies
// the classifier predicate and the size guard so the engine only ever
// sees items it should hash.
type Walker struct {
	classifier *classify.Classifier
	logger     *zap.Logger
	exclude    map[string]bool
	maxSize    int64 // 0 = no limit
}

// NewWalker creates a new filesystem walker
func NewWalker(classifier *classify.Classifier, exclude []string, maxSize int64, logger *zap.Logger) *Walker {
	// Build exclude map for fast lookup
	excludeMap := make(map[string]bool)
	for _, dir := range exclude {
		excludeMap[dir] = true
	}

	return &Walker{
		classifier: classifier,
		logger:     logger,
		exclude:    excludeMap,
		maxSize:    maxSize,
	}
}

// Walk recursively walks the directory tree rooted at root and invokes
// the callback for every candidate file. Unreadable entries below the
// root are logged and skipped; the walk continues.
func (w *Walker) Walk(root string, callback func(models.CandidateItem) error) error {
	return filepath.Walk(root, func(path string, info os.FileInfo, err error) error {
		if err != nil {
			w.logger.Warn("Error accessing path", zap.String("path", path), zap.Error(err))
			return nil // continue walking
		}

		relPath, rerr := filepath.Rel(root, path)
		if rerr != nil {
			relPath = path
		}

		if info.IsDir() {
			if path != root && w.shouldExclude(info.Name(), relPath) {
				w.logger.Debug("Skipping excluded directory", zap.String("path", relPath))
				return filepath.SkipDir
			}
			return nil
		}

		// Regular files only: symlinks, devices and the like are not
		// byte-comparable content.
		if !info.Mode().IsRegular() {
			return nil
		}

		if !w.classifier.IsCandidate(path) {
			return nil
		}

		if w.maxSize > 0 && info.Size() > w.maxSize {
			w.logger.Debug("File exceeds max size, skipping",
				zap.String("path", path),
				zap.Int64("size", info.Size()))
			return nil
		}

		return callback(models.CandidateItem{Path: path, Size: info.Size()})
	})
}

// shouldExclude checks if a directory should be excluded
func (w *Walker) shouldExclude(name, relPath string) bool {
	if w.exclude[name] {
		return true
	}

	for _, part := range strings.Split(relPath, string(os.PathSeparator)) {
		if w.exclude[part] {
			return true
		}
	}

	return false
}
