// Package classify decides which files are duplicate-detection
// candidates. The default predicate matches image and video files by
// extension; hosts can substitute their own extension list or accept
// every regular file.
package classify

import (
	"path/filepath"
	"strings"
)

// Default media extensions (without dot, lowercase).
var imageExtensions = []string{
	"jpg", "jpeg", "png", "bmp", "gif", "tiff", "tif",
	"webp", "heic", "heif", "raw", "cr2", "nef", "arw",
}

var videoExtensions = []string{
	"mp4", "m4v", "mov", "avi", "mkv", "webm", "wmv",
	"mpeg", "mpg", "mpe", "mts", "m2ts", "3gp", "flv", "ogv",
}

// Classifier answers path -> is-candidate.
type Classifier struct {
	extensions map[string]bool
	allFiles   bool
}

// New creates a classifier. A non-empty extensions list replaces the
// media defaults; allFiles makes every regular file a candidate.
func New(extensions []string, allFiles bool) *Classifier {
	c := &Classifier{
		extensions: make(map[string]bool),
		allFiles:   allFiles,
	}

	if len(extensions) > 0 {
		for _, ext := range extensions {
			c.extensions[normalize(ext)] = true
		}
		return c
	}

	for _, ext := range imageExtensions {
		c.extensions[ext] = true
	}
	for _, ext := range videoExtensions {
		c.extensions[ext] = true
	}
	return c
}

// IsCandidate reports whether the file at path should enter the scan.
func (c *Classifier) IsCandidate(path string) bool {
	if c.allFiles {
		return true
	}
	return c.extensions[GetExtension(path)]
}

// GetExtension returns the lowercased file extension without the dot.
func GetExtension(path string) string {
	ext := filepath.Ext(path)
	if len(ext) > 0 && ext[0] == '.' {
		ext = ext[1:]
	}
	return strings.ToLower(ext)
}

func normalize(ext string) string {
	return strings.ToLower(strings.TrimPrefix(ext, "."))
}
