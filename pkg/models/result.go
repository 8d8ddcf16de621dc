package models

import "time"

// ScanResult is the sole artifact of a scan. Immutable once returned.
type ScanResult struct {
	// Summary
	ID        string        `json:"id"`
	Root      string        `json:"root"`
	Mode      string        `json:"mode"`
	Policy    string        `json:"policy,omitempty"` // empty when directory dedupe is off
	StartTime time.Time     `json:"start_time"`
	EndTime   time.Time     `json:"end_time"`
	Duration  time.Duration `json:"duration"`

	FileGroups []*FileGroup      `json:"file_groups"`
	DirGroups  []*DirectoryGroup `json:"dir_groups,omitempty"`
	Errors     []ScanError       `json:"errors,omitempty"`

	Stats *ScanStats `json:"statistics"`

	Version string `json:"version"`
}

// ScanStats contains detailed scan statistics.
type ScanStats struct {
	CandidateFiles int   `json:"candidate_files"`
	HashedFiles    int   `json:"hashed_files"`
	SkippedFiles   int   `json:"skipped_files"`
	TotalDirs      int   `json:"total_dirs"`
	CandidateBytes int64 `json:"candidate_bytes"`
	HashedBytes    int64 `json:"hashed_bytes"`

	// Duplicate payload
	DuplicateFiles int   `json:"duplicate_files"`
	WastedBytes    int64 `json:"wasted_bytes"`

	// Performance
	FilesPerSecond float64 `json:"files_per_second"`
	WorkersUsed    int     `json:"workers_used"`
}

// HasFatal reports whether the scan aborted on a fatal error.
func (r *ScanResult) HasFatal() bool {
	for _, e := range r.Errors {
		if e.Kind.Fatal() {
			return true
		}
	}
	return false
}

// Exhaustive reports whether every candidate file was processed, i.e.
// callers may treat the groups as the complete truth for the subtree.
func (r *ScanResult) Exhaustive() bool {
	return len(r.Errors) == 0
}
