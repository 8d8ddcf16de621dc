package models

// FileGroup is a confirmed set of byte-identical files. Every member has
// the same size and full hash and has been byte-compared against the
// group representative, so membership never rests on the hash alone.
type FileGroup struct {
	Size  int64    `json:"size"`
	Hash  uint64   `json:"hash"`
	Paths []string `json:"paths"` // sorted, len >= 2
}

// WastedBytes returns the bytes that could be reclaimed by keeping a
// single copy of the group.
func (g *FileGroup) WastedBytes() int64 {
	if len(g.Paths) < 2 {
		return 0
	}
	return g.Size * int64(len(g.Paths)-1)
}

// Completeness says whether every candidate file beneath a directory was
// hashed successfully.
type Completeness int

const (
	Complete Completeness = iota
	PartialDueToErrors
)

// DirectoryRecord is the aggregate content identity of one directory,
// computed over every candidate file in its subtree. Directories with no
// candidate files are never materialized.
type DirectoryRecord struct {
	Path         string
	FileCount    int
	TotalBytes   int64
	Digest       uint64
	Completeness Completeness
}

// DirectoryGroup is a set of directories whose aggregate digests match.
// Only Complete directories are ever grouped.
type DirectoryGroup struct {
	FileCount  int      `json:"file_count"`
	TotalBytes int64    `json:"total_bytes"`
	Digest     uint64   `json:"digest"`
	Dirs       []string `json:"dirs"` // sorted, len >= 2
}
