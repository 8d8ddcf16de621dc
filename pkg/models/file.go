package models

// CandidateItem is a file selected by the traversal layer for
// duplicate detection. It is immutable for the duration of a scan.
type CandidateItem struct {
	Path string // full path
	Size int64  // size in bytes at enumeration time
}

// FileSig is the content identity of a fully hashed file.
type FileSig struct {
	Size int64  `json:"size"`
	Hash uint64 `json:"hash"`
}
