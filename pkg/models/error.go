package models

// ErrorKind classifies a scan error.
type ErrorKind string

const (
	// ErrIO is an open/read/seek failure on a single file. Local: the
	// file drops out at the stage it failed, the scan continues.
	ErrIO ErrorKind = "io"

	// ErrCompareFailed means the byte-verification step itself errored,
	// as opposed to the files simply differing.
	ErrCompareFailed ErrorKind = "compare_failed"

	// ErrRootUnreadable is fatal: the scan root cannot be read at all.
	ErrRootUnreadable ErrorKind = "root_unreadable"

	// ErrConfigInvalid is fatal and detected before any file is touched.
	ErrConfigInvalid ErrorKind = "config_invalid"
)

// Fatal reports whether the kind aborts the whole scan.
func (k ErrorKind) Fatal() bool {
	return k == ErrRootUnreadable || k == ErrConfigInvalid
}

// ScanError records one failure without blocking scan progress.
type ScanError struct {
	Path    string    `json:"path"`
	Kind    ErrorKind `json:"kind"`
	Message string    `json:"message"`
}
