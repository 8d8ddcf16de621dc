package hash

import (
	stdhash "hash"
	"hash/fnv"
)

// Builder accumulates a streaming digest out of mixed fields. The
// directory-signature engine uses it to fold sorted identity tuples into
// a single value; callers are responsible for feeding fields in a
// deterministic order.
type Builder struct {
	h stdhash.Hash64
}

// NewBuilder returns an empty digest builder.
func NewBuilder() *Builder {
	return &Builder{h: fnv.New64a()}
}

// WriteUint64 folds v in as 8 little-endian bytes.
func (b *Builder) WriteUint64(v uint64) {
	writeUint64(b.h, v)
}

// WriteString folds the raw bytes of s in.
func (b *Builder) WriteString(s string) {
	b.h.Write([]byte(s))
}

// Sum64 returns the current digest value.
func (b *Builder) Sum64() uint64 {
	return b.h.Sum64()
}
