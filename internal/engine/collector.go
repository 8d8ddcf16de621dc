package engine

import (
	"sync"

	"github.com/smolin/dupscan/pkg/models"
)

// ErrorCollector accumulates per-item failures without aborting the
// scan. Safe for concurrent append; the recorded order carries no
// meaning.
type ErrorCollector struct {
	mu   sync.Mutex
	errs []models.ScanError
}

// NewErrorCollector creates an empty collector.
func NewErrorCollector() *ErrorCollector {
	return &ErrorCollector{}
}

// Append records one failure.
func (c *ErrorCollector) Append(path string, kind models.ErrorKind, message string) {
	c.mu.Lock()
	c.errs = append(c.errs, models.ScanError{Path: path, Kind: kind, Message: message})
	c.mu.Unlock()
}

// List returns a snapshot of everything recorded so far.
func (c *ErrorCollector) List() []models.ScanError {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make([]models.ScanError, len(c.errs))
	copy(out, c.errs)
	return out
}

// Len returns the number of recorded errors.
func (c *ErrorCollector) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.errs)
}

// HashCache maps path -> (size, full hash). Each path is written at most
// once and never mutated afterwards, so readers after the hashing phase
// need no locking discipline beyond using Get.
type HashCache struct {
	mu sync.RWMutex
	m  map[string]models.FileSig
}

// NewHashCache creates an empty cache.
func NewHashCache() *HashCache {
	return &HashCache{m: make(map[string]models.FileSig)}
}

// Put records the signature for path. The first write wins.
func (c *HashCache) Put(path string, sig models.FileSig) {
	c.mu.Lock()
	if _, ok := c.m[path]; !ok {
		c.m[path] = sig
	}
	c.mu.Unlock()
}

// Get returns the signature for path, if hashed.
func (c *HashCache) Get(path string) (models.FileSig, bool) {
	c.mu.RLock()
	sig, ok := c.m[path]
	c.mu.RUnlock()
	return sig, ok
}

// Len returns the number of hashed files.
func (c *HashCache) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.m)
}

// Range calls fn for every cached entry.
func (c *HashCache) Range(fn func(path string, sig models.FileSig)) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	for path, sig := range c.m {
		fn(path, sig)
	}
}
