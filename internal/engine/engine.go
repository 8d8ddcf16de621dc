package engine

import (
	"context"
	"fmt"
	"io"
	"os"
	"runtime"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/smolin/dupscan/internal/classify"
	"github.com/smolin/dupscan/internal/config"
	"github.com/smolin/dupscan/internal/filesystem"
	"github.com/smolin/dupscan/internal/hash"
	"github.com/smolin/dupscan/pkg/models"
	"go.uber.org/zap"
)

// Version is stamped into every ScanResult.
const Version = "0.1.0"

// ProgressCallback is called to report scan progress
type ProgressCallback func(phase string, current, total int, message string)

// Engine is the duplicate-detection engine. It is stateless between
// Scan invocations; all intermediate state lives and dies with one scan.
type Engine struct {
	cfg      *config.Config
	logger   *zap.Logger
	open     func(path string) (io.ReadSeekCloser, error)
	progress ProgressCallback
}

// New creates a new engine instance
func New(cfg *config.Config, logger *zap.Logger) *Engine {
	return &Engine{
		cfg:    cfg,
		logger: logger,
		open:   filesystem.Open,
	}
}

// SetProgressCallback sets the progress callback function
func (e *Engine) SetProgressCallback(cb ProgressCallback) {
	e.progress = cb
}

// reportProgress calls the progress callback if set
func (e *Engine) reportProgress(phase string, current, total int, message string) {
	if e.progress != nil {
		e.progress(phase, current, total, message)
	}
}

// Scan walks the subtree under root, detects duplicate files and (when
// configured) duplicate directories, and returns the immutable result.
// Per-file failures are accumulated in the result's Errors; only an
// invalid configuration, an unreadable root, or cancellation produce a
// non-nil error.
func (e *Engine) Scan(ctx context.Context, root string) (*models.ScanResult, error) {
	result := &models.ScanResult{
		ID:        uuid.NewString(),
		Root:      root,
		Mode:      e.cfg.Mode,
		StartTime: time.Now(),
		Stats:     &models.ScanStats{},
		Version:   Version,
	}
	if e.cfg.Dirs {
		result.Policy = e.cfg.Policy
	}

	if err := e.cfg.Validate(); err != nil {
		result.Errors = append(result.Errors, models.ScanError{
			Kind: models.ErrConfigInvalid, Message: err.Error(),
		})
		e.finalize(result)
		return result, fmt.Errorf("invalid configuration: %w", err)
	}

	info, err := os.Stat(root)
	if err != nil || !info.IsDir() {
		msg := "not a directory"
		if err != nil {
			msg = err.Error()
		}
		result.Errors = append(result.Errors, models.ScanError{
			Path: root, Kind: models.ErrRootUnreadable, Message: msg,
		})
		e.finalize(result)
		return result, fmt.Errorf("unreadable root %s: %s", root, msg)
	}

	workers := e.cfg.Workers
	if workers <= 0 {
		workers = runtime.NumCPU()
	}
	result.Stats.WorkersUsed = workers

	e.logger.Info("Starting scan",
		zap.String("path", root),
		zap.String("mode", e.cfg.Mode),
		zap.Bool("dirs", e.cfg.Dirs),
		zap.Int("workers", workers))

	// Phase 1: enumerate candidates.
	items, err := e.collect(ctx, root)
	if err != nil {
		e.finalize(result)
		return result, err
	}
	result.Stats.CandidateFiles = len(items)
	for _, item := range items {
		result.Stats.CandidateBytes += item.Size
	}

	errs := NewErrorCollector()
	cache := NewHashCache()

	// Phases 2-4: fingerprint, full hash, verified grouping.
	groups, failed, err := e.dedupeFiles(ctx, workers, items, cache, errs)
	if err != nil {
		e.finalize(result)
		return result, err
	}
	result.FileGroups = groups

	// Phase 5: directory aggregation, after file hashing has converged.
	if e.cfg.Dirs {
		dirGroups, dirCount, derr := e.dedupeDirs(ctx, root, cache, failed)
		if derr != nil {
			e.finalize(result)
			return result, derr
		}
		result.DirGroups = dirGroups
		result.Stats.TotalDirs = dirCount
	}

	result.Errors = append(result.Errors, errs.List()...)

	result.Stats.HashedFiles = cache.Len()
	result.Stats.SkippedFiles = result.Stats.CandidateFiles - result.Stats.HashedFiles - len(failed)
	if result.Stats.SkippedFiles < 0 {
		result.Stats.SkippedFiles = 0
	}
	cache.Range(func(_ string, sig models.FileSig) {
		result.Stats.HashedBytes += sig.Size
	})
	for _, g := range groups {
		result.Stats.DuplicateFiles += len(g.Paths)
		result.Stats.WastedBytes += g.WastedBytes()
	}

	e.finalize(result)

	e.logger.Info("Scan completed",
		zap.Duration("duration", result.Duration),
		zap.Int("file_groups", len(result.FileGroups)),
		zap.Int("dir_groups", len(result.DirGroups)),
		zap.Int("errors", len(result.Errors)))

	return result, nil
}

func (e *Engine) finalize(result *models.ScanResult) {
	result.EndTime = time.Now()
	result.Duration = result.EndTime.Sub(result.StartTime)

	if secs := result.Duration.Seconds(); secs > 0 {
		result.Stats.FilesPerSecond = float64(result.Stats.HashedFiles) / secs
	}
}

// collect walks the subtree and gathers candidate items.
func (e *Engine) collect(ctx context.Context, root string) ([]models.CandidateItem, error) {
	classifier := classify.New(e.cfg.Extensions, e.cfg.AllFiles)
	maxSize := filesystem.ParseSize(e.cfg.MaxSize)
	walker := filesystem.NewWalker(classifier, e.cfg.Exclude, maxSize, e.logger)

	var items []models.CandidateItem
	err := walker.Walk(root, func(item models.CandidateItem) error {
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}
		items = append(items, item)
		if len(items)%512 == 0 {
			e.reportProgress("collect", len(items), 0, item.Path)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	e.reportProgress("collect", len(items), len(items),
		fmt.Sprintf("Found %d candidate files", len(items)))
	return items, nil
}

type fpKey struct {
	size int64
	sig  uint64
}

type digestKey struct {
	size int64
	hash uint64
}

// dedupeFiles runs the layered file pipeline: size partition ->
// fingerprint -> full hash -> byte-verified groups. It returns the
// confirmed groups and the set of paths whose content identity is
// unknown (hash or verification failures), which poisons directory
// aggregation above them.
func (e *Engine) dedupeFiles(
	ctx context.Context,
	workers int,
	items []models.CandidateItem,
	cache *HashCache,
	errs *ErrorCollector,
) ([]*models.FileGroup, map[string]bool, error) {
	fullMode := e.cfg.GetScanMode() == config.ModeFull
	failed := make(map[string]bool)

	// 1. Partition by exact size. Size-unique files can never be
	// duplicates; in fast mode they are not hashed at all.
	bySize := make(map[int64][]models.CandidateItem)
	for _, item := range items {
		bySize[item.Size] = append(bySize[item.Size], item)
	}

	var fpJobs []models.CandidateItem
	for _, partition := range bySize {
		if len(partition) >= 2 {
			fpJobs = append(fpJobs, partition...)
		}
	}

	// 2. Quick fingerprints within shared-size partitions.
	fpBuckets := make(map[fpKey][]string)
	fpFailed := make(map[string]bool)
	fpResults, err := e.runHashPool(ctx, workers, "fingerprint", fpJobs, e.fingerprintFile)
	if err != nil {
		return nil, failed, err
	}
	for _, r := range fpResults {
		if r.err != nil {
			errs.Append(r.path, models.ErrIO, fmt.Sprintf("fingerprint: %v", r.err))
			fpFailed[r.path] = true
			continue
		}
		key := fpKey{size: r.size, sig: r.value}
		fpBuckets[key] = append(fpBuckets[key], r.path)
	}

	// 3. Full hashes. Full mode hashes every candidate (directory
	// digests need all of them, and a fingerprint failure is retried
	// here); fast mode only hashes files whose fingerprint bucket still
	// has company.
	var hashJobs []models.CandidateItem
	if fullMode {
		hashJobs = items
	} else {
		inBucket := make(map[string]bool)
		for _, bucket := range fpBuckets {
			if len(bucket) >= 2 {
				for _, path := range bucket {
					inBucket[path] = true
				}
			}
		}
		for _, item := range fpJobs {
			if inBucket[item.Path] {
				hashJobs = append(hashJobs, item)
			}
		}
	}

	hashResults, err := e.runHashPool(ctx, workers, "hash", hashJobs, e.fullHashFile)
	if err != nil {
		return nil, failed, err
	}
	for _, r := range hashResults {
		if r.err != nil {
			errs.Append(r.path, models.ErrIO, fmt.Sprintf("full hash: %v", r.err))
			failed[r.path] = true
			continue
		}
		cache.Put(r.path, models.FileSig{Size: r.size, Hash: r.value})
	}

	// In fast mode a fingerprint failure leaves the file unresolved for
	// good; record it as failed unless the hash phase covered it.
	for path := range fpFailed {
		if _, ok := cache.Get(path); !ok {
			failed[path] = true
		}
	}

	// 4. Bucket by (size, full hash) and confirm with byte comparison.
	buckets := make(map[digestKey][]string)
	for _, partition := range bySize {
		if len(partition) < 2 {
			continue
		}
		for _, item := range partition {
			sig, ok := cache.Get(item.Path)
			if !ok {
				continue
			}
			key := digestKey{size: sig.Size, hash: sig.Hash}
			buckets[key] = append(buckets[key], item.Path)
		}
	}

	keys := make([]digestKey, 0, len(buckets))
	for key := range buckets {
		keys = append(keys, key)
	}
	sort.Slice(keys, func(i, j int) bool {
		if keys[i].size != keys[j].size {
			return keys[i].size > keys[j].size
		}
		return keys[i].hash < keys[j].hash
	})

	bufSize := e.bufferSize()
	var groups []*models.FileGroup
	for _, key := range keys {
		select {
		case <-ctx.Done():
			return nil, failed, ctx.Err()
		default:
		}

		bucket := buckets[key]
		if len(bucket) < 2 {
			continue
		}
		sort.Strings(bucket)

		// Byte equality is transitive, so comparing every member against
		// a single representative is sufficient; no union-find needed.
		// That assumption must be revisited if the comparison ever
		// becomes approximate.
		representative := bucket[0]
		confirmed := []string{representative}
		for _, path := range bucket[1:] {
			equal, verr := e.verifyPair(representative, path, bufSize)
			if verr != nil {
				errs.Append(path, models.ErrCompareFailed, verr.Error())
				failed[path] = true
				continue
			}
			if equal {
				confirmed = append(confirmed, path)
			}
			// A mismatch is a genuine hash collision: the file simply
			// stays a singleton, it is not an error.
		}

		if len(confirmed) >= 2 {
			groups = append(groups, &models.FileGroup{
				Size:  key.size,
				Hash:  key.hash,
				Paths: confirmed,
			})
		}
	}

	e.reportProgress("verify", len(groups), len(groups),
		fmt.Sprintf("Confirmed %d duplicate groups", len(groups)))

	return groups, failed, nil
}

func (e *Engine) bufferSize() int {
	if e.cfg.BufferSize > 0 {
		return e.cfg.BufferSize
	}
	return config.DefaultBufferSize
}

func (e *Engine) fingerprintFile(item models.CandidateItem) (uint64, error) {
	r, err := e.open(item.Path)
	if err != nil {
		return 0, err
	}
	defer r.Close()
	return hash.Fingerprint(r, item.Size)
}

func (e *Engine) fullHashFile(item models.CandidateItem) (uint64, error) {
	r, err := e.open(item.Path)
	if err != nil {
		return 0, err
	}
	defer r.Close()
	return hash.Full(r, e.bufferSize())
}

// verifyPair byte-compares two files already known to share size and
// hash. Size equality is guaranteed by the bucket key, so no separate
// short-circuit is needed here.
func (e *Engine) verifyPair(a, b string, bufSize int) (bool, error) {
	ra, err := e.open(a)
	if err != nil {
		return false, fmt.Errorf("open %s: %w", a, err)
	}
	defer ra.Close()

	rb, err := e.open(b)
	if err != nil {
		return false, fmt.Errorf("open %s: %w", b, err)
	}
	defer rb.Close()

	return hash.Equal(ra, rb, bufSize)
}

type poolResult struct {
	path  string
	size  int64
	value uint64
	err   error
}

// runHashPool fans the per-file jobs out over a bounded worker pool.
// Jobs are independent; the only shared state is the results channel.
func (e *Engine) runHashPool(
	ctx context.Context,
	workers int,
	phase string,
	jobs []models.CandidateItem,
	fn func(models.CandidateItem) (uint64, error),
) ([]poolResult, error) {
	if len(jobs) == 0 {
		return nil, nil
	}

	jobChan := make(chan models.CandidateItem, workers*2)
	resultChan := make(chan poolResult, workers*2)

	var wg sync.WaitGroup
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for item := range jobChan {
				select {
				case <-ctx.Done():
					return
				default:
				}
				value, err := fn(item)
				resultChan <- poolResult{path: item.Path, size: item.Size, value: value, err: err}
			}
		}()
	}

	go func() {
		defer close(jobChan)
		for _, item := range jobs {
			select {
			case <-ctx.Done():
				return
			case jobChan <- item:
			}
		}
	}()

	go func() {
		wg.Wait()
		close(resultChan)
	}()

	results := make([]poolResult, 0, len(jobs))
	lastReport := time.Now()
	for r := range resultChan {
		results = append(results, r)
		if time.Since(lastReport) > 100*time.Millisecond || len(results)%100 == 0 {
			e.reportProgress(phase, len(results), len(jobs), r.path)
			lastReport = time.Now()
		}
	}
	e.reportProgress(phase, len(results), len(jobs), "")

	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return results, nil
}
