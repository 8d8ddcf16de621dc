package engine

import (
	"context"
	"path"
	"path/filepath"
	"sort"
	"strings"

	"github.com/smolin/dupscan/internal/config"
	"github.com/smolin/dupscan/internal/hash"
	"github.com/smolin/dupscan/pkg/models"
	"go.uber.org/zap"
)

// dirEntry is one file's contribution to the signatures of every
// directory above it. rel is slash-separated and relative to the scan
// root, so a single entry can be re-expressed relative to any ancestor.
type dirEntry struct {
	rel  string
	size int64
	hash uint64
}

// dirNode is one materialized directory. Only directories with at least
// one candidate file somewhere beneath them ever get a node.
type dirNode struct {
	rel      string // "." for the root
	children map[string]*dirNode
	files    []dirEntry // direct children only
	partial  bool       // a file directly inside failed hashing
}

// dedupeDirs aggregates the per-file signatures in cache into one digest
// per directory, in a single bottom-up pass, and groups directories with
// equal digests. Directories containing any failed file are excluded:
// their true content identity is unknown.
func (e *Engine) dedupeDirs(
	ctx context.Context,
	root string,
	cache *HashCache,
	failed map[string]bool,
) ([]*models.DirectoryGroup, int, error) {
	nodes := make(map[string]*dirNode)

	getNode := func(rel string) *dirNode {
		// Materialize the node and its whole ancestor chain up to the
		// root so aggregation can run parent-by-parent.
		for cur := rel; ; cur = path.Dir(cur) {
			node, ok := nodes[cur]
			if !ok {
				node = &dirNode{rel: cur, children: make(map[string]*dirNode)}
				nodes[cur] = node
			}
			if cur == "." {
				break
			}
			parentRel := path.Dir(cur)
			parent, ok := nodes[parentRel]
			if !ok {
				parent = &dirNode{rel: parentRel, children: make(map[string]*dirNode)}
				nodes[parentRel] = parent
			}
			parent.children[path.Base(cur)] = node
			if ok {
				break // ancestors above are already linked
			}
		}
		return nodes[rel]
	}

	relTo := func(p string) (string, bool) {
		rel, err := filepath.Rel(root, p)
		if err != nil || rel == ".." || strings.HasPrefix(rel, ".."+string(filepath.Separator)) {
			return "", false
		}
		return filepath.ToSlash(rel), true
	}

	cache.Range(func(p string, sig models.FileSig) {
		rel, ok := relTo(p)
		if !ok {
			return
		}
		node := getNode(path.Dir(rel))
		node.files = append(node.files, dirEntry{rel: rel, size: sig.Size, hash: sig.Hash})
	})

	for p := range failed {
		rel, ok := relTo(p)
		if !ok {
			continue
		}
		getNode(path.Dir(rel)).partial = true
	}

	rootNode, ok := nodes["."]
	if !ok {
		return nil, 0, nil // no hashed files, nothing to aggregate
	}

	policy := e.cfg.GetPolicy()
	var records []*models.DirectoryRecord

	// Post-order walk: each directory's multiset is the union of its
	// children's multisets plus its own direct files, so the whole tree
	// is aggregated in one pass instead of re-walking every subtree.
	var aggregate func(node *dirNode) ([]dirEntry, bool, error)
	aggregate = func(node *dirNode) ([]dirEntry, bool, error) {
		select {
		case <-ctx.Done():
			return nil, false, ctx.Err()
		default:
		}

		entries := append([]dirEntry(nil), node.files...)
		partial := node.partial

		names := make([]string, 0, len(node.children))
		for name := range node.children {
			names = append(names, name)
		}
		sort.Strings(names)

		for _, name := range names {
			childEntries, childPartial, err := aggregate(node.children[name])
			if err != nil {
				return nil, false, err
			}
			entries = append(entries, childEntries...)
			partial = partial || childPartial
		}

		if len(entries) > 0 {
			record := &models.DirectoryRecord{
				Path:         absPath(root, node.rel),
				FileCount:    len(entries),
				Completeness: models.Complete,
			}
			for _, entry := range entries {
				record.TotalBytes += entry.size
			}
			if partial {
				record.Completeness = models.PartialDueToErrors
			} else {
				record.Digest = digestEntries(node.rel, entries, policy)
			}
			records = append(records, record)
		}

		return entries, partial, nil
	}

	if _, _, err := aggregate(rootNode); err != nil {
		return nil, 0, err
	}

	// Group complete directories by digest.
	buckets := make(map[uint64][]*models.DirectoryRecord)
	for _, record := range records {
		if record.Completeness != models.Complete {
			e.logger.Debug("Directory excluded from grouping",
				zap.String("path", record.Path),
				zap.String("reason", "partial due to errors"))
			continue
		}
		buckets[record.Digest] = append(buckets[record.Digest], record)
	}

	var groups []*models.DirectoryGroup
	for digest, members := range buckets {
		if len(members) < 2 {
			continue
		}
		group := &models.DirectoryGroup{
			FileCount:  members[0].FileCount,
			TotalBytes: members[0].TotalBytes,
			Digest:     digest,
		}
		for _, member := range members {
			group.Dirs = append(group.Dirs, member.Path)
		}
		sort.Strings(group.Dirs)
		groups = append(groups, group)
	}

	sort.Slice(groups, func(i, j int) bool {
		if groups[i].TotalBytes != groups[j].TotalBytes {
			return groups[i].TotalBytes > groups[j].TotalBytes
		}
		if groups[i].FileCount != groups[j].FileCount {
			return groups[i].FileCount > groups[j].FileCount
		}
		return groups[i].Dirs[0] < groups[j].Dirs[0]
	})

	e.reportProgress("dirs", len(records), len(records),
		"Directory aggregation complete")

	return groups, len(records), nil
}

// digestEntries folds the subtree's identity tuples into one digest.
// Order independence comes from the explicit sort, not from commutative
// hashing.
func digestEntries(dirRel string, entries []dirEntry, policy config.EqualityPolicy) uint64 {
	b := hash.NewBuilder()

	switch policy {
	case config.PolicyStructural:
		// Identity tuple: (path relative to this directory, size, hash).
		// Renaming or moving a file changes the digest.
		type structEntry struct {
			rel  string
			size int64
			hash uint64
		}
		tuples := make([]structEntry, 0, len(entries))
		for _, entry := range entries {
			tuples = append(tuples, structEntry{
				rel:  relToDir(dirRel, entry.rel),
				size: entry.size,
				hash: entry.hash,
			})
		}
		sort.Slice(tuples, func(i, j int) bool {
			if tuples[i].rel != tuples[j].rel {
				return tuples[i].rel < tuples[j].rel
			}
			if tuples[i].size != tuples[j].size {
				return tuples[i].size < tuples[j].size
			}
			return tuples[i].hash < tuples[j].hash
		})
		for _, t := range tuples {
			b.WriteString(t.rel)
			b.WriteUint64(uint64(t.size))
			b.WriteUint64(t.hash)
		}

	default: // PolicyMultiset
		// Identity tuple: (size, hash). Names and layout are invisible.
		tuples := make([]models.FileSig, 0, len(entries))
		var totalBytes int64
		for _, entry := range entries {
			tuples = append(tuples, models.FileSig{Size: entry.size, Hash: entry.hash})
			totalBytes += entry.size
		}
		sort.Slice(tuples, func(i, j int) bool {
			if tuples[i].Size != tuples[j].Size {
				return tuples[i].Size < tuples[j].Size
			}
			return tuples[i].Hash < tuples[j].Hash
		})
		b.WriteUint64(uint64(len(tuples)))
		b.WriteUint64(uint64(totalBytes))
		for _, t := range tuples {
			b.WriteUint64(uint64(t.Size))
			b.WriteUint64(t.Hash)
		}
	}

	return b.Sum64()
}

// relToDir re-expresses a root-relative file path relative to the
// directory at dirRel. Separators stay canonical slashes; case is kept
// as received.
func relToDir(dirRel, fileRel string) string {
	if dirRel == "." {
		return fileRel
	}
	return strings.TrimPrefix(fileRel, dirRel+"/")
}

func absPath(root, rel string) string {
	if rel == "." {
		return filepath.Clean(root)
	}
	return filepath.Join(root, filepath.FromSlash(rel))
}
