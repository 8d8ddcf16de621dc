package engine

import (
	"context"
	"path/filepath"
	"sort"
	"testing"

	"github.com/smolin/dupscan/internal/config"
	"github.com/smolin/dupscan/pkg/models"
	"go.uber.org/zap"
)

func dirsConfig(policy string) *config.Config {
	cfg := &config.Config{
		Policy:  policy,
		Workers: 2,
	}
	cfg.EnableDirs()
	return cfg
}

func dirGroupSets(groups []*models.DirectoryGroup) [][]string {
	var out [][]string
	for _, g := range groups {
		dirs := append([]string(nil), g.Dirs...)
		sort.Strings(dirs)
		out = append(out, dirs)
	}
	sort.Slice(out, func(i, j int) bool { return out[i][0] < out[j][0] })
	return out
}

func scanDirs(t *testing.T, cfg *config.Config, root string) *models.ScanResult {
	t.Helper()
	result, err := New(cfg, zap.NewNop()).Scan(context.Background(), root)
	if err != nil {
		t.Fatalf("Scan() error = %v", err)
	}
	return result
}

func TestDedupeDirs_MultisetIgnoresNames(t *testing.T) {
	tmpDir := t.TempDir()
	content := []byte("same picture bytes")
	writeFile(t, filepath.Join(tmpDir, "a", "x.jpg"), content)
	writeFile(t, filepath.Join(tmpDir, "b", "y.jpg"), content)

	result := scanDirs(t, dirsConfig("multiset"), tmpDir)

	want := [][]string{{filepath.Join(tmpDir, "a"), filepath.Join(tmpDir, "b")}}
	got := dirGroupSets(result.DirGroups)
	if len(got) != 1 || got[0][0] != want[0][0] || got[0][1] != want[0][1] {
		t.Errorf("dir groups = %v, want %v", got, want)
	}
}

func TestDedupeDirs_MultisetIgnoresLayout(t *testing.T) {
	// Same content multiset, entirely different names and nesting.
	tmpDir := t.TempDir()
	c1 := []byte("first payload")
	c2 := []byte("second payload, longer")
	writeFile(t, filepath.Join(tmpDir, "p1", "sub", "one.jpg"), c1)
	writeFile(t, filepath.Join(tmpDir, "p1", "two.jpg"), c2)
	writeFile(t, filepath.Join(tmpDir, "p2", "dos.jpg"), c1)
	writeFile(t, filepath.Join(tmpDir, "p2", "nested", "uno.jpg"), c2)

	result := scanDirs(t, dirsConfig("multiset"), tmpDir)

	got := dirGroupSets(result.DirGroups)
	if len(got) != 1 {
		t.Fatalf("dir groups = %v, want exactly the p1/p2 pair", got)
	}
	want := []string{filepath.Join(tmpDir, "p1"), filepath.Join(tmpDir, "p2")}
	if got[0][0] != want[0] || got[0][1] != want[1] {
		t.Errorf("dir group = %v, want %v", got[0], want)
	}

	g := result.DirGroups[0]
	if g.FileCount != 2 {
		t.Errorf("group file count = %d, want 2", g.FileCount)
	}
	if g.TotalBytes != int64(len(c1)+len(c2)) {
		t.Errorf("group total bytes = %d, want %d", g.TotalBytes, len(c1)+len(c2))
	}
}

func TestDedupeDirs_StructuralRequiresLayout(t *testing.T) {
	tmpDir := t.TempDir()
	content := []byte("structural test bytes")
	writeFile(t, filepath.Join(tmpDir, "s1", "img.jpg"), content)
	writeFile(t, filepath.Join(tmpDir, "s2", "img.jpg"), content)
	writeFile(t, filepath.Join(tmpDir, "s3", "renamed.jpg"), content)

	structural := scanDirs(t, dirsConfig("structural"), tmpDir)
	got := dirGroupSets(structural.DirGroups)
	if len(got) != 1 || len(got[0]) != 2 {
		t.Fatalf("structural dir groups = %v, want the s1/s2 pair only", got)
	}
	for _, dir := range got[0] {
		if dir == filepath.Join(tmpDir, "s3") {
			t.Error("structural policy grouped a directory with a renamed file")
		}
	}

	multiset := scanDirs(t, dirsConfig("multiset"), tmpDir)
	got = dirGroupSets(multiset.DirGroups)
	if len(got) != 1 || len(got[0]) != 3 {
		t.Errorf("multiset dir groups = %v, want all three together", got)
	}
}

func TestDedupeDirs_NestedGroupsBothReported(t *testing.T) {
	// A duplicate parent does not hide its duplicate children.
	tmpDir := t.TempDir()
	c1 := []byte("top level file content")
	c2 := []byte("nested file")
	for _, parent := range []string{"p1", "p2"} {
		writeFile(t, filepath.Join(tmpDir, parent, "top.jpg"), c1)
		writeFile(t, filepath.Join(tmpDir, parent, "inner", "leaf.jpg"), c2)
	}

	result := scanDirs(t, dirsConfig("structural"), tmpDir)

	got := dirGroupSets(result.DirGroups)
	if len(got) != 2 {
		t.Fatalf("dir groups = %v, want parent pair and inner pair", got)
	}

	// Presentation order: larger subtree first.
	if result.DirGroups[0].TotalBytes < result.DirGroups[1].TotalBytes {
		t.Error("dir groups not sorted by total bytes descending")
	}
}

func TestDedupeDirs_NoCandidatesNoNode(t *testing.T) {
	tmpDir := t.TempDir()
	// Two directories holding only non-candidate files must never group,
	// not even with each other.
	writeFile(t, filepath.Join(tmpDir, "e1", "notes.txt"), []byte("text"))
	writeFile(t, filepath.Join(tmpDir, "e2", "notes.txt"), []byte("text"))
	content := []byte("actual media")
	writeFile(t, filepath.Join(tmpDir, "d1", "x.jpg"), content)
	writeFile(t, filepath.Join(tmpDir, "d2", "y.jpg"), content)

	result := scanDirs(t, dirsConfig("multiset"), tmpDir)

	got := dirGroupSets(result.DirGroups)
	if len(got) != 1 {
		t.Fatalf("dir groups = %v, want only the d1/d2 pair", got)
	}
	for _, dir := range got[0] {
		if dir == filepath.Join(tmpDir, "e1") || dir == filepath.Join(tmpDir, "e2") {
			t.Error("directory without candidates was grouped")
		}
	}
	if result.Stats.TotalDirs != 3 { // root, d1, d2
		t.Errorf("total dirs = %d, want 3", result.Stats.TotalDirs)
	}
}

func TestDedupeDirs_FailedFilePoisonsAncestors(t *testing.T) {
	tmpDir := t.TempDir()
	c1 := []byte("shared content one")
	c2 := []byte("shared content two!")
	for _, tree := range []string{"t1", "t2"} {
		writeFile(t, filepath.Join(tmpDir, tree, "f.jpg"), c1)
		writeFile(t, filepath.Join(tmpDir, tree, "g.jpg"), c2)
	}
	bad := filepath.Join(tmpDir, "t1", "g.jpg")

	e := New(dirsConfig("multiset"), zap.NewNop())
	e.open = failingOpener(map[string]bool{bad: true})

	result, err := e.Scan(context.Background(), tmpDir)
	if err != nil {
		t.Fatalf("Scan() error = %v", err)
	}

	// t1 has an unresolved file, so neither it nor the root can group;
	// t2 is complete but has no partner left.
	if len(result.DirGroups) != 0 {
		t.Errorf("dir groups = %v, want none", dirGroupSets(result.DirGroups))
	}
	if result.Exhaustive() {
		t.Error("result claims exhaustive despite a failed file")
	}

	// File-level grouping is unaffected for the healthy pair.
	found := false
	for _, g := range result.FileGroups {
		for _, p := range g.Paths {
			if p == filepath.Join(tmpDir, "t2", "f.jpg") {
				found = true
			}
		}
	}
	if !found {
		t.Error("healthy duplicate pair missing from file groups")
	}
}

func TestDigestEntries_MultisetOrderIndependent(t *testing.T) {
	entries := []dirEntry{
		{rel: "a/x.jpg", size: 10, hash: 111},
		{rel: "b/y.jpg", size: 20, hash: 222},
		{rel: "c.jpg", size: 30, hash: 333},
	}
	shuffled := []dirEntry{entries[2], entries[0], entries[1]}

	if digestEntries(".", entries, config.PolicyMultiset) != digestEntries(".", shuffled, config.PolicyMultiset) {
		t.Error("multiset digest depends on entry order")
	}
}

func TestDigestEntries_MultisetIgnoresPaths(t *testing.T) {
	a := []dirEntry{{rel: "a/x.jpg", size: 10, hash: 111}}
	b := []dirEntry{{rel: "totally/different.jpg", size: 10, hash: 111}}

	if digestEntries(".", a, config.PolicyMultiset) != digestEntries(".", b, config.PolicyMultiset) {
		t.Error("multiset digest depends on file paths")
	}
}

func TestDigestEntries_StructuralSensitiveToPath(t *testing.T) {
	a := []dirEntry{{rel: "x.jpg", size: 10, hash: 111}}
	b := []dirEntry{{rel: "y.jpg", size: 10, hash: 111}}

	if digestEntries(".", a, config.PolicyStructural) == digestEntries(".", b, config.PolicyStructural) {
		t.Error("structural digest ignores the relative path")
	}
}

func TestDigestEntries_StructuralRelativeToDir(t *testing.T) {
	// The same subtree under two different parents must digest equally:
	// entries are re-expressed relative to the directory being digested.
	a := []dirEntry{{rel: "p1/img.jpg", size: 10, hash: 111}}
	b := []dirEntry{{rel: "p2/img.jpg", size: 10, hash: 111}}

	if digestEntries("p1", a, config.PolicyStructural) != digestEntries("p2", b, config.PolicyStructural) {
		t.Error("structural digest not relative to the digested directory")
	}
}
