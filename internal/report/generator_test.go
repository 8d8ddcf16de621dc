package report

import (
	"encoding/csv"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/smolin/dupscan/internal/config"
	"github.com/smolin/dupscan/pkg/models"
	"go.uber.org/zap"
)

func sampleResult() *models.ScanResult {
	return &models.ScanResult{
		ID:        "test-scan-id",
		Root:      "/data/photos",
		Mode:      "full",
		Policy:    "multiset",
		StartTime: time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC),
		EndTime:   time.Date(2025, 6, 1, 12, 0, 5, 0, time.UTC),
		Duration:  5 * time.Second,
		FileGroups: []*models.FileGroup{
			{Size: 100, Hash: 111, Paths: []string{"/data/photos/a.jpg", "/data/photos/b.jpg"}},
			{Size: 5000, Hash: 222, Paths: []string{"/data/photos/x/big.mp4", "/data/photos/y/big.mp4", "/data/photos/z/big.mp4"}},
		},
		DirGroups: []*models.DirectoryGroup{
			{FileCount: 2, TotalBytes: 5100, Digest: 333, Dirs: []string{"/data/photos/x", "/data/photos/y"}},
		},
		Errors: []models.ScanError{
			{Path: "/data/photos/locked.jpg", Kind: models.ErrIO, Message: "permission denied"},
		},
		Stats: &models.ScanStats{
			CandidateFiles: 10,
			CandidateBytes: 20000,
			HashedFiles:    8,
			WastedBytes:    10100,
			DuplicateFiles: 5,
			WorkersUsed:    4,
		},
		Version: "0.1.0",
	}
}

func newTestGenerator(t *testing.T, format, output string) *Generator {
	t.Helper()
	g, err := NewGenerator(&config.Config{ReportFormat: format, OutputFile: output}, zap.NewNop())
	if err != nil {
		t.Fatalf("NewGenerator() error = %v", err)
	}
	return g
}

func TestGenerate_JSON(t *testing.T) {
	outFile := filepath.Join(t.TempDir(), "report.json")
	g := newTestGenerator(t, "json", outFile)

	path, err := g.Generate(sampleResult())
	if err != nil {
		t.Fatalf("Generate() error = %v", err)
	}
	if path == "" {
		t.Fatal("Generate() returned empty path for file format")
	}

	data, err := os.ReadFile(outFile)
	if err != nil {
		t.Fatalf("reading report: %v", err)
	}

	var decoded models.ScanResult
	if err := json.Unmarshal(data, &decoded); err != nil {
		t.Fatalf("report is not valid JSON: %v", err)
	}
	if decoded.ID != "test-scan-id" {
		t.Errorf("decoded ID = %q, want test-scan-id", decoded.ID)
	}
	if len(decoded.FileGroups) != 2 {
		t.Errorf("decoded file groups = %d, want 2", len(decoded.FileGroups))
	}
}

func TestGenerate_Text(t *testing.T) {
	outFile := filepath.Join(t.TempDir(), "report.txt")
	g := newTestGenerator(t, "text", outFile)

	if _, err := g.Generate(sampleResult()); err != nil {
		t.Fatalf("Generate() error = %v", err)
	}

	data, err := os.ReadFile(outFile)
	if err != nil {
		t.Fatalf("reading report: %v", err)
	}
	content := string(data)

	for _, want := range []string{
		"/data/photos",
		"DUPLICATE FILES",
		"DUPLICATE DIRECTORIES",
		"/data/photos/x/big.mp4",
		"not exhaustive",
		"permission denied",
	} {
		if !strings.Contains(content, want) {
			t.Errorf("text report missing %q", want)
		}
	}
}

func TestGenerate_CSV(t *testing.T) {
	tmpDir := t.TempDir()
	outFile := filepath.Join(tmpDir, "report.csv")
	g := newTestGenerator(t, "csv", outFile)

	if _, err := g.Generate(sampleResult()); err != nil {
		t.Fatalf("Generate() error = %v", err)
	}

	f, err := os.Open(outFile)
	if err != nil {
		t.Fatalf("opening report: %v", err)
	}
	defer f.Close()

	rows, err := csv.NewReader(f).ReadAll()
	if err != nil {
		t.Fatalf("parsing csv: %v", err)
	}

	// Header plus one row per group member (2 + 3).
	if len(rows) != 6 {
		t.Fatalf("csv rows = %d, want 6", len(rows))
	}
	if rows[0][0] != "group_id" || rows[0][2] != "file_path" {
		t.Errorf("csv header = %v", rows[0])
	}
	// Largest size first.
	if rows[1][1] != "5000" {
		t.Errorf("first group size = %s, want 5000", rows[1][1])
	}

	// Dir groups land in the sibling file.
	dirFile := filepath.Join(tmpDir, "report-dirs.csv")
	df, err := os.Open(dirFile)
	if err != nil {
		t.Fatalf("opening dirs report: %v", err)
	}
	defer df.Close()

	dirRows, err := csv.NewReader(df).ReadAll()
	if err != nil {
		t.Fatalf("parsing dirs csv: %v", err)
	}
	if len(dirRows) != 3 {
		t.Errorf("dirs csv rows = %d, want 3", len(dirRows))
	}
}

func TestGenerate_HTML(t *testing.T) {
	outFile := filepath.Join(t.TempDir(), "report.html")
	g := newTestGenerator(t, "html", outFile)

	if _, err := g.Generate(sampleResult()); err != nil {
		t.Fatalf("Generate() error = %v", err)
	}

	data, err := os.ReadFile(outFile)
	if err != nil {
		t.Fatalf("reading report: %v", err)
	}
	content := string(data)

	for _, want := range []string{
		"<!DOCTYPE html>",
		"/data/photos/a.jpg",
		"Duplicate Directories",
		"test-scan-id",
	} {
		if !strings.Contains(content, want) {
			t.Errorf("html report missing %q", want)
		}
	}
}

func TestGenerate_UnknownFormat(t *testing.T) {
	g := newTestGenerator(t, "yaml", "")
	if _, err := g.Generate(sampleResult()); err == nil {
		t.Error("Generate() accepted unknown format")
	}
}

func TestRenderHTML_EscapesPaths(t *testing.T) {
	result := sampleResult()
	result.FileGroups[0].Paths[0] = "/data/<script>alert(1)</script>.jpg"

	page := RenderHTML(result)
	if strings.Contains(page, "<script>alert(1)</script>") {
		t.Error("RenderHTML() did not escape path content")
	}
}

func TestSortedFileGroups(t *testing.T) {
	groups := []*models.FileGroup{
		{Size: 10, Paths: []string{"a", "b"}},
		{Size: 500, Paths: []string{"c", "d"}},
		{Size: 500, Paths: []string{"e", "f", "g"}},
	}

	sorted := SortedFileGroups(groups)
	if sorted[0].Size != 500 || len(sorted[0].Paths) != 3 {
		t.Errorf("first group = size %d members %d, want 500/3", sorted[0].Size, len(sorted[0].Paths))
	}
	if sorted[2].Size != 10 {
		t.Errorf("last group size = %d, want 10", sorted[2].Size)
	}
	// Input order untouched.
	if groups[0].Size != 10 {
		t.Error("SortedFileGroups() modified its input")
	}
}

func TestDirsCSVPath(t *testing.T) {
	if got := dirsCSVPath("report.csv"); got != "report-dirs.csv" {
		t.Errorf("dirsCSVPath(report.csv) = %s", got)
	}
	if got := dirsCSVPath("/tmp/out"); got != "/tmp/out-dirs" {
		t.Errorf("dirsCSVPath(/tmp/out) = %s", got)
	}
}

func TestFormatDuration(t *testing.T) {
	tests := []struct {
		d    time.Duration
		want string
	}{
		{500 * time.Millisecond, "500.00ms"},
		{2 * time.Second, "2.00s"},
		{90 * time.Second, "1m30.00s"},
		{3661 * time.Second, "1h1m1.00s"},
	}
	for _, tt := range tests {
		if got := FormatDuration(tt.d); got != tt.want {
			t.Errorf("FormatDuration(%v) = %s, want %s", tt.d, got, tt.want)
		}
	}
}
