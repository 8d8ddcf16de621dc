package report

import (
	"encoding/csv"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/smolin/dupscan/pkg/models"
)

// generateCSV writes the file groups as CSV, one row per member. When
// directory groups are present they go to a sibling file with a "-dirs"
// suffix so each file keeps a single flat schema.
func (g *Generator) generateCSV(result *models.ScanResult, outputFile string) error {
	if err := writeFileGroupsCSV(result, outputFile); err != nil {
		return err
	}

	if len(result.DirGroups) > 0 {
		return writeDirGroupsCSV(result, dirsCSVPath(outputFile))
	}
	return nil
}

func writeFileGroupsCSV(result *models.ScanResult, outputFile string) error {
	f, err := os.Create(outputFile)
	if err != nil {
		return err
	}
	defer f.Close()

	w := csv.NewWriter(f)
	if err := w.Write([]string{"group_id", "file_size_bytes", "file_path"}); err != nil {
		return err
	}

	for i, group := range SortedFileGroups(result.FileGroups) {
		id := strconv.Itoa(i + 1)
		size := strconv.FormatInt(group.Size, 10)
		for _, path := range group.Paths {
			if err := w.Write([]string{id, size, path}); err != nil {
				return err
			}
		}
	}

	w.Flush()
	return w.Error()
}

func writeDirGroupsCSV(result *models.ScanResult, outputFile string) error {
	f, err := os.Create(outputFile)
	if err != nil {
		return err
	}
	defer f.Close()

	w := csv.NewWriter(f)
	if err := w.Write([]string{"group_id", "files_count", "total_bytes", "dir_path"}); err != nil {
		return err
	}

	for i, group := range SortedDirGroups(result.DirGroups) {
		id := strconv.Itoa(i + 1)
		count := strconv.Itoa(group.FileCount)
		total := strconv.FormatInt(group.TotalBytes, 10)
		for _, dir := range group.Dirs {
			if err := w.Write([]string{id, count, total, dir}); err != nil {
				return err
			}
		}
	}

	w.Flush()
	return w.Error()
}

// dirsCSVPath derives the directory-groups filename: report.csv becomes
// report-dirs.csv.
func dirsCSVPath(outputFile string) string {
	ext := filepath.Ext(outputFile)
	return strings.TrimSuffix(outputFile, ext) + "-dirs" + ext
}
