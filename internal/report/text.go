package report

import (
	"fmt"
	"os"
	"strings"

	"github.com/dustin/go-humanize"
	"github.com/smolin/dupscan/pkg/models"
)

// generateText generates a text report
func (g *Generator) generateText(result *models.ScanResult, outputFile string) error {
	var sb strings.Builder

	// Header
	sb.WriteString("=" + strings.Repeat("=", 78) + "\n")
	sb.WriteString(fmt.Sprintf("  DUPSCAN DUPLICATE REPORT v%s\n", result.Version))
	sb.WriteString("=" + strings.Repeat("=", 78) + "\n\n")

	// Summary
	sb.WriteString("SUMMARY\n")
	sb.WriteString(strings.Repeat("-", 79) + "\n")
	sb.WriteString(fmt.Sprintf("Scan Root:        %s\n", result.Root))
	sb.WriteString(fmt.Sprintf("Scan Mode:        %s\n", result.Mode))
	if result.Policy != "" {
		sb.WriteString(fmt.Sprintf("Dir Policy:       %s\n", result.Policy))
	}
	sb.WriteString(fmt.Sprintf("Start Time:       %s\n", result.StartTime.Format("2006-01-02 15:04:05")))
	sb.WriteString(fmt.Sprintf("End Time:         %s\n", result.EndTime.Format("2006-01-02 15:04:05")))
	sb.WriteString(fmt.Sprintf("Duration:         %s\n", FormatDuration(result.Duration)))
	sb.WriteString(fmt.Sprintf("Candidate Files:  %d (%s)\n",
		result.Stats.CandidateFiles, humanize.IBytes(uint64(result.Stats.CandidateBytes))))
	sb.WriteString(fmt.Sprintf("Hashed Files:     %d (%s)\n",
		result.Stats.HashedFiles, humanize.IBytes(uint64(result.Stats.HashedBytes))))
	sb.WriteString(fmt.Sprintf("Skipped Files:    %d\n", result.Stats.SkippedFiles))
	sb.WriteString(fmt.Sprintf("DUPLICATE GROUPS: %d\n", len(result.FileGroups)))
	sb.WriteString(fmt.Sprintf("WASTED BYTES:     %s\n", humanize.IBytes(uint64(result.Stats.WastedBytes))))
	sb.WriteString("\n")

	// Duplicate file groups
	if len(result.FileGroups) > 0 {
		sb.WriteString("DUPLICATE FILES\n")
		sb.WriteString(strings.Repeat("=", 79) + "\n\n")

		for i, group := range SortedFileGroups(result.FileGroups) {
			sb.WriteString(fmt.Sprintf("[%d] %d files x %s (wasted %s)\n",
				i+1, len(group.Paths),
				humanize.IBytes(uint64(group.Size)),
				humanize.IBytes(uint64(group.WastedBytes()))))
			sb.WriteString(strings.Repeat("-", 79) + "\n")
			for _, path := range group.Paths {
				sb.WriteString(fmt.Sprintf("  %s\n", path))
			}
			sb.WriteString("\n")
		}
	} else {
		sb.WriteString("No duplicate files detected.\n\n")
	}

	// Duplicate directory groups
	if result.Policy != "" {
		if len(result.DirGroups) > 0 {
			sb.WriteString("DUPLICATE DIRECTORIES\n")
			sb.WriteString(strings.Repeat("=", 79) + "\n\n")

			for i, group := range SortedDirGroups(result.DirGroups) {
				sb.WriteString(fmt.Sprintf("[%d] %d dirs, %d files each, %s\n",
					i+1, len(group.Dirs), group.FileCount,
					humanize.IBytes(uint64(group.TotalBytes))))
				sb.WriteString(strings.Repeat("-", 79) + "\n")
				for _, dir := range group.Dirs {
					sb.WriteString(fmt.Sprintf("  %s\n", dir))
				}
				sb.WriteString("\n")
			}
		} else {
			sb.WriteString("No duplicate directories detected.\n\n")
		}
	}

	// Errors
	if len(result.Errors) > 0 {
		sb.WriteString("ERRORS\n")
		sb.WriteString(strings.Repeat("-", 79) + "\n")
		sb.WriteString("The scan was not exhaustive; some content could not be read.\n\n")
		for _, scanErr := range result.Errors {
			sb.WriteString(fmt.Sprintf("  [%s] %s: %s\n", scanErr.Kind, scanErr.Path, scanErr.Message))
		}
		sb.WriteString("\n")
	}

	// Performance stats
	sb.WriteString("PERFORMANCE\n")
	sb.WriteString(strings.Repeat("-", 79) + "\n")
	sb.WriteString(fmt.Sprintf("Files/Second:     %.2f\n", result.Stats.FilesPerSecond))
	sb.WriteString(fmt.Sprintf("Workers Used:     %d\n", result.Stats.WorkersUsed))
	sb.WriteString("\n")

	// Footer
	sb.WriteString(strings.Repeat("=", 79) + "\n")
	sb.WriteString("End of Report\n")
	sb.WriteString(strings.Repeat("=", 79) + "\n")

	return os.WriteFile(outputFile, []byte(sb.String()), 0644)
}
