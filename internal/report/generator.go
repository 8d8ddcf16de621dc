package report

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/olekukonko/tablewriter"
	"github.com/smolin/dupscan/internal/config"
	"github.com/smolin/dupscan/pkg/models"
	"go.uber.org/zap"
)

// ANSI color codes
const (
	colorReset  = "\033[0m"
	colorBold   = "\033[1m"
	colorDim    = "\033[2m"
	colorRed    = "\033[31m"
	colorGreen  = "\033[32m"
	colorYellow = "\033[33m"
	colorCyan   = "\033[36m"
	colorWhite  = "\033[37m"
	colorGray   = "\033[38;5;245m"
)

// FormatDuration formats duration to a human-readable string with max 2 decimal places
func FormatDuration(d time.Duration) string {
	if d < time.Second {
		return fmt.Sprintf("%.2fms", float64(d.Nanoseconds())/1e6)
	} else if d < time.Minute {
		return fmt.Sprintf("%.2fs", d.Seconds())
	} else if d < time.Hour {
		mins := int(d.Minutes())
		secs := d.Seconds() - float64(mins*60)
		return fmt.Sprintf("%dm%.2fs", mins, secs)
	}
	hours := int(d.Hours())
	mins := int(d.Minutes()) - hours*60
	secs := d.Seconds() - float64(hours*3600) - float64(mins*60)
	return fmt.Sprintf("%dh%dm%.2fs", hours, mins, secs)
}

// Generator generates scan reports in various formats
type Generator struct {
	config *config.Config
	logger *zap.Logger
}

// NewGenerator creates a new report generator
func NewGenerator(cfg *config.Config, logger *zap.Logger) (*Generator, error) {
	return &Generator{
		config: cfg,
		logger: logger,
	}, nil
}

// Generate writes a report for the scan result. With no format configured
// it prints to the console and returns ""; otherwise it returns the
// absolute path of the written file.
func (g *Generator) Generate(result *models.ScanResult) (string, error) {
	format := g.config.ReportFormat
	outputFile := g.config.OutputFile

	if format == "" {
		g.printConsole(result)
		return "", nil
	}

	if outputFile == "" {
		timestamp := time.Now().Format("20060102-150405")
		switch format {
		case "json":
			outputFile = fmt.Sprintf("DUPSCAN-REPORT-%s.json", timestamp)
		case "txt", "text":
			outputFile = fmt.Sprintf("DUPSCAN-REPORT-%s.txt", timestamp)
		case "csv":
			outputFile = fmt.Sprintf("DUPSCAN-REPORT-%s.csv", timestamp)
		case "html":
			outputFile = fmt.Sprintf("DUPSCAN-REPORT-%s.html", timestamp)
		default:
			return "", fmt.Errorf("unknown report format: %s", format)
		}
	}

	g.logger.Info("Generating report",
		zap.String("format", format),
		zap.String("output", outputFile))

	var err error
	switch format {
	case "json":
		err = g.generateJSON(result, outputFile)
	case "txt", "text":
		err = g.generateText(result, outputFile)
	case "csv":
		err = g.generateCSV(result, outputFile)
	case "html":
		err = g.generateHTML(result, outputFile)
	default:
		return "", fmt.Errorf("unknown report format: %s", format)
	}

	if err != nil {
		return "", fmt.Errorf("failed to generate %s report: %w", format, err)
	}

	absPath, _ := filepath.Abs(outputFile)
	return absPath, nil
}

// printConsole prints results to stdout with colors
func (g *Generator) printConsole(result *models.ScanResult) {
	fmt.Println()
	fmt.Printf("%s%sSCAN COMPLETE%s\n", colorBold, colorCyan, colorReset)
	fmt.Println()

	fmt.Printf("  %sPath:%s       %s\n", colorGray, colorReset, result.Root)
	fmt.Printf("  %sMode:%s       %s\n", colorGray, colorReset, result.Mode)
	if result.Policy != "" {
		fmt.Printf("  %sPolicy:%s     %s\n", colorGray, colorReset, result.Policy)
	}
	fmt.Printf("  %sFiles:%s      %d (%s)\n", colorGray, colorReset,
		result.Stats.CandidateFiles, humanize.IBytes(uint64(result.Stats.CandidateBytes)))
	fmt.Printf("  %sDuration:%s   %s\n", colorGray, colorReset, FormatDuration(result.Duration))
	fmt.Println()

	if len(result.FileGroups) == 0 && len(result.DirGroups) == 0 {
		fmt.Printf("  %s%s✓ No duplicates found%s\n", colorBold, colorGreen, colorReset)
	} else {
		fmt.Printf("  %s%s⚠ DUPLICATES FOUND%s\n", colorBold, colorYellow, colorReset)
		fmt.Println()

		table := tablewriter.NewWriter(os.Stdout)
		table.SetHeader([]string{"", "Groups", "Members", "Wasted"})
		table.SetBorder(false)
		table.Append([]string{
			"Files",
			fmt.Sprintf("%d", len(result.FileGroups)),
			fmt.Sprintf("%d", result.Stats.DuplicateFiles),
			humanize.IBytes(uint64(result.Stats.WastedBytes)),
		})
		if result.Policy != "" {
			dirMembers := 0
			for _, dg := range result.DirGroups {
				dirMembers += len(dg.Dirs)
			}
			table.Append([]string{
				"Directories",
				fmt.Sprintf("%d", len(result.DirGroups)),
				fmt.Sprintf("%d", dirMembers),
				"",
			})
		}
		table.Render()
		fmt.Println()

		for i, group := range SortedFileGroups(result.FileGroups) {
			fmt.Printf("  %s[%d]%s %d × %s  %swasted %s%s\n",
				colorBold, i+1, colorReset,
				len(group.Paths), humanize.IBytes(uint64(group.Size)),
				colorDim, humanize.IBytes(uint64(group.WastedBytes())), colorReset)
			for _, path := range group.Paths {
				fmt.Printf("      %s\n", path)
			}
		}

		for i, group := range SortedDirGroups(result.DirGroups) {
			fmt.Printf("  %sDIR [%d]%s %d files, %s\n",
				colorBold, i+1, colorReset,
				group.FileCount, humanize.IBytes(uint64(group.TotalBytes)))
			for _, dir := range group.Dirs {
				fmt.Printf("      %s\n", dir)
			}
		}
	}
	fmt.Println()

	if len(result.Errors) > 0 {
		fmt.Printf("  %s%s%d errors during scan (result is not exhaustive)%s\n",
			colorBold, colorRed, len(result.Errors), colorReset)
		for _, scanErr := range result.Errors {
			fmt.Printf("      %s[%s]%s %s: %s\n",
				colorGray, scanErr.Kind, colorReset, scanErr.Path, scanErr.Message)
		}
		fmt.Println()
	}
}

// SortedFileGroups returns the groups ordered for presentation: biggest
// per-member size first, then most members. The input is not modified.
func SortedFileGroups(groups []*models.FileGroup) []*models.FileGroup {
	out := append([]*models.FileGroup(nil), groups...)
	sort.SliceStable(out, func(i, j int) bool {
		if out[i].Size != out[j].Size {
			return out[i].Size > out[j].Size
		}
		return len(out[i].Paths) > len(out[j].Paths)
	})
	return out
}

// SortedDirGroups returns the directory groups ordered by subtree size
// descending. The input is not modified.
func SortedDirGroups(groups []*models.DirectoryGroup) []*models.DirectoryGroup {
	out := append([]*models.DirectoryGroup(nil), groups...)
	sort.SliceStable(out, func(i, j int) bool {
		if out[i].TotalBytes != out[j].TotalBytes {
			return out[i].TotalBytes > out[j].TotalBytes
		}
		return out[i].FileCount > out[j].FileCount
	})
	return out
}
