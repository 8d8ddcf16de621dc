package report

import (
	"fmt"
	"html"
	"os"
	"strings"

	"github.com/dustin/go-humanize"
	"github.com/smolin/dupscan/pkg/models"
)

// generateHTML generates an HTML report
func (g *Generator) generateHTML(result *models.ScanResult, outputFile string) error {
	return os.WriteFile(outputFile, []byte(RenderHTML(result)), 0644)
}

// RenderHTML renders the scan result as a standalone dark-theme HTML
// page. The web server reuses it for the results view.
func RenderHTML(result *models.ScanResult) string {
	var sb strings.Builder

	sb.WriteString(`<!DOCTYPE html>
<html lang="en">
<head>
    <meta charset="UTF-8">
    <meta name="viewport" content="width=device-width, initial-scale=1.0">
    <title>Dupscan Report</title>
    <style>
        :root {
            --bg-primary: #0C0C0C;
            --bg-secondary: #161616;
            --bg-elevated: #222222;
            --text-primary: #ECECEC;
            --text-secondary: #A0A0A0;
            --text-muted: #6B6B6B;
            --accent: #0891B2;
            --accent-hover: #06B6D4;
            --border-color: #2A2A2A;
            --warn-color: #EAB308;
            --error-color: #EF4444;
            --error-bg: #2A1515;
            --ok-color: #22C55E;
            --code-bg: #0A0A0A;
        }
        * { margin: 0; padding: 0; box-sizing: border-box; }
        body {
            font-family: -apple-system, BlinkMacSystemFont, 'Segoe UI', sans-serif;
            background: var(--bg-primary);
            color: var(--text-primary);
            padding: 32px 24px;
            line-height: 1.5;
        }
        .container { max-width: 1100px; margin: 0 auto; }
        .header h1 { font-size: 32px; color: var(--accent); margin-bottom: 4px; }
        .header p { color: var(--text-secondary); font-size: 14px; margin-bottom: 28px; }
        .stats {
            display: grid;
            grid-template-columns: repeat(auto-fit, minmax(180px, 1fr));
            gap: 12px;
            margin-bottom: 32px;
        }
        .stat {
            background: var(--bg-secondary);
            border: 1px solid var(--border-color);
            border-radius: 8px;
            padding: 16px;
        }
        .stat .value { font-size: 24px; font-weight: 600; }
        .stat .label { font-size: 12px; color: var(--text-muted); text-transform: uppercase; }
        .stat.wasted .value { color: var(--warn-color); }
        h2 {
            font-size: 18px;
            margin: 28px 0 12px;
            padding-bottom: 6px;
            border-bottom: 1px solid var(--border-color);
        }
        .group {
            background: var(--bg-secondary);
            border: 1px solid var(--border-color);
            border-radius: 8px;
            padding: 14px 16px;
            margin-bottom: 10px;
        }
        .group .meta { color: var(--text-secondary); font-size: 13px; margin-bottom: 8px; }
        .group .meta strong { color: var(--text-primary); }
        .group ul { list-style: none; }
        .group li {
            font-family: 'SF Mono', Menlo, Consolas, monospace;
            font-size: 13px;
            background: var(--code-bg);
            border-radius: 4px;
            padding: 4px 8px;
            margin-bottom: 4px;
            word-break: break-all;
        }
        .clean { color: var(--ok-color); font-size: 15px; padding: 12px 0; }
        .errors {
            background: var(--error-bg);
            border: 1px solid var(--error-color);
            border-radius: 8px;
            padding: 14px 16px;
            margin-top: 24px;
        }
        .errors .title { color: var(--error-color); font-weight: 600; margin-bottom: 8px; }
        .errors li {
            font-family: 'SF Mono', Menlo, Consolas, monospace;
            font-size: 12px;
            color: var(--text-secondary);
            list-style: none;
            margin-bottom: 2px;
        }
        .footer { margin-top: 32px; color: var(--text-muted); font-size: 12px; }
    </style>
</head>
<body>
<div class="container">
`)

	// Header
	sb.WriteString(`    <div class="header">
        <h1>Dupscan Report</h1>
`)
	mode := result.Mode
	if result.Policy != "" {
		mode += ", policy " + result.Policy
	}
	sb.WriteString(fmt.Sprintf("        <p>%s &middot; %s mode &middot; %s</p>\n    </div>\n",
		html.EscapeString(result.Root), html.EscapeString(mode),
		result.StartTime.Format("2006-01-02 15:04:05")))

	// Stat cards
	sb.WriteString("    <div class=\"stats\">\n")
	writeStat(&sb, fmt.Sprintf("%d", result.Stats.CandidateFiles), "Candidate Files", "")
	writeStat(&sb, humanize.IBytes(uint64(result.Stats.CandidateBytes)), "Candidate Bytes", "")
	writeStat(&sb, fmt.Sprintf("%d", len(result.FileGroups)), "Duplicate Groups", "")
	writeStat(&sb, humanize.IBytes(uint64(result.Stats.WastedBytes)), "Wasted Space", "wasted")
	if result.Policy != "" {
		writeStat(&sb, fmt.Sprintf("%d", len(result.DirGroups)), "Duplicate Dir Groups", "")
	}
	writeStat(&sb, FormatDuration(result.Duration), "Duration", "")
	sb.WriteString("    </div>\n")

	// File groups
	sb.WriteString("    <h2>Duplicate Files</h2>\n")
	if len(result.FileGroups) == 0 {
		sb.WriteString("    <div class=\"clean\">No duplicate files found.</div>\n")
	}
	for i, group := range SortedFileGroups(result.FileGroups) {
		sb.WriteString("    <div class=\"group\">\n")
		sb.WriteString(fmt.Sprintf(
			"        <div class=\"meta\"><strong>#%d</strong> &middot; %d files &times; %s &middot; wasted %s</div>\n",
			i+1, len(group.Paths),
			humanize.IBytes(uint64(group.Size)),
			humanize.IBytes(uint64(group.WastedBytes()))))
		sb.WriteString("        <ul>\n")
		for _, path := range group.Paths {
			sb.WriteString(fmt.Sprintf("            <li>%s</li>\n", html.EscapeString(path)))
		}
		sb.WriteString("        </ul>\n    </div>\n")
	}

	// Directory groups
	if result.Policy != "" {
		sb.WriteString("    <h2>Duplicate Directories</h2>\n")
		if len(result.DirGroups) == 0 {
			sb.WriteString("    <div class=\"clean\">No duplicate directories found.</div>\n")
		}
		for i, group := range SortedDirGroups(result.DirGroups) {
			sb.WriteString("    <div class=\"group\">\n")
			sb.WriteString(fmt.Sprintf(
				"        <div class=\"meta\"><strong>#%d</strong> &middot; %d files each &middot; %s</div>\n",
				i+1, group.FileCount, humanize.IBytes(uint64(group.TotalBytes))))
			sb.WriteString("        <ul>\n")
			for _, dir := range group.Dirs {
				sb.WriteString(fmt.Sprintf("            <li>%s</li>\n", html.EscapeString(dir)))
			}
			sb.WriteString("        </ul>\n    </div>\n")
		}
	}

	// Errors
	if len(result.Errors) > 0 {
		sb.WriteString("    <div class=\"errors\">\n")
		sb.WriteString(fmt.Sprintf(
			"        <div class=\"title\">%d errors &mdash; scan was not exhaustive</div>\n        <ul>\n",
			len(result.Errors)))
		for _, scanErr := range result.Errors {
			sb.WriteString(fmt.Sprintf("            <li>[%s] %s: %s</li>\n",
				html.EscapeString(string(scanErr.Kind)),
				html.EscapeString(scanErr.Path),
				html.EscapeString(scanErr.Message)))
		}
		sb.WriteString("        </ul>\n    </div>\n")
	}

	sb.WriteString(fmt.Sprintf("    <div class=\"footer\">dupscan v%s &middot; scan %s</div>\n",
		html.EscapeString(result.Version), html.EscapeString(result.ID)))
	sb.WriteString("</div>\n</body>\n</html>\n")

	return sb.String()
}

func writeStat(sb *strings.Builder, value, label, class string) {
	cls := "stat"
	if class != "" {
		cls += " " + class
	}
	sb.WriteString(fmt.Sprintf(
		"        <div class=\"%s\"><div class=\"value\">%s</div><div class=\"label\">%s</div></div>\n",
		cls, html.EscapeString(value), html.EscapeString(label)))
}
