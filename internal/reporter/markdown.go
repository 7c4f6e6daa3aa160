package reporter

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/ppiankov/docsite/internal/metrics"
	"github.com/ppiankov/docsite/internal/security"
)

// Badge colours.
const (
	colorCritical  = "#b60205"
	colorHigh      = "#d93f0b"
	colorMedium    = "#dbab09"
	colorLow       = "#e3c907"
	colorVulns     = "#d73a49"
	colorNoVulns   = "#22863a"
	colorCodeQL    = "#6f42c1"
	colorSecrets   = "#fbca04"
	tableHeader    = "| Metric | Value |"
	tableSeparator = "|--------|-------|"
)

var severityColors = map[string]string{
	security.SeverityCritical: colorCritical,
	security.SeverityHigh:     colorHigh,
	security.SeverityMedium:   colorMedium,
	security.SeverityLow:      colorLow,
}

func badge(label string, value int, color string) string {
	return fmt.Sprintf("<span style='display:inline-block;margin:2px;padding:2px 8px;"+
		"border-radius:12px;background:%s;color:#fff;font-size:12px'>%s: %d</span>",
		color, label, value)
}

// SecurityMarkdown renders the security page: a badge line followed by a
// metric table. Sections missing from the snapshot are left out.
func SecurityMarkdown(snap security.Snapshot) string {
	var badges []string
	if len(snap.Severity) > 0 {
		total := snap.Severity.Total()
		color := colorNoVulns
		if total != 0 {
			color = colorVulns
		}
		badges = append(badges, badge("Vulns", total, color))
		for _, level := range security.Levels {
			if v := snap.Severity[level]; v != 0 {
				badges = append(badges, badge(capitalize(level), v, severityColors[level]))
			}
		}
	}
	if open := snap.CodeScanningOpen(); open != 0 {
		badges = append(badges, badge("CodeQL", open, colorCodeQL))
	}
	if open := snap.SecretScanningOpen(); open != 0 {
		badges = append(badges, badge("Secrets", open, colorSecrets))
	}

	lines := []string{"# Security", "", strings.Join(badges, " "), "", tableHeader, tableSeparator}
	if len(snap.Severity) > 0 {
		for _, level := range security.Levels {
			lines = append(lines, fmt.Sprintf("| %s Vulns | %d |", capitalize(level), snap.Severity[level]))
		}
		lines = append(lines, fmt.Sprintf("| Total Vulns | %d |", snap.Severity.Total()))
	}
	if len(snap.CodeScanning) > 0 {
		lines = append(lines, fmt.Sprintf("| Open Code Scanning Alerts | %d |", snap.CodeScanningOpen()))
	}
	if len(snap.SecretScanning) > 0 {
		lines = append(lines, fmt.Sprintf("| Open Secret Scanning Alerts | %d |", snap.SecretScanningOpen()))
	}

	return strings.Join(lines, "\n") + "\n"
}

// MetricsMarkdown renders the project metrics table. threshold labels the
// high complexity row.
func MetricsMarkdown(snap metrics.Snapshot, threshold int) string {
	lines := []string{"# Project Metrics", "", tableHeader, tableSeparator}

	addFloat := func(label string, v *float64) {
		if v != nil {
			lines = append(lines, fmt.Sprintf("| %s | %s |", label, formatFloat(*v)))
		}
	}
	addInt := func(label string, v *int) {
		if v != nil {
			lines = append(lines, fmt.Sprintf("| %s | %d |", label, *v))
		}
	}

	addFloat("Coverage (%)", snap.CoveragePercent)
	addFloat("Zig Coverage (%)", snap.ZigCoveragePercent)
	addInt("Test Functions", snap.TestFunctions)
	addInt("Go Files", snap.GoFiles)
	addInt("Lines of Code (non-test)", snap.LOC)
	addFloat("Avg Cyclomatic Complexity", snap.AvgCyclomaticComplexity)
	addInt(fmt.Sprintf("Functions > %d Complexity", threshold), snap.HighComplexityFunctions)

	return strings.Join(lines, "\n") + "\n"
}

// formatFloat prints the shortest exact form and keeps a decimal point on
// whole numbers (88 -> 88.0).
func formatFloat(v float64) string {
	s := strconv.FormatFloat(v, 'f', -1, 64)
	if !strings.ContainsAny(s, ".eEnN") {
		s += ".0"
	}
	return s
}

func capitalize(s string) string {
	if s == "" {
		return s
	}
	return strings.ToUpper(s[:1]) + s[1:]
}
