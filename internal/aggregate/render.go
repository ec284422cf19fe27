package aggregate

import (
	"encoding/csv"
	"fmt"
	"strconv"
	"strings"
)

// Rendering is split from computation so other output formats can slot
// in without touching the aggregate structures.

// RenderOverviewText renders an Overview as the plain-text report.
func RenderOverviewText(title string, o Overview) string {
	var b strings.Builder
	fmt.Fprintf(&b, "%s\n", title)
	fmt.Fprintf(&b, "%s\n\n", strings.Repeat("=", len(title)))
	fmt.Fprintf(&b, "Total findings: %d\n\n", o.Total)

	if len(o.Histogram) > 0 {
		b.WriteString("Severity distribution:\n")
		for _, sc := range o.Histogram {
			fmt.Fprintf(&b, "  %-8s %d\n", sc.Severity, sc.Count)
		}
		b.WriteString("\n")
	}
	if len(o.TopRules) > 0 {
		b.WriteString("Top rules:\n")
		for _, rc := range o.TopRules {
			fmt.Fprintf(&b, "  %4d  %s\n", rc.Count, rc.RuleID)
		}
	}
	return b.String()
}

var csvHeader = []string{"rule_id", "file_path", "line_start", "line_end", "severity", "message"}

// RenderCSV renders table rows as CSV. Messages have newlines and commas
// stripped before writing so every field stays single-line and plain.
func RenderCSV(rows []Row) string {
	var b strings.Builder
	w := csv.NewWriter(&b)
	_ = w.Write(csvHeader)
	for _, r := range rows {
		_ = w.Write([]string{
			sanitizeField(r.RuleID),
			sanitizeField(r.FilePath),
			strconv.Itoa(r.StartLine),
			strconv.Itoa(r.EndLine),
			string(r.Severity),
			sanitizeField(r.Message),
		})
	}
	w.Flush()
	return b.String()
}

func sanitizeField(s string) string {
	s = strings.NewReplacer("\r\n", " ", "\n", " ", "\r", " ", ",", ";").Replace(s)
	return strings.TrimSpace(s)
}
