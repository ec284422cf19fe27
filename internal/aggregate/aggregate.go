package aggregate

import (
	"sort"

	"github.com/drhitchen/security-review-tools/internal/model"
)

// DefaultTopN bounds the top-rules listing in overviews.
const DefaultTopN = 10

type SeverityCount struct {
	Severity model.Severity
	Count    int
}

type RuleCount struct {
	RuleID string
	Count  int
}

// Overview is the computed summary of a finding set. It is a pure
// function of its input: same findings, same overview.
type Overview struct {
	Total     int
	Histogram []SeverityCount // descending severity, only non-zero buckets
	TopRules  []RuleCount     // descending count, ties lexicographic
}

// BuildOverview computes totals, the severity histogram and the top-N
// rule identifiers. topN <= 0 uses DefaultTopN.
func BuildOverview(findings []model.Finding, topN int) Overview {
	if topN <= 0 {
		topN = DefaultTopN
	}

	bySeverity := map[model.Severity]int{}
	byRule := map[string]int{}
	for _, f := range findings {
		bySeverity[f.Severity]++
		byRule[f.RuleID]++
	}

	o := Overview{Total: len(findings)}
	for _, sev := range model.Severities() {
		if n := bySeverity[sev]; n > 0 {
			o.Histogram = append(o.Histogram, SeverityCount{Severity: sev, Count: n})
		}
	}

	rules := make([]RuleCount, 0, len(byRule))
	for id, n := range byRule {
		rules = append(rules, RuleCount{RuleID: id, Count: n})
	}
	sort.Slice(rules, func(i, j int) bool {
		if rules[i].Count != rules[j].Count {
			return rules[i].Count > rules[j].Count
		}
		return rules[i].RuleID < rules[j].RuleID
	})
	if len(rules) > topN {
		rules = rules[:topN]
	}
	o.TopRules = rules
	return o
}

// Row is one detailed-table line.
type Row struct {
	RuleID    string
	FilePath  string
	StartLine int
	EndLine   int
	Severity  model.Severity
	Message   string
}

// Table maps findings to rows one-to-one, preserving their insertion
// order; it never re-sorts.
func Table(findings []model.Finding) []Row {
	rows := make([]Row, 0, len(findings))
	for _, f := range findings {
		rows = append(rows, Row{
			RuleID:    f.RuleID,
			FilePath:  f.FilePath,
			StartLine: f.StartLine,
			EndLine:   f.EndLine,
			Severity:  f.Severity,
			Message:   f.Message,
		})
	}
	return rows
}
