package aggregate

import (
	"reflect"
	"strings"
	"testing"

	"github.com/drhitchen/security-review-tools/internal/model"
)

func fixtureFindings() []model.Finding {
	return []model.Finding{
		{Tool: "semgrep", RuleID: "rule-b", Severity: model.SevHigh, FilePath: "a.py", StartLine: 1, EndLine: 1, Message: "first"},
		{Tool: "semgrep", RuleID: "rule-a", Severity: model.SevMedium, FilePath: "b.py", StartLine: 2, EndLine: 3, Message: "second"},
		{Tool: "trivy", RuleID: "rule-b", Severity: model.SevHigh, FilePath: "c.tf", StartLine: 4, EndLine: 4, Message: "third"},
		{Tool: "trivy", RuleID: "rule-c", Severity: model.SevUnknown, FilePath: model.NoFilePath, Message: "fourth"},
		{Tool: "trivy", RuleID: "rule-a", Severity: model.SevCritical, FilePath: "d.tf", StartLine: 9, EndLine: 9, Message: "with, comma\nand newline"},
	}
}

func TestOverviewTotals(t *testing.T) {
	findings := fixtureFindings()
	o := BuildOverview(findings, 0)

	if o.Total != len(findings) {
		t.Errorf("total %d != len(findings) %d", o.Total, len(findings))
	}

	sum := 0
	for _, sc := range o.Histogram {
		if sc.Count <= 0 {
			t.Errorf("histogram must only carry non-zero buckets, got %+v", sc)
		}
		sum += sc.Count
	}
	if sum != len(findings) {
		t.Errorf("histogram sums to %d, want %d", sum, len(findings))
	}
}

func TestOverviewHistogramOrder(t *testing.T) {
	o := BuildOverview(fixtureFindings(), 0)

	for i := 1; i < len(o.Histogram); i++ {
		if o.Histogram[i-1].Severity.Rank() <= o.Histogram[i].Severity.Rank() {
			t.Errorf("histogram not in descending severity order: %+v", o.Histogram)
		}
	}
	if o.Histogram[0].Severity != model.SevCritical {
		t.Errorf("expected CRITICAL first, got %s", o.Histogram[0].Severity)
	}
}

func TestOverviewTopRules(t *testing.T) {
	o := BuildOverview(fixtureFindings(), 0)

	// rule-a and rule-b both occur twice; the tie breaks lexicographically.
	want := []RuleCount{
		{RuleID: "rule-a", Count: 2},
		{RuleID: "rule-b", Count: 2},
		{RuleID: "rule-c", Count: 1},
	}
	if !reflect.DeepEqual(o.TopRules, want) {
		t.Errorf("top rules mismatch:\n got %+v\nwant %+v", o.TopRules, want)
	}
}

func TestOverviewTopRulesBounded(t *testing.T) {
	o := BuildOverview(fixtureFindings(), 2)
	if len(o.TopRules) != 2 {
		t.Errorf("expected 2 top rules, got %d", len(o.TopRules))
	}
}

func TestTablePreservesOrder(t *testing.T) {
	findings := fixtureFindings()

	first := Table(findings)
	second := Table(findings)
	if !reflect.DeepEqual(first, second) {
		t.Error("repeated table builds differ")
	}
	for i, row := range first {
		if row.RuleID != findings[i].RuleID {
			t.Errorf("row %d out of order: %q vs %q", i, row.RuleID, findings[i].RuleID)
		}
	}
}

func TestRenderCSV(t *testing.T) {
	rows := Table(fixtureFindings())
	out := RenderCSV(rows)

	lines := strings.Split(strings.TrimRight(out, "\n"), "\n")
	if len(lines) != len(rows)+1 {
		t.Fatalf("expected header + %d rows, got %d lines", len(rows), len(lines))
	}
	if lines[0] != "rule_id,file_path,line_start,line_end,severity,message" {
		t.Errorf("unexpected header: %q", lines[0])
	}
	for _, line := range lines[1:] {
		if strings.Count(line, ",") != 5 {
			t.Errorf("field with unescaped comma or newline leaked into %q", line)
		}
	}
	if !strings.Contains(out, "with; comma and newline") {
		t.Error("message was not sanitized for CSV")
	}
}

func TestRenderOverviewDeterministic(t *testing.T) {
	findings := fixtureFindings()
	a := RenderOverviewText("t", BuildOverview(findings, 0))
	b := RenderOverviewText("t", BuildOverview(findings, 0))
	if a != b {
		t.Error("overview rendering is not deterministic")
	}
}
