package cmd

import (
	"os"
	"path/filepath"
	"testing"

	"go.uber.org/zap"
)

const reportSemgrepJSON = `{
  "results": [
    {
      "check_id": "generic.secrets.security.detected-aws-key",
      "path": "src/config.py",
      "start": {"line": 12},
      "end": {"line": 12},
      "extra": {"message": "AWS key detected", "severity": "ERROR"}
    }
  ]
}`

const reportSemgrepSARIF = `{
  "version": "2.1.0",
  "runs": [
    {
      "tool": {"driver": {"name": "semgrep", "rules": []}},
      "results": [
        {
          "ruleId": "generic.secrets.security.detected-aws-key",
          "level": "error",
          "message": {"text": "AWS key detected"},
          "locations": [
            {
              "physicalLocation": {
                "artifactLocation": {"uri": "src/config.py"},
                "region": {"startLine": 12, "endLine": 12}
              }
            }
          ]
        }
      ]
    }
  ]
}`

func writeScanArtifact(t *testing.T, dir, name, content string) {
	t.Helper()
	if err := os.WriteFile(filepath.Join(dir, name), []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
}

// A run may leave the same report in two formats. Recomputing must count
// each finding once, not once per file.
func TestCollectFindingsDualFormatCountedOnce(t *testing.T) {
	scans := t.TempDir()
	writeScanArtifact(t, scans, "repo.semgrep.json", reportSemgrepJSON)
	writeScanArtifact(t, scans, "repo.semgrep.sarif", reportSemgrepSARIF)
	writeScanArtifact(t, scans, "repo.semgrep.out", "console noise\n")

	entries, err := os.ReadDir(scans)
	if err != nil {
		t.Fatal(err)
	}
	findings := collectFindings(zap.NewNop().Sugar(), scans, entries)

	if len(findings) != 1 {
		t.Fatalf("expected 1 finding from dual-format artifacts, got %d", len(findings))
	}
	f := findings[0]
	if f.RuleID != "generic.secrets.security.detected-aws-key" {
		t.Errorf("rule id %q", f.RuleID)
	}
	if f.FilePath != "src/config.py" || f.StartLine != 12 || f.EndLine != 12 {
		t.Errorf("location %s:%d-%d", f.FilePath, f.StartLine, f.EndLine)
	}
}

func TestCollectFindingsSARIFOnly(t *testing.T) {
	scans := t.TempDir()
	writeScanArtifact(t, scans, "repo.semgrep.sarif", reportSemgrepSARIF)

	entries, err := os.ReadDir(scans)
	if err != nil {
		t.Fatal(err)
	}
	findings := collectFindings(zap.NewNop().Sugar(), scans, entries)

	if len(findings) != 1 {
		t.Fatalf("expected 1 finding from the SARIF artifact, got %d", len(findings))
	}
}

func TestToolFromArtifactName(t *testing.T) {
	tests := []struct {
		name string
		tool string
		ok   bool
	}{
		{"repo.semgrep.json", "semgrep", true},
		{"repo.trivy.sarif", "trivy", true},
		{"repo.semgrep.out", "", false},
		{"session_manifest_20240101_000000.log", "", false},
		{"README", "", false},
	}
	for _, tt := range tests {
		tool, ok := toolFromArtifactName(tt.name)
		if ok != tt.ok || tool != tt.tool {
			t.Errorf("toolFromArtifactName(%q) = %q,%v want %q,%v", tt.name, tool, ok, tt.tool, tt.ok)
		}
	}
}
