package scanner

import (
	"context"
	"strings"
	"testing"

	"go.uber.org/zap"

	"github.com/drhitchen/security-review-tools/internal/aggregate"
	"github.com/drhitchen/security-review-tools/internal/config"
	"github.com/drhitchen/security-review-tools/internal/model"
)

const semgrepStubReport = `{
  "results": [
    {
      "check_id": "generic.secrets.security.detected-generic-secret",
      "path": "app/settings.py",
      "start": {"line": 4},
      "end": {"line": 4},
      "extra": {"message": "Hardcoded secret detected", "severity": "ERROR"}
    }
  ]
}`

const trivyStubReport = `{
  "Results": [
    {
      "Target": "requirements.txt",
      "Vulnerabilities": [
        {
          "VulnerabilityID": "CVE-2023-30861",
          "PkgName": "flask",
          "InstalledVersion": "2.2.0",
          "FixedVersion": "2.2.5",
          "Title": "flask cookie disclosure",
          "Severity": "HIGH"
        }
      ]
    }
  ]
}`

func testOrchestrator(workers int) *Orchestrator {
	log := zap.NewNop().Sugar()
	return &Orchestrator{
		Registry: NewRegistry(config.Default()),
		Runner:   quietRunner(),
		Log:      log,
		Workers:  workers,
	}
}

// Scenario: a repo with one hardcoded secret and one outdated dependency,
// scanned by semgrep and trivy stubs that follow the real exit-code
// conventions.
func TestOrchestratorEndToEnd(t *testing.T) {
	bindir := t.TempDir()
	stubTool(t, bindir, "semgrep", "--output", semgrepStubReport, 1)
	stubTool(t, bindir, "trivy", "-o", trivyStubReport, 1)
	t.Setenv("PATH", bindir)

	sess := newTestSession(t)
	testOrchestrator(1).Run(context.Background(), sess, []string{"semgrep", "trivy"})

	runs := sess.Runs()
	if len(runs) != 2 {
		t.Fatalf("expected 2 runs, got %d", len(runs))
	}
	for _, run := range runs {
		if run.Status != model.StatusRanWithFindings {
			t.Errorf("%s: status %s, want RAN_WITH_FINDINGS", run.Tool, run.Status)
		}
		if run.ParseState != model.ParseOK {
			t.Errorf("%s: parse state %s, want PARSED", run.Tool, run.ParseState)
		}
		if len(run.Findings) != 1 {
			t.Errorf("%s: expected 1 finding, got %d", run.Tool, len(run.Findings))
		}
	}

	findings := sess.Findings()
	o := aggregate.BuildOverview(findings, 0)
	atLeastMedium := 0
	for _, sc := range o.Histogram {
		if sc.Severity.Rank() >= model.SevMedium.Rank() {
			atLeastMedium += sc.Count
		}
	}
	if atLeastMedium == 0 {
		t.Error("expected at least one finding of MEDIUM or above")
	}

	csv := aggregate.RenderCSV(aggregate.Table(findings))
	rows := strings.Split(strings.TrimRight(csv, "\n"), "\n")
	if len(rows)-1 != len(findings) {
		t.Errorf("CSV data rows %d != findings %d", len(rows)-1, len(findings))
	}
}

func TestOrchestratorMissingToolContinues(t *testing.T) {
	bindir := t.TempDir()
	// Only trivy is installed.
	stubTool(t, bindir, "trivy", "-o", trivyStubReport, 1)
	t.Setenv("PATH", bindir)

	sess := newTestSession(t)
	testOrchestrator(1).Run(context.Background(), sess, []string{"semgrep", "trivy"})

	byTool := map[string]model.ScanRun{}
	for _, run := range sess.Runs() {
		byTool[run.Tool] = run
	}
	if byTool["semgrep"].Status != model.StatusSkippedMissing {
		t.Errorf("semgrep status %s, want SKIPPED_MISSING_TOOL", byTool["semgrep"].Status)
	}
	if byTool["trivy"].Status != model.StatusRanWithFindings {
		t.Errorf("trivy must still run, got %s", byTool["trivy"].Status)
	}
}

func TestOrchestratorUnknownToolSkipped(t *testing.T) {
	bindir := t.TempDir()
	stubTool(t, bindir, "trivy", "-o", trivyStubReport, 1)
	t.Setenv("PATH", bindir)

	sess := newTestSession(t)
	testOrchestrator(1).Run(context.Background(), sess, []string{"nessus", "trivy"})

	runs := sess.Runs()
	if len(runs) != 1 || runs[0].Tool != "trivy" {
		t.Fatalf("unknown tool must be skipped, runs: %+v", runs)
	}
}

func TestOrchestratorMalformedDistinctFromEmpty(t *testing.T) {
	bindir := t.TempDir()
	// semgrep produces garbage with a findings exit; trivy parses clean
	// with zero findings.
	stubTool(t, bindir, "semgrep", "--output", `{"results": [`, 1)
	stubTool(t, bindir, "trivy", "-o", `{"Results": []}`, 0)
	t.Setenv("PATH", bindir)

	sess := newTestSession(t)
	testOrchestrator(1).Run(context.Background(), sess, []string{"semgrep", "trivy"})

	byTool := map[string]model.ScanRun{}
	for _, run := range sess.Runs() {
		byTool[run.Tool] = run
	}

	malformed := byTool["semgrep"]
	if malformed.ParseState != model.ParseMalformed {
		t.Errorf("semgrep parse state %s, want MALFORMED", malformed.ParseState)
	}
	if malformed.ParseError == "" {
		t.Error("malformed run must carry the parse error")
	}

	empty := byTool["trivy"]
	if empty.ParseState != model.ParseOK {
		t.Errorf("trivy parse state %s, want PARSED", empty.ParseState)
	}
	if len(empty.Findings) != 0 {
		t.Errorf("trivy should have zero findings, got %d", len(empty.Findings))
	}
	if malformed.ParseState == empty.ParseState {
		t.Error("malformed artifact must be distinguishable from zero findings")
	}
}

func TestOrchestratorNoArtifactDistinctFromMalformed(t *testing.T) {
	bindir := t.TempDir()
	// semgrep exits clean but never writes its report; trivy leaves a
	// garbage report behind a findings exit.
	stubTool(t, bindir, "semgrep", "--no-such-flag", "", 0)
	stubTool(t, bindir, "trivy", "-o", `{"Results": [`, 1)
	t.Setenv("PATH", bindir)

	sess := newTestSession(t)
	testOrchestrator(1).Run(context.Background(), sess, []string{"semgrep", "trivy"})

	byTool := map[string]model.ScanRun{}
	for _, run := range sess.Runs() {
		byTool[run.Tool] = run
	}

	missing := byTool["semgrep"]
	if missing.Status != model.StatusRanOK {
		t.Fatalf("semgrep status %s, want RAN_OK", missing.Status)
	}
	if missing.ParseState != model.ParseNoArtifact {
		t.Errorf("semgrep parse state %s, want NO_ARTIFACT", missing.ParseState)
	}
	if missing.ParseError == "" {
		t.Error("missing-artifact run must carry the parse error")
	}

	malformed := byTool["trivy"]
	if malformed.ParseState != model.ParseMalformed {
		t.Errorf("trivy parse state %s, want MALFORMED", malformed.ParseState)
	}
	if missing.ParseState == malformed.ParseState {
		t.Error("missing artifact must be distinguishable from a malformed one")
	}
}

func TestOrchestratorParallelRuns(t *testing.T) {
	bindir := t.TempDir()
	stubTool(t, bindir, "semgrep", "--output", semgrepStubReport, 1)
	stubTool(t, bindir, "trivy", "-o", trivyStubReport, 1)
	t.Setenv("PATH", bindir)

	sess := newTestSession(t)
	testOrchestrator(2).Run(context.Background(), sess, []string{"semgrep", "trivy"})

	if got := len(sess.Runs()); got != 2 {
		t.Fatalf("expected 2 runs, got %d", got)
	}
	if got := len(sess.Findings()); got != 2 {
		t.Errorf("expected 2 findings total, got %d", got)
	}
}
