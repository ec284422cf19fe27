package aggregate

import (
	"fmt"
	"os"

	"github.com/drhitchen/security-review-tools/internal/model"
	"github.com/drhitchen/security-review-tools/internal/sarif"
	"github.com/drhitchen/security-review-tools/internal/session"
)

// CombinedName is the <tool> token used for cross-tool summary files.
const CombinedName = "combined"

// WriteSummaries renders per-tool and combined summary artifacts into
// the session's summaries/ directory. Each file is self-contained so the
// downstream report step can consume them independently. Returns the
// written paths in write order.
func WriteSummaries(sess *session.Session, topN int) ([]string, error) {
	var written []string
	man := sess.Manifest()

	writeOne := func(path, content string) error {
		if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
			_ = man.Append("summary write failed: %s: %v", path, err)
			return fmt.Errorf("write summary %s: %w", path, err)
		}
		_ = man.Append("summary written: %s", path)
		written = append(written, path)
		return nil
	}

	for _, run := range sess.Runs() {
		if run.ParseState != model.ParseOK {
			continue
		}
		title := fmt.Sprintf("%s findings for %s", run.Tool, sess.Target)
		o := BuildOverview(run.Findings, topN)
		if err := writeOne(sess.SummaryPath(run.Tool, "overview", "txt"), RenderOverviewText(title, o)); err != nil {
			return written, err
		}
		if err := writeOne(sess.SummaryPath(run.Tool, "details", "csv"), RenderCSV(Table(run.Findings))); err != nil {
			return written, err
		}
	}

	findings := sess.Findings()
	title := fmt.Sprintf("Combined findings for %s", sess.Target)
	o := BuildOverview(findings, topN)
	if err := writeOne(sess.SummaryPath(CombinedName, "overview", "txt"), RenderOverviewText(title, o)); err != nil {
		return written, err
	}
	if err := writeOne(sess.SummaryPath(CombinedName, "details", "csv"), RenderCSV(Table(findings))); err != nil {
		return written, err
	}

	sarifPath := sess.SummaryPath(CombinedName, "findings", "sarif")
	if err := sarif.Export(findings, sarifPath, "security-review-tools", "1.0.0"); err != nil {
		_ = man.Append("sarif export failed: %v", err)
		return written, err
	}
	_ = man.Append("summary written: %s", sarifPath)
	written = append(written, sarifPath)

	return written, nil
}
