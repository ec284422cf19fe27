package adapters

import (
	"encoding/json"
	"os"
	"path/filepath"

	"github.com/drhitchen/security-review-tools/internal/model"
)

// Bearer keys its report by severity bucket instead of carrying a
// severity field on each finding.
type bearerJSON struct {
	Critical []json.RawMessage `json:"critical"`
	High     []json.RawMessage `json:"high"`
	Medium   []json.RawMessage `json:"medium"`
	Low      []json.RawMessage `json:"low"`
	Warning  []json.RawMessage `json:"warning"`
}

type bearerFinding struct {
	ID          string `json:"id"`
	RuleID      string `json:"rule_id"`
	Title       string `json:"title"`
	Description string `json:"description"`
	Filename    string `json:"filename"`
	LineNumber  int    `json:"line_number"`
}

func ParseBearerBytes(b []byte) ([]model.Finding, error) {
	var doc bearerJSON
	if err := json.Unmarshal(b, &doc); err != nil {
		return nil, err
	}

	var out []model.Finding
	buckets := []struct {
		sev  model.Severity
		raws []json.RawMessage
	}{
		{model.SevCritical, doc.Critical},
		{model.SevHigh, doc.High},
		{model.SevMedium, doc.Medium},
		{model.SevLow, doc.Low},
		{model.SevInfo, doc.Warning},
	}
	for _, bucket := range buckets {
		for _, raw := range bucket.raws {
			var f bearerFinding
			if err := json.Unmarshal(raw, &f); err != nil {
				return nil, err
			}
			start, end := lineRange(f.LineNumber, 0)
			out = append(out, model.Finding{
				Tool:      "bearer",
				RuleID:    firstNonEmpty(f.RuleID, f.ID),
				Severity:  bucket.sev,
				FilePath:  orNoPath(filepath.ToSlash(f.Filename)),
				StartLine: start,
				EndLine:   end,
				Message:   orNoMessage(firstNonEmpty(f.Title, f.Description)),
				Raw:       raw,
			})
		}
	}
	return out, nil
}

func ParseBearerFile(path string) ([]model.Finding, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	out, err := ParseBearerBytes(b)
	if err != nil {
		return nil, malformed("bearer", path, err)
	}
	return out, nil
}
