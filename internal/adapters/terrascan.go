package adapters

import (
	"encoding/json"
	"os"
	"path/filepath"

	"github.com/drhitchen/security-review-tools/internal/model"
)

type terrascanJSON struct {
	Results struct {
		Violations []json.RawMessage `json:"violations"`
	} `json:"results"`
}

type terrascanViolation struct {
	RuleID      string `json:"rule_id"`
	RuleName    string `json:"rule_name"`
	Description string `json:"description"`
	Severity    string `json:"severity"`
	File        string `json:"file"`
	Line        int    `json:"line"`
}

// Terrascan uses a three-level taxonomy; it never reports CRITICAL.
var terrascanSeverity = map[string]model.Severity{
	"HIGH":   model.SevHigh,
	"MEDIUM": model.SevMedium,
	"LOW":    model.SevLow,
}

func ParseTerrascanBytes(b []byte) ([]model.Finding, error) {
	var doc terrascanJSON
	if err := json.Unmarshal(b, &doc); err != nil {
		return nil, err
	}

	out := make([]model.Finding, 0, len(doc.Results.Violations))
	for _, raw := range doc.Results.Violations {
		var v terrascanViolation
		if err := json.Unmarshal(raw, &v); err != nil {
			return nil, err
		}
		start, end := lineRange(v.Line, 0)
		out = append(out, model.Finding{
			Tool:      "terrascan",
			RuleID:    v.RuleID,
			Severity:  mapSeverity(terrascanSeverity, v.Severity),
			FilePath:  orNoPath(filepath.ToSlash(v.File)),
			StartLine: start,
			EndLine:   end,
			Message:   orNoMessage(firstNonEmpty(v.Description, v.RuleName)),
			Raw:       raw,
		})
	}
	return out, nil
}

func ParseTerrascanFile(path string) ([]model.Finding, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	out, err := ParseTerrascanBytes(b)
	if err != nil {
		return nil, malformed("terrascan", path, err)
	}
	return out, nil
}
