package adapters

import (
	"encoding/json"
	"os"
	"path/filepath"

	"github.com/drhitchen/security-review-tools/internal/model"
)

type semgrepJSON struct {
	Results []json.RawMessage `json:"results"`
}

type semgrepResult struct {
	CheckID string `json:"check_id"`
	Path    string `json:"path"`
	Start   struct {
		Line int `json:"line"`
	} `json:"start"`
	End struct {
		Line int `json:"line"`
	} `json:"end"`
	Extra struct {
		Message  string `json:"message"`
		Severity string `json:"severity"` // INFO|WARNING|ERROR
	} `json:"extra"`
}

var semgrepSeverity = map[string]model.Severity{
	"ERROR":   model.SevHigh,
	"WARNING": model.SevMedium,
	"INFO":    model.SevInfo,
}

func ParseSemgrepBytes(b []byte) ([]model.Finding, error) {
	var doc semgrepJSON
	if err := json.Unmarshal(b, &doc); err != nil {
		return nil, err
	}

	out := make([]model.Finding, 0, len(doc.Results))
	for _, raw := range doc.Results {
		var r semgrepResult
		if err := json.Unmarshal(raw, &r); err != nil {
			return nil, err
		}
		start, end := lineRange(r.Start.Line, r.End.Line)
		out = append(out, model.Finding{
			Tool:      "semgrep",
			RuleID:    r.CheckID,
			Severity:  mapSeverity(semgrepSeverity, r.Extra.Severity),
			FilePath:  orNoPath(filepath.ToSlash(r.Path)),
			StartLine: start,
			EndLine:   end,
			Message:   orNoMessage(r.Extra.Message),
			Raw:       raw,
		})
	}
	return out, nil
}

func ParseSemgrepFile(path string) ([]model.Finding, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	out, err := ParseSemgrepBytes(b)
	if err != nil {
		return nil, malformed("semgrep", path, err)
	}
	return out, nil
}
