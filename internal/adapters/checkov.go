package adapters

import (
	"encoding/json"
	"os"
	"path/filepath"
	"strings"

	"github.com/drhitchen/security-review-tools/internal/model"
)

// Checkov writes either a single report object or an array of them (one
// per framework when several apply). Both shapes are accepted.
type checkovReport struct {
	Results struct {
		FailedChecks []json.RawMessage `json:"failed_checks"`
	} `json:"results"`
}

type checkovCheck struct {
	CheckID       string `json:"check_id"`
	CheckName     string `json:"check_name"`
	FilePath      string `json:"file_path"`
	FileLineRange []int  `json:"file_line_range"`
	Severity      string `json:"severity"` // often null
	Guideline     string `json:"guideline"`
}

var checkovSeverity = map[string]model.Severity{
	"CRITICAL": model.SevCritical,
	"HIGH":     model.SevHigh,
	"MEDIUM":   model.SevMedium,
	"LOW":      model.SevLow,
	"INFO":     model.SevInfo,
}

func ParseCheckovBytes(b []byte) ([]model.Finding, error) {
	var reports []checkovReport
	trimmed := strings.TrimSpace(string(b))
	if strings.HasPrefix(trimmed, "[") {
		if err := json.Unmarshal(b, &reports); err != nil {
			return nil, err
		}
	} else {
		var one checkovReport
		if err := json.Unmarshal(b, &one); err != nil {
			return nil, err
		}
		reports = []checkovReport{one}
	}

	var out []model.Finding
	for _, rep := range reports {
		for _, raw := range rep.Results.FailedChecks {
			var c checkovCheck
			if err := json.Unmarshal(raw, &c); err != nil {
				return nil, err
			}
			start, end := 0, 0
			if len(c.FileLineRange) > 0 {
				start = c.FileLineRange[0]
			}
			if len(c.FileLineRange) > 1 {
				end = c.FileLineRange[1]
			}
			start, end = lineRange(start, end)
			out = append(out, model.Finding{
				Tool:      "checkov",
				RuleID:    c.CheckID,
				Severity:  mapSeverity(checkovSeverity, c.Severity),
				FilePath:  orNoPath(filepath.ToSlash(strings.TrimPrefix(c.FilePath, "/"))),
				StartLine: start,
				EndLine:   end,
				Message:   orNoMessage(c.CheckName),
				Raw:       raw,
			})
		}
	}
	return out, nil
}

func ParseCheckovFile(path string) ([]model.Finding, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	out, err := ParseCheckovBytes(b)
	if err != nil {
		return nil, malformed("checkov", path, err)
	}
	return out, nil
}
