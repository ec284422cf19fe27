package adapters

import (
	"encoding/json"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/drhitchen/security-review-tools/internal/model"
)

// Generic SARIF 2.1.0 reader. Tools that emit SARIF beside (or instead
// of) their native JSON go through here and must yield equivalent
// findings, so downstream consumers never depend on which file survived.

type sarifLog struct {
	Runs []struct {
		Tool struct {
			Driver struct {
				Rules []struct {
					ID         string         `json:"id"`
					Properties map[string]any `json:"properties"`
				} `json:"rules"`
			} `json:"driver"`
		} `json:"tool"`
		Results []json.RawMessage `json:"results"`
	} `json:"runs"`
}

type sarifResult struct {
	RuleID  string `json:"ruleId"`
	Level   string `json:"level"`
	Message struct {
		Text string `json:"text"`
	} `json:"message"`
	Locations []struct {
		PhysicalLocation struct {
			ArtifactLocation struct {
				URI string `json:"uri"`
			} `json:"artifactLocation"`
			Region struct {
				StartLine int `json:"startLine"`
				EndLine   int `json:"endLine"`
			} `json:"region"`
		} `json:"physicalLocation"`
	} `json:"locations"`
	Properties map[string]any `json:"properties"`
}

// Severity extraction tries an ordered list of property paths before
// falling back to the SARIF level. The candidates are data, so a tool
// variant that stashes severity elsewhere is a table edit, not new code.
var sarifSeverityPaths = []string{
	"severity",
	"security-severity",
	"problem.severity",
}

var sarifLevelSeverity = map[string]model.Severity{
	"ERROR":   model.SevHigh,
	"WARNING": model.SevMedium,
	"NOTE":    model.SevInfo,
	"NONE":    model.SevInfo,
}

func ParseSARIFBytes(tool string, b []byte) ([]model.Finding, error) {
	var doc sarifLog
	if err := json.Unmarshal(b, &doc); err != nil {
		return nil, err
	}

	var out []model.Finding
	for _, run := range doc.Runs {
		ruleProps := map[string]map[string]any{}
		for _, rule := range run.Tool.Driver.Rules {
			ruleProps[rule.ID] = rule.Properties
		}
		for _, raw := range run.Results {
			var r sarifResult
			if err := json.Unmarshal(raw, &r); err != nil {
				return nil, err
			}

			file := model.NoFilePath
			start, end := 0, 0
			if len(r.Locations) > 0 {
				loc := r.Locations[0].PhysicalLocation
				file = orNoPath(filepath.ToSlash(loc.ArtifactLocation.URI))
				start, end = lineRange(loc.Region.StartLine, loc.Region.EndLine)
			}

			out = append(out, model.Finding{
				Tool:      tool,
				RuleID:    r.RuleID,
				Severity:  sarifSeverity(r.Properties, ruleProps[r.RuleID], r.Level),
				FilePath:  file,
				StartLine: start,
				EndLine:   end,
				Message:   orNoMessage(r.Message.Text),
				Raw:       raw,
			})
		}
	}
	return out, nil
}

func ParseSARIFFile(tool, path string) ([]model.Finding, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	out, err := ParseSARIFBytes(tool, b)
	if err != nil {
		return nil, malformed(tool, path, err)
	}
	return out, nil
}

func sarifSeverity(resultProps, ruleProps map[string]any, level string) model.Severity {
	for _, props := range []map[string]any{resultProps, ruleProps} {
		for _, path := range sarifSeverityPaths {
			if sev, ok := severityFromProperty(lookupPath(props, path)); ok {
				return sev
			}
		}
	}
	if sev, ok := sarifLevelSeverity[strings.ToUpper(strings.TrimSpace(level))]; ok {
		return sev
	}
	return model.SevUnknown
}

// lookupPath walks a dotted path through nested JSON objects.
func lookupPath(props map[string]any, path string) any {
	var cur any = props
	for _, key := range strings.Split(path, ".") {
		m, ok := cur.(map[string]any)
		if !ok {
			return nil
		}
		cur, ok = m[key]
		if !ok {
			return nil
		}
	}
	return cur
}

// severityFromProperty accepts either a severity word or a CVSS-style
// numeric score (GitHub's security-severity convention).
func severityFromProperty(v any) (model.Severity, bool) {
	switch t := v.(type) {
	case string:
		if sev, ok := wordSeverity[strings.ToUpper(strings.TrimSpace(t))]; ok {
			return sev, true
		}
		if score, err := strconv.ParseFloat(t, 64); err == nil {
			return bucketScore(score), true
		}
	case float64:
		return bucketScore(t), true
	}
	return model.SevUnknown, false
}

var wordSeverity = map[string]model.Severity{
	"CRITICAL": model.SevCritical,
	"HIGH":     model.SevHigh,
	"ERROR":    model.SevHigh,
	"MEDIUM":   model.SevMedium,
	"WARNING":  model.SevMedium,
	"LOW":      model.SevLow,
	"INFO":     model.SevInfo,
	"NOTE":     model.SevInfo,
}

// bucketScore maps a CVSS score onto the shared enum.
func bucketScore(score float64) model.Severity {
	switch {
	case score >= 9.0:
		return model.SevCritical
	case score >= 7.0:
		return model.SevHigh
	case score >= 4.0:
		return model.SevMedium
	case score > 0:
		return model.SevLow
	default:
		return model.SevInfo
	}
}
