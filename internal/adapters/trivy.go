package adapters

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/drhitchen/security-review-tools/internal/model"
)

// Trivy reports vulnerabilities, misconfigurations and secrets under one
// Results array; all three kinds normalize to the same Finding shape.
type trivyJSON struct {
	Results []struct {
		Target            string            `json:"Target"`
		Vulnerabilities   []json.RawMessage `json:"Vulnerabilities"`
		Misconfigurations []json.RawMessage `json:"Misconfigurations"`
		Secrets           []json.RawMessage `json:"Secrets"`
	} `json:"Results"`
}

type trivyVulnerability struct {
	VulnerabilityID  string `json:"VulnerabilityID"`
	PkgName          string `json:"PkgName"`
	InstalledVersion string `json:"InstalledVersion"`
	FixedVersion     string `json:"FixedVersion"`
	Title            string `json:"Title"`
	Description      string `json:"Description"`
	Severity         string `json:"Severity"`
}

type trivyMisconfiguration struct {
	ID            string `json:"ID"`
	Title         string `json:"Title"`
	Description   string `json:"Description"`
	Severity      string `json:"Severity"`
	CauseMetadata struct {
		StartLine int `json:"StartLine"`
		EndLine   int `json:"EndLine"`
	} `json:"CauseMetadata"`
}

type trivySecret struct {
	RuleID    string `json:"RuleID"`
	Title     string `json:"Title"`
	Severity  string `json:"Severity"`
	StartLine int    `json:"StartLine"`
	EndLine   int    `json:"EndLine"`
}

var trivySeverity = map[string]model.Severity{
	"CRITICAL": model.SevCritical,
	"HIGH":     model.SevHigh,
	"MEDIUM":   model.SevMedium,
	"LOW":      model.SevLow,
}

func ParseTrivyBytes(b []byte) ([]model.Finding, error) {
	var doc trivyJSON
	if err := json.Unmarshal(b, &doc); err != nil {
		return nil, err
	}

	var out []model.Finding
	for _, r := range doc.Results {
		target := filepath.ToSlash(r.Target)

		for _, raw := range r.Vulnerabilities {
			var v trivyVulnerability
			if err := json.Unmarshal(raw, &v); err != nil {
				return nil, err
			}
			msg := firstNonEmpty(v.Title, v.Description)
			if v.PkgName != "" {
				msg = fmt.Sprintf("%s %s: %s", v.PkgName, v.InstalledVersion, firstNonEmpty(msg, v.VulnerabilityID))
			}
			out = append(out, model.Finding{
				Tool:     "trivy",
				RuleID:   v.VulnerabilityID,
				Severity: mapSeverity(trivySeverity, v.Severity),
				FilePath: orNoPath(target),
				Message:  orNoMessage(msg),
				Raw:      raw,
			})
		}

		for _, raw := range r.Misconfigurations {
			var m trivyMisconfiguration
			if err := json.Unmarshal(raw, &m); err != nil {
				return nil, err
			}
			start, end := lineRange(m.CauseMetadata.StartLine, m.CauseMetadata.EndLine)
			out = append(out, model.Finding{
				Tool:      "trivy",
				RuleID:    m.ID,
				Severity:  mapSeverity(trivySeverity, m.Severity),
				FilePath:  orNoPath(target),
				StartLine: start,
				EndLine:   end,
				Message:   orNoMessage(firstNonEmpty(m.Description, m.Title)),
				Raw:       raw,
			})
		}

		for _, raw := range r.Secrets {
			var s trivySecret
			if err := json.Unmarshal(raw, &s); err != nil {
				return nil, err
			}
			start, end := lineRange(s.StartLine, s.EndLine)
			out = append(out, model.Finding{
				Tool:      "trivy",
				RuleID:    s.RuleID,
				Severity:  mapSeverity(trivySeverity, s.Severity),
				FilePath:  orNoPath(target),
				StartLine: start,
				EndLine:   end,
				Message:   orNoMessage(s.Title),
				Raw:       raw,
			})
		}
	}
	return out, nil
}

func ParseTrivyFile(path string) ([]model.Finding, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	out, err := ParseTrivyBytes(b)
	if err != nil {
		return nil, malformed("trivy", path, err)
	}
	return out, nil
}
