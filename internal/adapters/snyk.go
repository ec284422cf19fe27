package adapters

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/drhitchen/security-review-tools/internal/model"
)

// Snyk findings describe dependency vulnerabilities, so most are not
// file-scoped; the target manifest file is used when reported.
type snykJSON struct {
	DisplayTargetFile string            `json:"displayTargetFile"`
	Vulnerabilities   []json.RawMessage `json:"vulnerabilities"`
}

type snykVulnerability struct {
	ID          string `json:"id"`
	Title       string `json:"title"`
	Severity    string `json:"severity"` // low|medium|high|critical
	PackageName string `json:"packageName"`
	Version     string `json:"version"`
}

var snykSeverity = map[string]model.Severity{
	"CRITICAL": model.SevCritical,
	"HIGH":     model.SevHigh,
	"MEDIUM":   model.SevMedium,
	"LOW":      model.SevLow,
}

func ParseSnykBytes(b []byte) ([]model.Finding, error) {
	var doc snykJSON
	if err := json.Unmarshal(b, &doc); err != nil {
		return nil, err
	}

	out := make([]model.Finding, 0, len(doc.Vulnerabilities))
	for _, raw := range doc.Vulnerabilities {
		var v snykVulnerability
		if err := json.Unmarshal(raw, &v); err != nil {
			return nil, err
		}
		msg := v.Title
		if v.PackageName != "" {
			msg = fmt.Sprintf("%s@%s: %s", v.PackageName, v.Version, firstNonEmpty(v.Title, v.ID))
		}
		out = append(out, model.Finding{
			Tool:     "snyk",
			RuleID:   v.ID,
			Severity: mapSeverity(snykSeverity, v.Severity),
			FilePath: orNoPath(doc.DisplayTargetFile),
			Message:  orNoMessage(msg),
			Raw:      raw,
		})
	}
	return out, nil
}

func ParseSnykFile(path string) ([]model.Finding, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	out, err := ParseSnykBytes(b)
	if err != nil {
		return nil, malformed("snyk", path, err)
	}
	return out, nil
}
