package adapters

import (
	"fmt"
	"os"
	"regexp"
	"strings"

	"github.com/drhitchen/security-review-tools/internal/model"
)

// sslscan has no structured output worth relying on, so this is the one
// text adapter. It stays behind the same ParseFunc interface as the JSON
// adapters so the aggregator never knows the difference.

var (
	sslProtocolRe = regexp.MustCompile(`(?m)^(TLSv[\d.]+|SSLv[\d.]+)\s+(enabled|disabled)\s*$`)
	sslCipherRe   = regexp.MustCompile(`(?m)^(Preferred|Accepted)\s+(TLSv[\d.]+)\s+(\d+)\s+bits\s+([A-Za-z0-9_-]+)`)
)

// Protocols below TLSv1.2 are reported when enabled.
var legacyProtocols = map[string]bool{
	"TLSv1.0": true,
	"TLSv1.1": true,
	"SSLv3":   true,
	"SSLv2":   true,
}

func ParseSSLScanBytes(b []byte) ([]model.Finding, error) {
	text := string(b)
	if !strings.Contains(text, "SSL") && !strings.Contains(text, "TLS") {
		return nil, fmt.Errorf("output contains no TLS protocol data")
	}

	var out []model.Finding
	for _, m := range sslProtocolRe.FindAllStringSubmatch(text, -1) {
		proto, status := m[1], m[2]
		if status != "enabled" || !legacyProtocols[proto] {
			continue
		}
		out = append(out, model.Finding{
			Tool:     "sslscan",
			RuleID:   "legacy-protocol-" + strings.ToLower(proto),
			Severity: model.SevHigh,
			FilePath: model.NoFilePath,
			Message:  fmt.Sprintf("Legacy protocol %s is enabled", proto),
			Raw:      []byte(strings.TrimSpace(m[0])),
		})
	}
	for _, m := range sslCipherRe.FindAllStringSubmatch(text, -1) {
		version, cipher := m[2], m[4]
		if !weakCipher(cipher, version) {
			continue
		}
		out = append(out, model.Finding{
			Tool:     "sslscan",
			RuleID:   "weak-cipher",
			Severity: model.SevMedium,
			FilePath: model.NoFilePath,
			Message:  fmt.Sprintf("Weak cipher %s accepted on %s", cipher, version),
			Raw:      []byte(strings.TrimSpace(m[0])),
		})
	}
	return out, nil
}

// weakCipher applies the Qualys-style rule: TLSv1.3 suites are always
// strong; below that, a suite must use ephemeral key exchange and an
// AEAD algorithm to count as strong.
func weakCipher(cipher, version string) bool {
	if version == "TLSv1.3" {
		return false
	}
	c := strings.ToUpper(cipher)
	ephemeral := strings.Contains(c, "ECDHE") || strings.Contains(c, "DHE")
	aead := strings.Contains(c, "GCM") || strings.Contains(c, "CHACHA") || strings.Contains(c, "POLY1305")
	return !(ephemeral && aead)
}

func ParseSSLScanFile(path string) ([]model.Finding, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	out, err := ParseSSLScanBytes(b)
	if err != nil {
		return nil, malformed("sslscan", path, err)
	}
	return out, nil
}
