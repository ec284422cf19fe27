package target

import (
	"os"
	"path/filepath"
	"testing"
)

func writeFile(t *testing.T, dir, name, content string) {
	t.Helper()
	path := filepath.Join(dir, name)
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
}

func TestDetect(t *testing.T) {
	root := t.TempDir()
	writeFile(t, root, "main.tf", `resource "aws_s3_bucket" "b" {}`)
	writeFile(t, root, "deploy/pod.yaml", "apiVersion: v1\nkind: Pod")
	writeFile(t, root, "deploy/values.yaml", "replicas: 3")
	writeFile(t, root, "Dockerfile", "FROM alpine")
	writeFile(t, root, "package.json", "{}")
	writeFile(t, root, "node_modules/dep/package.json", "{}")
	writeFile(t, root, ".git/config", "")

	p, err := Detect(root)
	if err != nil {
		t.Fatal(err)
	}

	tests := []struct {
		kind Kind
		want int
	}{
		{Terraform, 1},
		{Kubernetes, 1},
		{Dockerfile, 1},
		{Node, 1}, // node_modules is skipped
		{Python, 0},
	}
	for _, tt := range tests {
		if got := p[tt.kind]; got != tt.want {
			t.Errorf("%s: got %d, want %d", tt.kind, got, tt.want)
		}
	}
}

func TestIsKubernetesManifest(t *testing.T) {
	tests := []struct {
		name     string
		content  string
		expected bool
	}{
		{"valid_manifest", "apiVersion: v1\nkind: Pod", true},
		{"no_apiversion", "kind: Deployment", false},
		{"empty_file", "", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			dir := t.TempDir()
			writeFile(t, dir, "f.yaml", tt.content)

			result := isKubernetesManifest(filepath.Join(dir, "f.yaml"))
			if result != tt.expected {
				t.Errorf("expected %v, got %v", tt.expected, result)
			}
		})
	}
}

func TestProfileString(t *testing.T) {
	p := Profile{Terraform: 2, Node: 1}
	if got := p.String(); got != "terraform=2 node=1" {
		t.Errorf("unexpected profile string: %q", got)
	}
	if got := (Profile{}).String(); got != "no recognized project files" {
		t.Errorf("empty profile string: %q", got)
	}
}
