package manifest

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/traincut/traincut/internal/semver"
)

func TestParseVersion(t *testing.T) {
	tests := []struct {
		name    string
		content string
		want    string
		wantErr bool
	}{
		{name: "stable", content: `{"name": "framework", "version": "10.0.1"}`, want: "10.0.1"},
		{name: "prerelease", content: `{"version": "10.2.0-next.6"}`, want: "10.2.0-next.6"},
		{name: "missing version", content: `{"name": "framework"}`, wantErr: true},
		{name: "malformed json", content: `{`, wantErr: true},
		{name: "malformed version", content: `{"version": "ten"}`, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			v, err := ParseVersion([]byte(tt.content))
			if tt.wantErr {
				if err == nil {
					t.Fatalf("expected error, got %v", v)
				}
				return
			}
			if err != nil {
				t.Fatalf("ParseVersion: %v", err)
			}
			if v.String() != tt.want {
				t.Errorf("version = %q, want %q", v, tt.want)
			}
		})
	}
}

func TestSetVersion(t *testing.T) {
	dir := t.TempDir()
	original := `{
  "name": "framework",
  "private": true,
  "version": "10.0.1"
}
`
	if err := os.WriteFile(filepath.Join(dir, FileName), []byte(original), 0o644); err != nil {
		t.Fatal(err)
	}

	if err := SetVersion(dir, semver.MustParse("10.0.2")); err != nil {
		t.Fatalf("SetVersion: %v", err)
	}

	content, err := os.ReadFile(filepath.Join(dir, FileName))
	if err != nil {
		t.Fatal(err)
	}
	got := string(content)
	if !strings.Contains(got, `"version": "10.0.2"`) {
		t.Errorf("version not updated:\n%s", got)
	}
	if !strings.Contains(got, `"name": "framework"`) || !strings.Contains(got, `"private": true`) {
		t.Errorf("other fields not preserved:\n%s", got)
	}
	if !strings.HasSuffix(got, "\n") {
		t.Error("output missing trailing newline")
	}

	v, err := ParseVersion(content)
	if err != nil {
		t.Fatalf("round-trip parse: %v", err)
	}
	if v.String() != "10.0.2" {
		t.Errorf("round-trip version = %q", v)
	}
}

func TestSetVersionMissingFile(t *testing.T) {
	if err := SetVersion(t.TempDir(), semver.MustParse("1.0.0")); err == nil {
		t.Error("expected error for missing manifest")
	}
}
