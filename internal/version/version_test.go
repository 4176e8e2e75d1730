package version

import (
	"strings"
	"testing"
)

func TestVersion_DefaultValues(t *testing.T) {
	if Version == "" {
		t.Error("Version should have a default value")
	}
}

func TestString_Plain(t *testing.T) {
	origVersion, origCommit, origDate := Version, GitCommit, BuildDate
	defer func() { Version, GitCommit, BuildDate = origVersion, origCommit, origDate }()

	tests := []struct {
		version, commit, date string
		want                  string
	}{
		{"0.1.0-dev", "", "", "0.1.0-dev"},
		{"1.2.3", "abc123", "", "1.2.3 (commit abc123)"},
		{"1.0.0-rc.1", "abc123", "2026-01-15", "1.0.0-rc.1 (commit abc123, built 2026-01-15)"},
		{"2", "", "2026-01-15", "2 (built 2026-01-15)"},
	}
	for _, tt := range tests {
		Version, GitCommit, BuildDate = tt.version, tt.commit, tt.date
		if got := String(false); got != tt.want {
			t.Errorf("String(false) for %q = %q, want %q", tt.version, got, tt.want)
		}
	}
}

func TestString_Colored(t *testing.T) {
	origVersion := Version
	defer func() { Version = origVersion }()

	Version = "1.2.3"
	got := String(true)
	if !strings.Contains(got, "\x1b[") {
		t.Fatalf("expected ANSI escapes, got %q", got)
	}
	if strings.Contains(String(false), "\x1b[") {
		t.Fatalf("plain output must not be colored")
	}
}
