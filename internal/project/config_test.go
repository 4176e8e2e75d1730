package project

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"regionck/internal/regions"
)

func writeConfig(t *testing.T, dir, body string) string {
	t.Helper()
	path := filepath.Join(dir, ConfigFileName)
	if err := os.WriteFile(path, []byte(body), 0o600); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestLoadConfigOverridesDefaults(t *testing.T) {
	dir := t.TempDir()
	path := writeConfig(t, dir, `
[run]
paths = ["scenarios"]
jobs = 2

[check]
self_fallback = "abort"
max_depth = 16

[cache]
enabled = false
dir = ".cache"
`)
	cfg, err := LoadConfig(path)
	if err != nil {
		t.Fatalf("LoadConfig: %v", err)
	}
	if len(cfg.Run.Paths) != 1 || cfg.Run.Paths[0] != filepath.Join(dir, "scenarios") {
		t.Fatalf("paths = %v", cfg.Run.Paths)
	}
	if cfg.Run.Jobs != 2 || cfg.Cache.Enabled || cfg.Cache.Dir != filepath.Join(dir, ".cache") {
		t.Fatalf("cfg = %+v", cfg)
	}
	if cfg.Check.MaxDiagnostics != 100 {
		t.Fatalf("unset keys must keep defaults, got max_diagnostics = %d", cfg.Check.MaxDiagnostics)
	}
	opts, err := cfg.RegionOptions()
	if err != nil {
		t.Fatal(err)
	}
	if opts.SelfFallback != regions.SelfFallbackAbort || opts.MaxDepth != 16 {
		t.Fatalf("options = %+v", opts)
	}
}

func TestLoadConfigRejectsUnknownKeys(t *testing.T) {
	path := writeConfig(t, t.TempDir(), "[check]\nself_fallbak = \"abort\"\n")
	_, err := LoadConfig(path)
	if !errors.Is(err, ErrUnknownKey) {
		t.Fatalf("err = %v, want ErrUnknownKey", err)
	}
}

func TestLoadConfigValidates(t *testing.T) {
	for _, body := range []string{
		"[check]\nself_fallback = \"panic\"\n",
		"[check]\nmax_depth = -1\n",
		"[run]\njobs = -3\n",
	} {
		if _, err := LoadConfig(writeConfig(t, t.TempDir(), body)); err == nil {
			t.Fatalf("config %q must be rejected", body)
		}
	}
}

func TestFindConfigWalksUp(t *testing.T) {
	root := t.TempDir()
	want := writeConfig(t, root, "")
	nested := filepath.Join(root, "a", "b")
	if err := os.MkdirAll(nested, 0o755); err != nil {
		t.Fatal(err)
	}
	got, ok, err := FindConfig(nested)
	if err != nil || !ok {
		t.Fatalf("FindConfig: ok=%v err=%v", ok, err)
	}
	if got != want {
		t.Fatalf("FindConfig = %q, want %q", got, want)
	}
}
