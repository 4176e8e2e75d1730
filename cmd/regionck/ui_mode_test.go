package main

import (
	"os"
	"testing"
)

func TestReadUIMode(t *testing.T) {
	tests := map[string]uiMode{
		"":     uiModeAuto,
		"auto": uiModeAuto,
		" ON ": uiModeOn,
		"off":  uiModeOff,
	}
	for in, want := range tests {
		got, err := readUIMode(in)
		if err != nil {
			t.Fatalf("readUIMode(%q): %v", in, err)
		}
		if got != want {
			t.Fatalf("readUIMode(%q) = %q, want %q", in, got, want)
		}
	}
	if _, err := readUIMode("sometimes"); err == nil {
		t.Fatalf("expected error for unknown mode")
	}
}

func TestShouldUseTUI(t *testing.T) {
	if !shouldUseTUI(uiModeOn, "json", nil) || shouldUseTUI(uiModeOff, "text", os.Stdout) {
		t.Fatalf("explicit modes must win over terminal detection")
	}
	if shouldUseTUI(uiModeAuto, "json", os.Stdout) {
		t.Fatalf("auto mode must not draw over JSON output")
	}
	devnull, err := os.Open(os.DevNull)
	if err != nil {
		t.Fatalf("open %s: %v", os.DevNull, err)
	}
	defer devnull.Close()
	if shouldUseTUI(uiModeAuto, "text", devnull) {
		t.Fatalf("auto mode must not draw when output is not a terminal")
	}
}
