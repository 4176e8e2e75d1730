package main

import (
	"fmt"
	"os"
	"strings"
)

// uiMode is the value of `check --ui`.
type uiMode string

const (
	uiModeAuto uiMode = "auto"
	uiModeOn   uiMode = "on"
	uiModeOff  uiMode = "off"
)

func readUIMode(value string) (uiMode, error) {
	mode := uiMode(strings.ToLower(strings.TrimSpace(value)))
	switch mode {
	case "":
		return uiModeAuto, nil
	case uiModeAuto, uiModeOn, uiModeOff:
		return mode, nil
	}
	return "", fmt.Errorf("invalid --ui value %q (expected auto|on|off)", value)
}

// shouldUseTUI decides whether scenario progress is drawn live. JSON
// reports go to a pipe more often than not, so auto mode only draws for
// text output on a terminal.
func shouldUseTUI(mode uiMode, format string, out *os.File) bool {
	switch mode {
	case uiModeOn:
		return true
	case uiModeOff:
		return false
	}
	return format == "text" && isTerminal(out)
}
