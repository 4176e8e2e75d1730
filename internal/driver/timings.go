package driver

import (
	"encoding/json"
	"fmt"

	"regionck/internal/diag"
	"regionck/internal/observ"
	"regionck/internal/source"
)

type timingPayload struct {
	Kind    string               `json:"kind"`
	Path    string               `json:"path,omitempty"`
	TotalMS float64              `json:"total_ms"`
	Phases  []observ.PhaseReport `json:"phases"`
}

// appendTimingDiagnostic records a file's phase timings as an info
// diagnostic whose note carries the JSON form. The bag grows past its
// limit if needed; timings are never dropped.
func appendTimingDiagnostic(bag *diag.Bag, path string, report observ.Report) {
	if bag == nil {
		return
	}
	payload := timingPayload{Kind: "scenario", Path: path, TotalMS: report.TotalMS, Phases: report.Phases}
	data, err := json.Marshal(payload)
	if err != nil {
		return
	}
	msg := fmt.Sprintf("timings (%s): total %.2f ms", payload.Kind, payload.TotalMS)
	if path != "" {
		msg += ": " + path
	}
	entry := diag.New(diag.SevInfo, diag.ObsTimings, source.Span{}, msg).
		WithNote(source.Span{}, string(data))

	if bag.Add(entry) {
		return
	}
	overflow := diag.NewBag(1)
	overflow.Add(entry)
	bag.Merge(overflow)
}
