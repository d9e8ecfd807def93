package storage

import (
	"encoding/json"
	"io"

	"github.com/san-kum/rovsim/internal/command"
	"github.com/san-kum/rovsim/internal/sim"
)

type ExportData struct {
	RunInfo
	Steps   int                `json:"steps"`
	Skipped int                `json:"skipped"`
	Samples []command.Snapshot `json:"samples"`
	Metrics map[string]float64 `json:"metrics"`
}

// ExportJSON writes a run as indented JSON, samples in the same shape the
// command server publishes.
func ExportJSON(w io.Writer, info RunInfo, result *sim.Result) error {
	data := ExportData{
		RunInfo: info,
		Steps:   result.StepsTaken,
		Skipped: result.Skipped,
		Samples: make([]command.Snapshot, len(result.Samples)),
		Metrics: result.Metrics,
	}
	for i, s := range result.Samples {
		data.Samples[i] = *command.SnapshotOf(s)
	}

	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(data)
}
