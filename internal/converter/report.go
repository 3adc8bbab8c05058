package converter

import (
	"fmt"
	"strings"
	"time"

	"github.com/backmassage/hlsmill/internal/display"
	"github.com/backmassage/hlsmill/internal/encoder"
	"github.com/backmassage/hlsmill/internal/ladder"
	"github.com/backmassage/hlsmill/internal/pipeline"
	"github.com/backmassage/hlsmill/internal/probe"
)

// StepTiming records the wall time of one conversion step.
type StepTiming struct {
	Name     string
	Duration time.Duration
}

// Report is the aggregated outcome of one conversion run.
type Report struct {
	ID        string
	Input     string
	OutputDir string

	Selection  *encoder.Selection
	Descriptor *probe.MediaDescriptor
	Profiles   []ladder.RenditionProfile // planned ladder
	Results    *pipeline.Results

	MasterPlaylist string
	Steps          []StepTiming
	WallTime       time.Duration
}

func (r *Report) addStep(name string, start time.Time) {
	r.Steps = append(r.Steps, StepTiming{Name: name, Duration: time.Since(start)})
}

// Partial reports whether the run completed with at least one failed
// job. A partial run still counts as a successful conversion.
func (r *Report) Partial() bool {
	return r.Results != nil && r.Results.FailedCount() > 0
}

// Summary renders the human-readable conversion report: the per-job
// breakdown, step timings, and the output location.
func (r *Report) Summary() string {
	var b strings.Builder

	fmt.Fprintf(&b, "Conversion %s\n", r.ID)
	fmt.Fprintf(&b, "Input:  %s", r.Input)
	if r.Descriptor != nil && r.Descriptor.FileSize > 0 {
		fmt.Fprintf(&b, " (%s)", display.FormatBytes(r.Descriptor.FileSize))
	}
	fmt.Fprintf(&b, "\nOutput: %s\n", r.MasterPlaylist)

	if r.Selection != nil {
		fmt.Fprintf(&b, "Encoders: %s / %s\n", r.Selection.VideoName, r.Selection.AudioName)
	}

	if r.Results != nil {
		b.WriteString("\n")
		b.WriteString(display.SummaryTable(r.Results))
		b.WriteString("\n")
	}

	b.WriteString("\nSteps:\n")
	for _, s := range r.Steps {
		fmt.Fprintf(&b, "  %-22s %s\n", s.Name, display.FormatWallTime(s.Duration))
	}
	fmt.Fprintf(&b, "Total: %s", display.FormatWallTime(r.WallTime))

	if r.Partial() {
		fmt.Fprintf(&b, "\n%d job(s) failed; their renditions are absent from the master playlist", r.Results.FailedCount())
	}
	return b.String()
}
