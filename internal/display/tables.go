package display

import (
	"fmt"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/jedib0t/go-pretty/v6/text"

	"github.com/backmassage/hlsmill/internal/encoder"
	"github.com/backmassage/hlsmill/internal/ladder"
	"github.com/backmassage/hlsmill/internal/pipeline"
	"github.com/backmassage/hlsmill/internal/probe"
)

type columnAlignment int

const (
	alignLeft columnAlignment = iota
	alignRight
)

// renderTable renders headers and rows with the shared rounded style.
func renderTable(headers []string, rows [][]string, aligns []columnAlignment) string {
	columns := len(headers)
	if columns == 0 {
		return ""
	}

	tw := table.NewWriter()
	tw.SetStyle(table.StyleRounded)

	header := make(table.Row, columns)
	for i := 0; i < columns; i++ {
		header[i] = headers[i]
	}
	tw.AppendHeader(header)

	for _, row := range rows {
		r := make(table.Row, columns)
		for i := 0; i < columns; i++ {
			if i < len(row) {
				r[i] = row[i]
			} else {
				r[i] = ""
			}
		}
		tw.AppendRow(r)
	}

	columnConfigs := make([]table.ColumnConfig, 0, columns)
	for i := 0; i < columns; i++ {
		align := text.AlignLeft
		if i < len(aligns) && aligns[i] == alignRight {
			align = text.AlignRight
		}
		columnConfigs = append(columnConfigs, table.ColumnConfig{
			Number:      i + 1,
			Align:       align,
			AlignHeader: text.AlignLeft,
		})
	}
	tw.SetColumnConfigs(columnConfigs)

	return tw.Render()
}

// EncoderTable renders every tested candidate plus the selected pair.
func EncoderTable(sel *encoder.Selection) string {
	rows := make([][]string, 0, len(sel.Candidates))
	for _, cand := range sel.Candidates {
		selected := ""
		if cand.Codec == sel.VideoCodec || cand.Codec == sel.AudioCodec {
			selected = "selected"
		}
		rows = append(rows, []string{
			string(cand.Kind), cand.Codec, cand.Name,
			yesNo(cand.Hardware), yesNo(cand.Available), selected,
		})
	}
	return renderTable(
		[]string{"Kind", "Codec", "Name", "HW", "Available", ""},
		rows, nil)
}

// StreamTable renders the probed descriptor, one row per stream.
func StreamTable(desc *probe.MediaDescriptor) string {
	var rows [][]string
	if v := desc.Video; v != nil {
		detail := fmt.Sprintf("%.2f fps, %s", v.FrameRate, desc.HDRType())
		if v.PixFmt != "" {
			detail += ", " + v.PixFmt
		}
		rows = append(rows, []string{
			"video", v.Codec, desc.Resolution(), detail,
			FormatBitrate(v.BitrateKbps),
			FormatDuration(v.Duration),
		})
	}
	for _, a := range desc.Audio {
		detail := fmt.Sprintf("%d ch", a.Channels)
		if a.SampleRate > 0 {
			detail += fmt.Sprintf(", %d Hz", a.SampleRate)
		}
		rows = append(rows, []string{
			"audio " + strconv.Itoa(a.Index), a.Codec, a.Language,
			detail, FormatBitrate(a.BitrateKbps), "",
		})
	}
	for _, s := range desc.Subtitles {
		kind := "text"
		if s.IsBitmap() {
			kind = "bitmap"
		}
		rows = append(rows, []string{
			"subtitle " + strconv.Itoa(s.Index), s.Codec, s.Language, kind, "", "",
		})
	}
	return renderTable(
		[]string{"Stream", "Codec", "Detail", "", "Bitrate", "Duration"},
		rows, []columnAlignment{alignLeft, alignLeft, alignLeft, alignLeft, alignRight, alignRight})
}

// LadderTable renders the planned profile ladder with size estimates.
func LadderTable(profiles []ladder.RenditionProfile, duration float64) string {
	rows := make([][]string, 0, len(profiles))
	for _, p := range profiles {
		estimate := "-"
		if duration > 0 {
			estimate = FormatBytes(p.EstimatedSizeBytes(duration))
		}
		rows = append(rows, []string{
			p.Name,
			fmt.Sprintf("%dx%d", p.Width, p.Height),
			FormatBitrate(p.MaxBitrateKbps),
			FormatBitrate(p.MinBitrateKbps),
			estimate,
		})
	}
	return renderTable(
		[]string{"Rendition", "Resolution", "Max", "Min", "Est. size"},
		rows, []columnAlignment{alignLeft, alignLeft, alignRight, alignRight, alignRight})
}

// SummaryTable renders the per-job breakdown of one pipeline run.
func SummaryTable(results *pipeline.Results) string {
	var rows [][]string
	for i := range results.Video {
		rows = append(rows, jobRow(&results.Video[i]))
	}
	for i := range results.Audio {
		rows = append(rows, jobRow(&results.Audio[i]))
	}
	for i := range results.Subtitles {
		rows = append(rows, subtitleRow(&results.Subtitles[i]))
	}
	return renderTable(
		[]string{"Rendition", "Type", "Status", "Speed", "Avg FPS", "Size", "Time"},
		rows, []columnAlignment{alignLeft, alignLeft, alignLeft, alignRight, alignRight, alignRight, alignRight})
}

func jobRow(r *pipeline.JobResult) []string {
	status := "ok"
	if r.Failed() {
		status = "FAILED"
	}
	speed, fps := "-", "-"
	if s := r.Telemetry.Speed; s != "" {
		speed = s
	}
	if avg := r.AvgFPS(); avg > 0 {
		fps = fmt.Sprintf("%.1f", avg)
	}
	size := "-"
	if r.Telemetry.TotalSize != "" {
		if n, err := strconv.ParseInt(r.Telemetry.TotalSize, 10, 64); err == nil {
			size = FormatBytes(n)
		} else {
			size = r.Telemetry.TotalSize
		}
	}
	return []string{r.Name, string(r.Kind), status, speed, fps, size, FormatWallTime(r.Duration)}
}

func subtitleRow(s *pipeline.SubtitleResult) []string {
	name := s.Track.Language
	if s.Output != "" {
		name = strings.TrimSuffix(filepath.Base(s.Output), ".vtt")
	}
	status := "ok"
	switch {
	case s.Skipped:
		status = "skipped"
	case s.Failed():
		status = "FAILED"
	}
	return []string{name, "subtitle", status, "-", "-", "-", FormatWallTime(s.Duration)}
}
