package pipeline

import (
	"path/filepath"
	"strings"
	"time"

	"github.com/backmassage/hlsmill/internal/ffmpeg"
	"github.com/backmassage/hlsmill/internal/ladder"
	"github.com/backmassage/hlsmill/internal/language"
	"github.com/backmassage/hlsmill/internal/probe"
)

// Kind discriminates the media type of a rendition job.
type Kind string

const (
	KindVideo Kind = "video"
	KindAudio Kind = "audio"
)

// Status is the per-job outcome.
type Status string

const (
	StatusSuccess Status = "success"
	StatusError   Status = "error"
)

// JobResult is the recorded outcome of one rendition encode.
type JobResult struct {
	Name     string
	Kind     Kind
	Status   Status
	Duration time.Duration

	// Final telemetry snapshot, populated for jobs whose subprocess
	// produced progress output (including some failed ones).
	Telemetry ffmpeg.Telemetry

	// Profile is set for video jobs.
	Profile *ladder.RenditionProfile

	// Language and DirName are set for audio jobs: the unsuffixed
	// sanitized tag and the rendition directory name ("audio_eng").
	Language string
	DirName  string

	// ErrorDetail carries the failure message plus any retained
	// diagnostic output. Empty on success.
	ErrorDetail string

	// Hint is a short operator hint classified from the diagnostic
	// output, when one matched.
	Hint string
}

// Failed reports whether the job ended in error.
func (r *JobResult) Failed() bool { return r.Status == StatusError }

// FirstErrorLine returns the leading line of ErrorDetail for one-line
// log output.
func (r *JobResult) FirstErrorLine() string {
	line, _, _ := strings.Cut(r.ErrorDetail, "\n")
	return line
}

// AvgFPS returns frames over wall time for display, zero when unknown.
func (r *JobResult) AvgFPS() float64 {
	if r.Duration <= 0 || r.Telemetry.Frames == 0 {
		return 0
	}
	return float64(r.Telemetry.Frames) / r.Duration.Seconds()
}

// SubtitleResult is the recorded outcome of one subtitle track
// conversion. Skipped tracks produce no subprocess and no output file.
type SubtitleResult struct {
	Track       probe.SubtitleTrackInfo
	Output      string // written .vtt path, "" when skipped or failed
	Skipped     bool
	Duration    time.Duration
	ErrorDetail string
}

// Failed reports whether the track's conversion was attempted and failed.
func (s *SubtitleResult) Failed() bool { return !s.Skipped && s.ErrorDetail != "" }

// Results aggregates every job outcome of one pipeline run, each slice
// in submission order.
type Results struct {
	Video     []JobResult
	Audio     []JobResult
	Subtitles []SubtitleResult
}

// SuccessfulProfiles returns the profiles of the video jobs that
// succeeded, in ladder order. Only these belong in the master playlist.
func (r *Results) SuccessfulProfiles() []ladder.RenditionProfile {
	var out []ladder.RenditionProfile
	for i := range r.Video {
		if r.Video[i].Status == StatusSuccess && r.Video[i].Profile != nil {
			out = append(out, *r.Video[i].Profile)
		}
	}
	return out
}

// SuccessfulAudio returns the audio jobs that succeeded, in track order.
func (r *Results) SuccessfulAudio() []JobResult {
	var out []JobResult
	for i := range r.Audio {
		if r.Audio[i].Status == StatusSuccess {
			out = append(out, r.Audio[i])
		}
	}
	return out
}

// FailedCount returns the number of failed video and audio jobs plus
// failed subtitle conversions.
func (r *Results) FailedCount() int {
	n := 0
	for i := range r.Video {
		if r.Video[i].Failed() {
			n++
		}
	}
	for i := range r.Audio {
		if r.Audio[i].Failed() {
			n++
		}
	}
	for i := range r.Subtitles {
		if r.Subtitles[i].Failed() {
			n++
		}
	}
	return n
}

// videoJobs builds one encode job per profile. Each rendition owns the
// directory named after its rung label.
func (p *Pipeline) videoJobs(input, outputDir string, profiles []ladder.RenditionProfile) []*ffmpeg.VideoJob {
	threads := p.cfg.ThreadsPerJob()
	jobs := make([]*ffmpeg.VideoJob, len(profiles))
	for i, profile := range profiles {
		jobs[i] = &ffmpeg.VideoJob{
			Input:   input,
			Dir:     filepath.Join(outputDir, profile.Name),
			Profile: profile,
			Codec:   p.sel.VideoCodec,
			Threads: threads,
		}
	}
	return jobs
}

// audioJob pairs the ffmpeg invocation with the naming the playlist
// needs afterwards.
type audioJob struct {
	spec     *ffmpeg.AudioJob
	name     string // unique rendition name within the run ("eng", "eng_1")
	language string // unsuffixed sanitized tag
	dirName  string // rendition directory name ("audio_eng")
}

// audioJobs builds one encode job per audio track. Duplicate language
// tags get suffixed rendition names so two tracks never share a
// directory. Naming happens here, sequentially, so it is deterministic
// in track order.
func (p *Pipeline) audioJobs(input, outputDir string, tracks []probe.AudioTrackInfo) []*audioJob {
	threads := p.cfg.ThreadsPerJob()
	dis := language.NewDisambiguator()

	jobs := make([]*audioJob, len(tracks))
	for i, track := range tracks {
		lang := language.Sanitize(track.Language)
		name := dis.Claim(lang)
		dirName := "audio_" + name

		jobs[i] = &audioJob{
			spec: &ffmpeg.AudioJob{
				Input:       input,
				Dir:         filepath.Join(outputDir, dirName),
				MapIndex:    track.Index,
				BitrateKbps: p.audioBitrate(track.BitrateKbps),
				Codec:       p.sel.AudioCodec,
				Threads:     threads,
			},
			name:     name,
			language: lang,
			dirName:  dirName,
		}
	}
	return jobs
}

// audioBitrate resolves a track's output bitrate: the source rate when
// known, capped at the configured ceiling, else the configured default.
func (p *Pipeline) audioBitrate(sourceKbps int) int {
	if sourceKbps <= 0 {
		return p.cfg.Audio.BitrateKbps
	}
	if sourceKbps > p.cfg.Audio.MaxBitrateKbps {
		return p.cfg.Audio.MaxBitrateKbps
	}
	return sourceKbps
}

// finishJob folds an ExecResult into a JobResult.
func finishJob(name string, kind Kind, start time.Time, res ffmpeg.ExecResult) JobResult {
	r := JobResult{
		Name:      name,
		Kind:      kind,
		Duration:  time.Since(start),
		Telemetry: res.Telemetry,
	}
	if res.Err == nil {
		r.Status = StatusSuccess
		return r
	}
	r.Status = StatusError
	r.ErrorDetail = res.Err.Error()
	if res.Stderr != "" {
		r.ErrorDetail += "\n" + res.Stderr
	}
	r.Hint = ffmpeg.FailureHint(res.Stderr)
	return r
}
