// Package pipeline executes the rendition encode jobs for one
// conversion: a bounded pool of video rendition subprocesses, then a
// bounded pool of audio rendition subprocesses, then a sequential
// subtitle conversion pass. Job failures are isolated; a failed
// rendition is recorded in its result and never aborts siblings or the
// pipeline itself.
package pipeline

import (
	"context"
	"os"
	"time"

	"github.com/schollz/progressbar/v3"
	"golang.org/x/sync/errgroup"

	"github.com/backmassage/hlsmill/internal/config"
	"github.com/backmassage/hlsmill/internal/encoder"
	"github.com/backmassage/hlsmill/internal/ffmpeg"
	"github.com/backmassage/hlsmill/internal/ladder"
	"github.com/backmassage/hlsmill/internal/probe"
	"github.com/backmassage/hlsmill/internal/term"
)

// Logger is the minimal logging surface the pipeline needs. Satisfied
// by *logging.Logger.
type Logger interface {
	Info(format string, args ...interface{})
	Warn(format string, args ...interface{})
	Debug(format string, args ...interface{})
}

// RunFunc supervises one ffmpeg invocation. A variable field so tests
// can substitute a fake; the default is ffmpeg.Run.
type RunFunc func(ctx context.Context, args []string, onProgress ffmpeg.ProgressFunc) ffmpeg.ExecResult

// Pipeline runs the encode jobs for one conversion.
type Pipeline struct {
	cfg *config.Config
	log Logger
	sel *encoder.Selection
	run RunFunc
}

// New builds a Pipeline around the chosen encoder selection.
func New(cfg *config.Config, log Logger, sel *encoder.Selection) *Pipeline {
	return &Pipeline{cfg: cfg, log: log, sel: sel, run: ffmpeg.Run}
}

// Run executes every rendition job for the input. The video pool fully
// drains before the audio pool starts, and both drain before the
// subtitle pass. Run itself never fails; per-job outcomes are in the
// returned Results.
func (p *Pipeline) Run(ctx context.Context, input, outputDir string, desc *probe.MediaDescriptor, profiles []ladder.RenditionProfile) *Results {
	res := &Results{}

	if len(profiles) > 0 {
		p.log.Info("Encoding %d video rendition(s) with up to %d worker(s)", len(profiles), p.cfg.Workers())
		res.Video = p.runVideoPool(ctx, input, outputDir, profiles)
	}
	if len(desc.Audio) > 0 {
		p.log.Info("Encoding %d audio rendition(s)", len(desc.Audio))
		res.Audio = p.runAudioPool(ctx, input, outputDir, desc.Audio)
	}
	res.Subtitles = p.runSubtitles(ctx, input, outputDir, desc.Subtitles)
	return res
}

// runVideoPool encodes every profile with at most Workers() concurrent
// subprocesses. Results land at their job's submission index, so the
// returned slice is in ladder order regardless of completion order.
func (p *Pipeline) runVideoPool(ctx context.Context, input, outputDir string, profiles []ladder.RenditionProfile) []JobResult {
	jobs := p.videoJobs(input, outputDir, profiles)
	results := make([]JobResult, len(jobs))

	bar := p.newBar(len(jobs), "video renditions")
	var g errgroup.Group
	g.SetLimit(p.cfg.Workers())
	for i, job := range jobs {
		i, job := i, job
		g.Go(func() error {
			results[i] = p.runVideoJob(ctx, job, &profiles[i])
			p.logJobOutcome(&results[i])
			barAdd(bar)
			return nil
		})
	}
	_ = g.Wait()
	barFinish(bar)
	return results
}

// runAudioPool encodes every audio track, pooled like the video pass.
func (p *Pipeline) runAudioPool(ctx context.Context, input, outputDir string, tracks []probe.AudioTrackInfo) []JobResult {
	jobs := p.audioJobs(input, outputDir, tracks)
	results := make([]JobResult, len(jobs))

	bar := p.newBar(len(jobs), "audio renditions")
	var g errgroup.Group
	g.SetLimit(p.cfg.Workers())
	for i, job := range jobs {
		i, job := i, job
		g.Go(func() error {
			results[i] = p.runAudioJob(ctx, job)
			p.logJobOutcome(&results[i])
			barAdd(bar)
			return nil
		})
	}
	_ = g.Wait()
	barFinish(bar)
	return results
}

func (p *Pipeline) runVideoJob(ctx context.Context, job *ffmpeg.VideoJob, profile *ladder.RenditionProfile) JobResult {
	start := time.Now()
	if err := os.MkdirAll(job.Dir, 0o755); err != nil {
		return JobResult{
			Name:        profile.Name,
			Kind:        KindVideo,
			Status:      StatusError,
			Duration:    time.Since(start),
			Profile:     profile,
			ErrorDetail: "create rendition directory: " + err.Error(),
		}
	}

	jobCtx, cancel := p.jobContext(ctx)
	defer cancel()
	res := p.run(jobCtx, ffmpeg.BuildVideoArgs(p.cfg, job), p.progressFunc(profile.Name))

	r := finishJob(profile.Name, KindVideo, start, res)
	r.Profile = profile
	return r
}

func (p *Pipeline) runAudioJob(ctx context.Context, job *audioJob) JobResult {
	start := time.Now()
	if err := os.MkdirAll(job.spec.Dir, 0o755); err != nil {
		return JobResult{
			Name:        job.name,
			Kind:        KindAudio,
			Status:      StatusError,
			Duration:    time.Since(start),
			Language:    job.language,
			DirName:     job.dirName,
			ErrorDetail: "create rendition directory: " + err.Error(),
		}
	}

	jobCtx, cancel := p.jobContext(ctx)
	defer cancel()
	res := p.run(jobCtx, ffmpeg.BuildAudioArgs(p.cfg, job.spec), p.progressFunc(job.name))

	r := finishJob(job.name, KindAudio, start, res)
	r.Language = job.language
	r.DirName = job.dirName
	return r
}

// jobContext applies the optional per-encode deadline. With the
// timeout unset a job may run indefinitely, holding its worker slot.
func (p *Pipeline) jobContext(ctx context.Context) (context.Context, context.CancelFunc) {
	if m := p.cfg.Encoding.EncodeTimeoutMinutes; m > 0 {
		return context.WithTimeout(ctx, time.Duration(m)*time.Minute)
	}
	return context.WithCancel(ctx)
}

// progressFunc returns a throttled telemetry logger for debug runs,
// nil otherwise. The callback fires on the job's own goroutine only.
func (p *Pipeline) progressFunc(name string) ffmpeg.ProgressFunc {
	if !p.cfg.Logging.Debug {
		return nil
	}
	var last time.Time
	return func(tel ffmpeg.Telemetry) {
		if time.Since(last) < 5*time.Second {
			return
		}
		last = time.Now()
		p.log.Debug("%s: frame=%d fps=%.1f bitrate=%s speed=%s", name, tel.Frames, tel.FPS, tel.Bitrate, tel.Speed)
	}
}

func (p *Pipeline) logJobOutcome(r *JobResult) {
	if r.Status == StatusSuccess {
		p.log.Debug("%s rendition %s finished in %s", r.Kind, r.Name, r.Duration.Round(time.Second))
		return
	}
	p.log.Warn("%s rendition %s failed: %s", r.Kind, r.Name, r.FirstErrorLine())
	if r.Hint != "" {
		p.log.Warn("%s: %s", r.Name, r.Hint)
	}
}

// newBar builds the pool completion bar, or returns nil when stderr is
// not a terminal or quiet mode is on.
func (p *Pipeline) newBar(total int, description string) *progressbar.ProgressBar {
	if p.cfg.Logging.Quiet || !term.IsTerminal(os.Stderr) {
		return nil
	}
	return progressbar.NewOptions(total,
		progressbar.OptionSetDescription(description),
		progressbar.OptionSetWriter(os.Stderr),
		progressbar.OptionShowCount(),
		progressbar.OptionClearOnFinish(),
	)
}

func barAdd(bar *progressbar.ProgressBar) {
	if bar != nil {
		_ = bar.Add(1)
	}
}

func barFinish(bar *progressbar.ProgressBar) {
	if bar != nil {
		_ = bar.Finish()
	}
}
