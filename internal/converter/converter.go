// Package converter sequences one conversion end to end: encoder
// detection, input analysis, ladder planning, the rendition pipeline,
// and master playlist assembly. Only a missing input file, a held
// output lock, or a manifest write failure abort the run; failed
// renditions are reported in the per-job breakdown and the run still
// completes.
package converter

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/gofrs/flock"
	"github.com/google/uuid"

	"github.com/backmassage/hlsmill/internal/config"
	"github.com/backmassage/hlsmill/internal/encoder"
	"github.com/backmassage/hlsmill/internal/ladder"
	"github.com/backmassage/hlsmill/internal/pipeline"
	"github.com/backmassage/hlsmill/internal/playlist"
	"github.com/backmassage/hlsmill/internal/probe"
)

// lockName is the advisory lock file guarding an output directory.
// Two conversions writing the same target would corrupt each other's
// rendition trees.
const lockName = ".hlsmill.lock"

// Logger is the logging surface the converter needs. Satisfied by
// *logging.Logger.
type Logger interface {
	Info(format string, args ...interface{})
	Success(format string, args ...interface{})
	Warn(format string, args ...interface{})
	Error(format string, args ...interface{})
	Debug(format string, args ...interface{})
}

// Converter owns the collaborators of one or more conversions. The
// encoder catalog's cache carries across Run calls, so converting
// several inputs detects encoders once.
type Converter struct {
	cfg *config.Config
	log Logger

	Prober  *probe.Prober
	Catalog *encoder.Catalog

	// runPipeline is a seam for tests; the default builds a
	// pipeline.Pipeline and runs it.
	runPipeline func(ctx context.Context, sel *encoder.Selection, input, outputDir string, desc *probe.MediaDescriptor, profiles []ladder.RenditionProfile) *pipeline.Results
}

// New builds a Converter from the configuration.
func New(cfg *config.Config, log Logger) *Converter {
	c := &Converter{
		cfg: cfg,
		log: log,
		Prober: &probe.Prober{
			FFprobePath: cfg.FFprobeBinary(),
			Timeout:     time.Duration(cfg.Pipeline.ProbeTimeoutSeconds) * time.Second,
			Log:         log,
		},
		Catalog: &encoder.Catalog{
			FFmpegPath:    cfg.FFmpegBinary(),
			Timeout:       time.Duration(cfg.Encoding.DetectTimeoutSeconds) * time.Second,
			ForceSoftware: cfg.Encoding.ForceSoftware,
			Log:           log,
		},
	}
	c.runPipeline = func(ctx context.Context, sel *encoder.Selection, input, outputDir string, desc *probe.MediaDescriptor, profiles []ladder.RenditionProfile) *pipeline.Results {
		return pipeline.New(cfg, log, sel).Run(ctx, input, outputDir, desc, profiles)
	}
	return c
}

// Run converts input into an HLS package under outputDir. requested
// optionally restricts the ladder to specific rung labels; labels the
// adaptive ladder lacks are synthesized from the base table.
func (c *Converter) Run(ctx context.Context, input, outputDir string, requested []string) (*Report, error) {
	report := &Report{
		ID:        uuid.NewString(),
		Input:     input,
		OutputDir: outputDir,
	}
	start := time.Now()

	if err := os.MkdirAll(outputDir, 0o755); err != nil {
		return nil, fmt.Errorf("create output directory: %w", err)
	}
	lock := flock.New(filepath.Join(outputDir, lockName))
	ok, err := lock.TryLock()
	if err != nil {
		return nil, fmt.Errorf("acquire output lock: %w", err)
	}
	if !ok {
		return nil, fmt.Errorf("output directory %s is in use by another conversion", outputDir)
	}
	defer func() { _ = lock.Unlock() }()

	// --- Detect encoders ---
	t0 := time.Now()
	sel := c.Catalog.Detect(ctx)
	report.Selection = sel
	report.addStep("detect encoders", t0)

	// --- Analyze input ---
	t0 = time.Now()
	desc, err := c.Prober.Analyze(ctx, input)
	if err != nil {
		return nil, err
	}
	report.Descriptor = desc
	report.addStep("analyze input", t0)
	c.logDescriptor(desc)

	// --- Plan the ladder ---
	t0 = time.Now()
	profiles := c.plan(desc, requested)
	report.Profiles = profiles
	report.addStep("plan ladder", t0)
	for _, p := range profiles {
		c.log.Debug("Planned rendition %s: %dx%d, %d-%d kbps", p.Name, p.Width, p.Height, p.MinBitrateKbps, p.MaxBitrateKbps)
	}

	// --- Encode renditions ---
	t0 = time.Now()
	results := c.runPipeline(ctx, sel, input, outputDir, desc, profiles)
	report.Results = results
	report.addStep("encode renditions", t0)

	// --- Assemble the master playlist ---
	t0 = time.Now()
	audio := make([]playlist.AudioRendition, 0, len(results.Audio))
	for _, r := range results.SuccessfulAudio() {
		audio = append(audio, playlist.AudioRendition{Name: r.Name, Language: r.Language, Dir: r.DirName})
	}
	master, err := playlist.WriteMaster(outputDir, results.SuccessfulProfiles(), audio)
	if err != nil {
		return nil, err
	}
	report.MasterPlaylist = master
	report.addStep("write master playlist", t0)

	report.WallTime = time.Since(start)
	if failed := results.FailedCount(); failed > 0 {
		c.log.Warn("Conversion finished with %d failed job(s) in %s", failed, report.WallTime.Round(time.Second))
	} else {
		c.log.Success("Conversion finished in %s", report.WallTime.Round(time.Second))
	}
	return report, nil
}

// plan derives the profile ladder for the probed input. Without an
// explicit resolution request the ladder is restricted to the
// recommended resolutions for the input. An input with no video
// stream yields an audio-only package with no video renditions.
func (c *Converter) plan(desc *probe.MediaDescriptor, requested []string) []ladder.RenditionProfile {
	if desc.Video == nil {
		c.log.Warn("No video stream found, producing an audio-only package")
		return nil
	}

	v := desc.Video
	names := requested
	if len(names) == 0 {
		names = ladder.OptimalResolutions(v)
	}
	profiles := ladder.CreateAdaptiveProfiles(v.Width, v.Height, v.BitrateKbps)
	return ladder.FilterByNames(profiles, names)
}

func (c *Converter) logDescriptor(desc *probe.MediaDescriptor) {
	if desc.Video != nil {
		c.log.Info("Input video: %s, %.2f fps, %s", desc.Resolution(), desc.Video.FrameRate, desc.Video.Codec)
	}
	c.log.Info("Audio tracks: %d, subtitle tracks: %d", len(desc.Audio), len(desc.Subtitles))
}
