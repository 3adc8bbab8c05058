package main

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"github.com/backmassage/hlsmill/internal/check"
	"github.com/backmassage/hlsmill/internal/config"
	"github.com/backmassage/hlsmill/internal/converter"
	"github.com/backmassage/hlsmill/internal/display"
	"github.com/backmassage/hlsmill/internal/ladder"
	"github.com/backmassage/hlsmill/internal/logging"
	"github.com/backmassage/hlsmill/internal/term"
)

// appContext carries the loaded configuration and logger to every
// command. Config is loaded once in the root PersistentPreRunE.
type appContext struct {
	configFlag string
	quiet      bool
	debug      bool
	colorFlag  string

	cfg *config.Config
	log *logging.Logger
}

// convertFlags are the root command's encode overrides. Only flags the
// user actually set override the loaded configuration.
type convertFlags struct {
	output          string
	resolutions     []string
	preset          string
	crf             int
	workers         int
	segmentDuration int
	gopSize         int
	noSubtitles     bool
	includeBitmap   bool
	software        bool
	noHWAccel       bool
}

func newRootCommand() *cobra.Command {
	app := &appContext{}
	var flags convertFlags

	rootCmd := &cobra.Command{
		Use:           "hlsmill [flags] INPUT",
		Short:         "Convert a media file into an adaptive HLS package",
		Args:          cobra.MaximumNArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if shouldSkipConfig(cmd) {
				return nil
			}
			return app.setup()
		},
		PersistentPostRun: func(cmd *cobra.Command, args []string) {
			app.close()
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			if len(args) == 0 {
				return cmd.Help()
			}
			return runConvert(cmd, app, &flags, args[0])
		},
	}

	pf := rootCmd.PersistentFlags()
	pf.StringVarP(&app.configFlag, "config", "c", "", "Configuration file path")
	pf.BoolVarP(&app.quiet, "quiet", "q", false, "Suppress informational output")
	pf.BoolVar(&app.debug, "debug", false, "Enable debug output")
	pf.StringVar(&app.colorFlag, "color", "", "Color output: auto, always, or never")

	f := rootCmd.Flags()
	f.StringVarP(&flags.output, "output", "o", "", "Output directory (default: input path minus extension)")
	f.StringSliceVarP(&flags.resolutions, "resolutions", "r", nil, "Restrict the ladder to these rungs (e.g. 480p,720p)")
	f.StringVar(&flags.preset, "preset", "", "Encoder preset")
	f.IntVar(&flags.crf, "crf", 0, "Constant rate factor for libx264 (0-51)")
	f.IntVarP(&flags.workers, "workers", "w", 0, "Concurrent encode subprocess limit")
	f.IntVar(&flags.segmentDuration, "segment-duration", 0, "Segment duration in seconds")
	f.IntVar(&flags.gopSize, "gop-size", 0, "Keyframe interval in frames")
	f.BoolVar(&flags.noSubtitles, "no-subtitles", false, "Skip the subtitle conversion pass")
	f.BoolVar(&flags.includeBitmap, "include-bitmap-subtitles", false, "Attempt conversion of bitmap subtitle tracks")
	f.BoolVar(&flags.software, "software", false, "Skip hardware encoder candidates")
	f.BoolVar(&flags.noHWAccel, "no-hwaccel", false, "Disable decode acceleration")

	rootCmd.AddCommand(newAnalyzeCommand(app))
	rootCmd.AddCommand(newEncodersCommand(app))
	rootCmd.AddCommand(newCheckCommand(app))
	rootCmd.AddCommand(newConfigCommand(app))

	rootCmd.Version = version
	return rootCmd
}

// setup loads the configuration, applies the persistent flags, and
// opens the logger.
func (a *appContext) setup() error {
	cfg, _, _, err := config.Load(a.configFlag)
	if err != nil {
		return &usageError{err: err}
	}

	if a.colorFlag != "" {
		cfg.Logging.Color = config.ColorMode(a.colorFlag)
	}
	cfg.Logging.Quiet = a.quiet
	cfg.Logging.Debug = a.debug
	if err := cfg.Validate(); err != nil {
		return &usageError{err: err}
	}
	term.Configure(cfg.Logging.Color)

	log, err := logging.New(cfg)
	if err != nil {
		return err
	}
	a.cfg = cfg
	a.log = log
	return nil
}

func (a *appContext) close() {
	if a.log != nil {
		_ = a.log.Close()
	}
}

// applyConvertFlags layers the set flags over the loaded configuration.
func applyConvertFlags(f *pflag.FlagSet, cfg *config.Config, flags *convertFlags) error {
	if f.Changed("preset") {
		cfg.Encoding.Preset = flags.preset
	}
	if f.Changed("crf") {
		cfg.Encoding.CRF = flags.crf
	}
	if f.Changed("workers") {
		cfg.Pipeline.MaxWorkers = flags.workers
	}
	if f.Changed("segment-duration") {
		cfg.HLS.SegmentDuration = flags.segmentDuration
	}
	if f.Changed("gop-size") {
		cfg.Encoding.GOPSize = flags.gopSize
	}
	if flags.noSubtitles {
		cfg.Subtitles.Convert = false
	}
	if flags.includeBitmap {
		cfg.Subtitles.SkipBitmap = false
	}
	if flags.software {
		cfg.Encoding.ForceSoftware = true
	}
	if flags.noHWAccel {
		cfg.Encoding.DisableHWAccel = true
	}
	if err := cfg.Validate(); err != nil {
		return &usageError{err: err}
	}
	return nil
}

// resolveResolutions validates the requested rung labels.
func resolveResolutions(labels []string) ([]string, error) {
	var out []string
	for _, label := range labels {
		label = strings.TrimSpace(strings.ToLower(label))
		if label == "" {
			continue
		}
		if !ladder.IsValidLabel(label) {
			return nil, usageErrorf("unknown resolution %q (valid: %s)",
				label, strings.Join(ladder.ValidLabels(), ", "))
		}
		out = append(out, label)
	}
	return out, nil
}

// defaultOutputDir derives the output directory from the input path:
// the input minus its extension, or with an _hls suffix when the input
// has no extension to strip.
func defaultOutputDir(input string) string {
	ext := filepath.Ext(input)
	if ext == "" {
		return input + "_hls"
	}
	return strings.TrimSuffix(input, ext)
}

func runConvert(cmd *cobra.Command, app *appContext, flags *convertFlags, input string) error {
	if err := applyConvertFlags(cmd.Flags(), app.cfg, flags); err != nil {
		return err
	}
	requested, err := resolveResolutions(flags.resolutions)
	if err != nil {
		return err
	}

	output := flags.output
	if output == "" {
		output = defaultOutputDir(input)
	}

	if !app.cfg.Logging.Quiet {
		display.PrintBanner(version)
	}

	ctx := cmd.Context()
	if _, err := check.FFmpeg(ctx, app.cfg.FFmpegBinary()); err != nil {
		return err
	}

	conv := converter.New(app.cfg, app.log)
	report, err := conv.Run(ctx, input, output, requested)
	if err != nil {
		return err
	}

	if !app.cfg.Logging.Quiet {
		fmt.Fprintln(cmd.OutOrStdout(), report.Summary())
	}
	return nil
}

func shouldSkipConfig(cmd *cobra.Command) bool {
	for c := cmd; c != nil; c = c.Parent() {
		if c.Annotations != nil && c.Annotations["skipConfigLoad"] == "true" {
			return true
		}
	}
	return false
}
