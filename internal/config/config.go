// Package config defines the hlsmill configuration model: encoding
// parameters, HLS segmenting options, audio and subtitle handling,
// pipeline sizing, and logging behavior. Configuration is persisted as
// TOML; values absent from the file keep their defaults from
// [DefaultConfig].
package config

import (
	_ "embed"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"runtime"

	"github.com/pelletier/go-toml/v2"
)

//go:embed sample_config.toml
var sampleConfig string

// --- Enum types for validated string fields ---

// ColorMode controls ANSI color output.
type ColorMode string

const (
	ColorAuto   ColorMode = "auto"   // Enable colors when stdout is a TTY (default).
	ColorAlways ColorMode = "always" // Force colors on.
	ColorNever  ColorMode = "never"  // Disable colors entirely.
)

// PlaylistType is the HLS playlist type written into each media playlist.
type PlaylistType string

const (
	PlaylistVOD   PlaylistType = "vod"   // Complete on-demand asset (default).
	PlaylistEvent PlaylistType = "event" // Append-only event playlist.
)

// --- Configuration sections ---

// Encoding holds video encoder parameters shared by every rendition job.
type Encoding struct {
	// Preset is passed to encoders that understand presets
	// (libx264, NVENC, QuickSync). Default: "fast".
	Preset string `toml:"preset"`

	// CRF is the constant rate factor for libx264 (0-51). Default: 23.
	CRF int `toml:"crf"`

	// GOPSize is the keyframe interval in frames. Segment cuts need a
	// keyframe, so this should line up with segment_duration at the
	// source frame rate. Default: 48.
	GOPSize int `toml:"gop_size"`

	// ForceSoftware skips hardware encoder candidates during detection.
	ForceSoftware bool `toml:"force_software_encoding"`

	// DisableHWAccel omits decode acceleration (-hwaccel auto).
	DisableHWAccel bool `toml:"disable_hwaccel"`

	// EncoderThreads fixes the per-job thread count. 0 derives it from
	// host cores divided across the active workers.
	EncoderThreads int `toml:"encoder_threads"`

	// DetectTimeoutSeconds bounds each encoder capability test. Default: 10.
	DetectTimeoutSeconds int `toml:"detect_timeout_seconds"`

	// EncodeTimeoutMinutes bounds each rendition encode subprocess.
	// 0 disables the bound; a job may then run indefinitely.
	EncodeTimeoutMinutes int `toml:"encode_timeout_minutes"`
}

// HLS holds segmenting options passed to every rendition job.
type HLS struct {
	SegmentDuration int          `toml:"segment_duration"` // Seconds per segment. Default: 2.
	PlaylistType    PlaylistType `toml:"playlist_type"`    // Default: "vod".
}

// Audio holds audio rendition parameters.
type Audio struct {
	// BitrateKbps is used when a source track does not report a bitrate.
	// Default: 160.
	BitrateKbps int `toml:"bitrate_kbps"`

	// MaxBitrateKbps caps the per-track output bitrate. Default: 320.
	MaxBitrateKbps int `toml:"max_bitrate_kbps"`

	// SampleRate is the output sample rate in Hz. Default: 48000.
	SampleRate int `toml:"sample_rate"`
}

// Subtitles holds the subtitle conversion pass options.
type Subtitles struct {
	// Convert enables the WebVTT conversion pass. Default: true.
	Convert bool `toml:"convert"`

	// SkipBitmap skips image-based subtitle codecs (PGS, DVD, DVB),
	// which cannot be converted to a text format. Default: true.
	SkipBitmap bool `toml:"skip_bitmap"`

	// TimeoutSeconds bounds each track conversion. Default: 60.
	TimeoutSeconds int `toml:"timeout_seconds"`
}

// Pipeline holds concurrency and probing options.
type Pipeline struct {
	// MaxWorkers is the concurrent encode subprocess limit.
	// 0 derives max(2, min(cores-1, 8)) from the host.
	MaxWorkers int `toml:"max_workers"`

	// ProbeTimeoutSeconds bounds each ffprobe query. Default: 30.
	ProbeTimeoutSeconds int `toml:"probe_timeout_seconds"`
}

// Logging holds console and file logging options. Quiet and Debug are
// runtime flags, never persisted.
type Logging struct {
	File  string    `toml:"file"`  // Optional log file path.
	Color ColorMode `toml:"color"` // Default: "auto".
	Quiet bool      `toml:"-"`
	Debug bool      `toml:"-"`
}

// Config is the complete hlsmill configuration. It is populated by
// [DefaultConfig], optionally layered with a TOML file by [Load], then
// mutated by CLI flags before being passed (by pointer) to the packages
// that need it.
type Config struct {
	Encoding  Encoding  `toml:"encoding"`
	HLS       HLS       `toml:"hls"`
	Audio     Audio     `toml:"audio"`
	Subtitles Subtitles `toml:"subtitles"`
	Pipeline  Pipeline  `toml:"pipeline"`
	Logging   Logging   `toml:"logging"`
}

// DefaultConfigPath returns the default configuration file location.
func DefaultConfigPath() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("resolve home directory: %w", err)
	}
	return filepath.Join(home, ".config", "hlsmill", "config.toml"), nil
}

// Load locates and parses a configuration file, layering it over the
// defaults. With an empty path the default location and then
// ./hlsmill.toml are checked, and a missing file is not an error
// (defaults apply); an explicit path must exist. The returned path is
// where the config was (or would have been) read from.
func Load(path string) (*Config, string, bool, error) {
	cfg := DefaultConfig()

	resolved, exists, err := resolveConfigPath(path)
	if err != nil {
		return nil, "", false, err
	}

	if exists {
		file, err := os.Open(resolved)
		if err != nil {
			return nil, "", false, fmt.Errorf("open config: %w", err)
		}
		defer file.Close()

		if err := toml.NewDecoder(file).Decode(&cfg); err != nil {
			return nil, "", false, fmt.Errorf("parse config: %w", err)
		}
	}

	if err := cfg.Validate(); err != nil {
		return nil, "", false, err
	}
	return &cfg, resolved, exists, nil
}

func resolveConfigPath(path string) (string, bool, error) {
	if path != "" {
		_, err := os.Stat(path)
		if err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				return "", false, fmt.Errorf("config file not found: %s", path)
			}
			return "", false, fmt.Errorf("stat config: %w", err)
		}
		return path, true, nil
	}

	defaultPath, err := DefaultConfigPath()
	if err != nil {
		return "", false, err
	}
	projectPath, err := filepath.Abs("hlsmill.toml")
	if err != nil {
		return "", false, err
	}

	if info, err := os.Stat(defaultPath); err == nil && !info.IsDir() {
		return defaultPath, true, nil
	}
	if info, err := os.Stat(projectPath); err == nil && !info.IsDir() {
		return projectPath, true, nil
	}
	return defaultPath, false, nil
}

// Save writes the configuration as TOML. Loading the written file
// reproduces the configuration field for field.
func (c *Config) Save(path string) error {
	data, err := toml.Marshal(c)
	if err != nil {
		return fmt.Errorf("encode config: %w", err)
	}
	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create config directory: %w", err)
		}
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("write config: %w", err)
	}
	return nil
}

// CreateSample writes the commented sample configuration to path.
func CreateSample(path string) error {
	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create config directory: %w", err)
		}
	}
	if err := os.WriteFile(path, []byte(sampleConfig), 0o644); err != nil {
		return fmt.Errorf("write sample config: %w", err)
	}
	return nil
}

// Workers resolves the effective encode worker count.
func (c *Config) Workers() int {
	if c.Pipeline.MaxWorkers > 0 {
		return c.Pipeline.MaxWorkers
	}
	n := runtime.NumCPU() - 1
	if n > 8 {
		n = 8
	}
	if n < 2 {
		n = 2
	}
	return n
}

// ThreadsPerJob resolves the -threads value for one encode subprocess,
// splitting host cores across the active workers.
func (c *Config) ThreadsPerJob() int {
	if c.Encoding.EncoderThreads > 0 {
		return c.Encoding.EncoderThreads
	}
	n := runtime.NumCPU() / c.Workers()
	if n < 2 {
		n = 2
	}
	return n
}

// FFmpegBinary returns the transcoder executable name.
func (c *Config) FFmpegBinary() string { return "ffmpeg" }

// FFprobeBinary returns the metadata probe executable name.
func (c *Config) FFprobeBinary() string { return "ffprobe" }
