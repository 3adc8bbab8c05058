package ffmpeg

import (
	"fmt"
	"path/filepath"
	"strconv"

	"github.com/backmassage/hlsmill/internal/config"
	"github.com/backmassage/hlsmill/internal/encoder"
	"github.com/backmassage/hlsmill/internal/ladder"
)

// SegmentPattern is the per-rendition segment filename template.
const SegmentPattern = "chunk_%03d.ts"

// MediaPlaylist is the per-rendition playlist filename.
const MediaPlaylist = "playlist.m3u8"

// VideoJob describes one video rendition encode: the profile to hit
// and the rendition directory receiving segments and media playlist.
type VideoJob struct {
	Input   string
	Dir     string // rendition directory, e.g. <output>/720p
	Profile ladder.RenditionProfile
	Codec   string // selected video encoder
	Threads int
}

// AudioJob describes one audio rendition encode. BitrateKbps is the
// resolved output bitrate (source bitrate capped, or the default).
type AudioJob struct {
	Input       string
	Dir         string // audio directory, e.g. <output>/audio_eng
	MapIndex    int    // 0-based audio stream ordinal
	BitrateKbps int
	Codec       string // selected audio encoder
	Threads     int
}

// SubtitleJob describes one subtitle track conversion to WebVTT.
type SubtitleJob struct {
	Input    string
	Output   string // target .vtt path
	MapIndex int    // 0-based subtitle stream ordinal
}

// BuildVideoArgs constructs the complete rendition encode invocation,
// binary name first.
func BuildVideoArgs(cfg *config.Config, job *VideoJob) []string {
	args := make([]string, 0, 48)

	// --- Preamble ---
	args = append(args, cfg.FFmpegBinary(), "-y",
		"-hide_banner", "-nostats", "-loglevel", "error")

	// --- Decode acceleration ---
	if useHWAccel(cfg, job.Codec) {
		args = append(args, "-hwaccel", "auto")
	}

	// --- Input ---
	args = append(args, "-i", job.Input)

	// --- Scale to the rung resolution ---
	args = append(args, "-vf", job.Profile.ScaleFilter())

	// --- Video codec and tuning ---
	args = append(args, "-c:v", job.Codec)
	args = append(args, codecTuning(cfg, job.Codec)...)

	// --- Rate control ---
	maxKbps := job.Profile.MaxBitrateKbps
	args = append(args,
		"-b:v", fmt.Sprintf("%dk", maxKbps),
		"-maxrate", fmt.Sprintf("%dk", int(float64(maxKbps)*1.2)),
		"-bufsize", fmt.Sprintf("%dk", maxKbps*2),
	)

	// --- Keyframe cadence (segment cuts land on keyframes) ---
	args = append(args,
		"-g", strconv.Itoa(cfg.Encoding.GOPSize),
		"-keyint_min", strconv.Itoa(cfg.Encoding.GOPSize),
		"-sc_threshold", "0",
	)

	// --- Threads, stream exclusions ---
	args = append(args, "-threads", strconv.Itoa(job.Threads), "-an", "-sn")

	// --- HLS segmenting ---
	args = appendHLSArgs(args, cfg, job.Dir)

	// --- Progress telemetry on stderr ---
	args = append(args, "-progress", "pipe:2")

	// --- Output media playlist ---
	return append(args, filepath.Join(job.Dir, MediaPlaylist))
}

// BuildAudioArgs constructs one audio rendition invocation, binary
// name first.
func BuildAudioArgs(cfg *config.Config, job *AudioJob) []string {
	args := make([]string, 0, 40)

	// --- Preamble ---
	args = append(args, cfg.FFmpegBinary(), "-y",
		"-hide_banner", "-nostats", "-loglevel", "error")

	// --- Decode acceleration ---
	if useHWAccel(cfg, job.Codec) {
		args = append(args, "-hwaccel", "auto")
	}

	// --- Input and track selection ---
	args = append(args, "-i", job.Input, "-map", fmt.Sprintf("0:a:%d", job.MapIndex))

	// --- Audio codec and rate ---
	args = append(args,
		"-c:a", job.Codec,
		"-b:a", fmt.Sprintf("%dk", job.BitrateKbps),
		"-ar", strconv.Itoa(cfg.Audio.SampleRate),
	)

	// --- Threads, stream exclusions ---
	args = append(args, "-threads", strconv.Itoa(job.Threads), "-vn", "-sn")

	// --- HLS segmenting ---
	args = appendHLSArgs(args, cfg, job.Dir)

	// --- Progress telemetry on stderr ---
	args = append(args, "-progress", "pipe:2")

	// --- Output media playlist ---
	return append(args, filepath.Join(job.Dir, MediaPlaylist))
}

// BuildSubtitleArgs constructs one subtitle-to-WebVTT conversion,
// binary name first.
func BuildSubtitleArgs(cfg *config.Config, job *SubtitleJob) []string {
	return []string{
		cfg.FFmpegBinary(), "-y",
		"-i", job.Input,
		"-map", fmt.Sprintf("0:s:%d", job.MapIndex),
		"-vn", "-an",
		"-c:s", "webvtt",
		job.Output,
	}
}

// appendHLSArgs adds the segmenting flags shared by video and audio
// renditions.
func appendHLSArgs(args []string, cfg *config.Config, dir string) []string {
	return append(args,
		"-hls_time", strconv.Itoa(cfg.HLS.SegmentDuration),
		"-hls_playlist_type", string(cfg.HLS.PlaylistType),
		"-hls_flags", "independent_segments+temp_file",
		"-hls_segment_filename", filepath.Join(dir, SegmentPattern),
	)
}

// codecTuning returns the encoder-specific quality arguments.
func codecTuning(cfg *config.Config, codec string) []string {
	switch codec {
	case "h264_videotoolbox":
		return []string{"-allow_sw", "1"}
	case "h264_nvenc":
		return []string{"-preset", cfg.Encoding.Preset, "-rc", "vbr"}
	case "libx264":
		return []string{"-preset", cfg.Encoding.Preset, "-crf", strconv.Itoa(cfg.Encoding.CRF)}
	case "h264_qsv":
		return []string{"-preset", cfg.Encoding.Preset}
	}
	return nil
}

// useHWAccel reports whether to request decode acceleration: only for
// hardware encoder jobs, and never when the configuration disables it.
func useHWAccel(cfg *config.Config, codec string) bool {
	return !cfg.Encoding.DisableHWAccel && encoder.IsHardware(codec)
}
