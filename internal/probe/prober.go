package probe

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"os/exec"
	"strconv"
	"strings"
	"time"
)

// ErrMissingInput marks an input path that does not exist. It is the
// only probing failure that aborts a conversion; everything else
// degrades to an empty section of the descriptor.
var ErrMissingInput = errors.New("input file not found")

// Logger is the minimal logging surface the prober needs. Satisfied by
// *logging.Logger.
type Logger interface {
	Warn(format string, args ...interface{})
	Debug(format string, args ...interface{})
}

// Prober queries ffprobe for media metadata.
type Prober struct {
	FFprobePath string        // defaults to "ffprobe" when empty
	Timeout     time.Duration // per query; 0 leaves queries unbounded
	Log         Logger        // optional
}

// Analyze probes path and returns its merged descriptor. The format and
// stream queries run independently; a failure in either logs a warning
// and leaves that section empty rather than failing the probe. Only a
// missing input file is an error.
func (p *Prober) Analyze(ctx context.Context, path string) (*MediaDescriptor, error) {
	fi, err := os.Stat(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("%w: %s", ErrMissingInput, path)
		}
		return nil, fmt.Errorf("stat input: %w", err)
	}

	format := p.queryFormat(ctx, path)
	streams := p.queryStreams(ctx, path)

	desc := buildDescriptor(format, streams)
	desc.FileSize = fi.Size()
	return desc, nil
}

func (p *Prober) binary() string {
	if p.FFprobePath != "" {
		return p.FFprobePath
	}
	return "ffprobe"
}

func (p *Prober) warn(format string, args ...interface{}) {
	if p.Log != nil {
		p.Log.Warn(format, args...)
	}
}

// queryFormat runs the container-level metadata query. Any failure
// degrades to an empty format section.
func (p *Prober) queryFormat(ctx context.Context, path string) wireFormat {
	out, err := p.run(ctx, "-v", "error", "-show_format", "-of", "json", path)
	if err != nil {
		p.warn("Format probe failed for %s: %v", path, err)
		return wireFormat{}
	}
	var doc formatDocument
	if err := json.Unmarshal(out, &doc); err != nil {
		p.warn("Format probe returned malformed JSON for %s: %v", path, err)
		return wireFormat{}
	}
	return doc.Format
}

// queryStreams runs the per-stream metadata query. Any failure degrades
// to an empty stream list.
func (p *Prober) queryStreams(ctx context.Context, path string) []wireStream {
	out, err := p.run(ctx, "-v", "error", "-show_streams", "-of", "json", path)
	if err != nil {
		p.warn("Stream probe failed for %s: %v", path, err)
		return nil
	}
	var doc streamsDocument
	if err := json.Unmarshal(out, &doc); err != nil {
		p.warn("Stream probe returned malformed JSON for %s: %v", path, err)
		return nil
	}
	return doc.Streams
}

func (p *Prober) run(ctx context.Context, args ...string) ([]byte, error) {
	if p.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, p.Timeout)
		defer cancel()
	}
	cmd := exec.CommandContext(ctx, p.binary(), args...)
	out, err := cmd.Output()
	if err != nil {
		if ctx.Err() != nil {
			return nil, fmt.Errorf("%s: %w", p.binary(), ctx.Err())
		}
		return nil, fmt.Errorf("%s: %w", p.binary(), err)
	}
	return out, nil
}

// --- ffprobe JSON wire types ---

type formatDocument struct {
	Format wireFormat `json:"format"`
}

type streamsDocument struct {
	Streams []wireStream `json:"streams"`
}

type wireFormat struct {
	Filename   string `json:"filename"`
	FormatName string `json:"format_name"`
	Duration   string `json:"duration"`
	Size       string `json:"size"`
	BitRate    string `json:"bit_rate"`
}

type wireStream struct {
	Index          int               `json:"index"`
	CodecName      string            `json:"codec_name"`
	CodecType      string            `json:"codec_type"`
	PixFmt         string            `json:"pix_fmt"`
	Width          int               `json:"width"`
	Height         int               `json:"height"`
	Duration       string            `json:"duration"`
	BitRate        string            `json:"bit_rate"`
	AvgFrameRate   string            `json:"avg_frame_rate"`
	Channels       int               `json:"channels"`
	SampleRate     string            `json:"sample_rate"`
	ColorTransfer  string            `json:"color_transfer"`
	ColorPrimaries string            `json:"color_primaries"`
	Disposition    map[string]int    `json:"disposition"`
	Tags           map[string]string `json:"tags"`
}

// --- Conversion from wire types to the descriptor ---

func buildDescriptor(format wireFormat, streams []wireStream) *MediaDescriptor {
	desc := &MediaDescriptor{
		Container: format.FormatName,
	}

	audioIdx := 0
	subIdx := 0
	for i := range streams {
		s := &streams[i]
		switch strings.ToLower(s.CodecType) {
		case "video":
			// Attached pictures (cover art) are video streams too;
			// they must not become the primary video.
			if desc.Video == nil && s.Disposition["attached_pic"] != 1 {
				desc.Video = convertVideo(s, format)
			}
		case "audio":
			desc.Audio = append(desc.Audio, convertAudio(s, audioIdx))
			audioIdx++
		case "subtitle":
			desc.Subtitles = append(desc.Subtitles, convertSubtitle(s, subIdx))
			subIdx++
		}
	}
	return desc
}

func convertVideo(s *wireStream, format wireFormat) *VideoStreamInfo {
	duration := parseFloat(s.Duration)
	if duration == 0 {
		duration = parseFloat(format.Duration)
	}
	return &VideoStreamInfo{
		Width:          s.Width,
		Height:         s.Height,
		Duration:       duration,
		FrameRate:      parseFrameRate(s.AvgFrameRate),
		BitrateKbps:    parseBitrateKbps(s.BitRate),
		Codec:          s.CodecName,
		PixFmt:         s.PixFmt,
		ColorTransfer:  s.ColorTransfer,
		ColorPrimaries: s.ColorPrimaries,
	}
}

func convertAudio(s *wireStream, index int) AudioTrackInfo {
	return AudioTrackInfo{
		Index:       index,
		Language:    languageTag(s.Tags, index),
		Codec:       s.CodecName,
		BitrateKbps: parseBitrateKbps(s.BitRate),
		SampleRate:  parseInt(s.SampleRate),
		Channels:    s.Channels,
	}
}

func convertSubtitle(s *wireStream, index int) SubtitleTrackInfo {
	return SubtitleTrackInfo{
		Index:    index,
		Language: languageTag(s.Tags, index),
		Codec:    s.CodecName,
	}
}

func languageTag(tags map[string]string, index int) string {
	if lang, ok := tags["language"]; ok && lang != "" {
		return lang
	}
	return fmt.Sprintf("und_%d", index)
}

// --- Numeric parsing helpers (ffprobe returns numbers as strings) ---

// parseFrameRate parses ffprobe's "num/den" rational frame rate.
// Division by zero and malformed components yield 0 rather than failing.
func parseFrameRate(s string) float64 {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0
	}
	if num, den, found := strings.Cut(s, "/"); found {
		n, errN := strconv.ParseFloat(num, 64)
		d, errD := strconv.ParseFloat(den, 64)
		if errN != nil || errD != nil || d == 0 {
			return 0
		}
		return n / d
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0
	}
	return f
}

// parseBitrateKbps converts a bits/sec string to whole kbps.
// Non-numeric values (ffprobe reports "N/A" for some containers) map to 0.
func parseBitrateKbps(s string) int {
	n, err := strconv.ParseInt(strings.TrimSpace(s), 10, 64)
	if err != nil || n < 0 {
		return 0
	}
	return int(n / 1000)
}

func parseFloat(s string) float64 {
	f, _ := strconv.ParseFloat(strings.TrimSpace(s), 64)
	return f
}

func parseInt(s string) int {
	n, _ := strconv.Atoi(strings.TrimSpace(s))
	return n
}
