package probe

import (
	"fmt"
	"strings"
)

// VideoStreamInfo holds the parsed properties of the primary video stream.
type VideoStreamInfo struct {
	Width       int
	Height      int
	Duration    float64 // seconds
	FrameRate   float64 // frames per second
	BitrateKbps int     // 0 when the source does not report one
	Codec       string

	// Color metadata, shown in analysis output; transfer and
	// primaries drive the HDR classification.
	PixFmt         string
	ColorTransfer  string
	ColorPrimaries string
}

// AspectRatio returns width/height, or 1.0 when the height is unknown.
func (v *VideoStreamInfo) AspectRatio() float64 {
	if v.Height == 0 {
		return 1.0
	}
	return float64(v.Width) / float64(v.Height)
}

// AudioTrackInfo holds the parsed properties of one audio stream.
// Index is the 0-based position among audio streams in discovery order,
// not the container's global stream index.
type AudioTrackInfo struct {
	Index       int
	Language    string // "und_<index>" when the source carries no tag
	Codec       string
	BitrateKbps int // 0 when the source does not report one
	SampleRate  int // Hz, 0 when unknown
	Channels    int // 0 when unknown
}

// SubtitleTrackInfo holds the parsed properties of one subtitle stream,
// indexed like AudioTrackInfo among subtitle streams.
type SubtitleTrackInfo struct {
	Index    int
	Language string
	Codec    string
}

// Image-based subtitle codecs. These carry rendered bitmaps and cannot
// be converted to a text caption format.
var bitmapSubCodecs = map[string]bool{
	"hdmv_pgs_subtitle": true,
	"dvd_subtitle":      true,
	"dvb_subtitle":      true,
}

// IsBitmap reports whether the track's codec is image-based.
func (s *SubtitleTrackInfo) IsBitmap() bool {
	return bitmapSubCodecs[strings.ToLower(s.Codec)]
}

// MediaDescriptor is the merged result of probing one input file.
// Track slices preserve stream discovery order. It is built once per
// conversion and not mutated afterwards.
type MediaDescriptor struct {
	Video     *VideoStreamInfo // nil when the file has no video stream
	Audio     []AudioTrackInfo
	Subtitles []SubtitleTrackInfo
	Container string // format name, "" when the format query failed
	FileSize  int64  // bytes, from the filesystem
}

// Resolution returns "WxH" for the video stream, or "unknown".
func (d *MediaDescriptor) Resolution() string {
	if d.Video == nil || d.Video.Width <= 0 || d.Video.Height <= 0 {
		return "unknown"
	}
	return fmt.Sprintf("%dx%d", d.Video.Width, d.Video.Height)
}
