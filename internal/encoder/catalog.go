// Package encoder probes ffmpeg for usable video and audio encoders
// and picks the best available pair, preferring hardware acceleration.
package encoder

import (
	"context"
	"os/exec"
	"sync"
	"time"
)

// defaultTestTimeout bounds a single candidate test encode.
const defaultTestTimeout = 10 * time.Second

// Fallback pair used when no candidate passes its test encode. The
// fallback is deliberately unverified: detection must never block the
// pipeline, and a broken ffmpeg will surface on the first real encode.
const (
	fallbackVideoCodec = "libx264"
	fallbackAudioCodec = "aac"
)

// Kind discriminates video and audio candidates.
type Kind string

const (
	KindVideo Kind = "video"
	KindAudio Kind = "audio"
)

// Candidate is one codec the catalog knows how to test.
type Candidate struct {
	Codec     string
	Name      string
	Kind      Kind
	Hardware  bool
	Available bool
}

// Selection is the outcome of encoder detection: the chosen pair plus
// every tested candidate. Read-only once built, safe for concurrent
// reads without locking.
type Selection struct {
	VideoCodec string
	VideoName  string
	AudioCodec string
	AudioName  string
	Candidates []Candidate
}

// hardwareCodecs is the fixed hardware-identifier set behind
// IsHardware, independent of what detection actually found.
var hardwareCodecs = map[string]struct{}{
	"h264_videotoolbox": {},
	"h264_nvenc":        {},
	"h264_qsv":          {},
	"h264_vaapi":        {},
	"h264_amf":          {},
	"aac_at":            {},
}

// IsHardware reports whether codec names a hardware encoder.
func IsHardware(codec string) bool {
	_, ok := hardwareCodecs[codec]
	return ok
}

// videoCandidates returns the ordered video candidate table, hardware
// before software. Order is the preference order.
func videoCandidates() []Candidate {
	return []Candidate{
		{Codec: "h264_videotoolbox", Name: "VideoToolbox (macOS)", Kind: KindVideo, Hardware: true},
		{Codec: "h264_nvenc", Name: "NVIDIA NVENC", Kind: KindVideo, Hardware: true},
		{Codec: "h264_qsv", Name: "Intel QuickSync", Kind: KindVideo, Hardware: true},
		{Codec: "h264_vaapi", Name: "VAAPI (Linux)", Kind: KindVideo, Hardware: true},
		{Codec: "h264_amf", Name: "AMD AMF", Kind: KindVideo, Hardware: true},
		{Codec: "libx264", Name: "x264 Software", Kind: KindVideo},
		{Codec: "h264", Name: "Generic H.264", Kind: KindVideo},
	}
}

// audioCandidates returns the ordered audio candidate table.
func audioCandidates() []Candidate {
	return []Candidate{
		{Codec: "aac_at", Name: "AudioToolbox AAC (macOS)", Kind: KindAudio, Hardware: true},
		{Codec: "aac", Name: "Generic AAC", Kind: KindAudio},
		{Codec: "libfdk_aac", Name: "Fraunhofer FDK AAC", Kind: KindAudio},
	}
}

// Logger is the minimal logging surface the catalog needs. Satisfied
// by *logging.Logger.
type Logger interface {
	Info(format string, args ...interface{})
	Warn(format string, args ...interface{})
	Debug(format string, args ...interface{})
}

// Catalog tests encoder candidates against the local ffmpeg and caches
// the resulting Selection.
type Catalog struct {
	FFmpegPath    string        // defaults to "ffmpeg" when empty
	Timeout       time.Duration // per candidate test; 0 means 10s
	ForceSoftware bool          // skip hardware candidates entirely
	Log           Logger        // optional

	mu  sync.Mutex
	sel *Selection
}

// Detect returns the cached selection, probing candidates on the first
// call. Detection never fails: when nothing passes, the unverified
// fallback pair is selected.
func (c *Catalog) Detect(ctx context.Context) *Selection {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.sel == nil {
		c.sel = c.probe(ctx)
	}
	return c.sel
}

// Refresh discards the cache and re-probes every candidate.
func (c *Catalog) Refresh(ctx context.Context) *Selection {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.sel = c.probe(ctx)
	return c.sel
}

func (c *Catalog) probe(ctx context.Context) *Selection {
	c.info("Detecting available encoders")

	candidates := append(videoCandidates(), audioCandidates()...)
	for i := range candidates {
		cand := &candidates[i]
		if c.ForceSoftware && cand.Hardware {
			c.debug("Skipping %s encoder %s (%s): hardware disabled", cand.Kind, cand.Name, cand.Codec)
			continue
		}
		cand.Available = c.testEncoder(ctx, cand)
		if cand.Available {
			c.debug("%s encoder available: %s (%s)", cand.Kind, cand.Name, cand.Codec)
		} else {
			c.debug("%s encoder unavailable: %s (%s)", cand.Kind, cand.Name, cand.Codec)
		}
	}

	sel := selectBest(candidates)
	if hasAvailable(candidates, KindVideo) {
		c.info("Selected video encoder: %s (%s)", sel.VideoName, sel.VideoCodec)
	} else {
		c.warn("No working video encoder detected, falling back to %s", sel.VideoCodec)
	}
	if hasAvailable(candidates, KindAudio) {
		c.info("Selected audio encoder: %s (%s)", sel.AudioName, sel.AudioCodec)
	} else {
		c.warn("No working audio encoder detected, falling back to %s", sel.AudioCodec)
	}
	return sel
}

// testEncoder encodes a synthetic near-zero-duration input with the
// candidate codec. Any failure mode (missing binary, nonzero exit,
// timeout) marks the candidate unavailable; it never propagates.
func (c *Catalog) testEncoder(ctx context.Context, cand *Candidate) bool {
	timeout := c.Timeout
	if timeout <= 0 {
		timeout = defaultTestTimeout
	}
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	cmd := exec.CommandContext(ctx, c.binary(), testArgs(cand)...)
	return cmd.Run() == nil
}

// testArgs builds the test encode invocation for a candidate.
func testArgs(cand *Candidate) []string {
	args := []string{"-hide_banner", "-f", "lavfi"}
	if cand.Kind == KindVideo {
		args = append(args, "-i", "testsrc=duration=0.1:size=320x240:rate=1")
		args = append(args, "-c:v", cand.Codec)
	} else {
		args = append(args, "-i", "sine=frequency=1000:duration=0.1")
		args = append(args, "-c:a", cand.Codec)
	}
	return append(args, "-t", "0.1", "-f", "null", "-")
}

// selectBest picks the first available candidate per kind. The tables
// list hardware before software, so scan order encodes the preference
// for hardware acceleration.
func selectBest(candidates []Candidate) *Selection {
	sel := &Selection{
		VideoCodec: fallbackVideoCodec,
		VideoName:  "x264 Software (fallback)",
		AudioCodec: fallbackAudioCodec,
		AudioName:  "Generic AAC (fallback)",
		Candidates: candidates,
	}

	videoSet, audioSet := false, false
	for _, cand := range candidates {
		if !cand.Available {
			continue
		}
		switch cand.Kind {
		case KindVideo:
			if !videoSet {
				sel.VideoCodec, sel.VideoName = cand.Codec, cand.Name
				videoSet = true
			}
		case KindAudio:
			if !audioSet {
				sel.AudioCodec, sel.AudioName = cand.Codec, cand.Name
				audioSet = true
			}
		}
	}
	return sel
}

func hasAvailable(candidates []Candidate, kind Kind) bool {
	for _, cand := range candidates {
		if cand.Kind == kind && cand.Available {
			return true
		}
	}
	return false
}

func (c *Catalog) binary() string {
	if c.FFmpegPath != "" {
		return c.FFmpegPath
	}
	return "ffmpeg"
}

func (c *Catalog) info(format string, args ...interface{}) {
	if c.Log != nil {
		c.Log.Info(format, args...)
	}
}

func (c *Catalog) warn(format string, args ...interface{}) {
	if c.Log != nil {
		c.Log.Warn(format, args...)
	}
}

func (c *Catalog) debug(format string, args ...interface{}) {
	if c.Log != nil {
		c.Log.Debug(format, args...)
	}
}
