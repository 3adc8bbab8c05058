// Package ladder derives the set of output renditions for an input
// video: which resolution rungs to produce and the bitrate bounds for
// each. Rung inclusion and bitrate scaling share one tolerance check so
// the resolution ladder and the profile ladder can never drift apart.
//
// Profiles come out of two paths with observably different bitrates:
// rungs that fit the input are scaled against the input bitrate, while
// rungs requested by name that did not fit keep their base-table values
// untouched. Both can coexist in one ladder; callers always get every
// label they asked for.
package ladder

import (
	"fmt"

	"github.com/backmassage/hlsmill/internal/probe"
)

// upscaleTolerance allows rungs up to 10% above the input size, so an
// input slightly under a standard resolution still gets that rung.
const upscaleTolerance = 1.1

// bitrateHeadroom scales the input bitrate when deriving a rung's
// ceiling, leaving room above the source rate at the same resolution.
const bitrateHeadroom = 1.2

// RenditionProfile describes one video rendition: target resolution and
// bitrate bounds, plus the audio bitrate used when the rendition's audio
// track does not report one.
type RenditionProfile struct {
	Name             string
	Width            int
	Height           int
	MaxBitrateKbps   int
	MinBitrateKbps   int
	AudioBitrateKbps int
}

// ResolutionLabel returns the conventional "<height>p" name.
func (p RenditionProfile) ResolutionLabel() string {
	return fmt.Sprintf("%dp", p.Height)
}

// ScaleFilter returns the ffmpeg scale filter argument for this profile.
func (p RenditionProfile) ScaleFilter() string {
	return fmt.Sprintf("scale=%d:%d", p.Width, p.Height)
}

// EstimatedSizeBytes predicts the rendition's output size at its bitrate
// ceiling over the given duration. Display only.
func (p RenditionProfile) EstimatedSizeBytes(duration float64) int64 {
	if duration <= 0 {
		return 0
	}
	kbps := p.MaxBitrateKbps + p.AudioBitrateKbps
	return int64(float64(kbps) * 1000 / 8 * duration)
}

const defaultAudioBitrateKbps = 160

// baseLadder is the fixed rung table, ascending. Bitrates are hand-tuned
// per rung; every derived ladder starts from these values.
var baseLadder = []RenditionProfile{
	{Name: "144p", Width: 256, Height: 144, MaxBitrateKbps: 300, MinBitrateKbps: 200, AudioBitrateKbps: defaultAudioBitrateKbps},
	{Name: "240p", Width: 426, Height: 240, MaxBitrateKbps: 500, MinBitrateKbps: 350, AudioBitrateKbps: defaultAudioBitrateKbps},
	{Name: "360p", Width: 640, Height: 360, MaxBitrateKbps: 800, MinBitrateKbps: 600, AudioBitrateKbps: defaultAudioBitrateKbps},
	{Name: "480p", Width: 854, Height: 480, MaxBitrateKbps: 1200, MinBitrateKbps: 900, AudioBitrateKbps: defaultAudioBitrateKbps},
	{Name: "720p", Width: 1280, Height: 720, MaxBitrateKbps: 2500, MinBitrateKbps: 1800, AudioBitrateKbps: defaultAudioBitrateKbps},
	{Name: "1080p", Width: 1920, Height: 1080, MaxBitrateKbps: 5000, MinBitrateKbps: 3500, AudioBitrateKbps: defaultAudioBitrateKbps},
	{Name: "1440p", Width: 2560, Height: 1440, MaxBitrateKbps: 8000, MinBitrateKbps: 6000, AudioBitrateKbps: defaultAudioBitrateKbps},
	{Name: "2160p", Width: 3840, Height: 2160, MaxBitrateKbps: 16000, MinBitrateKbps: 12000, AudioBitrateKbps: defaultAudioBitrateKbps},
}

// fitsInput reports whether a rung belongs in the ladder for the given
// input dimensions. One pixel-count comparison with upscaleTolerance
// serves both rung selection and resolution recommendation.
func fitsInput(rungWidth, rungHeight, inputWidth, inputHeight int) bool {
	rung := float64(rungWidth) * float64(rungHeight)
	in := float64(inputWidth) * float64(inputHeight)
	return rung <= in*upscaleTolerance
}

// CreateAdaptiveProfiles derives the profile ladder for an input.
// Rungs that fit the input dimensions are included in ascending order;
// when the input bitrate is known, each included rung's ceiling is
// rescaled by the pixel ratio with bitrateHeadroom, capped at the base
// ceiling and floored at the base minimum, and its floor becomes 70% of
// the rescaled ceiling. When no rung fits, the lowest rung is returned
// unchanged so the ladder is never empty.
func CreateAdaptiveProfiles(inputWidth, inputHeight, inputBitrateKbps int) []RenditionProfile {
	inputPixels := inputWidth * inputHeight

	var profiles []RenditionProfile
	for _, rung := range baseLadder {
		if !fitsInput(rung.Width, rung.Height, inputWidth, inputHeight) {
			continue
		}

		p := rung
		if inputBitrateKbps > 0 && inputPixels > 0 {
			ratio := float64(rung.Width*rung.Height) / float64(inputPixels)
			adjustedMax := int(float64(inputBitrateKbps) * ratio * bitrateHeadroom)
			if adjustedMax > rung.MaxBitrateKbps {
				adjustedMax = rung.MaxBitrateKbps
			}
			adjustedMin := int(float64(adjustedMax) * 0.7)

			p.MaxBitrateKbps = adjustedMax
			if p.MaxBitrateKbps < rung.MinBitrateKbps {
				p.MaxBitrateKbps = rung.MinBitrateKbps
			}
			p.MinBitrateKbps = adjustedMin
		}
		profiles = append(profiles, p)
	}

	if len(profiles) == 0 {
		profiles = []RenditionProfile{baseLadder[0]}
	}
	return profiles
}

// OptimalResolutions returns the recommended resolution labels for an
// input, ascending. Rung inclusion uses the same fit check as
// CreateAdaptiveProfiles. Fewer than two qualifying rungs fall back to
// a fixed pair, and a missing video stream always recommends
// {"480p", "720p"}.
func OptimalResolutions(video *probe.VideoStreamInfo) []string {
	if video == nil {
		return []string{"480p", "720p"}
	}

	var labels []string
	for _, rung := range baseLadder {
		if fitsInput(rung.Width, rung.Height, video.Width, video.Height) {
			labels = append(labels, rung.Name)
		}
	}

	if len(labels) < 2 {
		if video.Height >= 720 {
			return []string{"480p", "720p"}
		}
		return []string{"360p", "480p"}
	}
	return labels
}

// FilterByNames restricts a ladder to the requested labels. Labels
// present in the ladder keep their (possibly bitrate-scaled) profiles;
// requested labels the ladder lacks are synthesized from the base table
// with no scaling applied, so the caller always receives every label it
// asked for. Result order is base-ladder order.
func FilterByNames(profiles []RenditionProfile, requested []string) []RenditionProfile {
	if len(requested) == 0 {
		return profiles
	}

	want := make(map[string]bool, len(requested))
	for _, name := range requested {
		want[name] = true
	}

	have := make(map[string]RenditionProfile, len(profiles))
	for _, p := range profiles {
		have[p.Name] = p
	}

	var out []RenditionProfile
	for _, rung := range baseLadder {
		if !want[rung.Name] {
			continue
		}
		if p, ok := have[rung.Name]; ok {
			out = append(out, p)
		} else {
			out = append(out, rung)
		}
	}
	return out
}

// ProfileForLabel returns the base-table profile for a label.
func ProfileForLabel(label string) (RenditionProfile, bool) {
	for _, rung := range baseLadder {
		if rung.Name == label {
			return rung, true
		}
	}
	return RenditionProfile{}, false
}

// ValidLabels returns every known rung label in ascending order.
func ValidLabels() []string {
	labels := make([]string, len(baseLadder))
	for i, rung := range baseLadder {
		labels[i] = rung.Name
	}
	return labels
}

// IsValidLabel reports whether label names a rung in the base table.
func IsValidLabel(label string) bool {
	_, ok := ProfileForLabel(label)
	return ok
}
