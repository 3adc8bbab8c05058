package pipeline

import (
	"context"
	"path/filepath"
	"time"

	"github.com/backmassage/hlsmill/internal/ffmpeg"
	"github.com/backmassage/hlsmill/internal/language"
	"github.com/backmassage/hlsmill/internal/probe"
)

// runSubtitles converts each text subtitle track to WebVTT, one
// subprocess at a time after both encode pools have drained. Bitmap
// tracks are skipped without spawning a subprocess when configured;
// a track's timeout or failure never stops the remaining tracks.
func (p *Pipeline) runSubtitles(ctx context.Context, input, outputDir string, tracks []probe.SubtitleTrackInfo) []SubtitleResult {
	if !p.cfg.Subtitles.Convert || len(tracks) == 0 {
		return nil
	}
	p.log.Info("Converting %d subtitle track(s)", len(tracks))

	timeout := time.Duration(p.cfg.Subtitles.TimeoutSeconds) * time.Second
	dis := language.NewDisambiguator()

	results := make([]SubtitleResult, 0, len(tracks))
	for _, track := range tracks {
		if track.IsBitmap() && p.cfg.Subtitles.SkipBitmap {
			p.log.Debug("Skipping bitmap subtitle track %d (%s)", track.Index, track.Codec)
			results = append(results, SubtitleResult{Track: track, Skipped: true})
			continue
		}
		results = append(results, p.convertSubtitle(ctx, input, outputDir, track, dis, timeout))
	}
	return results
}

func (p *Pipeline) convertSubtitle(ctx context.Context, input, outputDir string, track probe.SubtitleTrackInfo, dis *language.Disambiguator, timeout time.Duration) SubtitleResult {
	// Names are claimed only for tracks actually converted, so a
	// skipped bitmap track never consumes a suffix.
	name := dis.Claim(language.Normalize(track.Language))
	output := filepath.Join(outputDir, name+".vtt")

	start := time.Now()
	jobCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	job := &ffmpeg.SubtitleJob{Input: input, Output: output, MapIndex: track.Index}
	res := p.run(jobCtx, ffmpeg.BuildSubtitleArgs(p.cfg, job), nil)

	r := SubtitleResult{Track: track, Duration: time.Since(start)}
	if res.Err != nil {
		r.ErrorDetail = res.Err.Error()
		if res.Stderr != "" {
			r.ErrorDetail += "\n" + res.Stderr
		}
		p.log.Warn("Subtitle track %d (%s) failed: %v", track.Index, track.Language, res.Err)
		return r
	}
	r.Output = output
	p.log.Debug("Subtitle track %d written to %s", track.Index, output)
	return r
}
