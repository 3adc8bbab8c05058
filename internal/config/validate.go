package config

import (
	"errors"
	"fmt"
)

// Validate checks enum fields and numeric ranges. It is called by [Load]
// and again after CLI flags are applied.
func (c *Config) Validate() error {
	if err := c.validateEncoding(); err != nil {
		return err
	}
	if err := c.validateHLS(); err != nil {
		return err
	}
	if err := c.validateAudio(); err != nil {
		return err
	}
	if err := c.validatePipeline(); err != nil {
		return err
	}
	return c.validateLogging()
}

func (c *Config) validateEncoding() error {
	if c.Encoding.Preset == "" {
		return errors.New("encoding.preset must not be empty")
	}
	if c.Encoding.CRF < 0 || c.Encoding.CRF > 51 {
		return fmt.Errorf("encoding.crf must be 0-51 (got %d)", c.Encoding.CRF)
	}
	if c.Encoding.GOPSize < 1 {
		return fmt.Errorf("encoding.gop_size must be at least 1 (got %d)", c.Encoding.GOPSize)
	}
	if c.Encoding.EncoderThreads < 0 {
		return errors.New("encoding.encoder_threads must not be negative")
	}
	if c.Encoding.DetectTimeoutSeconds < 1 {
		return errors.New("encoding.detect_timeout_seconds must be at least 1")
	}
	if c.Encoding.EncodeTimeoutMinutes < 0 {
		return errors.New("encoding.encode_timeout_minutes must not be negative")
	}
	return nil
}

func (c *Config) validateHLS() error {
	if c.HLS.SegmentDuration < 1 || c.HLS.SegmentDuration > 30 {
		return fmt.Errorf("hls.segment_duration must be 1-30 seconds (got %d)", c.HLS.SegmentDuration)
	}
	switch c.HLS.PlaylistType {
	case PlaylistVOD, PlaylistEvent:
		return nil
	default:
		return errors.New("invalid hls.playlist_type (use 'vod' or 'event')")
	}
}

func (c *Config) validateAudio() error {
	if c.Audio.BitrateKbps < 1 {
		return errors.New("audio.bitrate_kbps must be positive")
	}
	if c.Audio.MaxBitrateKbps < c.Audio.BitrateKbps {
		return fmt.Errorf("audio.max_bitrate_kbps must be at least audio.bitrate_kbps (%d < %d)",
			c.Audio.MaxBitrateKbps, c.Audio.BitrateKbps)
	}
	if c.Audio.SampleRate < 8000 {
		return fmt.Errorf("audio.sample_rate must be at least 8000 Hz (got %d)", c.Audio.SampleRate)
	}
	return nil
}

func (c *Config) validatePipeline() error {
	if c.Pipeline.MaxWorkers < 0 {
		return errors.New("pipeline.max_workers must not be negative")
	}
	if c.Pipeline.ProbeTimeoutSeconds < 1 {
		return errors.New("pipeline.probe_timeout_seconds must be at least 1")
	}
	if c.Subtitles.TimeoutSeconds < 1 {
		return errors.New("subtitles.timeout_seconds must be at least 1")
	}
	return nil
}

func (c *Config) validateLogging() error {
	switch c.Logging.Color {
	case ColorAuto, ColorAlways, ColorNever:
		return nil
	default:
		return errors.New("invalid logging.color (use 'auto', 'always', or 'never')")
	}
}
