package config

const (
	defaultPreset               = "fast"
	defaultCRF                  = 23
	defaultGOPSize              = 48
	defaultDetectTimeoutSeconds = 10
	defaultSegmentDuration      = 2
	defaultAudioBitrateKbps     = 160
	defaultMaxAudioBitrateKbps  = 320
	defaultAudioSampleRate      = 48000
	defaultSubtitleTimeout      = 60
	defaultProbeTimeoutSeconds  = 30
)

// DefaultConfig returns a Config populated with repository defaults.
// Used as the base before [Load] and CLI flags apply overrides.
func DefaultConfig() Config {
	return Config{
		Encoding: Encoding{
			Preset:               defaultPreset,
			CRF:                  defaultCRF,
			GOPSize:              defaultGOPSize,
			DetectTimeoutSeconds: defaultDetectTimeoutSeconds,
		},
		HLS: HLS{
			SegmentDuration: defaultSegmentDuration,
			PlaylistType:    PlaylistVOD,
		},
		Audio: Audio{
			BitrateKbps:    defaultAudioBitrateKbps,
			MaxBitrateKbps: defaultMaxAudioBitrateKbps,
			SampleRate:     defaultAudioSampleRate,
		},
		Subtitles: Subtitles{
			Convert:        true,
			SkipBitmap:     true,
			TimeoutSeconds: defaultSubtitleTimeout,
		},
		Pipeline: Pipeline{
			ProbeTimeoutSeconds: defaultProbeTimeoutSeconds,
		},
		Logging: Logging{
			Color: ColorAuto,
		},
	}
}
