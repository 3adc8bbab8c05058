package config

import (
	"os"
	"path/filepath"
	"reflect"
	"testing"
)

func TestValidate_PlaylistType(t *testing.T) {
	tests := []struct {
		name    string
		pt      PlaylistType
		wantErr bool
	}{
		{"vod is valid", PlaylistVOD, false},
		{"event is valid", PlaylistEvent, false},
		{"empty is invalid", "", true},
		{"live is invalid", "live", true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultConfig()
			cfg.HLS.PlaylistType = tt.pt
			err := cfg.Validate()
			if (err != nil) != tt.wantErr {
				t.Errorf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestValidate_ColorMode(t *testing.T) {
	tests := []struct {
		name    string
		mode    ColorMode
		wantErr bool
	}{
		{"auto is valid", ColorAuto, false},
		{"always is valid", ColorAlways, false},
		{"never is valid", ColorNever, false},
		{"empty is invalid", "", true},
		{"unknown is invalid", "rainbow", true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultConfig()
			cfg.Logging.Color = tt.mode
			err := cfg.Validate()
			if (err != nil) != tt.wantErr {
				t.Errorf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestValidate_Ranges(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
	}{
		{"negative crf", func(c *Config) { c.Encoding.CRF = -1 }},
		{"crf above 51", func(c *Config) { c.Encoding.CRF = 52 }},
		{"zero gop", func(c *Config) { c.Encoding.GOPSize = 0 }},
		{"zero segment duration", func(c *Config) { c.HLS.SegmentDuration = 0 }},
		{"segment duration above 30", func(c *Config) { c.HLS.SegmentDuration = 31 }},
		{"zero audio bitrate", func(c *Config) { c.Audio.BitrateKbps = 0 }},
		{"cap below bitrate", func(c *Config) { c.Audio.MaxBitrateKbps = 100 }},
		{"negative workers", func(c *Config) { c.Pipeline.MaxWorkers = -1 }},
		{"negative encode timeout", func(c *Config) { c.Encoding.EncodeTimeoutMinutes = -5 }},
		{"empty preset", func(c *Config) { c.Encoding.Preset = "" }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultConfig()
			tt.mutate(&cfg)
			if err := cfg.Validate(); err == nil {
				t.Error("Validate() should reject the mutated config")
			}
		})
	}
}

func TestDefaultConfig_SaneDefaults(t *testing.T) {
	cfg := DefaultConfig()

	if cfg.Encoding.Preset != "fast" {
		t.Errorf("default preset = %q, want fast", cfg.Encoding.Preset)
	}
	if cfg.Encoding.CRF != 23 {
		t.Errorf("default crf = %d, want 23", cfg.Encoding.CRF)
	}
	if cfg.HLS.SegmentDuration != 2 {
		t.Errorf("default segment duration = %d, want 2", cfg.HLS.SegmentDuration)
	}
	if cfg.HLS.PlaylistType != PlaylistVOD {
		t.Errorf("default playlist type = %q, want vod", cfg.HLS.PlaylistType)
	}
	if cfg.Audio.BitrateKbps != 160 {
		t.Errorf("default audio bitrate = %d, want 160", cfg.Audio.BitrateKbps)
	}
	if !cfg.Subtitles.Convert {
		t.Error("default subtitles.convert should be true")
	}
	if !cfg.Subtitles.SkipBitmap {
		t.Error("default subtitles.skip_bitmap should be true")
	}
	if err := cfg.Validate(); err != nil {
		t.Errorf("defaults should validate, got: %v", err)
	}
}

func TestWorkers_ExplicitOverride(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Pipeline.MaxWorkers = 3
	if got := cfg.Workers(); got != 3 {
		t.Errorf("Workers() = %d, want 3", got)
	}
}

func TestWorkers_DerivedBounds(t *testing.T) {
	cfg := DefaultConfig()
	got := cfg.Workers()
	if got < 2 || got > 8 {
		t.Errorf("derived Workers() = %d, want within [2, 8]", got)
	}
}

func TestThreadsPerJob_ExplicitOverride(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Encoding.EncoderThreads = 6
	if got := cfg.ThreadsPerJob(); got != 6 {
		t.Errorf("ThreadsPerJob() = %d, want 6", got)
	}
}

func TestThreadsPerJob_Minimum(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Pipeline.MaxWorkers = 64 // more workers than cores
	if got := cfg.ThreadsPerJob(); got < 2 {
		t.Errorf("ThreadsPerJob() = %d, want at least 2", got)
	}
}

func TestSaveLoad_RoundTrip(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Encoding.Preset = "slow"
	cfg.Encoding.CRF = 18
	cfg.Encoding.ForceSoftware = true
	cfg.HLS.SegmentDuration = 6
	cfg.HLS.PlaylistType = PlaylistEvent
	cfg.Audio.BitrateKbps = 192
	cfg.Subtitles.SkipBitmap = false
	cfg.Pipeline.MaxWorkers = 4
	cfg.Logging.Color = ColorNever

	path := filepath.Join(t.TempDir(), "config.toml")
	if err := cfg.Save(path); err != nil {
		t.Fatalf("Save() error: %v", err)
	}

	loaded, resolved, exists, err := Load(path)
	if err != nil {
		t.Fatalf("Load() error: %v", err)
	}
	if !exists {
		t.Error("Load() should report the file as existing")
	}
	if resolved != path {
		t.Errorf("Load() resolved path = %q, want %q", resolved, path)
	}
	if !reflect.DeepEqual(*loaded, cfg) {
		t.Errorf("round-trip mismatch:\n got %+v\nwant %+v", *loaded, cfg)
	}
}

func TestLoad_MissingExplicitPath(t *testing.T) {
	_, _, _, err := Load(filepath.Join(t.TempDir(), "nope.toml"))
	if err == nil {
		t.Error("Load() should fail for a missing explicit path")
	}
}

func TestLoad_PartialFileKeepsDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")
	partial := "[encoding]\npreset = \"veryslow\"\n"
	if err := os.WriteFile(path, []byte(partial), 0o644); err != nil {
		t.Fatal(err)
	}

	cfg, _, _, err := Load(path)
	if err != nil {
		t.Fatalf("Load() error: %v", err)
	}
	if cfg.Encoding.Preset != "veryslow" {
		t.Errorf("preset = %q, want veryslow", cfg.Encoding.Preset)
	}
	if cfg.Encoding.CRF != 23 {
		t.Errorf("crf = %d, want default 23", cfg.Encoding.CRF)
	}
	if !cfg.Subtitles.Convert {
		t.Error("subtitles.convert should keep its true default")
	}
}

func TestLoad_RejectsInvalidValues(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")
	bad := "[hls]\nsegment_duration = 99\n"
	if err := os.WriteFile(path, []byte(bad), 0o644); err != nil {
		t.Fatal(err)
	}

	if _, _, _, err := Load(path); err == nil {
		t.Error("Load() should reject segment_duration = 99")
	}
}

func TestCreateSample_ParsesAsDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "sample.toml")
	if err := CreateSample(path); err != nil {
		t.Fatalf("CreateSample() error: %v", err)
	}

	// Every value in the sample is commented out, so loading it must
	// reproduce the defaults exactly.
	cfg, _, _, err := Load(path)
	if err != nil {
		t.Fatalf("Load(sample) error: %v", err)
	}
	want := DefaultConfig()
	if !reflect.DeepEqual(*cfg, want) {
		t.Errorf("sample config differs from defaults:\n got %+v\nwant %+v", *cfg, want)
	}
}
