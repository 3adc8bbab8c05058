package playlist

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/backmassage/hlsmill/internal/ladder"
)

func sampleProfiles() []ladder.RenditionProfile {
	return []ladder.RenditionProfile{
		{Name: "480p", Width: 854, Height: 480, MaxBitrateKbps: 1200, MinBitrateKbps: 900},
		{Name: "720p", Width: 1280, Height: 720, MaxBitrateKbps: 2500, MinBitrateKbps: 1800},
		{Name: "1080p", Width: 1920, Height: 1080, MaxBitrateKbps: 5000, MinBitrateKbps: 3500},
	}
}

func TestRenderFullManifest(t *testing.T) {
	audio := []AudioRendition{
		{Name: "eng", Language: "eng", Dir: "audio_eng"},
		{Name: "jpn", Language: "jpn", Dir: "audio_jpn"},
	}

	got := Render(sampleProfiles(), audio)
	want := strings.Join([]string{
		"#EXTM3U",
		`#EXT-X-MEDIA:TYPE=AUDIO,GROUP-ID="audio",NAME="eng",DEFAULT=YES,AUTOSELECT=YES,LANGUAGE="eng",URI="audio_eng/playlist.m3u8"`,
		`#EXT-X-MEDIA:TYPE=AUDIO,GROUP-ID="audio",NAME="jpn",DEFAULT=NO,AUTOSELECT=YES,LANGUAGE="jpn",URI="audio_jpn/playlist.m3u8"`,
		`#EXT-X-STREAM-INF:BANDWIDTH=1200000,RESOLUTION=854x480,CODECS="avc1.640029",AUDIO="audio"`,
		"480p/playlist.m3u8",
		`#EXT-X-STREAM-INF:BANDWIDTH=2500000,RESOLUTION=1280x720,CODECS="avc1.640029",AUDIO="audio"`,
		"720p/playlist.m3u8",
		`#EXT-X-STREAM-INF:BANDWIDTH=5000000,RESOLUTION=1920x1080,CODECS="avc1.640029",AUDIO="audio"`,
		"1080p/playlist.m3u8",
	}, "\n")

	if got != want {
		t.Errorf("manifest mismatch:\n got:\n%s\nwant:\n%s", got, want)
	}
}

func TestRenderNoTrailingNewline(t *testing.T) {
	got := Render(sampleProfiles(), nil)
	if strings.HasSuffix(got, "\n") {
		t.Error("manifest must not end with a newline")
	}
}

func TestRenderNoAudio(t *testing.T) {
	got := Render(sampleProfiles()[:1], nil)
	want := "#EXTM3U\n" +
		`#EXT-X-STREAM-INF:BANDWIDTH=1200000,RESOLUTION=854x480,CODECS="avc1.640029",AUDIO="audio"` +
		"\n480p/playlist.m3u8"
	if got != want {
		t.Errorf("got:\n%s\nwant:\n%s", got, want)
	}
}

func TestRenderEmpty(t *testing.T) {
	if got := Render(nil, nil); got != "#EXTM3U" {
		t.Errorf("empty manifest: got %q", got)
	}
}

func TestRenderDuplicateLanguageSuffixes(t *testing.T) {
	audio := []AudioRendition{
		{Name: "eng", Language: "eng", Dir: "audio_eng"},
		{Name: "eng_1", Language: "eng", Dir: "audio_eng_1"},
	}

	got := Render(nil, audio)
	if !strings.Contains(got, `NAME="eng_1"`) || !strings.Contains(got, `URI="audio_eng_1/playlist.m3u8"`) {
		t.Errorf("suffixed rendition not emitted distinctly:\n%s", got)
	}
	// Both tracks keep the source language tag.
	if strings.Count(got, `LANGUAGE="eng"`) != 2 {
		t.Errorf("language attribute should repeat the raw tag:\n%s", got)
	}
	if strings.Count(got, "DEFAULT=YES") != 1 {
		t.Errorf("exactly one default audio entry expected:\n%s", got)
	}
}

func TestWriteMaster(t *testing.T) {
	dir := t.TempDir()
	path, err := WriteMaster(dir, sampleProfiles(), []AudioRendition{{Name: "eng", Language: "eng", Dir: "audio_eng"}})
	if err != nil {
		t.Fatalf("WriteMaster: %v", err)
	}
	if path != filepath.Join(dir, "master.m3u8") {
		t.Errorf("path: got %q", path)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read back: %v", err)
	}
	if string(data) != Render(sampleProfiles(), []AudioRendition{{Name: "eng", Language: "eng", Dir: "audio_eng"}}) {
		t.Error("written content differs from rendered manifest")
	}
}

func TestWriteMasterMissingDir(t *testing.T) {
	if _, err := WriteMaster(filepath.Join(t.TempDir(), "absent"), sampleProfiles(), nil); err == nil {
		t.Fatal("want error writing into a missing directory")
	}
}
