package encoder

import (
	"context"
	"os"
	"path/filepath"
	"reflect"
	"runtime"
	"testing"
)

func TestSelectBest(t *testing.T) {
	cases := []struct {
		name       string
		available  map[string]bool
		wantVideo  string
		wantVName  string
		wantAudio  string
		wantAName  string
	}{
		{
			name:      "hardware preferred over software",
			available: map[string]bool{"h264_qsv": true, "libx264": true, "aac_at": true, "aac": true},
			wantVideo: "h264_qsv", wantVName: "Intel QuickSync",
			wantAudio: "aac_at", wantAName: "AudioToolbox AAC (macOS)",
		},
		{
			name:      "first hardware in preference order wins",
			available: map[string]bool{"h264_nvenc": true, "h264_amf": true, "aac": true},
			wantVideo: "h264_nvenc", wantVName: "NVIDIA NVENC",
			wantAudio: "aac", wantAName: "Generic AAC",
		},
		{
			name:      "software when no hardware passes",
			available: map[string]bool{"libx264": true, "h264": true, "libfdk_aac": true},
			wantVideo: "libx264", wantVName: "x264 Software",
			wantAudio: "libfdk_aac", wantAName: "Fraunhofer FDK AAC",
		},
		{
			name:      "unverified fallback when nothing passes",
			available: map[string]bool{},
			wantVideo: "libx264", wantVName: "x264 Software (fallback)",
			wantAudio: "aac", wantAName: "Generic AAC (fallback)",
		},
		{
			name:      "kinds selected independently",
			available: map[string]bool{"h264_vaapi": true},
			wantVideo: "h264_vaapi", wantVName: "VAAPI (Linux)",
			wantAudio: "aac", wantAName: "Generic AAC (fallback)",
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			candidates := append(videoCandidates(), audioCandidates()...)
			for i := range candidates {
				candidates[i].Available = tc.available[candidates[i].Codec]
			}

			sel := selectBest(candidates)
			if sel.VideoCodec != tc.wantVideo || sel.VideoName != tc.wantVName {
				t.Errorf("video: got %s (%s), want %s (%s)", sel.VideoCodec, sel.VideoName, tc.wantVideo, tc.wantVName)
			}
			if sel.AudioCodec != tc.wantAudio || sel.AudioName != tc.wantAName {
				t.Errorf("audio: got %s (%s), want %s (%s)", sel.AudioCodec, sel.AudioName, tc.wantAudio, tc.wantAName)
			}
			if len(sel.Candidates) != len(candidates) {
				t.Errorf("candidates: got %d, want %d", len(sel.Candidates), len(candidates))
			}
		})
	}
}

func TestTestArgs(t *testing.T) {
	video := testArgs(&Candidate{Codec: "h264_nvenc", Kind: KindVideo})
	wantVideo := []string{
		"-hide_banner", "-f", "lavfi",
		"-i", "testsrc=duration=0.1:size=320x240:rate=1",
		"-c:v", "h264_nvenc",
		"-t", "0.1", "-f", "null", "-",
	}
	if !reflect.DeepEqual(video, wantVideo) {
		t.Errorf("video args:\n got %v\nwant %v", video, wantVideo)
	}

	audio := testArgs(&Candidate{Codec: "aac", Kind: KindAudio})
	wantAudio := []string{
		"-hide_banner", "-f", "lavfi",
		"-i", "sine=frequency=1000:duration=0.1",
		"-c:a", "aac",
		"-t", "0.1", "-f", "null", "-",
	}
	if !reflect.DeepEqual(audio, wantAudio) {
		t.Errorf("audio args:\n got %v\nwant %v", audio, wantAudio)
	}
}

func TestIsHardware(t *testing.T) {
	cases := []struct {
		codec string
		want  bool
	}{
		{"h264_videotoolbox", true},
		{"h264_nvenc", true},
		{"h264_qsv", true},
		{"h264_vaapi", true},
		{"h264_amf", true},
		{"aac_at", true},
		{"libx264", false},
		{"h264", false},
		{"aac", false},
		{"libfdk_aac", false},
		{"", false},
	}

	for _, tc := range cases {
		if got := IsHardware(tc.codec); got != tc.want {
			t.Errorf("IsHardware(%q): got %v, want %v", tc.codec, got, tc.want)
		}
	}
}

// Selection scans candidates in table order, so hardware entries must
// precede software entries within each kind.
func TestCandidateTablesHardwareFirst(t *testing.T) {
	for _, table := range [][]Candidate{videoCandidates(), audioCandidates()} {
		seenSoftware := false
		for _, cand := range table {
			if !cand.Hardware {
				seenSoftware = true
			} else if seenSoftware {
				t.Errorf("hardware candidate %s listed after software", cand.Codec)
			}
			if IsHardware(cand.Codec) != cand.Hardware {
				t.Errorf("candidate %s: table Hardware=%v disagrees with IsHardware", cand.Codec, cand.Hardware)
			}
		}
	}
}

// stubFFmpeg writes a fake ffmpeg that accepts only the given codecs
// and returns its path.
func stubFFmpeg(t *testing.T, accept string) string {
	t.Helper()
	if runtime.GOOS == "windows" {
		t.Skip("stub binary requires a POSIX shell")
	}

	path := filepath.Join(t.TempDir(), "ffmpeg")
	script := `#!/bin/sh
codec=""
prev=""
for a in "$@"; do
  case "$prev" in
    -c:v|-c:a) codec="$a" ;;
  esac
  prev="$a"
done
case "$codec" in
  ` + accept + `) exit 0 ;;
esac
exit 1
`
	if err := os.WriteFile(path, []byte(script), 0o755); err != nil {
		t.Fatalf("write stub: %v", err)
	}
	return path
}

func TestDetectCachesSelection(t *testing.T) {
	cat := &Catalog{FFmpegPath: stubFFmpeg(t, "libx264|aac")}

	first := cat.Detect(context.Background())
	if first.VideoCodec != "libx264" || first.AudioCodec != "aac" {
		t.Fatalf("selection: got %s/%s, want libx264/aac", first.VideoCodec, first.AudioCodec)
	}

	second := cat.Detect(context.Background())
	if first != second {
		t.Error("Detect re-probed instead of returning the cached selection")
	}
}

func TestRefreshReprobes(t *testing.T) {
	stub := stubFFmpeg(t, "h264_nvenc|aac")
	cat := &Catalog{FFmpegPath: stub}

	first := cat.Detect(context.Background())
	if first.VideoCodec != "h264_nvenc" {
		t.Fatalf("initial selection: got %s, want h264_nvenc", first.VideoCodec)
	}

	// The host lost its hardware encoder; only Refresh may notice.
	if err := os.WriteFile(stub, []byte("#!/bin/sh\nexit 1\n"), 0o755); err != nil {
		t.Fatalf("rewrite stub: %v", err)
	}
	if cached := cat.Detect(context.Background()); cached.VideoCodec != "h264_nvenc" {
		t.Errorf("Detect after change: got %s, want cached h264_nvenc", cached.VideoCodec)
	}

	refreshed := cat.Refresh(context.Background())
	if refreshed.VideoCodec != "libx264" || refreshed.VideoName != "x264 Software (fallback)" {
		t.Errorf("refreshed selection: got %s (%s), want fallback libx264", refreshed.VideoCodec, refreshed.VideoName)
	}
}

func TestForceSoftwareSkipsHardware(t *testing.T) {
	// Stub accepts everything, so only ForceSoftware can explain a
	// software selection.
	cat := &Catalog{
		FFmpegPath:    stubFFmpeg(t, "*"),
		ForceSoftware: true,
	}

	sel := cat.Detect(context.Background())
	if sel.VideoCodec != "libx264" {
		t.Errorf("video: got %s, want libx264", sel.VideoCodec)
	}
	if sel.AudioCodec != "aac" {
		t.Errorf("audio: got %s, want aac", sel.AudioCodec)
	}
	for _, cand := range sel.Candidates {
		if cand.Hardware && cand.Available {
			t.Errorf("hardware candidate %s marked available despite ForceSoftware", cand.Codec)
		}
	}
}
