package ffmpeg

import (
	"math"
	"testing"
)

func TestTelemetryUpdate(t *testing.T) {
	var tel Telemetry

	lines := []string{
		"frame=240",
		"fps=48.52",
		"bitrate=1543.2kbits/s",
		"total_size=1264800",
		"out_time=00:00:10.08",
		"speed=2.02x",
		"progress=continue",
	}
	for _, line := range lines {
		tel.Update(line)
	}

	if tel.Frames != 240 {
		t.Errorf("frames: got %d, want 240", tel.Frames)
	}
	if tel.FPS != 48.52 {
		t.Errorf("fps: got %v, want 48.52", tel.FPS)
	}
	if tel.Bitrate != "1543.2kbits/s" {
		t.Errorf("bitrate: got %q", tel.Bitrate)
	}
	if tel.OutTime != "00:00:10.08" {
		t.Errorf("out_time: got %q", tel.OutTime)
	}
	if math.Abs(tel.Seconds-10.08) > 1e-9 {
		t.Errorf("seconds: got %v, want 10.08", tel.Seconds)
	}
	if tel.Speed != "2.02x" {
		t.Errorf("speed: got %q", tel.Speed)
	}
}

func TestTelemetryUpdateMultiPairLine(t *testing.T) {
	var tel Telemetry
	if !tel.Update("frame=100 fps=25.0 q=28.0 size=512kB time=00:00:04.00 bitrate=1048.5kbits/s speed=1.01x") {
		t.Fatal("Update reported no known keys")
	}

	if tel.Frames != 100 || tel.FPS != 25.0 || tel.Quality != "28.0" {
		t.Errorf("got frames=%d fps=%v q=%q", tel.Frames, tel.FPS, tel.Quality)
	}
	if tel.Bitrate != "1048.5kbits/s" || tel.Speed != "1.01x" {
		t.Errorf("got bitrate=%q speed=%q", tel.Bitrate, tel.Speed)
	}
}

func TestTelemetryUpdatePaddedValue(t *testing.T) {
	var tel Telemetry
	tel.Update("bitrate=  580.9kbits/s")
	if tel.Bitrate != "580.9kbits/s" {
		t.Errorf("padded bitrate: got %q, want 580.9kbits/s", tel.Bitrate)
	}
}

func TestTelemetryUpdateKeepsLastGoodValue(t *testing.T) {
	var tel Telemetry
	tel.Update("frame=100")
	tel.Update("out_time=00:00:04.00")

	tel.Update("frame=N/A")
	tel.Update("out_time=N/A")
	tel.Update("fps=garbage")

	if tel.Frames != 100 {
		t.Errorf("frames: got %d, want last good 100", tel.Frames)
	}
	if tel.Seconds != 4.0 {
		t.Errorf("seconds: got %v, want last good 4.0", tel.Seconds)
	}
	// The raw clock string still tracks what ffmpeg reported.
	if tel.OutTime != "N/A" {
		t.Errorf("out_time: got %q, want N/A", tel.OutTime)
	}
}

func TestTelemetryUpdateLineClassification(t *testing.T) {
	var tel Telemetry
	// Untracked protocol keys still classify as progress so the
	// executor keeps them out of the diagnostic tail.
	if !tel.Update("progress=end") {
		t.Error("progress key not recognized as a protocol line")
	}
	if !tel.Update("stream_0_0_q=-1.0") {
		t.Error("stream q key not recognized as a protocol line")
	}
	if tel.Update("no equals sign here") {
		t.Error("plain text classified as a protocol line")
	}
	if tel.Update("Application provided invalid dts to muxer: 12000 >= 11000") {
		t.Error("diagnostic containing '=' classified as a protocol line")
	}
}

func TestSpeedMultiplier(t *testing.T) {
	cases := []struct {
		speed string
		want  float64
	}{
		{"2.02x", 2.02},
		{"0.5x", 0.5},
		{"23.7x", 23.7},
		{"N/A", 0},
		{"", 0},
		{"fast", 0},
	}

	for _, tc := range cases {
		tel := Telemetry{Speed: tc.speed}
		if got := tel.SpeedMultiplier(); got != tc.want {
			t.Errorf("SpeedMultiplier(%q): got %v, want %v", tc.speed, got, tc.want)
		}
	}
}

func TestParseClock(t *testing.T) {
	cases := []struct {
		in     string
		want   float64
		wantOK bool
	}{
		{"00:00:10.08", 10.08, true},
		{"01:02:03", 3723, true},
		{"10:00:00.5", 36000.5, true},
		{"00:00:00", 0, true},
		{"N/A", 0, false},
		{"12:34", 0, false},
		{"aa:bb:cc", 0, false},
		{"", 0, false},
	}

	for _, tc := range cases {
		got, ok := parseClock(tc.in)
		if ok != tc.wantOK {
			t.Errorf("parseClock(%q): ok=%v, want %v", tc.in, ok, tc.wantOK)
			continue
		}
		if ok && math.Abs(got-tc.want) > 1e-9 {
			t.Errorf("parseClock(%q): got %v, want %v", tc.in, got, tc.want)
		}
	}
}

func TestFailureHint(t *testing.T) {
	cases := []struct {
		name   string
		stderr string
		want   string
	}{
		{
			name:   "unknown encoder",
			stderr: "Unknown encoder 'h264_nvenc'",
			want:   "encoder failed to initialize; consider force_software_encoding",
		},
		{
			name:   "encoder open failure",
			stderr: "Error while opening encoder for output stream #0:0",
			want:   "encoder failed to initialize; consider force_software_encoding",
		},
		{
			name:   "corrupt input",
			stderr: "[mov,mp4,m4a] moov atom not found\n/in/movie.mp4: Invalid data found when processing input",
			want:   "input stream could not be decoded",
		},
		{
			name:   "disk full",
			stderr: "av_interleaved_write_frame(): No space left on device",
			want:   "output device is out of space",
		},
		{
			name:   "unclassified",
			stderr: "Conversion failed!",
			want:   "",
		},
		{
			name:   "empty",
			stderr: "",
			want:   "",
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := FailureHint(tc.stderr); got != tc.want {
				t.Errorf("got %q, want %q", got, tc.want)
			}
		})
	}
}
