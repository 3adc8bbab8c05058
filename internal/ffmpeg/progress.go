package ffmpeg

import (
	"strconv"
	"strings"
)

// Telemetry is the rolling snapshot parsed from ffmpeg's -progress
// output. String fields keep ffmpeg's raw formatting ("1543.2kbits/s",
// "12648kB"); numeric fields are parsed tolerantly and keep their last
// good value when a line is malformed.
type Telemetry struct {
	Speed     string  // raw multiplier, e.g. "3.4x"
	OutTime   string  // raw encode clock, e.g. "00:01:23.45"
	Seconds   float64 // OutTime as seconds
	Frames    int
	FPS       float64
	Bitrate   string
	Quality   string
	TotalSize string
}

// Update parses one progress line into the snapshot. A line may carry
// several whitespace-separated key=value pairs. Reports whether the
// line belonged to the progress protocol; lines that do not are
// diagnostics and stay out of the snapshot.
func (t *Telemetry) Update(line string) bool {
	updated := false
	fields := strings.Fields(line)
	for i := 0; i < len(fields); i++ {
		key, value, found := strings.Cut(fields[i], "=")
		if !found {
			continue
		}
		// ffmpeg pads some values ("bitrate= 580.9kbits/s"), which
		// splits the value into the following field.
		if value == "" && i+1 < len(fields) && !strings.Contains(fields[i+1], "=") {
			i++
			value = fields[i]
		}
		if t.apply(key, value) {
			updated = true
		}
	}
	return updated
}

func (t *Telemetry) apply(key, value string) bool {
	switch key {
	case "speed":
		t.Speed = value
	case "out_time":
		t.OutTime = value
		if s, ok := parseClock(value); ok {
			t.Seconds = s
		}
	case "frame":
		if n, err := strconv.Atoi(value); err == nil {
			t.Frames = n
		}
	case "fps":
		if f, err := strconv.ParseFloat(value, 64); err == nil {
			t.FPS = f
		}
	case "bitrate":
		t.Bitrate = value
	case "q":
		t.Quality = value
	case "total_size":
		t.TotalSize = value
	case "progress", "out_time_us", "out_time_ms", "dup_frames", "drop_frames":
		// remaining protocol keys, recognized but not tracked
	default:
		// per-stream quality keys carry the stream index in the name
		if strings.HasPrefix(key, "stream_") && strings.HasSuffix(key, "_q") {
			return true
		}
		return false
	}
	return true
}

// SpeedMultiplier returns Speed as a number ("3.4x" → 3.4). Zero when
// the field is absent or not a trailing-x multiplier.
func (t Telemetry) SpeedMultiplier() float64 {
	s := strings.TrimSuffix(t.Speed, "x")
	if s == t.Speed {
		return 0
	}
	f, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
	if err != nil {
		return 0
	}
	return f
}

// parseClock converts an "HH:MM:SS[.frac]" clock to seconds.
func parseClock(s string) (float64, bool) {
	parts := strings.Split(s, ":")
	if len(parts) != 3 {
		return 0, false
	}
	h, err1 := strconv.ParseFloat(parts[0], 64)
	m, err2 := strconv.ParseFloat(parts[1], 64)
	sec, err3 := strconv.ParseFloat(parts[2], 64)
	if err1 != nil || err2 != nil || err3 != nil {
		return 0, false
	}
	return h*3600 + m*60 + sec, true
}
