package check

import (
	"context"
	"errors"
	"strings"
	"testing"
)

type recordLogger struct {
	successes []string
	errors    []string
}

func (r *recordLogger) Success(format string, args ...interface{}) {
	r.successes = append(r.successes, format)
}

func (r *recordLogger) Error(format string, args ...interface{}) {
	r.errors = append(r.errors, format)
}

func TestFFmpegMissing(t *testing.T) {
	_, err := FFmpeg(context.Background(), "definitely-not-ffmpeg-9x")
	if !errors.Is(err, ErrFFmpegMissing) {
		t.Fatalf("want ErrFFmpegMissing, got %v", err)
	}
}

func TestFFprobeMissing(t *testing.T) {
	_, err := FFprobe(context.Background(), "definitely-not-ffprobe-9x")
	if !errors.Is(err, ErrFFprobeMissing) {
		t.Fatalf("want ErrFFprobeMissing, got %v", err)
	}
}

func TestRunReportsEveryFailure(t *testing.T) {
	log := &recordLogger{}
	err := Run(context.Background(), "definitely-not-ffmpeg-9x", "definitely-not-ffprobe-9x", log)
	if !errors.Is(err, ErrFFmpegMissing) || !errors.Is(err, ErrFFprobeMissing) {
		t.Fatalf("joined error missing a sentinel: %v", err)
	}
	if len(log.errors) != 2 {
		t.Errorf("logged errors: got %d, want 2", len(log.errors))
	}
}

func TestFirstLine(t *testing.T) {
	got := firstLine("ffmpeg version 6.1\nbuilt with gcc\n")
	if got != "ffmpeg version 6.1" {
		t.Errorf("firstLine: got %q", got)
	}
	if firstLine("") != "" {
		t.Error("empty input should yield empty line")
	}
	if !strings.HasPrefix(firstLine("  x  "), "x") {
		t.Error("surrounding whitespace should be trimmed")
	}
}
