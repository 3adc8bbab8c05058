// Package check verifies the external tools hlsmill drives: ffmpeg for
// encoding and ffprobe for metadata. Used by the check subcommand and
// as a fail-fast gate before a conversion starts.
package check

import (
	"context"
	"errors"
	"fmt"
	"os/exec"
	"strings"
	"time"
)

// Sentinel errors for missing external tools.
var (
	ErrFFmpegMissing  = errors.New("ffmpeg not found on PATH")
	ErrFFprobeMissing = errors.New("ffprobe not found on PATH")
)

// versionTimeout bounds each -version invocation.
const versionTimeout = 5 * time.Second

// Logger is the minimal logging surface Run needs. Satisfied by
// *logging.Logger.
type Logger interface {
	Success(format string, args ...interface{})
	Error(format string, args ...interface{})
}

// Tool describes one verified external binary.
type Tool struct {
	Name    string
	Path    string // resolved absolute path
	Version string // first line of -version output, "" when unavailable
}

// FFmpeg locates the encoder binary and captures its version line.
func FFmpeg(ctx context.Context, binary string) (Tool, error) {
	return lookup(ctx, binary, ErrFFmpegMissing)
}

// FFprobe locates the probe binary and captures its version line.
func FFprobe(ctx context.Context, binary string) (Tool, error) {
	return lookup(ctx, binary, ErrFFprobeMissing)
}

func lookup(ctx context.Context, binary string, missing error) (Tool, error) {
	tool := Tool{Name: binary}

	path, err := exec.LookPath(binary)
	if err != nil {
		return tool, missing
	}
	tool.Path = path

	ctx, cancel := context.WithTimeout(ctx, versionTimeout)
	defer cancel()
	out, err := exec.CommandContext(ctx, path, "-version").Output()
	if err != nil {
		return tool, fmt.Errorf("%s -version: %w", binary, err)
	}
	tool.Version = firstLine(string(out))
	return tool, nil
}

// Run verifies both tools, logging each outcome. The returned error
// joins every failure so the caller can report all missing tools at
// once.
func Run(ctx context.Context, ffmpegBin, ffprobeBin string, log Logger) error {
	checks := []struct {
		binary  string
		missing error
	}{
		{ffmpegBin, ErrFFmpegMissing},
		{ffprobeBin, ErrFFprobeMissing},
	}

	var errs []error
	for _, c := range checks {
		tool, err := lookup(ctx, c.binary, c.missing)
		if err != nil {
			log.Error("%s: %v", tool.Name, err)
			errs = append(errs, err)
			continue
		}
		log.Success("%s: %s", tool.Name, tool.Version)
	}
	return errors.Join(errs...)
}

func firstLine(s string) string {
	line, _, _ := strings.Cut(strings.TrimSpace(s), "\n")
	return strings.TrimSpace(line)
}
