package ffmpeg

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"strings"
	"time"
)

// commandContext builds the subprocess; a variable so tests can
// substitute a fake.
var commandContext = exec.CommandContext

// stderrTailLines bounds how much diagnostic output is retained for
// error reporting.
const stderrTailLines = 30

// killDelay is how long a canceled process gets to shut down after the
// interrupt before it is killed.
const killDelay = 5 * time.Second

// ProgressFunc receives the telemetry snapshot after each update.
type ProgressFunc func(Telemetry)

// ExecResult holds the outcome of a single supervised ffmpeg run.
type ExecResult struct {
	Telemetry Telemetry
	Stderr    string // retained diagnostic tail, empty on clean runs
	Err       error
}

// Run launches the invocation described by args (binary name first)
// and supervises it to completion. Stderr is scanned line by line:
// telemetry lines update the snapshot and notify onProgress, anything
// else is kept as the diagnostic tail. Cancellation interrupts the
// process and escalates to a kill after a grace period.
//
// A nonzero exit is reported through ExecResult.Err; Run itself never
// panics on subprocess failure.
func Run(ctx context.Context, args []string, onProgress ProgressFunc) ExecResult {
	cmd := commandContext(ctx, args[0], args[1:]...)
	cmd.Cancel = func() error { return cmd.Process.Signal(os.Interrupt) }
	cmd.WaitDelay = killDelay

	stderr, err := cmd.StderrPipe()
	if err != nil {
		return ExecResult{Err: fmt.Errorf("stderr pipe: %w", err)}
	}
	if err := cmd.Start(); err != nil {
		return ExecResult{Err: fmt.Errorf("start %s: %w", args[0], err)}
	}

	var (
		tel  Telemetry
		tail []string
	)
	scanner := bufio.NewScanner(stderr)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}
		if strings.Contains(line, "=") && tel.Update(line) {
			if onProgress != nil {
				onProgress(tel)
			}
			continue
		}
		tail = append(tail, line)
		if len(tail) > stderrTailLines {
			tail = tail[1:]
		}
	}
	scanErr := scanner.Err()

	waitErr := cmd.Wait()
	res := ExecResult{Telemetry: tel, Stderr: strings.Join(tail, "\n")}

	switch {
	case waitErr == nil && scanErr != nil:
		res.Err = fmt.Errorf("read progress output: %w", scanErr)
	case waitErr == nil:
	case errors.Is(ctx.Err(), context.DeadlineExceeded):
		res.Err = fmt.Errorf("encode deadline exceeded: %w", context.DeadlineExceeded)
	case ctx.Err() != nil:
		res.Err = fmt.Errorf("encode canceled: %w", ctx.Err())
	default:
		res.Err = fmt.Errorf("%s: %w", args[0], waitErr)
	}
	return res
}
