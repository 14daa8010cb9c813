// Package sandbox runs one compiled or interpreted submission's entry
// point inside a resource-capped, network-disabled container and reports
// its combined output, exit status, and peak memory. It is the only
// package in this module that shells out to the container runtime for
// untrusted code execution; compilation shells out too, but to a trusted
// toolchain image.
package sandbox

import (
	"bytes"
	"context"
	"fmt"
	"os/exec"
	"sync"
	"sync/atomic"
	"time"

	"github.com/entropic-labs/execengine/pkg/engine/memparser"
	"github.com/entropic-labs/execengine/pkg/infrastructure/logging"
)

const sandboxSubsystem = "Sandbox"

// execCommandContext is mockable so tests never require a container
// runtime to be present.
var execCommandContext = exec.CommandContext

// Config fixes the resource caps and timing for one sandbox run.
// These are constants of the engine, not per-submission tunables — every
// run gets the same ceiling regardless of language or declared complexity.
type Config struct {
	Image          string
	MemoryMiB      int
	CPUFraction    float64
	PidsLimit      int
	WallClock      time.Duration
	SampleInterval time.Duration
	SampleDelay    time.Duration
	MaxSamples     int
	CleanupBound   time.Duration
}

// DefaultConfig returns the fixed resource caps for one submission run:
// 256 MiB memory, half a CPU, 100 pids, a 10 second wall clock, sampled
// every 150ms.
func DefaultConfig(image string) Config {
	return Config{
		Image:          image,
		MemoryMiB:      256,
		CPUFraction:    0.5,
		PidsLimit:      100,
		WallClock:      10 * time.Second,
		SampleInterval: 150 * time.Millisecond,
		SampleDelay:    50 * time.Millisecond,
		MaxSamples:     60,
		CleanupBound:   3 * time.Second,
	}
}

// Result is the runner's return value: the combined log, whether the
// run hit its wall clock, its exit code, and the peak memory observed.
type Result struct {
	RawLog             string
	TimedOut           bool
	ExitCode           int
	PerTestMemoryBytes int64
}

// Runner executes one submission's entry point in a fresh, uniquely named
// container and tears it down afterward.
type Runner struct {
	Config Config
}

// NewRunner builds a Runner with the fixed resource caps for image.
func NewRunner(image string) *Runner {
	cfg := DefaultConfig(image)
	return &Runner{Config: cfg}
}

// Run mounts dir read-only into the container, runs runCmd (the language
// runtime's command) inside it, and returns once the process exits, is
// force-terminated at the wall clock, or the caller's context is canceled.
// logLine, if non-nil, receives each line of combined output as it is read.
func (r *Runner) Run(ctx context.Context, submissionID, dir string, runCmd []string, logLine func(string)) (Result, error) {
	containerName := fmt.Sprintf("execengine-run-%s-%d", submissionID, time.Now().UnixNano())

	runCtx, cancel := context.WithTimeout(ctx, r.Config.WallClock)
	defer cancel()

	args := []string{
		"run",
		"--name", containerName,
		"--memory", fmt.Sprintf("%dm", r.Config.MemoryMiB),
		"--memory-swap", fmt.Sprintf("%dm", r.Config.MemoryMiB),
		"--cpus", fmt.Sprintf("%.2f", r.Config.CPUFraction),
		"--pids-limit", fmt.Sprintf("%d", r.Config.PidsLimit),
		"--network", "none",
		"-v", fmt.Sprintf("%s:/workspace:ro", dir),
		"-w", "/workspace",
		r.Config.Image,
	}
	args = append(args, runCmd...)

	logging.Info("starting sandbox container", map[string]interface{}{
		"subsystem": sandboxSubsystem,
		"container": containerName,
	})

	cmd := execCommandContext(runCtx, "docker", args...)

	var output bytes.Buffer
	cmd.Stdout = &lineForwardingWriter{buf: &output, onLine: logLine}
	cmd.Stderr = &lineForwardingWriter{buf: &output, onLine: logLine}

	var peakBytes int64
	samplerDone := make(chan struct{})
	go r.sampleMemory(ctx, containerName, &peakBytes, samplerDone)

	startErr := cmd.Start()
	if startErr != nil {
		close(samplerDone)
		r.cleanup(containerName)
		return Result{}, fmt.Errorf("sandbox: start container: %w", startErr)
	}

	waitErr := cmd.Wait()
	close(samplerDone)

	result := Result{RawLog: output.String(), PerTestMemoryBytes: atomic.LoadInt64(&peakBytes)}

	if runCtx.Err() == context.DeadlineExceeded {
		result.TimedOut = true
		result.ExitCode = -999
	} else if waitErr != nil {
		if exitErr, ok := waitErr.(*exec.ExitError); ok {
			result.ExitCode = exitErr.ExitCode()
		} else {
			result.ExitCode = -1
		}
	}

	r.cleanup(containerName)
	return result, nil
}

// sampleMemory polls `docker stats` for containerName on a fixed cadence
// and keeps a running maximum. This is a coarse-grained sampler: one peak
// applied uniformly to every test case rather than per-case attribution.
func (r *Runner) sampleMemory(ctx context.Context, containerName string, peakBytes *int64, done <-chan struct{}) {
	timer := time.NewTimer(r.Config.SampleDelay)
	defer timer.Stop()

	for sampled := 0; sampled < r.Config.MaxSamples; sampled++ {
		select {
		case <-done:
			return
		case <-ctx.Done():
			return
		case <-timer.C:
		}

		statsCtx, cancel := context.WithTimeout(ctx, 2*time.Second)
		cmd := execCommandContext(statsCtx, "docker", "stats", "--no-stream", "--format", "{{.MemUsage}}", containerName)
		out, err := cmd.Output()
		cancel()
		if err == nil {
			if value, ok := memparser.Parse(string(out)); ok {
				for {
					current := atomic.LoadInt64(peakBytes)
					if value <= current || atomic.CompareAndSwapInt64(peakBytes, current, value) {
						break
					}
				}
			}
		}

		timer.Reset(r.Config.SampleInterval)
	}
}

// cleanup best-effort removes the container by name within CleanupBound;
// failures are logged, never returned, since a leaked container must never
// fail the submission it was running.
func (r *Runner) cleanup(containerName string) {
	ctx, cancel := context.WithTimeout(context.Background(), r.Config.CleanupBound)
	defer cancel()

	cmd := execCommandContext(ctx, "docker", "rm", "-f", containerName)
	if err := cmd.Run(); err != nil {
		logging.Warn("failed to remove sandbox container", map[string]interface{}{
			"subsystem": sandboxSubsystem,
			"container": containerName,
			"error":     err.Error(),
		})
	}
}

// lineForwardingWriter tees every write into buf while also invoking
// onLine once per newline-terminated line, so a caller can stream progress
// without waiting for the whole run to finish.
type lineForwardingWriter struct {
	mu     sync.Mutex
	buf    *bytes.Buffer
	onLine func(string)
	carry  []byte
}

func (w *lineForwardingWriter) Write(p []byte) (int, error) {
	w.mu.Lock()
	defer w.mu.Unlock()

	w.buf.Write(p)
	if w.onLine == nil {
		return len(p), nil
	}

	w.carry = append(w.carry, p...)
	for {
		idx := bytes.IndexByte(w.carry, '\n')
		if idx < 0 {
			break
		}
		line := string(bytes.TrimRight(w.carry[:idx], "\r"))
		w.onLine(line)
		w.carry = w.carry[idx+1:]
	}
	return len(p), nil
}
