// Package compiler drives per-language compilation ahead of a sandbox run.
// Compiled languages invoke the language toolchain inside a
// container against the submission's temp directory; interpreted languages
// are a no-op. Each driver is stateless and safe for concurrent use across
// workers.
package compiler

import (
	"bytes"
	"context"
	"fmt"
	"os/exec"

	"github.com/entropic-labs/execengine/pkg/engine/model"
	"github.com/entropic-labs/execengine/pkg/infrastructure/logging"
)

const compilerSubsystem = "Compiler"

// execCommandContext is a package-level var so tests can substitute a fake
// compiler invocation without a real container runtime.
var execCommandContext = exec.CommandContext

// Result is the outcome of one compile attempt.
type Result struct {
	Success bool
	Output  string
}

// Driver compiles the files written at dir for one submission and reports
// whether the compiled artifact is runnable.
type Driver interface {
	Compile(ctx context.Context, dir string, req *model.SubmissionRequest) (Result, error)
}

// registry maps a language to the driver that compiles it. Python has no
// separate compile step; registering a no-op keeps the orchestrator's call
// site uniform across languages instead of branching on "is compiled".
var registry = map[model.Language]Driver{
	model.LanguageJava:   JavaDriver{Image: "eclipse-temurin:21-jdk-alpine"},
	model.LanguagePython: NoopDriver{},
}

// For looks up the driver registered for a language.
func For(lang model.Language) (Driver, error) {
	driver, ok := registry[lang]
	if !ok {
		return nil, fmt.Errorf("compiler: unsupported language %q", lang)
	}
	return driver, nil
}

// NoopDriver is the compiler driver for interpreted languages: compilation
// succeeds trivially since there is nothing to invoke ahead of time.
type NoopDriver struct{}

func (NoopDriver) Compile(ctx context.Context, dir string, req *model.SubmissionRequest) (Result, error) {
	return Result{Success: true, Output: ""}, nil
}

// JavaDriver compiles a package directory of .java files with javac,
// running inside a short-lived container built from Image: a mockable
// exec.CommandContext var, combined stdout/stderr capture, and a
// subsystem-tagged logger.
type JavaDriver struct {
	Image string
}

func (d JavaDriver) Compile(ctx context.Context, dir string, req *model.SubmissionRequest) (Result, error) {
	logging.Info(fmt.Sprintf("compiling java submission in %s", dir), map[string]interface{}{
		"subsystem": compilerSubsystem,
		"image":     d.Image,
	})

	args := []string{
		"run", "--rm",
		"--network", "none",
		"-v", fmt.Sprintf("%s:/workspace:rw", dir),
		"-w", "/workspace",
		d.Image,
		"sh", "-c", "find . -name '*.java' | xargs javac -d .",
	}

	cmd := execCommandContext(ctx, "docker", args...)
	var combined bytes.Buffer
	cmd.Stdout = &combined
	cmd.Stderr = &combined

	err := cmd.Run()
	output := combined.String()
	if err != nil {
		if _, isExitErr := err.(*exec.ExitError); isExitErr {
			logging.Warn("javac reported a compilation failure", map[string]interface{}{
				"subsystem": compilerSubsystem,
				"output":    output,
			})
			return Result{Success: false, Output: output}, nil
		}
		return Result{}, fmt.Errorf("compiler: invoke javac container: %w", err)
	}

	return Result{Success: true, Output: output}, nil
}
