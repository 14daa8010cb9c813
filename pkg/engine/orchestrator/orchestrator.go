// Package orchestrator composes the harness generator, compiler driver,
// and sandbox runner into one executor for a submission, producing
// an internal ExecutionResult that the worker later maps onto the
// caller-visible status shape.
package orchestrator

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/entropic-labs/execengine/pkg/engine/compiler"
	"github.com/entropic-labs/execengine/pkg/engine/harness"
	"github.com/entropic-labs/execengine/pkg/engine/model"
	"github.com/entropic-labs/execengine/pkg/engine/resultparser"
	"github.com/entropic-labs/execengine/pkg/engine/sandbox"
	"github.com/entropic-labs/execengine/pkg/infrastructure/logging"
)

const orchestratorSubsystem = "Orchestrator"

// Overall is the engine-level classification of a finished run, distinct
// from the per-test-case outcomes nested inside it.
type Overall string

const (
	OverallSuccess           Overall = "SUCCESS"
	OverallCompilationError  Overall = "COMPILATION_ERROR"
	OverallTimeout           Overall = "TIMEOUT"
	OverallRuntimeError      Overall = "RUNTIME_ERROR"
	OverallInternalError     Overall = "INTERNAL_ERROR"
)

// ExecutionResult is the orchestrator's return value.
type ExecutionResult struct {
	Overall            Overall
	CompilationOutput  string
	RuntimeLog         string
	TestCaseResults    []resultparser.Line
	PerTestMemoryBytes int64
}

// runCommand resolves the language runtime invocation for a harness's
// entry point. Java classes run from their package root; Python scripts
// run directly.
var runCommand = map[model.Language]func(entryPoint string) []string{
	model.LanguageJava: func(entryPoint string) []string {
		// entryPoint is "harness.Main"; javac already placed class files
		// under their package directory inside /workspace.
		return []string{"java", entryPoint}
	},
	model.LanguagePython: func(entryPoint string) []string {
		return []string{"python3", entryPoint}
	},
}

var sandboxImages = map[model.Language]string{
	model.LanguageJava:   "eclipse-temurin:21-jre-alpine",
	model.LanguagePython: "python:3.12-alpine",
}

// Orchestrator ties the three execution stages together for one
// submission. The CompilerFor/NewSandboxRunner hooks default to the real
// registries; tests substitute fakes so a run can be exercised without a
// container runtime present.
type Orchestrator struct {
	// WorkDir is the parent directory under which per-submission temp
	// directories are created; empty uses the OS default.
	WorkDir string

	CompilerFor      func(model.Language) (compiler.Driver, error)
	NewSandboxRunner func(image string) sandboxRunner
}

// sandboxRunner is the subset of *sandbox.Runner the orchestrator depends
// on, narrowed to an interface so tests can substitute a fake without a
// container runtime.
type sandboxRunner interface {
	Run(ctx context.Context, submissionID, dir string, runCmd []string, logLine func(string)) (sandbox.Result, error)
}

// Run executes one submission end to end. The temporary directory
// is always removed before returning, regardless of outcome. onRunning,
// if non-nil, is invoked once, immediately before the sandbox container
// starts, so a caller holding the status store can record the RUNNING
// transition at the right moment instead of guessing at it from outside.
func (o *Orchestrator) Run(ctx context.Context, submissionID string, req *model.SubmissionRequest, onRunning func()) ExecutionResult {
	dir, err := os.MkdirTemp(o.WorkDir, "execengine-"+submissionID+"-")
	if err != nil {
		return internalError(fmt.Sprintf("create submission directory: %v", err))
	}
	defer func() {
		if rmErr := os.RemoveAll(dir); rmErr != nil {
			logging.Warn("failed to remove submission temp directory", map[string]interface{}{
				"subsystem": orchestratorSubsystem,
				"dir":       dir,
				"error":     rmErr.Error(),
			})
		}
	}()

	testCases := req.AllTestCases()

	genResult, err := harness.Generate(req, testCases)
	if err != nil {
		return internalError(fmt.Sprintf("generate harness: %v", err))
	}
	if err := writeFiles(dir, genResult.Files); err != nil {
		return internalError(fmt.Sprintf("write harness files: %v", err))
	}

	compilerFor := o.CompilerFor
	if compilerFor == nil {
		compilerFor = compiler.For
	}
	compileDriver, err := compilerFor(req.Language)
	if err != nil {
		return internalError(fmt.Sprintf("resolve compiler driver: %v", err))
	}
	compileResult, err := compileDriver.Compile(ctx, dir, req)
	if err != nil {
		return internalError(fmt.Sprintf("invoke compiler driver: %v", err))
	}
	if !compileResult.Success {
		return ExecutionResult{
			Overall:           OverallCompilationError,
			CompilationOutput: compileResult.Output,
			TestCaseResults:   []resultparser.Line{},
		}
	}

	buildRunCmd, ok := runCommand[req.Language]
	if !ok {
		return internalError(fmt.Sprintf("no sandbox run command registered for language %q", req.Language))
	}
	image, ok := sandboxImages[req.Language]
	if !ok {
		return internalError(fmt.Sprintf("no sandbox image registered for language %q", req.Language))
	}

	if onRunning != nil {
		onRunning()
	}

	newRunner := o.NewSandboxRunner
	if newRunner == nil {
		newRunner = func(image string) sandboxRunner { return sandbox.NewRunner(image) }
	}
	runner := newRunner(image)

	runResult, err := runner.Run(ctx, submissionID, dir, buildRunCmd(genResult.EntryPoint), nil)
	if err != nil {
		return internalError(fmt.Sprintf("invoke sandbox runner: %v", err))
	}

	lines := resultparser.Parse(runResult.RawLog)

	overall := OverallSuccess
	switch {
	case runResult.TimedOut:
		overall = OverallTimeout
	case runResult.ExitCode != 0:
		overall = OverallRuntimeError
	}

	return ExecutionResult{
		Overall:            overall,
		CompilationOutput:  compileResult.Output,
		RuntimeLog:         runResult.RawLog,
		TestCaseResults:    lines,
		PerTestMemoryBytes: runResult.PerTestMemoryBytes,
	}
}

func internalError(reason string) ExecutionResult {
	logging.Error("execution orchestration failed", map[string]interface{}{
		"subsystem": orchestratorSubsystem,
		"reason":    reason,
	})
	return ExecutionResult{
		Overall:         OverallInternalError,
		RuntimeLog:      reason,
		TestCaseResults: []resultparser.Line{},
	}
}

func writeFiles(dir string, files []harness.File) error {
	for _, f := range files {
		fullPath := filepath.Join(dir, f.Path)
		if err := os.MkdirAll(filepath.Dir(fullPath), 0o755); err != nil {
			return fmt.Errorf("mkdir for %s: %w", f.Path, err)
		}
		if err := os.WriteFile(fullPath, []byte(f.Content), 0o644); err != nil {
			return fmt.Errorf("write %s: %w", f.Path, err)
		}
	}
	return nil
}
