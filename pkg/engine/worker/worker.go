// Package worker implements the persistent drain loop that pulls queued
// submissions and runs them through the orchestrator, plus the
// supervisor that starts and gracefully stops a fixed pool of them.
package worker

import (
	"context"
	"fmt"
	"time"

	"github.com/entropic-labs/execengine/pkg/engine/model"
	"github.com/entropic-labs/execengine/pkg/engine/orchestrator"
	"github.com/entropic-labs/execengine/pkg/engine/queue"
	"github.com/entropic-labs/execengine/pkg/infrastructure/logging"
)

const workerSubsystem = "Worker"

// Executor is the subset of *orchestrator.Orchestrator a Worker depends
// on, narrowed to an interface so tests can substitute a fake run.
// onRunning is invoked once, right before the sandbox container starts,
// so the worker can record the RUNNING transition at the right moment.
type Executor interface {
	Run(ctx context.Context, submissionID string, req *model.SubmissionRequest, onRunning func()) orchestrator.ExecutionResult
}

// Worker drains one queue.Store in an unbounded loop, running each
// submission it dequeues through an Executor and writing the resulting
// status. A Worker never propagates a panic or error out of its loop: a
// single submission's failure is contained to that submission's status.
type Worker struct {
	ID          string
	Store       queue.Store
	Executor    Executor
	PollTimeout time.Duration
}

// Run blocks, draining w.Store, until ctx is canceled.
func (w *Worker) Run(ctx context.Context) {
	pollTimeout := w.PollTimeout
	if pollTimeout <= 0 {
		pollTimeout = 5 * time.Second
	}

	for {
		if ctx.Err() != nil {
			return
		}

		req, ok, err := w.Store.DequeueBlocking(ctx, pollTimeout)
		if err != nil {
			if ctx.Err() != nil {
				return
			}
			logging.Error("dequeue failed", map[string]interface{}{
				"subsystem": workerSubsystem,
				"workerId":  w.ID,
				"error":     err.Error(),
			})
			continue
		}
		if !ok {
			continue
		}

		w.processSafely(ctx, req)
	}
}

// processSafely wraps process in a recover() so a programming error deep
// in harness generation or result parsing degrades one submission to
// FAILED/INTERNAL_ERROR instead of killing the worker goroutine.
func (w *Worker) processSafely(ctx context.Context, req *model.SubmissionRequest) {
	defer func() {
		if r := recover(); r != nil {
			logging.Error("worker panic recovered", map[string]interface{}{
				"subsystem":    workerSubsystem,
				"workerId":     w.ID,
				"submissionId": req.ID,
				"panic":        fmt.Sprintf("%v", r),
			})
			w.writeFailure(ctx, req.ID, "INTERNAL_ERROR")
		}
	}()

	w.process(ctx, req)
}

func (w *Worker) process(ctx context.Context, req *model.SubmissionRequest) {
	if req.Metadata.IsEmpty() {
		w.writeFailure(ctx, req.ID, "Missing execution metadata")
		return
	}

	startedStatus, ok, err := w.Store.GetStatus(ctx, req.ID)
	if err != nil || !ok || startedStatus == nil {
		startedStatus = model.NewQueuedStatus(req.ID)
	}
	startedStatus.Status = model.StatusCompiling
	startedStatus.StartedAt = model.NowMillis()
	startedStatus.WorkerID = w.ID
	if err := w.Store.SetStatus(ctx, startedStatus); err != nil {
		logging.Error("failed to write COMPILING status", map[string]interface{}{
			"subsystem":    workerSubsystem,
			"workerId":     w.ID,
			"submissionId": req.ID,
			"error":        err.Error(),
		})
	}

	onRunning := func() {
		startedStatus.Status = model.StatusRunning
		if err := w.Store.SetStatus(ctx, startedStatus); err != nil {
			logging.Error("failed to write RUNNING status", map[string]interface{}{
				"subsystem":    workerSubsystem,
				"workerId":     w.ID,
				"submissionId": req.ID,
				"error":        err.Error(),
			})
		}
	}

	result := w.Executor.Run(ctx, req.ID, req, onRunning)

	final := mapResult(req.ID, w.ID, startedStatus.QueuedAt, startedStatus.StartedAt, req.AllTestCases(), result)
	if err := w.Store.SetStatus(ctx, final); err != nil {
		logging.Error("failed to write final status", map[string]interface{}{
			"subsystem":    workerSubsystem,
			"workerId":     w.ID,
			"submissionId": req.ID,
			"error":        err.Error(),
		})
	}
}

func (w *Worker) writeFailure(ctx context.Context, submissionID, reason string) {
	status := model.NewQueuedStatus(submissionID)
	status.Status = model.StatusFailed
	errMsg := reason
	status.ErrorMessage = &errMsg
	status.CompletedAt = model.NowMillis()
	status.WorkerID = w.ID
	if err := w.Store.SetStatus(ctx, status); err != nil {
		logging.Error("failed to write failure status", map[string]interface{}{
			"subsystem":    workerSubsystem,
			"workerId":     w.ID,
			"submissionId": submissionID,
			"error":        err.Error(),
		})
	}
}

// mapResult implements the mapping from an internal
// ExecutionResult to the caller-visible status shape.
func mapResult(submissionID, workerID string, queuedAt, startedAt int64, testCases []model.TestCaseInput, result orchestrator.ExecutionResult) *model.SubmissionStatus {
	status := &model.SubmissionStatus{
		SubmissionID: submissionID,
		QueuedAt:     queuedAt,
		StartedAt:    startedAt,
		CompletedAt:  model.NowMillis(),
		WorkerID:     workerID,
	}

	switch result.Overall {
	case orchestrator.OverallCompilationError:
		status.Status = model.StatusFailed
		msg := string(model.ErrorCompilation)
		status.ErrorMessage = &msg
		output := result.CompilationOutput
		status.CompilationOutput = &output
		status.TestCaseResults = []model.TestCaseResult{}
		return status
	case orchestrator.OverallInternalError:
		status.Status = model.StatusFailed
		msg := string(model.ErrorInternal)
		status.ErrorMessage = &msg
		status.TestCaseResults = []model.TestCaseResult{}
		return status
	}

	status.Status = model.StatusCompleted
	switch result.Overall {
	case orchestrator.OverallTimeout:
		msg := string(model.ErrorTimeLimitExceeded)
		status.ErrorMessage = &msg
	case orchestrator.OverallRuntimeError:
		msg := string(model.ErrorRuntime)
		status.ErrorMessage = &msg
	}

	testCaseResults := make([]model.TestCaseResult, 0, len(result.TestCaseResults))
	var runtimeMs int64
	var peakMemory int64
	var sawMemory bool

	for _, line := range result.TestCaseResults {
		tcResult := model.TestCaseResult{
			Index:           line.Index,
			ActualOutput:    line.Output,
			ExecutionTimeMs: line.DurationMs,
			ErrorType:       line.ErrorType,
			Error:           line.ErrorMessage,
		}
		if result.PerTestMemoryBytes > 0 {
			mem := result.PerTestMemoryBytes
			tcResult.MemoryBytes = &mem
			sawMemory = true
			if mem > peakMemory {
				peakMemory = mem
			}
		}
		if line.Index >= 0 && line.Index < len(testCases) {
			tcResult.IsCustom = testCases[line.Index].IsCustom
		}
		runtimeMs += line.DurationMs
		testCaseResults = append(testCaseResults, tcResult)
	}

	status.TestCaseResults = testCaseResults
	status.RuntimeMs = runtimeMs
	if sawMemory {
		kb := peakMemory / 1024
		status.MemoryKb = &kb
	}

	return status
}
