package worker

import (
	"context"
	"testing"
	"time"

	"github.com/entropic-labs/execengine/pkg/engine/model"
	"github.com/entropic-labs/execengine/pkg/engine/orchestrator"
	"github.com/entropic-labs/execengine/pkg/engine/queue"
	"github.com/entropic-labs/execengine/pkg/engine/resultparser"
)

type fakeExecutor struct {
	result orchestrator.ExecutionResult
}

func (f fakeExecutor) Run(ctx context.Context, submissionID string, req *model.SubmissionRequest, onRunning func()) orchestrator.ExecutionResult {
	if onRunning != nil {
		onRunning()
	}
	return f.result
}

func validRequest() *model.SubmissionRequest {
	return &model.SubmissionRequest{
		Language: model.LanguagePython,
		Metadata: model.QuestionMetadata{
			PackageName:  "app",
			FunctionName: "add",
			QuestionType: model.QuestionTypeFunctionCall,
		},
		TestCases: []model.TestCaseInput{{Values: map[string]interface{}{"a": 1}}},
	}
}

func TestProcessWritesFailedForMissingMetadata(t *testing.T) {
	store := queue.NewInMemoryStore(queue.Config{})
	req := &model.SubmissionRequest{Language: model.LanguagePython}
	id, err := store.Enqueue(context.Background(), req)
	if err != nil {
		t.Fatalf("Enqueue: %v", err)
	}

	w := &Worker{ID: "worker-0", Store: store, Executor: fakeExecutor{}}
	w.process(context.Background(), req)

	status, ok, err := store.GetStatus(context.Background(), id)
	if err != nil || !ok {
		t.Fatalf("GetStatus: ok=%v err=%v", ok, err)
	}
	if status.Status != model.StatusFailed {
		t.Errorf("expected FAILED, got %v", status.Status)
	}
	if status.ErrorMessage == nil || *status.ErrorMessage != "Missing execution metadata" {
		t.Errorf("unexpected error message: %v", status.ErrorMessage)
	}
}

func TestProcessMapsCompilationErrorToFailed(t *testing.T) {
	store := queue.NewInMemoryStore(queue.Config{})
	req := validRequest()
	id, err := store.Enqueue(context.Background(), req)
	if err != nil {
		t.Fatalf("Enqueue: %v", err)
	}
	req.ID = id

	w := &Worker{ID: "worker-0", Store: store, Executor: fakeExecutor{result: orchestrator.ExecutionResult{
		Overall:           orchestrator.OverallCompilationError,
		CompilationOutput: "syntax error on line 3",
	}}}
	w.process(context.Background(), req)

	status, ok, err := store.GetStatus(context.Background(), id)
	if err != nil || !ok {
		t.Fatalf("GetStatus: ok=%v err=%v", ok, err)
	}
	if status.Status != model.StatusFailed {
		t.Errorf("expected FAILED, got %v", status.Status)
	}
	if status.ErrorMessage == nil || *status.ErrorMessage != "COMPILATION_ERROR" {
		t.Errorf("unexpected error message: %v", status.ErrorMessage)
	}
	if len(status.TestCaseResults) != 0 {
		t.Errorf("expected no test case results, got %d", len(status.TestCaseResults))
	}
}

func TestProcessMapsSuccessAndComputesAggregates(t *testing.T) {
	store := queue.NewInMemoryStore(queue.Config{})
	req := validRequest()
	id, err := store.Enqueue(context.Background(), req)
	if err != nil {
		t.Fatalf("Enqueue: %v", err)
	}
	req.ID = id

	output := "42"
	w := &Worker{ID: "worker-0", Store: store, Executor: fakeExecutor{result: orchestrator.ExecutionResult{
		Overall:         orchestrator.OverallSuccess,
		TestCaseResults: []resultparser.Line{{Index: 0, Output: &output, DurationMs: 12}},
	}}}
	w.process(context.Background(), req)

	status, ok, err := store.GetStatus(context.Background(), id)
	if err != nil || !ok {
		t.Fatalf("GetStatus: ok=%v err=%v", ok, err)
	}
	if status.Status != model.StatusCompleted {
		t.Errorf("expected COMPLETED, got %v", status.Status)
	}
	if status.ErrorMessage != nil {
		t.Errorf("expected no error message on success, got %v", *status.ErrorMessage)
	}
	if status.RuntimeMs != 12 {
		t.Errorf("expected runtimeMs 12, got %d", status.RuntimeMs)
	}
}

type observingExecutor struct {
	store      queue.Store
	id         string
	seenStatus model.Status
}

func (o *observingExecutor) Run(ctx context.Context, submissionID string, req *model.SubmissionRequest, onRunning func()) orchestrator.ExecutionResult {
	onRunning()
	status, ok, err := o.store.GetStatus(ctx, o.id)
	if err == nil && ok {
		o.seenStatus = status.Status
	}
	return orchestrator.ExecutionResult{Overall: orchestrator.OverallSuccess}
}

func TestProcessWritesRunningBeforeSandboxStarts(t *testing.T) {
	store := queue.NewInMemoryStore(queue.Config{})
	req := validRequest()
	id, err := store.Enqueue(context.Background(), req)
	if err != nil {
		t.Fatalf("Enqueue: %v", err)
	}
	req.ID = id

	exec := &observingExecutor{store: store, id: id}
	w := &Worker{ID: "worker-0", Store: store, Executor: exec}
	w.process(context.Background(), req)

	if exec.seenStatus != model.StatusRunning {
		t.Errorf("expected RUNNING to be visible to the store before the sandbox starts, got %v", exec.seenStatus)
	}
}

func TestWorkerPanicIsContainedToFailedStatus(t *testing.T) {
	store := queue.NewInMemoryStore(queue.Config{})
	req := validRequest()
	id, err := store.Enqueue(context.Background(), req)
	if err != nil {
		t.Fatalf("Enqueue: %v", err)
	}
	req.ID = id

	w := &Worker{ID: "worker-0", Store: store, Executor: panickingExecutor{}}
	w.processSafely(context.Background(), req)

	status, ok, err := store.GetStatus(context.Background(), id)
	if err != nil || !ok {
		t.Fatalf("GetStatus: ok=%v err=%v", ok, err)
	}
	if status.Status != model.StatusFailed {
		t.Errorf("expected FAILED after a recovered panic, got %v", status.Status)
	}
}

type panickingExecutor struct{}

func (panickingExecutor) Run(ctx context.Context, submissionID string, req *model.SubmissionRequest, onRunning func()) orchestrator.ExecutionResult {
	panic("boom")
}

func TestSupervisorStartAndShutdown(t *testing.T) {
	store := queue.NewInMemoryStore(queue.Config{})
	sup := NewSupervisor(store, SupervisorConfig{WorkerCount: 2, PollTimeout: 50 * time.Millisecond, ShutdownGracePeriod: time.Second})

	if err := sup.Start(); err != nil {
		t.Fatalf("Start: %v", err)
	}
	time.Sleep(20 * time.Millisecond)
	if sup.ActiveWorkers() != 2 {
		t.Errorf("expected 2 active workers, got %d", sup.ActiveWorkers())
	}
	if err := sup.Shutdown(); err != nil {
		t.Fatalf("Shutdown: %v", err)
	}
}
