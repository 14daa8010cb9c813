// Package model holds the data shapes shared across the submission intake,
// queue, worker, and orchestrator layers of the execution engine.
package model

import "time"

// Language is the closed set of source languages the engine accepts.
type Language string

const (
	LanguageJava   Language = "java"
	LanguagePython Language = "python"
)

// QuestionType distinguishes a single-function submission from one that
// exercises a user-defined class through a sequence of operations.
type QuestionType string

const (
	QuestionTypeFunctionCall QuestionType = "FUNCTION_CALL"
	QuestionTypeDesignClass  QuestionType = "DESIGN_CLASS"
)

// SerializationStrategy hints at how a mutation-target parameter should be
// rendered after a void function returns.
type SerializationStrategy string

const (
	SerializationArray      SerializationStrategy = "ARRAY"
	SerializationLevelOrder SerializationStrategy = "LEVEL_ORDER"
	SerializationJSON       SerializationStrategy = "JSON"
)

// CustomDataStructure names a structural type the harness must provide a
// decoder/encoder for.
type CustomDataStructure string

const (
	StructListNode CustomDataStructure = "ListNode"
	StructTreeNode CustomDataStructure = "TreeNode"
	StructNode     CustomDataStructure = "Node"
)

// Parameter is one named, typed argument of the user's solution function.
type Parameter struct {
	Name string `json:"name"`
	Type string `json:"type"`
}

// QuestionMetadata describes the shape of the problem a submission answers.
type QuestionMetadata struct {
	PackageName           string                 `json:"packageName"`
	FunctionName           string                 `json:"functionName"`
	ClassName             string                 `json:"className,omitempty"`
	ReturnType             string                 `json:"returnType"`
	Parameters             []Parameter            `json:"parameters"`
	CustomDataStructures   []CustomDataStructure  `json:"customDataStructures,omitempty"`
	QuestionType           QuestionType           `json:"questionType"`
	MutationTarget         *int                   `json:"mutationTarget,omitempty"`
	SerializationStrategy  SerializationStrategy  `json:"serializationStrategy,omitempty"`
}

// IsEmpty reports whether the metadata is missing the fields a worker needs
// to build a harness from it.
func (q *QuestionMetadata) IsEmpty() bool {
	return q == nil || q.FunctionName == "" || q.PackageName == ""
}

// TestCaseInput is one mapping of parameter name to JSON value that the
// harness will feed to the user's function, or — for a DESIGN_CLASS
// question — the two-array operation sequence in Ops (JSON key "ops").
type TestCaseInput struct {
	Values   map[string]interface{} `json:"values,omitempty"`
	Ops      *DesignClassOps        `json:"ops,omitempty"`
	IsCustom bool                   `json:"isCustom,omitempty"`
}

// DesignClassOps is the `[[opNames...],[opArgs...]]` input shape for a
// DESIGN_CLASS question.
type DesignClassOps struct {
	Names []string          `json:"names"`
	Args  [][]interface{}   `json:"args"`
}

// SubmissionRequest is the caller-supplied job.
type SubmissionRequest struct {
	ID               string            `json:"id,omitempty"`
	Language         Language          `json:"language"`
	SourceCode       string            `json:"sourceCode"`
	Metadata         QuestionMetadata  `json:"metadata"`
	TestCases        []TestCaseInput   `json:"testCases"`
	CustomTestCases  []TestCaseInput   `json:"customTestCases,omitempty"`
}

// Status is the lifecycle state of a submission.
type Status string

const (
	StatusQueued    Status = "QUEUED"
	StatusCompiling Status = "COMPILING"
	StatusRunning   Status = "RUNNING"
	StatusCompleted Status = "COMPLETED"
	StatusFailed    Status = "FAILED"
	StatusCancelled Status = "CANCELLED"
)

// ErrorCategory is the engine-level error taxonomy surfaced on a terminal
// status when the engine, rather than the user's code, is at fault.
type ErrorCategory string

const (
	ErrorCompilation      ErrorCategory = "COMPILATION_ERROR"
	ErrorTimeLimitExceeded ErrorCategory = "TIME_LIMIT_EXCEEDED"
	ErrorRuntime          ErrorCategory = "RUNTIME_ERROR"
	ErrorInternal         ErrorCategory = "INTERNAL_ERROR"
)

// TestCaseResult mirrors one input's execution outcome. passed is always
// nil: the engine never judges correctness.
type TestCaseResult struct {
	Index           int     `json:"index"`
	Passed          *bool   `json:"passed"`
	ActualOutput    *string `json:"actualOutput"`
	ExecutionTimeMs int64   `json:"executionTimeMs"`
	MemoryBytes     *int64  `json:"memoryBytes"`
	Error           *string `json:"error"`
	ErrorType       *string `json:"errorType"`
	IsCustom        bool    `json:"isCustom"`
}

// SubmissionStatus is the caller-visible record for one submission.
type SubmissionStatus struct {
	SubmissionID       string            `json:"submissionId"`
	Status             Status            `json:"status"`
	Verdict            *string           `json:"verdict"`
	RuntimeMs          int64             `json:"runtimeMs"`
	MemoryKb           *int64            `json:"memoryKb"`
	ErrorMessage       *string           `json:"errorMessage,omitempty"`
	CompilationOutput  *string           `json:"compilationOutput,omitempty"`
	TestCaseResults    []TestCaseResult  `json:"testCaseResults"`
	QueuedAt           int64             `json:"queuedAt"`
	StartedAt          int64             `json:"startedAt,omitempty"`
	CompletedAt        int64             `json:"completedAt,omitempty"`
	WorkerID           string            `json:"workerId,omitempty"`
}

// NowMillis returns the current time as epoch milliseconds, the timestamp
// unit used throughout SubmissionStatus.
func NowMillis() int64 {
	return time.Now().UnixMilli()
}

// NewQueuedStatus builds the initial status record written at enqueue time.
func NewQueuedStatus(submissionID string) *SubmissionStatus {
	return &SubmissionStatus{
		SubmissionID:    submissionID,
		Status:          StatusQueued,
		TestCaseResults: []TestCaseResult{},
		QueuedAt:        NowMillis(),
	}
}

// AllTestCases returns the official cases followed by the custom cases,
// tagged with IsCustom, in the order the engine must preserve end-to-end.
func (r *SubmissionRequest) AllTestCases() []TestCaseInput {
	all := make([]TestCaseInput, 0, len(r.TestCases)+len(r.CustomTestCases))
	for _, tc := range r.TestCases {
		tc.IsCustom = false
		all = append(all, tc)
	}
	for _, tc := range r.CustomTestCases {
		tc.IsCustom = true
		all = append(all, tc)
	}
	return all
}
