// Package genspec is the shared contract between the harness dispatcher
// and each language back-end (javagen, pygen). It exists purely to break
// the import cycle a back-end would otherwise have with the harness
// package that registers it.
package genspec

import "github.com/entropic-labs/execengine/pkg/engine/model"

// File is one generated source file, relative to the submission's
// temporary root directory.
type File struct {
	Path    string
	Content string
}

// Result is everything the orchestrator needs to compile and run a
// submission: the files to write and the fully qualified entry point to
// invoke (a classpath-qualified class name for Java, a file path for
// Python).
type Result struct {
	Files      []File
	EntryPoint string
}

// Generator produces harness files for one submission.
type Generator interface {
	Generate(req *model.SubmissionRequest, testCases []model.TestCaseInput) (Result, error)
}
