package harness

import (
	"fmt"

	"github.com/entropic-labs/execengine/pkg/engine/harness/genspec"
	"github.com/entropic-labs/execengine/pkg/engine/harness/javagen"
	"github.com/entropic-labs/execengine/pkg/engine/harness/pygen"
	"github.com/entropic-labs/execengine/pkg/engine/model"
)

// File and Result alias the shared genspec shapes so callers outside the
// harness tree only ever need to import this package.
type File = genspec.File
type Result = genspec.Result

// registry is a constant per-language factory table rather than a
// runtime dependency-injection container, since the set of supported
// languages is fixed at build time.
var registry = map[model.Language]genspec.Generator{
	model.LanguageJava:   javagen.Generator{},
	model.LanguagePython: pygen.Generator{},
}

// Generate dispatches to the generator registered for req.Language.
func Generate(req *model.SubmissionRequest, testCases []model.TestCaseInput) (Result, error) {
	gen, ok := registry[req.Language]
	if !ok {
		return Result{}, fmt.Errorf("harness: unsupported language %q", req.Language)
	}
	return gen.Generate(req, testCases)
}
