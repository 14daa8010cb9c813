// Package pygen is the Python back-end for harness generation. Python
// needs no compiler driver step and no typed local declarations, so its
// generated code is considerably smaller than javagen's, but follows the
// same file-layout and wire-protocol rules.
package pygen

import (
	"regexp"
	"strings"

	"github.com/entropic-labs/execengine/pkg/engine/harness/genspec"
	"github.com/entropic-labs/execengine/pkg/engine/model"
)

// Generator implements genspec.Generator for Python submissions.
type Generator struct{}

func (Generator) Generate(req *model.SubmissionRequest, testCases []model.TestCaseInput) (genspec.Result, error) {
	meta := req.Metadata
	packageDir := strings.ReplaceAll(meta.PackageName, ".", "/")
	if packageDir == "" {
		packageDir = "app"
	}

	var main string
	var err error
	switch meta.QuestionType {
	case model.QuestionTypeDesignClass:
		main, err = buildDesignClassMain(req, testCases)
	default:
		main, err = buildFunctionCallMain(req, testCases)
	}
	if err != nil {
		return genspec.Result{}, err
	}

	userImports, body := hoistPythonImports(req.SourceCode)
	userSource := renderUserSource(userImports, body, meta.CustomDataStructures, req.SourceCode)

	files := []genspec.File{
		{Path: packageDir + "/main.py", Content: main},
		{Path: packageDir + "/support.py", Content: supportSource},
		{Path: packageDir + "/solution.py", Content: userSource},
	}

	return genspec.Result{Files: files, EntryPoint: packageDir + "/main.py"}, nil
}

// hoistPythonImports separates user-declared imports from the body.
// Python resolves imports at module scope regardless of position, so
// back-end generators don't strictly need to relocate them, but doing so
// keeps the emitted file's shape consistent with javagen's layout.
func hoistPythonImports(source string) (imports []string, body string) {
	seen := make(map[string]bool)
	var bodyLines []string
	for _, line := range strings.Split(source, "\n") {
		trimmed := strings.TrimSpace(line)
		if strings.HasPrefix(trimmed, "import ") || strings.HasPrefix(trimmed, "from ") {
			if !seen[trimmed] {
				seen[trimmed] = true
				imports = append(imports, trimmed)
			}
			continue
		}
		bodyLines = append(bodyLines, line)
	}
	return imports, strings.Join(bodyLines, "\n")
}

// pythonClassDecl matches a top-level "class <name>" or "class <name>(...)"
// declaration, the two forms a user submission can use to define its own
// version of a structure the harness would otherwise provide.
func pythonClassDecl(name string) *regexp.Regexp {
	return regexp.MustCompile(`(?m)^class\s+` + regexp.QuoteMeta(name) + `\s*[:(]`)
}

// supportNames maps a CustomDataStructure to the class support.py exports
// for it.
var supportNames = map[model.CustomDataStructure]string{
	model.StructListNode: "ListNode",
	model.StructTreeNode: "TreeNode",
	model.StructNode:     "Node",
}

func renderUserSource(userImports []string, body string, needed []model.CustomDataStructure, userSource string) string {
	var b strings.Builder
	b.WriteString("from typing import List, Optional\n")

	var toImport []string
	for _, s := range needed {
		name, ok := supportNames[s]
		if !ok || pythonClassDecl(name).MatchString(userSource) {
			continue
		}
		toImport = append(toImport, name)
	}
	if len(toImport) > 0 {
		b.WriteString("from support import " + strings.Join(toImport, ", ") + "\n")
	}

	for _, imp := range userImports {
		b.WriteString(imp)
		b.WriteString("\n")
	}
	b.WriteString("\n")
	b.WriteString(strings.TrimRight(body, "\n"))
	b.WriteString("\n")
	return b.String()
}
