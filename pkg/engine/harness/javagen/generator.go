// Package javagen is the Java back-end for harness generation: it lays
// out a package directory containing a generated Main entry point, the
// fixed runtime support library, the custom data structure classes, and
// the user's own submitted source.
package javagen

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/entropic-labs/execengine/pkg/engine/harness/genspec"
	"github.com/entropic-labs/execengine/pkg/engine/model"
)

// Generator implements genspec.Generator for Java submissions.
type Generator struct{}

// Generate lays out the Java package directory: Main, the
// support library, the custom data structure classes, and the user's own
// source, re-packaged under the harness package.
func (Generator) Generate(req *model.SubmissionRequest, testCases []model.TestCaseInput) (genspec.Result, error) {
	meta := req.Metadata
	packageDir := strings.ReplaceAll(meta.PackageName, ".", "/")
	if packageDir == "" {
		packageDir = "harness"
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

	userFileName := "Solution"
	if meta.QuestionType == model.QuestionTypeDesignClass && meta.ClassName != "" {
		userFileName = meta.ClassName
	}

	imports, body := hoistJavaImports(req.SourceCode)
	userSource := renderUserSource(imports, body)

	files := []genspec.File{
		{Path: packageDir + "/Main.java", Content: main},
		{Path: packageDir + "/Support.java", Content: supportSource},
		{Path: packageDir + "/DesignClassRunner.java", Content: designClassRunnerSource},
	}
	files = append(files, customDataStructureFiles(packageDir, meta.CustomDataStructures, req.SourceCode)...)
	files = append(files, genspec.File{Path: packageDir + "/" + userFileName + ".java", Content: userSource})

	return genspec.Result{Files: files, EntryPoint: "harness.Main"}, nil
}

// javaClassDecl matches a top-level class declaration for name, tolerating
// modifiers (public, final, static) before the "class" keyword.
func javaClassDecl(name string) *regexp.Regexp {
	return regexp.MustCompile(`(?m)^\s*(?:public\s+|final\s+|static\s+)*class\s+` + regexp.QuoteMeta(name) + `\b`)
}

// customDataStructureFiles emits support files only for the structures
// meta.CustomDataStructures actually declares, and only when the user's
// own source doesn't already define a top-level class of that name —
// emitting both would hand javac two definitions of the same class.
func customDataStructureFiles(packageDir string, needed []model.CustomDataStructure, userSource string) []genspec.File {
	var files []genspec.File
	for _, s := range needed {
		var fileName, content string
		switch s {
		case model.StructListNode:
			fileName, content = "ListNode.java", listNodeSource
		case model.StructTreeNode:
			fileName, content = "TreeNode.java", treeNodeSource
		case model.StructNode:
			fileName, content = "Node.java", graphNodeSource
		default:
			continue
		}
		if javaClassDecl(string(s)).MatchString(userSource) {
			continue
		}
		files = append(files, genspec.File{Path: packageDir + "/" + fileName, Content: content})
	}
	return files
}

// hoistJavaImports splits user-declared imports from the body so they can
// be re-emitted at the top of the file, after the mandatory package
// declaration. The user's own package declaration, if any, is
// dropped: every generated file lives in the harness package.
func hoistJavaImports(source string) (imports []string, body string) {
	seen := make(map[string]bool)
	var bodyLines []string
	for _, line := range strings.Split(source, "\n") {
		trimmed := strings.TrimSpace(line)
		if strings.HasPrefix(trimmed, "import ") {
			if !seen[trimmed] {
				seen[trimmed] = true
				imports = append(imports, trimmed)
			}
			continue
		}
		if strings.HasPrefix(trimmed, "package ") {
			continue
		}
		bodyLines = append(bodyLines, line)
	}
	return imports, strings.Join(bodyLines, "\n")
}

// commonImports are always hoisted so user code can reference the
// standard containers without declaring them.
var commonImports = []string{"import java.util.*;"}

func renderUserSource(userImports []string, body string) string {
	var b strings.Builder
	fmt.Fprintf(&b, "package harness;\n\n")
	for _, imp := range commonImports {
		fmt.Fprintf(&b, "%s\n", imp)
	}
	for _, imp := range userImports {
		fmt.Fprintf(&b, "%s\n", imp)
	}
	fmt.Fprintf(&b, "\n%s\n", strings.TrimRight(body, "\n"))
	return b.String()
}
