package pygen

import (
	"strings"
	"testing"

	"github.com/entropic-labs/execengine/pkg/engine/model"
)

func TestGenerateFunctionCallProducesExpectedFiles(t *testing.T) {
	req := &model.SubmissionRequest{
		Language:   model.LanguagePython,
		SourceCode: "class Solution:\n    def twoSum(self, nums, target):\n        return [0, 1]",
		Metadata: model.QuestionMetadata{
			PackageName:  "app",
			FunctionName: "twoSum",
			ReturnType:   "int[]",
			QuestionType: model.QuestionTypeFunctionCall,
			Parameters: []model.Parameter{
				{Name: "nums", Type: "int[]"},
				{Name: "target", Type: "int"},
			},
		},
	}
	testCases := []model.TestCaseInput{
		{Values: map[string]interface{}{"nums": []int{2, 7, 11, 15}, "target": 9}},
	}

	result, err := Generator{}.Generate(req, testCases)
	if err != nil {
		t.Fatalf("Generate: %v", err)
	}
	if result.EntryPoint != "app/main.py" {
		t.Errorf("unexpected entry point %q", result.EntryPoint)
	}

	byPath := make(map[string]string)
	for _, f := range result.Files {
		byPath[f.Path] = f.Content
	}
	for _, want := range []string{"app/main.py", "app/support.py", "app/solution.py"} {
		if _, ok := byPath[want]; !ok {
			t.Errorf("expected generated file %q", want)
		}
	}

	main := byPath["app/main.py"]
	if !strings.Contains(main, "TEST_CASE_RESULT:") {
		t.Error("expected main.py to emit the TEST_CASE_RESULT wire line")
	}
	if !strings.Contains(main, "solution.twoSum(arg0, arg1)") {
		t.Error("expected main.py to call the user function with decoded arguments")
	}
}

func TestGenerateOmitsUnrequestedCustomDataStructureImports(t *testing.T) {
	req := &model.SubmissionRequest{
		Language:   model.LanguagePython,
		SourceCode: "class Solution:\n    def solve(self, x):\n        return x",
		Metadata: model.QuestionMetadata{
			PackageName:  "app",
			FunctionName: "solve",
			ReturnType:   "int",
			QuestionType: model.QuestionTypeFunctionCall,
			Parameters:   []model.Parameter{{Name: "x", Type: "int"}},
		},
	}
	result, err := Generator{}.Generate(req, []model.TestCaseInput{{Values: map[string]interface{}{"x": 1}}})
	if err != nil {
		t.Fatalf("Generate: %v", err)
	}
	var solution string
	for _, f := range result.Files {
		if f.Path == "app/solution.py" {
			solution = f.Content
		}
	}
	if strings.Contains(solution, "from support import") {
		t.Errorf("expected no support import when CustomDataStructures is empty, got:\n%s", solution)
	}
}

func TestGenerateSkipsCustomDataStructureAlreadyDefinedByUser(t *testing.T) {
	req := &model.SubmissionRequest{
		Language:   model.LanguagePython,
		SourceCode: "class Node:\n    def __init__(self, val=0):\n        self.val = val\n\nclass Solution:\n    def solve(self, x):\n        return x",
		Metadata: model.QuestionMetadata{
			PackageName:          "app",
			FunctionName:         "solve",
			ReturnType:           "Node",
			QuestionType:         model.QuestionTypeFunctionCall,
			Parameters:           []model.Parameter{{Name: "x", Type: "Node"}},
			CustomDataStructures: []model.CustomDataStructure{model.StructNode, model.StructListNode},
		},
	}
	result, err := Generator{}.Generate(req, []model.TestCaseInput{{Values: map[string]interface{}{"x": 1}}})
	if err != nil {
		t.Fatalf("Generate: %v", err)
	}
	var solution string
	for _, f := range result.Files {
		if f.Path == "app/solution.py" {
			solution = f.Content
		}
	}
	if strings.Contains(solution, "import Node") {
		t.Error("expected Node to be omitted from the support import since the user source already declares class Node")
	}
	if !strings.Contains(solution, "ListNode") {
		t.Error("expected ListNode to still be imported since the user source doesn't declare it")
	}
}

func TestGenerateDesignClassEmitsDollarPrevSubstitution(t *testing.T) {
	req := &model.SubmissionRequest{
		Language: model.LanguagePython,
		Metadata: model.QuestionMetadata{
			PackageName:  "app",
			ClassName:    "LRUCache",
			QuestionType: model.QuestionTypeDesignClass,
		},
	}
	testCases := []model.TestCaseInput{
		{Ops: &model.DesignClassOps{Names: []string{"LRUCache", "get"}, Args: [][]interface{}{{2}, {"$PREV"}}}},
	}

	result, err := Generator{}.Generate(req, testCases)
	if err != nil {
		t.Fatalf("Generate: %v", err)
	}
	var main string
	for _, f := range result.Files {
		if f.Path == "app/main.py" {
			main = f.Content
		}
	}
	if !strings.Contains(main, `"$PREV"`) {
		t.Error("expected generated main.py to special-case the $PREV argument literal")
	}
}
