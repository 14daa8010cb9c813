package javagen

import (
	"strings"
	"testing"

	"github.com/entropic-labs/execengine/pkg/engine/model"
)

func TestGenerateFunctionCallProducesExpectedFiles(t *testing.T) {
	req := &model.SubmissionRequest{
		Language:   model.LanguageJava,
		SourceCode: "class Solution {\n    public int[] twoSum(int[] nums, int target) {\n        return new int[]{0, 1};\n    }\n}",
		Metadata: model.QuestionMetadata{
			PackageName:  "harness",
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
	if result.EntryPoint != "harness.Main" {
		t.Errorf("unexpected entry point %q", result.EntryPoint)
	}

	byPath := make(map[string]string)
	for _, f := range result.Files {
		byPath[f.Path] = f.Content
	}
	for _, want := range []string{"harness/Main.java", "harness/Support.java", "harness/Solution.java"} {
		if _, ok := byPath[want]; !ok {
			t.Errorf("expected generated file %q", want)
		}
	}

	main := byPath["harness/Main.java"]
	if !strings.Contains(main, "TEST_CASE_RESULT:") {
		t.Error("expected Main.java to emit the TEST_CASE_RESULT wire line")
	}
	if !strings.Contains(main, "solution.twoSum(arg0, arg1)") {
		t.Error("expected Main.java to call the user function with decoded arguments")
	}
	if !strings.Contains(main, "Support.decodeIntArray") {
		t.Error("expected Main.java to decode the int[] parameter via Support")
	}
}

func TestGenerateDesignClassUsesClassNameFile(t *testing.T) {
	req := &model.SubmissionRequest{
		Language:   model.LanguageJava,
		SourceCode: "class LRUCache {\n    public LRUCache(int capacity) {}\n}",
		Metadata: model.QuestionMetadata{
			PackageName:  "harness",
			ClassName:    "LRUCache",
			QuestionType: model.QuestionTypeDesignClass,
		},
	}
	testCases := []model.TestCaseInput{
		{Ops: &model.DesignClassOps{
			Names: []string{"LRUCache", "put", "get"},
			Args:  [][]interface{}{{2}, {1, 1}, {1}},
		}},
	}

	result, err := Generator{}.Generate(req, testCases)
	if err != nil {
		t.Fatalf("Generate: %v", err)
	}

	foundClassFile := false
	for _, f := range result.Files {
		if f.Path == "harness/LRUCache.java" {
			foundClassFile = true
		}
	}
	if !foundClassFile {
		t.Error("expected the user source to be written under the class name, not Solution.java")
	}
}

func TestGenerateOmitsUnrequestedCustomDataStructures(t *testing.T) {
	req := &model.SubmissionRequest{
		Language:   model.LanguageJava,
		SourceCode: "class Solution {\n    public int solve(int x) {\n        return x;\n    }\n}",
		Metadata: model.QuestionMetadata{
			PackageName:  "harness",
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
	for _, f := range result.Files {
		if f.Path == "harness/ListNode.java" || f.Path == "harness/TreeNode.java" || f.Path == "harness/Node.java" {
			t.Errorf("expected no custom data structure file when CustomDataStructures is empty, got %q", f.Path)
		}
	}
}

func TestGenerateSkipsCustomDataStructureAlreadyDefinedByUser(t *testing.T) {
	req := &model.SubmissionRequest{
		Language:   model.LanguageJava,
		SourceCode: "class Node {\n    int val;\n}\n\nclass Solution {\n    public Node solve(Node x) {\n        return x;\n    }\n}",
		Metadata: model.QuestionMetadata{
			PackageName:          "harness",
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
	var sawNode, sawListNode bool
	for _, f := range result.Files {
		if f.Path == "harness/Node.java" {
			sawNode = true
		}
		if f.Path == "harness/ListNode.java" {
			sawListNode = true
		}
	}
	if sawNode {
		t.Error("expected Node.java to be skipped since the user source already declares class Node")
	}
	if !sawListNode {
		t.Error("expected ListNode.java to still be generated since the user source doesn't declare it")
	}
}

func TestGenerateVoidMutationEncodesMutationTarget(t *testing.T) {
	target := 0
	req := &model.SubmissionRequest{
		Language: model.LanguageJava,
		Metadata: model.QuestionMetadata{
			PackageName:    "harness",
			FunctionName:   "reorderList",
			ReturnType:     "void",
			MutationTarget: &target,
			QuestionType:   model.QuestionTypeFunctionCall,
			Parameters:     []model.Parameter{{Name: "head", Type: "ListNode"}},
		},
	}
	result, err := Generator{}.Generate(req, []model.TestCaseInput{{Values: map[string]interface{}{"head": []int{1, 2, 3, 4}}}})
	if err != nil {
		t.Fatalf("Generate: %v", err)
	}
	var main string
	for _, f := range result.Files {
		if f.Path == "harness/Main.java" {
			main = f.Content
		}
	}
	if !strings.Contains(main, "Support.encodeListNode(arg0)") {
		t.Errorf("expected mutation target arg0 to be encoded after the void call, got:\n%s", main)
	}
}
