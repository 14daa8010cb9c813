package harness

import (
	"testing"

	"github.com/entropic-labs/execengine/pkg/engine/model"
)

func TestGenerateDispatchesByLanguage(t *testing.T) {
	javaReq := &model.SubmissionRequest{
		Language: model.LanguageJava,
		Metadata: model.QuestionMetadata{
			PackageName:  "harness",
			FunctionName: "solve",
			ReturnType:   "int",
			QuestionType: model.QuestionTypeFunctionCall,
		},
	}
	result, err := Generate(javaReq, []model.TestCaseInput{{Values: map[string]interface{}{}}})
	if err != nil {
		t.Fatalf("Generate(java): %v", err)
	}
	if result.EntryPoint != "harness.Main" {
		t.Errorf("unexpected java entry point %q", result.EntryPoint)
	}

	pyReq := &model.SubmissionRequest{
		Language: model.LanguagePython,
		Metadata: model.QuestionMetadata{
			PackageName:  "app",
			FunctionName: "solve",
			ReturnType:   "int",
			QuestionType: model.QuestionTypeFunctionCall,
		},
	}
	result, err = Generate(pyReq, []model.TestCaseInput{{Values: map[string]interface{}{}}})
	if err != nil {
		t.Fatalf("Generate(python): %v", err)
	}
	if result.EntryPoint != "app/main.py" {
		t.Errorf("unexpected python entry point %q", result.EntryPoint)
	}
}

func TestGenerateRejectsUnknownLanguage(t *testing.T) {
	req := &model.SubmissionRequest{Language: model.Language("cobol")}
	if _, err := Generate(req, nil); err == nil {
		t.Error("expected an error for an unregistered language")
	}
}
