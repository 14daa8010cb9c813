package api

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gorilla/mux"

	"github.com/entropic-labs/execengine/pkg/engine/model"
	"github.com/entropic-labs/execengine/pkg/engine/queue"
)

func newTestServer() (*Server, *mux.Router) {
	store := queue.NewInMemoryStore(queue.Config{})
	s := NewServer(store, fakeHealthReporter{active: 3})
	router := mux.NewRouter()
	s.Routes(router)
	return s, router
}

type fakeHealthReporter struct{ active int }

func (f fakeHealthReporter) ActiveWorkers() int { return f.active }

func TestSubmitRejectsUnsupportedLanguage(t *testing.T) {
	_, router := newTestServer()
	body, _ := json.Marshal(model.SubmissionRequest{Language: "cobol"})
	req := httptest.NewRequest(http.MethodPost, "/submit", bytes.NewReader(body))
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	if rec.Code != http.StatusBadRequest {
		t.Errorf("expected 400, got %d", rec.Code)
	}
}

func TestSubmitRejectsEmptyTestCases(t *testing.T) {
	_, router := newTestServer()
	body, _ := json.Marshal(model.SubmissionRequest{
		Language: model.LanguagePython,
		Metadata: model.QuestionMetadata{FunctionName: "solve"},
	})
	req := httptest.NewRequest(http.MethodPost, "/submit", bytes.NewReader(body))
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	if rec.Code != http.StatusBadRequest {
		t.Errorf("expected 400, got %d", rec.Code)
	}
}

func TestSubmitThenStatusRoundTrip(t *testing.T) {
	_, router := newTestServer()
	body, _ := json.Marshal(model.SubmissionRequest{
		Language: model.LanguagePython,
		Metadata: model.QuestionMetadata{FunctionName: "solve"},
		TestCases: []model.TestCaseInput{
			{Values: map[string]interface{}{"x": 1}},
		},
	})
	submitReq := httptest.NewRequest(http.MethodPost, "/submit", bytes.NewReader(body))
	submitRec := httptest.NewRecorder()
	router.ServeHTTP(submitRec, submitReq)
	if submitRec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", submitRec.Code, submitRec.Body.String())
	}

	var submitResp Response
	if err := json.Unmarshal(submitRec.Body.Bytes(), &submitResp); err != nil {
		t.Fatalf("unmarshal submit response: %v", err)
	}
	payload, ok := submitResp.Data.(map[string]interface{})
	if !ok {
		t.Fatalf("unexpected data shape: %#v", submitResp.Data)
	}
	id, _ := payload["submissionId"].(string)
	if id == "" {
		t.Fatal("expected a non-empty submission id")
	}
	if status, _ := payload["status"].(string); status != string(model.StatusQueued) {
		t.Errorf("expected status QUEUED, got %v", payload["status"])
	}
	if _, ok := payload["queuePosition"]; !ok {
		t.Error("expected queuePosition in submit response")
	}
	if _, ok := payload["estimatedWaitTimeMs"]; !ok {
		t.Error("expected estimatedWaitTimeMs in submit response")
	}
	if resultsURL, _ := payload["resultsUrl"].(string); resultsURL != "/results/"+id {
		t.Errorf("expected resultsUrl /results/%s, got %v", id, payload["resultsUrl"])
	}

	statusReq := httptest.NewRequest(http.MethodGet, "/status/"+id, nil)
	statusRec := httptest.NewRecorder()
	router.ServeHTTP(statusRec, statusReq)
	if statusRec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", statusRec.Code)
	}
}

func TestCancelUnknownSubmissionReturnsConflict(t *testing.T) {
	_, router := newTestServer()
	req := httptest.NewRequest(http.MethodDelete, "/cancel/does-not-exist", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	if rec.Code != http.StatusConflict {
		t.Errorf("expected 409, got %d", rec.Code)
	}
}

func TestHealthReportsQueueSizeAndActiveWorkers(t *testing.T) {
	s, router := newTestServer()
	_, _ = s.Store.Enqueue(context.Background(), &model.SubmissionRequest{
		Language: model.LanguagePython,
		Metadata: model.QuestionMetadata{FunctionName: "solve"},
		TestCases: []model.TestCaseInput{
			{Values: map[string]interface{}{"x": 1}},
		},
	})

	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}

	var resp Response
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("unmarshal health response: %v", err)
	}
	data, ok := resp.Data.(map[string]interface{})
	if !ok {
		t.Fatalf("unexpected data shape: %#v", resp.Data)
	}
	if int(data["queueSize"].(float64)) != 1 {
		t.Errorf("expected queueSize 1, got %v", data["queueSize"])
	}
	if int(data["activeWorkers"].(float64)) != 3 {
		t.Errorf("expected activeWorkers 3, got %v", data["activeWorkers"])
	}
}
