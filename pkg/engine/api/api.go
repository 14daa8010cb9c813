// Package api is the thin HTTP boundary over the queue: submit,
// status, cancel, health, and results, plus a websocket status stream.
// Routing, serialization, and request/response shape are this module's
// concern; verdict comparison and persistence of submission history are
// explicitly the caller's.
package api

import (
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/gorilla/mux"
	"github.com/gorilla/websocket"

	"github.com/entropic-labs/execengine/pkg/engine/fingerprint"
	"github.com/entropic-labs/execengine/pkg/engine/model"
	"github.com/entropic-labs/execengine/pkg/engine/queue"
	"github.com/entropic-labs/execengine/pkg/infrastructure/logging"
)

const apiSubsystem = "API"

var allowedLanguages = map[model.Language]bool{
	model.LanguageJava:   true,
	model.LanguagePython: true,
}

// Response is the envelope every JSON endpoint returns.
type Response struct {
	Success bool        `json:"success"`
	Data    interface{} `json:"data,omitempty"`
	Error   string      `json:"error,omitempty"`
}

// HealthReporter supplies the figures the health endpoint reports. The
// API package depends on this narrow interface rather than the worker
// supervisor directly, keeping api free of a dependency on worker.
type HealthReporter interface {
	ActiveWorkers() int
}

// Server wires the intake/status/cancel/health handlers onto a
// *mux.Router backed by a queue.Store.
type Server struct {
	Store   queue.Store
	Workers HealthReporter

	runtimeWindow  *runtimeAverage
	upgrader       websocket.Upgrader
	duplicateGuard *fingerprint.Guard
}

// NewServer builds a Server ready to have Routes() mounted. The duplicate
// guard is sized for 100,000 in-flight fingerprints at a 1% false-positive
// rate; a false positive only costs an extra log line, never a rejected
// submission, since the guard is advisory rather than an enforced
// uniqueness constraint.
func NewServer(store queue.Store, workers HealthReporter) *Server {
	return &Server{
		Store:         store,
		Workers:       workers,
		runtimeWindow: newRuntimeAverage(100),
		upgrader: websocket.Upgrader{
			CheckOrigin: func(r *http.Request) bool { return true },
		},
		duplicateGuard: fingerprint.NewGuard(100_000, 0.01),
	}
}

// Routes registers every endpoint onto router.
func (s *Server) Routes(router *mux.Router) {
	router.HandleFunc("/submit", s.handleSubmit).Methods(http.MethodPost)
	router.HandleFunc("/status/{id}", s.handleStatus).Methods(http.MethodGet)
	router.HandleFunc("/results/{id}", s.handleResults).Methods(http.MethodGet)
	router.HandleFunc("/cancel/{id}", s.handleCancel).Methods(http.MethodDelete)
	router.HandleFunc("/health", s.handleHealth).Methods(http.MethodGet)
	router.HandleFunc("/ws/status/{id}", s.handleStatusStream)
}

type submitResponse struct {
	SubmissionID        string       `json:"submissionId"`
	Status              model.Status `json:"status"`
	QueuePosition       int          `json:"queuePosition"`
	EstimatedWaitTimeMs int64        `json:"estimatedWaitTimeMs"`
	StatusURL           string       `json:"statusUrl"`
	ResultsURL          string       `json:"resultsUrl"`
}

func (s *Server) handleSubmit(w http.ResponseWriter, r *http.Request) {
	var req model.SubmissionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		sendError(w, fmt.Errorf("malformed request body: %w", err), http.StatusBadRequest)
		return
	}

	if err := validateSubmission(&req); err != nil {
		sendError(w, err, http.StatusBadRequest)
		return
	}

	if s.duplicateGuard != nil && s.duplicateGuard.Seen(fingerprint.Of(&req)) {
		logging.Info("submission fingerprint seen before, proceeding anyway", map[string]interface{}{
			"subsystem": apiSubsystem,
		})
	}

	id, err := s.Store.Enqueue(r.Context(), &req)
	if err != nil {
		sendError(w, fmt.Errorf("enqueue submission: %w", err), http.StatusInternalServerError)
		return
	}

	position, _, err := s.Store.PositionOf(r.Context(), id)
	if err != nil {
		logging.Warn("failed to read queue position after enqueue", map[string]interface{}{
			"subsystem":    apiSubsystem,
			"submissionId": id,
			"error":        err.Error(),
		})
	}
	wait, err := s.Store.EstimatedWait(r.Context())
	if err != nil {
		logging.Warn("failed to estimate queue wait after enqueue", map[string]interface{}{
			"subsystem":    apiSubsystem,
			"submissionId": id,
			"error":        err.Error(),
		})
	}

	sendJSON(w, Response{Success: true, Data: submitResponse{
		SubmissionID:        id,
		Status:              model.StatusQueued,
		QueuePosition:       position,
		EstimatedWaitTimeMs: wait.Milliseconds(),
		StatusURL:           "/status/" + id,
		ResultsURL:          "/results/" + id,
	}})
}

// validateSubmission applies field-level checks to an incoming submission.
func validateSubmission(req *model.SubmissionRequest) error {
	if !allowedLanguages[req.Language] {
		return fmt.Errorf("unsupported language %q", req.Language)
	}
	if req.Metadata.FunctionName == "" {
		return fmt.Errorf("metadata.functionName must be non-empty")
	}
	if len(req.TestCases) == 0 {
		return fmt.Errorf("testCases must be non-empty")
	}
	return nil
}

func (s *Server) handleStatus(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]
	status, ok, err := s.Store.GetStatus(r.Context(), id)
	if err != nil {
		sendError(w, fmt.Errorf("read status: %w", err), http.StatusInternalServerError)
		return
	}
	if !ok {
		sendError(w, fmt.Errorf("unknown submission %q", id), http.StatusNotFound)
		return
	}
	if status.Status == model.StatusCompleted && status.RuntimeMs > 0 {
		s.runtimeWindow.add(status.RuntimeMs)
	}
	sendJSON(w, Response{Success: true, Data: status})
}

// handleResults is the same status record under a results-oriented path,
// for callers that only want the terminal results view.
func (s *Server) handleResults(w http.ResponseWriter, r *http.Request) {
	s.handleStatus(w, r)
}

func (s *Server) handleCancel(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]
	ok, err := s.Store.Cancel(r.Context(), id)
	if err != nil {
		sendError(w, fmt.Errorf("cancel submission: %w", err), http.StatusInternalServerError)
		return
	}
	if !ok {
		sendError(w, fmt.Errorf("submission %q is not queued", id), http.StatusConflict)
		return
	}
	sendJSON(w, Response{Success: true})
}

type healthResponse struct {
	QueueSize       int     `json:"queueSize"`
	ActiveWorkers   int     `json:"activeWorkers"`
	AvgRuntimeMs    float64 `json:"avgExecutionTimeMs"`
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	size, err := s.Store.Size(r.Context())
	if err != nil {
		sendError(w, fmt.Errorf("read queue size: %w", err), http.StatusInternalServerError)
		return
	}
	active := 0
	if s.Workers != nil {
		active = s.Workers.ActiveWorkers()
	}
	sendJSON(w, Response{Success: true, Data: healthResponse{
		QueueSize:     size,
		ActiveWorkers: active,
		AvgRuntimeMs:  s.runtimeWindow.average(),
	}})
}

// handleStatusStream polls the status store and pushes each change to the
// client, closing once the submission reaches a terminal state. This is a
// supplement to the plain status/results endpoints: callers that would
// otherwise poll /status/{id} can instead hold one connection open.
func (s *Server) handleStatusStream(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]
	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		logging.Warn("websocket upgrade failed", map[string]interface{}{
			"subsystem":    apiSubsystem,
			"submissionId": id,
			"error":        err.Error(),
		})
		return
	}
	defer conn.Close()

	ticker := time.NewTicker(500 * time.Millisecond)
	defer ticker.Stop()

	var lastStatus model.Status
	for {
		select {
		case <-r.Context().Done():
			return
		case <-ticker.C:
			status, ok, err := s.Store.GetStatus(r.Context(), id)
			if err != nil || !ok {
				continue
			}
			if status.Status == lastStatus {
				continue
			}
			lastStatus = status.Status
			if err := conn.WriteJSON(status); err != nil {
				return
			}
			if status.Status == model.StatusCompleted || status.Status == model.StatusFailed || status.Status == model.StatusCancelled {
				return
			}
		}
	}
}

func sendJSON(w http.ResponseWriter, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(data)
}

func sendError(w http.ResponseWriter, err error, status int) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(Response{Success: false, Error: err.Error()})
}
