// Package queue provides the job queue and TTL'd status store shared by
// submission intake and the worker pool.
//
// Store is the interface both layers depend on; InMemoryStore is the
// default, in-process implementation described by the specification. A
// durable alternative backed by PostgreSQL lives in the postgresstore
// subpackage and satisfies the same interface and the same invariants.
package queue

import (
	"container/list"
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/entropic-labs/execengine/pkg/engine/model"
)

// Store is the FIFO job queue plus per-submission status key-value store.
type Store interface {
	// Enqueue assigns an id if the request doesn't carry one, writes the
	// initial QUEUED status, and pushes the request onto the queue.
	Enqueue(ctx context.Context, req *model.SubmissionRequest) (string, error)

	// DequeueBlocking pops the oldest queued request, blocking up to
	// timeout for one to arrive. ok is false on timeout.
	DequeueBlocking(ctx context.Context, timeout time.Duration) (req *model.SubmissionRequest, ok bool, err error)

	// Size returns the current queue length.
	Size(ctx context.Context) (int, error)

	// PositionOf returns the 1-based position of id in the queue, or
	// ok=false if it is not currently queued. Need not be exact under
	// concurrent enqueue; it is a wait-time hint only.
	PositionOf(ctx context.Context, id string) (position int, ok bool, err error)

	// EstimatedWait returns size * a configured per-job constant.
	EstimatedWait(ctx context.Context) (time.Duration, error)

	// Cancel removes the first queued entry with this id, if still queued,
	// and writes a CANCELLED status. ok is false if the id was not queued
	// (already dequeued, unknown, or already terminal).
	Cancel(ctx context.Context, id string) (ok bool, err error)

	// GetStatus reads the current status for id. ok is false if the id is
	// unknown or its status has expired past its TTL.
	GetStatus(ctx context.Context, id string) (status *model.SubmissionStatus, ok bool, err error)

	// SetStatus writes status, resetting its TTL.
	SetStatus(ctx context.Context, status *model.SubmissionStatus) error
}

// Config controls the in-memory store's TTL and wait-time estimate.
type Config struct {
	// StatusTTL is how long a status entry survives after its last write.
	// Defaults to 1 hour.
	StatusTTL time.Duration

	// WaitPerJob is the per-queued-job constant used by EstimatedWait.
	// Defaults to 3 seconds.
	WaitPerJob time.Duration
}

func (c Config) withDefaults() Config {
	if c.StatusTTL <= 0 {
		c.StatusTTL = time.Hour
	}
	if c.WaitPerJob <= 0 {
		c.WaitPerJob = 3 * time.Second
	}
	return c
}

type statusEntry struct {
	status    *model.SubmissionStatus
	expiresAt time.Time
}

// InMemoryStore is a single-process FIFO queue plus TTL'd status map,
// matching the specification's "persistent list + status:{id} entries"
// shape without requiring an external store.
//
// Many concurrent callers may block on DequeueBlocking with no starvation:
// each arrival wakes one waiter via sync.Cond.Signal. The order in which
// waiters receive jobs is not guaranteed: a caller entering DequeueBlocking
// while a job is queued can take it before a woken waiter reacquires the lock.
type InMemoryStore struct {
	config Config

	mu       sync.Mutex
	notEmpty *sync.Cond
	jobs     *list.List // of *model.SubmissionRequest, front = next to dequeue
	statuses map[string]*statusEntry

	closed bool
}

// NewInMemoryStore creates a ready-to-use store. A background goroutine
// sweeps expired status entries every minute until Close is called.
func NewInMemoryStore(config Config) *InMemoryStore {
	s := &InMemoryStore{
		config:   config.withDefaults(),
		jobs:     list.New(),
		statuses: make(map[string]*statusEntry),
	}
	s.notEmpty = sync.NewCond(&s.mu)
	go s.sweepLoop()
	return s
}

func (s *InMemoryStore) sweepLoop() {
	ticker := time.NewTicker(time.Minute)
	defer ticker.Stop()
	for range ticker.C {
		s.mu.Lock()
		if s.closed {
			s.mu.Unlock()
			return
		}
		now := time.Now()
		for id, entry := range s.statuses {
			if now.After(entry.expiresAt) {
				delete(s.statuses, id)
			}
		}
		s.mu.Unlock()
	}
}

// Close stops the background sweep. It does not wake blocked dequeuers;
// callers should cancel their own context to unblock them.
func (s *InMemoryStore) Close() {
	s.mu.Lock()
	s.closed = true
	s.mu.Unlock()
}

func (s *InMemoryStore) Enqueue(ctx context.Context, req *model.SubmissionRequest) (string, error) {
	if req.ID == "" {
		req.ID = generateID()
	}

	status := model.NewQueuedStatus(req.ID)

	s.mu.Lock()
	s.statuses[req.ID] = &statusEntry{status: status, expiresAt: time.Now().Add(s.config.StatusTTL)}
	s.jobs.PushBack(req)
	s.notEmpty.Signal()
	s.mu.Unlock()

	return req.ID, nil
}

func (s *InMemoryStore) DequeueBlocking(ctx context.Context, timeout time.Duration) (*model.SubmissionRequest, bool, error) {
	deadline := time.Now().Add(timeout)

	// sync.Cond has no timeout primitive, so a watcher goroutine wakes the
	// waiter when the deadline or the caller's context expires.
	done := make(chan struct{})
	defer close(done)
	go func() {
		select {
		case <-time.After(time.Until(deadline)):
		case <-ctx.Done():
		case <-done:
			return
		}
		s.mu.Lock()
		s.notEmpty.Broadcast()
		s.mu.Unlock()
	}()

	s.mu.Lock()
	defer s.mu.Unlock()

	for s.jobs.Len() == 0 {
		if ctx.Err() != nil {
			return nil, false, nil
		}
		if time.Now().After(deadline) {
			return nil, false, nil
		}
		s.notEmpty.Wait()
	}

	front := s.jobs.Front()
	s.jobs.Remove(front)
	return front.Value.(*model.SubmissionRequest), true, nil
}

func (s *InMemoryStore) Size(ctx context.Context) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.jobs.Len(), nil
}

func (s *InMemoryStore) PositionOf(ctx context.Context, id string) (int, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	position := 1
	for e := s.jobs.Front(); e != nil; e = e.Next() {
		req := e.Value.(*model.SubmissionRequest)
		if req.ID == id {
			return position, true, nil
		}
		position++
	}
	return 0, false, nil
}

func (s *InMemoryStore) EstimatedWait(ctx context.Context) (time.Duration, error) {
	size, _ := s.Size(ctx)
	return time.Duration(size) * s.config.WaitPerJob, nil
}

func (s *InMemoryStore) Cancel(ctx context.Context, id string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for e := s.jobs.Front(); e != nil; e = e.Next() {
		req := e.Value.(*model.SubmissionRequest)
		if req.ID == id {
			s.jobs.Remove(e)
			cancelled := model.StatusCancelled
			if entry, ok := s.statuses[id]; ok {
				entry.status.Status = cancelled
			} else {
				s.statuses[id] = &statusEntry{
					status:    &model.SubmissionStatus{SubmissionID: id, Status: cancelled, TestCaseResults: []model.TestCaseResult{}},
					expiresAt: time.Now().Add(s.config.StatusTTL),
				}
			}
			return true, nil
		}
	}
	return false, nil
}

func (s *InMemoryStore) GetStatus(ctx context.Context, id string) (*model.SubmissionStatus, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	entry, ok := s.statuses[id]
	if !ok {
		return nil, false, nil
	}
	if time.Now().After(entry.expiresAt) {
		delete(s.statuses, id)
		return nil, false, nil
	}
	return entry.status, true, nil
}

func (s *InMemoryStore) SetStatus(ctx context.Context, status *model.SubmissionStatus) error {
	if status == nil || status.SubmissionID == "" {
		return fmt.Errorf("queue: status must have a submission id")
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.statuses[status.SubmissionID] = &statusEntry{status: status, expiresAt: time.Now().Add(s.config.StatusTTL)}
	return nil
}
