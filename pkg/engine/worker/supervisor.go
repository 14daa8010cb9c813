package worker

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/entropic-labs/execengine/pkg/engine/orchestrator"
	"github.com/entropic-labs/execengine/pkg/engine/queue"
	"github.com/entropic-labs/execengine/pkg/infrastructure/logging"
)

// SupervisorConfig controls the worker pool supervisor.
type SupervisorConfig struct {
	// WorkerCount is how many persistent workers to start. Defaults to 5.
	WorkerCount int

	// PollTimeout bounds each worker's blocking dequeue call. Defaults to
	// 5 seconds.
	PollTimeout time.Duration

	// ShutdownGracePeriod bounds how long Shutdown waits for in-flight
	// submissions to finish before returning anyway. Defaults to 60
	// seconds.
	ShutdownGracePeriod time.Duration
}

func (c SupervisorConfig) withDefaults() SupervisorConfig {
	if c.WorkerCount <= 0 {
		c.WorkerCount = 5
	}
	if c.PollTimeout <= 0 {
		c.PollTimeout = 5 * time.Second
	}
	if c.ShutdownGracePeriod <= 0 {
		c.ShutdownGracePeriod = 60 * time.Second
	}
	return c
}

// Supervisor starts a fixed number of Workers draining the same
// queue.Store and tracks how many are currently active, for the health
// endpoint's reporting needs.
type Supervisor struct {
	config Config
	store  queue.Store

	cancel context.CancelFunc
	wg     sync.WaitGroup

	activeWorkers int64
	started       bool
	mu            sync.Mutex
}

// Config bundles the supervisor's tuning knobs with the Store it drains.
type Config struct {
	Supervisor SupervisorConfig
	Store      queue.Store
}

// NewSupervisor builds a Supervisor for store with the given
// configuration, applying defaults for unset fields.
func NewSupervisor(store queue.Store, cfg SupervisorConfig) *Supervisor {
	return &Supervisor{
		config: Config{Supervisor: cfg.withDefaults(), Store: store},
		store:  store,
	}
}

// Start spawns WorkerCount Workers, each running orchestrator.Orchestrator
// against s.store, and returns immediately.
func (s *Supervisor) Start() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.started {
		return fmt.Errorf("worker supervisor already started")
	}

	ctx, cancel := context.WithCancel(context.Background())
	s.cancel = cancel

	for i := 0; i < s.config.Supervisor.WorkerCount; i++ {
		workerID := fmt.Sprintf("worker-%d", i)
		w := &Worker{
			ID:          workerID,
			Store:       s.store,
			Executor:    &orchestrator.Orchestrator{},
			PollTimeout: s.config.Supervisor.PollTimeout,
		}

		s.wg.Add(1)
		go func() {
			defer s.wg.Done()
			atomic.AddInt64(&s.activeWorkers, 1)
			defer atomic.AddInt64(&s.activeWorkers, -1)
			w.Run(ctx)
		}()
	}

	s.started = true
	logging.Info("worker supervisor started", map[string]interface{}{
		"subsystem":   workerSubsystem,
		"workerCount": s.config.Supervisor.WorkerCount,
	})
	return nil
}

// ActiveWorkers returns the number of workers currently running, for the
// health endpoint.
func (s *Supervisor) ActiveWorkers() int {
	return int(atomic.LoadInt64(&s.activeWorkers))
}

// Shutdown signals all workers to stop polling and waits up to the
// configured grace period for in-flight submissions to finish.
func (s *Supervisor) Shutdown() error {
	s.mu.Lock()
	if !s.started {
		s.mu.Unlock()
		return nil
	}
	cancel := s.cancel
	s.mu.Unlock()

	cancel()

	done := make(chan struct{})
	go func() {
		s.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		logging.Info("worker supervisor shut down gracefully", map[string]interface{}{
			"subsystem": workerSubsystem,
		})
	case <-time.After(s.config.Supervisor.ShutdownGracePeriod):
		logging.Warn("worker supervisor grace period elapsed with workers still in flight", map[string]interface{}{
			"subsystem": workerSubsystem,
		})
	}

	return nil
}
