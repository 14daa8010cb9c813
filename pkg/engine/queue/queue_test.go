package queue

import (
	"context"
	"testing"
	"time"

	"github.com/entropic-labs/execengine/pkg/engine/model"
)

func TestEnqueueDequeueOrder(t *testing.T) {
	store := NewInMemoryStore(Config{})
	defer store.Close()
	ctx := context.Background()

	idA, err := store.Enqueue(ctx, &model.SubmissionRequest{Language: model.LanguageJava})
	if err != nil {
		t.Fatalf("enqueue: %v", err)
	}
	idB, _ := store.Enqueue(ctx, &model.SubmissionRequest{Language: model.LanguagePython})

	req, ok, err := store.DequeueBlocking(ctx, time.Second)
	if err != nil || !ok {
		t.Fatalf("dequeue: ok=%v err=%v", ok, err)
	}
	if req.ID != idA {
		t.Errorf("expected FIFO order, got %s want %s", req.ID, idA)
	}

	req, ok, _ = store.DequeueBlocking(ctx, time.Second)
	if !ok || req.ID != idB {
		t.Errorf("expected second dequeue to return %s, got %s (ok=%v)", idB, req.ID, ok)
	}
}

func TestDequeueBlockingTimesOut(t *testing.T) {
	store := NewInMemoryStore(Config{})
	defer store.Close()

	start := time.Now()
	_, ok, err := store.DequeueBlocking(context.Background(), 50*time.Millisecond)
	elapsed := time.Since(start)

	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if ok {
		t.Error("expected timeout (ok=false) on empty queue")
	}
	if elapsed < 50*time.Millisecond {
		t.Errorf("returned before timeout elapsed: %v", elapsed)
	}
}

func TestCancelOnlyWhileQueued(t *testing.T) {
	store := NewInMemoryStore(Config{})
	defer store.Close()
	ctx := context.Background()

	id, _ := store.Enqueue(ctx, &model.SubmissionRequest{})

	ok, err := store.Cancel(ctx, id)
	if err != nil || !ok {
		t.Fatalf("expected cancel to succeed while queued, ok=%v err=%v", ok, err)
	}

	status, found, _ := store.GetStatus(ctx, id)
	if !found || status.Status != model.StatusCancelled {
		t.Errorf("expected CANCELLED status, got %+v", status)
	}

	// Second cancel of an already-dequeued (here: already cancelled, no
	// longer queued) id must fail.
	ok, _ = store.Cancel(ctx, id)
	if ok {
		t.Error("expected cancel of a non-queued id to fail")
	}
}

func TestPositionOfAndEstimatedWait(t *testing.T) {
	store := NewInMemoryStore(Config{WaitPerJob: 2 * time.Second})
	defer store.Close()
	ctx := context.Background()

	idA, _ := store.Enqueue(ctx, &model.SubmissionRequest{})
	idB, _ := store.Enqueue(ctx, &model.SubmissionRequest{})

	pos, ok, _ := store.PositionOf(ctx, idA)
	if !ok || pos != 1 {
		t.Errorf("expected idA at position 1, got %d (ok=%v)", pos, ok)
	}
	pos, ok, _ = store.PositionOf(ctx, idB)
	if !ok || pos != 2 {
		t.Errorf("expected idB at position 2, got %d (ok=%v)", pos, ok)
	}

	wait, _ := store.EstimatedWait(ctx)
	if wait != 4*time.Second {
		t.Errorf("expected 4s estimated wait for 2 queued jobs, got %v", wait)
	}
}

func TestStatusExpiresAfterTTL(t *testing.T) {
	store := NewInMemoryStore(Config{StatusTTL: 10 * time.Millisecond})
	defer store.Close()
	ctx := context.Background()

	id, _ := store.Enqueue(ctx, &model.SubmissionRequest{})
	time.Sleep(30 * time.Millisecond)

	_, ok, _ := store.GetStatus(ctx, id)
	if ok {
		t.Error("expected status to have expired past its TTL")
	}
}

func TestSetStatusRequiresID(t *testing.T) {
	store := NewInMemoryStore(Config{})
	defer store.Close()

	if err := store.SetStatus(context.Background(), &model.SubmissionStatus{}); err == nil {
		t.Error("expected error when setting a status without a submission id")
	}
}
