package postgresstore

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"

	"github.com/entropic-labs/execengine/pkg/engine/model"
)

// setupTestContainer starts a disposable PostgreSQL instance for the
// durable store's integration tests. Skipped in -short mode; otherwise it
// needs a reachable Docker daemon.
func setupTestContainer(t *testing.T) *Store {
	t.Helper()
	if testing.Short() {
		t.Skip("skipping testcontainers-backed test in -short mode")
	}
	ctx := context.Background()

	container, err := postgres.RunContainer(ctx,
		testcontainers.WithImage("postgres:15-alpine"),
		postgres.WithDatabase("execengine_test"),
		postgres.WithUsername("test_user"),
		postgres.WithPassword("test_password"),
		testcontainers.WithWaitStrategy(
			wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2).
				WithStartupTimeout(60*time.Second)),
	)
	require.NoError(t, err, "start postgres container")
	t.Cleanup(func() { _ = container.Terminate(ctx) })

	connStr, err := container.ConnectionString(ctx, "sslmode=disable")
	require.NoError(t, err, "read connection string")

	store, err := New(ctx, Config{
		ConnectionString: connStr,
		MigrationsPath:   "file://migrations",
		StatusTTL:        time.Hour,
		WaitPerJob:       3 * time.Second,
	})
	require.NoError(t, err, "open durable store")
	t.Cleanup(store.Close)

	return store
}

func TestStoreEnqueueDequeueRoundTrip(t *testing.T) {
	store := setupTestContainer(t)
	ctx := context.Background()

	id, err := store.Enqueue(ctx, &model.SubmissionRequest{Language: model.LanguageJava})
	require.NoError(t, err)
	require.NotEmpty(t, id)

	status, found, err := store.GetStatus(ctx, id)
	require.NoError(t, err)
	require.True(t, found)
	require.Equal(t, model.StatusQueued, status.Status)

	req, ok, err := store.DequeueBlocking(ctx, time.Second)
	require.NoError(t, err)
	require.True(t, ok)
	require.Equal(t, id, req.ID)

	size, err := store.Size(ctx)
	require.NoError(t, err)
	require.Equal(t, 0, size)
}

func TestStoreCancelRemovesFromQueue(t *testing.T) {
	store := setupTestContainer(t)
	ctx := context.Background()

	id, err := store.Enqueue(ctx, &model.SubmissionRequest{})
	require.NoError(t, err)

	ok, err := store.Cancel(ctx, id)
	require.NoError(t, err)
	require.True(t, ok)

	status, found, err := store.GetStatus(ctx, id)
	require.NoError(t, err)
	require.True(t, found)
	require.Equal(t, model.StatusCancelled, status.Status)

	ok, err = store.Cancel(ctx, id)
	require.NoError(t, err)
	require.False(t, ok, "second cancel of an already-cancelled id must fail")
}

func TestStorePositionOfAndEstimatedWait(t *testing.T) {
	store := setupTestContainer(t)
	ctx := context.Background()

	idA, err := store.Enqueue(ctx, &model.SubmissionRequest{})
	require.NoError(t, err)
	idB, err := store.Enqueue(ctx, &model.SubmissionRequest{})
	require.NoError(t, err)

	posA, ok, err := store.PositionOf(ctx, idA)
	require.NoError(t, err)
	require.True(t, ok)
	require.Equal(t, 1, posA)

	posB, ok, err := store.PositionOf(ctx, idB)
	require.NoError(t, err)
	require.True(t, ok)
	require.Equal(t, 2, posB)

	wait, err := store.EstimatedWait(ctx)
	require.NoError(t, err)
	require.Equal(t, 6*time.Second, wait)
}

func TestStoreSetStatusRejectsMissingID(t *testing.T) {
	store := setupTestContainer(t)
	err := store.SetStatus(context.Background(), &model.SubmissionStatus{})
	require.Error(t, err)
}
