package threadrepo

import (
	"context"
	"os"
	"sync"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"agri-api/internal/domain/status"
	"agri-api/internal/domain/thread"
	"agri-api/internal/infrastructure/database"
)

// Runs against a real database when TEST_DATABASE_DSN is set.
func newPostgresRepository(t *testing.T) *PostgresRepository {
	t.Helper()
	dsn := os.Getenv("TEST_DATABASE_DSN")
	if dsn == "" {
		t.Skip("TEST_DATABASE_DSN not set")
	}
	db, err := database.Connect(database.Config{DSN: dsn, MaxOpenConns: 20})
	require.NoError(t, err)
	require.NoError(t, database.AutoMigrate(context.Background(), db, zerolog.Nop()))
	t.Cleanup(func() { _ = database.Close(db) })
	return NewPostgresRepository(db)
}

func TestPostgres_ConcurrentAppendsNeverSharePositions(t *testing.T) {
	repo := newPostgresRepository(t)
	ctx := context.Background()

	th := &thread.Thread{UserID: "it-user", Metadata: map[string]any{}}
	require.NoError(t, repo.CreateThread(ctx, th))
	t.Cleanup(func() { _ = repo.DeleteThread(ctx, th.ID) })

	const writers = 20
	var wg sync.WaitGroup
	positions := make(chan int64, writers)
	for i := 0; i < writers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			msg, err := repo.AppendMessage(ctx, th.ID, thread.RoleUser, "concurrent", nil)
			if assert.NoError(t, err) {
				positions <- msg.Position
			}
		}()
	}
	wg.Wait()
	close(positions)

	seen := map[int64]bool{}
	for p := range positions {
		assert.False(t, seen[p], "duplicate position %d", p)
		seen[p] = true
	}
	assert.Len(t, seen, writers)

	count, err := repo.CountMessages(ctx, th.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(writers), count)
}

func TestPostgres_FinalizeRunOnce(t *testing.T) {
	repo := newPostgresRepository(t)
	ctx := context.Background()

	th := &thread.Thread{UserID: "it-user", Metadata: map[string]any{}}
	require.NoError(t, repo.CreateThread(ctx, th))
	t.Cleanup(func() { _ = repo.DeleteThread(ctx, th.ID) })

	run, err := repo.CreateRun(ctx, th.ID)
	require.NoError(t, err)

	final, err := repo.FinalizeRun(ctx, run.ID, status.StatusFailed, map[string]any{"error": "boom"}, time.Now().UTC())
	require.NoError(t, err)
	assert.Equal(t, status.StatusFailed, final.Status)
	assert.Equal(t, "boom", final.Metadata["error"])

	_, err = repo.FinalizeRun(ctx, run.ID, status.StatusCompleted, nil, time.Now().UTC())
	assert.ErrorIs(t, err, thread.ErrInvalidState)
}

func TestPostgres_CompleteRunAfterReapWritesNothing(t *testing.T) {
	repo := newPostgresRepository(t)
	ctx := context.Background()

	th := &thread.Thread{UserID: "it-user", Metadata: map[string]any{}}
	require.NoError(t, repo.CreateThread(ctx, th))
	t.Cleanup(func() { _ = repo.DeleteThread(ctx, th.ID) })

	reaped, err := repo.CreateRun(ctx, th.ID)
	require.NoError(t, err)
	_, err = repo.FinalizeRun(ctx, reaped.ID, status.StatusFailed, map[string]any{"error": "stale"}, time.Now().UTC())
	require.NoError(t, err)

	_, _, err = repo.CompleteRun(ctx, thread.Completion{RunID: reaped.ID, ThreadID: th.ID, Content: "late", CompletedAt: time.Now().UTC()})
	assert.ErrorIs(t, err, thread.ErrInvalidState)
	count, err := repo.CountMessages(ctx, th.ID)
	require.NoError(t, err)
	assert.Zero(t, count)

	live, err := repo.CreateRun(ctx, th.ID)
	require.NoError(t, err)
	final, msg, err := repo.CompleteRun(ctx, thread.Completion{RunID: live.ID, ThreadID: th.ID, Content: "on time", CompletedAt: time.Now().UTC()})
	require.NoError(t, err)
	assert.Equal(t, status.StatusCompleted, final.Status)
	assert.Equal(t, int64(1), msg.Position)
	assert.Equal(t, thread.RoleAssistant, msg.Role)
}

func TestPostgres_UnknownIDsAreNotFound(t *testing.T) {
	repo := NewPostgresRepository(nil)
	ctx := context.Background()

	_, err := repo.GetThread(ctx, "not-a-uuid")
	assert.ErrorIs(t, err, thread.ErrNotFound)
	_, err = repo.AppendMessage(ctx, "not-a-uuid", thread.RoleUser, "hi", nil)
	assert.ErrorIs(t, err, thread.ErrNotFound)
	_, err = repo.GetRun(ctx, "nope")
	assert.ErrorIs(t, err, thread.ErrNotFound)
	_, _, err = repo.CompleteRun(ctx, thread.Completion{RunID: "nope", ThreadID: "nope"})
	assert.ErrorIs(t, err, thread.ErrNotFound)
}
