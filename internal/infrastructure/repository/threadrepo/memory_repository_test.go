package threadrepo

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"agri-api/internal/domain/status"
	"agri-api/internal/domain/thread"
	"agri-api/internal/utils/platformerrors"
)

func newThread(t *testing.T, repo *MemoryRepository, userID string) *thread.Thread {
	t.Helper()
	th := &thread.Thread{UserID: userID}
	require.NoError(t, repo.CreateThread(context.Background(), th))
	return th
}

func TestAppendMessage_PositionsAreGaplessFromOne(t *testing.T) {
	repo := NewMemoryRepository()
	ctx := context.Background()
	th := newThread(t, repo, "user-1")

	for i := 1; i <= 5; i++ {
		msg, err := repo.AppendMessage(ctx, th.ID, thread.RoleUser, "hello", nil)
		require.NoError(t, err)
		assert.Equal(t, int64(i), msg.Position)
	}

	got, err := repo.GetThread(ctx, th.ID)
	require.NoError(t, err)
	require.NotNil(t, got.LastMessageAt)
}

func TestAppendMessage_ConcurrentAppendsNeverSharePositions(t *testing.T) {
	repo := NewMemoryRepository()
	ctx := context.Background()
	th := newThread(t, repo, "user-1")

	const writers = 50
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

	seen := make(map[int64]bool, writers)
	for p := range positions {
		assert.False(t, seen[p], "duplicate position %d", p)
		seen[p] = true
	}
	require.Len(t, seen, writers)
	for p := int64(1); p <= writers; p++ {
		assert.True(t, seen[p], "missing position %d", p)
	}

	count, err := repo.CountMessages(ctx, th.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(writers), count)
}

func TestAppendMessage_UnknownThread(t *testing.T) {
	repo := NewMemoryRepository()
	_, err := repo.AppendMessage(context.Background(), "missing", thread.RoleUser, "hi", nil)
	require.Error(t, err)
	assert.ErrorIs(t, err, thread.ErrNotFound)
	assert.True(t, platformerrors.IsErrorType(err, platformerrors.ErrorTypeNotFound))
}

func TestAppendMessage_MetadataIsStoredAsJSON(t *testing.T) {
	repo := NewMemoryRepository()
	ctx := context.Background()
	th := newThread(t, repo, "user-1")

	type step struct {
		Tool string `json:"tool"`
	}
	msg, err := repo.AppendMessage(ctx, th.ID, thread.RoleAssistant, "ok", map[string]any{
		"tool_calls": []step{{Tool: "analyze_soil_conditions"}},
	})
	require.NoError(t, err)

	calls, ok := msg.Metadata["tool_calls"].([]any)
	require.True(t, ok)
	require.Len(t, calls, 1)
	assert.Equal(t, "analyze_soil_conditions", calls[0].(map[string]any)["tool"])
}

func TestLoadRecentHistory_ReturnsTailOldestFirst(t *testing.T) {
	repo := NewMemoryRepository()
	ctx := context.Background()
	th := newThread(t, repo, "user-1")
	for _, c := range []string{"a", "b", "c", "d"} {
		_, err := repo.AppendMessage(ctx, th.ID, thread.RoleUser, c, nil)
		require.NoError(t, err)
	}

	history, err := repo.LoadRecentHistory(ctx, th.ID, 2)
	require.NoError(t, err)
	require.Len(t, history, 2)
	assert.Equal(t, "c", history[0].Content)
	assert.Equal(t, "d", history[1].Content)

	listed, err := repo.ListMessages(ctx, th.ID, 3)
	require.NoError(t, err)
	require.Len(t, listed, 3)
	assert.Equal(t, int64(1), listed[0].Position)
	assert.Equal(t, int64(3), listed[2].Position)
}

func TestFinalizeRun_OnlyOnce(t *testing.T) {
	repo := NewMemoryRepository()
	ctx := context.Background()
	th := newThread(t, repo, "user-1")

	run, err := repo.CreateRun(ctx, th.ID)
	require.NoError(t, err)
	assert.Equal(t, status.StatusRunning, run.Status)
	assert.Nil(t, run.CompletedAt)

	done := time.Now().UTC()
	final, err := repo.FinalizeRun(ctx, run.ID, status.StatusCompleted, map[string]any{"tool_calls": []any{}}, done)
	require.NoError(t, err)
	assert.Equal(t, status.StatusCompleted, final.Status)
	require.NotNil(t, final.CompletedAt)

	_, err = repo.FinalizeRun(ctx, run.ID, status.StatusFailed, nil, done)
	assert.ErrorIs(t, err, thread.ErrInvalidState)
	assert.True(t, platformerrors.IsErrorType(err, platformerrors.ErrorTypeConflict))

	stored, err := repo.GetRun(ctx, run.ID)
	require.NoError(t, err)
	assert.Equal(t, status.StatusCompleted, stored.Status)
}

func TestFinalizeRun_RejectsNonTerminalStatus(t *testing.T) {
	repo := NewMemoryRepository()
	ctx := context.Background()
	th := newThread(t, repo, "user-1")
	run, err := repo.CreateRun(ctx, th.ID)
	require.NoError(t, err)

	_, err = repo.FinalizeRun(ctx, run.ID, status.StatusRunning, nil, time.Now())
	assert.ErrorIs(t, err, thread.ErrInvalidState)
}

func TestFinalizeRun_ConcurrentFinalizersSingleWinner(t *testing.T) {
	repo := NewMemoryRepository()
	ctx := context.Background()
	th := newThread(t, repo, "user-1")
	run, err := repo.CreateRun(ctx, th.ID)
	require.NoError(t, err)

	var (
		wg   sync.WaitGroup
		mu   sync.Mutex
		wins int
	)
	for i := 0; i < 10; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			st := status.StatusCompleted
			if i%2 == 0 {
				st = status.StatusFailed
			}
			if _, err := repo.FinalizeRun(ctx, run.ID, st, nil, time.Now()); err == nil {
				mu.Lock()
				wins++
				mu.Unlock()
			}
		}(i)
	}
	wg.Wait()
	assert.Equal(t, 1, wins)
}

func TestCompleteRun_WritesRunAndMessageTogether(t *testing.T) {
	repo := NewMemoryRepository()
	ctx := context.Background()
	th := newThread(t, repo, "user-1")
	_, err := repo.AppendMessage(ctx, th.ID, thread.RoleUser, "irrigate?", nil)
	require.NoError(t, err)
	run, err := repo.CreateRun(ctx, th.ID)
	require.NoError(t, err)

	final, msg, err := repo.CompleteRun(ctx, thread.Completion{
		RunID:           run.ID,
		ThreadID:        th.ID,
		Content:         "Yes, 20 minutes.",
		MessageMetadata: map[string]any{"run_id": run.ID},
		CompletedAt:     time.Now().UTC(),
	})
	require.NoError(t, err)
	assert.Equal(t, status.StatusCompleted, final.Status)
	require.NotNil(t, final.CompletedAt)
	assert.Equal(t, int64(2), msg.Position)
	assert.Equal(t, thread.RoleAssistant, msg.Role)
	assert.Equal(t, run.ID, msg.Metadata["run_id"])
}

func TestCompleteRun_ReapedRunGetsNoMessage(t *testing.T) {
	repo := NewMemoryRepository()
	ctx := context.Background()
	th := newThread(t, repo, "user-1")
	run, err := repo.CreateRun(ctx, th.ID)
	require.NoError(t, err)

	n, err := repo.FailStaleRuns(ctx, time.Now().Add(time.Hour), "stale")
	require.NoError(t, err)
	require.Equal(t, int64(1), n)

	_, _, err = repo.CompleteRun(ctx, thread.Completion{RunID: run.ID, ThreadID: th.ID, Content: "late", CompletedAt: time.Now()})
	assert.ErrorIs(t, err, thread.ErrInvalidState)

	count, err := repo.CountMessages(ctx, th.ID)
	require.NoError(t, err)
	assert.Zero(t, count)
	stored, err := repo.GetRun(ctx, run.ID)
	require.NoError(t, err)
	assert.Equal(t, status.StatusFailed, stored.Status)
}

func TestCompleteRun_RacesReaperSingleOutcome(t *testing.T) {
	repo := NewMemoryRepository()
	ctx := context.Background()
	th := newThread(t, repo, "user-1")
	run, err := repo.CreateRun(ctx, th.ID)
	require.NoError(t, err)

	var wg sync.WaitGroup
	wg.Add(2)
	go func() {
		defer wg.Done()
		_, _ = repo.FailStaleRuns(ctx, time.Now().Add(time.Hour), "stale")
	}()
	go func() {
		defer wg.Done()
		_, _, _ = repo.CompleteRun(ctx, thread.Completion{RunID: run.ID, ThreadID: th.ID, Content: "done", CompletedAt: time.Now()})
	}()
	wg.Wait()

	stored, err := repo.GetRun(ctx, run.ID)
	require.NoError(t, err)
	count, err := repo.CountMessages(ctx, th.ID)
	require.NoError(t, err)
	if stored.Status == status.StatusCompleted {
		assert.Equal(t, int64(1), count)
	} else {
		assert.Equal(t, status.StatusFailed, stored.Status)
		assert.Zero(t, count)
	}
}

func TestCompleteRun_UnknownRun(t *testing.T) {
	repo := NewMemoryRepository()
	th := newThread(t, repo, "user-1")
	_, _, err := repo.CompleteRun(context.Background(), thread.Completion{RunID: "missing", ThreadID: th.ID})
	assert.ErrorIs(t, err, thread.ErrNotFound)
}

func TestFailStaleRuns(t *testing.T) {
	repo := NewMemoryRepository()
	ctx := context.Background()
	th := newThread(t, repo, "user-1")

	base := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	repo.now = func() time.Time { return base }
	stale, err := repo.CreateRun(ctx, th.ID)
	require.NoError(t, err)

	repo.now = func() time.Time { return base.Add(30 * time.Minute) }
	fresh, err := repo.CreateRun(ctx, th.ID)
	require.NoError(t, err)

	n, err := repo.FailStaleRuns(ctx, base.Add(15*time.Minute), "stale")
	require.NoError(t, err)
	assert.Equal(t, int64(1), n)

	got, err := repo.GetRun(ctx, stale.ID)
	require.NoError(t, err)
	assert.Equal(t, status.StatusFailed, got.Status)
	assert.NotNil(t, got.CompletedAt)
	assert.Equal(t, "stale", got.Metadata["error"])

	got, err = repo.GetRun(ctx, fresh.ID)
	require.NoError(t, err)
	assert.Equal(t, status.StatusRunning, got.Status)
}

func TestDeleteThread_Cascades(t *testing.T) {
	repo := NewMemoryRepository()
	ctx := context.Background()
	th := newThread(t, repo, "user-1")
	_, err := repo.AppendMessage(ctx, th.ID, thread.RoleUser, "hi", nil)
	require.NoError(t, err)
	run, err := repo.CreateRun(ctx, th.ID)
	require.NoError(t, err)

	require.NoError(t, repo.DeleteThread(ctx, th.ID))

	_, err = repo.GetThread(ctx, th.ID)
	assert.ErrorIs(t, err, thread.ErrNotFound)
	_, err = repo.GetRun(ctx, run.ID)
	assert.ErrorIs(t, err, thread.ErrNotFound)
	count, err := repo.CountMessages(ctx, th.ID)
	require.NoError(t, err)
	assert.Zero(t, count)
}

func TestListThreads_OrderedByActivity(t *testing.T) {
	repo := NewMemoryRepository()
	ctx := context.Background()

	base := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	repo.now = func() time.Time { return base }
	quiet := newThread(t, repo, "user-1")
	repo.now = func() time.Time { return base.Add(time.Minute) }
	older := newThread(t, repo, "user-1")
	repo.now = func() time.Time { return base.Add(2 * time.Minute) }
	active := newThread(t, repo, "user-1")
	newThread(t, repo, "someone-else")

	repo.now = func() time.Time { return base.Add(time.Hour) }
	_, err := repo.AppendMessage(ctx, older.ID, thread.RoleUser, "one", nil)
	require.NoError(t, err)
	repo.now = func() time.Time { return base.Add(2 * time.Hour) }
	_, err = repo.AppendMessage(ctx, active.ID, thread.RoleUser, "two", nil)
	require.NoError(t, err)

	threads, err := repo.ListThreads(ctx, "user-1")
	require.NoError(t, err)
	require.Len(t, threads, 3)
	assert.Equal(t, active.ID, threads[0].ID)
	assert.Equal(t, older.ID, threads[1].ID)
	assert.Equal(t, quiet.ID, threads[2].ID)
	assert.Equal(t, int64(1), threads[0].MessageCount)
}
