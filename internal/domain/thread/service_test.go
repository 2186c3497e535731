package thread_test

import (
	"context"
	"strings"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"agri-api/internal/domain"
	"agri-api/internal/domain/thread"
	"agri-api/internal/infrastructure/repository/threadrepo"
	"agri-api/internal/utils/platformerrors"
)

var (
	alice = domain.Principal{ID: "alice", AuthMethod: domain.AuthMethodJWT}
	bob   = domain.Principal{ID: "bob", AuthMethod: domain.AuthMethodJWT}
)

func strPtr(s string) *string { return &s }

func newService() (*thread.Service, *threadrepo.MemoryRepository) {
	repo := threadrepo.NewMemoryRepository()
	return thread.NewService(repo, zerolog.Nop()), repo
}

func TestCreate_TrimsTitleAndDefaultsMetadata(t *testing.T) {
	svc, _ := newService()
	th, err := svc.Create(context.Background(), alice, thread.CreateParams{Title: strPtr("  Irrigation plan  ")})
	require.NoError(t, err)
	require.NotNil(t, th.Title)
	assert.Equal(t, "Irrigation plan", *th.Title)
	assert.Equal(t, "alice", th.UserID)
	assert.NotNil(t, th.Metadata)
}

func TestCreate_RejectsLongTitle(t *testing.T) {
	svc, _ := newService()
	_, err := svc.Create(context.Background(), alice, thread.CreateParams{Title: strPtr(strings.Repeat("x", 256))})
	assert.True(t, platformerrors.IsErrorType(err, platformerrors.ErrorTypeValidation))
}

func TestGet_OtherOwnerLooksMissing(t *testing.T) {
	svc, _ := newService()
	ctx := context.Background()
	th, err := svc.Create(ctx, alice, thread.CreateParams{})
	require.NoError(t, err)

	_, err = svc.Get(ctx, bob, th.ID)
	assert.True(t, platformerrors.IsErrorType(err, platformerrors.ErrorTypeNotFound))
	assert.ErrorIs(t, err, thread.ErrNotFound)

	got, err := svc.Get(ctx, alice, th.ID)
	require.NoError(t, err)
	assert.Zero(t, got.MessageCount)
}

func TestUpdate_PartialAndClearFarm(t *testing.T) {
	svc, _ := newService()
	ctx := context.Background()
	th, err := svc.Create(ctx, alice, thread.CreateParams{Title: strPtr("a"), FarmID: strPtr("farm-1")})
	require.NoError(t, err)

	pinned := true
	got, err := svc.Update(ctx, alice, th.ID, thread.UpdateParams{IsPinned: &pinned, FarmID: strPtr("")})
	require.NoError(t, err)
	assert.True(t, got.IsPinned)
	assert.Nil(t, got.FarmID)
	require.NotNil(t, got.Title)
	assert.Equal(t, "a", *got.Title)
}

func TestDelete_RemovesThread(t *testing.T) {
	svc, _ := newService()
	ctx := context.Background()
	th, err := svc.Create(ctx, alice, thread.CreateParams{})
	require.NoError(t, err)

	assert.Error(t, svc.Delete(ctx, bob, th.ID))
	require.NoError(t, svc.Delete(ctx, alice, th.ID))

	_, err = svc.Get(ctx, alice, th.ID)
	assert.ErrorIs(t, err, thread.ErrNotFound)
}

func TestMessages_OrderedAndClamped(t *testing.T) {
	svc, repo := newService()
	ctx := context.Background()
	th, err := svc.Create(ctx, alice, thread.CreateParams{})
	require.NoError(t, err)
	for i := 0; i < 3; i++ {
		_, err := repo.AppendMessage(ctx, th.ID, thread.RoleUser, "m", nil)
		require.NoError(t, err)
	}

	msgs, err := svc.Messages(ctx, alice, th.ID, 0)
	require.NoError(t, err)
	require.Len(t, msgs, 3)
	assert.Equal(t, int64(1), msgs[0].Position)

	_, err = svc.Messages(ctx, bob, th.ID, 10)
	assert.ErrorIs(t, err, thread.ErrNotFound)
}

func TestClampLimit(t *testing.T) {
	assert.Equal(t, 50, thread.ClampLimit(0, 50, 200))
	assert.Equal(t, 50, thread.ClampLimit(-3, 50, 200))
	assert.Equal(t, 10, thread.ClampLimit(10, 50, 200))
	assert.Equal(t, 200, thread.ClampLimit(1000, 50, 200))
}
