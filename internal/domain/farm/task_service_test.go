package farm_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"agri-api/internal/domain/farm"
	"agri-api/internal/utils/platformerrors"
)

func str(v string) *string { return &v }

func TestCreateTask_DefaultsAndLinks(t *testing.T) {
	svc, f, z := setup(t)
	ctx := context.Background()

	m, err := svc.CreateMember(ctx, owner, f.ID, farm.MemberParams{Name: "Layla", Role: "Field Specialist"})
	require.NoError(t, err)

	task, err := svc.CreateTask(ctx, owner, f.ID, farm.TaskParams{
		Title:      "  Inspect drip lines ",
		ZoneID:     &z.ID,
		AssignedTo: &m.ID,
	})
	require.NoError(t, err)
	assert.Equal(t, "Inspect drip lines", task.Title)
	assert.Equal(t, farm.PriorityMedium, task.Priority)
	assert.Equal(t, farm.TaskPending, task.Status)
	assert.Equal(t, owner.ID, task.CreatedBy)
	assert.Nil(t, task.CompletedAt)
	require.NotNil(t, task.ZoneID)
	assert.Equal(t, z.ID, *task.ZoneID)

	done, err := svc.CreateTask(ctx, owner, f.ID, farm.TaskParams{Title: "Harvest dates", Status: farm.TaskCompleted})
	require.NoError(t, err)
	assert.NotNil(t, done.CompletedAt)
}

func TestCreateTask_Validation(t *testing.T) {
	svc, f, _ := setup(t)
	ctx := context.Background()

	other, err := svc.CreateFarm(ctx, owner, farm.CreateParams{Name: "South Field"})
	require.NoError(t, err)
	foreignZone, err := svc.CreateZone(ctx, owner, other.ID, farm.ZoneParams{Name: "Zone S"})
	require.NoError(t, err)

	cases := map[string]farm.TaskParams{
		"empty title":      {Title: " "},
		"bad priority":     {Title: "x", Priority: "urgent"},
		"bad status":       {Title: "x", Status: "done"},
		"zone elsewhere":   {Title: "x", ZoneID: &foreignZone.ID},
		"unknown assignee": {Title: "x", AssignedTo: str("nobody")},
	}
	for name, params := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := svc.CreateTask(ctx, owner, f.ID, params)
			assert.True(t, platformerrors.IsErrorType(err, platformerrors.ErrorTypeValidation), err)
		})
	}

	_, err = svc.CreateTask(ctx, stranger, f.ID, farm.TaskParams{Title: "x"})
	assert.True(t, platformerrors.IsErrorType(err, platformerrors.ErrorTypeForbidden))
}

func TestListTasks_OrderAndFilters(t *testing.T) {
	svc, f, _ := setup(t)
	ctx := context.Background()
	day := time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC)
	later := day.Add(48 * time.Hour)

	_, err := svc.CreateTask(ctx, owner, f.ID, farm.TaskParams{Title: "undated", Priority: farm.PriorityLow})
	require.NoError(t, err)
	_, err = svc.CreateTask(ctx, owner, f.ID, farm.TaskParams{Title: "later", DueDate: &later, Priority: farm.PriorityHigh})
	require.NoError(t, err)
	_, err = svc.CreateTask(ctx, owner, f.ID, farm.TaskParams{Title: "soon", DueDate: &day, Priority: farm.PriorityHigh})
	require.NoError(t, err)

	tasks, err := svc.ListTasks(ctx, owner, f.ID, "", "")
	require.NoError(t, err)
	require.Len(t, tasks, 3)
	assert.Equal(t, []string{"soon", "later", "undated"}, []string{tasks[0].Title, tasks[1].Title, tasks[2].Title})

	high, err := svc.ListTasks(ctx, owner, f.ID, "", farm.PriorityHigh)
	require.NoError(t, err)
	assert.Len(t, high, 2)

	_, err = svc.ListTasks(ctx, owner, f.ID, "someday", "")
	assert.True(t, platformerrors.IsErrorType(err, platformerrors.ErrorTypeValidation))

	_, err = svc.ListTasks(ctx, stranger, f.ID, "", "")
	assert.True(t, platformerrors.IsErrorType(err, platformerrors.ErrorTypeForbidden))
}

func TestUpdateTask_CompletionStamp(t *testing.T) {
	svc, f, _ := setup(t)
	ctx := context.Background()
	task, err := svc.CreateTask(ctx, owner, f.ID, farm.TaskParams{Title: "Flush filters"})
	require.NoError(t, err)

	completed := farm.TaskCompleted
	task, err = svc.UpdateTask(ctx, owner, task.ID, farm.TaskUpdate{Status: &completed})
	require.NoError(t, err)
	require.NotNil(t, task.CompletedAt)

	reopened := farm.TaskInProgress
	task, err = svc.UpdateTask(ctx, owner, task.ID, farm.TaskUpdate{Status: &reopened})
	require.NoError(t, err)
	assert.Nil(t, task.CompletedAt)

	at := time.Date(2025, 5, 2, 14, 0, 0, 0, time.UTC)
	task, err = svc.UpdateTask(ctx, owner, task.ID, farm.TaskUpdate{Status: &completed, CompletedAt: &at})
	require.NoError(t, err)
	require.NotNil(t, task.CompletedAt)
	assert.True(t, at.Equal(*task.CompletedAt))

	stored, err := svc.GetTask(ctx, owner, task.ID)
	require.NoError(t, err)
	assert.Equal(t, farm.TaskCompleted, stored.Status)

	_, err = svc.UpdateTask(ctx, stranger, task.ID, farm.TaskUpdate{Status: &reopened})
	assert.True(t, platformerrors.IsErrorType(err, platformerrors.ErrorTypeForbidden))
}

func TestUpdateTask_ClearsLinks(t *testing.T) {
	svc, f, z := setup(t)
	ctx := context.Background()
	task, err := svc.CreateTask(ctx, owner, f.ID, farm.TaskParams{Title: "Scout pests", ZoneID: &z.ID})
	require.NoError(t, err)

	task, err = svc.UpdateTask(ctx, owner, task.ID, farm.TaskUpdate{ZoneID: str("")})
	require.NoError(t, err)
	assert.Nil(t, task.ZoneID)
}

func TestDeleteTask(t *testing.T) {
	svc, f, _ := setup(t)
	ctx := context.Background()
	task, err := svc.CreateTask(ctx, owner, f.ID, farm.TaskParams{Title: "Prune"})
	require.NoError(t, err)

	err = svc.DeleteTask(ctx, stranger, task.ID)
	assert.True(t, platformerrors.IsErrorType(err, platformerrors.ErrorTypeForbidden))

	require.NoError(t, svc.DeleteTask(ctx, owner, task.ID))
	_, err = svc.GetTask(ctx, owner, task.ID)
	assert.ErrorIs(t, err, farm.ErrNotFound)
}
