package farm_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"agri-api/internal/domain/farm"
	"agri-api/internal/utils/platformerrors"
)

func TestCreateMember_DefaultsAndValidation(t *testing.T) {
	svc, f, z := setup(t)
	ctx := context.Background()

	m, err := svc.CreateMember(ctx, owner, f.ID, farm.MemberParams{
		Name:          " Omar ",
		Role:          "Senior Worker",
		CurrentZoneID: &z.ID,
		HiredDate:     str("2023-09-15"),
	})
	require.NoError(t, err)
	assert.Equal(t, "Omar", m.Name)
	assert.Equal(t, farm.MemberActive, m.Status)
	assert.True(t, m.IsActive)
	require.NotNil(t, m.HiredDate)
	assert.Equal(t, 2023, m.HiredDate.Year())

	cases := map[string]farm.MemberParams{
		"empty name":  {Name: "", Role: "x"},
		"empty role":  {Name: "x", Role: " "},
		"bad status":  {Name: "x", Role: "x", Status: "asleep"},
		"long phone":  {Name: "x", Role: "x", Phone: str("+966 55 555 5555 ext 12")},
		"hired date":  {Name: "x", Role: "x", HiredDate: str("15/09/2023")},
		"zone absent": {Name: "x", Role: "x", CurrentZoneID: str("missing")},
	}
	for name, params := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := svc.CreateMember(ctx, owner, f.ID, params)
			assert.True(t, platformerrors.IsErrorType(err, platformerrors.ErrorTypeValidation), err)
		})
	}

	_, err = svc.CreateMember(ctx, stranger, f.ID, farm.MemberParams{Name: "x", Role: "x"})
	assert.True(t, platformerrors.IsErrorType(err, platformerrors.ErrorTypeForbidden))
}

func TestListTeam_ActiveByName(t *testing.T) {
	svc, f, _ := setup(t)
	ctx := context.Background()

	for _, name := range []string{"Zainab", "Ali", "Mona"} {
		_, err := svc.CreateMember(ctx, owner, f.ID, farm.MemberParams{Name: name, Role: "Worker"})
		require.NoError(t, err)
	}
	members, err := svc.ListTeam(ctx, owner, f.ID, "")
	require.NoError(t, err)
	require.Len(t, members, 3)
	assert.Equal(t, "Ali", members[0].Name)

	ali := members[0].ID
	require.NoError(t, svc.DeleteMember(ctx, owner, ali))
	members, err = svc.ListTeam(ctx, owner, f.ID, "")
	require.NoError(t, err)
	assert.Len(t, members, 2)

	gone, err := svc.GetMember(ctx, owner, ali)
	require.NoError(t, err)
	assert.False(t, gone.IsActive)

	vacation := farm.MemberVacation
	_, err = svc.UpdateMember(ctx, owner, members[0].ID, farm.MemberUpdate{Status: &vacation})
	require.NoError(t, err)
	away, err := svc.ListTeam(ctx, owner, f.ID, farm.MemberVacation)
	require.NoError(t, err)
	assert.Len(t, away, 1)

	_, err = svc.ListTeam(ctx, stranger, f.ID, "")
	assert.True(t, platformerrors.IsErrorType(err, platformerrors.ErrorTypeForbidden))
}

func TestListMemberTasks(t *testing.T) {
	svc, f, _ := setup(t)
	ctx := context.Background()

	m, err := svc.CreateMember(ctx, owner, f.ID, farm.MemberParams{Name: "Huda", Role: "Irrigation Tech"})
	require.NoError(t, err)
	_, err = svc.CreateTask(ctx, owner, f.ID, farm.TaskParams{Title: "Check valves", AssignedTo: &m.ID})
	require.NoError(t, err)
	_, err = svc.CreateTask(ctx, owner, f.ID, farm.TaskParams{Title: "Done already", AssignedTo: &m.ID, Status: farm.TaskCompleted})
	require.NoError(t, err)
	_, err = svc.CreateTask(ctx, owner, f.ID, farm.TaskParams{Title: "Unassigned"})
	require.NoError(t, err)

	tasks, err := svc.ListMemberTasks(ctx, owner, m.ID, "")
	require.NoError(t, err)
	assert.Len(t, tasks, 2)

	pending, err := svc.ListMemberTasks(ctx, owner, m.ID, farm.TaskPending)
	require.NoError(t, err)
	require.Len(t, pending, 1)
	assert.Equal(t, "Check valves", pending[0].Title)

	_, err = svc.ListMemberTasks(ctx, stranger, m.ID, "")
	assert.True(t, platformerrors.IsErrorType(err, platformerrors.ErrorTypeForbidden))

	require.NoError(t, svc.DeleteMember(ctx, owner, m.ID))
	_, err = svc.CreateTask(ctx, owner, f.ID, farm.TaskParams{Title: "x", AssignedTo: &m.ID})
	assert.True(t, platformerrors.IsErrorType(err, platformerrors.ErrorTypeValidation))
}
