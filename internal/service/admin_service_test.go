package service

import (
	"alcyxob/fitcoach/internal/domain"
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"
)

type adminFixture struct {
	svc       AdminService
	users     *mockUserRepo
	profiles  *mockProfileRepo
	mappings  *mockMappingRepo
	publisher *recordingPublisher
}

func newAdminFixture() *adminFixture {
	f := &adminFixture{
		users:     newMockUserRepo(),
		profiles:  newMockProfileRepo(),
		mappings:  newMockMappingRepo(),
		publisher: &recordingPublisher{},
	}
	f.svc = NewAdminService(f.users, f.profiles, f.mappings, f.publisher, zap.NewNop())
	return f
}

func (f *adminFixture) trainer(name string) *domain.TrainerProfile {
	u := f.users.add(name, name+"@example.com", domain.RoleTrainer)
	return f.profiles.addTrainer(u.ID)
}

func (f *adminFixture) client(name string) *domain.ClientProfile {
	u := f.users.add(name, name+"@example.com", domain.RoleClient)
	return f.profiles.addClient(u.ID)
}

func TestAssignClient_CreatesMappingAndNotifies(t *testing.T) {
	f := newAdminFixture()
	trainer := f.trainer("tom")
	client := f.client("cat")

	mapping, err := f.svc.AssignClient(context.Background(), AssignInput{TrainerID: trainer.ID, ClientID: client.ID})
	require.NoError(t, err)
	assert.True(t, mapping.IsActive)
	assert.True(t, mapping.IsPrimary)
	assert.Equal(t, domain.MappingPrimary, mapping.Type)

	events := f.publisher.ofType(domain.NotificationTrainerAssigned)
	require.Len(t, events, 1)
	assert.Equal(t, client.UserID, events[0].UserID)
	assert.Equal(t, "tom has been assigned to coach you.", events[0].Message)
}

func TestAssignClient_Errors(t *testing.T) {
	f := newAdminFixture()
	ctx := context.Background()
	trainer := f.trainer("tom")
	client := f.client("cat")

	_, err := f.svc.AssignClient(ctx, AssignInput{TrainerID: primitive.NewObjectID(), ClientID: client.ID})
	assert.ErrorIs(t, err, ErrTrainerNotFound)

	_, err = f.svc.AssignClient(ctx, AssignInput{TrainerID: trainer.ID, ClientID: primitive.NewObjectID()})
	assert.ErrorIs(t, err, ErrClientNotFound)

	_, err = f.svc.AssignClient(ctx, AssignInput{TrainerID: trainer.ID, ClientID: client.ID, Type: "FOREVER"})
	assert.ErrorIs(t, err, ErrValidationFailed)

	_, err = f.svc.AssignClient(ctx, AssignInput{TrainerID: trainer.ID, ClientID: client.ID, Type: domain.MappingTemporary})
	require.NoError(t, err)
	_, err = f.svc.AssignClient(ctx, AssignInput{TrainerID: trainer.ID, ClientID: client.ID})
	assert.ErrorIs(t, err, ErrMappingExists)
}

func TestRemoveMapping(t *testing.T) {
	f := newAdminFixture()
	ctx := context.Background()
	trainer := f.trainer("tom")
	client := f.client("cat")
	mapping := f.mappings.link(trainer.ID, client.ID, domain.MappingPrimary)

	removed, err := f.svc.RemoveMapping(ctx, mapping.ID, "moved away")
	require.NoError(t, err)
	assert.False(t, removed.IsActive)
	assert.NotNil(t, removed.EndDate)
	assert.Equal(t, "moved away", removed.Reason)

	_, err = f.svc.RemoveMapping(ctx, mapping.ID, "")
	assert.ErrorIs(t, err, ErrMappingInactive)

	_, err = f.svc.RemoveMapping(ctx, primitive.NewObjectID(), "")
	assert.ErrorIs(t, err, ErrMappingNotFound)

	// The pair can be mapped again once the old mapping ended
	_, err = f.svc.AssignClient(ctx, AssignInput{TrainerID: trainer.ID, ClientID: client.ID})
	assert.NoError(t, err)
}

func TestListTrainers_CountsActiveClients(t *testing.T) {
	f := newAdminFixture()
	trainer := f.trainer("tom")
	f.mappings.link(trainer.ID, f.client("a").ID, domain.MappingPrimary)
	ended := f.mappings.link(trainer.ID, f.client("b").ID, domain.MappingPrimary)
	ended.IsActive = false

	overviews, err := f.svc.ListTrainers(context.Background())
	require.NoError(t, err)
	require.Len(t, overviews, 1)
	assert.EqualValues(t, 1, overviews[0].ActiveClients)
	require.NotNil(t, overviews[0].User)
	assert.Equal(t, "tom", overviews[0].User.Name)
}

func TestListMappings_ResolvesUsers(t *testing.T) {
	f := newAdminFixture()
	trainer := f.trainer("tom")
	client := f.client("cat")
	f.mappings.link(trainer.ID, client.ID, domain.MappingPrimary)
	ended := f.mappings.link(trainer.ID, f.client("dog").ID, domain.MappingPrimary)
	ended.IsActive = false

	res, err := f.svc.ListMappings(context.Background(), true, NewPage(1, 10))
	require.NoError(t, err)
	require.Len(t, res.Items, 1)
	assert.Equal(t, "tom", res.Items[0].Trainer.Name)
	assert.Equal(t, "cat", res.Items[0].Client.Name)

	res, err = f.svc.ListMappings(context.Background(), false, NewPage(1, 10))
	require.NoError(t, err)
	assert.EqualValues(t, 2, res.Total)
}

func TestListUsers(t *testing.T) {
	f := newAdminFixture()
	f.trainer("tom")
	f.client("cat")
	f.client("dog")

	res, err := f.svc.ListUsers(context.Background(), domain.RoleClient, NewPage(1, 10))
	require.NoError(t, err)
	assert.EqualValues(t, 2, res.Total)

	_, err = f.svc.ListUsers(context.Background(), domain.Role("root"), NewPage(1, 10))
	assert.ErrorIs(t, err, ErrValidationFailed)
}

func TestUpdateUserStatus(t *testing.T) {
	f := newAdminFixture()
	ctx := context.Background()
	admin := f.users.add("root", "root@example.com", domain.RoleAdmin)
	target := f.users.add("cat", "cat@example.com", domain.RoleClient)

	user, err := f.svc.UpdateUserStatus(ctx, admin.ID, target.ID, domain.UserStatusSuspended)
	require.NoError(t, err)
	assert.Equal(t, domain.UserStatusSuspended, user.Status)

	_, err = f.svc.UpdateUserStatus(ctx, admin.ID, admin.ID, domain.UserStatusInactive)
	assert.ErrorIs(t, err, ErrCannotChangeSelf)

	_, err = f.svc.UpdateUserStatus(ctx, admin.ID, target.ID, "banned")
	assert.ErrorIs(t, err, ErrInvalidUserStatus)

	_, err = f.svc.UpdateUserStatus(ctx, admin.ID, primitive.NewObjectID(), domain.UserStatusActive)
	assert.ErrorIs(t, err, ErrUserNotFound)

	f.users.err = errors.New("down")
	_, err = f.svc.UpdateUserStatus(ctx, admin.ID, target.ID, domain.UserStatusActive)
	assert.ErrorIs(t, err, ErrDataUnavailable)
}

func TestGetUser_IncludesProfile(t *testing.T) {
	f := newAdminFixture()
	ctx := context.Background()
	tp := f.trainer("tom")
	cp := f.client("cat")
	admin := f.users.add("ann", "ann@example.com", domain.RoleAdmin)

	got, err := f.svc.GetUser(ctx, tp.UserID)
	require.NoError(t, err)
	require.NotNil(t, got.TrainerProfile)
	assert.Equal(t, tp.ID, got.TrainerProfile.ID)
	assert.Nil(t, got.ClientProfile)
	assert.Empty(t, got.PasswordHash)

	got, err = f.svc.GetUser(ctx, cp.UserID)
	require.NoError(t, err)
	require.NotNil(t, got.ClientProfile)
	assert.Equal(t, cp.ID, got.ClientProfile.ID)

	got, err = f.svc.GetUser(ctx, admin.ID)
	require.NoError(t, err)
	assert.Nil(t, got.TrainerProfile)
	assert.Nil(t, got.ClientProfile)

	_, err = f.svc.GetUser(ctx, primitive.NewObjectID())
	assert.ErrorIs(t, err, ErrUserNotFound)

	f.profiles.err = errors.New("timeout")
	_, err = f.svc.GetUser(ctx, tp.UserID)
	assert.ErrorIs(t, err, ErrDataUnavailable)
}
