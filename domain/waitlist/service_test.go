package waitlist

import (
	"context"
	"testing"
	"time"

	"github.com/Nathankoth/waitlist-main-second/internal/log"
	"github.com/Nathankoth/waitlist-main-second/internal/models"
	apperrors "github.com/Nathankoth/waitlist-main-second/pkg/errors"
	"github.com/Nathankoth/waitlist-main-second/pkg/notify"
	"github.com/stretchr/testify/assert"
	"go.uber.org/mock/gomock"
)

type recordingDispatcher struct {
	signups []*notify.Signup
}

func (d *recordingDispatcher) Dispatch(signup *notify.Signup) {
	d.signups = append(d.signups, signup)
}

func newTestService(t *testing.T) (*MockWaitlistRepository, *recordingDispatcher, WaitlistService) {
	ctrl := gomock.NewController(t)
	t.Cleanup(ctrl.Finish)
	mockRepo := NewMockWaitlistRepository(ctrl)
	dispatcher := &recordingDispatcher{}
	logger := log.NewLoggerWithJSONOutput()
	service := NewWaitlistService(logger, DefaultRules(), mockRepo, dispatcher)
	return mockRepo, dispatcher, service
}

func TestJoinWaitlist_Success(t *testing.T) {
	mockRepo, dispatcher, service := newTestService(t)

	req := &JoinWaitlistRequest{
		Email:    "  Jane@Example.COM ",
		Role:     "Realtor",
		FullName: "Jane Doe",
	}

	mockRepo.EXPECT().CreateEntry(gomock.Any(), gomock.Any()).DoAndReturn(
		func(_ context.Context, entry *models.WaitlistEntry) (*models.WaitlistEntry, error) {
			assert.Equal(t, "jane@example.com", entry.Email)
			assert.Equal(t, "realtor", entry.Role)
			entry.ID = "e1f6c1a2-9d3b-4c2e-8f2a-6b1d2c3e4f50"
			entry.CreatedAt = time.Now()
			return entry, nil
		},
	)

	result, err := service.JoinWaitlist(context.Background(), req)
	assert.NoError(t, err)
	assert.NotNil(t, result)
	assert.Equal(t, "e1f6c1a2-9d3b-4c2e-8f2a-6b1d2c3e4f50", result.ID)
	assert.Equal(t, "jane@example.com", result.Email)
	assert.Equal(t, "realtor", result.Role)
	assert.NotEmpty(t, result.CreatedAt)

	assert.Len(t, dispatcher.signups, 1)
	assert.Equal(t, "jane@example.com", dispatcher.signups[0].Email)
}

func TestJoinWaitlist_NilRequest(t *testing.T) {
	_, dispatcher, service := newTestService(t)

	result, err := service.JoinWaitlist(context.Background(), nil)
	assert.Error(t, err)
	assert.Nil(t, result)
	assert.Equal(t, apperrors.ErrorTypeInvalidRequest, apperrors.GetErrorType(err))
	assert.Empty(t, dispatcher.signups)
}

func TestJoinWaitlist_ValidationFailureJoinsAllMessages(t *testing.T) {
	_, dispatcher, service := newTestService(t)

	req := &JoinWaitlistRequest{Email: "broken", Role: ""}

	result, err := service.JoinWaitlist(context.Background(), req)
	assert.Error(t, err)
	assert.Nil(t, result)
	assert.Equal(t, apperrors.ErrorTypeInvalidRequest, apperrors.GetErrorType(err))
	assert.Equal(t, "Invalid email address, Role is required", apperrors.GetHumanReadableMessage(err))
	assert.Empty(t, dispatcher.signups)
}

func TestJoinWaitlist_DuplicateEmail(t *testing.T) {
	mockRepo, dispatcher, service := newTestService(t)

	req := &JoinWaitlistRequest{Email: "dup@example.com", Role: "investor"}

	mockRepo.EXPECT().CreateEntry(gomock.Any(), gomock.Any()).
		Return(nil, apperrors.NewConflictError("Email already registered", nil))

	result, err := service.JoinWaitlist(context.Background(), req)
	assert.Error(t, err)
	assert.Nil(t, result)
	assert.Equal(t, apperrors.ErrorTypeConflict, apperrors.GetErrorType(err))
	assert.Empty(t, dispatcher.signups, "a rejected signup must not notify the sinks")
}

func TestJoinWaitlist_RepositoryError(t *testing.T) {
	mockRepo, dispatcher, service := newTestService(t)

	req := &JoinWaitlistRequest{Email: "fail@example.com", Role: "other"}

	mockRepo.EXPECT().CreateEntry(gomock.Any(), gomock.Any()).
		Return(nil, apperrors.NewDatabaseError("insert failed", nil))

	result, err := service.JoinWaitlist(context.Background(), req)
	assert.Error(t, err)
	assert.Nil(t, result)
	assert.Equal(t, apperrors.ErrorTypeDatabaseError, apperrors.GetErrorType(err))
	assert.Empty(t, dispatcher.signups)
}

func TestJoinWaitlist_NilDispatcherIsSkipped(t *testing.T) {
	ctrl := gomock.NewController(t)
	t.Cleanup(ctrl.Finish)
	mockRepo := NewMockWaitlistRepository(ctrl)
	service := NewWaitlistService(log.NewLoggerWithJSONOutput(), DefaultRules(), mockRepo, nil)

	mockRepo.EXPECT().CreateEntry(gomock.Any(), gomock.Any()).DoAndReturn(
		func(_ context.Context, entry *models.WaitlistEntry) (*models.WaitlistEntry, error) {
			entry.ID = "0e0a2f3c-1111-4222-8333-444455556666"
			entry.CreatedAt = time.Now()
			return entry, nil
		},
	)

	result, err := service.JoinWaitlist(context.Background(), &JoinWaitlistRequest{
		Email: "quiet@example.com",
		Role:  "homeowner",
	})
	assert.NoError(t, err)
	assert.NotNil(t, result)
}

func TestFindEntryByID_Success(t *testing.T) {
	mockRepo, _, service := newTestService(t)

	expected := &models.WaitlistEntry{
		ID:        "aa6b2f3c-7777-4888-9999-000011112222",
		Email:     "found@example.com",
		Role:      "surveyor",
		CreatedAt: time.Now(),
	}

	mockRepo.EXPECT().FindEntryByID(gomock.Any(), expected.ID).Return(expected, nil)

	result, err := service.FindEntryByID(context.Background(), expected.ID)
	assert.NoError(t, err)
	assert.Equal(t, expected.ID, result.ID)
	assert.Equal(t, "found@example.com", result.Email)
}

func TestFindEntryByID_EmptyID(t *testing.T) {
	_, _, service := newTestService(t)

	result, err := service.FindEntryByID(context.Background(), "   ")
	assert.Error(t, err)
	assert.Nil(t, result)
	assert.Equal(t, apperrors.ErrorTypeInvalidRequest, apperrors.GetErrorType(err))
}

func TestFindEntryByID_NotFound(t *testing.T) {
	mockRepo, _, service := newTestService(t)

	mockRepo.EXPECT().FindEntryByID(gomock.Any(), "missing").
		Return(nil, apperrors.NewNotFoundError("waitlist entry not found", nil))

	result, err := service.FindEntryByID(context.Background(), "missing")
	assert.Error(t, err)
	assert.Nil(t, result)
	assert.Equal(t, apperrors.ErrorTypeNotFound, apperrors.GetErrorType(err))
}

func TestListEntries_Success(t *testing.T) {
	mockRepo, _, service := newTestService(t)

	entries := []*models.WaitlistEntry{
		{ID: "id-1", Email: "first@example.com", Role: "realtor", CreatedAt: time.Now()},
		{ID: "id-2", Email: "second@example.com", Role: "investor", CreatedAt: time.Now()},
	}

	mockRepo.EXPECT().GetAllEntries(gomock.Any()).Return(entries, nil)
	mockRepo.EXPECT().CountEntries(gomock.Any()).Return(int64(2), nil)

	result, count, err := service.ListEntries(context.Background())
	assert.NoError(t, err)
	assert.Equal(t, int64(2), count)
	assert.Len(t, result, 2)
	assert.Equal(t, "first@example.com", result[0].Email)
}

func TestListEntries_RepositoryError(t *testing.T) {
	mockRepo, _, service := newTestService(t)

	mockRepo.EXPECT().GetAllEntries(gomock.Any()).
		Return(nil, apperrors.NewDatabaseError("query failed", nil))

	result, count, err := service.ListEntries(context.Background())
	assert.Error(t, err)
	assert.Nil(t, result)
	assert.Equal(t, int64(0), count)
}
