package services

import (
	"context"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"

	"github.com/magabrotheeeer/gym-scheduler/internal/models"
)

type RepoMock struct{ mock.Mock }

func (m *RepoMock) GetMember(ctx context.Context, uid string) (*models.Member, error) {
	args := m.Called(ctx, uid)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Member), args.Error(1)
}

func (m *RepoMock) GetSession(ctx context.Context, id string) (*models.Session, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Session), args.Error(1)
}

func (m *RepoMock) GetSubscription(ctx context.Context, memberUID string) (*models.Subscription, error) {
	args := m.Called(ctx, memberUID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Subscription), args.Error(1)
}

func (m *RepoMock) RecordAbsence(ctx context.Context, absence models.Absence) error {
	return m.Called(ctx, absence).Error(0)
}

func (m *RepoMock) FindPendingAbsence(ctx context.Context, memberUID, sessionID string) (*models.Absence, error) {
	args := m.Called(ctx, memberUID, sessionID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Absence), args.Error(1)
}

func (m *RepoMock) ListAbsences(ctx context.Context, memberUID string, from, to time.Time, status string) ([]*models.Absence, error) {
	args := m.Called(ctx, memberUID, from, to, status)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*models.Absence), args.Error(1)
}

func (m *RepoMock) CountActiveRecoveries(ctx context.Context, memberUID string, start, end time.Time) (int, error) {
	args := m.Called(ctx, memberUID, start, end)
	return args.Int(0), args.Error(1)
}

func (m *RepoMock) ListRecoveryCandidateSessions(ctx context.Context, start, end time.Time, excludeGroupID, difficultyLevel string) ([]*models.RecoverySlot, error) {
	args := m.Called(ctx, start, end, excludeGroupID, difficultyLevel)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*models.RecoverySlot), args.Error(1)
}

func (m *RepoMock) ScheduleRecovery(ctx context.Context, rec models.Recovery, absenceID, originalGroupID string, quotaStart, quotaEnd time.Time) error {
	return m.Called(ctx, rec, absenceID, originalGroupID, quotaStart, quotaEnd).Error(0)
}

func (m *RepoMock) CancelRecovery(ctx context.Context, memberUID, absenceID string) error {
	return m.Called(ctx, memberUID, absenceID).Error(0)
}

type CacheMock struct{ mock.Mock }

func (m *CacheMock) Get(key string, result any) (bool, error) {
	args := m.Called(key, result)
	return args.Bool(0), args.Error(1)
}

func (m *CacheMock) Set(key string, value any, expiration time.Duration) error {
	return m.Called(key, value, expiration).Error(0)
}

func (m *CacheMock) Invalidate(key string) error {
	return m.Called(key).Error(0)
}

func NewNoopLogger() *slog.Logger {
	h := slog.NewTextHandler(io.Discard, &slog.HandlerOptions{})
	return slog.New(h)
}

func TestRecovery_RecordAbsence(t *testing.T) {
	groupID := "11111111-1111-1111-1111-111111111111"
	otherGroupID := "22222222-2222-2222-2222-222222222222"
	sessionID := "33333333-3333-3333-3333-333333333333"
	futureDate := time.Now().Add(48 * time.Hour)

	member := &models.Member{UID: "member-1", GroupID: &groupID}
	activeSub := &models.Subscription{MemberUID: "member-1", Type: models.SubscriptionFitness, Status: models.SubscriptionStatusActive}

	tests := []struct {
		name       string
		setupMocks func(repo *RepoMock, cache *CacheMock)
		wantErr    error
	}{
		{
			name: "success",
			setupMocks: func(repo *RepoMock, cache *CacheMock) {
				repo.On("GetMember", mock.Anything, "member-1").Return(member, nil).Once()
				repo.On("GetSubscription", mock.Anything, "member-1").Return(activeSub, nil).Once()
				repo.On("GetSession", mock.Anything, sessionID).
					Return(&models.Session{ID: sessionID, GroupID: groupID, Date: futureDate}, nil).Once()
				repo.On("RecordAbsence", mock.Anything, mock.AnythingOfType("models.Absence")).Return(nil).Once()
				cache.On("Invalidate", "eligibility:member-1").Return(nil).Once()
			},
		},
		{
			name: "no subscription",
			setupMocks: func(repo *RepoMock, cache *CacheMock) {
				repo.On("GetMember", mock.Anything, "member-1").Return(member, nil).Once()
				repo.On("GetSubscription", mock.Anything, "member-1").
					Return(nil, models.ErrNoSubscription).Once()
			},
			wantErr: models.ErrSubscriptionInactive,
		},
		{
			name: "expired subscription",
			setupMocks: func(repo *RepoMock, cache *CacheMock) {
				repo.On("GetMember", mock.Anything, "member-1").Return(member, nil).Once()
				repo.On("GetSubscription", mock.Anything, "member-1").
					Return(&models.Subscription{Status: models.SubscriptionStatusExpired}, nil).Once()
			},
			wantErr: models.ErrSubscriptionInactive,
		},
		{
			name: "session already started",
			setupMocks: func(repo *RepoMock, cache *CacheMock) {
				repo.On("GetMember", mock.Anything, "member-1").Return(member, nil).Once()
				repo.On("GetSubscription", mock.Anything, "member-1").Return(activeSub, nil).Once()
				repo.On("GetSession", mock.Anything, sessionID).
					Return(&models.Session{ID: sessionID, GroupID: groupID, Date: time.Now().Add(-time.Hour)}, nil).Once()
			},
			wantErr: models.ErrInvalidState,
		},
		{
			name: "session of another group",
			setupMocks: func(repo *RepoMock, cache *CacheMock) {
				repo.On("GetMember", mock.Anything, "member-1").Return(member, nil).Once()
				repo.On("GetSubscription", mock.Anything, "member-1").Return(activeSub, nil).Once()
				repo.On("GetSession", mock.Anything, sessionID).
					Return(&models.Session{ID: sessionID, GroupID: otherGroupID, Date: futureDate}, nil).Once()
			},
			wantErr: models.ErrInvalidState,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			repo := new(RepoMock)
			cache := new(CacheMock)
			tt.setupMocks(repo, cache)

			svc := NewRecoveryService(repo, cache, NewNoopLogger())
			absence, err := svc.RecordAbsence(context.Background(), "member-1",
				models.DummyRecordAbsence{SessionID: sessionID, Reason: "sick"})

			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
			} else {
				assert.NoError(t, err)
				assert.Equal(t, models.AbsencePendingRecovery, absence.Status)
				assert.Equal(t, sessionID, absence.SessionID)
			}
			repo.AssertExpectations(t)
			cache.AssertExpectations(t)
		})
	}
}

func TestRecovery_ScheduleRecovery(t *testing.T) {
	groupID := "11111111-1111-1111-1111-111111111111"
	targetGroupID := "22222222-2222-2222-2222-222222222222"
	originalSessionID := "33333333-3333-3333-3333-333333333333"
	recoverySessionID := "44444444-4444-4444-4444-444444444444"
	futureDate := time.Now().Add(72 * time.Hour)

	member := &models.Member{UID: "member-1", GroupID: &groupID}
	absence := &models.Absence{ID: "abs-1", MemberUID: "member-1", SessionID: originalSessionID, Status: models.AbsencePendingRecovery}

	tests := []struct {
		name       string
		setupMocks func(repo *RepoMock, cache *CacheMock)
		wantErr    error
	}{
		{
			name: "success",
			setupMocks: func(repo *RepoMock, cache *CacheMock) {
				repo.On("GetMember", mock.Anything, "member-1").Return(member, nil).Once()
				repo.On("FindPendingAbsence", mock.Anything, "member-1", originalSessionID).Return(absence, nil).Once()
				repo.On("CountActiveRecoveries", mock.Anything, "member-1", mock.Anything, mock.Anything).Return(0, nil).Once()
				repo.On("GetSession", mock.Anything, recoverySessionID).
					Return(&models.Session{ID: recoverySessionID, GroupID: targetGroupID, Date: futureDate}, nil).Once()
				repo.On("ScheduleRecovery", mock.Anything, mock.AnythingOfType("models.Recovery"),
					"abs-1", groupID, mock.Anything, mock.Anything).Return(nil).Once()
				cache.On("Invalidate", "eligibility:member-1").Return(nil).Once()
			},
		},
		{
			name: "no pending absence",
			setupMocks: func(repo *RepoMock, cache *CacheMock) {
				repo.On("GetMember", mock.Anything, "member-1").Return(member, nil).Once()
				repo.On("FindPendingAbsence", mock.Anything, "member-1", originalSessionID).
					Return(nil, models.ErrNoPendingAbsence).Once()
			},
			wantErr: models.ErrNoPendingAbsence,
		},
		{
			name: "quota exceeded",
			setupMocks: func(repo *RepoMock, cache *CacheMock) {
				repo.On("GetMember", mock.Anything, "member-1").Return(member, nil).Once()
				repo.On("FindPendingAbsence", mock.Anything, "member-1", originalSessionID).Return(absence, nil).Once()
				repo.On("CountActiveRecoveries", mock.Anything, "member-1", mock.Anything, mock.Anything).
					Return(models.MaxRecoveriesPerMonth, nil).Once()
			},
			wantErr: models.ErrQuotaExceeded,
		},
		{
			name: "recovery session not found",
			setupMocks: func(repo *RepoMock, cache *CacheMock) {
				repo.On("GetMember", mock.Anything, "member-1").Return(member, nil).Once()
				repo.On("FindPendingAbsence", mock.Anything, "member-1", originalSessionID).Return(absence, nil).Once()
				repo.On("CountActiveRecoveries", mock.Anything, "member-1", mock.Anything, mock.Anything).Return(1, nil).Once()
				repo.On("GetSession", mock.Anything, recoverySessionID).
					Return(nil, models.ErrSessionNotFound).Once()
			},
			wantErr: models.ErrInvalidSession,
		},
		{
			name: "recovery session in the past",
			setupMocks: func(repo *RepoMock, cache *CacheMock) {
				repo.On("GetMember", mock.Anything, "member-1").Return(member, nil).Once()
				repo.On("FindPendingAbsence", mock.Anything, "member-1", originalSessionID).Return(absence, nil).Once()
				repo.On("CountActiveRecoveries", mock.Anything, "member-1", mock.Anything, mock.Anything).Return(0, nil).Once()
				repo.On("GetSession", mock.Anything, recoverySessionID).
					Return(&models.Session{ID: recoverySessionID, GroupID: targetGroupID, Date: time.Now().Add(-time.Hour)}, nil).Once()
			},
			wantErr: models.ErrInvalidSession,
		},
		{
			name: "session full inside transaction",
			setupMocks: func(repo *RepoMock, cache *CacheMock) {
				repo.On("GetMember", mock.Anything, "member-1").Return(member, nil).Once()
				repo.On("FindPendingAbsence", mock.Anything, "member-1", originalSessionID).Return(absence, nil).Once()
				repo.On("CountActiveRecoveries", mock.Anything, "member-1", mock.Anything, mock.Anything).Return(0, nil).Once()
				repo.On("GetSession", mock.Anything, recoverySessionID).
					Return(&models.Session{ID: recoverySessionID, GroupID: targetGroupID, Date: futureDate}, nil).Once()
				repo.On("ScheduleRecovery", mock.Anything, mock.AnythingOfType("models.Recovery"),
					"abs-1", groupID, mock.Anything, mock.Anything).Return(models.ErrSessionFull).Once()
			},
			wantErr: models.ErrSessionFull,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			repo := new(RepoMock)
			cache := new(CacheMock)
			tt.setupMocks(repo, cache)

			svc := NewRecoveryService(repo, cache, NewNoopLogger())
			rec, err := svc.ScheduleRecovery(context.Background(), "member-1", originalSessionID, recoverySessionID)

			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
			} else {
				assert.NoError(t, err)
				assert.Equal(t, models.RecoveryScheduled, rec.Status)
				assert.Equal(t, recoverySessionID, rec.RecoverySessionID)
				assert.Equal(t, targetGroupID, rec.TemporaryGroupID)
			}
			repo.AssertExpectations(t)
			cache.AssertExpectations(t)
		})
	}
}

func TestRecovery_GetRecoveryEligibility(t *testing.T) {
	member := &models.Member{UID: "member-1"}

	tests := []struct {
		name         string
		setupMocks   func(repo *RepoMock, cache *CacheMock)
		wantEligible bool
		wantLeft     int
		wantReason   string
	}{
		{
			name: "eligible with one slot used",
			setupMocks: func(repo *RepoMock, cache *CacheMock) {
				cache.On("Get", "eligibility:member-1", mock.Anything).Return(false, nil).Once()
				repo.On("GetMember", mock.Anything, "member-1").Return(member, nil).Once()
				repo.On("GetSubscription", mock.Anything, "member-1").
					Return(&models.Subscription{Type: models.SubscriptionComplete, Status: models.SubscriptionStatusActive}, nil).Once()
				repo.On("CountActiveRecoveries", mock.Anything, "member-1", mock.Anything, mock.Anything).Return(1, nil).Once()
				cache.On("Set", "eligibility:member-1", mock.Anything, 5*time.Minute).Return(nil).Once()
			},
			wantEligible: true,
			wantLeft:     1,
		},
		{
			name: "no subscription",
			setupMocks: func(repo *RepoMock, cache *CacheMock) {
				cache.On("Get", "eligibility:member-1", mock.Anything).Return(false, nil).Once()
				repo.On("GetMember", mock.Anything, "member-1").Return(member, nil).Once()
				repo.On("GetSubscription", mock.Anything, "member-1").
					Return(nil, models.ErrNoSubscription).Once()
				cache.On("Set", "eligibility:member-1", mock.Anything, 5*time.Minute).Return(nil).Once()
			},
			wantReason: "member has no subscription",
		},
		{
			name: "basic subscription has no recoveries",
			setupMocks: func(repo *RepoMock, cache *CacheMock) {
				cache.On("Get", "eligibility:member-1", mock.Anything).Return(false, nil).Once()
				repo.On("GetMember", mock.Anything, "member-1").Return(member, nil).Once()
				repo.On("GetSubscription", mock.Anything, "member-1").
					Return(&models.Subscription{Type: models.SubscriptionBasic, Status: models.SubscriptionStatusActive}, nil).Once()
				cache.On("Set", "eligibility:member-1", mock.Anything, 5*time.Minute).Return(nil).Once()
			},
			wantReason: "subscription type does not include recoveries",
		},
		{
			name: "quota exhausted",
			setupMocks: func(repo *RepoMock, cache *CacheMock) {
				cache.On("Get", "eligibility:member-1", mock.Anything).Return(false, nil).Once()
				repo.On("GetMember", mock.Anything, "member-1").Return(member, nil).Once()
				repo.On("GetSubscription", mock.Anything, "member-1").
					Return(&models.Subscription{Type: models.SubscriptionFitness, Status: models.SubscriptionStatusActive}, nil).Once()
				repo.On("CountActiveRecoveries", mock.Anything, "member-1", mock.Anything, mock.Anything).
					Return(models.MaxRecoveriesPerMonth, nil).Once()
				cache.On("Set", "eligibility:member-1", mock.Anything, 5*time.Minute).Return(nil).Once()
			},
			wantReason: "monthly recovery quota exhausted",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			repo := new(RepoMock)
			cache := new(CacheMock)
			tt.setupMocks(repo, cache)

			svc := NewRecoveryService(repo, cache, NewNoopLogger())
			result, err := svc.GetRecoveryEligibility(context.Background(), "member-1")

			assert.NoError(t, err)
			assert.Equal(t, tt.wantEligible, result.Eligible)
			assert.Equal(t, tt.wantLeft, result.RemainingRecoveries)
			assert.Equal(t, tt.wantReason, result.Reason)
			repo.AssertExpectations(t)
			cache.AssertExpectations(t)
		})
	}
}

func TestRecovery_ListAvailableRecoverySlots(t *testing.T) {
	groupID := "11111111-1111-1111-1111-111111111111"
	member := &models.Member{UID: "member-1", GroupID: &groupID, FitnessLevel: "intermediate"}
	slotsResult := []*models.RecoverySlot{{SessionID: "sess-1", AvailableSlots: 3}}

	repo := new(RepoMock)
	cache := new(CacheMock)
	repo.On("GetMember", mock.Anything, "member-1").Return(member, nil).Once()
	repo.On("ListRecoveryCandidateSessions", mock.Anything, mock.Anything, mock.Anything, groupID, "intermediate").
		Return(slotsResult, nil).Once()

	svc := NewRecoveryService(repo, cache, NewNoopLogger())
	result, err := svc.ListAvailableRecoverySlots(context.Background(), "member-1", time.Time{}, time.Time{})

	assert.NoError(t, err)
	assert.Len(t, result, 1)
	repo.AssertExpectations(t)
}
