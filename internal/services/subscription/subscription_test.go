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

func (m *RepoMock) GetSubscription(ctx context.Context, memberUID string) (*models.Subscription, error) {
	args := m.Called(ctx, memberUID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Subscription), args.Error(1)
}

func (m *RepoMock) UpsertSubscription(ctx context.Context, sub models.Subscription, payment models.PaymentRecord) error {
	return m.Called(ctx, sub, payment).Error(0)
}

func (m *RepoMock) UpdateRenewal(ctx context.Context, memberUID string, newEndDate *time.Time, status string, payment models.PaymentRecord) error {
	return m.Called(ctx, memberUID, newEndDate, status, payment).Error(0)
}

func (m *RepoMock) SetTotalDue(ctx context.Context, memberUID string, totalDue float64) error {
	return m.Called(ctx, memberUID, totalDue).Error(0)
}

func (m *RepoMock) ListPayments(ctx context.Context, memberUID, status string) ([]models.PaymentRecord, error) {
	args := m.Called(ctx, memberUID, status)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.PaymentRecord), args.Error(1)
}

func (m *RepoMock) GetMonthlyPrice(ctx context.Context, subscriptionType string) (float64, error) {
	args := m.Called(ctx, subscriptionType)
	return args.Get(0).(float64), args.Error(1)
}

func (m *RepoMock) ExpireSubscriptions(ctx context.Context, now time.Time) (int, error) {
	args := m.Called(ctx, now)
	return args.Int(0), args.Error(1)
}

func (m *RepoMock) ListExpiringSubscriptions(ctx context.Context, now, until time.Time) ([]*models.ExpiringSubscription, error) {
	args := m.Called(ctx, now, until)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*models.ExpiringSubscription), args.Error(1)
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

type ReminderMock struct{ mock.Mock }

func (m *ReminderMock) ScheduleReminder(memberUID, kind string, fireAt time.Time, payload any) error {
	return m.Called(memberUID, kind, fireAt, payload).Error(0)
}

func NewNoopLogger() *slog.Logger {
	h := slog.NewTextHandler(io.Discard, &slog.HandlerOptions{})
	return slog.New(h)
}

func expectCacheInvalidation(cache *CacheMock, memberUID string) {
	cache.On("Invalidate", "subscription:"+memberUID).Return(nil).Once()
	cache.On("Invalidate", "eligibility:"+memberUID).Return(nil).Once()
}

func TestSubscription_UpdateSubscription(t *testing.T) {
	member := &models.Member{UID: "member-1", Name: "Test Member"}
	validReq := models.DummyUpdateSubscription{
		Type:      models.SubscriptionComplete,
		StartDate: "01-10-2026",
		EndDate:   "01-11-2026",
		Price:     400,
	}

	tests := []struct {
		name       string
		req        models.DummyUpdateSubscription
		setupMocks func(repo *RepoMock, cache *CacheMock, reminders *ReminderMock)
		wantErr    error
	}{
		{
			name: "success",
			req:  validReq,
			setupMocks: func(repo *RepoMock, cache *CacheMock, reminders *ReminderMock) {
				repo.On("GetMember", mock.Anything, "member-1").Return(member, nil).Once()
				repo.On("UpsertSubscription", mock.Anything,
					mock.AnythingOfType("models.Subscription"),
					mock.AnythingOfType("models.PaymentRecord")).Return(nil).Once()
				reminders.On("ScheduleReminder", "member-1", "subscription_expiry",
					mock.Anything, mock.Anything).Return(nil).Once()
				expectCacheInvalidation(cache, "member-1")
			},
		},
		{
			name: "unknown subscription type",
			req: models.DummyUpdateSubscription{
				Type:      "platinum",
				StartDate: validReq.StartDate,
				EndDate:   validReq.EndDate,
				Price:     validReq.Price,
			},
			setupMocks: func(repo *RepoMock, cache *CacheMock, reminders *ReminderMock) {},
			wantErr:    models.ErrInvalidSubscriptionType,
		},
		{
			name: "invalid date format",
			req: models.DummyUpdateSubscription{
				Type:      validReq.Type,
				StartDate: "2026-10-01",
				EndDate:   validReq.EndDate,
				Price:     validReq.Price,
			},
			setupMocks: func(repo *RepoMock, cache *CacheMock, reminders *ReminderMock) {},
			wantErr:    models.ErrInvalidArgument,
		},
		{
			name: "end date before start date",
			req: models.DummyUpdateSubscription{
				Type:      validReq.Type,
				StartDate: "01-11-2026",
				EndDate:   "01-10-2026",
				Price:     validReq.Price,
			},
			setupMocks: func(repo *RepoMock, cache *CacheMock, reminders *ReminderMock) {},
			wantErr:    models.ErrInvalidArgument,
		},
		{
			name: "member not found",
			req:  validReq,
			setupMocks: func(repo *RepoMock, cache *CacheMock, reminders *ReminderMock) {
				repo.On("GetMember", mock.Anything, "member-1").
					Return(nil, models.ErrMemberNotFound).Once()
			},
			wantErr: models.ErrMemberNotFound,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			repo := new(RepoMock)
			cache := new(CacheMock)
			reminders := new(ReminderMock)
			tt.setupMocks(repo, cache, reminders)

			svc := NewSubscriptionService(repo, cache, reminders, NewNoopLogger())
			info, err := svc.UpdateSubscription(context.Background(), "member-1", "admin-1", tt.req)

			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
			} else {
				assert.NoError(t, err)
				assert.Equal(t, models.SubscriptionStatusActive, info.Subscription.Status)
				assert.True(t, info.Permissions.CanScheduleRecoveries)
				assert.True(t, info.Permissions.CanAccessNutritionPlans)
			}
			repo.AssertExpectations(t)
			cache.AssertExpectations(t)
			reminders.AssertExpectations(t)
		})
	}
}

func TestSubscription_ProcessRenewal_Paid(t *testing.T) {
	endDate := time.Now().AddDate(0, 0, 10)
	sub := &models.Subscription{
		MemberUID: "member-1",
		Type:      models.SubscriptionFitness,
		Status:    models.SubscriptionStatusActive,
		EndDate:   endDate,
	}
	wantEndDate := endDate.AddDate(0, 1, 0)

	repo := new(RepoMock)
	cache := new(CacheMock)
	reminders := new(ReminderMock)
	repo.On("GetSubscription", mock.Anything, "member-1").Return(sub, nil).Once()
	repo.On("UpdateRenewal", mock.Anything, "member-1", &wantEndDate,
		models.SubscriptionStatusActive, mock.AnythingOfType("models.PaymentRecord")).Return(nil).Once()
	reminders.On("ScheduleReminder", "member-1", "subscription_expiry", mock.Anything, mock.Anything).Return(nil).Once()
	expectCacheInvalidation(cache, "member-1")

	svc := NewSubscriptionService(repo, cache, reminders, NewNoopLogger())
	result, err := svc.ProcessRenewal(context.Background(), "member-1", "admin-1", true)

	assert.NoError(t, err)
	assert.Equal(t, wantEndDate, result.EndDate)
	assert.Equal(t, models.SubscriptionStatusActive, result.Status)
	repo.AssertExpectations(t)
	cache.AssertExpectations(t)
	reminders.AssertExpectations(t)
}

func TestSubscription_ProcessRenewal_Unpaid(t *testing.T) {
	sub := &models.Subscription{
		MemberUID: "member-1",
		Type:      models.SubscriptionBasic,
		Status:    models.SubscriptionStatusActive,
		EndDate:   time.Now().AddDate(0, 0, 1),
	}

	repo := new(RepoMock)
	cache := new(CacheMock)
	reminders := new(ReminderMock)
	repo.On("GetSubscription", mock.Anything, "member-1").Return(sub, nil).Twice()
	repo.On("UpdateRenewal", mock.Anything, "member-1", (*time.Time)(nil),
		models.SubscriptionStatusPendingRenewal, mock.AnythingOfType("models.PaymentRecord")).Return(nil).Once()
	repo.On("GetMonthlyPrice", mock.Anything, models.SubscriptionBasic).Return(150.0, nil).Once()
	repo.On("ListPayments", mock.Anything, "member-1", models.PaymentStatusUnpaid).
		Return([]models.PaymentRecord{{Amount: 0, Status: models.PaymentStatusUnpaid}}, nil).Once()
	repo.On("SetTotalDue", mock.Anything, "member-1", 300.0).Return(nil).Once()
	expectCacheInvalidation(cache, "member-1")

	svc := NewSubscriptionService(repo, cache, reminders, NewNoopLogger())
	result, err := svc.ProcessRenewal(context.Background(), "member-1", "admin-1", false)

	assert.NoError(t, err)
	assert.Equal(t, models.SubscriptionStatusPendingRenewal, result.Status)
	assert.Equal(t, 300.0, result.TotalDue)
	repo.AssertExpectations(t)
	cache.AssertExpectations(t)
}

func TestSubscription_CalculateTotalDue(t *testing.T) {
	tests := []struct {
		name    string
		sub     *models.Subscription
		unpaid  []models.PaymentRecord
		price   float64
		wantDue float64
	}{
		{
			name:    "active without debts",
			sub:     &models.Subscription{Type: models.SubscriptionFitness, Status: models.SubscriptionStatusActive},
			unpaid:  nil,
			price:   250,
			wantDue: 0,
		},
		{
			name:    "pending renewal adds monthly price",
			sub:     &models.Subscription{Type: models.SubscriptionFitness, Status: models.SubscriptionStatusPendingRenewal},
			unpaid:  nil,
			price:   250,
			wantDue: 250,
		},
		{
			name: "unpaid records use amount or price",
			sub:  &models.Subscription{Type: models.SubscriptionComplete, Status: models.SubscriptionStatusPendingRenewal},
			unpaid: []models.PaymentRecord{
				{Amount: 100, Status: models.PaymentStatusUnpaid},
				{Amount: 0, Status: models.PaymentStatusUnpaid},
			},
			price:   400,
			wantDue: 900,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			repo := new(RepoMock)
			cache := new(CacheMock)
			reminders := new(ReminderMock)
			repo.On("GetSubscription", mock.Anything, "member-1").Return(tt.sub, nil).Once()
			repo.On("GetMonthlyPrice", mock.Anything, tt.sub.Type).Return(tt.price, nil).Once()
			repo.On("ListPayments", mock.Anything, "member-1", models.PaymentStatusUnpaid).Return(tt.unpaid, nil).Once()
			repo.On("SetTotalDue", mock.Anything, "member-1", tt.wantDue).Return(nil).Once()

			svc := NewSubscriptionService(repo, cache, reminders, NewNoopLogger())
			got, err := svc.CalculateTotalDue(context.Background(), "member-1")

			assert.NoError(t, err)
			assert.Equal(t, tt.wantDue, got)
			repo.AssertExpectations(t)
		})
	}
}

func TestSubscription_SweepExpiredSubscriptions(t *testing.T) {
	now := time.Now()
	repo := new(RepoMock)
	cache := new(CacheMock)
	reminders := new(ReminderMock)
	repo.On("ExpireSubscriptions", mock.Anything, now).Return(3, nil).Once()

	svc := NewSubscriptionService(repo, cache, reminders, NewNoopLogger())
	count, err := svc.SweepExpiredSubscriptions(context.Background(), now)

	assert.NoError(t, err)
	assert.Equal(t, 3, count)
	repo.AssertExpectations(t)
}

func TestSubscription_GetExpiringSubscriptions(t *testing.T) {
	expiring := []*models.ExpiringSubscription{
		{MemberUID: "member-1", EndDate: time.Now().AddDate(0, 0, 3)},
	}
	repo := new(RepoMock)
	cache := new(CacheMock)
	reminders := new(ReminderMock)
	repo.On("ListExpiringSubscriptions", mock.Anything, mock.Anything, mock.Anything).Return(expiring, nil).Once()

	svc := NewSubscriptionService(repo, cache, reminders, NewNoopLogger())
	result, err := svc.GetExpiringSubscriptions(context.Background(), 7)

	assert.NoError(t, err)
	assert.Len(t, result, 1)
	assert.Equal(t, 3, result[0].DaysUntilExpiry)
	repo.AssertExpectations(t)
}

func TestSubscription_GetMemberSubscription_CacheHit(t *testing.T) {
	repo := new(RepoMock)
	cache := new(CacheMock)
	reminders := new(ReminderMock)
	cache.On("Get", "subscription:member-1", mock.Anything).Return(true, nil).Once()

	svc := NewSubscriptionService(repo, cache, reminders, NewNoopLogger())
	_, err := svc.GetMemberSubscription(context.Background(), "member-1")

	assert.NoError(t, err)
	cache.AssertExpectations(t)
	repo.AssertNotCalled(t, "GetSubscription", mock.Anything, mock.Anything)
}
