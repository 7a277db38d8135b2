// Package services содержит бизнес-логику управления абонементами:
// оформление и продление, расчёт задолженности, выметание просроченных
// и производные права участника.
package services

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/magabrotheeeer/gym-scheduler/internal/lib/month"
	"github.com/magabrotheeeer/gym-scheduler/internal/lib/sl"
	"github.com/magabrotheeeer/gym-scheduler/internal/models"
)

// dateLayout — формат дат в JSON-запросах.
const dateLayout = "02-01-2006"

// reminderLead — за сколько до конца действия абонемента уходит напоминание.
const reminderLead = 48 * time.Hour

// defaultExpiryThresholdDays — порог по умолчанию для списка истекающих абонементов.
const defaultExpiryThresholdDays = 7

// SubscriptionRepository определяет методы хранилища для работы с абонементами.
type SubscriptionRepository interface {
	GetMember(ctx context.Context, uid string) (*models.Member, error)
	GetSubscription(ctx context.Context, memberUID string) (*models.Subscription, error)
	UpsertSubscription(ctx context.Context, sub models.Subscription, payment models.PaymentRecord) error
	UpdateRenewal(ctx context.Context, memberUID string, newEndDate *time.Time, status string, payment models.PaymentRecord) error
	SetTotalDue(ctx context.Context, memberUID string, totalDue float64) error
	ListPayments(ctx context.Context, memberUID, status string) ([]models.PaymentRecord, error)
	GetMonthlyPrice(ctx context.Context, subscriptionType string) (float64, error)
	ExpireSubscriptions(ctx context.Context, now time.Time) (int, error)
	ListExpiringSubscriptions(ctx context.Context, now, until time.Time) ([]*models.ExpiringSubscription, error)
}

// Cache описывает методы для кэширования данных.
type Cache interface {
	Get(key string, result any) (bool, error)
	Set(key string, value any, expiration time.Duration) error
	Invalidate(key string) error
}

// ReminderScheduler планирует напоминание через внешний диспетчер уведомлений.
// Ошибка планирования не должна срывать основную операцию.
type ReminderScheduler interface {
	ScheduleReminder(memberUID, kind string, fireAt time.Time, payload any) error
}

// SubscriptionService реализует жизненный цикл абонемента.
type SubscriptionService struct {
	repo      SubscriptionRepository
	cache     Cache
	reminders ReminderScheduler
	log       *slog.Logger
}

// NewSubscriptionService создает новый экземпляр SubscriptionService.
func NewSubscriptionService(repo SubscriptionRepository, cache Cache, reminders ReminderScheduler, log *slog.Logger) *SubscriptionService {
	return &SubscriptionService{
		repo:      repo,
		cache:     cache,
		reminders: reminders,
		log:       log,
	}
}

func subscriptionCacheKey(memberUID string) string {
	return fmt.Sprintf("subscription:%s", memberUID)
}

// UpdateSubscription оформляет или заменяет абонемент участника.
// Права выводятся из типа на чтении и нигде не сохраняются.
// Напоминание об истечении планируется на endDate минус 48 часов,
// если этот момент ещё в будущем; иначе тихо пропускается.
func (s *SubscriptionService) UpdateSubscription(ctx context.Context, memberUID, adminUID string, req models.DummyUpdateSubscription) (*models.SubscriptionInfo, error) {
	if !models.IsValidSubscriptionType(req.Type) {
		return nil, fmt.Errorf("%w: %s", models.ErrInvalidSubscriptionType, req.Type)
	}

	startDate, err := time.Parse(dateLayout, req.StartDate)
	if err != nil {
		return nil, fmt.Errorf("invalid start date: %w", models.ErrInvalidArgument)
	}
	endDate, err := time.Parse(dateLayout, req.EndDate)
	if err != nil {
		return nil, fmt.Errorf("invalid end date: %w", models.ErrInvalidArgument)
	}
	if !endDate.After(startDate) {
		return nil, fmt.Errorf("end date must be after start date: %w", models.ErrInvalidArgument)
	}

	if _, err := s.repo.GetMember(ctx, memberUID); err != nil {
		return nil, err
	}

	sub := models.Subscription{
		MemberUID: memberUID,
		Type:      req.Type,
		Status:    models.SubscriptionStatusActive,
		StartDate: startDate,
		EndDate:   endDate,
		TotalDue:  0,
	}
	payment := models.PaymentRecord{
		MemberUID:   memberUID,
		Date:        time.Now(),
		Amount:      req.Price,
		Status:      models.PaymentStatusPaid,
		ConfirmedBy: adminUID,
	}
	if err := s.repo.UpsertSubscription(ctx, sub, payment); err != nil {
		return nil, err
	}

	s.log.Info("subscription updated",
		slog.String("member_uid", memberUID),
		slog.String("type", req.Type))

	s.scheduleExpiryReminder(memberUID, endDate)
	s.invalidateMemberCaches(memberUID)

	return &models.SubscriptionInfo{
		Subscription: sub,
		Permissions:  models.PermissionsFor(sub.Type),
	}, nil
}

// ProcessRenewal обрабатывает продление. При оплате конец действия сдвигается
// ровно на один календарный месяц от текущего endDate, а не от момента вызова,
// чтобы время обращения не съедало оплаченный период. Без оплаты абонемент
// переходит в pending_renewal и пересчитывается задолженность.
func (s *SubscriptionService) ProcessRenewal(ctx context.Context, memberUID, adminUID string, paid bool) (*models.Subscription, error) {
	sub, err := s.repo.GetSubscription(ctx, memberUID)
	if err != nil {
		return nil, err
	}

	payment := models.PaymentRecord{
		MemberUID:   memberUID,
		Date:        time.Now(),
		ConfirmedBy: adminUID,
	}

	if paid {
		newEndDate := sub.EndDate.AddDate(0, 1, 0)
		payment.Status = models.PaymentStatusPaid
		if err := s.repo.UpdateRenewal(ctx, memberUID, &newEndDate, models.SubscriptionStatusActive, payment); err != nil {
			return nil, err
		}
		sub.EndDate = newEndDate
		sub.Status = models.SubscriptionStatusActive

		s.log.Info("subscription renewed",
			slog.String("member_uid", memberUID),
			slog.Time("new_end_date", newEndDate))

		s.scheduleExpiryReminder(memberUID, newEndDate)
	} else {
		payment.Status = models.PaymentStatusUnpaid
		if err := s.repo.UpdateRenewal(ctx, memberUID, nil, models.SubscriptionStatusPendingRenewal, payment); err != nil {
			return nil, err
		}
		sub.Status = models.SubscriptionStatusPendingRenewal

		s.log.Info("subscription marked pending renewal", slog.String("member_uid", memberUID))

		totalDue, err := s.CalculateTotalDue(ctx, memberUID)
		if err != nil {
			return nil, err
		}
		sub.TotalDue = totalDue
	}

	s.invalidateMemberCaches(memberUID)
	return sub, nil
}

// CalculateTotalDue пересчитывает задолженность участника: месячная цена
// текущего типа при статусе pending_renewal плюс все неоплаченные записи
// истории (сумма записи, либо месячная цена, если сумма не задана).
func (s *SubscriptionService) CalculateTotalDue(ctx context.Context, memberUID string) (float64, error) {
	sub, err := s.repo.GetSubscription(ctx, memberUID)
	if err != nil {
		return 0, err
	}

	monthlyPrice, err := s.repo.GetMonthlyPrice(ctx, sub.Type)
	if err != nil {
		return 0, err
	}

	var totalDue float64
	if sub.Status == models.SubscriptionStatusPendingRenewal {
		totalDue += monthlyPrice
	}

	unpaid, err := s.repo.ListPayments(ctx, memberUID, models.PaymentStatusUnpaid)
	if err != nil {
		return 0, err
	}
	for _, p := range unpaid {
		if p.Amount > 0 {
			totalDue += p.Amount
		} else {
			totalDue += monthlyPrice
		}
	}

	if err := s.repo.SetTotalDue(ctx, memberUID, totalDue); err != nil {
		return 0, err
	}
	return totalDue, nil
}

// SweepExpiredSubscriptions переводит в expired все активные абонементы,
// закончившиеся к моменту now. Повторный запуск пропускает уже обработанные.
func (s *SubscriptionService) SweepExpiredSubscriptions(ctx context.Context, now time.Time) (int, error) {
	count, err := s.repo.ExpireSubscriptions(ctx, now)
	if err != nil {
		return 0, err
	}
	if count > 0 {
		s.log.Info("expired subscriptions swept", slog.Int("count", count))
	}
	return count, nil
}

// GetExpiringSubscriptions возвращает активные абонементы, истекающие
// в ближайшие thresholdDays дней, с количеством дней до конца действия.
func (s *SubscriptionService) GetExpiringSubscriptions(ctx context.Context, thresholdDays int) ([]*models.ExpiringSubscription, error) {
	if thresholdDays <= 0 {
		thresholdDays = defaultExpiryThresholdDays
	}
	now := time.Now()
	until := now.AddDate(0, 0, thresholdDays)

	expiring, err := s.repo.ListExpiringSubscriptions(ctx, now, until)
	if err != nil {
		return nil, err
	}
	for _, e := range expiring {
		e.DaysUntilExpiry = month.DaysUntil(now, e.EndDate)
	}
	return expiring, nil
}

// GetMemberSubscription возвращает абонемент участника с производными правами
// и историей платежей, используя кеш.
func (s *SubscriptionService) GetMemberSubscription(ctx context.Context, memberUID string) (*models.SubscriptionInfo, error) {
	cacheKey := subscriptionCacheKey(memberUID)
	var cached models.SubscriptionInfo
	found, err := s.cache.Get(cacheKey, &cached)
	if err != nil {
		s.log.Warn("failed to read subscription cache", sl.Err(err))
	}
	if found {
		return &cached, nil
	}

	sub, err := s.repo.GetSubscription(ctx, memberUID)
	if err != nil {
		return nil, err
	}
	payments, err := s.repo.ListPayments(ctx, memberUID, "")
	if err != nil {
		return nil, err
	}

	info := &models.SubscriptionInfo{
		Subscription: *sub,
		Permissions:  models.PermissionsFor(sub.Type),
		Payments:     payments,
	}
	if err := s.cache.Set(cacheKey, info, time.Hour); err != nil {
		s.log.Warn("failed to cache subscription", sl.Err(err))
	}
	return info, nil
}

// scheduleExpiryReminder планирует напоминание об истечении абонемента.
// Ошибка планирования логируется и не влияет на результат основной операции.
func (s *SubscriptionService) scheduleExpiryReminder(memberUID string, endDate time.Time) {
	fireAt := endDate.Add(-reminderLead)
	if !fireAt.After(time.Now()) {
		return
	}
	err := s.reminders.ScheduleReminder(memberUID, "subscription_expiry", fireAt, map[string]any{
		"end_date": endDate,
	})
	if err != nil {
		s.log.Warn("failed to schedule expiry reminder",
			slog.String("member_uid", memberUID), sl.Err(err))
	}
}

func (s *SubscriptionService) invalidateMemberCaches(memberUID string) {
	for _, key := range []string{
		subscriptionCacheKey(memberUID),
		fmt.Sprintf("eligibility:%s", memberUID),
	} {
		if err := s.cache.Invalidate(key); err != nil {
			s.log.Warn("failed to invalidate cache", slog.String("key", key), sl.Err(err))
		}
	}
}
