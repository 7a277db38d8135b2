// Package services содержит фоновые задачи обслуживания абонементов:
// ежедневное выметание просроченных и рассылку напоминаний об истечении.
package services

import (
	"context"
	"log/slog"
	"time"

	"github.com/streadway/amqp"

	"github.com/magabrotheeeer/gym-scheduler/internal/lib/rabbitmq"
	"github.com/magabrotheeeer/gym-scheduler/internal/lib/sl"
	"github.com/magabrotheeeer/gym-scheduler/internal/models"
)

// sweepInterval — период между проходами обслуживания.
const sweepInterval = 24 * time.Hour

// expiryNoticeDays — за сколько дней до истечения абонемент попадает в рассылку.
const expiryNoticeDays = 2

// SubscriptionMaintainer описывает операции обслуживания абонементов.
type SubscriptionMaintainer interface {
	SweepExpiredSubscriptions(ctx context.Context, now time.Time) (int, error)
	GetExpiringSubscriptions(ctx context.Context, thresholdDays int) ([]*models.ExpiringSubscription, error)
}

// SchedulerService запускает периодические задачи обслуживания.
type SchedulerService struct {
	subscriptions SubscriptionMaintainer
	log           *slog.Logger
}

// NewSchedulerService создает новый экземпляр SchedulerService.
func NewSchedulerService(subscriptions SubscriptionMaintainer, log *slog.Logger) *SchedulerService {
	return &SchedulerService{
		subscriptions: subscriptions,
		log:           log,
	}
}

// RunDailyMaintenance выполняет проход обслуживания сразу при старте,
// затем раз в сутки до отмены контекста. Проход идемпотентен,
// перезапуск сервиса не приводит к двойной обработке.
func (s *SchedulerService) RunDailyMaintenance(ctx context.Context, channel *amqp.Channel) {
	s.runOnce(ctx, channel)

	ticker := time.NewTicker(sweepInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			s.runOnce(ctx, channel)
		}
	}
}

func (s *SchedulerService) runOnce(ctx context.Context, channel *amqp.Channel) {
	s.log.Info("starting subscription maintenance pass")

	count, err := s.subscriptions.SweepExpiredSubscriptions(ctx, time.Now())
	if err != nil {
		s.log.Error("failed to sweep expired subscriptions", sl.Err(err))
	} else {
		s.log.Info("sweep finished", slog.Int("expired", count))
	}

	expiring, err := s.subscriptions.GetExpiringSubscriptions(ctx, expiryNoticeDays)
	if err != nil {
		s.log.Error("failed to list expiring subscriptions", sl.Err(err))
		return
	}
	for _, e := range expiring {
		if err := rabbitmq.PublishMessage(channel, "notifications", "subscription_expiry", e); err != nil {
			s.log.Error("failed to publish expiry notice",
				slog.String("member_uid", e.MemberUID), sl.Err(err))
		}
	}
	if len(expiring) > 0 {
		s.log.Info("expiry notices published", slog.Int("count", len(expiring)))
	}
}
