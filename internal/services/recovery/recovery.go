// Package services содержит бизнес-логику планировщика отработок:
// регистрация пропусков, подбор свободных тренировок, бронирование и отмена
// отработок, проверка месячной квоты.
package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/magabrotheeeer/gym-scheduler/internal/lib/month"
	"github.com/magabrotheeeer/gym-scheduler/internal/lib/sl"
	"github.com/magabrotheeeer/gym-scheduler/internal/models"
)

// slotSearchWindow — окно поиска тренировок для отработки по умолчанию.
const slotSearchWindow = 14 * 24 * time.Hour

// RecoveryRepository определяет методы хранилища, нужные планировщику отработок.
type RecoveryRepository interface {
	GetMember(ctx context.Context, uid string) (*models.Member, error)
	GetSession(ctx context.Context, id string) (*models.Session, error)
	GetSubscription(ctx context.Context, memberUID string) (*models.Subscription, error)
	RecordAbsence(ctx context.Context, absence models.Absence) error
	FindPendingAbsence(ctx context.Context, memberUID, sessionID string) (*models.Absence, error)
	ListAbsences(ctx context.Context, memberUID string, from, to time.Time, status string) ([]*models.Absence, error)
	CountActiveRecoveries(ctx context.Context, memberUID string, start, end time.Time) (int, error)
	ListRecoveryCandidateSessions(ctx context.Context, start, end time.Time, excludeGroupID, difficultyLevel string) ([]*models.RecoverySlot, error)
	ScheduleRecovery(ctx context.Context, rec models.Recovery, absenceID, originalGroupID string, quotaStart, quotaEnd time.Time) error
	CancelRecovery(ctx context.Context, memberUID, absenceID string) error
}

// Cache описывает методы для кэширования данных.
type Cache interface {
	Get(key string, result any) (bool, error)
	Set(key string, value any, expiration time.Duration) error
	Invalidate(key string) error
}

// RecoveryService реализует сценарии пропусков и отработок.
type RecoveryService struct {
	repo  RecoveryRepository
	cache Cache
	log   *slog.Logger
}

// NewRecoveryService создает новый экземпляр RecoveryService.
func NewRecoveryService(repo RecoveryRepository, cache Cache, log *slog.Logger) *RecoveryService {
	return &RecoveryService{
		repo:  repo,
		cache: cache,
		log:   log,
	}
}

func eligibilityCacheKey(memberUID string) string {
	return fmt.Sprintf("eligibility:%s", memberUID)
}

// RecordAbsence регистрирует пропуск будущей тренировки своей группы.
// Запись пропуска и отметка absent в списке посещаемости применяются атомарно.
func (s *RecoveryService) RecordAbsence(ctx context.Context, memberUID string, req models.DummyRecordAbsence) (*models.Absence, error) {
	member, err := s.repo.GetMember(ctx, memberUID)
	if err != nil {
		return nil, err
	}

	sub, err := s.repo.GetSubscription(ctx, memberUID)
	if err != nil {
		if errors.Is(err, models.ErrNoSubscription) {
			return nil, models.ErrSubscriptionInactive
		}
		return nil, err
	}
	if sub.Status != models.SubscriptionStatusActive {
		return nil, models.ErrSubscriptionInactive
	}

	session, err := s.repo.GetSession(ctx, req.SessionID)
	if err != nil {
		return nil, err
	}
	if !session.Date.After(time.Now()) {
		return nil, fmt.Errorf("session already started: %w", models.ErrInvalidState)
	}
	if member.GroupID == nil || *member.GroupID != session.GroupID {
		return nil, fmt.Errorf("member is not part of session group: %w", models.ErrInvalidState)
	}

	absence := models.Absence{
		ID:        uuid.New().String(),
		MemberUID: memberUID,
		SessionID: session.ID,
		Date:      session.Date,
		Reason:    req.Reason,
		Status:    models.AbsencePendingRecovery,
		CreatedAt: time.Now(),
	}
	if err := s.repo.RecordAbsence(ctx, absence); err != nil {
		return nil, err
	}

	s.log.Info("absence recorded",
		slog.String("member_uid", memberUID),
		slog.String("session_id", session.ID))

	if err := s.cache.Invalidate(eligibilityCacheKey(memberUID)); err != nil {
		s.log.Warn("failed to invalidate eligibility cache", sl.Err(err))
	}
	return &absence, nil
}

// ListAvailableRecoverySlots возвращает тренировки, доступные участнику
// для отработки: чужая группа, совпадающий уровень, свободные места.
// Интервал по умолчанию — две недели от текущего момента.
func (s *RecoveryService) ListAvailableRecoverySlots(ctx context.Context, memberUID string, from, to time.Time) ([]*models.RecoverySlot, error) {
	member, err := s.repo.GetMember(ctx, memberUID)
	if err != nil {
		return nil, err
	}

	if from.IsZero() {
		from = time.Now()
	}
	if to.IsZero() {
		to = from.Add(slotSearchWindow)
	}
	if to.Before(from) {
		return nil, fmt.Errorf("end of range before start: %w", models.ErrInvalidArgument)
	}

	excludeGroupID := uuid.Nil.String()
	if member.GroupID != nil {
		excludeGroupID = *member.GroupID
	}

	return s.repo.ListRecoveryCandidateSessions(ctx, from, to, excludeGroupID, member.FitnessLevel)
}

// ScheduleRecovery бронирует отработку. Предусловия проверяются по порядку:
// пропуск в статусе pending_recovery, месячная квота, существование и дата
// целевой тренировки, свободные места. Все четыре эффекта бронирования
// применяются одной транзакцией, квота и вместимость перепроверяются внутри неё.
func (s *RecoveryService) ScheduleRecovery(ctx context.Context, memberUID, originalSessionID, recoverySessionID string) (*models.Recovery, error) {
	member, err := s.repo.GetMember(ctx, memberUID)
	if err != nil {
		return nil, err
	}
	if member.GroupID == nil {
		return nil, fmt.Errorf("member has no permanent group: %w", models.ErrInvalidState)
	}

	absence, err := s.repo.FindPendingAbsence(ctx, memberUID, originalSessionID)
	if err != nil {
		return nil, err
	}

	now := time.Now()
	quotaStart, quotaEnd := month.Window(now)
	count, err := s.repo.CountActiveRecoveries(ctx, memberUID, quotaStart, quotaEnd)
	if err != nil {
		return nil, err
	}
	if count >= models.MaxRecoveriesPerMonth {
		return nil, models.ErrQuotaExceeded
	}

	session, err := s.repo.GetSession(ctx, recoverySessionID)
	if err != nil {
		if errors.Is(err, models.ErrSessionNotFound) {
			return nil, models.ErrInvalidSession
		}
		return nil, err
	}
	if !session.Date.After(now) {
		return nil, models.ErrInvalidSession
	}

	rec := models.Recovery{
		ID:                uuid.New().String(),
		MemberUID:         memberUID,
		OriginalSessionID: originalSessionID,
		RecoverySessionID: session.ID,
		RecoveryDate:      session.Date,
		TemporaryGroupID:  session.GroupID,
		Status:            models.RecoveryScheduled,
		ScheduledAt:       now,
	}
	if err := s.repo.ScheduleRecovery(ctx, rec, absence.ID, *member.GroupID, quotaStart, quotaEnd); err != nil {
		return nil, err
	}

	s.log.Info("recovery scheduled",
		slog.String("member_uid", memberUID),
		slog.String("recovery_session_id", session.ID))

	if err := s.cache.Invalidate(eligibilityCacheKey(memberUID)); err != nil {
		s.log.Warn("failed to invalidate eligibility cache", sl.Err(err))
	}
	return &rec, nil
}

// CancelRecovery отменяет запланированную отработку и освобождает место
// в целевой тренировке. Квота пересчитывается по живым записям,
// счётчики нигде не декрементируются.
func (s *RecoveryService) CancelRecovery(ctx context.Context, memberUID, absenceID string) error {
	if err := s.repo.CancelRecovery(ctx, memberUID, absenceID); err != nil {
		return err
	}

	s.log.Info("recovery cancelled",
		slog.String("member_uid", memberUID),
		slog.String("absence_id", absenceID))

	if err := s.cache.Invalidate(eligibilityCacheKey(memberUID)); err != nil {
		s.log.Warn("failed to invalidate eligibility cache", sl.Err(err))
	}
	return nil
}

// GetRecoveryEligibility возвращает право участника на запись отработки
// и остаток месячной квоты. Результат кешируется до первой мутации.
func (s *RecoveryService) GetRecoveryEligibility(ctx context.Context, memberUID string) (*models.RecoveryEligibility, error) {
	cacheKey := eligibilityCacheKey(memberUID)
	var cached models.RecoveryEligibility
	found, err := s.cache.Get(cacheKey, &cached)
	if err != nil {
		s.log.Warn("failed to read eligibility cache", sl.Err(err))
	}
	if found {
		return &cached, nil
	}

	if _, err := s.repo.GetMember(ctx, memberUID); err != nil {
		return nil, err
	}

	result := &models.RecoveryEligibility{}
	sub, err := s.repo.GetSubscription(ctx, memberUID)
	switch {
	case errors.Is(err, models.ErrNoSubscription):
		result.Reason = "member has no subscription"
	case err != nil:
		return nil, err
	case sub.Status != models.SubscriptionStatusActive:
		result.Reason = "subscription is not active"
	case sub.Type != models.SubscriptionFitness && sub.Type != models.SubscriptionComplete:
		result.Reason = "subscription type does not include recoveries"
	default:
		quotaStart, quotaEnd := month.Window(time.Now())
		count, err := s.repo.CountActiveRecoveries(ctx, memberUID, quotaStart, quotaEnd)
		if err != nil {
			return nil, err
		}
		result.RemainingRecoveries = models.MaxRecoveriesPerMonth - count
		if result.RemainingRecoveries < 0 {
			result.RemainingRecoveries = 0
		}
		result.Eligible = result.RemainingRecoveries > 0
		if !result.Eligible {
			result.Reason = "monthly recovery quota exhausted"
		}
	}

	if err := s.cache.Set(cacheKey, result, 5*time.Minute); err != nil {
		s.log.Warn("failed to cache eligibility", sl.Err(err))
	}
	return result, nil
}

// ListAbsenceHistory возвращает историю пропусков участника, новые первыми.
func (s *RecoveryService) ListAbsenceHistory(ctx context.Context, memberUID string, from, to time.Time, status string) ([]*models.Absence, error) {
	if _, err := s.repo.GetMember(ctx, memberUID); err != nil {
		return nil, err
	}
	return s.repo.ListAbsences(ctx, memberUID, from, to, status)
}
