// Package services содержит бизнес-логику учёта посещаемости:
// генерацию списков присутствия и их отметку с разрешением исходов отработок.
package services

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/magabrotheeeer/gym-scheduler/internal/models"
)

// AttendanceRepository определяет методы хранилища для учёта посещаемости.
type AttendanceRepository interface {
	GetSession(ctx context.Context, id string) (*models.Session, error)
	GetGroup(ctx context.Context, id string) (*models.Group, error)
	ListGroupMemberUIDs(ctx context.Context, groupID string) ([]string, error)
	ListAbsentMemberUIDs(ctx context.Context, sessionID string) ([]string, error)
	ListTemporaryMembers(ctx context.Context, sessionID string) ([]models.TemporaryMember, error)
	SaveRoster(ctx context.Context, sessionID string, attendance map[string]string) error
	ApplyAttendance(ctx context.Context, sessionID string, statuses map[string]string) error
	ResolveRecovery(ctx context.Context, memberUID string, recoveryDate time.Time, status string) (int, error)
}

// AttendanceService реализует генерацию и отметку списков посещаемости.
type AttendanceService struct {
	repo AttendanceRepository
	log  *slog.Logger
}

// NewAttendanceService создает новый экземпляр AttendanceService.
func NewAttendanceService(repo AttendanceRepository, log *slog.Logger) *AttendanceService {
	return &AttendanceService{
		repo: repo,
		log:  log,
	}
}

// GenerateAttendanceRoster собирает список посещаемости тренировки заново:
// постоянные участники группы получают absent при заявленном пропуске, иначе
// present; временные участники — recovering. Список перезаписывается целиком,
// повторный вызов без изменений даёт идентичный результат.
func (s *AttendanceService) GenerateAttendanceRoster(ctx context.Context, sessionID string) (*models.Roster, error) {
	session, err := s.repo.GetSession(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	group, err := s.repo.GetGroup(ctx, session.GroupID)
	if err != nil {
		return nil, err
	}

	memberUIDs, err := s.repo.ListGroupMemberUIDs(ctx, group.ID)
	if err != nil {
		return nil, err
	}
	absentUIDs, err := s.repo.ListAbsentMemberUIDs(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	absent := make(map[string]struct{}, len(absentUIDs))
	for _, uid := range absentUIDs {
		absent[uid] = struct{}{}
	}

	attendance := make(map[string]string, len(memberUIDs))
	for _, uid := range memberUIDs {
		if _, ok := absent[uid]; ok {
			attendance[uid] = models.AttendanceAbsent
		} else {
			attendance[uid] = models.AttendancePresent
		}
	}

	temporary, err := s.repo.ListTemporaryMembers(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	for _, tm := range temporary {
		attendance[tm.MemberUID] = models.AttendanceRecovering
	}

	if err := s.repo.SaveRoster(ctx, sessionID, attendance); err != nil {
		return nil, err
	}

	s.log.Info("attendance roster generated",
		slog.String("session_id", sessionID),
		slog.Int("entries", len(attendance)))

	return &models.Roster{
		SessionID:  sessionID,
		GroupID:    session.GroupID,
		Date:       session.Date,
		Attendance: attendance,
	}, nil
}

// MarkAttendance применяет статусы посещаемости к прошедшей тренировке
// и разрешает исходы отработок временных участников: present даёт completed,
// любой другой статус — missed. Это единственное место, где отработка
// покидает статус scheduled. Статусы тренировки применяются одной
// транзакцией; если не удалось разрешить отработку хотя бы одного участника,
// вызов возвращает ошибку и должен быть повторён до полного завершения.
func (s *AttendanceService) MarkAttendance(ctx context.Context, sessionID string, statuses map[string]string) error {
	session, err := s.repo.GetSession(ctx, sessionID)
	if err != nil {
		return err
	}
	if session.Date.After(time.Now()) {
		return models.ErrFutureSession
	}

	for uid, status := range statuses {
		if !models.IsValidMarkStatus(status) {
			return fmt.Errorf("invalid status %q for member %s: %w", status, uid, models.ErrInvalidArgument)
		}
	}

	if err := s.repo.ApplyAttendance(ctx, sessionID, statuses); err != nil {
		return err
	}

	temporary, err := s.repo.ListTemporaryMembers(ctx, sessionID)
	if err != nil {
		return err
	}

	var failed []string
	var lastErr error
	for _, tm := range temporary {
		status, ok := statuses[tm.MemberUID]
		if !ok {
			continue
		}
		outcome := models.RecoveryMissed
		if status == models.AttendancePresent {
			outcome = models.RecoveryCompleted
		}
		if _, err := s.repo.ResolveRecovery(ctx, tm.MemberUID, session.Date, outcome); err != nil {
			s.log.Error("failed to resolve recovery",
				slog.String("member_uid", tm.MemberUID),
				slog.String("session_id", sessionID))
			failed = append(failed, tm.MemberUID)
			lastErr = err
		}
	}
	if len(failed) > 0 {
		return fmt.Errorf("recovery resolution incomplete for members %v, retry required: %w", failed, lastErr)
	}

	s.log.Info("attendance marked",
		slog.String("session_id", sessionID),
		slog.Int("entries", len(statuses)))
	return nil
}
