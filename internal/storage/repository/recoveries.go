package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/magabrotheeeer/gym-scheduler/internal/models"
)

// CountActiveRecoveries считает отработки участника с датой в интервале
// [start, end) и статусом, отличным от missed. Используется для проверки
// месячной квоты: пропущенные отработки не занимают слот.
func (s *Storage) CountActiveRecoveries(ctx context.Context, memberUID string, start, end time.Time) (int, error) {
	const op = "storage.CountActiveRecoveries"
	select {
	case <-ctx.Done():
		return 0, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	query := `SELECT COUNT(*) FROM recoveries
			  WHERE member_uid = $1
				AND recovery_date >= $2 AND recovery_date < $3
				AND status <> $4`
	var count int
	err := s.DB.QueryRowContext(ctx, query, memberUID, start, end, models.RecoveryMissed).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", op, err)
	}
	return count, nil
}

// ScheduleRecovery выполняет бронирование отработки: переводит пропуск в
// scheduled_recovery, вставляет запись отработки, добавляет участника во
// временный состав целевой тренировки и выставляет ему статус recovering.
// Все четыре шага проходят в одной сериализуемой транзакции, квота и
// вместимость перепроверяются внутри неё.
func (s *Storage) ScheduleRecovery(ctx context.Context, rec models.Recovery,
	absenceID string, originalGroupID string, quotaStart, quotaEnd time.Time) error {
	const op = "storage.ScheduleRecovery"
	select {
	case <-ctx.Done():
		return fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	return s.withTx(ctx, func(tx *sql.Tx) error {
		res, err := tx.ExecContext(ctx,
			`UPDATE absences SET status = $1
			 WHERE id = $2 AND member_uid = $3 AND status = $4`,
			models.AbsenceScheduledRecovery, absenceID, rec.MemberUID, models.AbsencePendingRecovery)
		if err != nil {
			return fmt.Errorf("%s: %w", op, err)
		}
		affected, err := res.RowsAffected()
		if err != nil {
			return fmt.Errorf("%s: %w", op, err)
		}
		if affected == 0 {
			return fmt.Errorf("%s: %w", op, models.ErrNoPendingAbsence)
		}

		var activeCount int
		err = tx.QueryRowContext(ctx,
			`SELECT COUNT(*) FROM recoveries
			 WHERE member_uid = $1
			   AND recovery_date >= $2 AND recovery_date < $3
			   AND status <> $4`,
			rec.MemberUID, quotaStart, quotaEnd, models.RecoveryMissed).Scan(&activeCount)
		if err != nil {
			return fmt.Errorf("%s: %w", op, err)
		}
		if activeCount >= models.MaxRecoveriesPerMonth {
			return fmt.Errorf("%s: %w", op, models.ErrQuotaExceeded)
		}

		var remaining int
		err = tx.QueryRowContext(ctx,
			`SELECT g.max_capacity
				- (SELECT COUNT(*) FROM session_attendance sa WHERE sa.session_id = se.id)
				- (SELECT COUNT(*) FROM session_temporary_members stm WHERE stm.session_id = se.id)
			 FROM sessions se
			 JOIN groups g ON g.id = se.group_id
			 WHERE se.id = $1`,
			rec.RecoverySessionID).Scan(&remaining)
		if err != nil {
			if errors.Is(err, sql.ErrNoRows) {
				return fmt.Errorf("%s: %w", op, models.ErrInvalidSession)
			}
			return fmt.Errorf("%s: %w", op, err)
		}
		if remaining <= 0 {
			return fmt.Errorf("%s: %w", op, models.ErrSessionFull)
		}

		_, err = tx.ExecContext(ctx,
			`INSERT INTO recoveries (id, member_uid, original_session_id, recovery_session_id,
				 recovery_date, temporary_group_id, status, scheduled_at)
			 VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`,
			rec.ID, rec.MemberUID, rec.OriginalSessionID, rec.RecoverySessionID,
			rec.RecoveryDate, rec.TemporaryGroupID, rec.Status, rec.ScheduledAt)
		if err != nil {
			return fmt.Errorf("%s: %w", op, err)
		}

		_, err = tx.ExecContext(ctx,
			`INSERT INTO session_temporary_members (session_id, member_uid, original_group_id)
			 VALUES ($1, $2, $3)`,
			rec.RecoverySessionID, rec.MemberUID, originalGroupID)
		if err != nil {
			if isUniqueViolation(err) {
				return fmt.Errorf("%s: %w", op, models.ErrInvalidState)
			}
			return fmt.Errorf("%s: %w", op, err)
		}

		_, err = tx.ExecContext(ctx,
			`INSERT INTO session_attendance (session_id, member_uid, status)
			 VALUES ($1, $2, $3)
			 ON CONFLICT (session_id, member_uid) DO UPDATE SET status = EXCLUDED.status`,
			rec.RecoverySessionID, rec.MemberUID, models.AttendanceRecovering)
		if err != nil {
			return fmt.Errorf("%s: %w", op, err)
		}
		return nil
	})
}

// CancelRecovery откатывает запланированную отработку: пропуск возвращается
// в pending_recovery, запись отработки удаляется, место и строка посещаемости
// в целевой тренировке освобождаются. Квота нигде не декрементируется —
// она всегда пересчитывается по живым записям.
func (s *Storage) CancelRecovery(ctx context.Context, memberUID, absenceID string) error {
	const op = "storage.CancelRecovery"
	select {
	case <-ctx.Done():
		return fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	return s.withTx(ctx, func(tx *sql.Tx) error {
		var sessionID string
		err := tx.QueryRowContext(ctx,
			`SELECT session_id FROM absences
			 WHERE id = $1 AND member_uid = $2 AND status = $3`,
			absenceID, memberUID, models.AbsenceScheduledRecovery).Scan(&sessionID)
		if err != nil {
			if errors.Is(err, sql.ErrNoRows) {
				return fmt.Errorf("%s: %w", op, models.ErrNoRecoveryScheduled)
			}
			return fmt.Errorf("%s: %w", op, err)
		}

		var recoverySessionID string
		err = tx.QueryRowContext(ctx,
			`DELETE FROM recoveries
			 WHERE member_uid = $1 AND original_session_id = $2 AND status = $3
			 RETURNING recovery_session_id`,
			memberUID, sessionID, models.RecoveryScheduled).Scan(&recoverySessionID)
		if err != nil {
			if errors.Is(err, sql.ErrNoRows) {
				return fmt.Errorf("%s: %w", op, models.ErrNoRecoveryScheduled)
			}
			return fmt.Errorf("%s: %w", op, err)
		}

		if _, err := tx.ExecContext(ctx,
			`DELETE FROM session_temporary_members
			 WHERE session_id = $1 AND member_uid = $2`,
			recoverySessionID, memberUID); err != nil {
			return fmt.Errorf("%s: %w", op, err)
		}

		if _, err := tx.ExecContext(ctx,
			`DELETE FROM session_attendance
			 WHERE session_id = $1 AND member_uid = $2`,
			recoverySessionID, memberUID); err != nil {
			return fmt.Errorf("%s: %w", op, err)
		}

		if _, err := tx.ExecContext(ctx,
			`UPDATE absences SET status = $1 WHERE id = $2`,
			models.AbsencePendingRecovery, absenceID); err != nil {
			return fmt.Errorf("%s: %w", op, err)
		}
		return nil
	})
}

// ResolveRecovery переводит запланированную отработку участника на дату
// тренировки в терминальный статус. Возвращает количество изменённых строк.
func (s *Storage) ResolveRecovery(ctx context.Context, memberUID string, recoveryDate time.Time, status string) (int, error) {
	const op = "storage.ResolveRecovery"
	select {
	case <-ctx.Done():
		return 0, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	res, err := s.DB.ExecContext(ctx,
		`UPDATE recoveries SET status = $1
		 WHERE member_uid = $2 AND recovery_date = $3 AND status = $4`,
		status, memberUID, recoveryDate, models.RecoveryScheduled)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", op, err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("%s: %w", op, err)
	}
	return int(affected), nil
}
