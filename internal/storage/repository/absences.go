package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/magabrotheeeer/gym-scheduler/internal/models"
)

// RecordAbsence вставляет запись о пропуске и выставляет участнику статус
// absent в списке посещаемости тренировки одной транзакцией.
func (s *Storage) RecordAbsence(ctx context.Context, absence models.Absence) error {
	const op = "storage.RecordAbsence"
	select {
	case <-ctx.Done():
		return fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	return s.withTx(ctx, func(tx *sql.Tx) error {
		_, err := tx.ExecContext(ctx,
			`INSERT INTO absences (id, member_uid, session_id, date, reason, status, created_at)
			 VALUES ($1, $2, $3, $4, $5, $6, $7)`,
			absence.ID, absence.MemberUID, absence.SessionID, absence.Date,
			absence.Reason, absence.Status, absence.CreatedAt)
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
			absence.SessionID, absence.MemberUID, models.AttendanceAbsent)
		if err != nil {
			return fmt.Errorf("%s: %w", op, err)
		}
		return nil
	})
}

// GetAbsence возвращает пропуск участника по идентификатору.
func (s *Storage) GetAbsence(ctx context.Context, memberUID, absenceID string) (*models.Absence, error) {
	const op = "storage.GetAbsence"
	select {
	case <-ctx.Done():
		return nil, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	query := `SELECT id, member_uid, session_id, date, reason, status, created_at
			  FROM absences WHERE id = $1 AND member_uid = $2`
	row := s.DB.QueryRowContext(ctx, query, absenceID, memberUID)

	var result models.Absence
	if err := row.Scan(&result.ID, &result.MemberUID, &result.SessionID, &result.Date,
		&result.Reason, &result.Status, &result.CreatedAt); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("%s: %w", op, models.ErrAbsenceNotFound)
		}
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return &result, nil
}

// FindPendingAbsence ищет пропуск участника для тренировки в статусе pending_recovery.
func (s *Storage) FindPendingAbsence(ctx context.Context, memberUID, sessionID string) (*models.Absence, error) {
	const op = "storage.FindPendingAbsence"
	select {
	case <-ctx.Done():
		return nil, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	query := `SELECT id, member_uid, session_id, date, reason, status, created_at
			  FROM absences
			  WHERE member_uid = $1 AND session_id = $2 AND status = $3`
	row := s.DB.QueryRowContext(ctx, query, memberUID, sessionID, models.AbsencePendingRecovery)

	var result models.Absence
	if err := row.Scan(&result.ID, &result.MemberUID, &result.SessionID, &result.Date,
		&result.Reason, &result.Status, &result.CreatedAt); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("%s: %w", op, models.ErrNoPendingAbsence)
		}
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return &result, nil
}

// ListAbsences возвращает историю пропусков участника, новые первыми.
// Нулевые границы интервала и пустой статус означают отсутствие фильтра.
func (s *Storage) ListAbsences(ctx context.Context, memberUID string,
	from, to time.Time, status string) ([]*models.Absence, error) {
	const op = "storage.ListAbsences"
	select {
	case <-ctx.Done():
		return nil, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	query := `SELECT id, member_uid, session_id, date, reason, status, created_at
			  FROM absences
			  WHERE member_uid = $1
				AND ($2::timestamptz IS NULL OR created_at >= $2)
				AND ($3::timestamptz IS NULL OR created_at <= $3)
				AND ($4::text = '' OR status = $4)
			  ORDER BY created_at DESC`

	var fromArg, toArg any
	if !from.IsZero() {
		fromArg = from
	}
	if !to.IsZero() {
		toArg = to
	}

	rows, err := s.DB.QueryContext(ctx, query, memberUID, fromArg, toArg, status)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	defer func() {
		_ = rows.Close()
	}()

	var result []*models.Absence
	for rows.Next() {
		var item models.Absence
		if err := rows.Scan(&item.ID, &item.MemberUID, &item.SessionID, &item.Date,
			&item.Reason, &item.Status, &item.CreatedAt); err != nil {
			return nil, fmt.Errorf("%s: %w", op, err)
		}
		result = append(result, &item)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return result, nil
}

// ListAbsentMemberUIDs возвращает участников, заявивших пропуск этой тренировки.
func (s *Storage) ListAbsentMemberUIDs(ctx context.Context, sessionID string) ([]string, error) {
	const op = "storage.ListAbsentMemberUIDs"
	select {
	case <-ctx.Done():
		return nil, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	query := `SELECT member_uid FROM absences WHERE session_id = $1`
	rows, err := s.DB.QueryContext(ctx, query, sessionID)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	defer func() {
		_ = rows.Close()
	}()

	var result []string
	for rows.Next() {
		var uid string
		if err := rows.Scan(&uid); err != nil {
			return nil, fmt.Errorf("%s: %w", op, err)
		}
		result = append(result, uid)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return result, nil
}
