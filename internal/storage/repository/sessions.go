package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/magabrotheeeer/gym-scheduler/internal/models"
)

// GetSession возвращает тренировку по идентификатору.
func (s *Storage) GetSession(ctx context.Context, id string) (*models.Session, error) {
	const op = "storage.GetSession"
	select {
	case <-ctx.Done():
		return nil, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	query := `SELECT id, group_id, date, start_time, end_time
			  FROM sessions WHERE id = $1`
	row := s.DB.QueryRowContext(ctx, query, id)

	var result models.Session
	if err := row.Scan(&result.ID, &result.GroupID, &result.Date,
		&result.StartTime, &result.EndTime); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("%s: %w", op, models.ErrSessionNotFound)
		}
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return &result, nil
}

// GetSessionAttendance возвращает текущий список посещаемости тренировки.
func (s *Storage) GetSessionAttendance(ctx context.Context, sessionID string) (map[string]string, error) {
	const op = "storage.GetSessionAttendance"
	select {
	case <-ctx.Done():
		return nil, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	query := `SELECT member_uid, status FROM session_attendance WHERE session_id = $1`
	rows, err := s.DB.QueryContext(ctx, query, sessionID)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	defer func() {
		_ = rows.Close()
	}()

	result := make(map[string]string)
	for rows.Next() {
		var uid, status string
		if err := rows.Scan(&uid, &status); err != nil {
			return nil, fmt.Errorf("%s: %w", op, err)
		}
		result[uid] = status
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return result, nil
}

// ListTemporaryMembers возвращает временных участников тренировки.
func (s *Storage) ListTemporaryMembers(ctx context.Context, sessionID string) ([]models.TemporaryMember, error) {
	const op = "storage.ListTemporaryMembers"
	select {
	case <-ctx.Done():
		return nil, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	query := `SELECT member_uid, original_group_id
			  FROM session_temporary_members WHERE session_id = $1`
	rows, err := s.DB.QueryContext(ctx, query, sessionID)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	defer func() {
		_ = rows.Close()
	}()

	var result []models.TemporaryMember
	for rows.Next() {
		var tm models.TemporaryMember
		if err := rows.Scan(&tm.MemberUID, &tm.OriginalGroupID); err != nil {
			return nil, fmt.Errorf("%s: %w", op, err)
		}
		result = append(result, tm)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return result, nil
}

// ListRecoveryCandidateSessions возвращает тренировки в интервале [start, end],
// принадлежащие активным группам с указанным уровнем сложности, кроме группы
// excludeGroupID, у которых остались свободные места. Сортировка по дате.
func (s *Storage) ListRecoveryCandidateSessions(ctx context.Context, start, end time.Time,
	excludeGroupID, difficultyLevel string) ([]*models.RecoverySlot, error) {
	const op = "storage.ListRecoveryCandidateSessions"
	select {
	case <-ctx.Done():
		return nil, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	query := `SELECT se.id, se.group_id, g.name, se.date, se.start_time, se.end_time,
				  g.max_capacity
				  - (SELECT COUNT(*) FROM session_attendance sa WHERE sa.session_id = se.id)
				  - (SELECT COUNT(*) FROM session_temporary_members stm WHERE stm.session_id = se.id)
				  AS available_slots
			  FROM sessions se
			  JOIN groups g ON g.id = se.group_id
			  WHERE se.date >= $1
				AND se.date <= $2
				AND se.group_id <> $3
				AND g.difficulty_level = $4
				AND g.active = true
			  ORDER BY se.date`
	rows, err := s.DB.QueryContext(ctx, query, start, end, excludeGroupID, difficultyLevel)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	defer func() {
		_ = rows.Close()
	}()

	var result []*models.RecoverySlot
	for rows.Next() {
		var slot models.RecoverySlot
		if err := rows.Scan(&slot.SessionID, &slot.GroupID, &slot.GroupName, &slot.Date,
			&slot.StartTime, &slot.EndTime, &slot.AvailableSlots); err != nil {
			return nil, fmt.Errorf("%s: %w", op, err)
		}
		if slot.AvailableSlots <= 0 {
			continue
		}
		result = append(result, &slot)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return result, nil
}

// SaveRoster перезаписывает список посещаемости тренировки атомарно.
// Повторный вызов с теми же входными данными даёт идентичный результат.
func (s *Storage) SaveRoster(ctx context.Context, sessionID string, attendance map[string]string) error {
	const op = "storage.SaveRoster"
	select {
	case <-ctx.Done():
		return fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	err := s.withTx(ctx, func(tx *sql.Tx) error {
		if _, err := tx.ExecContext(ctx,
			`DELETE FROM session_attendance WHERE session_id = $1`, sessionID); err != nil {
			return fmt.Errorf("%s: %w", op, err)
		}
		for uid, status := range attendance {
			if _, err := tx.ExecContext(ctx,
				`INSERT INTO session_attendance (session_id, member_uid, status)
				 VALUES ($1, $2, $3)`, sessionID, uid, status); err != nil {
				return fmt.Errorf("%s: %w", op, err)
			}
		}
		return nil
	})
	if err != nil {
		return err
	}
	return nil
}

// ApplyAttendance применяет статусы посещаемости к тренировке одной транзакцией.
func (s *Storage) ApplyAttendance(ctx context.Context, sessionID string, statuses map[string]string) error {
	const op = "storage.ApplyAttendance"
	select {
	case <-ctx.Done():
		return fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	return s.withTx(ctx, func(tx *sql.Tx) error {
		for uid, status := range statuses {
			if _, err := tx.ExecContext(ctx,
				`INSERT INTO session_attendance (session_id, member_uid, status)
				 VALUES ($1, $2, $3)
				 ON CONFLICT (session_id, member_uid) DO UPDATE SET status = EXCLUDED.status`,
				sessionID, uid, status); err != nil {
				return fmt.Errorf("%s: %w", op, err)
			}
		}
		return nil
	})
}
