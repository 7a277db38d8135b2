package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/magabrotheeeer/gym-scheduler/internal/models"
)

// GetMember возвращает участника по идентификатору.
func (s *Storage) GetMember(ctx context.Context, uid string) (*models.Member, error) {
	const op = "storage.GetMember"
	select {
	case <-ctx.Done():
		return nil, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	query := `SELECT uid, name, email, fitness_level, group_id, created_at
			  FROM members WHERE uid = $1`
	row := s.DB.QueryRowContext(ctx, query, uid)

	var result models.Member
	if err := row.Scan(&result.UID, &result.Name, &result.Email, &result.FitnessLevel,
		&result.GroupID, &result.CreatedAt); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("%s: %w", op, models.ErrMemberNotFound)
		}
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return &result, nil
}

// GetGroup возвращает группу по идентификатору.
func (s *Storage) GetGroup(ctx context.Context, id string) (*models.Group, error) {
	const op = "storage.GetGroup"
	select {
	case <-ctx.Done():
		return nil, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	query := `SELECT id, name, difficulty_level, max_capacity, active
			  FROM groups WHERE id = $1`
	row := s.DB.QueryRowContext(ctx, query, id)

	var result models.Group
	if err := row.Scan(&result.ID, &result.Name, &result.DifficultyLevel,
		&result.MaxCapacity, &result.Active); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("%s: %w", op, models.ErrGroupNotFound)
		}
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return &result, nil
}

// ListGroupMemberUIDs возвращает идентификаторы постоянных участников группы.
func (s *Storage) ListGroupMemberUIDs(ctx context.Context, groupID string) ([]string, error) {
	const op = "storage.ListGroupMemberUIDs"
	select {
	case <-ctx.Done():
		return nil, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	query := `SELECT uid FROM members WHERE group_id = $1 ORDER BY uid`
	rows, err := s.DB.QueryContext(ctx, query, groupID)
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
