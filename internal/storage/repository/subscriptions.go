package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/magabrotheeeer/gym-scheduler/internal/models"
)

// GetSubscription возвращает абонемент участника.
func (s *Storage) GetSubscription(ctx context.Context, memberUID string) (*models.Subscription, error) {
	const op = "storage.GetSubscription"
	select {
	case <-ctx.Done():
		return nil, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	query := `SELECT member_uid, type, status, start_date, end_date, total_due
			  FROM subscriptions WHERE member_uid = $1`
	row := s.DB.QueryRowContext(ctx, query, memberUID)

	var result models.Subscription
	if err := row.Scan(&result.MemberUID, &result.Type, &result.Status,
		&result.StartDate, &result.EndDate, &result.TotalDue); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("%s: %w", op, models.ErrNoSubscription)
		}
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return &result, nil
}

// UpsertSubscription создаёт или заменяет абонемент участника и добавляет
// запись об оплате одной транзакцией.
func (s *Storage) UpsertSubscription(ctx context.Context, sub models.Subscription, payment models.PaymentRecord) error {
	const op = "storage.UpsertSubscription"
	select {
	case <-ctx.Done():
		return fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	return s.withTx(ctx, func(tx *sql.Tx) error {
		_, err := tx.ExecContext(ctx,
			`INSERT INTO subscriptions (member_uid, type, status, start_date, end_date, total_due)
			 VALUES ($1, $2, $3, $4, $5, $6)
			 ON CONFLICT (member_uid) DO UPDATE
			 SET type = EXCLUDED.type, status = EXCLUDED.status,
				 start_date = EXCLUDED.start_date, end_date = EXCLUDED.end_date,
				 total_due = EXCLUDED.total_due`,
			sub.MemberUID, sub.Type, sub.Status, sub.StartDate, sub.EndDate, sub.TotalDue)
		if err != nil {
			return fmt.Errorf("%s: %w", op, err)
		}

		_, err = tx.ExecContext(ctx,
			`INSERT INTO payment_history (member_uid, date, amount, status, confirmed_by)
			 VALUES ($1, $2, $3, $4, $5)`,
			payment.MemberUID, payment.Date, payment.Amount, payment.Status, payment.ConfirmedBy)
		if err != nil {
			return fmt.Errorf("%s: %w", op, err)
		}
		return nil
	})
}

// UpdateRenewal применяет результат продления: новый конец действия (если задан),
// новый статус и запись в истории платежей — одной транзакцией.
func (s *Storage) UpdateRenewal(ctx context.Context, memberUID string,
	newEndDate *time.Time, status string, payment models.PaymentRecord) error {
	const op = "storage.UpdateRenewal"
	select {
	case <-ctx.Done():
		return fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	return s.withTx(ctx, func(tx *sql.Tx) error {
		var err error
		if newEndDate != nil {
			_, err = tx.ExecContext(ctx,
				`UPDATE subscriptions SET end_date = $1, status = $2 WHERE member_uid = $3`,
				*newEndDate, status, memberUID)
		} else {
			_, err = tx.ExecContext(ctx,
				`UPDATE subscriptions SET status = $1 WHERE member_uid = $2`,
				status, memberUID)
		}
		if err != nil {
			return fmt.Errorf("%s: %w", op, err)
		}

		_, err = tx.ExecContext(ctx,
			`INSERT INTO payment_history (member_uid, date, amount, status, confirmed_by)
			 VALUES ($1, $2, $3, $4, $5)`,
			payment.MemberUID, payment.Date, payment.Amount, payment.Status, payment.ConfirmedBy)
		if err != nil {
			return fmt.Errorf("%s: %w", op, err)
		}
		return nil
	})
}

// SetTotalDue сохраняет пересчитанную задолженность участника.
func (s *Storage) SetTotalDue(ctx context.Context, memberUID string, totalDue float64) error {
	const op = "storage.SetTotalDue"
	select {
	case <-ctx.Done():
		return fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	_, err := s.DB.ExecContext(ctx,
		`UPDATE subscriptions SET total_due = $1 WHERE member_uid = $2`,
		totalDue, memberUID)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	return nil
}

// ListPayments возвращает историю платежей участника, новые первыми.
// Пустой статус означает отсутствие фильтра.
func (s *Storage) ListPayments(ctx context.Context, memberUID, status string) ([]models.PaymentRecord, error) {
	const op = "storage.ListPayments"
	select {
	case <-ctx.Done():
		return nil, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	query := `SELECT id, member_uid, date, amount, status, confirmed_by
			  FROM payment_history
			  WHERE member_uid = $1
				AND ($2::text = '' OR status = $2)
			  ORDER BY date DESC, id DESC`
	rows, err := s.DB.QueryContext(ctx, query, memberUID, status)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	defer func() {
		_ = rows.Close()
	}()

	var result []models.PaymentRecord
	for rows.Next() {
		var item models.PaymentRecord
		if err := rows.Scan(&item.ID, &item.MemberUID, &item.Date, &item.Amount,
			&item.Status, &item.ConfirmedBy); err != nil {
			return nil, fmt.Errorf("%s: %w", op, err)
		}
		result = append(result, item)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return result, nil
}

// GetMonthlyPrice возвращает месячную цену типа абонемента из прайс-листа зала.
func (s *Storage) GetMonthlyPrice(ctx context.Context, subscriptionType string) (float64, error) {
	const op = "storage.GetMonthlyPrice"
	select {
	case <-ctx.Done():
		return 0, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	var price float64
	err := s.DB.QueryRowContext(ctx,
		`SELECT monthly_price FROM subscription_prices WHERE type = $1`,
		subscriptionType).Scan(&price)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return 0, fmt.Errorf("%s: %w", op, models.ErrInvalidSubscriptionType)
		}
		return 0, fmt.Errorf("%s: %w", op, err)
	}
	return price, nil
}

// ExpireSubscriptions переводит в expired все активные абонементы,
// закончившиеся к моменту now. Повторный запуск не находит уже
// обработанные записи, операция идемпотентна.
func (s *Storage) ExpireSubscriptions(ctx context.Context, now time.Time) (int, error) {
	const op = "storage.ExpireSubscriptions"
	select {
	case <-ctx.Done():
		return 0, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	res, err := s.DB.ExecContext(ctx,
		`UPDATE subscriptions SET status = $1
		 WHERE status = $2 AND end_date <= $3`,
		models.SubscriptionStatusExpired, models.SubscriptionStatusActive, now)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", op, err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("%s: %w", op, err)
	}
	return int(affected), nil
}

// ListExpiringSubscriptions возвращает активные абонементы с концом действия
// в интервале [now, until] вместе с данными участника.
func (s *Storage) ListExpiringSubscriptions(ctx context.Context, now, until time.Time) ([]*models.ExpiringSubscription, error) {
	const op = "storage.ListExpiringSubscriptions"
	select {
	case <-ctx.Done():
		return nil, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	query := `SELECT su.member_uid, m.name, m.email, su.type, su.end_date
			  FROM subscriptions su
			  JOIN members m ON m.uid = su.member_uid
			  WHERE su.status = $1
				AND su.end_date >= $2
				AND su.end_date <= $3
			  ORDER BY su.end_date`
	rows, err := s.DB.QueryContext(ctx, query, models.SubscriptionStatusActive, now, until)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	defer func() {
		_ = rows.Close()
	}()

	var result []*models.ExpiringSubscription
	for rows.Next() {
		var item models.ExpiringSubscription
		if err := rows.Scan(&item.MemberUID, &item.Name, &item.Email,
			&item.Type, &item.EndDate); err != nil {
			return nil, fmt.Errorf("%s: %w", op, err)
		}
		result = append(result, &item)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return result, nil
}
